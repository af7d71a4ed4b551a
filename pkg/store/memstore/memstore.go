// Package memstore keeps the catalog in process memory. It backs tests and
// throwaway runs; nothing survives a restart.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/store"
)

type Store struct {
	mu     sync.RWMutex
	nextID map[models.Kind]int
	rows   map[models.Kind]map[int]models.Entity
	closed bool
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	s := &Store{
		nextID: map[models.Kind]int{},
		rows:   map[models.Kind]map[int]models.Entity{},
	}
	for _, kind := range models.Kinds {
		s.rows[kind] = map[int]models.Entity{}
	}
	return s
}

var errClosed = errors.New("memstore: closed")

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) table(kind models.Kind) (map[int]models.Entity, error) {
	if s.closed {
		return nil, store.Unavailable(errClosed)
	}
	rows, ok := s.rows[kind]
	if !ok {
		return nil, errors.Errorf("unknown entity kind %q", kind)
	}
	return rows, nil
}

func (s *Store) FindByID(ctx context.Context, kind models.Kind, id int) (models.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.table(kind)
	if err != nil {
		return nil, err
	}
	e, ok := rows[id]
	if !ok {
		return nil, errcodes.NotFound(kind.Label())
	}
	return clone(e), nil
}

func (s *Store) FindMany(ctx context.Context, kind models.Kind, q store.Query) ([]models.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched, err := s.match(kind, q.Filter)
	if err != nil {
		return nil, err
	}

	for _, srt := range q.Sort {
		if _, err := store.Column(kind, srt.Field); err != nil {
			return nil, err
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		for _, srt := range q.Sort {
			a, _ := fieldValue(matched[i], srt.Field)
			b, _ := fieldValue(matched[j], srt.Field)
			c := compare(a, b)
			if c == 0 {
				continue
			}
			if srt.Direction == store.SortDesc {
				return c > 0
			}
			return c < 0
		}
		return matched[i].EntityID() < matched[j].EntityID()
	})

	out := make([]models.Entity, 0, len(matched))
	for _, e := range matched {
		out = append(out, clone(e))
	}
	return out, nil
}

func (s *Store) CountWhere(ctx context.Context, kind models.Kind, f store.Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.WithStack(err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched, err := s.match(kind, f)
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

func (s *Store) match(kind models.Kind, f store.Filter) ([]models.Entity, error) {
	rows, err := s.table(kind)
	if err != nil {
		return nil, err
	}
	keys := f.Keys()
	for _, field := range keys {
		if kind == models.KindBook && field == store.FieldGenre {
			continue
		}
		if _, err := store.Column(kind, field); err != nil {
			return nil, err
		}
	}

	out := []models.Entity{}
	for _, e := range rows {
		ok := true
		for _, field := range keys {
			if !matches(e, field, f[field]) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func matches(e models.Entity, field string, want any) bool {
	if b, ok := e.(*models.Book); ok && field == store.FieldGenre {
		if ids, ok := store.IDs(want); ok {
			for _, id := range ids {
				if b.HasGenre(id) {
					return true
				}
			}
			return false
		}
		id, ok := want.(int)
		return ok && b.HasGenre(id)
	}

	got, _ := fieldValue(e, field)
	if ids, ok := store.IDs(want); ok {
		n, isInt := got.(int)
		if !isInt {
			return false
		}
		for _, id := range ids {
			if id == n {
				return true
			}
		}
		return false
	}
	return compare(got, want) == 0
}

func (s *Store) Insert(ctx context.Context, e models.Entity) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.WithStack(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	kind := e.EntityKind()
	rows, err := s.table(kind)
	if err != nil {
		return 0, err
	}
	s.nextID[kind]++
	id := s.nextID[kind]

	e.SetEntityID(id)
	e.Stamps().Touch(time.Now())
	if b, ok := e.(*models.Book); ok && b.GenreIDs == nil {
		b.GenreIDs = []int{}
	}
	rows[id] = clone(e)
	return id, nil
}

func (s *Store) Replace(ctx context.Context, id int, e models.Entity) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	kind := e.EntityKind()
	rows, err := s.table(kind)
	if err != nil {
		return err
	}
	existing, ok := rows[id]
	if !ok {
		return errcodes.NotFound(kind.Label())
	}

	e.SetEntityID(id)
	stamps := e.Stamps()
	stamps.CreatedAt = existing.Stamps().CreatedAt
	stamps.UpdatedAt = time.Now()
	if b, ok := e.(*models.Book); ok && b.GenreIDs == nil {
		b.GenreIDs = []int{}
	}
	rows[id] = clone(e)
	return nil
}

func (s *Store) DeleteByID(ctx context.Context, kind models.Kind, id int) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.table(kind)
	if err != nil {
		return err
	}
	delete(rows, id)
	return nil
}
