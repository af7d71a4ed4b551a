// Package bunstore is the SQLite store, built on bun.
package bunstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/store"
	"github.com/uptrace/bun"
)

type Store struct {
	db *bun.DB
}

var _ store.Store = (*Store)(nil)

func New(db *bun.DB) *Store {
	return &Store{db}
}

func (s *Store) Close() error {
	return errors.WithStack(s.db.Close())
}

func (s *Store) FindByID(ctx context.Context, kind models.Kind, id int) (models.Entity, error) {
	e, err := models.New(kind)
	if err != nil {
		return nil, err
	}

	err = s.db.
		NewSelect().
		Model(e).
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound(kind.Label())
		}
		return nil, store.Unavailable(err)
	}

	if b, ok := e.(*models.Book); ok {
		if err := loadGenreIDs(ctx, s.db, []*models.Book{b}); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (s *Store) FindMany(ctx context.Context, kind models.Kind, q store.Query) ([]models.Entity, error) {
	switch kind {
	case models.KindAuthor:
		return findMany[*models.Author](ctx, s, kind, q)
	case models.KindGenre:
		return findMany[*models.Genre](ctx, s, kind, q)
	case models.KindBook:
		entities, err := findMany[*models.Book](ctx, s, kind, q)
		if err != nil {
			return nil, err
		}
		books := make([]*models.Book, 0, len(entities))
		for _, e := range entities {
			books = append(books, e.(*models.Book))
		}
		if err := loadGenreIDs(ctx, s.db, books); err != nil {
			return nil, err
		}
		return entities, nil
	case models.KindBookInstance:
		return findMany[*models.BookInstance](ctx, s, kind, q)
	}
	return nil, errors.Errorf("unknown entity kind %q", kind)
}

func findMany[T models.Entity](ctx context.Context, s *Store, kind models.Kind, q store.Query) ([]models.Entity, error) {
	var rows []T

	sq := s.db.
		NewSelect().
		Model(&rows)

	sq, empty, err := s.where(sq, kind, q.Filter)
	if err != nil {
		return nil, err
	}
	if empty {
		return []models.Entity{}, nil
	}

	if len(q.Fields) > 0 {
		cols := []string{"id"}
		for _, field := range q.Fields {
			if kind == models.KindBook && field == store.FieldGenre {
				continue
			}
			col, err := store.Column(kind, field)
			if err != nil {
				return nil, err
			}
			if col != "id" {
				cols = append(cols, col)
			}
		}
		sq = sq.Column(cols...)
	}

	for _, srt := range q.Sort {
		col, err := store.Column(kind, srt.Field)
		if err != nil {
			return nil, err
		}
		if srt.Direction == store.SortDesc {
			sq = sq.OrderExpr("?TableAlias.? DESC", bun.Ident(col))
		} else {
			sq = sq.OrderExpr("?TableAlias.? ASC", bun.Ident(col))
		}
	}
	sq = sq.OrderExpr("?TableAlias.id ASC")

	if err := sq.Scan(ctx); err != nil {
		return nil, store.Unavailable(err)
	}

	out := make([]models.Entity, 0, len(rows))
	for _, r := range rows {
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) CountWhere(ctx context.Context, kind models.Kind, f store.Filter) (int, error) {
	e, err := models.New(kind)
	if err != nil {
		return 0, err
	}

	sq := s.db.
		NewSelect().
		Model(e)

	sq, empty, err := s.where(sq, kind, f)
	if err != nil {
		return 0, err
	}
	if empty {
		return 0, nil
	}

	count, err := sq.Count(ctx)
	if err != nil {
		return 0, store.Unavailable(err)
	}
	return count, nil
}

// where applies f to sq. The bool is true when the filter can match nothing,
// in which case the query should not be run at all.
func (s *Store) where(sq *bun.SelectQuery, kind models.Kind, f store.Filter) (*bun.SelectQuery, bool, error) {
	for _, field := range f.Keys() {
		v := f[field]

		if kind == models.KindBook && field == store.FieldGenre {
			sub := s.db.
				NewSelect().
				Model((*models.BookGenre)(nil)).
				ColumnExpr("bg.book_id")
			if ids, ok := store.IDs(v); ok {
				if len(ids) == 0 {
					return sq, true, nil
				}
				sub = sub.Where("bg.genre_id IN (?)", bun.In(ids))
			} else {
				sub = sub.Where("bg.genre_id = ?", v)
			}
			sq = sq.Where("?TableAlias.id IN (?)", sub)
			continue
		}

		col, err := store.Column(kind, field)
		if err != nil {
			return sq, false, err
		}
		if ids, ok := store.IDs(v); ok {
			if len(ids) == 0 {
				return sq, true, nil
			}
			sq = sq.Where("?TableAlias.? IN (?)", bun.Ident(col), bun.In(ids))
			continue
		}
		sq = sq.Where("?TableAlias.? = ?", bun.Ident(col), v)
	}
	return sq, false, nil
}

func (s *Store) Insert(ctx context.Context, e models.Entity) (int, error) {
	e.Stamps().Touch(time.Now())

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(e).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if b, ok := e.(*models.Book); ok {
			return replaceGenres(ctx, tx, b)
		}
		return nil
	})
	if err != nil {
		return 0, store.Unavailable(err)
	}
	return e.EntityID(), nil
}

func (s *Store) Replace(ctx context.Context, id int, e models.Entity) error {
	kind := e.EntityKind()
	e.SetEntityID(id)

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		existing, err := models.New(kind)
		if err != nil {
			return err
		}
		err = tx.
			NewSelect().
			Model(existing).
			Column("created_at").
			Where("?TableAlias.id = ?", id).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound(kind.Label())
			}
			return errors.WithStack(err)
		}

		stamps := e.Stamps()
		stamps.CreatedAt = existing.Stamps().CreatedAt
		stamps.UpdatedAt = time.Now()

		_, err = tx.
			NewUpdate().
			Model(e).
			ExcludeColumn("created_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if b, ok := e.(*models.Book); ok {
			return replaceGenres(ctx, tx, b)
		}
		return nil
	})
	return store.Unavailable(err)
}

func (s *Store) DeleteByID(ctx context.Context, kind models.Kind, id int) error {
	e, err := models.New(kind)
	if err != nil {
		return err
	}

	err = s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if kind == models.KindBook {
			_, err := tx.NewDelete().
				Model((*models.BookGenre)(nil)).
				Where("book_id = ?", id).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		_, err := tx.NewDelete().
			Model(e).
			Where("?TableAlias.id = ?", id).
			Exec(ctx)
		return errors.WithStack(err)
	})
	return store.Unavailable(err)
}

func replaceGenres(ctx context.Context, tx bun.Tx, book *models.Book) error {
	_, err := tx.NewDelete().
		Model((*models.BookGenre)(nil)).
		Where("book_id = ?", book.ID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	if len(book.GenreIDs) == 0 {
		book.GenreIDs = []int{}
		return nil
	}

	links := make([]*models.BookGenre, 0, len(book.GenreIDs))
	for _, genreID := range book.GenreIDs {
		links = append(links, &models.BookGenre{BookID: book.ID, GenreID: genreID})
	}
	_, err = tx.NewInsert().
		Model(&links).
		Exec(ctx)
	return errors.WithStack(err)
}

func loadGenreIDs(ctx context.Context, db bun.IDB, books []*models.Book) error {
	if len(books) == 0 {
		return nil
	}
	ids := make([]int, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}

	var links []*models.BookGenre
	err := db.NewSelect().
		Model(&links).
		Where("bg.book_id IN (?)", bun.In(ids)).
		Order("bg.id ASC").
		Scan(ctx)
	if err != nil {
		return store.Unavailable(err)
	}

	byBook := make(map[int][]int, len(books))
	for _, l := range links {
		byBook[l.BookID] = append(byBook[l.BookID], l.GenreID)
	}
	for _, b := range books {
		b.GenreIDs = byBook[b.ID]
		if b.GenreIDs == nil {
			b.GenreIDs = []int{}
		}
	}
	return nil
}
