// Package pgstore is the PostgreSQL store. SQL is built with goqu and run on
// a pgx connection pool.
package pgstore

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/store"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool}
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) FindByID(ctx context.Context, kind models.Kind, id int) (models.Entity, error) {
	st, err := buildSelectByID(kind, id)
	if err != nil {
		return nil, err
	}
	e, err := models.New(kind)
	if err != nil {
		return nil, err
	}

	err = s.pool.QueryRow(ctx, st.sql, st.args...).Scan(scanTargets(e)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errcodes.NotFound(kind.Label())
		}
		return nil, store.Unavailable(err)
	}

	if b, ok := e.(*models.Book); ok {
		if err := loadGenreIDs(ctx, s.pool, []*models.Book{b}); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (s *Store) FindMany(ctx context.Context, kind models.Kind, q store.Query) ([]models.Entity, error) {
	st, empty, err := buildSelectMany(kind, q)
	if err != nil {
		return nil, err
	}
	if empty {
		return []models.Entity{}, nil
	}

	rows, err := s.pool.Query(ctx, st.sql, st.args...)
	if err != nil {
		return nil, store.Unavailable(err)
	}
	defer rows.Close()

	out := []models.Entity{}
	var books []*models.Book
	for rows.Next() {
		e, err := models.New(kind)
		if err != nil {
			return nil, err
		}
		if err := rows.Scan(scanTargets(e)...); err != nil {
			return nil, store.Unavailable(err)
		}
		if b, ok := e.(*models.Book); ok {
			books = append(books, b)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Unavailable(err)
	}

	if err := loadGenreIDs(ctx, s.pool, books); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CountWhere(ctx context.Context, kind models.Kind, f store.Filter) (int, error) {
	st, empty, err := buildCount(kind, f)
	if err != nil {
		return 0, err
	}
	if empty {
		return 0, nil
	}

	var count int
	if err := s.pool.QueryRow(ctx, st.sql, st.args...).Scan(&count); err != nil {
		return 0, store.Unavailable(err)
	}
	return count, nil
}

func (s *Store) Insert(ctx context.Context, e models.Entity) (int, error) {
	e.Stamps().Touch(time.Now())
	st, err := buildInsert(e)
	if err != nil {
		return 0, err
	}

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var id int
		if err := tx.QueryRow(ctx, st.sql, st.args...).Scan(&id); err != nil {
			return errors.WithStack(err)
		}
		e.SetEntityID(id)
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
	e.SetEntityID(id)
	stamps := e.Stamps()
	stamps.UpdatedAt = time.Now()
	st, err := buildUpdate(id, e)
	if err != nil {
		return err
	}

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var createdAt time.Time
		if err := tx.QueryRow(ctx, st.sql, st.args...).Scan(&createdAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errcodes.NotFound(e.EntityKind().Label())
			}
			return errors.WithStack(err)
		}
		stamps.CreatedAt = createdAt
		if b, ok := e.(*models.Book); ok {
			return replaceGenres(ctx, tx, b)
		}
		return nil
	})
	return store.Unavailable(err)
}

func (s *Store) DeleteByID(ctx context.Context, kind models.Kind, id int) error {
	st, err := buildDelete(kind, id)
	if err != nil {
		return err
	}

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if kind == models.KindBook {
			links, err := buildDeleteGenreLinks(id)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, links.sql, links.args...); err != nil {
				return errors.WithStack(err)
			}
		}
		_, err := tx.Exec(ctx, st.sql, st.args...)
		return errors.WithStack(err)
	})
	return store.Unavailable(err)
}

func replaceGenres(ctx context.Context, q querier, book *models.Book) error {
	st, err := buildDeleteGenreLinks(book.ID)
	if err != nil {
		return err
	}
	if _, err := q.Exec(ctx, st.sql, st.args...); err != nil {
		return errors.WithStack(err)
	}

	if len(book.GenreIDs) == 0 {
		book.GenreIDs = []int{}
		return nil
	}
	st, err = buildInsertGenreLinks(book.ID, book.GenreIDs)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, st.sql, st.args...)
	return errors.WithStack(err)
}

func loadGenreIDs(ctx context.Context, q querier, books []*models.Book) error {
	if len(books) == 0 {
		return nil
	}
	ids := make([]int, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	st, err := buildSelectGenreLinks(ids)
	if err != nil {
		return err
	}

	rows, err := q.Query(ctx, st.sql, st.args...)
	if err != nil {
		return store.Unavailable(err)
	}
	defer rows.Close()

	byBook := make(map[int][]int, len(books))
	for rows.Next() {
		var bookID, genreID int
		if err := rows.Scan(&bookID, &genreID); err != nil {
			return store.Unavailable(err)
		}
		byBook[bookID] = append(byBook[bookID], genreID)
	}
	if err := rows.Err(); err != nil {
		return store.Unavailable(err)
	}

	for _, b := range books {
		b.GenreIDs = byBook[b.ID]
		if b.GenreIDs == nil {
			b.GenreIDs = []int{}
		}
	}
	return nil
}

// scanTargets returns pointers to e's fields in selectColumns order.
func scanTargets(e models.Entity) []any {
	switch r := e.(type) {
	case *models.Author:
		return []any{&r.ID, &r.CreatedAt, &r.UpdatedAt, &r.FirstName, &r.FamilyName, &r.DateOfBirth, &r.DateOfDeath}
	case *models.Genre:
		return []any{&r.ID, &r.CreatedAt, &r.UpdatedAt, &r.Name}
	case *models.Book:
		return []any{&r.ID, &r.CreatedAt, &r.UpdatedAt, &r.Title, &r.Summary, &r.ISBN, &r.AuthorID}
	case *models.BookInstance:
		return []any{&r.ID, &r.CreatedAt, &r.UpdatedAt, &r.BookID, &r.Imprint, &r.Status, &r.DueBack}
	}
	return nil
}
