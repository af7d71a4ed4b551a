package pgstore

import (
	"context"

	"github.com/pkg/errors"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS authors (
		id SERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		first_name TEXT NOT NULL,
		family_name TEXT NOT NULL,
		date_of_birth TIMESTAMPTZ,
		date_of_death TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS genres (
		id SERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		name TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_genres_name ON genres (name)`,
	`CREATE TABLE IF NOT EXISTS books (
		id SERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		title TEXT NOT NULL,
		summary TEXT NOT NULL,
		isbn TEXT NOT NULL,
		author_id INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_books_author_id ON books (author_id)`,
	`CREATE TABLE IF NOT EXISTS book_genres (
		id SERIAL PRIMARY KEY,
		book_id INTEGER NOT NULL,
		genre_id INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_book_genres_book_id ON book_genres (book_id)`,
	`CREATE INDEX IF NOT EXISTS ix_book_genres_genre_id ON book_genres (genre_id)`,
	`CREATE TABLE IF NOT EXISTS book_instances (
		id SERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		book_id INTEGER NOT NULL,
		imprint TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Maintenance',
		due_back TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS ix_book_instances_book_id ON book_instances (book_id)`,
}

// EnsureSchema creates any missing tables. It is safe to run on every start.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, ddl := range schema {
		if _, err := s.pool.Exec(ctx, ddl); err != nil {
			return errors.Wrap(err, "ensure schema")
		}
	}
	return nil
}
