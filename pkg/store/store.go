// Package store defines the persistence contract the catalog is written
// against. Implementations live in the subpackages.
package store

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/models"
)

// Store is the only shared mutable resource in the service. It offers no
// joins. Cross-entity expansion is done by the caller through separate
// lookups.
type Store interface {
	// FindByID returns errcodes.NotFound when id has no record.
	FindByID(ctx context.Context, kind models.Kind, id int) (models.Entity, error)
	FindMany(ctx context.Context, kind models.Kind, q Query) ([]models.Entity, error)
	CountWhere(ctx context.Context, kind models.Kind, f Filter) (int, error)
	// Insert assigns the new id to e and returns it.
	Insert(ctx context.Context, e models.Entity) (int, error)
	// Replace overwrites the record with the given id. It returns
	// errcodes.NotFound when there is nothing to replace.
	Replace(ctx context.Context, id int, e models.Entity) error
	// DeleteByID succeeds whether or not the record existed.
	DeleteByID(ctx context.Context, kind models.Kind, id int) error
	Close() error
}

// Filter is a conjunction of predicates keyed by logical field name. An int
// or string value is an equality test and an []int value is a membership
// test. On books, "genre" matches when the given genre is one of the book's
// genres.
type Filter map[string]any

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type Sort struct {
	Field     string
	Direction SortDirection
}

// Query narrows a FindMany call. Fields is a projection hint that
// implementations may ignore; the id is always populated.
type Query struct {
	Filter Filter
	Fields []string
	Sort   []Sort
}

// Asc is shorthand for an ascending sort on field.
func Asc(field string) Sort {
	return Sort{Field: field, Direction: SortAsc}
}

// Find is FindByID with the record asserted to its concrete type.
func Find[T models.Entity](ctx context.Context, s Store, kind models.Kind, id int) (T, error) {
	var zero T
	e, err := s.FindByID(ctx, kind, id)
	if err != nil {
		return zero, err
	}
	t, ok := e.(T)
	if !ok {
		return zero, errors.Errorf("store returned %T for %s", e, kind)
	}
	return t, nil
}

// FindAll is FindMany with the records asserted to their concrete type.
func FindAll[T models.Entity](ctx context.Context, s Store, kind models.Kind, q Query) ([]T, error) {
	entities, err := s.FindMany(ctx, kind, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(entities))
	for _, e := range entities {
		t, ok := e.(T)
		if !ok {
			return nil, errors.Errorf("store returned %T for %s", e, kind)
		}
		out = append(out, t)
	}
	return out, nil
}

// Unavailable wraps an infrastructure failure exactly once. Errors that
// already carry an errcodes code pass through unchanged.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	var ec *errcodes.Error
	if errors.As(err, &ec) {
		return err
	}
	return errcodes.StoreUnavailable(errors.WithStack(err))
}
