// Package catalog implements create, update, read and guarded delete once
// for every entity kind. Each kind supplies a Definition: its field rules,
// how sanitized values become a record, and which other kinds reference it.
package catalog

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/fanout"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/pipeline"
	"github.com/shishobooks/locallibrary/pkg/store"
)

// Dependency names a kind whose records point at the defining kind through
// Field. A record with live dependents can't be deleted.
type Dependency struct {
	Kind  models.Kind
	Field string
	// Sort orders the dependents reported back to the caller.
	Sort []store.Sort
}

type Definition[T models.Entity] struct {
	Kind   models.Kind
	Schema pipeline.Schema
	// Build turns sanitized values into an unsaved record. Values have
	// already passed the schema, so an error here is a bug.
	Build      func(v pipeline.Values) (T, error)
	Dependents []Dependency
	// FindExisting, when set, runs before a create. A match is returned in
	// place of inserting a duplicate.
	FindExisting func(ctx context.Context, s store.Store, record T) (T, bool, error)
}

type Resource[T models.Entity] struct {
	def      Definition[T]
	store    store.Store
	pipeline *pipeline.Pipeline
	fanout   fanout.Options
}

func New[T models.Entity](s store.Store, p *pipeline.Pipeline, opts fanout.Options, def Definition[T]) *Resource[T] {
	return &Resource[T]{def: def, store: s, pipeline: p, fanout: opts}
}

func (r *Resource[T]) Kind() models.Kind {
	return r.def.Kind
}

func (r *Resource[T]) Store() store.Store {
	return r.store
}

// FanoutOptions are the options lookups on behalf of this resource run with.
func (r *Resource[T]) FanoutOptions() fanout.Options {
	return r.fanout
}

// WriteResult is the outcome of a create or update. When Failed is set the
// record was not written and Errors and PreservedInput say why. Otherwise
// Record holds what was stored.
type WriteResult[T models.Entity] struct {
	Failed         bool
	Errors         []pipeline.FieldError
	PreservedInput pipeline.Input
	Record         T
	// Existing is set when a create matched a record that was already there.
	Existing bool
}

func (r *Resource[T]) Create(ctx context.Context, in pipeline.Input) (*WriteResult[T], error) {
	res, record, err := r.run(ctx, in)
	if err != nil || res.Failed {
		return res, err
	}

	if r.def.FindExisting != nil {
		existing, ok, err := r.def.FindExisting(ctx, r.store, record)
		if err != nil {
			return nil, err
		}
		if ok {
			res.Record = existing
			res.Existing = true
			return res, nil
		}
	}

	if _, err := r.store.Insert(ctx, record); err != nil {
		return nil, err
	}
	res.Record = record
	return res, nil
}

// Update replaces the record with the given id. The id comes from the
// caller, never from the input, so the write can't land on another record.
func (r *Resource[T]) Update(ctx context.Context, id int, in pipeline.Input) (*WriteResult[T], error) {
	if _, err := r.store.FindByID(ctx, r.def.Kind, id); err != nil {
		return nil, err
	}

	res, record, err := r.run(ctx, in)
	if err != nil || res.Failed {
		return res, err
	}

	record.SetEntityID(id)
	if err := r.store.Replace(ctx, id, record); err != nil {
		return nil, err
	}
	res.Record = record
	return res, nil
}

// run validates and sanitizes in, and builds the record when it passes.
func (r *Resource[T]) run(ctx context.Context, in pipeline.Input) (*WriteResult[T], T, error) {
	var zero T
	out, err := r.pipeline.Run(ctx, r.def.Schema, in)
	if err != nil {
		return nil, zero, err
	}

	res := &WriteResult[T]{PreservedInput: out.PreservedInput}
	if out.Failed {
		res.Failed = true
		res.Errors = out.Errors
		return res, zero, nil
	}

	record, err := r.def.Build(out.Values)
	if err != nil {
		return nil, zero, errors.Wrapf(err, "build %s", r.def.Kind)
	}
	return res, record, nil
}

func (r *Resource[T]) Retrieve(ctx context.Context, id int) (T, error) {
	return store.Find[T](ctx, r.store, r.def.Kind, id)
}

func (r *Resource[T]) List(ctx context.Context, q store.Query) ([]T, error) {
	return store.FindAll[T](ctx, r.store, r.def.Kind, q)
}
