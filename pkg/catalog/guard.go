package catalog

import (
	"context"

	"github.com/shishobooks/locallibrary/pkg/fanout"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/store"
)

type Outcome string

const (
	// OutcomeAllowed is only reported by CheckDelete: nothing references
	// the target.
	OutcomeAllowed  Outcome = "allowed"
	OutcomeDeleted  Outcome = "deleted"
	OutcomeBlocked  Outcome = "blocked"
	OutcomeNotFound Outcome = "not_found"
)

type DeleteResult struct {
	Outcome Outcome
	// Target is nil when the outcome is OutcomeNotFound.
	Target models.Entity
	// Dependents are the records blocking the delete, grouped in the order
	// the dependencies were declared.
	Dependents []models.Entity
}

const targetKey = "target"

// CheckDelete looks up the target and everything that references it in one
// fan-out.
func (r *Resource[T]) CheckDelete(ctx context.Context, id int) (*DeleteResult, error) {
	g := fanout.New(ctx, r.fanout)
	g.Go(targetKey, fanout.Optional(func(ctx context.Context) (any, error) {
		return r.store.FindByID(ctx, r.def.Kind, id)
	}))
	for _, dep := range r.def.Dependents {
		dep := dep
		g.Go(dependentsKey(dep), func(ctx context.Context) (any, error) {
			return r.store.FindMany(ctx, dep.Kind, store.Query{
				Filter: store.Filter{dep.Field: id},
				Sort:   dep.Sort,
			})
		})
	}

	res, err := g.Wait()
	if err != nil {
		return nil, err
	}

	target := fanout.Value[models.Entity](res, targetKey)
	if target == nil {
		return &DeleteResult{Outcome: OutcomeNotFound, Dependents: []models.Entity{}}, nil
	}

	out := &DeleteResult{Outcome: OutcomeAllowed, Target: target, Dependents: []models.Entity{}}
	for _, dep := range r.def.Dependents {
		out.Dependents = append(out.Dependents, fanout.Value[[]models.Entity](res, dependentsKey(dep))...)
	}
	if len(out.Dependents) > 0 {
		out.Outcome = OutcomeBlocked
	}
	return out, nil
}

// Delete removes the record when nothing references it. A missing target is
// reported as OutcomeNotFound, not as an error.
//
// The check and the delete are separate store calls. A dependent inserted
// between the two is not seen, and the delete goes ahead.
func (r *Resource[T]) Delete(ctx context.Context, id int) (*DeleteResult, error) {
	res, err := r.CheckDelete(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Outcome != OutcomeAllowed {
		return res, nil
	}

	if err := r.store.DeleteByID(ctx, r.def.Kind, id); err != nil {
		return nil, err
	}
	res.Outcome = OutcomeDeleted
	return res, nil
}

func dependentsKey(dep Dependency) string {
	return "dependents:" + string(dep.Kind) + ":" + dep.Field
}
