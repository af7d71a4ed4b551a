// Package home serves the catalog's landing summary.
package home

import (
	"context"

	"github.com/shishobooks/locallibrary/pkg/fanout"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/store"
)

type Counts struct {
	Books                  int `json:"book_count"`
	BookInstances          int `json:"book_instance_count"`
	BookInstancesAvailable int `json:"book_instance_available_count"`
	Authors                int `json:"author_count"`
	Genres                 int `json:"genre_count"`
}

type Service struct {
	store store.Store
	opts  fanout.Options
}

func NewService(s store.Store, opts fanout.Options) *Service {
	return &Service{store: s, opts: opts}
}

// RetrieveCounts runs the five counts concurrently. Any failed count fails
// the whole summary.
func (svc *Service) RetrieveCounts(ctx context.Context) (*Counts, error) {
	g := fanout.New(ctx, svc.opts)
	count := func(kind models.Kind, f store.Filter) fanout.Func {
		return func(ctx context.Context) (any, error) {
			return svc.store.CountWhere(ctx, kind, f)
		}
	}
	g.Go("book_count", count(models.KindBook, nil))
	g.Go("book_instance_count", count(models.KindBookInstance, nil))
	g.Go("book_instance_available_count", count(models.KindBookInstance, store.Filter{
		"status": models.BookInstanceStatusAvailable,
	}))
	g.Go("author_count", count(models.KindAuthor, nil))
	g.Go("genre_count", count(models.KindGenre, nil))

	res, err := g.Wait()
	if err != nil {
		return nil, err
	}
	return &Counts{
		Books:                  fanout.Value[int](res, "book_count"),
		BookInstances:          fanout.Value[int](res, "book_instance_count"),
		BookInstancesAvailable: fanout.Value[int](res, "book_instance_available_count"),
		Authors:                fanout.Value[int](res, "author_count"),
		Genres:                 fanout.Value[int](res, "genre_count"),
	}, nil
}
