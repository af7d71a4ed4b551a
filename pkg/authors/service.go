package authors

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/catalog"
	"github.com/shishobooks/locallibrary/pkg/fanout"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/pipeline"
	"github.com/shishobooks/locallibrary/pkg/store"
)

type Service struct {
	*catalog.Resource[*models.Author]
}

func NewService(s store.Store, p *pipeline.Pipeline, opts fanout.Options) *Service {
	return &Service{catalog.New(s, p, opts, Definition())}
}

// Definition describes authors to the catalog. An author is referenced by
// the books they wrote.
//
// A death date before the birth date is accepted as entered.
func Definition() catalog.Definition[*models.Author] {
	return catalog.Definition[*models.Author]{
		Kind:   models.KindAuthor,
		Schema: schema,
		Build:  build,
		Dependents: []catalog.Dependency{
			{Kind: models.KindBook, Field: "author", Sort: []store.Sort{store.Asc("title")}},
		},
	}
}

func build(v pipeline.Values) (*models.Author, error) {
	birth, err := v.Date("date_of_birth")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	death, err := v.Date("date_of_death")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &models.Author{
		FirstName:   v.String("first_name"),
		FamilyName:  v.String("family_name"),
		DateOfBirth: birth,
		DateOfDeath: death,
	}, nil
}

func (svc *Service) ListAuthors(ctx context.Context) ([]*models.Author, error) {
	return svc.List(ctx, store.Query{Sort: []store.Sort{store.Asc("family_name")}})
}

type Detail struct {
	Author *models.Author
	Books  []*models.Book
}

// RetrieveDetail loads an author together with their books.
func (svc *Service) RetrieveDetail(ctx context.Context, id int) (*Detail, error) {
	g := fanout.New(ctx, svc.FanoutOptions())
	g.Go("author", func(ctx context.Context) (any, error) {
		return svc.Retrieve(ctx, id)
	})
	g.Go("authors_books", func(ctx context.Context) (any, error) {
		return store.FindAll[*models.Book](ctx, svc.Store(), models.KindBook, store.Query{
			Filter: store.Filter{"author": id},
			Fields: []string{"id", "title", "summary"},
			Sort:   []store.Sort{store.Asc("title")},
		})
	})

	res, err := g.Wait()
	if err != nil {
		return nil, err
	}
	return &Detail{
		Author: fanout.Value[*models.Author](res, "author"),
		Books:  fanout.Value[[]*models.Book](res, "authors_books"),
	}, nil
}
