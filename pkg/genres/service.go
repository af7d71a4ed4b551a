package genres

import (
	"context"

	"github.com/shishobooks/locallibrary/pkg/catalog"
	"github.com/shishobooks/locallibrary/pkg/fanout"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/pipeline"
	"github.com/shishobooks/locallibrary/pkg/store"
)

type Service struct {
	*catalog.Resource[*models.Genre]
}

func NewService(s store.Store, p *pipeline.Pipeline, opts fanout.Options) *Service {
	return &Service{catalog.New(s, p, opts, Definition())}
}

// Definition describes genres to the catalog. A genre is referenced by the
// books tagged with it.
func Definition() catalog.Definition[*models.Genre] {
	return catalog.Definition[*models.Genre]{
		Kind:   models.KindGenre,
		Schema: schema,
		Build: func(v pipeline.Values) (*models.Genre, error) {
			return &models.Genre{Name: v.String("name")}, nil
		},
		Dependents: []catalog.Dependency{
			{Kind: models.KindBook, Field: store.FieldGenre, Sort: []store.Sort{store.Asc("title")}},
		},
		FindExisting: findByName,
	}
}

// findByName matches on the exact, already escaped name. Renames are not
// checked, so an update can still produce two genres with one name.
func findByName(ctx context.Context, s store.Store, g *models.Genre) (*models.Genre, bool, error) {
	matches, err := store.FindAll[*models.Genre](ctx, s, models.KindGenre, store.Query{
		Filter: store.Filter{"name": g.Name},
		Sort:   []store.Sort{store.Asc("id")},
	})
	if err != nil || len(matches) == 0 {
		return nil, false, err
	}
	return matches[0], true, nil
}

func (svc *Service) ListGenres(ctx context.Context) ([]*models.Genre, error) {
	return svc.List(ctx, store.Query{Sort: []store.Sort{store.Asc("name")}})
}

type Detail struct {
	Genre *models.Genre
	Books []*models.Book
}

// RetrieveDetail loads a genre together with the books tagged with it.
func (svc *Service) RetrieveDetail(ctx context.Context, id int) (*Detail, error) {
	g := fanout.New(ctx, svc.FanoutOptions())
	g.Go("genre", func(ctx context.Context) (any, error) {
		return svc.Retrieve(ctx, id)
	})
	g.Go("genre_books", func(ctx context.Context) (any, error) {
		return store.FindAll[*models.Book](ctx, svc.Store(), models.KindBook, store.Query{
			Filter: store.Filter{store.FieldGenre: id},
			Fields: []string{"id", "title", "summary"},
			Sort:   []store.Sort{store.Asc("title")},
		})
	})

	res, err := g.Wait()
	if err != nil {
		return nil, err
	}
	return &Detail{
		Genre: fanout.Value[*models.Genre](res, "genre"),
		Books: fanout.Value[[]*models.Book](res, "genre_books"),
	}, nil
}
