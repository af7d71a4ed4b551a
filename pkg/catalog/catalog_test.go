package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/fanout"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/pipeline"
	"github.com/shishobooks/locallibrary/pkg/store"
	"github.com/shishobooks/locallibrary/pkg/store/memstore"
	"github.com/shishobooks/locallibrary/pkg/store/storetest"
	"github.com/stretchr/testify/require"
)

func genreDefinition() Definition[*models.Genre] {
	return Definition[*models.Genre]{
		Kind: models.KindGenre,
		Schema: pipeline.Schema{Fields: []pipeline.Field{{
			Name:     "name",
			Rules:    []pipeline.Rule{pipeline.Required("Genre name required")},
			Sanitize: "trim,escape",
		}}},
		Build: func(v pipeline.Values) (*models.Genre, error) {
			return &models.Genre{Name: v.String("name")}, nil
		},
		Dependents: []Dependency{
			{Kind: models.KindBook, Field: store.FieldGenre, Sort: []store.Sort{store.Asc("title")}},
		},
	}
}

func newGenres(t *testing.T, s store.Store) *Resource[*models.Genre] {
	t.Helper()
	return New(s, pipeline.New(), fanout.Options{OperationTimeout: time.Second}, genreDefinition())
}

func seeded(t *testing.T) (*memstore.Store, storetest.Seed) {
	t.Helper()
	s := memstore.New()
	t.Cleanup(func() { _ = s.Close() })
	return s, storetest.SeedCatalog(t, s)
}

// brokenStore fails every FindMany on one kind.
type brokenStore struct {
	store.Store
	kind models.Kind
}

func (s *brokenStore) FindMany(ctx context.Context, kind models.Kind, q store.Query) ([]models.Entity, error) {
	if kind == s.kind {
		return nil, errcodes.StoreUnavailable(errors.New("connection refused"))
	}
	return s.Store.FindMany(ctx, kind, q)
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errcodes.HasCode(err, code), "expected %s, got %v", code, err)
}

func memstoreFor(t *testing.T) *memstore.Store {
	t.Helper()
	s := memstore.New()
	t.Cleanup(func() { _ = s.Close() })
	return s
}
