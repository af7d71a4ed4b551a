package catalog

import (
	"context"
	"strconv"
	"testing"

	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/fanout"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/pipeline"
	"github.com/shishobooks/locallibrary/pkg/store"
	"github.com/shishobooks/locallibrary/pkg/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memstore.New()
	genres := newGenres(t, s)

	res, err := genres.Create(ctx, pipeline.Input{"name": "  Fantasy "})
	require.NoError(t, err)
	require.False(t, res.Failed)
	assert.Equal(t, "Fantasy", res.Record.Name)
	assert.Positive(t, res.Record.ID)
	assert.Equal(t, "/catalog/genre/"+itoa(res.Record.ID), res.Record.Derived()["url"])

	stored, err := genres.Retrieve(ctx, res.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fantasy", stored.Name)
}

func TestCreate_ValidationFailureWritesNothing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memstore.New()
	genres := newGenres(t, s)

	res, err := genres.Create(ctx, pipeline.Input{"name": ""})
	require.NoError(t, err)
	require.True(t, res.Failed)
	assert.Equal(t, []pipeline.FieldError{{Field: "name", Message: "Genre name required"}}, res.Errors)
	assert.Equal(t, pipeline.Input{"name": ""}, res.PreservedInput)
	assert.Nil(t, res.Record)

	n, err := s.CountWhere(ctx, models.KindGenre, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreate_ReturnsExistingMatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, seed := seeded(t)

	def := genreDefinition()
	def.FindExisting = func(_ context.Context, _ store.Store, g *models.Genre) (*models.Genre, bool, error) {
		if g.Name == "Fantasy" {
			return &models.Genre{ID: seed.Fantasy, Name: "Fantasy"}, true, nil
		}
		return nil, false, nil
	}
	genres := New(s, pipeline.New(), fanout.Options{}, def)

	res, err := genres.Create(ctx, pipeline.Input{"name": "Fantasy"})
	require.NoError(t, err)
	assert.True(t, res.Existing)
	assert.Equal(t, seed.Fantasy, res.Record.ID)

	n, err := s.CountWhere(ctx, models.KindGenre, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestUpdate_PinsIdentity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, seed := seeded(t)
	genres := newGenres(t, s)

	res, err := genres.Update(ctx, seed.Poetry, pipeline.Input{"id": 999, "name": "Verse"})
	require.NoError(t, err)
	require.False(t, res.Failed)
	assert.Equal(t, seed.Poetry, res.Record.ID)

	g, err := genres.Retrieve(ctx, seed.Poetry)
	require.NoError(t, err)
	assert.Equal(t, "Verse", g.Name)

	_, err = genres.Retrieve(ctx, 999)
	requireCode(t, err, errcodes.CodeNotFound)
}

func TestUpdate_MissingRecord(t *testing.T) {
	t.Parallel()
	s := memstore.New()
	genres := newGenres(t, s)

	_, err := genres.Update(context.Background(), 42, pipeline.Input{"name": "Verse"})
	requireCode(t, err, errcodes.CodeNotFound)
}

func TestUpdate_ValidationFailureKeepsRecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, seed := seeded(t)
	genres := newGenres(t, s)

	res, err := genres.Update(ctx, seed.Poetry, pipeline.Input{"name": "   "})
	require.NoError(t, err)
	require.True(t, res.Failed)
	assert.Equal(t, pipeline.Input{"name": "   "}, res.PreservedInput)

	g, err := genres.Retrieve(ctx, seed.Poetry)
	require.NoError(t, err)
	assert.Equal(t, "Poetry", g.Name)
}

func TestList(t *testing.T) {
	t.Parallel()
	s, _ := seeded(t)
	genres := newGenres(t, s)

	list, err := genres.List(context.Background(), store.Query{Sort: []store.Sort{store.Asc("name")}})
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, g := range list {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"Fantasy", "Poetry", "Science Fiction"}, names)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
