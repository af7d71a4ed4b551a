package catalog

import (
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView_MarshalJSON(t *testing.T) {
	t.Parallel()

	book := &models.Book{ID: 4, Title: "Dune", AuthorID: 2, GenreIDs: []int{1}}
	author := &models.Author{ID: 2, FirstName: "Frank", FamilyName: "Herbert"}
	v := NewView(book).With("author", NewView(author))

	raw, err := json.Marshal(v)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "Dune", got["title"])
	assert.Equal(t, map[string]any{"url": "/catalog/book/4"}, got["derived"])

	rel, ok := got["author"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Herbert", rel["family_name"])
	assert.Equal(t, "Herbert,Frank", rel["derived"].(map[string]any)["name"])
}

func TestNewView_Nil(t *testing.T) {
	t.Parallel()

	var missing *models.Author
	assert.Nil(t, NewView(missing))
	assert.Nil(t, NewView(nil))

	raw, err := json.Marshal(map[string]any{"author": NewView(missing)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"author":null}`, string(raw))
}

func TestViews_NeverNil(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(Views([]*models.Genre(nil)))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}
