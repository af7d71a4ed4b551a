package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerived_UnsavedRecordsHaveNoURL(t *testing.T) {
	t.Parallel()

	for _, kind := range Kinds {
		e, err := New(kind)
		require.NoError(t, err)
		_, ok := e.Derived()["url"]
		assert.False(t, ok, "unsaved %s should not have a url", kind)
	}
}

func TestDerived_SavedRecordsHaveURL(t *testing.T) {
	t.Parallel()

	for _, kind := range Kinds {
		e, err := New(kind)
		require.NoError(t, err)
		e.SetEntityID(7)
		assert.Equal(t, 7, e.EntityID())
		assert.Equal(t, "/catalog/"+string(kind)+"/7", e.Derived()["url"])
	}
}

func TestAuthorDerived(t *testing.T) {
	t.Parallel()

	birth := time.Date(1947, time.September, 21, 0, 0, 0, 0, time.UTC)
	a := &Author{ID: 3, FirstName: "Stephen", FamilyName: "King", DateOfBirth: &birth}

	d := a.Derived()
	assert.Equal(t, "King,Stephen", d["name"])
	assert.Equal(t, "/catalog/author/3", d["url"])
	assert.Equal(t, "September 21st, 1947 - ", d["lifespan"])
}

func TestBookInstanceDerived(t *testing.T) {
	t.Parallel()

	bi := &BookInstance{DueBack: time.Date(2020, time.October, 22, 9, 30, 0, 0, time.UTC)}

	d := bi.Derived()
	assert.Equal(t, "October 22nd, 2020", d["due_back_formatted"])
	assert.Equal(t, "2020-10-22", d["due_back_yyyy_mm_dd"])
	assert.NotContains(t, d, "url")
}

func TestNew_UnknownKind(t *testing.T) {
	t.Parallel()

	_, err := New(Kind("shelf"))
	require.Error(t, err)
}

func TestBookHasGenre(t *testing.T) {
	t.Parallel()

	b := &Book{GenreIDs: []int{2, 5}}
	assert.True(t, b.HasGenre(5))
	assert.False(t, b.HasGenre(3))
}

func TestIsValidBookInstanceStatus(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidBookInstanceStatus("Loaned"))
	assert.False(t, IsValidBookInstanceStatus("loaned"))
}
