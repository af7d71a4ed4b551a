// Package storetest holds the behavior every store.Store implementation must
// share. Each implementation's tests run it against a fresh store.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises newStore's stores. newStore must return an empty store each
// time it is called.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("InsertAndFind", func(t *testing.T) { testInsertAndFind(t, newStore(t)) })
	t.Run("FindMissing", func(t *testing.T) { testFindMissing(t, newStore(t)) })
	t.Run("BookGenres", func(t *testing.T) { testBookGenres(t, newStore(t)) })
	t.Run("FindManyFilterAndSort", func(t *testing.T) { testFindManyFilterAndSort(t, newStore(t)) })
	t.Run("CountWhere", func(t *testing.T) { testCountWhere(t, newStore(t)) })
	t.Run("Replace", func(t *testing.T) { testReplace(t, newStore(t)) })
	t.Run("DeleteIsIdempotent", func(t *testing.T) { testDelete(t, newStore(t)) })
}

// Seed holds the ids created by SeedCatalog.
type Seed struct {
	Tolkien, Herbert       int
	Fantasy, SciFi, Poetry int
	Hobbit, Dune           int
	HobbitCopy, DuneCopy   int
}

// SeedCatalog inserts a small, known catalog.
func SeedCatalog(t *testing.T, s store.Store) Seed {
	t.Helper()
	var seed Seed

	seed.Tolkien = MustInsert(t, s, &models.Author{FirstName: "John", FamilyName: "Tolkien"})
	seed.Herbert = MustInsert(t, s, &models.Author{FirstName: "Frank", FamilyName: "Herbert"})
	seed.Fantasy = MustInsert(t, s, &models.Genre{Name: "Fantasy"})
	seed.SciFi = MustInsert(t, s, &models.Genre{Name: "Science Fiction"})
	seed.Poetry = MustInsert(t, s, &models.Genre{Name: "Poetry"})
	seed.Hobbit = MustInsert(t, s, &models.Book{
		Title: "The Hobbit", Summary: "There and back again.", ISBN: "9780261102217",
		AuthorID: seed.Tolkien, GenreIDs: []int{seed.Fantasy},
	})
	seed.Dune = MustInsert(t, s, &models.Book{
		Title: "Dune", Summary: "Spice.", ISBN: "9780441013593",
		AuthorID: seed.Herbert, GenreIDs: []int{seed.SciFi, seed.Fantasy},
	})
	seed.HobbitCopy = MustInsert(t, s, &models.BookInstance{
		BookID: seed.Hobbit, Imprint: "Allen & Unwin, 1937", Status: models.BookInstanceStatusAvailable,
		DueBack: time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC),
	})
	seed.DuneCopy = MustInsert(t, s, &models.BookInstance{
		BookID: seed.Dune, Imprint: "Chilton, 1965", Status: models.BookInstanceStatusLoaned,
		DueBack: time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
	})

	return seed
}

// MustInsert inserts e and returns its new id.
func MustInsert(t *testing.T, s store.Store, e models.Entity) int {
	t.Helper()
	id, err := s.Insert(context.Background(), e)
	require.NoError(t, err)
	require.Positive(t, id)
	return id
}

func testInsertAndFind(t *testing.T, s store.Store) {
	ctx := context.Background()
	dob := time.Date(1892, time.January, 3, 0, 0, 0, 0, time.UTC)
	a := &models.Author{FirstName: "John", FamilyName: "Tolkien", DateOfBirth: &dob}

	id, err := s.Insert(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, id, a.ID)
	assert.False(t, a.CreatedAt.IsZero())

	found, err := store.Find[*models.Author](ctx, s, models.KindAuthor, id)
	require.NoError(t, err)
	assert.Equal(t, "John", found.FirstName)
	assert.Equal(t, "Tolkien", found.FamilyName)
	require.NotNil(t, found.DateOfBirth)
	assert.True(t, dob.Equal(*found.DateOfBirth))
	assert.Nil(t, found.DateOfDeath)

	other := MustInsert(t, s, &models.Author{FirstName: "Frank", FamilyName: "Herbert"})
	assert.NotEqual(t, id, other)
}

func testFindMissing(t *testing.T, s store.Store) {
	ctx := context.Background()
	for _, kind := range models.Kinds {
		_, err := s.FindByID(ctx, kind, 999)
		require.Error(t, err)
		assert.True(t, errcodes.IsNotFound(err), "kind %s", kind)
		assert.Equal(t, errcodes.NotFound(kind.Label()), err)
	}
}

func testBookGenres(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed := SeedCatalog(t, s)

	dune, err := store.Find[*models.Book](ctx, s, models.KindBook, seed.Dune)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{seed.SciFi, seed.Fantasy}, dune.GenreIDs)

	noGenres := MustInsert(t, s, &models.Book{Title: "Untagged", Summary: "s", ISBN: "1", AuthorID: seed.Herbert})
	b, err := store.Find[*models.Book](ctx, s, models.KindBook, noGenres)
	require.NoError(t, err)
	assert.Equal(t, []int{}, b.GenreIDs)
}

func testFindManyFilterAndSort(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed := SeedCatalog(t, s)

	genres, err := store.FindAll[*models.Genre](ctx, s, models.KindGenre, store.Query{
		Sort: []store.Sort{store.Asc("name")},
	})
	require.NoError(t, err)
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"Fantasy", "Poetry", "Science Fiction"}, names)

	byAuthor, err := store.FindAll[*models.Book](ctx, s, models.KindBook, store.Query{
		Filter: store.Filter{"author": seed.Tolkien},
	})
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, seed.Hobbit, byAuthor[0].ID)

	byGenre, err := store.FindAll[*models.Book](ctx, s, models.KindBook, store.Query{
		Filter: store.Filter{store.FieldGenre: seed.Fantasy},
		Sort:   []store.Sort{store.Asc("title")},
	})
	require.NoError(t, err)
	require.Len(t, byGenre, 2)
	assert.Equal(t, "Dune", byGenre[0].Title)
	assert.Equal(t, "The Hobbit", byGenre[1].Title)

	inSet, err := store.FindAll[*models.Book](ctx, s, models.KindBook, store.Query{
		Filter: store.Filter{"id": []int{seed.Dune}},
	})
	require.NoError(t, err)
	require.Len(t, inSet, 1)
	assert.Equal(t, seed.Dune, inSet[0].ID)

	none, err := store.FindAll[*models.Book](ctx, s, models.KindBook, store.Query{
		Filter: store.Filter{"id": []int{}},
	})
	require.NoError(t, err)
	assert.Empty(t, none)

	loaned, err := store.FindAll[*models.BookInstance](ctx, s, models.KindBookInstance, store.Query{
		Filter: store.Filter{"status": models.BookInstanceStatusLoaned},
	})
	require.NoError(t, err)
	require.Len(t, loaned, 1)
	assert.Equal(t, seed.DuneCopy, loaned[0].ID)

	_, err = s.FindMany(ctx, models.KindBook, store.Query{Filter: store.Filter{"nope": 1}})
	assert.Error(t, err)
}

func testCountWhere(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed := SeedCatalog(t, s)

	tcs := []struct {
		name   string
		kind   models.Kind
		filter store.Filter
		want   int
	}{
		{"all books", models.KindBook, nil, 2},
		{"books by author", models.KindBook, store.Filter{"author": seed.Herbert}, 1},
		{"books in genre", models.KindBook, store.Filter{store.FieldGenre: seed.Fantasy}, 2},
		{"books in unused genre", models.KindBook, store.Filter{store.FieldGenre: seed.Poetry}, 0},
		{"copies of book", models.KindBookInstance, store.Filter{"book": seed.Hobbit}, 1},
		{"available copies", models.KindBookInstance, store.Filter{"status": models.BookInstanceStatusAvailable}, 1},
		{"empty set", models.KindAuthor, store.Filter{"id": []int{}}, 0},
	}
	for _, tc := range tcs {
		n, err := s.CountWhere(ctx, tc.kind, tc.filter)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, n, tc.name)
	}
}

func testReplace(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed := SeedCatalog(t, s)

	before, err := store.Find[*models.Book](ctx, s, models.KindBook, seed.Hobbit)
	require.NoError(t, err)

	err = s.Replace(ctx, seed.Hobbit, &models.Book{
		Title: "The Hobbit, or There and Back Again", Summary: "Revised.", ISBN: "9780261102217",
		AuthorID: seed.Tolkien, GenreIDs: []int{seed.Poetry},
	})
	require.NoError(t, err)

	after, err := store.Find[*models.Book](ctx, s, models.KindBook, seed.Hobbit)
	require.NoError(t, err)
	assert.Equal(t, "The Hobbit, or There and Back Again", after.Title)
	assert.Equal(t, []int{seed.Poetry}, after.GenreIDs)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))

	n, err := s.CountWhere(ctx, models.KindBook, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	err = s.Replace(ctx, 999, &models.Genre{Name: "Ghost"})
	assert.True(t, errcodes.IsNotFound(err))
}

func testDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed := SeedCatalog(t, s)

	require.NoError(t, s.DeleteByID(ctx, models.KindGenre, seed.Poetry))
	_, err := s.FindByID(ctx, models.KindGenre, seed.Poetry)
	assert.True(t, errcodes.IsNotFound(err))

	require.NoError(t, s.DeleteByID(ctx, models.KindGenre, seed.Poetry))

	require.NoError(t, s.DeleteByID(ctx, models.KindBookInstance, seed.DuneCopy))
	require.NoError(t, s.DeleteByID(ctx, models.KindBook, seed.Dune))
	n, err := s.CountWhere(ctx, models.KindBook, store.Filter{store.FieldGenre: seed.SciFi})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
