package bunstore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/migrations"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/store"
	"github.com/shishobooks/locallibrary/pkg/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	// Every pooled connection to :memory: would get its own empty database.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestStore(t *testing.T) {
	t.Parallel()
	storetest.Run(t, func(t *testing.T) store.Store {
		return New(newTestDB(t))
	})
}

func TestReplace_KeepsJoinRowsConsistent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	s := New(db)
	ctx := context.Background()
	seed := storetest.SeedCatalog(t, s)

	err := s.Replace(ctx, seed.Dune, &models.Book{
		Title: "Dune", Summary: "Spice.", ISBN: "9780441013593", AuthorID: seed.Herbert,
	})
	require.NoError(t, err)

	count, err := db.NewSelect().
		Model((*models.BookGenre)(nil)).
		Where("book_id = ?", seed.Dune).
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestClosedDatabaseIsUnavailable(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	s := New(db)
	require.NoError(t, db.Close())

	_, err := s.FindByID(context.Background(), models.KindGenre, 1)
	require.Error(t, err)
	assert.True(t, errcodes.HasCode(err, errcodes.CodeStoreUnavailable))

	_, err = s.CountWhere(context.Background(), models.KindBook, nil)
	assert.True(t, errcodes.HasCode(err, errcodes.CodeStoreUnavailable))
}
