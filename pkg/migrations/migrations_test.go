package migrations

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBringUpToDate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newDB(t)

	pending, err := Pending(ctx, db)
	require.NoError(t, err)
	assert.Len(t, pending, len(Migrations.Sorted()))

	group, err := BringUpToDate(ctx, db)
	require.NoError(t, err)
	assert.NotZero(t, group.ID)

	for _, table := range []string{"authors", "genres", "books", "book_genres", "book_instances"} {
		var n int
		err := db.NewSelect().TableExpr(table).ColumnExpr("COUNT(*)").Scan(ctx, &n)
		require.NoError(t, err, table)
		assert.Zero(t, n, table)
	}

	pending, err = Pending(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, pending)

	group, err = BringUpToDate(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, group.ID)
}
