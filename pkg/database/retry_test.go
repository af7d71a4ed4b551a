package database

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBusyError(t *testing.T) {
	t.Parallel()

	busy := []string{
		"database is locked",
		"database table is locked",
		"SQLITE_BUSY: cannot commit",
		"SQLITE_LOCKED",
		"error (5): database busy",
		"error (6): database locked",
	}
	for _, msg := range busy {
		assert.True(t, isBusyError(errors.New(msg)), msg)
		assert.True(t, isBusyError(errors.Wrap(errors.New(msg), "insert genre")), msg)
	}

	notBusy := []string{
		"connection refused",
		"UNIQUE constraint failed: genres.name",
		"no such table: book_instances",
	}
	for _, msg := range notBusy {
		assert.False(t, isBusyError(errors.New(msg)), msg)
	}
	assert.False(t, isBusyError(nil))
}

// flaky fails with err for the first n calls.
func flaky(n int, err error) (func() error, *int) {
	calls := 0
	return func() error {
		calls++
		if calls <= n {
			return err
		}
		return nil
	}, &calls
}

func TestBackoffDo(t *testing.T) {
	t.Parallel()

	locked := errors.New("database is locked")

	t.Run("no retry when the first attempt works", func(t *testing.T) {
		t.Parallel()
		fn, calls := flaky(0, locked)
		require.NoError(t, newBackoff(5).do(context.Background(), fn))
		assert.Equal(t, 1, *calls)
	})

	t.Run("lock contention is retried until it clears", func(t *testing.T) {
		t.Parallel()
		fn, calls := flaky(2, locked)
		require.NoError(t, newBackoff(5).do(context.Background(), fn))
		assert.Equal(t, 3, *calls)
	})

	t.Run("other failures are returned at once", func(t *testing.T) {
		t.Parallel()
		fn, calls := flaky(10, errors.New("disk I/O error"))
		err := newBackoff(5).do(context.Background(), fn)
		require.EqualError(t, err, "disk I/O error")
		assert.Equal(t, 1, *calls)
	})

	t.Run("gives up after the retry budget", func(t *testing.T) {
		t.Parallel()
		fn, calls := flaky(100, locked)
		err := newBackoff(2).do(context.Background(), fn)
		require.ErrorIs(t, err, locked)
		assert.Equal(t, 3, *calls)
	})

	t.Run("zero retries", func(t *testing.T) {
		t.Parallel()
		fn, calls := flaky(100, locked)
		require.Error(t, newBackoff(0).do(context.Background(), fn))
		assert.Equal(t, 1, *calls)
	})

	t.Run("stops when the context ends", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		fn, calls := flaky(100, locked)
		err := newBackoff(50).do(ctx, fn)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.GreaterOrEqual(t, *calls, 1)
		assert.Less(t, *calls, 50)
	})
}

func TestBackoffDelay(t *testing.T) {
	t.Parallel()

	b := newBackoff(10)
	assert.GreaterOrEqual(t, b.delay(0), 50*time.Millisecond)
	assert.Less(t, b.delay(0), 63*time.Millisecond)
	for attempt := 0; attempt < 70; attempt++ {
		d := b.delay(attempt)
		assert.Positive(t, d)
		assert.LessOrEqual(t, d, 2*time.Second)
	}
}
