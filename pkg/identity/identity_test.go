package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestURL(t *testing.T) {
	t.Parallel()

	path, ok := URL("genre", 12)
	assert.True(t, ok)
	assert.Equal(t, "/catalog/genre/12", path)

	path, ok = URL("genre", 0)
	assert.False(t, ok)
	assert.Empty(t, path)

	path, ok = URL("", 3)
	assert.False(t, ok)
	assert.Empty(t, path)
}

func TestURL_DistinctIDsNeverCollide(t *testing.T) {
	t.Parallel()

	seen := map[string]int{}
	for id := 1; id <= 1000; id++ {
		path, ok := URL("book", id)
		assert.True(t, ok)
		prev, dup := seen[path]
		assert.False(t, dup, "id %d collides with id %d", id, prev)
		seen[path] = id
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Rothfuss,Patrick", DisplayName("Rothfuss", "Patrick"))
}

func TestFormatDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		date     time.Time
		layout   Layout
		expected string
	}{
		{"long first", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), LayoutLong, "March 1st, 2024"},
		{"long second", time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC), LayoutLong, "March 2nd, 2024"},
		{"long teens", time.Date(2024, time.June, 13, 0, 0, 0, 0, time.UTC), LayoutLong, "June 13th, 2024"},
		{"long twenty third", time.Date(1999, time.December, 23, 0, 0, 0, 0, time.UTC), LayoutLong, "December 23rd, 1999"},
		{"iso day", time.Date(2024, time.March, 1, 15, 4, 5, 0, time.UTC), LayoutISODay, "2024-03-01"},
		{"zero", time.Time{}, LayoutLong, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDate(tt.date, tt.layout))
		})
	}
}

func TestLifespan(t *testing.T) {
	t.Parallel()

	birth := time.Date(1920, time.January, 2, 0, 0, 0, 0, time.UTC)
	death := time.Date(1992, time.April, 6, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "January 2nd, 1920 - April 6th, 1992", Lifespan(&birth, &death))
	assert.Equal(t, "January 2nd, 1920 - ", Lifespan(&birth, nil))
	assert.Empty(t, Lifespan(nil, nil))
}
