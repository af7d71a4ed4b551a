// Package identity derives display values from persisted catalog fields.
// Nothing here touches storage, so it is safe to call on records that have not
// been saved yet.
package identity

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

// PathPrefix is the root every catalog URL hangs off of.
const PathPrefix = "/catalog"

type Layout int

const (
	// LayoutLong renders dates like "March 3rd, 2024".
	LayoutLong Layout = iota
	// LayoutISODay renders dates like "2024-03-03".
	LayoutISODay
)

const isoDay = "2006-01-02"

// URL returns the canonical path for a record of the given kind. The second
// return value is false when the record has no id yet, in which case there is
// no path to give.
func URL(kind string, id int) (string, bool) {
	if kind == "" || id <= 0 {
		return "", false
	}
	return PathPrefix + "/" + kind + "/" + strconv.Itoa(id), true
}

// DisplayName joins an author's names the way listings sort them.
func DisplayName(familyName, firstName string) string {
	return familyName + "," + firstName
}

// FormatDate renders t in the given layout. The zero time renders as the
// empty string.
func FormatDate(t time.Time, layout Layout) string {
	if t.IsZero() {
		return ""
	}
	switch layout {
	case LayoutISODay:
		return t.Format(isoDay)
	case LayoutLong:
		return fmt.Sprintf("%s %s, %d", t.Month(), humanize.Ordinal(t.Day()), t.Year())
	default:
		return t.Format(time.RFC3339)
	}
}

// Lifespan renders an author's birth and death dates as a range. Either end
// may be missing.
func Lifespan(birth, death *time.Time) string {
	var from, to string
	if birth != nil {
		from = FormatDate(*birth, LayoutLong)
	}
	if death != nil {
		to = FormatDate(*death, LayoutLong)
	}
	if from == "" && to == "" {
		return ""
	}
	return from + " - " + to
}
