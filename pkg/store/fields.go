package store

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/models"
)

// FieldGenre is the book filter matched against the book_genres join rather
// than a column of books.
const FieldGenre = "genre"

var tables = map[models.Kind]string{
	models.KindAuthor:       "authors",
	models.KindGenre:        "genres",
	models.KindBook:         "books",
	models.KindBookInstance: "book_instances",
}

// columns maps logical field names to column names. Reference fields use the
// entity name ("author", "book") the way callers think of them.
var columns = map[models.Kind]map[string]string{
	models.KindAuthor: {
		"id":            "id",
		"first_name":    "first_name",
		"family_name":   "family_name",
		"date_of_birth": "date_of_birth",
		"date_of_death": "date_of_death",
	},
	models.KindGenre: {
		"id":   "id",
		"name": "name",
	},
	models.KindBook: {
		"id":      "id",
		"title":   "title",
		"summary": "summary",
		"isbn":    "isbn",
		"author":  "author_id",
	},
	models.KindBookInstance: {
		"id":       "id",
		"book":     "book_id",
		"imprint":  "imprint",
		"status":   "status",
		"due_back": "due_back",
	},
}

// Table returns the table backing kind.
func Table(kind models.Kind) (string, error) {
	t, ok := tables[kind]
	if !ok {
		return "", errors.Errorf("unknown entity kind %q", kind)
	}
	return t, nil
}

// Column resolves a logical field of kind to its column.
func Column(kind models.Kind, field string) (string, error) {
	cols, ok := columns[kind]
	if !ok {
		return "", errors.Errorf("unknown entity kind %q", kind)
	}
	col, ok := cols[field]
	if !ok {
		return "", errors.Errorf("unknown field %q on %s", field, kind)
	}
	return col, nil
}

// Keys returns the filter's field names in a stable order.
func (f Filter) Keys() []string {
	out := make([]string, 0, len(f))
	for k := range f {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IDs returns the value as an id set when it is a membership predicate.
func IDs(v any) ([]int, bool) {
	ids, ok := v.([]int)
	return ids, ok
}
