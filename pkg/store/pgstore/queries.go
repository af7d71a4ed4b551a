package pgstore

import (
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/store"
)

const (
	dialectPostgres = "postgres"
	tableBookGenres = "book_genres"
	colID           = "id"
	colCreatedAt    = "created_at"
	colBookID       = "book_id"
	colGenreID      = "genre_id"
)

var dialect = goqu.Dialect(dialectPostgres)

// selectColumns lists every column read back for a kind, in scan order.
var selectColumns = map[models.Kind][]any{
	models.KindAuthor:       {"id", "created_at", "updated_at", "first_name", "family_name", "date_of_birth", "date_of_death"},
	models.KindGenre:        {"id", "created_at", "updated_at", "name"},
	models.KindBook:         {"id", "created_at", "updated_at", "title", "summary", "isbn", "author_id"},
	models.KindBookInstance: {"id", "created_at", "updated_at", "book_id", "imprint", "status", "due_back"},
}

type statement struct {
	sql  string
	args []any
}

func toStatement(ds interface {
	ToSQL() (string, []any, error)
}) (statement, error) {
	sql, args, err := ds.ToSQL()
	if err != nil {
		return statement{}, errors.Wrap(err, "build query")
	}
	return statement{sql: sql, args: args}, nil
}

func buildSelectByID(kind models.Kind, id int) (statement, error) {
	table, err := store.Table(kind)
	if err != nil {
		return statement{}, err
	}
	return toStatement(dialect.
		From(table).
		Select(selectColumns[kind]...).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true))
}

// buildSelectMany ignores the projection hint and always reads full rows.
// The bool is true when the filter can match nothing.
func buildSelectMany(kind models.Kind, q store.Query) (statement, bool, error) {
	table, err := store.Table(kind)
	if err != nil {
		return statement{}, false, err
	}
	where, empty, err := buildWhere(kind, q.Filter)
	if err != nil || empty {
		return statement{}, empty, err
	}

	ds := dialect.
		From(table).
		Select(selectColumns[kind]...).
		Where(where...)

	order := make([]exp.OrderedExpression, 0, len(q.Sort)+1)
	for _, srt := range q.Sort {
		col, err := store.Column(kind, srt.Field)
		if err != nil {
			return statement{}, false, err
		}
		if srt.Direction == store.SortDesc {
			order = append(order, goqu.I(col).Desc())
		} else {
			order = append(order, goqu.I(col).Asc())
		}
	}
	order = append(order, goqu.I(colID).Asc())

	st, err := toStatement(ds.Order(order...).Prepared(true))
	return st, false, err
}

func buildCount(kind models.Kind, f store.Filter) (statement, bool, error) {
	table, err := store.Table(kind)
	if err != nil {
		return statement{}, false, err
	}
	where, empty, err := buildWhere(kind, f)
	if err != nil || empty {
		return statement{}, empty, err
	}
	st, err := toStatement(dialect.
		From(table).
		Select(goqu.COUNT(goqu.Star())).
		Where(where...).
		Prepared(true))
	return st, false, err
}

func buildWhere(kind models.Kind, f store.Filter) ([]exp.Expression, bool, error) {
	where := make([]exp.Expression, 0, len(f))
	for _, field := range f.Keys() {
		v := f[field]

		if kind == models.KindBook && field == store.FieldGenre {
			sub := dialect.From(tableBookGenres).Select(colBookID)
			if ids, ok := store.IDs(v); ok {
				if len(ids) == 0 {
					return nil, true, nil
				}
				sub = sub.Where(goqu.C(colGenreID).In(ids))
			} else {
				sub = sub.Where(goqu.C(colGenreID).Eq(v))
			}
			where = append(where, goqu.C(colID).In(sub))
			continue
		}

		col, err := store.Column(kind, field)
		if err != nil {
			return nil, false, err
		}
		if ids, ok := store.IDs(v); ok {
			if len(ids) == 0 {
				return nil, true, nil
			}
			where = append(where, goqu.C(col).In(ids))
			continue
		}
		where = append(where, goqu.C(col).Eq(v))
	}
	return where, false, nil
}

// record returns the writable columns of e.
func record(e models.Entity) (goqu.Record, error) {
	stamps := e.Stamps()
	rec := goqu.Record{
		"created_at": stamps.CreatedAt,
		"updated_at": stamps.UpdatedAt,
	}
	switch r := e.(type) {
	case *models.Author:
		rec["first_name"] = r.FirstName
		rec["family_name"] = r.FamilyName
		rec["date_of_birth"] = r.DateOfBirth
		rec["date_of_death"] = r.DateOfDeath
	case *models.Genre:
		rec["name"] = r.Name
	case *models.Book:
		rec["title"] = r.Title
		rec["summary"] = r.Summary
		rec["isbn"] = r.ISBN
		rec["author_id"] = r.AuthorID
	case *models.BookInstance:
		rec["book_id"] = r.BookID
		rec["imprint"] = r.Imprint
		rec["status"] = r.Status
		rec["due_back"] = r.DueBack
	default:
		return nil, errors.Errorf("unsupported record %T", e)
	}
	return rec, nil
}

func buildInsert(e models.Entity) (statement, error) {
	table, err := store.Table(e.EntityKind())
	if err != nil {
		return statement{}, err
	}
	rec, err := record(e)
	if err != nil {
		return statement{}, err
	}
	return toStatement(dialect.
		Insert(table).
		Rows(rec).
		Returning(colID).
		Prepared(true))
}

// buildUpdate leaves created_at alone and returns it so the caller learns
// both the original creation time and whether the row existed.
func buildUpdate(id int, e models.Entity) (statement, error) {
	table, err := store.Table(e.EntityKind())
	if err != nil {
		return statement{}, err
	}
	rec, err := record(e)
	if err != nil {
		return statement{}, err
	}
	delete(rec, colCreatedAt)
	return toStatement(dialect.
		Update(table).
		Set(rec).
		Where(goqu.C(colID).Eq(id)).
		Returning(colCreatedAt).
		Prepared(true))
}

func buildDelete(kind models.Kind, id int) (statement, error) {
	table, err := store.Table(kind)
	if err != nil {
		return statement{}, err
	}
	return toStatement(dialect.
		Delete(table).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true))
}

func buildDeleteGenreLinks(bookID int) (statement, error) {
	return toStatement(dialect.
		Delete(tableBookGenres).
		Where(goqu.C(colBookID).Eq(bookID)).
		Prepared(true))
}

func buildInsertGenreLinks(bookID int, genreIDs []int) (statement, error) {
	rows := make([]any, 0, len(genreIDs))
	for _, genreID := range genreIDs {
		rows = append(rows, goqu.Record{colBookID: bookID, colGenreID: genreID})
	}
	return toStatement(dialect.
		Insert(tableBookGenres).
		Rows(rows...).
		Prepared(true))
}

func buildSelectGenreLinks(bookIDs []int) (statement, error) {
	return toStatement(dialect.
		From(tableBookGenres).
		Select(colBookID, colGenreID).
		Where(goqu.C(colBookID).In(bookIDs)).
		Order(goqu.I(colID).Asc()).
		Prepared(true))
}
