package memstore

import (
	"strings"
	"time"

	"github.com/shishobooks/locallibrary/pkg/models"
)

// fieldValue reads a logical field off a record.
func fieldValue(e models.Entity, field string) (any, bool) {
	if field == "id" {
		return e.EntityID(), true
	}
	switch r := e.(type) {
	case *models.Author:
		switch field {
		case "first_name":
			return r.FirstName, true
		case "family_name":
			return r.FamilyName, true
		case "date_of_birth":
			return r.DateOfBirth, true
		case "date_of_death":
			return r.DateOfDeath, true
		}
	case *models.Genre:
		if field == "name" {
			return r.Name, true
		}
	case *models.Book:
		switch field {
		case "title":
			return r.Title, true
		case "summary":
			return r.Summary, true
		case "isbn":
			return r.ISBN, true
		case "author":
			return r.AuthorID, true
		}
	case *models.BookInstance:
		switch field {
		case "book":
			return r.BookID, true
		case "imprint":
			return r.Imprint, true
		case "status":
			return r.Status, true
		case "due_back":
			return r.DueBack, true
		}
	}
	return nil, false
}

// compare orders two field values of the same type. Nil sorts first.
func compare(a, b any) int {
	if p, ok := a.(*time.Time); ok {
		if p == nil {
			a = nil
		} else {
			a = *p
		}
	}
	if p, ok := b.(*time.Time); ok {
		if p == nil {
			b = nil
		} else {
			b = *p
		}
	}

	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch av := a.(type) {
	case int:
		bv, ok := b.(int)
		if !ok {
			return -1
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case string:
		bv, ok := b.(string)
		if !ok {
			return -1
		}
		return strings.Compare(av, bv)
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return -1
		}
		return av.Compare(bv)
	}
	return -1
}

// clone copies a record so callers never share memory with the store.
// Expanded relations are display-time only and are dropped.
func clone(e models.Entity) models.Entity {
	switch r := e.(type) {
	case *models.Author:
		c := *r
		c.DateOfBirth = cloneTime(r.DateOfBirth)
		c.DateOfDeath = cloneTime(r.DateOfDeath)
		return &c
	case *models.Genre:
		c := *r
		return &c
	case *models.Book:
		c := *r
		c.GenreIDs = append([]int{}, r.GenreIDs...)
		c.Author = nil
		c.Genres = nil
		return &c
	case *models.BookInstance:
		c := *r
		c.Book = nil
		return &c
	}
	return e
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
