package models

import (
	"github.com/pkg/errors"
)

// Kind names one of the catalog's entity types. The value doubles as the path
// segment in the entity's URL.
type Kind string

const (
	KindAuthor       Kind = "author"
	KindGenre        Kind = "genre"
	KindBook         Kind = "book"
	KindBookInstance Kind = "bookinstance"
)

// Kinds lists every entity kind in a stable order.
var Kinds = []Kind{KindAuthor, KindGenre, KindBook, KindBookInstance}

// Label is the human-facing name used in messages such as "Genre not found.".
func (k Kind) Label() string {
	switch k {
	case KindAuthor:
		return "Author"
	case KindGenre:
		return "Genre"
	case KindBook:
		return "Book"
	case KindBookInstance:
		return "Book copy"
	default:
		return string(k)
	}
}

// Derived holds values computed from a record's persisted fields. They are
// never stored.
type Derived map[string]string

// Entity is implemented by every catalog record.
type Entity interface {
	EntityKind() Kind
	EntityID() int
	SetEntityID(id int)
	Derived() Derived
	Stamps() *Timestamps
}

// New returns an empty record of the given kind.
func New(kind Kind) (Entity, error) {
	switch kind {
	case KindAuthor:
		return &Author{}, nil
	case KindGenre:
		return &Genre{}, nil
	case KindBook:
		return &Book{}, nil
	case KindBookInstance:
		return &BookInstance{}, nil
	}
	return nil, errors.Errorf("unknown entity kind %q", kind)
}
