package models

import (
	"github.com/shishobooks/locallibrary/pkg/identity"
	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b" tstype:"-"`

	ID       int    `bun:",pk,nullzero" json:"id"`
	Title    string `bun:",notnull" json:"title"`
	Summary  string `bun:",notnull" json:"summary"`
	ISBN     string `bun:"isbn,notnull" json:"isbn"`
	AuthorID int    `bun:",notnull" json:"author_id"`

	// GenreIDs is persisted through the book_genres join table.
	GenreIDs []int `bun:"-" json:"genre_ids"`

	Timestamps

	// Expanded at read time only.
	Author *Author  `bun:"-" json:"-"`
	Genres []*Genre `bun:"-" json:"-"`
}

func (b *Book) EntityKind() Kind   { return KindBook }
func (b *Book) EntityID() int      { return b.ID }
func (b *Book) SetEntityID(id int) { b.ID = id }

func (b *Book) Derived() Derived {
	d := Derived{}
	if url, ok := identity.URL(string(KindBook), b.ID); ok {
		d["url"] = url
	}
	return d
}

// HasGenre reports whether the book is tagged with the given genre.
func (b *Book) HasGenre(genreID int) bool {
	for _, id := range b.GenreIDs {
		if id == genreID {
			return true
		}
	}
	return false
}
