package models

import (
	"github.com/shishobooks/locallibrary/pkg/identity"
	"github.com/uptrace/bun"
)

type Genre struct {
	bun.BaseModel `bun:"table:genres,alias:g" tstype:"-"`

	ID   int    `bun:",pk,nullzero" json:"id"`
	Name string `bun:",notnull" json:"name"`

	Timestamps
}

func (g *Genre) EntityKind() Kind   { return KindGenre }
func (g *Genre) EntityID() int      { return g.ID }
func (g *Genre) SetEntityID(id int) { g.ID = id }

func (g *Genre) Derived() Derived {
	d := Derived{}
	if url, ok := identity.URL(string(KindGenre), g.ID); ok {
		d["url"] = url
	}
	return d
}

// BookGenre is a row of the join table backing Book.GenreIDs.
type BookGenre struct {
	bun.BaseModel `bun:"table:book_genres,alias:bg" tstype:"-"`

	ID      int `bun:",pk,nullzero" json:"id"`
	BookID  int `bun:",notnull" json:"book_id"`
	GenreID int `bun:",notnull" json:"genre_id"`
}
