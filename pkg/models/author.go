package models

import (
	"time"

	"github.com/shishobooks/locallibrary/pkg/identity"
	"github.com/uptrace/bun"
)

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a" tstype:"-"`

	ID          int        `bun:",pk,nullzero" json:"id"`
	FirstName   string     `bun:",notnull" json:"first_name"`
	FamilyName  string     `bun:",notnull" json:"family_name"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	DateOfDeath *time.Time `json:"date_of_death"`

	Timestamps
}

func (a *Author) EntityKind() Kind   { return KindAuthor }
func (a *Author) EntityID() int      { return a.ID }
func (a *Author) SetEntityID(id int) { a.ID = id }

// FullName is the author's name as listings display it, family name first.
func (a *Author) FullName() string {
	return identity.DisplayName(a.FamilyName, a.FirstName)
}

func (a *Author) Derived() Derived {
	d := Derived{"name": a.FullName()}
	if url, ok := identity.URL(string(KindAuthor), a.ID); ok {
		d["url"] = url
	}
	if lifespan := identity.Lifespan(a.DateOfBirth, a.DateOfDeath); lifespan != "" {
		d["lifespan"] = lifespan
	}
	return d
}
