package models

import (
	"time"

	"github.com/shishobooks/locallibrary/pkg/identity"
	"github.com/uptrace/bun"
)

const (
	//tygo:emit export type BookInstanceStatus = typeof BookInstanceStatusAvailable | typeof BookInstanceStatusMaintenance | typeof BookInstanceStatusLoaned | typeof BookInstanceStatusReserved;
	BookInstanceStatusAvailable   = "Available"
	BookInstanceStatusMaintenance = "Maintenance"
	BookInstanceStatusLoaned      = "Loaned"
	BookInstanceStatusReserved    = "Reserved"
)

// BookInstanceStatuses lists the valid statuses in display order.
var BookInstanceStatuses = []string{
	BookInstanceStatusAvailable,
	BookInstanceStatusMaintenance,
	BookInstanceStatusLoaned,
	BookInstanceStatusReserved,
}

// BookInstance is a single physical copy of a book.
type BookInstance struct {
	bun.BaseModel `bun:"table:book_instances,alias:bi" tstype:"-"`

	ID      int       `bun:",pk,nullzero" json:"id"`
	BookID  int       `bun:",notnull" json:"book_id"`
	Imprint string    `bun:",notnull" json:"imprint"`
	Status  string    `bun:",notnull" json:"status" tstype:"BookInstanceStatus"`
	DueBack time.Time `bun:",notnull" json:"due_back"`

	Timestamps

	// Expanded at read time only.
	Book *Book `bun:"-" json:"-"`
}

func (bi *BookInstance) EntityKind() Kind   { return KindBookInstance }
func (bi *BookInstance) EntityID() int      { return bi.ID }
func (bi *BookInstance) SetEntityID(id int) { bi.ID = id }

func (bi *BookInstance) Derived() Derived {
	d := Derived{
		"due_back_formatted":  identity.FormatDate(bi.DueBack, identity.LayoutLong),
		"due_back_yyyy_mm_dd": identity.FormatDate(bi.DueBack, identity.LayoutISODay),
	}
	if url, ok := identity.URL(string(KindBookInstance), bi.ID); ok {
		d["url"] = url
	}
	return d
}

// IsValidBookInstanceStatus reports whether status is one of the known statuses.
func IsValidBookInstanceStatus(status string) bool {
	for _, s := range BookInstanceStatuses {
		if s == status {
			return true
		}
	}
	return false
}
