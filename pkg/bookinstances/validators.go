package bookinstances

import (
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/pipeline"
)

type ListBookInstancesQuery struct {
	Status *string `query:"status" json:"status,omitempty" validate:"omitempty,oneof=Available Maintenance Loaned Reserved" tstype:"BookInstanceStatus"`
	BookID *int    `query:"book" json:"book,omitempty" validate:"omitempty,min=1" tstype:"number"`
}

var schema = pipeline.Schema{Fields: []pipeline.Field{
	{
		Name: "book",
		Rules: []pipeline.Rule{
			pipeline.Required("Book must be specified"),
			pipeline.Reference("Book must be a valid id."),
		},
		Sanitize: "trim",
	},
	{
		Name:     "imprint",
		Rules:    []pipeline.Rule{pipeline.Required("Imprint must be specified")},
		Sanitize: "trim,escape",
	},
	{
		Name:     "status",
		Optional: true,
		Rules:    []pipeline.Rule{pipeline.OneOf("Invalid status", models.BookInstanceStatuses...)},
		Sanitize: "trim,escape",
	},
	{
		Name:     "due_back",
		Optional: true,
		Rules:    []pipeline.Rule{pipeline.ISODate("Invalid date")},
		Sanitize: "trim",
	},
}}
