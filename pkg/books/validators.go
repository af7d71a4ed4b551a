package books

import "github.com/shishobooks/locallibrary/pkg/pipeline"

type ListBooksQuery struct {
	AuthorID *int `query:"author" json:"author,omitempty" validate:"omitempty,min=1" tstype:"number"`
	GenreID  *int `query:"genre" json:"genre,omitempty" validate:"omitempty,min=1" tstype:"number"`
}

var schema = pipeline.Schema{Fields: []pipeline.Field{
	{
		Name:     "title",
		Rules:    []pipeline.Rule{pipeline.Required("Title must not be empty.")},
		Sanitize: "trim,escape",
	},
	{
		Name: "author",
		Rules: []pipeline.Rule{
			pipeline.Required("Author must not be empty."),
			pipeline.Reference("Author must be a valid id."),
		},
		Sanitize: "trim",
	},
	{
		Name:     "summary",
		Rules:    []pipeline.Rule{pipeline.Required("Summary must not be empty.")},
		Sanitize: "trim,escape",
	},
	{
		Name:     "isbn",
		Rules:    []pipeline.Rule{pipeline.Required("ISBN must not be empty.")},
		Sanitize: "trim,escape",
	},
	{
		Name:     "genre",
		Multi:    true,
		Rules:    []pipeline.Rule{pipeline.Reference("Genre must be a valid id.")},
		Sanitize: "trim",
	},
}}
