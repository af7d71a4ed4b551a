package genres

import "github.com/shishobooks/locallibrary/pkg/pipeline"

var schema = pipeline.Schema{Fields: []pipeline.Field{
	{
		Name: "name",
		Rules: []pipeline.Rule{
			pipeline.Required("Genre name required"),
			pipeline.MinLen(3, "Genre name must be at least 3 characters."),
			pipeline.MaxLen(100, "Genre name must be at most 100 characters."),
		},
		Sanitize: "trim,escape",
	},
}}
