package authors

import "github.com/shishobooks/locallibrary/pkg/pipeline"

var schema = pipeline.Schema{Fields: []pipeline.Field{
	{
		Name: "first_name",
		Rules: []pipeline.Rule{
			pipeline.Required("First name must be specified."),
			pipeline.MaxLen(100, "First name must be at most 100 characters."),
			pipeline.Alphanumeric("First name has non-alphanumeric characters."),
		},
		Sanitize: "trim,escape",
	},
	{
		Name: "family_name",
		Rules: []pipeline.Rule{
			pipeline.Required("Family name must be specified."),
			pipeline.MaxLen(100, "Family name must be at most 100 characters."),
			pipeline.Alphanumeric("Family name has non-alphanumeric characters."),
		},
		Sanitize: "trim,escape",
	},
	{
		Name:     "date_of_birth",
		Optional: true,
		Rules:    []pipeline.Rule{pipeline.ISODate("Invalid date of birth")},
		Sanitize: "trim",
	},
	{
		Name:     "date_of_death",
		Optional: true,
		Rules:    []pipeline.Rule{pipeline.ISODate("Invalid date of death")},
		Sanitize: "trim",
	},
}}
