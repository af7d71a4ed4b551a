// Package pipeline runs the validate, sanitize and coerce steps every catalog
// write goes through.
//
// Field rules run in declaration order. A field stops at its first failing
// rule, and the messages from all fields are collected in order. Sanitizers
// run whether or not validation passed, and only sanitized values are ever
// handed on for persistence.
package pipeline

import (
	"context"
	"html"
	"reflect"
	"strings"

	"github.com/go-playground/mold/v4"
	"github.com/go-playground/mold/v4/modifiers"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Field declares how one input field is checked and cleaned.
type Field struct {
	Name string
	// Multi fields are normalized to a list before anything else runs.
	Multi bool
	// Optional fields skip their rules when submitted empty.
	Optional bool
	Rules    []Rule
	// Sanitize is a comma-separated list of mold modifiers, e.g. "trim,escape".
	Sanitize string
}

type Schema struct {
	Fields []Field
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Result struct {
	Failed         bool
	Errors         []FieldError
	PreservedInput Input
	Values         Values
}

type Pipeline struct {
	validate *validator.Validate
	conform  *mold.Transformer
}

// New builds a pipeline with the custom rules and sanitizers registered.
func New() *Pipeline {
	validate := validator.New()
	_ = validate.RegisterValidation(isoDateTag, isoDateValidator)

	conform := modifiers.New()
	conform.Register("escape", escapeModifier)

	return &Pipeline{validate: validate, conform: conform}
}

// escapeModifier neutralizes markup-significant characters.
func escapeModifier(_ context.Context, fl mold.FieldLevel) error {
	if fl.Field().Kind() != reflect.String {
		return nil
	}
	fl.Field().SetString(html.EscapeString(fl.Field().String()))
	return nil
}

// Run checks and cleans in against schema. The returned error is only ever
// a misconfigured rule or sanitizer; bad input is reported through the
// Result.
func (p *Pipeline) Run(ctx context.Context, schema Schema, in Input) (*Result, error) {
	res := &Result{
		PreservedInput: in.Preserved(),
		Values:         Values{scalars: map[string]string{}, lists: map[string][]string{}},
	}

	for _, f := range schema.Fields {
		if f.Multi {
			items := in.List(f.Name)
			for _, item := range items {
				if msg, failed := p.check(f, strings.TrimSpace(item)); failed {
					res.Errors = append(res.Errors, FieldError{Field: f.Name, Message: msg})
					break
				}
			}
			cleaned := make([]string, 0, len(items))
			for _, item := range items {
				s, err := p.sanitize(ctx, f, item)
				if err != nil {
					return nil, err
				}
				cleaned = append(cleaned, s)
			}
			res.Values.lists[f.Name] = cleaned
			continue
		}

		raw, _ := in.scalar(f.Name)
		if msg, failed := p.check(f, strings.TrimSpace(raw)); failed {
			res.Errors = append(res.Errors, FieldError{Field: f.Name, Message: msg})
		}
		s, err := p.sanitize(ctx, f, raw)
		if err != nil {
			return nil, err
		}
		res.Values.scalars[f.Name] = s
	}

	res.Failed = len(res.Errors) > 0
	return res, nil
}

// check returns the message of the first rule value fails, if any.
func (p *Pipeline) check(f Field, value string) (string, bool) {
	if f.Optional && value == "" {
		return "", false
	}
	for _, rule := range f.Rules {
		if err := p.validate.Var(value, rule.Tag); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				return rule.Message, true
			}
			// A tag the validator doesn't understand is a programming error.
			panic(errors.Wrapf(err, "pipeline: bad rule %q on field %q", rule.Tag, f.Name))
		}
	}
	return "", false
}

func (p *Pipeline) sanitize(ctx context.Context, f Field, value string) (string, error) {
	if f.Sanitize == "" {
		return value, nil
	}
	if err := p.conform.Field(ctx, &value, f.Sanitize); err != nil {
		return "", errors.Wrapf(err, "sanitize %q", f.Name)
	}
	return value, nil
}
