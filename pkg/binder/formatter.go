package binder

import (
	"fmt"
	"reflect"
	"strings"
	timepkg "time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/segmentio/encoding/json"
)

const (
	gt       = "gt"
	gte      = "gte"
	isodate  = "isodate"
	mx       = "max"
	mn       = "min"
	ne       = "ne"
	numeric  = "numeric"
	oneof    = "oneof"
	required = "required"
)

var timeType = reflect.TypeOf(timepkg.Time{})

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	return fmt.Sprintf("%q should be of type %s", strings.Trim(err.Field, "."), err.Type)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case isodate:
		return fmt.Sprintf("%q should be an ISO 8601 date such as YYYY-MM-DD", field)
	case gt, gte:
		v := err.Param()
		if v == "" && err.Type() == timeType {
			v = "now"
		}
		cmp := "greater than"
		if err.Tag() == gte {
			cmp += " or equal to"
		}
		return fmt.Sprintf("%q must be %s %s", field, cmp, v)
	case mx:
		return formatBound(err, "less than or equal to")
	case mn:
		return formatBound(err, "greater than or equal to")
	case ne:
		return fmt.Sprintf("%q can't be %q", field, err.Param())
	case numeric:
		return fmt.Sprintf("%q must be a number", field)
	case oneof:
		valids := []string{}
		for _, p := range strings.Fields(err.Param()) {
			valids = append(valids, fmt.Sprintf("%q", p))
		}
		return fmt.Sprintf("%q must be one of the following: %s", field, strings.Join(valids, ", "))
	case required:
		return fmt.Sprintf("%q is required", field)
	}
	return fmt.Sprintf("%q is invalid", field)
}

// formatBound describes a min or max failure. Numbers are compared by value,
// strings and slices by length.
func formatBound(err validator.FieldError, cmp string) string {
	field, param := err.Field(), err.Param()

	//exhaustive:ignore
	switch err.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%q must be %s %s", field, cmp, param)
	}

	unit := "character"
	if err.Kind() == reflect.Slice {
		unit = "element"
	}
	if param != "1" {
		unit += "s"
	}
	return fmt.Sprintf("%q length must be %s %s %s", field, cmp, param, unit)
}
