package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Rule is a single check against one field value, expressed as a validator
// tag, and the message recorded when it fails.
type Rule struct {
	Tag     string
	Message string
}

func Required(msg string) Rule {
	return Rule{Tag: "required", Message: msg}
}

func MinLen(n int, msg string) Rule {
	return Rule{Tag: fmt.Sprintf("min=%d", n), Message: msg}
}

func MaxLen(n int, msg string) Rule {
	return Rule{Tag: fmt.Sprintf("max=%d", n), Message: msg}
}

func Alphanumeric(msg string) Rule {
	return Rule{Tag: "alphanum", Message: msg}
}

func Numeric(msg string) Rule {
	return Rule{Tag: "numeric", Message: msg}
}

// Reference accepts a record id: digits only.
func Reference(msg string) Rule {
	return Rule{Tag: "number", Message: msg}
}

// ISODate accepts a calendar date or an RFC 3339 timestamp.
func ISODate(msg string) Rule {
	return Rule{Tag: isoDateTag, Message: msg}
}

func OneOf(msg string, values ...string) Rule {
	return Rule{Tag: "oneof=" + strings.Join(values, " "), Message: msg}
}

const isoDateTag = "isodate"

var isoLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseISODate parses the formats the isodate rule accepts. Calendar dates
// are taken as midnight UTC.
func ParseISODate(s string) (time.Time, error) {
	var err error
	for _, layout := range isoLayouts {
		var t time.Time
		t, err = time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func isoDateValidator(fl validator.FieldLevel) bool {
	_, err := ParseISODate(fl.Field().String())
	return err == nil
}
