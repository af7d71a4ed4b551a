package binder

import (
	"github.com/go-playground/validator/v10"
	"github.com/shishobooks/locallibrary/pkg/pipeline"
)

// isoDateValidator accepts the same date forms catalog writes do, or the
// empty string so the tag can sit on optional parameters.
func isoDateValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := pipeline.ParseISODate(value)
	return err == nil
}
