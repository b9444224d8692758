package academic

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
)

var (
	weekdayTag  = "weekday"
	weekdayText = "{0} must be a school day (monday to saturday)"
)

// InitValidators registers the academic validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(weekdayTag, weekdayValidation)
	core.RegisterCustomTranslation(validate, translator, weekdayTag, weekdayText)
}

// Custom Validators

// weekdayValidation checks that the day is one of Weekdays
func weekdayValidation(fl validator.FieldLevel) bool {
	return Weekday(fl.Field().String()).IsValid()
}
