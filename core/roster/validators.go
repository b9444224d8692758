package roster

import (
	"reflect"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
)

var (
	subjectSetTag  = "subjectset"
	subjectSetText = "{0} must hold distinct, non-blank subjects"
)

// InitValidators registers the roster validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(subjectSetTag, subjectSetValidation)
	core.RegisterCustomTranslation(validate, translator, subjectSetTag, subjectSetText)
}

// Custom Validators

// subjectSetValidation checks that a []string holds no blank and no repeated entry
func subjectSetValidation(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return false
	}
	seen := make(map[string]bool, field.Len())
	for i := 0; i < field.Len(); i++ {
		s := field.Index(i).String()
		if strings.TrimSpace(s) == "" || seen[s] {
			return false
		}
		seen[s] = true
	}
	return true
}
