package document

import (
	validatorlib "github.com/go-playground/validator/v10"

	"github.com/trezcool/fyptrack/core"
)

var (
	typeTag  = "doctype"
	typeText = "{0} is not a valid document type"

	actionTag  = "reviewaction"
	actionText = "{0} is not a valid review action"
)

func init() {
	// register validators
	_ = core.Validate.RegisterValidation(typeTag, typeValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, typeTag, typeText)

	_ = core.Validate.RegisterValidation(actionTag, actionValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, actionTag, actionText)
}

// Custom Validators

// typeValidation checks that the provided type is a known document Type.
func typeValidation(fl validatorlib.FieldLevel) bool {
	return Type(fl.Field().String()).IsValid()
}

// actionValidation checks that the provided action is a known ReviewAction.
func actionValidation(fl validatorlib.FieldLevel) bool {
	return ReviewAction(fl.Field().String()).IsValid()
}
