package handler

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Alert type codes and object type names share the same shape as the
// original catalog: short lowercase snake_case identifiers.
var codePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,49}$`)

// RegisterValidators installs custom binding rules on gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	return v.RegisterValidation("alertcode", func(fl validator.FieldLevel) bool {
		return codePattern.MatchString(fl.Field().String())
	})
}
