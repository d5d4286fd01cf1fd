package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// skuPattern matches catalog SKUs: uppercase alphanumerics and dashes,
// 3 to 32 characters, never starting with a dash.
var skuPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{2,31}$`)

func registerRules(v *validator.Validate) error {
	return v.RegisterValidation("sku", isSKU)
}

func isSKU(fl validator.FieldLevel) bool {
	return skuPattern.MatchString(fl.Field().String())
}
