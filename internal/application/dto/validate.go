package dto

import "github.com/go-playground/validator/v10"

// validate instancia única del validador; es seguro para uso concurrente.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate valida un DTO contra sus tags `validate`.
func Validate(v any) error {
	return validate.Struct(v)
}
