package api

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// SanitizeValidationError renders the first failed field of a validator
// error without echoing the submitted value.
func SanitizeValidationError(err error) string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return "Validation error"
	}
	fe := fieldErrors[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), validationTagMessage(fe.Tag()))
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "gte", "lte", "min", "max":
		return "out of range"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
