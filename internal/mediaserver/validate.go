package mediaserver

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/glefebvre/mediadesk/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a request payload against its validate tags and returns a
// VALIDATION_ERROR describing the first failing field.
func Validate(payload interface{}) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return apperrors.ValidationError(formatValidationError(fieldErrs[0])).
			WithContext("field", fieldErrs[0].Field())
	}
	return apperrors.Wrap(err, apperrors.CodeValidation, "invalid payload")
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "required_without":
		return fmt.Sprintf("%q is required when %s is not set", field, err.Param())
	case "excluded_with":
		return fmt.Sprintf("%q must not be set together with %s", field, err.Param())
	case "gt":
		return fmt.Sprintf("%q must be greater than %s", field, err.Param())
	case "gte":
		return fmt.Sprintf("%q must be greater than or equal to %s", field, err.Param())
	case "max":
		return fmt.Sprintf("%q must be at most %s characters", field, err.Param())
	default:
		return fmt.Sprintf("%q failed on the %q rule", field, err.Tag())
	}
}
