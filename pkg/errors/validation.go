package errors

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// validate is the shared struct validator. Field names in messages use the
// json tag so they match what the user wrote.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidateStruct checks the `validate` tags of v and reports the first
// failure as an *Error with the given code.
func ValidateStruct(code Code, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return Wrap(code, err, "validation failed")
	}
	return New(code, "%s", describe(verrs[0]))
}

func describe(e validator.FieldError) string {
	field := e.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: field is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s: must be at least %s, got %v", field, e.Param(), e.Value())
	case "max", "lte":
		return fmt.Sprintf("%s: must not exceed %s, got %v", field, e.Param(), e.Value())
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s], got %v", field, e.Param(), e.Value())
	default:
		return fmt.Sprintf("%s: validation failed (%s)", field, e.Tag())
	}
}

// ValidateID validates a connectable or wire id read from user input.
//
// Validation rules:
//   - ID cannot be empty
//   - Maximum length of 128 characters
//   - No control characters or whitespace
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}

	const maxIDLength = 128
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "id %q contains invalid characters", id)
		}
	}

	return nil
}
