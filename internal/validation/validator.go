// Package validation provides request validation on top of
// go-playground/validator, reporting failures as API field errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/GyroZepelix/library-cms/internal/server"
)

// Error is returned when a request fails validation. Handlers surface it as
// 400 VALIDATION_ERROR with Fields as details.
type Error struct {
	Fields []server.FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("%s %s", e.Fields[0].Field, e.Fields[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(e.Fields))
}

// NewError builds a single-field validation error.
func NewError(field, message string) *Error {
	return &Error{Fields: []server.FieldError{{Field: field, Message: message}}}
}

// Validator wraps validator.Validate. Field names in errors come from the
// "json" tag, falling back to the "query" and "yaml" tags and then the Go
// field name.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query", "yaml"} {
			name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns *Error on failure.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("validating request: %w", err)
	}

	fields := make([]server.FieldError, 0, len(validationErrs))
	for _, e := range validationErrs {
		fields = append(fields, server.FieldError{Field: e.Field(), Message: friendlyMessage(e)})
	}
	return &Error{Fields: fields}
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}
