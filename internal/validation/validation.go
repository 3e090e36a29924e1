// Package validation checks service inputs and reports failures as
// apperr.ValidationError.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/mazo/internal/apperr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates the `validate` tags of v. Only the first failing field is reported.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.Validation(lowerFirst(fe.Field()), describe(fe))
	}
	return apperr.Validation("input", err.Error())
}

// Email checks that s is a syntactically valid email address.
func Email(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return apperr.Validation(field, "is required")
	}
	if err := validate.Var(s, "email"); err != nil {
		return apperr.Validation(field, "must be a valid email address")
	}
	return nil
}

// Required checks that s is not blank.
func Required(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return apperr.Validation(field, "is required")
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
