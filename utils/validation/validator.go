package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// PasswordMinLength is the minimum password length
const PasswordMinLength = 8

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

var defaultValidator = NewValidator()

// NewValidator creates a new validator instance that reports JSON field names
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// ValidateStruct validates a struct using struct tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// Struct validates s with the package validator and returns the field errors, or nil.
func Struct(s interface{}) map[string]string {
	if err := defaultValidator.ValidateStruct(s); err != nil {
		return FormatValidationErrors(err)
	}
	return nil
}

// FormatValidationErrors converts validation errors to a user-friendly format
func FormatValidationErrors(err error) map[string]string {
	errs := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		errs["_"] = err.Error()
		return errs
	}

	for _, e := range validationErrs {
		field := fieldPath(e)
		switch e.Tag() {
		case "required":
			errs[field] = fmt.Sprintf("%s is required", e.Field())
		case "email":
			errs[field] = "Invalid email format"
		case "url":
			errs[field] = "Invalid URL"
		case "min":
			errs[field] = fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
		case "max":
			errs[field] = fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
		case "eqfield":
			errs[field] = "Passwords do not match"
		case "oneof":
			errs[field] = fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param())
		default:
			errs[field] = fmt.Sprintf("%s is invalid", e.Field())
		}
	}

	return errs
}

// fieldPath drops the top-level struct name from the namespace,
// e.g. "PartnershipForm.aauContact.email" -> "aauContact.email".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

// SanitizeString removes potentially dangerous characters
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}
