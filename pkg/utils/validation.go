package utils

import (
	"fmt"
	"strings"

	apperrors "okr-backend/pkg/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct validates a struct based on its validation tags. Failures
// come back as a validation error carrying a per-field detail map.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Wrap(err, "validate request")
	}

	details := make(map[string]interface{}, len(validationErrors))
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msg := formatFieldError(e)
		details[strings.ToLower(e.Field())] = msg
		msgs = append(msgs, msg)
	}
	return apperrors.NewValidationError(strings.Join(msgs, "; ")).WithDetails(details)
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
