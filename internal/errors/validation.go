// Package errors holds the field-level validation error shared by the
// validator and the service layer.
package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	switch len(ve) {
	case 0:
		return "validation failed"
	case 1:
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	default:
		return fmt.Sprintf("validation failed: %d field errors", len(ve))
	}
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// ToValidationErrors flattens a validator failure. Any other error yields nil.
func ToValidationErrors(err error) ValidationErrors {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return nil
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: messageFor(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

// Messages for tags without a parameter.
var fixedMessages = map[string]string{
	"required":        "is required",
	"email":           "must be a valid email address",
	"numeric":         "must be a number",
	"dive":            "contains an invalid element",
	"user_role":       "must be a valid user role (admin, trainer, staff)",
	"training_status": "must be a valid training status (not_started, in_progress, completed)",
	"training_code":   "must contain only letters, digits, '-' or '_'",
}

// Formats for tags that take a parameter.
var paramMessages = map[string]string{
	"min":   "must be at least %s",
	"max":   "must be at most %s",
	"len":   "must be exactly %s characters",
	"oneof": "must be one of: %s",
	"gte":   "must be greater than or equal to %s",
	"gt":    "must be greater than %s",
}

func messageFor(fe validator.FieldError) string {
	if msg, ok := fixedMessages[fe.Tag()]; ok {
		return msg
	}
	if format, ok := paramMessages[fe.Tag()]; ok {
		return fmt.Sprintf(format, fe.Param())
	}
	return fmt.Sprintf("validation failed for rule '%s'", fe.Tag())
}
