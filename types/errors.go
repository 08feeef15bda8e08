package types

import "strings"

// Error codes returned to clients inside mutation payloads.
const (
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeNotFound     = "not_found"
	ErrCodeForbidden    = "forbidden"
	ErrCodeInternal     = "internal"
)

// FieldError is a single expected failure of a mutation, returned to the
// client as data rather than as a transport error.
type FieldError struct {
	// Code classifies the failure (see the ErrCode constants).
	Code string `json:"code"`

	// Field names the offending input field, empty for whole-request errors.
	Field string `json:"field,omitempty"`

	// Message is a human-readable description safe to show to users.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// FieldErrors aggregates the validation failures of one mutation.
type FieldErrors []*FieldError

// Error implements the error interface.
func (e FieldErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Invalid builds a FieldError for a rejected input field.
func Invalid(field, message string) *FieldError {
	return &FieldError{Code: ErrCodeInvalidInput, Field: field, Message: message}
}
