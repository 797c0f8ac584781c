package util

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrTestNotAvailable    = errors.New("test not available")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrMalformedResponse   = errors.New("malformed upstream response")

	ErrUserNotFound       = NewNotFound("user")
	ErrEmailRegistered    = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTestNotFound       = NewNotFound("test")
	ErrAttemptNotFound    = NewNotFound("attempt")
	ErrQuestionNotFound   = NewNotFound("question")
	ErrQuizNotFound       = NewNotFound("quiz")
	ErrAlreadyGraded      = fmt.Errorf("%w: attempt already graded", ErrConflict)
	ErrAttemptLimit       = fmt.Errorf("%w: attempt limit reached", ErrConflict)
)

func NewNotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

// FieldError is used to indicate an error with a specific request field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationError struct {
	Message string
	Fields  []FieldError
}

func NewValidationError(msg string, flds ...FieldError) error {
	return &ValidationError{Message: msg, Fields: flds}
}

// Required builds a ValidationError listing every missing field.
func Required(fields ...string) error {
	flds := make([]FieldError, 0, len(fields))
	for _, f := range fields {
		flds = append(flds, FieldError{Field: f, Error: "is required"})
	}
	return &ValidationError{Message: "missing required fields: " + strings.Join(fields, ", "), Fields: flds}
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return ErrValidation.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
