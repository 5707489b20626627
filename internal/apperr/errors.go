package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrAuthentication    = errors.New("authentication required")
	ErrForbidden         = errors.New("action not permitted")
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUpstream          = errors.New("upstream service failed")
	ErrConfiguration     = errors.New("invalid configuration")
)

// ValidationError describes a single malformed input field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}
