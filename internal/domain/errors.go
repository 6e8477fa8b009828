package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is the root of every authorization denial.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated indicates a missing or unusable credential.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrConflict indicates a uniqueness violation, e.g. a registered email.
	ErrConflict = errors.New("conflict")
)

// ForbiddenError carries the reason of an authorization denial.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return e.Reason
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

// Forbidden builds a denial error with the given reason.
func Forbidden(reason string) error {
	return &ForbiddenError{Reason: reason}
}

// ValidationError reports a malformed or semantically invalid payload.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid builds a validation error for field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
