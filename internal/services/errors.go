package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrExhaustedSequence means the invoice number no longer fits the
	// configured width. Recovering needs a format change.
	ErrExhaustedSequence = errors.New("invoice id sequence exhausted")
	// ErrExhaustedRetries means every allocation attempt collided with a
	// concurrent writer.
	ErrExhaustedRetries = errors.New("invoice id allocation retries exhausted")
)

// ValidationError reports bad caller input. Message is safe to show to
// the client.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports a write that clashes with existing state. Message
// is safe to show to the client.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

func conflict(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}
