// Package errors defines the application error taxonomy and the CLI-facing
// error formatting helpers.
package errors

import (
	"fmt"
	"strings"
)

// Sentinel errors for store and mutation failures. Callers match them with
// errors.Is.
var (
	// ErrNotFound indicates an operation targeted a habit or completion id
	// that does not exist.
	ErrNotFound = New("record not found")

	// ErrDuplicateKey indicates an attempted creation with a colliding id or
	// (habit, day) pair.
	ErrDuplicateKey = New("duplicate key")

	// ErrOperationInProgress indicates a concurrent mutation on the same
	// entity was rejected by the operation-key guard.
	ErrOperationInProgress = New("operation already in progress")

	// ErrInvalidFormat indicates an import document is missing required
	// top-level keys.
	ErrInvalidFormat = New("invalid data format")
)

type sentinel string

func (s sentinel) Error() string { return string(s) }

// New returns a comparable sentinel error.
func New(msg string) error { return sentinel(msg) }

// ValidationError reports schema-constraint failures. It is raised before
// any state mutation, so the store is unchanged when it surfaces.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// PersistenceError wraps a failure from the durable write layer with a
// machine-readable code and the underlying cause.
type PersistenceError struct {
	Code string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure (%s): %v", e.Code, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err in a PersistenceError with the given code.
func Persistence(code string, err error) error {
	return &PersistenceError{Code: code, Err: err}
}
