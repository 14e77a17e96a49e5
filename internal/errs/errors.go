// Package errs defines the error kinds the service distinguishes.
// Services wrap these sentinels with fmt.Errorf("...: %w", ...) and the
// API layer maps them to HTTP status codes with errors.Is.
package errs

import "errors"

var (
	// ErrNotFound marks an entity that is missing or not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks rejected input (negative quantity, bad date range,
	// unsupported output format).
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks a concurrent-update collision, e.g. a duplicate
	// order number or a lost stock row. Callers may retry.
	ErrConflict = errors.New("conflict")

	// ErrConfiguration marks a missing collaborator configuration. It
	// degrades to a logged skip, never a failure of the triggering mutation.
	ErrConfiguration = errors.New("not configured")
)
