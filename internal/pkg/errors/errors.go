package errors

import "errors"

// Application-wide errors shared by repositories, services and handlers.
var (
	// ErrNotFound is returned when a record or resource does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized is returned for missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation is returned when input fails validation before any side effect.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned on unique constraint violations.
	ErrConflict = errors.New("resource state conflict")

	// ErrUpstream wraps failures of external systems (identity platform, email provider).
	ErrUpstream = errors.New("upstream failure")
)
