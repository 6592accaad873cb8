// Package errs contains sentinel errors shared by the store, auth and api layers.
// Handlers map them to HTTP status codes with errors.Is.
package errs

import "errors"

var (
	// ErrInvalidInput indicates a missing or malformed required field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthenticated indicates a missing, invalid or expired token, or bad login credentials.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden indicates the caller's role is not allowed, or a wrong signup secret.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a unique constraint violation (e.g. email already registered).
	ErrConflict = errors.New("conflict")
)
