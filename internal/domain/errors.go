package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Stores and services wrap these so callers (handlers, the CLI, the remote
// client) can branch with errors.Is without knowing the backend.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("backend unavailable")
	// ErrEntityNotFound is raised by the QR codec when asked to encode an
	// entity that no longer exists in the store.
	ErrEntityNotFound = errors.New("entity not found")
)

// IsNotFound reports whether err is a lookup miss.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
