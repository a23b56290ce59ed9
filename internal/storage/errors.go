package storage

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("storage: not found")

	// ErrConflict is returned when a write violates a uniqueness
	// constraint, e.g. the login-enabled username index. This is the
	// authoritative uniqueness guarantee; the username negotiator upstream
	// is advisory only.
	ErrConflict = errors.New("storage: conflict")
)
