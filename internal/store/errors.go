package store

import "errors"

var (
	// ErrNotFound is returned when no document exists under the given key.
	ErrNotFound = errors.New("document not found")

	// ErrConflict is returned when an atomic update loses the version race
	// too many times in a row.
	ErrConflict = errors.New("document version conflict")
)
