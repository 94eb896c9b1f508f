package models

import "errors"

// Errors reported by store implementations.
var (
	// ErrNotFound means no row matched the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrConflict means a unique key (imdb id, username, one review per user
	// and movie) is already taken.
	ErrConflict = errors.New("record already exists")
	// ErrConstraint means a CHECK constraint rejected the row.
	ErrConstraint = errors.New("constraint violation")
)
