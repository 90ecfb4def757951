package attemptdb

import "errors"

// Sentinel errors for the repository layer.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoRowsAffected indicates an INSERT/UPDATE/DELETE touched no rows.
	ErrNoRowsAffected = errors.New("no rows affected")

	// ErrInvalidPage indicates a negative skip or take.
	ErrInvalidPage = errors.New("invalid page request")
)
