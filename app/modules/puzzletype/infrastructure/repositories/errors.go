package puzzletypedb

import "errors"

var (
	// ErrNotFound indicates the requested puzzle type does not exist.
	ErrNotFound = errors.New("puzzle type not found")
)
