package attemptservice

import "errors"

// Domain failures returned inside a FailureResult. Handlers map them to 4xx.
var (
	ErrUserNotFound       = errors.New("user was not found")
	ErrPuzzleTypeNotFound = errors.New("puzzle type was not found")
	ErrInvalidAttempt     = errors.New("invalid attempt")
	ErrInvalidPage        = errors.New("skip and take must not be negative")
	ErrEmptyBatch         = errors.New("batch contains no attempts")
)
