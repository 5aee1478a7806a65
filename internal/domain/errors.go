package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidTitle    = errors.New("title must be between 1 and 190 characters")
	ErrInvalidMessage  = errors.New("message must not be empty")
	ErrUnknownTarget   = errors.New("unknown target country")
	ErrQueueWrite      = errors.New("failed to write fan-out page to queue")
	ErrDrainInProgress = errors.New("a drain cycle is already running")
)
