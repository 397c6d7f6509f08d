package types

import "errors"

// Sentinel kinds for service errors surfaced to the API.
var (
	ErrInvalidMatch = errors.New("invalid match")
	ErrNotStarted   = errors.New("service not started")
)
