package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound    = errors.New("match not found")
	ErrInvalidPath = errors.New("invalid store path")
	ErrClosed      = errors.New("store closed")
)
