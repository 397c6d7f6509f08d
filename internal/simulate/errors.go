package simulate

import "errors"

var (
	// ErrUnhealthy is returned when the service health check fails.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrRequest wraps a non-2xx API answer.
	ErrRequest = errors.New("request failed")
	// ErrMismatch is returned when a finished match does not add up.
	ErrMismatch = errors.New("scorecard mismatch")
	// ErrInvalidFlag is returned for out-of-range command flags.
	ErrInvalidFlag = errors.New("invalid flag")
	// ErrStuck is returned when a match does not finish within its ball budget.
	ErrStuck = errors.New("match did not finish")
)
