package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/crease/internal/adapters/mq/queue"
	"github.com/okian/crease/internal/domain/scoring"
	"github.com/okian/crease/internal/domain/types"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
	ErrUnavailable  = errors.New("service unavailable")
)

// WrapKind tags err with op and kind while keeping err in the chain.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// tag wraps the dispatch failures of op in the API kind they answer with.
func tag(op string, err error) error {
	switch {
	case errors.Is(err, queue.ErrFull):
		return WrapKind(op, ErrBackpressure, err)
	case errors.Is(err, queue.ErrStopped), errors.Is(err, types.ErrNotStarted):
		return WrapKind(op, ErrUnavailable, err)
	default:
		return err
	}
}

func errMissing(field string) error {
	return errors.New("missing " + field)
}

// engineStatus maps engine error kinds to HTTP status codes.
var engineStatus = map[scoring.Kind]int{
	scoring.KindMatchNotFound:     http.StatusNotFound,
	scoring.KindMatchNotLive:      http.StatusConflict,
	scoring.KindInvalidRoster:     http.StatusUnprocessableEntity,
	scoring.KindUnrecognizedEvent: http.StatusBadRequest,
	scoring.KindIllegalState:      http.StatusConflict,
	scoring.KindOverAlreadyClosed: http.StatusConflict,
}

// classify returns the status code and error code for err.
func classify(err error) (int, string) {
	if kind := scoring.KindOf(err); kind != "" {
		if status, ok := engineStatus[kind]; ok {
			return status, string(kind)
		}
	}
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, types.ErrInvalidMatch):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
