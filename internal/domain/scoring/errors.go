package scoring

import (
	"errors"
	"strings"
)

// Kind classifies engine failures.
type Kind string

const (
	KindMatchNotFound     Kind = "match_not_found"
	KindMatchNotLive      Kind = "match_not_live"
	KindInvalidRoster     Kind = "invalid_roster"
	KindUnrecognizedEvent Kind = "unrecognized_event"
	KindIllegalState      Kind = "illegal_state"
	KindOverAlreadyClosed Kind = "over_already_closed"
)

// Sentinel kinds so callers can use errors.Is.
var (
	ErrMatchNotFound     = &Error{Kind: KindMatchNotFound}
	ErrMatchNotLive      = &Error{Kind: KindMatchNotLive}
	ErrInvalidRoster     = &Error{Kind: KindInvalidRoster}
	ErrUnrecognizedEvent = &Error{Kind: KindUnrecognizedEvent}
	ErrIllegalState      = &Error{Kind: KindIllegalState}
	ErrOverAlreadyClosed = &Error{Kind: KindOverAlreadyClosed}
)

// Error is a validation failure raised before any mutation took place.
type Error struct {
	Kind  Kind
	Op    string
	Field string
	Msg   string
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.Field != "" {
		b.WriteString(" (")
		b.WriteString(e.Field)
		b.WriteString(")")
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	return b.String()
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, op, field, msg string) *Error {
	return &Error{Kind: kind, Op: op, Field: field, Msg: msg}
}

// KindOf extracts the engine kind of err, or "" when err is not an engine error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
