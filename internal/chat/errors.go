package chat

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure. The HTTP boundary maps kinds to
// status codes; the engine itself never touches transport concerns.
type Kind int

const (
	// KindValidation reports malformed, missing or sanitized-to-empty input.
	KindValidation Kind = iota + 1
	// KindConflict reports a duplicate participant name.
	KindConflict
	// KindNotFound reports an unknown participant or message id.
	KindNotFound
	// KindUnauthorized reports a requester that does not own the message.
	KindUnauthorized
	// KindStore reports a data-store failure. Detail stays server-side.
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not found"
	case KindUnauthorized:
		return "unauthorized"
	case KindStore:
		return "store"
	}
	return "unknown"
}

// Error is a tagged engine error.
type Error struct {
	Kind   Kind
	Op     string // operation that failed, e.g. "registry.register"
	Detail string // caller-safe description
	Err    error  // underlying cause, if any
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// errf builds a tagged error without an underlying cause.
func errf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Detail: fmt.Sprintf(format, args...)}
}

// storeErr wraps a data-store failure.
func storeErr(op string, err error) *Error {
	return &Error{Kind: KindStore, Op: op, Detail: "data store unavailable", Err: err}
}

// KindOf extracts the Kind from err, or KindStore for untagged errors so
// unexpected failures never leak detail past the boundary.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
