// Package apperror defines the typed error taxonomy surfaced by core
// services: NotFound, Conflict, InvalidRequest and Internal.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	// KindNotFound means a referenced entity does not exist.
	KindNotFound Kind = iota + 1
	// KindConflict means the request violates a booking or allocation rule.
	KindConflict
	// KindInvalidRequest means the input is malformed or breaks an invariant.
	KindInvalidRequest
	// KindInternal means a persistence or infrastructure failure.
	KindInternal
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidRequest:
		return "invalid_request"
	case KindInternal:
		return "internal"
	}
	return "unknown"
}

// Error is a classified application error. Code identifies the specific
// violation (e.g. "double_booking", "capacity_exceeded") so callers can tell
// rejections apart without parsing messages.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// NotFound returns a KindNotFound error for the named entity.
func NotFound(entity string, format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Code: entity + "_not_found", Message: fmt.Sprintf(format, args...)}
}

// Conflict returns a KindConflict error with a violation code.
func Conflict(code string, format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

// InvalidRequest returns a KindInvalidRequest error with a violation code.
func InvalidRequest(code string, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidRequest, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps a persistence or infrastructure failure.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Code: "internal", Message: msg, Err: err}
}

// KindOf returns the Kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the violation code of err, or "" for unclassified errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
