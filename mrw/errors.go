package mrw

import (
	"errors"
	"fmt"
)

// ErrorCode represents a categorized error type.
type ErrorCode int

const (
	ErrorUnknown ErrorCode = iota

	// ErrorUnsupportedNamespace means an action claimed the reserved
	// namespace prefix but routed to no known sub-reducer. The action
	// is structurally malformed and the producer is at fault.
	ErrorUnsupportedNamespace

	// ErrorUnknownEventType means an event projection was requested
	// for an emitted type with no registered projection.
	ErrorUnknownEventType

	// ErrorInvalidAction means an action carried a payload that does
	// not match its emitted type (for example a missing native event).
	ErrorInvalidAction

	// ErrorPath wraps an internal path-accessor failure. Unreachable
	// under the reducer's upsert-before-read discipline.
	ErrorPath

	// Client-side errors, raised by the live sync client.
	ErrorConnection
	ErrorNotConnected
	ErrorSerialization
)

// String returns the string representation of an ErrorCode.
func (e ErrorCode) String() string {
	switch e {
	case ErrorUnknown:
		return "unknown"
	case ErrorUnsupportedNamespace:
		return "unsupported_namespace"
	case ErrorUnknownEventType:
		return "unknown_event_type"
	case ErrorInvalidAction:
		return "invalid_action"
	case ErrorPath:
		return "path_error"
	case ErrorConnection:
		return "connection_error"
	case ErrorNotConnected:
		return "not_connected"
	case ErrorSerialization:
		return "serialization_error"
	default:
		return fmt.Sprintf("unknown_code_%d", e)
	}
}

// Error is a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s (wrapped: %v)", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Unwrap support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is support for code comparison.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with an Error.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Wrapped: err,
	}
}

// CodeOf extracts the ErrorCode from err, or ErrorUnknown if err is not
// an *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrorUnknown
}
