package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so handlers can map it to an HTTP status.
type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindConflict           Kind = "CONFLICT"
	KindInvalidState       Kind = "INVALID_STATE"
	KindPreconditionFailed Kind = "PRECONDITION_FAILED"
	KindDeadlineExceeded   Kind = "DEADLINE_EXCEEDED"
	KindInvalidArgument    Kind = "INVALID_ARGUMENT"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindForbidden          Kind = "FORBIDDEN"
)

// Error is the application error type carried across service boundaries.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports a missing resource, e.g. NotFound("member", id.Hex()).
func NotFound(resource, identifier string) error {
	msg := resource + " not found"
	if identifier != "" {
		msg += ": " + identifier
	}
	return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func PreconditionFailed(format string, args ...interface{}) error {
	return &Error{Kind: KindPreconditionFailed, Message: fmt.Sprintf(format, args...)}
}

func DeadlineExceeded(format string, args ...interface{}) error {
	return &Error{Kind: KindDeadlineExceeded, Message: fmt.Sprintf(format, args...)}
}

func InvalidArgument(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(message string) error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

// KindOf returns the Kind of err, or "" when err is not an application error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
