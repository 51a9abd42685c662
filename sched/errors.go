// Package sched implements the single-threaded cooperative scheduler, the
// Task primitive, and structured cancellation that the rest of this module
// is built on.
package sched

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure the way a kernel errno or a protocol fault
// would, independent of its origin (ring completion, buffered stream,
// HTTP/CGI parsing).
type ErrorKind string

const (
	TimedOut           ErrorKind = "timed_out"
	Canceled           ErrorKind = "canceled"
	BrokenPipe         ErrorKind = "broken_pipe"
	InvalidSeek        ErrorKind = "invalid_seek"
	NotSupported       ErrorKind = "not_supported"
	InvalidArgument    ErrorKind = "invalid_argument"
	PermissionDenied   ErrorKind = "permission_denied"
	NotFound           ErrorKind = "not_found"
	AlreadyExists      ErrorKind = "already_exists"
	IoError            ErrorKind = "io_error"
	ProtocolError      ErrorKind = "protocol_error"
	ChildExitedNonZero ErrorKind = "child_exited_nonzero"
)

// Error wraps an ErrorKind around an optional underlying cause, so it
// composes with errors.Is/errors.As/errors.Unwrap instead of requiring a
// hand-rolled sum type.
type Error struct {
	Kind  ErrorKind
	Cause error
}

func New(kind ErrorKind) *Error {
	return &Error{Kind: kind}
}

func Wrap(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on ErrorKind: errors.Is(err, sched.New(sched.TimedOut)) is true
// for any *Error carrying that kind, regardless of its Cause.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// KindOf extracts the ErrorKind of err, defaulting to IoError for any error
// that isn't a *sched.Error.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return IoError
}

var (
	ErrCanceled = New(Canceled)
	ErrTimedOut = New(TimedOut)
)
