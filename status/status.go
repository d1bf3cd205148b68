// Package status defines the error taxonomy used across the goort API boundary.
//
// Every fallible operation in goort returns a plain Go error; a nil error
// encodes success. Non-nil errors carry a Code that callers can recover with
// CodeOf. Errors created by this package also carry a stack trace
// (github.com/pkg/errors) for `%+v` formatting.
//
// No panic is allowed to escape an API boundary: entry points defer
// RecoverInto, which converts any internal fault into a Fail status.
package status

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Code tags an error with its kind. Ok is never carried by an error, it is
// what CodeOf reports for a nil error.
type Code int32

//go:generate go tool enumer -type=Code

const (
	Ok Code = iota
	Fail
	InvalidArgument
	NotImplemented
	EngineError
)

// Error is the concrete error type returned by goort boundary operations.
type Error struct {
	code  Code
	cause error
}

// Error implements the error interface; the message is the cause's message.
func (e *Error) Error() string { return e.cause.Error() }

// Code of the error.
func (e *Error) Code() Code { return e.code }

// Unwrap returns the underlying cause, so errors.Is/As see through Error.
func (e *Error) Unwrap() error { return e.cause }

// Format delegates to the cause, preserving the %+v stack trace from
// pkg/errors.
func (e *Error) Format(s fmt.State, verb rune) {
	if formatter, ok := e.cause.(fmt.Formatter); ok {
		formatter.Format(s, verb)
		return
	}
	_, _ = io.WriteString(s, e.Error())
}

// New returns an error with the given code and message.
func New(code Code, msg string) error {
	return &Error{code: code, cause: errors.New(msg)}
}

// Errorf returns an error with the given code and formatted message.
func Errorf(code Code, format string, args ...any) error {
	return &Error{code: code, cause: errors.Errorf(format, args...)}
}

// WithCode attaches a code to an existing error. A nil err returns nil.
func WithCode(code Code, err error) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, cause: err}
}

// CodeOf reports the code carried by err: Ok for nil, the attached code for
// errors created by this package, and Fail for anything else.
func CodeOf(err error) Code {
	if err == nil {
		return Ok
	}
	var statusErr *Error
	if errors.As(err, &statusErr) {
		return statusErr.code
	}
	return Fail
}

// RecoverInto converts a panic in the calling function into a Fail status
// assigned to *errPtr. Panics that already carry a status keep their code.
//
// It must be deferred directly by the boundary function:
//
//	func (s *Session) Run(...) (err error) {
//		defer status.RecoverInto(&err)
//		...
//	}
func RecoverInto(errPtr *error) {
	exception := recover()
	if exception == nil {
		return
	}
	switch e := exception.(type) {
	case *Error:
		*errPtr = e
	case error:
		*errPtr = &Error{code: Fail, cause: e}
	default:
		*errPtr = &Error{code: Fail, cause: errors.Errorf("%v", exception)}
	}
}
