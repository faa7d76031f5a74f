// Package apperrors provides the application error type used across the
// service. Errors are built from package-level templates, carry an HTTP
// status code, and chain through errors.Is/errors.As so callers can match
// on the template while still seeing the augmented message.
package apperrors

import (
	"errors"
	"strings"
)

// Error is the interface implemented by all application errors. Methods
// that derive a new error never mutate the receiver.
type Error interface {
	error
	Unwrap() error

	New(msg string) Error                  // fresh error with this one as template
	Msg(msg string) Error                  // new message, wraps the original
	MsgErr(msg string, errs ...error) Error // new message, wraps original plus extras
	Err(errs ...error) Error               // same message, attaches extra causes
	SetStatusCode(code int) Error          // copy with a different HTTP status
	StatusCode() int
	ErrorAll() string // message including all wrapped causes
	UnwrapAll() []error
}

type appError struct {
	msg        string
	base       error
	wrapped    []error
	statusCode int
}

// New creates a root error template with the given message.
func New(msg string) Error {
	return &appError{msg: msg}
}

func (e *appError) Error() string {
	return e.msg
}

func (e *appError) ErrorAll() string {
	if len(e.wrapped) == 0 {
		return e.msg
	}
	var b strings.Builder
	b.WriteString(e.msg)
	for _, err := range e.wrapped {
		b.WriteString(": ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *appError) Unwrap() error {
	return e.base
}

func (e *appError) UnwrapAll() []error {
	return e.wrapped
}

func (e *appError) New(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		statusCode: e.statusCode,
	}
}

func (e *appError) Msg(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		statusCode: e.statusCode,
	}
}

func (e *appError) MsgErr(msg string, errs ...error) Error {
	return &appError{
		msg:        msg,
		base:       e,
		wrapped:    errs,
		statusCode: e.statusCode,
	}
}

func (e *appError) Err(errs ...error) Error {
	return &appError{
		msg:        e.msg,
		base:       e,
		wrapped:    append(append([]error{}, e.wrapped...), errs...),
		statusCode: e.statusCode,
	}
}

func (e *appError) SetStatusCode(code int) Error {
	cp := *e
	cp.statusCode = code
	return &cp
}

func (e *appError) StatusCode() int {
	return e.statusCode
}

// Is matches the target against this error and every wrapped cause, so a
// derived error still matches its template via errors.Is.
func (e *appError) Is(target error) bool {
	if errTarget, ok := target.(*appError); ok && e == errTarget {
		return true
	}
	for _, err := range e.wrapped {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
