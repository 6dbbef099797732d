// Package errors defines the fatal error taxonomy of the annotator.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code classifies an annotation failure.
type Code string

const (
	// CodeConfiguration covers database table problems: missing columns,
	// invalid enum values, conflicting ANNOTATION.BY per region type.
	CodeConfiguration Code = "configuration"
	// CodeSchema covers base table problems: header marker, coordinates.
	CodeSchema Code = "schema"
	// CodeResource covers reference files that are missing or unreadable.
	CodeResource Code = "resource"
	// CodeState covers calling operations out of order.
	CodeState Code = "state"
)

// Error is a structured annotator error with code and context.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetail attaches a context value and returns the error.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Sentinels usable with errors.Is.
var (
	ErrConfiguration = &Error{Code: CodeConfiguration}
	ErrSchema        = &Error{Code: CodeSchema}
	ErrResource      = &Error{Code: CodeResource}
	ErrState         = &Error{Code: CodeState}
)

func newError(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Configuration creates a configuration error.
func Configuration(format string, args ...any) *Error {
	return newError(CodeConfiguration, nil, format, args...)
}

// Schema creates a schema error.
func Schema(format string, args ...any) *Error {
	return newError(CodeSchema, nil, format, args...)
}

// Resource creates a resource error wrapping cause.
func Resource(cause error, format string, args ...any) *Error {
	return newError(CodeResource, cause, format, args...)
}

// State creates a state error.
func State(format string, args ...any) *Error {
	return newError(CodeState, nil, format, args...)
}

// HasCode reports whether err, or anything it wraps, is an *Error with code.
func HasCode(err error, code Code) bool {
	var e *Error
	if !stderrors.As(err, &e) {
		return false
	}
	return e.Code == code
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}
