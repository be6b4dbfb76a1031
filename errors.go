package datasets

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrorKind classifies the failures that dataset operations can produce.
// Callers that need to branch on a failure mode should use ErrorKindOf or
// errors.As rather than matching message text.
type ErrorKind string

const (
	// ErrorKindConfiguration means the dataset was constructed with, or a
	// call was made with, parameters that can never work (for example an
	// unsupported file format). These errors are not retryable.
	ErrorKindConfiguration ErrorKind = "configuration"

	// ErrorKindNotFound means the target of a load does not exist.
	ErrorKindNotFound ErrorKind = "not found"

	// ErrorKindVersionNotFound is a more specific ErrorKindNotFound raised
	// when version resolution finds no existing version for a dataset.
	// Exists translates it to a false result rather than propagating it.
	ErrorKindVersionNotFound ErrorKind = "version not found"

	// ErrorKindInvalidOperation means the operation is unsupported for the
	// current target, such as saving a single file over an existing
	// directory, or overwriting an existing version.
	ErrorKindInvalidOperation ErrorKind = "invalid operation"

	// ErrorKindIO wraps a failure from the underlying filesystem or codec.
	// The adapter layer adds no retry policy; the cause is preserved.
	ErrorKindIO ErrorKind = "io"
)

// Error is the error type returned by all dataset operations. It carries a
// kind for programmatic handling and, where relevant, the underlying cause.
type Error struct {
	kind    ErrorKind
	message string
	cause   error
}

// NewError creates an Error with the given kind and message.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{kind: kind, message: message}
}

// NewErrorf creates an Error with a formatted message.
func NewErrorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

// WrapError creates an Error that records err as its cause. Unwrap exposes
// the cause, so errors.Is and errors.As see through the wrapper.
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{kind: kind, message: message, cause: err}
}

// Kind returns the error's classification.
func (e *Error) Kind() ErrorKind { return e.kind }

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.message, e.cause)
	}
	return e.message
}

func (e *Error) Unwrap() error {
	if e.cause != nil {
		return e.cause
	}
	// Not-found errors are interchangeable with fs.ErrNotExist so that
	// callers can use errors.Is(err, fs.ErrNotExist) uniformly.
	if e.kind == ErrorKindNotFound || e.kind == ErrorKindVersionNotFound {
		return fs.ErrNotExist
	}
	return nil
}

// ErrorKindOf returns the kind of err if it is (or wraps) an Error, or ""
// otherwise.
func ErrorKindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind()
	}
	return ""
}

// IsNotFound reports whether err represents a missing load target,
// including an unresolvable version.
func IsNotFound(err error) bool {
	k := ErrorKindOf(err)
	return k == ErrorKindNotFound || k == ErrorKindVersionNotFound
}
