package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned for values outside the scalar set that the
	// fallback serializer cannot handle either.
	ErrUnsupported = errors.New("codec unsupported")
	// ErrInvalidLength is returned when a fixed width layout receives the wrong number of bytes.
	ErrInvalidLength = errors.New("invalid encoded length")
	// ErrInvalidText is returned when a textual form cannot be parsed into the requested type.
	ErrInvalidText = errors.New("invalid text form")
)

// Error wraps a sentinel error with additional context
type Error struct {
	err     error
	context string
}

// Error satisfies the error interface
func (e *Error) Error() string {
	if e.context == "" {
		return e.err.Error()
	}
	return fmt.Sprintf("%s: %s", e.err.Error(), e.context)
}

// Unwrap implements the errors.Unwrap interface for compatibility with errors.Is/As
func (e *Error) Unwrap() error {
	return e.err
}

func newError(err error, format string, args ...interface{}) *Error {
	return &Error{
		err:     err,
		context: fmt.Sprintf(format, args...),
	}
}
