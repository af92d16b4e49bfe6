package memstore

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMutation is returned for a mutation without row key or family.
	ErrInvalidMutation = errors.New("invalid mutation")
	// ErrInvalidTable is returned when no table is named.
	ErrInvalidTable = errors.New("invalid table")
	// ErrStarted is returned when Start is called twice.
	ErrStarted = errors.New("store already started")
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
