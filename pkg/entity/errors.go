package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrFieldUnresolved is returned when a cell matches no field of the schema.
	ErrFieldUnresolved = errors.New("field unresolved")
	// ErrRowKeyMissing is returned when an entity has no row key value.
	ErrRowKeyMissing = errors.New("row key missing")
	// ErrInvalidEntity is returned for nil entities and non struct values.
	ErrInvalidEntity = errors.New("invalid entity")
	// ErrTypeMismatch is returned when a mapper produces a value the field cannot hold.
	ErrTypeMismatch = errors.New("type mismatch")
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
