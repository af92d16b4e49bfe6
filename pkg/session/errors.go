package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Load when the row holds no selected cells.
	ErrNotFound = errors.New("entity not found")
	// ErrInvalidRowKey is returned when a row key cannot be encoded for the entity type.
	ErrInvalidRowKey = errors.New("invalid row key")
	// ErrInvalidScan is returned for a malformed scan filter.
	ErrInvalidScan = errors.New("invalid scan")
	// ErrUnknownFamily is returned when a family is not mapped by the entity type.
	ErrUnknownFamily = errors.New("unknown family")
	// ErrUnknownField is returned when a field is not mapped by the entity type.
	ErrUnknownField = errors.New("unknown field")
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
