package litetable

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRowKey is returned for row keys LiteTable cannot carry.
	ErrInvalidRowKey = errors.New("invalid row key")
	// ErrInvalidQualifier is returned for qualifier names LiteTable cannot carry.
	ErrInvalidQualifier = errors.New("invalid qualifier")
	// ErrInvalidTable is returned for table names that would overlap another
	// table's key prefix.
	ErrInvalidTable = errors.New("invalid table")
	// ErrNoFamilies is returned when a call names no column family.
	ErrNoFamilies = errors.New("no column families")
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
