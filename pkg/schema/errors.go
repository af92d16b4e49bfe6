package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaMissing is returned when an entity type was never registered.
	ErrSchemaMissing = errors.New("schema missing")
	// ErrNoRowKey is returned when an entity type declares no row key.
	ErrNoRowKey = errors.New("no row key")
	// ErrDuplicateField is returned when two descriptors of one type collide.
	ErrDuplicateField = errors.New("duplicate field")
	// ErrDuplicateType is returned when one type is registered twice.
	ErrDuplicateType = errors.New("duplicate entity type")
	// ErrPrefixOverlap is returned when two columns of one family prefix each other.
	ErrPrefixOverlap = errors.New("column prefix overlap")
	// ErrInvalidField is returned for a field that cannot be mapped.
	ErrInvalidField = errors.New("invalid field")
	// ErrInvalidModel is returned when the entity type itself cannot be mapped.
	ErrInvalidModel = errors.New("invalid model")
	// ErrInvalidDefinition is returned when a schema definition file fails validation.
	ErrInvalidDefinition = errors.New("invalid schema definition")
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
