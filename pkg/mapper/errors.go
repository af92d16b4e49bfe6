package mapper

import (
	"errors"
	"fmt"
)

var (
	// ErrConstruction is returned when a mapper factory fails or yields no mapper.
	ErrConstruction = errors.New("mapper construction failed")
	// ErrUnknown is returned when a field names a mapper that was never registered.
	ErrUnknown = errors.New("unknown mapper")
	// ErrDuplicate is returned when a mapper name is registered twice.
	ErrDuplicate = errors.New("mapper already registered")
	// ErrReserved is returned when registering under an empty or reserved name.
	ErrReserved = errors.New("reserved mapper name")
	// ErrTypeMismatch is returned when a typed mapper receives a value of another type.
	ErrTypeMismatch = errors.New("mapper type mismatch")
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
