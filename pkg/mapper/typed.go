package mapper

import (
	"reflect"
)

// Typed is a ValueMapper written against the concrete value type T.
type Typed[T any] interface {
	ToObject(qualifier string, raw []byte) (T, error)
	ColumnName(base string, value T) (string, error)
	ColumnValue(value T) ([]byte, error)
}

// Adapt exposes a Typed mapper as a ValueMapper. Values of any other type
// than T are rejected with ErrTypeMismatch.
func Adapt[T any](m Typed[T]) ValueMapper {
	return &adapter[T]{typed: m, valueType: reflect.TypeFor[T]()}
}

// FactoryOf returns a Factory that builds a fresh Typed mapper on every call.
func FactoryOf[T any](newFn func() Typed[T]) Factory {
	return func() (ValueMapper, error) {
		m := newFn()
		if m == nil {
			return nil, newError(ErrConstruction, "nil %s mapper", reflect.TypeFor[T]())
		}
		return Adapt(m), nil
	}
}

type adapter[T any] struct {
	typed     Typed[T]
	valueType reflect.Type
}

func (a *adapter[T]) ToObject(qualifier string, raw []byte, target reflect.Type) (any, error) {
	if target != nil && target != a.valueType {
		return nil, newError(ErrTypeMismatch, "mapper builds %s, field holds %s", a.valueType, target)
	}
	return a.typed.ToObject(qualifier, raw)
}

func (a *adapter[T]) ColumnName(base string, value any) (string, error) {
	v, ok := value.(T)
	if !ok {
		return "", newError(ErrTypeMismatch, "mapper takes %s, got %T", a.valueType, value)
	}
	return a.typed.ColumnName(base, v)
}

func (a *adapter[T]) ColumnValue(value any) ([]byte, error) {
	v, ok := value.(T)
	if !ok {
		return nil, newError(ErrTypeMismatch, "mapper takes %s, got %T", a.valueType, value)
	}
	return a.typed.ColumnValue(v)
}
