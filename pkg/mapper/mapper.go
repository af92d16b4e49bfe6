// Package mapper defines the strategy used to convert a field value to and from
// its qualifier name and cell value when the plain codec layout is not enough.
package mapper

import (
	"reflect"

	"github.com/litetable/litetable-orm/pkg/codec"
)

//go:generate mockgen -destination=mapper_mock.go -package=mapper -source=mapper.go

// NoneName is the name fields use when they have no custom mapper.
const NoneName = "none"

// ValueMapper converts between a field value and its stored representation.
type ValueMapper interface {
	// ToObject rebuilds a value of the target type from a cell. qualifier is the
	// full qualifier name the cell was stored under.
	ToObject(qualifier string, raw []byte, target reflect.Type) (any, error)
	// ColumnName derives the qualifier for value from the field's base column name.
	ColumnName(base string, value any) (string, error)
	// ColumnValue returns the bytes stored for value.
	ColumnValue(value any) ([]byte, error)
}

// Factory constructs a ValueMapper. It is called once for every encode or
// decode that touches a field using the mapper.
type Factory func() (ValueMapper, error)

type none struct{}

// None is the identity strategy: the base column name is kept and values go
// through the codec unchanged.
func None() ValueMapper {
	return none{}
}

func (none) ToObject(_ string, raw []byte, target reflect.Type) (any, error) {
	return codec.Decode(raw, target)
}

func (none) ColumnName(base string, _ any) (string, error) {
	return base, nil
}

func (none) ColumnValue(value any) ([]byte, error) {
	return codec.Encode(value)
}

// NoneFactory builds the None mapper.
func NoneFactory() (ValueMapper, error) {
	return None(), nil
}

// Constant returns a factory that always hands out m. Use it for mappers
// that keep no per-call state.
func Constant(m ValueMapper) Factory {
	return func() (ValueMapper, error) {
		return m, nil
	}
}

// Instantiate runs f and reports any failure as ErrConstruction. name is only
// used for the error context.
func Instantiate(name string, f Factory) (m ValueMapper, err error) {
	if f == nil {
		return nil, newError(ErrConstruction, "mapper %q has no factory", name)
	}

	defer func() {
		if r := recover(); r != nil {
			m = nil
			err = newError(ErrConstruction, "mapper %q panicked: %v", name, r)
		}
	}()

	m, err = f()
	if err != nil {
		return nil, newError(ErrConstruction, "mapper %q: %v", name, err)
	}
	if m == nil {
		return nil, newError(ErrConstruction, "mapper %q returned nil", name)
	}
	return m, nil
}
