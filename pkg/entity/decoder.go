package entity

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/litetable/litetable-orm/pkg/codec"
	"github.com/litetable/litetable-orm/pkg/mapper"
	"github.com/litetable/litetable-orm/pkg/schema"
)

// Decoder rebuilds one entity from the cells of its row. Cells may arrive in
// any order. A Decoder holds the entity under construction and must not be
// shared between goroutines.
type Decoder struct {
	schema  *schema.EntitySchema
	ptr     reflect.Value
	mappers map[string]mapper.ValueMapper
}

// NewDecoder starts an entity of the type registered as typeID with its row
// key set from rowKey.
func NewDecoder(reg *schema.Registry, typeID string, rowKey []byte) (*Decoder, error) {
	s, err := reg.Lookup(typeID)
	if err != nil {
		return nil, err
	}
	return NewSchemaDecoder(s, rowKey)
}

// NewSchemaDecoder is NewDecoder for an already resolved schema.
func NewSchemaDecoder(s *schema.EntitySchema, rowKey []byte) (*Decoder, error) {
	if len(rowKey) == 0 {
		return nil, newError(ErrRowKeyMissing, "%s: empty row key", s.TypeID())
	}

	d := &Decoder{
		schema:  s,
		ptr:     reflect.New(s.GoType()),
		mappers: make(map[string]mapper.ValueMapper),
	}

	rk := s.RowKey()
	if err := codec.DecodeInto(rowKey, rk.Value(d.ptr.Elem())); err != nil {
		return nil, fmt.Errorf("decode row key %s.%s: %w", s.TypeID(), rk.Name(), err)
	}
	return d, nil
}

// Decode builds the entity registered as typeID from the cells of one row. The
// result is a pointer to the entity struct. Any failing cell fails the whole row.
func Decode(reg *schema.Registry, typeID string, rowKey []byte, cells []Cell) (any, error) {
	d, err := NewDecoder(reg, typeID, rowKey)
	if err != nil {
		return nil, err
	}
	if err := d.SetAll(cells); err != nil {
		return nil, err
	}
	return d.Object(), nil
}

// DecodeAs is Decode for the entity type T.
func DecodeAs[T any](reg *schema.Registry, rowKey []byte, cells []Cell) (*T, error) {
	s, err := schema.LookupFor[T](reg)
	if err != nil {
		return nil, err
	}
	d, err := NewSchemaDecoder(s, rowKey)
	if err != nil {
		return nil, err
	}
	if err := d.SetAll(cells); err != nil {
		return nil, err
	}
	return d.Object().(*T), nil
}

func (d *Decoder) Schema() *schema.EntitySchema {
	return d.schema
}

// Object returns the entity built so far, as a pointer to its struct.
func (d *Decoder) Object() any {
	return d.ptr.Interface()
}

// SetAll applies cells in order, stopping at the first error.
func (d *Decoder) SetAll(cells []Cell) error {
	for _, c := range cells {
		if err := d.Set(c); err != nil {
			return err
		}
	}
	return nil
}

// Set resolves cell to its field and stores the value.
func (d *Decoder) Set(cell Cell) error {
	f, ok := d.schema.FieldFor(cell.Family, cell.Qualifier)
	if !ok {
		return newError(ErrFieldUnresolved, "%s: %s:%s", d.schema.TypeID(), cell.Family, cell.Qualifier)
	}
	if err := d.set(f, cell); err != nil {
		return fmt.Errorf("decode %s.%s from %s:%s: %w",
			d.schema.TypeID(), f.Name(), cell.Family, cell.Qualifier, err)
	}
	return nil
}

func (d *Decoder) set(f *schema.FieldDescriptor, cell Cell) error {
	target := f.Value(d.ptr.Elem())

	if !f.IsCollection() {
		if !f.HasMapper() {
			return codec.DecodeInto(cell.Value, target)
		}
		m, err := d.mapper(f)
		if err != nil {
			return err
		}
		obj, err := m.ToObject(cell.Qualifier, cell.Value, f.Type())
		if err != nil {
			return err
		}
		return assign(target, obj)
	}

	elem := reflect.New(f.InnerType()).Elem()
	if !f.HasMapper() {
		// the element is the rest of the qualifier name
		rest := strings.TrimPrefix(cell.Qualifier, f.Column())
		if err := codec.ParseTextInto(rest, elem); err != nil {
			return err
		}
	} else {
		m, err := d.mapper(f)
		if err != nil {
			return err
		}
		obj, err := m.ToObject(cell.Qualifier, cell.Value, f.InnerType())
		if err != nil {
			return err
		}
		if err := assign(elem, obj); err != nil {
			return err
		}
	}
	return add(target, f.CollectionKind(), elem)
}

func (d *Decoder) mapper(f *schema.FieldDescriptor) (mapper.ValueMapper, error) {
	if m, ok := d.mappers[f.Name()]; ok {
		return m, nil
	}
	m, err := f.NewMapper()
	if err != nil {
		return nil, err
	}
	d.mappers[f.Name()] = m
	return m, nil
}

func assign(target reflect.Value, obj any) error {
	if obj == nil {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}
	v := reflect.ValueOf(obj)
	if !v.Type().AssignableTo(target.Type()) {
		return newError(ErrTypeMismatch, "cannot assign %s to %s", v.Type(), target.Type())
	}
	target.Set(v)
	return nil
}

// add appends elem to a list or inserts it into a set, creating the
// collection on first use.
func add(target reflect.Value, kind schema.CollectionKind, elem reflect.Value) error {
	t := target.Type()
	switch kind {
	case schema.List:
		if target.IsNil() {
			target.Set(reflect.MakeSlice(t, 0, 1))
		}
		target.Set(reflect.Append(target, elem))
		return nil
	case schema.Set:
		if target.IsNil() {
			target.Set(reflect.MakeMap(t))
		}
		member := reflect.Zero(t.Elem())
		if t.Elem().Kind() == reflect.Bool {
			member = reflect.ValueOf(true).Convert(t.Elem())
		}
		target.SetMapIndex(elem, member)
		return nil
	}
	return newError(ErrTypeMismatch, "%s is not a collection", t)
}
