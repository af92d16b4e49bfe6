package entity

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/litetable/litetable-orm/pkg/codec"
	"github.com/litetable/litetable-orm/pkg/mapper"
	"github.com/litetable/litetable-orm/pkg/schema"
)

// Encoder produces the mutations of one entity. Mappers are constructed once
// per Encoder, so an Encoder must not be shared between goroutines.
type Encoder struct {
	schema  *schema.EntitySchema
	entity  reflect.Value
	mappers map[string]mapper.ValueMapper
}

// NewEncoder looks up the schema of obj, a struct or pointer to struct.
func NewEncoder(reg *schema.Registry, obj any) (*Encoder, error) {
	v, err := entityValue(obj)
	if err != nil {
		return nil, err
	}
	s, err := reg.LookupType(v.Type())
	if err != nil {
		return nil, err
	}
	return &Encoder{
		schema:  s,
		entity:  v,
		mappers: make(map[string]mapper.ValueMapper),
	}, nil
}

// Encode is NewEncoder followed by Encoder.Encode.
func Encode(reg *schema.Registry, obj any, mode Mode) ([]Mutation, error) {
	e, err := NewEncoder(reg, obj)
	if err != nil {
		return nil, err
	}
	return e.Encode(mode)
}

// EncodeAll encodes every object in order. The result is grouped by row as
// long as no two objects share a row key.
func EncodeAll(reg *schema.Registry, mode Mode, objs ...any) ([]Mutation, error) {
	var out []Mutation
	for _, obj := range objs {
		muts, err := Encode(reg, obj, mode)
		if err != nil {
			return nil, err
		}
		out = append(out, muts...)
	}
	return out, nil
}

func (e *Encoder) Schema() *schema.EntitySchema {
	return e.schema
}

// RowKey returns the encoded row key. Zero keys are rejected with
// ErrRowKeyMissing, so an integer key of 0 or an empty string cannot be stored.
func (e *Encoder) RowKey() ([]byte, error) {
	rk := e.schema.RowKey()
	v := rk.Value(e.entity)
	if v.IsZero() {
		return nil, newError(ErrRowKeyMissing, "%s.%s", e.schema.TypeID(), rk.Name())
	}

	b, err := codec.EncodeValue(v)
	if err != nil {
		return nil, fmt.Errorf("encode row key %s.%s: %w", e.schema.TypeID(), rk.Name(), err)
	}
	if len(b) == 0 {
		return nil, newError(ErrRowKeyMissing, "%s.%s encodes to no bytes", e.schema.TypeID(), rk.Name())
	}
	return b, nil
}

// Encode returns the mutations for every field mode includes. Fields holding
// nil produce no mutation. Nothing is returned when any field fails.
func (e *Encoder) Encode(mode Mode) ([]Mutation, error) {
	rowKey, err := e.RowKey()
	if err != nil {
		return nil, err
	}

	var out []Mutation
	for _, f := range e.schema.Fields() {
		if !mode.includes(f) {
			continue
		}
		muts, err := e.encodeField(rowKey, f)
		if err != nil {
			return nil, fmt.Errorf("encode %s.%s: %w", e.schema.TypeID(), f.Name(), err)
		}
		out = append(out, muts...)
	}
	return out, nil
}

func (e *Encoder) encodeField(rowKey []byte, f *schema.FieldDescriptor) ([]Mutation, error) {
	v := f.Value(e.entity)
	if f.IsCollection() {
		return e.encodeCollection(rowKey, f, v)
	}
	if absent(v) {
		return nil, nil
	}

	if !f.HasMapper() {
		b, err := codec.EncodeValue(v)
		if err != nil {
			return nil, err
		}
		return []Mutation{{RowKey: rowKey, Family: f.Family(), Qualifier: f.Column(), Value: b}}, nil
	}

	m, err := e.mapper(f)
	if err != nil {
		return nil, err
	}
	qualifier, err := m.ColumnName(f.Column(), v.Interface())
	if err != nil {
		return nil, err
	}
	value, err := m.ColumnValue(v.Interface())
	if err != nil {
		return nil, err
	}
	return []Mutation{{RowKey: rowKey, Family: f.Family(), Qualifier: qualifier, Value: value}}, nil
}

// encodeCollection writes one qualifier per element. Without a mapper the
// element lives in the qualifier name and the value is empty.
func (e *Encoder) encodeCollection(rowKey []byte, f *schema.FieldDescriptor, v reflect.Value) ([]Mutation, error) {
	if absent(v) {
		return nil, nil
	}

	var m mapper.ValueMapper
	if f.HasMapper() {
		var err error
		if m, err = e.mapper(f); err != nil {
			return nil, err
		}
	}

	elems := elements(f, v)
	out := make([]Mutation, 0, len(elems))
	for _, elem := range elems {
		mut := Mutation{RowKey: rowKey, Family: f.Family()}
		if m == nil {
			text, err := codec.FormatValue(elem)
			if err != nil {
				return nil, err
			}
			mut.Qualifier = f.Column() + text
			mut.Value = []byte{}
		} else {
			name, err := m.ColumnName(f.Column(), elem.Interface())
			if err != nil {
				return nil, err
			}
			value, err := m.ColumnValue(elem.Interface())
			if err != nil {
				return nil, err
			}
			mut.Qualifier = f.Column() + name
			mut.Value = value
		}
		out = append(out, mut)
	}

	// map iteration order is random
	if f.CollectionKind() == schema.Set {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Qualifier < out[j].Qualifier
		})
	}
	return out, nil
}

func (e *Encoder) mapper(f *schema.FieldDescriptor) (mapper.ValueMapper, error) {
	if m, ok := e.mappers[f.Name()]; ok {
		return m, nil
	}
	m, err := f.NewMapper()
	if err != nil {
		return nil, err
	}
	e.mappers[f.Name()] = m
	return m, nil
}

// elements lists the members of a collection field. For map[T]bool sets only
// keys mapped to true are members.
func elements(f *schema.FieldDescriptor, v reflect.Value) []reflect.Value {
	switch f.CollectionKind() {
	case schema.List:
		out := make([]reflect.Value, v.Len())
		for i := range out {
			out[i] = v.Index(i)
		}
		return out
	case schema.Set:
		out := make([]reflect.Value, 0, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			if val := iter.Value(); val.Kind() == reflect.Bool && !val.Bool() {
				continue
			}
			out = append(out, iter.Key())
		}
		return out
	}
	return nil
}

func absent(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}

func entityValue(obj any) (reflect.Value, error) {
	if obj == nil {
		return reflect.Value{}, newError(ErrInvalidEntity, "nil entity")
	}
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, newError(ErrInvalidEntity, "nil %s", v.Type())
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, newError(ErrInvalidEntity, "%s is not a struct", v.Type())
	}
	return v, nil
}
