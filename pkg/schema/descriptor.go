package schema

import (
	"reflect"
	"strings"

	"github.com/litetable/litetable-orm/pkg/mapper"
)

// CollectionKind tells how a multi-valued field is held in Go.
type CollectionKind int

const (
	// Scalar fields hold exactly one value.
	Scalar CollectionKind = iota
	// List fields are slices and keep cell order.
	List
	// Set fields are map[T]struct{} or map[T]bool.
	Set
)

func (k CollectionKind) String() string {
	switch k {
	case List:
		return "list"
	case Set:
		return "set"
	default:
		return "scalar"
	}
}

// FieldDescriptor describes how one struct field maps onto qualifiers of a family.
type FieldDescriptor struct {
	name       string
	typ        reflect.Type
	family     string
	column     string
	insertable bool
	updatable  bool
	mapperName string
	factory    mapper.Factory
	kind       CollectionKind
	inner      reflect.Type
	index      []int
}

func (f *FieldDescriptor) Name() string       { return f.name }
func (f *FieldDescriptor) Type() reflect.Type { return f.typ }
func (f *FieldDescriptor) Family() string     { return f.family }
func (f *FieldDescriptor) Column() string     { return f.column }
func (f *FieldDescriptor) Insertable() bool   { return f.insertable }
func (f *FieldDescriptor) Updatable() bool    { return f.updatable }
func (f *FieldDescriptor) MapperName() string { return f.mapperName }

// HasMapper reports whether the field uses a strategy other than none.
func (f *FieldDescriptor) HasMapper() bool {
	return f.mapperName != mapper.NoneName
}

// NewMapper constructs the field's mapper for one encode or decode.
func (f *FieldDescriptor) NewMapper() (mapper.ValueMapper, error) {
	return mapper.Instantiate(f.mapperName, f.factory)
}

func (f *FieldDescriptor) IsCollection() bool             { return f.kind != Scalar }
func (f *FieldDescriptor) CollectionKind() CollectionKind { return f.kind }

// InnerType is the element type of a collection field, nil for scalars.
func (f *FieldDescriptor) InnerType() reflect.Type { return f.inner }

// Value returns the field of entity, which must be a struct of the schema's type.
func (f *FieldDescriptor) Value(entity reflect.Value) reflect.Value {
	return entity.FieldByIndex(f.index)
}

// Matches reports whether a cell at family and qualifier belongs to this field.
func (f *FieldDescriptor) Matches(family, qualifier string) bool {
	return f.family == family && strings.HasPrefix(qualifier, f.column)
}

// RowKeyDescriptor names the field holding the row key.
type RowKeyDescriptor struct {
	name  string
	typ   reflect.Type
	index []int
}

func (r RowKeyDescriptor) Name() string       { return r.name }
func (r RowKeyDescriptor) Type() reflect.Type { return r.typ }

// Value returns the row key field of entity.
func (r RowKeyDescriptor) Value(entity reflect.Value) reflect.Value {
	return entity.FieldByIndex(r.index)
}

// collectionOf derives the collection shape of t. []byte is a scalar.
func collectionOf(t reflect.Type) (CollectionKind, reflect.Type) {
	switch t.Kind() {
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return Scalar, nil
		}
		return List, t.Elem()
	case reflect.Map:
		elem := t.Elem()
		if elem.Kind() == reflect.Bool || (elem.Kind() == reflect.Struct && elem.NumField() == 0) {
			return Set, t.Key()
		}
	}
	return Scalar, nil
}
