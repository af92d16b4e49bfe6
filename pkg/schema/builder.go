package schema

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/litetable/litetable-orm/pkg/mapper"
	"github.com/rs/zerolog/log"
)

// FieldSpec declares one mapped field.
type FieldSpec struct {
	// Name is the Go struct field name.
	Name string
	// Family the field's qualifiers live in.
	Family string
	// Column is the qualifier name, or qualifier prefix for collections and
	// mapped fields. Defaults to Name.
	Column string
	// Mapper names a registered mapper. Empty means none.
	Mapper string
	// NoInsert leaves the field out of insert mutations.
	NoInsert bool
	// NoUpdate leaves the field out of update mutations.
	NoUpdate bool
	// Blob stores a slice or map field as a single codec encoded value
	// instead of one qualifier per element.
	Blob bool
}

// EntityBuilder assembles an EntitySchema for one struct type.
type EntityBuilder struct {
	goType       reflect.Type
	table        string
	namespace    string
	rowKey       string
	specs        []FieldSpec
	allowOverlap bool
}

// NewEntity starts a schema for goType stored in table. Pointer types are
// dereferenced.
func NewEntity(goType reflect.Type, table string) *EntityBuilder {
	for goType != nil && goType.Kind() == reflect.Pointer {
		goType = goType.Elem()
	}
	return &EntityBuilder{
		goType: goType,
		table:  table,
	}
}

// For is NewEntity for the type parameter T.
func For[T any](table string) *EntityBuilder {
	return NewEntity(reflect.TypeFor[T](), table)
}

func (b *EntityBuilder) Namespace(ns string) *EntityBuilder {
	b.namespace = ns
	return b
}

// RowKey names the struct field that holds the row key.
func (b *EntityBuilder) RowKey(field string) *EntityBuilder {
	b.rowKey = field
	return b
}

func (b *EntityBuilder) Field(spec FieldSpec) *EntityBuilder {
	b.specs = append(b.specs, spec)
	return b
}

// Column is shorthand for a field without options.
func (b *EntityBuilder) Column(field, family, column string) *EntityBuilder {
	return b.Field(FieldSpec{Name: field, Family: family, Column: column})
}

// AllowPrefixOverlap accepts columns of one family that prefix each other.
// Cells then resolve to the first matching field in declaration order.
func (b *EntityBuilder) AllowPrefixOverlap() *EntityBuilder {
	b.allowOverlap = true
	return b
}

// Compile validates the declarations and resolves mapper names against mappers,
// returning every problem found joined into one error.
func (b *EntityBuilder) Compile(mappers *mapper.Registry) (*EntitySchema, error) {
	if b.goType == nil || b.goType.Kind() != reflect.Struct {
		return nil, newError(ErrInvalidModel, "%v is not a struct", b.goType)
	}
	typeID := TypeIDOf(b.goType)

	var errGrp []error
	if b.table == "" {
		errGrp = append(errGrp, newError(ErrInvalidModel, "%s: table required", typeID))
	}

	s := &EntitySchema{
		typeID:    typeID,
		goType:    b.goType,
		table:     b.table,
		namespace: b.namespace,
		byName:    make(map[string]*FieldDescriptor, len(b.specs)),
	}

	if b.rowKey == "" {
		errGrp = append(errGrp, newError(ErrNoRowKey, "%s", typeID))
	} else if sf, err := b.structField(b.rowKey); err != nil {
		errGrp = append(errGrp, err)
	} else {
		s.rowKey = RowKeyDescriptor{name: sf.Name, typ: sf.Type, index: sf.Index}
	}

	type dedupKey struct {
		name  string
		typ   reflect.Type
		inner reflect.Type
	}
	seen := make(map[dedupKey]struct{}, len(b.specs))
	refs := make([]columnRef, 0, len(b.specs))

	for _, spec := range b.specs {
		f, err := b.compileField(spec, mappers)
		if err != nil {
			errGrp = append(errGrp, err)
			continue
		}

		key := dedupKey{name: f.name, typ: f.typ, inner: f.inner}
		if _, dup := seen[key]; dup {
			errGrp = append(errGrp, newError(ErrDuplicateField, "%s.%s", typeID, f.name))
			continue
		}
		if _, dup := s.byName[f.name]; dup || f.name == b.rowKey {
			errGrp = append(errGrp, newError(ErrDuplicateField, "%s.%s", typeID, f.name))
			continue
		}
		seen[key] = struct{}{}

		s.fields = append(s.fields, f)
		s.byName[f.name] = f
		refs = append(refs, columnRef{field: f.name, family: f.family, column: f.column})
	}

	for _, err := range prefixOverlaps(refs) {
		if b.allowOverlap {
			log.Warn().Err(err).Msgf("%s: first declared field wins", typeID)
			continue
		}
		errGrp = append(errGrp, err)
	}

	if err := errors.Join(errGrp...); err != nil {
		return nil, err
	}

	log.Debug().Msgf("compiled schema %s: table=%s rowKey=%s fields=%d",
		typeID, s.QualifiedTable(), s.rowKey.name, len(s.fields))
	return s, nil
}

func (b *EntityBuilder) compileField(spec FieldSpec, mappers *mapper.Registry) (*FieldDescriptor, error) {
	if spec.Name == "" {
		return nil, newError(ErrInvalidField, "%s: field name required", b.goType)
	}
	if spec.Family == "" {
		return nil, newError(ErrInvalidField, "%s.%s: family required", b.goType, spec.Name)
	}

	sf, err := b.structField(spec.Name)
	if err != nil {
		return nil, err
	}

	mapperName := spec.Mapper
	if mapperName == "" {
		mapperName = mapper.NoneName
	}
	factory, err := mappers.Resolve(mapperName)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", b.goType, spec.Name, err)
	}

	column := spec.Column
	if column == "" {
		column = spec.Name
	}

	f := &FieldDescriptor{
		name:       sf.Name,
		typ:        sf.Type,
		family:     spec.Family,
		column:     column,
		insertable: !spec.NoInsert,
		updatable:  !spec.NoUpdate,
		mapperName: mapperName,
		factory:    factory,
		index:      sf.Index,
	}
	if !spec.Blob {
		f.kind, f.inner = collectionOf(sf.Type)
	}
	return f, nil
}

// structField finds an exported field reachable without crossing a pointer.
func (b *EntityBuilder) structField(name string) (reflect.StructField, error) {
	sf, ok := b.goType.FieldByName(name)
	if !ok {
		return sf, newError(ErrInvalidField, "%s has no field %s", b.goType, name)
	}
	if !sf.IsExported() {
		return sf, newError(ErrInvalidField, "%s.%s is not exported", b.goType, name)
	}

	t := b.goType
	for _, i := range sf.Index[:len(sf.Index)-1] {
		t = t.Field(i).Type
		if t.Kind() == reflect.Pointer {
			return sf, newError(ErrInvalidField, "%s.%s is promoted through a pointer", b.goType, name)
		}
	}
	return sf, nil
}
