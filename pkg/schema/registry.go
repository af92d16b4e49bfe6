package schema

import (
	"errors"
	"reflect"
	"sort"

	"github.com/litetable/litetable-orm/pkg/mapper"
)

// Builder collects entity schemas before they are frozen into a Registry.
type Builder struct {
	schemas []*EntitySchema
	errs    []error
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Register adds a compiled schema.
func (b *Builder) Register(s *EntitySchema) *Builder {
	if s == nil {
		b.errs = append(b.errs, newError(ErrInvalidModel, "nil schema"))
		return b
	}
	b.schemas = append(b.schemas, s)
	return b
}

// RegisterStruct compiles model with FromStruct and registers the result.
func (b *Builder) RegisterStruct(model any, mappers *mapper.Registry) *Builder {
	s, err := FromStruct(model, mappers)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	return b.Register(s)
}

// RegisterEntity compiles eb and registers the result.
func (b *Builder) RegisterEntity(eb *EntityBuilder, mappers *mapper.Registry) *Builder {
	s, err := eb.Compile(mappers)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	return b.Register(s)
}

// Build returns the registry, or every registration error joined together.
func (b *Builder) Build() (*Registry, error) {
	errGrp := append([]error(nil), b.errs...)

	r := &Registry{
		byID:   make(map[string]*EntitySchema, len(b.schemas)),
		byType: make(map[reflect.Type]*EntitySchema, len(b.schemas)),
	}
	for _, s := range b.schemas {
		if _, dup := r.byID[s.typeID]; dup {
			errGrp = append(errGrp, newError(ErrDuplicateType, "%s", s.typeID))
			continue
		}
		r.byID[s.typeID] = s
		r.byType[s.goType] = s
		r.ids = append(r.ids, s.typeID)
	}
	if err := errors.Join(errGrp...); err != nil {
		return nil, err
	}

	sort.Strings(r.ids)
	return r, nil
}

// Registry maps entity type identifiers to their schemas. It never changes
// after Build, so it is safe for concurrent use without locking.
type Registry struct {
	byID   map[string]*EntitySchema
	byType map[reflect.Type]*EntitySchema
	ids    []string
}

// Lookup returns the schema registered under typeID.
func (r *Registry) Lookup(typeID string) (*EntitySchema, error) {
	if r != nil {
		if s, ok := r.byID[typeID]; ok {
			return s, nil
		}
	}
	return nil, newError(ErrSchemaMissing, "%s", typeID)
}

// LookupType returns the schema of t, dereferencing pointers.
func (r *Registry) LookupType(t reflect.Type) (*EntitySchema, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if r != nil {
		if s, ok := r.byType[t]; ok {
			return s, nil
		}
	}
	return nil, newError(ErrSchemaMissing, "%s", TypeIDOf(t))
}

// TypeIDs returns every registered identifier, sorted.
func (r *Registry) TypeIDs() []string {
	return append([]string(nil), r.ids...)
}

// LookupFor is LookupType for the type parameter T.
func LookupFor[T any](r *Registry) (*EntitySchema, error) {
	return r.LookupType(reflect.TypeFor[T]())
}
