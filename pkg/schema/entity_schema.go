package schema

import (
	"reflect"
)

// EntitySchema is the compiled, immutable mapping of one Go struct type.
type EntitySchema struct {
	typeID    string
	goType    reflect.Type
	table     string
	namespace string
	rowKey    RowKeyDescriptor
	fields    []*FieldDescriptor
	byName    map[string]*FieldDescriptor
}

// TypeID returns the registry key of the schema, see TypeIDOf.
func (s *EntitySchema) TypeID() string { return s.typeID }

// GoType returns the struct type the schema maps.
func (s *EntitySchema) GoType() reflect.Type { return s.goType }

func (s *EntitySchema) Table() string     { return s.table }
func (s *EntitySchema) Namespace() string { return s.namespace }

// QualifiedTable returns "namespace:table", or the bare table without a namespace.
func (s *EntitySchema) QualifiedTable() string {
	return qualify(s.namespace, s.table)
}

func qualify(namespace, table string) string {
	if namespace == "" {
		return table
	}
	return namespace + ":" + table
}

func (s *EntitySchema) RowKey() RowKeyDescriptor { return s.rowKey }

// Fields returns the descriptors in declaration order.
func (s *EntitySchema) Fields() []*FieldDescriptor {
	out := make([]*FieldDescriptor, len(s.fields))
	copy(out, s.fields)
	return out
}

// FieldByName looks a descriptor up by its Go field name.
func (s *EntitySchema) FieldByName(name string) (*FieldDescriptor, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// FieldFor resolves a stored cell to the first field, in declaration order,
// whose family equals family and whose column is a prefix of qualifier.
func (s *EntitySchema) FieldFor(family, qualifier string) (*FieldDescriptor, bool) {
	for _, f := range s.fields {
		if f.Matches(family, qualifier) {
			return f, true
		}
	}
	return nil, false
}

// Families returns every family the schema writes to, in first-use order.
func (s *EntitySchema) Families() []string {
	seen := make(map[string]struct{}, len(s.fields))
	var out []string
	for _, f := range s.fields {
		if _, ok := seen[f.family]; ok {
			continue
		}
		seen[f.family] = struct{}{}
		out = append(out, f.family)
	}
	return out
}

// TypeIDOf returns the identifier entity schemas are registered under:
// the package path and name of t, with pointers dereferenced.
func TypeIDOf(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// TypeIDFor is TypeIDOf for the type parameter T.
func TypeIDFor[T any]() string {
	return TypeIDOf(reflect.TypeFor[T]())
}
