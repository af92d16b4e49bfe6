package schema

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/litetable/litetable-orm/pkg/mapper"
	"gopkg.in/yaml.v3"
)

// Definition is the file form of a set of entity schemas:
//
//	entities:
//	  - type: github.com/acme/app/model.Pojo
//	    table: pojo
//	    rowKey: Code
//	    fields:
//	      - name: Attr1
//	        family: test
//	        column: attr1
//	      - name: Attr2
//	        family: test
//	        column: attr2
//	        mapper: pojo2
//	        updatable: false
type Definition struct {
	Entities []EntityDefinition `yaml:"entities" validate:"required,min=1,dive"`
}

type EntityDefinition struct {
	Type               string            `yaml:"type" validate:"required"`
	Table              string            `yaml:"table" validate:"required"`
	Namespace          string            `yaml:"namespace"`
	RowKey             string            `yaml:"rowKey" validate:"required"`
	AllowPrefixOverlap bool              `yaml:"allowPrefixOverlap"`
	Fields             []FieldDefinition `yaml:"fields" validate:"dive"`
}

type FieldDefinition struct {
	Name       string `yaml:"name" validate:"required"`
	Family     string `yaml:"family" validate:"required"`
	Column     string `yaml:"column"`
	Mapper     string `yaml:"mapper"`
	Insertable *bool  `yaml:"insertable"`
	Updatable  *bool  `yaml:"updatable"`
	Blob       bool   `yaml:"blob"`
}

func (f FieldDefinition) spec() FieldSpec {
	return FieldSpec{
		Name:     f.Name,
		Family:   f.Family,
		Column:   f.Column,
		Mapper:   f.Mapper,
		NoInsert: f.Insertable != nil && !*f.Insertable,
		NoUpdate: f.Updatable != nil && !*f.Updatable,
		Blob:     f.Blob,
	}
}

func (f FieldDefinition) column() string {
	if f.Column == "" {
		return f.Name
	}
	return f.Column
}

// Entity returns the definition of the entity type typeID.
func (d *Definition) Entity(typeID string) (*EntityDefinition, bool) {
	for i := range d.Entities {
		if d.Entities[i].Type == typeID {
			return &d.Entities[i], true
		}
	}
	return nil, false
}

// QualifiedTable is EntitySchema.QualifiedTable for the definition.
func (e *EntityDefinition) QualifiedTable() string {
	return qualify(e.Namespace, e.Table)
}

// Families lists the column families of e in first-use order.
func (e *EntityDefinition) Families() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, f := range e.Fields {
		if _, ok := seen[f.Family]; ok {
			continue
		}
		seen[f.Family] = struct{}{}
		out = append(out, f.Family)
	}
	return out
}

// FieldFor resolves a stored cell to the name of the field it belongs to, the
// way EntitySchema.FieldFor does.
func (e *EntityDefinition) FieldFor(family, qualifier string) (string, bool) {
	for _, f := range e.Fields {
		if f.Family == family && strings.HasPrefix(qualifier, f.column()) {
			return f.Name, true
		}
	}
	return "", false
}

// LoadDefinition decodes and validates a YAML definition. Unknown keys are errors.
func LoadDefinition(r io.Reader) (*Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var d Definition
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, newError(ErrInvalidDefinition, "empty document")
		}
		return nil, newError(ErrInvalidDefinition, "%v", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadDefinitionFile is LoadDefinition for a file on disk.
func LoadDefinitionFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema file: %w", err)
	}
	defer f.Close()

	return LoadDefinition(f)
}

var definitionValidator = newDefinitionValidator()

func newDefinitionValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report yaml keys rather than Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks the structural rules of the definition.
func (d *Definition) Validate() error {
	err := definitionValidator.Struct(d)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return newError(ErrInvalidDefinition, "%v", err)
	}

	errGrp := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}
		errGrp = append(errGrp, newError(ErrInvalidDefinition, "%s failed %q", path, fe.Tag()))
	}
	return errors.Join(errGrp...)
}

// Check runs every rule that does not need the Go types: structure, duplicate
// types and fields, and column prefix overlaps.
func (d *Definition) Check() error {
	if err := d.Validate(); err != nil {
		return err
	}

	var errGrp []error
	types := make(map[string]struct{}, len(d.Entities))
	for _, e := range d.Entities {
		if _, dup := types[e.Type]; dup {
			errGrp = append(errGrp, newError(ErrDuplicateType, "%s", e.Type))
		}
		types[e.Type] = struct{}{}

		names := map[string]struct{}{e.RowKey: {}}
		refs := make([]columnRef, 0, len(e.Fields))
		for _, f := range e.Fields {
			if _, dup := names[f.Name]; dup {
				errGrp = append(errGrp, newError(ErrDuplicateField, "%s.%s", e.Type, f.Name))
				continue
			}
			names[f.Name] = struct{}{}
			refs = append(refs, columnRef{field: f.Name, family: f.Family, column: f.column()})
		}

		if !e.AllowPrefixOverlap {
			errGrp = append(errGrp, prefixOverlaps(refs)...)
		}
	}
	return errors.Join(errGrp...)
}

// Compile builds a registry from the definition. types maps each entity's
// type identifier to its Go type; see TypesOf.
func (d *Definition) Compile(types map[string]reflect.Type, mappers *mapper.Registry) (*Registry, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	b := NewBuilder()
	for _, e := range d.Entities {
		t, ok := types[e.Type]
		if !ok {
			b.errs = append(b.errs, newError(ErrInvalidModel, "no Go type for %s", e.Type))
			continue
		}

		eb := NewEntity(t, e.Table).Namespace(e.Namespace).RowKey(e.RowKey)
		if e.AllowPrefixOverlap {
			eb.AllowPrefixOverlap()
		}
		for _, f := range e.Fields {
			eb.Field(f.spec())
		}
		b.RegisterEntity(eb, mappers)
	}
	return b.Build()
}

// TypesOf indexes the types of models by type identifier, for Definition.Compile.
func TypesOf(models ...any) map[string]reflect.Type {
	out := make(map[string]reflect.Type, len(models))
	for _, m := range models {
		t := reflect.TypeOf(m)
		for t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t == nil {
			continue
		}
		out[TypeIDOf(t)] = t
	}
	return out
}
