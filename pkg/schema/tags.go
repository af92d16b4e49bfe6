package schema

import (
	"reflect"
	"strings"

	"github.com/litetable/litetable-orm/pkg/mapper"
)

const tagName = "ltmap"

// Tabler lets a model name its own table instead of using a table= tag option.
type Tabler interface {
	Table() string
}

// FromStruct compiles the schema of model's type from its ltmap struct tags:
//
//	type User struct {
//		ID    string   `ltmap:"rowkey,table=users,family=main"`
//		Name  string   `ltmap:"column=name"`
//		Tags  []string `ltmap:"family=meta,column=tag_"`
//		Score Score    `ltmap:"column=score,mapper=score,noupdate"`
//		Skip  string   `ltmap:"-"`
//	}
//
// The row key tag accepts table, namespace, a default family for the other
// fields and the allowoverlap flag. Field tags accept family, column and mapper
// plus the flags noinsert, noupdate and blob. Untagged fields are not mapped.
func FromStruct(model any, mappers *mapper.Registry) (*EntitySchema, error) {
	if model == nil {
		return nil, newError(ErrInvalidModel, "nil model")
	}
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, newError(ErrInvalidModel, "%s is not a struct", t)
	}

	b := NewEntity(t, "")
	if tb, ok := model.(Tabler); ok {
		b.table = tb.Table()
	}

	defaultFamily := ""
	var fields []FieldSpec

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup(tagName)
		if !ok || tag == "-" || !sf.IsExported() {
			continue
		}

		opts := parseTag(tag)
		if _, isKey := opts["rowkey"]; isKey {
			if b.rowKey != "" {
				return nil, newError(ErrInvalidModel, "%s: more than one row key", t)
			}
			b.rowKey = sf.Name
			if v := opts["table"]; v != "" {
				b.table = v
			}
			b.namespace = opts["namespace"]
			defaultFamily = opts["family"]
			if _, ok := opts["allowoverlap"]; ok {
				b.AllowPrefixOverlap()
			}
			continue
		}

		_, noInsert := opts["noinsert"]
		_, noUpdate := opts["noupdate"]
		_, blob := opts["blob"]
		fields = append(fields, FieldSpec{
			Name:     sf.Name,
			Family:   opts["family"],
			Column:   opts["column"],
			Mapper:   opts["mapper"],
			NoInsert: noInsert,
			NoUpdate: noUpdate,
			Blob:     blob,
		})
	}

	for _, f := range fields {
		if f.Family == "" {
			f.Family = defaultFamily
		}
		b.Field(f)
	}

	return b.Compile(mappers)
}

// parseTag splits "rowkey,table=users" into {"rowkey": "", "table": "users"}.
func parseTag(tag string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}
