// Package session loads and stores mapped entities through a Store.
package session

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"slices"
	"sort"
	"time"

	"github.com/litetable/litetable-orm/pkg/codec"
	"github.com/litetable/litetable-orm/pkg/entity"
	"github.com/litetable/litetable-orm/pkg/schema"
	"github.com/rs/zerolog/log"
)

// Session binds a schema registry to a store. It holds no per-call state and
// is safe for concurrent use when the store is.
type Session struct {
	reg   *schema.Registry
	store Store
}

type Config struct {
	Registry *schema.Registry
	Store    Store
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Registry == nil {
		errGrp = append(errGrp, errors.New("schema registry is required"))
	}
	if c.Store == nil {
		errGrp = append(errGrp, errors.New("store is required"))
	}
	return errors.Join(errGrp...)
}

func New(cfg *Config) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Session{
		reg:   cfg.Registry,
		store: cfg.Store,
	}, nil
}

func (s *Session) Registry() *schema.Registry {
	return s.reg
}

// Save writes every insertable field of obj.
func (s *Session) Save(ctx context.Context, obj any) error {
	return s.write(ctx, obj, entity.Insert)
}

// Update writes every updatable field of obj.
func (s *Session) Update(ctx context.Context, obj any) error {
	return s.write(ctx, obj, entity.Update)
}

// SaveAll encodes every object before writing any, then applies one batch per table.
func (s *Session) SaveAll(ctx context.Context, objs ...any) error {
	var tables []string
	batches := make(map[string][]entity.Mutation)
	for _, obj := range objs {
		e, err := entity.NewEncoder(s.reg, obj)
		if err != nil {
			return err
		}
		muts, err := e.Encode(entity.Insert)
		if err != nil {
			return err
		}
		table := e.Schema().QualifiedTable()
		if _, ok := batches[table]; !ok {
			tables = append(tables, table)
		}
		batches[table] = append(batches[table], muts...)
	}

	for _, table := range tables {
		if len(batches[table]) == 0 {
			continue
		}
		if err := s.apply(ctx, table, batches[table]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) write(ctx context.Context, obj any, mode entity.Mode) error {
	e, err := entity.NewEncoder(s.reg, obj)
	if err != nil {
		return err
	}
	muts, err := e.Encode(mode)
	if err != nil {
		return err
	}
	table := e.Schema().QualifiedTable()
	if len(muts) == 0 {
		log.Debug().Msgf("%s %s: nothing to write", mode, table)
		return nil
	}
	return s.apply(ctx, table, muts)
}

func (s *Session) apply(ctx context.Context, table string, muts []entity.Mutation) error {
	start := time.Now()
	if err := s.store.Apply(ctx, table, muts); err != nil {
		return err
	}
	log.Debug().Msgf("Apply %s: %d mutations in %v", table, len(muts), time.Since(start))
	return nil
}

// Load reads the row of T at rowKey. Without columns every family of T is
// read. ErrNotFound is returned when no selected cell exists.
func Load[T any](ctx context.Context, s *Session, rowKey any, columns ...Column) (*T, error) {
	sch, err := schema.LookupFor[T](s.reg)
	if err != nil {
		return nil, err
	}
	key, err := encodeRowKey(sch, rowKey)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		columns = familyColumns(sch)
	}

	start := time.Now()
	cells, err := s.store.ReadRow(ctx, sch.QualifiedTable(), key, columns)
	if err != nil {
		return nil, err
	}
	log.Debug().Msgf("ReadRow %s: %d cells in %v", sch.QualifiedTable(), len(cells), time.Since(start))

	if len(cells) == 0 {
		return nil, newError(ErrNotFound, "%s %v", sch.TypeID(), rowKey)
	}
	return decode[T](sch, key, cells)
}

// Delete removes every family T maps from the row at rowKey.
func Delete[T any](ctx context.Context, s *Session, rowKey any) error {
	sch, err := schema.LookupFor[T](s.reg)
	if err != nil {
		return err
	}
	key, err := encodeRowKey(sch, rowKey)
	if err != nil {
		return err
	}
	return s.store.DeleteRow(ctx, sch.QualifiedTable(), key, sch.Families())
}

// DeleteFamily removes one family of the row at rowKey.
func DeleteFamily[T any](ctx context.Context, s *Session, rowKey any, family string) error {
	sch, err := schema.LookupFor[T](s.reg)
	if err != nil {
		return err
	}
	if !slices.Contains(sch.Families(), family) {
		return newError(ErrUnknownFamily, "%s does not map %q", sch.TypeID(), family)
	}
	key, err := encodeRowKey(sch, rowKey)
	if err != nil {
		return err
	}
	return s.store.DeleteFamily(ctx, sch.QualifiedTable(), key, family)
}

// ScanParams filters a Scan.
type ScanParams[T any] struct {
	// Prefix matches the leading bytes of the encoded row key.
	Prefix []byte
	// Regex matches the row key as a string.
	Regex string
	// Columns restricts the cells read. Without any, every family of T is read.
	Columns []Column
	// ExtraColumns are added to Columns.
	ExtraColumns []Column
	// Less orders the result. Without it rows keep the store's order.
	Less func(a, b *T) bool
}

// Scan decodes every row of T matching p. A nil p scans the whole table.
func Scan[T any](ctx context.Context, s *Session, p *ScanParams[T]) ([]*T, error) {
	if p == nil {
		p = &ScanParams[T]{}
	}
	sch, err := schema.LookupFor[T](s.reg)
	if err != nil {
		return nil, err
	}
	if p.Regex != "" {
		if _, err := regexp.Compile(p.Regex); err != nil {
			return nil, newError(ErrInvalidScan, "regex %q: %v", p.Regex, err)
		}
	}

	columns := mergeColumns(p.Columns, p.ExtraColumns)
	if len(columns) == 0 {
		columns = familyColumns(sch)
	}

	start := time.Now()
	rows, err := s.store.Scan(ctx, sch.QualifiedTable(), &ScanRequest{
		Prefix:  p.Prefix,
		Regex:   p.Regex,
		Columns: columns,
	})
	if err != nil {
		return nil, err
	}
	log.Debug().Msgf("Scan %s: %d rows in %v", sch.QualifiedTable(), len(rows), time.Since(start))

	out := make([]*T, 0, len(rows))
	for _, row := range rows {
		if len(row.Cells) == 0 {
			continue
		}
		obj, err := decode[T](sch, row.Key, row.Cells)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}

	if p.Less != nil {
		sort.SliceStable(out, func(i, j int) bool {
			return p.Less(out[i], out[j])
		})
	}
	return out, nil
}

// FieldColumns selects the columns of the named fields of T.
func FieldColumns[T any](s *Session, names ...string) ([]Column, error) {
	sch, err := schema.LookupFor[T](s.reg)
	if err != nil {
		return nil, err
	}
	out := make([]Column, 0, len(names))
	for _, name := range names {
		f, ok := sch.FieldByName(name)
		if !ok {
			return nil, newError(ErrUnknownField, "%s.%s", sch.TypeID(), name)
		}
		out = append(out, Column{Family: f.Family(), Qualifier: f.Column()})
	}
	return out, nil
}

func decode[T any](sch *schema.EntitySchema, key []byte, cells []entity.Cell) (*T, error) {
	d, err := entity.NewSchemaDecoder(sch, key)
	if err != nil {
		return nil, err
	}
	if err := d.SetAll(cells); err != nil {
		return nil, err
	}
	return d.Object().(*T), nil
}

// encodeRowKey encodes rowKey as the row key type of sch. Integers of another
// width are converted first. Zero keys are rejected as entity.Encoder.RowKey does.
func encodeRowKey(sch *schema.EntitySchema, rowKey any) ([]byte, error) {
	want := sch.RowKey().Type()
	if rowKey == nil {
		return nil, newError(entity.ErrRowKeyMissing, "%s: nil row key", sch.TypeID())
	}

	v := reflect.ValueOf(rowKey)
	if v.Type() != want {
		if !isInt(v.Kind()) || !isInt(want.Kind()) {
			return nil, newError(ErrInvalidRowKey, "%s takes a %s row key, got %s", sch.TypeID(), want, v.Type())
		}
		v = v.Convert(want)
	}
	if v.IsZero() {
		return nil, newError(entity.ErrRowKeyMissing, "%s: zero row key", sch.TypeID())
	}

	b, err := codec.EncodeValue(v)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, newError(entity.ErrRowKeyMissing, "%s: row key encodes to no bytes", sch.TypeID())
	}
	return b, nil
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func familyColumns(sch *schema.EntitySchema) []Column {
	families := sch.Families()
	out := make([]Column, len(families))
	for i, f := range families {
		out[i] = Column{Family: f}
	}
	return out
}

func mergeColumns(sets ...[]Column) []Column {
	seen := make(map[Column]struct{})
	var out []Column
	for _, set := range sets {
		for _, c := range set {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
