package session

import (
	"context"
	"strings"

	"github.com/litetable/litetable-orm/pkg/entity"
)

//go:generate mockgen -destination=store_mock.go -package=session -source=store.go

// Store is a wide-column back-end. Tables are named by
// schema.EntitySchema.QualifiedTable. A missing row is not an error: reads
// return no cells.
type Store interface {
	// Apply writes every mutation to table.
	Apply(ctx context.Context, table string, mutations []entity.Mutation) error
	// ReadRow returns the newest live cell of every qualifier columns selects.
	ReadRow(ctx context.Context, table string, rowKey []byte, columns []Column) ([]entity.Cell, error)
	// DeleteRow removes every qualifier of the given families.
	DeleteRow(ctx context.Context, table string, rowKey []byte, families []string) error
	// DeleteFamily removes every qualifier of family.
	DeleteFamily(ctx context.Context, table string, rowKey []byte, family string) error
	// Scan returns the rows whose key matches req.
	Scan(ctx context.Context, table string, req *ScanRequest) ([]Row, error)
}

// Column selects cells of a row. An empty Qualifier selects the whole family,
// otherwise every qualifier starting with Qualifier is selected.
type Column struct {
	Family    string
	Qualifier string
}

// Matches reports whether the cell at family:qualifier is selected.
func (c Column) Matches(family, qualifier string) bool {
	return c.Family == family && strings.HasPrefix(qualifier, c.Qualifier)
}

// Selected reports whether any of columns selects family:qualifier. No columns
// select everything.
func Selected(columns []Column, family, qualifier string) bool {
	if len(columns) == 0 {
		return true
	}
	for _, c := range columns {
		if c.Matches(family, qualifier) {
			return true
		}
	}
	return false
}

// Families lists the distinct families of columns in first-use order.
func Families(columns []Column) []string {
	seen := make(map[string]struct{}, len(columns))
	var out []string
	for _, c := range columns {
		if _, ok := seen[c.Family]; ok {
			continue
		}
		seen[c.Family] = struct{}{}
		out = append(out, c.Family)
	}
	return out
}

// ScanRequest filters rows by key. Prefix and Regex may be combined; a row must
// satisfy both. Regex is matched against the row key as a string.
type ScanRequest struct {
	Prefix  []byte
	Regex   string
	Columns []Column
}

// Row is one row returned by Scan.
type Row struct {
	Key   []byte
	Cells []entity.Cell
}
