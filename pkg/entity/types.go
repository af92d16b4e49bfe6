// Package entity turns mapped structs into wide-column mutations and rebuilds
// them from the cells of a row.
package entity

import (
	"github.com/litetable/litetable-orm/pkg/schema"
)

// Cell is one stored value of a row.
type Cell struct {
	Family    string
	Qualifier string
	Value     []byte
}

// Mutation is a pending write of one cell.
type Mutation struct {
	RowKey    []byte
	Family    string
	Qualifier string
	Value     []byte
}

// Cell drops the row key.
func (m Mutation) Cell() Cell {
	return Cell{Family: m.Family, Qualifier: m.Qualifier, Value: m.Value}
}

// Mode selects which fields an encode writes.
type Mode int

const (
	// Insert writes every insertable field.
	Insert Mode = iota
	// Update writes every updatable field.
	Update
)

func (m Mode) String() string {
	switch m {
	case Insert:
		return "insert"
	case Update:
		return "update"
	default:
		return "unknown"
	}
}

func (m Mode) includes(f *schema.FieldDescriptor) bool {
	switch m {
	case Insert:
		return f.Insertable()
	case Update:
		return f.Updatable()
	default:
		return false
	}
}

// RowMutations are the mutations of a single row.
type RowMutations struct {
	RowKey    []byte
	Mutations []Mutation
}

// GroupByRow splits mutations by row key, keeping the order rows first appear in.
func GroupByRow(mutations []Mutation) []RowMutations {
	index := make(map[string]int)
	var out []RowMutations
	for _, m := range mutations {
		key := string(m.RowKey)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, RowMutations{RowKey: m.RowKey})
		}
		out[i].Mutations = append(out[i].Mutations, m)
	}
	return out
}
