package schema

import (
	"strings"
)

type columnRef struct {
	field  string
	family string
	column string
}

// prefixOverlaps returns an error for every pair of columns in one family where
// one column is a prefix of the other. Such pairs make cell resolution depend
// on declaration order.
func prefixOverlaps(refs []columnRef) []error {
	var errs []error
	for i := 0; i < len(refs); i++ {
		for j := i + 1; j < len(refs); j++ {
			a, b := refs[i], refs[j]
			if a.family != b.family {
				continue
			}
			if strings.HasPrefix(a.column, b.column) || strings.HasPrefix(b.column, a.column) {
				errs = append(errs, newError(ErrPrefixOverlap, "%s (%s:%s) and %s (%s:%s)",
					a.field, a.family, a.column, b.field, b.family, b.column))
			}
		}
	}
	return errs
}
