package schema

import (
	"strings"

	"github.com/samber/lo"
)

// Filter decides which catalog tables are retained. The rules are modes,
// not combinable conditions, and are evaluated in this order:
//
//  1. Includes non-empty: keep a table iff its name is listed.
//  2. IncludePrefixes non-empty: keep a table iff its name starts with a listed prefix.
//  3. Otherwise keep a table unless it is in Excludes or starts with one of ExcludePrefixes.
//
// Rules of a lower rank are ignored once a higher-ranked rule is configured.
type Filter struct {
	Includes        []string `json:"includes,omitempty" yaml:"includes,omitempty"`
	IncludePrefixes []string `json:"include_prefixes,omitempty" yaml:"include_prefixes,omitempty"`
	Excludes        []string `json:"excludes,omitempty" yaml:"excludes,omitempty"`
	ExcludePrefixes []string `json:"exclude_prefixes,omitempty" yaml:"exclude_prefixes,omitempty"`
}

// Retains reports whether the table called name survives the filter.
func (f Filter) Retains(name string) bool {
	switch {
	case len(f.Includes) > 0:
		return lo.Contains(f.Includes, name)
	case len(f.IncludePrefixes) > 0:
		return hasAnyPrefix(name, f.IncludePrefixes)
	default:
		return !lo.Contains(f.Excludes, name) && !hasAnyPrefix(name, f.ExcludePrefixes)
	}
}

// IsZero reports whether no rule is configured, i.e. every table is retained.
func (f Filter) IsZero() bool {
	return len(f.Includes) == 0 &&
		len(f.IncludePrefixes) == 0 &&
		len(f.Excludes) == 0 &&
		len(f.ExcludePrefixes) == 0
}

func hasAnyPrefix(name string, prefixes []string) bool {
	return lo.SomeBy(prefixes, func(prefix string) bool {
		return strings.HasPrefix(name, prefix)
	})
}

// FilterTables removes tables from the schema that the filter does not retain.
// It returns a new Schema with the filtered tables and re-derived edges, so
// edges owned by a removed table disappear with it; the original is not modified.
func FilterTables(s *Schema, f Filter) *Schema {
	filteredTables := lo.Filter(s.Tables, func(t Table, _ int) bool {
		return f.Retains(t.Name)
	})

	return New(filteredTables)
}
