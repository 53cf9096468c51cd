// Package schema defines the data structures for representing database schemas.
// These types are produced by the introspect package and consumed by the
// generator package; a Schema is built once and never mutated afterwards.
package schema

import "github.com/samber/lo"

// Schema is the top-level container returned by introspection.
type Schema struct {
	// Tables contains the retained tables in catalog order.
	Tables []Table `json:"tables" yaml:"tables"`
	// ForeignKeys is every table's foreign keys flattened into one list,
	// tagged with the owning table. See Hoist.
	ForeignKeys []Edge `json:"foreign_keys" yaml:"foreign_keys"`
}

// Table represents a database table with its columns and outgoing
// foreign key references.
type Table struct {
	// Name is unique within a Schema.
	Name string `json:"name" yaml:"name"`
	// Columns contains all columns in the table, in declaration order.
	Columns []Column `json:"columns" yaml:"columns"`
	// ForeignKeys are the references declared on this table, in the order
	// the database reports them.
	ForeignKeys []ForeignKey `json:"foreign_keys" yaml:"foreign_keys"`
}

// Column represents a database column within a table.
type Column struct {
	// Name is the column name.
	Name string `json:"name" yaml:"name"`
	// Type is the declared type. It may be empty for untyped columns.
	Type string `json:"type" yaml:"type"`
	// Nullable indicates whether the column allows NULL values.
	Nullable bool `json:"nullable" yaml:"nullable"`
	// Default is the column's default value expression, or nil if none.
	Default *string `json:"default" yaml:"default"`
	// IsPrimaryKey indicates whether this column is part of the primary key.
	IsPrimaryKey bool `json:"is_primary_key" yaml:"is_primary_key"`
}

// ForeignKey is a reference declared on a table, before hoisting.
type ForeignKey struct {
	TargetTable  string `json:"target_table" yaml:"target_table"`
	LocalColumn  string `json:"local_column" yaml:"local_column"`
	TargetColumn string `json:"target_column" yaml:"target_column"`
}

// Edge is a schema-level foreign key: SourceTable.SourceColumn references
// TargetTable.TargetColumn.
type Edge struct {
	SourceTable  string `json:"source_table" yaml:"source_table"`
	SourceColumn string `json:"source_column" yaml:"source_column"`
	TargetTable  string `json:"target_table" yaml:"target_table"`
	TargetColumn string `json:"target_column" yaml:"target_column"`
}

// New builds a Schema from tables and derives its foreign key edges.
func New(tables []Table) *Schema {
	if tables == nil {
		tables = []Table{}
	}
	return &Schema{
		Tables:      tables,
		ForeignKeys: Hoist(tables),
	}
}

// Hoist flattens the table-local foreign keys into schema-level edges,
// preserving table order and then per-table key order.
func Hoist(tables []Table) []Edge {
	edges := lo.FlatMap(tables, func(t Table, _ int) []Edge {
		return lo.Map(t.ForeignKeys, func(fk ForeignKey, _ int) Edge {
			return Edge{
				SourceTable:  t.Name,
				SourceColumn: fk.LocalColumn,
				TargetTable:  fk.TargetTable,
				TargetColumn: fk.TargetColumn,
			}
		})
	})
	if edges == nil {
		return []Edge{}
	}
	return edges
}

// Table returns the table with the given name.
func (s *Schema) Table(name string) (Table, bool) {
	return lo.Find(s.Tables, func(t Table) bool {
		return t.Name == name
	})
}

// TableNames returns the table names in schema order.
func (s *Schema) TableNames() []string {
	return lo.Map(s.Tables, func(t Table, _ int) string {
		return t.Name
	})
}
