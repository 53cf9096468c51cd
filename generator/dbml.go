package generator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lucasefe/schemadot/schema"
)

var plainIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

func generateDBML(s *schema.Schema) []byte {
	var builder strings.Builder

	for _, table := range s.Tables {
		generateTable(&builder, table)
		builder.WriteString("\n")
	}

	for _, edge := range s.ForeignKeys {
		generateReference(&builder, edge)
	}

	return []byte(builder.String())
}

func generateTable(builder *strings.Builder, table schema.Table) {
	builder.WriteString(fmt.Sprintf("Table %s {\n", dbmlName(table.Name)))

	for _, column := range table.Columns {
		generateColumn(builder, column)
	}

	builder.WriteString("}\n")
}

func generateColumn(builder *strings.Builder, column schema.Column) {
	columnType := column.Type
	if columnType == "" {
		columnType = "any"
	}
	builder.WriteString(fmt.Sprintf("  %s %s", dbmlName(column.Name), dbmlType(columnType)))

	var attributes []string

	if column.IsPrimaryKey {
		attributes = append(attributes, "pk")
	}

	if !column.Nullable && !column.IsPrimaryKey {
		attributes = append(attributes, "not null")
	}

	if column.Default != nil {
		defaultVal := *column.Default
		if strings.HasPrefix(defaultVal, "nextval(") {
			attributes = append(attributes, "increment")
		} else {
			attributes = append(attributes, fmt.Sprintf("default: `%s`", strings.ReplaceAll(defaultVal, "`", "'")))
		}
	}

	if len(attributes) > 0 {
		builder.WriteString(fmt.Sprintf(" [%s]", strings.Join(attributes, ", ")))
	}

	builder.WriteString("\n")
}

func generateReference(builder *strings.Builder, edge schema.Edge) {
	// A Ref needs a column on both ends.
	if edge.TargetColumn == "" {
		builder.WriteString(fmt.Sprintf("// %s.%s references %s\n",
			dbmlName(edge.SourceTable), dbmlName(edge.SourceColumn), dbmlName(edge.TargetTable),
		))
		return
	}

	builder.WriteString(fmt.Sprintf("Ref: %s.%s > %s.%s\n",
		dbmlName(edge.SourceTable), dbmlName(edge.SourceColumn),
		dbmlName(edge.TargetTable), dbmlName(edge.TargetColumn),
	))
}

// dbmlName leaves plain identifiers (optionally schema-qualified) as they are
// and double-quotes everything else.
func dbmlName(name string) string {
	if plainIdentifier.MatchString(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `\"`) + `"`
}

// dbmlType quotes declared types DBML cannot parse bare, such as "double precision".
func dbmlType(t string) string {
	if strings.ContainsAny(t, " \t\"") {
		return `"` + strings.ReplaceAll(t, `"`, `\"`) + `"`
	}
	return t
}
