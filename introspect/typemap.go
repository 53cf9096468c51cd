package introspect

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// ColumnType is the type information a catalog reports for one column.
// Only DataType is filled for SQLite and MySQL.
type ColumnType struct {
	// DataType is the declared or base data type (e.g. "integer", "VARCHAR(20)").
	DataType string
	// UDTName is the Postgres underlying type name, used for custom and array types.
	UDTName string
	// CharMaxLength, NumericPrecision and NumericScale are Postgres type modifiers.
	CharMaxLength    sql.NullInt64
	NumericPrecision sql.NullInt64
	NumericScale     sql.NullInt64
}

// TypeMapper converts catalog type information into the type name shown
// next to each column.
type TypeMapper interface {
	MapType(t ColumnType) string
}

// DeclaredTypeMapper shows declared types as-is, apart from CustomMappings.
// It is the default for SQLite and MySQL.
type DeclaredTypeMapper struct {
	// CustomMappings overrides individual types. Keys are matched case-insensitively.
	CustomMappings map[string]string
}

// NewDeclaredTypeMapper creates a DeclaredTypeMapper with optional overrides.
func NewDeclaredTypeMapper(customMappings map[string]string) *DeclaredTypeMapper {
	return &DeclaredTypeMapper{CustomMappings: customMappings}
}

// MapType implements TypeMapper.
func (m *DeclaredTypeMapper) MapType(t ColumnType) string {
	if mapped, ok := lookupCustom(m.CustomMappings, t.DataType); ok {
		return mapped
	}
	return t.DataType
}

// PostgresTypeMapper provides compact names for PostgreSQL types.
// It supports custom type overrides via the CustomMappings field.
type PostgresTypeMapper struct {
	// CustomMappings allows overriding default type mappings.
	// Keys are PostgreSQL type names (case-insensitive).
	CustomMappings map[string]string
}

// NewPostgresTypeMapper creates a new TypeMapper with optional custom mappings.
// If customMappings is nil, only default mappings are used.
//
// Example:
//
//	mapper := introspect.NewPostgresTypeMapper(map[string]string{
//	    "citext": "varchar",
//	    "ltree":  "text",
//	})
func NewPostgresTypeMapper(customMappings map[string]string) *PostgresTypeMapper {
	return &PostgresTypeMapper{CustomMappings: customMappings}
}

// MapType implements TypeMapper for PostgreSQL databases.
// It checks CustomMappings first, by data type and then by UDT name.
func (m *PostgresTypeMapper) MapType(t ColumnType) string {
	if mapped, ok := lookupCustom(m.CustomMappings, t.DataType); ok {
		return mapped
	}
	if mapped, ok := lookupCustom(m.CustomMappings, t.UDTName); ok {
		return mapped
	}
	return MapPostgresType(t)
}

func lookupCustom(mappings map[string]string, typeName string) (string, bool) {
	if len(mappings) == 0 || typeName == "" {
		return "", false
	}
	if mapped, ok := mappings[typeName]; ok {
		return mapped, true
	}
	key, ok := lo.FindKeyBy(mappings, func(key string, _ string) bool {
		return strings.EqualFold(key, typeName)
	})
	if !ok {
		return "", false
	}
	return mappings[key], true
}

// DefaultPostgresTypes contains the compact names used for common PostgreSQL types
// that take no modifiers.
var DefaultPostgresTypes = map[string]string{
	"integer":                     "int",
	"int4":                        "int",
	"bigint":                      "bigint",
	"int8":                        "bigint",
	"smallint":                    "smallint",
	"int2":                        "smallint",
	"boolean":                     "boolean",
	"bool":                        "boolean",
	"text":                        "text",
	"real":                        "float",
	"float4":                      "float",
	"double precision":            "double",
	"float8":                      "double",
	"timestamp without time zone": "timestamp",
	"timestamp":                   "timestamp",
	"timestamp with time zone":    "timestamptz",
	"timestamptz":                 "timestamptz",
	"date":                        "date",
	"time without time zone":      "time",
	"time":                        "time",
	"time with time zone":         "timetz",
	"timetz":                      "timetz",
	"uuid":                        "uuid",
	"json":                        "json",
	"jsonb":                       "jsonb",
	"bytea":                       "bytea",
}

// MapPostgresType converts a PostgreSQL data type to its display name.
// It handles varchar lengths, numeric precision/scale, custom and array types.
func MapPostgresType(t ColumnType) string {
	dataType := strings.ToLower(t.DataType)
	if name, ok := DefaultPostgresTypes[dataType]; ok {
		return name
	}

	switch dataType {
	case "character varying", "varchar":
		if t.CharMaxLength.Valid {
			return fmt.Sprintf("varchar(%d)", t.CharMaxLength.Int64)
		}
		return "varchar"
	case "character", "char":
		if t.CharMaxLength.Valid {
			return fmt.Sprintf("char(%d)", t.CharMaxLength.Int64)
		}
		return "char"
	case "numeric", "decimal":
		if t.NumericPrecision.Valid && t.NumericScale.Valid {
			return fmt.Sprintf("decimal(%d,%d)", t.NumericPrecision.Int64, t.NumericScale.Int64)
		}
		return "decimal"
	case "user-defined":
		return t.UDTName
	case "array":
		// Array types are named after their element type with a leading underscore.
		return arrayTypeName(t.UDTName)
	default:
		return t.DataType
	}
}

func arrayTypeName(udtName string) string {
	element := strings.TrimPrefix(udtName, "_")
	if name, ok := DefaultPostgresTypes[element]; ok {
		element = name
	}
	return element + "[]"
}
