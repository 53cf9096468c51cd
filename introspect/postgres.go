package introspect

import (
	"context"
	"database/sql"

	"github.com/samber/lo"
	"github.com/stephenafamo/scan"
	"github.com/stephenafamo/scan/stdscan"

	"github.com/lucasefe/schemadot/schema"

	_ "github.com/lib/pq"
)

type postgresCatalog struct {
	db                *sql.DB
	schemas           []string
	includeAllSchemas bool
	mapper            TypeMapper
}

type postgresColumn struct {
	Name             string         `db:"column_name"`
	DataType         string         `db:"data_type"`
	CharMaxLength    sql.NullInt64  `db:"character_maximum_length"`
	NumericPrecision sql.NullInt64  `db:"numeric_precision"`
	NumericScale     sql.NullInt64  `db:"numeric_scale"`
	IsNullable       string         `db:"is_nullable"`
	Default          sql.NullString `db:"column_default"`
	UDTName          string         `db:"udt_name"`
	IsPrimaryKey     bool           `db:"is_primary_key"`
}

type postgresForeignKey struct {
	ConstraintName  string `db:"constraint_name"`
	OrdinalPosition int    `db:"ordinal_position"`
	Column          string `db:"column_name"`
	ForeignSchema   string `db:"foreign_table_schema"`
	ForeignTable    string `db:"foreign_table_name"`
	ForeignColumn   string `db:"foreign_column_name"`
}

func (c *postgresCatalog) tables(ctx context.Context) ([]catalogName, error) {
	schemaNames := c.schemas
	if c.includeAllSchemas {
		all, err := c.allSchemas(ctx)
		if err != nil {
			return nil, err
		}
		schemaNames = all
	}

	var names []catalogName
	for _, schemaName := range schemaNames {
		query := `
			SELECT table_name
			FROM information_schema.tables
			WHERE table_schema = $1 AND table_type = 'BASE TABLE'
			ORDER BY table_name
		`
		tables, err := stdscan.All(ctx, c.db, scan.SingleColumnMapper[string], query, schemaName)
		if err != nil {
			return nil, err
		}

		names = append(names, lo.Map(tables, func(table string, _ int) catalogName {
			return catalogName{schema: schemaName, name: table}
		})...)
	}

	return names, nil
}

func (c *postgresCatalog) allSchemas(ctx context.Context) ([]string, error) {
	query := `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE schema_name NOT IN ('information_schema', 'pg_catalog', 'pg_toast')
			AND schema_name NOT LIKE 'pg_temp_%'
			AND schema_name NOT LIKE 'pg_toast_temp_%'
		ORDER BY schema_name
	`

	return stdscan.All(ctx, c.db, scan.SingleColumnMapper[string], query)
}

func (c *postgresCatalog) columns(ctx context.Context, t catalogName) ([]schema.Column, error) {
	query := `
		SELECT
			c.column_name,
			c.data_type,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale,
			c.is_nullable,
			c.column_default,
			COALESCE(c.udt_name, c.data_type) AS udt_name,
			EXISTS (
				SELECT 1
				FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
					ON kcu.constraint_name = tc.constraint_name
					AND kcu.table_schema = tc.table_schema
					AND kcu.table_name = tc.table_name
				WHERE tc.constraint_type = 'PRIMARY KEY'
					AND tc.table_schema = c.table_schema
					AND tc.table_name = c.table_name
					AND kcu.column_name = c.column_name
			) AS is_primary_key
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`

	rows, err := stdscan.All(ctx, c.db, scan.StructMapper[postgresColumn](), query, t.schema, t.name)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errTableNotFound
	}

	columns := make([]schema.Column, 0, len(rows))
	for _, row := range rows {
		columns = append(columns, schema.Column{
			Name: row.Name,
			Type: c.mapper.MapType(ColumnType{
				DataType:         row.DataType,
				UDTName:          row.UDTName,
				CharMaxLength:    row.CharMaxLength,
				NumericPrecision: row.NumericPrecision,
				NumericScale:     row.NumericScale,
			}),
			Nullable:     row.IsNullable == "YES",
			Default:      normalizeDefault(row.Default),
			IsPrimaryKey: row.IsPrimaryKey,
		})
	}

	return columns, nil
}

func (c *postgresCatalog) foreignKeys(ctx context.Context, t catalogName) ([]schema.ForeignKey, error) {
	query := `
		SELECT DISTINCT
			rc.constraint_name,
			kcu1.ordinal_position,
			kcu1.column_name,
			kcu2.table_schema AS foreign_table_schema,
			kcu2.table_name AS foreign_table_name,
			kcu2.column_name AS foreign_column_name
		FROM information_schema.referential_constraints rc
		JOIN information_schema.key_column_usage kcu1
			ON kcu1.constraint_name = rc.constraint_name
			AND kcu1.table_schema = rc.constraint_schema
		JOIN information_schema.key_column_usage kcu2
			ON kcu2.constraint_name = rc.unique_constraint_name
			AND kcu2.table_schema = rc.unique_constraint_schema
			AND kcu2.ordinal_position = kcu1.position_in_unique_constraint
		WHERE kcu1.table_schema = $1 AND kcu1.table_name = $2
		ORDER BY rc.constraint_name, kcu1.ordinal_position
	`

	rows, err := stdscan.All(ctx, c.db, scan.StructMapper[postgresForeignKey](), query, t.schema, t.name)
	if err != nil {
		return nil, err
	}

	return lo.Map(rows, func(row postgresForeignKey, _ int) schema.ForeignKey {
		return schema.ForeignKey{
			TargetTable:  catalogName{schema: row.ForeignSchema, name: row.ForeignTable}.String(),
			LocalColumn:  row.Column,
			TargetColumn: row.ForeignColumn,
		}
	}), nil
}
