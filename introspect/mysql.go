package introspect

import (
	"context"
	"database/sql"

	"github.com/samber/lo"
	"github.com/stephenafamo/scan"
	"github.com/stephenafamo/scan/stdscan"

	"github.com/lucasefe/schemadot/schema"
)

// mysqlCatalog reads the current database (DATABASE()) of a MySQL connection.
type mysqlCatalog struct {
	db     *sql.DB
	mapper TypeMapper
}

type mysqlColumn struct {
	Name         string         `db:"column_name"`
	ColumnType   string         `db:"column_type"`
	IsNullable   string         `db:"is_nullable"`
	Default      sql.NullString `db:"column_default"`
	IsPrimaryKey bool           `db:"is_primary_key"`
}

type mysqlForeignKey struct {
	ConstraintName   string `db:"constraint_name"`
	OrdinalPosition  int    `db:"ordinal_position"`
	Column           string `db:"column_name"`
	ReferencedTable  string `db:"referenced_table_name"`
	ReferencedColumn string `db:"referenced_column_name"`
}

func (c *mysqlCatalog) tables(ctx context.Context) ([]catalogName, error) {
	query := `
		SELECT table_name AS table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	names, err := stdscan.All(ctx, c.db, scan.SingleColumnMapper[string], query)
	if err != nil {
		return nil, err
	}

	return lo.Map(names, func(name string, _ int) catalogName {
		return catalogName{name: name}
	}), nil
}

func (c *mysqlCatalog) columns(ctx context.Context, t catalogName) ([]schema.Column, error) {
	query := `
		SELECT
			column_name AS column_name,
			column_type AS column_type,
			is_nullable AS is_nullable,
			column_default AS column_default,
			column_key = 'PRI' AS is_primary_key
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ?
		ORDER BY ordinal_position
	`

	rows, err := stdscan.All(ctx, c.db, scan.StructMapper[mysqlColumn](), query, t.name)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errTableNotFound
	}

	return lo.Map(rows, func(row mysqlColumn, _ int) schema.Column {
		return schema.Column{
			Name:         row.Name,
			Type:         c.mapper.MapType(ColumnType{DataType: row.ColumnType}),
			Nullable:     row.IsNullable == "YES",
			Default:      normalizeDefault(row.Default),
			IsPrimaryKey: row.IsPrimaryKey,
		}
	}), nil
}

func (c *mysqlCatalog) foreignKeys(ctx context.Context, t catalogName) ([]schema.ForeignKey, error) {
	query := `
		SELECT
			constraint_name AS constraint_name,
			ordinal_position AS ordinal_position,
			column_name AS column_name,
			referenced_table_name AS referenced_table_name,
			referenced_column_name AS referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = DATABASE()
			AND table_name = ?
			AND referenced_table_name IS NOT NULL
		ORDER BY constraint_name, ordinal_position
	`

	rows, err := stdscan.All(ctx, c.db, scan.StructMapper[mysqlForeignKey](), query, t.name)
	if err != nil {
		return nil, err
	}

	return lo.Map(rows, func(row mysqlForeignKey, _ int) schema.ForeignKey {
		return schema.ForeignKey{
			TargetTable:  row.ReferencedTable,
			LocalColumn:  row.Column,
			TargetColumn: row.ReferencedColumn,
		}
	}), nil
}
