package introspect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/stephenafamo/scan"
	"github.com/stephenafamo/scan/stdscan"

	"github.com/lucasefe/schemadot/schema"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const (
	sqliteTablesQuery = `SELECT name FROM sqlite_master WHERE type = 'table'`
	// pragma_table_info takes the table name as a bound argument.
	sqlitePrimaryKeyColumnQuery = `SELECT name FROM pragma_table_info(?) WHERE pk = ?`
)

// sqliteCatalog reads metadata through SQLite's PRAGMA interface. It serves
// both local files and libsql servers.
type sqliteCatalog struct {
	db     *sql.DB
	mapper TypeMapper
}

// tableInfo is one row of PRAGMA table_info.
type tableInfo struct {
	Cid          int            `db:"cid"`
	Name         string         `db:"name"`
	Type         string         `db:"type"`
	NotNull      bool           `db:"notnull"`
	DefaultValue sql.NullString `db:"dflt_value"`
	Pk           int            `db:"pk"`
}

// foreignKeyInfo is one row of PRAGMA foreign_key_list.
type foreignKeyInfo struct {
	ID       int            `db:"id"`
	Seq      int            `db:"seq"`
	Table    string         `db:"table"`
	From     string         `db:"from"`
	To       sql.NullString `db:"to"`
	OnUpdate string         `db:"on_update"`
	OnDelete string         `db:"on_delete"`
	Match    string         `db:"match"`
}

// pragma builds the statement text for a per-table PRAGMA. Identifiers
// cannot be bound, so the name is quoted into the statement; only names
// produced by tables() can reach this point.
func pragma(name string, t catalogName) string {
	return fmt.Sprintf("PRAGMA %s(%s)", name, quoteIdent(t.name))
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// probeSQLite forces SQLite to read the file header so that a file which is
// not a database fails at connection time rather than mid-extraction.
func probeSQLite(ctx context.Context, db *sql.DB) error {
	_, err := stdscan.One(ctx, db, scan.SingleColumnMapper[int64], `SELECT count(*) FROM sqlite_master`)
	return err
}

func (c *sqliteCatalog) tables(ctx context.Context) ([]catalogName, error) {
	names, err := stdscan.All(ctx, c.db, scan.SingleColumnMapper[string], sqliteTablesQuery)
	if err != nil {
		return nil, err
	}

	return lo.Map(names, func(name string, _ int) catalogName {
		return catalogName{name: name}
	}), nil
}

func (c *sqliteCatalog) columns(ctx context.Context, t catalogName) ([]schema.Column, error) {
	infos, err := stdscan.All(ctx, c.db, scan.StructMapper[tableInfo](), pragma("table_info", t))
	if err != nil {
		return nil, err
	}

	// Every SQLite table has at least one column; no rows means the table is gone.
	if len(infos) == 0 {
		return nil, errTableNotFound
	}

	columns := make([]schema.Column, 0, len(infos))
	for _, info := range infos {
		columns = append(columns, schema.Column{
			Name:         info.Name,
			Type:         c.mapper.MapType(ColumnType{DataType: info.Type}),
			Nullable:     !info.NotNull,
			Default:      normalizeDefault(info.DefaultValue),
			IsPrimaryKey: info.Pk > 0,
		})
	}

	return columns, nil
}

func (c *sqliteCatalog) foreignKeys(ctx context.Context, t catalogName) ([]schema.ForeignKey, error) {
	infos, err := stdscan.All(ctx, c.db, scan.StructMapper[foreignKeyInfo](), pragma("foreign_key_list", t))
	if err != nil {
		return nil, err
	}

	keys := make([]schema.ForeignKey, 0, len(infos))
	for _, info := range infos {
		targetColumn := info.To.String
		if targetColumn == "" {
			// REFERENCES parent without a column list targets the parent's primary key.
			targetColumn, err = stdscan.One(ctx, c.db, scan.SingleColumnMapper[string],
				sqlitePrimaryKeyColumnQuery, info.Table, info.Seq+1)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				// The parent has no primary key or does not exist: keep a
				// table-level edge.
				targetColumn = ""
			case err != nil:
				return nil, fmt.Errorf("could not find column referenced by %q in table %q: %w", info.From, info.Table, err)
			}
		}

		keys = append(keys, schema.ForeignKey{
			TargetTable:  info.Table,
			LocalColumn:  info.From,
			TargetColumn: targetColumn,
		})
	}

	return keys, nil
}

// normalizeDefault maps NULL and the empty string to "no default". Every
// other literal, including the text NULL, is kept.
func normalizeDefault(v sql.NullString) *string {
	if !v.Valid || v.String == "" {
		return nil
	}
	value := v.String
	return &value
}
