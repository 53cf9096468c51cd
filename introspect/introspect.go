// Package introspect extracts relational-schema metadata (tables, columns,
// primary keys and foreign keys) from a database catalog.
//
// SQLite files are the primary target; libsql, PostgreSQL and MySQL
// connections are read through the same pipeline. Extraction issues metadata
// queries only and never writes to the database.
//
// Basic usage:
//
//	s, err := introspect.Open(ctx, "app.db",
//	    introspect.WithExcludes("migrations"),
//	    introspect.WithExcludePrefixes("sqlite_"),
//	)
//
// With an existing connection:
//
//	s, err := introspect.Database(ctx, db, introspect.SQLite, introspect.WithIncludes("users", "orders"))
package introspect

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/samber/lo"

	"github.com/lucasefe/schemadot/schema"
)

// catalogName is a table name as reported by the database catalog. Values
// are created only by a catalog's tables method, which keeps every name used
// in a metadata lookup tied to the catalog enumeration.
type catalogName struct {
	schema string
	name   string
}

// String returns the name used in the Schema: tables outside the default
// Postgres schema are qualified.
func (n catalogName) String() string {
	if n.schema != "" && n.schema != "public" {
		return fmt.Sprintf("%s.%s", n.schema, n.name)
	}
	return n.name
}

// catalog is the per-dialect set of metadata queries.
type catalog interface {
	tables(ctx context.Context) ([]catalogName, error)
	columns(ctx context.Context, t catalogName) ([]schema.Column, error)
	foreignKeys(ctx context.Context, t catalogName) ([]schema.ForeignKey, error)
}

// Open connects to the database named by dsn, extracts its schema and closes
// the connection. A path without a URL scheme is read as a SQLite file, which
// must exist; it is opened read-only.
func Open(ctx context.Context, dsn string, opts ...Option) (*schema.Schema, error) {
	t, err := resolve(dsn)
	if err != nil {
		return nil, &ConnectionError{DSN: dsn, Err: err}
	}

	db, err := sql.Open(t.driver, t.source)
	if err != nil {
		return nil, &ConnectionError{DSN: dsn, Err: err}
	}
	defer db.Close()

	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return nil, &ConnectionError{DSN: dsn, Err: err}
	}

	if t.dialect == SQLite || t.dialect == LibSQL {
		if err := probeSQLite(ctx, db); err != nil {
			return nil, &ConnectionError{DSN: dsn, Err: err}
		}
	}

	return Database(ctx, db, t.dialect, opts...)
}

// Database introspects an open connection and returns its schema.
// Use options to customize which tables to include.
func Database(ctx context.Context, db *sql.DB, dialect Dialect, opts ...Option) (*schema.Schema, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	cat, err := newCatalog(db, dialect, o)
	if err != nil {
		return nil, err
	}

	return extract(ctx, cat, o)
}

func newCatalog(db *sql.DB, dialect Dialect, o *options) (catalog, error) {
	mapper := o.mapperFor(dialect)

	switch dialect {
	case SQLite, LibSQL, "":
		return &sqliteCatalog{db: db, mapper: mapper}, nil
	case Postgres:
		return &postgresCatalog{
			db:                db,
			schemas:           o.schemas,
			includeAllSchemas: o.includeAllSchemas,
			mapper:            mapper,
		}, nil
	case MySQL:
		return &mysqlCatalog{db: db, mapper: mapper}, nil
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
}

// extract enumerates the catalog, applies the filter and then reads columns
// and foreign keys for each retained table in a second pass. Any failure
// aborts the whole extraction.
func extract(ctx context.Context, cat catalog, o *options) (*schema.Schema, error) {
	names, err := cat.tables(ctx)
	if err != nil {
		return nil, &MetadataQueryError{Operation: "tables", Err: err}
	}

	retained := lo.Filter(names, func(n catalogName, _ int) bool {
		return o.filter.Retains(n.String())
	})
	o.logger.Debug("found database tables", "count", len(names), "retained", len(retained))

	tables := make([]schema.Table, 0, len(retained))
	for _, name := range retained {
		o.logger.Debug("processing table", "table", name.String())

		columns, err := cat.columns(ctx, name)
		if err != nil {
			return nil, &MetadataQueryError{Table: name.String(), Operation: "columns", Err: err}
		}

		foreignKeys, err := cat.foreignKeys(ctx, name)
		if err != nil {
			return nil, &MetadataQueryError{Table: name.String(), Operation: "foreign keys", Err: err}
		}

		o.logger.Debug("found table metadata", "table", name.String(), "columns", len(columns), "foreign_keys", len(foreignKeys))

		tables = append(tables, schema.Table{
			Name:        name.String(),
			Columns:     columns,
			ForeignKeys: foreignKeys,
		})
	}

	s := schema.New(tables)
	o.logger.Debug("schema extraction completed", "tables", len(s.Tables), "foreign_keys", len(s.ForeignKeys))

	return s, nil
}
