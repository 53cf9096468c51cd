package introspect

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lucasefe/schemadot/schema"
)

// fakeCatalog serves fixed metadata and fails on demand.
type fakeCatalog struct {
	names      []catalogName
	columnsOf  map[string][]schema.Column
	keysOf     map[string][]schema.ForeignKey
	tablesErr  error
	columnsErr map[string]error
	keysErr    map[string]error
	queried    []string
}

func (f *fakeCatalog) tables(context.Context) ([]catalogName, error) {
	return f.names, f.tablesErr
}

func (f *fakeCatalog) columns(_ context.Context, t catalogName) ([]schema.Column, error) {
	f.queried = append(f.queried, t.String())
	if err := f.columnsErr[t.String()]; err != nil {
		return nil, err
	}
	return f.columnsOf[t.String()], nil
}

func (f *fakeCatalog) foreignKeys(_ context.Context, t catalogName) ([]schema.ForeignKey, error) {
	if err := f.keysErr[t.String()]; err != nil {
		return nil, err
	}
	return f.keysOf[t.String()], nil
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		names: []catalogName{{name: "users"}, {name: "orders"}, {name: "tmp_import"}},
		columnsOf: map[string][]schema.Column{
			"users":      {{Name: "id", Type: "INTEGER", IsPrimaryKey: true}},
			"orders":     {{Name: "id", Type: "INTEGER", IsPrimaryKey: true}, {Name: "user_id", Type: "INTEGER", Nullable: true}},
			"tmp_import": {{Name: "line", Type: "TEXT", Nullable: true}},
		},
		keysOf: map[string][]schema.ForeignKey{
			"orders": {{TargetTable: "users", LocalColumn: "user_id", TargetColumn: "id"}},
		},
	}
}

func TestExtract(t *testing.T) {
	cat := newFakeCatalog()
	o := defaultOptions()
	WithExcludePrefixes("tmp_")(o)

	s, err := extract(context.Background(), cat, o)
	if err != nil {
		t.Fatalf("extract returned error: %v", err)
	}

	if diff := cmp.Diff([]string{"users", "orders"}, s.TableNames()); diff != "" {
		t.Errorf("tables mismatch (-want +got):\n%s", diff)
	}

	// Filtered tables are never queried for metadata.
	if diff := cmp.Diff([]string{"users", "orders"}, cat.queried); diff != "" {
		t.Errorf("queried tables mismatch (-want +got):\n%s", diff)
	}

	expected := []schema.Edge{{SourceTable: "orders", SourceColumn: "user_id", TargetTable: "users", TargetColumn: "id"}}
	if diff := cmp.Diff(expected, s.ForeignKeys); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		setup     func(*fakeCatalog)
		table     string
		operation string
	}{
		{
			name:      "table enumeration",
			setup:     func(f *fakeCatalog) { f.tablesErr = boom },
			operation: "tables",
		},
		{
			name:      "columns",
			setup:     func(f *fakeCatalog) { f.columnsErr = map[string]error{"orders": boom} },
			table:     "orders",
			operation: "columns",
		},
		{
			name:      "foreign keys",
			setup:     func(f *fakeCatalog) { f.keysErr = map[string]error{"users": boom} },
			table:     "users",
			operation: "foreign keys",
		},
		{
			name:      "dropped table",
			setup:     func(f *fakeCatalog) { f.columnsErr = map[string]error{"users": errTableNotFound} },
			table:     "users",
			operation: "columns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := newFakeCatalog()
			tt.setup(cat)

			s, err := extract(context.Background(), cat, defaultOptions())
			if s != nil {
				t.Errorf("expected no partial schema, got %+v", s)
			}

			var queryErr *MetadataQueryError
			if !errors.As(err, &queryErr) {
				t.Fatalf("expected MetadataQueryError, got %T: %v", err, err)
			}
			if queryErr.Table != tt.table {
				t.Errorf("expected table %q, got %q", tt.table, queryErr.Table)
			}
			if queryErr.Operation != tt.operation {
				t.Errorf("expected operation %q, got %q", tt.operation, queryErr.Operation)
			}
			if tt.table != "" && !strings.Contains(err.Error(), tt.table) {
				t.Errorf("error message %q does not name the table", err.Error())
			}
		})
	}
}

func TestCatalogNameString(t *testing.T) {
	tests := []struct {
		name     catalogName
		expected string
	}{
		{catalogName{name: "users"}, "users"},
		{catalogName{schema: "public", name: "users"}, "users"},
		{catalogName{schema: "billing", name: "invoices"}, "billing.invoices"},
	}

	for _, tt := range tests {
		if got := tt.name.String(); got != tt.expected {
			t.Errorf("String() = %q, want %q", got, tt.expected)
		}
	}
}

func TestDatabaseUnsupportedDialect(t *testing.T) {
	_, err := Database(context.Background(), nil, Dialect("oracle"))
	if err == nil || !strings.Contains(err.Error(), "oracle") {
		t.Errorf("expected unsupported dialect error, got %v", err)
	}
}
