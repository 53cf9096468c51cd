package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/lucasefe/schemadot/introspect"
	"github.com/lucasefe/schemadot/schema"
)

func createDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "app.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range []string{
		`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)`,
		`CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER REFERENCES users(id))`,
		`CREATE TABLE app_settings (key TEXT PRIMARY KEY, value TEXT)`,
		`CREATE TABLE "a,b" (id INTEGER PRIMARY KEY)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	return path
}

// runApp runs the CLI in a clean working directory and returns stdout.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := newApp(&stdout, &stderr)
	err := app.RunContext(context.Background(), append([]string{"schemadot"}, args...))
	return stdout.String(), err
}

func tablesIn(t *testing.T, dump string) []string {
	t.Helper()

	s, err := schema.Decode(strings.NewReader(dump), schema.DumpJSON)
	require.NoError(t, err)
	return s.TableNames()
}

func TestRunDOT(t *testing.T) {
	t.Chdir(t.TempDir())
	path := createDB(t)

	out, err := runApp(t, path)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(out, `digraph "schema" {`))
	require.Equal(t, 4, strings.Count(out, "[label=<"))
	require.Equal(t, 1, strings.Count(out, "->"))
}

func TestRunFilters(t *testing.T) {
	t.Chdir(t.TempDir())
	path := createDB(t)

	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{"exclude", []string{"--exclude", "orders"}, []string{"users", "app_settings", "a,b"}},
		{"exclude is not split on commas", []string{"--exclude", "a,b"}, []string{"users", "orders", "app_settings"}},
		{"repeated exclude", []string{"--exclude", "orders", "--exclude", "users"}, []string{"app_settings", "a,b"}},
		{"prefix exclude", []string{"--prefix-exclude", "app_"}, []string{"users", "orders", "a,b"}},
		{"prefix include", []string{"--prefix-include", "app_", "--exclude", "app_settings"}, []string{"app_settings"}},
		{"include wins", []string{"--include", "users", "--prefix-include", "app_"}, []string{"users"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--debug-dump-schema"}, tt.args...)
			out, err := runApp(t, append(args, path)...)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.expected, tablesIn(t, out)); diff != "" {
				t.Errorf("tables mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunDebugDumpHasNoGraphSyntax(t *testing.T) {
	t.Chdir(t.TempDir())
	path := createDB(t)

	out, err := runApp(t, "--debug-dump-schema", "--dump-format", "yaml", path)
	require.NoError(t, err)

	require.NotContains(t, out, "digraph")
	require.NotContains(t, out, "->")
	require.Contains(t, out, "tables:")
}

func TestRunOutputFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := createDB(t)
	target := filepath.Join(t.TempDir(), "schema.dbml")

	out, err := runApp(t, "--format", "dbml", "-o", target, path)
	require.NoError(t, err)
	require.Empty(t, out)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Contains(t, string(content), "Ref: orders.user_id > users.id")
}

func TestRunEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	path := createDB(t)

	t.Setenv("SCHEMADOT_DATABASE", path)
	t.Setenv("SCHEMADOT_EXCLUDES", "orders, app_settings")
	t.Setenv("SCHEMADOT_DEBUG_DUMP_SCHEMA", "true")

	out, err := runApp(t)
	require.NoError(t, err)
	require.Equal(t, []string{"users", "a,b"}, tablesIn(t, out))

	// Flags override the environment.
	out, err = runApp(t, "--exclude", "users")
	require.NoError(t, err)
	require.Equal(t, []string{"orders", "app_settings", "a,b"}, tablesIn(t, out))
}

func TestRunConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := createDB(t)

	config := "database: " + path + "\n" +
		"debug_dump_schema: true\n" +
		"include_prefixes:\n  - app_\n  - user\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schemadot.yaml"), []byte(config), 0o600))

	out, err := runApp(t)
	require.NoError(t, err)
	require.Equal(t, []string{"users", "app_settings"}, tablesIn(t, out))

	other := filepath.Join(t.TempDir(), "other.yaml")
	require.NoError(t, os.WriteFile(other, []byte("includes: [orders]\ndebug_dump_schema: true\n"), 0o600))

	out, err = runApp(t, "--config", other, path)
	require.NoError(t, err)
	require.Equal(t, []string{"orders"}, tablesIn(t, out))
}

func TestRunDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := createDB(t)

	t.Cleanup(func() {
		os.Unsetenv("SCHEMADOT_INCLUDES")
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SCHEMADOT_INCLUDES=users\n"), 0o600))

	out, err := runApp(t, "--debug-dump-schema", path)
	require.NoError(t, err)
	require.Equal(t, []string{"users"}, tablesIn(t, out))
}

func TestRunErrors(t *testing.T) {
	t.Chdir(t.TempDir())
	path := createDB(t)

	t.Run("missing database argument", func(t *testing.T) {
		_, err := runApp(t)
		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr), "got %v", err)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := runApp(t, "--format", "svg", path)
		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr), "got %v", err)
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := runApp(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), path)
		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr), "got %v", err)
	})

	t.Run("missing database file", func(t *testing.T) {
		out, err := runApp(t, filepath.Join(t.TempDir(), "missing.db"))
		var connErr *introspect.ConnectionError
		require.True(t, errors.As(err, &connErr), "got %v", err)
		require.Empty(t, out)
	})
}
