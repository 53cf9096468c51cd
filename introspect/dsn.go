package introspect

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Dialect identifies the catalog queries used for a connection.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	LibSQL   Dialect = "libsql"
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

// target is a resolved connection: which dialect to speak, which
// database/sql driver to use and the DSN to hand it.
type target struct {
	dialect Dialect
	driver  string
	source  string
}

var libsqlSchemes = map[string]bool{
	"libsql": true,
	"https":  true,
	"http":   true,
	"wss":    true,
	"ws":     true,
}

// resolve infers the driver from dsn. Anything without a URL scheme is
// treated as a path to a SQLite database file.
func resolve(dsn string) (target, error) {
	if dsn == "" {
		return target{}, errors.New("database is not set")
	}

	if strings.HasPrefix(dsn, "file:") {
		source, err := sqliteURISource(dsn)
		if err != nil {
			return target{}, err
		}
		return target{dialect: SQLite, driver: "sqlite", source: source}, nil
	}

	if !strings.Contains(dsn, "://") {
		source, err := sqliteFileSource(dsn)
		if err != nil {
			return target{}, err
		}
		return target{dialect: SQLite, driver: "sqlite", source: source}, nil
	}

	scheme, rest, _ := strings.Cut(dsn, "://")
	switch scheme = strings.ToLower(scheme); {
	case scheme == "postgres" || scheme == "postgresql":
		return target{dialect: Postgres, driver: "postgres", source: dsn}, nil
	case scheme == "mysql":
		if _, err := mysql.ParseDSN(rest); err != nil {
			return target{}, fmt.Errorf("invalid mysql dsn: %w", err)
		}
		return target{dialect: MySQL, driver: "mysql", source: rest}, nil
	case libsqlSchemes[scheme]:
		return target{dialect: LibSQL, driver: "libsql", source: dsn}, nil
	default:
		return target{}, fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

// sqliteFileSource turns a filesystem path into a read-only SQLite URI.
// The file must already exist: opening a missing path would create it.
func sqliteFileSource(path string) (string, error) {
	if err := checkDatabaseFile(path); err != nil {
		return "", err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(abs),
		RawQuery: "mode=ro",
	}
	return u.String(), nil
}

// sqliteURISource validates a SQLite "file:" URI the same way as a plain
// path and opens it read-only unless the URI already sets a mode.
// In-memory databases are passed through.
func sqliteURISource(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid sqlite uri: %w", err)
	}

	path := u.Path
	if u.Opaque != "" {
		if path, err = url.PathUnescape(u.Opaque); err != nil {
			return "", fmt.Errorf("invalid sqlite uri: %w", err)
		}
	}

	query := u.Query()
	if path == "" || path == ":memory:" || query.Get("mode") == "memory" {
		return dsn, nil
	}

	if err := checkDatabaseFile(path); err != nil {
		return "", err
	}

	if query.Has("mode") {
		return dsn, nil
	}
	u.RawQuery = strings.TrimPrefix(u.RawQuery+"&mode=ro", "&")
	u.ForceQuery = false
	return u.String(), nil
}

// checkDatabaseFile fails unless path names an existing regular file:
// opening a missing path would create it.
func checkDatabaseFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// redactDSN hides passwords in connection strings used in error messages.
func redactDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}

	if strings.EqualFold(scheme, "mysql") {
		cfg, err := mysql.ParseDSN(rest)
		if err != nil || cfg.Passwd == "" {
			return dsn
		}
		cfg.Passwd = "xxxxx"
		return scheme + "://" + cfg.FormatDSN()
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return dsn
	}
	return u.Redacted()
}
