package schemadot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasefe/schemadot/generator"
	"github.com/lucasefe/schemadot/introspect"
	"github.com/lucasefe/schemadot/schema"
)

// Config describes one run: where the schema comes from, which tables to
// keep and what to print.
type Config struct {
	// Database is a SQLite file path or a connection URL. With FromDump it
	// is the path of a previously written schema dump.
	Database string

	Filter schema.Filter

	// Schemas lists the Postgres schemas to read. Defaults to public.
	Schemas []string

	Format     generator.Format
	DumpFormat schema.DumpFormat

	// DebugDumpSchema prints the extracted schema as structured data
	// instead of graph text.
	DebugDumpSchema bool
	FromDump        bool

	GraphName string
	RankDir   string

	// TypeMappings overrides the type names shown next to columns.
	TypeMappings map[string]string

	Logger *slog.Logger
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Generate extracts the schema described by cfg and renders it as a
// single document: graph text, or the structured dump when
// cfg.DebugDumpSchema is set.
func Generate(ctx context.Context, cfg *Config) (string, error) {
	if cfg == nil {
		return "", errors.New("config is required")
	}

	s, err := load(ctx, cfg)
	if err != nil {
		return "", err
	}

	if cfg.DebugDumpSchema {
		var buf bytes.Buffer
		if err := schema.Encode(&buf, s, cfg.DumpFormat); err != nil {
			return "", fmt.Errorf("failed to dump schema: %w", err)
		}
		return buf.String(), nil
	}

	return generator.GenerateString(s,
		generator.WithFormat(cfg.Format),
		generator.WithGraphName(cfg.GraphName),
		generator.WithRankDir(cfg.RankDir),
	)
}

// WriteToFile runs Generate and writes the result to filename.
func WriteToFile(ctx context.Context, cfg *Config, filename string) error {
	content, err := Generate(ctx, cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(filename, []byte(content), 0o644)
}

func load(ctx context.Context, cfg *Config) (*schema.Schema, error) {
	if cfg.FromDump {
		return loadDump(cfg)
	}

	return introspect.Open(ctx, cfg.Database,
		introspect.WithFilter(cfg.Filter),
		introspect.WithSchemas(cfg.Schemas...),
		introspect.WithTypeMappings(cfg.TypeMappings),
		introspect.WithLogger(cfg.logger()),
	)
}

// loadDump reads a schema written with DebugDumpSchema. The dump format
// follows the file extension, falling back to cfg.DumpFormat.
func loadDump(cfg *Config) (*schema.Schema, error) {
	f, err := os.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema dump: %w", err)
	}
	defer f.Close()

	format := cfg.DumpFormat
	switch strings.ToLower(filepath.Ext(cfg.Database)) {
	case ".json":
		format = schema.DumpJSON
	case ".yaml", ".yml":
		format = schema.DumpYAML
	}

	s, err := schema.Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema dump %s: %w", cfg.Database, err)
	}

	cfg.logger().Debug("loaded schema dump", "path", cfg.Database, "tables", len(s.Tables))

	if cfg.Filter.IsZero() {
		// Edges are re-derived so a hand-edited dump cannot disagree with its tables.
		return schema.New(s.Tables), nil
	}
	return schema.FilterTables(s, cfg.Filter), nil
}
