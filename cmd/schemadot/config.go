package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v2"

	"github.com/lucasefe/schemadot"
	"github.com/lucasefe/schemadot/generator"
	"github.com/lucasefe/schemadot/schema"
)

const (
	envPrefix         = "SCHEMADOT_"
	defaultConfigPath = "schemadot.yaml"
)

// ConfigurationError reports malformed or contradictory input: a missing
// database argument, an unknown format, or an unreadable config file.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Err: fmt.Errorf(format, args...)}
}

// settings is the merged configuration, keyed the same way in the config
// file, the environment and the flag overrides.
type settings struct {
	Database        string            `koanf:"database"`
	Includes        []string          `koanf:"includes"`
	IncludePrefixes []string          `koanf:"include_prefixes"`
	Excludes        []string          `koanf:"excludes"`
	ExcludePrefixes []string          `koanf:"exclude_prefixes"`
	Schemas         []string          `koanf:"schemas"`
	Format          string            `koanf:"format"`
	DumpFormat      string            `koanf:"dump_format"`
	DebugDumpSchema bool              `koanf:"debug_dump_schema"`
	FromDump        bool              `koanf:"from_dump"`
	GraphName       string            `koanf:"graph_name"`
	RankDir         string            `koanf:"rankdir"`
	Output          string            `koanf:"output"`
	Verbose         bool              `koanf:"verbose"`
	TypeMappings    map[string]string `koanf:"type_mappings"`
}

var defaults = map[string]any{
	"format":      string(generator.FormatDOT),
	"dump_format": string(schema.DumpJSON),
	"graph_name":  generator.DefaultGraphName,
	"schemas":     []string{"public"},
}

// listKeys are split on commas when they come from the environment.
var listKeys = map[string]bool{
	"includes":         true,
	"include_prefixes": true,
	"excludes":         true,
	"exclude_prefixes": true,
	"schemas":          true,
}

// flagKeys maps each CLI flag onto its configuration key.
var flagKeys = map[string]string{
	"include":           "includes",
	"prefix-include":    "include_prefixes",
	"exclude":           "excludes",
	"prefix-exclude":    "exclude_prefixes",
	"schema":            "schemas",
	"format":            "format",
	"dump-format":       "dump_format",
	"debug-dump-schema": "debug_dump_schema",
	"from-dump":         "from_dump",
	"graph-name":        "graph_name",
	"rankdir":           "rankdir",
	"output":            "output",
	"verbose":           "verbose",
}

// loadSettings merges, from lowest to highest priority: built-in defaults,
// the YAML config file, SCHEMADOT_* environment variables (a .env file in
// the working directory is read first) and explicitly set flags.
func loadSettings(c *cli.Context) (*settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, configErrorf("failed to load .env: %w", err)
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, configErrorf("failed to load defaults: %w", err)
	}

	if path, ok := configPath(c); ok {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, configErrorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(envPrefix, ".", envValue), nil); err != nil {
		return nil, configErrorf("failed to load environment: %w", err)
	}

	if err := k.Load(confmap.Provider(flagOverrides(c), "."), nil); err != nil {
		return nil, configErrorf("failed to load flags: %w", err)
	}

	var s settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, configErrorf("failed to read configuration: %w", err)
	}

	if c.Args().Len() > 1 {
		return nil, configErrorf("expected a single DATABASE argument, got %d", c.Args().Len())
	}
	if db := c.Args().First(); db != "" {
		s.Database = db
	}
	if s.Database == "" {
		return nil, configErrorf("DATABASE is required (argument, %sDATABASE or database in the config file)", envPrefix)
	}

	return &s, nil
}

// configPath returns the config file to read: the --config flag, or
// schemadot.yaml when it exists in the working directory.
func configPath(c *cli.Context) (string, bool) {
	if c.IsSet("config") {
		return c.String("config"), true
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath, true
	}
	return "", false
}

func envValue(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	if listKeys[key] {
		return key, splitList(value)
	}
	return key, value
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

var boolKeys = map[string]bool{
	"debug_dump_schema": true,
	"from_dump":         true,
	"verbose":           true,
}

func flagOverrides(c *cli.Context) map[string]any {
	overrides := map[string]any{}
	for name, key := range flagKeys {
		if !c.IsSet(name) {
			continue
		}
		switch {
		case listKeys[key]:
			overrides[key] = c.StringSlice(name)
		case boolKeys[key]:
			overrides[key] = c.Bool(name)
		default:
			overrides[key] = c.String(name)
		}
	}
	return overrides
}

// config converts settings into the library configuration.
func (s *settings) config() (*schemadot.Config, error) {
	format, err := generator.ParseFormat(s.Format)
	if err != nil {
		return nil, &ConfigurationError{Err: err}
	}

	dumpFormat, err := schema.ParseDumpFormat(s.DumpFormat)
	if err != nil {
		return nil, &ConfigurationError{Err: err}
	}

	return &schemadot.Config{
		Database: s.Database,
		Filter: schema.Filter{
			Includes:        s.Includes,
			IncludePrefixes: s.IncludePrefixes,
			Excludes:        s.Excludes,
			ExcludePrefixes: s.ExcludePrefixes,
		},
		Schemas:         s.Schemas,
		Format:          format,
		DumpFormat:      dumpFormat,
		DebugDumpSchema: s.DebugDumpSchema,
		FromDump:        s.FromDump,
		GraphName:       s.GraphName,
		RankDir:         s.RankDir,
		TypeMappings:    s.TypeMappings,
	}, nil
}
