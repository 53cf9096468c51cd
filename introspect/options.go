package introspect

import (
	"log/slog"

	"github.com/lucasefe/schemadot/schema"
)

// Option configures introspection behavior.
type Option func(*options)

type options struct {
	filter            schema.Filter
	schemas           []string
	includeAllSchemas bool
	typeMapper        TypeMapper
	typeMappings      map[string]string
	logger            *slog.Logger
}

func defaultOptions() *options {
	return &options{
		schemas: []string{"public"},
		logger:  slog.Default(),
	}
}

func (o *options) mapperFor(dialect Dialect) TypeMapper {
	if o.typeMapper != nil {
		return o.typeMapper
	}
	if dialect == Postgres {
		return NewPostgresTypeMapper(o.typeMappings)
	}
	return NewDeclaredTypeMapper(o.typeMappings)
}

// WithFilter replaces the whole table filter.
func WithFilter(f schema.Filter) Option {
	return func(o *options) {
		o.filter = f
	}
}

// WithIncludes keeps only the named tables. It takes precedence over every
// other filter option.
func WithIncludes(tables ...string) Option {
	return func(o *options) {
		o.filter.Includes = tables
	}
}

// WithIncludePrefixes keeps only tables whose name starts with one of the
// prefixes. Ignored when WithIncludes is also given; overrides the exclude options.
func WithIncludePrefixes(prefixes ...string) Option {
	return func(o *options) {
		o.filter.IncludePrefixes = prefixes
	}
}

// WithExcludes specifies tables to exclude from introspection.
func WithExcludes(tables ...string) Option {
	return func(o *options) {
		o.filter.Excludes = tables
	}
}

// WithExcludePrefixes excludes tables whose name starts with one of the prefixes.
func WithExcludePrefixes(prefixes ...string) Option {
	return func(o *options) {
		o.filter.ExcludePrefixes = prefixes
	}
}

// WithSchemas specifies which Postgres schemas to introspect.
// If not specified, defaults to ["public"]. Other dialects ignore it.
func WithSchemas(schemas ...string) Option {
	return func(o *options) {
		if len(schemas) > 0 {
			o.schemas = schemas
		}
	}
}

// WithAllSchemas includes all non-system Postgres schemas.
// This overrides WithSchemas.
func WithAllSchemas() Option {
	return func(o *options) {
		o.includeAllSchemas = true
	}
}

// WithTypeMapper sets a custom mapper for the column types shown in the output.
func WithTypeMapper(mapper TypeMapper) Option {
	return func(o *options) {
		o.typeMapper = mapper
	}
}

// WithTypeMappings overrides individual declared types.
// Keys are type names (case-insensitive), values are the names to display.
func WithTypeMappings(mappings map[string]string) Option {
	return func(o *options) {
		o.typeMappings = mappings
	}
}

// WithLogger sets the logger used for per-table debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
