// Package generator renders a schema.Schema as graph text.
//
// The default format is Graphviz DOT: one node per table with an HTML-like
// label and one edge per foreign key, pointing at column ports. DBML is
// available as an alternative.
//
// Basic usage:
//
//	output, err := generator.Generate(s, generator.WithRankDir("LR"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(output)
package generator

import (
	"fmt"
	"strings"

	"github.com/lucasefe/schemadot/schema"
)

// Format selects the graph language produced by Generate.
type Format string

const (
	FormatDOT  Format = "dot"
	FormatDBML Format = "dbml"
)

// ParseFormat maps a format name to a Format. The empty string selects DOT.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", string(FormatDOT), "gv", "graphviz":
		return FormatDOT, nil
	case string(FormatDBML):
		return FormatDBML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected dot or dbml)", name)
	}
}

// DefaultGraphName is the DOT graph name used when none is configured.
const DefaultGraphName = "schema"

var rankDirs = []string{"TB", "LR", "BT", "RL"}

// Option configures rendering.
type Option func(*options)

type options struct {
	format    Format
	graphName string
	rankDir   string
}

// WithFormat selects the output language.
func WithFormat(f Format) Option {
	return func(o *options) {
		if f != "" {
			o.format = f
		}
	}
}

// WithGraphName sets the name of the DOT digraph.
func WithGraphName(name string) Option {
	return func(o *options) {
		o.graphName = name
	}
}

// WithRankDir sets the DOT layout direction: TB, LR, BT or RL.
func WithRankDir(dir string) Option {
	return func(o *options) {
		o.rankDir = strings.ToUpper(dir)
	}
}

func (o *options) validate() error {
	if o.rankDir == "" {
		return nil
	}
	for _, dir := range rankDirs {
		if o.rankDir == dir {
			return nil
		}
	}
	return fmt.Errorf("invalid rankdir %q (expected one of %s)", o.rankDir, strings.Join(rankDirs, ", "))
}

// Generate renders a Schema. Tables, columns and edges keep the order they
// have in the Schema, so equal schemas always render to equal output.
func Generate(s *schema.Schema, opts ...Option) ([]byte, error) {
	o := &options{format: FormatDOT, graphName: DefaultGraphName}
	for _, opt := range opts {
		opt(o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	if s == nil {
		s = schema.New(nil)
	}

	switch o.format {
	case FormatDOT:
		return generateDOT(s, o)
	case FormatDBML:
		return generateDBML(s), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", o.format)
	}
}

// GenerateString is a convenience wrapper that returns the output as a string.
func GenerateString(s *schema.Schema, opts ...Option) (string, error) {
	result, err := Generate(s, opts...)
	if err != nil {
		return "", err
	}
	return string(result), nil
}
