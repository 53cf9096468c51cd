package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// DumpFormat selects the structured encoding used by Encode and Decode.
type DumpFormat string

const (
	DumpJSON DumpFormat = "json"
	DumpYAML DumpFormat = "yaml"
)

const dumpIndent = 4

// ParseDumpFormat converts a user supplied name into a DumpFormat.
// The empty string selects JSON.
func ParseDumpFormat(name string) (DumpFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return DumpJSON, nil
	case "yaml", "yml":
		return DumpYAML, nil
	default:
		return "", fmt.Errorf("unknown dump format %q (want json or yaml)", name)
	}
}

// Encode writes s to w as indented structured data.
func Encode(w io.Writer, s *Schema, format DumpFormat) error {
	switch format {
	case DumpJSON, "":
		out, err := json.MarshalIndent(s, "", strings.Repeat(" ", dumpIndent))
		if err != nil {
			return fmt.Errorf("failed to encode schema as json: %w", err)
		}
		out = append(out, '\n')
		_, err = w.Write(out)
		return err
	case DumpYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(dumpIndent)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("failed to encode schema as yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown dump format %q", format)
	}
}

// Decode reads a Schema previously written by Encode.
func Decode(r io.Reader, format DumpFormat) (*Schema, error) {
	var s Schema

	switch format {
	case DumpJSON, "":
		if err := json.NewDecoder(r).Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode json schema: %w", err)
		}
	case DumpYAML:
		if err := yaml.NewDecoder(r).Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode yaml schema: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown dump format %q", format)
	}

	return &s, nil
}
