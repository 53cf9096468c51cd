package generator

import (
	"bytes"
	"embed"
	"html"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/lucasefe/schemadot/schema"
)

//go:embed templates
var templates embed.FS

var dotTemplate = template.Must(
	template.New("dot.tpl").
		Funcs(sprig.GenericFuncMap()).
		Funcs(template.FuncMap{
			"dotID":  dotID,
			"escape": html.EscapeString,
		}).
		ParseFS(templates, "templates/dot.tpl"),
)

type dotData struct {
	GraphName string
	RankDir   string
	Schema    *schema.Schema
}

func generateDOT(s *schema.Schema, o *options) ([]byte, error) {
	var buf bytes.Buffer
	err := dotTemplate.Execute(&buf, dotData{
		GraphName: o.graphName,
		RankDir:   o.rankDir,
		Schema:    s,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// dotID quotes an identifier as a DOT double-quoted string. Table and column
// names come straight from the database catalog, so every ID is quoted.
func dotID(id string) string {
	return `"` + dotEscaper.Replace(id) + `"`
}
