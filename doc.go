// Package schemadot turns the schema of a relational database into a
// Graphviz diagram: one node per table, one edge per foreign key.
//
// SQLite files are the primary input. libsql, PostgreSQL and MySQL
// connection URLs work too.
//
// # Basic Usage
//
//	dot, err := schemadot.Generate(ctx, &schemadot.Config{Database: "app.db"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(dot)
//
// The output can be piped into Graphviz:
//
//	schemadot app.db | dot -Tsvg > schema.svg
//
// # Filtering
//
// Filters are evaluated with strict precedence. A non-empty include list
// keeps exactly the named tables; otherwise a non-empty include-prefix list
// keeps the tables starting with one of the prefixes; otherwise every table
// is kept except the excluded names and prefixes.
//
//	cfg := &schemadot.Config{
//	    Database: "app.db",
//	    Filter: schema.Filter{
//	        Excludes:        []string{"migrations"},
//	        ExcludePrefixes: []string{"sqlite_"},
//	    },
//	}
//
// # Schema Dumps
//
// Set DebugDumpSchema to print the extracted schema as JSON or YAML instead
// of graph text. A dump can be rendered later with FromDump.
//
// # Subpackages
//
//   - github.com/lucasefe/schemadot/schema - the schema model, filters and dump codec
//   - github.com/lucasefe/schemadot/introspect - catalog readers for each database
//   - github.com/lucasefe/schemadot/generator - DOT and DBML output
package schemadot
