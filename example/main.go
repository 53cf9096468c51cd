// This program builds a small lending-library SQLite database and shows the
// ways schemadot can render it.
// Run with: go run ./example [output_dir]
package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/lucasefe/schemadot"
	"github.com/lucasefe/schemadot/generator"
	"github.com/lucasefe/schemadot/introspect"
	"github.com/lucasefe/schemadot/schema"
)

var libraryDDL = []string{
	`CREATE TABLE authors (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		born DATE
	)`,
	`CREATE TABLE books (
		isbn TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		author_id INTEGER NOT NULL REFERENCES authors(id),
		published INTEGER
	)`,
	`CREATE TABLE members (
		id INTEGER PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		joined_at TEXT DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE loans (
		book_isbn TEXT REFERENCES books,
		member_id INTEGER REFERENCES members(id),
		due DATE NOT NULL,
		PRIMARY KEY (book_isbn, member_id)
	)`,
	`CREATE TABLE audit_log (id INTEGER PRIMARY KEY, entry TEXT)`,
}

func main() {
	outputDir := "."
	if len(os.Args) > 1 {
		outputDir = os.Args[1]
	}

	ctx := context.Background()

	dir, err := os.MkdirTemp("", "schemadot-example")
	if err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	dbPath := filepath.Join(dir, "library.db")
	if err := createLibrary(dbPath); err != nil {
		log.Fatalf("Failed to create library database: %v", err)
	}

	fmt.Println("=== Example 1: Basic Usage ===")
	basicUsage(ctx, dbPath, filepath.Join(outputDir, "library.dot"))

	fmt.Println("\n=== Example 2: Working with an Open Connection ===")
	openConnection(ctx, dbPath)

	fmt.Println("\n=== Example 3: Schema Dumps ===")
	schemaDump(ctx, dbPath)
}

func createLibrary(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, stmt := range libraryDDL {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func basicUsage(ctx context.Context, dbPath, outputFile string) {
	cfg := &schemadot.Config{
		Database:  dbPath,
		Filter:    schema.Filter{Excludes: []string{"audit_log"}},
		GraphName: "library",
		RankDir:   "LR",
	}

	if err := schemadot.WriteToFile(ctx, cfg, outputFile); err != nil {
		log.Fatalf("Failed to write graph: %v", err)
	}

	fmt.Printf("Graph written to %s\n", outputFile)
	fmt.Printf("Render it with: dot -Tsvg %s > library.svg\n", outputFile)
}

func openConnection(ctx context.Context, dbPath string) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	s, err := introspect.Database(ctx, db, introspect.SQLite,
		introspect.WithIncludes("books", "authors"),
		introspect.WithTypeMappings(map[string]string{"INTEGER": "int"}),
	)
	if err != nil {
		log.Fatalf("Failed to introspect database: %v", err)
	}

	fmt.Printf("Found %d tables: %v\n", len(s.Tables), s.TableNames())
	for _, edge := range s.ForeignKeys {
		fmt.Printf("  %s.%s -> %s.%s\n", edge.SourceTable, edge.SourceColumn, edge.TargetTable, edge.TargetColumn)
	}

	dbml, err := generator.GenerateString(s, generator.WithFormat(generator.FormatDBML))
	if err != nil {
		log.Fatalf("Failed to generate DBML: %v", err)
	}
	fmt.Println(dbml)
}

func schemaDump(ctx context.Context, dbPath string) {
	s, err := introspect.Open(ctx, dbPath, introspect.WithExcludePrefixes("audit_"))
	if err != nil {
		log.Fatalf("Failed to introspect database: %v", err)
	}

	var buf bytes.Buffer
	if err := schema.Encode(&buf, s, schema.DumpYAML); err != nil {
		log.Fatalf("Failed to dump schema: %v", err)
	}

	decoded, err := schema.Decode(&buf, schema.DumpYAML)
	if err != nil {
		log.Fatalf("Failed to read schema dump: %v", err)
	}

	loans := schema.FilterTables(decoded, schema.Filter{Includes: []string{"loans"}})
	dot, err := generator.GenerateString(loans, generator.WithGraphName("loans"))
	if err != nil {
		log.Fatalf("Failed to generate graph: %v", err)
	}
	fmt.Print(dot)
}
