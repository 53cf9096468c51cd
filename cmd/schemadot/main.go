package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/lucasefe/schemadot"
)

const version = "1.0.0"

func init() {
	// -v is --verbose.
	cli.VersionFlag = &cli.BoolFlag{Name: "version", Usage: "print the version"}
}

func main() {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer cancel()

	app := newApp(os.Stdout, os.Stderr)
	if err := app.RunContext(ctx, os.Args); err != nil {
		newLogger(os.Stderr, false).Error("schemadot failed", "error", err)
		cancel()
		os.Exit(1)
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "schemadot",
		Usage:     "Render a database schema as a Graphviz diagram",
		UsageText: "schemadot [options] DATABASE",
		Description: `DATABASE is a SQLite file or a libsql://, postgres:// or mysql:// URL.

The graph is written to stdout and can be piped into Graphviz:

    schemadot app.db | dot -Tsvg > schema.svg

Options may also be set in schemadot.yaml or with SCHEMADOT_* environment
variables (lists are comma-separated), e.g. SCHEMADOT_EXCLUDES=migrations.`,
		Version:                   version,
		Writer:                    stdout,
		ErrWriter:                 stderr,
		DisableSliceFlagSeparator: true,
		HideHelpCommand:           true,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude table `NAME` (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include only table `NAME` (repeatable); overrides every other filter",
			},
			&cli.StringSliceFlag{
				Name:  "prefix-exclude",
				Usage: "Exclude tables starting with `PREFIX` (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "prefix-include",
				Usage: "Include only tables starting with `PREFIX` (repeatable); overrides the exclude filters",
			},
			&cli.BoolFlag{
				Name:  "debug-dump-schema",
				Usage: "Print the extracted schema as structured data instead of graph text",
			},
			&cli.StringFlag{
				Name:  "dump-format",
				Usage: "Encoding of --debug-dump-schema: json or yaml",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Graph format: dot or dbml",
			},
			&cli.StringFlag{
				Name:  "graph-name",
				Usage: "Name of the DOT digraph",
			},
			&cli.StringFlag{
				Name:  "rankdir",
				Usage: "DOT layout direction: TB, LR, BT or RL",
			},
			&cli.StringSliceFlag{
				Name:  "schema",
				Usage: "PostgreSQL schema to read (repeatable, default public)",
			},
			&cli.BoolFlag{
				Name:  "from-dump",
				Usage: "Treat DATABASE as a schema dump written by --debug-dump-schema",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to `FILE` instead of stdout",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE` (default: schemadot.yaml if present)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log debug output to stderr",
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	s, err := loadSettings(c)
	if err != nil {
		return err
	}

	logger := newLogger(c.App.ErrWriter, s.Verbose)

	cfg, err := s.config()
	if err != nil {
		return err
	}
	cfg.Logger = logger

	logger.Debug("generating schema graph", "database", s.Database, "format", cfg.Format, "dump", cfg.DebugDumpSchema)

	if s.Output != "" {
		if err := schemadot.WriteToFile(c.Context, cfg, s.Output); err != nil {
			return err
		}
		logger.Info("output written", "path", s.Output)
		return nil
	}

	content, err := schemadot.Generate(c.Context, cfg)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(c.App.Writer, content)
	return err
}
