package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/mcncl/vizpath/internal/config"
	"github.com/mcncl/vizpath/internal/errors"
	"github.com/mcncl/vizpath/internal/output"
	"github.com/mcncl/vizpath/internal/pipeline"
)

// Version information
const (
	Version = "0.1.0"
)

// Globals are the flags shared by every command.
type Globals struct {
	Input       string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Config      string `help:"Path to config file. Defaults to the nearest .vizpath.yml." short:"c" type:"path"`
	Format      string `help:"Output format (json, csv, table)." short:"f"`
	GraphType   string `help:"Graph type to validate or draw. Defaults to graph_type from the config." name:"graph-type" short:"g"`
	Compact     bool   `help:"Write compact JSON."`
	Style       string `help:"Display name style (raw, camel, lower_camel, snake, kebab, words)."`
	Debug       bool   `help:"Enable debug logging." short:"d"`

	NoDescendantSearch bool `help:"Do not fall back to searching by key name when a path misses."`
	NoImplicitRoots    bool `help:"Do not infer a root when none is given."`
	Columnar           bool `help:"Zip parameters that all resolve to arrays into one row per index."`
	Interactive bool   `help:"Read JSON from the terminal until Ctrl+D." short:"I"`
}

// CLI defines the command-line interface
type CLI struct {
	Globals

	Skeleton  SkeletonCmd  `cmd:"" help:"Print the structure of the document with arrays reduced to their first element."`
	Paths     PathsCmd     `cmd:"" help:"List root candidates and the parameter paths available under them."`
	Resolve   ResolveCmd   `cmd:"" help:"Print the value at a path."`
	Transform TransformCmd `cmd:"" help:"Flatten the document into rows for the given roots and parameters."`
	Validate  ValidateCmd  `cmd:"" help:"Check whether the rows can be drawn as a graph type."`
	Chart     ChartCmd     `cmd:"" help:"Build chart data for a graph type."`
	Batch     BatchCmd     `cmd:"" help:"Run every request in a YAML file against the document."`
	Version   VersionCmd   `cmd:"" help:"Show version information."`
}

// Context holds the runtime context passed to every command
type Context struct {
	Globals  *Globals
	Config   *config.Config
	Logger   *slog.Logger
	Engine   *pipeline.Engine
	Renderer *output.Renderer
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute parses args, runs the selected command and returns the exit code.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var cli CLI
	exitCode := -1
	parser, err := kong.New(&cli,
		kong.Name("vizpath"),
		kong.Description("Extract chart-ready datasets from nested JSON documents"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exitCode = code }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if exitCode >= 0 {
		// --help was handled by kong
		return exitCode
	}
	if err != nil {
		parser.FatalIfErrorf(err)
		return 1
	}

	ctx, err := newContext(&cli.Globals, stdin, stdout, stderr)
	if err == nil {
		err = kctx.Run(ctx)
	}
	if err != nil {
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		if !errors.IsValidation(err) {
			fmt.Fprintf(stderr, "\nFor help, run: vizpath --help\n")
		}
		return 1
	}
	return 0
}

func newContext(g *Globals, stdin io.Reader, stdout, stderr io.Writer) (*Context, error) {
	overrides := config.Overrides{
		GraphType: g.GraphType,
		Format:    g.Format,
		Style:     g.Style,
		Debug:     g.Debug,
	}
	off, on := false, true
	if g.Compact {
		overrides.Pretty = &off
	}
	if g.NoDescendantSearch {
		overrides.DescendantSearch = &off
	}
	if g.NoImplicitRoots {
		overrides.ImplicitRoots = &off
	}
	if g.Columnar {
		overrides.Columnar = &on
	}

	cfg, err := config.LoadConfigWithCLI(g.Config, overrides)
	if err != nil {
		return nil, errors.NewConfigError("failed to load configuration", err)
	}

	logger := setupLogger(stderr, cfg.Dev.Debug)
	logger.Debug("configuration loaded", "format", cfg.Output.Format, "style", cfg.Display.Style, "charts", len(cfg.Charts))

	return &Context{
		Globals:  g,
		Config:   cfg,
		Logger:   logger,
		Engine:   pipeline.New(cfg, pipeline.WithLogger(logger)),
		Renderer: output.NewRenderer(cfg),
		Stdin:    stdin,
		Stdout:   stdout,
		Stderr:   stderr,
	}, nil
}

// write sends the rendered output to the -o file or stdout.
func (c *Context) write(render func(w io.Writer) error) error {
	if c.Globals.Output == "" {
		return render(c.Stdout)
	}

	w, closeFn, err := output.Destination(c.Globals.Output)
	if err != nil {
		return err
	}
	if err := render(w); err != nil {
		_ = closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return err
	}
	fmt.Fprintf(c.Stderr, "Output written to %s\n", c.Globals.Output)
	return nil
}
