package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mcncl/vizpath/internal/analyzer"
	"github.com/mcncl/vizpath/internal/errors"
	"github.com/mcncl/vizpath/internal/models"
	"github.com/mcncl/vizpath/internal/path"
	"github.com/mcncl/vizpath/internal/pipeline"
)

// Selection is the root and parameter choice shared by the dataset
// commands.
type Selection struct {
	Roots  []string `help:"Root to extract, as label=path or a bare path. Repeatable." name:"root" short:"r" sep:"none"`
	Params []string `help:"Parameter path to flatten into a column. Repeatable." name:"param" short:"p" sep:"none"`
}

// RootKeys parses the --root flags.
func (s Selection) RootKeys() []models.RootKey {
	keys := make([]models.RootKey, 0, len(s.Roots))
	for _, text := range s.Roots {
		keys = append(keys, parseRoot(text))
	}
	return keys
}

// parseRoot accepts "label=path". Text before "=" is only a label when it
// could not itself be part of a path.
func parseRoot(text string) models.RootKey {
	text = strings.TrimSpace(text)
	if label, p, ok := strings.Cut(text, "="); ok && label != "" && !strings.ContainsAny(label, ".['") {
		return models.RootKey{Label: label, Path: p}
	}
	return models.RootKey{Path: text}
}

// SkeletonCmd prints the document skeleton.
type SkeletonCmd struct{}

func (cmd *SkeletonCmd) Run(ctx *Context) error {
	doc, err := ctx.parseInput()
	if err != nil {
		return err
	}
	return ctx.write(func(w io.Writer) error {
		return ctx.Renderer.Value(w, analyzer.Skeleton(doc.Root))
	})
}

// PathsCmd prints the structure summary.
type PathsCmd struct{}

func (cmd *PathsCmd) Run(ctx *Context) error {
	doc, err := ctx.parseInput()
	if err != nil {
		return err
	}
	summary := analyzer.NewAnalyzerWithConfig(ctx.Config).Analyze(doc)
	ctx.Logger.Debug("analyzed document", "roots", len(summary.Roots), "fields", len(summary.Fields))
	return ctx.write(func(w io.Writer) error {
		return ctx.Renderer.Summary(w, summary)
	})
}

// ResolveCmd prints the value at one path.
type ResolveCmd struct {
	Path string `arg:"" help:"Path to resolve, e.g. items[0].name or $.items[*].name."`
}

func (cmd *ResolveCmd) Run(ctx *Context) error {
	doc, err := ctx.parseInput()
	if err != nil {
		return err
	}
	v, ok := path.ResolveString(doc.Root, cmd.Path)
	if !ok {
		return errors.NewRequestError(fmt.Sprintf("path '%s' did not resolve", cmd.Path), errors.ErrPathNotFound)
	}
	return ctx.write(func(w io.Writer) error {
		return ctx.Renderer.Value(w, v)
	})
}

// TransformCmd prints the flattened rows.
type TransformCmd struct {
	Selection
}

func (cmd *TransformCmd) Run(ctx *Context) error {
	doc, err := ctx.parseInput()
	if err != nil {
		return err
	}
	rows := ctx.Engine.Transform(doc.Root, cmd.RootKeys(), cmd.Params)
	return ctx.write(func(w io.Writer) error {
		return ctx.Renderer.Dataset(w, rows)
	})
}

// ValidateCmd reports whether the rows can be drawn. It fails when they
// cannot.
type ValidateCmd struct {
	Selection
}

func (cmd *ValidateCmd) Run(ctx *Context) error {
	doc, err := ctx.parseInput()
	if err != nil {
		return err
	}
	graphType := ctx.Config.GraphType
	if graphType == "" {
		return errors.NewRequestError("a graph type is required: pass --graph-type or set graph_type", errors.ErrInvalidRequest)
	}

	rows := ctx.Engine.Transform(doc.Root, cmd.RootKeys(), cmd.Params)
	res := pipeline.Result{
		GraphType: graphType,
		Roots:     cmd.RootKeys(),
		Params:    cmd.Params,
		Rows:      rows,
		Reason:    ctx.Engine.Validate(rows, graphType, cmd.Params),
	}
	if err := ctx.write(func(w io.Writer) error {
		return ctx.Renderer.Results(w, []pipeline.Result{res})
	}); err != nil {
		return err
	}
	return res.Err()
}

// ChartCmd prints chart data. Chart data is always JSON.
type ChartCmd struct {
	Selection
	Name string `help:"Name recorded in the result."`
}

func (cmd *ChartCmd) Run(ctx *Context) error {
	doc, err := ctx.parseInput()
	if err != nil {
		return err
	}
	res, err := ctx.Engine.Run(doc.Root, pipeline.Request{
		Name:      cmd.Name,
		GraphType: ctx.Config.GraphType,
		Roots:     cmd.RootKeys(),
		Params:    cmd.Params,
	})
	if err != nil {
		return err
	}
	if !res.Valid() {
		return res.Err()
	}
	return ctx.write(func(w io.Writer) error {
		return ctx.Renderer.JSON(w, res.Chart)
	})
}

// BatchCmd runs a requests file.
type BatchCmd struct {
	Requests string `arg:"" help:"YAML file with a list of requests." type:"path"`
}

func (cmd *BatchCmd) Run(ctx *Context) error {
	reqs, err := pipeline.LoadRequests(cmd.Requests)
	if err != nil {
		return err
	}
	doc, err := ctx.parseInput()
	if err != nil {
		return err
	}

	results := ctx.Engine.Batch(doc.Root, reqs)
	failed := 0
	for _, res := range results {
		if !res.Valid() {
			failed++
		}
	}
	ctx.Logger.Info("batch finished", "requests", len(results), "failed", failed)

	if err := ctx.write(func(w io.Writer) error {
		return ctx.Renderer.Results(w, results)
	}); err != nil {
		return err
	}
	if failed > 0 {
		return errors.NewValidationError(fmt.Sprintf("%d of %d requests failed", failed, len(results)), errors.ErrInvalidDataset)
	}
	return nil
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (cmd *VersionCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintf(ctx.Stdout, "vizpath version %s\n", Version)
	return err
}
