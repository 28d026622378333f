// Package pipeline runs extraction, flattening, validation and chart
// projection for visualization requests.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/mcncl/vizpath/internal/chart"
	"github.com/mcncl/vizpath/internal/config"
	"github.com/mcncl/vizpath/internal/extract"
	"github.com/mcncl/vizpath/internal/flatten"
	"github.com/mcncl/vizpath/internal/models"
	"github.com/mcncl/vizpath/internal/path"
	"github.com/mcncl/vizpath/internal/validate"
)

// Engine turns documents into validated, chart-ready datasets.
type Engine struct {
	cfg       *config.Config
	registry  *validate.Registry
	chartOpts chart.Options
	logger    *slog.Logger
	requests  *requestValidator
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithRegistry replaces the graph type registry built from the config.
func WithRegistry(r *validate.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// New creates an Engine. A nil cfg uses the defaults.
func New(cfg *config.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	e := &Engine{
		cfg:       cfg,
		chartOpts: chart.OptionsFromConfig(cfg),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = validate.FromConfig(cfg)
	}
	e.requests = newRequestValidator(e.registry)
	return e
}

// Registry returns the graph types the engine knows about.
func (e *Engine) Registry() *validate.Registry { return e.registry }

// Transform extracts roots from doc, merges them and flattens params into
// rows. It never fails: anything that does not resolve becomes an
// undefined cell.
func (e *Engine) Transform(doc models.Value, roots []models.RootKey, params []string) models.Dataset {
	rows, _ := e.transform(doc, roots, params, path.ResolveString)
	return rows
}

// Validate reports why rows cannot be drawn as graphType, or "".
func (e *Engine) Validate(rows models.Dataset, graphType string, params []string) string {
	return e.registry.Reason(rows, graphType, params)
}

// Run checks the request, transforms doc and validates the rows. When the
// rows are acceptable the result also carries the chart projection. The
// error is only set for malformed requests; a dataset that cannot be drawn
// is reported through Result.Reason.
func (e *Engine) Run(doc models.Value, req Request) (Result, error) {
	return e.run(doc, req, path.ResolveString)
}

func (e *Engine) run(doc models.Value, req Request, resolve extract.Resolver) (Result, error) {
	if err := e.requests.check(req); err != nil {
		return Result{}, err
	}

	rows, roots := e.transform(doc, req.Roots, req.Params, resolve)
	res := Result{
		Name:      req.Name,
		GraphType: req.GraphType,
		Roots:     roots,
		Params:    req.Params,
		Rows:      rows,
		Reason:    e.registry.Reason(rows, req.GraphType, req.Params),
	}
	if res.Reason != "" {
		e.logger.Debug("dataset rejected", "request", req.Name, "graph_type", req.GraphType, "reason", res.Reason)
		return res, nil
	}

	requirement, _ := e.registry.Lookup(req.GraphType)
	projected, err := chart.Project(requirement, rows, req.Params, e.chartOpts)
	if err != nil {
		return res, err
	}
	res.Chart = &projected
	return res, nil
}

func (e *Engine) transform(doc models.Value, roots []models.RootKey, params []string, resolve extract.Resolver) (models.Dataset, []models.RootKey) {
	if len(roots) == 0 && e.cfg.Extraction.ImplicitRoots {
		if root, ok := extract.InferRoot(doc, params); ok {
			e.logger.Debug("inferred implicit root", "path", root.Path)
			roots = []models.RootKey{root}
		}
	}

	ex := extract.ExtractWith(doc, roots, resolve)
	for _, entry := range ex.Entries() {
		if !entry.Found() {
			e.logger.Debug("root did not resolve", "root", entry.Root.Name(), "path", entry.Root.Path)
		}
	}

	records := extract.Merge(ex)
	opts := flatten.Options{
		DescendantSearch: e.cfg.Extraction.DescendantSearch,
		Columnar:         e.cfg.Extraction.Columnar,
	}
	if e.logger.Enabled(context.Background(), slog.LevelDebug) {
		opts.Observer = func(row int, param string, method flatten.Method) {
			e.logger.Debug("resolved cell", "row", row, "param", param, "method", string(method))
		}
	}
	rows := flatten.New(ex.Roots(), opts).Flatten(records, params)

	e.logger.Debug("transformed document", "roots", len(ex.Roots()), "records", len(records), "params", len(params))
	return rows, ex.Roots()
}
