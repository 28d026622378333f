// Package validate checks datasets against the structural requirements of
// chart types.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/mcncl/vizpath/internal/config"
	"github.com/mcncl/vizpath/internal/errors"
	"github.com/mcncl/vizpath/internal/models"
)

// Roles a parameter can play.
const (
	RoleLabel = "label"
	RoleValue = "value"
	RoleX     = "x"
	RoleY     = "y"
	RoleSize  = "size"
)

// Failure reasons.
const (
	ReasonNoData   = "No data available for visualization"
	ReasonNoParams = "No parameters selected for visualization"
)

// ChartRequirement describes what a graph type needs from its parameters.
// Roles name parameters by position. When Variadic is set the last role
// repeats for every parameter beyond the named ones.
type ChartRequirement struct {
	Type      string
	MinParams int
	Roles     []string
	Variadic  bool
}

// Role returns the role of the parameter at position i.
func (c ChartRequirement) Role(i int) string {
	switch {
	case i < 0 || len(c.Roles) == 0:
		return ""
	case i < len(c.Roles):
		return c.Roles[i]
	case c.Variadic:
		return c.Roles[len(c.Roles)-1]
	default:
		return ""
	}
}

// Defaults returns the built-in graph types.
func Defaults() []ChartRequirement {
	return []ChartRequirement{
		{Type: "pie", MinParams: 2, Roles: []string{RoleLabel, RoleValue}},
		{Type: "bar", MinParams: 2, Roles: []string{RoleLabel, RoleValue}},
		{Type: "line", MinParams: 2, Roles: []string{RoleX, RoleY}, Variadic: true},
		{Type: "scatter", MinParams: 2, Roles: []string{RoleX, RoleY, RoleSize}},
	}
}

// Registry maps graph types to their requirements.
type Registry struct {
	requirements map[string]ChartRequirement
}

// NewRegistry returns a registry holding the built-in graph types.
func NewRegistry() *Registry {
	r := &Registry{requirements: make(map[string]ChartRequirement)}
	for _, req := range Defaults() {
		r.Register(req)
	}
	return r
}

// FromConfig returns the built-in registry extended with the charts
// declared in cfg. A declared chart replaces a built-in of the same type.
func FromConfig(cfg *config.Config) *Registry {
	r := NewRegistry()
	for _, c := range cfg.Charts {
		r.Register(ChartRequirement{
			Type:      c.Type,
			MinParams: c.MinParams,
			Roles:     c.Roles,
			Variadic:  c.Variadic,
		})
	}
	return r
}

// Register adds or replaces a graph type.
func (r *Registry) Register(req ChartRequirement) {
	req.Type = normalize(req.Type)
	r.requirements[req.Type] = req
}

// Lookup returns the requirement for a graph type.
func (r *Registry) Lookup(graphType string) (ChartRequirement, bool) {
	req, ok := r.requirements[normalize(graphType)]
	return req, ok
}

// Known reports whether graphType is registered.
func (r *Registry) Known(graphType string) bool {
	_, ok := r.Lookup(graphType)
	return ok
}

// Types returns the registered graph types in sorted order.
func (r *Registry) Types() []string {
	types := lo.Keys(r.requirements)
	sort.Strings(types)
	return types
}

// Reason returns why rows cannot be rendered as graphType, or "" when they
// can. Checks run in order, and the first failing one is reported: rows
// present, parameters present, the graph type's minimum parameter count,
// then a column for every parameter in the first row. A column that is
// present with an undefined value passes. Unregistered graph types skip
// the minimum check.
func (r *Registry) Reason(rows models.Dataset, graphType string, params []string) string {
	if len(rows) == 0 {
		return ReasonNoData
	}
	if len(params) == 0 {
		return ReasonNoParams
	}
	if req, ok := r.Lookup(graphType); ok && len(params) < req.MinParams {
		return fmt.Sprintf("%s charts require at least %d parameters", graphType, req.MinParams)
	}

	first := rows[0]
	missing := lo.Uniq(lo.Reject(params, func(param string, _ int) bool {
		return first.Has(param)
	}))
	if len(missing) > 0 {
		return "Missing parameters in data: " + strings.Join(missing, ", ")
	}
	return ""
}

// Validate is Reason as an error.
func (r *Registry) Validate(rows models.Dataset, graphType string, params []string) error {
	if reason := r.Reason(rows, graphType, params); reason != "" {
		return errors.NewValidationError(reason, errors.ErrInvalidDataset)
	}
	return nil
}

var defaultRegistry = NewRegistry()

// Reason checks rows against the built-in graph types.
func Reason(rows models.Dataset, graphType string, params []string) string {
	return defaultRegistry.Reason(rows, graphType, params)
}

// Validate checks rows against the built-in graph types.
func Validate(rows models.Dataset, graphType string, params []string) error {
	return defaultRegistry.Validate(rows, graphType, params)
}

// Known reports whether graphType is a built-in graph type.
func Known(graphType string) bool {
	return defaultRegistry.Known(graphType)
}

func normalize(graphType string) string {
	return strings.ToLower(strings.TrimSpace(graphType))
}
