// Package chart shapes validated rows into the series a chart renderer
// consumes.
package chart

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/mcncl/vizpath/internal/analyzer"
	"github.com/mcncl/vizpath/internal/config"
	"github.com/mcncl/vizpath/internal/errors"
	"github.com/mcncl/vizpath/internal/models"
	"github.com/mcncl/vizpath/internal/validate"
)

// Palette is cycled through by index for categories and points.
var Palette = []string{"#0088FE", "#00C49F", "#FFBB28", "#FF8042", "#8884d8", "#82ca9d", "#ff5252", "#43a047"}

// Axis describes one dimension of a chart.
type Axis struct {
	Param  string    `json:"param"`
	Name   string    `json:"name"`
	Domain []float64 `json:"domain,omitempty"`
	Time   bool      `json:"time,omitempty"`
}

// Category is a pie slice or a bar.
type Category struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// Series is one y series of a line chart.
type Series struct {
	Param string `json:"param"`
	Name  string `json:"name"`
}

// LinePoint holds the x value and one y value per series.
type LinePoint struct {
	X      string    `json:"x"`
	Values []float64 `json:"values"`
}

// ScatterPoint is one point of a scatter plot. Z is the point size and is
// only set when a size parameter was given.
type ScatterPoint struct {
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Z     *float64 `json:"z,omitempty"`
	Name  string   `json:"name"`
	Color string   `json:"color"`
}

// Chart is the renderer-facing projection of a dataset.
type Chart struct {
	Type       string         `json:"type"`
	X          *Axis          `json:"x,omitempty"`
	Y          *Axis          `json:"y,omitempty"`
	Size       *Axis          `json:"size,omitempty"`
	Total      float64        `json:"total,omitempty"`
	Categories []Category     `json:"categories,omitempty"`
	Series     []Series       `json:"series,omitempty"`
	Points     []LinePoint    `json:"points,omitempty"`
	Scatter    []ScatterPoint `json:"scatter,omitempty"`
}

// Options controls labels and display names.
type Options struct {
	LabelMaxLength int
	// MaxPoints samples line charts down to about this many points; 0 keeps all.
	MaxPoints int
	Style     string
	Names     map[string]string
}

// DefaultOptions returns the options used when no configuration is given.
func DefaultOptions() Options {
	return Options{LabelMaxLength: 20, Style: StyleRaw}
}

// OptionsFromConfig reads the display section of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		LabelMaxLength: cfg.Display.LabelMaxLength,
		MaxPoints:      cfg.Display.MaxPoints,
		Style:          cfg.Display.Style,
		Names:          cfg.Display.FieldMappings,
	}
}

// Project shapes rows for the graph type described by req. Parameters are
// read by position according to the type's roles. Built-in types have their
// own layouts; registered types are drawn as categories when their first
// role is a label and as lines when it is an x axis.
func Project(req validate.ChartRequirement, rows models.Dataset, params []string, opts Options) (Chart, error) {
	if len(params) < req.MinParams || len(params) == 0 {
		return Chart{}, errors.NewRequestError(
			fmt.Sprintf("%s charts require at least %d parameters", req.Type, max(req.MinParams, 1)), errors.ErrInvalidRequest)
	}

	switch req.Type {
	case "pie":
		return projectCategories(req.Type, rows, params, opts, true), nil
	case "bar":
		return projectCategories(req.Type, rows, params, opts, false), nil
	case "line":
		return projectLine(req.Type, rows, params, opts), nil
	case "scatter":
		return projectScatter(req.Type, rows, params, opts), nil
	}

	switch req.Role(0) {
	case validate.RoleLabel:
		return projectCategories(req.Type, rows, params, opts, false), nil
	case validate.RoleX:
		return projectLine(req.Type, rows, params, opts), nil
	default:
		return Chart{}, errors.NewRequestError(
			fmt.Sprintf("graph type %q has no known layout", req.Type), errors.ErrUnknownGraph)
	}
}

func (o Options) axis(param string) *Axis {
	return &Axis{Param: param, Name: o.displayName(param)}
}

func (o Options) displayName(param string) string {
	if name, ok := o.Names[param]; ok && strings.TrimSpace(name) != "" {
		return name
	}
	return DisplayName(param, o.Style)
}

// projectCategories draws the first parameter as the label and the second
// as the value. Pie charts drop slices without a positive value; bar
// charts get a y domain with headroom.
func projectCategories(graphType string, rows models.Dataset, params []string, opts Options, pie bool) Chart {
	labelParam := params[0]
	valueParam := nth(params, 1)

	c := Chart{Type: graphType, X: opts.axis(labelParam), Categories: make([]Category, 0, len(rows))}
	if valueParam != "" {
		c.Y = opts.axis(valueParam)
	}
	for i, row := range rows {
		label, _ := row.Get(labelParam)
		value, _ := row.Get(valueParam)
		cat := Category{
			Name:  labelText(label, i, opts.LabelMaxLength),
			Value: Number(value),
			Color: Palette[i%len(Palette)],
		}
		if pie && cat.Value <= 0 {
			continue
		}
		c.Categories = append(c.Categories, cat)
	}

	if pie {
		c.Total = lo.SumBy(c.Categories, func(cat Category) float64 { return cat.Value })
		return c
	}
	if len(c.Categories) > 0 && c.Y != nil {
		peak := lo.MaxBy(c.Categories, func(a, b Category) bool { return a.Value > b.Value }).Value
		c.Y.Domain = []float64{0, math.Ceil(peak * 1.1)}
	}
	return c
}

type linePoint struct {
	x      models.Value
	values []float64
}

// projectLine draws the first parameter as x and every other parameter as
// a y series. Points are ordered along x.
func projectLine(graphType string, rows models.Dataset, params []string, opts Options) Chart {
	xParam := params[0]
	yParams := params[1:]

	c := Chart{Type: graphType, X: opts.axis(xParam)}
	for _, p := range yParams {
		c.Series = append(c.Series, Series{Param: p, Name: opts.displayName(p)})
	}

	points := lo.Map(rows, func(row models.Row, _ int) linePoint {
		x, _ := row.Get(xParam)
		return linePoint{
			x: x,
			values: lo.Map(yParams, func(p string, _ int) float64 {
				v, _ := row.Get(p)
				return Number(v)
			}),
		}
	})

	c.X.Time = lo.SomeBy(points, func(p linePoint) bool { return isTimeValue(p.x) })
	sort.SliceStable(points, func(i, j int) bool {
		return lessX(points[i].x, points[j].x, c.X.Time)
	})

	if opts.MaxPoints > 0 && len(points) > opts.MaxPoints {
		step := int(math.Ceil(float64(len(points)) / float64(opts.MaxPoints)))
		points = lo.Filter(points, func(_ linePoint, i int) bool { return i%step == 0 })
	}

	c.Points = lo.Map(points, func(p linePoint, _ int) LinePoint {
		return LinePoint{X: xText(p.x, c.X.Time), Values: p.values}
	})

	all := lo.FlatMap(points, func(p linePoint, _ int) []float64 { return p.values })
	if len(all) > 0 {
		lowest, highest := lo.Min(all), lo.Max(all)
		pad := (highest - lowest) * 0.1
		c.Y = &Axis{Name: "value", Domain: []float64{math.Max(0, lowest-pad), highest + pad}}
		if len(yParams) == 1 {
			c.Y.Param = yParams[0]
			c.Y.Name = opts.displayName(yParams[0])
		}
	}
	return c
}

// projectScatter draws x, y and an optional size parameter.
func projectScatter(graphType string, rows models.Dataset, params []string, opts Options) Chart {
	xParam, yParam := params[0], nth(params, 1)
	sizeParam := nth(params, 2)

	c := Chart{Type: graphType, X: opts.axis(xParam), Y: opts.axis(yParam)}
	if sizeParam != "" {
		c.Size = opts.axis(sizeParam)
	}
	for i, row := range rows {
		x, _ := row.Get(xParam)
		y, _ := row.Get(yParam)
		point := ScatterPoint{
			X:     Number(x),
			Y:     Number(y),
			Name:  pointName(row, i),
			Color: Palette[i%len(Palette)],
		}
		if sizeParam != "" {
			size, _ := row.Get(sizeParam)
			z := Number(size)
			if z == 0 {
				z = 1
			}
			point.Z = &z
		}
		c.Scatter = append(c.Scatter, point)
	}

	if len(c.Scatter) > 0 {
		c.X.Domain = paddedDomain(lo.Map(c.Scatter, func(p ScatterPoint, _ int) float64 { return p.X }))
		c.Y.Domain = paddedDomain(lo.Map(c.Scatter, func(p ScatterPoint, _ int) float64 { return p.Y }))
	}
	return c
}

func nth(params []string, i int) string {
	if i < len(params) {
		return params[i]
	}
	return ""
}

// paddedDomain widens [min, max] by 10% of its span, or by 1 when flat.
func paddedDomain(values []float64) []float64 {
	lowest, highest := lo.Min(values), lo.Max(values)
	pad := (highest - lowest) * 0.1
	if pad == 0 {
		pad = 1
	}
	return []float64{lowest - pad, highest + pad}
}

func pointName(row models.Row, i int) string {
	if name, ok := row.Get("name"); ok && Truthy(name) {
		return name.Text()
	}
	return "Point " + strconv.Itoa(i+1)
}

// labelText truncates string labels and falls back to "Item i" for empty
// ones.
func labelText(v models.Value, i, maxLen int) string {
	if s, ok := v.Str(); ok && s != "" {
		if r := []rune(s); maxLen > 0 && len(r) > maxLen {
			return string(r[:maxLen])
		}
		return s
	}
	if !Truthy(v) {
		return "Item " + strconv.Itoa(i)
	}
	return v.Text()
}

// Number converts v the way a chart reads a numeric cell. Finite numbers and
// numeric strings convert, true is 1, and everything else is 0.
func Number(v models.Value) float64 {
	switch v.Kind() {
	case models.Number:
		n, _ := v.Num()
		f, err := n.Float64()
		if err != nil || !finite(f) {
			return 0
		}
		return f
	case models.String:
		s, _ := v.Str()
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || !finite(f) {
			return 0
		}
		return f
	case models.Bool:
		if b, _ := v.Bool(); b {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Truthy reports whether v counts as set for labels and names.
func Truthy(v models.Value) bool {
	switch v.Kind() {
	case models.Undefined, models.Null:
		return false
	case models.Bool:
		b, _ := v.Bool()
		return b
	case models.Number:
		return Number(v) != 0
	case models.String:
		s, _ := v.Str()
		return s != ""
	default:
		return true
	}
}

func isTimeValue(v models.Value) bool {
	switch v.Kind() {
	case models.String:
		s, _ := v.Str()
		_, ok := analyzer.ParseTime(s)
		return ok
	case models.Number:
		return Number(v) > 1e9
	default:
		return false
	}
}

// timeKey orders values on a time axis: parsed strings by their Unix time
// in seconds, numbers by value.
func timeKey(v models.Value) float64 {
	if s, ok := v.Str(); ok {
		if t, ok := analyzer.ParseTime(s); ok {
			return float64(t.UnixNano()) / float64(time.Second)
		}
		return 0
	}
	return Number(v)
}

func lessX(a, b models.Value, timeAxis bool) bool {
	if timeAxis {
		return timeKey(a) < timeKey(b)
	}
	as, aIsString := a.Str()
	bs, bIsString := b.Str()
	if aIsString && bIsString {
		return as < bs
	}
	return Number(a) < Number(b)
}

func xText(v models.Value, timeAxis bool) string {
	if timeAxis {
		if s, ok := v.Str(); ok {
			if t, ok := analyzer.ParseTime(s); ok {
				return t.UTC().Format(time.RFC3339)
			}
		}
	}
	return v.Text()
}
