package chart

import (
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/vizpath/internal/errors"
	"github.com/mcncl/vizpath/internal/models"
	"github.com/mcncl/vizpath/internal/validate"
)

// row builds a row from alternating column keys and values.
func row(kv ...any) models.Row {
	r := models.NewRow(len(kv) / 2)
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i].(string), models.FromAny(kv[i+1]))
	}
	return r
}

func requirement(t *testing.T, graphType string) validate.ChartRequirement {
	t.Helper()
	req, ok := validate.NewRegistry().Lookup(graphType)
	require.True(t, ok)
	return req
}

func categoryRows() models.Dataset {
	return models.Dataset{
		row("items.name", "Alpha", "items.count", 10),
		row("items.name", "", "items.count", 5),
		row("items.name", nil, "items.count", "3"),
		row("items.name", "X", "items.count", 0),
		row("items.name", "A very long label exceeding twenty", "items.count", -1),
	}
}

func TestProject_Pie(t *testing.T) {
	c, err := Project(requirement(t, "pie"), categoryRows(), []string{"items.name", "items.count"}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "pie", c.Type)
	assert.Equal(t, []Category{
		{Name: "Alpha", Value: 10, Color: Palette[0]},
		{Name: "Item 1", Value: 5, Color: Palette[1]},
		{Name: "Item 2", Value: 3, Color: Palette[2]},
	}, c.Categories, "slices without a positive value are dropped")
	assert.Equal(t, 18.0, c.Total)
	assert.Equal(t, "name", c.X.Name)
	assert.Equal(t, "count", c.Y.Name)
}

func TestProject_Bar(t *testing.T) {
	c, err := Project(requirement(t, "bar"), categoryRows(), []string{"items.name", "items.count"}, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, c.Categories, 5)
	assert.Equal(t, "X", c.Categories[3].Name)
	assert.Equal(t, 0.0, c.Categories[3].Value)
	assert.Equal(t, "A very long label ex", c.Categories[4].Name)
	assert.Equal(t, -1.0, c.Categories[4].Value)

	require.Len(t, c.Y.Domain, 2)
	assert.Equal(t, 0.0, c.Y.Domain[0])
	assert.GreaterOrEqual(t, c.Y.Domain[1], 11.0)
	assert.LessOrEqual(t, c.Y.Domain[1], 12.0)
}

func TestProject_NonFiniteStrings(t *testing.T) {
	rows := models.Dataset{
		row("l", "a", "v", "Infinity"),
		row("l", "b", "v", "+inf"),
		row("l", "c", "v", 4),
	}
	c, err := Project(requirement(t, "bar"), rows, []string{"l", "v"}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 0.0, c.Categories[0].Value)
	assert.Equal(t, []float64{0, 5}, c.Y.Domain)

	_, err = json.Marshal(c)
	require.NoError(t, err)
}

func TestProject_LabelLength(t *testing.T) {
	opts := DefaultOptions()
	opts.LabelMaxLength = 5
	c, err := Project(requirement(t, "bar"), categoryRows(), []string{"items.name", "items.count"}, opts)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", c.Categories[0].Name)
	assert.Equal(t, "A ver", c.Categories[4].Name)

	opts.LabelMaxLength = 0
	c, err = Project(requirement(t, "bar"), categoryRows(), []string{"items.name", "items.count"}, opts)
	require.NoError(t, err)
	assert.Equal(t, "A very long label exceeding twenty", c.Categories[4].Name, "0 disables truncation")
}

func TestProject_LineTimeAxis(t *testing.T) {
	rows := models.Dataset{
		row("date", "2024-01-03", "metrics.cpu", 3, "metrics.mem", "30"),
		row("date", "2024-01-01", "metrics.cpu", 1, "metrics.mem", nil),
		row("date", "2024-01-02", "metrics.cpu", 2, "metrics.mem", 20),
	}

	c, err := Project(requirement(t, "line"), rows, []string{"date", "metrics.cpu", "metrics.mem"}, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, c.X.Time)
	assert.Equal(t, []Series{{Param: "metrics.cpu", Name: "cpu"}, {Param: "metrics.mem", Name: "mem"}}, c.Series)
	assert.Equal(t, []LinePoint{
		{X: "2024-01-01T00:00:00Z", Values: []float64{1, 0}},
		{X: "2024-01-02T00:00:00Z", Values: []float64{2, 20}},
		{X: "2024-01-03T00:00:00Z", Values: []float64{3, 30}},
	}, c.Points)

	require.NotNil(t, c.Y)
	assert.Equal(t, "value", c.Y.Name)
	assert.InDelta(t, 0, c.Y.Domain[0], 1e-9)
	assert.InDelta(t, 33, c.Y.Domain[1], 1e-9)
}

func TestProject_LineOrdering(t *testing.T) {
	tests := []struct {
		name     string
		xs       []any
		expected []string
		time     bool
	}{
		{name: "numbers", xs: []any{3, 1, 2}, expected: []string{"1", "2", "3"}},
		{name: "strings", xs: []any{"b", "a", "c"}, expected: []string{"a", "b", "c"}},
		{name: "unix seconds", xs: []any{1700000200, 1700000000, 1700000100}, expected: []string{"1700000000", "1700000100", "1700000200"}, time: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rows models.Dataset
			for _, x := range tt.xs {
				rows = append(rows, row("x", x, "y", 1))
			}
			c, err := Project(requirement(t, "line"), rows, []string{"x", "y"}, DefaultOptions())
			require.NoError(t, err)

			got := make([]string, len(c.Points))
			for i, p := range c.Points {
				got[i] = p.X
			}
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.time, c.X.Time)
			assert.Equal(t, "y", c.Y.Param, "a single series names the y axis")
		})
	}
}

func TestProject_LineSampling(t *testing.T) {
	var rows models.Dataset
	for i := 0; i < 10; i++ {
		rows = append(rows, row("x", i, "y", i*10))
	}

	opts := DefaultOptions()
	opts.MaxPoints = 4
	c, err := Project(requirement(t, "line"), rows, []string{"x", "y"}, opts)
	require.NoError(t, err)

	require.Len(t, c.Points, 4)
	assert.Equal(t, []string{"0", "3", "6", "9"}, []string{c.Points[0].X, c.Points[1].X, c.Points[2].X, c.Points[3].X})
}

func TestProject_Scatter(t *testing.T) {
	rows := models.Dataset{
		row("p.x", 1, "p.y", 2, "p.size", 5, "name", "A"),
		row("p.x", 3, "p.y", "4", "p.size", 0, "name", ""),
	}

	c, err := Project(requirement(t, "scatter"), rows, []string{"p.x", "p.y", "p.size", "name"}, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, c.Scatter, 2)
	assert.Equal(t, "A", c.Scatter[0].Name)
	assert.Equal(t, "Point 2", c.Scatter[1].Name)
	require.NotNil(t, c.Scatter[0].Z)
	assert.Equal(t, 5.0, *c.Scatter[0].Z)
	require.NotNil(t, c.Scatter[1].Z)
	assert.Equal(t, 1.0, *c.Scatter[1].Z, "a zero size falls back to 1")
	assert.Equal(t, 4.0, c.Scatter[1].Y)

	assert.InDelta(t, 0.8, c.X.Domain[0], 1e-9)
	assert.InDelta(t, 3.2, c.X.Domain[1], 1e-9)
	assert.Equal(t, "size", c.Size.Name)
}

func TestProject_ScatterFlatDomain(t *testing.T) {
	rows := models.Dataset{
		row("x", 5, "y", 1),
		row("x", 5, "y", 2),
	}

	c, err := Project(requirement(t, "scatter"), rows, []string{"x", "y"}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []float64{4, 6}, c.X.Domain)
	assert.Nil(t, c.Scatter[0].Z)
	assert.Nil(t, c.Size)
}

func TestProject_RegisteredTypes(t *testing.T) {
	rows := models.Dataset{row("t", 2, "v", 1), row("t", 1, "v", 2)}

	area := validate.ChartRequirement{Type: "area", MinParams: 2, Roles: []string{"x", "y"}, Variadic: true}
	c, err := Project(area, rows, []string{"t", "v"}, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "area", c.Type)
	assert.Equal(t, "1", c.Points[0].X)

	donut := validate.ChartRequirement{Type: "donut", MinParams: 2, Roles: []string{"label", "value"}}
	c, err = Project(donut, rows, []string{"t", "v"}, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, c.Categories, 2)

	radar := validate.ChartRequirement{Type: "radar", MinParams: 1, Roles: []string{"axis"}}
	_, err = Project(radar, rows, []string{"t"}, DefaultOptions())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrUnknownGraph))
}

func TestProject_TooFewParameters(t *testing.T) {
	_, err := Project(requirement(t, "pie"), categoryRows(), []string{"items.name"}, DefaultOptions())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidRequest))
	assert.Contains(t, err.Error(), "pie charts require at least 2 parameters")
}

func TestDisplayNames(t *testing.T) {
	tests := []struct {
		param    string
		style    string
		expected string
	}{
		{"data.temp_c", StyleRaw, "temp_c"},
		{"data.temp_c", StyleCamel, "TempC"},
		{"data.temp_c", StyleLowerCamel, "tempC"},
		{"data.cpuLoad", StyleSnake, "cpu_load"},
		{"data.temp_c", StyleKebab, "temp-c"},
		{"data.temp_c", StyleWords, "temp c"},
		{"metrics['cpu.load']", StyleRaw, "cpu.load"},
		{"$.a[*].b", StyleCamel, "$.a[*].b"},
		{"a..b", StyleRaw, "a..b"},
	}

	for _, tt := range tests {
		t.Run(tt.param+"/"+tt.style, func(t *testing.T) {
			assert.Equal(t, tt.expected, DisplayName(tt.param, tt.style))
		})
	}

	opts := DefaultOptions()
	opts.Names = map[string]string{"data.temp_c": "Temperature"}
	assert.Equal(t, "Temperature", opts.displayName("data.temp_c"))
	assert.Equal(t, "humidity", opts.displayName("data.humidity"))
}

func TestNumberAndTruthy(t *testing.T) {
	tests := []struct {
		name   string
		value  models.Value
		number float64
		truthy bool
	}{
		{name: "undefined", value: models.NotFound, number: 0, truthy: false},
		{name: "null", value: models.NullValue(), number: 0, truthy: false},
		{name: "true", value: models.BoolValue(true), number: 1, truthy: true},
		{name: "false", value: models.BoolValue(false), number: 0, truthy: false},
		{name: "number", value: models.NumberValue("2.5"), number: 2.5, truthy: true},
		{name: "zero", value: models.NumberValue("0"), number: 0, truthy: false},
		{name: "numeric string", value: models.StringValue(" 42 "), number: 42, truthy: true},
		{name: "text", value: models.StringValue("abc"), number: 0, truthy: true},
		{name: "empty string", value: models.StringValue(""), number: 0, truthy: false},
		{name: "object", value: models.ObjectValue(models.NewObject(0)), number: 0, truthy: true},
		{name: "infinity string", value: models.StringValue("Infinity"), number: 0, truthy: true},
		{name: "negative inf string", value: models.StringValue("-inf"), number: 0, truthy: true},
		{name: "nan string", value: models.StringValue("NaN"), number: 0, truthy: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.number, Number(tt.value))
			assert.Equal(t, tt.truthy, Truthy(tt.value))
		})
	}
}
