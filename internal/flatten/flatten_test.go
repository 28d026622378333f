package flatten

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/vizpath/internal/extract"
	"github.com/mcncl/vizpath/internal/models"
	"github.com/mcncl/vizpath/internal/parser"
)

func mustParse(t *testing.T, jsonInput string) models.Value {
	t.Helper()
	doc, err := parser.ParseString(jsonInput)
	require.NoError(t, err)
	return doc.Root
}

func flattenDoc(t *testing.T, jsonInput string, roots []models.RootKey, params []string) models.Dataset {
	t.Helper()
	records := extract.Merge(extract.ExtractByRoots(mustParse(t, jsonInput), roots))
	return Flatten(records, roots, params)
}

func cell(t *testing.T, row models.Row, key string) string {
	t.Helper()
	v, ok := row.Get(key)
	require.True(t, ok, "column %q must be present", key)
	return v.String()
}

func TestFlatten_RootRelative(t *testing.T) {
	rows := flattenDoc(t,
		`{"items": [{"a": 1, "b": 2}, {"a": 3, "b": 4}]}`,
		[]models.RootKey{{Label: "items", Path: "items"}},
		[]string{"items.a", "items.b"},
	)

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"items.a", "items.b"}, rows[0].Keys())
	assert.Equal(t, "1", cell(t, rows[0], "items.a"))
	assert.Equal(t, "2", cell(t, rows[0], "items.b"))
	assert.Equal(t, "3", cell(t, rows[1], "items.a"))
	assert.Equal(t, "4", cell(t, rows[1], "items.b"))
}

func TestFlatten_ScalarElementsStayUndefined(t *testing.T) {
	rows := flattenDoc(t,
		`{"x": [1, 2, 3]}`,
		[]models.RootKey{{Label: "x", Path: "x"}},
		[]string{"x.value", "x"},
	)

	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, "undefined", cell(t, row, "x.value"), "row %d", i)
	}
	assert.Equal(t, "2", cell(t, rows[1], "x"), "the root itself resolves to its element")
}

func TestFlatten_ShorterRootIsUndefined(t *testing.T) {
	rows := flattenDoc(t,
		`{
			"a": [{"v": 1}, {"v": 2}, {"v": 3}],
			"b": [{"v": 10}, {"v": 20}, {"v": 30}, {"v": 40}, {"v": 50}]
		}`,
		[]models.RootKey{{Label: "a", Path: "a"}, {Label: "b", Path: "b"}},
		[]string{"a.v", "b.v"},
	)

	require.Len(t, rows, 5)
	for i := 0; i < 3; i++ {
		assert.NotEqual(t, "undefined", cell(t, rows[i], "a.v"))
		assert.NotEqual(t, "undefined", cell(t, rows[i], "b.v"))
	}
	for i := 3; i < 5; i++ {
		assert.Equal(t, "undefined", cell(t, rows[i], "a.v"), "row %d", i)
		assert.NotEqual(t, "undefined", cell(t, rows[i], "b.v"), "row %d", i)
	}
	assert.Equal(t, "50", cell(t, rows[4], "b.v"))
}

func TestFlatten_ColumnKeysAreFullPaths(t *testing.T) {
	rows := flattenDoc(t,
		`{"a": [{"value": 1}], "b": [{"value": 2}]}`,
		[]models.RootKey{{Label: "a", Path: "a"}, {Label: "b", Path: "b"}},
		[]string{"a.value", "b.value"},
	)

	require.Len(t, rows, 1)
	assert.Equal(t, []string{"a.value", "b.value"}, rows[0].Keys())
	assert.Equal(t, "1", cell(t, rows[0], "a.value"))
	assert.Equal(t, "2", cell(t, rows[0], "b.value"))
}

func TestFlatten_AbsoluteWithoutRoots(t *testing.T) {
	rows := flattenDoc(t,
		`[{"name": "x", "stats": {"n": 1}}, {"name": "y", "stats": {"n": 2}}]`,
		nil,
		[]string{"name", "stats.n"},
	)

	require.Len(t, rows, 2)
	assert.Equal(t, `"y"`, cell(t, rows[1], "name"))
	assert.Equal(t, "2", cell(t, rows[1], "stats.n"))
}

func TestFlatten_DescendantSearch(t *testing.T) {
	doc := `[{"meta": {"detail": {"score": 5}}, "score_card": {"score": 9}}]`

	rows := flattenDoc(t, doc, nil, []string{"stats.score"})
	require.Len(t, rows, 1)
	assert.Equal(t, "5", cell(t, rows[0], "stats.score"), "first match in pre-order")

	records := extract.Merge(extract.ExtractByRoots(mustParse(t, doc), nil))
	rows = New(nil, Options{DescendantSearch: false}).Flatten(records, []string{"stats.score"})
	assert.Equal(t, "undefined", cell(t, rows[0], "stats.score"))
}

func TestFlatten_DescendantSearchScopedToRoot(t *testing.T) {
	rows := flattenDoc(t,
		`{"a": [{"inner": {"deep": 1}}, {}], "b": [{"deep": 2}, {"deep": 3}]}`,
		[]models.RootKey{{Label: "a", Path: "a"}, {Label: "b", Path: "b"}},
		[]string{"a.x.deep"},
	)

	require.Len(t, rows, 2)
	assert.Equal(t, "1", cell(t, rows[0], "a.x.deep"))
	assert.Equal(t, "undefined", cell(t, rows[1], "a.x.deep"), "b's deep must not leak into a's column")
}

func TestFlatten_LabelAndPathBothBind(t *testing.T) {
	rows := flattenDoc(t,
		`{"features": [{"mag": 4.5}, {"mag": 2.1}]}`,
		[]models.RootKey{{Label: "quakes", Path: "features"}},
		[]string{"quakes.mag", "features.mag"},
	)

	require.Len(t, rows, 2)
	assert.Equal(t, "2.1", cell(t, rows[1], "quakes.mag"))
	assert.Equal(t, "2.1", cell(t, rows[1], "features.mag"))
}

func TestFlatten_LongestRootPrefixWins(t *testing.T) {
	rows := flattenDoc(t,
		`{"data": {"title": "t", "series": [{"v": 1}, {"v": 2}]}}`,
		[]models.RootKey{{Label: "data", Path: "data"}, {Label: "series", Path: "data.series"}},
		[]string{"data.series.v", "data.title"},
	)

	require.Len(t, rows, 2)
	assert.Equal(t, "1", cell(t, rows[0], "data.series.v"))
	assert.Equal(t, "2", cell(t, rows[1], "data.series.v"))
	assert.Equal(t, `"t"`, cell(t, rows[0], "data.title"))
	assert.Equal(t, "undefined", cell(t, rows[1], "data.title"), "data has a single element")
}

func TestFlatten_JSONPathParameter(t *testing.T) {
	rows := flattenDoc(t,
		`[{"a": {"b": 1}}, {"a": {"c": 2}}]`,
		nil,
		[]string{"$.a.b"},
	)

	require.Len(t, rows, 2)
	assert.Equal(t, "1", cell(t, rows[0], "$.a.b"))
	assert.Equal(t, "undefined", cell(t, rows[1], "$.a.b"))
}

func TestFlatten_MalformedParameter(t *testing.T) {
	rows := flattenDoc(t, `[{"a": {"a": 1}}]`, nil, []string{"a..a", "a[", "a"})

	require.Len(t, rows, 1)
	assert.Equal(t, "undefined", cell(t, rows[0], "a..a"))
	assert.Equal(t, "undefined", cell(t, rows[0], "a["))
	assert.Equal(t, `{"a":1}`, cell(t, rows[0], "a"))
}

func TestFlatten_Observer(t *testing.T) {
	doc := mustParse(t, `{
		"a": [{"x": 1, "n": {"deep": 7}}],
		"b": [{"y": 2}, {"y": 3}]
	}`)
	roots := []models.RootKey{{Label: "a", Path: "a"}, {Label: "b", Path: "b"}}
	records := extract.Merge(extract.ExtractByRoots(doc, roots))

	type call struct {
		row    int
		param  string
		method Method
	}
	var calls []call
	f := New(roots, Options{
		DescendantSearch: true,
		Observer: func(row int, param string, method Method) {
			calls = append(calls, call{row, param, method})
		},
	})
	f.Flatten(records, []string{"a.x", "a.q.deep", "$.b.y", "c.z"})

	assert.Equal(t, []call{
		{0, "a.x", MethodRelative},
		{0, "a.q.deep", MethodDescendant},
		{0, "$.b.y", MethodJSONPath},
		{0, "c.z", MethodMissing},
		{1, "a.x", MethodMissing},
		{1, "a.q.deep", MethodMissing},
		{1, "$.b.y", MethodJSONPath},
		{1, "c.z", MethodMissing},
	}, calls)
}

func TestFlatten_Idempotent(t *testing.T) {
	doc := `{"a": [{"x": 1}, {"x": 2}], "b": [{"y": 3}]}`
	roots := []models.RootKey{{Label: "a", Path: "a"}, {Label: "b", Path: "b"}}
	params := []string{"a.x", "b.y"}

	first, err := json.Marshal(flattenDoc(t, doc, roots, params))
	require.NoError(t, err)
	second, err := json.Marshal(flattenDoc(t, doc, roots, params))
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
	assert.JSONEq(t, `[{"a.x":1,"b.y":3},{"a.x":2,"b.y":null}]`, string(first))
}

func TestFlatten_Columnar(t *testing.T) {
	doc := mustParse(t, `{"hourly": {"time": ["t0", "t1", "t2"], "temp": [1.5, 2.5], "unit": "C"}}`)
	roots := []models.RootKey{{Label: "hourly", Path: "hourly"}}
	records := extract.Merge(extract.ExtractByRoots(doc, roots))

	rows := Flatten(records, roots, []string{"hourly.time", "hourly.temp"})
	require.Len(t, rows, 1, "an object root is one row by default")
	assert.Equal(t, "[1.5,2.5]", cell(t, rows[0], "hourly.temp"))

	var methods []Method
	columnar := New(roots, Options{Columnar: true, Observer: func(_ int, _ string, m Method) {
		methods = append(methods, m)
	}})
	rows = columnar.Flatten(records, []string{"hourly.time", "hourly.temp"})
	require.Len(t, rows, 3, "the longest array sets the row count")
	assert.Equal(t, `"t0"`, cell(t, rows[0], "hourly.time"))
	assert.Equal(t, "1.5", cell(t, rows[0], "hourly.temp"))
	assert.Equal(t, "2.5", cell(t, rows[1], "hourly.temp"))
	assert.Equal(t, "undefined", cell(t, rows[2], "hourly.temp"))
	assert.Len(t, methods, 6)
	assert.Equal(t, MethodMissing, methods[5])

	rows = columnar.Flatten(records, []string{"hourly.time", "hourly.unit"})
	require.Len(t, rows, 1, "a scalar parameter keeps the record whole")
	assert.Equal(t, `"C"`, cell(t, rows[0], "hourly.unit"))
}
