// Package flatten turns pre-rows into flat rows with one column per
// parameter path.
package flatten

import (
	"github.com/mcncl/vizpath/internal/extract"
	"github.com/mcncl/vizpath/internal/models"
	"github.com/mcncl/vizpath/internal/path"
)

// Method names how a cell was resolved.
type Method string

const (
	MethodRelative   Method = "relative"
	MethodAbsolute   Method = "absolute"
	MethodDescendant Method = "descendant"
	MethodJSONPath   Method = "jsonpath"
	MethodMissing    Method = "missing"
)

// Observer is told how every cell was resolved.
type Observer func(row int, param string, method Method)

// Options controls resolution.
type Options struct {
	// DescendantSearch enables the by-name fallback.
	DescendantSearch bool
	// Columnar expands a record whose every parameter resolves to an array
	// into one row per index, up to the longest array.
	Columnar bool
	Observer Observer
}

// DefaultOptions has descendant search enabled.
func DefaultOptions() Options {
	return Options{DescendantSearch: true}
}

// Flattener resolves parameters against records taken from a fixed set of
// roots.
type Flattener struct {
	roots []boundRoot
	opts  Options
}

// boundRoot is a root with the segment forms a parameter may start with.
type boundRoot struct {
	key      models.RootKey
	prefixes [][]path.Segment
}

// New returns a Flattener for records merged from roots.
func New(roots []models.RootKey, opts Options) *Flattener {
	f := &Flattener{opts: opts}
	for _, root := range roots {
		b := boundRoot{key: root}
		b.prefixes = appendPrefix(b.prefixes, root.Path)
		if root.Label != "" && root.Label != root.Path {
			b.prefixes = appendPrefix(b.prefixes, root.Label)
		}
		f.roots = append(f.roots, b)
	}
	return f
}

// Flatten resolves every parameter for every record with default options.
func Flatten(records []extract.Record, roots []models.RootKey, params []string) models.Dataset {
	return New(roots, DefaultOptions()).Flatten(records, params)
}

// Flatten builds one row per record, or one row per index for records
// expanded in columnar mode. Each row has a column for every parameter,
// keyed by the parameter text exactly as given, whether or not it resolved.
func (f *Flattener) Flatten(records []extract.Record, params []string) models.Dataset {
	parsed := make([]path.Path, len(params))
	for i, param := range params {
		parsed[i] = path.Parse(param)
	}

	rows := make(models.Dataset, 0, len(records))
	cells := make([]models.Value, len(params))
	methods := make([]Method, len(params))
	for _, rec := range records {
		for j := range params {
			cells[j], methods[j] = f.cell(rec, parsed[j])
		}
		if f.opts.Columnar && allArrays(cells) {
			rows = f.expand(rows, params, cells, methods)
			continue
		}
		row := models.NewRow(len(params))
		for j, param := range params {
			f.observe(len(rows), param, methods[j])
			row.Set(param, cells[j])
		}
		rows = append(rows, row)
	}
	return rows
}

// expand zips array cells by index. Shorter arrays leave their column
// undefined once they run out.
func (f *Flattener) expand(rows models.Dataset, params []string, cells []models.Value, methods []Method) models.Dataset {
	length := 0
	for _, c := range cells {
		length = max(length, len(c.Array()))
	}
	for i := 0; i < length; i++ {
		row := models.NewRow(len(params))
		for j, param := range params {
			v, method := models.NotFound, MethodMissing
			if arr := cells[j].Array(); i < len(arr) {
				v, method = arr[i], methods[j]
			}
			f.observe(len(rows), param, method)
			row.Set(param, v)
		}
		rows = append(rows, row)
	}
	return rows
}

func (f *Flattener) observe(row int, param string, method Method) {
	if f.opts.Observer != nil {
		f.opts.Observer(row, param, method)
	}
}

func allArrays(cells []models.Value) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if c.Kind() != models.Array {
			return false
		}
	}
	return true
}

func (f *Flattener) cell(rec extract.Record, p path.Path) (models.Value, Method) {
	if !p.Valid() {
		return models.NotFound, MethodMissing
	}
	if p.IsJSONPath() {
		if v, ok := path.Resolve(rec.Value, p); ok {
			return v, MethodJSONPath
		}
		return models.NotFound, MethodMissing
	}

	if root, rel, bound := f.bind(p); bound {
		elem, contributed := rec.Source(root.Name())
		if !contributed {
			// The root ran out of elements. Anything found elsewhere in
			// the record would belong to another root.
			return models.NotFound, MethodMissing
		}
		if v, ok := path.Resolve(elem, rel); ok {
			return v, MethodRelative
		}
		if v, ok := path.Resolve(rec.Value, p); ok {
			return v, MethodAbsolute
		}
		return f.descend(elem, p)
	}

	if v, ok := path.Resolve(rec.Value, p); ok {
		return v, MethodAbsolute
	}
	return f.descend(rec.Value, p)
}

func (f *Flattener) descend(v models.Value, p path.Path) (models.Value, Method) {
	if !f.opts.DescendantSearch {
		return models.NotFound, MethodMissing
	}
	terminal, ok := p.Terminal()
	if !ok || terminal.IsIndex {
		return models.NotFound, MethodMissing
	}
	if found, ok := path.FindKey(v, terminal.Key); ok {
		return found, MethodDescendant
	}
	return models.NotFound, MethodMissing
}

// bind finds the root whose label or path is the longest segment prefix of
// p and returns p relative to it.
func (f *Flattener) bind(p path.Path) (models.RootKey, path.Path, bool) {
	segments := p.Segments()
	best := -1
	var key models.RootKey
	for _, root := range f.roots {
		for _, prefix := range root.prefixes {
			if len(prefix) > best && hasPrefix(segments, prefix) {
				best = len(prefix)
				key = root.key
			}
		}
	}
	if best < 0 {
		return models.RootKey{}, path.Path{}, false
	}
	return key, path.FromSegments(segments[best:]), true
}

func appendPrefix(prefixes [][]path.Segment, text string) [][]path.Segment {
	p := path.Parse(text)
	if !p.Valid() || p.IsJSONPath() {
		return prefixes
	}
	return append(prefixes, p.Segments())
}

func hasPrefix(segments, prefix []path.Segment) bool {
	if len(prefix) > len(segments) {
		return false
	}
	for i, seg := range prefix {
		if seg.Key != segments[i].Key || seg.IsIndex != segments[i].IsIndex {
			return false
		}
	}
	return true
}
