package models

import (
	"bytes"
	"encoding/json"
)

// RootKey anchors extraction at a subtree of the document.
type RootKey struct {
	Label string `yaml:"label" json:"label"`
	Path  string `yaml:"path" json:"path" validate:"required"`
}

// RootLabel is the reserved root that addresses the whole document when it
// is an array.
const RootLabel = "root"

// Name is the label used to key this root in merged records. It falls back
// to the path when no label was given.
func (r RootKey) Name() string {
	if r.Label != "" {
		return r.Label
	}
	return r.Path
}

// Row is one flat record of a dataset. Columns keep the order they were set
// in, and a column may be present with an Undefined value.
type Row struct {
	keys  []string
	cells map[string]Value
}

// NewRow returns an empty row with room for n columns.
func NewRow(n int) Row {
	return Row{
		keys:  make([]string, 0, n),
		cells: make(map[string]Value, n),
	}
}

// Set assigns a column. Setting an existing column replaces its value and
// keeps its position.
func (r *Row) Set(key string, v Value) {
	if r.cells == nil {
		r.cells = make(map[string]Value)
	}
	if _, ok := r.cells[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.cells[key] = v
}

// Get returns the value of a column and whether the column is present.
// A present column may hold Undefined.
func (r Row) Get(key string) (Value, bool) {
	v, ok := r.cells[key]
	return v, ok
}

// Has reports whether the column is present.
func (r Row) Has(key string) bool {
	_, ok := r.cells[key]
	return ok
}

// Keys returns the column keys in order.
func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len is the number of columns.
func (r Row) Len() int { return len(r.keys) }

// MarshalJSON writes the row as an object in column order. Undefined cells
// are written as null so every row keeps its full column set.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		if err := r.cells[key].encode(&buf); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Dataset is the ordered rows produced for one chart.
type Dataset []Row

// Columns returns the union of column keys across all rows, in first-seen
// order.
func (d Dataset) Columns() []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, row := range d {
		for _, key := range row.keys {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			cols = append(cols, key)
		}
	}
	return cols
}
