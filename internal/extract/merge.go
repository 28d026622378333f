package extract

import (
	"github.com/mcncl/vizpath/internal/models"
)

// Source is the element one root contributed to a record.
type Source struct {
	Root    models.RootKey
	Element models.Value
}

// Record is a pre-row. Value is what absolute paths resolve against and
// Sources holds the raw element of every root that contributed, in root
// order.
type Record struct {
	Value   models.Value
	Sources []Source
}

// Source returns the element the named root contributed.
func (r Record) Source(name string) (models.Value, bool) {
	for _, s := range r.Sources {
		if s.Root.Name() == name {
			return s.Element, true
		}
	}
	return models.NotFound, false
}

// Merge aligns an extraction into records.
//
// With no roots the document's elements become the records. With one root
// its elements do. With several roots record i holds element i of every root
// that has one, keyed by root name, so the record count is the length of the
// longest root.
func Merge(ex Extraction) []Record {
	if ex.IsIdentity() {
		elems := Elements(ex.doc)
		records := make([]Record, len(elems))
		for i, elem := range elems {
			records[i] = Record{Value: wrap(elem)}
		}
		return records
	}

	if len(ex.entries) == 1 {
		entry := ex.entries[0]
		elems := Elements(entry.Value)
		records := make([]Record, len(elems))
		for i, elem := range elems {
			records[i] = Record{
				Value:   wrap(elem),
				Sources: []Source{{Root: entry.Root, Element: elem}},
			}
		}
		return records
	}

	columns := make([][]models.Value, len(ex.entries))
	length := 0
	for i, entry := range ex.entries {
		columns[i] = Elements(entry.Value)
		length = max(length, len(columns[i]))
	}

	records := make([]Record, length)
	for row := range records {
		obj := models.NewObject(len(ex.entries))
		sources := make([]Source, 0, len(ex.entries))
		for i, entry := range ex.entries {
			if row >= len(columns[i]) {
				continue
			}
			elem := columns[i][row]
			obj.Set(entry.Root.Name(), elem)
			sources = append(sources, Source{Root: entry.Root, Element: elem})
		}
		records[row] = Record{Value: models.ObjectValue(obj), Sources: sources}
	}
	return records
}
