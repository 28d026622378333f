// Package extract slices a document into the subtrees anchored at root keys
// and aligns those subtrees into pre-rows.
package extract

import (
	"github.com/mcncl/vizpath/internal/models"
	"github.com/mcncl/vizpath/internal/path"
)

// Resolver resolves a root path against a document.
type Resolver func(doc models.Value, p string) (models.Value, bool)

// Entry is the value one root resolved to. Value is Undefined when the
// root's path did not resolve.
type Entry struct {
	Root  models.RootKey
	Value models.Value
}

// Found reports whether the root's path resolved.
func (e Entry) Found() bool { return e.Value.IsDefined() }

// Extraction holds per-root values in caller order. With no roots it is
// the identity and stands for the whole document.
type Extraction struct {
	doc     models.Value
	entries []Entry
}

// ExtractByRoots resolves every root against doc. A root that does not
// resolve gets an Undefined entry and never affects the others. When two
// roots share a name the first one wins.
func ExtractByRoots(doc models.Value, roots []models.RootKey) Extraction {
	return ExtractWith(doc, roots, path.ResolveString)
}

// ExtractWith is ExtractByRoots with a custom resolver.
func ExtractWith(doc models.Value, roots []models.RootKey, resolve Resolver) Extraction {
	ex := Extraction{doc: doc, entries: make([]Entry, 0, len(roots))}
	seen := make(map[string]bool, len(roots))
	for _, root := range roots {
		name := root.Name()
		if seen[name] {
			continue
		}
		seen[name] = true

		v, ok := resolve(doc, root.Path)
		if !ok {
			v = models.NotFound
		}
		ex.entries = append(ex.entries, Entry{Root: root, Value: v})
	}
	return ex
}

// Document returns the document the extraction was taken from.
func (e Extraction) Document() models.Value { return e.doc }

// IsIdentity reports whether no roots were given.
func (e Extraction) IsIdentity() bool { return len(e.entries) == 0 }

// Entries returns the per-root values in root order.
func (e Extraction) Entries() []Entry {
	out := make([]Entry, len(e.entries))
	copy(out, e.entries)
	return out
}

// Roots returns the roots in the order they were extracted.
func (e Extraction) Roots() []models.RootKey {
	out := make([]models.RootKey, len(e.entries))
	for i, entry := range e.entries {
		out[i] = entry.Root
	}
	return out
}

// Get returns the value extracted for the root with the given name.
func (e Extraction) Get(name string) (models.Value, bool) {
	for _, entry := range e.entries {
		if entry.Root.Name() == name {
			return entry.Value, entry.Found()
		}
	}
	return models.NotFound, false
}

// Elements reduces an extracted value to the elements it contributes:
// an array contributes each element, any other value contributes itself,
// and Undefined or null contribute nothing.
func Elements(v models.Value) []models.Value {
	switch v.Kind() {
	case models.Undefined, models.Null:
		return nil
	case models.Array:
		return v.Array()
	default:
		return []models.Value{v}
	}
}

// ValueKey is the member that holds a non-object element in its pre-row.
const ValueKey = "value"

func wrap(elem models.Value) models.Value {
	if elem.Kind() == models.Object {
		return elem
	}
	obj := models.NewObject(1)
	obj.Set(ValueKey, elem)
	return models.ObjectValue(obj)
}
