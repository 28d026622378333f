package path

import (
	"sort"
	"strconv"

	"github.com/ohler55/ojg/jp"

	"github.com/mcncl/vizpath/internal/models"
)

// RootSegment is the leading segment that stands for the document itself
// when the document is an array.
const RootSegment = models.RootLabel

// Resolve walks p through v. It returns the value found and true, or
// NotFound and false. A resolved JSON null is found.
func Resolve(v models.Value, p Path) (models.Value, bool) {
	if p.invalid || !v.IsDefined() {
		return models.NotFound, false
	}
	if p.expr != nil {
		return resolveJSONPath(v, p.expr)
	}

	segments := p.segments
	if len(segments) > 0 && isRoot(segments[0]) && v.Kind() == models.Array {
		segments = segments[1:]
	}

	cur := v
	for _, seg := range segments {
		switch cur.Kind() {
		case models.Object:
			next, ok := cur.Object().Get(seg.Key)
			if !ok {
				return models.NotFound, false
			}
			cur = next
		case models.Array:
			arr := cur.Array()
			if !seg.IsIndex || seg.Index < 0 || seg.Index >= len(arr) {
				return models.NotFound, false
			}
			cur = arr[seg.Index]
		default:
			// Null and scalars have nothing below them.
			return models.NotFound, false
		}
	}
	return cur, true
}

// ResolveString parses text and resolves it against v.
func ResolveString(v models.Value, text string) (models.Value, bool) {
	return Resolve(v, Parse(text))
}

func isRoot(seg Segment) bool {
	return seg.Key == RootSegment && !seg.Quoted
}

// resolveJSONPath returns the first match of expr in document order: array
// elements by index and object members in the order they were decoded.
func resolveJSONPath(v models.Value, expr jp.Expr) (found models.Value, ok bool) {
	defer func() {
		// ojg panics on a handful of malformed filter expressions.
		if r := recover(); r != nil {
			found, ok = models.NotFound, false
		}
	}()

	locations := expr.Locate(v.ToAny(), 0)
	if len(locations) == 0 {
		return models.NotFound, false
	}
	sort.SliceStable(locations, func(i, j int) bool {
		return locationLess(v, locations[i], locations[j])
	})
	for _, loc := range locations {
		if found := follow(v, loc); found.IsDefined() {
			return found, true
		}
	}
	return models.NotFound, false
}

// locationLess orders two normalized locations by where they appear in v.
func locationLess(v models.Value, a, b jp.Expr) bool {
	cur := v
	for i := 0; i < len(a) && i < len(b); i++ {
		ra, rb := position(cur, a[i]), position(cur, b[i])
		if ra != rb {
			return ra < rb
		}
		cur = step(cur, a[i])
	}
	return len(a) < len(b)
}

// position is the document position frag selects within v.
func position(v models.Value, frag jp.Frag) int {
	switch f := frag.(type) {
	case jp.Nth:
		i := int(f)
		if i < 0 {
			i += len(v.Array())
		}
		return i
	case jp.Child:
		for i, m := range v.Object().Members() {
			if m.Key == string(f) {
				return i
			}
		}
		return v.Object().Len()
	default:
		return 0
	}
}

func step(v models.Value, frag jp.Frag) models.Value {
	switch f := frag.(type) {
	case jp.Nth:
		arr := v.Array()
		i := int(f)
		if i < 0 {
			i += len(arr)
		}
		if i < 0 || i >= len(arr) {
			return models.NotFound
		}
		return arr[i]
	case jp.Child:
		next, _ := v.Object().Get(string(f))
		return next
	default:
		return v
	}
}

// follow walks a normalized location through v.
func follow(v models.Value, loc jp.Expr) models.Value {
	cur := v
	for _, frag := range loc {
		if cur = step(cur, frag); !cur.IsDefined() {
			return models.NotFound
		}
	}
	return cur
}

// Visitor is called for each node during Walk. at holds the segments from
// the walk's start to the node; it is reused between calls and must be
// copied to be retained. Returning false stops the walk.
type Visitor func(at []Segment, v models.Value) bool

// Walk visits v and everything below it depth-first in pre-order: a node is
// visited before its children, and children are visited in document order.
// It reports whether the walk ran to completion.
func Walk(v models.Value, visit Visitor) bool {
	return walk(v, make([]Segment, 0, 8), visit)
}

func walk(v models.Value, at []Segment, visit Visitor) bool {
	if !visit(at, v) {
		return false
	}
	switch v.Kind() {
	case models.Object:
		for _, m := range v.Object().Members() {
			if !walk(m.Value, append(at, Segment{Key: m.Key}), visit) {
				return false
			}
		}
	case models.Array:
		for i, elem := range v.Array() {
			seg := Segment{Key: strconv.Itoa(i), Index: i, IsIndex: true}
			if !walk(elem, append(at, seg), visit) {
				return false
			}
		}
	}
	return true
}

// FindKey searches everything at or below v for an object member named key
// and returns the first one found. Objects are inspected in pre-order, so a
// node's own members win over anything nested deeper inside it, and earlier
// siblings win over later ones.
func FindKey(v models.Value, key string) (models.Value, bool) {
	found := models.NotFound
	ok := false
	Walk(v, func(_ []Segment, node models.Value) bool {
		obj := node.Object()
		if obj == nil {
			return true
		}
		if match, has := obj.Get(key); has {
			found, ok = match, true
			return false
		}
		return true
	})
	return found, ok
}
