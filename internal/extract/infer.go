package extract

import (
	"github.com/mcncl/vizpath/internal/models"
	"github.com/mcncl/vizpath/internal/path"
)

// InferRoot finds the array every parameter addresses without an index, as
// in "items.a" and "items.b" against {"items": [...]}. It only applies to
// object documents, and only when all parameters cross the same array at
// the same prefix. The returned root is labelled and addressed by that
// prefix.
func InferRoot(doc models.Value, params []string) (models.RootKey, bool) {
	if doc.Kind() != models.Object || len(params) == 0 {
		return models.RootKey{}, false
	}

	prefix := ""
	for i, param := range params {
		crossing, ok := arrayCrossing(doc, path.Parse(param))
		if !ok {
			return models.RootKey{}, false
		}
		if i == 0 {
			prefix = crossing
		} else if crossing != prefix {
			return models.RootKey{}, false
		}
	}
	return models.RootKey{Label: prefix, Path: prefix}, true
}

// arrayCrossing walks p through doc and returns the prefix at which p meets
// an array with a segment that is not an index.
func arrayCrossing(doc models.Value, p path.Path) (string, bool) {
	if !p.Valid() || p.IsJSONPath() || p.IsEmpty() {
		return "", false
	}
	segments := p.Segments()
	cur := doc
	for i, seg := range segments {
		switch cur.Kind() {
		case models.Object:
			next, ok := cur.Object().Get(seg.Key)
			if !ok {
				return "", false
			}
			cur = next
		case models.Array:
			if !seg.IsIndex {
				if i == 0 {
					return "", false
				}
				return path.Format(segments[:i]), true
			}
			arr := cur.Array()
			if seg.Index >= len(arr) {
				return "", false
			}
			cur = arr[seg.Index]
		default:
			return "", false
		}
	}
	return "", false
}
