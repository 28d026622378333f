package analyzer

import "github.com/mcncl/vizpath/internal/models"

// Skeleton returns the shape of v with values removed. Objects keep every
// key, non-empty arrays collapse to their first element's skeleton, empty
// arrays stay empty and scalars become null.
func Skeleton(v models.Value) models.Value {
	switch v.Kind() {
	case models.Object:
		obj := v.Object()
		out := models.NewObject(obj.Len())
		for _, m := range obj.Members() {
			out.Set(m.Key, Skeleton(m.Value))
		}
		return models.ObjectValue(out)
	case models.Array:
		elems := v.Array()
		if len(elems) == 0 {
			return models.ArrayValue()
		}
		return models.ArrayValue(Skeleton(elems[0]))
	case models.Undefined:
		return models.NotFound
	default:
		return models.NullValue()
	}
}
