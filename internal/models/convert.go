package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// FromAny converts a value produced by encoding/json (or built by hand from
// Go maps, slices and scalars) into a Value. Map members are ordered by
// sorted key since Go maps carry no order. Unsupported types become
// Undefined.
func FromAny(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return NullValue()
	case Value:
		return v
	case bool:
		return BoolValue(v)
	case string:
		return StringValue(v)
	case json.Number:
		return NumberValue(v)
	case float64:
		return NumberValue(json.Number(strconv.FormatFloat(v, 'f', -1, 64)))
	case float32:
		return NumberValue(json.Number(strconv.FormatFloat(float64(v), 'f', -1, 32)))
	case int:
		return NumberValue(json.Number(strconv.Itoa(v)))
	case int64:
		return NumberValue(json.Number(strconv.FormatInt(v, 10)))
	case int32:
		return NumberValue(json.Number(strconv.FormatInt(int64(v), 10)))
	case uint64:
		return NumberValue(json.Number(strconv.FormatUint(v, 10)))
	case []any:
		arr := make(JSONArray, len(v))
		for i, elem := range v {
			arr[i] = FromAny(elem)
		}
		return ArrayValue(arr...)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject(len(keys))
		for _, k := range keys {
			obj.Set(k, FromAny(v[k]))
		}
		return ObjectValue(obj)
	default:
		return NotFound
	}
}

// ToAny converts v into the generic form encoding/json decodes into:
// map[string]any, []any, json.Number, string, bool or nil. Undefined maps
// to nil.
func (v Value) ToAny() any {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		return json.Number(v.s)
	case String:
		return v.s
	case Array:
		out := make([]any, len(v.arr))
		for i, elem := range v.arr {
			out[i] = elem.ToAny()
		}
		return out
	case Object:
		out := make(map[string]any, v.obj.Len())
		for _, m := range v.obj.Members() {
			out[m.Key] = m.Value.ToAny()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON writes v with object members in document order. Undefined is
// written as null.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case Undefined, Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.b))
	case Number:
		if v.s == "" {
			buf.WriteString("0")
			return nil
		}
		buf.WriteString(v.s)
	case String:
		encoded, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(encoded)
	case Array:
		buf.WriteByte('[')
		for i, elem := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := elem.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, m := range v.obj.Members() {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unexpected value kind: %d", v.kind)
	}
	return nil
}

// String renders v as compact JSON, or "undefined".
func (v Value) String() string {
	if v.kind == Undefined {
		return "undefined"
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(data)
}

// Text renders a scalar the way it appears in a table cell: strings without
// quotes, numbers as written, null and undefined as the empty string.
// Containers render as compact JSON.
func (v Value) Text() string {
	switch v.kind {
	case Undefined, Null:
		return ""
	case String:
		return v.s
	case Number:
		return v.s
	case Bool:
		return strconv.FormatBool(v.b)
	default:
		return v.String()
	}
}
