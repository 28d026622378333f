package models

import (
	"encoding/json"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	// Undefined is the zero Kind. It marks a path that did not resolve and is
	// never produced by decoding a document.
	Undefined Kind = iota
	Null
	Bool
	Number
	String
	Array
	Object
)

var kindNames = map[Kind]string{
	Undefined: "undefined",
	Null:      "null",
	Bool:      "bool",
	Number:    "number",
	String:    "string",
	Array:     "array",
	Object:    "object",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// JSONArray is the element list of an array Value.
type JSONArray []Value

// Value is a JSON value: null, bool, number, string, array or object.
// The zero Value is Undefined, which is distinct from JSON null.
type Value struct {
	kind Kind
	b    bool
	s    string // string contents, or the literal text of a number
	arr  JSONArray
	obj  *JSONObject
}

// NotFound is the Undefined value returned for unresolved paths.
var NotFound = Value{}

// NullValue returns a JSON null.
func NullValue() Value { return Value{kind: Null} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// NumberValue wraps a number literal.
func NumberValue(n json.Number) Value { return Value{kind: Number, s: string(n)} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: String, s: s} }

// ArrayValue wraps a list of elements.
func ArrayValue(elems ...Value) Value {
	if elems == nil {
		elems = JSONArray{}
	}
	return Value{kind: Array, arr: elems}
}

// ObjectValue wraps an object. A nil object becomes an empty one.
func ObjectValue(obj *JSONObject) Value {
	if obj == nil {
		obj = NewObject(0)
	}
	return Value{kind: Object, obj: obj}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsDefined is false only for Undefined.
func (v Value) IsDefined() bool { return v.kind != Undefined }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.kind == Null }

// IsScalar reports whether v is a bool, number or string.
func (v Value) IsScalar() bool {
	return v.kind == Bool || v.kind == Number || v.kind == String
}

// IsContainer reports whether v is an array or an object.
func (v Value) IsContainer() bool {
	return v.kind == Array || v.kind == Object
}

// Bool returns the boolean held by v and whether v is a bool.
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == Bool
}

// Str returns the string held by v and whether v is a string.
func (v Value) Str() (string, bool) {
	if v.kind != String {
		return "", false
	}
	return v.s, true
}

// Num returns the number literal held by v and whether v is a number.
func (v Value) Num() (json.Number, bool) {
	if v.kind != Number {
		return "", false
	}
	return json.Number(v.s), true
}

// Array returns the elements of v, or nil when v is not an array.
func (v Value) Array() JSONArray {
	if v.kind != Array {
		return nil
	}
	return v.arr
}

// Object returns the object held by v, or nil when v is not an object.
func (v Value) Object() *JSONObject {
	if v.kind != Object {
		return nil
	}
	return v.obj
}

// Len is the element count of an array or member count of an object.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.arr)
	case Object:
		return v.obj.Len()
	default:
		return 0
	}
}

// Equal reports whether a and b hold the same JSON value. Object member
// order is ignored, number literals are compared textually.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Undefined, Null:
		return true
	case Bool:
		return a.b == b.b
	case Number, String:
		return a.s == b.s
	case Array:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case Object:
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		for _, m := range a.obj.Members() {
			other, ok := b.obj.Get(m.Key)
			if !ok || !Equal(m.Value, other) {
				return false
			}
		}
		return true
	}
	return false
}

// Document is a decoded JSON input.
type Document struct {
	Root        Value
	RootIsArray bool // True if the root of the JSON is an array vs an object
}

// NewDocument wraps a root value.
func NewDocument(root Value) Document {
	return Document{Root: root, RootIsArray: root.Kind() == Array}
}
