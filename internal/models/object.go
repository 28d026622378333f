package models

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// JSONObject is an object that remembers the order its members were
// decoded in.
type JSONObject struct {
	members []Member
	index   map[string]int
}

// NewObject returns an empty object with room for n members.
func NewObject(n int) *JSONObject {
	return &JSONObject{
		members: make([]Member, 0, n),
		index:   make(map[string]int, n),
	}
}

// Set adds a member. A repeated key keeps its original position and takes
// the new value. Set is meant for building objects; a Value that wraps the
// object must not be modified afterwards.
func (o *JSONObject) Set(key string, v Value) {
	if i, ok := o.index[key]; ok {
		o.members[i].Value = v
		return
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, Member{Key: key, Value: v})
}

// Get looks up a member by key.
func (o *JSONObject) Get(key string) (Value, bool) {
	if o == nil {
		return NotFound, false
	}
	i, ok := o.index[key]
	if !ok {
		return NotFound, false
	}
	return o.members[i].Value, true
}

// Has reports whether key is a member.
func (o *JSONObject) Has(key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.index[key]
	return ok
}

// Len is the member count.
func (o *JSONObject) Len() int {
	if o == nil {
		return 0
	}
	return len(o.members)
}

// Members returns the members in document order. Callers must not modify
// the returned slice.
func (o *JSONObject) Members() []Member {
	if o == nil {
		return nil
	}
	return o.members
}

// Keys returns the member keys in document order.
func (o *JSONObject) Keys() []string {
	keys := make([]string, 0, o.Len())
	for _, m := range o.Members() {
		keys = append(keys, m.Key)
	}
	return keys
}
