package resolver

// Value is a node of a package.json `exports` or `imports` field.
//
// The concrete shapes are Null, String, Array, *Object and Literal. A nil Value
// stands for an absent field.
type Value interface {
	isValue()
}

// Null is the JSON `null` leaf, used by package authors to forbid a subpath.
type Null struct{}

// String is a target path leaf.
type String string

// Array is a fallback list, the first element that resolves wins.
type Array []Value

// Literal holds a boolean or number leaf. Literals never resolve to a target.
type Literal struct {
	Raw any
}

// Object represents a readonly JSON object with ordered keys.
type Object struct {
	keys   []string
	values map[string]Value
}

func (Null) isValue()    {}
func (String) isValue()  {}
func (Array) isValue()   {}
func (Literal) isValue() {}
func (*Object) isValue() {}

// NewObject creates an empty object, use Set to add entries in priority order.
func NewObject() *Object {
	return &Object{values: map[string]Value{}}
}

// Set sets the value of the key, a new key is appended after the existing ones.
func (obj *Object) Set(key string, value Value) *Object {
	if obj.values == nil {
		obj.values = map[string]Value{}
	}
	if _, ok := obj.values[key]; !ok {
		obj.keys = append(obj.keys, key)
	}
	obj.values[key] = value
	return obj
}

// Len returns the length of the object
func (obj *Object) Len() int {
	if obj == nil {
		return 0
	}
	return len(obj.keys)
}

// Keys returns the keys of the object in declaration order
func (obj *Object) Keys() []string {
	if obj == nil {
		return nil
	}
	return obj.keys
}

// Get returns the value of the key in the object
func (obj *Object) Get(key string) (Value, bool) {
	if obj == nil {
		return nil, false
	}
	v, ok := obj.values[key]
	return v, ok
}

// Has reports whether the key is declared in the object
func (obj *Object) Has(key string) bool {
	_, ok := obj.Get(key)
	return ok
}
