package match

import (
	"fmt"

	"github.com/varmint/varmint/adt"
)

// Binding is a named capture slot in a pattern.
//
// A Binding with an empty name matches anything and captures nothing.
// A non-empty name must be a valid identifier; use NewBinding to get
// that checked.
type Binding string

// NewBinding makes a Binding, rejecting names that are neither empty
// nor valid identifiers.
func NewBinding(name string) (Binding, error) {
	if name != "" && !adt.IsIdentifier(name) {
		return "", &adt.TypeError{
			Expected: "an identifier (or empty) binding name",
			Actual:   fmt.Sprintf("%q", name),
		}
	}
	return Binding(name), nil
}

// B is NewBinding that panics on a bad name.
func B(name string) Binding {
	b, err := NewBinding(name)
	if err != nil {
		panic(err)
	}
	return b
}

// BinderName implements adt.Binder, so a Binding can sit in a variant
// field without tripping the field's constraint.
func (b Binding) BinderName() string {
	return string(b)
}

func (b Binding) String() string {
	return `Binding("` + string(b) + `")`
}

// BindingRest is a capture slot that is only legal as the final
// element of a sequence pattern, where it captures all remaining
// elements of the value.  The empty-name don't-care rule is the same
// as for Binding.
type BindingRest string

// NewBindingRest makes a BindingRest with the same name validation as
// NewBinding.
func NewBindingRest(name string) (BindingRest, error) {
	if name != "" && !adt.IsIdentifier(name) {
		return "", &adt.TypeError{
			Expected: "an identifier (or empty) binding name",
			Actual:   fmt.Sprintf("%q", name),
		}
	}
	return BindingRest(name), nil
}

// Rest is NewBindingRest that panics on a bad name.
func Rest(name string) BindingRest {
	b, err := NewBindingRest(name)
	if err != nil {
		panic(err)
	}
	return b
}

// BinderName implements adt.Binder.
func (b BindingRest) BinderName() string {
	return string(b)
}

func (b BindingRest) String() string {
	return `BindingRest("` + string(b) + `")`
}

// OrderedMap is a mapping with an explicit key order.
//
// As a pattern, its captures accumulate in the declared key order
// (a plain map pattern uses sorted key order instead).  It also works
// as a value on the other side of a mapping match.
type OrderedMap struct {
	keys   []string
	values map[string]interface{}
}

// NewOrderedMap makes an empty OrderedMap.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{
		values: make(map[string]interface{}, 8),
	}
}

// Set adds or replaces an entry, remembering first-set order.
// Returns the map for chaining.
func (o *OrderedMap) Set(key string, v interface{}) *OrderedMap {
	if _, have := o.values[key]; !have {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
	return o
}

// Get looks up an entry.
func (o *OrderedMap) Get(key string) (interface{}, bool) {
	v, have := o.values[key]
	return v, have
}

// Keys returns the keys in declared order.
func (o *OrderedMap) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len returns the number of entries.
func (o *OrderedMap) Len() int {
	return len(o.keys)
}

func (o *OrderedMap) String() string {
	s := "{"
	for i, k := range o.keys {
		if 0 < i {
			s += ", "
		}
		s += k + ": " + adt.Render(o.values[k])
	}
	return s + "}"
}
