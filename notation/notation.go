// Package notation reads and writes values and patterns as plain
// trees (maps, slices, and atoms), which is how they travel in JSON
// and YAML.
//
// An instance is written as a map with a "$new" property naming the
// variant as "Family/Variant", with the fields as the remaining
// properties:
//
//	$new: List/Cons
//	car: 1
//	cdr:
//	  $new: List/Nil
//
// A map with only a "$class" property denotes the variant itself,
// which as a pattern matches any instance of that variant and
// captures every field.  Strings starting with "?" denote bindings as
// in match.FromTree.
//
// A Registry resolves "Family/Variant" names for decoding.
package notation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/varmint/varmint/adt"
	"github.com/varmint/varmint/match"
)

// Registry maps family names to families for decoding.
type Registry struct {
	mu       sync.Mutex
	families map[string]*adt.Family
}

func NewRegistry() *Registry {
	return &Registry{
		families: make(map[string]*adt.Family),
	}
}

// Add registers a family under its name.  A family registered twice
// replaces the previous one.
func (r *Registry) Add(f *adt.Family) *Registry {
	r.mu.Lock()
	r.families[f.Name] = f
	r.mu.Unlock()
	return r
}

// Family looks up a registered family.
func (r *Registry) Family(name string) (*adt.Family, bool) {
	r.mu.Lock()
	f, have := r.families[name]
	r.mu.Unlock()
	return f, have
}

// Names returns the registered family names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	acc := make([]string, 0, len(r.families))
	for name := range r.families {
		acc = append(acc, name)
	}
	r.mu.Unlock()
	sort.Strings(acc)
	return acc
}

// Variant resolves a "Family/Variant" name.
func (r *Registry) Variant(name string) (*adt.Variant, error) {
	parts := strings.SplitN(name, "/", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("bad variant name '%s' (want Family/Variant)", name)
	}
	f, have := r.Family(parts[0])
	if !have {
		return nil, fmt.Errorf("unknown family '%s'", parts[0])
	}
	v, have := f.Variant(parts[1])
	if !have {
		return nil, fmt.Errorf("family %s has no variant '%s'", parts[0], parts[1])
	}
	return v, nil
}

// ToTree converts a value into a plain tree.  Instances become "$new"
// maps; everything else passes through (with maps and slices
// converted recursively).
func ToTree(x interface{}) interface{} {
	switch v := x.(type) {
	case *adt.Instance:
		variant := v.Variant()
		m := make(map[string]interface{}, variant.NumFields()+1)
		m["$new"] = variant.Family().Name + "/" + variant.Name()
		for i, name := range variant.FieldNames() {
			m[name] = ToTree(v.FieldAt(i))
		}
		return m
	case *adt.Variant:
		return map[string]interface{}{
			"$class": v.Family().Name + "/" + v.Name(),
		}
	case map[string]interface{}:
		m := make(map[string]interface{}, len(v))
		for k, y := range v {
			m[k] = ToTree(y)
		}
		return m
	case []interface{}:
		xs := make([]interface{}, len(v))
		for i, y := range v {
			xs[i] = ToTree(y)
		}
		return xs
	case match.Binding:
		return "?" + string(v)
	case match.BindingRest:
		return "?" + string(v) + "..."
	default:
		return x
	}
}

// FromTree converts a plain tree into a value or pattern, resolving
// "$new" and "$class" maps against the registry and "?" strings into
// bindings.
func (r *Registry) FromTree(x interface{}) (interface{}, error) {
	switch v := x.(type) {
	case string:
		return match.FromTree(v)
	case map[string]interface{}:
		return r.fromMap(v)
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(v))
		for k, y := range v {
			s, is := k.(string)
			if !is {
				return nil, fmt.Errorf("bad tree key (%T)", k)
			}
			m[s] = y
		}
		return r.fromMap(m)
	case []interface{}:
		xs := make([]interface{}, len(v))
		for i, y := range v {
			z, err := r.FromTree(y)
			if err != nil {
				return nil, err
			}
			xs[i] = z
		}
		return xs, nil
	default:
		return x, nil
	}
}

func (r *Registry) fromMap(m map[string]interface{}) (interface{}, error) {
	if name, have := m["$class"]; have {
		s, is := name.(string)
		if !is {
			return nil, errors.New("bad $class value")
		}
		if len(m) != 1 {
			return nil, errors.New("$class map can have no other properties")
		}
		return r.Variant(s)
	}

	if name, have := m["$new"]; have {
		s, is := name.(string)
		if !is {
			return nil, errors.New("bad $new value")
		}
		variant, err := r.Variant(s)
		if err != nil {
			return nil, err
		}
		args := make([]interface{}, variant.NumFields())
		for i, field := range variant.FieldNames() {
			y, have := m[field]
			if !have {
				return nil, fmt.Errorf("%s needs field '%s'", s, field)
			}
			if args[i], err = r.FromTree(y); err != nil {
				return nil, err
			}
		}
		if len(m) != variant.NumFields()+1 {
			fields := make(map[string]bool, variant.NumFields())
			for _, field := range variant.FieldNames() {
				fields[field] = true
			}
			for k := range m {
				if k != "$new" && !fields[k] {
					return nil, fmt.Errorf("%s has no field '%s'", s, k)
				}
			}
		}
		return variant.New(args...)
	}

	acc := make(map[string]interface{}, len(m))
	for k, y := range m {
		z, err := r.FromTree(y)
		if err != nil {
			return nil, err
		}
		acc[k] = z
	}
	return acc, nil
}
