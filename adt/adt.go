// Package adt implements the value model: families of tagged
// variants, field constraints, structural equality, and singleton
// interning for nullary variants.
package adt

import (
	"sync"
	"unicode"
)

// Family is an ADT base: a named set of variants.
//
// A Family is safe for concurrent use once its variants have been
// defined.  Definition itself is also guarded, though typically all
// the Define calls happen during initialization.
type Family struct {
	Name string

	mu       sync.Mutex
	variants map[string]*Variant
	order    []*Variant
}

// NewFamily creates an empty family with the given name.
func NewFamily(name string) *Family {
	return &Family{
		Name:     name,
		variants: make(map[string]*Variant, 4),
	}
}

// Field declares one positional field of a variant.
type Field struct {
	Name       string
	Constraint Constraint
}

// F is shorthand for making a Field.
func F(name string, c Constraint) Field {
	return Field{Name: name, Constraint: c}
}

// Variant is one named shape within a Family, with a fixed, ordered
// field list.  The field order is the positional-argument order for
// New.
type Variant struct {
	family *Family
	name   string
	fields []Field
	index  map[string]int
}

// Define registers a new variant under the family.
//
// Returns a *DefinitionError if the variant name collides with an
// earlier one or if a field name is invalid or repeated.
func (f *Family) Define(name string, fields ...Field) (*Variant, error) {
	if !IsIdentifier(name) {
		return nil, &DefinitionError{Family: f.Name, Name: name, Reason: "variant name is not an identifier"}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, have := f.variants[name]; have {
		return nil, &DefinitionError{Family: f.Name, Name: name, Reason: "duplicate variant name"}
	}

	index := make(map[string]int, len(fields))
	for i, field := range fields {
		if !IsIdentifier(field.Name) {
			return nil, &DefinitionError{Family: f.Name, Name: name,
				Reason: `field name "` + field.Name + `" is not an identifier`}
		}
		if _, have := index[field.Name]; have {
			return nil, &DefinitionError{Family: f.Name, Name: name,
				Reason: `duplicate field name "` + field.Name + `"`}
		}
		index[field.Name] = i
	}

	v := &Variant{
		family: f,
		name:   name,
		fields: append([]Field(nil), fields...),
		index:  index,
	}
	f.variants[name] = v
	f.order = append(f.order, v)

	return v, nil
}

// MustDefine is Define that panics on error.  Handy for package-level
// variant declarations.
func (f *Family) MustDefine(name string, fields ...Field) *Variant {
	v, err := f.Define(name, fields...)
	if err != nil {
		panic(err)
	}
	return v
}

// Variant finds a previously defined variant by name.
func (f *Family) Variant(name string) (*Variant, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, have := f.variants[name]
	return v, have
}

// Variants returns the family's variants in definition order.
func (f *Family) Variants() []*Variant {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Variant(nil), f.order...)
}

// Name returns the variant's name.
func (v *Variant) Name() string {
	return v.name
}

// Family returns the family this variant belongs to.
func (v *Variant) Family() *Family {
	return v.family
}

// NumFields returns the number of declared fields.
func (v *Variant) NumFields() int {
	return len(v.fields)
}

// FieldNames returns the declared field names in order.
func (v *Variant) FieldNames() []string {
	names := make([]string, len(v.fields))
	for i, f := range v.fields {
		names[i] = f.Name
	}
	return names
}

// Fields returns a copy of the declared fields.
func (v *Variant) Fields() []Field {
	return append([]Field(nil), v.fields...)
}

func (v *Variant) String() string {
	return v.name
}

// IsIdentifier reports whether s is a non-empty identifier: a letter
// or underscore followed by letters, digits, or underscores.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
