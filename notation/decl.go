package notation

import (
	"fmt"
	"strings"

	"github.com/varmint/varmint/adt"
)

// FieldDecl declares one variant field.
//
// Type names a constraint: "" or "any", a scalar ("string", "number",
// "bool"), a family name, or "Family/Variant".
type FieldDecl struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}

// VariantDecl declares one variant.  Fields is a list so that the
// declared order survives YAML.
type VariantDecl struct {
	Name   string      `json:"name" yaml:"name"`
	Fields []FieldDecl `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// FamilyDecl declares a family and its variants.
type FamilyDecl struct {
	Name     string        `json:"name" yaml:"name"`
	Variants []VariantDecl `json:"variants" yaml:"variants"`
}

// Constraint resolves a FieldDecl.Type name against the registry.
func (r *Registry) Constraint(name string) (adt.Constraint, error) {
	switch name {
	case "", "any":
		return adt.Anything(), nil
	case "string":
		return adt.Require(""), nil
	case "number":
		return adt.Require(0.0), nil
	case "bool", "boolean":
		return adt.Require(false), nil
	}
	if strings.Contains(name, "/") {
		v, err := r.Variant(name)
		if err != nil {
			return adt.Constraint{}, err
		}
		return adt.Require(v), nil
	}
	f, have := r.Family(name)
	if !have {
		return adt.Constraint{}, fmt.Errorf("unknown type '%s'", name)
	}
	return adt.Require(f), nil
}

// DefineFamilies builds the declared families into a new Registry.
//
// All families are created before any variant is defined so that a
// field can reference a family declared later.
func DefineFamilies(decls []FamilyDecl) (*Registry, error) {
	r := NewRegistry()

	families := make([]*adt.Family, len(decls))
	for i, decl := range decls {
		families[i] = adt.NewFamily(decl.Name)
		r.Add(families[i])
	}

	for i, decl := range decls {
		for _, v := range decl.Variants {
			fields := make([]adt.Field, len(v.Fields))
			for j, field := range v.Fields {
				c, err := r.Constraint(field.Type)
				if err != nil {
					return nil, err
				}
				fields[j] = adt.F(field.Name, c)
			}
			if _, err := families[i].Define(v.Name, fields...); err != nil {
				return nil, err
			}
		}
	}

	return r, nil
}
