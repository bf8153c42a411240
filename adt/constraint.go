package adt

import (
	"fmt"
	"reflect"
)

// ConstraintKind enumerates the supported field constraint checks.
//
// The enumeration is closed on purpose: a constraint is evaluated by
// switching on its kind, never by asking an arbitrary value whether
// it approves.  Add a kind here (and to Check) to extend the set.
type ConstraintKind int

const (
	// AnyValue accepts anything.
	AnyValue ConstraintKind = iota

	// SameType requires the value's dynamic type to be the
	// constraint's type.  Numeric types are normalized to float64
	// first, so Require(0) accepts any number.
	SameType

	// InFamily requires the value to be an Instance of the
	// constraint's Family (optionally one specific Variant of it).
	InFamily
)

// Constraint says what values a field will accept.
type Constraint struct {
	Kind ConstraintKind

	// Type is the required dynamic type when Kind is SameType.
	Type reflect.Type

	// Family (and optionally Variant) give the required shape when
	// Kind is InFamily.
	Family  *Family
	Variant *Variant
}

// Anything returns a constraint that accepts any value.
func Anything() Constraint {
	return Constraint{Kind: AnyValue}
}

// Require returns a constraint for the given "type", which can be a
// *Family, a *Variant, a reflect.Type, or an example value (whose
// dynamic type becomes the requirement).
func Require(dtype interface{}) Constraint {
	switch vv := dtype.(type) {
	case nil:
		return Anything()
	case *Family:
		return Constraint{Kind: InFamily, Family: vv}
	case *Variant:
		return Constraint{Kind: InFamily, Family: vv.family, Variant: vv}
	case reflect.Type:
		return Constraint{Kind: SameType, Type: normalType(vv)}
	default:
		return Constraint{Kind: SameType, Type: normalType(reflect.TypeOf(dtype))}
	}
}

var float64Type = reflect.TypeOf(float64(0))

// normalType maps every numeric type to float64, in the same spirit
// as fudge.
func normalType(t reflect.Type) reflect.Type {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return float64Type
	}
	return t
}

// Check reports (via a *TypeError) whether the value satisfies the
// constraint.
func (c Constraint) Check(x interface{}) error {
	switch c.Kind {
	case AnyValue:
		return nil
	case SameType:
		t := reflect.TypeOf(fudge(x))
		if t == c.Type {
			return nil
		}
		return &TypeError{Expected: "type " + c.Type.String(), Actual: typeName(x)}
	case InFamily:
		in, is := x.(*Instance)
		if !is || in.variant.family != c.Family {
			return &TypeError{Expected: c.String(), Actual: typeName(x)}
		}
		if c.Variant != nil && in.variant != c.Variant {
			return &TypeError{Expected: c.String(), Actual: in.variant.Name()}
		}
		return nil
	default:
		return &TypeError{Expected: "a known constraint kind", Actual: fmt.Sprintf("kind %d", c.Kind)}
	}
}

func (c Constraint) String() string {
	switch c.Kind {
	case AnyValue:
		return "anything"
	case SameType:
		return "type " + c.Type.String()
	case InFamily:
		if c.Variant != nil {
			return "variant " + c.Family.Name + "/" + c.Variant.Name()
		}
		return "family " + c.Family.Name
	default:
		return fmt.Sprintf("constraint kind %d", c.Kind)
	}
}

func typeName(x interface{}) string {
	switch vv := x.(type) {
	case nil:
		return "nil"
	case *Instance:
		return "variant " + vv.variant.family.Name + "/" + vv.variant.Name()
	default:
		return fmt.Sprintf("type %T", fudge(x))
	}
}
