package adt

import (
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Binder is implemented by pattern slots (see package match).
//
// A field value that is a Binder skips its constraint check, so
// patterns can be built with the ordinary variant constructors.
type Binder interface {
	BinderName() string
}

// Instance is an immutable record: a variant plus one value per
// declared field.  Construction either fully succeeds or fails; no
// partially constructed Instance is ever returned.
type Instance struct {
	variant *Variant
	fields  []interface{}
}

// New constructs an instance of the variant.
//
// Returns an *ArityError if the argument count is wrong and a
// *TypeError if an argument doesn't satisfy its field constraint.
// For a zero-field variant, New returns the process-wide singleton
// for that variant.
func (v *Variant) New(args ...interface{}) (*Instance, error) {
	if len(args) != len(v.fields) {
		return nil, &ArityError{Variant: v, Got: len(args)}
	}

	if len(v.fields) == 0 {
		return DefaultInterner.Singleton(v), nil
	}

	fields := make([]interface{}, len(args))
	for i, x := range args {
		if _, is := x.(Binder); !is {
			if err := v.fields[i].Constraint.Check(x); err != nil {
				return nil, err
			}
		}
		fields[i] = x
	}

	return &Instance{variant: v, fields: fields}, nil
}

// Must is New that panics on error.  Handy for literals in tests and
// pattern construction.
func (v *Variant) Must(args ...interface{}) *Instance {
	in, err := v.New(args...)
	if err != nil {
		panic(err)
	}
	return in
}

// Variant returns the instance's variant.
func (in *Instance) Variant() *Variant {
	return in.variant
}

// NumFields returns the number of field values.
func (in *Instance) NumFields() int {
	return len(in.fields)
}

// FieldAt returns the i'th field value.
func (in *Instance) FieldAt(i int) interface{} {
	return in.fields[i]
}

// Field returns the field value with the given name.
func (in *Instance) Field(name string) (interface{}, bool) {
	i, have := in.variant.index[name]
	if !have {
		return nil, false
	}
	return in.fields[i], true
}

// Fields returns a copy of the field values in declared order.
func (in *Instance) Fields() []interface{} {
	return append([]interface{}(nil), in.fields...)
}

// String renders the instance as VariantName(field1=..., ...) in
// declared field order.
func (in *Instance) String() string {
	var b strings.Builder
	b.WriteString(in.variant.name)
	b.WriteByte('(')
	for i, f := range in.variant.fields {
		if 0 < i {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteByte('=')
		b.WriteString(Render(in.fields[i]))
	}
	b.WriteByte(')')
	return b.String()
}

// Render gives the canonical representation of a value for
// diagnostics: instances via Instance.String, strings quoted,
// anything with a String method via that method, everything else via
// %v.
func Render(x interface{}) string {
	switch vv := x.(type) {
	case nil:
		return "nil"
	case *Instance:
		return vv.String()
	case string:
		return fmt.Sprintf("%q", vv)
	case fmt.Stringer:
		return vv.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

// fudge is a hack to cast numbers to float64s.
func fudge(x interface{}) interface{} {
	switch vv := x.(type) {
	case float64:
		return vv
	case float32:
		return float64(vv)
	case int64:
		return float64(vv)
	case int32:
		return float64(vv)
	case int:
		return float64(vv)
	default:
		return x
	}
}

// Fudge normalizes numeric values to float64, which is how all
// numbers are treated during matching and equality.
func Fudge(x interface{}) interface{} {
	return fudge(x)
}

// Equal reports deep structural equality.
//
// Instances are equal iff they have the same variant and their fields
// are pairwise Equal.  Maps and slices recurse.  Numbers compare
// after float64 normalization.  Everything else falls back to
// reflect.DeepEqual.
func Equal(a, b interface{}) bool {
	a = fudge(a)
	b = fudge(b)

	switch x := a.(type) {
	case *Instance:
		y, is := b.(*Instance)
		if !is || x.variant != y.variant {
			return false
		}
		for i := range x.fields {
			if !Equal(x.fields[i], y.fields[i]) {
				return false
			}
		}
		return true
	case []interface{}:
		y, is := b.([]interface{})
		if !is || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		y, is := b.(map[string]interface{})
		if !is || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			w, have := y[k]
			if !have || !Equal(v, w) {
				return false
			}
		}
		return true
	default:
		if _, is := b.(*Instance); is {
			return false
		}
		return reflect.DeepEqual(a, b)
	}
}

// Hash returns a hash consistent with Equal.
func (in *Instance) Hash() uint64 {
	h := fnv.New64a()
	hashValue(h, in)
	return h.Sum64()
}

func hashValue(h io.Writer, x interface{}) {
	switch vv := fudge(x).(type) {
	case nil:
		h.Write([]byte("nil"))
	case *Instance:
		h.Write([]byte(vv.variant.family.Name))
		h.Write([]byte{0})
		h.Write([]byte(vv.variant.name))
		h.Write([]byte{0})
		for _, f := range vv.fields {
			hashValue(h, f)
		}
	case string:
		h.Write([]byte("s"))
		h.Write([]byte(vv))
		h.Write([]byte{0})
	case float64:
		h.Write([]byte("n"))
		bits := math.Float64bits(vv)
		var buf [8]byte
		for i := range buf {
			buf[i] = byte(bits >> (8 * i))
		}
		h.Write(buf[:])
	case bool:
		if vv {
			h.Write([]byte("t"))
		} else {
			h.Write([]byte("f"))
		}
	case []interface{}:
		h.Write([]byte("["))
		for _, y := range vv {
			hashValue(h, y)
		}
		h.Write([]byte("]"))
	case map[string]interface{}:
		keys := make([]string, 0, len(vv))
		for k := range vv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		h.Write([]byte("{"))
		for _, k := range keys {
			h.Write([]byte(k))
			h.Write([]byte{0})
			hashValue(h, vv[k])
		}
		h.Write([]byte("}"))
	default:
		fmt.Fprintf(h, "%v", vv)
	}
}

// Interner produces the process-wide singleton for a zero-field
// variant.  It's an interface mostly so tests can reset the state.
type Interner interface {
	// Singleton returns the one instance for the variant, creating
	// it on first use.
	Singleton(v *Variant) *Instance

	// Reset forgets all singletons.
	Reset()
}

// DefaultInterner is the process-wide Interner that Variant.New uses.
var DefaultInterner Interner = NewInterner()

// NewInterner makes a mutex-guarded Interner, so concurrent first
// constructions of the same nullary variant get the same instance.
func NewInterner() Interner {
	return &lockedInterner{
		singletons: make(map[*Variant]*Instance, 8),
	}
}

type lockedInterner struct {
	mu         sync.Mutex
	singletons map[*Variant]*Instance
}

func (i *lockedInterner) Singleton(v *Variant) *Instance {
	i.mu.Lock()
	defer i.mu.Unlock()
	in, have := i.singletons[v]
	if !have {
		in = &Instance{variant: v}
		i.singletons[v] = in
	}
	return in
}

func (i *lockedInterner) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.singletons = make(map[*Variant]*Instance, 8)
}
