package match

// Fuzz patterns and values.  Match and then verify non-error results.

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/varmint/varmint/adt"
)

// Fuzz has parameters used to generate random patterns and values.
type Fuzz struct {
	MapWidth    int
	ArrayWidth  int
	Alphabet    string
	VarAlphabet string
	VarWidth    int
	StringWidth int
	MaxNumber   float64

	Nils      float64
	Strings   float64
	Vars      float64
	Bools     float64
	Numbers   float64
	Arrays    float64
	Maps      float64
	Instances float64

	// Tree is the family used for generated instances.
	Leaf *adt.Variant
	Node *adt.Variant

	// generate counts the number of atomic values generated.
	generated int64
}

// NoVars sets Vars to zero so that no bindings will be generated.
func (f *Fuzz) NoVars() {
	f.Vars = 0
}

// NewFuzz returns a reasonable, general-purpose Fuzz.
func NewFuzz() *Fuzz {
	tree := adt.NewFamily("FuzzTree")
	leaf := tree.MustDefine("Leaf", adt.F("value", adt.Anything()))
	node := tree.MustDefine("Node",
		adt.F("left", adt.Require(tree)),
		adt.F("right", adt.Require(tree)))

	return &Fuzz{
		MapWidth:    5,
		ArrayWidth:  5,
		Alphabet:    "abcde",
		VarAlphabet: "uvwxyz",
		VarWidth:    2,
		StringWidth: 4,
		MaxNumber:   10,

		Nils:      1,
		Strings:   3,
		Vars:      2,
		Bools:     1,
		Numbers:   4,
		Arrays:    3,
		Maps:      3,
		Instances: 3,

		Leaf: leaf,
		Node: node,
	}
}

// Gen generates a random pattern or value.
//
// If Gen.Vars is zero, then the generated tree will contain no
// bindings (and can be interpreted as a value).
func (f *Fuzz) Gen(r *rand.Rand, d int) interface{} {
	f.generated++

	m := f.Strings + f.Bools + f.Numbers + f.Nils + f.Vars

	if 0 < d {
		m += f.Arrays + f.Maps + f.Instances
	}

	t := r.Float64() * m
	if t < f.Strings {
		return f.genString(r)
	} else if t < f.Strings+f.Bools {
		return r.Intn(1024)%2 == 0
	} else if t < f.Strings+f.Bools+f.Numbers {
		return float64(r.Intn(int(f.MaxNumber)))
	} else if t < f.Strings+f.Bools+f.Numbers+f.Nils {
		return nil
	} else if t < f.Strings+f.Bools+f.Numbers+f.Nils+f.Vars {
		return f.genVar(r)
	} else if t < f.Strings+f.Bools+f.Numbers+f.Nils+f.Vars+f.Arrays {
		return f.genArray(r, d)
	} else if t < f.Strings+f.Bools+f.Numbers+f.Nils+f.Vars+f.Arrays+f.Maps {
		return f.genMap(r, d)
	} else {
		return f.genInstance(r, d)
	}
}

func (f *Fuzz) genString(r *rand.Rand) string {
	n := r.Intn(f.StringWidth-1) + 1
	s := make([]byte, n)
	for i := range s {
		s[i] = f.Alphabet[r.Intn(len(f.Alphabet))]
	}
	return string(s)
}

func (f *Fuzz) genVar(r *rand.Rand) Binding {
	n := r.Intn(f.VarWidth-1) + 1
	s := make([]byte, n)
	for i := range s {
		s[i] = f.VarAlphabet[r.Intn(len(f.VarAlphabet))]
	}
	return B(string(s))
}

func (f *Fuzz) genArray(r *rand.Rand, d int) interface{} {
	xs := make([]interface{}, r.Intn(f.ArrayWidth))
	for i := range xs {
		xs[i] = f.Gen(r, d-1)
	}
	return xs
}

func (f *Fuzz) genMap(r *rand.Rand, d int) interface{} {
	n := r.Intn(f.MapWidth)
	m := make(map[string]interface{}, n)
	for i := 0; i < n; i++ {
		m[f.genString(r)] = f.Gen(r, d-1)
	}
	return m
}

func (f *Fuzz) genInstance(r *rand.Rand, d int) interface{} {
	if d <= 1 || r.Intn(2) == 0 {
		return f.Leaf.Must(f.Gen(r, 0))
	}
	return f.Node.Must(f.genInstance(r, d-1), f.genInstance(r, d-1))
}

// abstract replaces some subtrees of a value with bindings, returning
// a pattern that must match the value.  Each binding gets a fresh
// name, and the expected captures are recorded in want.
func abstract(r *rand.Rand, f *Fuzz, x interface{}, want map[string]interface{}) interface{} {
	if r.Float64() < 0.15 {
		name := fmt.Sprintf("v%d", len(want))
		want[name] = x
		return B(name)
	}
	switch v := x.(type) {
	case []interface{}:
		pat := make([]interface{}, len(v))
		for i, y := range v {
			pat[i] = abstract(r, f, y, want)
		}
		return pat
	case map[string]interface{}:
		pat := make(map[string]interface{}, len(v))
		for k, y := range v {
			pat[k] = abstract(r, f, y, want)
		}
		return pat
	case *adt.Instance:
		args := make([]interface{}, v.NumFields())
		for i := range args {
			args[i] = abstract(r, f, v.FieldAt(i), want)
		}
		return v.Variant().Must(args...)
	default:
		return x
	}
}

// TestMatchFuzz matches a bunch of patterns against a bunch of values.
//
// Verifies some of the results.
func TestMatchFuzz(t *testing.T) {
	var (
		rounds = 5000
		// Doing more doesn't seem to increase coverage.

		d = 4
		r = rand.New(rand.NewSource(42))
		g = NewFuzz()

		matched   = 0
		attempted = 0
		errs      = 0
	)
	g.NoVars()

	then := time.Now()
	for i := 0; i < rounds; i++ {
		value := g.Gen(r, d)

		// A value abstracted into a pattern must match itself
		// with exactly the recorded captures.
		want := make(map[string]interface{})
		pat := abstract(r, g, value, want)
		c, err := Match(pat, value)
		if err != nil {
			t.Fatalf("%s should match %s: %v",
				adt.Render(pat), adt.Render(value), err)
		}
		if c.Len() != len(want) {
			t.Fatal(c, want)
		}
		for name, x := range want {
			got, have := c.Get(name)
			if !have || !adt.Equal(got, x) {
				t.Fatalf("capture %q: got %s, want %s",
					name, adt.Render(got), adt.Render(x))
			}
		}

		// Unrelated pattern/value pairs should never panic,
		// and failures are always MatchFailed.
		other := g.Gen(r, d)
		attempted++
		if _, err := Match(pat, other); err != nil {
			errs++
			if _, is := err.(*MatchFailed); !is {
				t.Fatalf("%T: %v", err, err)
			}
		} else {
			matched++
		}
	}
	elapsed := time.Now().Sub(then)

	fmt.Printf(`fuzzed    %d
matched   %f%%
errors    %f%% (%d)
elapsed   %fms
generated %d
`,
		attempted,
		100*float64(matched)/float64(attempted),
		100*float64(errs)/float64(attempted), errs,
		elapsed.Seconds()*1000,
		g.generated)
}
