package adt

import (
	"strings"
	"testing"
)

func testList(t *testing.T) (*Family, *Variant, *Variant) {
	t.Helper()
	list := NewFamily("List")
	nil_, err := list.Define("Nil")
	if err != nil {
		t.Fatal(err)
	}
	cons, err := list.Define("Cons",
		F("car", Anything()),
		F("cdr", Require(list)))
	if err != nil {
		t.Fatal(err)
	}
	return list, nil_, cons
}

func TestDefine(t *testing.T) {
	list, nil_, cons := testList(t)

	if got := len(list.Variants()); got != 2 {
		t.Fatal(got)
	}
	if v, have := list.Variant("Cons"); !have || v != cons {
		t.Fatal("lost Cons")
	}
	if nil_.NumFields() != 0 || cons.NumFields() != 2 {
		t.Fatal("bad field counts")
	}
	if names := cons.FieldNames(); names[0] != "car" || names[1] != "cdr" {
		t.Fatal(names)
	}

	t.Run("duplicate", func(t *testing.T) {
		_, err := list.Define("Cons")
		if err == nil {
			t.Fatal("expected a DefinitionError")
		}
		if _, is := err.(*DefinitionError); !is {
			t.Fatalf("%T: %v", err, err)
		}
	})

	t.Run("badFieldName", func(t *testing.T) {
		_, err := list.Define("Snoc", F("not an identifier", Anything()))
		if _, is := err.(*DefinitionError); !is {
			t.Fatalf("%T: %v", err, err)
		}
	})

	t.Run("dupFieldName", func(t *testing.T) {
		_, err := list.Define("Pair", F("x", Anything()), F("x", Anything()))
		if _, is := err.(*DefinitionError); !is {
			t.Fatalf("%T: %v", err, err)
		}
	})
}

func TestSingleton(t *testing.T) {
	_, nil_, cons := testList(t)

	a, err := nil_.New()
	if err != nil {
		t.Fatal(err)
	}
	b, err := nil_.New()
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatal("nullary constructions should be identical")
	}

	// Non-nullary constructions with equal arguments are equal but
	// not identical.
	x := cons.Must(1, a)
	y := cons.Must(1, a)
	if x == y {
		t.Fatal("non-nullary constructions should be distinct")
	}
	if !Equal(x, y) {
		t.Fatal("non-nullary constructions should be Equal")
	}

	t.Run("reset", func(t *testing.T) {
		DefaultInterner.Reset()
		c, _ := nil_.New()
		if c == a {
			t.Fatal("Reset should forget singletons")
		}
		d, _ := nil_.New()
		if c != d {
			t.Fatal("still a singleton after Reset")
		}
	})
}

func TestConstruct(t *testing.T) {
	list, nil_, cons := testList(t)

	empty := nil_.Must()

	t.Run("arity", func(t *testing.T) {
		_, err := cons.New(1)
		ae, is := err.(*ArityError)
		if !is {
			t.Fatalf("%T: %v", err, err)
		}
		if !strings.Contains(ae.Error(), "takes 2 arguments, got 1") {
			t.Fatal(ae.Error())
		}
	})

	t.Run("typeCheck", func(t *testing.T) {
		_, err := cons.New(1, "not a list")
		te, is := err.(*TypeError)
		if !is {
			t.Fatalf("%T: %v", err, err)
		}
		if !strings.Contains(te.Error(), "family List") {
			t.Fatal(te.Error())
		}
	})

	t.Run("requireType", func(t *testing.T) {
		point := NewFamily("Point")
		p2, err := point.Define("P2", F("x", Require(0)), F("y", Require(0)))
		if err != nil {
			t.Fatal(err)
		}

		// Any numeric type satisfies a numeric requirement.
		if _, err = p2.New(1, 2.5); err != nil {
			t.Fatal(err)
		}
		if _, err = p2.New("one", 2); err == nil {
			t.Fatal("expected a TypeError")
		}
	})

	t.Run("requireVariant", func(t *testing.T) {
		wrapped := NewFamily("Wrapped")
		w, err := wrapped.Define("W", F("inner", Require(nil_)))
		if err != nil {
			t.Fatal(err)
		}
		if _, err = w.New(empty); err != nil {
			t.Fatal(err)
		}
		if _, err = w.New(cons.Must(1, empty)); err == nil {
			t.Fatal("expected a TypeError")
		}
	})

	_ = list
}

func TestEqual(t *testing.T) {
	_, nil_, cons := testList(t)
	empty := nil_.Must()

	a := cons.Must(1, cons.Must(2, empty))
	b := cons.Must(1, cons.Must(2, empty))
	c := cons.Must(1, cons.Must(3, empty))

	if !Equal(a, b) {
		t.Fatal("deep equality failed")
	}
	if Equal(a, c) {
		t.Fatal("unequal fields compared equal")
	}
	if Equal(a, empty) {
		t.Fatal("different variants compared equal")
	}
	if Equal(a, 1) || Equal(1, a) {
		t.Fatal("instance equal to a number")
	}

	// Numeric normalization.
	if !Equal(cons.Must(1, empty), cons.Must(float64(1), empty)) {
		t.Fatal("int and float64 fields should be Equal")
	}

	// Trees as fields.
	x := cons.Must(map[string]interface{}{"a": []interface{}{1, 2}}, empty)
	y := cons.Must(map[string]interface{}{"a": []interface{}{1.0, 2.0}}, empty)
	if !Equal(x, y) {
		t.Fatal("tree fields should be Equal after fudging")
	}
}

func TestHash(t *testing.T) {
	_, nil_, cons := testList(t)
	empty := nil_.Must()

	a := cons.Must(1, cons.Must(2, empty))
	b := cons.Must(1.0, cons.Must(2, empty))
	if a.Hash() != b.Hash() {
		t.Fatal("Equal instances must hash the same")
	}

	c := cons.Must(2, empty)
	if a.Hash() == c.Hash() {
		t.Fatal("suspiciously colliding hashes")
	}
}

func TestRender(t *testing.T) {
	_, nil_, cons := testList(t)
	empty := nil_.Must()

	if got := empty.String(); got != "Nil()" {
		t.Fatal(got)
	}

	in := cons.Must("a", cons.Must(1, empty))
	want := `Cons(car="a", cdr=Cons(car=1, cdr=Nil()))`
	if got := in.String(); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestFieldAccess(t *testing.T) {
	_, nil_, cons := testList(t)
	empty := nil_.Must()
	in := cons.Must(42, empty)

	if x, have := in.Field("car"); !have || !Equal(x, 42) {
		t.Fatal(x)
	}
	if _, have := in.Field("nope"); have {
		t.Fatal("found a field that doesn't exist")
	}
	if in.FieldAt(1) != empty {
		t.Fatal("FieldAt(1)")
	}
	fs := in.Fields()
	fs[0] = "mutated"
	if x, _ := in.Field("car"); !Equal(x, 42) {
		t.Fatal("Fields() should copy")
	}
}

func TestIsIdentifier(t *testing.T) {
	for _, s := range []string{"x", "car", "_x", "x2", "längs"} {
		if !IsIdentifier(s) {
			t.Fatal(s)
		}
	}
	for _, s := range []string{"", "2x", "x y", "x-y", "x."} {
		if IsIdentifier(s) {
			t.Fatal(s)
		}
	}
}
