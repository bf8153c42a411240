package cases

import (
	"context"
	"testing"

	"github.com/varmint/varmint/adt"
	"github.com/varmint/varmint/match"
)

func testShape(t *testing.T) (*adt.Variant, *adt.Variant) {
	t.Helper()
	shape := adt.NewFamily("Shape")
	circle := shape.MustDefine("Circle", adt.F("radius", adt.Require(0.0)))
	rect := shape.MustDefine("Rect",
		adt.F("width", adt.Require(0.0)),
		adt.F("height", adt.Require(0.0)))
	return circle, rect
}

func TestDispatchOrder(t *testing.T) {
	ctx := context.Background()
	circle, rect := testShape(t)

	cs := NewCases("area").
		OnFunc(circle, func(ctx context.Context, value interface{}, c *match.Captured) (interface{}, error) {
			r, _ := c.Get("radius")
			return 3.14159 * r.(float64) * r.(float64), nil
		}).
		OnFunc(rect, func(ctx context.Context, value interface{}, c *match.Captured) (interface{}, error) {
			w, _ := c.Get("width")
			h, _ := c.Get("height")
			return w.(float64) * h.(float64), nil
		})

	got, err := cs.Dispatch(ctx, rect.Must(3.0, 4.0))
	if err != nil {
		t.Fatal(err)
	}
	if got != 12.0 {
		t.Fatal(got)
	}

	t.Run("firstWins", func(t *testing.T) {
		// A specific instance pattern before the general class
		// pattern.
		ordered := NewCases("unit").
			OnFunc(circle.Must(1.0), func(ctx context.Context, value interface{}, c *match.Captured) (interface{}, error) {
				return "unit circle", nil
			}).
			OnFunc(circle, func(ctx context.Context, value interface{}, c *match.Captured) (interface{}, error) {
				return "circle", nil
			})

		got, err := ordered.Dispatch(ctx, circle.Must(1.0))
		if err != nil {
			t.Fatal(err)
		}
		if got != "unit circle" {
			t.Fatal(got)
		}

		got, err = ordered.Dispatch(ctx, circle.Must(2.0))
		if err != nil {
			t.Fatal(err)
		}
		if got != "circle" {
			t.Fatal(got)
		}
	})
}

func TestDispatchExhausted(t *testing.T) {
	ctx := context.Background()
	circle, _ := testShape(t)

	cs := NewCases("area").On(circle, nil)

	_, err := cs.Dispatch(ctx, "not a shape")
	if err == nil {
		t.Fatal("should not have dispatched")
	}
	e, is := err.(*CasesExhausted)
	if !is {
		t.Fatalf("%T: %v", err, err)
	}
	want := `no case for "not a shape" in area`
	if e.Error() != want {
		t.Fatalf("got %q, want %q", e.Error(), want)
	}
	if !adt.Equal(e.Value, "not a shape") {
		t.Fatal(e.Value)
	}
}

func TestDispatchNilHandler(t *testing.T) {
	ctx := context.Background()
	circle, _ := testShape(t)

	cs := NewCases("probe").On(circle, nil)

	got, err := cs.Dispatch(ctx, circle.Must(2.0))
	if err != nil {
		t.Fatal(err)
	}
	c, is := got.(*match.Captured)
	if !is {
		t.Fatalf("%T", got)
	}
	if r, _ := c.Get("radius"); r != 2.0 {
		t.Fatal(c)
	}
}

func TestDispatchTreePattern(t *testing.T) {
	ctx := context.Background()

	cs := NewCases("router").
		OnFunc(map[string]interface{}{"to": match.B("who")},
			func(ctx context.Context, value interface{}, c *match.Captured) (interface{}, error) {
				who, _ := c.Get("who")
				return who, nil
			})

	got, err := cs.Dispatch(ctx, map[string]interface{}{"to": "kitchen", "body": "tacos"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "kitchen" {
		t.Fatal(got)
	}
}

func TestStrictMatcher(t *testing.T) {
	ctx := context.Background()
	_, rect := testShape(t)

	// A strict matcher makes a colliding pattern unusable, so
	// dispatch falls through to exhaustion.
	cs := NewCases("strict").On(rect.Must(match.B("x"), match.B("x")), nil)
	cs.Matcher = &match.Matcher{StrictBindings: true}

	if _, err := cs.Dispatch(ctx, rect.Must(1.0, 2.0)); err == nil {
		t.Fatal("should have exhausted")
	} else if _, is := err.(*CasesExhausted); !is {
		t.Fatalf("%T: %v", err, err)
	}
}

type upperInterpreter struct{}

func (i *upperInterpreter) Compile(ctx context.Context, code interface{}) (interface{}, error) {
	return code, nil
}

func (i *upperInterpreter) Exec(ctx context.Context, value interface{}, captured *match.Captured, code, compiled interface{}) (interface{}, error) {
	return code.(string) + "!", nil
}

func TestCompile(t *testing.T) {
	ctx := context.Background()
	interpreters := map[string]Interpreter{
		"upper": &upperInterpreter{},
	}

	cs := NewCases("compiled").Add(&Case{
		Name:    "greet",
		Pattern: match.B("any"),
		HandlerSource: &HandlerSource{
			Interpreter: "upper",
			Source:      "hello",
		},
	})

	if err := cs.Compile(ctx, interpreters, false); err != nil {
		t.Fatal(err)
	}

	got, err := cs.Dispatch(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello!" {
		t.Fatal(got)
	}

	t.Run("notFound", func(t *testing.T) {
		bad := NewCases("bad").Add(&Case{
			Pattern: match.B("any"),
			HandlerSource: &HandlerSource{
				Interpreter: "lisp",
				Source:      "(+ 1 2)",
			},
		})
		if err := bad.Compile(ctx, interpreters, false); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("force", func(t *testing.T) {
		// Without force, an existing Handler survives Compile.
		if err := cs.Compile(ctx, nil, false); err != nil {
			t.Fatal(err)
		}
		// With force and no interpreters, compilation fails.
		if err := cs.Compile(ctx, nil, true); err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestParams(t *testing.T) {
	ctx := context.Background()
	_, rect := testShape(t)

	cs := NewCases("area").
		OnParams(rect, nil, func(ctx context.Context, args ...interface{}) (interface{}, error) {
			return args[0].(float64) * args[1].(float64), nil
		})

	got, err := cs.Dispatch(ctx, rect.Must(3.0, 4.0))
	if err != nil {
		t.Fatal(err)
	}
	if got != 12.0 {
		t.Fatal(got)
	}

	t.Run("paramsFor", func(t *testing.T) {
		p := []interface{}{match.B("a"), match.B("b"), match.B("a")}
		params := ParamsFor(p)
		if len(params) != 2 || params[0] != "a" || params[1] != "b" {
			t.Fatal(params)
		}
	})

	t.Run("missing", func(t *testing.T) {
		h := &ParamsHandler{
			Params: []string{"nope"},
			F: func(ctx context.Context, args ...interface{}) (interface{}, error) {
				return nil, nil
			},
		}
		c := match.NewCaptured()
		if _, err := h.Exec(ctx, nil, c); err == nil {
			t.Fatal("expected an error")
		} else if _, is := err.(*MissingArg); !is {
			t.Fatalf("%T: %v", err, err)
		}
	})

	t.Run("explicit", func(t *testing.T) {
		// Declared params can reorder or subset the captures.
		cs := NewCases("h").
			OnParams(rect, []string{"height"}, func(ctx context.Context, args ...interface{}) (interface{}, error) {
				return args[0], nil
			})
		got, err := cs.Dispatch(ctx, rect.Must(3.0, 4.0))
		if err != nil {
			t.Fatal(err)
		}
		if got != 4.0 {
			t.Fatal(got)
		}
	})
}
