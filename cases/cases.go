// Package cases dispatches values to handlers based on ordered
// pattern matching.
//
// A Cases is a list of Case structs, each pairing a pattern with a
// handler.  Dispatch tries the patterns in declaration order and
// invokes the handler of the first one that matches, passing the
// captures.  Handlers can be Go functions or source code compiled by
// an Interpreter (see the interpreters packages).
package cases

import (
	"context"
	"errors"

	"github.com/varmint/varmint/adt"
	"github.com/varmint/varmint/match"
)

var (
	// InterpreterNotFound occurs when you try to Compile a
	// HandlerSource, and the required interpreter isn't in the
	// given map of interpreters.
	InterpreterNotFound = errors.New("interpreter not found")

	// DefaultInterpreters will be used in HandlerSource.Compile if
	// given nil interpreters.
	DefaultInterpreters = make(map[string]Interpreter)
)

// Interpreter can compile and execute code for handlers.
type Interpreter interface {
	// Compile can make something that helps when Exec()ing the
	// code later.
	Compile(ctx context.Context, code interface{}) (interface{}, error)

	// Exec executes the code against the dispatched value and its
	// captures.  The result of a previous Compile() might be
	// provided.
	Exec(ctx context.Context, value interface{}, captured *match.Captured, code interface{}, compiled interface{}) (interface{}, error)
}

// Handler consumes a dispatched value along with the captures from
// the pattern that matched it.
type Handler interface {
	Exec(ctx context.Context, value interface{}, captured *match.Captured) (interface{}, error)
}

// FuncHandler is a Handler wrapped around a Go function.
type FuncHandler struct {
	F func(context.Context, interface{}, *match.Captured) (interface{}, error) `json:"-" yaml:"-"`
}

// Exec runs the function.  A nil FuncHandler just returns the
// captures.
func (h *FuncHandler) Exec(ctx context.Context, value interface{}, captured *match.Captured) (interface{}, error) {
	if h == nil || h.F == nil {
		return captured, nil
	}
	return h.F(ctx, value, captured)
}

// HandlerSource can be compiled to a Handler.
type HandlerSource struct {
	Interpreter string      `json:"interpreter,omitempty" yaml:",omitempty"`
	Source      interface{} `json:"source"`
}

// Copy makes a shallow copy.
func (s *HandlerSource) Copy() *HandlerSource {
	if s == nil {
		return nil
	}
	return &HandlerSource{
		Interpreter: s.Interpreter,
		Source:      s.Source,
	}
}

// Compile attempts to compile the HandlerSource into a Handler using
// the given interpreters, which defaults to DefaultInterpreters.
func (s *HandlerSource) Compile(ctx context.Context, interpreters map[string]Interpreter) (Handler, error) {
	if interpreters == nil {
		interpreters = DefaultInterpreters
	}

	interpreter, have := interpreters[s.Interpreter]
	if !have {
		return nil, InterpreterNotFound
	}

	compiled, err := interpreter.Compile(ctx, s.Source)
	if err != nil {
		return nil, err
	}

	return &FuncHandler{
		F: func(ctx context.Context, value interface{}, captured *match.Captured) (interface{}, error) {
			return interpreter.Exec(ctx, value, captured, s.Source, compiled)
		},
	}, nil
}

// Case pairs a pattern with a handler.
type Case struct {
	// Name is optional and only used for diagnostics.
	Name string `json:"name,omitempty" yaml:",omitempty"`

	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	Pattern interface{} `json:"pattern"`

	Handler Handler `json:"-" yaml:"-"`

	// HandlerSource, if given, is compiled into Handler by
	// Cases.Compile.
	HandlerSource *HandlerSource `json:"handler,omitempty" yaml:"handler,omitempty"`
}

// Copy makes a shallow copy (sharing the pattern and handler).
func (c *Case) Copy() *Case {
	return &Case{
		Name:          c.Name,
		Doc:           c.Doc,
		Pattern:       c.Pattern,
		Handler:       c.Handler,
		HandlerSource: c.HandlerSource.Copy(),
	}
}

// Cases is an ordered list of Cases.
//
// Order matters: Dispatch tries patterns first to last, so put the
// most specific patterns first.  There is no reachability or overlap
// analysis.
type Cases struct {
	// Name is used in CasesExhausted messages.
	Name string `json:"name,omitempty" yaml:",omitempty"`

	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	Cases []*Case `json:"cases"`

	// Matcher, if nil, defaults to match.DefaultMatcher.
	Matcher *match.Matcher `json:"-" yaml:"-"`

	// PatternParser, if not nil, is applied to every case's
	// Pattern by Compile.  Lets deserialized case sets write
	// patterns as plain trees (see notation.Registry.FromTree).
	PatternParser func(interface{}) (interface{}, error) `json:"-" yaml:"-"`
}

// NewCases makes an empty Cases with the given name.
func NewCases(name string) *Cases {
	return &Cases{
		Name:  name,
		Cases: make([]*Case, 0, 8),
	}
}

// Add appends a case, returning the Cases for chaining.
func (cs *Cases) Add(c *Case) *Cases {
	cs.Cases = append(cs.Cases, c)
	return cs
}

// On appends a pattern/handler pair.  A nil handler means Dispatch
// returns the captures themselves.
func (cs *Cases) On(pattern interface{}, handler Handler) *Cases {
	return cs.Add(&Case{
		Pattern: pattern,
		Handler: handler,
	})
}

// OnFunc is On with a bare Go function.
func (cs *Cases) OnFunc(pattern interface{}, f func(context.Context, interface{}, *match.Captured) (interface{}, error)) *Cases {
	return cs.On(pattern, &FuncHandler{F: f})
}

// Copy makes a deep-ish copy.
func (cs *Cases) Copy() *Cases {
	acc := make([]*Case, len(cs.Cases))
	for i, c := range cs.Cases {
		acc[i] = c.Copy()
	}
	return &Cases{
		Name:          cs.Name,
		Doc:           cs.Doc,
		Cases:         acc,
		Matcher:       cs.Matcher,
		PatternParser: cs.PatternParser,
	}
}

// Compile compiles all HandlerSources into Handlers.
//
// When force is false, a case that already has a Handler is left
// alone.
func (cs *Cases) Compile(ctx context.Context, interpreters map[string]Interpreter, force bool) error {
	for _, c := range cs.Cases {
		if cs.PatternParser != nil {
			pattern, err := cs.PatternParser(c.Pattern)
			if err != nil {
				return err
			}
			c.Pattern = pattern
		}
		if c.HandlerSource == nil {
			continue
		}
		if c.Handler != nil && !force {
			continue
		}
		handler, err := c.HandlerSource.Compile(ctx, interpreters)
		if err != nil {
			name := c.Name
			if name == "" {
				name = adt.Render(c.Pattern)
			}
			return errors.New(err.Error() + ": case: " + name)
		}
		c.Handler = handler
	}
	return nil
}

// CasesExhausted occurs when no case's pattern matches the dispatched
// value.
type CasesExhausted struct {
	Value interface{}
	Cases *Cases
}

func (e *CasesExhausted) Error() string {
	name := e.Cases.Name
	if name == "" {
		name = "cases"
	}
	return "no case for " + adt.Render(e.Value) + " in " + name
}

// Dispatch finds the first case whose pattern matches the value and
// invokes its handler with the value and the captures.
//
// A matching case with a nil Handler returns the *match.Captured.  If
// no pattern matches, the error is a *CasesExhausted; the individual
// match failures are not surfaced.
func (cs *Cases) Dispatch(ctx context.Context, value interface{}) (interface{}, error) {
	m := cs.Matcher
	if m == nil {
		m = match.DefaultMatcher
	}
	for _, c := range cs.Cases {
		captured, err := m.Match(c.Pattern, value)
		if err != nil {
			continue
		}
		if c.Handler == nil {
			return captured, nil
		}
		return c.Handler.Exec(ctx, value, captured)
	}
	return nil, &CasesExhausted{
		Value: value,
		Cases: cs,
	}
}
