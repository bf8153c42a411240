// Package tools has development utilities that don't belong in the
// core packages.
package tools

import (
	"context"
	"fmt"
	"log"

	"github.com/varmint/varmint/adt"
	"github.com/varmint/varmint/cases"
	"github.com/varmint/varmint/match"
	"github.com/varmint/varmint/notation"
)

// Step is one check: either a pattern/value match with expected
// captures, or a value dispatched through the session's cases with an
// expected result.
type Step struct {
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	Pattern interface{} `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Value   interface{} `json:"value,omitempty" yaml:"value,omitempty"`

	// Captures are the expected captures.  Omitted means only
	// that the match must succeed.
	Captures map[string]interface{} `json:"captures,omitempty" yaml:"captures,omitempty"`

	// Fails, if true, means the match (or dispatch) must fail.
	Fails bool `json:"fails,omitempty" yaml:"fails,omitempty"`

	// Error, if given, must be the exact error message.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	Dispatch interface{} `json:"dispatch,omitempty" yaml:"dispatch,omitempty"`
	Result   interface{} `json:"result,omitempty" yaml:"result,omitempty"`
}

// Session is a declarative test: families, optional cases, and steps.
type Session struct {
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	Families []notation.FamilyDecl `json:"families,omitempty" yaml:"families,omitempty"`

	Cases *cases.Cases `json:"cases,omitempty" yaml:"cases,omitempty"`

	Tests []*Step `json:"tests" yaml:"tests"`

	// Interpreters are used to compile any handler sources.
	Interpreters map[string]cases.Interpreter `json:"-" yaml:"-"`

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`

	// Registry is built from Families during Run.
	Registry *notation.Registry `json:"-" yaml:"-"`
}

// Run builds the declared families and checks every step.
func (s *Session) Run(ctx context.Context) error {
	r, err := notation.DefineFamilies(s.Families)
	if err != nil {
		return err
	}
	s.Registry = r

	cs := s.Cases
	if cs != nil {
		cs.PatternParser = r.FromTree
		if err := cs.Compile(ctx, s.Interpreters, false); err != nil {
			return err
		}
	}

	for i, step := range s.Tests {
		if err := s.run(ctx, cs, step); err != nil {
			doc := step.Doc
			if doc == "" {
				doc = fmt.Sprintf("step %d", i)
			}
			return fmt.Errorf("%s: %w", doc, err)
		}
		if s.Verbose {
			log.Printf("step %d happy", i)
		}
	}

	return nil
}

func (s *Session) run(ctx context.Context, cs *cases.Cases, step *Step) error {
	if step.Dispatch != nil {
		return s.dispatch(ctx, cs, step)
	}

	pattern, err := s.Registry.FromTree(step.Pattern)
	if err != nil {
		return err
	}
	value, err := s.Registry.FromTree(step.Value)
	if err != nil {
		return err
	}

	c, err := match.Match(pattern, value)
	if err != nil {
		if step.Fails {
			if step.Error != "" && step.Error != err.Error() {
				return fmt.Errorf("failed with %q, not %q", err.Error(), step.Error)
			}
			return nil
		}
		return err
	}
	if step.Fails {
		return fmt.Errorf("matched (%s) but shouldn't have", c)
	}

	for name, tree := range step.Captures {
		want, err := s.Registry.FromTree(tree)
		if err != nil {
			return err
		}
		got, have := c.Get(name)
		if !have {
			return fmt.Errorf("no capture for %q in %s", name, c)
		}
		if !adt.Equal(got, want) {
			return fmt.Errorf("capture %q: got %s, want %s",
				name, adt.Render(got), adt.Render(want))
		}
	}

	return nil
}

func (s *Session) dispatch(ctx context.Context, cs *cases.Cases, step *Step) error {
	if cs == nil {
		return fmt.Errorf("no cases declared")
	}

	value, err := s.Registry.FromTree(step.Dispatch)
	if err != nil {
		return err
	}

	got, err := cs.Dispatch(ctx, value)
	if err != nil {
		if step.Fails {
			if step.Error != "" && step.Error != err.Error() {
				return fmt.Errorf("failed with %q, not %q", err.Error(), step.Error)
			}
			return nil
		}
		return err
	}
	if step.Fails {
		return fmt.Errorf("dispatched (%s) but shouldn't have", adt.Render(got))
	}

	if step.Result != nil {
		want, err := s.Registry.FromTree(step.Result)
		if err != nil {
			return err
		}
		if !adt.Equal(got, want) {
			return fmt.Errorf("result: got %s, want %s",
				adt.Render(got), adt.Render(want))
		}
	}

	return nil
}
