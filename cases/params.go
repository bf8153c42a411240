package cases

// Handler parameters by name.
//
// A ParamsHandler declares the capture names it wants, and Dispatch
// hands it one positional argument per declared name.  This is pure
// name-matching: nothing here inspects Go function signatures.

import (
	"context"

	"github.com/varmint/varmint/match"
)

// MissingArg occurs when a handler declares a parameter that the
// matched pattern did not capture.
type MissingArg struct {
	Name string
}

func (e *MissingArg) Error() string {
	return "no capture for parameter '" + e.Name + "'"
}

// Args selects captures by name, one per param, in param order.
func Args(captured *match.Captured, params []string) ([]interface{}, error) {
	args := make([]interface{}, len(params))
	for i, name := range params {
		x, have := captured.Get(name)
		if !have {
			return nil, &MissingArg{Name: name}
		}
		args[i] = x
	}
	return args, nil
}

// ParamsFor derives a parameter list from a pattern: the names of its
// bindings in traversal order, without duplicates.
func ParamsFor(pattern interface{}) []string {
	bs := match.Bindings(pattern)
	seen := make(map[string]bool, len(bs))
	params := make([]string, 0, len(bs))
	for _, b := range bs {
		name := string(b)
		if seen[name] {
			continue
		}
		seen[name] = true
		params = append(params, name)
	}
	return params
}

// ParamsHandler is a Handler that receives captures as positional
// arguments named by Params.
type ParamsHandler struct {
	Params []string
	F      func(ctx context.Context, args ...interface{}) (interface{}, error)
}

// OnParams appends a case whose handler receives the named captures
// positionally.
func (cs *Cases) OnParams(pattern interface{}, params []string, f func(ctx context.Context, args ...interface{}) (interface{}, error)) *Cases {
	if params == nil {
		params = ParamsFor(pattern)
	}
	return cs.On(pattern, &ParamsHandler{
		Params: params,
		F:      f,
	})
}

func (h *ParamsHandler) Exec(ctx context.Context, value interface{}, captured *match.Captured) (interface{}, error) {
	args, err := Args(captured, h.Params)
	if err != nil {
		return nil, err
	}
	return h.F(ctx, args...)
}
