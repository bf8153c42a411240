package match

import (
	"errors"
	"strings"
)

// FromTree rewrites a plain tree -- typically the result of decoding
// JSON or YAML -- into a pattern.
//
// Strings of the form "?name" become Bindings ("?" alone is the
// don't-care binding), and "?name..." becomes a BindingRest.  Maps
// and slices are rewritten recursively; map[interface{}]interface{}
// (which some YAML decoders like to produce) is converted to
// map[string]interface{} along the way.  Everything else passes
// through unchanged.
//
// There is no escape for a literal leading "?"; if you need one,
// build the pattern programmatically instead.
func FromTree(x interface{}) (interface{}, error) {
	switch vv := x.(type) {
	case string:
		if !strings.HasPrefix(vv, "?") {
			return vv, nil
		}
		name := vv[1:]
		if strings.HasSuffix(name, "...") {
			return NewBindingRest(strings.TrimSuffix(name, "..."))
		}
		return NewBinding(name)
	case map[string]interface{}:
		m := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			y, err := FromTree(v)
			if err != nil {
				return nil, err
			}
			m[k] = y
		}
		return m, nil
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			s, is := k.(string)
			if !is {
				return nil, errors.New("FromTree encountered a non-string map key")
			}
			y, err := FromTree(v)
			if err != nil {
				return nil, err
			}
			m[s] = y
		}
		return m, nil
	case []interface{}:
		xs := make([]interface{}, len(vv))
		for i, v := range vv {
			y, err := FromTree(v)
			if err != nil {
				return nil, err
			}
			xs[i] = y
		}
		return xs, nil
	default:
		return x, nil
	}
}
