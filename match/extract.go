package match

import (
	"regexp"
	"sort"

	"github.com/varmint/varmint/adt"
)

// Bindings returns the bindings the pattern would capture on a
// successful match, in traversal order.
//
// Variant classes contribute their declared field names; regexps
// contribute their named groups.  Don't-care (empty-name) bindings
// are skipped.  A name can appear more than once if the pattern binds
// it in more than one place.
func Bindings(pattern interface{}) []Binding {
	acc := make([]Binding, 0, 8)
	extract(pattern, &acc)
	return acc
}

func extract(pattern interface{}, acc *[]Binding) {
	switch p := pattern.(type) {
	case Binding:
		if p != "" {
			*acc = append(*acc, p)
		}
	case BindingRest:
		if p != "" {
			*acc = append(*acc, Binding(p))
		}
	case *regexp.Regexp:
		for i, name := range p.SubexpNames() {
			if i == 0 || name == "" {
				continue
			}
			*acc = append(*acc, Binding(name))
		}
	case *adt.Variant:
		for _, name := range p.FieldNames() {
			*acc = append(*acc, Binding(name))
		}
	case *adt.Instance:
		for i := 0; i < p.NumFields(); i++ {
			extract(p.FieldAt(i), acc)
		}
	case map[string]interface{}:
		keys := make([]string, 0, len(p))
		for k := range p {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			extract(p[k], acc)
		}
	case *OrderedMap:
		for _, k := range p.keys {
			extract(p.values[k], acc)
		}
	case []interface{}:
		for _, x := range p {
			extract(x, acc)
		}
	}
}
