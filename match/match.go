// Package match implements the structural pattern matcher.
//
// A pattern is an ordinary value tree that can contain Bindings,
// BindingRests, compiled regular expressions, variant classes or
// instances (package adt), mappings, and sequences.  Matching a
// pattern against a value either produces a Captured or fails with a
// *MatchFailed.
package match

import (
	"regexp"
	"sort"

	"github.com/varmint/varmint/adt"
)

type Matcher struct {
	// StrictBindings turns a repeated capture of one name within a
	// single match into an error.
	//
	// By default a pattern that binds the same name in two sibling
	// positions silently keeps the later value.  That behavior can
	// hide mistakes, since nothing checks that the two occurrences
	// agreed.  With this switch on, the second capture of a name
	// fails the match instead.
	StrictBindings bool
}

// DefaultMatcher is the Matcher that the package-level Match uses.
var DefaultMatcher = &Matcher{}

// Match matches the pattern against the value using the
// DefaultMatcher.
func Match(pattern interface{}, value interface{}) (*Captured, error) {
	return DefaultMatcher.Match(pattern, value)
}

// MatchFailed reports why a match failed.  It carries the offending
// pattern and value (as seen at the point of first failure).
type MatchFailed struct {
	Pattern interface{}
	Value   interface{}
	msg     string
}

func (e *MatchFailed) Error() string {
	return e.msg
}

func failed(pattern, value interface{}) *MatchFailed {
	return &MatchFailed{
		Pattern: pattern,
		Value:   value,
		msg:     "expected " + adt.Render(pattern) + ", got " + adt.Render(value),
	}
}

func failedKey(pattern, value interface{}, key string) *MatchFailed {
	return &MatchFailed{
		Pattern: pattern,
		Value:   value,
		msg:     "pattern has key '" + key + "' not in value",
	}
}

func failedLengths(pattern, value interface{}) *MatchFailed {
	return &MatchFailed{
		Pattern: pattern,
		Value:   value,
		msg:     "pattern and value had different lengths",
	}
}

// Match matches the pattern against the value, returning the captures
// or a *MatchFailed.
func (m *Matcher) Match(pattern interface{}, value interface{}) (*Captured, error) {
	acc := NewCaptured()
	if err := m.match(pattern, value, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// match dispatches on the pattern's kind.  The cases are tried in
// priority order: bindings first, then regexps, variant classes,
// variant instances, mappings, sequences, and finally literal
// equality.
func (m *Matcher) match(pattern interface{}, value interface{}, acc *Captured) error {
	switch p := pattern.(type) {

	case Binding:
		return m.capture(acc, string(p), value)

	case BindingRest:
		return &MatchFailed{
			Pattern: p,
			Value:   value,
			msg:     "rest binding must end a sequence pattern",
		}

	case *regexp.Regexp:
		return m.matchRegexp(p, value, acc)

	case *adt.Variant:
		return m.matchClass(p, value, acc)

	case *adt.Instance:
		return m.matchInstance(p, value, acc)

	case map[string]interface{}:
		// Plain maps have no inherent order, so captures
		// accumulate in sorted key order.
		keys := make([]string, 0, len(p))
		for k := range p {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return m.matchMapping(keys, func(k string) interface{} { return p[k] },
			pattern, value, acc)

	case *OrderedMap:
		return m.matchMapping(p.keys, func(k string) interface{} { return p.values[k] },
			pattern, value, acc)

	case []interface{}:
		return m.matchSeq(p, value, acc)

	default:
		if !adt.Equal(pattern, value) {
			return failed(pattern, value)
		}
		return nil
	}
}

// capture records name -> value, honoring the empty-name don't-care
// rule and the StrictBindings switch.
func (m *Matcher) capture(acc *Captured, name string, value interface{}) error {
	if name == "" {
		return nil
	}
	if m.StrictBindings {
		if _, have := acc.Get(name); have {
			return &MatchFailed{
				Pattern: Binding(name),
				Value:   value,
				msg:     `binding "` + name + `" captured more than once`,
			}
		}
	}
	acc.Add(name, value)
	return nil
}

// matchRegexp requires a string value and a match starting at the
// beginning of that string ("match", not "search").  Named groups
// become captures, in group-index order.
func (m *Matcher) matchRegexp(p *regexp.Regexp, value interface{}, acc *Captured) error {
	s, is := value.(string)
	if !is {
		return failed(p, value)
	}

	// The leftmost match is the earliest one, so if it doesn't
	// start at 0, no match does.
	loc := p.FindStringSubmatchIndex(s)
	if loc == nil || loc[0] != 0 {
		return failed(p, value)
	}

	for i, name := range p.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		if loc[2*i] < 0 {
			// The group didn't participate in the match.
			if err := m.capture(acc, name, nil); err != nil {
				return err
			}
			continue
		}
		if err := m.capture(acc, name, s[loc[2*i]:loc[2*i+1]]); err != nil {
			return err
		}
	}

	return nil
}

// matchClass matches a bare variant (no instance) against a value:
// the value must be an instance of exactly that variant, and every
// declared field is auto-bound under its field name.
func (m *Matcher) matchClass(class *adt.Variant, value interface{}, acc *Captured) error {
	in, is := value.(*adt.Instance)
	if !is || in.Variant() != class {
		return failed(class, value)
	}
	for i, name := range class.FieldNames() {
		if err := m.capture(acc, name, in.FieldAt(i)); err != nil {
			return err
		}
	}
	return nil
}

// matchInstance matches a constructed pattern instance field by
// field.
func (m *Matcher) matchInstance(p *adt.Instance, value interface{}, acc *Captured) error {
	in, is := value.(*adt.Instance)
	if !is || in.Variant() != p.Variant() {
		return failed(p, value)
	}
	for i := 0; i < p.NumFields(); i++ {
		if err := m.match(p.FieldAt(i), in.FieldAt(i), acc); err != nil {
			return err
		}
	}
	return nil
}

func (m *Matcher) matchMapping(keys []string, get func(string) interface{}, pattern, value interface{}, acc *Captured) error {
	lookup, ok := mappingValue(value)
	if !ok {
		return failed(pattern, value)
	}
	for _, k := range keys {
		fv, have := lookup(k)
		if !have {
			return failedKey(pattern, value, k)
		}
		if err := m.match(get(k), fv, acc); err != nil {
			return err
		}
	}
	// Keys present only in the value are ignored.
	return nil
}

func mappingValue(value interface{}) (func(string) (interface{}, bool), bool) {
	switch vv := value.(type) {
	case map[string]interface{}:
		return func(k string) (interface{}, bool) {
			v, have := vv[k]
			return v, have
		}, true
	case *OrderedMap:
		return vv.Get, true
	default:
		return nil, false
	}
}

func (m *Matcher) matchSeq(ps []interface{}, value interface{}, acc *Captured) error {
	it, lazy, ok := sequenceValue(value)
	if !ok {
		return failed(ps, value)
	}

	n := len(ps)
	restName, hasRest := "", false
	if 0 < n {
		if r, is := ps[n-1].(BindingRest); is {
			restName, hasRest = string(r), true
			n--
		}
	}

	for i := 0; i < n; i++ {
		x, have := it.Next()
		if !have {
			return failedLengths(ps, value)
		}
		if err := m.match(ps[i], x, acc); err != nil {
			return err
		}
	}

	if hasRest {
		if restName == "" {
			// Don't-care rest: don't even look at the tail.
			return nil
		}
		if lazy {
			// Leave the tail unrealized; the caller decides
			// how much of it to consume.
			return m.capture(acc, restName, it)
		}
		return m.capture(acc, restName, Drain(it))
	}

	if _, have := it.Next(); have {
		return failedLengths(ps, value)
	}
	return nil
}

func sequenceValue(value interface{}) (it Seq, lazy bool, ok bool) {
	switch vv := value.(type) {
	case []interface{}:
		return &sliceSeq{xs: vv}, false, true
	case string:
		return &stringSeq{runes: []rune(vv)}, false, true
	case Seq:
		return vv, true, true
	default:
		return nil, false, false
	}
}
