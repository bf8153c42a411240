package match

import (
	"strings"

	"github.com/varmint/varmint/adt"
)

// Captured is the result of a successful match: a mapping from
// capture names to matched values, in the order the bindings were
// first encountered during the match traversal.
//
// A later capture of an already-present name overwrites the value but
// keeps the original position.  See Matcher.StrictBindings for a way
// to make that an error instead.
type Captured struct {
	names  []string
	values map[string]interface{}
}

// NewCaptured makes an empty capture set.
func NewCaptured() *Captured {
	return &Captured{
		values: make(map[string]interface{}, 8),
	}
}

// Add records a capture; modifies and returns the Captured.
func (c *Captured) Add(name string, v interface{}) *Captured {
	if _, have := c.values[name]; !have {
		c.names = append(c.names, name)
	}
	c.values[name] = v
	return c
}

// Get looks up a capture by name.
func (c *Captured) Get(name string) (interface{}, bool) {
	v, have := c.values[name]
	return v, have
}

// Names returns the capture names in first-encounter order.
func (c *Captured) Names() []string {
	return append([]string(nil), c.names...)
}

// Len returns the number of captures.
func (c *Captured) Len() int {
	return len(c.names)
}

// Map returns the captures as a plain map (a copy).
func (c *Captured) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(c.values))
	for k, v := range c.values {
		m[k] = v
	}
	return m
}

// Copy makes a shallow copy of the Captured.
func (c *Captured) Copy() *Captured {
	acc := NewCaptured()
	for _, name := range c.names {
		acc.Add(name, c.values[name])
	}
	return acc
}

func (c *Captured) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range c.names {
		if 0 < i {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(adt.Render(c.values[name]))
	}
	b.WriteByte('}')
	return b.String()
}
