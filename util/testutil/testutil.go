// Package testutil has a couple of helpers for tests that sling JSON
// around.
package testutil

import (
	"encoding/json"
	"fmt"
)

// JS renders its argument as JSON for use in test diagnostics.  If
// the marshaling fails, you get a %#v rendering instead of an error.
func JS(x interface{}) string {
	js, err := json.Marshal(&x)
	if err != nil {
		return fmt.Sprintf("%#v", x)
	}
	return string(js)
}

// Dwimjs parses a string or byte slice as JSON and panics if it
// can't.  Anything else passes through unchanged, which makes writing
// expected values in tests a little more pleasant.
//
// See https://en.wikipedia.org/wiki/DWIM.
func Dwimjs(x interface{}) interface{} {
	switch v := x.(type) {
	case []byte:
		return Dwimjs(string(v))
	case string:
		var parsed interface{}
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			panic(fmt.Errorf("testutil.Dwimjs %s on %s", err, v))
		}
		return parsed
	default:
		return x
	}
}
