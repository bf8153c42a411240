// Package interpreters assembles the standard handler interpreters.
package interpreters

import (
	"github.com/varmint/varmint/cases"
	"github.com/varmint/varmint/interpreters/goja"
	"github.com/varmint/varmint/interpreters/noop"
)

func Standard() map[string]cases.Interpreter {
	is := make(map[string]cases.Interpreter)

	js := goja.NewInterpreter()
	is["goja"] = js
	is["ecmascript"] = js // For convenience

	is["noop"] = noop.NewInterpreter()

	return is
}
