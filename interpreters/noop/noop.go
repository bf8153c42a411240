package noop

import (
	"context"
	"log"

	"github.com/varmint/varmint/cases"
	"github.com/varmint/varmint/match"
)

// Interpreter is a cases.Interpreter which just returns the
// dispatched value without modification.
type Interpreter struct {
	// Silent, if false, will suppress warning log messages.
	Silent bool
}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func (i *Interpreter) Compile(ctx context.Context, code interface{}) (interface{}, error) {
	if !i.Silent {
		log.Printf("warning: Using noop Interpreter for compilation")
	}
	return nil, nil
}

func (i *Interpreter) Exec(ctx context.Context, value interface{}, captured *match.Captured, code interface{}, compiled interface{}) (interface{}, error) {
	if !i.Silent {
		log.Printf("warning: Using noop Interpreter for execution")
	}
	return value, nil
}

var _ cases.Interpreter = &Interpreter{}
