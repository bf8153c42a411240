package goja

import (
	"context"
	"fmt"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
)

// span marks the source range of one top-level require() statement.
type span struct {
	from, to int
	name     string
}

// InlineRequires rewrites handler source to replace each top-level
// require("lib") statement with the library source that the given
// provider returns for "lib".
//
// We rewrite source text rather than ASTs because Goja doesn't really
// support emitting a modified AST or Program.  We also don't want to
// install a require() function in the runtime environment, since that
// would need eval and would defeat precompilation when a case set is
// compiled.  Precompiling inlined source pays off when libraries are
// big.
func InlineRequires(ctx context.Context, src string, provider func(context.Context, string) (string, error)) (string, error) {
	prog, err := parser.ParseFile(nil, "", src, 0)
	if err != nil {
		return "", err
	}

	var spans []span
	for _, stmt := range prog.Body {
		exp, is := stmt.(*ast.ExpressionStatement)
		if !is {
			continue
		}
		call, is := exp.Expression.(*ast.CallExpression)
		if !is {
			continue
		}
		callee, is := call.Callee.(*ast.Identifier)
		if !is || callee.Name != "require" {
			continue
		}
		if len(call.ArgumentList) != 1 {
			return "", fmt.Errorf("bad require args: %#v", call.ArgumentList)
		}
		lit, is := call.ArgumentList[0].(*ast.StringLiteral)
		if !is {
			return "", fmt.Errorf("bad require arg: %#v", call.ArgumentList[0])
		}
		spans = append(spans, span{
			from: int(exp.Idx0()),
			to:   int(exp.Idx1()),
			name: string(lit.Value),
		})
	}

	if len(spans) == 0 {
		return src, nil
	}

	var inlined strings.Builder
	at := 0
	for _, s := range spans {
		inlined.WriteString(src[at : s.from-1])
		lib, err := provider(ctx, s.name)
		if err != nil {
			return "", err
		}
		inlined.WriteString(lib)
		at = s.to
	}
	inlined.WriteString(src[at:])

	return inlined.String(), nil
}
