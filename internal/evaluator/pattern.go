package evaluator

import (
	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/diagnostics"
	"github.com/avalon-lang/avalon/internal/value"
)

// matchPattern mirrors the checker's pattern walk, but against a runtime
// value instead of a type instance, and binds captures into env rather
// than a static scope. The checker already proved every capture,
// constructor reference and literal shape is well-typed, so this pass
// only needs to decide true/false and perform the bindings a successful
// match introduces.
func (e *Evaluator) matchPattern(p ast.Pattern, v value.Value, env *Environment, ns string) (bool, *diagnostics.Error) {
	switch n := p.(type) {
	case *ast.UnderscorePattern:
		return true, nil

	case *ast.LiteralPattern:
		lit := &ast.Literal{Base: n.Base, Category: n.Category, Raw: n.Raw}
		litVal, err := e.evalLiteral(lit)
		if err != nil {
			return false, err
		}
		return valuesEqual(litVal, v), nil

	case *ast.IdentifierPattern:
		if n.ResolvedIsConstructor {
			return v.Kind == value.KUser && v.CtorName == n.Name && len(v.Fields) == 0, nil
		}
		env.Define(n.Name, v, false)
		return true, nil

	case *ast.CallPattern:
		if v.Kind != value.KUser || v.CtorName != n.Name {
			return false, nil
		}
		for i, argPat := range n.Args {
			if i >= len(v.Fields) {
				break
			}
			ok, err := e.matchPattern(argPat, v.Fields[i], env, ns)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil

	default:
		return false, diagnostics.New(diagnostics.PhaseInterpreter, diagnostics.ErrInterpret, p.GetToken(),
			"unhandled pattern kind %T", p)
	}
}
