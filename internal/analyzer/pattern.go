package analyzer

import (
	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/config"
	"github.com/avalon-lang/avalon/internal/diagnostics"
	"github.com/avalon-lang/avalon/internal/symbols"
	"github.com/avalon-lang/avalon/internal/types"
)

// checkPattern validates a match's right-hand pattern against the
// already-inferred instance of its left-hand value, binding any capture
// variables the pattern introduces directly into scope — the same scope
// the surrounding statement continues to check in, since a pattern
// capture's whole purpose is to be visible to the code that runs once
// the match succeeds.
func (c *Checker) checkPattern(p ast.Pattern, valInst *types.Instance, scope *symbols.Scope, ns string) *diagnostics.Error {
	switch n := p.(type) {
	case *ast.UnderscorePattern:
		return nil

	case *ast.LiteralPattern:
		var name string
		switch n.Category {
		case ast.LitInt:
			name = config.TypeInt
		case ast.LitFloat:
			name = config.TypeFloat
		case ast.LitDecimal:
			name = config.TypeDec
		case ast.LitString:
			name = config.TypeString
		default:
			return diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrInvalidExpression, n.GetToken(),
				"unsupported literal pattern category %v", n.Category)
		}
		litInst, err := resolveScalar(scope, ns, n.GetToken(), name)
		if err != nil {
			return err
		}
		if !types.WeakEqual(litInst, valInst) {
			return diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrInvalidType, n.GetToken(),
				"literal pattern type %s does not match matched value type %s", litInst.String(), valInst.String())
		}
		return nil

	case *ast.IdentifierPattern:
		lookupNS := n.Namespace
		if lookupNS == "" {
			lookupNS = config.WildcardNamespace
		}
		if ctor, ok := scope.FindNullaryConstructor(lookupNS, ns, n.Name); ok {
			n.ResolvedIsConstructor = true
			ctorInst := instanceFromConstructor(ctor, n.GetToken())
			if !types.WeakEqual(ctorInst, valInst) {
				return diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrInvalidType, n.GetToken(),
					"pattern constructor %s does not match matched value type %s", n.Name, valInst.String())
			}
			return nil
		}
		n.ResolvedIsConstructor = false
		v := &symbols.Variable{Token: n.GetToken(), Name: n.Name, Mutable: false, DeclaredType: valInst, Validity: symbols.Valid}
		return scope.AddVariable(v)

	case *ast.CallPattern:
		lookupNS := n.Namespace
		if lookupNS == "" {
			lookupNS = config.WildcardNamespace
		}
		ctor, err := scope.LookupConstructor(lookupNS, ns, n.Name, len(n.Args), n.GetToken())
		if err != nil {
			return err
		}
		ctorInst := instanceFromConstructor(ctor, n.GetToken())
		if !types.WeakEqual(ctorInst, valInst) {
			return diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrInvalidType, n.GetToken(),
				"pattern constructor %s does not match matched value type %s", n.Name, valInst.String())
		}
		if ctor.Kind == types.RecordConstructor {
			for i, argPat := range n.Args {
				if i >= len(ctor.Fields) {
					break
				}
				if err := c.checkPattern(argPat, ctor.Fields[i].Instance, scope, ns); err != nil {
					return err
				}
			}
		} else {
			for i, argPat := range n.Args {
				if i >= len(ctor.Params) {
					break
				}
				if err := c.checkPattern(argPat, ctor.Params[i], scope, ns); err != nil {
					return err
				}
			}
		}
		return nil

	default:
		return diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrInvalidExpression, p.GetToken(),
			"unhandled pattern kind %T", p)
	}
}
