package analyzer

import (
	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/diagnostics"
	"github.com/avalon-lang/avalon/internal/symbols"
	"github.com/avalon-lang/avalon/internal/types"
)

// CheckBlock checks every statement of b in its own child scope, so a
// local variable declared inside the block never leaks past it.
func (c *Checker) CheckBlock(b *ast.Block, parent *symbols.Scope, ctx *funcCtx) {
	scope := symbols.NewScope(parent, "block")
	for _, stmt := range b.Statements {
		c.CheckStatement(stmt, scope, ctx)
	}
}

// CheckStatement dispatches over every statement variant.
func (c *Checker) CheckStatement(s ast.Statement, scope *symbols.Scope, ctx *funcCtx) {
	switch n := s.(type) {
	case *ast.ExpressionStatement:
		c.Infer(n.Expr, scope, ctx.Namespace)

	case *ast.VarDecl:
		c.checkLocalVarDecl(n, scope, ctx.Namespace)

	case *ast.IfStatement:
		for _, branch := range n.Branches {
			if _, err := c.Infer(branch.Cond, scope, ctx.Namespace); err != nil {
				continue
			}
			c.CheckBlock(branch.Body, scope, ctx)
		}
		if n.Else != nil {
			c.CheckBlock(n.Else, scope, ctx)
		}

	case *ast.WhileStatement:
		if _, err := c.Infer(n.Cond, scope, ctx.Namespace); err == nil {
			c.CheckBlock(n.Body, scope, ctx)
		}

	case *ast.BreakStatement, *ast.ContinueStatement, *ast.PassStatement:
		// No instance to infer and no enclosing-loop bookkeeping kept at
		// check time; the evaluator is where break/continue actually
		// unwind a loop.

	case *ast.ReturnStatement:
		c.checkReturn(n, scope, ctx)

	default:
		c.Sink.Report(diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrInvalidExpression, s.GetToken(),
			"checker: unhandled statement kind %T", s))
	}
}

func (c *Checker) checkReturn(n *ast.ReturnStatement, scope *symbols.Scope, ctx *funcCtx) {
	if n.Value == nil {
		if ctx.ReturnType != nil {
			c.Sink.Report(diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrInvalidType, n.GetToken(),
				"bare return in a function declared to return %s", ctx.ReturnType.String()))
		}
		return
	}
	valInst, err := c.Infer(n.Value, scope, ctx.Namespace)
	if err != nil {
		return
	}
	if ctx.ReturnType == nil {
		c.Sink.Report(diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrInvalidType, n.GetToken(),
			"return with a value in a function declared with no return type"))
		return
	}
	if !types.StrongEqual(valInst, ctx.ReturnType) {
		c.Sink.Report(diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrInvalidType, n.GetToken(),
			"return value type %s does not match declared return type %s", valInst.String(), ctx.ReturnType.String()))
	}
}

// checkLocalVarDecl mirrors checkGlobalVarDecl's validation but
// registers the variable in a local scope first, since a local
// declaration's own symbol isn't pre-registered by BuildScope the way a
// global's is.
func (c *Checker) checkLocalVarDecl(vd *ast.VarDecl, scope *symbols.Scope, ns string) {
	v := &symbols.Variable{
		Token:       vd.GetToken(),
		Name:        vd.Name,
		Mutable:     vd.Mutable,
		Initializer: vd.Initializer,
		Validity:    symbols.Unknown,
	}
	if err := scope.AddVariable(v); err != nil {
		c.Sink.Report(err)
		return
	}
	c.validateVarDecl(vd, v, scope, ns)
}

// validateVarDecl enforces the declared-type-or-initializer rule and,
// when both are present, checks them against each other; when only an
// initializer is present, the inferred instance becomes the variable's
// declared type so every later reference resolves consistently. A
// string, tuple, list, or map initializer forces the binding immutable
// regardless of `var`/`val`, since those are the composite value kinds
// whose aliasing semantics this project's mutability model doesn't
// extend to.
func (c *Checker) validateVarDecl(vd *ast.VarDecl, v *symbols.Variable, scope *symbols.Scope, ns string) {
	if vd.TypeAnn == nil && vd.Initializer == nil {
		c.Sink.Report(diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrInvalidVariable, vd.GetToken(),
			"variable %q needs either an explicit type or an initializer", vd.Name))
		return
	}

	var declared *types.Instance
	if vd.TypeAnn != nil {
		if _, _, err := types.CheckInstance(vd.TypeAnn, scope, ns, nil); err != nil {
			c.Sink.Report(err)
			return
		}
		declared = vd.TypeAnn
	}

	if vd.Initializer != nil {
		initInst, err := c.Infer(vd.Initializer, scope, ns)
		if err != nil {
			return
		}
		if declared != nil {
			if !types.WeakEqual(declared, initInst) {
				c.Sink.Report(diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrInvalidType, vd.GetToken(),
					"variable %q declared as %s but initialized with %s", vd.Name, declared.String(), initInst.String()))
				return
			}
		} else {
			declared = initInst
		}
		if forcesImmutable(initInst) {
			v.Mutable = false
		}
	}

	v.DeclaredType = declared
	v.Validity = symbols.Valid
}

func forcesImmutable(inst *types.Instance) bool {
	if inst.Category != types.USER {
		return true // TUPLE/LIST/MAP
	}
	return inst.Name() == "string"
}
