package specializer

import (
	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/types"
)

// substituteBlock clones a function body, replacing every explicit
// (parser- or declaration-level) type instance it carries with its
// substituted form. Nodes with no type-instance field of their own are
// still cloned so the specialised function never shares mutable AST
// with its template.
func substituteBlock(b *ast.Block, bindings Bindings) *ast.Block {
	if b == nil {
		return nil
	}
	clone := &ast.Block{Base: b.Base}
	clone.Statements = make([]ast.Statement, len(b.Statements))
	for i, s := range b.Statements {
		clone.Statements[i] = substituteStatement(s, bindings)
	}
	return clone
}

func substituteStatement(s ast.Statement, bindings Bindings) ast.Statement {
	switch n := s.(type) {
	case *ast.Block:
		return substituteBlock(n, bindings)
	case *ast.ExpressionStatement:
		return &ast.ExpressionStatement{Base: n.Base, Expr: substituteExpr(n.Expr, bindings)}
	case *ast.VarDecl:
		clone := *n
		clone.TypeAnn = Substitute(n.TypeAnn, bindings)
		clone.Initializer = substituteExpr(n.Initializer, bindings)
		return &clone
	case *ast.IfStatement:
		clone := *n
		clone.Branches = make([]ast.IfBranch, len(n.Branches))
		for i, br := range n.Branches {
			clone.Branches[i] = ast.IfBranch{Cond: substituteExpr(br.Cond, bindings), Body: substituteBlock(br.Body, bindings)}
		}
		clone.Else = substituteBlock(n.Else, bindings)
		return &clone
	case *ast.WhileStatement:
		return &ast.WhileStatement{Base: n.Base, Cond: substituteExpr(n.Cond, bindings), Body: substituteBlock(n.Body, bindings)}
	case *ast.BreakStatement:
		clone := *n
		return &clone
	case *ast.ContinueStatement:
		clone := *n
		return &clone
	case *ast.PassStatement:
		clone := *n
		return &clone
	case *ast.ReturnStatement:
		return &ast.ReturnStatement{Base: n.Base, Value: substituteExpr(n.Value, bindings)}
	default:
		return s
	}
}

func substituteExpr(e ast.Expression, bindings Bindings) ast.Expression {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *ast.Underscore:
		clone := *n
		return &clone
	case *ast.Literal:
		clone := *n
		clone.ParserType = Substitute(n.ParserType, bindings)
		return &clone
	case *ast.Reference:
		return &ast.Reference{Base: n.Base, Value: substituteExpr(n.Value, bindings)}
	case *ast.Dereference:
		return &ast.Dereference{Base: n.Base, Value: substituteExpr(n.Value, bindings)}
	case *ast.Identifier:
		clone := *n
		return &clone
	case *ast.Dot:
		clone := *n
		clone.Left = substituteExpr(n.Left, bindings)
		return &clone
	case *ast.Subscript:
		clone := *n
		clone.Container = substituteExpr(n.Container, bindings)
		clone.Key = substituteExpr(n.Key, bindings)
		return &clone
	case *ast.Call:
		clone := *n
		clone.Args = make([]ast.Arg, len(n.Args))
		for i, a := range n.Args {
			clone.Args[i] = ast.Arg{Name: a.Name, IsAnonymous: a.IsAnonymous, Value: substituteExpr(a.Value, bindings)}
		}
		clone.ReturnType = Substitute(n.ReturnType, bindings)
		if n.Explicit != nil {
			explicit := make([]*types.Instance, len(n.Explicit))
			for i, ex := range n.Explicit {
				explicit[i] = Substitute(ex, bindings)
			}
			clone.Explicit = explicit
		}
		clone.Kind = ast.CallUnresolved
		clone.CalleeMangled = ""
		return &clone
	case *ast.Grouped:
		return &ast.Grouped{Base: n.Base, Inner: substituteExpr(n.Inner, bindings)}
	case *ast.Tuple:
		clone := *n
		clone.Elements = make([]ast.TupleElement, len(n.Elements))
		for i, el := range n.Elements {
			clone.Elements[i] = ast.TupleElement{Name: el.Name, Value: substituteExpr(el.Value, bindings)}
		}
		return &clone
	case *ast.List:
		clone := *n
		clone.Elements = make([]ast.Expression, len(n.Elements))
		for i, el := range n.Elements {
			clone.Elements[i] = substituteExpr(el, bindings)
		}
		return &clone
	case *ast.MapLit:
		clone := *n
		clone.Entries = make([]ast.MapEntry, len(n.Entries))
		for i, ent := range n.Entries {
			clone.Entries[i] = ast.MapEntry{Key: substituteExpr(ent.Key, bindings), Value: substituteExpr(ent.Value, bindings)}
		}
		clone.HashFunc, clone.EqFunc = "", ""
		return &clone
	case *ast.Cast:
		return &ast.Cast{Base: n.Base, Target: Substitute(n.Target, bindings), Value: substituteExpr(n.Value, bindings)}
	case *ast.Unary:
		return &ast.Unary{Base: n.Base, Op: n.Op, Operand: substituteExpr(n.Operand, bindings)}
	case *ast.Binary:
		return &ast.Binary{Base: n.Base, Op: n.Op, Left: substituteExpr(n.Left, bindings), Right: substituteExpr(n.Right, bindings)}
	case *ast.Match:
		return &ast.Match{Base: n.Base, Value: substituteExpr(n.Value, bindings), Pattern: substitutePattern(n.Pattern, bindings)}
	case *ast.Assignment:
		return &ast.Assignment{Base: n.Base, Target: substituteExpr(n.Target, bindings), Value: substituteExpr(n.Value, bindings)}
	default:
		return e
	}
}

func substitutePattern(p ast.Pattern, bindings Bindings) ast.Pattern {
	if p == nil {
		return nil
	}
	switch n := p.(type) {
	case *ast.UnderscorePattern:
		clone := *n
		return &clone
	case *ast.LiteralPattern:
		clone := *n
		return &clone
	case *ast.IdentifierPattern:
		clone := *n
		return &clone
	case *ast.CallPattern:
		clone := *n
		clone.Args = make([]ast.Pattern, len(n.Args))
		for i, a := range n.Args {
			clone.Args[i] = substitutePattern(a, bindings)
		}
		return &clone
	default:
		return p
	}
}
