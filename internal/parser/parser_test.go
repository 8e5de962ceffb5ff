package parser

import (
	"testing"

	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/types"
)

func TestParse_FunctionWithIfWhileAndReturn(t *testing.T) {
	src := `
import a.b

public function add(x: int, y: int): int {
    var total := x
    if total == 0 {
        return y
    } elif total == 1 {
        total := total + y
    } else {
        pass
    }
    while total < 10 {
        total := total + 1
        continue
    }
    return total
}
`
	prog, err := Parse(src, "main.avl", "ns")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(prog.Files) != 1 {
		t.Fatalf("expected one file, got %d", len(prog.Files))
	}
	f := prog.Files[0]
	if len(f.Imports) != 1 || f.Imports[0] != "a.b" {
		t.Fatalf("expected import a.b, got %v", f.Imports)
	}
	if len(f.Functions) != 1 {
		t.Fatalf("expected one function, got %d", len(f.Functions))
	}
	fn := f.Functions[0]
	if fn.Name != "add" || !fn.Public || len(fn.Params) != 2 {
		t.Fatalf("unexpected function shape: %+v", fn)
	}
	if len(fn.Body.Statements) != 4 {
		t.Fatalf("expected 4 top-level statements in body, got %d", len(fn.Body.Statements))
	}
	ifStmt, ok := fn.Body.Statements[1].(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected second statement to be an if, got %T", fn.Body.Statements[1])
	}
	if len(ifStmt.Branches) != 2 || ifStmt.Else == nil {
		t.Fatalf("expected if/elif/else, got %d branches, else=%v", len(ifStmt.Branches), ifStmt.Else)
	}
}

func TestParse_ExpressionPrecedence(t *testing.T) {
	src := `
function f(x: int): int {
    return 1 + 2 * 3 == 7 && !false
}
`
	prog, err := Parse(src, "main.avl", "")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	ret := prog.Files[0].Functions[0].Body.Statements[0].(*ast.ReturnStatement)
	top, ok := ret.Value.(*ast.Binary)
	if !ok || top.Op != "&&" {
		t.Fatalf("expected top-level && binary, got %#v", ret.Value)
	}
	eq, ok := top.Left.(*ast.Binary)
	if !ok || eq.Op != "==" {
		t.Fatalf("expected == under &&, got %#v", top.Left)
	}
	add, ok := eq.Left.(*ast.Binary)
	if !ok || add.Op != "+" {
		t.Fatalf("expected + as the looser additive operator, got %#v", eq.Left)
	}
	mul, ok := add.Right.(*ast.Binary)
	if !ok || mul.Op != "*" {
		t.Fatalf("expected * to bind tighter than +, got %#v", add.Right)
	}
}

func TestParse_CallListMapTupleAndCast(t *testing.T) {
	src := `
function f(x: int): int {
    var l := [1, 2, 3]
    var m := {1: 2, 3: 4}
    var t := (1, 2)
    var g := (1)
    var c := cast<float>(x)
    return helper(x, 1)
}
`
	prog, err := Parse(src, "main.avl", "")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	stmts := prog.Files[0].Functions[0].Body.Statements
	list := stmts[0].(*ast.VarDecl).Initializer.(*ast.List)
	if len(list.Elements) != 3 {
		t.Fatalf("expected 3 list elements, got %d", len(list.Elements))
	}
	m := stmts[1].(*ast.VarDecl).Initializer.(*ast.MapLit)
	if len(m.Entries) != 2 {
		t.Fatalf("expected 2 map entries, got %d", len(m.Entries))
	}
	tup := stmts[2].(*ast.VarDecl).Initializer.(*ast.Tuple)
	if len(tup.Elements) != 2 {
		t.Fatalf("expected a 2-element tuple, got %d", len(tup.Elements))
	}
	if _, ok := stmts[3].(*ast.VarDecl).Initializer.(*ast.Grouped); !ok {
		t.Fatalf("expected a single parenthesized element to be Grouped, got %#v", stmts[3].(*ast.VarDecl).Initializer)
	}
	cst := stmts[4].(*ast.VarDecl).Initializer.(*ast.Cast)
	if cst.Target.OriginToken.Lexeme != "float" {
		t.Fatalf("expected cast target float, got %q", cst.Target.OriginToken.Lexeme)
	}
	call := stmts[5].(*ast.ReturnStatement).Value.(*ast.Call)
	if call.Name != "helper" || len(call.Args) != 2 {
		t.Fatalf("unexpected call shape: %+v", call)
	}
}

func TestParse_MatchExpression(t *testing.T) {
	src := `
function f(x: int): int {
    return x === _
}
`
	prog, err := Parse(src, "main.avl", "")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	ret := prog.Files[0].Functions[0].Body.Statements[0].(*ast.ReturnStatement)
	match, ok := ret.Value.(*ast.Match)
	if !ok {
		t.Fatalf("expected a Match expression, got %#v", ret.Value)
	}
	if _, ok := match.Pattern.(*ast.UnderscorePattern); !ok {
		t.Fatalf("expected an underscore pattern, got %#v", match.Pattern)
	}
}

func TestParse_ListTypeAnnotation(t *testing.T) {
	src := `
function __main__(args: list<string>): int {
    return 0
}
`
	prog, err := Parse(src, "main.avl", "")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	fn := prog.Files[0].Functions[0]
	if len(fn.Params) != 1 {
		t.Fatalf("expected one parameter, got %d", len(fn.Params))
	}
	inst := fn.Params[0].Instance
	if inst.Category != types.LIST || len(inst.Params) != 1 || inst.Params[0].OriginToken.Lexeme != "string" {
		t.Fatalf("expected list<string>, got category %v params %v", inst.Category, inst.Params)
	}
}

func TestParse_RejectsMalformedTopLevel(t *testing.T) {
	if _, err := Parse("42", "main.avl", ""); err == nil {
		t.Fatalf("expected a parse error for a bare top-level expression")
	}
}
