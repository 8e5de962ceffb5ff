package evaluator

import (
	"math/big"
	"testing"

	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/builtins"
	"github.com/avalon-lang/avalon/internal/config"
	"github.com/avalon-lang/avalon/internal/quantum"
	"github.com/avalon-lang/avalon/internal/symbols"
	"github.com/avalon-lang/avalon/internal/token"
	"github.com/avalon-lang/avalon/internal/value"
)

func newEval(t *testing.T) *Evaluator {
	t.Helper()
	root := symbols.NewScope(nil, "root")
	return New(root, builtins.NewStandardRegistry(), map[string]*symbols.Function{}, quantum.NewTapeProcessor())
}

func intLit(n string) *ast.Literal {
	return &ast.Literal{Base: ast.NewBase(token.Token{Kind: token.INT, Lexeme: n}), Category: ast.LitInt, Raw: n}
}

func mangledBinary(op, typeName string) string {
	return builtins.MangledNameFor("", config.BinaryOperatorFunctionNames[op], []string{typeName, typeName})
}

func TestEval_IntLiteralArithmetic(t *testing.T) {
	e := newEval(t)
	env := NewEnvironment(nil)
	bin := &ast.Binary{
		Base:          ast.NewBase(token.Token{Kind: token.PLUS, Lexeme: "+"}),
		Op:            "+",
		Left:          intLit("2"),
		Right:         intLit("3"),
		CalleeMangled: mangledBinary("+", config.TypeInt),
	}
	out, err := e.Eval(bin, env, "app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind != value.KInt || out.Int.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("expected 5, got %v", out)
	}
}

func TestEval_ListSubscriptJustAndNone(t *testing.T) {
	e := newEval(t)
	env := NewEnvironment(nil)
	list := &ast.List{Base: ast.NewBase(token.Zero), Elements: []ast.Expression{intLit("10"), intLit("20")}}

	inRange := &ast.Subscript{Base: ast.NewBase(token.Zero), Container: list, Key: intLit("1")}
	out, err := e.Eval(inRange, env, "app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.CtorName != config.JustCtor || out.Fields[0].Int.Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("expected Just(20), got %v", out)
	}

	outOfRange := &ast.Subscript{Base: ast.NewBase(token.Zero), Container: list, Key: intLit("5")}
	out, err = e.Eval(outOfRange, env, "app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.CtorName != config.NoneCtor {
		t.Fatalf("expected None, got %v", out)
	}
}

func TestEval_MapSubscriptFirstMatchWins(t *testing.T) {
	e := newEval(t)
	env := NewEnvironment(nil)
	hashMangled := builtins.MangledNameFor("", config.HashFuncName, []string{config.TypeInt})
	eqMangled := mangledBinary("==", config.TypeInt)

	mapVal := value.Value{
		Kind: value.KMap,
		Pairs: []value.Pair{
			{Key: value.Value{Kind: value.KInt, Int: big.NewInt(1)}, Value: value.Value{Kind: value.KInt, Int: big.NewInt(100)}},
			{Key: value.Value{Kind: value.KInt, Int: big.NewInt(1)}, Value: value.Value{Kind: value.KInt, Int: big.NewInt(200)}},
		},
		MapHashFunc: hashMangled,
		MapEqFunc:   eqMangled,
	}
	env.Define("m", mapVal, false)

	sub := &ast.Subscript{
		Base:      ast.NewBase(token.Zero),
		Container: &ast.Identifier{Base: ast.NewBase(token.Zero), Name: "m"},
		Key:       intLit("1"),
	}
	out, err := e.Eval(sub, env, "app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.CtorName != config.JustCtor || out.Fields[0].Int.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("expected first-match Just(100), got %v", out)
	}
}

func TestEval_WhileLoopRunsUntilConditionFalse(t *testing.T) {
	e := newEval(t)
	env := NewEnvironment(nil)
	env.Define("i", value.Value{Kind: value.KInt, Int: big.NewInt(0)}, true)

	cond := &ast.Binary{
		Base:          ast.NewBase(token.Token{Kind: token.LT, Lexeme: "<"}),
		Op:            "<",
		Left:          &ast.Identifier{Base: ast.NewBase(token.Zero), Name: "i"},
		Right:         intLit("3"),
		CalleeMangled: mangledBinary("<", config.TypeInt),
	}
	incr := &ast.Assignment{
		Base:   ast.NewBase(token.Zero),
		Target: &ast.Identifier{Base: ast.NewBase(token.Zero), Name: "i"},
		Value: &ast.Binary{
			Base:          ast.NewBase(token.Token{Kind: token.PLUS, Lexeme: "+"}),
			Op:            "+",
			Left:          &ast.Identifier{Base: ast.NewBase(token.Zero), Name: "i"},
			Right:         intLit("1"),
			CalleeMangled: mangledBinary("+", config.TypeInt),
		},
	}
	loop := &ast.WhileStatement{
		Base: ast.NewBase(token.Zero),
		Cond: cond,
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.ExpressionStatement{Base: ast.NewBase(token.Zero), Expr: incr},
		}},
	}
	sig, _, err := e.execStatement(loop, env, "app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig != sigNormal {
		t.Fatalf("expected loop to exit normally, got signal %d", sig)
	}
	cell, _ := env.Lookup("i")
	if cell.Value.Int.Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("expected i == 3 after the loop, got %s", cell.Value.Int)
	}
}

func TestMatchPattern_IdentifierCaptureBindsVariable(t *testing.T) {
	e := newEval(t)
	env := NewEnvironment(nil)
	pat := &ast.IdentifierPattern{Base: ast.NewBase(token.Zero), Name: "x"}
	matched, err := e.matchPattern(pat, value.Value{Kind: value.KInt, Int: big.NewInt(7)}, env, "app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !matched {
		t.Fatalf("expected an identifier capture pattern to always match")
	}
	cell, ok := env.Lookup("x")
	if !ok || cell.Value.Int.Cmp(big.NewInt(7)) != 0 {
		t.Fatalf("expected x bound to 7, got %v", cell)
	}
}

func TestMatchPattern_ResolvedConstructorDoesNotCapture(t *testing.T) {
	e := newEval(t)
	env := NewEnvironment(nil)
	pat := &ast.IdentifierPattern{Base: ast.NewBase(token.Zero), Name: "true", ResolvedIsConstructor: true}

	matched, err := e.matchPattern(pat, value.Value{Kind: value.KUser, CtorName: "true"}, env, "app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !matched {
		t.Fatalf("expected true to match the true constructor pattern")
	}
	if _, ok := env.Lookup("true"); ok {
		t.Fatalf("a resolved constructor pattern must not bind a variable")
	}

	matched, err = e.matchPattern(pat, value.Value{Kind: value.KUser, CtorName: "false"}, env, "app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matched {
		t.Fatalf("expected false not to match the true constructor pattern")
	}
}

func TestCallFunction_ReturnsEvaluatedBody(t *testing.T) {
	e := newEval(t)
	fn := &symbols.Function{
		Namespace: "app",
		Name:      "double",
		Params:    []symbols.ParamBinding{{Name: "x"}},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.ReturnStatement{Base: ast.NewBase(token.Zero), Value: &ast.Binary{
				Base:          ast.NewBase(token.Token{Kind: token.PLUS, Lexeme: "+"}),
				Op:            "+",
				Left:          &ast.Identifier{Base: ast.NewBase(token.Zero), Name: "x"},
				Right:         &ast.Identifier{Base: ast.NewBase(token.Zero), Name: "x"},
				CalleeMangled: mangledBinary("+", config.TypeInt),
			}},
		}},
	}
	out, err := e.CallFunction(fn, []value.Value{{Kind: value.KInt, Int: big.NewInt(21)}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Int.Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("expected 42, got %s", out.Int)
	}
}
