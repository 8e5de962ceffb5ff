package analyzer

import (
	"testing"

	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/builtins"
	"github.com/avalon-lang/avalon/internal/config"
	"github.com/avalon-lang/avalon/internal/diagnostics"
	"github.com/avalon-lang/avalon/internal/symbols"
	"github.com/avalon-lang/avalon/internal/token"
	"github.com/avalon-lang/avalon/internal/types"
)

func newChecker(t *testing.T, prog *ast.Program) (*Checker, *symbols.Scope, symbols.Funcs) {
	t.Helper()
	sink := &diagnostics.Sink{}
	root, funcs := symbols.BuildScope(prog, sink)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics building scope: %v", sink.Errors())
	}
	return New(root, sink, builtins.NewStandardRegistry()), root, funcs
}

func intLit(n string) *ast.Literal {
	return &ast.Literal{Base: ast.NewBase(token.Token{Kind: token.INT, Lexeme: n}), Category: ast.LitInt, Raw: n}
}

func TestInfer_IntLiteralResolvesToInt(t *testing.T) {
	c, root, _ := newChecker(t, &ast.Program{})
	lit := intLit("3")
	inst, err := c.Infer(lit, root, "app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Name() != config.TypeInt {
		t.Errorf("int literal resolved to %q, want %q", inst.Name(), config.TypeInt)
	}
}

func TestInfer_BinaryAddResolvesCalleeAndType(t *testing.T) {
	c, root, _ := newChecker(t, &ast.Program{})
	bin := &ast.Binary{Base: ast.NewBase(token.Token{Kind: token.PLUS, Lexeme: "+"}), Op: "+", Left: intLit("1"), Right: intLit("2")}
	inst, err := c.Infer(bin, root, "app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Name() != config.TypeInt {
		t.Errorf("1 + 2 resolved to %q, want int", inst.Name())
	}
	if bin.CalleeMangled == "" {
		t.Errorf("binary + did not record a resolved callee")
	}
}

func TestInfer_BinaryComparisonResolvesToBool(t *testing.T) {
	c, root, _ := newChecker(t, &ast.Program{})
	bin := &ast.Binary{Base: ast.NewBase(token.Token{Kind: token.LT, Lexeme: "<"}), Op: "<", Left: intLit("1"), Right: intLit("2")}
	inst, err := c.Infer(bin, root, "app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Name() != config.TypeBool {
		t.Errorf("1 < 2 resolved to %q, want bool", inst.Name())
	}
}

func TestInfer_HeterogeneousListRejected(t *testing.T) {
	c, root, _ := newChecker(t, &ast.Program{})
	strLit := &ast.Literal{Base: ast.NewBase(token.Token{Kind: token.STRING, Lexeme: "x"}), Category: ast.LitString, Raw: "x"}
	list := &ast.List{Base: ast.NewBase(token.Zero), Elements: []ast.Expression{intLit("1"), strLit}}
	if _, err := c.Infer(list, root, "app"); err == nil {
		t.Fatalf("expected an error for a heterogeneous list")
	}
}

func TestInfer_EmptyListIsParametrized(t *testing.T) {
	c, root, _ := newChecker(t, &ast.Program{})
	list := &ast.List{Base: ast.NewBase(token.Zero)}
	inst, err := c.Infer(list, root, "app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inst.IsParametrized {
		t.Errorf("empty list instance should be parametrized, got %s", inst.String())
	}
}

func TestInfer_ReferenceOfReferenceRejected(t *testing.T) {
	c, root, _ := newChecker(t, &ast.Program{})
	ref := &ast.Reference{Base: ast.NewBase(token.Zero), Value: intLit("1")}
	outer := &ast.Reference{Base: ast.NewBase(token.Zero), Value: ref}
	if _, err := c.Infer(outer, root, "app"); err == nil {
		t.Fatalf("expected an error referencing an already-reference expression")
	}
}

func TestInfer_DereferenceOfNonReferenceRejected(t *testing.T) {
	c, root, _ := newChecker(t, &ast.Program{})
	dref := &ast.Dereference{Base: ast.NewBase(token.Zero), Value: intLit("1")}
	if _, err := c.Infer(dref, root, "app"); err == nil {
		t.Fatalf("expected an error dereferencing a non-reference expression")
	}
}

func TestInfer_MatchExpressionResolvesToBoolAndBindsCapture(t *testing.T) {
	c, root, _ := newChecker(t, &ast.Program{})
	scope := symbols.NewScope(root, "body")
	pat := &ast.IdentifierPattern{Base: ast.NewBase(token.Token{Kind: token.IDENT_LOWER, Lexeme: "n"}), Name: "n"}
	match := &ast.Match{Base: ast.NewBase(token.Zero), Value: intLit("1"), Pattern: pat}
	inst, err := c.Infer(match, scope, "app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Name() != config.TypeBool {
		t.Errorf("match expression resolved to %q, want bool", inst.Name())
	}
	if pat.ResolvedIsConstructor {
		t.Errorf("identifier pattern %q should be a capture, not a constructor", pat.Name)
	}
	if _, ok := scope.LookupVariable("n"); !ok {
		t.Errorf("match pattern should have bound capture variable n")
	}
}

func TestInfer_MatchNestedInsideBinaryRejected(t *testing.T) {
	c, root, _ := newChecker(t, &ast.Program{})
	pat := &ast.UnderscorePattern{Base: ast.NewBase(token.Zero)}
	match := &ast.Match{Base: ast.NewBase(token.Zero), Value: intLit("1"), Pattern: pat}
	bin := &ast.Binary{Base: ast.NewBase(token.Zero), Op: "&&", Left: match, Right: match}
	if _, err := c.Infer(bin, root, "app"); err == nil {
		t.Fatalf("expected an error nesting a match inside a binary expression")
	}
}

func TestInfer_DefaultConstructorCall(t *testing.T) {
	tok := token.Zero
	pointDecl := &ast.TypeDecl{
		Base: ast.NewBase(tok), Name: "point", Namespace: "app", Public: true,
		Constructors: []*ast.ConstructorDecl{
			{Name: "Point", Kind: types.DefaultConstructor, Params: []*types.Instance{
				types.NewUser(tok, config.WildcardNamespace, config.TypeInt, nil), types.NewUser(tok, config.WildcardNamespace, config.TypeInt, nil),
			}},
		},
	}
	prog := &ast.Program{Files: []*ast.File{{Path: "a.avl", Namespace: "app", Types: []*ast.TypeDecl{pointDecl}}}}
	c, root, _ := newChecker(t, prog)

	call := &ast.Call{
		Base: ast.NewBase(tok), Namespace: "app", Name: "Point",
		Args: []ast.Arg{{Value: intLit("1")}, {Value: intLit("2")}},
	}
	inst, err := c.Infer(call, root, "app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call.Kind != ast.CallDefaultConstructor {
		t.Errorf("call.Kind = %v, want CallDefaultConstructor", call.Kind)
	}
	if inst.Name() != "point" {
		t.Errorf("Point(1, 2) resolved to %q, want point", inst.Name())
	}
}

func TestInfer_RecordConstructorCallWithBadFieldNameRejected(t *testing.T) {
	tok := token.Zero
	personDecl := &ast.TypeDecl{
		Base: ast.NewBase(tok), Name: "person", Namespace: "app", Public: true,
		Constructors: []*ast.ConstructorDecl{
			{
				Name: "Person", Kind: types.RecordConstructor,
				FieldNames:     []string{"age"},
				FieldInstances: []*types.Instance{types.NewUser(tok, config.WildcardNamespace, config.TypeInt, nil)},
			},
		},
	}
	prog := &ast.Program{Files: []*ast.File{{Path: "a.avl", Namespace: "app", Types: []*ast.TypeDecl{personDecl}}}}
	c, root, _ := newChecker(t, prog)

	call := &ast.Call{
		Base: ast.NewBase(tok), Namespace: "app", Name: "Person",
		Args: []ast.Arg{{Name: "wrongfield", Value: intLit("1")}},
	}
	if _, err := c.Infer(call, root, "app"); err == nil {
		t.Fatalf("expected an error for a record constructor call naming an undeclared field")
	}
}

func TestCheckProgram_FunctionBodyTypeMismatchReported(t *testing.T) {
	tok := token.Zero
	fd := &ast.FunctionDecl{
		Base: ast.NewBase(tok), Name: "broken", Namespace: "app", Public: true,
		ReturnType: types.NewUser(tok, config.WildcardNamespace, config.TypeString, nil),
		Body: &ast.Block{Base: ast.NewBase(tok), Statements: []ast.Statement{
			&ast.ReturnStatement{Base: ast.NewBase(tok), Value: intLit("1")},
		}},
	}
	prog := &ast.Program{Files: []*ast.File{{Path: "a.avl", Namespace: "app", Functions: []*ast.FunctionDecl{fd}}}}
	c, _, funcs := newChecker(t, prog)

	c.CheckProgram(prog, funcs)
	if !c.Sink.HasErrors() {
		t.Fatalf("expected a diagnostic for returning int from a function declared to return string")
	}
}

func TestCheckProgram_ValidFunctionBodyClean(t *testing.T) {
	tok := token.Zero
	fd := &ast.FunctionDecl{
		Base: ast.NewBase(tok), Name: "answer", Namespace: "app", Public: true,
		ReturnType: types.NewUser(tok, config.WildcardNamespace, config.TypeInt, nil),
		Body: &ast.Block{Base: ast.NewBase(tok), Statements: []ast.Statement{
			&ast.ReturnStatement{Base: ast.NewBase(tok), Value: intLit("42")},
		}},
	}
	prog := &ast.Program{Files: []*ast.File{{Path: "a.avl", Namespace: "app", Functions: []*ast.FunctionDecl{fd}}}}
	c, _, funcs := newChecker(t, prog)

	c.CheckProgram(prog, funcs)
	if c.Sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", c.Sink.Errors())
	}
}

func TestValidateVarDecl_StringInitializerForcesImmutable(t *testing.T) {
	tok := token.Zero
	c, root, _ := newChecker(t, &ast.Program{})
	strLit := &ast.Literal{Base: ast.NewBase(tok), Category: ast.LitString, Raw: "hi"}
	vd := &ast.VarDecl{Base: ast.NewBase(tok), Name: "s", Mutable: true, Initializer: strLit}
	scope := symbols.NewScope(root, "body")
	c.checkLocalVarDecl(vd, scope, "app")
	if c.Sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", c.Sink.Errors())
	}
	v, ok := scope.LookupVariable("s")
	if !ok {
		t.Fatalf("variable s not registered")
	}
	if v.Mutable {
		t.Errorf("string-initialized variable should be forced immutable")
	}
}

func TestValidateVarDecl_MissingTypeAndInitializerRejected(t *testing.T) {
	tok := token.Zero
	c, root, _ := newChecker(t, &ast.Program{})
	vd := &ast.VarDecl{Base: ast.NewBase(tok), Name: "x"}
	scope := symbols.NewScope(root, "body")
	c.checkLocalVarDecl(vd, scope, "app")
	if !c.Sink.HasErrors() {
		t.Fatalf("expected a diagnostic for a variable with neither a type nor an initializer")
	}
}
