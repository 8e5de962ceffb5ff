package specializer

import (
	"testing"

	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/diagnostics"
	"github.com/avalon-lang/avalon/internal/symbols"
	"github.com/avalon-lang/avalon/internal/token"
	"github.com/avalon-lang/avalon/internal/types"
)

func standinInstance(name string) *types.Instance {
	return types.NewAbstract(token.Token{Kind: token.IDENT_UPPER, Lexeme: name}, name)
}

func concreteInstance(name string) *types.Instance {
	inst := types.NewUser(token.Token{Lexeme: name}, "", name, nil)
	inst.Type = &types.Type{Name: name}
	inst.Category = types.USER
	return inst
}

func TestUnify_BindsConstraintStandin(t *testing.T) {
	bindings := Bindings{}
	dst := standinInstance("T")
	src := concreteInstance("bool")
	if !Unify(dst, src, map[string]bool{"T": true}, bindings) {
		t.Fatalf("expected unify to succeed")
	}
	if bindings["T"] != src {
		t.Fatalf("expected T bound to src, got %v", bindings["T"])
	}
}

func TestUnify_ConflictingBindingsFail(t *testing.T) {
	bindings := Bindings{"T": concreteInstance("int")}
	dst := standinInstance("T")
	src := concreteInstance("bool")
	if Unify(dst, src, map[string]bool{"T": true}, bindings) {
		t.Fatalf("expected unify to fail on conflicting binding")
	}
}

func TestSubstitute_ReplacesBoundStandin(t *testing.T) {
	bindings := Bindings{"T": concreteInstance("bool")}
	out := Substitute(standinInstance("T"), bindings)
	if out.Name() != "bool" {
		t.Fatalf("expected substituted instance named bool, got %q", out.Name())
	}
}

func TestMangleName_Deterministic(t *testing.T) {
	params := []*types.Instance{concreteInstance("bool")}
	m1 := MangleName("", "id", params, concreteInstance("bool"))
	m2 := MangleName("", "id", params, concreteInstance("bool"))
	if m1 != m2 {
		t.Fatalf("expected deterministic mangled name, got %q vs %q", m1, m2)
	}
}

func TestSpecialize_DedupesByMangledName(t *testing.T) {
	tok := token.Token{Lexeme: "id"}
	paramVar := &symbols.Variable{Name: "x", DeclaredType: standinInstance("T")}
	template := &symbols.Function{
		Token:       tok,
		Name:        "id",
		Constraints: []string{"T"},
		Params:      []symbols.ParamBinding{{Name: "x", Variable: paramVar}},
		ReturnType:  standinInstance("T"),
		Body: &ast.Block{
			Statements: []ast.Statement{
				&ast.ReturnStatement{Value: &ast.Identifier{Name: "x"}},
			},
		},
	}

	noopRecheck := func(fn *symbols.Function) *diagnostics.Error { return nil }

	bindings := Bindings{"T": concreteInstance("bool")}
	clone1, err := Specialize(template, bindings, noopRecheck)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clone2, err := Specialize(template, bindings, noopRecheck)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clone1 != clone2 {
		t.Fatalf("expected repeated specialisation to dedupe to the same clone")
	}
}
