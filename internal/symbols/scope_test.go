package symbols

import (
	"testing"

	"github.com/avalon-lang/avalon/internal/config"
	"github.com/avalon-lang/avalon/internal/token"
	"github.com/avalon-lang/avalon/internal/types"
)

func declType(ns, name string, arity int) *types.Type {
	t := &types.Type{Namespace: ns, Name: name}
	for i := 0; i < arity; i++ {
		t.Standins = append(t.Standins, "a")
	}
	return t
}

func TestAddType_DuplicateDeclaredFails(t *testing.T) {
	s := NewScope(nil, "root")
	ty := declType("", "Box", 0)
	if err := s.AddType(ty); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AddType(declType("", "Box", 0)); err == nil {
		t.Fatalf("expected symbol-already-declared error")
	}
}

func TestLookupType_DirectNamespace(t *testing.T) {
	s := NewScope(nil, "root")
	ty := declType("geometry", "Box", 0)
	_ = s.AddType(ty)

	got, ok := s.LookupType("geometry", "geometry", "Box", 0)
	if !ok || got != ty {
		t.Fatalf("expected direct lookup to find Box, got %v %v", got, ok)
	}

	if _, ok := s.LookupType("other", "geometry", "Box", 0); ok {
		t.Fatalf("expected lookup in wrong namespace to fail")
	}
}

func TestLookupType_WildcardFallsBackToCallerThenGlobal(t *testing.T) {
	s := NewScope(nil, "root")
	global := declType(config.GlobalNamespace, "Shared", 0)
	_ = s.AddType(global)

	got, ok := s.LookupType(config.WildcardNamespace, "geometry", "Shared", 0)
	if !ok || got != global {
		t.Fatalf("expected wildcard lookup to fall back to global, got %v %v", got, ok)
	}

	local := declType("geometry", "Local", 0)
	_ = s.AddType(local)
	got2, ok2 := s.LookupType(config.WildcardNamespace, "geometry", "Local", 0)
	if !ok2 || got2 != local {
		t.Fatalf("expected wildcard lookup to prefer caller namespace, got %v %v", got2, ok2)
	}
}

func TestLookupType_WildcardAmbiguousWhenBothResolve(t *testing.T) {
	s := NewScope(nil, "root")
	_ = s.AddType(declType("geometry", "Dup", 0))
	_ = s.AddType(declType(config.GlobalNamespace, "Dup", 0))

	if _, ok := s.LookupType(config.WildcardNamespace, "geometry", "Dup", 0); ok {
		t.Fatalf("expected ambiguous resolution to report not-ok")
	}
	_, derr := s.LookupTypeChecked(config.WildcardNamespace, "geometry", "Dup", 0, token.Token{})
	if derr == nil || derr.Code != "symbol-can-collide" {
		t.Fatalf("expected symbol-can-collide, got %v", derr)
	}
}

func TestLookupType_ChildScopeSeesParentDeclarations(t *testing.T) {
	parent := NewScope(nil, "root")
	_ = parent.AddType(declType("", "Box", 0))
	child := NewScope(parent, "block")

	if _, ok := child.LookupType("", "", "Box", 0); !ok {
		t.Fatalf("expected child scope to see parent-declared type")
	}
}

func TestAddFunction_MultimapAllowsOverloads(t *testing.T) {
	s := NewScope(nil, "root")
	f1 := &Function{Namespace: "", Name: "add", Params: []ParamBinding{{Name: "x"}}}
	f2 := &Function{Namespace: "", Name: "add", Params: []ParamBinding{{Name: "x"}, {Name: "y"}}}
	s.AddFunction(f1)
	s.AddFunction(f2)

	one := s.LookupFunctionCandidates("", "", "add", 1)
	two := s.LookupFunctionCandidates("", "", "add", 2)
	if len(one) != 1 || one[0] != f1 {
		t.Fatalf("expected single 1-arity candidate, got %v", one)
	}
	if len(two) != 1 || two[0] != f2 {
		t.Fatalf("expected single 2-arity candidate, got %v", two)
	}
}

func TestAddVariable_DuplicateInSameScopeFails(t *testing.T) {
	s := NewScope(nil, "root")
	v := &Variable{Name: "x"}
	if err := s.AddVariable(v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AddVariable(&Variable{Name: "x"}); err == nil {
		t.Fatalf("expected symbol-already-declared error")
	}
	if v.OwningScope != s {
		t.Fatalf("expected AddVariable to set OwningScope")
	}
}

func TestLookupVariable_WalksParentChain(t *testing.T) {
	parent := NewScope(nil, "root")
	_ = parent.AddVariable(&Variable{Name: "x"})
	child := NewScope(parent, "block")

	if _, ok := child.LookupVariable("x"); !ok {
		t.Fatalf("expected child scope to see parent-declared variable")
	}
	if _, ok := child.LookupVariable("y"); ok {
		t.Fatalf("expected lookup of undeclared variable to fail")
	}
}

func TestFindNullaryConstructor(t *testing.T) {
	s := NewScope(nil, "root")
	owner := &types.Type{Namespace: "", Name: "Bool"}
	ctor := &types.Constructor{Owner: owner, Name: "true_", Kind: types.DefaultConstructor}
	if err := s.AddConstructor("", ctor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := s.FindNullaryConstructor("", "", "true_")
	if !ok || got != ctor {
		t.Fatalf("expected to find nullary constructor, got %v %v", got, ok)
	}
	if _, ok := s.FindNullaryConstructor("", "", "missing"); ok {
		t.Fatalf("expected missing constructor lookup to fail")
	}
}
