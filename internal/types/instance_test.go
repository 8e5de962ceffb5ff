package types

import (
	"testing"

	"github.com/avalon-lang/avalon/internal/token"
)

func tok(lexeme string) token.Token {
	return token.Token{Kind: token.IDENT_LOWER, Lexeme: lexeme, Line: 1, Column: 1, Source: "test.avl"}
}

func intType() *Type {
	return &Type{Name: "int", Namespace: "", Constructors: nil}
}

func TestWeakEqual_AbstractMatchesAnything(t *testing.T) {
	abstract := NewAbstract(tok("T"), "T")
	concrete := NewUser(tok("int"), "", "int", nil)
	concrete.Type = intType()

	if !WeakEqual(abstract, concrete) {
		t.Fatal("expected abstract instance to weak-equal a concrete one")
	}
	if StrongEqual(abstract, concrete) {
		t.Fatal("strong equality must reject an abstract operand")
	}
}

func TestStrongEqual_RequiresSameReferenceFlag(t *testing.T) {
	a := NewUser(tok("int"), "", "int", nil)
	a.Type = intType()
	b := a.Clone()
	ref := b.Reffed(tok("int"))

	if StrongEqual(a, ref) {
		t.Fatal("a non-reference and a reference instance must not strong-equal")
	}
	if !StrongEqual(a, b) {
		t.Fatal("two identical non-reference instances should strong-equal")
	}
}

func TestIsComplete(t *testing.T) {
	abstract := NewAbstract(tok("T"), "T")
	if abstract.IsComplete() {
		t.Fatal("an abstract instance must not be complete")
	}

	concrete := NewUser(tok("int"), "", "int", nil)
	concrete.Type = intType()
	if !concrete.IsComplete() {
		t.Fatal("a resolved, parameterless instance should be complete")
	}

	listOfAbstract := NewList(tok("xs"), abstract)
	listOfAbstract.Category = LIST
	if listOfAbstract.IsComplete() {
		t.Fatal("a list of an abstract element must not be complete")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := NewUser(tok("int"), "", "int", nil)
	a.Type = intType()
	b := a.Clone()
	b.IsReference = true

	if a.IsReference {
		t.Fatal("mutating a clone must not affect the original")
	}
	if a.ID == b.ID {
		t.Fatal("a clone should receive a fresh instance ID")
	}
}

// fakeResolver implements Resolver over a small fixed set of declared
// types, standing in for a symbols.Scope in these unit tests.
type fakeResolver struct {
	types map[string]*Type
}

func (f *fakeResolver) LookupType(namespace, callerNamespace, name string, arity int) (*Type, bool) {
	d, ok := f.types[name]
	if !ok || d.Arity() != arity {
		return nil, false
	}
	return d, true
}

func TestCheckInstance_ResolvesUserType(t *testing.T) {
	r := &fakeResolver{types: map[string]*Type{"int": intType()}}
	inst := NewUser(tok("int"), "", "int", nil)

	resolved, parametrized, err := CheckInstance(inst, r, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resolved || parametrized {
		t.Fatalf("expected resolved=true parametrized=false, got %v %v", resolved, parametrized)
	}
	if inst.Type == nil || inst.Type.Name != "int" {
		t.Fatal("expected inst.Type to be bound to the int declaration")
	}
}

func TestCheckInstance_UnresolvableNameFails(t *testing.T) {
	r := &fakeResolver{types: map[string]*Type{}}
	inst := NewUser(tok("frobnicate"), "", "frobnicate", nil)

	_, _, err := CheckInstance(inst, r, "", nil)
	if err == nil {
		t.Fatal("expected an invalid-type error for an unresolvable name")
	}
}

func TestCheckInstance_StandinAcceptedAsParametrizedLeaf(t *testing.T) {
	r := &fakeResolver{types: map[string]*Type{}}
	inst := NewUser(tok("T"), "", "T", nil)
	standins := StandinsFromNames([]string{"T"})

	resolved, parametrized, err := CheckInstance(inst, r, "", standins)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resolved || !parametrized {
		t.Fatalf("expected a standin leaf to resolve as parametrized, got %v %v", resolved, parametrized)
	}
}

func TestCheckInstance_ListRequiresExactlyOneParam(t *testing.T) {
	r := &fakeResolver{types: map[string]*Type{"int": intType()}}
	elem := NewUser(tok("int"), "", "int", nil)
	list := NewList(tok("xs"), elem)
	list.Params = append(list.Params, NewUser(tok("int"), "", "int", nil))

	_, _, err := CheckInstance(list, r, "", nil)
	if err == nil {
		t.Fatal("expected an error for a list instance with two parameters")
	}
}
