package symbols

import (
	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/token"
	"github.com/avalon-lang/avalon/internal/types"
)

// ParamBinding is one function parameter: its declared name and the
// Variable the body refers to it by.
type ParamBinding struct {
	Name     string
	Variable *Variable
}

// Function is a declared or specialised function. MangledName is
// deterministic over (Namespace, Name, arity, parameter-instance
// structure); Template is nil for an original declaration and points
// back at the generic template for a concrete specialisation.
type Function struct {
	Token       token.Token
	Namespace   string
	Name        string
	FQN         string
	Public      bool
	Constraints []string
	Params      []ParamBinding
	ReturnType  *types.Instance
	Body        *ast.Block
	OwningScope *Scope
	Builtin     bool

	MangledName string

	// Template/Specializations implement the specialiser's dedup-by-mangled-name rule:
	// a generic Function accumulates its concrete clones here; a clone
	// points back at Template and has Constraints == nil.
	Template        *Function
	Specializations map[string]*Function
}

// Arity is the parameter count, the third component of a function's
// overload key.
func (f *Function) Arity() int { return len(f.Params) }

// IsGeneric reports whether this function declares constraint standins.
func (f *Function) IsGeneric() bool { return len(f.Constraints) > 0 }

// AddSpecialization registers a concrete clone under its mangled name,
// idempotently.
func (f *Function) AddSpecialization(clone *Function) *Function {
	if f.Specializations == nil {
		f.Specializations = make(map[string]*Function)
	}
	if existing, ok := f.Specializations[clone.MangledName]; ok {
		return existing
	}
	clone.Template = f
	f.Specializations[clone.MangledName] = clone
	return clone
}
