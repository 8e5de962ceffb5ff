// Package symbols implements the scoped symbol environment: tables of
// types, constructors, functions and variables, addressable by fully
// qualified name.
package symbols

import (
	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/token"
	"github.com/avalon-lang/avalon/internal/types"
)

// Validity is a Variable's checked state.
type Validity int

const (
	Unknown Validity = iota
	Valid
	Invalid
)

// Variable is a declared binding. Globals carry their defining
// scope (OwningScope) so that a reference from another namespace resolves
// names against the scope the variable was declared in, not the caller's
// scope.
type Variable struct {
	Token        token.Token
	Name         string
	Mutable      bool
	Public       bool
	Global       bool
	DeclaredType *types.Instance
	Initializer  ast.Expression
	OwningScope  *Scope
	Used         bool
	Validity     Validity
}
