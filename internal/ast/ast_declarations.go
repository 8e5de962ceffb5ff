package ast

import "github.com/avalon-lang/avalon/internal/types"

// ConstructorDecl is the parser-level (unresolved) shape of a
// type.Constructor: Params for a default constructor, Fields for a
// record constructor (mutually exclusive, per Kind).
type ConstructorDecl struct {
	Name   string
	Kind   types.ConstructorKind
	Params []*types.Instance // default constructor, positional

	FieldNames     []string          // record constructor, declaration order
	FieldInstances []*types.Instance // parallel to FieldNames
}

// TypeDecl declares a Type and its constructors.
type TypeDecl struct {
	Base
	Name         string
	Namespace    string
	Standins     []string
	Public       bool
	Constructors []*ConstructorDecl
}

func (*TypeDecl) statementNode() {}

// ParamDecl is one function parameter: a name and its declared type
// instance.
type ParamDecl struct {
	Name     string
	Instance *types.Instance
}

// FunctionDecl declares a function, generic over zero or more constraint
// standins.
type FunctionDecl struct {
	Base
	Name        string
	Namespace   string
	Public      bool
	Constraints []string // constraint standin names
	Params      []ParamDecl
	ReturnType  *types.Instance
	Body        *Block
	Builtin     bool
}

func (*FunctionDecl) statementNode() {}
