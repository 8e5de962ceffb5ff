// Package ast defines the untyped-then-checked AST the parser hands to
// the checker and evaluator. Every node carries a stable, process-unique
// NodeID. Resolved callee triples and similar per-node-kind annotations
// (e.g. Call.Kind, Dot.CalleeMangled) are embedded directly on the
// concrete node since each lives on exactly one node shape; the inferred
// type instance, which every expression node carries regardless of
// shape, is instead kept in a side table keyed by NodeID so the checker
// doesn't need an extra field threaded through every expression type.
package ast

import "github.com/avalon-lang/avalon/internal/token"

var nextNodeID int

// NewNodeID mints a fresh, process-unique node id.
func NewNodeID() int {
	nextNodeID++
	return nextNodeID
}

// Node is the base interface implemented by every AST node.
type Node interface {
	NodeID() int
	GetToken() token.Token
}

// Expression is a Node that produces a value when interpreted.
type Expression interface {
	Node
	expressionNode()
}

// Statement is a Node that is interpreted for effect/control-flow.
type Statement interface {
	Node
	statementNode()
}

// Pattern is a Node appearing on the right-hand side of a match
// expression. Patterns are a distinct closed set from expressions even
// though some surface syntax overlaps (e.g. literals).
type Pattern interface {
	Node
	patternNode()
}

// Base is embedded by every concrete node; it supplies NodeID/GetToken
// and is assigned once at construction time.
type Base struct {
	ID  int
	Tok token.Token
}

func NewBase(tok token.Token) Base { return Base{ID: NewNodeID(), Tok: tok} }

func (b Base) NodeID() int           { return b.ID }
func (b Base) GetToken() token.Token { return b.Tok }

// File is one source unit: a namespace declaration, its imports, and the
// type/function/variable declarations it contributes to that namespace.
type File struct {
	Path      string
	Namespace string
	Imports   []string // fully qualified names of imported namespaces
	Types     []*TypeDecl
	Functions []*FunctionDecl
	Variables []*VarDecl
}

// Program is the root node handed to the checker: one or more files,
// already grouped by namespace, forming the whole compilation unit
// before the linker merges any imported programs in.
type Program struct {
	Files []*File
}
