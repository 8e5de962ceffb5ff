// Package types implements the Type instance model: the declared Type a
// type instance resolves against, and the checker that resolves it.
package types

import "github.com/avalon-lang/avalon/internal/token"

// Type is a named declaration: FQN, namespace, abstract parameter names
// (standins), public/private flag, and an ordered set of constructors.
// Identity is (Namespace, Name, Arity()).
type Type struct {
	Token     token.Token
	Namespace string
	Name      string
	Standins  []string // abstract parameter names, in declaration order
	IsPublic  bool

	Constructors []*Constructor
}

// Arity is the number of standins the type declares.
func (t *Type) Arity() int { return len(t.Standins) }

// FQN is namespace.name, the fully-qualified name used by import/link
// and by diagnostics.
func (t *Type) FQN() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// ConstructorKind distinguishes the two constructor shapes a type
// declares: anonymous-parameter ("default") and named-parameter ("record").
type ConstructorKind int

const (
	DefaultConstructor ConstructorKind = iota
	RecordConstructor
)

// NamedParam is one field of a record constructor.
type NamedParam struct {
	Name     string
	Instance *Instance
}

// Constructor belongs to exactly one Type and is either default
// (anonymous positional parameters, each a type instance) or record
// (named parameters, insertion-ordered).
type Constructor struct {
	Token token.Token
	Owner *Type
	Name  string
	Kind  ConstructorKind

	// Default-constructor parameters, positional.
	Params []*Instance

	// Record-constructor parameters, in declaration order. Order matters
	// for mangled-name consistency.
	Fields []NamedParam
}

// Arity is the declared parameter count, used as part of the overload key
// alongside (name): default and record constructors with the same head
// but a different shape coexist.
func (c *Constructor) Arity() int {
	if c.Kind == RecordConstructor {
		return len(c.Fields)
	}
	return len(c.Params)
}

// FieldNames returns the declared field names in insertion order, for
// record-constructor argument-name validation.
func (c *Constructor) FieldNames() []string {
	names := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		names[i] = f.Name
	}
	return names
}

// FieldInstance returns the declared instance for a named field, or nil.
func (c *Constructor) FieldInstance(name string) *Instance {
	for _, f := range c.Fields {
		if f.Name == name {
			return f.Instance
		}
	}
	return nil
}
