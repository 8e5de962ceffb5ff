package ast

// UnderscorePattern always matches.
type UnderscorePattern struct {
	Base
}

func (*UnderscorePattern) patternNode() {}

// LiteralPattern matches a value structurally equal to a literal.
type LiteralPattern struct {
	Base
	Category LiteralCategory
	Raw      string
}

func (*LiteralPattern) patternNode() {}

// IdentifierPattern is either a nullary-constructor check or a capture,
// decided at check/match time by whether Name resolves to a known
// nullary constructor in scope.
// ResolvedIsConstructor is filled in by the matcher/analyzer once that lookup
// has happened, so the evaluator doesn't need to repeat it.
type IdentifierPattern struct {
	Base
	Namespace string
	Name      string

	ResolvedIsConstructor bool
}

func (*IdentifierPattern) patternNode() {}

// CallPattern is `C(p1, ..., pn)` or `N.C(p1, ..., pn)`.
type CallPattern struct {
	Base
	Namespace string
	Name      string
	Args      []Pattern
}

func (*CallPattern) patternNode() {}
