package ast

import (
	"github.com/avalon-lang/avalon/internal/token"
	"github.com/avalon-lang/avalon/internal/types"
)

// LiteralCategory is the closed set of literal shapes: integer, float,
// decimal, string, bit-string, qubit-string.
type LiteralCategory int

const (
	LitInt LiteralCategory = iota
	LitFloat
	LitDecimal
	LitString
	LitBitString
	LitQubitString
)

// Underscore is the `_` placeholder expression.
type Underscore struct {
	Base
}

func (*Underscore) expressionNode() {}

// Literal is one of the scalar literal categories. Bits holds the parsed
// bit pattern for LitBitString/LitQubitString; Width is its declared
// length (one of config.QuantumBitWidths). ParserType is the optional
// parser-supplied type instance.
// KetStart/KetEnd are filled in by the evaluator when a qubit-string
// literal backs a quantum variable declaration.
type Literal struct {
	Base
	Category   LiteralCategory
	Raw        string
	Bits       []bool
	Width      int
	ParserType *types.Instance

	KetStart int
	KetEnd   int
	KetSet   bool
}

func (*Literal) expressionNode() {}

// Reference is `ref v`.
type Reference struct {
	Base
	Value Expression
}

func (*Reference) expressionNode() {}

// Dereference is `dref v`.
type Dereference struct {
	Base
	Value Expression
}

func (*Dereference) expressionNode() {}

// Dot is `lhs.name`: a namespace-qualified reference, a named-tuple
// field access, or — once resolved — a rewritten `__getattr_<name>__`
// call. The checker fills in CalleeMangled for the decayed call;
// IsNamespace is never set by the checker.
type Dot struct {
	Base
	Left Expression
	Name string

	IsNamespace   bool // Left resolved to a namespace, not a value
	CalleeMangled string
}

func (*Dot) expressionNode() {}

// Subscript is `container[key]`. For TUPLE the key must be an integer
// literal; for LIST/MAP the result is a `maybe(element)`; any other
// receiver decays to a resolved two-argument `__getitem_item(container,
// key)` call. The key is passed as the second argument; it is not folded
// into the function name.
type Subscript struct {
	Base
	Container Expression
	Key       Expression

	CalleeMangled string
}

func (*Subscript) expressionNode() {}

// Identifier is a (possibly namespaced) name. Namespace == "" means
// "search the caller's namespace" (config.WildcardNamespace applies
// upstream during checking, not here — the parser leaves Namespace blank
// for an unqualified reference).
type Identifier struct {
	Base
	Namespace string
	Name      string
}

func (*Identifier) expressionNode() {}

// Arg is one call argument. An empty Name with IsAnonymous set is the
// `*` positional marker used for default-constructor arguments; a
// non-empty Name is a record-constructor named argument; a call to a
// genuine function never needs either, so Name/IsAnonymous are simply
// unset.
type Arg struct {
	Name        string
	IsAnonymous bool
	Value       Expression
}

// CallKind is filled in once overload resolution has happened: function
// call, record constructor, or default constructor.
type CallKind int

const (
	CallUnresolved CallKind = iota
	CallFunction
	CallRecordConstructor
	CallDefaultConstructor
)

// Call covers function calls and both constructor shapes; the checker decides
// which at check time and records it in Kind, plus the resolved
// (namespace, mangled name, arity) callee triple.
type Call struct {
	Base
	Namespace  string
	Name       string
	Args       []Arg
	ReturnType *types.Instance   // explicit return-type annotation, calls only
	Explicit   []*types.Instance // explicit specialisation arguments, e.g. id<int>(x)

	Kind          CallKind
	CalleeNS      string
	CalleeMangled string
	CalleeArity   int
}

func (*Call) expressionNode() {}

// Grouped is a parenthesised sub-expression, kept as its own node so
// the analyzer's "may not transitively contain a match" rule can still see through
// it structurally without losing the origin token for diagnostics.
type Grouped struct {
	Base
	Inner Expression
}

func (*Grouped) expressionNode() {}

// TupleElement is one element of a tuple literal; Name is set for named
// fields.
type TupleElement struct {
	Name  string
	Value Expression
}

type Tuple struct {
	Base
	Elements []TupleElement
}

func (*Tuple) expressionNode() {}

type List struct {
	Base
	Elements []Expression
}

func (*List) expressionNode() {}

type MapEntry struct {
	Key   Expression
	Value Expression
}

type MapLit struct {
	Base
	Entries []MapEntry

	// HashFunc/EqFunc are the mangled callee names the inferer resolves for the
	// key type.
	HashFunc string
	EqFunc   string
}

func (*MapLit) expressionNode() {}

// Cast is `cast<T>(v)`; Target is the parser-level unresolved target
// instance, CalleeMangled the resolved `__cast__` overload.
type Cast struct {
	Base
	Target        *types.Instance
	Value         Expression
	CalleeMangled string
}

func (*Cast) expressionNode() {}

// Unary covers the prefix operators; Op is the raw lexeme (e.g. "-",
// "!", "~"); CalleeMangled is the resolved decayed function.
type Unary struct {
	Base
	Op            string
	Operand       Expression
	CalleeMangled string
}

func (*Unary) expressionNode() {}

// Binary covers 20 binary operators, including the
// structural `is`/`is not` pair, which the evaluator handles directly rather than
// through a resolved callee (CalleeMangled stays "" for those two).
type Binary struct {
	Base
	Op            string
	Left          Expression
	Right         Expression
	CalleeMangled string
}

func (*Binary) expressionNode() {}

// Match is `value === pattern`; always infers to bool.
type Match struct {
	Base
	Value   Expression
	Pattern Pattern
}

func (*Match) expressionNode() {}

// Assignment is `target := value`. Target is restricted by the analyzer to an
// identifier (possibly namespaced) or a dereference.
type Assignment struct {
	Base
	Target Expression
	Value  Expression
}

func (*Assignment) expressionNode() {}

// StarToken is the shared wildcard token used by the `*` positional
// argument marker: a process-wide sentinel rather than a fresh token per
// occurrence.
var StarToken = token.Token{Kind: token.STAR, Lexeme: "*"}
