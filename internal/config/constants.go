// Package config carries process-wide ambient constants: no config file
// parsing happens at this layer, just named constants shared across
// packages instead of magic literals scattered through the checker and
// evaluator.
package config

// Version is the current interpreter version.
var Version = "0.1.0"

// SourceFileExt is the canonical source extension for this project.
const SourceFileExt = ".avl"

// IsTestMode switches on deterministic string rendering of generated
// names (synthetic standins minted during specialisation) under `go
// test`, where output stability matters more than readability.
var IsTestMode = false

// QuantumBitWidths are the only lengths a bit-string/qubit-string literal
// may declare.
var QuantumBitWidths = map[int]bool{1: true, 2: true, 4: true, 8: true}

// GlobalNamespace is the namespace every program implicitly also searches
// when a lookup namespace is WildcardNamespace.
const GlobalNamespace = ""

// WildcardNamespace is `"*"` namespace meaning "search": try the
// caller's namespace, then GlobalNamespace.
const WildcardNamespace = "*"

// MainFunctionName is the name entry-point lookup searches for: the
// arity-1 function `(*, __main__, 1)` that receives argv.
const MainFunctionName = "__main__"

// Built-in scalar type names.
const (
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeDec    = "dec"
	TypeString = "string"
	TypeBool   = "bool"
)

// Built-in bit-width-indexed scalar type name prefixes for bit-string and
// qubit-string literals, e.g. "bit4", "qubit8".
const (
	BitTypePrefix   = "bit"
	QubitTypePrefix = "qubit"
)

// Nullary boolean constructor names used by control-flow conditions and
// by `is`/`is not`.
const (
	TrueCtor  = "true"
	FalseCtor = "false"
)

// MaybeTypeName is the built-in one-parameter container wrapping list/map
// subscript results.
const MaybeTypeName = "maybe"

// JustCtor / NoneCtor are MaybeTypeName's two constructors.
const (
	JustCtor = "Just"
	NoneCtor = "None"
)

// Fixed unary/binary-operator to mangled-function-name table.
var BinaryOperatorFunctionNames = map[string]string{
	"+":  "__add__",
	"-":  "__sub__",
	"*":  "__mul__",
	"/":  "__div__",
	"%":  "__mod__",
	"&":  "__band__",
	"|":  "__bor__",
	"^":  "__bxor__",
	"<<": "__shl__",
	">>": "__shr__",
	"&&": "__and__",
	"||": "__or__",
	"==": "__eq__",
	"!=": "__neq__",
	"<":  "__lt__",
	">":  "__gt__",
	"<=": "__lte__",
	">=": "__gte__",
}

// UnaryOperatorFunctionNames maps prefix operators to mangled names.
var UnaryOperatorFunctionNames = map[string]string{
	"-": "__neg__",
	"!": "__not__",
	"~": "__bnot__",
}

// StructuralOperators are handled directly by the evaluator rather than decaying to
// a registered function.
var StructuralOperators = map[string]bool{"is": true, "is not": true}

// HashFuncName / EqFuncName are the fixed mangled names the inferer resolves for
// map-typed container literals.
const (
	HashFuncName = "__hash__"
	EqFuncName   = "__eq__"
)

// CastFuncName is the fixed function name the inferer resolves for cast
// expressions.
const CastFuncName = "__cast__"

// GetAttrFuncPrefix / GetItemFuncPrefix are the fixed name prefixes the inferer
// rewrites dot/subscript expressions to for non-tuple/non-container
// receivers.
const (
	GetAttrFuncPrefix = "__getattr_"
	GetItemFuncPrefix = "__getitem_"
)
