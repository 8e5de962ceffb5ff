// Package value defines the runtime values the evaluator and the
// built-in registry exchange: the interpreted form of a checked
// expression, tagged by the same closed category set as a type
// instance's constructors.
package value

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/avalon-lang/avalon/internal/types"
)

// Kind is the closed set of runtime value shapes.
type Kind int

const (
	KInt Kind = iota
	KFloat
	KDecimal
	KString
	KBitString
	KUser // a default- or record-constructor application
	KTuple
	KList
	KMap
	KReference
)

// Value is a tagged runtime value. Instance is the checked type
// instance the value was produced for; exactly one payload field below
// is meaningful, selected by Kind.
type Value struct {
	Kind     Kind
	Instance *types.Instance

	Int   *big.Int
	Float float64
	Dec   *big.Float
	Str   string

	Bits  []bool // bit-string/qubit-string payload
	Width int

	// KUser: constructor identity plus positional or named field values.
	CtorNamespace string
	CtorName      string
	Fields        []Value
	FieldNames    []string // parallel to Fields when the constructor is a record

	Elements []Value  // KTuple/KList
	Names    []string // KTuple only, parallel to Elements; "" for an unnamed element
	Pairs    []Pair   // KMap, insertion order preserved

	// KMap: the mangled __hash__/__eq__ callees resolved for this map's
	// key type, carried on the value itself so a subscript through a
	// variable holding the map doesn't need to re-derive them from the
	// literal that built it.
	MapHashFunc string
	MapEqFunc   string

	// KReference: identity is the referred variable, not a copy of its
	// current value — pointer-equality backs `is`/`is not`.
	Ref *Variable
}

// Pair is one key/value entry of a map value, kept in insertion order
// so first-match-wins lookups behave deterministically.
type Pair struct {
	Key   Value
	Value Value
}

// Variable is the minimal runtime cell the evaluator threads through
// scopes: a mutable slot plus enough identity for reference equality.
type Variable struct {
	Name    string
	Value   Value
	Mutable bool
}

func Int(n int64, inst *types.Instance) Value {
	return Value{Kind: KInt, Instance: inst, Int: big.NewInt(n)}
}

func Str(s string, inst *types.Instance) Value {
	return Value{Kind: KString, Instance: inst, Str: s}
}

func Bool(b bool, trueCtor, falseCtor *types.Instance) Value {
	name := "false"
	inst := falseCtor
	if b {
		name = "true"
		inst = trueCtor
	}
	return Value{Kind: KUser, Instance: inst, CtorName: name}
}

// IsTrue reports whether v is the nullary `true` constructor, the only
// value control flow treats as truthy.
func (v Value) IsTrue() bool {
	return v.Kind == KUser && v.CtorName == "true" && len(v.Fields) == 0
}

// NamedField returns the tuple element declared under name, if v is a
// KTuple value carrying names and one of them matches.
func (v Value) NamedField(name string) (Value, bool) {
	for i, n := range v.Names {
		if n == name {
			return v.Elements[i], true
		}
	}
	return Value{}, false
}

func (v Value) String() string {
	switch v.Kind {
	case KInt:
		return v.Int.String()
	case KFloat:
		return fmt.Sprintf("%g", v.Float)
	case KDecimal:
		return v.Dec.Text('f', -1)
	case KString:
		return v.Str
	case KBitString:
		var b strings.Builder
		for _, bit := range v.Bits {
			if bit {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		return b.String()
	case KUser:
		if len(v.Fields) == 0 {
			return v.CtorName
		}
		parts := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			parts[i] = f.String()
		}
		return v.CtorName + "(" + strings.Join(parts, ", ") + ")"
	case KTuple:
		parts := make([]string, len(v.Elements))
		for i, e := range v.Elements {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KList:
		parts := make([]string, len(v.Elements))
		for i, e := range v.Elements {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KMap:
		parts := make([]string, len(v.Pairs))
		for i, p := range v.Pairs {
			parts[i] = p.Key.String() + ": " + p.Value.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KReference:
		if v.Ref == nil {
			return "ref(nil)"
		}
		return "ref(" + v.Ref.Value.String() + ")"
	default:
		return "<value>"
	}
}
