// Package builtins is the fixed registry of primitive operations the
// checker resolves calls to and the evaluator dispatches to directly,
// bypassing a user-defined function body: arithmetic on int/float/dec,
// string operations, casts between those scalars, and the hash/eq pair
// map literals need for their key type.
package builtins

import (
	"fmt"
	"math/big"

	"github.com/avalon-lang/avalon/internal/config"
	"github.com/avalon-lang/avalon/internal/specializer"
	"github.com/avalon-lang/avalon/internal/token"
	"github.com/avalon-lang/avalon/internal/types"
	"github.com/avalon-lang/avalon/internal/value"
)

// Key identifies one registry entry the same way a checked call site
// does: namespace, mangled name, arity.
type Key struct {
	Namespace string
	Mangled   string
	Arity     int
}

// Fn is a primitive implementation. It never blocks; type-correctness is
// already guaranteed by the checker before a builtin is ever invoked, so
// the only errors it returns are runtime domain errors (integer division
// or modulo by zero, a negative shift amount).
type Fn func(args []value.Value) (value.Value, error)

// Registry is the map the evaluator consults for every call whose
// resolved function is marked Builtin.
type Registry struct {
	entries map[Key]Fn
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Key]Fn)}
}

// Register installs fn under (namespace, mangled, arity), mangled the
// same way the specialiser mangles a user function so both kinds of
// callee resolve through one lookup scheme.
func (r *Registry) Register(namespace, name string, paramTypeNames []string, fn Fn) {
	r.registerReturning(namespace, name, paramTypeNames, "", fn)
}

// registerReturning is Register plus an explicit return type name, needed
// wherever the argument types alone don't disambiguate overloads — casts
// share one argument arity across every destination type, so the target
// type has to be folded into the mangled name too.
func (r *Registry) registerReturning(namespace, name string, paramTypeNames []string, returnTypeName string, fn Fn) {
	params := make([]*types.Instance, len(paramTypeNames))
	for i, n := range paramTypeNames {
		params[i] = scalarInstance(n)
	}
	var ret *types.Instance
	if returnTypeName != "" {
		ret = scalarInstance(returnTypeName)
	}
	mangled := specializer.MangleName(namespace, name, params, ret)
	r.entries[Key{Namespace: namespace, Mangled: mangled, Arity: len(paramTypeNames)}] = fn
}

// MangledNameFor returns the registry key a call site with these
// argument type names would resolve to, used by the checker to probe
// the registry during overload resolution.
func MangledNameFor(namespace, name string, paramTypeNames []string) string {
	params := make([]*types.Instance, len(paramTypeNames))
	for i, n := range paramTypeNames {
		params[i] = scalarInstance(n)
	}
	return specializer.MangleName(namespace, name, params, nil)
}

// MangledCastNameFor is MangledNameFor's cast-specific counterpart: casts
// need the destination type folded into the key since every cast out of
// a given source type shares one argument arity.
func MangledCastNameFor(namespace, fromTypeName, toTypeName string) string {
	return specializer.MangleName(namespace, config.CastFuncName, []*types.Instance{scalarInstance(fromTypeName)}, scalarInstance(toTypeName))
}

// Lookup finds a registered primitive by (namespace, mangled, arity).
func (r *Registry) Lookup(namespace, mangled string, arity int) (Fn, bool) {
	fn, ok := r.entries[Key{Namespace: namespace, Mangled: mangled, Arity: arity}]
	return fn, ok
}

func scalarInstance(name string) *types.Instance {
	inst := types.NewUser(token.Zero, "", name, nil)
	inst.Type = &types.Type{Name: name}
	return inst
}

// NewStandardRegistry wires up the documented builtin surface: unary and
// binary arithmetic over int/float/dec, string concatenation/reverse/
// hash/equality, casts between those four scalar types, and the
// hash/eq pair used by map literals.
func NewStandardRegistry() *Registry {
	r := NewRegistry()
	registerIntArithmetic(r)
	registerIntBitwise(r)
	registerFloatArithmetic(r)
	registerDecArithmetic(r)
	registerStringOps(r)
	registerBoolOps(r)
	registerCasts(r)
	return r
}

func binaryEntry(r *Registry, op, typeName string, fn Fn) {
	r.Register("", config.BinaryOperatorFunctionNames[op], []string{typeName, typeName}, fn)
}

func unaryEntry(r *Registry, op, typeName string, fn Fn) {
	r.Register("", config.UnaryOperatorFunctionNames[op], []string{typeName}, fn)
}

func intVal(n *big.Int) value.Value { return value.Value{Kind: value.KInt, Int: n} }

func registerIntArithmetic(r *Registry) {
	ops := []string{"+", "-", "*"}
	for _, op := range ops {
		op := op
		binaryEntry(r, op, config.TypeInt, func(args []value.Value) (value.Value, error) {
			a, b := args[0].Int, args[1].Int
			var out big.Int
			switch op {
			case "+":
				out.Add(a, b)
			case "-":
				out.Sub(a, b)
			case "*":
				out.Mul(a, b)
			}
			return intVal(&out), nil
		})
	}
	binaryEntry(r, "/", config.TypeInt, func(args []value.Value) (value.Value, error) {
		if args[1].Int.Sign() == 0 {
			return value.Value{}, fmt.Errorf("builtins: division by zero")
		}
		var out big.Int
		out.Quo(args[0].Int, args[1].Int)
		return intVal(&out), nil
	})
	binaryEntry(r, "%", config.TypeInt, func(args []value.Value) (value.Value, error) {
		if args[1].Int.Sign() == 0 {
			return value.Value{}, fmt.Errorf("builtins: modulo by zero")
		}
		var out big.Int
		out.Rem(args[0].Int, args[1].Int)
		return intVal(&out), nil
	})
	cmp := map[string]func(c int) bool{
		"==": func(c int) bool { return c == 0 },
		"!=": func(c int) bool { return c != 0 },
		"<":  func(c int) bool { return c < 0 },
		">":  func(c int) bool { return c > 0 },
		"<=": func(c int) bool { return c <= 0 },
		">=": func(c int) bool { return c >= 0 },
	}
	for op, pred := range cmp {
		pred := pred
		binaryEntry(r, op, config.TypeInt, func(args []value.Value) (value.Value, error) {
			c := args[0].Int.Cmp(args[1].Int)
			return boolValue(pred(c)), nil
		})
	}
	unaryEntry(r, "-", config.TypeInt, func(args []value.Value) (value.Value, error) {
		var out big.Int
		out.Neg(args[0].Int)
		return intVal(&out), nil
	})
	r.Register("", config.HashFuncName, []string{config.TypeInt}, func(args []value.Value) (value.Value, error) {
		return intVal(new(big.Int).Set(args[0].Int)), nil
	})
}

func registerIntBitwise(r *Registry) {
	bitOp := func(fn func(out, a, b *big.Int) *big.Int) Fn {
		return func(args []value.Value) (value.Value, error) {
			var out big.Int
			fn(&out, args[0].Int, args[1].Int)
			return intVal(&out), nil
		}
	}
	binaryEntry(r, "&", config.TypeInt, bitOp(func(out, a, b *big.Int) *big.Int { return out.And(a, b) }))
	binaryEntry(r, "|", config.TypeInt, bitOp(func(out, a, b *big.Int) *big.Int { return out.Or(a, b) }))
	binaryEntry(r, "^", config.TypeInt, bitOp(func(out, a, b *big.Int) *big.Int { return out.Xor(a, b) }))
	binaryEntry(r, "<<", config.TypeInt, func(args []value.Value) (value.Value, error) {
		if args[1].Int.Sign() < 0 {
			return value.Value{}, fmt.Errorf("builtins: negative shift amount")
		}
		var out big.Int
		out.Lsh(args[0].Int, uint(args[1].Int.Uint64()))
		return intVal(&out), nil
	})
	binaryEntry(r, ">>", config.TypeInt, func(args []value.Value) (value.Value, error) {
		if args[1].Int.Sign() < 0 {
			return value.Value{}, fmt.Errorf("builtins: negative shift amount")
		}
		var out big.Int
		out.Rsh(args[0].Int, uint(args[1].Int.Uint64()))
		return intVal(&out), nil
	})
	unaryEntry(r, "~", config.TypeInt, func(args []value.Value) (value.Value, error) {
		var out big.Int
		out.Not(args[0].Int)
		return intVal(&out), nil
	})
}

func registerBoolOps(r *Registry) {
	unaryEntry(r, "!", config.TypeBool, func(args []value.Value) (value.Value, error) {
		return boolValue(!args[0].IsTrue()), nil
	})
	binaryEntry(r, "&&", config.TypeBool, func(args []value.Value) (value.Value, error) {
		return boolValue(args[0].IsTrue() && args[1].IsTrue()), nil
	})
	binaryEntry(r, "||", config.TypeBool, func(args []value.Value) (value.Value, error) {
		return boolValue(args[0].IsTrue() || args[1].IsTrue()), nil
	})
	binaryEntry(r, "==", config.TypeBool, func(args []value.Value) (value.Value, error) {
		return boolValue(args[0].CtorName == args[1].CtorName), nil
	})
	binaryEntry(r, "!=", config.TypeBool, func(args []value.Value) (value.Value, error) {
		return boolValue(args[0].CtorName != args[1].CtorName), nil
	})
}

func registerFloatArithmetic(r *Registry) {
	floatOp := func(fn func(a, b float64) float64) Fn {
		return func(args []value.Value) (value.Value, error) {
			return value.Value{Kind: value.KFloat, Float: fn(args[0].Float, args[1].Float)}, nil
		}
	}
	binaryEntry(r, "+", config.TypeFloat, floatOp(func(a, b float64) float64 { return a + b }))
	binaryEntry(r, "-", config.TypeFloat, floatOp(func(a, b float64) float64 { return a - b }))
	binaryEntry(r, "*", config.TypeFloat, floatOp(func(a, b float64) float64 { return a * b }))
	binaryEntry(r, "/", config.TypeFloat, floatOp(func(a, b float64) float64 { return a / b }))
	unaryEntry(r, "-", config.TypeFloat, func(args []value.Value) (value.Value, error) {
		return value.Value{Kind: value.KFloat, Float: -args[0].Float}, nil
	})
}

func registerDecArithmetic(r *Registry) {
	decOp := func(fn func(a, b *big.Float) *big.Float) Fn {
		return func(args []value.Value) (value.Value, error) {
			return value.Value{Kind: value.KDecimal, Dec: fn(args[0].Dec, args[1].Dec)}, nil
		}
	}
	binaryEntry(r, "+", config.TypeDec, decOp(func(a, b *big.Float) *big.Float { return new(big.Float).Add(a, b) }))
	binaryEntry(r, "-", config.TypeDec, decOp(func(a, b *big.Float) *big.Float { return new(big.Float).Sub(a, b) }))
	binaryEntry(r, "*", config.TypeDec, decOp(func(a, b *big.Float) *big.Float { return new(big.Float).Mul(a, b) }))
	binaryEntry(r, "/", config.TypeDec, decOp(func(a, b *big.Float) *big.Float { return new(big.Float).Quo(a, b) }))
	unaryEntry(r, "-", config.TypeDec, func(args []value.Value) (value.Value, error) {
		return value.Value{Kind: value.KDecimal, Dec: new(big.Float).Neg(args[0].Dec)}, nil
	})
}

func registerStringOps(r *Registry) {
	binaryEntry(r, "+", config.TypeString, func(args []value.Value) (value.Value, error) {
		return value.Value{Kind: value.KString, Str: args[0].Str + args[1].Str}, nil
	})
	r.Register("", "__reverse__", []string{config.TypeString}, func(args []value.Value) (value.Value, error) {
		runes := []rune(args[0].Str)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return value.Value{Kind: value.KString, Str: string(runes)}, nil
	})
	r.Register("", config.HashFuncName, []string{config.TypeString}, func(args []value.Value) (value.Value, error) {
		var h int64
		for _, c := range args[0].Str {
			h = h*31 + int64(c)
		}
		return intVal(big.NewInt(h)), nil
	})
	binaryEntry(r, "==", config.TypeString, func(args []value.Value) (value.Value, error) {
		return boolValue(args[0].Str == args[1].Str), nil
	})
}

func registerCasts(r *Registry) {
	scalars := []string{config.TypeInt, config.TypeFloat, config.TypeDec, config.TypeString}
	for _, from := range scalars {
		for _, to := range scalars {
			from, to := from, to
			if from == to {
				continue
			}
			r.registerReturning("", config.CastFuncName, []string{from}, to, castFn(from, to))
		}
	}
}

func castFn(from, to string) Fn {
	return func(args []value.Value) (value.Value, error) {
		in := args[0]
		switch to {
		case config.TypeInt:
			return intVal(toInt(in)), nil
		case config.TypeFloat:
			return value.Value{Kind: value.KFloat, Float: toFloat(in)}, nil
		case config.TypeDec:
			return value.Value{Kind: value.KDecimal, Dec: toDec(in)}, nil
		case config.TypeString:
			return value.Value{Kind: value.KString, Str: in.String()}, nil
		default:
			return value.Value{}, fmt.Errorf("builtins: unsupported cast target %q", to)
		}
	}
}

func toInt(v value.Value) *big.Int {
	switch v.Kind {
	case value.KInt:
		return new(big.Int).Set(v.Int)
	case value.KFloat:
		out, _ := big.NewFloat(v.Float).Int(nil)
		return out
	case value.KDecimal:
		out, _ := v.Dec.Int(nil)
		return out
	default:
		return big.NewInt(0)
	}
}

func toFloat(v value.Value) float64 {
	switch v.Kind {
	case value.KInt:
		f := new(big.Float).SetInt(v.Int)
		out, _ := f.Float64()
		return out
	case value.KFloat:
		return v.Float
	case value.KDecimal:
		out, _ := v.Dec.Float64()
		return out
	default:
		return 0
	}
}

func toDec(v value.Value) *big.Float {
	switch v.Kind {
	case value.KInt:
		return new(big.Float).SetInt(v.Int)
	case value.KFloat:
		return big.NewFloat(v.Float)
	case value.KDecimal:
		return new(big.Float).Set(v.Dec)
	default:
		return new(big.Float)
	}
}

func boolValue(b bool) value.Value {
	name := config.FalseCtor
	if b {
		name = config.TrueCtor
	}
	return value.Value{Kind: value.KUser, CtorName: name}
}
