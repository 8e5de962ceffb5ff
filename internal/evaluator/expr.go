package evaluator

import (
	"math/big"
	"strconv"

	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/config"
	"github.com/avalon-lang/avalon/internal/diagnostics"
	"github.com/avalon-lang/avalon/internal/token"
	"github.com/avalon-lang/avalon/internal/value"
)

// Eval interprets e in env, threading ns as the caller's enclosing
// namespace exactly the way the checker's Infer threads it — a
// namespace-bare identifier, constructor, or call resolves in ns first.
func (e *Evaluator) Eval(expr ast.Expression, env *Environment, ns string) (value.Value, *diagnostics.Error) {
	switch n := expr.(type) {
	case *ast.Underscore:
		return value.Value{Kind: value.KUser, CtorName: "_"}, nil

	case *ast.Literal:
		return e.evalLiteral(n)

	case *ast.Reference:
		id, ok := n.Value.(*ast.Identifier)
		if !ok {
			return value.Value{}, e.interpretErr(n, "ref target is not a plain identifier")
		}
		cell, ok := env.Lookup(id.Name)
		if !ok {
			return value.Value{}, e.interpretErr(n, "ref to undeclared variable %q", id.Name)
		}
		return value.Value{Kind: value.KReference, Ref: cell}, nil

	case *ast.Dereference:
		refVal, err := e.Eval(n.Value, env, ns)
		if err != nil {
			return value.Value{}, err
		}
		if refVal.Kind != value.KReference || refVal.Ref == nil {
			return value.Value{}, e.interpretErr(n, "dref of a non-reference value")
		}
		return refVal.Ref.Value, nil

	case *ast.Identifier:
		return e.evalIdentifier(n, env, ns)

	case *ast.Grouped:
		return e.Eval(n.Inner, env, ns)

	case *ast.Tuple:
		return e.evalTuple(n, env, ns)

	case *ast.List:
		elems := make([]value.Value, len(n.Elements))
		for i, el := range n.Elements {
			v, err := e.Eval(el, env, ns)
			if err != nil {
				return value.Value{}, err
			}
			elems[i] = v
		}
		return value.Value{Kind: value.KList, Elements: elems}, nil

	case *ast.MapLit:
		pairs := make([]value.Pair, len(n.Entries))
		for i, entry := range n.Entries {
			k, err := e.Eval(entry.Key, env, ns)
			if err != nil {
				return value.Value{}, err
			}
			v, err := e.Eval(entry.Value, env, ns)
			if err != nil {
				return value.Value{}, err
			}
			pairs[i] = value.Pair{Key: k, Value: v}
		}
		return value.Value{Kind: value.KMap, Pairs: pairs, MapHashFunc: n.HashFunc, MapEqFunc: n.EqFunc}, nil

	case *ast.Cast:
		v, err := e.Eval(n.Value, env, ns)
		if err != nil {
			return value.Value{}, err
		}
		return e.dispatchBuiltin(n, n.CalleeMangled, []value.Value{v})

	case *ast.Unary:
		v, err := e.Eval(n.Operand, env, ns)
		if err != nil {
			return value.Value{}, err
		}
		return e.dispatchBuiltin(n, n.CalleeMangled, []value.Value{v})

	case *ast.Binary:
		return e.evalBinary(n, env, ns)

	case *ast.Dot:
		return e.evalDot(n, env, ns)

	case *ast.Subscript:
		return e.evalSubscript(n, env, ns)

	case *ast.Call:
		return e.evalCall(n, env, ns)

	case *ast.Match:
		v, err := e.Eval(n.Value, env, ns)
		if err != nil {
			return value.Value{}, err
		}
		matched, err2 := e.matchPattern(n.Pattern, v, env, ns)
		if err2 != nil {
			return value.Value{}, err2
		}
		return boolValue(matched), nil

	case *ast.Assignment:
		return e.evalAssignment(n, env, ns)

	default:
		return value.Value{}, e.interpretErr(expr, "evaluator: unhandled expression kind %T", expr)
	}
}

func (e *Evaluator) evalLiteral(lit *ast.Literal) (value.Value, *diagnostics.Error) {
	switch lit.Category {
	case ast.LitInt:
		n, ok := new(big.Int).SetString(lit.Raw, 10)
		if !ok {
			return value.Value{}, e.interpretErr(lit, "malformed int literal %q", lit.Raw)
		}
		return value.Value{Kind: value.KInt, Int: n}, nil
	case ast.LitFloat:
		f, err := strconv.ParseFloat(lit.Raw, 64)
		if err != nil {
			return value.Value{}, e.interpretErr(lit, "malformed float literal %q", lit.Raw)
		}
		return value.Value{Kind: value.KFloat, Float: f}, nil
	case ast.LitDecimal:
		d, _, err := big.ParseFloat(lit.Raw, 10, 100, big.ToNearestEven)
		if err != nil {
			return value.Value{}, e.interpretErr(lit, "malformed decimal literal %q", lit.Raw)
		}
		return value.Value{Kind: value.KDecimal, Dec: d}, nil
	case ast.LitString:
		return value.Value{Kind: value.KString, Str: lit.Raw}, nil
	case ast.LitBitString, ast.LitQubitString:
		return value.Value{Kind: value.KBitString, Bits: lit.Bits, Width: lit.Width}, nil
	default:
		return value.Value{}, e.interpretErr(lit, "unhandled literal category %d", lit.Category)
	}
}

func (e *Evaluator) evalIdentifier(id *ast.Identifier, env *Environment, ns string) (value.Value, *diagnostics.Error) {
	if id.Namespace == "" {
		if cell, ok := env.Lookup(id.Name); ok {
			return cell.Value, nil
		}
	}
	lookupNS := id.Namespace
	if lookupNS == "" {
		lookupNS = config.WildcardNamespace
	}
	ctor, derr := e.Root.LookupConstructor(lookupNS, ns, id.Name, 0, id.GetToken())
	if derr != nil {
		return value.Value{}, derr
	}
	return value.Value{Kind: value.KUser, CtorNamespace: ctor.Owner.Namespace, CtorName: ctor.Name}, nil
}

func (e *Evaluator) evalTuple(n *ast.Tuple, env *Environment, ns string) (value.Value, *diagnostics.Error) {
	elems := make([]value.Value, len(n.Elements))
	names := make([]string, len(n.Elements))
	anyNamed := false
	for i, el := range n.Elements {
		v, err := e.Eval(el.Value, env, ns)
		if err != nil {
			return value.Value{}, err
		}
		elems[i] = v
		names[i] = el.Name
		if el.Name != "" {
			anyNamed = true
		}
	}
	if !anyNamed {
		names = nil
	}
	return value.Value{Kind: value.KTuple, Elements: elems, Names: names}, nil
}

func (e *Evaluator) evalBinary(n *ast.Binary, env *Environment, ns string) (value.Value, *diagnostics.Error) {
	left, err := e.Eval(n.Left, env, ns)
	if err != nil {
		return value.Value{}, err
	}
	right, err := e.Eval(n.Right, env, ns)
	if err != nil {
		return value.Value{}, err
	}
	if config.StructuralOperators[n.Op] {
		same := identityEqual(left, right)
		if n.Op == "is not" {
			same = !same
		}
		return boolValue(same), nil
	}
	return e.dispatchBuiltin(n, n.CalleeMangled, []value.Value{left, right})
}

func (e *Evaluator) evalDot(n *ast.Dot, env *Environment, ns string) (value.Value, *diagnostics.Error) {
	if n.IsNamespace {
		return value.Value{}, e.interpretErr(n, "namespace-qualified dot access is not supported at runtime")
	}
	leftVal, err := e.Eval(n.Left, env, ns)
	if err != nil {
		return value.Value{}, err
	}
	if leftVal.Kind == value.KTuple {
		if v, ok := leftVal.NamedField(n.Name); ok {
			return v, nil
		}
		return value.Value{}, e.interpretErr(n, "tuple has no named field %q", n.Name)
	}
	if leftVal.Kind == value.KUser && len(leftVal.FieldNames) > 0 {
		for i, fname := range leftVal.FieldNames {
			if fname == n.Name {
				return leftVal.Fields[i], nil
			}
		}
	}
	return e.dispatchUser(n, n.CalleeMangled, []value.Value{leftVal})
}

func (e *Evaluator) evalSubscript(n *ast.Subscript, env *Environment, ns string) (value.Value, *diagnostics.Error) {
	containerVal, err := e.Eval(n.Container, env, ns)
	if err != nil {
		return value.Value{}, err
	}
	switch containerVal.Kind {
	case value.KTuple:
		lit, ok := n.Key.(*ast.Literal)
		if !ok || lit.Category != ast.LitInt {
			return value.Value{}, e.interpretErr(n, "tuple subscript key is not an integer literal")
		}
		idx, convErr := strconv.Atoi(lit.Raw)
		if convErr != nil || idx < 0 || idx >= len(containerVal.Elements) {
			return value.Value{}, e.interpretErr(n, "tuple index %s out of range", lit.Raw)
		}
		return containerVal.Elements[idx], nil

	case value.KList:
		keyVal, err := e.Eval(n.Key, env, ns)
		if err != nil {
			return value.Value{}, err
		}
		if keyVal.Kind != value.KInt {
			return value.Value{}, e.interpretErr(n, "list subscript key is not an int")
		}
		idx := int(keyVal.Int.Int64())
		if idx < 0 || idx >= len(containerVal.Elements) {
			return wrapNone(), nil
		}
		return wrapJust(containerVal.Elements[idx]), nil

	case value.KMap:
		keyVal, err := e.Eval(n.Key, env, ns)
		if err != nil {
			return value.Value{}, err
		}
		for _, pair := range containerVal.Pairs {
			eq, eqErr := e.mapKeysEqual(containerVal, pair.Key, keyVal)
			if eqErr != nil {
				return value.Value{}, eqErr
			}
			if eq {
				return wrapJust(pair.Value), nil
			}
		}
		return wrapNone(), nil

	default:
		keyVal, err := e.Eval(n.Key, env, ns)
		if err != nil {
			return value.Value{}, err
		}
		return e.dispatchUser(n, n.CalleeMangled, []value.Value{containerVal, keyVal})
	}
}

// mapKeysEqual compares two map keys by the hash+eq callees resolved for
// the map literal that produced mv, per the iterate-and-compare rule:
// the hash is consulted first since a mismatched hash short-circuits
// the eq call, matching how a real hash-bucket map would behave even
// though the representation here is a plain slice.
func (e *Evaluator) mapKeysEqual(mv value.Value, a, b value.Value) (bool, *diagnostics.Error) {
	if mv.MapHashFunc != "" {
		ha, err := e.callNamed(mv.MapHashFunc, []value.Value{a})
		if err != nil {
			return false, err
		}
		hb, err := e.callNamed(mv.MapHashFunc, []value.Value{b})
		if err != nil {
			return false, err
		}
		if ha.Kind == value.KInt && hb.Kind == value.KInt && ha.Int.Cmp(hb.Int) != 0 {
			return false, nil
		}
	}
	if mv.MapEqFunc == "" {
		return valuesEqual(a, b), nil
	}
	eqVal, err := e.callNamed(mv.MapEqFunc, []value.Value{a, b})
	if err != nil {
		return false, err
	}
	return eqVal.IsTrue(), nil
}

// callNamed dispatches to a resolved mangled callee, trying the builtin
// registry first (scalar hash/eq are registered there) and falling back
// to the user-function index for a custom type's __hash__/__eq__.
func (e *Evaluator) callNamed(mangled string, args []value.Value) (value.Value, *diagnostics.Error) {
	if fn, ok := e.Builtins.Lookup("", mangled, len(args)); ok {
		v, err := fn(args)
		if err != nil {
			return value.Value{}, diagnostics.New(diagnostics.PhaseInterpreter, diagnostics.ErrInterpret, token.Token{}, "%v", err)
		}
		return v, nil
	}
	if fn, ok := e.Funcs[mangled]; ok {
		return e.CallFunction(fn, args)
	}
	return value.Value{}, diagnostics.New(diagnostics.PhaseInterpreter, diagnostics.ErrInterpret, token.Token{}, "unresolved callee %q", mangled)
}

func (e *Evaluator) evalCall(n *ast.Call, env *Environment, ns string) (value.Value, *diagnostics.Error) {
	switch n.Kind {
	case ast.CallFunction:
		args := make([]value.Value, len(n.Args))
		for i, a := range n.Args {
			v, err := e.Eval(a.Value, env, ns)
			if err != nil {
				return value.Value{}, err
			}
			args[i] = v
		}
		return e.dispatchUser(n, n.CalleeMangled, args)

	case ast.CallRecordConstructor:
		ctor, derr := e.Root.LookupConstructor(n.CalleeNS, ns, n.Name, n.CalleeArity, n.GetToken())
		if derr != nil {
			return value.Value{}, derr
		}
		fieldNames := ctor.FieldNames()
		byName := make(map[string]value.Value, len(n.Args))
		for _, a := range n.Args {
			v, err := e.Eval(a.Value, env, ns)
			if err != nil {
				return value.Value{}, err
			}
			byName[a.Name] = v
		}
		fields := make([]value.Value, len(fieldNames))
		for i, fname := range fieldNames {
			fields[i] = byName[fname]
		}
		return value.Value{Kind: value.KUser, CtorNamespace: ctor.Owner.Namespace, CtorName: ctor.Name, Fields: fields, FieldNames: fieldNames}, nil

	case ast.CallDefaultConstructor:
		ctor, derr := e.Root.LookupConstructor(n.CalleeNS, ns, n.Name, n.CalleeArity, n.GetToken())
		if derr != nil {
			return value.Value{}, derr
		}
		fields := make([]value.Value, len(n.Args))
		for i, a := range n.Args {
			v, err := e.Eval(a.Value, env, ns)
			if err != nil {
				return value.Value{}, err
			}
			fields[i] = v
		}
		return value.Value{Kind: value.KUser, CtorNamespace: ctor.Owner.Namespace, CtorName: ctor.Name, Fields: fields}, nil

	default:
		return value.Value{}, e.interpretErr(n, "call node left unresolved at evaluation time")
	}
}

func (e *Evaluator) evalAssignment(n *ast.Assignment, env *Environment, ns string) (value.Value, *diagnostics.Error) {
	v, err := e.Eval(n.Value, env, ns)
	if err != nil {
		return value.Value{}, err
	}
	switch target := n.Target.(type) {
	case *ast.Identifier:
		cell, ok := env.Lookup(target.Name)
		if !ok {
			return value.Value{}, e.interpretErr(n, "assignment to undeclared variable %q", target.Name)
		}
		cell.Value = v
		return v, nil
	case *ast.Dereference:
		refVal, derr := e.Eval(target.Value, env, ns)
		if derr != nil {
			return value.Value{}, derr
		}
		if refVal.Kind != value.KReference || refVal.Ref == nil {
			return value.Value{}, e.interpretErr(n, "assignment through a non-reference dref target")
		}
		refVal.Ref.Value = v
		return v, nil
	default:
		return value.Value{}, e.interpretErr(n, "unsupported assignment target %T", n.Target)
	}
}

// dispatchBuiltin resolves operator/cast decay: always namespace "",
// never a user-declared function.
func (e *Evaluator) dispatchBuiltin(site ast.Expression, mangled string, args []value.Value) (value.Value, *diagnostics.Error) {
	fn, ok := e.Builtins.Lookup("", mangled, len(args))
	if !ok {
		return value.Value{}, e.interpretErr(site, "no builtin registered for %q/%d", mangled, len(args))
	}
	v, err := fn(args)
	if err != nil {
		return value.Value{}, e.interpretErr(site, "%v", err)
	}
	return v, nil
}

// dispatchUser resolves Call/Dot-decay/Subscript-decay callees: always a
// genuinely declared function, indexed by mangled name alone.
func (e *Evaluator) dispatchUser(site ast.Expression, mangled string, args []value.Value) (value.Value, *diagnostics.Error) {
	fn, ok := e.Funcs[mangled]
	if !ok {
		return value.Value{}, e.interpretErr(site, "no function registered for %q/%d", mangled, len(args))
	}
	return e.CallFunction(fn, args)
}

func (e *Evaluator) interpretErr(site ast.Expression, format string, args ...interface{}) *diagnostics.Error {
	return diagnostics.New(diagnostics.PhaseInterpreter, diagnostics.ErrInterpret, site.GetToken(), format, args...)
}

func boolValue(b bool) value.Value {
	if b {
		return value.Value{Kind: value.KUser, CtorName: config.TrueCtor}
	}
	return value.Value{Kind: value.KUser, CtorName: config.FalseCtor}
}

func wrapJust(inner value.Value) value.Value {
	return value.Value{Kind: value.KUser, CtorName: config.JustCtor, Fields: []value.Value{inner}}
}

func wrapNone() value.Value {
	return value.Value{Kind: value.KUser, CtorName: config.NoneCtor}
}

// identityEqual backs `is`/`is not`: two values are the same identity
// only when both are references into the same variable cell.
func identityEqual(a, b value.Value) bool {
	return a.Kind == value.KReference && b.Kind == value.KReference && a.Ref == b.Ref
}

// valuesEqual is the structural fallback for a map key comparison when
// no __eq__ callee was resolved (scalar keys only reach here; a custom
// type always has one resolved by the checker).
func valuesEqual(a, b value.Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case value.KInt:
		return a.Int.Cmp(b.Int) == 0
	case value.KFloat:
		return a.Float == b.Float
	case value.KDecimal:
		return a.Dec.Cmp(b.Dec) == 0
	case value.KString:
		return a.Str == b.Str
	case value.KUser:
		return a.CtorName == b.CtorName
	default:
		return false
	}
}
