package analyzer

import (
	"strconv"

	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/builtins"
	"github.com/avalon-lang/avalon/internal/config"
	"github.com/avalon-lang/avalon/internal/diagnostics"
	"github.com/avalon-lang/avalon/internal/symbols"
	"github.com/avalon-lang/avalon/internal/token"
	"github.com/avalon-lang/avalon/internal/types"
)

func (c *Checker) fail(tok token.Token, format string, args ...interface{}) (*types.Instance, *diagnostics.Error) {
	err := diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrInvalidExpression, tok, format, args...)
	c.Sink.Report(err)
	return nil, err
}

var comparisonOps = map[string]bool{
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
}

// containsMatch reports whether e structurally contains a Match node
// anywhere beneath it (including e itself). A match expression is only
// ever checked as the direct expression of a Match node's own Infer
// call — every other expression shape that could embed one structurally
// rejects it instead, since match's control-flow-like semantics don't
// compose with being a sub-expression of an arithmetic or call
// expression.
func containsMatch(e ast.Expression) bool {
	switch n := e.(type) {
	case nil:
		return false
	case *ast.Match:
		return true
	case *ast.Grouped:
		return containsMatch(n.Inner)
	case *ast.Reference:
		return containsMatch(n.Value)
	case *ast.Dereference:
		return containsMatch(n.Value)
	case *ast.Dot:
		return containsMatch(n.Left)
	case *ast.Subscript:
		return containsMatch(n.Container) || containsMatch(n.Key)
	case *ast.Tuple:
		for _, el := range n.Elements {
			if containsMatch(el.Value) {
				return true
			}
		}
		return false
	case *ast.List:
		for _, el := range n.Elements {
			if containsMatch(el) {
				return true
			}
		}
		return false
	case *ast.MapLit:
		for _, entry := range n.Entries {
			if containsMatch(entry.Key) || containsMatch(entry.Value) {
				return true
			}
		}
		return false
	case *ast.Cast:
		return containsMatch(n.Value)
	case *ast.Unary:
		return containsMatch(n.Operand)
	case *ast.Binary:
		return containsMatch(n.Left) || containsMatch(n.Right)
	case *ast.Call:
		for _, a := range n.Args {
			if containsMatch(a.Value) {
				return true
			}
		}
		return false
	case *ast.Assignment:
		return containsMatch(n.Target) || containsMatch(n.Value)
	default:
		return false
	}
}

// Infer dispatches over every expression variant, inferring and caching
// its type instance while enforcing the well-formedness rule that
// variant carries.
func (c *Checker) Infer(e ast.Expression, scope *symbols.Scope, ns string) (inst *types.Instance, err *diagnostics.Error) {
	defer func() {
		if err == nil {
			return
		}
		for _, reported := range c.Sink.Errors() {
			if reported == err {
				return
			}
		}
		c.Sink.Report(err)
	}()
	switch n := e.(type) {
	case *ast.Underscore:
		return c.setInstance(n, types.NewStar(n.GetToken())), nil

	case *ast.Literal:
		return c.inferLiteral(n, scope, ns)

	case *ast.Reference:
		inner, err := c.Infer(n.Value, scope, ns)
		if err != nil {
			return nil, err
		}
		if inner.IsReference {
			return c.fail(n.GetToken(), "cannot take a reference to an already-reference expression")
		}
		return c.setInstance(n, inner.Reffed(n.GetToken())), nil

	case *ast.Dereference:
		inner, err := c.Infer(n.Value, scope, ns)
		if err != nil {
			return nil, err
		}
		if !inner.IsReference {
			return c.fail(n.GetToken(), "cannot dereference a non-reference expression")
		}
		deref := inner.Dereffed()
		if types.IsQuantum(deref) {
			return c.fail(n.GetToken(), "cannot dereference a quantum-typed reference")
		}
		return c.setInstance(n, deref), nil

	case *ast.Identifier:
		inst, err := c.inferIdentifier(n, scope, ns)
		if err != nil {
			return nil, err
		}
		return c.setInstance(n, inst), nil

	case *ast.Grouped:
		if containsMatch(n.Inner) {
			return c.fail(n.GetToken(), "match expression may not appear nested inside a parenthesised expression")
		}
		inner, err := c.Infer(n.Inner, scope, ns)
		if err != nil {
			return nil, err
		}
		return c.setInstance(n, inner), nil

	case *ast.Tuple:
		return c.inferTuple(n, scope, ns)

	case *ast.List:
		return c.inferList(n, scope, ns)

	case *ast.MapLit:
		return c.inferMapLit(n, scope, ns)

	case *ast.Cast:
		return c.inferCast(n, scope, ns)

	case *ast.Unary:
		return c.inferUnary(n, scope, ns)

	case *ast.Binary:
		return c.inferBinary(n, scope, ns)

	case *ast.Dot:
		return c.inferDot(n, scope, ns)

	case *ast.Subscript:
		return c.inferSubscript(n, scope, ns)

	case *ast.Call:
		return c.inferCall(n, scope, ns)

	case *ast.Match:
		return c.inferMatch(n, scope, ns)

	case *ast.Assignment:
		return c.inferAssignment(n, scope, ns)

	default:
		return c.fail(e.GetToken(), "checker: unhandled expression kind %T", e)
	}
}

func (c *Checker) inferLiteral(lit *ast.Literal, scope *symbols.Scope, ns string) (*types.Instance, *diagnostics.Error) {
	var name string
	switch lit.Category {
	case ast.LitInt:
		name = config.TypeInt
	case ast.LitFloat:
		name = config.TypeFloat
	case ast.LitDecimal:
		name = config.TypeDec
	case ast.LitString:
		name = config.TypeString
	case ast.LitBitString:
		if !config.QuantumBitWidths[lit.Width] {
			return c.fail(lit.GetToken(), "bit-string literal has disallowed width %d", lit.Width)
		}
		name = config.BitTypePrefix + strconv.Itoa(lit.Width)
	case ast.LitQubitString:
		if !config.QuantumBitWidths[lit.Width] {
			return c.fail(lit.GetToken(), "qubit-string literal has disallowed width %d", lit.Width)
		}
		name = config.QubitTypePrefix + strconv.Itoa(lit.Width)
	default:
		return c.fail(lit.GetToken(), "checker: unhandled literal category %v", lit.Category)
	}

	inferred, err := resolveScalar(scope, ns, lit.GetToken(), name)
	if err != nil {
		return nil, err
	}

	if lit.ParserType != nil {
		if _, _, perr := types.CheckInstance(lit.ParserType, scope, ns, nil); perr != nil {
			return nil, perr
		}
		if !types.WeakEqual(lit.ParserType, inferred) {
			return c.fail(lit.GetToken(), "literal annotation %s does not match its inferred type %s",
				lit.ParserType.String(), inferred.String())
		}
		return c.setInstance(lit, lit.ParserType), nil
	}
	return c.setInstance(lit, inferred), nil
}

func (c *Checker) inferIdentifier(id *ast.Identifier, scope *symbols.Scope, ns string) (*types.Instance, *diagnostics.Error) {
	if id.Namespace == "" {
		if v, ok := scope.LookupVariable(id.Name); ok {
			v.Used = true
			if v.DeclaredType != nil {
				return v.DeclaredType, nil
			}
		}
	}

	lookupNS := id.Namespace
	if lookupNS == "" {
		lookupNS = config.WildcardNamespace
	}
	ctor, err := scope.LookupConstructor(lookupNS, ns, id.Name, 0, id.GetToken())
	if err != nil {
		return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrSymbolNotFound, id.GetToken(),
			"identifier %q does not resolve to a variable or nullary constructor", id.Name)
	}
	return instanceFromConstructor(ctor, id.GetToken()), nil
}

// instanceFromConstructor builds the instance a bare constructor
// reference infers to: the owner type applied to a fresh abstract
// parameter per declared standin, since a nullary reference to a
// parametrised type's constructor (e.g. `None` for `maybe<T>`) carries
// no argument to unify T against.
func instanceFromConstructor(ctor *types.Constructor, tok token.Token) *types.Instance {
	owner := ctor.Owner
	params := make([]*types.Instance, len(owner.Standins))
	for i, s := range owner.Standins {
		params[i] = standinInstance(s)
	}
	inst := types.NewUser(tok, owner.Namespace, owner.Name, params)
	inst.Type = owner
	inst.IsParametrized = len(params) > 0
	return inst
}

func (c *Checker) inferTuple(n *ast.Tuple, scope *symbols.Scope, ns string) (*types.Instance, *diagnostics.Error) {
	for _, el := range n.Elements {
		if containsMatch(el.Value) {
			return c.fail(n.GetToken(), "match expression may not appear nested inside a tuple literal")
		}
	}
	params := make([]*types.Instance, len(n.Elements))
	for i, el := range n.Elements {
		inst, err := c.Infer(el.Value, scope, ns)
		if err != nil {
			return nil, err
		}
		params[i] = inst
	}
	return c.setInstance(n, types.NewTuple(n.GetToken(), params)), nil
}

func freshAbstract(label string) *types.Instance {
	inst := types.NewAbstract(token.Token{Kind: token.IDENT_UPPER, Lexeme: label}, label)
	inst.IsParametrized = true
	return inst
}

func (c *Checker) inferList(n *ast.List, scope *symbols.Scope, ns string) (*types.Instance, *diagnostics.Error) {
	for _, el := range n.Elements {
		if containsMatch(el) {
			return c.fail(n.GetToken(), "match expression may not appear nested inside a list literal")
		}
	}
	if len(n.Elements) == 0 {
		inst := types.NewList(n.GetToken(), freshAbstract("_elem"))
		inst.IsParametrized = true
		return c.setInstance(n, inst), nil
	}
	first, err := c.Infer(n.Elements[0], scope, ns)
	if err != nil {
		return nil, err
	}
	for _, el := range n.Elements[1:] {
		t, err := c.Infer(el, scope, ns)
		if err != nil {
			return nil, err
		}
		if !types.WeakEqual(first, t) {
			return c.fail(el.GetToken(), "heterogeneous list: element type %s does not match %s", t.String(), first.String())
		}
	}
	return c.setInstance(n, types.NewList(n.GetToken(), first)), nil
}

func (c *Checker) inferMapLit(n *ast.MapLit, scope *symbols.Scope, ns string) (*types.Instance, *diagnostics.Error) {
	for _, entry := range n.Entries {
		if containsMatch(entry.Key) || containsMatch(entry.Value) {
			return c.fail(n.GetToken(), "match expression may not appear nested inside a map literal")
		}
	}
	if len(n.Entries) == 0 {
		inst := types.NewMap(n.GetToken(), freshAbstract("_key"), freshAbstract("_val"))
		inst.IsParametrized = true
		return c.setInstance(n, inst), nil
	}
	keyInst, err := c.Infer(n.Entries[0].Key, scope, ns)
	if err != nil {
		return nil, err
	}
	valInst, err := c.Infer(n.Entries[0].Value, scope, ns)
	if err != nil {
		return nil, err
	}
	for _, entry := range n.Entries[1:] {
		k, err := c.Infer(entry.Key, scope, ns)
		if err != nil {
			return nil, err
		}
		if !types.WeakEqual(k, keyInst) {
			return c.fail(entry.Key.GetToken(), "heterogeneous map key: %s does not match %s", k.String(), keyInst.String())
		}
		v, err := c.Infer(entry.Value, scope, ns)
		if err != nil {
			return nil, err
		}
		if !types.WeakEqual(v, valInst) {
			return c.fail(entry.Value.GetToken(), "heterogeneous map value: %s does not match %s", v.String(), valInst.String())
		}
	}

	hashName := builtins.MangledNameFor("", config.HashFuncName, []string{keyInst.Name()})
	if _, ok := c.Builtins.Lookup("", hashName, 1); !ok {
		return c.fail(n.GetToken(), "no %s overload for map key type %s", config.HashFuncName, keyInst.String())
	}
	n.HashFunc = hashName
	n.EqFunc = builtins.MangledNameFor("", config.EqFuncName, []string{config.TypeInt, config.TypeInt})

	return c.setInstance(n, types.NewMap(n.GetToken(), keyInst, valInst)), nil
}

func (c *Checker) inferCast(n *ast.Cast, scope *symbols.Scope, ns string) (*types.Instance, *diagnostics.Error) {
	if containsMatch(n.Value) {
		return c.fail(n.GetToken(), "match expression may not appear nested inside a cast")
	}
	if _, _, err := types.CheckInstance(n.Target, scope, ns, nil); err != nil {
		return nil, err
	}
	if n.Target.IsParametrized {
		return c.fail(n.GetToken(), "cast target type may not be parametrized")
	}
	valInst, err := c.Infer(n.Value, scope, ns)
	if err != nil {
		return nil, err
	}
	mangled := builtins.MangledCastNameFor("", valInst.Name(), n.Target.Name())
	if _, ok := c.Builtins.Lookup("", mangled, 1); !ok {
		return c.fail(n.GetToken(), "no cast from %s to %s", valInst.String(), n.Target.String())
	}
	n.CalleeMangled = mangled
	return c.setInstance(n, n.Target), nil
}

func (c *Checker) inferUnary(n *ast.Unary, scope *symbols.Scope, ns string) (*types.Instance, *diagnostics.Error) {
	if containsMatch(n.Operand) {
		return c.fail(n.GetToken(), "match expression may not appear nested inside a unary expression")
	}
	operandInst, err := c.Infer(n.Operand, scope, ns)
	if err != nil {
		return nil, err
	}
	fnName, ok := config.UnaryOperatorFunctionNames[n.Op]
	if !ok {
		return c.fail(n.GetToken(), "unknown unary operator %q", n.Op)
	}
	mangled := builtins.MangledNameFor("", fnName, []string{operandInst.Name()})
	if _, ok := c.Builtins.Lookup("", mangled, 1); !ok {
		return c.fail(n.GetToken(), "no overload of %s for operand type %s", fnName, operandInst.String())
	}
	n.CalleeMangled = mangled

	result := operandInst
	if n.Op == "!" {
		result, err = resolveScalar(scope, ns, n.GetToken(), config.TypeBool)
		if err != nil {
			return nil, err
		}
	}
	return c.setInstance(n, result), nil
}

func (c *Checker) inferBinary(n *ast.Binary, scope *symbols.Scope, ns string) (*types.Instance, *diagnostics.Error) {
	if containsMatch(n.Left) || containsMatch(n.Right) {
		return c.fail(n.GetToken(), "match expression may not appear nested inside a binary expression")
	}
	leftInst, err := c.Infer(n.Left, scope, ns)
	if err != nil {
		return nil, err
	}
	rightInst, err := c.Infer(n.Right, scope, ns)
	if err != nil {
		return nil, err
	}
	if !types.WeakEqual(leftInst, rightInst) {
		return c.fail(n.GetToken(), "%s operands have incompatible types %s and %s", n.Op, leftInst.String(), rightInst.String())
	}

	if config.StructuralOperators[n.Op] {
		// `is`/`is not` never decay to a registered function; the
		// evaluator compares reference identity directly.
		boolInst, err := resolveScalar(scope, ns, n.GetToken(), config.TypeBool)
		if err != nil {
			return nil, err
		}
		return c.setInstance(n, boolInst), nil
	}

	fnName, ok := config.BinaryOperatorFunctionNames[n.Op]
	if !ok {
		return c.fail(n.GetToken(), "unknown binary operator %q", n.Op)
	}
	mangled := builtins.MangledNameFor("", fnName, []string{leftInst.Name(), rightInst.Name()})
	if _, ok := c.Builtins.Lookup("", mangled, 2); !ok {
		return c.fail(n.GetToken(), "no overload of %s for operand type %s", fnName, leftInst.String())
	}
	n.CalleeMangled = mangled

	if comparisonOps[n.Op] {
		boolInst, err := resolveScalar(scope, ns, n.GetToken(), config.TypeBool)
		if err != nil {
			return nil, err
		}
		return c.setInstance(n, boolInst), nil
	}
	return c.setInstance(n, leftInst), nil
}

func (c *Checker) inferDot(n *ast.Dot, scope *symbols.Scope, ns string) (*types.Instance, *diagnostics.Error) {
	leftInst, err := c.Infer(n.Left, scope, ns)
	if err != nil {
		return nil, err
	}

	if leftInst.Category == types.TUPLE {
		// Tuple instances carry no element names (the TUPLE category is
		// positional-only); a named access is checked against the value's
		// own Names at evaluation time instead of here.
		return c.setInstance(n, types.NewStar(n.GetToken())), nil
	}

	if leftInst.Category == types.USER && leftInst.Type != nil {
		for _, ctor := range leftInst.Type.Constructors {
			if ctor.Kind != types.RecordConstructor {
				continue
			}
			if field := ctor.FieldInstance(n.Name); field != nil {
				return c.setInstance(n, field), nil
			}
		}
	}

	lookupNS := config.WildcardNamespace
	candidates := scope.LookupFunctionCandidates(lookupNS, ns, config.GetAttrFuncPrefix+n.Name+"__", 1)
	for _, fn := range candidates {
		if !types.WeakEqual(fn.Params[0].Variable.DeclaredType, leftInst) {
			continue
		}
		n.CalleeMangled = fn.MangledName
		if n.CalleeMangled == "" {
			n.CalleeMangled = fn.Name
		}
		return c.setInstance(n, fn.ReturnType), nil
	}

	return c.fail(n.GetToken(), "no field or getattr overload named %q on type %s", n.Name, leftInst.String())
}

func (c *Checker) inferSubscript(n *ast.Subscript, scope *symbols.Scope, ns string) (*types.Instance, *diagnostics.Error) {
	containerInst, err := c.Infer(n.Container, scope, ns)
	if err != nil {
		return nil, err
	}

	switch containerInst.Category {
	case types.TUPLE:
		lit, ok := n.Key.(*ast.Literal)
		if !ok || lit.Category != ast.LitInt {
			return c.fail(n.GetToken(), "tuple subscript key must be an integer literal")
		}
		if _, err := c.Infer(n.Key, scope, ns); err != nil {
			return nil, err
		}
		idx, convErr := strconv.Atoi(lit.Raw)
		if convErr != nil || idx < 0 || idx >= len(containerInst.Params) {
			return c.fail(n.GetToken(), "tuple subscript index %s out of range for arity %d", lit.Raw, len(containerInst.Params))
		}
		return c.setInstance(n, containerInst.Params[idx]), nil

	case types.LIST:
		if _, err := c.Infer(n.Key, scope, ns); err != nil {
			return nil, err
		}
		maybeInst, err := wrapMaybe(scope, ns, n.GetToken(), containerInst.Params[0])
		if err != nil {
			return nil, err
		}
		return c.setInstance(n, maybeInst), nil

	case types.MAP:
		keyInst, err := c.Infer(n.Key, scope, ns)
		if err != nil {
			return nil, err
		}
		if !types.WeakEqual(keyInst, containerInst.Params[0]) {
			return c.fail(n.GetToken(), "map subscript key type %s does not match declared key type %s",
				keyInst.String(), containerInst.Params[0].String())
		}
		maybeInst, err := wrapMaybe(scope, ns, n.GetToken(), containerInst.Params[1])
		if err != nil {
			return nil, err
		}
		return c.setInstance(n, maybeInst), nil

	default:
		keyInst, err := c.Infer(n.Key, scope, ns)
		if err != nil {
			return nil, err
		}
		lookupNS := config.WildcardNamespace
		candidates := scope.LookupFunctionCandidates(lookupNS, ns, config.GetItemFuncPrefix+"item", 2)
		for _, fn := range candidates {
			if len(fn.Params) != 2 {
				continue
			}
			if !types.WeakEqual(fn.Params[0].Variable.DeclaredType, containerInst) {
				continue
			}
			if !types.WeakEqual(fn.Params[1].Variable.DeclaredType, keyInst) {
				continue
			}
			n.CalleeMangled = fn.MangledName
			if n.CalleeMangled == "" {
				n.CalleeMangled = fn.Name
			}
			return c.setInstance(n, fn.ReturnType), nil
		}
		return c.fail(n.GetToken(), "no %sitem overload on type %s for key type %s",
			config.GetItemFuncPrefix, containerInst.String(), keyInst.String())
	}
}

func wrapMaybe(scope *symbols.Scope, ns string, tok token.Token, elem *types.Instance) (*types.Instance, *diagnostics.Error) {
	inst := types.NewUser(tok, config.WildcardNamespace, config.MaybeTypeName, []*types.Instance{elem})
	if _, _, err := types.CheckInstance(inst, scope, ns, nil); err != nil {
		return nil, err
	}
	return inst, nil
}

func (c *Checker) inferMatch(n *ast.Match, scope *symbols.Scope, ns string) (*types.Instance, *diagnostics.Error) {
	valInst, err := c.Infer(n.Value, scope, ns)
	if err != nil {
		return nil, err
	}
	if err := c.checkPattern(n.Pattern, valInst, scope, ns); err != nil {
		return nil, err
	}
	boolInst, err := resolveScalar(scope, ns, n.GetToken(), config.TypeBool)
	if err != nil {
		return nil, err
	}
	return c.setInstance(n, boolInst), nil
}

func (c *Checker) inferAssignment(n *ast.Assignment, scope *symbols.Scope, ns string) (*types.Instance, *diagnostics.Error) {
	switch n.Target.(type) {
	case *ast.Identifier, *ast.Dereference:
	default:
		return c.fail(n.GetToken(), "assignment target must be an identifier or a dereference")
	}

	targetInst, err := c.Infer(n.Target, scope, ns)
	if err != nil {
		return nil, err
	}
	if id, ok := n.Target.(*ast.Identifier); ok {
		if v, ok := scope.LookupVariable(id.Name); ok && !v.Mutable {
			return c.fail(n.GetToken(), "cannot assign to immutable variable %q", id.Name)
		}
	}

	if containsMatch(n.Value) {
		return c.fail(n.GetToken(), "match expression may not appear nested inside an assignment")
	}
	valInst, err := c.Infer(n.Value, scope, ns)
	if err != nil {
		return nil, err
	}
	if !types.WeakEqual(targetInst, valInst) {
		return c.fail(n.GetToken(), "cannot assign value of type %s to target of type %s", valInst.String(), targetInst.String())
	}
	return c.setInstance(n, targetInst), nil
}
