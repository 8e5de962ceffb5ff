package analyzer

import (
	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/config"
	"github.com/avalon-lang/avalon/internal/diagnostics"
	"github.com/avalon-lang/avalon/internal/specializer"
	"github.com/avalon-lang/avalon/internal/symbols"
	"github.com/avalon-lang/avalon/internal/types"
)

func anyArgNamed(args []ast.Arg) bool {
	for _, a := range args {
		if a.Name != "" || a.IsAnonymous {
			return true
		}
	}
	return false
}

func allArgsNamed(args []ast.Arg) bool {
	for _, a := range args {
		if a.Name == "" {
			return false
		}
	}
	return len(args) > 0
}

// inferCall resolves a Call node through the three-way precedence order:
// a genuine function overload first, then a record constructor (which
// needs every argument named), then a default constructor (which needs
// every argument positional) — matching the order spec.md states a call
// site is resolved in.
func (c *Checker) inferCall(call *ast.Call, scope *symbols.Scope, ns string) (*types.Instance, *diagnostics.Error) {
	for _, a := range call.Args {
		if containsMatch(a.Value) {
			return c.fail(call.GetToken(), "match expression may not appear nested inside a call argument")
		}
	}
	argInstances := make([]*types.Instance, len(call.Args))
	for i, a := range call.Args {
		inst, err := c.Infer(a.Value, scope, ns)
		if err != nil {
			return nil, err
		}
		argInstances[i] = inst
	}

	lookupNS := call.Namespace
	if lookupNS == "" {
		lookupNS = config.WildcardNamespace
	}

	if inst, err, ok := c.resolveFunctionCall(call, scope, ns, lookupNS, argInstances); ok {
		return inst, err
	}
	if inst, err, ok := c.resolveRecordConstructor(call, scope, ns, lookupNS, argInstances); ok {
		return inst, err
	}
	if inst, err, ok := c.resolveDefaultConstructor(call, scope, ns, lookupNS, argInstances); ok {
		return inst, err
	}

	return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrSymbolNotFound, call.GetToken(),
		"call to %q/%d does not resolve to a function, record constructor, or default constructor", call.Name, len(call.Args))
}

// resolveFunctionCall tries every (namespace, name, arity) candidate,
// unifying each parameter against the checked argument instances. A
// genuine function call never carries named or `*` anonymous-marker
// arguments — those belong to constructor calls only — so candidates
// are skipped outright if any argument is.
func (c *Checker) resolveFunctionCall(call *ast.Call, scope *symbols.Scope, ns, lookupNS string, argInstances []*types.Instance) (*types.Instance, *diagnostics.Error, bool) {
	if anyArgNamed(call.Args) {
		return nil, nil, false
	}
	candidates := scope.LookupFunctionCandidates(lookupNS, ns, call.Name, len(call.Args))
	for _, fn := range candidates {
		bindings := specializer.Bindings{}
		constraints := types.StandinsFromNames(fn.Constraints)
		matched := true
		for i, p := range fn.Params {
			if !specializer.Unify(p.Variable.DeclaredType, argInstances[i], constraints, bindings) {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}

		resolved := fn
		if fn.IsGeneric() {
			clone, err := specializer.Specialize(fn, bindings, c.Recheck)
			if err != nil {
				return nil, err, true
			}
			resolved = clone
		} else if resolved.MangledName == "" {
			paramInstances := make([]*types.Instance, len(resolved.Params))
			for i, p := range resolved.Params {
				paramInstances[i] = p.Variable.DeclaredType
			}
			resolved.MangledName = specializer.MangleName(resolved.Namespace, resolved.Name, paramInstances, resolved.ReturnType)
		}

		call.Kind = ast.CallFunction
		call.CalleeNS = resolved.Namespace
		call.CalleeMangled = resolved.MangledName
		call.CalleeArity = resolved.Arity()
		return resolved.ReturnType, nil, true
	}
	return nil, nil, false
}

// resolveRecordConstructor requires every argument to carry a name
// matching a declared field; a call with any positional argument is not
// a record-constructor call at all, not even a malformed one, so it
// falls through to default-constructor resolution instead of erroring
// here.
func (c *Checker) resolveRecordConstructor(call *ast.Call, scope *symbols.Scope, ns, lookupNS string, argInstances []*types.Instance) (*types.Instance, *diagnostics.Error, bool) {
	if !allArgsNamed(call.Args) {
		return nil, nil, false
	}
	ctor, lookupErr := scope.LookupConstructor(lookupNS, ns, call.Name, len(call.Args), call.GetToken())
	if lookupErr != nil || ctor.Kind != types.RecordConstructor {
		return nil, nil, false
	}

	for i, a := range call.Args {
		field := ctor.FieldInstance(a.Name)
		if field == nil {
			return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrInvalidExpression, call.GetToken(),
				"record constructor %s has no field %q", call.Name, a.Name), true
		}
		if !types.WeakEqual(field, argInstances[i]) {
			return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrInvalidType, call.GetToken(),
				"record constructor %s field %q expects %s, got %s", call.Name, a.Name, field.String(), argInstances[i].String()), true
		}
	}

	call.Kind = ast.CallRecordConstructor
	call.CalleeNS = lookupNS
	call.CalleeMangled = call.Name
	call.CalleeArity = len(call.Args)
	return instanceFromConstructor(ctor, call.GetToken()), nil, true
}

// resolveDefaultConstructor requires every argument to be positional
// (bare or `*`-anonymous), matched in declaration order against the
// constructor's parameter instances.
func (c *Checker) resolveDefaultConstructor(call *ast.Call, scope *symbols.Scope, ns, lookupNS string, argInstances []*types.Instance) (*types.Instance, *diagnostics.Error, bool) {
	for _, a := range call.Args {
		if a.Name != "" {
			return nil, nil, false
		}
	}
	ctor, lookupErr := scope.LookupConstructor(lookupNS, ns, call.Name, len(call.Args), call.GetToken())
	if lookupErr != nil || ctor.Kind != types.DefaultConstructor {
		return nil, nil, false
	}

	for i, p := range ctor.Params {
		if !types.WeakEqual(p, argInstances[i]) {
			return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrInvalidType, call.GetToken(),
				"constructor %s argument %d expects %s, got %s", call.Name, i, p.String(), argInstances[i].String()), true
		}
	}

	call.Kind = ast.CallDefaultConstructor
	call.CalleeNS = lookupNS
	call.CalleeMangled = call.Name
	call.CalleeArity = len(call.Args)
	return instanceFromConstructor(ctor, call.GetToken()), nil, true
}
