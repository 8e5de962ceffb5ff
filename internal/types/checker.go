package types

import (
	"github.com/avalon-lang/avalon/internal/config"
	"github.com/avalon-lang/avalon/internal/diagnostics"
)

// Resolver is the minimal lookup surface CheckInstance needs from the
// symbol environment. Declared as an interface here, implemented by
// symbols.Scope, so this package never imports symbols.
type Resolver interface {
	// LookupType resolves (namespace, name, arity) to a declared Type.
	// namespace == config.WildcardNamespace means "try callerNamespace,
	// then config.GlobalNamespace"
	LookupType(namespace, callerNamespace, name string, arity int) (*Type, bool)
}

// CheckInstance resolves a type instance against a scope: it mutates inst
// in place (binding inst.Category/inst.Type/inst.IsParametrized) and
// reports whether the instance was resolved, whether it ended up
// parametrised, and a diagnostic on failure.
func CheckInstance(inst *Instance, resolver Resolver, namespace string, standins map[string]bool) (resolved bool, parametrized bool, err *diagnostics.Error) {
	if inst.IsStar {
		return false, false, nil
	}

	switch inst.Category {
	case TUPLE:
		any := false
		for _, p := range inst.Params {
			_, pp, e := CheckInstance(p, resolver, namespace, standins)
			if e != nil {
				return false, false, e
			}
			any = any || pp
		}
		inst.IsParametrized = any
		return true, any, nil

	case LIST:
		if len(inst.Params) != 1 {
			return false, false, diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrInvalidType, inst.OriginToken,
				"list type instance takes exactly one parameter, got %d", len(inst.Params))
		}
		_, pp, e := CheckInstance(inst.Params[0], resolver, namespace, standins)
		if e != nil {
			return false, false, e
		}
		inst.IsParametrized = pp
		return true, pp, nil

	case MAP:
		if len(inst.Params) != 2 {
			return false, false, diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrInvalidType, inst.OriginToken,
				"map type instance takes exactly two parameters, got %d", len(inst.Params))
		}
		_, kp, e := CheckInstance(inst.Params[0], resolver, namespace, standins)
		if e != nil {
			return false, false, e
		}
		_, vp, e := CheckInstance(inst.Params[1], resolver, namespace, standins)
		if e != nil {
			return false, false, e
		}
		inst.IsParametrized = kp || vp
		return true, kp || vp, nil

	default: // USER
		return checkUserInstance(inst, resolver, namespace, standins)
	}
}

func checkUserInstance(inst *Instance, resolver Resolver, namespace string, standins map[string]bool) (bool, bool, *diagnostics.Error) {
	name := inst.OriginToken.Lexeme
	if inst.Type != nil {
		name = inst.Type.Name
	}

	// A standin leaf is parametrised-but-valid without a resolved type.
	if standins != nil && standins[name] && len(inst.Params) == 0 {
		inst.IsParametrized = true
		inst.Category = USER
		return true, true, nil
	}

	effectiveNS := inst.Namespace
	if effectiveNS == "" {
		effectiveNS = namespace
	}

	decl, ok := resolver.LookupType(effectiveNS, namespace, name, len(inst.Params))
	if !ok {
		return false, false, diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrInvalidType, inst.OriginToken,
			"unresolvable type instance %q in namespace %q with arity %d", name, effectiveNS, len(inst.Params))
	}

	any := false
	for _, p := range inst.Params {
		_, pp, e := CheckInstance(p, resolver, namespace, standins)
		if e != nil {
			return false, false, e
		}
		any = any || pp
	}

	inst.Category = USER
	inst.Type = decl
	inst.IsParametrized = any
	return true, any, nil
}

// standinsFromNames is a small helper building a standins set from a
// function's/type's declared parameter-name list — used by callers of
// CheckInstance that hold a []string rather than a map.
func standinsFromNames(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// StandinsFromNames is the exported form, used by the analyzer and the specialiser.
func StandinsFromNames(names []string) map[string]bool { return standinsFromNames(names) }

// IsQuantum reports whether a checked instance refers to a qubit scalar
// type by name convention (a resolved type name starting with
// config.QubitTypePrefix); classical bit types are not quantum. Used by
// the analyzer and evaluator to reject by-value quantum arguments and
// rvalues.
func IsQuantum(inst *Instance) bool {
	if inst == nil || inst.Category != USER || inst.Type == nil {
		return false
	}
	name := inst.Type.Name
	return len(name) > len(config.QubitTypePrefix) && name[:len(config.QubitTypePrefix)] == config.QubitTypePrefix
}
