// Package specializer clones a generic function, substitutes its
// constraint standins with concrete instances drawn from a call site,
// and hands the clone back to the checker for a full re-check. Generic
// templates accumulate clones keyed by a deterministic mangled name so
// repeated calls with the same concrete instances share one clone.
package specializer

import (
	"strings"

	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/diagnostics"
	"github.com/avalon-lang/avalon/internal/symbols"
	"github.com/avalon-lang/avalon/internal/types"
)

// Bindings maps a constraint standin name to the concrete instance it
// was unified with at a call site.
type Bindings map[string]*types.Instance

// Recheck re-runs expression checking over a specialised function's
// body and records the resulting instance/callee annotations. It is
// supplied by the checker so this package never imports it back.
type Recheck func(fn *symbols.Function) *diagnostics.Error

// Unify attempts to bind dst's constraint standins against src,
// mutating bindings in place. It returns false the moment a standin
// would need two different concrete instances, or the two instances'
// structure cannot line up.
func Unify(dst, src *types.Instance, constraints map[string]bool, bindings Bindings) bool {
	if dst == nil || src == nil {
		return dst == src
	}
	if src.IsStar {
		return true
	}
	if dst.IsAbstract() {
		name := dst.OriginToken.Lexeme
		if !constraints[name] {
			return false
		}
		if existing, ok := bindings[name]; ok {
			return types.StrongEqual(existing, src)
		}
		bindings[name] = src
		return true
	}
	if dst.Category != src.Category {
		return false
	}
	if len(dst.Params) != len(src.Params) {
		return dst.IsParametrized // an elided container (e.g. empty list) still unifies
	}
	for idx := range dst.Params {
		if !Unify(dst.Params[idx], src.Params[idx], constraints, bindings) {
			return false
		}
	}
	return true
}

// Substitute returns a clone of inst with every standin named in
// bindings replaced by its bound concrete instance. Standins with no
// binding are left abstract (the caller is expected to have validated
// that every constraint used in the signature got a binding).
func Substitute(inst *types.Instance, bindings Bindings) *types.Instance {
	if inst == nil {
		return nil
	}
	if inst.IsAbstract() {
		if bound, ok := bindings[inst.OriginToken.Lexeme]; ok {
			return bound.Clone()
		}
		return inst.Clone()
	}
	clone := inst.Clone()
	for idx, p := range inst.Params {
		clone.Params[idx] = Substitute(p, bindings)
	}
	return clone
}

// MangleName deterministically encodes namespace, name, and the
// resolved parameter instances of a specialisation, in declared
// parameter order (so distinct argument shapes never collide and
// identical ones always dedupe to the same clone).
func MangleName(namespace, name string, paramInstances []*types.Instance, returnInstance *types.Instance) string {
	var b strings.Builder
	if namespace != "" {
		b.WriteString(namespace)
		b.WriteByte('.')
	}
	b.WriteString(name)
	for _, p := range paramInstances {
		b.WriteByte('$')
		b.WriteString(p.String())
	}
	if returnInstance != nil {
		b.WriteString("->")
		b.WriteString(returnInstance.String())
	}
	return b.String()
}

// Specialize clones template under bindings, substituting every
// parameter, return, and body-level type instance, then asks recheck to
// validate the clone's body before registering it. Specialisations are
// deduplicated by mangled name: a repeat request for an already-produced
// mangled name returns the cached clone without re-checking.
func Specialize(template *symbols.Function, bindings Bindings, recheck Recheck) (*symbols.Function, *diagnostics.Error) {
	paramInstances := make([]*types.Instance, len(template.Params))
	for i, p := range template.Params {
		paramInstances[i] = Substitute(p.Variable.DeclaredType, bindings)
	}
	returnInstance := Substitute(template.ReturnType, bindings)
	mangled := MangleName(template.Namespace, template.Name, paramInstances, returnInstance)

	if existing, ok := template.Specializations[mangled]; ok {
		return existing, nil
	}

	clone := &symbols.Function{
		Token:       template.Token,
		Namespace:   template.Namespace,
		Name:        template.Name,
		FQN:         template.FQN,
		Public:      template.Public,
		Constraints: nil,
		ReturnType:  returnInstance,
		Builtin:     template.Builtin,
		MangledName: mangled,
	}
	clone.Params = make([]symbols.ParamBinding, len(template.Params))
	for i, p := range template.Params {
		clone.Params[i] = symbols.ParamBinding{
			Name: p.Name,
			Variable: &symbols.Variable{
				Token:        p.Variable.Token,
				Name:         p.Variable.Name,
				Mutable:      p.Variable.Mutable,
				DeclaredType: paramInstances[i],
			},
		}
	}
	clone.Body = substituteBlock(template.Body, bindings)

	if err := recheck(clone); err != nil {
		return nil, err
	}
	return template.AddSpecialization(clone), nil
}
