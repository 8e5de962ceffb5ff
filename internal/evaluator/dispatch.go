package evaluator

import (
	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/specializer"
	"github.com/avalon-lang/avalon/internal/symbols"
	"github.com/avalon-lang/avalon/internal/types"
)

// BuildCallIndex walks every declared function and every specialisation
// the checker produced, keyed by mangled name. specializer.MangleName
// folds the declaring namespace into the mangled string itself, so a
// mangled name is already globally unique and no separate namespace
// component is needed in the key — a Call, Dot, or Subscript node's
// CalleeMangled is enough to recover the callee.
//
// A non-generic function's MangledName is populated lazily by the
// checker the first time a call site resolves to it; a function nothing
// ever calls keeps an empty MangledName and is simply absent from the
// index, which is correct since nothing holds a CalleeMangled naming it.
func BuildCallIndex(prog *ast.Program, funcs symbols.Funcs) map[string]*symbols.Function {
	idx := make(map[string]*symbols.Function)
	var walk func(fn *symbols.Function)
	walk = func(fn *symbols.Function) {
		if fn == nil {
			return
		}
		if fn.IsGeneric() {
			for _, clone := range fn.Specializations {
				walk(clone)
			}
			return
		}
		if fn.MangledName == "" {
			fn.MangledName = mangleFunction(fn)
		}
		idx[fn.MangledName] = fn
	}
	for _, f := range prog.Files {
		for _, fd := range f.Functions {
			walk(funcs[fd.NodeID()])
		}
	}
	return idx
}

func mangleFunction(fn *symbols.Function) string {
	paramInstances := make([]*types.Instance, len(fn.Params))
	for i, p := range fn.Params {
		paramInstances[i] = p.Variable.DeclaredType
	}
	return specializer.MangleName(fn.Namespace, fn.Name, paramInstances, fn.ReturnType)
}
