package symbols

import (
	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/diagnostics"
	"github.com/avalon-lang/avalon/internal/types"
)

// BuildScope walks a parsed program and populates a fresh root scope with
// every type, function, and global variable it declares, validating each
// declared type instance along the way. Types and function signatures are
// registered in two passes each (structure first, instances second) so a
// forward or mutually recursive reference to a type or function declared
// later in the program — or in another file of the same namespace —
// still resolves.
// Funcs maps a FunctionDecl's node id to the symbols.Function BuildScope
// registered for it, so a later pass (the analyzer checking bodies) can
// recover the declared binding for a given declaration without having to
// re-derive it from the scope's (namespace, name, arity) overload table.
type Funcs map[int]*Function

func BuildScope(prog *ast.Program, sink *diagnostics.Sink) (*Scope, Funcs) {
	root := NewScope(nil, "program")
	registerPrelude(root)
	byDecl := make(Funcs)

	for _, f := range prog.Files {
		for _, td := range f.Types {
			registerType(root, td, sink)
		}
	}
	for _, f := range prog.Files {
		for _, td := range f.Types {
			checkTypeInstances(root, td, sink)
		}
	}

	for _, f := range prog.Files {
		for _, fd := range f.Functions {
			byDecl[fd.NodeID()] = registerFunction(root, fd, sink)
		}
	}
	for _, f := range prog.Files {
		for _, fd := range f.Functions {
			checkFunctionSignature(root, fd, sink)
		}
	}

	for _, f := range prog.Files {
		for _, vd := range f.Variables {
			registerGlobalVariable(root, vd, sink)
		}
	}

	return root, byDecl
}

func registerType(root *Scope, td *ast.TypeDecl, sink *diagnostics.Sink) {
	t := &types.Type{
		Token:     td.GetToken(),
		Namespace: td.Namespace,
		Name:      td.Name,
		Standins:  td.Standins,
		IsPublic:  td.Public,
	}
	if err := root.AddType(t); err != nil {
		sink.Report(err)
		return
	}
	for _, cd := range td.Constructors {
		c := &types.Constructor{
			Token:  t.Token,
			Owner:  t,
			Name:   cd.Name,
			Kind:   cd.Kind,
			Params: cd.Params,
		}
		if cd.Kind == types.RecordConstructor {
			c.Fields = make([]types.NamedParam, len(cd.FieldNames))
			for i, name := range cd.FieldNames {
				c.Fields[i] = types.NamedParam{Name: name, Instance: cd.FieldInstances[i]}
			}
		}
		t.Constructors = append(t.Constructors, c)
		if err := root.AddConstructor(td.Namespace, c); err != nil {
			sink.Report(err)
		}
	}
}

func checkTypeInstances(root *Scope, td *ast.TypeDecl, sink *diagnostics.Sink) {
	standins := types.StandinsFromNames(td.Standins)
	for _, cd := range td.Constructors {
		for _, p := range cd.Params {
			if _, _, err := types.CheckInstance(p, root, td.Namespace, standins); err != nil {
				sink.Report(err)
			}
		}
		for _, inst := range cd.FieldInstances {
			if _, _, err := types.CheckInstance(inst, root, td.Namespace, standins); err != nil {
				sink.Report(err)
			}
		}
	}
}

func registerFunction(root *Scope, fd *ast.FunctionDecl, sink *diagnostics.Sink) *Function {
	fn := &Function{
		Token:       fd.GetToken(),
		Namespace:   fd.Namespace,
		Name:        fd.Name,
		FQN:         fqnOf(fd.Namespace, fd.Name),
		Public:      fd.Public,
		Constraints: fd.Constraints,
		ReturnType:  fd.ReturnType,
		Body:        fd.Body,
		OwningScope: root,
		Builtin:     fd.Builtin,
	}
	fn.Params = make([]ParamBinding, len(fd.Params))
	for i, p := range fd.Params {
		fn.Params[i] = ParamBinding{
			Name: p.Name,
			Variable: &Variable{
				Token:        fd.GetToken(),
				Name:         p.Name,
				Mutable:      false,
				DeclaredType: p.Instance,
			},
		}
	}
	root.AddFunction(fn)
	return fn
}

func checkFunctionSignature(root *Scope, fd *ast.FunctionDecl, sink *diagnostics.Sink) {
	standins := types.StandinsFromNames(fd.Constraints)
	for _, p := range fd.Params {
		if _, _, err := types.CheckInstance(p.Instance, root, fd.Namespace, standins); err != nil {
			sink.Report(err)
		}
	}
	if fd.ReturnType != nil {
		if _, _, err := types.CheckInstance(fd.ReturnType, root, fd.Namespace, standins); err != nil {
			sink.Report(err)
		}
	}
}

func registerGlobalVariable(root *Scope, vd *ast.VarDecl, sink *diagnostics.Sink) {
	v := &Variable{
		Token:       vd.GetToken(),
		Name:        vd.Name,
		Mutable:     vd.Mutable,
		Public:      vd.Public,
		Global:      true,
		Initializer: vd.Initializer,
		Validity:    Unknown,
	}
	if vd.TypeAnn != nil {
		if _, _, err := types.CheckInstance(vd.TypeAnn, root, vd.Namespace, nil); err != nil {
			sink.Report(err)
		}
		v.DeclaredType = vd.TypeAnn
	}
	if err := root.AddVariable(v); err != nil {
		sink.Report(err)
	}
}

func fqnOf(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}
