// Package driver owns everything that happens to a linked program
// between "parsed" and "exit code": building the symbol scope, checking
// it, initializing globals, locating the `(*, __main__, 1)` entry point,
// and calling it with argv packaged as a `list<string>`. cmd/avalon is a
// thin wrapper over this package; tests exercise Run directly against an
// ast.Program built with parser.Parse, without going through a linker.
package driver

import (
	"github.com/avalon-lang/avalon/internal/analyzer"
	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/builtins"
	"github.com/avalon-lang/avalon/internal/config"
	"github.com/avalon-lang/avalon/internal/diagnostics"
	"github.com/avalon-lang/avalon/internal/evaluator"
	"github.com/avalon-lang/avalon/internal/quantum"
	"github.com/avalon-lang/avalon/internal/symbols"
	"github.com/avalon-lang/avalon/internal/types"
	"github.com/avalon-lang/avalon/internal/value"
)

// Run builds the scope for program, checks it, then locates and calls
// the single `(*, __main__, 1)` entry point with argv built into a
// `list<string>`, returning whatever it returns as the process's exit
// value. Any failure along the way -- a checker diagnostic, a missing or
// wrongly-shaped entry point, or an interpret-time error -- comes back
// as err and exitValue is the zero Value.
func Run(program *ast.Program, argv []string) (exitValue evaluator.Value, err error) {
	sink := &diagnostics.Sink{}
	root, funcs := symbols.BuildScope(program, sink)
	if sink.HasErrors() {
		return evaluator.Value{}, sink.Errors()[0]
	}

	reg := builtins.NewStandardRegistry()
	checker := analyzer.New(root, sink, reg)
	checker.CheckProgram(program, funcs)
	if sink.HasErrors() {
		return evaluator.Value{}, sink.Errors()[0]
	}

	callIndex := evaluator.BuildCallIndex(program, funcs)
	ev := evaluator.New(root, reg, callIndex, quantum.NewTapeProcessor())
	if diagErr := ev.InitGlobals(program); diagErr != nil {
		return evaluator.Value{}, diagErr
	}

	entry, diagErr := ev.EntryPoint()
	if diagErr != nil {
		return evaluator.Value{}, diagErr
	}
	if diagErr := checkEntrySignature(entry); diagErr != nil {
		return evaluator.Value{}, diagErr
	}

	result, diagErr := ev.CallFunction(entry, []value.Value{argvList(argv)})
	if diagErr != nil {
		return evaluator.Value{}, diagErr
	}
	return result, nil
}

// checkEntrySignature enforces "the single parameter is list<string>":
// BuildScope/the checker already resolved every declared type instance,
// so this is a structural check against the resolved instance, not a
// fresh type-check.
func checkEntrySignature(entry *symbols.Function) *diagnostics.Error {
	if len(entry.Params) != 1 {
		return diagnostics.New(diagnostics.PhaseInterpreter, diagnostics.ErrInterpret, entry.Token,
			"entry point %s must declare exactly one parameter, got %d", config.MainFunctionName, len(entry.Params))
	}
	decl := entry.Params[0].Variable.DeclaredType
	if decl == nil || decl.Category != types.LIST || len(decl.Params) != 1 || decl.Params[0].Name() != config.TypeString {
		return diagnostics.New(diagnostics.PhaseInterpreter, diagnostics.ErrInterpret, entry.Token,
			"entry point %s's parameter must be list<string>", config.MainFunctionName)
	}
	return nil
}

// argvList packages argv into the runtime list<string> value the
// checked entry point expects.
func argvList(argv []string) value.Value {
	elems := make([]value.Value, len(argv))
	for i, a := range argv {
		elems[i] = value.Value{Kind: value.KString, Str: a}
	}
	return value.Value{Kind: value.KList, Elements: elems}
}
