// Package evaluator tree-walks a checked program: it interprets
// statements and expressions directly against the AST the analyzer
// annotated, dispatching calls either to the builtin registry or to a
// recursively-interpreted user function body, and routes quantum
// literals through the external processor.
package evaluator

import (
	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/builtins"
	"github.com/avalon-lang/avalon/internal/config"
	"github.com/avalon-lang/avalon/internal/diagnostics"
	"github.com/avalon-lang/avalon/internal/quantum"
	"github.com/avalon-lang/avalon/internal/symbols"
	"github.com/avalon-lang/avalon/internal/token"
	"github.com/avalon-lang/avalon/internal/value"
)

// Value re-exports the runtime value type under this package's name, so
// a caller threading a result out of CallFunction/Run doesn't need to
// import internal/value just to name the return type.
type Value = value.Value

// signal is the sum type design notes ask for: a block or statement
// either falls through normally, or unwinds with a return value, a
// break, or a continue. Only sigReturn carries a meaningful value.
type signal int

const (
	sigNormal signal = iota
	sigReturn
	sigBreak
	sigContinue
)

// Evaluator holds everything a tree walk needs: the checked program's
// symbol environment (for constructor/pattern lookups the checker also
// used), the builtin registry operators/casts decay to, the mangled-name
// index of every user function a Call/Dot/Subscript node might resolve
// to, and the quantum processor qubit-string declarations register
// against.
type Evaluator struct {
	Root     *symbols.Scope
	Builtins *builtins.Registry
	Funcs    map[string]*symbols.Function
	Quantum  quantum.Processor
	Globals  *Environment

	ketSeq int
}

// New builds an evaluator ready to run global initializers and then call
// the entry point.
func New(root *symbols.Scope, reg *builtins.Registry, funcs map[string]*symbols.Function, qp quantum.Processor) *Evaluator {
	return &Evaluator{
		Root:     root,
		Builtins: reg,
		Funcs:    funcs,
		Quantum:  qp,
		Globals:  NewEnvironment(nil),
	}
}

// InitGlobals evaluates every global variable's initializer, in file and
// declaration order, installing each into the evaluator's global
// environment. A global that only carries an explicit type and no
// initializer (legal per the checker's either-type-or-initializer rule
// only when the other is present; a global needs at least one) gets its
// zero value.
func (e *Evaluator) InitGlobals(prog *ast.Program) *diagnostics.Error {
	for _, f := range prog.Files {
		for _, vd := range f.Variables {
			var val value.Value
			if vd.Initializer != nil {
				v, err := e.Eval(vd.Initializer, e.Globals, f.Namespace)
				if err != nil {
					return err
				}
				val = v
			}
			e.Globals.Define(vd.Name, val, vd.Mutable)
			if err := e.registerQuantumLiteral(vd.Name, vd.Initializer); err != nil {
				return err
			}
		}
	}
	return nil
}

// CallFunction binds args positionally into a fresh activation record
// and interprets fn's body, unwrapping a return signal into its value. A
// function whose body falls off the end without an explicit return
// yields the zero value, matching a bare `return` with no declared
// return type.
func (e *Evaluator) CallFunction(fn *symbols.Function, args []value.Value) (value.Value, *diagnostics.Error) {
	env := NewEnvironment(e.Globals)
	for i, p := range fn.Params {
		env.Define(p.Name, args[i], false)
	}
	sig, val, err := e.execBlock(fn.Body, env, fn.Namespace)
	if err != nil {
		return value.Value{}, err
	}
	if sig == sigReturn {
		return val, nil
	}
	return value.Value{}, nil
}

// EntryPoint locates `(*, __main__, 1)`, the driver's required entry
// function, failing with an interpret-error if none (or more than one
// ambiguous overload) is declared.
func (e *Evaluator) EntryPoint() (*symbols.Function, *diagnostics.Error) {
	candidates := e.Root.LookupFunctionCandidates(config.WildcardNamespace, config.GlobalNamespace, config.MainFunctionName, 1)
	if len(candidates) != 1 {
		return nil, diagnostics.New(diagnostics.PhaseInterpreter, diagnostics.ErrInterpret, token.Token{},
			"expected exactly one %s/1 entry point, found %d", config.MainFunctionName, len(candidates))
	}
	return candidates[0], nil
}

func (e *Evaluator) execBlock(b *ast.Block, parent *Environment, ns string) (signal, value.Value, *diagnostics.Error) {
	env := NewEnvironment(parent)
	for _, stmt := range b.Statements {
		sig, val, err := e.execStatement(stmt, env, ns)
		if err != nil {
			return sigNormal, value.Value{}, err
		}
		if sig != sigNormal {
			return sig, val, nil
		}
	}
	return sigNormal, value.Value{}, nil
}

func (e *Evaluator) execStatement(s ast.Statement, env *Environment, ns string) (signal, value.Value, *diagnostics.Error) {
	switch n := s.(type) {
	case *ast.ExpressionStatement:
		if _, err := e.Eval(n.Expr, env, ns); err != nil {
			return sigNormal, value.Value{}, err
		}
		return sigNormal, value.Value{}, nil

	case *ast.VarDecl:
		var val value.Value
		if n.Initializer != nil {
			v, err := e.Eval(n.Initializer, env, ns)
			if err != nil {
				return sigNormal, value.Value{}, err
			}
			val = v
		}
		env.Define(n.Name, val, n.Mutable)
		if err := e.registerQuantumLiteral(n.Name, n.Initializer); err != nil {
			return sigNormal, value.Value{}, err
		}
		return sigNormal, value.Value{}, nil

	case *ast.IfStatement:
		for _, branch := range n.Branches {
			condVal, err := e.Eval(branch.Cond, env, ns)
			if err != nil {
				return sigNormal, value.Value{}, err
			}
			if condVal.IsTrue() {
				return e.execBlock(branch.Body, env, ns)
			}
		}
		if n.Else != nil {
			return e.execBlock(n.Else, env, ns)
		}
		return sigNormal, value.Value{}, nil

	case *ast.WhileStatement:
		for {
			condVal, err := e.Eval(n.Cond, env, ns)
			if err != nil {
				return sigNormal, value.Value{}, err
			}
			if !condVal.IsTrue() {
				return sigNormal, value.Value{}, nil
			}
			sig, val, err := e.execBlock(n.Body, env, ns)
			if err != nil {
				return sigNormal, value.Value{}, err
			}
			switch sig {
			case sigBreak:
				return sigNormal, value.Value{}, nil
			case sigReturn:
				return sig, val, nil
			}
			// sigNormal and sigContinue both mean "loop again".
		}

	case *ast.BreakStatement:
		return sigBreak, value.Value{}, nil

	case *ast.ContinueStatement:
		return sigContinue, value.Value{}, nil

	case *ast.PassStatement:
		return sigNormal, value.Value{}, nil

	case *ast.ReturnStatement:
		if n.Value == nil {
			return sigReturn, value.Value{}, nil
		}
		v, err := e.Eval(n.Value, env, ns)
		if err != nil {
			return sigNormal, value.Value{}, err
		}
		return sigReturn, v, nil

	default:
		return sigNormal, value.Value{}, diagnostics.New(diagnostics.PhaseInterpreter, diagnostics.ErrInterpret, s.GetToken(),
			"evaluator: unhandled statement kind %T", s)
	}
}

// registerQuantumLiteral routes a qubit-string initializer through the
// quantum processor, stamping the (start, end) range it returns back
// onto the literal node. Bit-strings (classical) and every other
// initializer shape are left alone.
func (e *Evaluator) registerQuantumLiteral(name string, init ast.Expression) *diagnostics.Error {
	lit, ok := init.(*ast.Literal)
	if !ok || lit.Category != ast.LitQubitString {
		return nil
	}
	e.ketSeq++
	label := name
	if e.ketSeq > 1 {
		label = name + "#" + itoa(e.ketSeq)
	}
	start, end, err := e.Quantum.RegisterKet(label, lit.Bits)
	if err != nil {
		return diagnostics.New(diagnostics.PhaseInterpreter, diagnostics.ErrInterpret, lit.GetToken(),
			"registering qubit literal: %v", err)
	}
	lit.KetStart, lit.KetEnd, lit.KetSet = start, end, true
	return nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := "0123456789"
	var b []byte
	for n > 0 {
		b = append([]byte{digits[n%10]}, b...)
		n /= 10
	}
	return string(b)
}
