// Package analyzer merges the inference engine and the expression
// checker into one pass: for every expression variant it infers a type
// instance and, in the same switch, enforces the well-formedness rules
// that variant carries. Splitting the two into separate packages would
// either duplicate the per-variant dispatch or force an import cycle,
// since the well-formedness rules for a variant are stated in terms of
// the very instance its inference step produces.
package analyzer

import (
	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/builtins"
	"github.com/avalon-lang/avalon/internal/config"
	"github.com/avalon-lang/avalon/internal/diagnostics"
	"github.com/avalon-lang/avalon/internal/symbols"
	"github.com/avalon-lang/avalon/internal/token"
	"github.com/avalon-lang/avalon/internal/types"
)

// Checker holds everything one checking pass over a program needs: the
// populated symbol environment, the diagnostic sink every rule reports
// through, the builtin registry operator/cast/hash resolution probes,
// and the node-id-keyed side table for inferred instances (the one
// annotation every expression carries, per internal/ast's package doc).
type Checker struct {
	Root     *symbols.Scope
	Sink     *diagnostics.Sink
	Builtins *builtins.Registry

	instances map[int]*types.Instance
}

// New builds a checker over an already-populated root scope.
func New(root *symbols.Scope, sink *diagnostics.Sink, reg *builtins.Registry) *Checker {
	return &Checker{
		Root:      root,
		Sink:      sink,
		Builtins:  reg,
		instances: make(map[int]*types.Instance),
	}
}

// Instance returns the instance inference attached to e, or nil if e was
// never checked (or checking it failed before an instance was set).
func (c *Checker) Instance(e ast.Expression) *types.Instance {
	if e == nil {
		return nil
	}
	return c.instances[e.NodeID()]
}

func (c *Checker) setInstance(e ast.Expression, inst *types.Instance) *types.Instance {
	c.instances[e.NodeID()] = inst
	return inst
}

// funcCtx threads the enclosing function's declared return instance (for
// checking return statements) and its namespace through statement/block
// checking. There is deliberately no loop-depth counter: spec.md never
// states that break/continue outside a loop is a checked error, so this
// checker doesn't invent one — an evaluator encountering a stray
// break/continue simply has no enclosing loop to clear the flag on.
type funcCtx struct {
	Namespace  string
	ReturnType *types.Instance
}

// CheckProgram walks every non-generic top-level function body and every
// global variable initializer in the program, reporting diagnostics
// through c.Sink. Generic function templates are checked lazily: C5
// rechecks a template's body only once a call site requests a concrete
// specialisation (see Recheck), matching spec.md's "the specialised
// function is re-checked by C4" — an uninstantiated template is never
// interpreted, so checking its abstract body ahead of any call would
// reject perfectly usable generic code that happens to use a constraint
// standin somewhere CheckInstance can't resolve on its own.
func (c *Checker) CheckProgram(prog *ast.Program, funcs symbols.Funcs) {
	for _, f := range prog.Files {
		for _, fd := range f.Functions {
			fn := funcs[fd.NodeID()]
			if fn == nil || fn.IsGeneric() || fn.Builtin {
				continue
			}
			c.checkFunctionBody(fn)
		}
	}
	for _, f := range prog.Files {
		for _, vd := range f.Variables {
			c.checkGlobalVarDecl(vd, f.Namespace)
		}
	}
}

// checkFunctionBody type-checks fn's body in a fresh child scope with
// its parameters bound, resynchronizing at the function boundary: a
// per-declaration checker reports only the first failure in fn's
// subtree, matching spec.md §7's propagation rule.
func (c *Checker) checkFunctionBody(fn *symbols.Function) {
	scope := symbols.NewScope(c.Root, "function:"+fn.FQN)
	for _, p := range fn.Params {
		if err := scope.AddVariable(p.Variable); err != nil {
			c.Sink.Report(err)
			return
		}
	}
	outer := c.Sink
	c.Sink = &diagnostics.Sink{}
	ctx := &funcCtx{Namespace: fn.Namespace, ReturnType: fn.ReturnType}
	c.CheckBlock(fn.Body, scope, ctx)
	body := c.Sink
	c.Sink = outer
	if first := body.FirstInSubtree(0); first != nil {
		c.Sink.Report(first) // caller resynchronizes by simply moving to the next decl
	}
}

// Recheck satisfies specializer.Recheck: it runs checkFunctionBody over
// a freshly specialised clone and reports the clone's first diagnostic,
// if any, back to the specialiser so a bad instantiation is surfaced at
// its call site rather than silently registered.
func (c *Checker) Recheck(fn *symbols.Function) *diagnostics.Error {
	mark := c.Sink.Mark()
	c.checkFunctionBody(fn)
	return c.Sink.FirstInSubtree(mark)
}

func (c *Checker) checkGlobalVarDecl(vd *ast.VarDecl, namespace string) {
	v, ok := c.Root.LookupVariable(vd.Name)
	if !ok {
		return // registration itself already failed and was reported by BuildScope
	}
	mark := c.Sink.Mark()
	c.validateVarDecl(vd, v, c.Root, namespace)
	c.Sink.FirstInSubtree(mark)
}

// standinInstance builds a fresh abstract leaf instance naming standin,
// using a token whose Lexeme carries the name — the mechanism
// types.CheckInstance/specializer.Unify/Substitute all key off of
// (inst.OriginToken.Lexeme) to identify which standin an abstract leaf
// names.
func standinInstance(standin string) *types.Instance {
	return types.NewAbstract(token.Token{Kind: token.IDENT_UPPER, Lexeme: standin}, standin)
}

// resolveScalar builds and resolves a USER instance naming a built-in
// scalar type (int/float/dec/string/bool/bitN/qubitN) against scope, the
// same path any other type name resolves through. Its Namespace is the
// wildcard, not the empty/global namespace: an Instance with an empty
// Namespace resolves only within the caller's own namespace
// (types.CheckInstance folds "" straight into the caller namespace with
// no fallback), so reaching the prelude's global registration from any
// namespace needs the explicit caller-then-global search the wildcard
// triggers.
func resolveScalar(scope *symbols.Scope, ns string, tok token.Token, name string) (*types.Instance, *diagnostics.Error) {
	inst := types.NewUser(tok, config.WildcardNamespace, name, nil)
	if _, _, err := types.CheckInstance(inst, scope, ns, nil); err != nil {
		return nil, err
	}
	return inst, nil
}
