package symbols

import (
	"fmt"

	"github.com/avalon-lang/avalon/internal/config"
	"github.com/avalon-lang/avalon/internal/diagnostics"
	"github.com/avalon-lang/avalon/internal/token"
	"github.com/avalon-lang/avalon/internal/types"
)

type typeKey struct {
	Namespace string
	Name      string
	Arity     int
}

type ctorKey struct {
	Namespace string
	Name      string
	Arity     int
}

type funcKey struct {
	Namespace string
	Name      string
	Arity     int
}

// Scope is Scope: a parent pointer, an origin label, a line
// span, and four sub-tables by namespace (types, constructors, functions,
// variables).
type Scope struct {
	Parent    *Scope
	Label     string
	LineStart int
	LineEnd   int

	types     map[typeKey]*types.Type
	ctors     map[ctorKey]*types.Constructor
	functions map[funcKey][]*Function
	variables map[string]*Variable
}

// NewScope creates a child scope of parent (nil for the root/program
// scope).
func NewScope(parent *Scope, label string) *Scope {
	return &Scope{
		Parent:    parent,
		Label:     label,
		types:     make(map[typeKey]*types.Type),
		ctors:     make(map[ctorKey]*types.Constructor),
		functions: make(map[funcKey][]*Function),
		variables: make(map[string]*Variable),
	}
}

// ---- Types --------------------------------------------------------------

// AddType registers a type declaration. Fails with symbol-already-declared
// if (namespace, name, arity) is already taken.
func (s *Scope) AddType(t *types.Type) *diagnostics.Error {
	k := typeKey{t.Namespace, t.Name, t.Arity()}
	if _, ok := s.types[k]; ok {
		return diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrSymbolAlreadyDeclared, t.Token,
			"type %s/%d already declared in namespace %q", t.Name, t.Arity(), t.Namespace)
	}
	s.types[k] = t
	return nil
}

// findTypeLocal looks up one exact namespace (no namespace fallback),
// walking this scope and its parents — used by the namespace-fallback
// logic in LookupType.
func (s *Scope) findTypeLocal(namespace, name string, arity int) (*types.Type, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if t, ok := sc.types[typeKey{namespace, name, arity}]; ok {
			return t, true
		}
	}
	return nil, false
}

// LookupType implements types.Resolver: resolves (namespace, name,
// arity) against this scope's chain, applying the "*" fallback rule.
// Ambiguous if both resolve to distinct declarations.
func (s *Scope) LookupType(namespace, callerNamespace, name string, arity int) (*types.Type, bool) {
	if namespace != config.WildcardNamespace {
		return s.findTypeLocal(namespace, name, arity)
	}
	caller, callerOK := s.findTypeLocal(callerNamespace, name, arity)
	global, globalOK := s.findTypeLocal(config.GlobalNamespace, name, arity)
	switch {
	case callerOK && globalOK && caller != global:
		return nil, false // ambiguous; caller should use LookupTypeChecked for a diagnostic
	case callerOK:
		return caller, true
	case globalOK:
		return global, true
	default:
		return nil, false
	}
}

// LookupTypeChecked is LookupType but distinguishes "ambiguous" from
// "not found" for callers that need to raise the right diagnostic code.
func (s *Scope) LookupTypeChecked(namespace, callerNamespace, name string, arity int, tok token.Token) (*types.Type, *diagnostics.Error) {
	if namespace != config.WildcardNamespace {
		if t, ok := s.findTypeLocal(namespace, name, arity); ok {
			return t, nil
		}
		return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrSymbolNotFound, tok,
			"type %s/%d not found in namespace %q", name, arity, namespace)
	}
	caller, callerOK := s.findTypeLocal(callerNamespace, name, arity)
	global, globalOK := s.findTypeLocal(config.GlobalNamespace, name, arity)
	switch {
	case callerOK && globalOK && caller != global:
		return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrSymbolCanCollide, tok,
			"type %s/%d is ambiguous between namespace %q and the global namespace", name, arity, callerNamespace)
	case callerOK:
		return caller, nil
	case globalOK:
		return global, nil
	default:
		return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrSymbolNotFound, tok,
			"type %s/%d not found", name, arity)
	}
}

// ---- Constructors ---------------------------------------------------------

// AddConstructor registers a constructor under (namespace, name, arity).
func (s *Scope) AddConstructor(namespace string, c *types.Constructor) *diagnostics.Error {
	k := ctorKey{namespace, c.Name, c.Arity()}
	if _, ok := s.ctors[k]; ok {
		return diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrSymbolAlreadyDeclared, c.Token,
			"constructor %s/%d already declared in namespace %q", c.Name, c.Arity(), namespace)
	}
	s.ctors[k] = c
	return nil
}

func (s *Scope) findConstructorLocal(namespace, name string, arity int) (*types.Constructor, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if c, ok := sc.ctors[ctorKey{namespace, name, arity}]; ok {
			return c, true
		}
	}
	return nil, false
}

// LookupConstructor applies the same namespace-fallback/ambiguity rule as
// LookupTypeChecked.
func (s *Scope) LookupConstructor(namespace, callerNamespace, name string, arity int, tok token.Token) (*types.Constructor, *diagnostics.Error) {
	if namespace != config.WildcardNamespace {
		if c, ok := s.findConstructorLocal(namespace, name, arity); ok {
			return c, nil
		}
		return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrSymbolNotFound, tok,
			"constructor %s/%d not found in namespace %q", name, arity, namespace)
	}
	caller, callerOK := s.findConstructorLocal(callerNamespace, name, arity)
	global, globalOK := s.findConstructorLocal(config.GlobalNamespace, name, arity)
	switch {
	case callerOK && globalOK && caller != global:
		return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrSymbolCanCollide, tok,
			"constructor %s/%d is ambiguous", name, arity)
	case callerOK:
		return caller, nil
	case globalOK:
		return global, nil
	default:
		return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrSymbolNotFound, tok,
			"constructor %s/%d not found", name, arity)
	}
}

// FindNullaryConstructor returns the arity-0 constructor `name` resolved
// through LookupConstructor, used by the inferer's identifier-as-nullary-constructor rule
// and by the matcher's identifier-pattern classification.
func (s *Scope) FindNullaryConstructor(namespace, callerNamespace, name string) (*types.Constructor, bool) {
	c, err := s.LookupConstructor(namespace, callerNamespace, name, 0, token.Token{})
	return c, err == nil
}

// ---- Functions ------------------------------------------------------------

// AddFunction appends fn to the (namespace, name, arity) overload
// multimap. Multiple functions may share a key; overload resolution
// picks among them downstream.
func (s *Scope) AddFunction(fn *Function) {
	k := funcKey{fn.Namespace, fn.Name, fn.Arity()}
	s.functions[k] = append(s.functions[k], fn)
}

func (s *Scope) findFunctionsLocal(namespace, name string, arity int) []*Function {
	for sc := s; sc != nil; sc = sc.Parent {
		if fns, ok := sc.functions[funcKey{namespace, name, arity}]; ok && len(fns) > 0 {
			return fns
		}
	}
	return nil
}

// LookupFunctionCandidates returns every overload matching (namespace,
// name, arity) without choosing among them — overload resolution itself
// happens downstream, using the argument instances. The namespace-fallback
// rule still applies: "*" returns callerNamespace's candidates when it
// has any, and the global namespace's candidates otherwise; the two
// sets are not concatenated.
func (s *Scope) LookupFunctionCandidates(namespace, callerNamespace, name string, arity int) []*Function {
	if namespace != config.WildcardNamespace {
		return s.findFunctionsLocal(namespace, name, arity)
	}
	caller := s.findFunctionsLocal(callerNamespace, name, arity)
	if callerNamespace == config.GlobalNamespace {
		return caller
	}
	global := s.findFunctionsLocal(config.GlobalNamespace, name, arity)
	if len(caller) > 0 {
		return caller
	}
	return global
}

// ---- Variables --------------------------------------------------------

// AddVariable declares v in this scope by bare name (locals are not
// namespace-keyed; only their owning scope matters for resolution).
func (s *Scope) AddVariable(v *Variable) *diagnostics.Error {
	if _, ok := s.variables[v.Name]; ok {
		return diagnostics.New(diagnostics.PhaseChecker, diagnostics.ErrSymbolAlreadyDeclared, v.Token,
			"variable %q already declared in this scope", v.Name)
	}
	s.variables[v.Name] = v
	v.OwningScope = s
	return nil
}

// LookupVariable walks the scope chain for an unqualified name.
func (s *Scope) LookupVariable(name string) (*Variable, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if v, ok := sc.variables[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Root walks up to the outermost (program) scope.
func (s *Scope) Root() *Scope {
	r := s
	for r.Parent != nil {
		r = r.Parent
	}
	return r
}

func (e typeKey) String() string { return fmt.Sprintf("%s.%s/%d", e.Namespace, e.Name, e.Arity) }
