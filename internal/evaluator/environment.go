package evaluator

import "github.com/avalon-lang/avalon/internal/value"

// Environment is the runtime scope chain: one level per function
// activation or nested block, mirroring the static scopes
// internal/symbols builds during checking. Reference identity (`is`/`is
// not`) is backed by the *value.Variable cell itself, so a variable gets
// exactly one cell for its whole lifetime rather than being copied
// across lookups.
type Environment struct {
	parent *Environment
	vars   map[string]*value.Variable
}

// NewEnvironment creates a child of parent (nil for the program's global
// environment).
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{parent: parent, vars: make(map[string]*value.Variable)}
}

// Define installs a fresh cell for name in this environment level,
// shadowing any outer binding of the same name.
func (e *Environment) Define(name string, v value.Value, mutable bool) *value.Variable {
	cell := &value.Variable{Name: name, Value: v, Mutable: mutable}
	e.vars[name] = cell
	return cell
}

// Lookup walks the chain outward for name.
func (e *Environment) Lookup(name string) (*value.Variable, bool) {
	for env := e; env != nil; env = env.parent {
		if cell, ok := env.vars[name]; ok {
			return cell, true
		}
	}
	return nil, false
}
