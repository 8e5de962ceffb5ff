// Package linker implements C8, import/link: given a main program's
// imports, it resolves each dependency's fully-qualified name against a
// manifest, loads and recursively links it, and copies its public
// type/function/variable declarations into the main program under the
// same namespace they were declared in. Clashes on an identical
// (namespace, name, arity) triple -- whether against the main program's
// own declarations or another import's -- are rejected, and so is any
// cycle in the import graph.
//
// The merge happens at the ast.Program/ast.File level, before
// symbols.BuildScope ever runs: BuildScope already knows how to register
// a program's declarations into one Scope, so linking a dependency in is
// just appending the filtered files it contributes and letting the usual
// registration pass pick them up from there.
package linker

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/diagnostics"
	"github.com/avalon-lang/avalon/internal/token"
)

// Manifest maps a program's fully-qualified import name to the source
// path that defines it -- the concrete stand-in for "a program's FQN is
// derived from its source path": rather than invent a path-to-FQN
// derivation rule, the manifest records the mapping the driver and the
// linker both need to turn `import a.b.c` into a file to load.
type Manifest struct {
	Programs map[string]string `yaml:"programs"`
}

// LoadManifest parses a YAML program manifest from path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Loader parses the source file at path into a program. cmd/avalon wires
// this to the lexer/parser; tests wire it to an in-memory fixture table
// so linking can be exercised without touching a filesystem.
type Loader func(path string) (*ast.Program, error)

// Linker resolves a main program's import graph against a manifest.
type Linker struct {
	manifest *Manifest
	load     Loader
	cache    map[string]*ast.Program
}

// New builds a Linker over manifest, using load to parse a dependency's
// source file the first time it's needed.
func New(manifest *Manifest, load Loader) *Linker {
	return &Linker{manifest: manifest, load: load, cache: make(map[string]*ast.Program)}
}

// declKey is the clash identity spec.md names: a declaration's
// namespace, name, and arity. Import cycles are tracked by FQN instead.
type declKey struct {
	Namespace string
	Name      string
	Arity     int
}

// Link merges every transitive dependency reachable from main's imports
// into main.Files, in place, and returns main. mainFQN anchors cycle
// detection: an import graph that routes back to mainFQN is rejected.
func (l *Linker) Link(main *ast.Program, mainFQN string) (*ast.Program, *diagnostics.Error) {
	seen := make(map[declKey]bool)
	for _, f := range main.Files {
		recordOwnDecls(f, seen)
	}
	processing := map[string]bool{mainFQN: true}
	imports := collectImports(main)
	for _, fqn := range imports {
		if err := l.resolveImport(main, fqn, processing, seen); err != nil {
			return nil, err
		}
	}
	return main, nil
}

func collectImports(prog *ast.Program) []string {
	var out []string
	dup := make(map[string]bool)
	for _, f := range prog.Files {
		for _, imp := range f.Imports {
			if !dup[imp] {
				dup[imp] = true
				out = append(out, imp)
			}
		}
	}
	return out
}

func recordOwnDecls(f *ast.File, seen map[declKey]bool) {
	for _, td := range f.Types {
		seen[declKey{f.Namespace, td.Name, len(td.Standins)}] = true
	}
	for _, fd := range f.Functions {
		seen[declKey{f.Namespace, fd.Name, len(fd.Params)}] = true
	}
	for _, vd := range f.Variables {
		seen[declKey{f.Namespace, vd.Name, 0}] = true
	}
}

// resolveImport loads fqn (from cache if it was already loaded by an
// earlier import), recurses into its own imports first so a transitive
// dependency's declarations land in main before the dependency that
// imports it is merged, then merges fqn's public declarations.
func (l *Linker) resolveImport(main *ast.Program, fqn string, processing map[string]bool, seen map[declKey]bool) *diagnostics.Error {
	if processing[fqn] {
		return diagnostics.New(diagnostics.PhaseLinker, diagnostics.ErrImportCycle, token.Token{},
			"import cycle detected: %q imports back to a program already being linked", fqn)
	}

	dep, err := l.loadProgram(fqn)
	if err != nil {
		return err
	}

	processing[fqn] = true
	defer delete(processing, fqn)

	for _, subFQN := range collectImports(dep) {
		if err := l.resolveImport(main, subFQN, processing, seen); err != nil {
			return err
		}
	}

	for _, f := range dep.Files {
		merged, err := mergePublic(f, seen)
		if err != nil {
			return err
		}
		if merged != nil {
			main.Files = append(main.Files, merged)
		}
	}
	return nil
}

func (l *Linker) loadProgram(fqn string) (*ast.Program, *diagnostics.Error) {
	if prog, ok := l.cache[fqn]; ok {
		return prog, nil
	}
	path, ok := l.manifest.Programs[fqn]
	if !ok {
		return nil, diagnostics.New(diagnostics.PhaseLinker, diagnostics.ErrSymbolNotFound, token.Token{},
			"no program registered for import %q", fqn)
	}
	prog, err := l.load(path)
	if err != nil {
		return nil, diagnostics.New(diagnostics.PhaseLinker, diagnostics.ErrSymbolNotFound, token.Token{},
			"loading import %q from %s: %v", fqn, path, err)
	}
	l.cache[fqn] = prog
	return prog, nil
}

// mergePublic filters f down to its public declarations, checking each
// against seen for a (namespace, name, arity) clash and recording
// survivors into seen so a later import can't reintroduce the same
// triple. Returns a nil file (not an error) when f contributes nothing
// public.
func mergePublic(f *ast.File, seen map[declKey]bool) (*ast.File, *diagnostics.Error) {
	out := &ast.File{Path: f.Path, Namespace: f.Namespace}

	for _, td := range f.Types {
		if !td.Public {
			continue
		}
		k := declKey{f.Namespace, td.Name, len(td.Standins)}
		if seen[k] {
			return nil, clashError(k, td.GetToken())
		}
		seen[k] = true
		out.Types = append(out.Types, td)
	}
	for _, fd := range f.Functions {
		if !fd.Public {
			continue
		}
		k := declKey{f.Namespace, fd.Name, len(fd.Params)}
		if seen[k] {
			return nil, clashError(k, fd.GetToken())
		}
		seen[k] = true
		out.Functions = append(out.Functions, fd)
	}
	for _, vd := range f.Variables {
		if !vd.Public {
			continue
		}
		k := declKey{f.Namespace, vd.Name, 0}
		if seen[k] {
			return nil, clashError(k, vd.GetToken())
		}
		seen[k] = true
		out.Variables = append(out.Variables, vd)
	}

	if len(out.Types) == 0 && len(out.Functions) == 0 && len(out.Variables) == 0 {
		return nil, nil
	}
	return out, nil
}

func clashError(k declKey, tok token.Token) *diagnostics.Error {
	return diagnostics.New(diagnostics.PhaseLinker, diagnostics.ErrSymbolAlreadyDeclared, tok,
		"import clash: %s/%d already declared in namespace %q", k.Name, k.Arity, k.Namespace)
}
