package linker

import (
	"testing"

	"golang.org/x/tools/txtar"
	"gopkg.in/yaml.v3"

	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/parser"
)

// fixture bundles a multi-file program (one or more .avl sources plus
// the YAML manifest pairing an import's FQN to its source) into one
// txtar archive, the way golang.org/x/tools/txtar is meant to stand in
// for a testdata directory tree.
const fixture = `
-- manifest.yaml --
programs:
  math.add: add.avl

-- main.avl --
import math.add

function __main__(args: list<string>): int {
    return 0
}

-- add.avl --
public function helper(x: int): int {
    return x + 1
}

private function hidden(x: int): int {
    return x
}
`

const cyclicFixture = `
-- manifest.yaml --
programs:
  a: a.avl
  b: b.avl

-- a.avl --
import b

public function fromA(x: int): int {
    return x
}

-- b.avl --
import a

public function fromB(x: int): int {
    return x
}
`

func parseArchive(t *testing.T, data string) (*Manifest, map[string]string) {
	t.Helper()
	arc := txtar.Parse([]byte(data))
	sources := make(map[string]string)
	var manifestData []byte
	for _, f := range arc.Files {
		if f.Name == "manifest.yaml" {
			manifestData = f.Data
			continue
		}
		sources[f.Name] = string(f.Data)
	}
	var m Manifest
	if err := yaml.Unmarshal(manifestData, &m); err != nil {
		t.Fatalf("parsing manifest: %v", err)
	}
	return &m, sources
}

func newLoader(sources map[string]string) Loader {
	return func(path string) (*ast.Program, error) {
		src, ok := sources[path]
		if !ok {
			return nil, errNotFound(path)
		}
		return parser.Parse(src, path, namespaceOf(path))
	}
}

// namespaceOf keeps every fixture file in the same (empty) namespace so
// TestLink_RejectsClashingArity's dup/1 in main and dup/1 in lib.avl
// land under the identical (namespace, name, arity) triple the linker
// is meant to reject; namespace-qualified lookup itself is out of the
// parser's cut grammar (see package doc on internal/parser).
func namespaceOf(path string) string {
	return ""
}

type notFoundError string

func (e notFoundError) Error() string { return "no such fixture file: " + string(e) }

func errNotFound(path string) error { return notFoundError(path) }

func TestLink_MergesOnlyPublicDeclarations(t *testing.T) {
	manifest, sources := parseArchive(t, fixture)
	main, err := parser.Parse(sources["main.avl"], "main.avl", "")
	if err != nil {
		t.Fatalf("parsing main: %v", err)
	}

	l := New(manifest, newLoader(sources))
	linked, linkErr := l.Link(main, "main")
	if linkErr != nil {
		t.Fatalf("unexpected link error: %v", linkErr)
	}

	var names []string
	for _, f := range linked.Files {
		for _, fd := range f.Functions {
			names = append(names, fd.Name)
		}
	}
	foundHelper, foundHidden := false, false
	for _, n := range names {
		if n == "helper" {
			foundHelper = true
		}
		if n == "hidden" {
			foundHidden = true
		}
	}
	if !foundHelper {
		t.Fatalf("expected public function helper to be merged in, got %v", names)
	}
	if foundHidden {
		t.Fatalf("private function hidden must not be merged in, got %v", names)
	}
}

func TestLink_RejectsImportCycle(t *testing.T) {
	manifest, sources := parseArchive(t, cyclicFixture)
	main, err := parser.Parse(sources["a.avl"], "a.avl", "a")
	if err != nil {
		t.Fatalf("parsing a.avl: %v", err)
	}

	l := New(manifest, newLoader(sources))
	_, linkErr := l.Link(main, "a")
	if linkErr == nil {
		t.Fatalf("expected an import cycle error, got none")
	}
}

func TestLink_RejectsClashingArity(t *testing.T) {
	const data = `
-- manifest.yaml --
programs:
  lib: lib.avl

-- main.avl --
import lib

public function dup(x: int): int {
    return x
}

function __main__(args: list<string>): int {
    return 0
}

-- lib.avl --
public function dup(x: int): int {
    return x
}
`
	manifest, sources := parseArchive(t, data)
	main, err := parser.Parse(sources["main.avl"], "main.avl", "")
	if err != nil {
		t.Fatalf("parsing main: %v", err)
	}

	l := New(manifest, newLoader(sources))
	_, linkErr := l.Link(main, "main")
	if linkErr == nil {
		t.Fatalf("expected a clash error for duplicate dup/1, got none")
	}
}
