// Command avalon parses, links, and runs a single avalon program: it
// reads the source file named on the command line, resolves its
// `import` declarations against an optional YAML manifest, and calls
// its `(*, __main__, 1)` entry point with the remaining arguments as a
// `list<string>`.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/diagnostics"
	"github.com/avalon-lang/avalon/internal/driver"
	"github.com/avalon-lang/avalon/internal/linker"
	"github.com/avalon-lang/avalon/internal/parser"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: avalon <source-file> [-manifest path] [program args...]")
		return 1
	}

	path := args[0]
	rest := args[1:]

	manifestPath, programArgs := extractManifestFlag(rest)

	src, err := os.ReadFile(path)
	if err != nil {
		reportError(err)
		return 1
	}

	fqn := fqnForPath(path)
	program, err := parser.Parse(string(src), path, "")
	if err != nil {
		reportError(err)
		return 1
	}

	if manifestPath != "" {
		manifest, err := linker.LoadManifest(manifestPath)
		if err != nil {
			reportError(err)
			return 1
		}
		l := linker.New(manifest, fileLoader)
		linked, linkErr := l.Link(program, fqn)
		if linkErr != nil {
			reportError(linkErr)
			return 1
		}
		program = linked
	}

	if _, runErr := driver.Run(program, programArgs); runErr != nil {
		reportError(runErr)
		return 1
	}

	return 0
}

// extractManifestFlag pulls the first "-manifest path" pair out of args,
// wherever it appears,
// returning whatever remains as the program's own argv.
func extractManifestFlag(args []string) (manifestPath string, rest []string) {
	for i := 0; i < len(args); i++ {
		if args[i] == "-manifest" && i+1 < len(args) {
			manifestPath = args[i+1]
			rest = append(rest, args[:i]...)
			rest = append(rest, args[i+2:]...)
			return manifestPath, rest
		}
	}
	return "", args
}

// fqnForPath derives a program's own fully-qualified name from its
// source path: strip the extension and any directory components.
func fqnForPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// fileLoader is the linker's Loader for a program read straight off
// disk: an imported program's manifest entry is itself a source path,
// parsed the same way the main source file is. Every program shares the
// global namespace ("") here, since this grammar has no namespace-
// qualified identifier syntax for a caller to reach into another one.
func fileLoader(path string) (*ast.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parser.Parse(string(src), path, "")
}

// reportError writes a single diagnostic line to stderr. A
// *diagnostics.Error carries its own phase/location/code formatting; any
// other error (a parse failure, an I/O error) is written as-is.
// Coloring decisions (colorEnabled): respect NO_COLOR, require stdout to
// be an interactive terminal, and skip color on TERM=dumb.
func reportError(err error) {
	msg := err.Error()
	if !colorEnabled() {
		fmt.Fprintln(os.Stderr, msg)
		return
	}

	var diagErr *diagnostics.Error
	if errors.As(err, &diagErr) {
		fmt.Fprintf(os.Stderr, "\x1b[31;1merror\x1b[0m: %s\n", msg)
		return
	}
	fmt.Fprintln(os.Stderr, msg)
}

func colorEnabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return true
}
