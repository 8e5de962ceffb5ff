// Package diagnostics carries the structured diagnostic error kinds
// raised during checking, linking, and interpretation: a Code, a Phase,
// an anchoring Token, and a message.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/avalon-lang/avalon/internal/token"
)

// Phase identifies which pipeline stage raised the error.
type Phase string

const (
	PhaseChecker     Phase = "checker"
	PhaseInterpreter Phase = "interpreter"
	PhaseLinker      Phase = "linker"
)

// ErrorCode enumerates error kinds.
type ErrorCode string

const (
	ErrInvalidType           ErrorCode = "invalid-type"
	ErrInvalidVariable       ErrorCode = "invalid-variable"
	ErrInvalidFunction       ErrorCode = "invalid-function"
	ErrInvalidExpression     ErrorCode = "invalid-expression"
	ErrSymbolNotFound        ErrorCode = "symbol-not-found"
	ErrSymbolCanCollide      ErrorCode = "symbol-can-collide"
	ErrSymbolAlreadyDeclared ErrorCode = "symbol-already-declared"
	ErrInterpret             ErrorCode = "interpret-error"
	ErrImportCycle           ErrorCode = "import-cycle"
)

// Error is a single diagnostic, always anchored to a token for location.
type Error struct {
	Code    ErrorCode
	Phase   Phase
	Token   token.Token
	Message string
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Token.Source != "" {
		fmt.Fprintf(&b, "%s: ", e.Token.Source)
	}
	if e.Phase != "" {
		fmt.Fprintf(&b, "[%s] ", e.Phase)
	}
	if e.Token.Line > 0 {
		fmt.Fprintf(&b, "error at %d:%d [%s]: %s", e.Token.Line, e.Token.Column, e.Code, e.Message)
	} else {
		fmt.Fprintf(&b, "error [%s]: %s", e.Code, e.Message)
	}
	return b.String()
}

// New constructs a diagnostic for the given phase, code, token and a
// printf-style message.
func New(phase Phase, code ErrorCode, tok token.Token, format string, args ...interface{}) *Error {
	return &Error{Code: code, Phase: phase, Token: tok, Message: fmt.Sprintf(format, args...)}
}

// Sink collects diagnostics raised while walking one declaration, letting
// the caller resynchronize at the next declaration boundary after the
// first error in a subtree.
type Sink struct {
	errors []*Error
}

// Report appends a diagnostic. It never panics or stops the walk; callers
// decide whether to abort the current declaration after the first Report.
func (s *Sink) Report(e *Error) {
	s.errors = append(s.errors, e)
}

// Reportf is a convenience wrapper building the Error inline.
func (s *Sink) Reportf(phase Phase, code ErrorCode, tok token.Token, format string, args ...interface{}) {
	s.Report(New(phase, code, tok, format, args...))
}

// Errors returns all diagnostics collected so far, in report order.
func (s *Sink) Errors() []*Error { return s.errors }

// HasErrors reports whether any diagnostic has been collected.
func (s *Sink) HasErrors() bool { return len(s.errors) > 0 }

// FirstInSubtree returns the first error appended since mark (the sink's
// length recorded before walking a subtree), or nil if none occurred —
// used by the per-declaration checker to decide whether to bail out of
// the current declaration's subtree.
func (s *Sink) FirstInSubtree(mark int) *Error {
	if len(s.errors) > mark {
		return s.errors[mark]
	}
	return nil
}

// Mark returns the current error count, to be passed to FirstInSubtree.
func (s *Sink) Mark() int { return len(s.errors) }
