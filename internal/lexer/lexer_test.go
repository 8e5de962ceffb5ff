package lexer

import (
	"testing"

	"github.com/avalon-lang/avalon/internal/token"
)

func scanAll(src string) []token.Token {
	l := New(src, "test.avl")
	var toks []token.Token
	for {
		t := l.Next()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			return toks
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestNext_IsVersusIsNot(t *testing.T) {
	toks := scanAll("a is b")
	if len(toks) < 3 || toks[1].Kind != token.IS {
		t.Fatalf("expected a lone IS token, got %v", kinds(toks))
	}

	toks = scanAll("a is not b")
	if len(toks) < 3 || toks[1].Kind != token.IS_NOT || toks[1].Lexeme != "is not" {
		t.Fatalf("expected a folded IS_NOT token, got %v", kinds(toks))
	}
}

func TestNext_NoNewlineTokensEmitted(t *testing.T) {
	toks := scanAll("var x\nvar y")
	for _, tk := range toks {
		if tk.Kind == token.NEWLINE {
			t.Fatalf("expected no NEWLINE tokens, got one in %v", kinds(toks))
		}
	}
}

func TestNext_DecimalLiteralStripsSuffix(t *testing.T) {
	toks := scanAll("3.14d")
	if len(toks) < 1 || toks[0].Kind != token.DECIMAL || toks[0].Lexeme != "3.14" {
		t.Fatalf("expected a DECIMAL token with Lexeme 3.14, got %v (%q)", toks[0].Kind, toks[0].Lexeme)
	}
}

func TestNext_FloatVersusInt(t *testing.T) {
	toks := scanAll("3.14 7")
	if toks[0].Kind != token.FLOAT || toks[0].Lexeme != "3.14" {
		t.Fatalf("expected FLOAT 3.14, got %v %q", toks[0].Kind, toks[0].Lexeme)
	}
	if toks[1].Kind != token.INT || toks[1].Lexeme != "7" {
		t.Fatalf("expected INT 7, got %v %q", toks[1].Kind, toks[1].Lexeme)
	}
}

func TestNext_MultiCharOperators(t *testing.T) {
	toks := scanAll(":= == === != <= << < >= >> > && & || | ~")
	want := []token.Kind{
		token.ASSIGN, token.EQ, token.MATCH_OP, token.NOT_EQ, token.LTE, token.SHL, token.LT,
		token.GTE, token.SHR, token.GT, token.AND, token.BAND, token.OR, token.BOR, token.BNOT,
		token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestNext_BitStringAndQubitString(t *testing.T) {
	toks := scanAll(`#b"1010" @b"0110"`)
	if toks[0].Kind != token.BITSTRING || toks[0].Lexeme != "1010" {
		t.Fatalf("expected BITSTRING 1010, got %v %q", toks[0].Kind, toks[0].Lexeme)
	}
	if toks[1].Kind != token.QUBITSTRING || toks[1].Lexeme != "0110" {
		t.Fatalf("expected QUBITSTRING 0110, got %v %q", toks[1].Kind, toks[1].Lexeme)
	}
}

func TestNext_StringEscapes(t *testing.T) {
	toks := scanAll(`"a\nb\"c"`)
	if toks[0].Kind != token.STRING || toks[0].Lexeme != "a\nb\"c" {
		t.Fatalf("expected escaped string, got %q", toks[0].Lexeme)
	}
}

func TestNext_KeywordsAndIdentifierCase(t *testing.T) {
	toks := scanAll("function Foo foo _ import")
	want := []token.Kind{token.FUNCTION, token.IDENT_UPPER, token.IDENT_LOWER, token.UNDERSCORE, token.IMPORT, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestNext_SkipsLineComments(t *testing.T) {
	toks := scanAll("1 // a comment\n2")
	if toks[0].Kind != token.INT || toks[0].Lexeme != "1" {
		t.Fatalf("expected INT 1, got %v %q", toks[0].Kind, toks[0].Lexeme)
	}
	if toks[1].Kind != token.INT || toks[1].Lexeme != "2" {
		t.Fatalf("expected INT 2 after the comment, got %v %q", toks[1].Kind, toks[1].Lexeme)
	}
}
