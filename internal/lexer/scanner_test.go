package lexer

import (
	"testing"

	"gridlang/internal/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := New(src).ScanTokens()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	return toks
}

func TestNumberLiteralRoundTrip(t *testing.T) {
	toks := scanAll(t, "3.14")
	if toks[0].Type != token.Number || toks[0].Number != 3.14 {
		t.Fatalf("got %#v", toks[0])
	}
}

func TestStringEscapes(t *testing.T) {
	toks := scanAll(t, `"a\nb\tc\\d"`)
	if toks[0].Lexeme != "a\nb\tc\\d" {
		t.Fatalf("got %q", toks[0].Lexeme)
	}
}

func TestRawRegexKeepsBackslashes(t *testing.T) {
	toks := scanAll(t, `r"(?<y>\d+)-(?<m>\d+)"`)
	if toks[0].Type != token.RawRegex {
		t.Fatalf("expected RawRegex, got %v", toks[0].Type)
	}
	if toks[0].Lexeme != `(?<y>\d+)-(?<m>\d+)` {
		t.Fatalf("got %q", toks[0].Lexeme)
	}
}

func TestFStringParts(t *testing.T) {
	toks := scanAll(t, `f"hi {name.first}!"`)
	if toks[0].Type != token.FString {
		t.Fatalf("expected FString, got %v", toks[0].Type)
	}
	parts := toks[0].Parts
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d: %#v", len(parts), parts)
	}
	if parts[0].Lit != "hi " {
		t.Fatalf("got %#v", parts[0])
	}
	if len(parts[1].Path) != 2 || parts[1].Path[0] != "name" || parts[1].Path[1] != "first" {
		t.Fatalf("got %#v", parts[1])
	}
	if parts[2].Lit != "!" {
		t.Fatalf("got %#v", parts[2])
	}
}

func TestMultiCharOperators(t *testing.T) {
	toks := scanAll(t, "== != <= >= **")
	want := []token.Type{token.Eq, token.NotEq, token.Lte, token.Gte, token.Pow}
	for i, w := range want {
		if toks[i].Type != w {
			t.Fatalf("token %d: want %v, got %v", i, w, toks[i].Type)
		}
	}
}

func TestUnknownCharacterIsLexError(t *testing.T) {
	if _, err := New("@").ScanTokens(); err == nil {
		t.Fatalf("expected lex error for '@'")
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	toks := scanAll(t, "1 # trailing comment\n+ 2")
	if toks[0].Type != token.Number || toks[1].Type != token.Plus || toks[2].Type != token.Number {
		t.Fatalf("got %#v", toks)
	}
}

func TestNewlinesAreDropped(t *testing.T) {
	toks := scanAll(t, "1\n2")
	if len(toks) != 3 { // 1, 2, EOF
		t.Fatalf("expected 3 tokens, got %d: %#v", len(toks), toks)
	}
}
