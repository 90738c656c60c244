package lexer

import (
	"jasper/internal/token"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"simple call", "(+ 1 2)", []string{"(", "+", "1", "2", ")"}},
		{"nested", "(begin (def r 10) (* pi (* r r)))",
			[]string{"(", "begin", "(", "def", "r", "10", ")", "(", "*", "pi", "(", "*", "r", "r", ")", ")", ")"}},
		{"no padding around parens", "((cons 1 2)car)", []string{"(", "(", "cons", "1", "2", ")", "car", ")"}},
		{"whitespace control chars", "(+\t1\r\n2)", []string{"(", "+", "1", "2", ")"}},
		{"line comment", "(+ 1 2) ; add\n(print `x) ; done", []string{"(", "+", "1", "2", ")", "(", "print", "`x", ")"}},
		{"comment only", "; nothing here", []string{}},
		{"dotted symbol", "(Math.sqrt 16)", []string{"(", "Math.sqrt", "16", ")"}},
		{"empty", "", []string{}},
		{"unbalanced is not an error", "(+ 1", []string{"(", "+", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Literals(Tokenize(tt.input))
			if !reflect.DeepEqual(got, tt.expected) {
				t.Fatalf("Tokenize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTokenTypes(t *testing.T) {
	toks := Tokenize("(a `b)")
	expected := []token.TokenType{token.OPEN, token.ATOM, token.ATOM, token.CLOSE}
	if len(toks) != len(expected) {
		t.Fatalf("wrong token count. got=%d, want=%d", len(toks), len(expected))
	}
	for i, tok := range toks {
		if tok.Type != expected[i] {
			t.Errorf("tokens[%d] type wrong. got=%q, want=%q", i, tok.Type, expected[i])
		}
	}
}
