package lexer

import (
	"jasper/internal/token"
	"strings"
)

// Tokenize splits program text into a flat, ordered token sequence.
// It never fails; unbalanced or otherwise malformed input is reported by the parser.
func Tokenize(input string) []token.Token {
	stripped := stripComments(input)

	var sb strings.Builder
	sb.Grow(len(stripped) + len(stripped)/4)
	for _, ch := range stripped {
		switch ch {
		case '\n', '\t', '\r':
			sb.WriteByte(' ')
		case '(', ')':
			sb.WriteByte(' ')
			sb.WriteRune(ch)
			sb.WriteByte(' ')
		default:
			sb.WriteRune(ch)
		}
	}

	fragments := strings.Split(sb.String(), " ")
	tokens := make([]token.Token, 0, len(fragments))
	for _, frag := range fragments {
		if frag == "" {
			continue
		}
		tokens = append(tokens, token.Token{Type: token.LookupType(frag), Literal: frag})
	}
	return tokens
}

// Literals returns the raw text of each token.
func Literals(tokens []token.Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Literal
	}
	return out
}

// stripComments blanks everything from the comment marker to the end of each line.
// The newline itself is kept so the caller turns it into a separator.
func stripComments(input string) string {
	if strings.IndexRune(input, token.COMMENT) < 0 {
		return input
	}
	lines := strings.Split(input, "\n")
	for i, line := range lines {
		if idx := strings.IndexRune(line, token.COMMENT); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return strings.Join(lines, "\n")
}
