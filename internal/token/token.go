package token

type TokenType string

const (
	// Lexical classes
	OPEN  = "OPEN"  // (
	CLOSE = "CLOSE" // )
	ATOM  = "ATOM"  // 42, +, r, Math.PI, `hello

	LPAREN = "("
	RPAREN = ")"

	// COMMENT starts a comment that runs to the end of the line.
	COMMENT = ';'
	// STRING_PREFIX marks an atom as a string literal.
	STRING_PREFIX = '`'
	// SCOPE_SEPARATOR splits a dotted symbol into scope and member.
	SCOPE_SEPARATOR = "."

	// Special forms
	IF    = "if"
	DEF   = "def"
	PRINT = "print"
)

// Token is one lexical unit. Its index in the token slice is the only
// position information kept.
type Token struct {
	Type    TokenType
	Literal string
}

var specialForms = map[string]bool{
	IF:    true,
	DEF:   true,
	PRINT: true,
}

// IsSpecialForm reports whether a form head is reserved.
func IsSpecialForm(head string) bool {
	return specialForms[head]
}

// LookupType classifies a raw fragment produced by the tokenizer.
func LookupType(literal string) TokenType {
	switch literal {
	case LPAREN:
		return OPEN
	case RPAREN:
		return CLOSE
	default:
		return ATOM
	}
}

func (t Token) String() string {
	return t.Literal
}
