package ast

import (
	"bytes"
	"errors"
	"jasper/internal/token"
	"strconv"
	"strings"
)

// SequenceHead is the head of the synthetic root form. It cannot be produced
// by the tokenizer because it contains a space.
const SequenceHead = "%sequence %"

// The base Node interface
type Node interface {
	TokenLiteral() string
	String() string
}

// Atom is a leaf of the expression tree.
type Atom interface {
	Node
	atomNode()
}

type Number struct {
	Token token.Token
	Value float64
}

func (n *Number) atomNode()            {}
func (n *Number) TokenLiteral() string { return n.Token.Literal }
func (n *Number) String() string       { return n.Token.Literal }

// Symbol is resolved against the environment (or the host namespaces when dotted).
type Symbol struct {
	Token token.Token
	Value string
}

func (s *Symbol) atomNode()            {}
func (s *Symbol) TokenLiteral() string { return s.Token.Literal }
func (s *Symbol) String() string       { return s.Value }

// Scope splits a dotted symbol on its first separator. ok is false when the
// symbol has no separator or either side is empty.
func (s *Symbol) Scope() (scope string, member string, ok bool) {
	scope, member, found := strings.Cut(s.Value, token.SCOPE_SEPARATOR)
	if !found || scope == "" || member == "" {
		return "", "", false
	}
	return scope, member, true
}

// StringLiteral is a backtick atom; it evaluates to its text without lookup.
type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) atomNode()            {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return sl.Token.Literal }

// Form is a parenthesized expression: a head followed by ordered arguments.
// The head is usually a Symbol but may be any node, e.g. ((cons 1 2) +).
type Form struct {
	Token token.Token // the token.OPEN token
	Head  Node
	Args  []Node
}

func (f *Form) TokenLiteral() string { return f.Token.Literal }

func (f *Form) String() string {
	if f.IsSequence() {
		parts := make([]string, len(f.Args))
		for i, a := range f.Args {
			parts[i] = a.String()
		}
		return strings.Join(parts, "\n")
	}

	var out bytes.Buffer
	out.WriteString("(")
	if f.Head != nil {
		out.WriteString(f.Head.String())
	}
	for _, a := range f.Args {
		out.WriteString(" ")
		out.WriteString(a.String())
	}
	out.WriteString(")")
	return out.String()
}

// HeadName returns the head symbol's name, or "" when the head is not a symbol.
func (f *Form) HeadName() string {
	if sym, ok := f.Head.(*Symbol); ok {
		return sym.Value
	}
	return ""
}

// IsSequence reports whether f is the synthetic program root.
func (f *Form) IsSequence() bool {
	return f.HeadName() == SequenceHead
}

// NewSequence builds an empty program root.
func NewSequence() *Form {
	return &Form{
		Token: token.Token{Type: token.OPEN, Literal: token.LPAREN},
		Head:  &Symbol{Token: token.Token{Type: token.ATOM, Literal: SequenceHead}, Value: SequenceHead},
	}
}

// Classify turns a single atom token into a Number, StringLiteral or Symbol.
func Classify(tok token.Token) Atom {
	lit := tok.Literal
	if strings.HasPrefix(lit, string(token.STRING_PREFIX)) {
		return &StringLiteral{Token: tok, Value: lit[1:]}
	}
	if isNumeric(lit) {
		// out of range literals still read as numbers, at +/-Inf
		v, err := strconv.ParseFloat(lit, 64)
		if err == nil || errors.Is(err, strconv.ErrRange) {
			return &Number{Token: tok, Value: v}
		}
	}
	return &Symbol{Token: tok, Value: lit}
}

// isNumeric rejects spellings ParseFloat accepts but that read as names in
// source text ("inf", "NaN", "Infinity").
func isNumeric(lit string) bool {
	for _, ch := range lit {
		switch {
		case ch >= '0' && ch <= '9':
			return true
		case ch == '+' || ch == '-' || ch == '.':
			continue
		default:
			return false
		}
	}
	return false
}
