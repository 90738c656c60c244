package parser

import (
	"fmt"
	"jasper/internal/ast"
	"jasper/internal/lexer"
	"jasper/internal/token"
)

const (
	ErrUnclosed      = "unclosed expression"
	ErrUnexpectedEnd = "unexpected end of input"
	ErrUnexpectedRP  = "unexpected )"
	ErrEmptyForm     = "empty expression"
)

// SyntaxError reports malformed parenthesization. Position is the index of
// the offending token, or the token count when the input ran out.
type SyntaxError struct {
	Message  string
	Position int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s (token %d)", e.Message, e.Position)
}

// Parser builds an expression tree in one forward pass over the tokens.
type Parser struct {
	tokens   []token.Token
	position int

	// depth starts below zero so that the synthetic root counts as the first opened scope.
	depth int
	open  []*ast.Form
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, depth: -1}
}

// Parse consumes the whole token sequence and returns the program root.
func Parse(tokens []token.Token) (*ast.Form, error) {
	return New(tokens).ParseProgram()
}

// ParseProgram tokenizes and parses program text.
func ParseProgram(src string) (*ast.Form, error) {
	return Parse(lexer.Tokenize(src))
}

func (p *Parser) ParseProgram() (*ast.Form, error) {
	if len(p.tokens) == 0 {
		return nil, p.errorAt(ErrUnexpectedEnd, 0)
	}

	p.openForm(ast.NewSequence())
	root := p.current()

	for ; p.position < len(p.tokens); p.position++ {
		tok := p.tokens[p.position]
		switch tok.Type {
		case token.OPEN:
			p.openForm(&ast.Form{Token: tok})
		case token.CLOSE:
			if err := p.parseClose(); err != nil {
				return nil, err
			}
		default:
			p.parseAtom(tok)
		}
	}

	if p.depth != 0 {
		if p.current().Head == nil {
			return nil, p.errorAt(ErrUnexpectedEnd, len(p.tokens))
		}
		return nil, p.errorAt(ErrUnclosed, len(p.tokens))
	}
	return root, nil
}

// parseAtom fills the head slot of a freshly opened form, otherwise appends
// an argument to the innermost open form (the root when none is open).
func (p *Parser) parseAtom(tok token.Token) {
	atom := ast.Classify(tok)
	form := p.current()
	if form.Head == nil {
		form.Head = atom
		return
	}
	form.Args = append(form.Args, atom)
}

func (p *Parser) parseClose() error {
	if p.depth == 0 {
		return p.errorAt(ErrUnexpectedRP, p.position)
	}
	closed := p.current()
	if closed.Head == nil {
		return p.errorAt(ErrEmptyForm, p.position)
	}
	p.open = p.open[:len(p.open)-1]
	p.depth--

	// a form opened directly after "(" is the head of its parent, as in ((cons 1 2) +)
	parent := p.current()
	if parent.Head == nil {
		parent.Head = closed
	} else {
		parent.Args = append(parent.Args, closed)
	}
	return nil
}

func (p *Parser) openForm(f *ast.Form) {
	p.open = append(p.open, f)
	p.depth++
}

func (p *Parser) current() *ast.Form {
	return p.open[len(p.open)-1]
}

func (p *Parser) errorAt(msg string, pos int) *SyntaxError {
	return &SyntaxError{Message: msg, Position: pos}
}
