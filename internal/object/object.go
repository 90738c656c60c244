package object

import (
	"bytes"
	"context"
	"fmt"
	"jasper/internal/util/future"
	"math"
	"strconv"
)

const (
	NUMBER_OBJ    = "NUMBER"
	STRING_OBJ    = "STRING"
	BOOLEAN_OBJ   = "BOOLEAN"
	UNDEFINED_OBJ = "UNDEFINED"

	BUILTIN_OBJ  = "BUILTIN"
	COMPOUND_OBJ = "COMPOUND"
	PENDING_OBJ  = "PENDING"
)

var (
	UNDEFINED = &Undefined{}
	TRUE      = &Boolean{Value: true}
	FALSE     = &Boolean{Value: false}
)

type ValueType string

type Value interface {
	Type() ValueType
	Inspect() string
}

// Callable is implemented by the two invocable variants, *Builtin and *Compound.
// The evaluator switches over them exhaustively when applying.
type Callable interface {
	Value
	callable()
}

// CallContext gives native code access to the running evaluation: its
// context and the ability to apply other callables (selectors passed to
// compounds, for instance).
type CallContext interface {
	Context() context.Context
	Apply(fn Value, args ...Value) (Value, error)
}

type BuiltinFunction func(ctx CallContext, args ...Value) (Value, error)

type Number struct {
	Value float64
}

func (n *Number) Type() ValueType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return strconv.FormatFloat(n.Value, 'g', -1, 64) }

// String carries symbol or string text produced by the program.
type String struct {
	Value string
}

func (s *String) Type() ValueType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ValueType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

type Undefined struct{}

func (u *Undefined) Type() ValueType { return UNDEFINED_OBJ }
func (u *Undefined) Inspect() string  { return "undefined" }

// Builtin is a native procedure. Arity is checked by the evaluator before Fn runs.
type Builtin struct {
	Name  string
	Arity Arity
	Fn    BuiltinFunction
}

func (b *Builtin) callable()        {}
func (b *Builtin) Type() ValueType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return fmt.Sprintf("<builtin %s>", b.Name) }

// Compound is the selector-closure encoding of pairs and lists. Applied to a
// single callable selector it invokes the selector with the stored items, so
// (cons a b) behaves like (lambda (f) (f a b)).
type Compound struct {
	Items []Value
}

func (c *Compound) callable()        {}
func (c *Compound) Type() ValueType { return COMPOUND_OBJ }
func (c *Compound) Inspect() string {
	var out bytes.Buffer
	out.WriteString("(")
	for i, item := range c.Items {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(item.Inspect())
	}
	out.WriteString(")")
	return out.String()
}

// Pending is a deferred result returned by an asynchronous builtin. The
// evaluator awaits it at the call site, so it is never bound or passed on.
type Pending struct {
	Label  string
	Future *future.Future[Value]
}

func (p *Pending) Type() ValueType { return PENDING_OBJ }
func (p *Pending) Inspect() string  { return fmt.Sprintf("<pending %s>", p.Label) }

// Await blocks until the computation settles or ctx is done.
func (p *Pending) Await(ctx context.Context) (Value, error) {
	v, err := p.Future.AwaitContext(ctx)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return UNDEFINED, nil
	}
	return v, nil
}

// NewPending runs fn off the calling goroutine and returns its handle.
func NewPending(label string, fn func() (Value, error)) *Pending {
	return &Pending{Label: label, Future: future.New(fn)}
}

func NativeBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

// Truthy follows the usual dynamic-language rules: false, 0, NaN, the empty
// string and undefined are false; everything else is true.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case nil:
		return false
	case *Boolean:
		return v.Value
	case *Number:
		return v.Value != 0 && !math.IsNaN(v.Value)
	case *String:
		return v.Value != ""
	case *Undefined:
		return false
	default:
		return true
	}
}

// Equal is value equality. Compounds compare element-wise; builtins and
// pending values compare by identity.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case *Number:
		bn, ok := b.(*Number)
		return ok && a.Value == bn.Value
	case *String:
		bs, ok := b.(*String)
		return ok && a.Value == bs.Value
	case *Boolean:
		bb, ok := b.(*Boolean)
		return ok && a.Value == bb.Value
	case *Undefined:
		_, ok := b.(*Undefined)
		return ok
	case *Compound:
		bc, ok := b.(*Compound)
		if !ok || len(a.Items) != len(bc.Items) {
			return false
		}
		for i := range a.Items {
			if !Equal(a.Items[i], bc.Items[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
