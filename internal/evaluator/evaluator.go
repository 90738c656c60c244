package evaluator

import (
	"context"
	"fmt"
	"jasper/internal/ast"
	"jasper/internal/object"
	"jasper/internal/parser"
	"jasper/internal/token"
	"log/slog"
)

// Emitter receives the evaluated arguments of every print form.
type Emitter interface {
	Emit(values ...object.Value)
}

// HostGlobals resolves scope.member for dotted symbols whose scope is not
// bound in the environment. It reports false when nothing matches.
type HostGlobals func(scope, member string) (object.Value, bool)

// Evaluator walks an expression tree against one global environment.
// It is not safe for concurrent use.
type Evaluator struct {
	Env  *object.Environment
	Out  Emitter
	Host HostGlobals
}

// New returns an Evaluator over env. out and host may be nil: print then
// only returns its arguments and dotted symbols only resolve through env.
func New(env *object.Environment, out Emitter, host HostGlobals) *Evaluator {
	return &Evaluator{Env: env, Out: out, Host: host}
}

// Run parses src and evaluates the whole program, returning the value of
// its last top-level expression.
func (e *Evaluator) Run(ctx context.Context, src string) (object.Value, error) {
	program, err := parser.ParseProgram(src)
	if err != nil {
		return nil, err
	}
	slog.Debug("parsed program", slog.Int("expressions", len(program.Args)))
	return e.Eval(ctx, program)
}

func (e *Evaluator) Eval(ctx context.Context, node ast.Node) (object.Value, error) {
	switch node := node.(type) {

	case *ast.Symbol:
		return e.evalSymbol(node)

	case *ast.Number:
		return &object.Number{Value: node.Value}, nil

	case *ast.StringLiteral:
		return &object.String{Value: node.Value}, nil

	case *ast.Form:
		if node.IsSequence() {
			return e.evalSequence(ctx, node)
		}
		if head := node.HeadName(); token.IsSpecialForm(head) {
			return e.evalSpecialForm(ctx, head, node)
		}
		return e.evalApplication(ctx, node)

	default:
		if v, ok := node.(object.Value); ok {
			return v, nil
		}
		return nil, fmt.Errorf("cannot evaluate node of type %T", node)
	}
}

// evalSequence folds over the top-level expressions in source order.
func (e *Evaluator) evalSequence(ctx context.Context, seq *ast.Form) (object.Value, error) {
	var result object.Value = object.UNDEFINED
	for _, expr := range seq.Args {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		val, err := e.Eval(ctx, expr)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return result, nil
}

// evalSymbol resolves scope.member by trying the scope binding first, then
// the host namespaces, then the full dotted name as an ordinary binding.
func (e *Evaluator) evalSymbol(sym *ast.Symbol) (object.Value, error) {
	if scope, member, ok := sym.Scope(); ok {
		if val, ok := e.Env.Get(scope); ok {
			return val, nil
		}
		if e.Host != nil {
			if val, ok := e.Host(scope, member); ok {
				return val, nil
			}
		}
		slog.Debug("no host global", slog.String("scope", scope), slog.String("member", member))
	}

	if val, ok := e.Env.Get(sym.Value); ok {
		return val, nil
	}
	return nil, &object.UnboundSymbolError{Name: sym.Value}
}

func (e *Evaluator) evalSpecialForm(ctx context.Context, head string, form *ast.Form) (object.Value, error) {
	switch head {
	case token.IF:
		return e.evalIf(ctx, form)
	case token.DEF:
		return e.evalDef(ctx, form)
	case token.PRINT:
		return e.evalPrint(ctx, form)
	default:
		return nil, &object.FormError{Form: head, Message: "reserved form has no evaluator"}
	}
}

// evalIf evaluates exactly one branch. A missing alternative yields undefined.
func (e *Evaluator) evalIf(ctx context.Context, form *ast.Form) (object.Value, error) {
	if len(form.Args) < 2 || len(form.Args) > 3 {
		return nil, &object.ArityError{Name: token.IF, Got: len(form.Args), Want: object.Between(2, 3)}
	}

	predicate, err := e.Eval(ctx, form.Args[0])
	if err != nil {
		return nil, err
	}

	if object.Truthy(predicate) {
		return e.Eval(ctx, form.Args[1])
	}
	if len(form.Args) == 3 {
		return e.Eval(ctx, form.Args[2])
	}
	return object.UNDEFINED, nil
}

// evalDef binds into the global environment and returns the bound value.
func (e *Evaluator) evalDef(ctx context.Context, form *ast.Form) (object.Value, error) {
	if len(form.Args) != 2 {
		return nil, &object.ArityError{Name: token.DEF, Got: len(form.Args), Want: object.Exactly(2)}
	}
	name, ok := form.Args[0].(*ast.Symbol)
	if !ok {
		return nil, &object.FormError{Form: token.DEF, Message: fmt.Sprintf("first argument must be a symbol, got %s", form.Args[0])}
	}

	val, err := e.Eval(ctx, form.Args[1])
	if err != nil {
		return nil, err
	}
	return e.Env.Define(name.Value, val), nil
}

// evalPrint emits every argument once all of them have been evaluated.
func (e *Evaluator) evalPrint(ctx context.Context, form *ast.Form) (object.Value, error) {
	args, err := e.evalArgs(ctx, form.Args)
	if err != nil {
		return nil, err
	}
	if e.Out != nil {
		e.Out.Emit(args...)
	}
	return &object.Compound{Items: args}, nil
}

func (e *Evaluator) evalApplication(ctx context.Context, form *ast.Form) (object.Value, error) {
	headName := form.Head.String()

	fn, err := e.Eval(ctx, form.Head)
	if err != nil {
		return nil, err
	}
	if _, ok := fn.(object.Callable); !ok {
		return nil, &object.NotCallableError{Head: headName, Value: fn}
	}

	args, err := e.evalArgs(ctx, form.Args)
	if err != nil {
		return nil, err
	}
	return e.apply(ctx, headName, fn, args)
}

// evalArgs evaluates strictly left to right. Each argument is fully settled,
// including any pending result, before the next one starts.
func (e *Evaluator) evalArgs(ctx context.Context, nodes []ast.Node) ([]object.Value, error) {
	args := make([]object.Value, 0, len(nodes))
	for _, n := range nodes {
		val, err := e.Eval(ctx, n)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return args, nil
}

// apply invokes a callable and awaits its result if the callable suspended.
func (e *Evaluator) apply(ctx context.Context, name string, fn object.Value, args []object.Value) (object.Value, error) {
	var (
		result object.Value
		err    error
	)

	switch fn := fn.(type) {
	case *object.Builtin:
		if !fn.Arity.Accepts(len(args)) {
			return nil, &object.ArityError{Name: fn.Name, Got: len(args), Want: fn.Arity}
		}
		result, err = fn.Fn(&callContext{ctx: ctx, evaluator: e}, args...)

	case *object.Compound:
		if len(args) != 1 {
			return nil, &object.ArityError{Name: name, Got: len(args), Want: object.Exactly(1)}
		}
		return e.apply(ctx, nameOf(args[0]), args[0], fn.Items)

	default:
		return nil, &object.NotCallableError{Head: name, Value: fn}
	}

	if err != nil {
		return nil, err
	}
	return e.settle(ctx, name, result)
}

// settle is the single await point: a pending result suspends the current
// step until it resolves.
func (e *Evaluator) settle(ctx context.Context, name string, val object.Value) (object.Value, error) {
	for {
		pending, ok := val.(*object.Pending)
		if !ok {
			break
		}
		slog.Debug("awaiting pending result", slog.String("callee", name), slog.String("label", pending.Label))
		next, err := pending.Await(ctx)
		if err != nil {
			return nil, err
		}
		val = next
	}
	if val == nil {
		return object.UNDEFINED, nil
	}
	return val, nil
}

func nameOf(v object.Value) string {
	if b, ok := v.(*object.Builtin); ok {
		return b.Name
	}
	return v.Inspect()
}

type callContext struct {
	ctx       context.Context
	evaluator *Evaluator
}

func (c *callContext) Context() context.Context { return c.ctx }

func (c *callContext) Apply(fn object.Value, args ...object.Value) (object.Value, error) {
	return c.evaluator.apply(c.ctx, nameOf(fn), fn, args)
}
