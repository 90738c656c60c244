package evaluator

import (
	"errors"
	"fmt"
	"jasper/internal/object"
	"math"
)

var errEmptyCompound = errors.New("empty compound")

var builtins = map[string]*object.Builtin{
	// arithmetic
	"+": arithmetic("+", func(a, b float64) float64 { return a + b }),
	"-": arithmetic("-", func(a, b float64) float64 { return a - b }),
	"*": arithmetic("*", func(a, b float64) float64 { return a * b }),
	"/": arithmetic("/", func(a, b float64) float64 { return a / b }),

	// comparison
	"<":  comparison("<", func(a, b float64) bool { return a < b }),
	">":  comparison(">", func(a, b float64) bool { return a > b }),
	"<=": comparison("<=", func(a, b float64) bool { return a <= b }),
	">=": comparison(">=", func(a, b float64) bool { return a >= b }),
	"=":  funcEqual("=", true),
	"!=": funcEqual("!=", false),

	"not":   funcNot(),
	"begin": funcBegin(),

	// pairs and lists
	"cons":   funcCons(),
	"car":    funcProject("car", selectFirst),
	"cdr":    funcProject("cdr", selectSecond),
	"head":   funcProject("head", selectHead),
	"tail":   funcProject("tail", selectTail),
	"length": funcProject("length", selectLength),
	"list":   funcList("list"),
	"tuple":  funcList("tuple"),
	"array":  funcList("array"),
	"set":    funcSet(),
}

var constants = map[string]object.Value{
	"pi":    &object.Number{Value: math.Pi},
	"true":  object.TRUE,
	"false": object.FALSE,
}

// NewEnvironment returns a fresh global environment seeded with the builtins.
func NewEnvironment() *object.Environment {
	env := object.NewEnvironment()
	seed := make(map[string]object.Value, len(builtins)+len(constants))
	for name, fn := range builtins {
		seed[name] = fn
	}
	for name, val := range constants {
		seed[name] = val
	}
	env.Seed(seed)
	return env
}

func arithmetic(name string, op func(a, b float64) float64) *object.Builtin {
	return &object.Builtin{
		Name:  name,
		Arity: object.Exactly(2),
		Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
			a, b, err := numberOperands(name, args)
			if err != nil {
				return nil, err
			}
			return &object.Number{Value: op(a, b)}, nil
		},
	}
}

func comparison(name string, op func(a, b float64) bool) *object.Builtin {
	return &object.Builtin{
		Name:  name,
		Arity: object.Exactly(2),
		Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
			a, b, err := numberOperands(name, args)
			if err != nil {
				return nil, err
			}
			return object.NativeBool(op(a, b)), nil
		},
	}
}

// funcEqual compares values for equality; it never binds anything.
func funcEqual(name string, want bool) *object.Builtin {
	return &object.Builtin{
		Name:  name,
		Arity: object.Exactly(2),
		Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
			return object.NativeBool(object.Equal(args[0], args[1]) == want), nil
		},
	}
}

func funcNot() *object.Builtin {
	return &object.Builtin{
		Name:  "not",
		Arity: object.Exactly(1),
		Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
			return object.NativeBool(!object.Truthy(args[0])), nil
		},
	}
}

// funcBegin returns its last argument; the arguments were already evaluated in order.
func funcBegin() *object.Builtin {
	return &object.Builtin{
		Name:  "begin",
		Arity: object.AtLeast(0),
		Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
			if len(args) == 0 {
				return object.UNDEFINED, nil
			}
			return args[len(args)-1], nil
		},
	}
}

func funcCons() *object.Builtin {
	return &object.Builtin{
		Name:  "cons",
		Arity: object.Exactly(2),
		Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
			return &object.Compound{Items: []object.Value{args[0], args[1]}}, nil
		},
	}
}

func funcList(name string) *object.Builtin {
	return &object.Builtin{
		Name:  name,
		Arity: object.AtLeast(0),
		Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
			items := make([]object.Value, len(args))
			copy(items, args)
			return &object.Compound{Items: items}, nil
		},
	}
}

// funcSet keeps the first occurrence of each distinct value.
func funcSet() *object.Builtin {
	return &object.Builtin{
		Name:  "set",
		Arity: object.AtLeast(0),
		Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
			items := make([]object.Value, 0, len(args))
		next:
			for _, arg := range args {
				for _, seen := range items {
					if object.Equal(seen, arg) {
						continue next
					}
				}
				items = append(items, arg)
			}
			return &object.Compound{Items: items}, nil
		},
	}
}

// funcProject applies a selector to a compound, which hands the selector its items.
func funcProject(name string, selector *object.Builtin) *object.Builtin {
	return &object.Builtin{
		Name:  name,
		Arity: object.Exactly(1),
		Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
			if _, ok := args[0].(object.Callable); !ok {
				return nil, &object.TypeError{Name: name, Position: 1, Want: object.COMPOUND_OBJ, Got: args[0]}
			}
			val, err := ctx.Apply(args[0], selector)
			if errors.Is(err, errEmptyCompound) {
				return nil, fmt.Errorf("`%s` of an empty list", name)
			}
			var arityErr *object.ArityError
			if errors.As(err, &arityErr) && arityErr.Name == selector.Name {
				if arityErr.Got == 0 {
					return nil, fmt.Errorf("`%s` of an empty list", name)
				}
				return nil, fmt.Errorf("`%s` of a list with %d items, want %s", name, arityErr.Got, arityErr.Want)
			}
			return val, err
		},
	}
}

var selectFirst = &object.Builtin{
	Name:  "first",
	Arity: object.AtLeast(1),
	Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
		return args[0], nil
	},
}

var selectSecond = &object.Builtin{
	Name:  "second",
	Arity: object.AtLeast(2),
	Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
		return args[1], nil
	},
}

var selectHead = &object.Builtin{
	Name:  "split-head",
	Arity: object.AtLeast(0),
	Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
		if len(args) == 0 {
			return nil, errEmptyCompound
		}
		return args[0], nil
	},
}

var selectTail = &object.Builtin{
	Name:  "split-tail",
	Arity: object.AtLeast(0),
	Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
		if len(args) == 0 {
			return nil, errEmptyCompound
		}
		rest := make([]object.Value, len(args)-1)
		copy(rest, args[1:])
		return &object.Compound{Items: rest}, nil
	},
}

var selectLength = &object.Builtin{
	Name:  "count",
	Arity: object.AtLeast(0),
	Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
		return &object.Number{Value: float64(len(args))}, nil
	},
}

func numberOperands(name string, args []object.Value) (float64, float64, error) {
	a, ok := args[0].(*object.Number)
	if !ok {
		return 0, 0, &object.TypeError{Name: name, Position: 1, Want: object.NUMBER_OBJ, Got: args[0]}
	}
	b, ok := args[1].(*object.Number)
	if !ok {
		return 0, 0, &object.TypeError{Name: name, Position: 2, Want: object.NUMBER_OBJ, Got: args[1]}
	}
	return a.Value, b.Value, nil
}
