package foreign

import (
	"jasper/internal/object"
	"math"
	"math/rand"
)

func mathNamespace() map[string]object.Value {
	return map[string]object.Value{
		"PI":     number(math.Pi),
		"E":      number(math.E),
		"sqrt":   unaryMath("Math.sqrt", math.Sqrt),
		"abs":    unaryMath("Math.abs", math.Abs),
		"floor":  unaryMath("Math.floor", math.Floor),
		"ceil":   unaryMath("Math.ceil", math.Ceil),
		"pow":    binaryMath("Math.pow", math.Pow),
		"min":    binaryMath("Math.min", math.Min),
		"max":    binaryMath("Math.max", math.Max),
		"random": fnMathRandom(),
	}
}

func unaryMath(name string, fn func(float64) float64) *object.Builtin {
	return &object.Builtin{
		Name:  name,
		Arity: object.Exactly(1),
		Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
			x, err := unpackNumber(name, 1, args[0])
			if err != nil {
				return nil, err
			}
			return number(fn(x)), nil
		},
	}
}

func binaryMath(name string, fn func(float64, float64) float64) *object.Builtin {
	return &object.Builtin{
		Name:  name,
		Arity: object.Exactly(2),
		Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
			x, err := unpackNumber(name, 1, args[0])
			if err != nil {
				return nil, err
			}
			y, err := unpackNumber(name, 2, args[1])
			if err != nil {
				return nil, err
			}
			return number(fn(x, y)), nil
		},
	}
}

// fnMathRandom returns a float in [0, 1).
func fnMathRandom() *object.Builtin {
	return &object.Builtin{
		Name:  "Math.random",
		Arity: object.Exactly(0),
		Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
			return number(rand.Float64()), nil
		},
	}
}
