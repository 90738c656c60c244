package object

import "strconv"

// Arity is the accepted argument count of a builtin. Max < 0 means variadic.
type Arity struct {
	Min int
	Max int
}

func Exactly(n int) Arity        { return Arity{Min: n, Max: n} }
func AtLeast(n int) Arity        { return Arity{Min: n, Max: -1} }
func Between(min, max int) Arity { return Arity{Min: min, Max: max} }

func (a Arity) Accepts(n int) bool {
	if n < a.Min {
		return false
	}
	return a.Max < 0 || n <= a.Max
}

func (a Arity) String() string {
	switch {
	case a.Max < 0:
		return strconv.Itoa(a.Min) + "+"
	case a.Min == a.Max:
		return strconv.Itoa(a.Min)
	default:
		return strconv.Itoa(a.Min) + ".." + strconv.Itoa(a.Max)
	}
}
