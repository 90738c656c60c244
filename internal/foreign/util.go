package foreign

import (
	"jasper/internal/object"
	"math"
)

func unpackNumber(name string, pos int, arg object.Value) (float64, error) {
	num, ok := arg.(*object.Number)
	if !ok {
		return 0, &object.TypeError{Name: name, Position: pos, Want: object.NUMBER_OBJ, Got: arg}
	}
	return num.Value, nil
}

func unpackString(name string, pos int, arg object.Value) (string, error) {
	str, ok := arg.(*object.String)
	if !ok {
		return "", &object.TypeError{Name: name, Position: pos, Want: object.STRING_OBJ, Got: arg}
	}
	return str.Value, nil
}

func unpackHandle(name string, pos int, arg object.Value) (int64, error) {
	f, err := unpackNumber(name, pos, arg)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, &object.TypeError{Name: name, Position: pos, Want: "HANDLE", Got: arg}
	}
	return int64(f), nil
}

func number(f float64) *object.Number {
	return &object.Number{Value: f}
}
