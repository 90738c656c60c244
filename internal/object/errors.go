package object

import "fmt"

// UnboundSymbolError is raised when a symbol has no binding and, if dotted,
// no host namespace resolves it.
type UnboundSymbolError struct {
	Name string
}

func (e *UnboundSymbolError) Error() string {
	return fmt.Sprintf("unbound symbol: %s", e.Name)
}

// NotCallableError is raised when a form's head does not evaluate to a callable.
type NotCallableError struct {
	Head  string
	Value Value
}

func (e *NotCallableError) Error() string {
	return fmt.Sprintf("not callable: %s evaluated to %s (%s)", e.Head, e.Value.Inspect(), e.Value.Type())
}

type ArityError struct {
	Name string
	Got  int
	Want Arity
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("wrong number of arguments to `%s`. got=%d, want=%s", e.Name, e.Got, e.Want)
}

// TypeError reports an operand of the wrong kind. Position is 1-based.
type TypeError struct {
	Name     string
	Position int
	Want     ValueType
	Got      Value
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("argument %d to `%s` must be %s, got %s", e.Position, e.Name, e.Want, e.Got.Type())
}

// HostError wraps a failure inside a host collaborator (network, database).
type HostError struct {
	Op  string
	Err error
}

func (e *HostError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *HostError) Unwrap() error { return e.Err }

// FormError reports a special form whose shape is wrong, e.g. (def 1 2).
type FormError struct {
	Form    string
	Message string
}

func (e *FormError) Error() string {
	return fmt.Sprintf("malformed %s: %s", e.Form, e.Message)
}
