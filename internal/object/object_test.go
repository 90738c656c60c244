package object

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestTruthy(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected bool
	}{
		{"true", TRUE, true},
		{"false", FALSE, false},
		{"zero", &Number{Value: 0}, false},
		{"nan", &Number{Value: math.NaN()}, false},
		{"nonzero", &Number{Value: -1.5}, true},
		{"empty string", &String{Value: ""}, false},
		{"string", &String{Value: "x"}, true},
		{"undefined", UNDEFINED, false},
		{"empty compound", &Compound{}, true},
		{"builtin", &Builtin{Name: "f"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truthy(tt.value); got != tt.expected {
				t.Errorf("Truthy(%s) = %t, want %t", tt.value.Inspect(), got, tt.expected)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	fn := &Builtin{Name: "f"}
	tests := []struct {
		name     string
		a, b     Value
		expected bool
	}{
		{"same number", &Number{Value: 10}, &Number{Value: 10}, true},
		{"different number", &Number{Value: 10}, &Number{Value: 11}, false},
		{"number vs string", &Number{Value: 1}, &String{Value: "1"}, false},
		{"same string", &String{Value: "a"}, &String{Value: "a"}, true},
		{"booleans", TRUE, &Boolean{Value: true}, true},
		{"undefined", UNDEFINED, &Undefined{}, true},
		{"compound", &Compound{Items: []Value{&Number{Value: 1}, &String{Value: "b"}}},
			&Compound{Items: []Value{&Number{Value: 1}, &String{Value: "b"}}}, true},
		{"compound length", &Compound{Items: []Value{&Number{Value: 1}}}, &Compound{}, false},
		{"builtin identity", fn, fn, true},
		{"distinct builtins", fn, &Builtin{Name: "f"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.expected {
				t.Errorf("Equal(%s, %s) = %t, want %t", tt.a.Inspect(), tt.b.Inspect(), got, tt.expected)
			}
		})
	}
}

func TestInspect(t *testing.T) {
	tests := []struct {
		value    Value
		expected string
	}{
		{&Number{Value: 3}, "3"},
		{&Number{Value: 0.5}, "0.5"},
		{&String{Value: "hi"}, "hi"},
		{FALSE, "false"},
		{UNDEFINED, "undefined"},
		{&Compound{Items: []Value{&Number{Value: 1}, &Compound{Items: []Value{&Number{Value: 2}}}}}, "(1 (2))"},
		{&Builtin{Name: "car"}, "<builtin car>"},
	}
	for _, tt := range tests {
		if got := tt.value.Inspect(); got != tt.expected {
			t.Errorf("Inspect() = %q, want %q", got, tt.expected)
		}
	}
}

func TestArity(t *testing.T) {
	if !Exactly(2).Accepts(2) || Exactly(2).Accepts(3) {
		t.Errorf("Exactly(2) accepts wrong counts")
	}
	if !AtLeast(0).Accepts(0) || !AtLeast(1).Accepts(10) || AtLeast(1).Accepts(0) {
		t.Errorf("AtLeast accepts wrong counts")
	}
	if !Between(2, 3).Accepts(3) || Between(2, 3).Accepts(1) {
		t.Errorf("Between accepts wrong counts")
	}
	if s := AtLeast(1).String(); s != "1+" {
		t.Errorf("AtLeast(1).String() = %q", s)
	}
}

func TestEnvironment(t *testing.T) {
	env := NewEnvironment()
	if _, ok := env.Get("r"); ok {
		t.Fatalf("fresh environment has a binding for r")
	}
	if _, ok := env.Get("r"); ok {
		t.Fatalf("lookup created a binding")
	}

	env.Define("r", &Number{Value: 10})
	env.Define("a", TRUE)
	v, ok := env.Get("r")
	if !ok || !Equal(v, &Number{Value: 10}) {
		t.Fatalf("r wrong. got=%v", v)
	}

	env.Define("r", &Number{Value: 11})
	v, _ = env.Get("r")
	if v.(*Number).Value != 11 {
		t.Errorf("redefinition not applied. got=%s", v.Inspect())
	}

	names := env.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "r" {
		t.Errorf("names wrong. got=%v", names)
	}
}

func TestPendingAwait(t *testing.T) {
	p := NewPending("ok", func() (Value, error) { return &Number{Value: 7}, nil })
	v, err := p.Await(context.Background())
	if err != nil || !Equal(v, &Number{Value: 7}) {
		t.Fatalf("await wrong. got=%v, err=%v", v, err)
	}

	p = NewPending("nil", func() (Value, error) { return nil, nil })
	v, err = p.Await(context.Background())
	if err != nil || v != UNDEFINED {
		t.Fatalf("nil result should become undefined. got=%v", v)
	}

	boom := errors.New("boom")
	p = NewPending("err", func() (Value, error) { return nil, boom })
	if _, err := p.Await(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got=%v", err)
	}

	block := make(chan struct{})
	defer close(block)
	p = NewPending("stuck", func() (Value, error) { <-block; return nil, nil })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Await(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got=%v", err)
	}
}
