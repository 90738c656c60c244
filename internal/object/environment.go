package object

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
)

var nextID atomic.Uint64

// Environment is the single flat namespace of an interpreter session. There
// are no nested frames: every def writes here, every lookup reads here.
type Environment struct {
	ID       uint64
	Bindings map[string]Value

	mu sync.RWMutex
}

func nextEnvID() uint64 {
	return nextID.Add(1)
}

func NewEnvironment() *Environment {
	return &Environment{
		ID:       nextEnvID(),
		Bindings: make(map[string]Value),
	}
}

// Get never creates a binding.
func (e *Environment) Get(name string) (Value, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	val, ok := e.Bindings[name]
	return val, ok
}

// Define creates or overwrites a binding and returns the bound value.
func (e *Environment) Define(name string, val Value) Value {
	e.mu.Lock()
	_, existed := e.Bindings[name]
	e.Bindings[name] = val
	e.mu.Unlock()

	slog.Debug("define",
		slog.Uint64("env", e.ID),
		slog.String("name", name),
		slog.Bool("overwrite", existed),
	)
	return val
}

// Names returns the bound names in sorted order.
func (e *Environment) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.Bindings))
	for name := range e.Bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Seed installs start-up bindings without logging each one.
func (e *Environment) Seed(bindings map[string]Value) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for name, val := range bindings {
		e.Bindings[name] = val
	}
}
