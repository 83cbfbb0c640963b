// Package strategy keeps the name-keyed factories from which the shell builds its
// interpreters and invokers.
package strategy

import (
	"fmt"
	"sort"
	"sync"

	"cmdshell/pkg/shelltypes"
)

// Factory builds a strategy bound to sh.
type Factory[T any] func(sh shelltypes.Shell) (T, error)

// UnknownStrategyError is returned when no factory is registered under Name.
type UnknownStrategyError struct {
	Kind string
	Name string
}

func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("no such %s: %q", e.Kind, e.Name)
}

// ConstructionError is returned when a registered factory fails.
type ConstructionError struct {
	Kind string
	Name string
	Err  error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("cannot create %s %q: %v", e.Kind, e.Name, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// Registry maps names to factories for one kind of strategy.
type Registry[T any] struct {
	kind      string
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

// NewRegistry creates an empty registry. kind names the strategy in errors.
func NewRegistry[T any](kind string) *Registry[T] {
	return &Registry[T]{
		kind:      kind,
		factories: make(map[string]Factory[T]),
	}
}

// Kind returns the strategy kind, e.g. "interpreter".
func (r *Registry[T]) Kind() string {
	return r.kind
}

// Register stores factory under name. A later registration under the same name
// replaces the earlier one.
func (r *Registry[T]) Register(name string, factory Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Has reports whether name is registered.
func (r *Registry[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create builds a new instance of the strategy registered under name.
func (r *Registry[T]) Create(name string, sh shelltypes.Shell) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	var zero T
	if !ok {
		return zero, &UnknownStrategyError{Kind: r.kind, Name: name}
	}
	instance, err := factory(sh)
	if err != nil {
		return zero, &ConstructionError{Kind: r.kind, Name: name, Err: err}
	}
	return instance, nil
}

var (
	interpreters = NewRegistry[shelltypes.Interpreter]("interpreter")
	invokers     = NewRegistry[shelltypes.Invoker]("invoker")
)

// Interpreters returns the process-wide interpreter registry.
func Interpreters() *Registry[shelltypes.Interpreter] {
	return interpreters
}

// Invokers returns the process-wide invoker registry.
func Invokers() *Registry[shelltypes.Invoker] {
	return invokers
}
