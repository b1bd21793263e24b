package game

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a bare variant around base state. Loading goes through a
// factory and applies the stored state afterwards.
type Factory func(base Game, env Env) Variant

// Opener is implemented by variants that need setup when a table is first
// created, such as shuffling a fresh deck.
type Opener interface {
	Open()
}

// Registry maps table types to their factories.
type Registry struct {
	factories map[Type]Factory
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[Type]Factory),
	}
}

// Register adds a factory. A second registration for the same type replaces
// the first.
func (r *Registry) Register(t Type, f Factory) error {
	if f == nil {
		return fmt.Errorf("cannot register nil factory for %q", t)
	}
	if t == "" {
		return fmt.Errorf("game type cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[t] = f
	return nil
}

// New builds a variant of base.Type.
func (r *Registry) New(base Game, env Env) (Variant, error) {
	r.mu.RLock()
	f, ok := r.factories[base.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, base.Type)
	}
	return f(base, env), nil
}

// Open builds a variant for a brand new table.
func (r *Registry) Open(base Game, env Env) (Variant, error) {
	v, err := r.New(base, env)
	if err != nil {
		return nil, err
	}
	if o, ok := v.(Opener); ok {
		o.Open()
	}
	return v, nil
}

// Has reports whether t is registered.
func (r *Registry) Has(t Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[t]
	return ok
}

// Types returns the registered types in sorted order.
func (r *Registry) Types() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]Type, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
