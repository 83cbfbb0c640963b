package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Registry keeps components by id and drives their lifecycle as a group.
type Registry struct {
	mu         sync.RWMutex
	components map[string]*Component
	order      []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		components: make(map[string]*Component),
	}
}

// Register adds c, returning an error if its id is already taken.
func (r *Registry) Register(c *Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.components[c.ID()]; exists {
		return fmt.Errorf("component %s already registered", c.ID())
	}
	r.components[c.ID()] = c
	r.order = append(r.order, c.ID())
	return nil
}

// Get retrieves a component by id.
func (r *Registry) Get(id string) (*Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.components[id]
	if !exists {
		return nil, fmt.Errorf("component %s not found", id)
	}
	return c, nil
}

// All returns the components in registration order.
func (r *Registry) All() []*Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Component, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.components[id])
	}
	return result
}

// ActivateAll activates every component in registration order and stops at the
// first failure.
func (r *Registry) ActivateAll(ctx context.Context) error {
	for _, c := range r.All() {
		if err := c.Activate(ctx); err != nil {
			return fmt.Errorf("failed to activate component %s: %w", c.ID(), err)
		}
	}
	return nil
}

// DeactivateAll deactivates every component in reverse registration order. All
// components are attempted; the failures are joined.
func (r *Registry) DeactivateAll(ctx context.Context) error {
	all := r.All()
	var errs []error
	for i := len(all) - 1; i >= 0; i-- {
		if err := all[i].Deactivate(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
