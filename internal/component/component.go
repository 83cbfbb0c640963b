// Package component provides the guarded activate/deactivate lifecycle shared by
// every pluggable unit of cmdshell.
//
// A Component owns a single activation flag. The actual work is supplied by a Hooks
// implementation; the gate makes the transitions idempotent, runs each hook at most
// once per transition and checks the caller's capability before anything else.
package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"cmdshell/internal/logger"
)

// Hooks supplies the startup and shutdown work of a component.
type Hooks interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// StartFinisher is implemented by hooks whose startup continues in the background
// after Start returns.
type StartFinisher interface {
	StartFinished() bool
}

// StartupError wraps a failing Start hook.
type StartupError struct {
	Component string
	Err       error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("component %s failed to start: %v", e.Component, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// ShutdownError wraps a failing Stop hook.
type ShutdownError struct {
	Component string
	Err       error
}

func (e *ShutdownError) Error() string {
	return fmt.Sprintf("component %s failed to stop: %v", e.Component, e.Err)
}

func (e *ShutdownError) Unwrap() error { return e.Err }

// Component is a unit of functionality behind the lifecycle gate.
type Component struct {
	id         string
	hooks      Hooks
	authorizer Authorizer

	// mu serialises transitions; active is readable without it.
	mu     sync.Mutex
	active atomic.Bool

	logger *log.Logger
}

// Option configures a Component.
type Option func(*Component)

// WithAuthorizer makes the component check capabilities with a rather than the
// process-wide authorizer.
func WithAuthorizer(a Authorizer) Option {
	return func(c *Component) {
		c.authorizer = a
	}
}

// New wraps hooks in an inactive component. An empty id is replaced by a random one.
func New(id string, hooks Hooks, opts ...Option) *Component {
	if hooks == nil {
		panic("component: hooks cannot be nil")
	}
	if id == "" {
		id = uuid.NewString()
	}
	c := &Component{
		id:     id,
		hooks:  hooks,
		logger: logger.NewStyledLogger("Component"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the component identity.
func (c *Component) ID() string {
	return c.id
}

// Activate runs the start hook unless the component is already active.
func (c *Component) Activate(ctx context.Context) error {
	if err := c.authorize(ctx, StartCapability); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active.Load() {
		return nil
	}
	c.logger.Debug("Starting", "component", c.id)
	if err := c.hooks.Start(ctx); err != nil {
		return &StartupError{Component: c.id, Err: err}
	}
	c.active.Store(true)
	return nil
}

// Deactivate runs the stop hook if the component is active.
func (c *Component) Deactivate(ctx context.Context) error {
	if err := c.authorize(ctx, StopCapability); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active.Load() {
		return nil
	}
	c.logger.Debug("Stopping", "component", c.id)
	if err := c.hooks.Stop(ctx); err != nil {
		return &ShutdownError{Component: c.id, Err: err}
	}
	c.active.Store(false)
	return nil
}

// IsActive reports whether the component is between a successful Activate and
// Deactivate.
func (c *Component) IsActive() bool {
	return c.active.Load()
}

// IsStartFinished reports whether startup work is complete. It equals IsActive
// unless the hooks implement StartFinisher.
func (c *Component) IsStartFinished() bool {
	if f, ok := c.hooks.(StartFinisher); ok {
		return c.IsActive() && f.StartFinished()
	}
	return c.IsActive()
}

func (c *Component) authorize(ctx context.Context, capability Capability) error {
	a := c.authorizer
	if a == nil {
		a = InstalledAuthorizer()
	}
	if a == nil {
		return nil
	}
	if err := a.Authorize(ctx, capability); err != nil {
		var authErr *AuthorizationError
		if errors.As(err, &authErr) {
			return &AuthorizationError{Component: c.id, Capability: authErr.Capability}
		}
		return &AuthorizationError{Component: c.id, Capability: capability}
	}
	return nil
}
