package component

import (
	"context"
	"fmt"
	"sync"
)

// Capability names a permission a caller must hold to drive a lifecycle transition.
type Capability string

const (
	// StartCapability is required by Component.Activate.
	StartCapability Capability = "startComponent"
	// StopCapability is required by Component.Deactivate.
	StopCapability Capability = "stopComponent"
)

// Authorizer decides whether the caller behind ctx holds a capability.
type Authorizer interface {
	Authorize(ctx context.Context, capability Capability) error
}

// AuthorizationError is returned when a capability check fails.
type AuthorizationError struct {
	Component  string
	Capability Capability
}

func (e *AuthorizationError) Error() string {
	if e.Component == "" {
		return fmt.Sprintf("capability %q not granted", e.Capability)
	}
	return fmt.Sprintf("component %s: capability %q not granted", e.Component, e.Capability)
}

type grantKey struct{}

// WithGrant returns a context carrying the given capabilities in addition to any
// already granted by ctx.
func WithGrant(ctx context.Context, caps ...Capability) context.Context {
	granted := make(map[Capability]bool)
	if prev, ok := ctx.Value(grantKey{}).(map[Capability]bool); ok {
		for c := range prev {
			granted[c] = true
		}
	}
	for _, c := range caps {
		granted[c] = true
	}
	return context.WithValue(ctx, grantKey{}, granted)
}

// Granted reports whether ctx carries capability.
func Granted(ctx context.Context, capability Capability) bool {
	granted, ok := ctx.Value(grantKey{}).(map[Capability]bool)
	return ok && granted[capability]
}

// GrantAuthorizer accepts callers whose context was built with WithGrant.
type GrantAuthorizer struct{}

// Authorize implements Authorizer.
func (GrantAuthorizer) Authorize(ctx context.Context, capability Capability) error {
	if Granted(ctx, capability) {
		return nil
	}
	return &AuthorizationError{Capability: capability}
}

var (
	authorizerMu sync.RWMutex
	authorizer   Authorizer
)

// SetAuthorizer installs the process-wide authorizer. Passing nil removes it, after
// which every capability check is skipped.
func SetAuthorizer(a Authorizer) {
	authorizerMu.Lock()
	defer authorizerMu.Unlock()
	authorizer = a
}

// InstalledAuthorizer returns the process-wide authorizer or nil.
func InstalledAuthorizer() Authorizer {
	authorizerMu.RLock()
	defer authorizerMu.RUnlock()
	return authorizer
}
