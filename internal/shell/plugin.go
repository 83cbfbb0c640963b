package shell

import (
	"context"
	"errors"
	"sync"

	"cmdshell/internal/component"
)

// Plugin runs a Shell as a lifecycle component. Start spawns the loop; the
// component reports its start as finished once the loop is interactive.
type Plugin struct {
	shell *Shell

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

var (
	_ component.Hooks         = (*Plugin)(nil)
	_ component.StartFinisher = (*Plugin)(nil)
)

// NewPlugin wraps sh.
func NewPlugin(sh *Shell) *Plugin {
	return &Plugin{shell: sh}
}

// Component returns the lifecycle gate for the plugin, identified by the
// session id.
func (p *Plugin) Component(opts ...component.Option) *component.Component {
	return component.New("shell-"+p.shell.ID(), p, opts...)
}

// Shell returns the wrapped shell.
func (p *Plugin) Shell() *Shell {
	return p.shell
}

// Start launches the shell loop in its own goroutine. The loop outlives ctx; it
// ends with Stop, Exit or a console close.
func (p *Plugin) Start(ctx context.Context) error {
	if p.shell.Exited() {
		return errExited
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.err = nil
	p.mu.Unlock()

	go func() {
		defer close(done)
		err := p.shell.Run(runCtx)

		p.mu.Lock()
		p.err = err
		p.mu.Unlock()
	}()
	return nil
}

// StartFinished reports whether the loop reached the interactive state.
func (p *Plugin) StartFinished() bool {
	return p.shell.State() == Interactive
}

// Stop exits the shell and waits for the loop until ctx is done.
func (p *Plugin) Stop(ctx context.Context) error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()
	if done == nil {
		return nil
	}

	p.shell.Exit()
	cancel()

	select {
	case <-done:
		return p.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until the loop started by Start returns, then returns its error.
func (p *Plugin) Wait(ctx context.Context) error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return errors.New("shell plugin not started")
	}

	select {
	case <-done:
		return p.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the error the loop ended with.
func (p *Plugin) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
