package shell

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmdshell/internal/component"
)

func TestPlugin_Lifecycle(t *testing.T) {
	f := newFixture(t)
	plugin := NewPlugin(f.shell)
	comp := plugin.Component(component.WithAuthorizer(component.GrantAuthorizer{}))
	ctx := component.WithGrant(context.Background(), component.StartCapability, component.StopCapability)

	assert.Equal(t, "shell-"+f.shell.ID(), comp.ID())
	assert.Same(t, f.shell, plugin.Shell())

	require.NoError(t, comp.Activate(ctx))
	require.NoError(t, comp.Activate(ctx))
	assert.True(t, comp.IsActive())
	require.Eventually(t, comp.IsStartFinished, loopTimeout, 5*time.Millisecond)

	f.cons.Send("say running")
	require.Eventually(t, func() bool {
		return f.cons.OutBuf.Contains("running")
	}, loopTimeout, 5*time.Millisecond)

	require.NoError(t, comp.Deactivate(ctx))
	assert.False(t, comp.IsActive())
	assert.False(t, comp.IsStartFinished())
	assert.True(t, f.shell.Exited())
	assert.Equal(t, Exited, f.shell.State())
	assert.NoError(t, plugin.Err())
}

func TestPlugin_WaitReturnsWhenShellExits(t *testing.T) {
	f := newFixture(t)
	plugin := NewPlugin(f.shell)

	require.NoError(t, plugin.Start(context.Background()))
	f.cons.Send("exit")

	ctx, cancel := context.WithTimeout(context.Background(), loopTimeout)
	defer cancel()
	require.NoError(t, plugin.Wait(ctx))
	assert.True(t, f.shell.Exited())
}

func TestPlugin_OutlivesStartContext(t *testing.T) {
	f := newFixture(t)
	plugin := NewPlugin(f.shell)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, plugin.Start(ctx))
	cancel()

	f.cons.Send("say alive")
	require.Eventually(t, func() bool {
		return f.cons.OutBuf.Contains("alive")
	}, loopTimeout, 5*time.Millisecond)

	require.NoError(t, plugin.Stop(context.Background()))
}

func TestPlugin_WaitBeforeStart(t *testing.T) {
	plugin := NewPlugin(newFixture(t).shell)

	assert.EqualError(t, plugin.Wait(context.Background()), "shell plugin not started")
	assert.NoError(t, plugin.Stop(context.Background()))
}

func TestPlugin_CannotRestartExitedShell(t *testing.T) {
	f := newFixture(t)
	f.shell.Exit()
	comp := NewPlugin(f.shell).Component()

	err := comp.Activate(context.Background())

	var startErr *component.StartupError
	require.ErrorAs(t, err, &startErr)
	assert.ErrorIs(t, err, errExited)
	assert.False(t, comp.IsActive())
}

func TestPlugin_RequiresStartCapability(t *testing.T) {
	f := newFixture(t)
	comp := NewPlugin(f.shell).Component(component.WithAuthorizer(component.GrantAuthorizer{}))

	err := comp.Activate(context.Background())

	var authErr *component.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, component.StartCapability, authErr.Capability)
	assert.False(t, comp.IsActive())
	assert.Equal(t, Initializing, f.shell.State())
}
