package alias

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"cmdshell/pkg/shelltypes"
)

// stdinWaitDelay bounds how long Wait keeps copying stdin after the program exits.
const stdinWaitDelay = 100 * time.Millisecond

// ExternalCommand runs a program found on $PATH.
type ExternalCommand struct {
	name string
	path string
}

// Name implements shelltypes.Command.
func (e *ExternalCommand) Name() string { return e.name }

// Description implements shelltypes.Command.
func (e *ExternalCommand) Description() string { return e.path }

// Path returns the resolved executable.
func (e *ExternalCommand) Path() string { return e.path }

// Execute runs the program in the shell's working directory and returns its exit
// status. A non-zero exit is not an error.
func (e *ExternalCommand) Execute(ctx context.Context, sh shelltypes.Shell, cl *shelltypes.CommandLine) (int, error) {
	cmd := exec.CommandContext(ctx, e.path, cl.Args...)
	cmd.Args = append([]string{e.name}, cl.Args...)
	cmd.Dir = sh.WorkingDir()
	cmd.Stdout = cl.Stdout
	cmd.Stderr = cl.Stderr
	cmd.WaitDelay = stdinWaitDelay

	if ii, ok := cl.Stdin.(shelltypes.InteractiveInput); ok && ii.Interactive() {
		cmd.Stdin = os.Stdin
	} else {
		cmd.Stdin = cl.Stdin
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		if errors.Is(err, exec.ErrWaitDelay) {
			return cmd.ProcessState.ExitCode(), nil
		}
		return -1, err
	}
	return 0, nil
}
