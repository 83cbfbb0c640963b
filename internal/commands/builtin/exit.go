package builtin

import (
	"context"

	"cmdshell/pkg/shelltypes"
)

// ExitCommand ends the session.
type ExitCommand struct{}

// Name returns the command name "exit" for registration and lookup.
func (c *ExitCommand) Name() string {
	return "exit"
}

// Description returns a brief description of what the exit command does.
func (c *ExitCommand) Description() string {
	return "Exit the shell"
}

// Usage returns the syntax for the exit command.
func (c *ExitCommand) Usage() string {
	return "exit"
}

// Execute asks the shell to exit. The loop stops before reading the next line.
func (c *ExitCommand) Execute(_ context.Context, sh shelltypes.Shell, cl *shelltypes.CommandLine) (int, error) {
	if len(cl.Args) > 0 {
		return usageError(c)
	}
	sh.Exit()
	return 0, nil
}
