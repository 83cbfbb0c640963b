package builtin

import (
	"context"

	"cmdshell/pkg/shelltypes"
)

// TrueCommand always succeeds.
type TrueCommand struct{}

// Name returns "true".
func (c *TrueCommand) Name() string { return "true" }

// Description returns a brief description of what the true command does.
func (c *TrueCommand) Description() string { return "Exit with status 0" }

// Execute returns 0.
func (c *TrueCommand) Execute(context.Context, shelltypes.Shell, *shelltypes.CommandLine) (int, error) {
	return 0, nil
}

// FalseCommand always fails without an error message.
type FalseCommand struct{}

// Name returns "false".
func (c *FalseCommand) Name() string { return "false" }

// Description returns a brief description of what the false command does.
func (c *FalseCommand) Description() string { return "Exit with status 1" }

// Execute returns 1.
func (c *FalseCommand) Execute(context.Context, shelltypes.Shell, *shelltypes.CommandLine) (int, error) {
	return 1, nil
}
