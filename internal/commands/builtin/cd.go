package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"cmdshell/internal/config"
	"cmdshell/pkg/shelltypes"
)

// CdCommand changes the shell's working directory.
type CdCommand struct{}

// Name returns the command name "cd" for registration and lookup.
func (c *CdCommand) Name() string {
	return "cd"
}

// Description returns a brief description of what the cd command does.
func (c *CdCommand) Description() string {
	return "Change the working directory"
}

// Usage returns the syntax for the cd command.
func (c *CdCommand) Usage() string {
	return "cd [dir]"
}

// Execute moves to dir, resolved against the current working directory, or to
// the home directory without arguments.
func (c *CdCommand) Execute(_ context.Context, sh shelltypes.Shell, cl *shelltypes.CommandLine) (int, error) {
	var dir string
	switch len(cl.Args) {
	case 0:
		dir = sh.Property(config.HomeKey)
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return 1, fmt.Errorf("cannot determine home directory: %w", err)
			}
			dir = home
		}
	case 1:
		dir = cl.Args[0]
	default:
		return usageError(c)
	}

	if !filepath.IsAbs(dir) {
		dir = filepath.Join(sh.WorkingDir(), dir)
	}
	if err := sh.SetWorkingDir(filepath.Clean(dir)); err != nil {
		return 1, err
	}
	return 0, nil
}

// PwdCommand prints the working directory.
type PwdCommand struct{}

// Name returns the command name "pwd" for registration and lookup.
func (c *PwdCommand) Name() string {
	return "pwd"
}

// Description returns a brief description of what the pwd command does.
func (c *PwdCommand) Description() string {
	return "Print the working directory"
}

// Execute writes the working directory.
func (c *PwdCommand) Execute(_ context.Context, sh shelltypes.Shell, cl *shelltypes.CommandLine) (int, error) {
	if _, err := fmt.Fprintln(cl.Stdout, sh.WorkingDir()); err != nil {
		return 1, err
	}
	return 0, nil
}
