package builtin

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"cmdshell/pkg/shelltypes"
)

// SetCommand reads and writes shell properties.
type SetCommand struct{}

// Name returns the command name "set" for registration and lookup.
func (c *SetCommand) Name() string {
	return "set"
}

// Description returns a brief description of what the set command does.
func (c *SetCommand) Description() string {
	return "Show or change shell properties"
}

// Usage returns the syntax for the set command.
func (c *SetCommand) Usage() string {
	return "set [key [value ...]] | set key=value"
}

// Execute dumps every property as YAML without arguments, prints one property
// given its key, and assigns the remaining words otherwise.
func (c *SetCommand) Execute(_ context.Context, sh shelltypes.Shell, cl *shelltypes.CommandLine) (int, error) {
	switch {
	case len(cl.Args) == 0:
		data, err := yaml.Marshal(sh.Properties())
		if err != nil {
			return 1, fmt.Errorf("failed to encode properties: %w", err)
		}
		if _, err := cl.Stdout.Write(data); err != nil {
			return 1, err
		}
		return 0, nil

	case len(cl.Args) == 1 && strings.Contains(cl.Args[0], "="):
		key, value, _ := strings.Cut(cl.Args[0], "=")
		if key == "" {
			return usageError(c)
		}
		sh.SetProperty(key, value)
		return 0, nil

	case len(cl.Args) == 1:
		value, ok := sh.Properties()[cl.Args[0]]
		if !ok {
			return 1, fmt.Errorf("property %s is not set", cl.Args[0])
		}
		if _, err := fmt.Fprintln(cl.Stdout, value); err != nil {
			return 1, err
		}
		return 0, nil
	}

	sh.SetProperty(cl.Args[0], strings.Join(cl.Args[1:], " "))
	return 0, nil
}
