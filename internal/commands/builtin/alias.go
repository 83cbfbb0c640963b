package builtin

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"cmdshell/pkg/shelltypes"
)

// AliasCommand lists and defines command aliases.
type AliasCommand struct {
	aliases AliasTable
}

// Name returns the command name "alias" for registration and lookup.
func (c *AliasCommand) Name() string {
	return "alias"
}

// Description returns a brief description of what the alias command does.
func (c *AliasCommand) Description() string {
	return "List or define command aliases"
}

// Usage returns the syntax for the alias command.
func (c *AliasCommand) Usage() string {
	return "alias [name target | name=target]"
}

// Execute lists all aliases as name=target lines, or defines one.
func (c *AliasCommand) Execute(_ context.Context, _ shelltypes.Shell, cl *shelltypes.CommandLine) (int, error) {
	var name, target string
	switch len(cl.Args) {
	case 0:
		return c.list(cl)
	case 1:
		var ok bool
		name, target, ok = strings.Cut(cl.Args[0], "=")
		if !ok {
			return usageError(c)
		}
	case 2:
		name, target = cl.Args[0], cl.Args[1]
	default:
		return usageError(c)
	}

	if err := c.aliases.SetAlias(name, target); err != nil {
		return 1, err
	}
	return 0, nil
}

func (c *AliasCommand) list(cl *shelltypes.CommandLine) (int, error) {
	table := c.aliases.Aliases()
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := fmt.Fprintf(cl.Stdout, "%s=%s\n", name, table[name]); err != nil {
			return 1, err
		}
	}
	return 0, nil
}

// UnaliasCommand removes aliases.
type UnaliasCommand struct {
	aliases AliasTable
}

// Name returns the command name "unalias" for registration and lookup.
func (c *UnaliasCommand) Name() string {
	return "unalias"
}

// Description returns a brief description of what the unalias command does.
func (c *UnaliasCommand) Description() string {
	return "Remove command aliases"
}

// Usage returns the syntax for the unalias command.
func (c *UnaliasCommand) Usage() string {
	return "unalias name ..."
}

// Execute removes every named alias. Unknown names fail the command after the
// others were removed.
func (c *UnaliasCommand) Execute(_ context.Context, _ shelltypes.Shell, cl *shelltypes.CommandLine) (int, error) {
	if len(cl.Args) == 0 {
		return usageError(c)
	}

	var missing []string
	for _, name := range cl.Args {
		if !c.aliases.RemoveAlias(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return 1, fmt.Errorf("no such alias: %s", strings.Join(missing, ", "))
	}
	return 0, nil
}
