package builtin

import (
	"context"
	"fmt"
	"strings"

	"cmdshell/internal/output"
	"cmdshell/pkg/shelltypes"
)

// HelpCommand documents the commands the shell knows by name.
type HelpCommand struct{}

// Name returns the command name "help" for registration and lookup.
func (c *HelpCommand) Name() string {
	return "help"
}

// Description returns a brief description of what the help command does.
func (c *HelpCommand) Description() string {
	return "Show available commands or help for one command"
}

// Usage returns the syntax for the help command.
func (c *HelpCommand) Usage() string {
	return "help [command]"
}

// Execute renders a markdown command table, or the details of one command.
func (c *HelpCommand) Execute(_ context.Context, sh shelltypes.Shell, cl *shelltypes.CommandLine) (int, error) {
	printer := output.ForWriter(cl.Stdout)

	switch len(cl.Args) {
	case 0:
		printer.Markdown(c.commandTable(sh))
		return 0, nil
	case 1:
		cmd, err := sh.Resolve(cl.Args[0])
		if err != nil {
			return 1, fmt.Errorf("command '%s' not found. Use help to see all available commands", cl.Args[0])
		}
		printer.Markdown(commandHelp(cl.Args[0], cmd))
		return 0, nil
	}
	return usageError(c)
}

func (c *HelpCommand) commandTable(sh shelltypes.Shell) string {
	var b strings.Builder
	b.WriteString("# Commands\n\n| Command | Description |\n|---|---|\n")
	for _, name := range sh.CommandNames() {
		cmd, err := sh.Resolve(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "| `%s` | %s |\n", name, cmd.Description())
	}
	b.WriteString("\nUse `help <command>` for details. Other names are looked up on `$PATH`.\n")
	return b.String()
}

func commandHelp(name string, cmd shelltypes.Command) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n", name, cmd.Description())
	if u, ok := cmd.(Usager); ok {
		fmt.Fprintf(&b, "\n**Usage:** `%s`\n", u.Usage())
	}
	if cmd.Name() != name {
		fmt.Fprintf(&b, "\nAlias for `%s`.\n", cmd.Name())
	}
	return b.String()
}
