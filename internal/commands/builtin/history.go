package builtin

import (
	"context"
	"fmt"
	"strconv"

	"cmdshell/pkg/shelltypes"
)

// HistoryCommand lists the session's command history.
type HistoryCommand struct{}

// Name returns the command name "history" for registration and lookup.
func (c *HistoryCommand) Name() string {
	return "history"
}

// Description returns a brief description of what the history command does.
func (c *HistoryCommand) Description() string {
	return "List previously entered command lines"
}

// Usage returns the syntax for the history command.
func (c *HistoryCommand) Usage() string {
	return "history [count]"
}

// Execute prints the history numbered from 1, or only its last count entries.
func (c *HistoryCommand) Execute(_ context.Context, sh shelltypes.Shell, cl *shelltypes.CommandLine) (int, error) {
	lines := sh.CommandHistory()
	start := 0

	switch len(cl.Args) {
	case 0:
	case 1:
		n, err := strconv.Atoi(cl.Args[0])
		if err != nil || n < 0 {
			return usageError(c)
		}
		if n < len(lines) {
			start = len(lines) - n
		}
	default:
		return usageError(c)
	}

	for i := start; i < len(lines); i++ {
		if _, err := fmt.Fprintf(cl.Stdout, "%5d  %s\n", i+1, lines[i]); err != nil {
			return 1, err
		}
	}
	return 0, nil
}
