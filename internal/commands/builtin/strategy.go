package builtin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cmdshell/internal/strategy"
	"cmdshell/pkg/shelltypes"
)

// Switcher is implemented by shells whose strategies can be changed by name.
type Switcher interface {
	InterpreterName() string
	SetInterpreter(name string) error
	InvokerName() string
	SetInvoker(name string) error
}

var errNoSwitcher = errors.New("this shell cannot switch strategies")

// InterpreterCommand shows or changes the current interpreter.
type InterpreterCommand struct{}

// Name returns the command name "interpreter" for registration and lookup.
func (c *InterpreterCommand) Name() string {
	return "interpreter"
}

// Description returns a brief description of what the interpreter command does.
func (c *InterpreterCommand) Description() string {
	return "Show or select the command line interpreter"
}

// Usage returns the syntax for the interpreter command.
func (c *InterpreterCommand) Usage() string {
	return "interpreter [name]"
}

// Execute lists the registered interpreters, marking the current one, or
// switches to name.
func (c *InterpreterCommand) Execute(_ context.Context, sh shelltypes.Shell, cl *shelltypes.CommandLine) (int, error) {
	sw, ok := sh.(Switcher)
	if !ok {
		return 1, errNoSwitcher
	}
	return switchStrategy(c, cl, strategy.Interpreters().Names(), sw.InterpreterName(), sw.SetInterpreter)
}

// InvokerCommand shows or changes the current invoker.
type InvokerCommand struct{}

// Name returns the command name "invoker" for registration and lookup.
func (c *InvokerCommand) Name() string {
	return "invoker"
}

// Description returns a brief description of what the invoker command does.
func (c *InvokerCommand) Description() string {
	return "Show or select the command invoker"
}

// Usage returns the syntax for the invoker command.
func (c *InvokerCommand) Usage() string {
	return "invoker [name]"
}

// Execute lists the registered invokers, marking the current one, or switches
// to name.
func (c *InvokerCommand) Execute(_ context.Context, sh shelltypes.Shell, cl *shelltypes.CommandLine) (int, error) {
	sw, ok := sh.(Switcher)
	if !ok {
		return 1, errNoSwitcher
	}
	return switchStrategy(c, cl, strategy.Invokers().Names(), sw.InvokerName(), sw.SetInvoker)
}

func switchStrategy(u Usager, cl *shelltypes.CommandLine, names []string, current string, set func(string) error) (int, error) {
	switch len(cl.Args) {
	case 0:
		var b strings.Builder
		for _, name := range names {
			marker := "  "
			if name == current {
				marker = "* "
			}
			b.WriteString(marker + name + "\n")
		}
		if _, err := fmt.Fprint(cl.Stdout, b.String()); err != nil {
			return 1, err
		}
		return 0, nil
	case 1:
		if err := set(cl.Args[0]); err != nil {
			return 1, err
		}
		return 0, nil
	}
	return usageError(u)
}
