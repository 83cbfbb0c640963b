package testutils

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cmdshell/pkg/shelltypes"
)

// FuncCommand is a Command backed by a function.
type FuncCommand struct {
	CommandName string
	Desc        string
	Fn          func(ctx context.Context, sh shelltypes.Shell, cl *shelltypes.CommandLine) (int, error)
}

// Name implements shelltypes.Command.
func (f *FuncCommand) Name() string { return f.CommandName }

// Description implements shelltypes.Command.
func (f *FuncCommand) Description() string { return f.Desc }

// Execute implements shelltypes.Command.
func (f *FuncCommand) Execute(ctx context.Context, sh shelltypes.Shell, cl *shelltypes.CommandLine) (int, error) {
	return f.Fn(ctx, sh, cl)
}

// EchoCommand writes its arguments joined by spaces.
func EchoCommand(name string) *FuncCommand {
	return &FuncCommand{
		CommandName: name,
		Desc:        "test echo",
		Fn: func(_ context.Context, _ shelltypes.Shell, cl *shelltypes.CommandLine) (int, error) {
			fmt.Fprintln(cl.Stdout, strings.Join(cl.Args, " "))
			return 0, nil
		},
	}
}

// UpperCommand copies stdin to stdout in upper case.
func UpperCommand(name string) *FuncCommand {
	return &FuncCommand{
		CommandName: name,
		Desc:        "test filter",
		Fn: func(_ context.Context, _ shelltypes.Shell, cl *shelltypes.CommandLine) (int, error) {
			data, err := io.ReadAll(cl.Stdin)
			if err != nil {
				return 1, err
			}
			_, err = io.WriteString(cl.Stdout, strings.ToUpper(string(data)))
			return 0, err
		},
	}
}

// ExitCodeCommand returns code with an optional error.
func ExitCodeCommand(name string, code int, err error) *FuncCommand {
	return &FuncCommand{
		CommandName: name,
		Desc:        "test exit code",
		Fn: func(context.Context, shelltypes.Shell, *shelltypes.CommandLine) (int, error) {
			return code, err
		},
	}
}
