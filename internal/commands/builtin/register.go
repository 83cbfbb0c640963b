// Package builtin provides the commands every cmdshell session starts with.
package builtin

import (
	"errors"
	"fmt"

	"cmdshell/pkg/shelltypes"
)

// Registrar accepts commands. alias.Manager implements it.
type Registrar interface {
	Register(cmd shelltypes.Command) error
}

// AliasTable is the part of the resolver the alias commands edit.
type AliasTable interface {
	SetAlias(name, target string) error
	RemoveAlias(name string) bool
	Aliases() map[string]string
}

// Usager is implemented by commands that document their syntax for help.
type Usager interface {
	Usage() string
}

// Commands returns a fresh instance of every built-in command.
func Commands(aliases AliasTable) []shelltypes.Command {
	return []shelltypes.Command{
		&EchoCommand{},
		&ExitCommand{},
		&HistoryCommand{},
		&SetCommand{},
		&AliasCommand{aliases: aliases},
		&UnaliasCommand{aliases: aliases},
		&HelpCommand{},
		&CdCommand{},
		&PwdCommand{},
		&CatCommand{},
		&SleepCommand{},
		&TrueCommand{},
		&FalseCommand{},
		&VersionCommand{},
		&InterpreterCommand{},
		&InvokerCommand{},
	}
}

// Register adds every built-in command to reg.
func Register(reg Registrar, aliases AliasTable) error {
	var errs []error
	for _, cmd := range Commands(aliases) {
		if err := reg.Register(cmd); err != nil {
			errs = append(errs, fmt.Errorf("failed to register %s command: %w", cmd.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// usageError is returned by commands called with the wrong arguments.
func usageError(u Usager) (int, error) {
	return 2, fmt.Errorf("Usage: %s", u.Usage())
}
