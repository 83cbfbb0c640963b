// Package interpreter provides the built-in command line interpreters.
//
// The default interpreter splits a line into words with shell quoting rules and
// runs one command. The redirecting interpreter parses POSIX shell syntax and adds
// pipelines, redirections and the && and || operators.
package interpreter

import (
	"cmdshell/internal/strategy"
	"cmdshell/pkg/shelltypes"
)

// Interpreter names.
const (
	DefaultName     = "default"
	RedirectingName = "redirecting"
)

// Register adds the built-in interpreters to reg.
func Register(reg *strategy.Registry[shelltypes.Interpreter]) {
	reg.Register(DefaultName, func(shelltypes.Shell) (shelltypes.Interpreter, error) {
		return NewDefault(), nil
	})
	reg.Register(RedirectingName, func(shelltypes.Shell) (shelltypes.Interpreter, error) {
		return NewRedirecting(), nil
	})
}
