// Package shelltypes defines the contracts shared by the cmdshell runtime and its
// extension points.
//
// The shell dispatches every input line through two strategies selected at runtime by
// name:
//
//   - Interpreter: turns a raw line into one or more CommandLine values and hands them
//     to the shell for invocation. It also produces a Completable for partial lines.
//   - Invoker: executes a CommandLine, either synchronously or as a Job that the
//     caller starts, waits on or cancels.
//
// Commands are resolved by name through a Resolver and executed with the Shell they
// were invoked from, so built-in commands can reach session state (history, exit,
// configuration) without global lookups.
package shelltypes

import (
	"context"
	"io"
)

// CommandLine is the executable model produced by an Interpreter.
type CommandLine struct {
	Name   string
	Args   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Interpreter turns raw input lines into invocations.
type Interpreter interface {
	// Interpret parses line and runs the resulting command(s) through sh.
	Interpret(ctx context.Context, sh Shell, line string) error
	// ParsePartial parses an incomplete line for completion. A nil Completable with
	// a nil error means there is nothing to complete.
	ParsePartial(sh Shell, partial string) (Completable, error)
}

// Invoker executes parsed command lines.
type Invoker interface {
	Invoke(ctx context.Context, cl *CommandLine) (int, error)
	// InvokeAsynchronous prepares cl for execution without starting it.
	InvokeAsynchronous(ctx context.Context, cl *CommandLine) (Job, error)
}

// Job is a unit of command execution that has been prepared but not necessarily
// started.
type Job interface {
	Start()
	// Wait blocks until the job finishes and returns its exit code.
	Wait() (int, error)
	Cancel()
	Done() <-chan struct{}
}

// Command is anything the shell can run by name.
type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, sh Shell, cl *CommandLine) (int, error)
}

// Resolver maps a command name to an executable Command.
type Resolver interface {
	Resolve(name string) (Command, error)
	// Names lists the names Resolve knows about without a filesystem search.
	Names() []string
}

// Completable is a partially parsed line able to fill in a CompletionInfo.
type Completable interface {
	Complete(info *CompletionInfo, sh Shell) error
}

// Shell is the execution context handed to interpreters, invokers and commands.
type Shell interface {
	Invoke(ctx context.Context, cl *CommandLine) (int, error)
	InvokeAsynchronous(ctx context.Context, cl *CommandLine) (Job, error)
	InvokeCommand(ctx context.Context, line string)
	Resolve(name string) (Command, error)
	CommandNames() []string

	// InputStream returns the stream a command launched under ctx should read.
	InputStream(ctx context.Context) io.Reader
	Out() io.Writer
	Err() io.Writer

	AddCommandToHistory(line string)
	CommandHistory() []string
	// List reports completion candidates; it is only valid during a completion call.
	List(items []string) error

	WorkingDir() string
	SetWorkingDir(dir string) error
	Property(key string) string
	SetProperty(key, value string)
	Properties() map[string]string

	Exit()
}

// InteractiveInput is implemented by input streams backed by a user's terminal.
// External programs read the process stdin directly instead of such a stream.
type InteractiveInput interface {
	Interactive() bool
}
