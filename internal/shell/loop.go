package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/sourcegraph/conc/panics"

	"cmdshell/internal/console"
	"cmdshell/internal/interpreter"
	"cmdshell/internal/invoker"
	"cmdshell/pkg/shelltypes"
)

// State is the phase of a shell's life.
type State int32

// Shell states, in the order a session goes through them.
const (
	Initializing State = iota
	ExecutingBootCommands
	ExecutingStartupScript
	Interactive
	Exited
)

func (st State) String() string {
	switch st {
	case Initializing:
		return "initializing"
	case ExecutingBootCommands:
		return "executing boot commands"
	case ExecutingStartupScript:
		return "executing startup script"
	case Interactive:
		return "interactive"
	case Exited:
		return "exited"
	}
	return fmt.Sprintf("State(%d)", int32(st))
}

// bootCommandKey prefixes the shell.cmdline tokens that are run at startup.
const bootCommandKey = "cmd="

// errExited ends a read that was interrupted by Exit or a console close.
var errExited = errors.New("shell exited")

type readResult struct {
	line string
	err  error
}

// State returns the current phase.
func (s *Shell) State() State {
	return State(s.state.Load())
}

func (s *Shell) setState(st State) {
	s.state.Store(int32(st))
	s.logger.Debug("Shell state", "session", s.id, "state", st)
}

// Initialize registers the built-in strategies, installs the configured ones and
// loads the alias file. Run calls it; batch callers use it before ExecuteFile.
func (s *Shell) Initialize() error {
	s.setState(Initializing)
	invoker.Register(s.invokers)
	interpreter.Register(s.interpreters)

	snap := s.props.Snapshot()
	if err := s.setupFromProperties(snap); err != nil {
		return err
	}

	if snap.AliasFile != "" {
		if err := s.resolver.LoadFile(snap.AliasFile); err != nil {
			s.reportError("Error while loading aliases: ", err)
		}
	}
	return nil
}

// Run initializes the shell, runs the boot commands and the startup script, then
// reads and executes lines until the shell exits or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	if s.Exited() {
		return errExited
	}
	defer s.setState(Exited)

	if err := s.Initialize(); err != nil {
		s.markExited()
		return err
	}
	s.logger.Info("Starting shell", "session", s.id,
		"interpreter", s.InterpreterName(), "invoker", s.InvokerName())

	snap := s.props.Snapshot()
	s.setState(ExecutingBootCommands)
	s.runBootCommands(ctx, snap.Cmdline)

	s.setState(ExecutingStartupScript)
	s.runStartupScript(ctx, snap.StartupScript)

	s.setState(Interactive)
	for !s.Exited() {
		s.iterate(ctx)
		if ctx.Err() != nil {
			s.markExited()
		}
	}
	s.logger.Info("Shell exited", "session", s.id)
	return nil
}

// runBootCommands executes the cmd=<line> tokens of the boot command list, each
// echoed after the prompt.
func (s *Shell) runBootCommands(ctx context.Context, cmdline string) {
	tokens, err := shellquote.Split(cmdline)
	if err != nil {
		s.reportError("Error while processing bootarg commands: ", err)
		return
	}
	for _, token := range tokens {
		cmd, ok := strings.CutPrefix(token, bootCommandKey)
		if !ok {
			continue
		}
		fmt.Fprintln(s.Out(), s.Prompt()+cmd)
		s.Execute(ctx, cmd, false)
	}
}

func (s *Shell) runStartupScript(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := s.ExecuteFile(ctx, path); err != nil {
		s.reportError(fmt.Sprintf("Error while reading %s: ", path), err)
	}
}

// iterate runs one loop iteration. Nothing escapes it.
func (s *Shell) iterate(ctx context.Context) {
	var pc panics.Catcher
	pc.Try(func() {
		s.refreshFromProperties(s.props.Snapshot())
		s.console.ClearSoftEOF()
		s.readingCommand.Store(true)

		line, err := s.readLine(ctx, s.Prompt())
		switch {
		case err == nil:
		case errors.Is(err, console.ErrSoftEOF):
			fmt.Fprintln(s.Out())
			return
		case errors.Is(err, errExited), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return
		case errors.Is(err, console.ErrClosed):
			s.markExited()
			return
		default:
			s.reportError("Error reading command: ", err)
			s.markExited()
			return
		}

		if line = strings.TrimSpace(line); line != "" {
			s.Execute(ctx, line, true)
		}
	})

	if r := pc.Recovered(); r != nil {
		s.reportError("Uncaught exception while processing command(s): ", &shelltypes.ExecutionError{
			Command: "shell",
			Err:     fmt.Errorf("panic: %v", r.Value),
			Stack:   r.Stack,
		})
	}
}

// readLine waits for the next console line, the end of the session or ctx. A read
// interrupted by exit stays pending and is not restarted.
func (s *Shell) readLine(ctx context.Context, prompt string) (string, error) {
	if s.pending == nil {
		ch := make(chan readResult, 1)
		s.pending = ch
		go func() {
			line, err := s.console.ReadLine(prompt)
			ch <- readResult{line: line, err: err}
		}()
	}

	select {
	case r := <-s.pending:
		s.pending = nil
		return r.line, r.err
	case <-s.exitCh:
		return "", errExited
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
