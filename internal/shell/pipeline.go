package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cmdshell/internal/history"
	"cmdshell/internal/invoker"
	"cmdshell/pkg/shelltypes"
)

// Execute runs line through the current interpreter. Errors and panics are
// reported on the error stream and never returned. An interactive line gets a
// fresh application input history for the duration of the command.
func (s *Shell) Execute(ctx context.Context, line string, interactive bool) {
	if strings.TrimSpace(line) == "" {
		return
	}

	s.console.ClearSoftEOF()
	if interactive {
		s.readingCommand.Store(false)
		h := history.New()
		s.setApplicationHistory(h)
		ctx = history.NewContext(ctx, h)
		defer s.setApplicationHistory(nil)
	}

	interp := s.currentInterpreter()
	if interp == nil {
		s.reportError("Shell exception: ", errors.New("no interpreter installed"))
		return
	}

	_, err := invoker.Guard(ctx, line, func(ctx context.Context) (int, error) {
		return 0, interp.Interpret(ctx, s, line)
	})
	if err != nil {
		s.logger.Debug("Command line failed", "line", line, "error", err)
		s.reportError("Shell exception: ", err)
	}
}

// InvokeCommand runs line non-interactively.
func (s *Shell) InvokeCommand(ctx context.Context, line string) {
	s.Execute(ctx, line, false)
}

// Invoke runs cl with the current invoker and returns its exit code. Errors are
// returned to the caller.
func (s *Shell) Invoke(ctx context.Context, cl *shelltypes.CommandLine) (int, error) {
	inv := s.currentInvoker()
	if inv == nil {
		return -1, errors.New("no invoker installed")
	}
	return inv.Invoke(ctx, cl)
}

// InvokeAsynchronous prepares cl with the current invoker. The caller starts the
// returned job.
func (s *Shell) InvokeAsynchronous(ctx context.Context, cl *shelltypes.CommandLine) (shelltypes.Job, error) {
	inv := s.currentInvoker()
	if inv == nil {
		return nil, errors.New("no invoker installed")
	}
	return inv.InvokeAsynchronous(ctx, cl)
}

// ExecuteFile runs every line of a script. Lines are trimmed; blank lines and
// lines starting with # are skipped. A failing line is reported and the next one
// runs. History recording is off while the script runs and restored afterwards.
// A relative path is resolved against the working directory.
func (s *Shell) ExecuteFile(ctx context.Context, path string) error {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.WorkingDir(), path)
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.errOut.Error("File does not exist: " + path)
		return nil
	}
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	previous := s.historyEnabled.Load()
	s.historyEnabled.Store(false)
	defer s.historyEnabled.Store(previous)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s.InvokeCommand(ctx, line)
	}
	return scanner.Err()
}

// reportError prints prefix and err on one line, followed by the error chain and
// any recovered stack when debugging.
func (s *Shell) reportError(prefix string, err error) {
	s.errOut.Error(prefix + err.Error())
	if !s.debug.Load() {
		return
	}

	for e := errors.Unwrap(err); e != nil; e = errors.Unwrap(e) {
		s.errOut.Trace(fmt.Sprintf("\tcaused by %T: %v", e, e))
	}
	var execErr *shelltypes.ExecutionError
	if errors.As(err, &execErr) && len(execErr.Stack) > 0 {
		s.errOut.Trace(strings.TrimRight(string(execErr.Stack), "\n"))
	}
}
