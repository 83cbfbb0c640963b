package shell

import (
	"context"
	"io"

	"cmdshell/internal/history"
)

// AddCommandToHistory records a command line unless history is off or line
// repeats the last recorded command.
func (s *Shell) AddCommandToHistory(line string) {
	if !s.historyEnabled.Load() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if line == s.lastCommandLine {
		return
	}
	s.commandHistory.Add(line)
	s.lastCommandLine = line
}

// addInputToHistory records a line a command read into the application history
// carried by ctx. Without one nothing is recorded.
func (s *Shell) addInputToHistory(ctx context.Context, line string) {
	if !s.historyEnabled.Load() {
		return
	}
	h := history.FromContext(ctx)
	if h == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if line == s.lastInputLine {
		return
	}
	h.Add(line)
	s.lastInputLine = line
}

// CommandHistory returns the recorded command lines, oldest first.
func (s *Shell) CommandHistory() []string {
	return s.commandHistory.Lines()
}

// InputHistory returns the history the console should offer: the command
// history while a command line is read, else the running command's input
// history, which may be nil.
func (s *Shell) InputHistory() *history.History {
	if s.readingCommand.Load() {
		return s.commandHistory
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appHistory
}

func (s *Shell) setApplicationHistory(h *history.History) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appHistory = h
}

// InputStream returns the console input. While history is on, every line read
// through it is added to the application history of ctx.
func (s *Shell) InputStream(ctx context.Context) io.Reader {
	in := s.console.In()
	if !s.historyEnabled.Load() {
		return in
	}
	return history.NewReader(in, func(line string) {
		s.addInputToHistory(ctx, line)
	})
}
