package shell

import (
	"io"

	"cmdshell/pkg/shelltypes"
)

// completionHost exposes the session to the completion engine.
type completionHost struct {
	s *Shell
}

func (h completionHost) ReadingCommand() bool {
	return h.s.readingCommand.Load()
}

func (h completionHost) ParsePartial(partial string) (shelltypes.Completable, error) {
	interp := h.s.currentInterpreter()
	if interp == nil {
		return nil, nil
	}
	return interp.ParsePartial(h.s, partial)
}

func (h completionHost) Shell() shelltypes.Shell { return h.s }
func (h completionHost) Out() io.Writer          { return h.s.Out() }
func (h completionHost) Err() io.Writer          { return h.s.Err() }

// Complete completes a partial command line with the current interpreter.
func (s *Shell) Complete(partial string) *shelltypes.CompletionInfo {
	return s.completion.Complete(partial)
}

// List reports candidates for the completion in progress.
func (s *Shell) List(items []string) error {
	return s.completion.List(items)
}
