package shelltypes

import (
	"errors"
	"fmt"
)

// ErrNoCompletionInProgress is returned by Shell.List when it is called outside a
// completion call. It always indicates an interpreter bug.
var ErrNoCompletionInProgress = errors.New("list called when no completion is in progress")

// ParseError reports that a line could not be interpreted.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// CompletionError reports a failure while computing completions.
type CompletionError struct {
	Partial string
	Err     error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion of %q failed: %v", e.Partial, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// ExecutionError reports that an invoked command failed. Stack is set when the
// failure was a recovered panic.
type ExecutionError struct {
	Command string
	Err     error
	Stack   []byte
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
