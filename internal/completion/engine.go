// Package completion turns partial command lines into completions.
package completion

import (
	"fmt"
	"io"
	"sync"

	"cmdshell/pkg/shelltypes"
)

// Host is the part of a session the engine needs.
type Host interface {
	// ReadingCommand reports whether the console is reading a top-level command
	// line rather than input for a running program.
	ReadingCommand() bool
	// ParsePartial asks the current interpreter for a partial parse.
	ParsePartial(partial string) (shelltypes.Completable, error)
	Shell() shelltypes.Shell
	Out() io.Writer
	Err() io.Writer
}

// Engine computes completions against a Host. The in-flight record is guarded by
// the locker passed to New, which is normally the session mutex. Complete calls
// are serialised so that List always reaches the record of the running call.
type Engine struct {
	host    Host
	mu      sync.Locker
	current *shelltypes.CompletionInfo

	// calls is held for a whole Complete call; List only takes mu.
	calls sync.Mutex
}

// New creates an engine.
func New(host Host, mu sync.Locker) *Engine {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &Engine{host: host, mu: mu}
}

// Complete completes partial. The result is never nil; on any failure it holds the
// unchanged text and asks for a repaint.
func (e *Engine) Complete(partial string) *shelltypes.CompletionInfo {
	info := shelltypes.NewCompletionInfo()
	info.SetCompleted(partial)

	if !e.host.ReadingCommand() {
		return info
	}

	e.calls.Lock()
	defer e.calls.Unlock()

	e.mu.Lock()
	e.current = info
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.current = nil
		e.mu.Unlock()
	}()

	if !e.complete(partial, info) {
		info.SetCompleted(partial)
		info.SetItems(nil)
		info.SetNewPrompt(true)
		return info
	}

	if info.Completed() != partial && !info.HasItems() {
		info.SetNewPrompt(false)
	} else {
		info.SetNewPrompt(true)
	}
	return info
}

func (e *Engine) complete(partial string, info *shelltypes.CompletionInfo) bool {
	completable, err := e.host.ParsePartial(partial)
	if err != nil {
		e.report("Cannot parse: ", err)
		return false
	}
	if completable == nil {
		return false
	}

	if err := completable.Complete(info, e.host.Shell()); err != nil {
		e.report("Problem in completer: ", err)
		return false
	}
	return true
}

func (e *Engine) report(prefix string, err error) {
	fmt.Fprintln(e.host.Out())
	fmt.Fprintf(e.host.Err(), "%s%v\n", prefix, err)
}

// List records candidates on the completion in progress.
func (e *Engine) List(items []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return shelltypes.ErrNoCompletionInProgress
	}
	e.current.SetItems(items)
	return nil
}

// InProgress reports whether a completion call is running.
func (e *Engine) InProgress() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != nil
}
