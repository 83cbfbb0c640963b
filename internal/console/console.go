// Package console provides the line-oriented consoles the shell reads from.
package console

import (
	"errors"
	"io"
	"sync"

	"github.com/chzyer/readline"
)

var (
	// ErrSoftEOF means the user ended input for now (Ctrl-D); the console stays open.
	ErrSoftEOF = errors.New("soft end of input")
	// ErrClosed is returned by reads on a closed console.
	ErrClosed = errors.New("console closed")
)

// Console is a source of command lines plus the streams commands write to.
type Console interface {
	// ReadLine displays prompt and blocks until one line is available.
	ReadLine(prompt string) (string, error)
	// In returns the stream running commands read their input from.
	In() io.Reader
	Out() io.Writer
	Err() io.Writer
	// AddCloseListener registers fn to be called once, from whichever goroutine
	// closes the console.
	AddCloseListener(fn func())
	SetCompleter(c readline.AutoCompleter)
	ClearSoftEOF()
	Close() error
}

// closeNotifier implements the close listener bookkeeping shared by consoles.
type closeNotifier struct {
	mu        sync.Mutex
	listeners []func()
	closed    bool
}

func (n *closeNotifier) AddCloseListener(fn func()) {
	n.mu.Lock()
	if !n.closed {
		n.listeners = append(n.listeners, fn)
		n.mu.Unlock()
		return
	}
	n.mu.Unlock()
	fn()
}

// markClosed flips the closed flag and returns the listeners to notify, or nil if
// the console was already closed.
func (n *closeNotifier) markClosed() ([]func(), bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil, false
	}
	n.closed = true
	listeners := n.listeners
	n.listeners = nil
	return listeners, true
}

func (n *closeNotifier) isClosed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closed
}

func notify(listeners []func()) {
	for _, fn := range listeners {
		fn()
	}
}
