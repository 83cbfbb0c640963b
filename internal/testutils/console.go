package testutils

import (
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"cmdshell/internal/console"
	"cmdshell/internal/output"
)

type consoleInput struct {
	line    string
	softEOF bool
}

// FakeConsole is a console.Console fed by the test. ReadLine blocks until a line
// is sent or the console is closed.
type FakeConsole struct {
	lines   chan consoleInput
	closeCh chan struct{}

	mu        sync.Mutex
	listeners []func()
	closed    bool
	closes    int
	prompts   []string
	completer readline.AutoCompleter

	// Input is returned by In.
	Input io.Reader

	OutBuf *output.CaptureBuffer
	ErrBuf *output.CaptureBuffer
}

var _ console.Console = (*FakeConsole)(nil)

// NewFakeConsole creates an open console with empty input.
func NewFakeConsole() *FakeConsole {
	return &FakeConsole{
		lines:   make(chan consoleInput, 64),
		closeCh: make(chan struct{}),
		Input:   strings.NewReader(""),
		OutBuf:  output.NewCaptureBuffer(),
		ErrBuf:  output.NewCaptureBuffer(),
	}
}

// Send queues a line for ReadLine.
func (c *FakeConsole) Send(lines ...string) {
	for _, line := range lines {
		c.lines <- consoleInput{line: line}
	}
}

// SendSoftEOF queues a soft end of input, as if the user pressed Ctrl-D.
func (c *FakeConsole) SendSoftEOF() {
	c.lines <- consoleInput{softEOF: true}
}

// ReadLine implements console.Console.
func (c *FakeConsole) ReadLine(prompt string) (string, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()

	select {
	case in := <-c.lines:
		if in.softEOF {
			return "", console.ErrSoftEOF
		}
		return in.line, nil
	case <-c.closeCh:
		return "", console.ErrClosed
	}
}

// Prompts returns every prompt passed to ReadLine.
func (c *FakeConsole) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

// In implements console.Console.
func (c *FakeConsole) In() io.Reader { return c.Input }

// Out implements console.Console.
func (c *FakeConsole) Out() io.Writer { return c.OutBuf }

// Err implements console.Console.
func (c *FakeConsole) Err() io.Writer { return c.ErrBuf }

// AddCloseListener implements console.Console.
func (c *FakeConsole) AddCloseListener(fn func()) {
	c.mu.Lock()
	if !c.closed {
		c.listeners = append(c.listeners, fn)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	fn()
}

// SetCompleter implements console.Console.
func (c *FakeConsole) SetCompleter(completer readline.AutoCompleter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completer = completer
}

// Completer returns the completer registered by the shell.
func (c *FakeConsole) Completer() readline.AutoCompleter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completer
}

// ClearSoftEOF implements console.Console.
func (c *FakeConsole) ClearSoftEOF() {}

// Close closes the console and notifies listeners on the calling goroutine.
func (c *FakeConsole) Close() error {
	c.mu.Lock()
	c.closes++
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.closeCh)
	listeners := c.listeners
	c.listeners = nil
	c.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return nil
}

// Closes returns how often Close was called.
func (c *FakeConsole) Closes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}
