package console

import (
	"errors"
	"io"
	"strings"
	"sync/atomic"

	"github.com/abiosoft/ishell/v2"
	abreadline "github.com/abiosoft/readline"
	"github.com/chzyer/readline"
)

// TerminalConfig configures a Terminal.
type TerminalConfig struct {
	// HistoryFile persists line-editing history across sessions when set.
	HistoryFile  string
	HistoryLimit int
}

// Terminal is an interactive console: ishell reads lines over a readline instance
// providing editing, TAB completion and history navigation. ishell is built on the
// abiosoft fork of readline; completers written against chzyer's AutoCompleter
// satisfy the fork's interface unchanged.
type Terminal struct {
	closeNotifier

	rl      *abreadline.Instance
	sh      *ishell.Shell
	softEOF atomic.Bool
	in      *lineReader
}

var _ Console = (*Terminal)(nil)

// NewTerminal opens the process terminal.
func NewTerminal(cfg TerminalConfig) (*Terminal, error) {
	limit := cfg.HistoryLimit
	if limit == 0 {
		limit = 500
	}

	rl, err := abreadline.NewEx(&abreadline.Config{
		HistoryFile:            cfg.HistoryFile,
		HistoryLimit:           limit,
		DisableAutoSaveHistory: true,
		InterruptPrompt:        "^C",
		EOFPrompt:              "",
	})
	if err != nil {
		return nil, err
	}

	t := &Terminal{
		rl: rl,
		sh: ishell.NewWithReadline(rl),
	}
	t.in = &lineReader{read: t.readInput}
	return t, nil
}

// ReadLine reads one command line. Ctrl-C yields an empty line and Ctrl-D yields
// ErrSoftEOF.
func (t *Terminal) ReadLine(prompt string) (string, error) {
	if t.isClosed() {
		return "", ErrClosed
	}
	t.sh.SetPrompt(prompt)
	line, err := t.sh.ReadLineErr()
	switch {
	case err == nil:
		if strings.TrimSpace(line) != "" {
			_ = t.rl.SaveHistory(line)
		}
		return line, nil
	case errors.Is(err, abreadline.ErrInterrupt):
		return "", nil
	case errors.Is(err, io.EOF):
		if t.isClosed() {
			return "", ErrClosed
		}
		t.softEOF.Store(true)
		return "", ErrSoftEOF
	default:
		return "", err
	}
}

// readInput reads a line for a running command, without a prompt.
func (t *Terminal) readInput() (string, error) {
	if t.softEOF.Load() || t.isClosed() {
		return "", io.EOF
	}
	t.rl.SetPrompt("")
	line, err := t.rl.Readline()
	if err != nil {
		if errors.Is(err, abreadline.ErrInterrupt) || errors.Is(err, io.EOF) {
			t.softEOF.Store(true)
			return "", io.EOF
		}
		return "", err
	}
	return line + "\n", nil
}

// In returns the line-buffered input for running commands. It reports io.EOF
// after Ctrl-D until ClearSoftEOF.
func (t *Terminal) In() io.Reader { return t.in }

// Out writes above the prompt line.
func (t *Terminal) Out() io.Writer { return t.rl.Stdout() }

// Err writes above the prompt line.
func (t *Terminal) Err() io.Writer { return t.rl.Stderr() }

// SetCompleter installs the TAB completer.
func (t *Terminal) SetCompleter(c readline.AutoCompleter) {
	t.sh.CustomCompleter(c)
}

// ClearSoftEOF re-arms input after a Ctrl-D.
func (t *Terminal) ClearSoftEOF() {
	t.softEOF.Store(false)
}

// Close releases the terminal and notifies listeners once.
func (t *Terminal) Close() error {
	listeners, first := t.markClosed()
	if !first {
		return nil
	}
	t.sh.Close()
	notify(listeners)
	return nil
}

// lineReader adapts a line source to io.Reader.
type lineReader struct {
	read    func() (string, error)
	pending []byte
}

// Interactive marks the reader as terminal input.
func (r *lineReader) Interactive() bool { return true }

func (r *lineReader) Read(p []byte) (int, error) {
	if len(r.pending) == 0 {
		line, err := r.read()
		if err != nil {
			return 0, err
		}
		r.pending = []byte(line)
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}
