// Package testutils provides fakes shared by cmdshell package tests.
package testutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"cmdshell/internal/output"
	"cmdshell/pkg/shelltypes"
)

// MockShell implements shelltypes.Shell over in-memory state.
type MockShell struct {
	mu       sync.Mutex
	commands map[string]shelltypes.Command
	history  []string
	listed   [][]string
	props    map[string]string
	wd       string
	invoked  []string
	exits    atomic.Int32

	// Invoker executes commands when set; otherwise commands run inline.
	Invoker shelltypes.Invoker
	// ListErr is returned by List.
	ListErr error
	// Input is returned by InputStream.
	Input io.Reader

	OutBuf *output.CaptureBuffer
	ErrBuf *output.CaptureBuffer
}

var _ shelltypes.Shell = (*MockShell)(nil)

// NewMockShell creates a shell with no commands, empty buffers and "/" as working dir.
func NewMockShell() *MockShell {
	return &MockShell{
		commands: make(map[string]shelltypes.Command),
		props:    make(map[string]string),
		wd:       "/",
		Input:    strings.NewReader(""),
		OutBuf:   output.NewCaptureBuffer(),
		ErrBuf:   output.NewCaptureBuffer(),
	}
}

// AddCommand makes cmd resolvable by its name.
func (m *MockShell) AddCommand(cmd shelltypes.Command) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands[cmd.Name()] = cmd
}

// Invoke implements shelltypes.Shell.
func (m *MockShell) Invoke(ctx context.Context, cl *shelltypes.CommandLine) (int, error) {
	if m.Invoker != nil {
		return m.Invoker.Invoke(ctx, cl)
	}
	cmd, err := m.Resolve(cl.Name)
	if err != nil {
		return -1, err
	}
	bound := *cl
	if bound.Stdin == nil {
		bound.Stdin = m.InputStream(ctx)
	}
	if bound.Stdout == nil {
		bound.Stdout = m.OutBuf
	}
	if bound.Stderr == nil {
		bound.Stderr = m.ErrBuf
	}
	return cmd.Execute(ctx, m, &bound)
}

// InvokeAsynchronous implements shelltypes.Shell.
func (m *MockShell) InvokeAsynchronous(ctx context.Context, cl *shelltypes.CommandLine) (shelltypes.Job, error) {
	if m.Invoker == nil {
		return nil, errors.New("mock shell has no invoker")
	}
	return m.Invoker.InvokeAsynchronous(ctx, cl)
}

// InvokeCommand records line.
func (m *MockShell) InvokeCommand(_ context.Context, line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoked = append(m.invoked, line)
}

// Invoked returns the lines passed to InvokeCommand.
func (m *MockShell) Invoked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.invoked...)
}

// Resolve implements shelltypes.Shell.
func (m *MockShell) Resolve(name string) (shelltypes.Command, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd, ok := m.commands[name]
	if !ok {
		return nil, fmt.Errorf("command not found: %s", name)
	}
	return cmd, nil
}

// CommandNames implements shelltypes.Shell.
func (m *MockShell) CommandNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.commands))
	for name := range m.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InputStream implements shelltypes.Shell.
func (m *MockShell) InputStream(context.Context) io.Reader { return m.Input }

// Out implements shelltypes.Shell.
func (m *MockShell) Out() io.Writer { return m.OutBuf }

// Err implements shelltypes.Shell.
func (m *MockShell) Err() io.Writer { return m.ErrBuf }

// AddCommandToHistory implements shelltypes.Shell.
func (m *MockShell) AddCommandToHistory(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, line)
}

// CommandHistory implements shelltypes.Shell.
func (m *MockShell) CommandHistory() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.history...)
}

// List records items.
func (m *MockShell) List(items []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return m.ListErr
	}
	m.listed = append(m.listed, append([]string(nil), items...))
	return nil
}

// Listed returns every candidate list passed to List.
func (m *MockShell) Listed() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.listed...)
}

// WorkingDir implements shelltypes.Shell.
func (m *MockShell) WorkingDir() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wd
}

// SetWorkingDir implements shelltypes.Shell without checking the filesystem.
func (m *MockShell) SetWorkingDir(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wd = dir
	return nil
}

// Property implements shelltypes.Shell.
func (m *MockShell) Property(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.props[key]
}

// SetProperty implements shelltypes.Shell.
func (m *MockShell) SetProperty(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.props[key] = value
}

// Properties implements shelltypes.Shell.
func (m *MockShell) Properties() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[string]string, len(m.props))
	for k, v := range m.props {
		result[k] = v
	}
	return result
}

// Exit counts calls.
func (m *MockShell) Exit() {
	m.exits.Add(1)
}

// Exits returns how often Exit was called.
func (m *MockShell) Exits() int {
	return int(m.exits.Load())
}
