// Package alias resolves command names: built-in commands, user aliases and
// executables found on $PATH.
package alias

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"cmdshell/pkg/shelltypes"
)

const maxAliasDepth = 16

// NotFoundError is returned when a name resolves to nothing.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("command not found: %s", e.Name)
}

// Manager is the shell's command resolver.
type Manager struct {
	mu       sync.RWMutex
	commands map[string]shelltypes.Command
	aliases  map[string]string
	lookPath func(file string) (string, error)
}

var _ shelltypes.Resolver = (*Manager)(nil)

// NewManager creates a manager with no commands that searches $PATH.
func NewManager() *Manager {
	return &Manager{
		commands: make(map[string]shelltypes.Command),
		aliases:  make(map[string]string),
		lookPath: exec.LookPath,
	}
}

// SetLookPath replaces the executable search, mainly for tests. nil disables it.
func (m *Manager) SetLookPath(fn func(file string) (string, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookPath = fn
}

// Register adds a command. Returns an error if the command name is empty or if a
// command with the same name is already registered.
func (m *Manager) Register(cmd shelltypes.Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cmd.Name() == "" {
		return fmt.Errorf("command name cannot be empty")
	}
	if _, exists := m.commands[cmd.Name()]; exists {
		return fmt.Errorf("command %s already registered", cmd.Name())
	}
	m.commands[cmd.Name()] = cmd
	return nil
}

// Commands returns the registered commands sorted by name.
func (m *Manager) Commands() []shelltypes.Command {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cmds := make([]shelltypes.Command, 0, len(m.commands))
	for _, cmd := range m.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })
	return cmds
}

// SetAlias makes name resolve like target.
func (m *Manager) SetAlias(name, target string) error {
	name = strings.TrimSpace(name)
	target = strings.TrimSpace(target)
	if name == "" || target == "" {
		return fmt.Errorf("alias name and target cannot be empty")
	}
	if strings.ContainsAny(name, " \t/") {
		return fmt.Errorf("invalid alias name %q", name)
	}
	if name == target {
		return fmt.Errorf("alias %s cannot refer to itself", name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.aliases[name] = target
	return nil
}

// RemoveAlias deletes name and reports whether it existed.
func (m *Manager) RemoveAlias(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.aliases[name]
	delete(m.aliases, name)
	return ok
}

// Aliases returns a copy of the alias table.
func (m *Manager) Aliases() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string]string, len(m.aliases))
	for k, v := range m.aliases {
		result[k] = v
	}
	return result
}

type aliasFile struct {
	Aliases map[string]string `yaml:"aliases"`
}

// LoadFile reads aliases from a YAML file of the form
//
//	aliases:
//	  ll: ls
func (m *Manager) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read alias file: %w", err)
	}
	var f aliasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse alias file %s: %w", path, err)
	}

	var errs []error
	for name, target := range f.Aliases {
		if err := m.SetAlias(name, target); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Resolve follows aliases, then looks for a registered command, then for an
// executable on $PATH.
func (m *Manager) Resolve(name string) (shelltypes.Command, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	target := name
	for depth := 0; ; depth++ {
		next, ok := m.aliases[target]
		if !ok {
			break
		}
		if depth == maxAliasDepth {
			return nil, fmt.Errorf("alias loop resolving %s", name)
		}
		target = next
	}

	if cmd, ok := m.commands[target]; ok {
		return cmd, nil
	}

	if m.lookPath != nil && target != "" {
		if path, err := m.lookPath(target); err == nil {
			return &ExternalCommand{name: target, path: path}, nil
		}
	}
	return nil, &NotFoundError{Name: name}
}

// Names returns command and alias names, sorted. $PATH is not searched.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{}, len(m.commands)+len(m.aliases))
	for name := range m.commands {
		seen[name] = struct{}{}
	}
	for name := range m.aliases {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
