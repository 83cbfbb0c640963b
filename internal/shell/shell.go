// Package shell implements the interactive command shell: the session state, the
// pipeline that runs command lines through the current interpreter and invoker,
// and the loop that reads lines from a console.
package shell

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"cmdshell/internal/alias"
	"cmdshell/internal/commands/builtin"
	"cmdshell/internal/completion"
	"cmdshell/internal/config"
	"cmdshell/internal/console"
	"cmdshell/internal/history"
	"cmdshell/internal/logger"
	"cmdshell/internal/output"
	"cmdshell/internal/strategy"
	"cmdshell/pkg/shelltypes"
)

// Shell is one interactive session bound to a console.
type Shell struct {
	id           string
	console      console.Console
	props        *config.Properties
	resolver     *alias.Manager
	interpreters *strategy.Registry[shelltypes.Interpreter]
	invokers     *strategy.Registry[shelltypes.Invoker]
	completion   *completion.Engine
	errOut       *output.Printer
	logger       *log.Logger
	now          func() time.Time

	// mu guards the fields below, the completion record and the exit flag.
	mu              sync.Mutex
	interpreterName string
	interpreter     shelltypes.Interpreter
	invokerName     string
	invoker         shelltypes.Invoker
	commandHistory  *history.History
	appHistory      *history.History
	lastCommandLine string
	lastInputLine   string
	exited          bool
	exitCh          chan struct{}

	// switchMu serialises strategy switches from the name check to persisting the
	// new name. It is never taken while holding mu.
	switchMu sync.Mutex

	debug          atomic.Bool
	historyEnabled atomic.Bool
	readingCommand atomic.Bool
	state          atomic.Int32

	// pending is the outstanding console read; only the loop goroutine uses it.
	pending chan readResult
}

var (
	_ shelltypes.Shell = (*Shell)(nil)
	_ builtin.Switcher = (*Shell)(nil)
)

// Option configures a Shell.
type Option func(*Shell)

// WithResolver replaces the default resolver. The caller registers its commands.
func WithResolver(m *alias.Manager) Option {
	return func(s *Shell) {
		s.resolver = m
	}
}

// WithInterpreters uses reg instead of the process-wide interpreter registry.
func WithInterpreters(reg *strategy.Registry[shelltypes.Interpreter]) Option {
	return func(s *Shell) {
		s.interpreters = reg
	}
}

// WithInvokers uses reg instead of the process-wide invoker registry.
func WithInvokers(reg *strategy.Registry[shelltypes.Invoker]) Option {
	return func(s *Shell) {
		s.invokers = reg
	}
}

// WithClock sets the time source used by the $D prompt directive.
func WithClock(now func() time.Time) Option {
	return func(s *Shell) {
		s.now = now
	}
}

// New creates a shell reading from cons and configured by props. Without
// WithResolver the shell resolves the built-in commands, its aliases and $PATH.
func New(cons console.Console, props *config.Properties, opts ...Option) *Shell {
	s := &Shell{
		id:             uuid.NewString(),
		console:        cons,
		props:          props,
		interpreters:   strategy.Interpreters(),
		invokers:       strategy.Invokers(),
		logger:         logger.NewStyledLogger("Shell"),
		now:            time.Now,
		commandHistory: history.New(),
		exitCh:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.resolver == nil {
		s.resolver = alias.NewManager()
		if err := builtin.Register(s.resolver, s.resolver); err != nil {
			s.logger.Error("Failed to register built-in commands", "error", err)
		}
	}

	s.errOut = output.ForWriter(cons.Err())
	s.completion = completion.New(completionHost{s}, &s.mu)

	snap := props.Snapshot()
	s.debug.Store(snap.Debug)
	s.historyEnabled.Store(snap.History)

	cons.SetCompleter(completion.NewAdapter(s.completion))
	cons.AddCloseListener(s.consoleClosed)
	return s
}

// ID returns the session id.
func (s *Shell) ID() string {
	return s.id
}

// Resolver returns the alias manager commands are resolved with.
func (s *Shell) Resolver() *alias.Manager {
	return s.resolver
}

// Resolve implements shelltypes.Shell.
func (s *Shell) Resolve(name string) (shelltypes.Command, error) {
	return s.resolver.Resolve(name)
}

// CommandNames implements shelltypes.Shell.
func (s *Shell) CommandNames() []string {
	return s.resolver.Names()
}

// Out implements shelltypes.Shell.
func (s *Shell) Out() io.Writer {
	return s.console.Out()
}

// Err implements shelltypes.Shell.
func (s *Shell) Err() io.Writer {
	return s.console.Err()
}

// WorkingDir returns the user.dir property, falling back to the process
// directory.
func (s *Shell) WorkingDir() string {
	if dir := s.props.Get(config.DirKey); dir != "" {
		return dir
	}
	wd, _ := os.Getwd()
	return wd
}

// SetWorkingDir changes the user.dir property. The process directory is not
// changed; commands resolve relative paths against WorkingDir.
func (s *Shell) SetWorkingDir(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}
	s.props.Set(config.DirKey, abs)
	return nil
}

// Property implements shelltypes.Shell.
func (s *Shell) Property(key string) string {
	return s.props.Get(key)
}

// SetProperty implements shelltypes.Shell.
func (s *Shell) SetProperty(key, value string) {
	s.props.Set(key, value)
}

// Properties implements shelltypes.Shell.
func (s *Shell) Properties() map[string]string {
	return s.props.All()
}

// Exit stops the loop before its next read and closes the console. Calling it
// again has no effect.
func (s *Shell) Exit() {
	s.markExited()
	if err := s.console.Close(); err != nil {
		s.logger.Debug("Closing console failed", "error", err)
	}
}

// Exited reports whether the session is over.
func (s *Shell) Exited() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exited
}

// Done is closed when the session is over.
func (s *Shell) Done() <-chan struct{} {
	return s.exitCh
}

// consoleClosed is the console close listener. It may run on any goroutine.
func (s *Shell) consoleClosed() {
	s.logger.Debug("Console closed", "session", s.id)
	s.markExited()
}

func (s *Shell) markExited() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.exited {
		s.exited = true
		close(s.exitCh)
	}
}

// Debug reports whether diagnostic traces are printed.
func (s *Shell) Debug() bool {
	return s.debug.Load()
}

// HistoryEnabled reports whether lines are recorded.
func (s *Shell) HistoryEnabled() bool {
	return s.historyEnabled.Load()
}

// SetHistoryEnabled turns recording on or off until the next configuration
// refresh.
func (s *Shell) SetHistoryEnabled(enabled bool) {
	s.historyEnabled.Store(enabled)
}
