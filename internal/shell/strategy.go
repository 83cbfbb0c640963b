package shell

import (
	"fmt"

	"cmdshell/internal/config"
	"cmdshell/internal/invoker"
	"cmdshell/internal/strategy"
	"cmdshell/pkg/shelltypes"
)

// InterpreterName returns the name of the current interpreter.
func (s *Shell) InterpreterName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interpreterName
}

// InvokerName returns the name of the current invoker.
func (s *Shell) InvokerName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invokerName
}

// SetInterpreter makes name the current interpreter. Asking for the current name
// does nothing. On failure the current interpreter stays in place.
func (s *Shell) SetInterpreter(name string) error {
	return switchStrategy(s, s.interpreters, config.InterpreterKey, name, &s.interpreterName, &s.interpreter)
}

// SetInvoker makes name the current invoker. Asking for the current name does
// nothing. On failure the current invoker stays in place.
func (s *Shell) SetInvoker(name string) error {
	return switchStrategy(s, s.invokers, config.InvokerKey, name, &s.invokerName, &s.invoker)
}

// DefaultInvoker creates a fresh instance of the default invoker for callers that
// must not depend on the configured one.
func (s *Shell) DefaultInvoker() (shelltypes.Invoker, error) {
	return s.invokers.Create(invoker.DefaultName, s)
}

// switchStrategy creates name from reg and installs it in *current. The new name
// is written back to the configuration under key. Switches run one at a time; the
// factory is called without holding mu so it may use the shell.
func switchStrategy[T any](s *Shell, reg *strategy.Registry[T], key, name string, currentName *string, current *T) error {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()

	s.mu.Lock()
	same := name == *currentName
	s.mu.Unlock()
	if same {
		return nil
	}

	created, err := reg.Create(name, s)
	if err != nil {
		return err
	}

	s.mu.Lock()
	*currentName = name
	*current = created
	s.mu.Unlock()

	s.errOut.Success(fmt.Sprintf("Switched to %s %s", name, reg.Kind()))
	s.props.Set(key, name)
	s.logger.Debug("Switched strategy", "kind", reg.Kind(), "name", name)
	return nil
}

func (s *Shell) currentInterpreter() shelltypes.Interpreter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interpreter
}

func (s *Shell) currentInvoker() shelltypes.Invoker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invoker
}

// setupFromProperties installs the configured strategies, falling back to the
// default ones when a configured name cannot be created.
func (s *Shell) setupFromProperties(snap config.Snapshot) error {
	s.debug.Store(snap.Debug)
	s.historyEnabled.Store(snap.History)

	if err := s.SetInvoker(snap.Invoker); err != nil {
		if err := s.fallbackStrategy(s.invokers.Kind(), snap.Invoker, err, s.SetInvoker); err != nil {
			return err
		}
	}
	if err := s.SetInterpreter(snap.Interpreter); err != nil {
		if err := s.fallbackStrategy(s.interpreters.Kind(), snap.Interpreter, err, s.SetInterpreter); err != nil {
			return err
		}
	}
	return nil
}

// fallbackStrategy is the named recovery used at startup: the error for the
// configured strategy is reported and logged, then the fallback strategy is
// installed instead.
func (s *Shell) fallbackStrategy(kind, configured string, cause error, set func(string) error) error {
	s.reportError("", cause)
	s.logger.Warn("Falling back to default strategy",
		"kind", kind,
		"configured", configured,
		"fallback", config.FallbackStrategy,
		"error", cause)

	s.errOut.Warning(fmt.Sprintf("Using %s %s instead of %s", config.FallbackStrategy, kind, configured))
	if err := set(config.FallbackStrategy); err != nil {
		return fmt.Errorf("cannot install fallback %s: %w", kind, err)
	}
	return nil
}

// refreshFromProperties applies configuration changes made since the last
// iteration. A name that cannot be created is reported once and the property is
// reset to the strategy still in use.
func (s *Shell) refreshFromProperties(snap config.Snapshot) {
	s.debug.Store(snap.Debug)
	s.historyEnabled.Store(snap.History)

	if err := s.SetInterpreter(snap.Interpreter); err != nil {
		s.reportError("", err)
		s.props.Set(config.InterpreterKey, s.InterpreterName())
	}
	if err := s.SetInvoker(snap.Invoker); err != nil {
		s.reportError("", err)
		s.props.Set(config.InvokerKey, s.InvokerName())
	}
}
