package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmdshell/internal/alias"
	"cmdshell/internal/commands/builtin"
	"cmdshell/internal/config"
	"cmdshell/internal/interpreter"
	"cmdshell/internal/strategy"
	"cmdshell/internal/testutils"
	"cmdshell/pkg/shelltypes"
)

var testClock = time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)

type fixture struct {
	shell        *Shell
	cons         *testutils.FakeConsole
	props        *config.Properties
	interpreters *strategy.Registry[shelltypes.Interpreter]
	invokers     *strategy.Registry[shelltypes.Invoker]
	home         string
}

// newFixture builds a shell over a fake console with private strategy
// registries. The resolver knows the built-ins plus say, upper, fail and explode.
func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	home := t.TempDir()
	props := config.New()
	props.Set(config.HomeKey, home)
	props.Set(config.DirKey, home)

	resolver := alias.NewManager()
	resolver.SetLookPath(nil)
	require.NoError(t, builtin.Register(resolver, resolver))
	for _, cmd := range []shelltypes.Command{
		testutils.EchoCommand("say"),
		testutils.UpperCommand("upper"),
		testutils.ExitCodeCommand("fail", 1, errors.New("boom")),
		&testutils.FuncCommand{
			CommandName: "explode",
			Fn: func(context.Context, shelltypes.Shell, *shelltypes.CommandLine) (int, error) {
				panic("kaboom")
			},
		},
	} {
		require.NoError(t, resolver.Register(cmd))
	}

	f := &fixture{
		cons:         testutils.NewFakeConsole(),
		props:        props,
		interpreters: strategy.NewRegistry[shelltypes.Interpreter]("interpreter"),
		invokers:     strategy.NewRegistry[shelltypes.Invoker]("invoker"),
		home:         home,
	}
	base := []Option{
		WithResolver(resolver),
		WithInterpreters(f.interpreters),
		WithInvokers(f.invokers),
		WithClock(func() time.Time { return testClock }),
	}
	f.shell = New(f.cons, props, append(base, opts...)...)
	return f
}

// initialize installs the configured strategies and forgets the switch messages.
func (f *fixture) initialize(t *testing.T) {
	t.Helper()
	require.NoError(t, f.shell.Initialize())
	f.cons.ErrBuf.Reset()
	f.cons.OutBuf.Reset()
}

func (f *fixture) countingInterpreter(name string) *atomic.Int32 {
	var created atomic.Int32
	f.interpreters.Register(name, func(shelltypes.Shell) (shelltypes.Interpreter, error) {
		created.Add(1)
		return interpreter.NewDefault(), nil
	})
	return &created
}

func TestNew_RegistersWithConsole(t *testing.T) {
	f := newFixture(t)

	assert.NotEmpty(t, f.shell.ID())
	assert.NotNil(t, f.cons.Completer())
	assert.True(t, f.shell.HistoryEnabled())
	assert.False(t, f.shell.Debug())
	assert.Equal(t, Initializing, f.shell.State())
}

func TestInitialize_InstallsConfiguredStrategies(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.shell.Initialize())

	assert.Equal(t, config.InitialInterpreter, f.shell.InterpreterName())
	assert.Equal(t, config.InitialInvoker, f.shell.InvokerName())
	assert.Contains(t, f.cons.ErrBuf.String(), "Switched to thread invoker")
	assert.Contains(t, f.cons.ErrBuf.String(), "Switched to redirecting interpreter")
}

func TestInitialize_FallsBackToDefaultStrategy(t *testing.T) {
	f := newFixture(t)
	f.props.Set(config.InterpreterKey, "bogus")
	f.props.Set(config.InvokerKey, "missing")

	require.NoError(t, f.shell.Initialize())

	assert.Equal(t, config.FallbackStrategy, f.shell.InterpreterName())
	assert.Equal(t, config.FallbackStrategy, f.shell.InvokerName())
	assert.Equal(t, config.FallbackStrategy, f.props.Get(config.InterpreterKey))
	assert.Contains(t, f.cons.ErrBuf.String(), `no such interpreter: "bogus"`)
	assert.Contains(t, f.cons.ErrBuf.String(), `no such invoker: "missing"`)
	assert.Contains(t, f.cons.ErrBuf.String(), "Using default interpreter instead of bogus\n")
	assert.Contains(t, f.cons.ErrBuf.String(), "Using default invoker instead of missing\n")
}

func TestInitialize_LoadsAliasFile(t *testing.T) {
	f := newFixture(t)
	aliasFile := filepath.Join(f.home, "aliases")
	require.NoError(t, os.WriteFile(aliasFile, []byte("aliases:\n  shout: say\n"), 0o644))
	f.props.Set(config.AliasFileKey, aliasFile)
	f.initialize(t)

	f.shell.Execute(context.Background(), "shout hi", false)

	assert.Equal(t, "hi\n", f.cons.OutBuf.String())
}

func TestInitialize_ReportsBrokenAliasFile(t *testing.T) {
	f := newFixture(t)
	f.props.Set(config.AliasFileKey, filepath.Join(f.home, "nope"))

	require.NoError(t, f.shell.Initialize())

	assert.Contains(t, f.cons.ErrBuf.String(), "Error while loading aliases: ")
}

func TestSetInterpreter_SameNameIsNoop(t *testing.T) {
	f := newFixture(t)
	created := f.countingInterpreter("counting")

	require.NoError(t, f.shell.SetInterpreter("counting"))
	require.NoError(t, f.shell.SetInterpreter("counting"))

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, "counting", f.shell.InterpreterName())
	assert.Equal(t, "counting", f.props.Get(config.InterpreterKey))
	assert.Equal(t, 1, strings.Count(f.cons.ErrBuf.String(), "Switched to counting interpreter"))
}

// slowInterpreter registers name with a factory that signals entered on its
// first call and then takes a while.
func (f *fixture) slowInterpreter(name string, entered chan<- struct{}) *atomic.Int32 {
	var created atomic.Int32
	f.interpreters.Register(name, func(shelltypes.Shell) (shelltypes.Interpreter, error) {
		if created.Add(1) == 1 {
			close(entered)
		}
		time.Sleep(50 * time.Millisecond)
		return interpreter.NewDefault(), nil
	})
	return &created
}

func TestSetInterpreter_ConcurrentSameNameCreatesOnce(t *testing.T) {
	f := newFixture(t)
	entered := make(chan struct{})
	created := f.slowInterpreter("slow", entered)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs <- f.shell.SetInterpreter("slow")
	}()
	go func() {
		defer wg.Done()
		<-entered
		errs <- f.shell.SetInterpreter("slow")
	}()
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, "slow", f.shell.InterpreterName())
	assert.Equal(t, 1, strings.Count(f.cons.ErrBuf.String(), "Switched to slow interpreter"))
}

func TestSetInterpreter_LaterSwitchWinsOverSlowOne(t *testing.T) {
	f := newFixture(t)
	entered := make(chan struct{})
	f.slowInterpreter("slow", entered)
	fast := f.countingInterpreter("fast")

	done := make(chan error, 1)
	go func() {
		done <- f.shell.SetInterpreter("slow")
	}()
	<-entered

	require.NoError(t, f.shell.SetInterpreter("fast"))
	require.NoError(t, <-done)

	assert.Equal(t, int32(1), fast.Load())
	assert.Equal(t, "fast", f.shell.InterpreterName())
	assert.Equal(t, "fast", f.props.Get(config.InterpreterKey))
}

func TestSetInterpreter_UnknownKeepsCurrent(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	err := f.shell.SetInterpreter("nope")

	var unknown *strategy.UnknownStrategyError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "interpreter", unknown.Kind)
	assert.Equal(t, "nope", unknown.Name)
	assert.Equal(t, config.InitialInterpreter, f.shell.InterpreterName())
	assert.Equal(t, config.InitialInterpreter, f.props.Get(config.InterpreterKey))
	assert.Empty(t, f.cons.ErrBuf.String())
}

func TestSetInvoker_ConstructionFailureKeepsCurrent(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	f.invokers.Register("broken", func(shelltypes.Shell) (shelltypes.Invoker, error) {
		return nil, errors.New("no threads today")
	})

	err := f.shell.SetInvoker("broken")

	var construction *strategy.ConstructionError
	require.ErrorAs(t, err, &construction)
	assert.EqualError(t, construction.Err, "no threads today")
	assert.Equal(t, config.InitialInvoker, f.shell.InvokerName())
}

func TestDefaultInvoker_IsFreshInstance(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	a, err := f.shell.DefaultInvoker()
	require.NoError(t, err)
	b, err := f.shell.DefaultInvoker()
	require.NoError(t, err)

	assert.NotSame(t, a, b)
}

func TestExecute_RunsLine(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	f.shell.Execute(context.Background(), "say hello | upper", true)

	assert.Equal(t, "HELLO\n", f.cons.OutBuf.String())
	assert.Empty(t, f.cons.ErrBuf.String())
	assert.Equal(t, []string{"say hello | upper"}, f.shell.CommandHistory())
}

func TestExecute_SkipsBlankLines(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	f.shell.Execute(context.Background(), "   ", true)

	assert.Empty(t, f.cons.OutBuf.String())
	assert.Empty(t, f.shell.CommandHistory())
}

func TestExecute_ReportsErrorOnOneLine(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	f.shell.Execute(context.Background(), "fail", true)

	lines := f.cons.ErrBuf.Lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Shell exception: ")
	assert.Contains(t, lines[0], "boom")
}

func TestExecute_ReportsUnknownCommand(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	f.shell.Execute(context.Background(), "nosuchthing", true)

	assert.Contains(t, f.cons.ErrBuf.String(), "nosuchthing")
	assert.Empty(t, f.cons.OutBuf.String())
}

func TestExecute_RecoversCommandPanic(t *testing.T) {
	f := newFixture(t)
	f.props.Set(config.DebugKey, "true")
	f.initialize(t)

	f.shell.Execute(context.Background(), "explode", true)

	errOut := f.cons.ErrBuf.String()
	assert.Contains(t, errOut, "Shell exception: ")
	assert.Contains(t, errOut, "kaboom")
	assert.Contains(t, errOut, "goroutine")
}

func TestExecute_RecoversInterpreterPanic(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	f.interpreters.Register("exploding", func(shelltypes.Shell) (shelltypes.Interpreter, error) {
		return explodingInterpreter{}, nil
	})
	require.NoError(t, f.shell.SetInterpreter("exploding"))
	f.cons.ErrBuf.Reset()

	assert.NotPanics(t, func() {
		f.shell.Execute(context.Background(), "anything", true)
	})
	assert.Contains(t, f.cons.ErrBuf.String(), "interpreter broke")
}

func TestExecute_DebugTracesCauses(t *testing.T) {
	f := newFixture(t)
	f.props.Set(config.DebugKey, "true")
	f.initialize(t)

	f.shell.Execute(context.Background(), "fail", true)

	assert.Greater(t, len(f.cons.ErrBuf.Lines()), 1)
	assert.Contains(t, f.cons.ErrBuf.String(), "caused by")
}

func TestInvoke_ReturnsErrors(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	ctx := context.Background()

	code, err := f.shell.Invoke(ctx, &shelltypes.CommandLine{Name: "fail"})
	assert.Equal(t, 1, code)
	assert.ErrorContains(t, err, "boom")

	_, err = f.shell.Invoke(ctx, &shelltypes.CommandLine{Name: "nosuchthing"})
	var notFound *alias.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Empty(t, f.cons.ErrBuf.String())
}

func TestInvoke_WithoutInvoker(t *testing.T) {
	f := newFixture(t)

	_, err := f.shell.Invoke(context.Background(), &shelltypes.CommandLine{Name: "say"})
	assert.EqualError(t, err, "no invoker installed")
}

func TestInvokeAsynchronous_RunsOnStart(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	job, err := f.shell.InvokeAsynchronous(context.Background(), &shelltypes.CommandLine{
		Name: "say",
		Args: []string{"later"},
	})
	require.NoError(t, err)
	assert.Empty(t, f.cons.OutBuf.String())

	job.Start()
	code, err := job.Wait()
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "later\n", f.cons.OutBuf.String())
}

func TestInvokeCommand_IsNotInteractive(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	f.cons.Input = strings.NewReader("typed\n")

	var seen *int
	require.NoError(t, f.shell.Resolver().Register(&testutils.FuncCommand{
		CommandName: "slurp",
		Fn: func(_ context.Context, sh shelltypes.Shell, cl *shelltypes.CommandLine) (int, error) {
			_, err := io.ReadAll(cl.Stdin)
			if h := f.shell.InputHistory(); h != nil {
				n := h.Len()
				seen = &n
			}
			return 0, err
		},
	}))

	f.shell.InvokeCommand(context.Background(), "slurp")

	assert.Nil(t, seen)
	assert.Empty(t, f.cons.ErrBuf.String())
}

func TestAddCommandToHistory(t *testing.T) {
	f := newFixture(t)

	for _, line := range []string{"a", "a", "b", "a"} {
		f.shell.AddCommandToHistory(line)
	}
	assert.Equal(t, []string{"a", "b", "a"}, f.shell.CommandHistory())

	f.shell.SetHistoryEnabled(false)
	f.shell.AddCommandToHistory("c")
	assert.Equal(t, []string{"a", "b", "a"}, f.shell.CommandHistory())
}

func TestInputStream_RecordsApplicationHistory(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	f.cons.Input = strings.NewReader("first\nfirst\nsecond\n")

	var recorded []string
	require.NoError(t, f.shell.Resolver().Register(&testutils.FuncCommand{
		CommandName: "slurp",
		Fn: func(_ context.Context, _ shelltypes.Shell, cl *shelltypes.CommandLine) (int, error) {
			if _, err := io.ReadAll(cl.Stdin); err != nil {
				return 1, err
			}
			recorded = f.shell.InputHistory().Lines()
			return 0, nil
		},
	}))

	f.shell.Execute(context.Background(), "slurp", true)

	require.Empty(t, f.cons.ErrBuf.String())
	assert.Equal(t, []string{"first", "second"}, recorded)
	assert.Nil(t, f.shell.InputHistory())
	assert.Equal(t, []string{"slurp"}, f.shell.CommandHistory())
}

func TestInputStream_PlainWhenHistoryDisabled(t *testing.T) {
	f := newFixture(t)
	f.shell.SetHistoryEnabled(false)

	assert.Same(t, f.cons.Input, f.shell.InputStream(context.Background()))
}

func TestInputHistory_WhileReadingCommand(t *testing.T) {
	f := newFixture(t)
	f.shell.AddCommandToHistory("earlier")
	f.shell.readingCommand.Store(true)

	h := f.shell.InputHistory()
	require.NotNil(t, h)
	assert.Equal(t, []string{"earlier"}, h.Lines())
}

func TestExecuteFile(t *testing.T) {
	tests := []struct {
		name    string
		history bool
	}{
		{name: "history on", history: true},
		{name: "history off", history: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.initialize(t)
			f.shell.SetHistoryEnabled(tt.history)

			script := filepath.Join(f.home, "script.sh")
			content := "# comment\n\n  say 1  \nfail\nsay 2\n"
			require.NoError(t, os.WriteFile(script, []byte(content), 0o644))

			require.NoError(t, f.shell.ExecuteFile(context.Background(), script))

			assert.Equal(t, "1\n2\n", f.cons.OutBuf.String())
			lines := f.cons.ErrBuf.Lines()
			require.Len(t, lines, 1)
			assert.Contains(t, lines[0], "boom")
			assert.Empty(t, f.shell.CommandHistory())
			assert.Equal(t, tt.history, f.shell.HistoryEnabled())
		})
	}
}

func TestExecuteFile_RelativeToWorkingDir(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.home, "run.sh"), []byte("say relative\n"), 0o644))

	require.NoError(t, f.shell.ExecuteFile(context.Background(), "run.sh"))

	assert.Equal(t, "relative\n", f.cons.OutBuf.String())
}

func TestExecuteFile_MissingFile(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	missing := filepath.Join(f.home, "missing.sh")

	require.NoError(t, f.shell.ExecuteFile(context.Background(), missing))

	assert.Equal(t, "File does not exist: "+missing+"\n", f.cons.ErrBuf.String())
}

func TestExecuteFile_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	script := filepath.Join(f.home, "script.sh")
	require.NoError(t, os.WriteFile(script, []byte("say 1\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.shell.ExecuteFile(ctx, script)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.cons.OutBuf.String())
}

func TestComplete_NotReadingCommand(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)

	info := f.shell.Complete("sa")

	assert.Equal(t, "sa", info.Completed())
	assert.True(t, info.NewPrompt())
	assert.False(t, info.HasItems())
}

func TestComplete_CommandName(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	f.shell.readingCommand.Store(true)

	info := f.shell.Complete("sa")

	assert.Equal(t, "say ", info.Completed())
	assert.False(t, info.NewPrompt())
}

func TestComplete_ListsCandidates(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	f.shell.readingCommand.Store(true)

	info := f.shell.Complete("s")

	assert.Equal(t, "s", info.Completed())
	assert.True(t, info.NewPrompt())
	assert.Equal(t, []string{"say", "set", "sleep"}, info.Items())
}

func TestComplete_ParseFailure(t *testing.T) {
	f := newFixture(t)
	f.initialize(t)
	f.shell.readingCommand.Store(true)

	info := f.shell.Complete("say )")

	assert.Equal(t, "say )", info.Completed())
	assert.True(t, info.NewPrompt())
	assert.Equal(t, "\n", f.cons.OutBuf.String())
	lines := f.cons.ErrBuf.Lines()
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "Cannot parse: "), lines[0])
}

func TestList_OutsideCompletion(t *testing.T) {
	f := newFixture(t)

	err := f.shell.List([]string{"x"})
	assert.ErrorIs(t, err, shelltypes.ErrNoCompletionInProgress)
}

func TestSetWorkingDir(t *testing.T) {
	f := newFixture(t)
	sub := filepath.Join(f.home, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	file := filepath.Join(f.home, "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	require.NoError(t, f.shell.SetWorkingDir(sub))
	assert.Equal(t, sub, f.shell.WorkingDir())
	assert.Equal(t, sub, f.props.Get(config.DirKey))

	assert.Error(t, f.shell.SetWorkingDir(filepath.Join(f.home, "nope")))
	assert.Error(t, f.shell.SetWorkingDir(file))
	assert.Equal(t, sub, f.shell.WorkingDir())
}

func TestProperties(t *testing.T) {
	f := newFixture(t)

	f.shell.SetProperty("custom.key", "value")

	assert.Equal(t, "value", f.shell.Property("custom.key"))
	assert.Equal(t, "value", f.shell.Properties()["custom.key"])
	assert.Equal(t, f.home, f.shell.Properties()[config.HomeKey])
}

func TestExit_IsIdempotent(t *testing.T) {
	f := newFixture(t)

	f.shell.Exit()
	f.shell.Exit()

	assert.True(t, f.shell.Exited())
	select {
	case <-f.shell.Done():
	default:
		t.Fatal("Done not closed after Exit")
	}
	assert.Equal(t, 2, f.cons.Closes())
}

func TestConsoleClose_MarksExited(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.cons.Close())

	assert.True(t, f.shell.Exited())
}

type explodingInterpreter struct{}

func (explodingInterpreter) Interpret(context.Context, shelltypes.Shell, string) error {
	panic(fmt.Errorf("interpreter broke"))
}

func (explodingInterpreter) ParsePartial(shelltypes.Shell, string) (shelltypes.Completable, error) {
	return nil, nil
}
