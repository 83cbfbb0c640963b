package interpreter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"

	"cmdshell/internal/invoker"
	"cmdshell/internal/strategy"
	"cmdshell/internal/testutils"
	"cmdshell/pkg/shelltypes"
)

func newShell(t *testing.T) *testutils.MockShell {
	t.Helper()
	sh := testutils.NewMockShell()
	sh.Invoker = invoker.NewThread(sh)
	sh.AddCommand(testutils.EchoCommand("echo"))
	sh.AddCommand(testutils.UpperCommand("upper"))
	sh.AddCommand(testutils.ExitCodeCommand("true", 0, nil))
	sh.AddCommand(testutils.ExitCodeCommand("false", 1, nil))
	sh.AddCommand(&testutils.FuncCommand{
		CommandName: "warn",
		Fn: func(_ context.Context, _ shelltypes.Shell, cl *shelltypes.CommandLine) (int, error) {
			_, err := cl.Stderr.Write([]byte(strings.Join(cl.Args, " ") + "\n"))
			return 0, err
		},
	})
	require.NoError(t, sh.SetWorkingDir(t.TempDir()))
	return sh
}

func TestDefault_Interpret(t *testing.T) {
	sh := newShell(t)
	d := NewDefault()

	require.NoError(t, d.Interpret(context.Background(), sh, `echo "hello   world" 'a|b' > c`))

	assert.Equal(t, "hello   world a|b > c\n", sh.OutBuf.String())
	assert.Equal(t, []string{`echo "hello   world" 'a|b' > c`}, sh.CommandHistory())
}

func TestDefault_ParseError(t *testing.T) {
	sh := newShell(t)

	err := NewDefault().Interpret(context.Background(), sh, `echo "unterminated`)

	var parseErr *shelltypes.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Empty(t, sh.CommandHistory())
}

func TestDefault_UnknownCommand(t *testing.T) {
	err := NewDefault().Interpret(context.Background(), newShell(t), "nosuch arg")
	assert.ErrorContains(t, err, "nosuch")
}

func TestRedirecting_Interpret(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected string
	}{
		{"simple", "echo hi", "hi\n"},
		{"quoting", `echo "a  b" 'c'`, "a  b c\n"},
		{"list", "echo 1; echo 2", "1\n2\n"},
		{"and success", "true && echo yes", "yes\n"},
		{"and failure", "false && echo yes", ""},
		{"or", "false || echo fallback", "fallback\n"},
		{"or short circuit", "true || echo no", ""},
		{"pipe", "echo shout | upper", "SHOUT\n"},
		{"long pipe", "echo abc | upper | upper", "ABC\n"},
		{"pipe all", "warn oops |& upper", "OOPS\n"},
		{"stderr dup", "warn dup 2>&1 | upper", "DUP\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sh := newShell(t)
			require.NoError(t, NewRedirecting().Interpret(context.Background(), sh, tt.line))
			assert.Equal(t, tt.expected, sh.OutBuf.String())
		})
	}
}

func TestRedirecting_Negation(t *testing.T) {
	sh := newShell(t)
	rn := &run{sh: sh, cfg: &expand.Config{}}

	for line, expected := range map[string]int{"! false": 0, "! true": 1, "false": 1} {
		file, err := syntax.NewParser().Parse(strings.NewReader(line), "")
		require.NoError(t, err)

		code, err := rn.stmt(context.Background(), file.Stmts[0], stdio{})
		require.NoError(t, err)
		assert.Equal(t, expected, code, line)
	}
}

func TestRedirecting_Expansion(t *testing.T) {
	t.Setenv("CMDSHELL_TEST_VALUE", "expanded")
	sh := newShell(t)

	require.NoError(t, NewRedirecting().Interpret(context.Background(), sh, `echo $CMDSHELL_TEST_VALUE "${CMDSHELL_TEST_VALUE}!"`))

	assert.Equal(t, "expanded expanded!\n", sh.OutBuf.String())
}

func TestRedirecting_FileRedirections(t *testing.T) {
	sh := newShell(t)
	r := NewRedirecting()
	ctx := context.Background()

	require.NoError(t, r.Interpret(ctx, sh, "echo first > out.txt"))
	require.NoError(t, r.Interpret(ctx, sh, "echo second >> out.txt"))
	require.NoError(t, r.Interpret(ctx, sh, "upper < out.txt"))
	require.NoError(t, r.Interpret(ctx, sh, "warn problem 2> err.txt"))
	require.NoError(t, r.Interpret(ctx, sh, "warn both &> all.txt"))

	data, err := os.ReadFile(filepath.Join(sh.WorkingDir(), "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
	assert.Equal(t, "FIRST\nSECOND\n", sh.OutBuf.String())

	data, err = os.ReadFile(filepath.Join(sh.WorkingDir(), "err.txt"))
	require.NoError(t, err)
	assert.Equal(t, "problem\n", string(data))

	data, err = os.ReadFile(filepath.Join(sh.WorkingDir(), "all.txt"))
	require.NoError(t, err)
	assert.Equal(t, "both\n", string(data))
	assert.Empty(t, sh.ErrBuf.String())
}

func TestRedirecting_Errors(t *testing.T) {
	sh := newShell(t)
	r := NewRedirecting()
	ctx := context.Background()

	var parseErr *shelltypes.ParseError
	require.ErrorAs(t, r.Interpret(ctx, sh, "echo 'open"), &parseErr)

	assert.Error(t, r.Interpret(ctx, sh, "upper < missing.txt"))
	assert.ErrorContains(t, r.Interpret(ctx, sh, "X=1 echo"), "assignments")
	assert.ErrorContains(t, r.Interpret(ctx, sh, "{ echo a; }"), "unsupported")
	assert.Error(t, r.Interpret(ctx, sh, "echo $(echo nested)"))
	assert.Error(t, r.Interpret(ctx, sh, "nosuch | upper"))
}

func TestRedirecting_Background(t *testing.T) {
	sh := newShell(t)
	done := make(chan struct{})
	sh.AddCommand(&testutils.FuncCommand{
		CommandName: "later",
		Fn: func(context.Context, shelltypes.Shell, *shelltypes.CommandLine) (int, error) {
			close(done)
			return 0, nil
		},
	})

	require.NoError(t, NewRedirecting().Interpret(context.Background(), sh, "later &"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("background command did not run")
	}
}

func TestRedirecting_RecordsHistoryOnce(t *testing.T) {
	sh := newShell(t)

	require.NoError(t, NewRedirecting().Interpret(context.Background(), sh, "  echo a | upper  "))

	assert.Equal(t, []string{"echo a | upper"}, sh.CommandHistory())
}

func TestSplitPartial(t *testing.T) {
	tests := []struct {
		partial   string
		operators bool
		prefix    string
		word      string
		command   bool
	}{
		{"", true, "", "", true},
		{"ec", true, "", "ec", true},
		{"echo ", true, "echo ", "", false},
		{"echo fi", true, "echo ", "fi", false},
		{"ls | gr", true, "ls | ", "gr", true},
		{"ls && e", true, "ls && ", "e", true},
		{"cat <in", true, "cat <", "in", false},
		{"ls|gr", true, "ls|", "gr", true},
		{"ls|gr", false, "", "ls|gr", true},
		{`echo "a b" c`, true, `echo "a b" `, "c", false},
	}

	for _, tt := range tests {
		t.Run(tt.partial, func(t *testing.T) {
			prefix, word, command := splitPartial(tt.partial, tt.operators)
			assert.Equal(t, tt.prefix, prefix)
			assert.Equal(t, tt.word, word)
			assert.Equal(t, tt.command, command)
		})
	}
}

func TestCompletion_CommandNames(t *testing.T) {
	sh := newShell(t)
	info := shelltypes.NewCompletionInfo()
	info.SetCompleted("ech")

	c, err := NewRedirecting().ParsePartial(sh, "ech")
	require.NoError(t, err)
	require.NoError(t, c.Complete(info, sh))
	assert.Equal(t, "echo ", info.Completed())

	info = shelltypes.NewCompletionInfo()
	c, err = NewRedirecting().ParsePartial(sh, "ls | ")
	require.NoError(t, err)
	require.NoError(t, c.Complete(info, sh))

	listed := sh.Listed()
	require.Len(t, listed, 1)
	assert.Equal(t, []string{"echo", "false", "true", "upper", "warn"}, listed[0])
}

func TestCompletion_Files(t *testing.T) {
	sh := newShell(t)
	wd := sh.WorkingDir()
	require.NoError(t, os.WriteFile(filepath.Join(wd, "report-2024.txt"), nil, 0600))
	require.NoError(t, os.WriteFile(filepath.Join(wd, "report-2025.txt"), nil, 0600))
	require.NoError(t, os.WriteFile(filepath.Join(wd, ".hidden"), nil, 0600))
	require.NoError(t, os.Mkdir(filepath.Join(wd, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(wd, "src", "main.go"), nil, 0600))

	complete := func(partial string) *shelltypes.CompletionInfo {
		info := shelltypes.NewCompletionInfo()
		info.SetCompleted(partial)
		c, err := NewDefault().ParsePartial(sh, partial)
		require.NoError(t, err)
		require.NoError(t, c.Complete(info, sh))
		return info
	}

	assert.Equal(t, "cat report-202", complete("cat rep").Completed())
	assert.Equal(t, []string{"report-2024.txt", "report-2025.txt"}, sh.Listed()[0])

	assert.Equal(t, "cat src/", complete("cat sr").Completed())
	assert.Equal(t, "cat src/main.go ", complete("cat src/m").Completed())
	assert.Equal(t, "cat .hidden ", complete("cat .h").Completed())
	assert.Equal(t, "cat zzz", complete("cat zzz").Completed())
	assert.Equal(t, "cat nowhere/x", complete("cat nowhere/x").Completed())
}

func TestParsePartial_Errors(t *testing.T) {
	sh := newShell(t)

	_, err := NewDefault().ParsePartial(sh, `echo "open`)
	assert.Error(t, err)

	// An open quote is only incomplete for the shell parser.
	_, err = NewRedirecting().ParsePartial(sh, `echo "open`)
	assert.NoError(t, err)

	_, err = NewRedirecting().ParsePartial(sh, "echo )")
	var parseErr *shelltypes.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestRegister(t *testing.T) {
	reg := strategy.NewRegistry[shelltypes.Interpreter]("interpreter")
	Register(reg)

	assert.Equal(t, []string{DefaultName, RedirectingName}, reg.Names())
}

func TestCommonPrefix(t *testing.T) {
	assert.Equal(t, "", commonPrefix(nil))
	assert.Equal(t, "abc", commonPrefix([]string{"abc"}))
	assert.Equal(t, "ab", commonPrefix([]string{"abc", "abd", "ab"}))
	assert.Equal(t, "", commonPrefix([]string{"x", "y"}))
}
