package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmdshell/internal/config"
	"cmdshell/internal/console"
	"cmdshell/internal/output"
	"cmdshell/internal/shell"
)

func setupTestMode(t *testing.T) {
	t.Helper()
	previous := testMode
	testMode = true
	t.Cleanup(func() { testMode = previous })
}

func newTestProperties(t *testing.T) *config.Properties {
	t.Helper()
	dir := t.TempDir()
	props := config.New()
	props.Set(config.HomeKey, dir)
	props.Set(config.DirKey, dir)
	return props
}

func TestValidateScriptFile(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "script.sh")
	require.NoError(t, os.WriteFile(script, []byte("echo hi\n"), 0o644))

	assert.NoError(t, validateScriptFile(script))

	err := validateScriptFile(filepath.Join(dir, "missing.sh"))
	assert.ErrorContains(t, err, "script file does not exist")

	err = validateScriptFile(dir)
	assert.ErrorContains(t, err, "is a directory")
}

func TestLoadProperties_FlagsOverrideDefaults(t *testing.T) {
	setupTestMode(t)
	configFile = ""

	flags := rootCmd.PersistentFlags()
	require.NoError(t, flags.Set("interpreter", "default"))
	t.Cleanup(func() {
		_ = flags.Set("interpreter", config.InitialInterpreter)
		flags.Lookup("interpreter").Changed = false
	})

	props, err := loadProperties(flags)
	require.NoError(t, err)

	assert.Equal(t, "default", props.Get(config.InterpreterKey))
	assert.Equal(t, config.InitialInvoker, props.Get(config.InvokerKey))
	assert.Equal(t, config.DefaultPrompt, props.Get(config.PromptKey))
}

func TestLoadProperties_ConfigFile(t *testing.T) {
	setupTestMode(t)
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("shell:\n  invoker: default\n"), 0o644))

	previous := configFile
	configFile = cfg
	t.Cleanup(func() { configFile = previous })

	props, err := loadProperties(rootCmd.PersistentFlags())
	require.NoError(t, err)

	assert.Equal(t, "default", props.Get(config.InvokerKey))
	assert.Equal(t, cfg, props.ConfigFileUsed())
}

func TestExecuteBatchScript(t *testing.T) {
	props := newTestProperties(t)
	script := filepath.Join(props.Get(config.DirKey), "script.sh")
	content := "# greeting\necho hello\n\nnosuchcommand-for-test\necho done\n"
	require.NoError(t, os.WriteFile(script, []byte(content), 0o644))

	out := output.NewCaptureBuffer()
	errOut := output.NewCaptureBuffer()
	sh := shell.New(console.NewStream(strings.NewReader(""), out, errOut), props)

	require.NoError(t, executeBatchScript(context.Background(), script, sh))

	assert.Equal(t, "hello\ndone\n", out.String())
	assert.Contains(t, errOut.String(), "nosuchcommand-for-test")
	assert.True(t, sh.Exited())
}

func TestRunInteractive_EndsWithInput(t *testing.T) {
	props := newTestProperties(t)
	props.Set(config.PromptKey, "> ")

	out := output.NewCaptureBuffer()
	in := strings.NewReader("echo one\necho two\n")
	sh := shell.New(console.NewStream(in, out, output.NewCaptureBuffer()), props)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, runInteractive(ctx, sh))

	assert.Equal(t, "> one\n> two\n> ", out.String())
	assert.True(t, sh.Exited())
}
