// Package main provides the cmdshell CLI application entry point.
// cmdshell is an interactive command shell with pluggable interpreters and invokers.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"cmdshell/internal/component"
	"cmdshell/internal/config"
	"cmdshell/internal/console"
	"cmdshell/internal/logger"
	"cmdshell/internal/shell"
	"cmdshell/internal/version"
)

const (
	historyFileName = ".cmdshell_history"
	shutdownTimeout = 5 * time.Second
)

var (
	logLevel   string
	logFile    string
	configFile string
	testMode   bool
	verbose    bool
)

// flagKeys binds persistent flags to shell properties.
var flagKeys = map[string]string{
	"debug":       config.DebugKey,
	"interpreter": config.InterpreterKey,
	"invoker":     config.InvokerKey,
	"prompt":      config.PromptKey,
	"cmdline":     config.CmdlineKey,
	"alias-file":  config.AliasFileKey,
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cmdshell",
	Short: "cmdshell - interactive command shell",
	Long: `cmdshell is an interactive command shell. Command lines are parsed by a
pluggable interpreter and run by a pluggable invoker, both switchable at runtime.`,
	Run: runShell, // Default behavior is to run the interactive shell
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start interactive shell mode",
	Long:  `Start the interactive shell on the terminal, or read commands from stdin when it is not a terminal.`,
	Run:   runShell,
}

var batchCmd = &cobra.Command{
	Use:   "batch <script>",
	Short: "Execute a script file in batch mode",
	Long: `Execute a script file directly without entering interactive mode.
Every non-blank line not starting with # is run as a command; a failing line is
reported and the next one runs.`,
	Args: cobra.ExactArgs(1),
	Run:  runBatch,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version of cmdshell.`,
	Run: func(_ *cobra.Command, _ []string) {
		if verbose {
			fmt.Println(version.GetDetailedVersion())
			return
		}
		fmt.Println(version.GetFormattedVersion())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: warn]")
	flags.StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	flags.StringVar(&configFile, "config", "", "Config file [default: $XDG_CONFIG_HOME/cmdshell/config.yaml]")
	flags.BoolVar(&testMode, "test-mode", false, "Run in deterministic test mode (no .env, no terminal)")
	flags.Bool("debug", false, "Print error chains and stack traces")
	flags.String("interpreter", config.InitialInterpreter, "Initial interpreter")
	flags.String("invoker", config.InitialInvoker, "Initial invoker")
	flags.String("prompt", config.DefaultPrompt, "Prompt template ($P directory, $G '> ', $D date)")
	flags.String("cmdline", "", "Boot arguments; every cmd=<line> token is run before the prompt")
	flags.String("alias-file", "", "YAML file with aliases to load at startup")

	versionCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show build details")

	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(versionCmd)

	// Configure logger before any command execution
	cobra.OnInitialize(initLogger)
}

func initLogger() {
	if err := logger.Configure(logLevel, logFile, testMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}

// loadProperties reads the configuration and lets the given flags override it.
func loadProperties(flags *pflag.FlagSet) (*config.Properties, error) {
	props, err := config.Load(config.LoadOptions{
		ConfigFile: configFile,
		SkipDotEnv: testMode,
	})
	if err != nil {
		return nil, err
	}

	for name, key := range flagKeys {
		if err := props.BindFlag(key, flags.Lookup(name)); err != nil {
			return nil, fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	if used := props.ConfigFileUsed(); used != "" {
		logger.Debug("Loaded config file", "path", used)
	}
	return props, nil
}

// openConsole uses the terminal when stdin is one, else plain streams.
func openConsole(props *config.Properties) (console.Console, error) {
	if testMode || !term.IsTerminal(int(os.Stdin.Fd())) {
		return console.NewStream(os.Stdin, os.Stdout, os.Stderr), nil
	}

	cfg := console.TerminalConfig{}
	if home := props.Get(config.HomeKey); home != "" {
		cfg.HistoryFile = filepath.Join(home, historyFileName)
	}
	return console.NewTerminal(cfg)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runShell(cmd *cobra.Command, _ []string) {
	logger.Info("Starting cmdshell", "version", version.GetBaseVersion())

	props, err := loadProperties(cmd.Flags())
	if err != nil {
		logger.Fatal("Failed to load configuration", "error", err)
	}
	cons, err := openConsole(props)
	if err != nil {
		logger.Fatal("Failed to open console", "error", err)
	}

	ctx, stop := signalContext()
	defer stop()

	if err := runInteractive(ctx, shell.New(cons, props)); err != nil {
		logger.Fatal("Shell failed", "error", err)
	}
}

// runInteractive activates the shell plugin and waits until the session ends or
// ctx is done, then deactivates it.
func runInteractive(ctx context.Context, sh *shell.Shell) error {
	plugin := shell.NewPlugin(sh)
	components := component.NewRegistry()
	if err := components.Register(plugin.Component()); err != nil {
		return err
	}

	if err := components.ActivateAll(ctx); err != nil {
		return err
	}

	waitErr := plugin.Wait(ctx)
	if errors.Is(waitErr, context.Canceled) {
		logger.Info("Interrupted, shutting down")
		waitErr = nil
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(waitErr, components.DeactivateAll(stopCtx))
}

func runBatch(cmd *cobra.Command, args []string) {
	scriptPath := args[0]

	logger.Info("Starting cmdshell batch mode", "version", version.GetBaseVersion(), "script", scriptPath)

	if err := validateScriptFile(scriptPath); err != nil {
		logger.Fatal("Script validation failed", "error", err)
	}

	props, err := loadProperties(cmd.Flags())
	if err != nil {
		logger.Fatal("Failed to load configuration", "error", err)
	}

	ctx, stop := signalContext()
	defer stop()

	cons := console.NewStream(os.Stdin, os.Stdout, os.Stderr)
	if err := executeBatchScript(ctx, scriptPath, shell.New(cons, props)); err != nil {
		logger.Fatal("Script execution failed", "error", err)
	}

	logger.Info("Script executed successfully", "script", scriptPath)
}

func validateScriptFile(scriptPath string) error {
	info, err := os.Stat(scriptPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("script file does not exist: %s", scriptPath)
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("script path is a directory: %s", scriptPath)
	}
	return nil
}

// executeBatchScript runs the script without the interactive loop. The path is
// made absolute against the process directory before the shell resolves it.
func executeBatchScript(ctx context.Context, scriptPath string, sh *shell.Shell) error {
	defer sh.Exit()

	abs, err := filepath.Abs(scriptPath)
	if err != nil {
		return err
	}
	if err := sh.Initialize(); err != nil {
		return err
	}
	return sh.ExecuteFile(ctx, abs)
}
