// Package config holds the process-wide properties of cmdshell.
//
// Properties are read by the shell loop once per iteration through Snapshot, so
// changing a property (with the set command, the environment or a config file
// reload) takes effect before the next command without restarting the shell. The
// shell also writes properties, e.g. to persist the name of a strategy it switched to.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Property keys.
const (
	PromptKey        = "shell.prompt"
	InterpreterKey   = "shell.interpreter"
	InvokerKey       = "shell.invoker"
	CmdlineKey       = "shell.cmdline"
	DebugKey         = "shell.debug"
	HistoryKey       = "shell.history"
	StartupScriptKey = "shell.startup_script"
	AliasFileKey     = "shell.alias_file"
	HomeKey          = "user.home"
	DirKey           = "user.dir"
)

// Defaults.
const (
	DefaultPrompt      = "cmdshell $P$G"
	InitialInterpreter = "redirecting"
	InitialInvoker     = "thread"
	FallbackStrategy   = "default"
	StartupScriptName  = "shell.ini"
	EnvPrefix          = "CMDSHELL"
)

// Properties is a concurrency-safe view over a viper instance.
type Properties struct {
	mu sync.RWMutex
	v  *viper.Viper
}

// New creates properties holding only the defaults and environment overrides.
func New() *Properties {
	v := viper.New()

	home, _ := os.UserHomeDir()
	wd, _ := os.Getwd()

	v.SetDefault(PromptKey, DefaultPrompt)
	v.SetDefault(InterpreterKey, InitialInterpreter)
	v.SetDefault(InvokerKey, InitialInvoker)
	v.SetDefault(CmdlineKey, "")
	v.SetDefault(DebugKey, false)
	v.SetDefault(HistoryKey, true)
	v.SetDefault(StartupScriptKey, "")
	v.SetDefault(AliasFileKey, "")
	v.SetDefault(HomeKey, home)
	v.SetDefault(DirKey, wd)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Properties{v: v}
}

// LoadOptions controls Load.
type LoadOptions struct {
	// ConfigFile is an explicit config file; it must exist when set.
	ConfigFile string
	// ConfigDir is searched for config.{yaml,toml,json} and .env. Defaults to
	// $XDG_CONFIG_HOME/cmdshell.
	ConfigDir string
	// WorkDir is searched for a local .env. Defaults to the current directory.
	WorkDir string
	// SkipDotEnv disables .env loading (test mode).
	SkipDotEnv bool
}

// Load builds properties from defaults, .env files, the environment and an
// optional config file. Environment variables already set are never replaced by
// .env values.
func Load(opts LoadOptions) (*Properties, error) {
	if opts.ConfigDir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			opts.ConfigDir = filepath.Join(dir, "cmdshell")
		}
	}
	if opts.WorkDir == "" {
		if wd, err := os.Getwd(); err == nil {
			opts.WorkDir = wd
		}
	}

	if !opts.SkipDotEnv {
		if err := loadDotEnv(opts.WorkDir, opts.ConfigDir); err != nil {
			return nil, err
		}
	}

	p := New()

	if opts.ConfigFile != "" {
		p.v.SetConfigFile(opts.ConfigFile)
	} else {
		if opts.ConfigDir == "" {
			return p, nil
		}
		p.v.AddConfigPath(opts.ConfigDir)
		p.v.SetConfigName("config")
	}

	if err := p.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile == "" && errors.As(err, &notFound) {
			return p, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return p, nil
}

func loadDotEnv(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Get returns the string value of key.
func (p *Properties) Get(key string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.v.GetString(key)
}

// GetBool returns the boolean value of key. Unparseable values are false.
func (p *Properties) GetBool(key string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.v.GetBool(key)
}

// Set overrides key for the rest of the process lifetime.
func (p *Properties) Set(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.v.Set(key, value)
}

// BindFlag makes flag the source of key whenever the flag was given.
func (p *Properties) BindFlag(key string, flag *pflag.Flag) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.v.BindPFlag(key, flag)
}

// Keys returns every known key in sorted order.
func (p *Properties) Keys() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	keys := p.v.AllKeys()
	sort.Strings(keys)
	return keys
}

// All returns every known key with its string value.
func (p *Properties) All() map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	result := make(map[string]string)
	for _, key := range p.v.AllKeys() {
		result[key] = p.v.GetString(key)
	}
	return result
}

// ConfigFileUsed returns the config file that was read, if any.
func (p *Properties) ConfigFileUsed() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.v.ConfigFileUsed()
}
