package config

import "path/filepath"

// Snapshot is a consistent copy of the properties the shell consumes.
type Snapshot struct {
	Prompt        string
	Interpreter   string
	Invoker       string
	Cmdline       string
	Debug         bool
	History       bool
	StartupScript string
	AliasFile     string
	Home          string
	Dir           string
}

// Snapshot reads all shell properties under one lock.
func (p *Properties) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := Snapshot{
		Prompt:        p.v.GetString(PromptKey),
		Interpreter:   p.v.GetString(InterpreterKey),
		Invoker:       p.v.GetString(InvokerKey),
		Cmdline:       p.v.GetString(CmdlineKey),
		Debug:         p.v.GetBool(DebugKey),
		History:       p.v.GetBool(HistoryKey),
		StartupScript: p.v.GetString(StartupScriptKey),
		AliasFile:     p.v.GetString(AliasFileKey),
		Home:          p.v.GetString(HomeKey),
		Dir:           p.v.GetString(DirKey),
	}
	if s.StartupScript == "" && s.Home != "" {
		s.StartupScript = filepath.Join(s.Home, StartupScriptName)
	}
	return s
}
