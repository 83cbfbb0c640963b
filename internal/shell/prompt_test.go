package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cmdshell/internal/config"
)

func TestExpandPrompt(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"directory and greater", "$P$G", "/home/user> "},
		{"literal text", "cmdshell $P$G", "cmdshell /home/user> "},
		{"date", "[$D]", "[Mar 5, 2024 2:07:09 PM]"},
		{"unknown directive swallowed", "a$Zb", "ab"},
		{"dollar swallows dollar", "$$P", "P"},
		{"trailing dollar dropped", "x$", "x"},
		{"lower case is not a directive", "$p", ""},
		{"empty", "", ""},
		{"no directives", "plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandPrompt(tt.template, "/home/user", testClock))
		})
	}
}

func TestPrompt_UsesCurrentProperties(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "cmdshell "+f.home+"> ", f.shell.Prompt())

	f.props.Set(config.PromptKey, "$D$G")
	assert.Equal(t, "Mar 5, 2024 2:07:09 PM> ", f.shell.Prompt())
}
