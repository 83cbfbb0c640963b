package builtin

import (
	"context"
	"io"
	"strings"

	"cmdshell/pkg/shelltypes"
)

// EchoCommand writes its arguments separated by spaces.
type EchoCommand struct{}

// Name returns the command name "echo" for registration and lookup.
func (c *EchoCommand) Name() string {
	return "echo"
}

// Description returns a brief description of what the echo command does.
func (c *EchoCommand) Description() string {
	return "Write arguments to standard output"
}

// Usage returns the syntax for the echo command.
func (c *EchoCommand) Usage() string {
	return "echo [-n] [-e] [text ...]"
}

// Execute writes the arguments. -n suppresses the trailing newline and -e
// interprets backslash escapes.
func (c *EchoCommand) Execute(_ context.Context, _ shelltypes.Shell, cl *shelltypes.CommandLine) (int, error) {
	args := cl.Args
	noNewline, escapes := false, false

flags:
	for len(args) > 0 {
		switch args[0] {
		case "-n":
			noNewline = true
		case "-e":
			escapes = true
		case "-ne", "-en":
			noNewline, escapes = true, true
		default:
			break flags
		}
		args = args[1:]
	}

	text := strings.Join(args, " ")
	if escapes {
		text = interpretEscapeSequences(text)
	}
	if !noNewline {
		text += "\n"
	}
	if _, err := io.WriteString(cl.Stdout, text); err != nil {
		return 1, err
	}
	return 0, nil
}

// interpretEscapeSequences converts escape sequences in a string to their actual characters
func interpretEscapeSequences(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case '\'':
			b.WriteByte('\'')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
