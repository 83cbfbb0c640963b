package interpreter

import (
	"context"
	"strings"

	"github.com/kballard/go-shellquote"

	"cmdshell/pkg/shelltypes"
)

// Default runs exactly one command per line. Quotes and backslashes group words;
// no other shell syntax is recognised.
type Default struct{}

// NewDefault creates the default interpreter.
func NewDefault() *Default {
	return &Default{}
}

// Interpret records line in the command history and invokes its command.
func (d *Default) Interpret(ctx context.Context, sh shelltypes.Shell, line string) error {
	words, err := shellquote.Split(line)
	if err != nil {
		return &shelltypes.ParseError{Line: line, Err: err}
	}
	if len(words) == 0 {
		return nil
	}

	sh.AddCommandToHistory(strings.TrimSpace(line))

	_, err = sh.Invoke(ctx, &shelltypes.CommandLine{
		Name:   words[0],
		Args:   words[1:],
		Stdin:  sh.InputStream(ctx),
		Stdout: sh.Out(),
		Stderr: sh.Err(),
	})
	return err
}

// ParsePartial completes the word under the cursor.
func (d *Default) ParsePartial(_ shelltypes.Shell, partial string) (shelltypes.Completable, error) {
	if _, err := shellquote.Split(partial); err != nil {
		return nil, &shelltypes.ParseError{Line: partial, Err: err}
	}
	return newWordCompletion(partial, false), nil
}
