package builtin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"cmdshell/pkg/shelltypes"
)

// sniffSize is how much of a file is inspected for binary content.
const sniffSize = 512

// CatCommand concatenates files, or standard input, to standard output.
type CatCommand struct{}

// Name returns the command name "cat" for registration and lookup.
func (c *CatCommand) Name() string {
	return "cat"
}

// Description returns a brief description of what the cat command does.
func (c *CatCommand) Description() string {
	return "Print text files or standard input"
}

// Usage returns the syntax for the cat command.
func (c *CatCommand) Usage() string {
	return "cat [file | - ...]"
}

// Execute copies every operand to stdout. "-" or no operand reads stdin. A file
// that cannot be printed fails the command once the remaining files are done.
func (c *CatCommand) Execute(ctx context.Context, sh shelltypes.Shell, cl *shelltypes.CommandLine) (int, error) {
	operands := cl.Args
	if len(operands) == 0 {
		operands = []string{"-"}
	}

	var errs []error
	for _, operand := range operands {
		if err := ctx.Err(); err != nil {
			return 1, err
		}
		if operand == "-" {
			if _, err := io.Copy(cl.Stdout, cl.Stdin); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if err := c.printFile(sh, operand, cl.Stdout); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return 1, errors.Join(errs...)
	}
	return 0, nil
}

func (c *CatCommand) printFile(sh shelltypes.Shell, name string, w io.Writer) error {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(sh.WorkingDir(), path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to access file '%s': %w", name, err)
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to access file '%s': %w", name, err)
	}
	if info.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", name)
	}

	head := make([]byte, sniffSize)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("failed to read file '%s': %w", name, err)
	}
	head = head[:n]
	if !isTextFile(head, n == sniffSize) {
		return fmt.Errorf("'%s' appears to be a binary file", name)
	}

	if _, err := w.Write(head); err != nil {
		return err
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("error reading file '%s': %w", name, err)
	}
	return nil
}

// isTextFile performs basic binary detection on the start of a file. truncated
// allows an incomplete UTF-8 sequence at the end of content.
func isTextFile(content []byte, truncated bool) bool {
	nonPrintable := 0
	for _, b := range content {
		if b == 0 {
			return false
		}
		if b < 32 && b != '\n' && b != '\r' && b != '\t' {
			nonPrintable++
		}
	}

	if truncated {
		for i := 0; i < utf8.UTFMax && len(content) > 0 && !utf8.Valid(content); i++ {
			content = content[:len(content)-1]
		}
	}
	if !utf8.Valid(content) {
		return false
	}

	return len(content) == 0 || float64(nonPrintable)/float64(len(content)) <= 0.3
}
