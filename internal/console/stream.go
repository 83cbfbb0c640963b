package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// Stream is a console over plain streams, used when stdin is not a terminal and in
// tests. End of the input stream closes the console.
type Stream struct {
	closeNotifier

	in     *bufio.Reader
	out    io.Writer
	err    io.Writer
	closer io.Closer
}

var _ Console = (*Stream)(nil)

// NewStream creates a console reading lines from in. If in is an io.Closer it is
// closed with the console.
func NewStream(in io.Reader, out, errOut io.Writer) *Stream {
	s := &Stream{
		in:  bufio.NewReader(in),
		out: out,
		err: errOut,
	}
	if c, ok := in.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// ReadLine writes prompt and reads up to the next newline.
func (s *Stream) ReadLine(prompt string) (string, error) {
	if s.isClosed() {
		return "", ErrClosed
	}
	if prompt != "" {
		fmt.Fprint(s.out, prompt)
	}

	line, err := s.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r"), nil
		}
		_ = s.Close()
		if errors.Is(err, io.EOF) {
			return "", ErrClosed
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// In returns the remaining input stream.
func (s *Stream) In() io.Reader { return s.in }

// Out returns the output stream.
func (s *Stream) Out() io.Writer { return s.out }

// Err returns the error stream.
func (s *Stream) Err() io.Writer { return s.err }

// SetCompleter is a no-op: streams have no line editing.
func (s *Stream) SetCompleter(readline.AutoCompleter) {}

// ClearSoftEOF is a no-op: stream end is permanent.
func (s *Stream) ClearSoftEOF() {}

// Close closes the input (if closable) and notifies listeners once.
func (s *Stream) Close() error {
	listeners, first := s.markClosed()
	if !first {
		return nil
	}
	var err error
	if s.closer != nil {
		err = s.closer.Close()
	}
	notify(listeners)
	return err
}
