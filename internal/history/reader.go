package history

import (
	"io"
	"strings"
)

// Reader passes reads through from an underlying stream and reports every
// completed line to a callback. A last line without a newline is reported when
// the stream returns io.EOF.
type Reader struct {
	r      io.Reader
	record func(line string)
	line   strings.Builder
}

// NewReader wraps r so that each line read through it is handed to record.
func NewReader(r io.Reader, record func(line string)) *Reader {
	return &Reader{r: r, record: record}
}

// Read implements io.Reader.
func (h *Reader) Read(p []byte) (int, error) {
	n, err := h.r.Read(p)
	for _, b := range p[:n] {
		if b == '\n' {
			h.record(strings.TrimSuffix(h.line.String(), "\r"))
			h.line.Reset()
			continue
		}
		h.line.WriteByte(b)
	}
	if err == io.EOF && h.line.Len() > 0 {
		h.record(strings.TrimSuffix(h.line.String(), "\r"))
		h.line.Reset()
	}
	return n, err
}

// Interactive reports whether the wrapped stream is a terminal.
func (h *Reader) Interactive() bool {
	if ii, ok := h.r.(interface{ Interactive() bool }); ok {
		return ii.Interactive()
	}
	return false
}
