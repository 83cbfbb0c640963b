// Package history provides the line archives kept by a shell session: one for
// command lines and one per interactive command for the input that command reads.
package history

import (
	"context"
	"sync"
)

// History is an append-only archive of input lines. Only an immediate repeat of
// the previous line is suppressed.
type History struct {
	mu    sync.RWMutex
	lines []string
}

// New creates an empty history.
func New() *History {
	return &History{}
}

// Add appends line unless it equals the last accepted line. It reports whether the
// line was stored.
func (h *History) Add(line string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.lines); n > 0 && h.lines[n-1] == line {
		return false
	}
	h.lines = append(h.lines, line)
	return true
}

// Len returns the number of stored lines.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.lines)
}

// Line returns the line at index i, oldest first.
func (h *History) Line(i int) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if i < 0 || i >= len(h.lines) {
		return "", false
	}
	return h.lines[i], true
}

// Last returns the most recent line.
func (h *History) Last() (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.lines) == 0 {
		return "", false
	}
	return h.lines[len(h.lines)-1], true
}

// Lines returns a copy of all stored lines, oldest first.
func (h *History) Lines() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]string(nil), h.lines...)
}

type contextKey struct{}

// NewContext returns a context carrying h as the application input history for
// commands launched under it.
func NewContext(ctx context.Context, h *History) context.Context {
	return context.WithValue(ctx, contextKey{}, h)
}

// FromContext returns the application input history carried by ctx, or nil.
func FromContext(ctx context.Context) *History {
	h, _ := ctx.Value(contextKey{}).(*History)
	return h
}
