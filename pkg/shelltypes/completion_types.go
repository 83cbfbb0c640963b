package shelltypes

// CompletionInfo carries the outcome of one completion call.
type CompletionInfo struct {
	completed string
	items     []string
	newPrompt bool
}

// NewCompletionInfo returns a record that asks for a prompt repaint until told
// otherwise.
func NewCompletionInfo() *CompletionInfo {
	return &CompletionInfo{newPrompt: true}
}

// Completed returns the completed text.
func (c *CompletionInfo) Completed() string {
	return c.completed
}

// SetCompleted sets the completed text.
func (c *CompletionInfo) SetCompleted(text string) {
	c.completed = text
}

// Items returns the candidate list. It is nil unless more than one candidate exists.
func (c *CompletionInfo) Items() []string {
	return c.items
}

// SetItems records candidates. A single candidate is not a list and is dropped.
func (c *CompletionInfo) SetItems(items []string) {
	if len(items) <= 1 {
		c.items = nil
		return
	}
	c.items = append([]string(nil), items...)
}

// HasItems reports whether a candidate list must be displayed.
func (c *CompletionInfo) HasItems() bool {
	return len(c.items) > 0
}

// NewPrompt reports whether the caller has to repaint the prompt.
func (c *CompletionInfo) NewPrompt() bool {
	return c.newPrompt
}

// SetNewPrompt sets the repaint flag.
func (c *CompletionInfo) SetNewPrompt(v bool) {
	c.newPrompt = v
}
