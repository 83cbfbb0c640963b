package output

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
)

// Printer writes semantic text to one stream. It is safe for concurrent use.
type Printer struct {
	styleProvider StyleProvider
	writer        io.Writer
	forcePlain    bool
	silent        bool
	prefix        string

	mu sync.Mutex
}

// NewPrinter creates a printer writing to w. Without WithStyles the printer is plain.
func NewPrinter(w io.Writer, options ...Option) *Printer {
	p := &Printer{writer: w}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// ForWriter creates a printer whose styling is detected from w: styled when w is
// a color terminal, plain otherwise.
func ForWriter(w io.Writer, options ...Option) *Printer {
	return NewPrinter(w, append([]Option{WithStyles(NewLipglossStyles(w))}, options...)...)
}

// Write implements io.Writer so commands can write through the printer. Plain
// printers strip escape sequences.
func (p *Printer) Write(b []byte) (int, error) {
	if p.silent {
		return len(b), nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.forcePlain {
		if _, err := io.WriteString(p.writer, ansi.Strip(string(b))); err != nil {
			return 0, err
		}
		return len(b), nil
	}
	return p.writer.Write(b)
}

// Print outputs text without any semantic styling.
func (p *Printer) Print(text string) {
	p.output(SemanticPlain, text, false)
}

// Printf outputs formatted text without any semantic styling.
func (p *Printer) Printf(format string, args ...interface{}) {
	p.output(SemanticPlain, fmt.Sprintf(format, args...), false)
}

// Println outputs text with a newline without any semantic styling.
func (p *Printer) Println(text string) {
	p.output(SemanticPlain, text, true)
}

// Info outputs informational text.
func (p *Printer) Info(text string) {
	p.output(SemanticInfo, text, true)
}

// Success outputs success text.
func (p *Printer) Success(text string) {
	p.output(SemanticSuccess, text, true)
}

// Warning outputs warning text.
func (p *Printer) Warning(text string) {
	p.output(SemanticWarning, text, true)
}

// Error outputs an error line.
func (p *Printer) Error(text string) {
	p.output(SemanticError, text, true)
}

// Errorf outputs a formatted error line.
func (p *Printer) Errorf(format string, args ...interface{}) {
	p.output(SemanticError, fmt.Sprintf(format, args...), true)
}

// Trace outputs diagnostic detail, one styled block.
func (p *Printer) Trace(text string) {
	p.output(SemanticTrace, text, true)
}

// Command outputs a command name.
func (p *Printer) Command(text string) {
	p.output(SemanticCommand, text, false)
}

// Bold outputs text with bold styling.
func (p *Printer) Bold(text string) {
	p.output(SemanticBold, text, false)
}

func (p *Printer) output(semantic SemanticType, text string, addNewline bool) {
	if p.silent {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var finalText string
	if p.IsStylable() && semantic != SemanticPlain {
		finalText = p.styleProvider.GetStyle(string(semantic)).Render(text)
	} else {
		finalText = text
	}
	if p.forcePlain {
		finalText = ansi.Strip(finalText)
	}
	if addNewline && !strings.HasSuffix(finalText, "\n") {
		finalText += "\n"
	}
	if p.prefix != "" {
		finalText = p.prefix + finalText
	}

	_, _ = fmt.Fprint(p.writer, finalText)
}

// IsStylable returns true if the printer can apply styles.
func (p *Printer) IsStylable() bool {
	return !p.forcePlain && p.styleProvider != nil && p.styleProvider.IsAvailable()
}

// Writer returns the underlying stream.
func (p *Printer) Writer() io.Writer {
	return p.writer
}

// String returns a string representation for debugging.
func (p *Printer) String() string {
	hasStyles := "no"
	if p.IsStylable() {
		hasStyles = "yes"
	}
	return fmt.Sprintf("Printer{styles: %s, writer: %T}", hasStyles, p.writer)
}
