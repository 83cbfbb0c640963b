package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// LipglossStyles is a StyleProvider bound to the color profile of one stream.
type LipglossStyles struct {
	renderer *lipgloss.Renderer
	styles   map[string]lipgloss.Style
}

// NewLipglossStyles detects the color profile of w and builds the default theme.
func NewLipglossStyles(w io.Writer, opts ...termenv.OutputOption) *LipglossStyles {
	r := lipgloss.NewRenderer(w, opts...)
	return &LipglossStyles{
		renderer: r,
		styles: map[string]lipgloss.Style{
			string(SemanticInfo):    r.NewStyle().Foreground(lipgloss.Color("39")),
			string(SemanticSuccess): r.NewStyle().Foreground(lipgloss.Color("46")),
			string(SemanticWarning): r.NewStyle().Foreground(lipgloss.Color("214")),
			string(SemanticError):   r.NewStyle().Foreground(lipgloss.Color("196")),
			string(SemanticCommand): r.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
			string(SemanticBold):    r.NewStyle().Bold(true),
			string(SemanticTrace):   r.NewStyle().Foreground(lipgloss.Color("240")),
		},
	}
}

// GetStyle implements StyleProvider.
func (l *LipglossStyles) GetStyle(semantic string) TextStyle {
	if style, ok := l.styles[semantic]; ok {
		return lipglossStyle{style}
	}
	return lipglossStyle{l.renderer.NewStyle()}
}

// lipglossStyle adapts lipgloss's variadic Render to TextStyle.
type lipglossStyle struct {
	s lipgloss.Style
}

// Render implements TextStyle.
func (l lipglossStyle) Render(text string) string {
	return l.s.Render(text)
}

// IsAvailable reports whether the stream supports any color.
func (l *LipglossStyles) IsAvailable() bool {
	return l.renderer.ColorProfile() != termenv.Ascii
}

// Profile returns the detected color profile.
func (l *LipglossStyles) Profile() termenv.Profile {
	return l.renderer.ColorProfile()
}

// HasDarkBackground reports the detected terminal background.
func (l *LipglossStyles) HasDarkBackground() bool {
	return l.renderer.HasDarkBackground()
}
