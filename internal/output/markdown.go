package output

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const markdownWrap = 80

// Markdown renders md through glamour and writes it. Plain printers use the notty
// style; styled printers pick dark or light from the terminal background. If
// rendering fails the source is written as is.
func (p *Printer) Markdown(md string) {
	rendered, err := p.renderMarkdown(md)
	if err != nil {
		rendered = md
	}
	p.Print(strings.TrimLeft(rendered, "\n"))
}

func (p *Printer) renderMarkdown(md string) (string, error) {
	style := "notty"
	if p.IsStylable() {
		style = "dark"
		if themed, ok := p.styleProvider.(interface{ HasDarkBackground() bool }); ok && !themed.HasDarkBackground() {
			style = "light"
		}
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(markdownWrap),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
