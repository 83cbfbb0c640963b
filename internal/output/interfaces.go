// Package output renders user-facing text on the console streams.
// Styling is optional: a Printer without an available StyleProvider writes plain text.
package output

// StyleProvider supplies styles by semantic type.
type StyleProvider interface {
	// GetStyle returns the style for a semantic type such as "error" or "info".
	GetStyle(semantic string) TextStyle

	// IsAvailable reports whether styled output can be displayed.
	IsAvailable() bool
}

// TextStyle renders text with styling.
type TextStyle interface {
	Render(text string) string
}

// SemanticType defines the semantic meaning of output for consistent styling.
type SemanticType string

const (
	// SemanticPlain represents plain text without any semantic meaning.
	SemanticPlain SemanticType = "plain"
	// SemanticInfo represents informational text.
	SemanticInfo SemanticType = "info"
	// SemanticSuccess represents success or completion text.
	SemanticSuccess SemanticType = "success"
	// SemanticWarning represents warning text.
	SemanticWarning SemanticType = "warning"
	// SemanticError represents error text.
	SemanticError SemanticType = "error"
	// SemanticCommand represents command names.
	SemanticCommand SemanticType = "command"
	// SemanticBold represents bold text styling.
	SemanticBold SemanticType = "bold"
	// SemanticTrace represents debug traces such as error chains and stacks.
	SemanticTrace SemanticType = "trace"
)
