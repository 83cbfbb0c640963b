package shell

import (
	"strings"
	"time"
)

// promptDateLayout renders $D.
const promptDateLayout = "Jan 2, 2006 3:04:05 PM"

// expandPrompt expands a prompt template. $P is the working directory, $G is
// "> " and $D the current date and time. $ followed by any other character
// produces nothing, and a trailing $ is dropped. Everything else is literal.
func expandPrompt(template, dir string, now time.Time) string {
	var b strings.Builder
	directive := false

	for _, r := range template {
		if !directive {
			if r == '$' {
				directive = true
			} else {
				b.WriteRune(r)
			}
			continue
		}

		directive = false
		switch r {
		case 'P':
			b.WriteString(dir)
		case 'G':
			b.WriteString("> ")
		case 'D':
			b.WriteString(now.Format(promptDateLayout))
		}
	}
	return b.String()
}

// Prompt returns the expanded prompt for the current configuration.
func (s *Shell) Prompt() string {
	return expandPrompt(s.props.Snapshot().Prompt, s.WorkingDir(), s.now())
}
