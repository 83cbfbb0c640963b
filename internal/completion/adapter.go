package completion

import (
	"strings"

	"github.com/chzyer/readline"
)

const wordBreaks = " \t|<>;&"

// Adapter drives an Engine from readline's TAB handling.
type Adapter struct {
	engine *Engine
}

var _ readline.AutoCompleter = (*Adapter)(nil)

// NewAdapter wraps engine.
func NewAdapter(engine *Engine) *Adapter {
	return &Adapter{engine: engine}
}

// Do implements readline.AutoCompleter. Candidate lists are returned as suffixes of
// the word under the cursor; a direct completion is returned as the single text to
// insert at the cursor.
func (a *Adapter) Do(line []rune, pos int) ([][]rune, int) {
	if pos > len(line) {
		pos = len(line)
	}
	partial := string(line[:pos])
	info := a.engine.Complete(partial)

	if info.HasItems() {
		word := lastWord(partial)
		var suggestions [][]rune
		for _, item := range info.Items() {
			if strings.HasPrefix(item, word) {
				suggestions = append(suggestions, []rune(strings.TrimPrefix(item, word)))
			}
		}
		return suggestions, len([]rune(word))
	}

	completed := info.Completed()
	if completed != partial && strings.HasPrefix(completed, partial) {
		return [][]rune{[]rune(strings.TrimPrefix(completed, partial))}, 0
	}
	return nil, 0
}

func lastWord(s string) string {
	if i := strings.LastIndexAny(s, wordBreaks); i >= 0 {
		return s[i+1:]
	}
	return s
}
