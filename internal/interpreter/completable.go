package interpreter

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cmdshell/pkg/shelltypes"
)

// wordCompletion completes the last word of a partial line, either as a command
// name or as a file name.
type wordCompletion struct {
	prefix  string
	word    string
	command bool
}

func newWordCompletion(partial string, operators bool) *wordCompletion {
	prefix, word, command := splitPartial(partial, operators)
	return &wordCompletion{prefix: prefix, word: word, command: command}
}

// splitPartial returns the text before the word under the cursor, the word itself,
// and whether the word is in command position. With operators set, | ; & start a
// new command and < > introduce a file name.
func splitPartial(s string, operators bool) (prefix, word string, command bool) {
	start := 0
	words := 0
	inWord := false
	var quote rune

	for i, r := range s {
		if quote != 0 {
			if r == quote {
				quote = 0
			}
			continue
		}
		switch {
		case r == '\'' || r == '"':
			quote = r
			if !inWord {
				inWord = true
				start = i
			}
		case r == ' ' || r == '\t':
			if inWord {
				words++
				inWord = false
			}
			start = i + 1
		case operators && (r == '|' || r == ';' || r == '&'):
			inWord = false
			words = 0
			start = i + 1
		case operators && (r == '<' || r == '>'):
			inWord = false
			words++
			start = i + 1
		default:
			if !inWord {
				inWord = true
				start = i
			}
		}
	}
	return s[:start], s[start:], words == 0
}

func (w *wordCompletion) Complete(info *shelltypes.CompletionInfo, sh shelltypes.Shell) error {
	var candidates []string
	if w.command && !strings.ContainsRune(w.word, '/') {
		candidates = matchNames(sh.CommandNames(), w.word)
	} else {
		var err error
		candidates, err = matchFiles(sh.WorkingDir(), w.word)
		if err != nil {
			return err
		}
	}

	switch len(candidates) {
	case 0:
		return nil
	case 1:
		completed := candidates[0]
		if !strings.HasSuffix(completed, "/") {
			completed += " "
		}
		info.SetCompleted(w.prefix + completed)
		return nil
	}

	if common := commonPrefix(candidates); len(common) > len(w.word) {
		info.SetCompleted(w.prefix + common)
	}
	return sh.List(candidates)
}

func matchNames(names []string, word string) []string {
	var matches []string
	for _, name := range names {
		if strings.HasPrefix(name, word) {
			matches = append(matches, name)
		}
	}
	return matches
}

// matchFiles lists entries of the directory part of word that start with its base
// part. Directories get a trailing slash. Hidden entries need an explicit dot.
func matchFiles(wd, word string) ([]string, error) {
	dirPart, base := "", word
	if i := strings.LastIndex(word, "/"); i >= 0 {
		dirPart, base = word[:i+1], word[i+1:]
	}

	dir := dirPart
	switch {
	case dir == "":
		dir = wd
	case !filepath.IsAbs(dir):
		dir = filepath.Join(wd, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var matches []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, base) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
			continue
		}
		if entry.IsDir() {
			name += "/"
		}
		matches = append(matches, dirPart+name)
	}
	sort.Strings(matches)
	return matches, nil
}

func commonPrefix(items []string) string {
	if len(items) == 0 {
		return ""
	}
	prefix := items[0]
	for _, item := range items[1:] {
		for !strings.HasPrefix(item, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}
