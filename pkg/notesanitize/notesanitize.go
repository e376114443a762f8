// Package notesanitize cleans note text before it reaches the tokenizer or
// the text-store sidecar file, so control characters from copy-pasted or
// piped input never end up embedded in a persisted note.
package notesanitize

import "strings"

// Clean replaces control characters (keeping tab, newline, and carriage
// return) with a space. It leaves all other text, including non-ASCII
// scripts, untouched.
func Clean(text string) string {
	if len(text) == 0 {
		return text
	}

	var result strings.Builder
	result.Grow(len(text))

	for _, r := range text {
		if (r >= 0x00 && r <= 0x08) || r == 0x0B || r == 0x0C || (r >= 0x0E && r <= 0x1F) {
			result.WriteRune(' ')
			continue
		}
		result.WriteRune(r)
	}

	return result.String()
}
