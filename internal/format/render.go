package format

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Default renderer: fmt.Sprintf, cut to Limit bytes (0 = no limit)
type SprintfRenderer struct {
	Limit int
}

func (renderer SprintfRenderer) Render(format string, args ...any) (text string) {
	// Skip formatting when there is nothing to substitute
	if len(args) == 0 || !strings.Contains(format, "%") {
		text = format
	} else {
		text = fmt.Sprintf(format, args...)
	}

	text = truncateString(text, renderer.Limit)
	return
}

// Cuts text to at most limit bytes on a rune boundary
func truncateString(text string, limit int) (truncated string) {
	truncated = text
	if limit <= 0 || len(text) <= limit {
		return
	}

	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	truncated = text[:cut]
	return
}

// Summary text emitted in place of suppressed duplicates
func RepeatText(count int) (text string) {
	text = fmt.Sprintf("last message repeated %d times", count)
	return
}
