package ai

import (
	"regexp"
	"strings"
)

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripReasoning removes the first <think>...</think> block from a raw model
// answer, then trims surrounding whitespace. Text without such a block is
// returned trimmed and otherwise unchanged.
func StripReasoning(s string) string {
	if loc := thinkBlock.FindStringIndex(s); loc != nil {
		s = s[:loc[0]] + s[loc[1]:]
	}
	return strings.TrimSpace(s)
}
