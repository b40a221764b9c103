package utils

import (
	"strings"
	"unicode"
)

// TruncateTokens keeps the first maxTokens whitespace-delimited tokens of text.
// The cut is made at a token boundary of the original string, so spacing inside
// the kept prefix is preserved and runes are never split.
func TruncateTokens(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}

	tokens := 0
	inToken := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			inToken = false
			continue
		}
		if !inToken {
			if tokens == maxTokens {
				return strings.TrimRightFunc(text[:i], unicode.IsSpace)
			}
			tokens++
			inToken = true
		}
	}
	return text
}

// CountTokens counts whitespace-delimited tokens the same way TruncateTokens does.
func CountTokens(text string) int {
	return len(strings.FieldsFunc(text, unicode.IsSpace))
}
