package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateTokens(t *testing.T) {
	cases := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"under limit unchanged", "one two  three", 5, "one two  three"},
		{"exact limit unchanged", "one two three", 3, "one two three"},
		{"cut keeps inner spacing", "one  two\tthree four", 3, "one  two\tthree"},
		{"leading space", "  one two three", 2, "  one two"},
		{"trailing space trimmed", "one two   three", 2, "one two"},
		{"zero max", "one two", 0, ""},
		{"empty", "", 3, ""},
		{"multibyte", "héllo wörld ñandú 日本語", 3, "héllo wörld ñandú"},
		{"cjk without spaces is one token", "日本語のコメント です", 1, "日本語のコメント"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TruncateTokens(tc.in, tc.max)
			assert.Equal(t, tc.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestTruncateTokens_Deterministic(t *testing.T) {
	text := strings.Repeat("émoji 🎉 word ", 400)
	first := TruncateTokens(text, 500)
	second := TruncateTokens(text, 500)

	assert.Equal(t, first, second)
	assert.Equal(t, 500, CountTokens(first))
	assert.True(t, utf8.ValidString(first))
	assert.True(t, strings.HasPrefix(text, first))
}
