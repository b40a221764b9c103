package topicgeneration

import (
	"strings"
	"unicode"

	"github.com/bbalet/stopwords"
)

const DEFAULT_MIN_WORD_LENGTH = 3

// Preprocessor turns a comment into the lower-cased content words the model sees.
type Preprocessor struct {
	Language      string
	MinWordLength int
}

func (p Preprocessor) Tokenize(text string) []string {
	lang := p.Language
	if lang == "" {
		lang = "en"
	}
	minLen := p.MinWordLength
	if minLen <= 0 {
		minLen = DEFAULT_MIN_WORD_LENGTH
	}

	cleaned := stopwords.CleanString(text, lang, true)

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		word = strings.ToLower(strings.Trim(word, "-_'"))
		if len([]rune(word)) < minLen || !hasLetter(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

func hasLetter(word string) bool {
	for _, r := range word {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
