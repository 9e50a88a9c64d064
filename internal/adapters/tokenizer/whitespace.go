package tokenizer

import (
	"strings"
	"unicode/utf8"

	"github.com/baditaflorin/go_duplicate_questions/internal/ports"
)

// WhitespaceTokenizer splits on runs of Unicode white space and lowercases each token.
type WhitespaceTokenizer struct{}

// NewWhitespaceTokenizer creates the default tokenizer.
func NewWhitespaceTokenizer() ports.Tokenizer {
	return &WhitespaceTokenizer{}
}

// Tokenize returns every token of text, lowercased.
func (t *WhitespaceTokenizer) Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// TokenizeFiltered returns the lowercased tokens of text that have at least minLen code points.
func (t *WhitespaceTokenizer) TokenizeFiltered(text string, minLen int) []string {
	fields := t.Tokenize(text)
	if minLen <= 1 {
		return fields
	}
	kept := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minLen {
			kept = append(kept, f)
		}
	}
	return kept
}
