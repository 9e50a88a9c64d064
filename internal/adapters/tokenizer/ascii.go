package tokenizer

import (
	"github.com/baditaflorin/go_duplicate_questions/internal/pool"
	"github.com/baditaflorin/go_duplicate_questions/internal/ports"
)

// ASCIITokenizer uses a precomputed lowercase table for pure ASCII input and
// falls back to WhitespaceTokenizer for anything else. Output is identical.
type ASCIITokenizer struct {
	lower    [128]byte
	space    [128]bool
	bufPool  *pool.BufferPool
	fallback *WhitespaceTokenizer
}

// NewASCIITokenizer creates a tokenizer with precomputed ASCII tables.
func NewASCIITokenizer() ports.Tokenizer {
	t := &ASCIITokenizer{
		bufPool:  pool.NewBufferPool(4096),
		fallback: &WhitespaceTokenizer{},
	}
	for i := 0; i < 128; i++ {
		c := byte(i)
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		t.lower[i] = c
	}
	// Same set strings.Fields treats as ASCII white space.
	for _, c := range []byte{'\t', '\n', '\v', '\f', '\r', ' '} {
		t.space[c] = true
	}
	return t
}

// Tokenize returns every token of text, lowercased.
func (t *ASCIITokenizer) Tokenize(text string) []string {
	return t.TokenizeFiltered(text, 0)
}

// TokenizeFiltered returns the lowercased tokens of text that have at least minLen characters.
func (t *ASCIITokenizer) TokenizeFiltered(text string, minLen int) []string {
	if len(text) == 0 {
		return []string{}
	}
	if !isASCII(text) {
		return t.fallback.TokenizeFiltered(text, minLen)
	}

	buf := t.bufPool.Get()
	defer t.bufPool.Put(buf)

	b := *buf
	for i := 0; i < len(text); i++ {
		b = append(b, t.lower[text[i]])
	}
	*buf = b

	tokens := make([]string, 0, len(b)/5+1)
	start := -1
	for i := 0; i <= len(b); i++ {
		if i < len(b) && !t.space[b[i]] {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			if i-start >= minLen {
				tokens = append(tokens, string(b[start:i]))
			}
			start = -1
		}
	}
	return tokens
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// Type selects a tokenizer implementation.
type Type int

const (
	// WhitespaceType is the Unicode-aware default.
	WhitespaceType Type = iota
	// ASCIIType adds a table-driven fast path for ASCII input.
	ASCIIType
)

// New creates a tokenizer of the given type.
func New(tokenizerType Type) ports.Tokenizer {
	switch tokenizerType {
	case ASCIIType:
		return NewASCIITokenizer()
	default:
		return NewWhitespaceTokenizer()
	}
}
