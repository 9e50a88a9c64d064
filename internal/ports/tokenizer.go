package ports

// Tokenizer splits text into lowercased word tokens.
type Tokenizer interface {
	// Tokenize returns every whitespace-delimited token, lowercased.
	Tokenize(text string) []string
	// TokenizeFiltered behaves like Tokenize but drops tokens shorter than minLen code points.
	TokenizeFiltered(text string, minLen int) []string
}
