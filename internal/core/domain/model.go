package domain

import "errors"

// CorpusItem is an existing question available for comparison.
type CorpusItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// SimilarityResult is a corpus item that scored at or above the threshold.
type SimilarityResult struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Similarity int    `json:"similarity"`
}

// Default option values.
const (
	DefaultMinLength           = 20
	DefaultStopWordMinLength   = 4
	DefaultSimilarityThreshold = 60
	DefaultMaxResults          = 3
)

var (
	ErrNegativeMinLength      = errors.New("minLength cannot be negative")
	ErrNegativeStopWordLength = errors.New("stopWordMinLength cannot be negative")
	ErrInvalidThreshold       = errors.New("similarityThreshold must be between 0 and 100")
	ErrInvalidMaxResults      = errors.New("maxResults must be greater than 0")
)

// Options controls candidate rejection, token filtering, thresholding and the result cap.
type Options struct {
	// MinLength is the shortest candidate, in code points, that is scanned at all.
	MinLength int `yaml:"min_length"`
	// StopWordMinLength drops candidate tokens with fewer code points.
	StopWordMinLength int `yaml:"stop_word_min_length"`
	// SimilarityThreshold is the minimum integer percentage kept.
	SimilarityThreshold int `yaml:"similarity_threshold"`
	// MaxResults caps the returned matches.
	MaxResults int `yaml:"max_results"`
	// FilterCorpusTokens applies the stop-word filter to corpus items as well.
	// Off by default: only the candidate is filtered, so identical texts that
	// contain short words score below 100.
	FilterCorpusTokens bool `yaml:"filter_corpus_tokens"`
}

// DefaultOptions returns the default engine options.
func DefaultOptions() Options {
	return Options{
		MinLength:           DefaultMinLength,
		StopWordMinLength:   DefaultStopWordMinLength,
		SimilarityThreshold: DefaultSimilarityThreshold,
		MaxResults:          DefaultMaxResults,
	}
}

// Validate checks if the options are usable.
func (o Options) Validate() error {
	if o.MinLength < 0 {
		return ErrNegativeMinLength
	}
	if o.StopWordMinLength < 0 {
		return ErrNegativeStopWordLength
	}
	if o.SimilarityThreshold < 0 || o.SimilarityThreshold > 100 {
		return ErrInvalidThreshold
	}
	if o.MaxResults <= 0 {
		return ErrInvalidMaxResults
	}
	return nil
}
