package overlap

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/baditaflorin/go_duplicate_questions/internal/core/domain"
	"github.com/baditaflorin/go_duplicate_questions/internal/ports"
)

// Finder implements word-overlap duplicate detection over a caller supplied corpus.
// It holds no mutable state and is safe for concurrent use.
type Finder struct {
	opts      domain.Options
	tokenizer ports.Tokenizer
	logger    ports.Logger
}

// NewFinder creates a new overlap finder.
func NewFinder(opts domain.Options, tokenizer ports.Tokenizer, logger ports.Logger) (*Finder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return &Finder{
		opts:      opts,
		tokenizer: tokenizer,
		logger:    logger,
	}, nil
}

// Options returns the options the finder was built with.
func (f *Finder) Options() domain.Options {
	return f.opts
}

// Tokenizer returns the tokenizer used on both sides of the comparison.
func (f *Finder) Tokenizer() ports.Tokenizer {
	return f.tokenizer
}

// FindDuplicates scores every corpus item against candidate and returns the
// best matches at or above the threshold, highest first. Ties keep corpus order.
func (f *Finder) FindDuplicates(candidate string, corpus []domain.CorpusItem) []domain.SimilarityResult {
	candTokens, ok := f.CandidateTokens(candidate)
	if !ok {
		return []domain.SimilarityResult{}
	}

	results := make([]domain.SimilarityResult, 0)
	for _, item := range corpus {
		itemTokens := f.corpusTokens(item.Text)
		similarity, ok := Score(candTokens, itemTokens)
		if !ok || similarity < f.opts.SimilarityThreshold {
			continue
		}
		results = append(results, domain.SimilarityResult{
			ID:         item.ID,
			Text:       item.Text,
			Similarity: similarity,
		})
	}

	ranked := Rank(results, f.opts.MaxResults)
	f.logger.Debug("Computed duplicate candidates",
		"corpus_size", len(corpus),
		"candidate_tokens", len(candTokens),
		"matches", len(ranked),
	)
	return ranked
}

// CandidateTokens applies the minimum length guard and the stop-word filter.
// The boolean is false when the candidate is too short to be scanned.
func (f *Finder) CandidateTokens(candidate string) ([]string, bool) {
	if utf8.RuneCountInString(candidate) < f.opts.MinLength {
		f.logger.Debug("Candidate below minimum length, skipping scan",
			"length", utf8.RuneCountInString(candidate),
			"min_length", f.opts.MinLength,
		)
		return nil, false
	}
	return f.tokenizer.TokenizeFiltered(candidate, f.opts.StopWordMinLength), true
}

func (f *Finder) corpusTokens(text string) []string {
	if f.opts.FilterCorpusTokens {
		return f.tokenizer.TokenizeFiltered(text, f.opts.StopWordMinLength)
	}
	return f.tokenizer.Tokenize(text)
}

// Score returns the overlap percentage of candidate tokens found in item tokens.
// Each candidate occurrence counts on its own; the denominator is the longer of
// the two sequences. The boolean is false when both sequences are empty.
func Score(candidate, item []string) (int, bool) {
	members := make(map[string]struct{}, len(item))
	for _, tok := range item {
		members[tok] = struct{}{}
	}

	common := 0
	for _, tok := range candidate {
		if _, ok := members[tok]; ok {
			common++
		}
	}
	return percentage(common, len(candidate), len(item))
}

func percentage(common, candLen, itemLen int) (int, bool) {
	denom := candLen
	if itemLen > denom {
		denom = itemLen
	}
	if denom == 0 {
		return 0, false
	}
	// Halves round to even: 12.5 -> 12, 37.5 -> 38.
	return int(math.RoundToEven(100 * float64(common) / float64(denom))), true
}

// Rank sorts results by similarity, highest first, keeping input order for
// equal scores, and truncates to limit.
func Rank(results []domain.SimilarityResult, limit int) []domain.SimilarityResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
