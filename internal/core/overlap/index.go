package overlap

import (
	"sort"

	"github.com/baditaflorin/go_duplicate_questions/internal/core/domain"
	"github.com/baditaflorin/go_duplicate_questions/internal/pool"
)

// Index is an immutable inverted index over a corpus snapshot. Queries only
// score items sharing at least one token with the candidate, unless the
// threshold admits zero scores.
type Index struct {
	items    []domain.CorpusItem
	lengths  []int
	postings map[string][]int
	counters *pool.CounterPool
}

// NewIndex tokenizes every corpus item once, the same way f tokenizes corpus
// items during a full scan, and builds token postings. The corpus slice is copied.
// An index must be queried through the finder that built it.
func (f *Finder) NewIndex(corpus []domain.CorpusItem) *Index {
	ix := &Index{
		items:    make([]domain.CorpusItem, len(corpus)),
		lengths:  make([]int, len(corpus)),
		postings: make(map[string][]int),
		counters: pool.NewCounterPool(len(corpus)),
	}
	copy(ix.items, corpus)

	for pos, item := range ix.items {
		tokens := f.corpusTokens(item.Text)
		ix.lengths[pos] = len(tokens)

		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			ix.postings[tok] = append(ix.postings[tok], pos)
		}
	}
	return ix
}

// Len returns the number of indexed corpus items.
func (ix *Index) Len() int {
	return len(ix.items)
}

// Terms returns the number of distinct tokens in the index.
func (ix *Index) Terms() int {
	return len(ix.postings)
}

// FindDuplicatesIndexed returns the same results as FindDuplicates over the indexed corpus.
func (f *Finder) FindDuplicatesIndexed(candidate string, ix *Index) []domain.SimilarityResult {
	candTokens, ok := f.CandidateTokens(candidate)
	if !ok || ix == nil || ix.Len() == 0 {
		return []domain.SimilarityResult{}
	}

	ranked := Rank(ix.query(candTokens, f.opts.SimilarityThreshold), f.opts.MaxResults)
	f.logger.Debug("Computed indexed duplicate candidates",
		"corpus_size", ix.Len(),
		"candidate_tokens", len(candTokens),
		"matches", len(ranked),
	)
	return ranked
}

// query returns unranked results in corpus order.
func (ix *Index) query(candTokens []string, threshold int) []domain.SimilarityResult {
	counts := ix.counters.Get()
	c := *counts

	touched := make([]int, 0)
	for _, tok := range candTokens {
		for _, pos := range ix.postings[tok] {
			if c[pos] == 0 {
				touched = append(touched, pos)
			}
			c[pos]++
		}
	}

	results := make([]domain.SimilarityResult, 0)
	score := func(pos int) {
		similarity, ok := percentage(c[pos], len(candTokens), ix.lengths[pos])
		if !ok || similarity < threshold {
			return
		}
		results = append(results, domain.SimilarityResult{
			ID:         ix.items[pos].ID,
			Text:       ix.items[pos].Text,
			Similarity: similarity,
		})
	}

	if threshold <= 0 {
		// Zero-overlap items qualify too, so every position is scored.
		for pos := range ix.items {
			score(pos)
		}
	} else {
		sort.Ints(touched)
		for _, pos := range touched {
			score(pos)
		}
	}

	ix.counters.Put(counts, touched)
	return results
}
