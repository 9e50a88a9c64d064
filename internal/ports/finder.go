package ports

import (
	"context"

	"github.com/baditaflorin/go_duplicate_questions/internal/core/domain"
)

// DuplicateFinder ranks corpus items that look like duplicates of a candidate text.
type DuplicateFinder interface {
	FindDuplicates(candidate string, corpus []domain.CorpusItem) []domain.SimilarityResult
}

// QuestionSource supplies the corpus of approved questions.
type QuestionSource interface {
	GetApprovedQuestions(ctx context.Context) ([]domain.CorpusItem, error)
}
