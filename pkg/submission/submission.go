// Package submission implements the create-question workflow: a new question
// is checked against the approved corpus, stored as pending, and any likely
// duplicates are returned as advisory warnings.
package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/baditaflorin/go_duplicate_questions/internal/adapters/store"
	"github.com/baditaflorin/go_duplicate_questions/internal/ports"
	"github.com/baditaflorin/go_duplicate_questions/pkg/duplicates"
)

// ErrEmptyText is returned when a submission has no question text.
var ErrEmptyText = errors.New("question text is required")

// QuestionWriter persists submitted questions.
type QuestionWriter interface {
	Insert(ctx context.Context, q store.Question) (store.Question, error)
}

// Checker finds duplicates of a candidate in the current corpus snapshot.
type Checker interface {
	Check(candidate string) []duplicates.Result
}

// Request is a community submitted question.
type Request struct {
	Topic string `json:"topic"`
	Text  string `json:"text"`
}

// Response carries the stored question and the advisory duplicate list.
type Response struct {
	Question   store.Question      `json:"question"`
	Duplicates []duplicates.Result `json:"duplicates"`
}

// Service runs the submission workflow.
type Service struct {
	checker Checker
	writer  QuestionWriter
	logger  ports.Logger
}

// NewService creates a submission service.
func NewService(checker Checker, writer QuestionWriter, logger ports.Logger) *Service {
	return &Service{checker: checker, writer: writer, logger: logger}
}

// Submit checks req for duplicates and stores it as pending. Duplicates never
// block the insert.
func (s *Service) Submit(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.Text) == "" {
		return Response{}, ErrEmptyText
	}

	dupes := s.checker.Check(req.Text)

	q, err := s.writer.Insert(ctx, store.Question{
		Topic:  strings.TrimSpace(req.Topic),
		Text:   req.Text,
		Status: store.StatusPending,
	})
	if err != nil {
		return Response{}, fmt.Errorf("store submission: %w", err)
	}

	if len(dupes) > 0 {
		s.logger.Info("Submission resembles approved questions",
			"question_id", q.ID,
			"duplicates", len(dupes),
			"top_similarity", dupes[0].Similarity,
		)
	}

	return Response{Question: q, Duplicates: dupes}, nil
}
