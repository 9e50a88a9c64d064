package warmup

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_duplicate_questions/internal/adapters/logger"
	"github.com/baditaflorin/go_duplicate_questions/internal/adapters/tokenizer"
	"github.com/baditaflorin/go_duplicate_questions/internal/core/domain"
)

type countingChecker struct {
	calls atomic.Int64
}

func (c *countingChecker) Check(string) []domain.SimilarityResult {
	c.calls.Add(1)
	return nil
}

func TestWarmUpRunsEveryIteration(t *testing.T) {
	checker := &countingChecker{}
	mgr := NewManager(logger.NewNopLogger(), WarmupConfig{Concurrency: 3, Iterations: 7, SampleTextSize: 120})
	mgr.RegisterChecker(checker)
	mgr.RegisterTokenizer(tokenizer.NewWhitespaceTokenizer())

	require.Equal(t, 21, mgr.WarmUp(context.Background()))
	require.EqualValues(t, 21, checker.calls.Load())
}

func TestWarmUpStopsOnCancelledContext(t *testing.T) {
	checker := &countingChecker{}
	mgr := NewManager(logger.NewNopLogger(), WarmupConfig{Concurrency: 2, Iterations: 1000, SampleTextSize: 50})
	mgr.RegisterChecker(checker)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Zero(t, mgr.WarmUp(ctx))
}

func TestGenerateSimilarText(t *testing.T) {
	sample := generateSampleText(200)
	require.LessOrEqual(t, len(sample), 200)

	words := strings.Fields(sample)
	changed := strings.Fields(generateSimilarText(sample, 0.5))
	require.Len(t, changed, len(words))
	require.NotEqual(t, words[0], changed[0])
	require.Equal(t, words[len(words)-1], changed[len(changed)-1])
}
