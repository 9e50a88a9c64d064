package duplicates_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_duplicate_questions/internal/adapters/logger"
	"github.com/baditaflorin/go_duplicate_questions/internal/warmup"
	"github.com/baditaflorin/go_duplicate_questions/pkg/duplicates"
)

type fakeSource struct {
	corpus []duplicates.CorpusItem
	err    error
	calls  int
}

func (f *fakeSource) GetApprovedQuestions(context.Context) ([]duplicates.CorpusItem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.corpus, nil
}

var approved = []duplicates.CorpusItem{
	{ID: "q1", Text: "Which instrument indicates engine failure during takeoff climb"},
	{ID: "q2", Text: "Hydraulic pressure warning during descent approach"},
	{ID: "q3", Text: "Maximum operating altitude pressurized cabins"},
}

func newDetector(t *testing.T, opts ...duplicates.Option) *duplicates.Detector {
	t.Helper()
	opts = append([]duplicates.Option{duplicates.WithPortLogger(logger.NewNopLogger())}, opts...)
	d, err := duplicates.New(opts...)
	require.NoError(t, err)
	return d
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := duplicates.New(duplicates.WithPortLogger(logger.NewNopLogger()), duplicates.WithThreshold(150))
	require.Error(t, err)

	_, err = duplicates.New(duplicates.WithPortLogger(logger.NewNopLogger()), duplicates.WithMaxResults(-1))
	require.Error(t, err)
}

func TestDefaults(t *testing.T) {
	d := newDetector(t)
	require.Equal(t, duplicates.Options{
		MinLength:           20,
		StopWordMinLength:   4,
		SimilarityThreshold: 60,
		MaxResults:          3,
	}, d.Options())
}

func TestFindDuplicates(t *testing.T) {
	d := newDetector(t)
	got := d.FindDuplicates("Maximum operating altitude pressurized cabins", approved)
	require.Equal(t, []duplicates.Result{{ID: "q3", Text: approved[2].Text, Similarity: 100}}, got)

	require.Empty(t, d.FindDuplicates("Short text", approved))
}

func TestCheckBeforeLoadIsEmpty(t *testing.T) {
	d := newDetector(t)
	require.Zero(t, d.CorpusSize())
	got := d.Check("Maximum operating altitude pressurized cabins")
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestCheckMatchesFindDuplicates(t *testing.T) {
	for _, fast := range []bool{false, true} {
		t.Run(fmt.Sprintf("fast=%v", fast), func(t *testing.T) {
			opts := []duplicates.Option{duplicates.WithThreshold(20), duplicates.WithMaxResults(5)}
			if fast {
				opts = append(opts, duplicates.WithFastTokenizer())
			}
			d := newDetector(t, opts...)
			d.Load(approved)
			require.Equal(t, len(approved), d.CorpusSize())

			for _, candidate := range []string{
				"Which warning indicates hydraulic pressure loss during descent",
				"engine failure during takeoff climb",
				"Maximum operating altitude pressurized cabins",
				"completely unrelated words everywhere here",
			} {
				require.Equal(t, d.FindDuplicates(candidate, approved), d.Check(candidate), candidate)
			}
		})
	}
}

func TestRefreshKeepsSnapshotOnFailure(t *testing.T) {
	ctx := context.Background()
	d := newDetector(t)
	src := &fakeSource{corpus: approved}

	require.NoError(t, d.Refresh(ctx, src))
	require.Equal(t, 3, d.CorpusSize())

	src.err = errors.New("database unavailable")
	err := d.Refresh(ctx, src)
	require.ErrorIs(t, err, src.err)
	require.Equal(t, 3, d.CorpusSize())
	require.Len(t, d.Check("Maximum operating altitude pressurized cabins"), 1)
}

func TestCheckSourceDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	d := newDetector(t)

	ok := &fakeSource{corpus: approved}
	require.Len(t, d.CheckSource(ctx, "Maximum operating altitude pressurized cabins", ok), 1)

	broken := &fakeSource{err: errors.New("timeout")}
	got := d.CheckSource(ctx, "Maximum operating altitude pressurized cabins", broken)
	require.NotNil(t, got)
	require.Empty(t, got)
	require.Equal(t, 1, broken.calls)
}

func TestFilterCorpusTokensOption(t *testing.T) {
	text := "What is the maximum operating altitude for a pressurized cabin?"
	corpus := []duplicates.CorpusItem{{ID: "q1", Text: text}}

	require.Equal(t, 60, newDetector(t).FindDuplicates(text, corpus)[0].Similarity)
	require.Equal(t, 100, newDetector(t, duplicates.WithFilterCorpusTokens(true)).FindDuplicates(text, corpus)[0].Similarity)
}

func TestConcurrentChecksDuringReload(t *testing.T) {
	d := newDetector(t, duplicates.WithWarmUpConfig(warmup.WarmupConfig{Concurrency: 2, Iterations: 5, SampleTextSize: 80}))
	d.Load(approved)

	candidate := "Maximum operating altitude pressurized cabins"
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if i == 0 && j%10 == 0 {
					d.Load(approved)
					continue
				}
				got := d.Check(candidate)
				if len(got) != 1 || got[0].ID != "q3" {
					t.Errorf("unexpected result during reload: %+v", got)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
