// Package duplicates flags near-duplicate questions by lexical overlap.
//
// A candidate text is lowercased and split on white space; candidate tokens
// shorter than the stop-word length are dropped. Every corpus item is scored as
//
//	similarity = round(100 * common / max(len(candidateTokens), len(itemTokens)))
//
// where common counts candidate token occurrences present in the item. Items at
// or above the threshold are returned highest first, ties in corpus order.
package duplicates

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/baditaflorin/go_duplicate_questions/internal/adapters/logger"
	"github.com/baditaflorin/go_duplicate_questions/internal/adapters/tokenizer"
	"github.com/baditaflorin/go_duplicate_questions/internal/core/domain"
	"github.com/baditaflorin/go_duplicate_questions/internal/core/overlap"
	"github.com/baditaflorin/go_duplicate_questions/internal/ports"
	"github.com/baditaflorin/go_duplicate_questions/internal/warmup"
	"github.com/baditaflorin/l"
)

type (
	// CorpusItem is an existing question available for comparison.
	CorpusItem = domain.CorpusItem
	// Result is a scored duplicate candidate.
	Result = domain.SimilarityResult
	// Options are the engine options.
	Options = domain.Options
	// QuestionSource supplies approved questions.
	QuestionSource = ports.QuestionSource
)

// Detector finds duplicates either over a corpus passed per call or over an
// indexed snapshot swapped in with Load or Refresh. Safe for concurrent use.
type Detector struct {
	finder *overlap.Finder
	logger ports.Logger

	// writeMu serializes snapshot rebuilds; readers never take it.
	writeMu sync.Mutex
	index   atomic.Pointer[overlap.Index]

	warmUp       bool
	warmUpConfig warmup.WarmupConfig
	warmed       atomic.Bool
}

// Option defines a functional option for configuring a Detector.
type Option func(*detectorConfig)

type detectorConfig struct {
	Options      domain.Options
	Logger       ports.Logger
	Tokenizer    ports.Tokenizer
	WarmUp       bool
	WarmUpConfig warmup.WarmupConfig
}

// WithOptions replaces all engine options at once.
func WithOptions(opts Options) Option {
	return func(cfg *detectorConfig) {
		cfg.Options = opts
	}
}

// WithMinLength sets the shortest candidate that is scanned.
func WithMinLength(n int) Option {
	return func(cfg *detectorConfig) {
		cfg.Options.MinLength = n
	}
}

// WithStopWordMinLength sets the shortest candidate token that is kept.
func WithStopWordMinLength(n int) Option {
	return func(cfg *detectorConfig) {
		cfg.Options.StopWordMinLength = n
	}
}

// WithThreshold sets the minimum similarity percentage.
func WithThreshold(th int) Option {
	return func(cfg *detectorConfig) {
		cfg.Options.SimilarityThreshold = th
	}
}

// WithMaxResults caps the number of returned matches.
func WithMaxResults(n int) Option {
	return func(cfg *detectorConfig) {
		cfg.Options.MaxResults = n
	}
}

// WithFilterCorpusTokens applies the stop-word filter to corpus items too.
func WithFilterCorpusTokens(enable bool) Option {
	return func(cfg *detectorConfig) {
		cfg.Options.FilterCorpusTokens = enable
	}
}

// WithLogger sets a custom logger.
func WithLogger(lg l.Logger) Option {
	return func(cfg *detectorConfig) {
		cfg.Logger = logger.FromExisting(lg)
	}
}

// WithPortLogger sets a logger that already satisfies ports.Logger.
func WithPortLogger(lg ports.Logger) Option {
	return func(cfg *detectorConfig) {
		cfg.Logger = lg
	}
}

// WithFastTokenizer uses the table-driven ASCII tokenizer.
func WithFastTokenizer() Option {
	return func(cfg *detectorConfig) {
		cfg.Tokenizer = tokenizer.New(tokenizer.ASCIIType)
	}
}

// WithWarmUp enables a warm-up run after the first snapshot is loaded.
func WithWarmUp(enable bool) Option {
	return func(cfg *detectorConfig) {
		cfg.WarmUp = enable
	}
}

// WithWarmUpConfig sets a custom warm-up configuration.
func WithWarmUpConfig(config warmup.WarmupConfig) Option {
	return func(cfg *detectorConfig) {
		cfg.WarmUpConfig = config
		cfg.WarmUp = true
	}
}

// New creates a new Detector.
func New(opts ...Option) (*Detector, error) {
	cfg := &detectorConfig{
		Options:      domain.DefaultOptions(),
		WarmUpConfig: warmup.DefaultWarmupConfig(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		var err error
		cfg.Logger, err = logger.NewStdLogger()
		if err != nil {
			return nil, err
		}
	}
	if cfg.Tokenizer == nil {
		cfg.Tokenizer = tokenizer.NewWhitespaceTokenizer()
	}

	finder, err := overlap.NewFinder(cfg.Options, cfg.Tokenizer, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("invalid detector options: %w", err)
	}

	return &Detector{
		finder:       finder,
		logger:       cfg.Logger,
		warmUp:       cfg.WarmUp,
		warmUpConfig: cfg.WarmUpConfig,
	}, nil
}

// Options returns the engine options in effect.
func (d *Detector) Options() Options {
	return d.finder.Options()
}

// FindDuplicates scores candidate against corpus without touching the snapshot.
func (d *Detector) FindDuplicates(candidate string, corpus []CorpusItem) []Result {
	return d.finder.FindDuplicates(candidate, corpus)
}

// Load indexes corpus and makes it the current snapshot.
func (d *Detector) Load(corpus []CorpusItem) {
	d.writeMu.Lock()
	ix := d.finder.NewIndex(corpus)
	d.index.Store(ix)
	d.writeMu.Unlock()

	d.logger.Info("Loaded corpus snapshot",
		"items", ix.Len(),
		"terms", ix.Terms(),
	)

	if d.warmUp && d.warmed.CompareAndSwap(false, true) {
		mgr := warmup.NewManager(d.logger, d.warmUpConfig)
		mgr.RegisterChecker(d)
		mgr.RegisterTokenizer(d.finder.Tokenizer())
		mgr.WarmUp(context.Background())
	}
}

// Refresh reloads the snapshot from source. On failure the previous snapshot stays.
func (d *Detector) Refresh(ctx context.Context, source QuestionSource) error {
	corpus, err := source.GetApprovedQuestions(ctx)
	if err != nil {
		d.logger.Warn("Corpus refresh failed, keeping previous snapshot", "error", err)
		return fmt.Errorf("fetch approved questions: %w", err)
	}
	d.Load(corpus)
	return nil
}

// Loaded reports whether a snapshot has been loaded.
func (d *Detector) Loaded() bool {
	return d.index.Load() != nil
}

// CorpusSize returns the number of items in the current snapshot.
func (d *Detector) CorpusSize() int {
	ix := d.index.Load()
	if ix == nil {
		return 0
	}
	return ix.Len()
}

// Check finds duplicates of candidate in the current snapshot.
// Before the first Load it returns an empty result.
func (d *Detector) Check(candidate string) []Result {
	return d.finder.FindDuplicatesIndexed(candidate, d.index.Load())
}

// CheckSource fetches the corpus from source and scores candidate against it.
// A fetch failure is logged and treated as an empty corpus.
func (d *Detector) CheckSource(ctx context.Context, candidate string, source QuestionSource) []Result {
	corpus, err := source.GetApprovedQuestions(ctx)
	if err != nil {
		d.logger.Warn("Could not fetch approved questions, reporting no duplicates", "error", err)
		corpus = nil
	}
	return d.finder.FindDuplicates(candidate, corpus)
}
