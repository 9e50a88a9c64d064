package warmup

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/baditaflorin/go_duplicate_questions/internal/core/domain"
	"github.com/baditaflorin/go_duplicate_questions/internal/ports"
)

// WarmupConfig defines configuration for warming up the system
type WarmupConfig struct {
	// Number of concurrent warmup routines to run
	Concurrency int `yaml:"concurrency"`
	// Number of iterations per routine
	Iterations int `yaml:"iterations"`
	// Sample candidate size in characters
	SampleTextSize int `yaml:"sample_text_size"`
	// Warmup duration (0 means no time limit)
	Duration time.Duration `yaml:"duration"`
	// Whether to perform GC after warmup
	ForceGC bool `yaml:"force_gc"`
}

// DefaultWarmupConfig returns the default warmup configuration
func DefaultWarmupConfig() WarmupConfig {
	return WarmupConfig{
		Concurrency:    runtime.NumCPU(),
		Iterations:     200,
		SampleTextSize: 200,
		Duration:       5 * time.Second,
		ForceGC:        true,
	}
}

// Checker answers duplicate queries against a loaded corpus snapshot.
type Checker interface {
	Check(candidate string) []domain.SimilarityResult
}

// Manager handles system warmup operations
type Manager struct {
	logger     ports.Logger
	checkers   []Checker
	tokenizers []ports.Tokenizer
	config     WarmupConfig
}

// NewManager creates a new warmup manager
func NewManager(logger ports.Logger, config WarmupConfig) *Manager {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	return &Manager{
		logger: logger,
		config: config,
	}
}

// RegisterChecker adds a checker to be warmed up
func (wm *Manager) RegisterChecker(c Checker) {
	wm.checkers = append(wm.checkers, c)
}

// RegisterTokenizer adds a tokenizer to be warmed up
func (wm *Manager) RegisterTokenizer(t ports.Tokenizer) {
	wm.tokenizers = append(wm.tokenizers, t)
}

// WarmUp runs the warmup process for all registered components and returns
// the number of checks performed.
func (wm *Manager) WarmUp(ctx context.Context) int {
	startTime := time.Now()
	wm.logger.Info("Starting system warmup",
		"components", len(wm.checkers)+len(wm.tokenizers),
		"concurrency", wm.config.Concurrency,
		"iterations", wm.config.Iterations,
	)

	warmupCtx := ctx
	if wm.config.Duration > 0 {
		var cancel context.CancelFunc
		warmupCtx, cancel = context.WithTimeout(ctx, wm.config.Duration)
		defer cancel()
	}

	sample := generateSampleText(wm.config.SampleTextSize)
	variants := []string{
		sample,
		generateSimilarText(sample, 0.1),
		generateSimilarText(sample, 0.5),
	}

	var mu sync.Mutex
	checks := 0

	var wg sync.WaitGroup
	for i := 0; i < wm.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			done := 0
			for j := 0; j < wm.config.Iterations && warmupCtx.Err() == nil; j++ {
				text := variants[j%len(variants)]
				for _, tok := range wm.tokenizers {
					_ = tok.Tokenize(text)
				}
				for _, c := range wm.checkers {
					_ = c.Check(text)
					done++
				}
			}

			mu.Lock()
			checks += done
			mu.Unlock()
		}()
	}
	wg.Wait()

	if wm.config.ForceGC {
		wm.logger.Debug("Forcing garbage collection after warmup")
		runtime.GC()
	}

	wm.logger.Info("System warmup completed",
		"duration", time.Since(startTime),
		"checks", checks,
	)
	return checks
}

// generateSampleText creates a question-like text of roughly the specified size
func generateSampleText(size int) string {
	words := []string{
		"what", "is", "the", "maximum", "operating", "altitude", "for", "a",
		"pressurized", "cabin", "which", "instrument", "indicates", "engine",
		"failure", "during", "takeoff", "climb", "procedure", "checklist",
		"hydraulic", "pressure", "warning", "descent", "approach", "runway",
	}

	var sb strings.Builder
	wordsNeeded := size/6 + 1

	for i := 0; i < wordsNeeded; i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(words[i%len(words)])
	}

	result := sb.String()
	if len(result) > size && size > 0 {
		return result[:size]
	}
	return result
}

// generateSimilarText replaces a share of the words in original
func generateSimilarText(original string, diffRatio float64) string {
	words := strings.Fields(original)
	changeCount := int(float64(len(words)) * diffRatio)

	replacements := []string{
		"replaced", "modified", "changed", "altered", "updated",
		"different", "unique", "novel",
	}

	newWords := make([]string, len(words))
	copy(newWords, words)
	for i := 0; i < changeCount && i < len(newWords); i++ {
		newWords[i] = replacements[i%len(replacements)]
	}

	return strings.Join(newWords, " ")
}
