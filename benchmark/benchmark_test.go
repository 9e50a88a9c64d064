package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/baditaflorin/go_duplicate_questions/internal/adapters/logger"
	"github.com/baditaflorin/go_duplicate_questions/pkg/duplicates"
)

var vocabulary = []string{
	"altitude", "pressurized", "cabin", "engine", "failure", "takeoff", "climb",
	"hydraulic", "pressure", "warning", "descent", "approach", "runway", "instrument",
	"navigation", "weather", "turbulence", "icing", "fuel", "oxygen", "checklist",
	"the", "is", "a", "of", "for", "what", "which", "during", "maximum", "minimum",
}

// generateCorpus builds size question-like items with a deterministic vocabulary mix.
func generateCorpus(size int) []duplicates.CorpusItem {
	corpus := make([]duplicates.CorpusItem, 0, size)
	for i := 0; i < size; i++ {
		words := make([]string, 0, 12)
		for j := 0; j < 12; j++ {
			words = append(words, vocabulary[(i*7+j*(i%5+1))%len(vocabulary)])
		}
		// A unique token keeps items distinguishable.
		words = append(words, fmt.Sprintf("ref%05d", i))
		corpus = append(corpus, duplicates.CorpusItem{
			ID:   fmt.Sprintf("q%05d", i),
			Text: strings.Join(words, " "),
		})
	}
	return corpus
}

func newDetector(b *testing.B, opts ...duplicates.Option) *duplicates.Detector {
	b.Helper()
	opts = append([]duplicates.Option{duplicates.WithPortLogger(logger.NewNopLogger())}, opts...)
	d, err := duplicates.New(opts...)
	if err != nil {
		b.Fatal(err)
	}
	return d
}

func BenchmarkFullScan(b *testing.B) {
	for _, size := range []int{100, 1000, 10000} {
		corpus := generateCorpus(size)
		candidate := corpus[size/2].Text
		d := newDetector(b)

		b.Run(fmt.Sprintf("corpus=%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = d.FindDuplicates(candidate, corpus)
			}
		})
	}
}

func BenchmarkIndexed(b *testing.B) {
	for _, size := range []int{100, 1000, 10000} {
		corpus := generateCorpus(size)
		candidate := corpus[size/2].Text

		for _, fast := range []bool{false, true} {
			var opts []duplicates.Option
			if fast {
				opts = append(opts, duplicates.WithFastTokenizer())
			}
			d := newDetector(b, opts...)
			d.Load(corpus)

			b.Run(fmt.Sprintf("corpus=%d/fast=%v", size, fast), func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					_ = d.Check(candidate)
				}
			})
		}
	}
}

func BenchmarkIndexedParallel(b *testing.B) {
	corpus := generateCorpus(5000)
	candidate := corpus[42].Text
	d := newDetector(b)
	d.Load(corpus)

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = d.Check(candidate)
		}
	})
}

func BenchmarkLoad(b *testing.B) {
	corpus := generateCorpus(5000)
	d := newDetector(b)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		d.Load(corpus)
	}
}

func TestGeneratedCorpusIndexAgreesWithScan(t *testing.T) {
	corpus := generateCorpus(500)
	d, err := duplicates.New(
		duplicates.WithPortLogger(logger.NewNopLogger()),
		duplicates.WithThreshold(30),
		duplicates.WithMaxResults(10),
	)
	if err != nil {
		t.Fatal(err)
	}
	d.Load(corpus)

	for _, i := range []int{0, 17, 250, 499} {
		scan := d.FindDuplicates(corpus[i].Text, corpus)
		indexed := d.Check(corpus[i].Text)
		if fmt.Sprint(scan) != fmt.Sprint(indexed) {
			t.Fatalf("item %d: scan %v != indexed %v", i, scan, indexed)
		}
	}
}
