package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/baditaflorin/go_duplicate_questions/internal/adapters/logger"
	"github.com/baditaflorin/go_duplicate_questions/internal/adapters/store"
	"github.com/baditaflorin/go_duplicate_questions/internal/core/domain"
	"github.com/baditaflorin/go_duplicate_questions/pkg/duplicates"
)

// Command-line flags
var (
	dbPath       string
	corpusFile   string
	text         string
	threshold    int
	maxResults   int
	minLength    int
	stopWordMin  int
	filterCorpus bool
	outputFormat string
	approveID    string
	rejectID     string
)

func init() {
	flag.StringVar(&dbPath, "db", "", "Path to the sqlite question database")
	flag.StringVar(&corpusFile, "corpus-file", "", "Path to a JSON array of {\"id\",\"text\"} items")
	flag.StringVar(&text, "text", "", "Candidate question text (reads stdin when empty)")

	flag.IntVar(&threshold, "threshold", domain.DefaultSimilarityThreshold, "Minimum similarity percentage (0-100)")
	flag.IntVar(&maxResults, "max-results", domain.DefaultMaxResults, "Maximum number of matches")
	flag.IntVar(&minLength, "min-length", domain.DefaultMinLength, "Shortest candidate that is scanned")
	flag.IntVar(&stopWordMin, "stop-word-min-length", domain.DefaultStopWordMinLength, "Shortest candidate token that is kept")
	flag.BoolVar(&filterCorpus, "filter-corpus", false, "Apply the stop-word filter to corpus items too")

	flag.StringVar(&outputFormat, "output", "text", "Output format: 'text' or 'json'")

	flag.StringVar(&approveID, "approve", "", "Approve the question with this id (requires -db)")
	flag.StringVar(&rejectID, "reject", "", "Reject the question with this id (requires -db)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --db=questions.db --text=\"What is the maximum operating altitude?\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --corpus-file=approved.json --output=json < candidate.txt\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --db=questions.db --approve=3f2c...\n", os.Args[0])
	}
}

func main() {
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	if approveID != "" || rejectID != "" {
		return moderate(ctx)
	}

	candidate := text
	if candidate == "" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read candidate: %w", err)
		}
		candidate = strings.TrimSpace(string(raw))
	}

	corpus, err := loadCorpus(ctx, dbPath, corpusFile)
	if err != nil {
		return err
	}

	detector, err := duplicates.New(
		duplicates.WithPortLogger(logger.NewNopLogger()),
		duplicates.WithOptions(domain.Options{
			MinLength:           minLength,
			StopWordMinLength:   stopWordMin,
			SimilarityThreshold: threshold,
			MaxResults:          maxResults,
			FilterCorpusTokens:  filterCorpus,
		}),
	)
	if err != nil {
		return err
	}

	return render(stdout, detector.FindDuplicates(candidate, corpus), outputFormat)
}

func moderate(ctx context.Context) error {
	if dbPath == "" {
		return errors.New("-approve and -reject require -db")
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	if approveID != "" {
		if err := s.SetStatus(ctx, approveID, store.StatusApproved); err != nil {
			return fmt.Errorf("approve %s: %w", approveID, err)
		}
	}
	if rejectID != "" {
		if err := s.SetStatus(ctx, rejectID, store.StatusRejected); err != nil {
			return fmt.Errorf("reject %s: %w", rejectID, err)
		}
	}
	return nil
}

// loadCorpus reads approved questions from the database or a JSON file.
func loadCorpus(ctx context.Context, dbPath, corpusFile string) ([]domain.CorpusItem, error) {
	switch {
	case dbPath != "" && corpusFile != "":
		return nil, errors.New("use either -db or -corpus-file, not both")
	case dbPath != "":
		s, err := store.Open(dbPath)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return s.GetApprovedQuestions(ctx)
	case corpusFile != "":
		raw, err := os.ReadFile(corpusFile)
		if err != nil {
			return nil, fmt.Errorf("read corpus file: %w", err)
		}
		var corpus []domain.CorpusItem
		if err := json.Unmarshal(raw, &corpus); err != nil {
			return nil, fmt.Errorf("parse corpus file: %w", err)
		}
		return corpus, nil
	default:
		return nil, errors.New("must provide -db or -corpus-file")
	}
}

// render prints results as text or JSON.
func render(w io.Writer, results []domain.SimilarityResult, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{"duplicates": results})
	case "text":
		if len(results) == 0 {
			_, err := fmt.Fprintln(w, "No likely duplicates found.")
			return err
		}
		for _, r := range results {
			if _, err := fmt.Fprintf(w, "%3d%%  %s  %s\n", r.Similarity, r.ID, truncateText(r.Text, 80)); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// truncateText shortens text to at most maxLen runes
func truncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen-3]) + "..."
}
