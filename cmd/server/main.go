package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/baditaflorin/l"
	"github.com/valyala/fasthttp"

	adapterlogger "github.com/baditaflorin/go_duplicate_questions/internal/adapters/logger"
	"github.com/baditaflorin/go_duplicate_questions/internal/adapters/store"
	"github.com/baditaflorin/go_duplicate_questions/internal/config"
	"github.com/baditaflorin/go_duplicate_questions/pkg/duplicates"
	"github.com/baditaflorin/go_duplicate_questions/pkg/submission"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	baseLogger, err := createLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer baseLogger.Close()
	logger := adapterlogger.FromExisting(baseLogger)

	logger.Info("Starting duplicate detection server",
		"port", cfg.Server.Port,
		"db_path", cfg.DBPath,
		"threshold", cfg.Engine.SimilarityThreshold,
		"max_results", cfg.Engine.MaxResults,
		"reindex_interval", cfg.ReindexInterval,
	)

	questions, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("Failed to open question store", "error", err)
		os.Exit(1)
	}
	defer questions.Close()

	opts := []duplicates.Option{
		duplicates.WithOptions(cfg.Engine),
		duplicates.WithLogger(baseLogger),
	}
	if cfg.FastTokenizer {
		opts = append(opts, duplicates.WithFastTokenizer())
	}
	if cfg.WarmUp {
		opts = append(opts, duplicates.WithWarmUpConfig(cfg.Warmup))
	}
	detector, err := duplicates.New(opts...)
	if err != nil {
		logger.Error("Failed to initialize detector", "error", err)
		os.Exit(1)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// An empty or unreachable store still serves requests; results stay empty.
	if err := detector.Refresh(ctx, questions); err != nil {
		logger.Warn("Initial corpus load failed", "error", err)
	}
	logger.Info("Detector initialized",
		"corpus_size", detector.CorpusSize(),
		"cpus", runtime.NumCPU(),
	)

	srv := newServer(detector, questions, submission.NewService(detector, questions, logger), logger, cfg.Server.RequestTimeout)
	go srv.reindexLoop(ctx, cfg.ReindexInterval)

	server := &fasthttp.Server{
		Handler:               srv.requestHandler,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		MaxRequestBodySize:    cfg.Server.MaxRequestSize,
		Concurrency:           cfg.Server.Concurrency,
		TCPKeepalive:          true,
		TCPKeepalivePeriod:    3 * time.Minute,
		MaxIdleWorkerDuration: 10 * time.Second,
		Name:                  "DuplicateQuestionServer",
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		logger.Info("Shutting down server...")
		stop()
		if err := server.Shutdown(); err != nil {
			logger.Error("Error during server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", "address", addr)
	if err := server.ListenAndServe(addr); err != nil {
		logger.Error("Server error", "error", err)
		return
	}

	<-idleConnsClosed
	logger.Info("Server stopped")
}

// createLogger creates and configures a logger
func createLogger(cfg config.Log) (l.Logger, error) {
	var output io.Writer = os.Stdout
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	}

	lc := adapterlogger.DefaultConfig(output, cfg.JSON)
	lc.MaxFileSize = 100 * 1024 * 1024 // 100MB

	logger, err := l.NewStandardFactory().CreateLogger(lc)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
