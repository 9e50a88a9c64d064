package main

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/baditaflorin/go_duplicate_questions/internal/ports"
	"github.com/baditaflorin/go_duplicate_questions/pkg/duplicates"
	"github.com/baditaflorin/go_duplicate_questions/pkg/submission"
)

// DuplicatesRequest asks for duplicates of a candidate question.
type DuplicatesRequest struct {
	CandidateText string `json:"candidateText"`
}

// DuplicatesResponse lists likely duplicates. An empty list also covers
// the case where the corpus could not be fetched.
type DuplicatesResponse struct {
	Duplicates []duplicates.Result `json:"duplicates"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

type submitter interface {
	Submit(ctx context.Context, req submission.Request) (submission.Response, error)
}

type server struct {
	detector       *duplicates.Detector
	source         ports.QuestionSource
	submissions    submitter
	logger         ports.Logger
	requestTimeout time.Duration
}

func newServer(detector *duplicates.Detector, source ports.QuestionSource, submissions submitter, logger ports.Logger, requestTimeout time.Duration) *server {
	return &server{
		detector:       detector,
		source:         source,
		submissions:    submissions,
		logger:         logger,
		requestTimeout: requestTimeout,
	}
}

// requestHandler is the main fasthttp request handler
func (s *server) requestHandler(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()

	ctx.Response.Header.Set("Content-Type", "application/json")

	switch string(ctx.Path()) {
	case "/health":
		s.handleHealthCheck(ctx)
	case "/duplicates":
		s.handleDuplicates(ctx)
	case "/questions":
		s.handleSubmitQuestion(ctx)
	case "/reindex":
		s.handleReindex(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		s.writeJSONError(ctx, "Not found")
	}

	s.logger.Info("Request processed",
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"duration", time.Since(startTime),
	)
}

func (s *server) handleHealthCheck(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, map[string]interface{}{
		"status":      "ok",
		"time":        time.Now().Format(time.RFC3339),
		"corpus_size": s.detector.CorpusSize(),
	})
}

// handleDuplicates never fails on upstream errors; it reports no duplicates instead.
func (s *server) handleDuplicates(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		s.writeJSONError(ctx, "Method not allowed")
		return
	}

	var req DuplicatesRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		s.writeJSONError(ctx, "Invalid request: "+err.Error())
		return
	}

	var found []duplicates.Result
	if s.detector.Loaded() {
		found = s.detector.Check(req.CandidateText)
	} else {
		c, cancel := context.WithTimeout(context.Background(), s.requestTimeout)
		defer cancel()
		found = s.detector.CheckSource(c, req.CandidateText, s.source)
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, DuplicatesResponse{Duplicates: found})
}

func (s *server) handleSubmitQuestion(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		s.writeJSONError(ctx, "Method not allowed")
		return
	}

	var req submission.Request
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		s.writeJSONError(ctx, "Invalid request: "+err.Error())
		return
	}

	c, cancel := context.WithTimeout(context.Background(), s.requestTimeout)
	defer cancel()

	resp, err := s.submissions.Submit(c, req)
	switch {
	case errors.Is(err, submission.ErrEmptyText):
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		s.writeJSONError(ctx, err.Error())
		return
	case err != nil:
		s.logger.Error("Submission failed", "error", err)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		s.writeJSONError(ctx, "Could not store question")
		return
	}

	ctx.SetStatusCode(fasthttp.StatusCreated)
	s.writeJSONResponse(ctx, resp)
}

func (s *server) handleReindex(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		s.writeJSONError(ctx, "Method not allowed")
		return
	}

	c, cancel := context.WithTimeout(context.Background(), s.requestTimeout)
	defer cancel()

	if err := s.detector.Refresh(c, s.source); err != nil {
		ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
		s.writeJSONError(ctx, "Corpus unavailable")
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, map[string]interface{}{
		"corpus_size": s.detector.CorpusSize(),
	})
}

// reindexLoop refreshes the snapshot every interval until ctx is done.
func (s *server) reindexLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c, cancel := context.WithTimeout(ctx, s.requestTimeout)
			// Failures are logged by Refresh; the old snapshot keeps serving.
			_ = s.detector.Refresh(c, s.source)
			cancel()
		}
	}
}

// writeJSONResponse writes a JSON response to the context
func (s *server) writeJSONResponse(ctx *fasthttp.RequestCtx, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		s.logger.Error("Error marshaling JSON response", "error", err)
		s.writeJSONError(ctx, "Internal server error")
		return
	}

	ctx.SetBody(response)
}

// writeJSONError writes a JSON error response to the context
func (s *server) writeJSONError(ctx *fasthttp.RequestCtx, message string) {
	response, err := json.Marshal(ErrorResponse{Error: message})
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		s.logger.Error("Error marshaling JSON error response", "error", err)
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}

	ctx.SetBody(response)
}
