package models

import (
	"sync"
	"time"

	"fjacquet/pdf-txt/internal/logging"
)

// DocumentResult is the outcome of processing one document.
type DocumentResult struct {
	Path       string
	OutputPath string
	Pages      int
	OCRPages   int
	TextPages  int
	Duration   time.Duration
	Succeeded  bool
	Err        error

	// Class is the top-level folder under the batch root, "" for files
	// directly in the root.
	Class string
}

// RunStats accumulates counters for one batch run. It is reset at the start
// of every run and is safe for concurrent use.
type RunStats struct {
	mu        sync.Mutex
	runID     string
	total     int
	succeeded int
	failed    int
	ocrPages  int
	textPages int
	duration  time.Duration
}

// NewRunStats creates an empty RunStats.
func NewRunStats() *RunStats {
	return &RunStats{}
}

// Reset clears every counter and starts a new run.
func (s *RunStats) Reset(runID string, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runID = runID
	s.total = total
	s.succeeded, s.failed = 0, 0
	s.ocrPages, s.textPages = 0, 0
	s.duration = 0
}

// RecordPage counts one page routed to the given method.
func (s *RunStats) RecordPage(method ExtractionMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if method == MethodOCR {
		s.ocrPages++
	} else {
		s.textPages++
	}
}

// RecordDocument counts one processed document.
func (s *RunStats) RecordDocument(succeeded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if succeeded {
		s.succeeded++
	} else {
		s.failed++
	}
}

// Finish stores the wall-clock duration of the run.
func (s *RunStats) Finish(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duration = d
}

// Snapshot returns a copy of the counters.
func (s *RunStats) Snapshot() RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RunSummary{
		RunID:     s.runID,
		Total:     s.total,
		Succeeded: s.succeeded,
		Failed:    s.failed,
		OCRPages:  s.ocrPages,
		TextPages: s.textPages,
		Duration:  s.duration,
	}
}

// RunSummary is an immutable view of a finished (or running) batch.
type RunSummary struct {
	RunID     string           `json:"run_id"`
	Total     int              `json:"total"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	OCRPages  int              `json:"ocr_pages"`
	TextPages int              `json:"text_pages"`
	Duration  time.Duration    `json:"duration_ns"`
	Documents []DocumentResult `json:"-"`
}

// Processed returns the number of documents that went through processing.
func (r RunSummary) Processed() int {
	return r.Succeeded + r.Failed
}

// AveragePerDocument returns the mean wall-clock time per document, and false
// when no document was processed.
func (r RunSummary) AveragePerDocument() (time.Duration, bool) {
	n := r.Processed()
	if n == 0 {
		return 0, false
	}
	return r.Duration / time.Duration(n), true
}

// LogSummary logs the run counters.
func (r RunSummary) LogSummary(logger logging.Logger) {
	if logger == nil {
		return
	}
	fields := []logging.Field{
		{Key: logging.FieldRunID, Value: r.RunID},
		{Key: "total", Value: r.Total},
		{Key: "succeeded", Value: r.Succeeded},
		{Key: "failed", Value: r.Failed},
		{Key: "ocr_pages", Value: r.OCRPages},
		{Key: "text_pages", Value: r.TextPages},
		{Key: logging.FieldDuration, Value: r.Duration.Milliseconds()},
	}
	if avg, ok := r.AveragePerDocument(); ok {
		fields = append(fields, logging.Field{Key: "avg_per_document_ms", Value: avg.Milliseconds()})
	}
	logger.Info("Batch summary", fields...)
}
