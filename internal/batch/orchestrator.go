package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fjacquet/pdf-txt/internal/logging"
	"fjacquet/pdf-txt/internal/models"
	"fjacquet/pdf-txt/internal/pdferror"
)

// Scanner discovers documents under a root directory.
type Scanner interface {
	Scan(root string) ([]string, error)
}

// Processor converts one document.
type Processor interface {
	Process(path string, stats *models.RunStats) models.DocumentResult
}

// Options configures the orchestrator.
type Options struct {
	// Parallel enables the worker pool when MaxWorkers > 1.
	Parallel   bool
	MaxWorkers int
}

// Orchestrator processes every document under a root directory and keeps the
// run statistics.
type Orchestrator struct {
	scanner   Scanner
	processor Processor
	opts      Options
	logger    logging.Logger
	progress  Progress
	stats     *models.RunStats
	newRunID  func() string
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(scanner Scanner, processor Processor, opts Options, logger logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Orchestrator{
		scanner:   scanner,
		processor: processor,
		opts:      opts,
		logger:    logger,
		progress:  NoopProgress{},
		stats:     models.NewRunStats(),
		newRunID:  uuid.NewString,
	}
}

// WithProgress sets the progress reporter.
func (o *Orchestrator) WithProgress(p Progress) *Orchestrator {
	if p == nil {
		p = NoopProgress{}
	}
	o.progress = p
	return o
}

// Stats returns the statistics of the current or last run.
func (o *Orchestrator) Stats() *models.RunStats {
	return o.stats
}

func (o *Orchestrator) workers() int {
	if o.opts.Parallel && o.opts.MaxWorkers > 1 {
		return o.opts.MaxWorkers
	}
	return 1
}

// Run processes every document under root in discovery order.
//
// Only run-level conditions are returned as errors: pdferror.ErrRootNotFound
// and pdferror.ErrNoDocuments before anything is processed, and the context
// error when the run is cancelled. Document failures are counted in the
// summary. Cancellation stops scheduling; documents already started finish.
func (o *Orchestrator) Run(ctx context.Context, root string) (models.RunSummary, error) {
	files, err := o.scanner.Scan(root)
	if err != nil {
		o.logger.WithError(err).Error("Cannot scan documents directory", logging.F("root", root))
		return models.RunSummary{}, err
	}
	if len(files) == 0 {
		o.logger.Error("No PDF documents found", logging.F("root", root))
		return models.RunSummary{}, fmt.Errorf("%w under %s", pdferror.ErrNoDocuments, root)
	}

	runID := o.newRunID()
	logger := o.logger.WithField(logging.FieldRunID, runID)
	o.stats.Reset(runID, len(files))
	GroupByClass(root, files, logger)

	workers := o.workers()
	logger.Info("Starting batch",
		logging.F("root", root),
		logging.F(logging.FieldCount, len(files)),
		logging.F("workers", workers))

	start := time.Now()
	o.progress.Start(len(files))

	results := make([]models.DocumentResult, len(files))
	done := make([]bool, len(files))
	processed := 0
	var mu sync.Mutex
	record := func(i int, res models.DocumentResult) {
		res.Class = ClassOf(root, res.Path)
		mu.Lock()
		defer mu.Unlock()
		results[i] = res
		done[i] = true
		processed++
		logger.Info(fmt.Sprintf("[%d/%d] processed", processed, len(files)),
			logging.F(logging.FieldFile, res.Path),
			logging.F(logging.FieldStatus, status(res)))
		o.progress.Advance(res)
	}

	if workers == 1 {
		for i, file := range files {
			if ctx.Err() != nil {
				break
			}
			record(i, o.process(file))
		}
	} else {
		var g errgroup.Group
		g.SetLimit(workers)
		for i, file := range files {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				record(i, o.process(file))
				return nil
			})
		}
		_ = g.Wait()
	}

	o.progress.Finish()
	o.stats.Finish(time.Since(start))

	summary := o.stats.Snapshot()
	for i, ok := range done {
		if ok {
			summary.Documents = append(summary.Documents, results[i])
		}
	}
	summary.LogSummary(logger)

	if err := ctx.Err(); err != nil {
		logger.Warn("Batch cancelled",
			logging.F("processed", summary.Processed()),
			logging.F("remaining", summary.Total-summary.Processed()))
		return summary, fmt.Errorf("batch cancelled: %w", err)
	}
	return summary, nil
}

// process runs the processor on one file. A panic fails that document only.
func (o *Orchestrator) process(path string) (res models.DocumentResult) {
	defer func() {
		if r := recover(); r != nil {
			res = models.DocumentResult{
				Path: path,
				Err:  &pdferror.DocumentError{Path: path, Op: "process", Err: fmt.Errorf("panic: %v", r)},
			}
			o.stats.RecordDocument(false)
			o.logger.WithError(res.Err).Error("Document processing aborted", logging.F(logging.FieldFile, path))
		}
	}()
	return o.processor.Process(path, o.stats)
}

// IsFatal reports whether err is a run-level condition that ended the batch
// before processing.
func IsFatal(err error) bool {
	return errors.Is(err, pdferror.ErrRootNotFound) || errors.Is(err, pdferror.ErrNoDocuments)
}

func status(res models.DocumentResult) string {
	if res.Succeeded {
		return "ok"
	}
	return "failed"
}
