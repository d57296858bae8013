// Package container provides dependency injection for the pdf-txt application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"
	"io"

	"fjacquet/pdf-txt/internal/batch"
	"fjacquet/pdf-txt/internal/classifier"
	"fjacquet/pdf-txt/internal/config"
	"fjacquet/pdf-txt/internal/extractor"
	"fjacquet/pdf-txt/internal/layout"
	"fjacquet/pdf-txt/internal/logging"
	"fjacquet/pdf-txt/internal/ocr"
	"fjacquet/pdf-txt/internal/pdfdoc"
	"fjacquet/pdf-txt/internal/processor"
	"fjacquet/pdf-txt/internal/report"
	"fjacquet/pdf-txt/internal/scanner"
)

// Dependencies overrides the external collaborators of the container.
// Nil fields get their production implementation.
type Dependencies struct {
	Logger logging.Logger
	Opener pdfdoc.Opener
	Engine ocr.Engine
	Cache  ocr.ModelCache
}

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation. The OCR backend it owns is the single
// engine instance of the process and is shared by every document.
type Container struct {
	logger    logging.Logger
	logCloser io.Closer
	config    *config.Config

	opener       pdfdoc.Opener
	classifier   *classifier.Classifier
	backend      *ocr.Backend
	layout       *layout.Reconstructor
	extractor    *extractor.PageExtractor
	processor    *processor.DocumentProcessor
	scanner      *scanner.DocumentScanner
	orchestrator *batch.Orchestrator
	reporter     *report.ReportGenerator
}

// NewContainer creates and wires all application dependencies with their
// production implementations.
func NewContainer(cfg *config.Config) (*Container, error) {
	return NewContainerWith(cfg, Dependencies{})
}

// NewContainerWith creates the container, using deps where set.
func NewContainerWith(cfg *config.Config, deps Dependencies) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	logger := deps.Logger
	var logCloser io.Closer
	if logger == nil {
		var err error
		logger, logCloser, err = logging.NewLogrusAdapterWithFile(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	opener := deps.Opener
	if opener == nil {
		opener = pdfdoc.NewFitzOpener()
	}
	engine := deps.Engine
	if engine == nil {
		engine = ocr.NewTesseractEngine()
	}
	cache := deps.Cache
	if cache == nil {
		cache = ocr.NewModelStore(cfg.OCR.CacheDir, cfg.OCR.ModelURL, logger)
	}

	backend, err := ocr.NewBackend(engine, cache, ocr.Options{
		Language:    cfg.OCR.Lang,
		UseGPU:      cfg.OCR.UseGPU,
		UseAngleCls: cfg.OCR.UseAngleCls,
		Granularity: ocr.Granularity(cfg.OCR.Granularity),
	}, logger)
	if err != nil {
		closeQuietly(logCloser)
		return nil, err
	}

	cls := classifier.New(classifier.Thresholds{
		ImagePixels: cfg.Detection.ImagePixelThreshold,
		TextChars:   cfg.Detection.TextCharThreshold,
	})
	rec := layout.New(cfg.OCR.ConfidenceThreshold, cfg.OCR.RowToleranceY)
	ex := extractor.NewPageExtractor(cls, backend, rec, float64(cfg.OCR.DPIHighQuality), logger)
	proc := processor.NewDocumentProcessor(opener, ex, processor.Format{
		PageHeader:      cfg.Output.PageHeader,
		EmptyPageMarker: cfg.Output.EmptyPageMarker,
	}, logger)
	sc := scanner.NewDocumentScanner(cfg.Batch.Extensions, logger)
	orch := batch.NewOrchestrator(sc, proc, batch.Options{
		Parallel:   cfg.Batch.Parallel,
		MaxWorkers: cfg.Batch.MaxWorkers,
	}, logger)

	logger.Debug("Container initialized",
		logging.F(logging.FieldEngine, engine.Name()),
		logging.F("cache_dir", cache.Dir()),
		logging.F("parallel", cfg.Batch.Parallel),
		logging.F("max_workers", cfg.Batch.MaxWorkers))

	return &Container{
		logger:       logger,
		logCloser:    logCloser,
		config:       cfg,
		opener:       opener,
		classifier:   cls,
		backend:      backend,
		layout:       rec,
		extractor:    ex,
		processor:    proc,
		scanner:      sc,
		orchestrator: orch,
		reporter:     report.NewReportGenerator(logger),
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetOpener returns the PDF opener.
func (c *Container) GetOpener() pdfdoc.Opener {
	return c.opener
}

// GetClassifier returns the page classifier.
func (c *Container) GetClassifier() *classifier.Classifier {
	return c.classifier
}

// GetBackend returns the OCR backend.
func (c *Container) GetBackend() *ocr.Backend {
	return c.backend
}

// GetProcessor returns the document processor.
func (c *Container) GetProcessor() *processor.DocumentProcessor {
	return c.processor
}

// GetOrchestrator returns the batch orchestrator.
func (c *Container) GetOrchestrator() *batch.Orchestrator {
	return c.orchestrator
}

// GetReportGenerator returns the report generator.
func (c *Container) GetReportGenerator() *report.ReportGenerator {
	return c.reporter
}

// Close releases the OCR engine and the log file.
func (c *Container) Close() error {
	err := c.backend.Close()
	c.logger.Debug("Container closed")
	if c.logCloser != nil {
		if closeErr := c.logCloser.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
