// Package processor turns one PDF into its text artifact.
package processor

import (
	"fmt"
	"strings"
	"time"

	"fjacquet/pdf-txt/internal/extractor"
	"fjacquet/pdf-txt/internal/fileutils"
	"fjacquet/pdf-txt/internal/logging"
	"fjacquet/pdf-txt/internal/models"
	"fjacquet/pdf-txt/internal/pdfdoc"
	"fjacquet/pdf-txt/internal/pdferror"
)

// OutputExtension is the extension of the text artifact written beside each PDF.
const OutputExtension = ".txt"

// Format controls how page blocks are rendered.
type Format struct {
	// PageHeader is a format string with one %d verb for the page index.
	PageHeader string
	// EmptyPageMarker replaces the text of pages that produced none.
	EmptyPageMarker string
}

// DefaultFormat is the header and marker used when none is configured.
var DefaultFormat = Format{
	PageHeader:      "PÁGINA %d",
	EmptyPageMarker: "(página vacía)",
}

// Block renders one page block: the header line, the text or the empty-page
// marker, and a trailing newline.
func (f Format) Block(num int, text string) string {
	if text == "" {
		text = f.EmptyPageMarker
	}
	return fmt.Sprintf(f.PageHeader, num) + "\n" + text + "\n"
}

// PageExtractor extracts the text of one page.
type PageExtractor interface {
	Extract(doc pdfdoc.Document, page int) extractor.Result
}

// DocumentProcessor runs page extraction over every page of a document and
// writes the result to <base>.txt beside the source.
type DocumentProcessor struct {
	opener    pdfdoc.Opener
	extractor PageExtractor
	format    Format
	logger    logging.Logger
}

// NewDocumentProcessor creates a DocumentProcessor.
func NewDocumentProcessor(opener pdfdoc.Opener, ex PageExtractor, format Format, logger logging.Logger) *DocumentProcessor {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if format.PageHeader == "" {
		format.PageHeader = DefaultFormat.PageHeader
	}
	if format.EmptyPageMarker == "" {
		format.EmptyPageMarker = DefaultFormat.EmptyPageMarker
	}
	return &DocumentProcessor{
		opener:    opener,
		extractor: ex,
		format:    format,
		logger:    logger,
	}
}

// Process converts the PDF at path. Page counts and the document outcome are
// recorded in stats when it is non-nil. Only failures to open the document or
// to write its output mark it failed; page failures become empty pages.
func (p *DocumentProcessor) Process(path string, stats *models.RunStats) (out models.DocumentResult) {
	start := time.Now()
	result := models.DocumentResult{Path: path}
	logger := p.logger.WithField(logging.FieldFile, path)

	finish := func() models.DocumentResult {
		result.Duration = time.Since(start)
		if stats != nil {
			stats.RecordDocument(result.Succeeded)
		}
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			result.Succeeded = false
			result.OutputPath = ""
			result.Err = &pdferror.DocumentError{Path: path, Op: "process", Err: fmt.Errorf("panic: %v", r)}
			logger.WithError(result.Err).Error("Document processing aborted")
			out = finish()
		}
	}()

	doc, err := p.opener.Open(path)
	if err != nil {
		result.Err = err
		logger.WithError(err).Error("Failed to open document")
		return finish()
	}
	defer func() {
		if err := doc.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close document")
		}
	}()

	logger.Info("Processing document", logging.F(logging.FieldPages, doc.NumPages()))

	text := p.render(doc, &result, stats, logger)

	outputPath := fileutils.ReplaceExtension(path, OutputExtension)
	if err := fileutils.WriteFile(outputPath, []byte(text), 0600); err != nil {
		result.Err = &pdferror.DocumentError{Path: path, Op: "write output", Err: err}
		logger.WithError(err).Error("Failed to write text output",
			logging.F(logging.FieldOutputFile, outputPath))
		return finish()
	}

	result.OutputPath = outputPath
	result.Succeeded = true
	logger.Info("Document converted",
		logging.F(logging.FieldOutputFile, outputPath),
		logging.F("ocr_pages", result.OCRPages),
		logging.F("text_pages", result.TextPages),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return finish()
}

// Render returns the text artifact of an open document without writing it.
func (p *DocumentProcessor) Render(doc pdfdoc.Document) string {
	var result models.DocumentResult
	return p.render(doc, &result, nil, p.logger.WithField(logging.FieldFile, doc.Path()))
}

func (p *DocumentProcessor) render(doc pdfdoc.Document, result *models.DocumentResult, stats *models.RunStats, logger logging.Logger) string {
	n := doc.NumPages()
	blocks := make([]string, 0, n)
	for i := 0; i < n; i++ {
		res := p.extractor.Extract(doc, i)

		method := res.Info.Method()
		if method == models.MethodOCR {
			result.OCRPages++
		} else {
			result.TextPages++
		}
		if stats != nil {
			stats.RecordPage(method)
		}
		logger.Debug("Page classified",
			logging.F(logging.FieldPage, i),
			logging.F(logging.FieldMethod, string(method)),
			logging.F(logging.FieldImages, res.Info.ImageCount),
			logging.F(logging.FieldChars, res.Info.TextChars))

		blocks = append(blocks, p.format.Block(i, res.Text))
	}
	result.Pages = n
	return strings.Join(blocks, "\n")
}
