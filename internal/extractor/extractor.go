// Package extractor obtains the text of one page, choosing between the
// embedded text layer and OCR.
package extractor

import (
	"fmt"
	"image"
	"strings"

	"fjacquet/pdf-txt/internal/classifier"
	"fjacquet/pdf-txt/internal/layout"
	"fjacquet/pdf-txt/internal/logging"
	"fjacquet/pdf-txt/internal/models"
	"fjacquet/pdf-txt/internal/pdfdoc"
	"fjacquet/pdf-txt/internal/pdferror"
)

// OCR is the subset of the OCR backend used for page extraction.
type OCR interface {
	Rasterize(doc pdfdoc.Document, page int, dpi float64) (*image.Gray, error)
	Detect(img image.Image) ([]models.Detection, error)
}

// Result is the outcome of extracting one page. Text is empty when Err is
// set; Err is informational and never stops the document.
type Result struct {
	Info models.PageInfo
	Text string
	Err  error
}

// PageExtractor composes classification, OCR and layout reconstruction.
type PageExtractor struct {
	classifier *classifier.Classifier
	ocr        OCR
	layout     *layout.Reconstructor
	dpi        float64
	logger     logging.Logger
}

// NewPageExtractor creates a PageExtractor that rasterizes OCR pages at dpi.
func NewPageExtractor(c *classifier.Classifier, ocr OCR, l *layout.Reconstructor, dpi float64, logger logging.Logger) *PageExtractor {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &PageExtractor{
		classifier: c,
		ocr:        ocr,
		layout:     l,
		dpi:        dpi,
		logger:     logger,
	}
}

// Extract classifies a page and returns its text. Every failure, including a
// panic in native code, degrades to empty text.
func (e *PageExtractor) Extract(doc pdfdoc.Document, page int) Result {
	info, err := e.classify(doc, page)
	res := Result{Info: info}

	var text string
	if err == nil {
		text, err = e.text(doc, info)
	}
	if err != nil {
		e.logger.WithError(err).Warn("Page extraction failed; using empty text",
			logging.F(logging.FieldFile, doc.Path()),
			logging.F(logging.FieldPage, page),
			logging.F(logging.FieldMethod, string(info.Method())))
		res.Err = err
		return res
	}

	res.Text = text
	e.logger.Debug("Page extracted",
		logging.F(logging.FieldFile, doc.Path()),
		logging.F(logging.FieldPage, page),
		logging.F(logging.FieldMethod, string(info.Method())),
		logging.F(logging.FieldImages, info.ImageCount),
		logging.F(logging.FieldChars, len(text)))
	return res
}

func (e *PageExtractor) classify(doc pdfdoc.Document, page int) (info models.PageInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			info = models.PageInfo{Num: page}
			err = &pdferror.PageError{Path: doc.Path(), Page: page, Stage: "classify", Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return e.classifier.ClassifyPage(doc, page), nil
}

func (e *PageExtractor) text(doc pdfdoc.Document, info models.PageInfo) (text string, err error) {
	stage := "text"
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &pdferror.PageError{Path: doc.Path(), Page: info.Num, Stage: stage, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if !info.NeedsOCR {
		raw, err := doc.PageText(info.Num)
		if err != nil {
			return "", &pdferror.PageError{Path: doc.Path(), Page: info.Num, Stage: stage, Err: err}
		}
		return strings.TrimSpace(raw), nil
	}

	stage = "rasterize"
	img, err := e.ocr.Rasterize(doc, info.Num, e.dpi)
	if err != nil {
		return "", &pdferror.PageError{Path: doc.Path(), Page: info.Num, Stage: stage, Err: err}
	}

	stage = "detect"
	detections, err := e.ocr.Detect(img)
	if err != nil {
		return "", &pdferror.PageError{Path: doc.Path(), Page: info.Num, Stage: stage, Err: err}
	}

	stage = "layout"
	return e.layout.Text(detections), nil
}
