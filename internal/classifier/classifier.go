// Package classifier decides, page by page, whether text comes from OCR or
// from the embedded text layer.
package classifier

import (
	"strings"
	"unicode/utf8"

	"fjacquet/pdf-txt/internal/models"
	"fjacquet/pdf-txt/internal/pdfdoc"
)

// Thresholds configures the classification heuristic.
type Thresholds struct {
	// ImagePixels is the width*height above which a single image forces OCR.
	ImagePixels int
	// TextChars is the minimum trimmed text length that avoids OCR.
	TextChars int
}

// Classifier applies Thresholds to pages. It holds no state between calls.
type Classifier struct {
	thresholds Thresholds
}

// New creates a Classifier.
func New(thresholds Thresholds) *Classifier {
	return &Classifier{thresholds: thresholds}
}

// Thresholds returns the configured thresholds.
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// Classify decides whether a page needs OCR.
//
// Any image whose pixel area exceeds the image threshold forces OCR and stops
// the scan. Images with unreadable metadata are skipped. Otherwise the page
// needs OCR when its trimmed text has fewer code points than the text
// threshold.
func (c *Classifier) Classify(page models.PageContent) models.PageInfo {
	info := models.PageInfo{
		Num:        page.Num,
		ImageCount: len(page.Images),
		TextChars:  utf8.RuneCountInString(strings.TrimSpace(page.Text)),
	}

	for _, img := range page.Images {
		if img.Err != nil {
			continue
		}
		if img.PixelArea() > c.thresholds.ImagePixels {
			info.NeedsOCR = true
			return info
		}
	}

	info.NeedsOCR = info.TextChars < c.thresholds.TextChars
	return info
}

// ClassifyPage reads and classifies one page of doc.
func (c *Classifier) ClassifyPage(doc pdfdoc.Document, page int) models.PageInfo {
	return c.Classify(pdfdoc.Content(doc, page))
}

// ClassifyDocument classifies every page of doc in index order.
func (c *Classifier) ClassifyDocument(doc pdfdoc.Document) []models.PageInfo {
	n := doc.NumPages()
	infos := make([]models.PageInfo, 0, n)
	for i := 0; i < n; i++ {
		infos = append(infos, c.ClassifyPage(doc, i))
	}
	return infos
}
