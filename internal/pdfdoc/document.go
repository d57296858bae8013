// Package pdfdoc abstracts the PDF operations the extraction pipeline needs:
// page count, text layer, embedded image metadata and page rendering.
package pdfdoc

import (
	"fmt"
	"image"

	"fjacquet/pdf-txt/internal/models"
)

// Document is an open PDF. Page indices are 0-based and contiguous.
// A Document is used by one goroutine at a time.
type Document interface {
	// Path returns the filesystem path the document was opened from.
	Path() string

	// NumPages returns the number of pages.
	NumPages() int

	// PageText returns the embedded text layer of a page.
	PageText(page int) (string, error)

	// PageImages returns the raster images embedded in a page.
	PageImages(page int) ([]models.ImageInfo, error)

	// RenderPage rasterizes a page at the given resolution.
	RenderPage(page int, dpi float64) (image.Image, error)

	// Close releases the native resources held by the document.
	Close() error
}

// Opener opens documents. Production code uses FitzOpener; tests inject
// MockOpener.
type Opener interface {
	Open(path string) (Document, error)
}

// Content reads the classification input of one page. A failure to list
// images leaves Images empty and a failure to read the text layer leaves
// Text empty; neither is reported as an error. Panics raised by the
// underlying readers are treated as failures.
func Content(doc Document, page int) models.PageContent {
	content := models.PageContent{Num: page}
	if images, err := safeImages(doc, page); err == nil {
		content.Images = images
	}
	if text, err := safeText(doc, page); err == nil {
		content.Text = text
	}
	return content
}

func safeImages(doc Document, page int) (images []models.ImageInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			images, err = nil, fmt.Errorf("panic reading images of page %d: %v", page, r)
		}
	}()
	return doc.PageImages(page)
}

func safeText(doc Document, page int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("panic reading text of page %d: %v", page, r)
		}
	}()
	return doc.PageText(page)
}
