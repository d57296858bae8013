package pdfdoc

import (
	"fmt"
	"image"
	"os"

	"fjacquet/pdf-txt/internal/models"
	"fjacquet/pdf-txt/internal/pdferror"
)

// MockPage describes one page of a MockDocument.
type MockPage struct {
	Text      string
	TextErr   error
	Images    []models.ImageInfo
	ImagesErr error
	Raster    image.Image
	RenderErr error
	// Panic, when non-nil, is raised by RenderPage.
	Panic interface{}
	// TextPanic and ImagesPanic are raised by PageText and PageImages.
	TextPanic   interface{}
	ImagesPanic interface{}
}

// MockDocument is an in-memory Document for tests.
type MockDocument struct {
	Name   string
	Pages  []MockPage
	Closed bool
}

// NewMockDocument creates a MockDocument with the given pages.
func NewMockDocument(name string, pages ...MockPage) *MockDocument {
	return &MockDocument{Name: name, Pages: pages}
}

func (d *MockDocument) Path() string { return d.Name }

func (d *MockDocument) NumPages() int { return len(d.Pages) }

func (d *MockDocument) page(i int) (MockPage, error) {
	if i < 0 || i >= len(d.Pages) {
		return MockPage{}, fmt.Errorf("page %d out of range", i)
	}
	return d.Pages[i], nil
}

func (d *MockDocument) PageText(page int) (string, error) {
	p, err := d.page(page)
	if err != nil {
		return "", err
	}
	if p.TextPanic != nil {
		panic(p.TextPanic)
	}
	return p.Text, p.TextErr
}

func (d *MockDocument) PageImages(page int) ([]models.ImageInfo, error) {
	p, err := d.page(page)
	if err != nil {
		return nil, err
	}
	if p.ImagesPanic != nil {
		panic(p.ImagesPanic)
	}
	return p.Images, p.ImagesErr
}

func (d *MockDocument) RenderPage(page int, dpi float64) (image.Image, error) {
	p, err := d.page(page)
	if err != nil {
		return nil, err
	}
	if p.Panic != nil {
		panic(p.Panic)
	}
	if p.RenderErr != nil {
		return nil, p.RenderErr
	}
	if p.Raster != nil {
		return p.Raster, nil
	}
	return image.NewRGBA(image.Rect(0, 0, 8, 8)), nil
}

func (d *MockDocument) Close() error {
	d.Closed = true
	return nil
}

// MockOpener serves MockDocuments by path.
type MockOpener struct {
	Docs   map[string]*MockDocument
	Errors map[string]error
}

// NewMockOpener creates an empty MockOpener.
func NewMockOpener() *MockOpener {
	return &MockOpener{Docs: map[string]*MockDocument{}, Errors: map[string]error{}}
}

// Add registers doc under its Name.
func (o *MockOpener) Add(doc *MockDocument) *MockOpener {
	o.Docs[doc.Name] = doc
	return o
}

// Fail makes Open(path) return err.
func (o *MockOpener) Fail(path string, err error) *MockOpener {
	o.Errors[path] = err
	return o
}

// Open returns the registered document for path.
func (o *MockOpener) Open(path string) (Document, error) {
	if err, ok := o.Errors[path]; ok {
		return nil, &pdferror.DocumentError{Path: path, Op: "open", Err: err}
	}
	if doc, ok := o.Docs[path]; ok {
		doc.Closed = false
		return doc, nil
	}
	return nil, &pdferror.DocumentError{Path: path, Op: "open", Err: os.ErrNotExist}
}
