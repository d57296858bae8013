package extractor

import (
	"image"
	"sync"

	"fjacquet/pdf-txt/internal/models"
	"fjacquet/pdf-txt/internal/pdfdoc"
)

// MockOCR implements OCR for tests. It rasterizes through the document and
// returns the same detections for every image.
type MockOCR struct {
	MockDetections []models.Detection
	MockErr        error

	mu      sync.Mutex
	Detects int
}

// NewMockOCR creates a MockOCR with the given detections or error.
func NewMockOCR(detections []models.Detection, err error) *MockOCR {
	return &MockOCR{MockDetections: detections, MockErr: err}
}

// Rasterize renders the page and returns an empty gray image of its size.
func (m *MockOCR) Rasterize(doc pdfdoc.Document, page int, dpi float64) (*image.Gray, error) {
	img, err := doc.RenderPage(page, dpi)
	if err != nil {
		return nil, err
	}
	return image.NewGray(img.Bounds()), nil
}

// Detect returns the predefined detections or error.
func (m *MockOCR) Detect(img image.Image) ([]models.Detection, error) {
	m.mu.Lock()
	m.Detects++
	m.mu.Unlock()
	if m.MockErr != nil {
		return nil, m.MockErr
	}
	return m.MockDetections, nil
}

// DetectCalls returns the number of Detect calls.
func (m *MockOCR) DetectCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Detects
}
