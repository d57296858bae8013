package ocr

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"fjacquet/pdf-txt/internal/models"
)

// TesseractEngine implements Engine with Tesseract through gosseract.
// It runs on the CPU only.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
	client        *gosseract.Client
	level         gosseract.PageIteratorLevel
}

// NewTesseractEngine creates an uninitialized Tesseract engine.
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{clientFactory: gosseract.NewClient}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Init configures a fresh client and runs a probe recognition so that model
// loading errors surface here rather than on the first page.
func (e *TesseractEngine) Init(cfg EngineConfig) error {
	if e.client != nil {
		_ = e.client.Close()
		e.client = nil
	}

	client := e.clientFactory()
	if err := configure(client, cfg); err != nil {
		_ = client.Close()
		return err
	}
	if err := client.SetImageFromBytes(blankPNG()); err != nil {
		_ = client.Close()
		return fmt.Errorf("set probe image: %w", err)
	}
	if _, err := client.Text(); err != nil {
		_ = client.Close()
		return fmt.Errorf("probe recognition: %w", err)
	}

	e.client = client
	e.level = gosseract.RIL_TEXTLINE
	if cfg.Granularity == GranularityWord {
		e.level = gosseract.RIL_WORD
	}
	return nil
}

func configure(client *gosseract.Client, cfg EngineConfig) error {
	if cfg.ModelDir != "" {
		if err := client.SetTessdataPrefix(cfg.ModelDir); err != nil {
			return fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(cfg.Language); err != nil {
		return fmt.Errorf("set language %s: %w", cfg.Language, err)
	}
	mode := gosseract.PSM_AUTO
	if cfg.DetectOrientation {
		mode = gosseract.PSM_AUTO_OSD
	}
	if err := client.SetPageSegMode(mode); err != nil {
		return fmt.Errorf("set page segmentation mode: %w", err)
	}
	return nil
}

// Detect returns one detection per line or word, with confidence rescaled
// to [0, 1].
func (e *TesseractEngine) Detect(png []byte) ([]models.Detection, error) {
	if e.client == nil {
		return nil, fmt.Errorf("tesseract engine not initialized")
	}
	if err := e.client.SetImageFromBytes(png); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	boxes, err := e.client.GetBoundingBoxes(e.level)
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}
	return toDetections(boxes), nil
}

func toDetections(boxes []gosseract.BoundingBox) []models.Detection {
	dets := make([]models.Detection, 0, len(boxes))
	for _, b := range boxes {
		dets = append(dets, models.Detection{
			Polygon:    models.RectPolygon(float64(b.Box.Min.X), float64(b.Box.Min.Y), float64(b.Box.Max.X), float64(b.Box.Max.Y)),
			Text:       b.Word,
			Confidence: b.Confidence / 100.0,
		})
	}
	return dets
}

func (e *TesseractEngine) Close() error {
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}
