// Package ocr wraps a text recognition engine behind the capabilities the
// extraction pipeline needs: rasterize a page, preprocess it, detect text.
//
// The Backend owns lazy engine initialization. A corrupted model cache is
// purged and initialization retried exactly once; after that the backend is
// permanently unavailable and OCR pages degrade to empty text.
package ocr

import (
	"fjacquet/pdf-txt/internal/models"
)

// Granularity selects the level at which detections are reported.
type Granularity string

const (
	// GranularityLine reports one detection per text line.
	GranularityLine Granularity = "line"
	// GranularityWord reports one detection per word.
	GranularityWord Granularity = "word"
)

// EngineConfig is passed to Engine.Init.
type EngineConfig struct {
	// ModelDir holds the engine's model files.
	ModelDir string
	// Language is the engine-specific language code.
	Language string
	// DetectOrientation enables orientation and script detection.
	DetectOrientation bool
	Granularity       Granularity
}

// Engine is a text recognition engine. Implementations need not be safe for
// concurrent use; Backend serializes every call.
type Engine interface {
	// Name identifies the engine in logs and errors.
	Name() string

	// Init loads the models. It may be called again after a failure.
	Init(cfg EngineConfig) error

	// Detect recognizes text in a PNG-encoded image. Results are unfiltered.
	Detect(png []byte) ([]models.Detection, error)

	// Close releases engine resources.
	Close() error
}

// ModelCache provides model files on disk for an Engine.
type ModelCache interface {
	// Dir is the directory handed to the engine.
	Dir() string

	// Ensure makes the named models available, fetching missing ones.
	Ensure(names ...string) error

	// Purge deletes every cached model.
	Purge() error
}
