package ocr

import (
	"fmt"
	"image"
	"sync"

	"fjacquet/pdf-txt/internal/logging"
	"fjacquet/pdf-txt/internal/models"
	"fjacquet/pdf-txt/internal/pdfdoc"
	"fjacquet/pdf-txt/internal/pdferror"
)

// State is the initialization state of a Backend.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateFailedPermanently
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateFailedPermanently:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configures a Backend.
type Options struct {
	// Language is a configuration language code such as "es".
	Language    string
	UseGPU      bool
	UseAngleCls bool
	Granularity Granularity
}

// Backend is the single OCR resource of a run. Initialization happens at most
// once successfully; concurrent callers wait for and reuse its outcome. All
// engine calls are serialized.
type Backend struct {
	engine Engine
	cache  ModelCache
	opts   Options
	logger logging.Logger

	mu    sync.Mutex
	state State
	err   error
}

// NewBackend creates an uninitialized Backend. It fails when the cache
// directory is not a printable ASCII path.
func NewBackend(engine Engine, cache ModelCache, opts Options, logger logging.Logger) (*Backend, error) {
	if err := ValidateCacheDir(cache.Dir()); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if opts.Granularity == "" {
		opts.Granularity = GranularityLine
	}
	logger = logger.WithField(logging.FieldEngine, engine.Name())
	if opts.UseGPU {
		logger.Warn("GPU acceleration requested but the OCR engine runs on CPU only; using CPU")
	}
	return &Backend{
		engine: engine,
		cache:  cache,
		opts:   opts,
		logger: logger,
	}, nil
}

// State returns the current initialization state.
func (b *Backend) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Err returns the error that made the backend fail permanently, if any.
func (b *Backend) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// EnsureReady initializes the engine if that has not been tried yet and
// reports whether it is usable.
func (b *Backend) EnsureReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ensureReadyLocked()
}

func (b *Backend) ensureReadyLocked() bool {
	switch b.state {
	case StateReady:
		return true
	case StateFailedPermanently:
		return false
	}

	err := b.initOnce()
	if err != nil && IsCorruptedCache(err) {
		b.logger.WithError(err).Warn("OCR model cache looks corrupted; purging and retrying once",
			logging.F("cache_dir", b.cache.Dir()))
		if purgeErr := b.cache.Purge(); purgeErr != nil {
			b.logger.WithError(purgeErr).Warn("Failed to purge OCR model cache")
		}
		err = b.initOnce()
	}

	if err != nil {
		b.state = StateFailedPermanently
		b.err = &pdferror.BackendError{Engine: b.engine.Name(), Err: err}
		b.logger.WithError(err).Error("OCR engine unavailable; OCR pages will be empty")
		return false
	}

	b.state = StateReady
	b.logger.Info("OCR engine ready", logging.F("language", TesseractLanguage(b.opts.Language)))
	return true
}

func (b *Backend) initOnce() error {
	lang := TesseractLanguage(b.opts.Language)
	if err := b.cache.Ensure(modelNames(lang, b.opts.UseAngleCls)...); err != nil {
		return err
	}
	return b.engine.Init(EngineConfig{
		ModelDir:          b.cache.Dir(),
		Language:          lang,
		DetectOrientation: b.opts.UseAngleCls,
		Granularity:       b.opts.Granularity,
	})
}

// Rasterize renders a page at dpi and preprocesses it for detection.
func (b *Backend) Rasterize(doc pdfdoc.Document, page int, dpi float64) (*image.Gray, error) {
	img, err := doc.RenderPage(page, dpi)
	if err != nil {
		return nil, fmt.Errorf("render page %d at %.0f dpi: %w", page, dpi, err)
	}
	return Grayscale(img), nil
}

// Detect runs the engine on img and returns unfiltered detections. It returns
// ErrBackendUnavailable once initialization has failed for good.
func (b *Backend) Detect(img image.Image) ([]models.Detection, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.ensureReadyLocked() {
		return nil, fmt.Errorf("%w: %v", pdferror.ErrBackendUnavailable, b.err)
	}
	return b.engine.Detect(data)
}

// Close releases the engine.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.Close()
}
