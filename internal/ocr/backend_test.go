package ocr

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fjacquet/pdf-txt/internal/logging"
	"fjacquet/pdf-txt/internal/models"
	"fjacquet/pdf-txt/internal/pdfdoc"
	"fjacquet/pdf-txt/internal/pdferror"
)

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Name() string { return "mock" }

func (m *MockEngine) Init(cfg EngineConfig) error {
	return m.Called(cfg).Error(0)
}

func (m *MockEngine) Detect(png []byte) ([]models.Detection, error) {
	args := m.Called(png)
	dets, _ := args.Get(0).([]models.Detection)
	return dets, args.Error(1)
}

func (m *MockEngine) Close() error {
	return m.Called().Error(0)
}

type fakeCache struct {
	mu        sync.Mutex
	dir       string
	ensureErr []error
	ensured   [][]string
	purges    int
}

func (c *fakeCache) Dir() string { return c.dir }

func (c *fakeCache) Ensure(names ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensured = append(c.ensured, names)
	if len(c.ensureErr) == 0 {
		return nil
	}
	err := c.ensureErr[0]
	c.ensureErr = c.ensureErr[1:]
	return err
}

func (c *fakeCache) Purge() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purges++
	return nil
}

func newTestBackend(t *testing.T, engine Engine, cache *fakeCache, opts Options) (*Backend, *logging.MockLogger) {
	t.Helper()
	logger := logging.NewMockLogger()
	b, err := NewBackend(engine, cache, opts, logger)
	require.NoError(t, err)
	return b, logger
}

func TestBackend_InitSucceedsOnce(t *testing.T) {
	engine := &MockEngine{}
	engine.On("Init", EngineConfig{ModelDir: "/cache", Language: "spa", Granularity: GranularityLine}).Return(nil).Once()
	cache := &fakeCache{dir: "/cache"}

	b, _ := newTestBackend(t, engine, cache, Options{Language: "es"})
	assert.Equal(t, StateUninitialized, b.State())

	assert.True(t, b.EnsureReady())
	assert.True(t, b.EnsureReady())
	assert.Equal(t, StateReady, b.State())
	assert.Equal(t, [][]string{{"spa"}}, cache.ensured)
	engine.AssertNumberOfCalls(t, "Init", 1)
}

func TestBackend_CorruptedCacheRetriedOnce(t *testing.T) {
	engine := &MockEngine{}
	engine.On("Init", mock.Anything).Return(errors.New("zlib: bad crc in spa.traineddata")).Once()
	engine.On("Init", mock.Anything).Return(nil).Once()
	cache := &fakeCache{dir: "/cache"}

	b, logger := newTestBackend(t, engine, cache, Options{Language: "es"})

	assert.True(t, b.EnsureReady())
	assert.Equal(t, 1, cache.purges)
	assert.Equal(t, StateReady, b.State())
	assert.True(t, logger.HasEntry("WARN", "OCR model cache looks corrupted; purging and retrying once"))
	engine.AssertNumberOfCalls(t, "Init", 2)
}

func TestBackend_GenericInitFailureKeepsCache(t *testing.T) {
	engine := &MockEngine{}
	engine.On("Init", mock.Anything).Return(errors.New("failed to initialize TessBaseAPI with code -1"))
	cache := &fakeCache{dir: "/cache"}

	b, _ := newTestBackend(t, engine, cache, Options{Language: "xx"})

	assert.False(t, b.EnsureReady())
	assert.Equal(t, StateFailedPermanently, b.State())
	assert.Equal(t, 0, cache.purges)
	engine.AssertNumberOfCalls(t, "Init", 1)
}

func TestBackend_CorruptedDownloadRetriedOnce(t *testing.T) {
	engine := &MockEngine{}
	engine.On("Init", mock.Anything).Return(nil).Once()
	cache := &fakeCache{dir: "/cache", ensureErr: []error{fmt.Errorf("truncated: %w", pdferror.ErrCorruptedModelCache)}}

	b, _ := newTestBackend(t, engine, cache, Options{Language: "en"})

	assert.True(t, b.EnsureReady())
	assert.Equal(t, 1, cache.purges)
	engine.AssertNumberOfCalls(t, "Init", 1)
}

func TestBackend_SecondCorruptionIsPermanent(t *testing.T) {
	engine := &MockEngine{}
	engine.On("Init", mock.Anything).Return(errors.New("unexpected end of data"))
	cache := &fakeCache{dir: "/cache"}

	b, logger := newTestBackend(t, engine, cache, Options{Language: "es"})

	assert.False(t, b.EnsureReady())
	assert.False(t, b.EnsureReady())
	assert.Equal(t, StateFailedPermanently, b.State())
	assert.Equal(t, 1, cache.purges)
	engine.AssertNumberOfCalls(t, "Init", 2)

	var backendErr *pdferror.BackendError
	require.ErrorAs(t, b.Err(), &backendErr)
	assert.Equal(t, "mock", backendErr.Engine)
	assert.Len(t, logger.GetEntriesByLevel("ERROR"), 1)
}

func TestBackend_OtherErrorsAreNotRetried(t *testing.T) {
	engine := &MockEngine{}
	engine.On("Init", mock.Anything).Return(errors.New("permission denied"))
	cache := &fakeCache{dir: "/cache"}

	b, _ := newTestBackend(t, engine, cache, Options{Language: "es"})

	assert.False(t, b.EnsureReady())
	assert.Equal(t, 0, cache.purges)
	engine.AssertNumberOfCalls(t, "Init", 1)
}

func TestBackend_ConcurrentEnsureReadyInitializesOnce(t *testing.T) {
	engine := &MockEngine{}
	engine.On("Init", mock.Anything).Return(nil)
	cache := &fakeCache{dir: "/cache"}

	b, _ := newTestBackend(t, engine, cache, Options{Language: "es"})

	var wg sync.WaitGroup
	results := make([]bool, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = b.EnsureReady()
		}(i)
	}
	wg.Wait()

	for _, ok := range results {
		assert.True(t, ok)
	}
	engine.AssertNumberOfCalls(t, "Init", 1)
}

func TestBackend_Detect(t *testing.T) {
	want := []models.Detection{{Text: "hola", Confidence: 0.9}}
	engine := &MockEngine{}
	engine.On("Init", mock.Anything).Return(nil)
	engine.On("Detect", mock.AnythingOfType("[]uint8")).Return(want, nil)
	cache := &fakeCache{dir: "/cache"}

	b, _ := newTestBackend(t, engine, cache, Options{Language: "es"})

	got, err := b.Detect(image.NewGray(image.Rect(0, 0, 4, 4)))
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, StateReady, b.State())
}

func TestBackend_DetectAfterPermanentFailure(t *testing.T) {
	engine := &MockEngine{}
	engine.On("Init", mock.Anything).Return(errors.New("bad crc"))
	cache := &fakeCache{dir: "/cache"}

	b, _ := newTestBackend(t, engine, cache, Options{Language: "es"})

	_, err := b.Detect(image.NewGray(image.Rect(0, 0, 4, 4)))
	require.Error(t, err)
	assert.ErrorIs(t, err, pdferror.ErrBackendUnavailable)
	engine.AssertNotCalled(t, "Detect", mock.Anything)
}

func TestBackend_AngleClassificationRequestsOSD(t *testing.T) {
	engine := &MockEngine{}
	engine.On("Init", EngineConfig{ModelDir: "/cache", Language: "fra", DetectOrientation: true, Granularity: GranularityWord}).Return(nil)
	cache := &fakeCache{dir: "/cache"}

	b, _ := newTestBackend(t, engine, cache, Options{Language: "fr", UseAngleCls: true, Granularity: GranularityWord})

	assert.True(t, b.EnsureReady())
	assert.Equal(t, [][]string{{"fra", "osd"}}, cache.ensured)
}

func TestNewBackend_GPUWarning(t *testing.T) {
	logger := logging.NewMockLogger()
	_, err := NewBackend(&MockEngine{}, &fakeCache{dir: "/cache"}, Options{Language: "es", UseGPU: true}, logger)
	require.NoError(t, err)
	assert.Len(t, logger.GetEntriesByLevel("WARN"), 1)
}

func TestNewBackend_RejectsUnsafeCacheDir(t *testing.T) {
	_, err := NewBackend(&MockEngine{}, &fakeCache{dir: "/home/José/.cache"}, Options{Language: "es"}, nil)
	require.Error(t, err)

	var validationErr *pdferror.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "ocr.cache_dir", validationErr.Field)
}

func TestBackend_Rasterize(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	src.Set(1, 0, color.RGBA{A: 255})
	doc := pdfdoc.NewMockDocument("a.pdf", pdfdoc.MockPage{Raster: src}, pdfdoc.MockPage{RenderErr: errors.New("render failed")})

	b, _ := newTestBackend(t, &MockEngine{}, &fakeCache{dir: "/cache"}, Options{Language: "es"})

	gray, err := b.Rasterize(doc, 0, 250)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), gray.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), gray.GrayAt(1, 0).Y)

	_, err = b.Rasterize(doc, 1, 250)
	assert.ErrorContains(t, err, "render failed")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "failed", StateFailedPermanently.String())
	assert.Equal(t, "State(9)", State(9).String())
}
