package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/pdf-txt/internal/classifier"
	"fjacquet/pdf-txt/internal/extractor"
	"fjacquet/pdf-txt/internal/layout"
	"fjacquet/pdf-txt/internal/logging"
	"fjacquet/pdf-txt/internal/models"
	"fjacquet/pdf-txt/internal/pdfdoc"
	"fjacquet/pdf-txt/internal/pdferror"
	"fjacquet/pdf-txt/internal/processor"
	"fjacquet/pdf-txt/internal/scanner"
)

type staticScanner struct {
	files []string
	err   error
}

func (s staticScanner) Scan(string) ([]string, error) { return s.files, s.err }

// fakeProcessor records calls and fails the paths listed in fail.
type fakeProcessor struct {
	fail    map[string]bool
	delay   time.Duration
	onStart func(path string)

	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (p *fakeProcessor) Process(path string, stats *models.RunStats) models.DocumentResult {
	p.calls.Add(1)
	n := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		m := p.maxSeen.Load()
		if n <= m || p.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	if p.onStart != nil {
		p.onStart(path)
	}
	time.Sleep(p.delay)

	ok := !p.fail[path]
	stats.RecordPage(models.MethodText)
	stats.RecordDocument(ok)
	return models.DocumentResult{Path: path, Pages: 1, TextPages: 1, Succeeded: ok}
}

type recordingProgress struct {
	mu       sync.Mutex
	total    int
	advanced []string
	finished bool
}

func (p *recordingProgress) Start(total int) { p.total = total }
func (p *recordingProgress) Advance(r models.DocumentResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advanced = append(p.advanced, r.Path)
}
func (p *recordingProgress) Finish() { p.finished = true }

func paths(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = filepath.Join("/data", "clase"+string(rune('a'+i%3)), "doc"+string(rune('0'+i))+".pdf")
	}
	return out
}

func TestRun_Sequential(t *testing.T) {
	files := paths(4)
	proc := &fakeProcessor{fail: map[string]bool{files[2]: true}}
	progress := &recordingProgress{}
	o := NewOrchestrator(staticScanner{files: files}, proc, Options{}, logging.NewMockLogger()).WithProgress(progress)
	o.newRunID = func() string { return "run-1" }

	summary, err := o.Run(context.Background(), "/data")
	require.NoError(t, err)

	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 4, summary.TextPages)
	require.Len(t, summary.Documents, 4)
	for i, doc := range summary.Documents {
		assert.Equal(t, files[i], doc.Path)
	}
	assert.Equal(t, "clasea", summary.Documents[0].Class)
	assert.Equal(t, int32(1), proc.maxSeen.Load())
	assert.Equal(t, 4, progress.total)
	assert.Equal(t, files, progress.advanced)
	assert.True(t, progress.finished)

	_, ok := summary.AveragePerDocument()
	assert.True(t, ok)
}

func TestRun_PanickingDocumentFailsAlone(t *testing.T) {
	for _, opts := range []Options{{}, {Parallel: true, MaxWorkers: 3}} {
		files := paths(4)
		proc := &fakeProcessor{onStart: func(path string) {
			if path == files[1] {
				panic("native crash")
			}
		}}
		o := NewOrchestrator(staticScanner{files: files}, proc, opts, logging.NewMockLogger())

		var summary models.RunSummary
		var err error
		require.NotPanics(t, func() { summary, err = o.Run(context.Background(), "/data") })
		require.NoError(t, err)

		assert.Equal(t, 3, summary.Succeeded)
		assert.Equal(t, 1, summary.Failed)
		require.Len(t, summary.Documents, 4)
		assert.False(t, summary.Documents[1].Succeeded)

		var docErr *pdferror.DocumentError
		require.ErrorAs(t, summary.Documents[1].Err, &docErr)
		assert.Equal(t, "process", docErr.Op)
	}
}

func TestRun_ParallelKeepsDiscoveryOrder(t *testing.T) {
	files := paths(8)
	proc := &fakeProcessor{delay: 5 * time.Millisecond}
	o := NewOrchestrator(staticScanner{files: files}, proc, Options{Parallel: true, MaxWorkers: 3}, logging.NewMockLogger())

	summary, err := o.Run(context.Background(), "/data")
	require.NoError(t, err)

	assert.Equal(t, 8, summary.Succeeded)
	require.Len(t, summary.Documents, 8)
	for i, doc := range summary.Documents {
		assert.Equal(t, files[i], doc.Path)
	}
	assert.LessOrEqual(t, proc.maxSeen.Load(), int32(3))
}

func TestRun_ParallelDisabledWithOneWorker(t *testing.T) {
	proc := &fakeProcessor{delay: time.Millisecond}
	o := NewOrchestrator(staticScanner{files: paths(5)}, proc, Options{Parallel: true, MaxWorkers: 1}, nil)

	_, err := o.Run(context.Background(), "/data")
	require.NoError(t, err)
	assert.Equal(t, int32(1), proc.maxSeen.Load())
}

func TestRun_RootNotFound(t *testing.T) {
	sc := scanner.NewDocumentScanner(nil, logging.NewMockLogger())
	proc := &fakeProcessor{}
	o := NewOrchestrator(sc, proc, Options{}, logging.NewMockLogger())

	_, err := o.Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, pdferror.ErrRootNotFound)
	assert.True(t, IsFatal(err))
	assert.Equal(t, int32(0), proc.calls.Load())
}

func TestRun_NoDocuments(t *testing.T) {
	proc := &fakeProcessor{}
	logger := logging.NewMockLogger()
	o := NewOrchestrator(staticScanner{}, proc, Options{}, logger)

	summary, err := o.Run(context.Background(), "/data")
	assert.ErrorIs(t, err, pdferror.ErrNoDocuments)
	assert.True(t, IsFatal(err))
	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, int32(0), proc.calls.Load())
	assert.True(t, logger.HasEntry("ERROR", "No PDF documents found"))
}

func TestRun_CancellationStopsScheduling(t *testing.T) {
	files := paths(5)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	proc := &fakeProcessor{onStart: func(path string) {
		if path == files[1] {
			cancel()
		}
	}}
	o := NewOrchestrator(staticScanner{files: files}, proc, Options{}, logging.NewMockLogger())

	summary, err := o.Run(ctx, "/data")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsFatal(err))
	assert.Equal(t, int32(2), proc.calls.Load())
	assert.Equal(t, 2, summary.Processed())
	assert.Len(t, summary.Documents, 2)
}

func TestRun_StatsResetBetweenRuns(t *testing.T) {
	proc := &fakeProcessor{}
	o := NewOrchestrator(staticScanner{files: paths(3)}, proc, Options{}, nil)

	_, err := o.Run(context.Background(), "/data")
	require.NoError(t, err)
	summary, err := o.Run(context.Background(), "/data")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 3, summary.TextPages)
	assert.NotEqual(t, "", o.Stats().Snapshot().RunID)
}

// End-to-end over a real directory tree with in-memory documents.
func TestRun_EndToEnd(t *testing.T) {
	root := t.TempDir()
	good := filepath.Join(root, "facturas", "f1.pdf")
	scan := filepath.Join(root, "contratos", "c1.PDF")
	broken := filepath.Join(root, "contratos", "roto.pdf")
	for _, p := range []string{good, scan, broken} {
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0750))
		require.NoError(t, os.WriteFile(p, []byte("%PDF"), 0600))
	}

	opener := pdfdoc.NewMockOpener().
		Add(pdfdoc.NewMockDocument(good, pdfdoc.MockPage{Text: strings.Repeat("factura ", 30)})).
		Add(pdfdoc.NewMockDocument(scan,
			pdfdoc.MockPage{Images: []models.ImageInfo{{Width: 1000, Height: 1000}}},
			pdfdoc.MockPage{Panic: "render crash"},
			pdfdoc.MockPage{Text: strings.Repeat("anexo ", 30)},
		)).
		Fail(broken, errors.New("xref table broken"))

	logger := logging.NewMockLogger()
	ocr := extractor.NewMockOCR([]models.Detection{
		{Polygon: models.RectPolygon(0, 0, 50, 10), Text: "CONTRATO", Confidence: 0.9},
	}, nil)
	c := classifier.New(classifier.Thresholds{ImagePixels: 200000, TextChars: 100})
	ex := extractor.NewPageExtractor(c, ocr, layout.New(0.5, 30), 250, logger)
	proc := processor.NewDocumentProcessor(opener, ex, processor.DefaultFormat, logger)
	o := NewOrchestrator(scanner.NewDocumentScanner([]string{".pdf"}, logger), proc, Options{}, logger)

	summary, err := o.Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.OCRPages)
	assert.Equal(t, 2, summary.TextPages)

	data, err := os.ReadFile(filepath.Join(root, "contratos", "c1.txt"))
	require.NoError(t, err)
	assert.Equal(t,
		"PÁGINA 0\nCONTRATO\n\nPÁGINA 1\n(página vacía)\n\nPÁGINA 2\n"+strings.TrimSpace(strings.Repeat("anexo ", 30))+"\n",
		string(data))
	assert.FileExists(t, filepath.Join(root, "facturas", "f1.txt"))
	assert.NoFileExists(t, filepath.Join(root, "contratos", "roto.txt"))
	assert.True(t, logger.HasEntry("INFO", "Batch summary"))
}
