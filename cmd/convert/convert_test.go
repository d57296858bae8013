package convert

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/pdf-txt/internal/config"
	"fjacquet/pdf-txt/internal/container"
	"fjacquet/pdf-txt/internal/logging"
	"fjacquet/pdf-txt/internal/models"
	"fjacquet/pdf-txt/internal/ocr"
	"fjacquet/pdf-txt/internal/pdfdoc"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type idleEngine struct{}

func (idleEngine) Name() string                              { return "idle" }
func (idleEngine) Init(ocr.EngineConfig) error               { return nil }
func (idleEngine) Detect([]byte) ([]models.Detection, error) { return nil, nil }
func (idleEngine) Close() error                              { return nil }

type idleCache struct{ dir string }

func (c idleCache) Dir() string            { return c.dir }
func (c idleCache) Ensure(...string) error { return nil }
func (c idleCache) Purge() error           { return nil }

func newTestContainer(t *testing.T, opener pdfdoc.Opener) *container.Container {
	t.Helper()
	cfg := &config.Config{}
	cfg.OCR.Lang = "es"
	cfg.OCR.ConfidenceThreshold = 0.5
	cfg.OCR.DPIHighQuality = 250
	cfg.OCR.RowToleranceY = 30
	cfg.Detection.ImagePixelThreshold = 200000
	cfg.Detection.TextCharThreshold = 10
	cfg.Output.PageHeader = "PAGE %d"
	cfg.Output.EmptyPageMarker = "(empty)"

	c, err := container.NewContainerWith(cfg, container.Dependencies{
		Logger: logging.NewMockLogger(),
		Opener: opener,
		Engine: idleEngine{},
		Cache:  idleCache{dir: t.TempDir()},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestConvertCommand_Metadata(t *testing.T) {
	assert.Equal(t, "convert", Cmd.Use)
	assert.Contains(t, Cmd.Short, "single PDF")
	assert.Contains(t, Cmd.Long, "Example")
	assert.NotNil(t, Cmd.RunE)

	flag := Cmd.Flags().Lookup("input")
	require.NotNil(t, flag)
	assert.Equal(t, "i", flag.Shorthand)
}

func TestConvert_WritesText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, nil, 0600))
	doc := pdfdoc.NewMockDocument(path,
		pdfdoc.MockPage{Text: "first page with enough text"},
		pdfdoc.MockPage{Text: "second page with enough text"})
	c := newTestContainer(t, pdfdoc.NewMockOpener().Add(doc))

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, convert(c, path, cmd))
	assert.Contains(t, out.String(), "2 pages (0 OCR, 2 text)")

	text, err := os.ReadFile(filepath.Join(filepath.Dir(path), "doc.txt"))
	require.NoError(t, err)
	assert.Equal(t, "PAGE 0\nfirst page with enough text\n\nPAGE 1\nsecond page with enough text\n", string(text))
}

func TestConvert_MissingFile(t *testing.T) {
	c := newTestContainer(t, pdfdoc.NewMockOpener())

	err := convert(c, filepath.Join(t.TempDir(), "nope.pdf"), &cobra.Command{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input file not found")
}

func TestConvert_OpenFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, nil, 0600))
	c := newTestContainer(t, pdfdoc.NewMockOpener().Fail(path, os.ErrPermission))

	err := convert(c, path, &cobra.Command{})
	assert.ErrorIs(t, err, os.ErrPermission)
}
