package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/pdf-txt/internal/logging"
	"fjacquet/pdf-txt/internal/models"
)

func sampleSummary() models.RunSummary {
	return models.RunSummary{
		RunID:     "run-42",
		Total:     3,
		Succeeded: 2,
		Failed:    1,
		OCRPages:  4,
		TextPages: 6,
		Duration:  6 * time.Second,
		Documents: []models.DocumentResult{
			{Path: "/d/a/1.pdf", Class: "a", OutputPath: "/d/a/1.txt", Pages: 5, OCRPages: 1, TextPages: 4, Duration: 1500 * time.Millisecond, Succeeded: true},
			{Path: "/d/a/2.pdf", Class: "a", OutputPath: "/d/a/2.txt", Pages: 5, OCRPages: 3, TextPages: 2, Duration: 4 * time.Second, Succeeded: true},
			{Path: "/d/b/3.pdf", Class: "b", Err: errors.New("open: not a PDF, really")},
		},
	}
}

func TestGenerateSummary_Text(t *testing.T) {
	g := NewReportGenerator(logging.NewMockLogger())

	out, err := g.GenerateSummary(sampleSummary(), "text")
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "Total documents:  3")
	assert.Contains(t, text, "Succeeded:        2")
	assert.Contains(t, text, "Failed:           1")
	assert.Contains(t, text, "OCR pages:        4")
	assert.Contains(t, text, "Text pages:       6")
	assert.Contains(t, text, "Total time:       6.00s")
	assert.Contains(t, text, "Average time:     2.00s per document")
}

func TestGenerateSummary_TextOmitsAverageWithoutDocuments(t *testing.T) {
	g := NewReportGenerator(nil)

	out, err := g.GenerateSummary(models.RunSummary{}, "")
	require.NoError(t, err)
	assert.NotContains(t, string(out), "Average time")
}

func TestGenerateSummary_JSON(t *testing.T) {
	g := NewReportGenerator(logging.NewMockLogger())

	out, err := g.GenerateSummary(sampleSummary(), "JSON")
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "run-42", decoded["run_id"])
	assert.Equal(t, float64(3), decoded["total"])
	assert.Equal(t, float64(2), decoded["average_seconds_per_document"])
	assert.Equal(t, []interface{}{"/d/b/3.pdf"}, decoded["failed_documents"])
}

func TestGenerateSummary_UnsupportedFormat(t *testing.T) {
	_, err := NewReportGenerator(nil).GenerateSummary(sampleSummary(), "xml")
	assert.ErrorContains(t, err, "unsupported summary format")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReportGenerator(nil).WriteCSV(&buf, sampleSummary().Documents))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "path,class,output,status,pages,ocr_pages,text_pages,duration_ms,error", lines[0])
	assert.Equal(t, "/d/a/1.pdf,a,/d/a/1.txt,ok,5,1,4,1500,", lines[1])
	assert.Equal(t, `/d/b/3.pdf,b,,failed,0,0,0,0,"open: not a PDF, really"`, lines[3])
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "run.csv")
	logger := logging.NewMockLogger()

	require.NoError(t, NewReportGenerator(logger).WriteCSVFile(path, sampleSummary().Documents))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "path,class,"))
	assert.True(t, logger.HasEntry("INFO", "Wrote document report"))
}
