// Package report renders batch run summaries and per-document reports.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"fjacquet/pdf-txt/internal/fileutils"
	"fjacquet/pdf-txt/internal/logging"
	"fjacquet/pdf-txt/internal/models"
)

// Summary formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ReportGenerator renders run summaries and document reports.
type ReportGenerator struct {
	logger logging.Logger
}

// NewReportGenerator creates a new instance of ReportGenerator.
func NewReportGenerator(logger logging.Logger) *ReportGenerator {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &ReportGenerator{
		logger: logger.WithField(logging.FieldComponent, "ReportGenerator"),
	}
}

// GenerateSummary renders a run summary in the given format (text or json).
func (g *ReportGenerator) GenerateSummary(summary models.RunSummary, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatText, "":
		return []byte(textSummary(summary)), nil
	case FormatJSON:
		return g.jsonSummary(summary)
	default:
		return nil, fmt.Errorf("unsupported summary format: %s", format)
	}
}

func textSummary(s models.RunSummary) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "SUMMARY")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Total documents:  %d\n", s.Total)
	fmt.Fprintf(&b, "Succeeded:        %d\n", s.Succeeded)
	fmt.Fprintf(&b, "Failed:           %d\n", s.Failed)
	fmt.Fprintf(&b, "OCR pages:        %d\n", s.OCRPages)
	fmt.Fprintf(&b, "Text pages:       %d\n", s.TextPages)
	fmt.Fprintf(&b, "Total time:       %.2fs\n", s.Duration.Seconds())
	if avg, ok := s.AveragePerDocument(); ok {
		fmt.Fprintf(&b, "Average time:     %.2fs per document\n", avg.Seconds())
	}
	return b.String()
}

type jsonSummary struct {
	RunID           string   `json:"run_id"`
	Total           int      `json:"total"`
	Succeeded       int      `json:"succeeded"`
	Failed          int      `json:"failed"`
	OCRPages        int      `json:"ocr_pages"`
	TextPages       int      `json:"text_pages"`
	DurationSeconds float64  `json:"duration_seconds"`
	AverageSeconds  *float64 `json:"average_seconds_per_document,omitempty"`
	FailedDocuments []string `json:"failed_documents,omitempty"`
}

func (g *ReportGenerator) jsonSummary(s models.RunSummary) ([]byte, error) {
	out := jsonSummary{
		RunID:           s.RunID,
		Total:           s.Total,
		Succeeded:       s.Succeeded,
		Failed:          s.Failed,
		OCRPages:        s.OCRPages,
		TextPages:       s.TextPages,
		DurationSeconds: s.Duration.Seconds(),
	}
	if avg, ok := s.AveragePerDocument(); ok {
		secs := avg.Seconds()
		out.AverageSeconds = &secs
	}
	for _, doc := range s.Documents {
		if !doc.Succeeded {
			out.FailedDocuments = append(out.FailedDocuments, doc.Path)
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON summary")
		return nil, fmt.Errorf("failed to marshal JSON summary: %w", err)
	}
	return append(data, '\n'), nil
}

// documentRow is one line of the CSV document report.
type documentRow struct {
	Path       string `csv:"path"`
	Class      string `csv:"class"`
	Output     string `csv:"output"`
	Status     string `csv:"status"`
	Pages      int    `csv:"pages"`
	OCRPages   int    `csv:"ocr_pages"`
	TextPages  int    `csv:"text_pages"`
	DurationMS int64  `csv:"duration_ms"`
	Error      string `csv:"error"`
}

func toRows(docs []models.DocumentResult) []*documentRow {
	rows := make([]*documentRow, 0, len(docs))
	for _, d := range docs {
		row := &documentRow{
			Path:       d.Path,
			Class:      d.Class,
			Output:     d.OutputPath,
			Status:     "ok",
			Pages:      d.Pages,
			OCRPages:   d.OCRPages,
			TextPages:  d.TextPages,
			DurationMS: d.Duration.Milliseconds(),
		}
		if !d.Succeeded {
			row.Status = "failed"
		}
		if d.Err != nil {
			row.Error = d.Err.Error()
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteCSV writes one row per document to w.
func (g *ReportGenerator) WriteCSV(w io.Writer, docs []models.DocumentResult) error {
	csvWriter := csv.NewWriter(w)
	if err := gocsv.MarshalCSV(toRows(docs), gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("failed to write CSV report: %w", err)
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteCSVFile writes the document report to filePath, creating parent
// directories as needed.
func (g *ReportGenerator) WriteCSVFile(filePath string, docs []models.DocumentResult) error {
	file, err := fileutils.CreateFile(filePath)
	if err != nil {
		return err
	}
	defer func() {
		if err := file.Close(); err != nil {
			g.logger.WithError(err).Warn("Failed to close report file",
				logging.F(logging.FieldFile, filePath))
		}
	}()

	if err := g.WriteCSV(file, docs); err != nil {
		return err
	}
	g.logger.Info("Wrote document report",
		logging.F(logging.FieldFile, filePath),
		logging.F(logging.FieldCount, len(docs)))
	return nil
}
