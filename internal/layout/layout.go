// Package layout rebuilds reading-order text lines from unordered OCR
// detections.
package layout

import (
	"sort"
	"strings"

	"fjacquet/pdf-txt/internal/models"
)

// ColumnSeparator joins the fragments of one line.
const ColumnSeparator = " | "

// Reconstructor groups detections into rows by vertical proximity of their
// centroids. The row tolerance is global, not adapted to font size.
type Reconstructor struct {
	confidenceThreshold float64
	rowTolerance        float64
}

// New creates a Reconstructor. Detections with confidence <= threshold are
// discarded; two centroids within rowTolerance vertically share a row.
func New(confidenceThreshold, rowTolerance float64) *Reconstructor {
	return &Reconstructor{
		confidenceThreshold: confidenceThreshold,
		rowTolerance:        rowTolerance,
	}
}

// Filter returns the detections whose confidence exceeds the threshold, in
// input order.
func (r *Reconstructor) Filter(detections []models.Detection) []models.Detection {
	kept := make([]models.Detection, 0, len(detections))
	for _, d := range detections {
		if d.Confidence > r.confidenceThreshold {
			kept = append(kept, d)
		}
	}
	return kept
}

type placed struct {
	det models.Detection
	at  models.Point
}

// Rows filters detections and groups them into rows.
//
// Detections are seeded in (y, x) centroid order. Each one joins the first
// row, in creation order, whose anchor (its first member) is within the
// tolerance; otherwise it opens a new row. Anchors never move. Members of a
// row are ordered by x.
func (r *Reconstructor) Rows(detections []models.Detection) [][]models.Detection {
	kept := r.Filter(detections)
	if len(kept) == 0 {
		return nil
	}

	items := make([]placed, len(kept))
	for i, d := range kept {
		items[i] = placed{det: d, at: d.Centroid()}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].at.Y != items[j].at.Y {
			return items[i].at.Y < items[j].at.Y
		}
		return items[i].at.X < items[j].at.X
	})

	var rows [][]placed
	for _, it := range items {
		joined := false
		for i := range rows {
			if abs(it.at.Y-rows[i][0].at.Y) <= r.rowTolerance {
				rows[i] = append(rows[i], it)
				joined = true
				break
			}
		}
		if !joined {
			rows = append(rows, []placed{it})
		}
	}

	out := make([][]models.Detection, len(rows))
	for i, row := range rows {
		sort.SliceStable(row, func(a, b int) bool { return row[a].at.X < row[b].at.X })
		dets := make([]models.Detection, len(row))
		for j, it := range row {
			dets[j] = it.det
		}
		out[i] = dets
	}
	return out
}

// Lines renders each row as its trimmed, non-empty texts joined by
// ColumnSeparator. Rows with nothing to render are dropped.
func (r *Reconstructor) Lines(detections []models.Detection) []string {
	rows := r.Rows(detections)
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		parts := make([]string, 0, len(row))
		for _, d := range row {
			if text := strings.TrimSpace(d.Text); text != "" {
				parts = append(parts, text)
			}
		}
		if len(parts) > 0 {
			lines = append(lines, strings.Join(parts, ColumnSeparator))
		}
	}
	return lines
}

// Text returns Lines joined by newlines, or "" when nothing survives.
func (r *Reconstructor) Text(detections []models.Detection) string {
	return strings.Join(r.Lines(detections), "\n")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
