// Package ui provides terminal components for the CLI.
package ui

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"fjacquet/pdf-txt/internal/models"
)

// ProgressBar shows batch progress on a terminal. It implements
// batch.Progress.
type ProgressBar struct {
	writer      io.Writer
	description string
	bar         *progressbar.ProgressBar
	failed      int
}

// NewProgressBar creates a progress bar writing to w.
func NewProgressBar(w io.Writer, description string) *ProgressBar {
	return &ProgressBar{writer: w, description: description}
}

// Start creates the bar for total documents.
func (p *ProgressBar) Start(total int) {
	w := p.writer
	p.failed = 0
	p.bar = progressbar.NewOptions64(
		int64(total),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(p.description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Advance moves the bar by one document.
func (p *ProgressBar) Advance(result models.DocumentResult) {
	if p.bar == nil {
		return
	}
	if !result.Succeeded {
		p.failed++
	}
	desc := fmt.Sprintf("%s %s", p.description, filepath.Base(result.Path))
	if p.failed > 0 {
		desc = fmt.Sprintf("%s (%d failed)", desc, p.failed)
	}
	p.bar.Describe(desc)
	_ = p.bar.Add(1)
}

// Finish completes the bar.
func (p *ProgressBar) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}

// Failed returns the number of failed documents seen since Start.
func (p *ProgressBar) Failed() int {
	return p.failed
}
