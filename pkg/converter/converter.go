// Package converter exposes pdf-txt conversion as a library.
//
// A Converter owns one OCR engine for its lifetime; reuse it across calls and
// Close it when done.
package converter

import (
	"context"

	"fjacquet/pdf-txt/internal/config"
	"fjacquet/pdf-txt/internal/container"
	"fjacquet/pdf-txt/internal/models"
)

// Result is the outcome of converting one document.
type Result = models.DocumentResult

// Summary is the outcome of converting a directory.
type Summary = models.RunSummary

// Converter converts PDF documents to text files written beside them.
type Converter struct {
	c *container.Container
}

// New creates a Converter from the configuration found in the environment,
// the default config file locations and .env.
func New() (*Converter, error) {
	config.LoadEnv()
	cfg, err := config.InitializeConfig()
	if err != nil {
		return nil, err
	}
	c, err := container.NewContainer(cfg)
	if err != nil {
		return nil, err
	}
	return &Converter{c: c}, nil
}

// ConvertFile converts one PDF. The returned error is the document failure,
// if any; page-level failures only produce empty pages.
func (cv *Converter) ConvertFile(path string) (Result, error) {
	res := cv.c.GetProcessor().Process(path, nil)
	return res, res.Err
}

// ConvertDir converts every PDF under dir.
func (cv *Converter) ConvertDir(ctx context.Context, dir string) (Summary, error) {
	return cv.c.GetOrchestrator().Run(ctx, dir)
}

// Close releases the OCR engine.
func (cv *Converter) Close() error {
	return cv.c.Close()
}
