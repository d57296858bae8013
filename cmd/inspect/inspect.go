// Package inspect implements the page classification report command.
package inspect

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"fjacquet/pdf-txt/cmd/root"
	"fjacquet/pdf-txt/internal/container"
	"fjacquet/pdf-txt/internal/fileutils"
	"fjacquet/pdf-txt/internal/logging"
	"fjacquet/pdf-txt/internal/models"
	"fjacquet/pdf-txt/internal/ocr"
	"fjacquet/pdf-txt/internal/pdfdoc"

	"github.com/spf13/cobra"
)

var (
	inputFile string
	dumpDir   string
)

// Cmd represents the inspect command
var Cmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show how each page of a PDF would be extracted",
	Long: `Classify every page of a PDF and print whether it would be read from its
text layer or sent to OCR. No text file is written.

With --dump-dir, the grayscale raster of every OCR page is written as PNG,
exactly as the recognizer would receive it.

Example:
  pdf-txt inspect -i escaneado.pdf --dump-dir /tmp/pages`,
	RunE: inspectFunc,
}

func init() {
	Cmd.Flags().StringVarP(&inputFile, "input", "i", "", "PDF file to inspect")
	Cmd.Flags().StringVar(&dumpDir, "dump-dir", "", "Write OCR page rasters to this directory")
	_ = Cmd.MarkFlagRequired("input")
}

func inspectFunc(cmd *cobra.Command, args []string) error {
	c, err := root.NewContainer(cmd)
	if err != nil {
		return err
	}
	defer root.CloseContainer(c)

	return inspect(c, inputFile, dumpDir, cmd.OutOrStdout())
}

func inspect(c *container.Container, path, dump string, w io.Writer) error {
	doc, err := c.GetOpener().Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := doc.Close(); err != nil {
			c.GetLogger().WithError(err).Warn("Failed to close document")
		}
	}()

	pages := c.GetClassifier().ClassifyDocument(doc)
	if err := printPages(w, path, pages); err != nil {
		return err
	}
	if dump == "" {
		return nil
	}
	return dumpRasters(c, doc, pages, dump, w)
}

func printPages(w io.Writer, path string, pages []models.PageInfo) error {
	var b strings.Builder
	ocrPages := 0
	fmt.Fprintf(&b, "%s\n", path)
	fmt.Fprintf(&b, "%-6s %-6s %-7s %s\n", "PAGE", "METHOD", "IMAGES", "CHARS")
	for _, p := range pages {
		if p.NeedsOCR {
			ocrPages++
		}
		fmt.Fprintf(&b, "%-6d %-6s %-7d %d\n", p.Num, p.Method(), p.ImageCount, p.TextChars)
	}
	fmt.Fprintf(&b, "%d pages, %d OCR, %d text\n", len(pages), ocrPages, len(pages)-ocrPages)
	_, err := io.WriteString(w, b.String())
	return err
}

func dumpRasters(c *container.Container, doc pdfdoc.Document, pages []models.PageInfo, dir string, w io.Writer) error {
	if err := fileutils.EnsureDirectoryExists(dir); err != nil {
		return err
	}
	dpi := float64(c.GetConfig().OCR.DPI)
	base := strings.TrimSuffix(filepath.Base(doc.Path()), filepath.Ext(doc.Path()))

	for _, p := range pages {
		if !p.NeedsOCR {
			continue
		}
		img, err := c.GetBackend().Rasterize(doc, p.Num, dpi)
		if err != nil {
			c.GetLogger().WithError(err).Warn("Cannot rasterize page",
				logging.F(logging.FieldPage, p.Num))
			continue
		}
		data, err := ocr.EncodePNG(img)
		if err != nil {
			return err
		}
		out := filepath.Join(dir, fmt.Sprintf("%s_page%03d.png", base, p.Num))
		if err := fileutils.WriteFile(out, data, 0600); err != nil {
			return err
		}
		fmt.Fprintf(w, "wrote %s\n", out)
	}
	return nil
}
