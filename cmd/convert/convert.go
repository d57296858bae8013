// Package convert implements the single-document conversion command.
package convert

import (
	"fmt"

	"fjacquet/pdf-txt/cmd/root"
	"fjacquet/pdf-txt/internal/container"
	"fjacquet/pdf-txt/internal/fileutils"

	"github.com/spf13/cobra"
)

var inputFile string

// Cmd represents the convert command
var Cmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a single PDF to text",
	Long: `Convert a single PDF document to a .txt file written next to it.

Example:
  pdf-txt convert -i contrato.pdf`,
	RunE: convertFunc,
}

func init() {
	Cmd.Flags().StringVarP(&inputFile, "input", "i", "", "PDF file to convert")
	_ = Cmd.MarkFlagRequired("input")
}

func convertFunc(cmd *cobra.Command, args []string) error {
	c, err := root.NewContainer(cmd)
	if err != nil {
		return err
	}
	defer root.CloseContainer(c)

	return convert(c, inputFile, cmd)
}

func convert(c *container.Container, path string, cmd *cobra.Command) error {
	if !fileutils.FileExists(path) {
		return fmt.Errorf("input file not found: %s", path)
	}

	res := c.GetProcessor().Process(path, nil)
	if !res.Succeeded {
		return res.Err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %d pages (%d OCR, %d text) -> %s\n",
		path, res.Pages, res.OCRPages, res.TextPages, res.OutputPath)
	return err
}
