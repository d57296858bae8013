// Package extract implements the batch conversion command.
package extract

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/pdf-txt/cmd/root"
	"fjacquet/pdf-txt/internal/batch"
	"fjacquet/pdf-txt/internal/container"
	"fjacquet/pdf-txt/internal/logging"
	"fjacquet/pdf-txt/internal/models"
	"fjacquet/pdf-txt/internal/ui"

	"github.com/spf13/cobra"
)

var (
	reportFile    string
	summaryFormat string
	showProgress  bool
)

// Cmd represents the extract command
var Cmd = &cobra.Command{
	Use:   "extract [dir]",
	Short: "Convert every PDF under a directory to text",
	Long: `Convert every PDF found recursively under a directory to a .txt file
written next to it.

The directory defaults to paths.documents_dir. Documents that cannot be
opened are reported as failed and the batch continues.

Example:
  pdf-txt extract datos/documentos-original --report report.csv --progress`,
	Args: cobra.MaximumNArgs(1),
	RunE: extractFunc,
}

func init() {
	Cmd.Flags().StringVar(&reportFile, "report", "", "Write a per-document CSV report to this file")
	Cmd.Flags().StringVar(&summaryFormat, "summary-format", "text", "Summary format (text, json)")
	Cmd.Flags().Bool("parallel", false, "Process documents concurrently")
	Cmd.Flags().Int("workers", 0, "Maximum concurrent documents when --parallel is set")
	Cmd.Flags().BoolVar(&showProgress, "progress", false, "Show a progress bar on stderr")
}

func extractFunc(cmd *cobra.Command, args []string) error {
	if summaryFormat != "text" && summaryFormat != "json" {
		return fmt.Errorf("unsupported summary format %q", summaryFormat)
	}

	c, err := root.NewContainer(cmd)
	if err != nil {
		return err
	}
	defer root.CloseContainer(c)

	dir := c.GetConfig().Paths.DocumentsDir
	if len(args) == 1 {
		dir = args[0]
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, c, dir, cmd)
}

func run(ctx context.Context, c *container.Container, dir string, cmd *cobra.Command) error {
	logger := c.GetLogger()
	orch := c.GetOrchestrator()
	if showProgress {
		orch.WithProgress(ui.NewProgressBar(cmd.ErrOrStderr(), "Converting"))
	}

	summary, runErr := orch.Run(ctx, dir)
	if batch.IsFatal(runErr) {
		return runErr
	}

	if err := writeReport(c, summary); err != nil {
		return err
	}

	out, err := c.GetReportGenerator().GenerateSummary(summary, summaryFormat)
	if err != nil {
		return err
	}
	if _, err := cmd.OutOrStdout().Write(out); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if runErr != nil {
		logger.WithError(runErr).Warn("Batch interrupted", logging.F(logging.FieldRunID, summary.RunID))
		return runErr
	}
	return nil
}

func writeReport(c *container.Container, summary models.RunSummary) error {
	if reportFile == "" {
		return nil
	}
	if err := c.GetReportGenerator().WriteCSVFile(reportFile, summary.Documents); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	c.GetLogger().Info("Report written",
		logging.F(logging.FieldOutputFile, reportFile),
		logging.F(logging.FieldCount, len(summary.Documents)))
	return nil
}
