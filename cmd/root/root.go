// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/pdf-txt/internal/config"
	"fjacquet/pdf-txt/internal/container"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// ConfigFile is the explicit configuration file, if any.
	ConfigFile string

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "pdf-txt",
		Short: "Convert PDF documents to plain text, with OCR for scanned pages.",
		Long: `pdf-txt converts PDF documents to plain text files.

Pages with a usable text layer are read directly. Scanned pages, or pages
dominated by a large image, are rasterized and recognized with Tesseract,
and the recognized words are laid out back into rows and columns.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to pdf-txt!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			cfg, err := LoadConfig(cmd)
			if err != nil {
				return err
			}
			Log = config.ConfigureLoggingFromConfig(cfg)
			return nil
		},
	}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "Config file (default $HOME/.pdf-txt/config.yaml)")
	Cmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error)")
	Cmd.PersistentFlags().String("log-format", "", "Log format (text, json)")
}

// LoadConfig resolves the configuration for cmd, honouring its flags.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(ConfigFile, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// NewContainer builds the application container for cmd.
func NewContainer(cmd *cobra.Command) (*container.Container, error) {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return container.NewContainer(cfg)
}

// CloseContainer releases c and logs a close failure.
func CloseContainer(c *container.Container) {
	if err := c.Close(); err != nil {
		c.GetLogger().WithError(err).Warn("Failed to close container")
	}
}
