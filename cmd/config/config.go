// Package config implements the command that prints the effective configuration.
package config

import (
	"fmt"
	"io"

	"fjacquet/pdf-txt/cmd/root"
	appconfig "fjacquet/pdf-txt/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Cmd represents the config command
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration resolved from defaults, the config file,
environment variables and flags, as YAML.

Example:
  pdf-txt config --log-level debug`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := root.LoadConfig(cmd)
		if err != nil {
			return err
		}
		return write(cmd.OutOrStdout(), cfg)
	},
}

func write(w io.Writer, cfg *appconfig.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return enc.Close()
}
