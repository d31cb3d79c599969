// Package commands implements the mcc-tool CLI commands.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mcc-station/mcc-go/internal/config"
	"github.com/mcc-station/mcc-go/internal/logging"
)

// Version is reported by --version and in log lines.
const Version = "0.3.0"

var (
	configPath string

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "mcc-tool",
	Short: "Multi-device control station toolkit",
	Long: `mcc-tool - inspect the messaging core of a control station.

Reads binary event logs written by the command tracker and telemetry views,
works with session/device/channel name tokens, and checks the protocol
catalog from the station configuration.

Configuration is read from --config (YAML) with MCC_* environment overrides,
e.g. MCC_LOG_LEVEL=debug.`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c
		slog.SetDefault(logging.New(c.Log, Version))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (YAML)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
