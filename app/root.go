// Package app implements the main application commands.
package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/config"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/logger"
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"directory holding main.toml (default ./etc/)")
	rootCmd.PersistentFlags().StringArrayVarP(&optionArgs, "arg", "a", nil,
		"option argument name[=value], may be repeated")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "", "database driver, overrides Auth.Driver")
}

var (
	configPath string   // Path to the configuration directory
	optionArgs []string // Option arguments from the command line
	driver     string

	cfg config.Config

	rootCmd = &cobra.Command{
		Use:   "mysqlauth",
		Short: "mysqlauth checks account credentials stored in SQL tables",
		Long: `mysqlauth authenticates users against password columns in MySQL,
PostgreSQL or SQLite tables, checks account status, changes passwords and
writes audit records, configured with pam_mysql compatible options.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			writeMetrics()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setup(_ *cobra.Command, _ []string) error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err //nolint:wrapcheck
	}

	if driver != "" {
		cfg.Auth.Driver = driver
	}

	return logger.Init(cfg.Log) //nolint:wrapcheck
}

// writeMetrics dumps the default registry for a textfile collector.
func writeMetrics() {
	if cfg.Metrics.TextFile == "" {
		return
	}

	if err := prometheus.WriteToTextfile(cfg.Metrics.TextFile, prometheus.DefaultGatherer); err != nil {
		log.Error().Err(err).Str("file", cfg.Metrics.TextFile).Msg("failed to write metrics")
	}
}
