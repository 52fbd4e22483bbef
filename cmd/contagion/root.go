package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/contagion/fx/scenariofx"
	"github.com/discochess/contagion/internal/config"
	"github.com/discochess/contagion/internal/stats"
	"github.com/discochess/contagion/internal/stats/logger"
	"github.com/discochess/contagion/internal/store"
)

var (
	// Global flags.
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "contagion",
	Short: "Deterministic day-by-day epidemic projections",
	Long: `Contagion projects the course of an epidemic through a closed
population with limited hospital capacity.

Each day new infections, recoveries and deaths are derived from the
previous day. Deaths rise once the number of ill exceeds the available
beds.

Configuration is read from --config (YAML) and CONTAGION_* environment
variables; run "contagion config" to list them.

Examples:
  # Project the reference scenario
  contagion run

  # Halve contacts and export the daily series
  contagion run --daily-contacts 20 --view daily --output daily.csv.gz

  # Compare hospital capacities
  contagion sweep --param total_available_beds --values 0,15000,50000,100000

  # Serve projections over HTTP
  contagion serve`,
	SilenceUsage: true,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "List configuration environment variables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, err := config.Describe()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), desc)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.AddCommand(configCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newLogger builds a production logger at cfg.LogLevel, or a development
// logger when --verbose is set.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = level
	return zc.Build()
}

// openStore opens the configured scenario store for one-shot commands.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Store, stats.Collector, error) {
	collector := logger.New(log.Named("stats"))
	st, err := scenariofx.NewStore(ctx, cfg.Store, collector)
	if err != nil {
		return nil, nil, fmt.Errorf("opening scenario store: %w", err)
	}
	return st, collector, nil
}
