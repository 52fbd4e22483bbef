package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/contagion"
	"github.com/discochess/contagion/sensitivity/analysis"
	"github.com/discochess/contagion/sensitivity/reporting"
	"github.com/discochess/contagion/sensitivity/sweep"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Compare projections across values of one parameter",
	Long: `Vary one parameter over a list of values and compare each variant
with the baseline.

For each variant the report shows the peak of illness, total and excess
deaths and the first day hospital capacity is exceeded, followed by a
statistical comparison of daily deaths against the baseline.

Parameters: ` + strings.Join(sweep.Parameters(), ", ") + `

Examples:
  # Hospital capacity
  contagion sweep --param total_available_beds --values 0,15000,50000,100000

  # Contact reduction as a Markdown report
  contagion sweep --param daily_contacts --values 10,20,30 --format markdown > contacts.md`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

var (
	sweepParams      parameterFlags
	sweepScenario    string
	sweepParam       string
	sweepValues      []float64
	sweepConcurrency int
	sweepFormat      string
	sweepBootstrap   int
	sweepConfidence  float64
)

func init() {
	sweepParams.register(sweepCmd)
	sweepCmd.Flags().StringVarP(&sweepScenario, "scenario", "s", "", "stored scenario to use as baseline")
	sweepCmd.Flags().StringVarP(&sweepParam, "param", "p", "total_available_beds", "parameter to vary")
	sweepCmd.Flags().Float64SliceVar(&sweepValues, "values", nil, "comma-separated values to try")
	sweepCmd.Flags().IntVar(&sweepConcurrency, "concurrency", -1, "parallel runs (default from config)")
	sweepCmd.Flags().StringVarP(&sweepFormat, "format", "f", "text", "report format: text, markdown")
	sweepCmd.Flags().IntVar(&sweepBootstrap, "bootstrap", 1000, "bootstrap iterations for confidence intervals")
	sweepCmd.Flags().Float64Var(&sweepConfidence, "confidence", 0.95, "confidence level")
	sweepCmd.MarkFlagRequired("values")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	if sweepFormat != "text" && sweepFormat != "markdown" {
		return fmt.Errorf("unknown report format %q: want text or markdown", sweepFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	st, collector, err := openStore(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	p, seed, err := baseInputs(cmd, st, sweepScenario)
	if err != nil {
		return err
	}
	sweepParams.apply(cmd, &p)

	concurrency := sweepConcurrency
	if concurrency < 0 {
		concurrency = cfg.Sweep.Concurrency
	}

	engine, err := contagion.New(
		contagion.WithCacheSize(cfg.Engine.ResultCacheSize),
		contagion.WithStats(collector),
		contagion.WithLogger(log.Named("contagion")),
	)
	if err != nil {
		return err
	}

	log.Debug("starting sweep",
		zap.String("parameter", sweepParam),
		zap.Float64s("values", sweepValues),
		zap.Int("concurrency", concurrency),
	)

	res, err := sweep.Run(cmd.Context(), engine, sweep.Sweep{
		Base:      p,
		Seed:      seed,
		Parameter: sweepParam,
		Values:    sweepValues,
	}, concurrency)
	if err != nil {
		return err
	}
	comps := analysis.CompareAll(res, sweepBootstrap, sweepConfidence)

	if sweepFormat == "markdown" {
		reporting.WriteMarkdown(cmd.OutOrStdout(), res, comps)
		return nil
	}
	return reporting.WriteText(cmd.OutOrStdout(), res, comps)
}
