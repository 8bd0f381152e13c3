// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 16th 2026
// Project: SELVAR, Selective Auto-Regressive Lag Selection
// Class: 02-613 at Caregie Mellon University

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"selvar"
	"selvar/internal/config"
	"selvar/internal/logging"
	"selvar/internal/metrics"
	"selvar/internal/report"
	"selvar/internal/series"
)

// runCmd loads a CSV series, runs the lag search and writes the results
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Select and test lagged links of a CSV time series",
	Long: `Load a CSV file (header row of variable names, one row per timepoint),
select the lag structure of every variable and write the score, lag, p-value
and coefficient matrices plus a long-format link list to the output directory.

Flags override values from --config and SELVAR_* environment variables.

Examples:
  selvar run --input series.csv
  selvar run --input series.csv --maxlags -1 --batchsize 52
  selvar run --input series.csv --config selvar.yaml --out-dir results --trace 1`,
	RunE: runSelvar,
}

// Run command flags
var (
	runInput       string
	runConfigPath  string
	runMaxLags     int
	runBatchSize   int
	runMaxIter     int
	runTrace       int
	runSelfLags    bool
	runDetrend     bool
	runStandardise bool
	runWorkers     int
	runOutDir      string
	runAlpha       float64
	runLogLevel    string
	runLogFormat   string
	runMetricsFile string
)

func init() {
	rootCmd.AddCommand(runCmd)

	defaults := config.Default()
	f := runCmd.Flags()
	f.StringVar(&runInput, "input", "", "CSV file with one column per variable (required)")
	f.StringVar(&runConfigPath, "config", "", "YAML configuration file")
	f.IntVar(&runMaxLags, "maxlags", defaults.Selvar.MaxLags, "Lag ceiling; negative grows it per variable")
	f.IntVar(&runBatchSize, "batchsize", defaults.Selvar.BatchSize, "Timepoints per batch; negative uses one batch")
	f.IntVar(&runMaxIter, "mxitr", defaults.Selvar.MaxIter, "Moves per variable; negative runs to convergence")
	f.IntVar(&runTrace, "trace", defaults.Selvar.Trace, "1 logs committed moves, 2 also logs candidates")
	f.BoolVar(&runSelfLags, "self-lags", defaults.Selvar.SelfLags, "Allow a variable's own past as predictor")
	f.BoolVar(&runDetrend, "detrend", defaults.Preprocess.Detrend, "Remove a linear trend from every variable")
	f.BoolVar(&runStandardise, "standardise", defaults.Preprocess.Standardise, "Scale every variable to zero mean and unit SD")
	f.IntVar(&runWorkers, "workers", defaults.Selvar.Workers, "Variables searched concurrently; 0 uses every CPU")
	f.StringVar(&runOutDir, "out-dir", defaults.Output.Dir, "Directory for the result CSV files")
	f.Float64Var(&runAlpha, "alpha", 0.05, "Significance level of the console table")
	f.StringVar(&runLogLevel, "log-level", defaults.Logging.Level, "Log level (debug|info|warn|error)")
	f.StringVar(&runLogFormat, "log-format", defaults.Logging.Format, "Log format (console|json|auto)")
	f.StringVar(&runMetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	_ = runCmd.MarkFlagRequired("input")
}

// runSelvar executes the whole pipeline for one input file
func runSelvar(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(runConfigPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.WithComponent(logging.Setup(cfg.Logging.Level, cfg.Logging.Format), "cli")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load CSV into TimeSeries
	ts, err := series.LoadCSV(runInput)
	if err != nil {
		return err
	}
	T, N := ts.Dims()
	logger.Info().
		Str("input", runInput).
		Int("timepoints", T).
		Strs("variables", ts.VarNames).
		Msg("series loaded")
	if N < 2 {
		return fmt.Errorf("%w: need at least 2 variables, got %d", selvar.ErrInvalidSeries, N)
	}

	// 2. Search and test
	m := metrics.New()
	opts := selvar.Options{
		MaxLags:     cfg.Selvar.MaxLags,
		BatchSize:   cfg.Selvar.BatchSize,
		MaxIter:     cfg.Selvar.MaxIter,
		Trace:       cfg.Selvar.Trace,
		SelfLags:    cfg.Selvar.SelfLags,
		Workers:     cfg.Selvar.Workers,
		Detrend:     cfg.Preprocess.Detrend,
		Standardise: cfg.Preprocess.Standardise,
		Names:       ts.VarNames,
		Logger:      &logger,
		Metrics:     m,
	}
	res, err := selvar.Run(ctx, ts.Y, opts)
	if err != nil {
		return err
	}

	// 3. Write outputs
	out := cmd.OutOrStdout()
	report.PrintSummary(out, res)
	report.PrintLinks(out, res.Links(), runAlpha)

	paths, err := report.WriteAll(cfg.Output.Dir, res)
	if err != nil {
		return err
	}
	for _, p := range paths {
		logger.Info().Str("path", p).Msg("wrote results")
	}

	if cfg.Metrics.File != "" {
		if err := m.WriteTextfile(cfg.Metrics.File); err != nil {
			return err
		}
		logger.Info().Str("path", cfg.Metrics.File).Msg("wrote metrics")
	}
	return nil
}

// applyFlags copies explicitly set flags over the loaded configuration
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("maxlags") {
		cfg.Selvar.MaxLags = runMaxLags
	}
	if f.Changed("batchsize") {
		cfg.Selvar.BatchSize = runBatchSize
	}
	if f.Changed("mxitr") {
		cfg.Selvar.MaxIter = runMaxIter
	}
	if f.Changed("trace") {
		cfg.Selvar.Trace = runTrace
	}
	if f.Changed("self-lags") {
		cfg.Selvar.SelfLags = runSelfLags
	}
	if f.Changed("detrend") {
		cfg.Preprocess.Detrend = runDetrend
	}
	if f.Changed("standardise") {
		cfg.Preprocess.Standardise = runStandardise
	}
	if f.Changed("workers") {
		cfg.Selvar.Workers = runWorkers
	}
	if f.Changed("out-dir") {
		cfg.Output.Dir = runOutDir
	}
	if f.Changed("log-level") {
		cfg.Logging.Level = runLogLevel
	}
	if f.Changed("log-format") {
		cfg.Logging.Format = runLogFormat
	}
	if f.Changed("metrics-file") {
		cfg.Metrics.File = runMetricsFile
	}
}
