// Command repoprep splits, cleans and profiles the GitHub repositories dataset.
package main

import (
	"fmt"
	"os"

	"github.com/paveg/repoprep/internal/config"
	"github.com/paveg/repoprep/internal/monitoring"
	"github.com/paveg/repoprep/internal/prep"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds the state shared by every subcommand once flags are parsed.
type app struct {
	configFile string
	dataDir    string
	workers    int
	verbose    bool
	metrics    bool
	noProgress bool

	cfg       config.Config
	logger    *zap.Logger
	collector *monitoring.MetricsCollector
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "repoprep",
		Short: "Prepare the GitHub repositories dataset for modelling",
		Long: `repoprep shuffles dataset.csv into train/val/test splits and turns a split
into a clean feature frame: missing values are filled with sentinels, dates
and flags are coerced, useless columns are dropped, the languages column is
expanded and outliers can be imputed with the median.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "JSON or YAML configuration file")
	flags.StringVarP(&a.dataDir, "data-dir", "d", "", "directory holding dataset.csv and the splits")
	flags.IntVarP(&a.workers, "workers", "w", 0, "worker goroutines (0 = number of CPUs)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log every step at debug level")
	flags.BoolVar(&a.metrics, "metrics", false, "print per-step metrics when done")
	flags.BoolVar(&a.noProgress, "no-progress", false, "do not draw a progress bar")
	_ = cobra.MarkFlagFilename(flags, "config", "json", "yaml", "yml")

	root.AddCommand(
		newSplitCmd(a),
		newPrepareCmd(a),
		newProfileCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup resolves the configuration (defaults, then file, then REPOPREP_*
// variables, then flags) and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.NewConfig()
	if a.configFile != "" {
		loaded, err := config.LoadFromFile(a.configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg = config.LoadFromEnv(cfg)

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = a.dataDir
	}
	if flags.Changed("workers") {
		cfg.WorkerPoolSize = a.workers
	}
	if flags.Changed("verbose") {
		cfg.VerboseLogging = a.verbose
	}
	if flags.Changed("metrics") {
		cfg.MetricsCollection = a.metrics
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	config.SetGlobalConfig(cfg)
	a.cfg = cfg

	if a.logger == nil {
		zcfg := zap.NewProductionConfig()
		if cfg.VerboseLogging {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err := zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		a.logger = logger
	}
	a.collector = monitoring.NewMetricsCollector(cfg.MetricsCollection)
	return nil
}

func (a *app) pipeline() *prep.Pipeline {
	return prep.New(a.cfg, a.logger, a.collector)
}

// report prints the collected step metrics when collection is enabled.
func (a *app) report(cmd *cobra.Command) error {
	if !a.collector.IsEnabled() {
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return a.collector.WriteReport(cmd.OutOrStdout())
}

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		os.Exit(1)
	}
}
