package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Analysis flags
	flagPattern          string
	flagMinSamples       int
	flagThresholdPsi     float64
	flagThresholdNematic float64
	flagJobs             int
	flagOut              string
	flagDB               string
	flagGroupBy          []string
	flagFitMetric        string

	// Logger
	logger *zap.Logger
)

// rootCmd analyzes a campaign when given a root directory directly, so the
// default invocation needs no subcommand: ringstat <campaign-root>.
var rootCmd = &cobra.Command{
	Use:   "ringstat [campaign-root]",
	Short: "ringstat - ensemble analysis for particle-on-ellipse campaigns",
	Long: `ringstat post-processes campaigns of particle-trajectory simulation runs:
it discovers runs by their naming convention, reduces each trajectory to
order-parameter and conservation diagnostics, classifies dynamical regimes,
aggregates across seeds and swept parameters, and fits scaling laws to the
aggregated curves.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runAnalyze(cmd, args)
	},
}

// analyzeCmd is the explicit form of the default invocation.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [campaign-root]",
	Short: "Analyze every run under a campaign root",
	Long: `Scans the campaign root for run artifacts, computes per-run metrics on a
worker pool, aggregates per condition, and fits the configured scaling models.

Exit status is 0 even when individual runs are skipped or excluded; only a
campaign with zero parsable runs exits 1.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

// watchCmd re-analyzes when new runs land.
var watchCmd = &cobra.Command{
	Use:   "watch [campaign-root]",
	Short: "Re-run the analysis whenever new runs appear under the root",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a ringstat YAML config")

	for _, cmd := range []*cobra.Command{rootCmd, analyzeCmd, watchCmd} {
		cmd.Flags().StringVar(&flagPattern, "pattern", "", "naming convention: auto, run or sweep")
		cmd.Flags().IntVar(&flagMinSamples, "min-samples", 0, "minimum seeds per condition before a low-sample warning")
		cmd.Flags().Float64Var(&flagThresholdPsi, "threshold-psi", 0, "moderate polar-order threshold")
		cmd.Flags().Float64Var(&flagThresholdNematic, "threshold-nematic", 0, "strong / two-cluster order threshold")
		cmd.Flags().IntVar(&flagJobs, "jobs", 0, "worker pool size (default GOMAXPROCS)")
		cmd.Flags().StringVar(&flagOut, "out", "", "directory for the tabular output files")
		cmd.Flags().StringVar(&flagDB, "db", "", "optional SQLite results database")
		cmd.Flags().StringSliceVar(&flagGroupBy, "group-by", nil, "condition-key fields (eccentricity, particle_count, energy)")
		cmd.Flags().StringVar(&flagFitMetric, "fit-metric", "", "aggregated metric fitted against the sweep")
	}

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
