package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ringstat/internal/campaign"
	"ringstat/internal/config"
	"ringstat/internal/report"
)

// buildConfig layers flag overrides over the config file over the defaults.
func buildConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("pattern") {
		cfg.Discovery.Pattern = flagPattern
	}
	if flags.Changed("min-samples") {
		cfg.Aggregation.MinSamples = flagMinSamples
	}
	if flags.Changed("threshold-psi") {
		cfg.Thresholds.Psi = flagThresholdPsi
	}
	if flags.Changed("threshold-nematic") {
		cfg.Thresholds.Strong = flagThresholdNematic
	}
	if flags.Changed("jobs") {
		cfg.Execution.Jobs = flagJobs
	}
	if flags.Changed("out") {
		cfg.Output.Dir = flagOut
	}
	if flags.Changed("db") {
		cfg.Output.Database = flagDB
	}
	if flags.Changed("group-by") {
		cfg.Aggregation.GroupBy = flagGroupBy
	}
	if flags.Changed("fit-metric") {
		cfg.Fit.Metric = flagFitMetric
	}
	return cfg, cfg.Validate()
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	return analyzeOnce(cmd, cfg, args[0])
}

func analyzeOnce(cmd *cobra.Command, cfg config.Config, root string) error {
	analyzer := campaign.New(cfg, logger)
	rep, err := analyzer.Run(cmd.Context(), root)
	if err != nil {
		return err
	}

	report.Render(os.Stdout, rep)

	if cfg.Output.Dir != "" {
		if err := report.WriteFiles(rep, cfg.Output.Dir); err != nil {
			return fmt.Errorf("write output tables: %w", err)
		}
		logger.Info("tables written", zap.String("dir", cfg.Output.Dir))
	}
	if cfg.Output.Database != "" {
		sink, err := report.OpenSink(cfg.Output.Database)
		if err != nil {
			return err
		}
		defer sink.Close()
		if err := sink.Store(rep); err != nil {
			return fmt.Errorf("store report: %w", err)
		}
		logger.Info("report stored",
			zap.String("db", cfg.Output.Database), zap.String("report", rep.ID))
	}
	return nil
}
