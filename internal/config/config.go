// Package config holds ringstat's analysis configuration: defaults, YAML
// loading, and the flag overrides applied on top.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config holds all ringstat configuration.
type Config struct {
	// Discovery settings
	Discovery DiscoveryConfig `yaml:"discovery"`

	// Metric thresholds
	Thresholds ThresholdConfig `yaml:"thresholds"`

	// Aggregation settings
	Aggregation AggregationConfig `yaml:"aggregation"`

	// Scaling-law fitting
	Fit FitConfig `yaml:"fit"`

	// Execution settings
	Execution ExecutionConfig `yaml:"execution"`

	// Output artifacts
	Output OutputConfig `yaml:"output"`
}

// DiscoveryConfig configures run discovery under the campaign root.
type DiscoveryConfig struct {
	// Pattern selects the naming convention: auto, run or sweep.
	Pattern string `yaml:"pattern"`
}

// ThresholdConfig parameterizes the regime classifier and the
// formation-time detection.
type ThresholdConfig struct {
	Psi       float64 `yaml:"psi"`       // moderate polar-order threshold
	Strong    float64 `yaml:"strong"`    // strong-single / two-cluster threshold
	Formation float64 `yaml:"formation"` // order level defining formation time
	// BinWidth is the clustering-ratio bin half-width in radians.
	BinWidth float64 `yaml:"bin_width"`
}

// AggregationConfig configures the ensemble reduction.
type AggregationConfig struct {
	// GroupBy lists the condition-key fields; empty means all swept
	// parameters.
	GroupBy []string `yaml:"group_by"`
	// MinSamples is the sample count below which a condition is flagged.
	MinSamples int `yaml:"min_samples"`
}

// FitConfig configures the scaling-law fits.
type FitConfig struct {
	// Metric is the aggregated scalar fitted against the sweep, e.g.
	// polar_order.
	Metric string `yaml:"metric"`
	// Abscissa is the condition-key field used as x, e.g. eccentricity.
	Abscissa string `yaml:"abscissa"`
	// Models restricts the candidate set; empty means all.
	Models []string `yaml:"models"`
	// MaxIter bounds the Levenberg-Marquardt loop.
	MaxIter int `yaml:"max_iter"`
}

// ExecutionConfig configures the per-run worker pool.
type ExecutionConfig struct {
	// Jobs is the worker count; 0 means GOMAXPROCS.
	Jobs int `yaml:"jobs"`
}

// OutputConfig configures the result artifacts.
type OutputConfig struct {
	// Dir receives the tabular outputs; empty disables file output.
	Dir string `yaml:"dir"`
	// Database is an optional SQLite sink for the same records.
	Database string `yaml:"database"`
}

// Default returns the configuration used when no file or flags override it.
func Default() Config {
	return Config{
		Discovery: DiscoveryConfig{Pattern: "auto"},
		Thresholds: ThresholdConfig{
			Psi:       0.3,
			Strong:    0.5,
			Formation: 0.3,
			BinWidth:  0.5235987755982988, // π/6
		},
		Aggregation: AggregationConfig{MinSamples: 2},
		Fit: FitConfig{
			Metric:   "polar_order",
			Abscissa: "eccentricity",
			MaxIter:  200,
		},
		Execution: ExecutionConfig{Jobs: runtime.GOMAXPROCS(0)},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations the pipeline cannot honor.
func (c Config) Validate() error {
	if c.Thresholds.Psi <= 0 || c.Thresholds.Psi >= 1 {
		return fmt.Errorf("thresholds.psi must be in (0,1), got %g", c.Thresholds.Psi)
	}
	if c.Thresholds.Strong <= 0 || c.Thresholds.Strong >= 1 {
		return fmt.Errorf("thresholds.strong must be in (0,1), got %g", c.Thresholds.Strong)
	}
	if c.Thresholds.BinWidth <= 0 {
		return fmt.Errorf("thresholds.bin_width must be positive, got %g", c.Thresholds.BinWidth)
	}
	if c.Aggregation.MinSamples < 1 {
		return fmt.Errorf("aggregation.min_samples must be at least 1, got %d", c.Aggregation.MinSamples)
	}
	if c.Execution.Jobs < 0 {
		return fmt.Errorf("execution.jobs must not be negative, got %d", c.Execution.Jobs)
	}
	return nil
}
