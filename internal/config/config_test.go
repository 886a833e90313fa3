package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "auto", cfg.Discovery.Pattern)
	assert.Equal(t, 0.3, cfg.Thresholds.Psi)
	assert.Equal(t, 0.5, cfg.Thresholds.Strong)
	assert.Equal(t, 2, cfg.Aggregation.MinSamples)
	assert.Greater(t, cfg.Execution.Jobs, 0)
}

func TestLoadEmptyPathIsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ringstat.yaml")
	doc := `
thresholds:
  psi: 0.25
  strong: 0.6
aggregation:
  min_samples: 5
fit:
  metric: nematic_order
  models: [powerlaw, exponential]
execution:
  jobs: 3
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.Thresholds.Psi)
	assert.Equal(t, 0.6, cfg.Thresholds.Strong)
	assert.Equal(t, 5, cfg.Aggregation.MinSamples)
	assert.Equal(t, "nematic_order", cfg.Fit.Metric)
	assert.Equal(t, []string{"powerlaw", "exponential"}, cfg.Fit.Models)
	assert.Equal(t, 3, cfg.Execution.Jobs)
	assert.Equal(t, "auto", cfg.Discovery.Pattern, "untouched sections keep defaults")
}

func TestLoadRejectsBadThresholds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("thresholds:\n  psi: 1.5\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
