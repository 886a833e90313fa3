package report

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ringstat/internal/aggregate"
	"ringstat/internal/campaign"
	"ringstat/internal/locate"
	"ringstat/internal/metrics"
	"ringstat/internal/regime"
)

func sampleReport() *campaign.Report {
	id := locate.RunIdentity{
		RunID:             1,
		Eccentricity:      0.5,
		ParticleCount:     40,
		EnergyPerParticle: 0.32,
		Seed:              1,
		SourcePath:        "/campaign/run_1_e0.50_N40_E0.32_seed1",
	}
	run := aggregate.RunMetrics{
		Identity:             id,
		PolarOrderFinal:      metrics.Defined(0.12),
		NematicOrderFinal:    metrics.Defined(0.08),
		PolarOrderMax:        metrics.Defined(0.15),
		NematicOrderMax:      metrics.Defined(0.1),
		ClusteringRatio:      metrics.Defined(2.0),
		EnergyDriftMax:       metrics.Undefined(),
		EnergyDriftFinal:     metrics.Undefined(),
		EnergyFluctuationStd: metrics.Undefined(),
		MomentumDriftMax:     metrics.Undefined(),
		FormationTimePolar:   metrics.Undefined(),
		FormationTimeNematic: metrics.Undefined(),
		MeanSpeedFinal:       metrics.Defined(1.1),
		SpeedDispersionFinal: metrics.Defined(0.2),
		MeanCurvatureFinal:   metrics.Undefined(),
		ArcSpanFinal:         metrics.Undefined(),
		Regime:               regime.None,
	}
	summaries := aggregate.Aggregate([]aggregate.RunMetrics{run}, aggregate.DefaultFields, 2)
	return &campaign.Report{
		ID:        "test-report",
		Root:      "/campaign",
		Runs:      []aggregate.RunMetrics{run},
		Summaries: summaries,
		Skipped:   []locate.Skipped{{Path: "/campaign/junk", Reason: "unparsable"}},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	rep := sampleReport()
	require.NoError(t, WriteFiles(rep, dir))

	runs := readCSV(t, filepath.Join(dir, RunsFile))
	require.Len(t, runs, 2, "header plus one run")
	header, row := runs[0], runs[1]

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	assert.Equal(t, "0.5", row[idx["eccentricity"]])
	assert.Equal(t, "2", row[idx["clustering_ratio"]])
	assert.Equal(t, "", row[idx["energy_drift_max"]],
		"undefined metrics are empty cells, not zeros")
	assert.Equal(t, "NONE", row[idx["regime"]])

	conditions := readCSV(t, filepath.Join(dir, ConditionsFile))
	require.Len(t, conditions, 2)
	cidx := make(map[string]int, len(conditions[0]))
	for i, name := range conditions[0] {
		cidx[name] = i
	}
	assert.Equal(t, "e=0.5|N=40|E=0.32", conditions[1][cidx["condition"]])
	assert.Equal(t, "1", conditions[1][cidx["n_samples"]])
	assert.Equal(t, "", conditions[1][cidx["polar_order_std"]],
		"single-sample std is undefined, not zero")
	assert.Equal(t, "0", conditions[1][cidx["n_formation_time_polar_samples"]])

	// No fit report: fit tables are not written.
	_, err := os.Stat(filepath.Join(dir, FitsFile))
	assert.True(t, os.IsNotExist(err))
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, sampleReport())
	out := buf.String()

	assert.Contains(t, out, "runs analyzed: 1")
	assert.Contains(t, out, "1 runs skipped")
	assert.Contains(t, out, "1 runs had no conservation data")
	assert.Contains(t, out, "NONE")
	assert.Contains(t, out, "e=0.5|N=40|E=0.32")
	assert.Contains(t, out, "(low sample)")
}

func TestSinkRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	sink, err := OpenSink(path)
	require.NoError(t, err)
	defer sink.Close()

	rep := sampleReport()
	require.NoError(t, sink.Store(rep))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM reports WHERE id = ?`, rep.ID).Scan(&n))
	assert.Equal(t, 1, n)

	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM runs WHERE report_id = ?`, rep.ID).Scan(&n))
	assert.Equal(t, len(aggregate.ScalarNames), n)

	var value sql.NullFloat64
	require.NoError(t, db.QueryRow(
		`SELECT value FROM runs WHERE report_id = ? AND metric = 'energy_drift_max'`, rep.ID).Scan(&value))
	assert.False(t, value.Valid, "undefined metrics are stored as NULL")

	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM conditions WHERE report_id = ?`, rep.ID).Scan(&n))
	assert.Equal(t, len(aggregate.ScalarNames), n)
}
