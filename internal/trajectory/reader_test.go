package trajectory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureBuilder() *Builder {
	return NewBuilder().
		SetSeries(DatasetTime, []float64{0, 1, 2}).
		SetRows(DatasetPhi, [][]float64{
			{0.1, 0.2}, // frame 0
			{0.3, 0.4},
			{0.5, 0.6},
		}).
		SetRows(DatasetPhiDot, [][]float64{
			{1, 1},
			{1, 1},
			{1, 1},
		}).
		SetSeries(DatasetEnergy, []float64{5, 5, 5}).
		SetAttr(AttrSemiMajor, 1.0).
		SetAttr(AttrSemiMinor, 0.8)
}

func TestLoadJSONContainer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trajectory.json")
	require.NoError(t, fixtureBuilder().WriteJSON(path))

	tr, err := Load(dir) // open via the run directory
	require.NoError(t, err)

	assert.Equal(t, 3, tr.Frames())
	assert.Equal(t, 2, tr.Particles())
	assert.Equal(t, []float64{0.5, 0.6}, tr.FinalFrame())
	assert.Equal(t, []float64{5, 5, 5}, tr.Energy)
	assert.True(t, tr.HasAxes)
	assert.Equal(t, 1.0, tr.SemiA)
	assert.Equal(t, 0.8, tr.SemiB)
}

func TestLoadSQLiteContainer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trajectory.db")
	require.NoError(t, fixtureBuilder().WriteSQLite(path))

	tr, err := Load(path) // open the container file directly
	require.NoError(t, err)
	assert.Equal(t, 3, tr.Frames())
	assert.Equal(t, 2, tr.Particles())
	assert.Equal(t, []float64{0.3, 0.4}, tr.Phi[1])
}

func TestLoadTransposesParticleMajorPhi(t *testing.T) {
	dir := t.TempDir()
	b := NewBuilder().
		SetSeries(DatasetTime, []float64{0, 1, 2}).
		// Particle-major on disk: 2 particles x 3 frames.
		SetRows(DatasetPhi, [][]float64{
			{0.1, 0.3, 0.5},
			{0.2, 0.4, 0.6},
		})
	path := filepath.Join(dir, "trajectory.json")
	require.NoError(t, b.WriteJSON(path))

	tr, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, tr.Frames())
	assert.Equal(t, []float64{0.1, 0.2}, tr.Phi[0])
	assert.Equal(t, []float64{0.5, 0.6}, tr.FinalFrame())
}

func TestLoadRejectsShapeMismatch(t *testing.T) {
	dir := t.TempDir()
	b := NewBuilder().
		SetSeries(DatasetTime, []float64{0, 1, 2}).
		SetRows(DatasetPhi, [][]float64{
			{0.1, 0.2},
			{0.3, 0.4},
		})
	require.NoError(t, b.WriteJSON(filepath.Join(dir, "trajectory.json")))

	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrCorrupt, "neither phi dimension matches the time axis")
}

func TestLoadRejectsNonMonotonicTime(t *testing.T) {
	dir := t.TempDir()
	b := NewBuilder().
		SetSeries(DatasetTime, []float64{0, 2, 1}).
		SetRows(DatasetPhi, [][]float64{{0}, {0}, {0}})
	require.NoError(t, b.WriteJSON(filepath.Join(dir, "trajectory.json")))

	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestLoadMissingConservationIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	b := NewBuilder().
		SetSeries(DatasetTime, []float64{0, 1}).
		SetRows(DatasetPhi, [][]float64{{0.1}, {0.2}})
	require.NoError(t, b.WriteJSON(filepath.Join(dir, "trajectory.json")))

	tr, err := Load(dir)
	require.NoError(t, err)
	assert.Nil(t, tr.Energy)
	assert.Nil(t, tr.PhiDot)
	assert.False(t, tr.HasAxes)
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trajectory.json"), []byte("not json"), 0o644))

	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestOpenMissingContainer(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(dir)
	assert.ErrorIs(t, err, ErrCorrupt)
}
