package metrics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolarOrderFullyClustered(t *testing.T) {
	phi := []float64{1.3, 1.3, 1.3, 1.3}
	assert.Equal(t, 1.0, PolarOrder(phi))
	assert.Equal(t, 1.0, NematicOrder(phi))
}

func TestPolarOrderUniformConvergesToZero(t *testing.T) {
	const n = 2000
	rng := rand.New(rand.NewSource(7))
	phi := make([]float64, n)
	for i := range phi {
		phi[i] = rng.Float64() * 2 * math.Pi
	}
	tol := 3 / math.Sqrt(n)
	assert.Less(t, PolarOrder(phi), tol)
	assert.Less(t, NematicOrder(phi), tol)
}

func TestPolarOrderIsModulo2Pi(t *testing.T) {
	phi := []float64{0.2, 1.7, 3.1, 5.9}
	shifted := make([]float64, len(phi))
	for i, p := range phi {
		shifted[i] = p + 6*math.Pi
	}
	assert.InDelta(t, PolarOrder(phi), PolarOrder(shifted), 1e-12)
	assert.InDelta(t, NematicOrder(phi), NematicOrder(shifted), 1e-12)
}

func TestNematicSeesTwoClusterState(t *testing.T) {
	// Two equal clusters π apart: polar order cancels, nematic saturates.
	phi := []float64{0, 0, 0, math.Pi, math.Pi, math.Pi}
	assert.InDelta(t, 0.0, PolarOrder(phi), 1e-12)
	assert.InDelta(t, 1.0, NematicOrder(phi), 1e-12)
}

func TestClusteringRatioScenario(t *testing.T) {
	// 4 particles on the major axis, 2 on the minor, bin width π/4.
	phi := []float64{0, 0, 0, 0, math.Pi / 2, math.Pi / 2}
	assert.Equal(t, 2.0, ClusteringRatio(phi, math.Pi/4))
}

func TestClusteringRatioSaturatesOnEmptyMinorBin(t *testing.T) {
	phi := []float64{0, 0, math.Pi}
	r, saturated := ClusteringRatioSaturation(phi, math.Pi/8)
	assert.True(t, saturated)
	assert.Equal(t, 3.0, r)
}

func TestClusteringRatioAxisSymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	phi := make([]float64, 200)
	for i := range phi {
		phi[i] = rng.Float64() * 2 * math.Pi
	}
	const bin = math.Pi / 6
	base := ClusteringRatio(phi, bin)

	rotated := make([]float64, len(phi))
	for i, p := range phi {
		rotated[i] = p + math.Pi
	}
	assert.InDelta(t, base, ClusteringRatio(rotated, bin), 1e-12,
		"rotation by π must not change the ratio")

	for i, p := range phi {
		rotated[i] = p + math.Pi/2
	}
	quarter := ClusteringRatio(rotated, bin)
	assert.InDelta(t, 1/base, quarter, 1e-9,
		"rotation by π/2 swaps major and minor bins")
}

func TestFormationTime(t *testing.T) {
	time := []float64{0, 1, 2, 3}
	series := []float64{0.1, 0.2, 0.6, 0.9}

	ft := FormationTime(time, series, 0.5)
	v, ok := ft.Float()
	require.True(t, ok)
	assert.Equal(t, 2.0, v)

	never := FormationTime(time, series, 0.95)
	assert.False(t, never.IsDefined())
	assert.False(t, never.IsFailed())
}

func TestSeriesHelpers(t *testing.T) {
	phi := [][]float64{
		{0, math.Pi},
		{0.5, 0.5},
	}
	series := PolarOrderSeries(phi)
	require.Len(t, series, 2)
	assert.InDelta(t, 0.0, series[0], 1e-12)
	assert.InDelta(t, 1.0, series[1], 1e-12)

	max := SeriesMax(series)
	v, ok := max.Float()
	require.True(t, ok)
	assert.InDelta(t, 1.0, v, 1e-12)

	assert.False(t, SeriesMax(nil).IsDefined())
}
