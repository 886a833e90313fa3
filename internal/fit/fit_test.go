package fit

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func powerLawPoints(a, beta, c, noise float64, rng *rand.Rand) []Point {
	xs := []float64{0.0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}
	points := make([]Point, len(xs))
	for i, x := range xs {
		y := a*math.Pow(1-x, -beta) + c
		if noise > 0 {
			y += noise * rng.NormFloat64()
		}
		points[i] = Point{X: x, Y: y, YErr: math.Max(noise, 1e-6)}
	}
	return points
}

func TestPowerLawRoundTrip(t *testing.T) {
	const (
		wantA    = 0.8
		wantBeta = 1.5
		wantC    = 0.2
	)
	rng := rand.New(rand.NewSource(42))

	recovered := 0
	const trials = 100
	for trial := 0; trial < trials; trial++ {
		points := powerLawPoints(wantA, wantBeta, wantC, 0.01, rng)
		res, err := Curve(PowerLaw{}, points, Options{})
		require.NoError(t, err, "trial %d", trial)

		ci := res.Confidence95()
		okA := math.Abs(res.Params[0]-wantA) <= math.Max(ci[0], 3*res.StdErrs[0])
		okB := math.Abs(res.Params[1]-wantBeta) <= math.Max(ci[1], 3*res.StdErrs[1])
		okC := math.Abs(res.Params[2]-wantC) <= math.Max(ci[2], 3*res.StdErrs[2])
		if okA && okB && okC {
			recovered++
		}
	}
	assert.GreaterOrEqual(t, recovered, 90,
		"parameters should land inside their reported intervals in >=90%% of noise draws")
}

func TestNoiselessPowerLawIsExact(t *testing.T) {
	points := powerLawPoints(1.2, 2.0, -0.1, 0, nil)
	res, err := Curve(PowerLaw{}, points, Options{})
	require.NoError(t, err)

	assert.InDelta(t, 1.2, res.Params[0], 1e-5)
	assert.InDelta(t, 2.0, res.Params[1], 1e-5)
	assert.InDelta(t, -0.1, res.Params[2], 1e-5)
	assert.Greater(t, res.RSquared, 0.999999)
}

func TestExponentialFit(t *testing.T) {
	points := make([]Point, 0, 12)
	for i := 0; i < 12; i++ {
		x := float64(i) / 4
		points = append(points, Point{X: x, Y: 0.5*math.Exp(1.2*x) + 1, YErr: 1e-3})
	}
	res, err := Curve(Exponential{}, points, Options{})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.Params[0], 1e-3)
	assert.InDelta(t, 1.2, res.Params[1], 1e-3)
	assert.InDelta(t, 1.0, res.Params[2], 1e-3)
}

func TestPolynomialFit(t *testing.T) {
	points := make([]Point, 0, 10)
	for i := 0; i < 10; i++ {
		x := float64(i)
		points = append(points, Point{X: x, Y: 2 + 0.5*x - 0.25*x*x})
	}
	res, err := Curve(Polynomial{Degree: 2}, points, Options{})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, res.Params[0], 1e-6)
	assert.InDelta(t, 0.5, res.Params[1], 1e-6)
	assert.InDelta(t, -0.25, res.Params[2], 1e-6)
	assert.False(t, res.Weighted, "zero YErr switches to unweighted")
}

func TestInsufficientData(t *testing.T) {
	points := []Point{{X: 0, Y: 1}, {X: 0.5, Y: 2}, {X: 0.9, Y: 3}}
	_, err := Curve(PowerLaw{}, points, Options{})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestPredictFlagsExtrapolation(t *testing.T) {
	points := powerLawPoints(1, 1, 0, 0, nil)
	res, err := Curve(PowerLaw{}, points, Options{})
	require.NoError(t, err)

	preds := res.Predict([]float64{0.5, 0.95, -0.2})
	assert.True(t, preds[0].InRange)
	assert.False(t, preds[1].InRange, "beyond the largest observed x")
	assert.False(t, preds[2].InRange, "below the smallest observed x")
	assert.InDelta(t, 1/(1-0.5), preds[0].Y, 1e-4)
}

func TestCompareSelectsBestByRSquared(t *testing.T) {
	points := powerLawPoints(0.8, 1.5, 0.2, 0, nil)
	cmp := Compare(DefaultModels(), points, Options{})

	best, ok := cmp.BestResult()
	require.True(t, ok)
	assert.Equal(t, "powerlaw", best.ModelName,
		"power-law data must be won by the power-law model")
	assert.NotEmpty(t, cmp.Results)
}

func TestCompareSurvivesModelFailure(t *testing.T) {
	// Two parameters' worth of points: the 3-parameter models cannot fit,
	// but the comparison itself must not fail.
	points := []Point{{X: 0, Y: 1}, {X: 0.3, Y: 2}, {X: 0.6, Y: 4}}
	cmp := Compare(DefaultModels(), points, Options{})
	_, ok := cmp.BestResult()
	assert.False(t, ok, "no model converged")
	assert.Len(t, cmp.Failures, len(DefaultModels()))
}

func TestWeightedFitPullsTowardPreciseGroups(t *testing.T) {
	// Constant-model behavior through the polynomial: one precise point at
	// y=0 and one noisy point at y=10; the weighted line must pass near 0.
	points := []Point{
		{X: 0, Y: 0, YErr: 0.001},
		{X: 1, Y: 10, YErr: 100},
		{X: 2, Y: 0.1, YErr: 0.001},
		{X: 3, Y: 0.2, YErr: 0.001},
	}
	res, err := Curve(Polynomial{Degree: 2}, points, Options{})
	require.NoError(t, err)
	assert.True(t, res.Weighted)
	assert.InDelta(t, 0.0, res.Params[0], 0.5,
		"the wild low-weight point must not drag the intercept to 10")
}
