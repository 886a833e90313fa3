package conservation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantSeriesHasZeroDrift(t *testing.T) {
	for _, n := range []int{1, 2, 5, 100} {
		series := make([]float64, n)
		for i := range series {
			series[i] = 3.7
		}
		a := AuditSeries(series)

		v, ok := a.DriftMax.Float()
		require.True(t, ok)
		assert.Zero(t, v, "n=%d", n)
		v, _ = a.DriftFinal.Float()
		assert.Zero(t, v)
		if n >= 2 {
			v, ok = a.FluctuationStd.Float()
			require.True(t, ok)
			assert.Zero(t, v)
		}
		assert.Equal(t, SeverityExcellent, a.Severity)
		assert.False(t, a.Violation)
	}
}

func TestMissingSeriesIsUndefinedNotZero(t *testing.T) {
	a := AuditSeries(nil)
	assert.False(t, a.HasData())
	assert.False(t, a.DriftMax.IsDefined())
	assert.False(t, a.Violation, "undefined audits never count as violations")
	assert.Equal(t, SeverityUnknown, a.Severity)
}

func TestDriftBands(t *testing.T) {
	// 0.5% final drift: acceptable, no violation.
	a := AuditSeries([]float64{1.0, 1.002, 1.005})
	v, _ := a.DriftMax.Float()
	assert.InDelta(t, 0.005, v, 1e-12)
	assert.Equal(t, SeverityAcceptable, a.Severity)
	assert.False(t, a.Violation)

	// 5% drift: poor and a violation.
	a = AuditSeries([]float64{1.0, 1.05})
	assert.Equal(t, SeverityPoor, a.Severity)
	assert.True(t, a.Violation)
}

func TestDriftFinalKeepsSign(t *testing.T) {
	a := AuditSeries([]float64{2.0, 1.9})
	v, ok := a.DriftFinal.Float()
	require.True(t, ok)
	assert.InDelta(t, -0.05, v, 1e-12, "final drift is signed to expose systematic bias")

	v, _ = a.DriftMax.Float()
	assert.InDelta(t, 0.05, v, 1e-12, "max drift is a magnitude")
}

func TestZeroReferenceFallsBackToAbsolute(t *testing.T) {
	a := AuditSeries([]float64{0, 0.003})
	v, ok := a.DriftMax.Float()
	require.True(t, ok)
	assert.InDelta(t, 0.003, v, 1e-12)
}

func TestMomentumDriftMax(t *testing.T) {
	v := MomentumDriftMax([]float64{1, 1.01}, []float64{1, 1.05})
	f, ok := v.Float()
	require.True(t, ok)
	assert.InDelta(t, 0.05, f, 1e-12)

	v = MomentumDriftMax(nil, []float64{1, 1.02})
	f, ok = v.Float()
	require.True(t, ok)
	assert.InDelta(t, 0.02, f, 1e-12)

	assert.False(t, MomentumDriftMax(nil, nil).IsDefined())
}
