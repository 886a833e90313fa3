// Package conservation computes drift and fluctuation diagnostics for
// conserved quantities (energy, momentum) and grades them against fixed
// tolerances.
package conservation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"ringstat/internal/metrics"
)

// Severity grades a drift magnitude.
type Severity string

const (
	SeverityExcellent  Severity = "excellent"  // < 1e-4
	SeverityAcceptable Severity = "acceptable" // < 1e-2
	SeverityPoor       Severity = "poor"       // >= 1e-2
	SeverityUnknown    Severity = "unknown"    // no conservation data
)

// ViolationThreshold is the relative drift at which a run counts as a
// conservation violation.
const ViolationThreshold = 1e-2

// Audit summarizes one conserved series. All fields are undefined when the
// run carries no conservation data; undefined audits stay out of violation
// counts and averages.
type Audit struct {
	DriftMax   metrics.Value
	DriftMean  metrics.Value
	DriftFinal metrics.Value // systematic bias, signed

	// FluctuationStd is the standard deviation of the relative deviation,
	// reported separately from the drift so noise is not mistaken for bias.
	FluctuationStd metrics.Value

	Severity  Severity
	Violation bool
}

// HasData reports whether the audited series existed.
func (a Audit) HasData() bool { return a.DriftMax.IsDefined() }

// AuditSeries audits a conserved quantity sampled over a run. The relative
// deviation at each sample is |q(t)-q(0)|/|q(0)|; when q(0) is zero the
// absolute deviation is used instead, since the relative form is undefined.
// A nil or empty series yields an all-undefined audit.
func AuditSeries(series []float64) Audit {
	if len(series) == 0 {
		return Audit{
			DriftMax:       metrics.Undefined(),
			DriftMean:      metrics.Undefined(),
			DriftFinal:     metrics.Undefined(),
			FluctuationStd: metrics.Undefined(),
			Severity:       SeverityUnknown,
		}
	}

	ref := math.Abs(series[0])
	scale := ref
	if scale == 0 {
		scale = 1
	}

	rel := make([]float64, len(series))
	for i, v := range series {
		rel[i] = math.Abs(v-series[0]) / scale
	}

	max := rel[0]
	for _, d := range rel[1:] {
		if d > max {
			max = d
		}
	}

	sorted := append([]float64(nil), rel...)
	sort.Float64s(sorted)

	a := Audit{
		DriftMax:   metrics.Defined(max),
		DriftMean:  metrics.Defined(stat.Mean(sorted, nil)),
		DriftFinal: metrics.Defined((series[len(series)-1] - series[0]) / scale),
	}
	if len(rel) >= 2 {
		a.FluctuationStd = metrics.Defined(stat.StdDev(sorted, nil))
	} else {
		a.FluctuationStd = metrics.Undefined()
	}

	a.Severity = severityOf(max)
	a.Violation = max >= ViolationThreshold
	return a
}

func severityOf(driftMax float64) Severity {
	switch {
	case driftMax < 1e-4:
		return SeverityExcellent
	case driftMax < ViolationThreshold:
		return SeverityAcceptable
	default:
		return SeverityPoor
	}
}

// MomentumDriftMax audits both momentum components and returns the larger
// drift maximum, undefined when neither component was stored.
func MomentumDriftMax(px, py []float64) metrics.Value {
	ax := AuditSeries(px)
	ay := AuditSeries(py)
	vx, okx := ax.DriftMax.Float()
	vy, oky := ay.DriftMax.Float()
	switch {
	case okx && oky:
		return metrics.Defined(math.Max(vx, vy))
	case okx:
		return ax.DriftMax
	case oky:
		return ay.DriftMax
	}
	return metrics.Undefined()
}
