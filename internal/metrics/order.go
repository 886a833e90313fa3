// Package metrics computes order-parameter and clustering diagnostics over
// angular particle positions. All functions are pure and operate on a single
// snapshot (one frame across all particles) or a full time series.
//
// Angles are never pre-wrapped: every order parameter is built from complex
// exponentials and is therefore correct modulo 2π by construction.
package metrics

import (
	"math"
	"math/cmplx"
)

// PolarOrder is |<e^{iφ}>| over particles: 0 for a uniform angular
// distribution, 1 for full single-cluster alignment.
func PolarOrder(phi []float64) float64 {
	return orderParameter(phi, 1)
}

// NematicOrder is |<e^{2iφ}>| over particles. It detects head-tail symmetric
// two-cluster states that are invisible to PolarOrder.
func NematicOrder(phi []float64) float64 {
	return orderParameter(phi, 2)
}

func orderParameter(phi []float64, harmonic float64) float64 {
	if len(phi) == 0 {
		return 0
	}
	var sum complex128
	for _, p := range phi {
		sum += cmplx.Exp(complex(0, harmonic*p))
	}
	return cmplx.Abs(sum) / float64(len(phi))
}

// ClusteringRatio is the particle count within binWidth of the 0/π axis
// divided by the count within binWidth of the π/2, 3π/2 axis. The minor-axis
// denominator saturates at 1 when the bin is empty; callers at high
// clustering should treat the resulting ratio as a lower bound.
// SaturatedMinorAxis reports whether the floor engaged.
func ClusteringRatio(phi []float64, binWidth float64) float64 {
	r, _ := ClusteringRatioSaturation(phi, binWidth)
	return r
}

// ClusteringRatioSaturation is ClusteringRatio plus a flag that is true when
// the minor-axis bin was empty and the denominator floor of 1 engaged.
func ClusteringRatioSaturation(phi []float64, binWidth float64) (float64, bool) {
	var major, minor int
	for _, p := range phi {
		if axisDistance(p) < binWidth {
			major++
		}
		if axisDistance(p-math.Pi/2) < binWidth {
			minor++
		}
	}
	saturated := minor == 0
	if saturated {
		minor = 1
	}
	return float64(major) / float64(minor), saturated
}

// axisDistance is the angular distance from phi to the 0/π axis, in [0, π/2].
func axisDistance(phi float64) float64 {
	m := math.Mod(phi, math.Pi)
	if m < 0 {
		m += math.Pi
	}
	return math.Min(m, math.Pi-m)
}

// FormationTime returns the first timestamp at which series exceeds
// threshold, or Undefined when it never crosses. Callers must exclude an
// undefined formation time from averages rather than treating it as zero.
func FormationTime(time, series []float64, threshold float64) Value {
	n := len(series)
	if len(time) < n {
		n = len(time)
	}
	for i := 0; i < n; i++ {
		if series[i] > threshold {
			return Defined(time[i])
		}
	}
	return Undefined()
}

// PolarOrderSeries applies PolarOrder frame by frame. phi is frame-major:
// phi[frame][particle].
func PolarOrderSeries(phi [][]float64) []float64 {
	return seriesOf(phi, PolarOrder)
}

// NematicOrderSeries applies NematicOrder frame by frame.
func NematicOrderSeries(phi [][]float64) []float64 {
	return seriesOf(phi, NematicOrder)
}

func seriesOf(phi [][]float64, f func([]float64) float64) []float64 {
	out := make([]float64, len(phi))
	for i, frame := range phi {
		out[i] = f(frame)
	}
	return out
}

// SeriesMax returns the maximum of a series, or Undefined for an empty one.
func SeriesMax(series []float64) Value {
	if len(series) == 0 {
		return Undefined()
	}
	max := series[0]
	for _, v := range series[1:] {
		if v > max {
			max = v
		}
	}
	return Defined(max)
}
