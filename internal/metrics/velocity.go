package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"ringstat/internal/geometry"
)

// VelocityStats summarizes a snapshot of angular velocities: the mean
// absolute velocity and the dispersion (standard deviation) of the signed
// velocities. Dispersion is undefined with fewer than two particles.
func VelocityStats(phidot []float64) (meanSpeed, dispersion Value) {
	if len(phidot) == 0 {
		return Undefined(), Undefined()
	}
	abs := make([]float64, len(phidot))
	for i, v := range phidot {
		abs[i] = math.Abs(v)
	}
	meanSpeed = Defined(stat.Mean(abs, nil))
	if len(phidot) < 2 {
		return meanSpeed, Undefined()
	}
	signed := append([]float64(nil), phidot...)
	sort.Float64s(signed)
	return meanSpeed, Defined(stat.StdDev(signed, nil))
}

// MeanCurvature samples the ellipse curvature at each particle's angular
// position and averages. A clustered state near the major-axis ends shows a
// mean well above the perimeter average.
func MeanCurvature(el geometry.Ellipse, phi []float64) Value {
	if len(phi) == 0 {
		return Undefined()
	}
	sum := 0.0
	for _, p := range phi {
		sum += el.Curvature(p)
	}
	return Defined(sum / float64(len(phi)))
}

// ArcSpan is the arc length of the shortest ellipse segment containing all
// particles, normalized by the perimeter: 0 for a point cluster, → 1 for a
// spread-out state. Quadrature resolution follows the particle count.
func ArcSpan(el geometry.Ellipse, phi []float64) Value {
	if len(phi) == 0 {
		return Undefined()
	}
	wrapped := make([]float64, len(phi))
	for i, p := range phi {
		w := math.Mod(p, 2*math.Pi)
		if w < 0 {
			w += 2 * math.Pi
		}
		wrapped[i] = w
	}
	sort.Float64s(wrapped)

	// The shortest covering segment is the complement of the largest gap.
	largestGap := 2*math.Pi - wrapped[len(wrapped)-1] + wrapped[0]
	gapStart := wrapped[len(wrapped)-1]
	for i := 1; i < len(wrapped); i++ {
		if gap := wrapped[i] - wrapped[i-1]; gap > largestGap {
			largestGap = gap
			gapStart = wrapped[i-1]
		}
	}

	n := 64 * len(phi)
	if n > 4096 {
		n = 4096
	}
	span := el.ArcLength(gapStart+largestGap, gapStart+2*math.Pi, n)
	return Defined(span / el.Perimeter(n))
}
