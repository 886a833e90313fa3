// Package geometry provides the polar-form ellipse helpers shared by the
// metric computations: radial distance, metric coefficient, curvature and
// arc length for an ellipse with semi-axes (a, b) parameterized by the
// angular coordinate φ as (a·cos φ, b·sin φ).
package geometry

import (
	"fmt"
	"math"
)

// Ellipse is an origin-centered ellipse with semi-major axis A along x and
// semi-minor axis B along y. Axes come from the trajectory container's
// configuration attributes and are never recomputed downstream.
type Ellipse struct {
	A, B float64
}

// NewEllipse validates the semi-axes.
func NewEllipse(a, b float64) (Ellipse, error) {
	if a <= 0 || b <= 0 {
		return Ellipse{}, fmt.Errorf("semi-axes must be positive, got a=%g b=%g", a, b)
	}
	return Ellipse{A: a, B: b}, nil
}

// FromEccentricity builds an ellipse with unit semi-major axis and the given
// eccentricity e ∈ [0, 1).
func FromEccentricity(e float64) (Ellipse, error) {
	if e < 0 || e >= 1 {
		return Ellipse{}, fmt.Errorf("eccentricity must be in [0,1), got %g", e)
	}
	return Ellipse{A: 1, B: math.Sqrt(1 - e*e)}, nil
}

// Eccentricity is sqrt(1 - (b/a)²) with (a, b) ordered so a is the larger
// axis.
func (el Ellipse) Eccentricity() float64 {
	a, b := el.A, el.B
	if b > a {
		a, b = b, a
	}
	return math.Sqrt(1 - (b*b)/(a*a))
}

// Point evaluates the ellipse at angular coordinate phi.
func (el Ellipse) Point(phi float64) (x, y float64) {
	return el.A * math.Cos(phi), el.B * math.Sin(phi)
}

// Radius is the radial distance from the origin at phi.
func (el Ellipse) Radius(phi float64) float64 {
	x, y := el.Point(phi)
	return math.Hypot(x, y)
}

// Metric is the metric coefficient g(φ) = |γ'(φ)|² = a²sin²φ + b²cos²φ.
// Its square root converts dφ/dτ into physical speed.
func (el Ellipse) Metric(phi float64) float64 {
	s, c := math.Sincos(phi)
	return el.A*el.A*s*s + el.B*el.B*c*c
}

// Speed is |γ'(φ)| = sqrt(g(φ)).
func (el Ellipse) Speed(phi float64) float64 {
	return math.Sqrt(el.Metric(phi))
}

// Curvature is κ(φ) = a·b / g(φ)^{3/2}, maximal at the ends of the major
// axis.
func (el Ellipse) Curvature(phi float64) float64 {
	g := el.Metric(phi)
	return el.A * el.B / (g * math.Sqrt(g))
}

// ArcLength integrates the speed from phi0 to phi1 by the trapezoidal rule
// over n panels. n < 1 is clamped to 1.
func (el Ellipse) ArcLength(phi0, phi1 float64, n int) float64 {
	if n < 1 {
		n = 1
	}
	h := (phi1 - phi0) / float64(n)
	sum := (el.Speed(phi0) + el.Speed(phi1)) / 2
	for i := 1; i < n; i++ {
		sum += el.Speed(phi0 + float64(i)*h)
	}
	return sum * h
}

// Perimeter is the full circumference, by trapezoidal quadrature.
func (el Ellipse) Perimeter(n int) float64 {
	return el.ArcLength(0, 2*math.Pi, n)
}
