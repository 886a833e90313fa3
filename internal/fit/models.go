// Package fit performs weighted nonlinear least-squares fits of candidate
// scaling-law models to aggregated campaign curves.
package fit

import (
	"fmt"
	"math"
)

// Model is one candidate scaling-law family.
type Model interface {
	Name() string
	ParamNames() []string
	// Eval evaluates the model at x for the given parameters. May return
	// non-finite values outside the model's domain; the fitter treats
	// those as a failed step.
	Eval(params []float64, x float64) float64
	// Guess produces a starting parameter vector from the data.
	Guess(xs, ys []float64) []float64
}

// DefaultModels is the candidate set compared by R²: the eccentricity
// divergence power law, an exponential, and a quadratic baseline.
func DefaultModels() []Model {
	return []Model{PowerLaw{}, Exponential{}, Polynomial{Degree: 2}}
}

// ByName resolves model names from configuration.
func ByName(names []string) ([]Model, error) {
	if len(names) == 0 {
		return DefaultModels(), nil
	}
	out := make([]Model, 0, len(names))
	for _, n := range names {
		switch n {
		case "powerlaw":
			out = append(out, PowerLaw{})
		case "exponential":
			out = append(out, Exponential{})
		case "polynomial":
			out = append(out, Polynomial{Degree: 2})
		default:
			return nil, fmt.Errorf("unknown model %q (want powerlaw, exponential or polynomial)", n)
		}
	}
	return out, nil
}

// PowerLaw is y = A·(1-x)^(-β) + C, the divergence form for sweeps in
// eccentricity where x → 1 is the singular limit.
type PowerLaw struct{}

func (PowerLaw) Name() string         { return "powerlaw" }
func (PowerLaw) ParamNames() []string { return []string{"A", "beta", "C"} }

func (PowerLaw) Eval(p []float64, x float64) float64 {
	return p[0]*math.Pow(1-x, -p[1]) + p[2]
}

func (PowerLaw) Guess(xs, ys []float64) []float64 {
	lo, hi := minMax(ys)
	c := lo - 0.05*(hi-lo)
	// Slope of log(y-C) against -log(1-x) between the end points.
	beta := 1.0
	first, last := 0, len(xs)-1
	if len(xs) >= 2 && xs[first] < 1 && xs[last] < 1 {
		dy := math.Log(math.Max(ys[last]-c, 1e-12)) - math.Log(math.Max(ys[first]-c, 1e-12))
		dx := -math.Log(1-xs[last]) + math.Log(1-xs[first])
		if dx != 0 && !math.IsNaN(dy/dx) {
			beta = dy / dx
		}
	}
	a := (ys[first] - c) * math.Pow(1-xs[first], beta)
	if a == 0 || math.IsNaN(a) || math.IsInf(a, 0) {
		a = 1
	}
	return []float64{a, beta, c}
}

// Exponential is y = A·exp(B·x) + C.
type Exponential struct{}

func (Exponential) Name() string         { return "exponential" }
func (Exponential) ParamNames() []string { return []string{"A", "B", "C"} }

func (Exponential) Eval(p []float64, x float64) float64 {
	return p[0]*math.Exp(p[1]*x) + p[2]
}

func (Exponential) Guess(xs, ys []float64) []float64 {
	lo, hi := minMax(ys)
	c := lo - 0.05*(hi-lo)
	b := 1.0
	first, last := 0, len(xs)-1
	if len(xs) >= 2 && xs[last] != xs[first] {
		dy := math.Log(math.Max(ys[last]-c, 1e-12)) - math.Log(math.Max(ys[first]-c, 1e-12))
		b = dy / (xs[last] - xs[first])
	}
	a := (ys[first] - c) * math.Exp(-b*xs[first])
	if a == 0 || math.IsNaN(a) || math.IsInf(a, 0) {
		a = 1
	}
	return []float64{a, b, c}
}

// Polynomial is y = c0 + c1·x + ... of fixed low degree.
type Polynomial struct {
	Degree int
}

func (p Polynomial) Name() string { return fmt.Sprintf("polynomial%d", p.degree()) }

func (p Polynomial) degree() int {
	if p.Degree < 1 {
		return 2
	}
	return p.Degree
}

func (p Polynomial) ParamNames() []string {
	names := make([]string, p.degree()+1)
	for i := range names {
		names[i] = fmt.Sprintf("c%d", i)
	}
	return names
}

func (p Polynomial) Eval(params []float64, x float64) float64 {
	// Horner evaluation, highest coefficient first.
	y := 0.0
	for i := len(params) - 1; i >= 0; i-- {
		y = y*x + params[i]
	}
	return y
}

func (p Polynomial) Guess(xs, ys []float64) []float64 {
	params := make([]float64, p.degree()+1)
	var mean float64
	for _, y := range ys {
		mean += y
	}
	if len(ys) > 0 {
		params[0] = mean / float64(len(ys))
	}
	return params
}

func minMax(v []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range v {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}
