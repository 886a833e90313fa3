package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrConvergence marks a model that failed to fit. Recoverable per
	// model: the model drops out of the candidate comparison.
	ErrConvergence = errors.New("fit did not converge")

	// ErrInsufficientData marks a curve with fewer points than the model
	// has parameters.
	ErrInsufficientData = errors.New("insufficient data for fit")
)

// Point is one aggregated sample of the curve being fitted. YErr <= 0 or
// NaN marks an unknown uncertainty; a single unknown uncertainty switches
// the whole fit to unweighted.
type Point struct {
	X, Y, YErr float64
}

// Result is one converged (model, curve) fit. Immutable.
type Result struct {
	ModelName  string
	ParamNames []string
	Params     []float64
	// StdErrs are the parameter standard errors from the scaled covariance
	// of the final Jacobian; Confidence95 derives the half-widths.
	StdErrs   []float64
	RSquared  float64
	Residuals []float64
	Weighted  bool

	model      Model
	xmin, xmax float64
}

// Confidence95 returns the 95% confidence half-width (1.96·stderr) for
// each parameter.
func (r Result) Confidence95() []float64 {
	out := make([]float64, len(r.StdErrs))
	for i, se := range r.StdErrs {
		out[i] = 1.96 * se
	}
	return out
}

// Prediction is one model evaluation; InRange reports whether x lies within
// the fitted data's span (extrapolations carry InRange = false).
type Prediction struct {
	X, Y    float64
	InRange bool
}

// Predict evaluates the fitted model at each x.
func (r Result) Predict(xs []float64) []Prediction {
	out := make([]Prediction, len(xs))
	for i, x := range xs {
		out[i] = Prediction{
			X:       x,
			Y:       r.model.Eval(r.Params, x),
			InRange: x >= r.xmin && x <= r.xmax,
		}
	}
	return out
}

// Options tunes the Levenberg-Marquardt loop.
type Options struct {
	MaxIter int
	TolRel  float64
}

func (o Options) withDefaults() Options {
	if o.MaxIter <= 0 {
		o.MaxIter = 200
	}
	if o.TolRel <= 0 {
		o.TolRel = 1e-10
	}
	return o
}

// Curve fits one model to the points by weighted Levenberg-Marquardt with
// weights 1/yerr². Any unknown uncertainty drops the whole fit to
// unweighted, so a partially-known error column cannot skew the result.
func Curve(m Model, points []Point, opts Options) (Result, error) {
	opts = opts.withDefaults()
	nParams := len(m.ParamNames())
	if len(points) <= nParams {
		return Result{}, fmt.Errorf("%w: %d points for %d parameters of %s",
			ErrInsufficientData, len(points), nParams, m.Name())
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	weights := make([]float64, len(points))
	weighted := true
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
		if p.YErr <= 0 || math.IsNaN(p.YErr) {
			weighted = false
		}
	}
	for i := range weights {
		if weighted {
			weights[i] = 1 / (points[i].YErr * points[i].YErr)
		} else {
			weights[i] = 1
		}
	}

	params := append([]float64(nil), m.Guess(xs, ys)...)
	if len(params) != nParams {
		return Result{}, fmt.Errorf("%w: %s guess has %d parameters, want %d",
			ErrConvergence, m.Name(), len(params), nParams)
	}

	chi2, ok := weightedChi2(m, params, xs, ys, weights)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s is undefined at the starting point", ErrConvergence, m.Name())
	}

	lambda := 1e-3
	converged := false
	for iter := 0; iter < opts.MaxIter; iter++ {
		jac, resid, ok := weightedJacobian(m, params, xs, ys, weights)
		if !ok {
			return Result{}, fmt.Errorf("%w: %s produced non-finite values", ErrConvergence, m.Name())
		}

		var jtj mat.Dense
		jtj.Mul(jac.T(), jac)
		var jtr mat.VecDense
		jtr.MulVec(jac.T(), resid)

		improved := false
		for attempt := 0; attempt < 30; attempt++ {
			step, ok := solveDamped(&jtj, &jtr, lambda)
			if !ok {
				lambda *= 10
				continue
			}
			trial := make([]float64, nParams)
			for i := range trial {
				trial[i] = params[i] + step.AtVec(i)
			}
			trialChi2, ok := weightedChi2(m, trial, xs, ys, weights)
			if ok && trialChi2 <= chi2 {
				if chi2-trialChi2 <= opts.TolRel*(chi2+opts.TolRel) {
					converged = true
				}
				params, chi2 = trial, trialChi2
				lambda = math.Max(lambda/10, 1e-14)
				improved = true
				break
			}
			lambda *= 10
		}
		if !improved {
			// No damping level yields progress: local minimum reached.
			converged = true
		}
		if converged {
			break
		}
	}
	if !converged {
		return Result{}, fmt.Errorf("%w: %s after %d iterations", ErrConvergence, m.Name(), opts.MaxIter)
	}

	stdErrs, err := standardErrors(m, params, xs, ys, weights, chi2)
	if err != nil {
		return Result{}, err
	}

	residuals := make([]float64, len(points))
	var ssRes, ssTot, meanY float64
	for _, y := range ys {
		meanY += y
	}
	meanY /= float64(len(ys))
	for i := range xs {
		residuals[i] = ys[i] - m.Eval(params, xs[i])
		ssRes += residuals[i] * residuals[i]
		ssTot += (ys[i] - meanY) * (ys[i] - meanY)
	}
	r2 := 1.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}

	xmin, xmax := minMax(xs)
	return Result{
		ModelName:  m.Name(),
		ParamNames: m.ParamNames(),
		Params:     params,
		StdErrs:    stdErrs,
		RSquared:   r2,
		Residuals:  residuals,
		Weighted:   weighted,
		model:      m,
		xmin:       xmin,
		xmax:       xmax,
	}, nil
}

// Comparison is the outcome of fitting every candidate model to one curve.
type Comparison struct {
	Results []Result
	// Failures records models that did not converge, by name.
	Failures map[string]string
	// Best indexes Results at the highest R², -1 when nothing converged.
	Best int
}

// BestResult returns the winning fit and whether any model converged.
func (c Comparison) BestResult() (Result, bool) {
	if c.Best < 0 {
		return Result{}, false
	}
	return c.Results[c.Best], true
}

// Compare fits every candidate and picks the best by R². A model failure is
// recorded, never fatal; an empty Results slice means no model converged.
func Compare(models []Model, points []Point, opts Options) Comparison {
	c := Comparison{Best: -1, Failures: make(map[string]string)}
	for _, m := range models {
		res, err := Curve(m, points, opts)
		if err != nil {
			c.Failures[m.Name()] = err.Error()
			continue
		}
		c.Results = append(c.Results, res)
		if c.Best < 0 || res.RSquared > c.Results[c.Best].RSquared {
			c.Best = len(c.Results) - 1
		}
	}
	return c
}

func weightedChi2(m Model, params, xs, ys, weights []float64) (float64, bool) {
	var chi2 float64
	for i := range xs {
		f := m.Eval(params, xs[i])
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		d := ys[i] - f
		chi2 += weights[i] * d * d
	}
	return chi2, true
}

// weightedJacobian builds sqrt(w)-scaled residuals and the forward-difference
// Jacobian of the scaled residual vector.
func weightedJacobian(m Model, params, xs, ys, weights []float64) (*mat.Dense, *mat.VecDense, bool) {
	n, p := len(xs), len(params)
	jac := mat.NewDense(n, p, nil)
	resid := mat.NewVecDense(n, nil)

	for i := range xs {
		f := m.Eval(params, xs[i])
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, nil, false
		}
		sw := math.Sqrt(weights[i])
		resid.SetVec(i, sw*(ys[i]-f))

		for j := 0; j < p; j++ {
			h := 1e-7 * math.Max(math.Abs(params[j]), 1)
			bumped := append([]float64(nil), params...)
			bumped[j] += h
			fb := m.Eval(bumped, xs[i])
			if math.IsNaN(fb) || math.IsInf(fb, 0) {
				return nil, nil, false
			}
			jac.Set(i, j, sw*(fb-f)/h)
		}
	}
	return jac, resid, true
}

func solveDamped(jtj *mat.Dense, jtr *mat.VecDense, lambda float64) (*mat.VecDense, bool) {
	p, _ := jtj.Dims()
	damped := mat.NewDense(p, p, nil)
	damped.Copy(jtj)
	for i := 0; i < p; i++ {
		d := jtj.At(i, i)
		if d == 0 {
			d = 1
		}
		damped.Set(i, i, d*(1+lambda))
	}

	step := mat.NewVecDense(p, nil)
	if err := step.SolveVec(damped, jtr); err != nil {
		return nil, false
	}
	for i := 0; i < p; i++ {
		if math.IsNaN(step.AtVec(i)) || math.IsInf(step.AtVec(i), 0) {
			return nil, false
		}
	}
	return step, true
}

// standardErrors scales the inverse normal matrix by the reduced chi².
func standardErrors(m Model, params, xs, ys, weights []float64, chi2 float64) ([]float64, error) {
	jac, _, ok := weightedJacobian(m, params, xs, ys, weights)
	if !ok {
		return nil, fmt.Errorf("%w: %s covariance evaluation", ErrConvergence, m.Name())
	}
	var jtj mat.Dense
	jtj.Mul(jac.T(), jac)

	p := len(params)
	var cov mat.Dense
	if err := cov.Inverse(&jtj); err != nil {
		return nil, fmt.Errorf("%w: %s has a singular Jacobian", ErrConvergence, m.Name())
	}

	dof := len(xs) - p
	scale := chi2 / float64(dof)
	out := make([]float64, p)
	for i := 0; i < p; i++ {
		v := cov.At(i, i) * scale
		if v < 0 {
			v = 0
		}
		out[i] = math.Sqrt(v)
	}
	return out, nil
}
