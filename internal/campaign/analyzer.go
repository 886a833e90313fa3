// Package campaign drives the full analysis pipeline: discover runs, reduce
// each trajectory to metrics on a worker pool, then aggregate, classify and
// fit once every run has completed. Aggregation never starts before the
// pool has drained; the statistics need the full multiset.
package campaign

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ringstat/internal/aggregate"
	"ringstat/internal/config"
	"ringstat/internal/fit"
	"ringstat/internal/locate"
)

// ErrNoRuns is returned when the campaign root yields zero parsable runs.
// It is the only per-campaign condition that surfaces as a failure.
var ErrNoRuns = errors.New("no runs located")

// RunFailure records a run excluded at the per-run boundary (corrupt file,
// unreadable container). Failures never abort the campaign scan.
type RunFailure struct {
	Path   string
	Reason string
}

// ConditionCurve is the time-aligned mean polar-order series for one
// condition, truncated to the shortest run in the ensemble.
type ConditionCurve struct {
	Key         aggregate.Key
	Mean        []float64
	Time        []float64
	TruncatedTo int
	Runs        int
}

// FitReport is the scaling-law analysis over the aggregated curve.
type FitReport struct {
	Metric      string
	Abscissa    aggregate.Field
	Points      []fit.Point
	Comparison  fit.Comparison
	Predictions []fit.Prediction
}

// Report is the final artifact of one campaign analysis.
type Report struct {
	ID   string
	Root string

	Runs      []aggregate.RunMetrics
	Skipped   []locate.Skipped
	Failures  []RunFailure
	Summaries []aggregate.Summary
	Curves    []ConditionCurve

	// Fit is nil when the sweep has too few conditions or the abscissa is
	// not part of the grouping key.
	Fit *FitReport
}

// Analyzer runs campaign analyses for one configuration.
type Analyzer struct {
	cfg config.Config
	log *zap.Logger
}

// New builds an Analyzer. A nil logger falls back to zap.NewNop.
func New(cfg config.Config, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{cfg: cfg, log: log}
}

// Run analyzes every run under root. Per-run problems are recorded in the
// report; only a zero-run campaign or an invalid configuration is an error.
func (a *Analyzer) Run(ctx context.Context, root string) (*Report, error) {
	pattern, err := locate.ParsePattern(a.cfg.Discovery.Pattern)
	if err != nil {
		return nil, err
	}
	fields, err := aggregate.ParseFields(a.cfg.Aggregation.GroupBy)
	if err != nil {
		return nil, err
	}

	ids, skipped, err := locate.Scan(root, pattern)
	if err != nil {
		return nil, err
	}
	for _, s := range skipped {
		a.log.Warn("skipping unparsable run name", zap.String("path", s.Path), zap.String("reason", s.Reason))
	}

	report := &Report{ID: uuid.NewString(), Root: root, Skipped: skipped}
	if len(ids) == 0 {
		return report, fmt.Errorf("%w under %s", ErrNoRuns, root)
	}

	type outcome struct {
		metrics aggregate.RunMetrics
		series  runSeries
		failure *RunFailure
	}

	var (
		mu       sync.Mutex
		outcomes []outcome
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.jobs())
	for _, id := range ids {
		id := id
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			rm, series, err := a.processRun(id)
			o := outcome{metrics: rm, series: series}
			if err != nil {
				a.log.Warn("run excluded",
					zap.String("path", id.SourcePath), zap.Error(err))
				o.failure = &RunFailure{Path: id.SourcePath, Reason: err.Error()}
			}
			mu.Lock()
			outcomes = append(outcomes, o)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return report, err
	}

	// Join point: the pool has drained, reduction may begin.
	sort.Slice(outcomes, func(i, j int) bool {
		return pathOf(outcomes[i].metrics, outcomes[i].failure) < pathOf(outcomes[j].metrics, outcomes[j].failure)
	})

	seriesByKey := make(map[string][]runSeries)
	keyByCanon := make(map[string]aggregate.Key)
	for _, o := range outcomes {
		if o.failure != nil {
			report.Failures = append(report.Failures, *o.failure)
			continue
		}
		report.Runs = append(report.Runs, o.metrics)
		k := aggregate.KeyOf(o.metrics.Identity, fields)
		seriesByKey[k.Canon()] = append(seriesByKey[k.Canon()], o.series)
		keyByCanon[k.Canon()] = k
	}
	if len(report.Runs) == 0 {
		return report, fmt.Errorf("%w: all %d located runs failed", ErrNoRuns, len(ids))
	}

	report.Summaries = aggregate.Aggregate(report.Runs, fields, a.cfg.Aggregation.MinSamples)
	report.Curves = conditionCurves(seriesByKey, keyByCanon)
	report.Fit = a.fitSweep(report.Summaries)
	return report, nil
}

func (a *Analyzer) jobs() int {
	if a.cfg.Execution.Jobs > 0 {
		return a.cfg.Execution.Jobs
	}
	return 1
}

func pathOf(m aggregate.RunMetrics, f *RunFailure) string {
	if f != nil {
		return f.Path
	}
	return m.Identity.SourcePath
}

func conditionCurves(seriesByKey map[string][]runSeries, keys map[string]aggregate.Key) []ConditionCurve {
	out := make([]ConditionCurve, 0, len(seriesByKey))
	for canon, group := range seriesByKey {
		polar := make([][]float64, 0, len(group))
		var time []float64
		for _, s := range group {
			if len(s.polar) == 0 {
				continue
			}
			polar = append(polar, s.polar)
			if time == nil || len(s.time) < len(time) {
				time = s.time
			}
		}
		if len(polar) == 0 {
			continue
		}
		mean, truncated := aggregate.AlignedMean(polar)
		out = append(out, ConditionCurve{
			Key:         keys[canon],
			Mean:        mean,
			Time:        time[:truncated],
			TruncatedTo: truncated,
			Runs:        len(polar),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out
}

// fitSweep fits the configured metric's per-condition means against the
// sweep abscissa. Returns nil when the curve cannot be formed.
func (a *Analyzer) fitSweep(summaries []aggregate.Summary) *FitReport {
	abscissa := aggregate.Field(a.cfg.Fit.Abscissa)
	metric := a.cfg.Fit.Metric

	var points []fit.Point
	for _, s := range summaries {
		x, ok := s.Key.Value(abscissa)
		if !ok {
			return nil
		}
		st, found := s.Stats[metric]
		if !found {
			a.log.Warn("unknown fit metric", zap.String("metric", metric))
			return nil
		}
		mean, ok := st.Mean.Float()
		if !ok {
			continue
		}
		p := fit.Point{X: x, Y: mean}
		if std, ok := st.Std.Float(); ok {
			p.YErr = std
		}
		points = append(points, p)
	}
	if len(points) < 2 {
		return nil
	}
	sort.Slice(points, func(i, j int) bool { return points[i].X < points[j].X })

	models, err := fit.ByName(a.cfg.Fit.Models)
	if err != nil {
		a.log.Warn("invalid model list", zap.Error(err))
		models = fit.DefaultModels()
	}
	comparison := fit.Compare(models, points, fit.Options{MaxIter: a.cfg.Fit.MaxIter})
	for name, reason := range comparison.Failures {
		a.log.Info("model did not converge", zap.String("model", name), zap.String("reason", reason))
	}

	fr := &FitReport{
		Metric:     metric,
		Abscissa:   abscissa,
		Points:     points,
		Comparison: comparison,
	}
	if best, ok := comparison.BestResult(); ok {
		fr.Predictions = best.Predict(predictionGrid(points, abscissa))
	}
	return fr
}

// predictionGrid spans the observed range plus a 25% extrapolation tail;
// eccentricity sweeps are clamped below the x=1 singularity.
func predictionGrid(points []fit.Point, abscissa aggregate.Field) []float64 {
	lo := points[0].X
	hi := points[len(points)-1].X
	span := hi - lo
	if span <= 0 {
		return []float64{lo}
	}
	max := hi + 0.25*span
	if abscissa == aggregate.FieldEccentricity && max > 0.99 {
		max = 0.99
	}

	const n = 50
	grid := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		grid = append(grid, lo+(max-lo)*float64(i)/float64(n-1))
	}
	return grid
}
