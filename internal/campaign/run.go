package campaign

import (
	"go.uber.org/zap"

	"ringstat/internal/aggregate"
	"ringstat/internal/conservation"
	"ringstat/internal/geometry"
	"ringstat/internal/locate"
	"ringstat/internal/metrics"
	"ringstat/internal/regime"
	"ringstat/internal/trajectory"
)

// runSeries keeps the per-run order-parameter traces for the time-aligned
// condition curves. Owned by one worker until published.
type runSeries struct {
	time  []float64
	polar []float64
}

// processRun reduces one run to its RunMetrics. The returned error marks
// the run as excluded (corrupt container); missing optional datasets only
// leave the affected metrics undefined.
func (a *Analyzer) processRun(id locate.RunIdentity) (aggregate.RunMetrics, runSeries, error) {
	rm := aggregate.RunMetrics{Identity: id}

	tr, err := trajectory.Load(id.SourcePath)
	if err != nil {
		return rm, runSeries{}, err
	}

	th := a.cfg.Thresholds

	polarSeries := metrics.PolarOrderSeries(tr.Phi)
	nematicSeries := metrics.NematicOrderSeries(tr.Phi)
	final := tr.FinalFrame()

	rm.PolarOrderFinal = metrics.Defined(metrics.PolarOrder(final))
	rm.NematicOrderFinal = metrics.Defined(metrics.NematicOrder(final))
	rm.PolarOrderMax = metrics.SeriesMax(polarSeries)
	rm.NematicOrderMax = metrics.SeriesMax(nematicSeries)

	ratio, saturated := metrics.ClusteringRatioSaturation(final, th.BinWidth)
	rm.ClusteringRatio = metrics.Defined(ratio)
	if saturated {
		a.log.Warn("clustering ratio saturated: empty minor-axis bin",
			zap.String("path", id.SourcePath), zap.Float64("ratio", ratio))
	}

	rm.FormationTimePolar = metrics.FormationTime(tr.Time, polarSeries, th.Formation)
	rm.FormationTimeNematic = metrics.FormationTime(tr.Time, nematicSeries, th.Formation)

	if len(tr.PhiDot) > 0 {
		rm.MeanSpeedFinal, rm.SpeedDispersionFinal = metrics.VelocityStats(tr.PhiDot[len(tr.PhiDot)-1])
	} else {
		rm.MeanSpeedFinal, rm.SpeedDispersionFinal = metrics.Undefined(), metrics.Undefined()
	}

	rm.MeanCurvatureFinal = metrics.Undefined()
	rm.ArcSpanFinal = metrics.Undefined()
	if tr.HasAxes {
		if el, err := geometry.NewEllipse(tr.SemiA, tr.SemiB); err == nil {
			rm.MeanCurvatureFinal = metrics.MeanCurvature(el, final)
			rm.ArcSpanFinal = metrics.ArcSpan(el, final)
		} else {
			a.log.Warn("invalid ellipse axes in container",
				zap.String("path", id.SourcePath), zap.Error(err))
			rm.MeanCurvatureFinal = metrics.Failed()
			rm.ArcSpanFinal = metrics.Failed()
		}
	}

	audit := conservation.AuditSeries(tr.Energy)
	rm.EnergyDriftMax = audit.DriftMax
	rm.EnergyDriftFinal = audit.DriftFinal
	rm.EnergyFluctuationStd = audit.FluctuationStd
	rm.ConservationSeverity = audit.Severity
	rm.EnergyViolation = audit.Violation
	rm.MomentumDriftMax = conservation.MomentumDriftMax(tr.MomentumX, tr.MomentumY)

	polarMax, _ := rm.PolarOrderMax.Float()
	nematicMax, _ := rm.NematicOrderMax.Float()
	rm.Regime = regime.Classify(polarMax, nematicMax, regime.Thresholds{
		Strong: th.Strong,
		Psi:    th.Psi,
	})

	a.log.Debug("run reduced",
		zap.String("path", id.SourcePath),
		zap.Float64("polar_max", polarMax),
		zap.Float64("nematic_max", nematicMax),
		zap.String("regime", string(rm.Regime)))

	return rm, runSeries{time: tr.Time, polar: polarSeries}, nil
}
