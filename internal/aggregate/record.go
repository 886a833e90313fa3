package aggregate

import (
	"ringstat/internal/conservation"
	"ringstat/internal/locate"
	"ringstat/internal/metrics"
	"ringstat/internal/regime"
)

// RunMetrics is the per-run scalar record produced by the reduction stage.
// Derived once per run and never mutated; the aggregation input unit.
type RunMetrics struct {
	Identity locate.RunIdentity

	PolarOrderFinal   metrics.Value
	NematicOrderFinal metrics.Value
	PolarOrderMax     metrics.Value
	NematicOrderMax   metrics.Value
	ClusteringRatio   metrics.Value

	MeanSpeedFinal       metrics.Value
	SpeedDispersionFinal metrics.Value
	MeanCurvatureFinal   metrics.Value
	ArcSpanFinal         metrics.Value

	EnergyDriftMax       metrics.Value
	EnergyDriftFinal     metrics.Value
	EnergyFluctuationStd metrics.Value
	MomentumDriftMax     metrics.Value

	FormationTimePolar   metrics.Value
	FormationTimeNematic metrics.Value

	Regime               regime.Label
	ConservationSeverity conservation.Severity
	EnergyViolation      bool
}

// ScalarNames lists the aggregatable scalar fields in output column order.
var ScalarNames = []string{
	"polar_order",
	"nematic_order",
	"polar_order_max",
	"nematic_order_max",
	"clustering_ratio",
	"mean_speed",
	"speed_dispersion",
	"mean_curvature",
	"arc_span",
	"energy_drift_max",
	"energy_drift_final",
	"energy_fluctuation_std",
	"momentum_drift_max",
	"formation_time_polar",
	"formation_time_nematic",
}

// Scalar returns the named scalar field. Unknown names are undefined.
func (r RunMetrics) Scalar(name string) metrics.Value {
	switch name {
	case "polar_order":
		return r.PolarOrderFinal
	case "nematic_order":
		return r.NematicOrderFinal
	case "polar_order_max":
		return r.PolarOrderMax
	case "nematic_order_max":
		return r.NematicOrderMax
	case "clustering_ratio":
		return r.ClusteringRatio
	case "mean_speed":
		return r.MeanSpeedFinal
	case "speed_dispersion":
		return r.SpeedDispersionFinal
	case "mean_curvature":
		return r.MeanCurvatureFinal
	case "arc_span":
		return r.ArcSpanFinal
	case "energy_drift_max":
		return r.EnergyDriftMax
	case "energy_drift_final":
		return r.EnergyDriftFinal
	case "energy_fluctuation_std":
		return r.EnergyFluctuationStd
	case "momentum_drift_max":
		return r.MomentumDriftMax
	case "formation_time_polar":
		return r.FormationTimePolar
	case "formation_time_nematic":
		return r.FormationTimeNematic
	}
	return metrics.Undefined()
}
