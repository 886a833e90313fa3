// Package regime maps order-parameter maxima to a discrete dynamical-regime
// label via ordered threshold rules.
package regime

// Label is a run's final dynamical regime.
type Label string

const (
	None         Label = "NONE"
	Moderate     Label = "MODERATE"
	TwoCluster   Label = "TWO_CLUSTER"
	StrongSingle Label = "STRONG_SINGLE"
)

// Labels lists every regime in classification priority order, for stable
// report columns.
var Labels = []Label{StrongSingle, TwoCluster, Moderate, None}

// Thresholds parameterizes the classifier.
type Thresholds struct {
	// Strong is the polar-order level above which a run is a strong single
	// cluster, and the nematic level for the two-cluster check.
	Strong float64
	// Psi is the moderate polar-order threshold.
	Psi float64
}

// DefaultThresholds matches the campaign convention: strong at 0.5,
// moderate at 0.3.
func DefaultThresholds() Thresholds { return Thresholds{Strong: 0.5, Psi: 0.3} }

// Classify applies the rules in fixed priority order. The strong-single
// check runs before the two-cluster check on purpose: a run with both
// maxima high is a single cluster, not two.
func Classify(polarMax, nematicMax float64, th Thresholds) Label {
	switch {
	case polarMax > th.Strong:
		return StrongSingle
	case nematicMax > th.Strong && nematicMax > polarMax:
		return TwoCluster
	case polarMax > th.Psi:
		return Moderate
	default:
		return None
	}
}
