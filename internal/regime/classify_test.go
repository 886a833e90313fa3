package regime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPriorityOrder(t *testing.T) {
	th := DefaultThresholds()

	cases := []struct {
		name       string
		polar      float64
		nematic    float64
		want       Label
	}{
		{"uniform", 0.1, 0.1, None},
		{"moderate polar", 0.4, 0.2, Moderate},
		{"strong single", 0.8, 0.2, StrongSingle},
		{"two cluster", 0.1, 0.9, TwoCluster},
		{"both high prefers single", 0.9, 0.95, StrongSingle},
		{"nematic below strong", 0.45, 0.48, Moderate},
		{"exactly at psi threshold", 0.3, 0.0, None},
		{"exactly at strong threshold", 0.5, 0.0, Moderate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.polar, tc.nematic, th))
		})
	}
}

func TestClassifyCustomThresholds(t *testing.T) {
	th := Thresholds{Strong: 0.7, Psi: 0.2}
	assert.Equal(t, Moderate, Classify(0.6, 0.1, th))
	assert.Equal(t, StrongSingle, Classify(0.75, 0.1, th))
	assert.Equal(t, TwoCluster, Classify(0.1, 0.75, th))
}
