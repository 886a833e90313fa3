package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlignedMeanTruncates(t *testing.T) {
	mean, n := AlignedMean([][]float64{
		{1, 2, 3, 4},
		{3, 4, 5},
	})
	assert.Equal(t, 3, n)
	assert.Equal(t, []float64{2, 3, 4}, mean)
}

func TestAlignedMeanEmpty(t *testing.T) {
	mean, n := AlignedMean(nil)
	assert.Nil(t, mean)
	assert.Equal(t, 0, n)

	mean, n = AlignedMean([][]float64{{1, 2}, {}})
	assert.Nil(t, mean)
	assert.Equal(t, 0, n)
}
