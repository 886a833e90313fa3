package aggregate

// AlignedMean averages several per-run time series sample-by-sample after
// truncating every series to the shortest common length. The truncation is
// explicit and reported back to the caller; runs keep their full series
// until this merge point.
func AlignedMean(series [][]float64) (mean []float64, truncatedTo int) {
	if len(series) == 0 {
		return nil, 0
	}
	truncatedTo = len(series[0])
	for _, s := range series[1:] {
		if len(s) < truncatedTo {
			truncatedTo = len(s)
		}
	}
	if truncatedTo == 0 {
		return nil, 0
	}

	mean = make([]float64, truncatedTo)
	for i := 0; i < truncatedTo; i++ {
		var sum float64
		for _, s := range series {
			sum += s[i]
		}
		mean[i] = sum / float64(len(series))
	}
	return mean, truncatedTo
}
