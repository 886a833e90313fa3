// Package aggregate groups per-run records by condition key and reduces
// them to ensemble statistics. The reduction is order-independent: any
// permutation of the same record multiset yields identical summaries,
// because values are sorted before accumulation.
package aggregate

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"ringstat/internal/metrics"
	"ringstat/internal/regime"
)

// Stat is one metric's ensemble statistics within a condition. N counts the
// records for which the metric was defined; it can differ per metric (e.g.
// undefined formation times shrink their own count without discarding the
// rest of that run). Std is undefined below two samples rather than a false
// zero.
type Stat struct {
	N    int
	Mean metrics.Value
	Std  metrics.Value
}

// Summary is the reduction of all RunMetrics sharing one condition key.
type Summary struct {
	Key      Key
	NSamples int
	Stats    map[string]Stat
	Regimes  map[regime.Label]int

	// ConservationKnown counts runs that carried conservation data;
	// Violations counts energy violations among those. Runs without data
	// stay out of both, so violation rates keep an honest denominator.
	ConservationKnown int
	Violations        int

	// LowSample is set when NSamples is below the campaign's minimum
	// sample threshold.
	LowSample bool
}

// Aggregate reduces records into one Summary per distinct key, sorted in
// sweep order. minSamples only marks summaries as LowSample; it never
// drops them.
func Aggregate(records []RunMetrics, fields []Field, minSamples int) []Summary {
	groups := make(map[string][]RunMetrics)
	keys := make(map[string]Key)
	for _, r := range records {
		k := KeyOf(r.Identity, fields)
		groups[k.Canon()] = append(groups[k.Canon()], r)
		keys[k.Canon()] = k
	}

	out := make([]Summary, 0, len(groups))
	for canon, group := range groups {
		out = append(out, summarize(keys[canon], group, minSamples))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out
}

func summarize(key Key, group []RunMetrics, minSamples int) Summary {
	s := Summary{
		Key:      key,
		NSamples: len(group),
		Stats:    make(map[string]Stat, len(ScalarNames)),
		Regimes:  make(map[regime.Label]int),
	}

	for _, name := range ScalarNames {
		values := make([]float64, 0, len(group))
		for _, r := range group {
			if v, ok := r.Scalar(name).Float(); ok {
				values = append(values, v)
			}
		}
		s.Stats[name] = reduce(values)
	}

	for _, r := range group {
		s.Regimes[r.Regime]++
		if r.EnergyDriftMax.IsDefined() {
			s.ConservationKnown++
			if r.EnergyViolation {
				s.Violations++
			}
		}
	}

	s.LowSample = s.NSamples < minSamples
	return s
}

// reduce computes mean and std over the defined values only. Sorting first
// makes the floating-point accumulation independent of input order.
func reduce(values []float64) Stat {
	st := Stat{N: len(values), Mean: metrics.Undefined(), Std: metrics.Undefined()}
	if len(values) == 0 {
		return st
	}
	sort.Float64s(values)
	st.Mean = metrics.Defined(stat.Mean(values, nil))
	if len(values) >= 2 {
		st.Std = metrics.Defined(stat.StdDev(values, nil))
	}
	return st
}
