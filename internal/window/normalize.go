package window

import (
	"math"
	"sort"
)

// Normalize flattens a DataWindow into a NumericSeries.
//
// Observations are ordered ascending by timestamp. Ties and missing
// timestamps are broken deterministically: observations are first laid out
// in lexicographic key order, then stably sorted, so equal timestamps keep
// key order and observations without a timestamp sort before all
// timestamped ones. String-valued observations are dropped silently; the
// model consumes numbers only. Normalize never fails, an all-string or
// empty window yields an empty series.
func Normalize(w DataWindow) NumericSeries {
	keys := make([]string, 0, len(w))
	for k := range w {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	observations := make([]Observation, 0, len(w))
	for _, k := range keys {
		observations = append(observations, w[k])
	}
	sort.SliceStable(observations, func(i, j int) bool {
		return sortTime(observations[i]) < sortTime(observations[j])
	})

	series := make(NumericSeries, 0, len(observations))
	for _, obs := range observations {
		if n, ok := obs.Value.Number(); ok {
			series = append(series, float32(n))
		}
	}
	return series
}

func sortTime(obs Observation) int64 {
	if obs.Timestamp == nil {
		return math.MinInt64
	}
	return *obs.Timestamp
}
