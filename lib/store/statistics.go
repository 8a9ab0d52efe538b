package store

import "math"

// ----------------------------------------------------------------------------
// Shard distribution statistics
// ----------------------------------------------------------------------------

// Summary holds basic statistics over a series of values.
type Summary struct {
	StdDeviation float64 `json:"std_deviation"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	MinMaxRatio  float64 `json:"min_max_ratio"`
}

// NewSummary computes mean, extrema and the population standard
// deviation of values. An empty slice yields the zero Summary.
func NewSummary(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	s := Summary{Min: values[0], Max: values[0]}
	var sum float64
	for _, v := range values {
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean = sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - s.Mean
		sq += d * d
	}
	s.StdDeviation = math.Sqrt(sq / float64(len(values)))

	s.MinMaxRatio = 1.0
	if s.Max > 0 {
		s.MinMaxRatio = s.Min / s.Max
	}
	return s
}

// DistributionStats describes how evenly keys are spread across shards.
type DistributionStats struct {
	Summary
	DistributionQuality float64 `json:"distribution_quality"`
}

// NewDistributionStats derives a single quality score in [0, 1] from the
// shard sizes: a low coefficient of variation and a min/max ratio near
// one both pull the score towards 1.0.
func NewDistributionStats(shardSizes []float64) DistributionStats {
	s := NewSummary(shardSizes)

	var cv float64
	if s.Mean > 0 {
		cv = s.StdDeviation / s.Mean
	}

	return DistributionStats{
		Summary:             s,
		DistributionQuality: (1.0-math.Min(1.0, cv))*0.5 + s.MinMaxRatio*0.5,
	}
}
