package stats

import "math"

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(values ...float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev converts a precomputed variance into a standard deviation.
// Negative variance (floating point noise) and NaN give 0.
func StdDev(variance float64) float64 {
	if !(variance >= 0) {
		return 0
	}
	return math.Sqrt(variance)
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
