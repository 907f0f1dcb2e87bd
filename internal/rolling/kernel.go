package rolling

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Kernel reduces the present values of one window to a single result. It
// reports false when the result is undefined for the given values.
type Kernel func(window []float64) (float64, bool)

// Mean is the arithmetic mean.
func Mean(window []float64) (float64, bool) {
	if len(window) == 0 {
		return 0, false
	}
	return stat.Mean(window, nil), true
}

// Median is the middle value, or the average of the two middle values for
// an even-sized window.
func Median(window []float64) (float64, bool) {
	n := len(window)
	if n == 0 {
		return 0, false
	}
	sorted := make([]float64, n)
	copy(sorted, window)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2], true
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2, true
}

// Min is the smallest value.
func Min(window []float64) (float64, bool) {
	if len(window) == 0 {
		return 0, false
	}
	return floats.Min(window), true
}

// Max is the largest value.
func Max(window []float64) (float64, bool) {
	if len(window) == 0 {
		return 0, false
	}
	return floats.Max(window), true
}

// Prod is the product of all values.
func Prod(window []float64) (float64, bool) {
	if len(window) == 0 {
		return 0, false
	}
	return floats.Prod(window), true
}

// Sum is the sum of all values.
func Sum(window []float64) (float64, bool) {
	if len(window) == 0 {
		return 0, false
	}
	return floats.Sum(window), true
}

// SD is the sample standard deviation (n-1 denominator). It is undefined for
// fewer than two values.
func SD(window []float64) (float64, bool) {
	if len(window) < 2 {
		return 0, false
	}
	return stat.StdDev(window, nil), true
}

// Var is the sample variance (n-1 denominator). It is undefined for fewer
// than two values.
func Var(window []float64) (float64, bool) {
	if len(window) < 2 {
		return 0, false
	}
	return stat.Variance(window, nil), true
}
