package expand

import "math"

// ratio divides raw by expanded row by row. Plain float division applies, so
// a zero denominator gives ±Inf or NaN as a present value; a missing operand
// gives a missing result.
func ratio(raw []float64, rawValid []bool, expanded []float64, expandedValid []bool) ([]float64, []bool) {
	out := make([]float64, len(raw))
	valid := make([]bool, len(raw))
	for i := range raw {
		if !rawValid[i] || !expandedValid[i] {
			out[i] = math.NaN()
			continue
		}
		out[i] = raw[i] / expanded[i]
		valid[i] = true
	}
	return out, valid
}
