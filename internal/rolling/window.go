package rolling

import (
	"fmt"
	"math"
	"strings"
)

// MissingPolicy controls how missing values inside a window are treated.
type MissingPolicy int

const (
	// Propagate makes any missing value in the window produce a missing result.
	Propagate MissingPolicy = iota
	// Skip aggregates over the present values only; a window with no present
	// value still produces a missing result.
	Skip
)

// String returns the policy name used in configuration files.
func (p MissingPolicy) String() string {
	switch p {
	case Propagate:
		return "propagate"
	case Skip:
		return "skip"
	default:
		return fmt.Sprintf("MissingPolicy(%d)", int(p))
	}
}

// ParseMissingPolicy parses a policy name. The empty string means Propagate.
func ParseMissingPolicy(name string) (MissingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "propagate":
		return Propagate, nil
	case "skip":
		return Skip, nil
	default:
		return Propagate, fmt.Errorf("unknown missing policy %q", name)
	}
}

// Options are forwarded to every window aggregate.
type Options struct {
	Missing MissingPolicy
}

// Direction is the side of the current row a window extends to.
type Direction int

const (
	// Backward windows end at the current row and look into the past.
	Backward Direction = iota
	// Forward windows start at the current row and look into the future.
	Forward
)

// Window computes kernel over every size-n window of values. valid marks
// which values are present; the returned slices share that convention and
// missing results hold NaN.
func Window(values []float64, valid []bool, n int, dir Direction, kernel Kernel, opts Options) ([]float64, []bool) {
	length := len(values)
	out := make([]float64, length)
	outValid := make([]bool, length)
	buf := make([]float64, 0, n)

	for i := 0; i < length; i++ {
		out[i] = math.NaN()

		start, end := i-n+1, i
		if dir == Forward {
			start, end = i, i+n-1
		}
		if n <= 0 || start < 0 || end >= length {
			continue
		}

		buf = buf[:0]
		complete := true
		for j := start; j <= end; j++ {
			if !valid[j] {
				complete = false
				continue
			}
			buf = append(buf, values[j])
		}
		if !complete && opts.Missing == Propagate {
			continue
		}

		if v, ok := kernel(buf); ok {
			out[i] = v
			outValid[i] = true
		}
	}

	return out, outValid
}

// Shift moves values by k positions: row i takes row i-k, so a positive k
// lags and a negative k leads. Rows shifted in from outside the sequence are
// missing.
func Shift(values []float64, valid []bool, k int) ([]float64, []bool) {
	length := len(values)
	out := make([]float64, length)
	outValid := make([]bool, length)

	for i := 0; i < length; i++ {
		src := i - k
		if src < 0 || src >= length || !valid[src] {
			out[i] = math.NaN()
			continue
		}
		out[i] = values[src]
		outValid[i] = true
	}

	return out, outValid
}
