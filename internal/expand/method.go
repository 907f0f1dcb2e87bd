package expand

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mztrk/ExpendbyPeriods/internal/errors"
	"github.com/mztrk/ExpendbyPeriods/internal/rolling"
	"github.com/mztrk/ExpendbyPeriods/internal/validation"
)

// Method is an aggregate applied over a period window.
type Method string

// Supported methods.
const (
	Shift  Method = "shift"
	Mean   Method = "mean"
	Median Method = "median"
	Min    Method = "min"
	Max    Method = "max"
	Prod   Method = "prod"
	Sum    Method = "sum"
	SD     Method = "sd"
	Var    Method = "var"
)

var kernels = map[Method]rolling.Kernel{
	Mean:   rolling.Mean,
	Median: rolling.Median,
	Min:    rolling.Min,
	Max:    rolling.Max,
	Prod:   rolling.Prod,
	Sum:    rolling.Sum,
	SD:     rolling.SD,
	Var:    rolling.Var,
}

// Methods lists every supported method.
func Methods() []Method {
	return []Method{Shift, Mean, Median, Min, Max, Prod, Sum, SD, Var}
}

// ParseMethod resolves a method name. Names are matched case-insensitively.
func ParseMethod(name string) (Method, bool) {
	m := Method(strings.ToLower(strings.TrimSpace(name)))
	if m == Shift {
		return m, true
	}
	_, ok := kernels[m]
	return m, ok
}

func (m Method) String() string {
	return string(m)
}

// Kernel returns the window aggregate for m; shift has none.
func (m Method) Kernel() rolling.Kernel {
	return kernels[m]
}

// suffix returns the default naming suffix for m in the direction of offset.
func (m Method) suffix(offset int) string {
	if m == Shift {
		if offset < 0 {
			return "_f"
		}
		return "_p"
	}
	if offset < 0 {
		return string(m) + "Fwd"
	}
	return string(m) + "Prev"
}

// Pass is one (method, offset) expansion with its resolved column suffix.
type Pass struct {
	Method Method
	Offset int
	Suffix string
}

// Name is the derived column name for source column col.
func (p Pass) Name(col string) string {
	return col + p.Suffix + strconv.Itoa(abs(p.Offset))
}

// RatioName is the ratio column name for source column col.
func (p Pass) RatioName(col string) string {
	return p.Name(col) + "Ratio"
}

// Window is the number of rows the pass aggregates over.
func (p Pass) Window() int {
	return abs(p.Offset)
}

func (p Pass) direction() rolling.Direction {
	if p.Offset < 0 {
		return rolling.Forward
	}
	return rolling.Backward
}

// BoundaryDistance is how many rows away from the current row the furthest
// input of the pass lies. A derived value is only kept when the row that far
// away belongs to the same entity.
func (p Pass) BoundaryDistance(includeCurrentPeriod bool) int {
	if p.Method != Shift && includeCurrentPeriod {
		return p.Window() - 1
	}
	return p.Window()
}

func (p Pass) String() string {
	return fmt.Sprintf("%s(%d)", p.Method, p.Offset)
}

// Plan is the resolved naming table: one Pass per distinct (method, offset)
// pair in request order, plus the subset of pairs that also produce ratios.
type Plan struct {
	Passes   []Pass
	ratioSet map[passKey]bool
	Warnings []string
}

type passKey struct {
	method Method
	offset int
}

// HasRatio reports whether pass p produces ratio columns.
func (pl *Plan) HasRatio(p Pass) bool {
	return pl.ratioSet[passKey{p.Method, p.Offset}]
}

// NewPlan validates the requested methods and builds the naming table.
// Every unrecognized method is reported in a single
// MethodNotRecognizedError. Ratio methods or offsets outside the expansion
// sets are not errors; they are recorded in Warnings and skipped.
func NewPlan(methods []string, offsets []int, ratioMethods []string, ratioOffsets []int, suffixes map[string]string) (*Plan, error) {
	var unknown []string
	resolved := make([]Method, 0, len(methods))
	seen := make(map[Method]bool, len(methods))
	for _, name := range methods {
		m, ok := ParseMethod(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if !seen[m] {
			seen[m] = true
			resolved = append(resolved, m)
		}
	}
	if len(unknown) > 0 {
		return nil, errors.NewMethodNotRecognizedError(unknown...)
	}

	custom := make(map[Method]string, len(suffixes))
	plan := &Plan{ratioSet: make(map[passKey]bool)}
	for name, suffix := range suffixes {
		m, ok := ParseMethod(name)
		if !ok {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("suffix given for unknown method %q is ignored", name))
			continue
		}
		custom[m] = suffix
	}
	sort.Strings(plan.Warnings)

	distinctOffsets := dedupe(offsets)
	for _, m := range resolved {
		for _, offset := range distinctOffsets {
			suffix, ok := custom[m]
			if !ok {
				suffix = m.suffix(offset)
			}
			plan.Passes = append(plan.Passes, Pass{Method: m, Offset: offset, Suffix: suffix})
		}
	}

	var ratioResolved []Method
	var notExpanded []string
	for _, name := range ratioMethods {
		m, ok := ParseMethod(name)
		if !ok || !seen[m] {
			notExpanded = append(notExpanded, name)
			continue
		}
		ratioResolved = append(ratioResolved, m)
	}
	if len(notExpanded) > 0 {
		plan.Warnings = append(plan.Warnings, fmt.Sprintf(
			"ratio methods %s are not among the expansion methods; their ratios are skipped",
			strings.Join(notExpanded, ", ")))
	}

	if missing := validation.Missing(ratioOffsets, distinctOffsets); len(missing) > 0 {
		plan.Warnings = append(plan.Warnings, fmt.Sprintf(
			"ratio offsets %v are not among the expansion offsets; their ratios are skipped", missing))
	}

	ratioOffsetSet := make(map[int]bool, len(ratioOffsets))
	for _, offset := range ratioOffsets {
		ratioOffsetSet[offset] = true
	}
	ratioMethodSet := make(map[Method]bool, len(ratioResolved))
	for _, m := range ratioResolved {
		ratioMethodSet[m] = true
	}
	for _, p := range plan.Passes {
		if ratioMethodSet[p.Method] && ratioOffsetSet[p.Offset] {
			plan.ratioSet[passKey{p.Method, p.Offset}] = true
		}
	}

	return plan, nil
}

func dedupe[T comparable](values []T) []T {
	seen := make(map[T]bool, len(values))
	out := make([]T, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
