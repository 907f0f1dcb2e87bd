package expand

import (
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/mztrk/ExpendbyPeriods/internal/monitoring"
	"github.com/mztrk/ExpendbyPeriods/internal/rolling"
)

// Options describes one expansion request. Start from DefaultOptions; the
// zero value disables sorting and excludes the current period.
type Options struct {
	// ColsToExpand are the source columns that receive derived columns.
	ColsToExpand []string
	// Offsets are signed window sizes: positive looks back, negative looks
	// forward. Zero is rejected.
	Offsets []int
	// KeyColumns identify an entity; PeriodColumn orders its observations.
	KeyColumns   []string
	PeriodColumn string

	// Methods are aggregate names, see Methods().
	Methods []string
	// IncludeCurrentPeriod makes aggregate windows end (or start) at the
	// current row. Shift ignores it.
	IncludeCurrentPeriod bool

	// ColsToRatio receive ratio columns raw/expanded. A column listed here but
	// not in ColsToExpand keeps only its ratio columns.
	ColsToRatio []string
	// MethodsToRatio and OffsetsToRatio restrict which passes produce ratios.
	// Nil means the same as Methods and Offsets.
	MethodsToRatio []string
	OffsetsToRatio []int

	// DoGrid fills every entity with a row for every observed period. It
	// forces DoSort.
	DoGrid bool
	// DoSort orders rows by key columns then period. Disabling it is only
	// correct when the input is already in that order.
	DoSort bool
	// MaxGridCells bounds the grid size; 0 means unbounded.
	MaxGridCells int64

	// Suffixes overrides the naming suffix per method name. A custom suffix is
	// used for both directions.
	Suffixes map[string]string
	// Aggregate is forwarded to every window aggregate.
	Aggregate rolling.Options

	// Workers bounds how many (method, offset) passes are computed at once.
	// Zero or one computes them one after another; phases never overlap
	// and output column order does not depend on it.
	Workers int

	// Verbose logs progress at Info instead of Debug.
	Verbose bool
	// Logger receives progress and warnings; nil means slog.Default().
	Logger *slog.Logger
	// Metrics records per-phase timings when non-nil and enabled.
	Metrics *monitoring.MetricsCollector
	// Allocator backs every derived column; nil means a Go allocator.
	Allocator memory.Allocator
}

// DefaultOptions returns options with the documented defaults: mean
// aggregates including the current period, sorting on, grid off.
func DefaultOptions() Options {
	return Options{
		Methods:              []string{string(Mean)},
		IncludeCurrentPeriod: true,
		DoSort:               true,
	}
}

func (o Options) withDefaults() Options {
	if len(o.Methods) == 0 {
		o.Methods = []string{string(Mean)}
	}
	o.ColsToExpand = dedupe(o.ColsToExpand)
	o.ColsToRatio = dedupe(o.ColsToRatio)
	if o.MethodsToRatio == nil {
		o.MethodsToRatio = o.Methods
	}
	if o.OffsetsToRatio == nil {
		o.OffsetsToRatio = o.Offsets
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Allocator == nil {
		o.Allocator = memory.NewGoAllocator()
	}
	return o
}

func (o Options) progressLevel() slog.Level {
	if o.Verbose {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}
