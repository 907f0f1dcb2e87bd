// Package expendbyperiods adds lagged, lead and rolling-window columns to
// panel data: tables of entities (one or more key columns) observed over
// periods.
//
// A typical run builds or reads a DataFrame, fills Options and calls
// Expand:
//
//	mem := memory.NewGoAllocator()
//	df, err := expendbyperiods.ReadFile("panel.csv", mem)
//	...
//	defer df.Release()
//
//	opts := expendbyperiods.DefaultOptions()
//	opts.KeyColumns = []string{"client"}
//	opts.PeriodColumn = "period"
//	opts.ColsToExpand = []string{"sales"}
//	opts.Offsets = []int{1, 3, -1}
//	opts.Methods = []string{"shift", "mean"}
//
//	out, err := expendbyperiods.Expand(ctx, df, opts)
//	...
//	defer out.Release()
//
// Every DataFrame and Series holds Arrow memory and must be released.
package expendbyperiods

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/mztrk/ExpendbyPeriods/internal/dataframe"
	dferrors "github.com/mztrk/ExpendbyPeriods/internal/errors"
	"github.com/mztrk/ExpendbyPeriods/internal/expand"
	dfio "github.com/mztrk/ExpendbyPeriods/internal/io"
	"github.com/mztrk/ExpendbyPeriods/internal/rolling"
	"github.com/mztrk/ExpendbyPeriods/internal/series"
)

// ISeries provides a type-erased interface for Series of any type
type ISeries interface {
	Name() string
	Len() int
	DataType() arrow.DataType
	IsNull(index int) bool
	String() string
	Array() arrow.Array
	Release()
	GetAsString(index int) string
}

// DataFrame is the public type for a DataFrame.
// It wraps the internal dataframe.DataFrame to hide implementation details.
type DataFrame struct {
	df *dataframe.DataFrame
}

// Options describes one expansion request, see DefaultOptions.
type Options = expand.Options

// Method names an aggregate applied over each window.
type Method = expand.Method

// MissingPolicy controls how missing values inside a window are treated.
type MissingPolicy = rolling.MissingPolicy

// AggregateOptions are forwarded to every window aggregate.
type AggregateOptions = rolling.Options

// Supported methods.
const (
	Shift  = expand.Shift
	Mean   = expand.Mean
	Median = expand.Median
	Min    = expand.Min
	Max    = expand.Max
	Prod   = expand.Prod
	Sum    = expand.Sum
	SD     = expand.SD
	Var    = expand.Var
)

// Missing value policies.
const (
	// Propagate makes a window with any missing value missing.
	Propagate = rolling.Propagate
	// Skip aggregates the present values of a window.
	Skip = rolling.Skip
)

var (
	// ErrGridTooLarge is matched by errors.Is when grid completion would
	// exceed Options.MaxGridCells.
	ErrGridTooLarge = dferrors.ErrGridTooLarge
)

// MethodNotRecognizedError lists every unknown method name of a request.
type MethodNotRecognizedError = dferrors.MethodNotRecognizedError

// DefaultOptions returns mean aggregates including the current period with
// sorting on and grid completion off.
func DefaultOptions() Options {
	return expand.DefaultOptions()
}

// Methods lists every supported method.
func Methods() []Method {
	return expand.Methods()
}

// NewDataFrame creates a new DataFrame from ISeries. The DataFrame takes
// ownership of the series.
func NewDataFrame(series ...ISeries) *DataFrame {
	internalSeries := make([]dataframe.ISeries, len(series))
	for i, s := range series {
		internalSeries[i] = s
	}
	return &DataFrame{df: dataframe.New(internalSeries...)}
}

// NewSeries creates a new typed Series. Supported element types are
// string, int64, int32, float64, float32 and bool.
func NewSeries[T any](name string, values []T, mem memory.Allocator) ISeries {
	return series.New(name, values, mem)
}

// NewNullableSeries creates a Series whose false valid entries are missing.
// A nil valid slice marks every value present.
func NewNullableSeries[T any](name string, values []T, valid []bool, mem memory.Allocator) (ISeries, error) {
	return series.NewNullable(name, values, valid, mem)
}

// Expand returns df with derived columns appended. df is left untouched and
// must still be released.
func Expand(ctx context.Context, df *DataFrame, opts Options) (*DataFrame, error) {
	var in *dataframe.DataFrame
	if df != nil {
		in = df.df
	}
	out, err := expand.Expand(ctx, in, opts)
	if err != nil {
		return nil, err
	}
	return &DataFrame{df: out}, nil
}

// ReadFile reads a .csv, .json, .jsonl/.ndjson or .parquet file.
func ReadFile(path string, mem memory.Allocator) (*DataFrame, error) {
	df, err := dfio.ReadFile(path, mem)
	if err != nil {
		return nil, err
	}
	return &DataFrame{df: df}, nil
}

// WriteFile writes d in the format of the path's extension.
func WriteFile(path string, d *DataFrame) error {
	return dfio.WriteFile(path, d.df)
}

// Columns returns the column names in order.
func (d *DataFrame) Columns() []string {
	return d.df.Columns()
}

// Len returns the number of rows.
func (d *DataFrame) Len() int {
	return d.df.Len()
}

// Width returns the number of columns.
func (d *DataFrame) Width() int {
	return d.df.Width()
}

// Column returns the named column.
func (d *DataFrame) Column(name string) (ISeries, bool) {
	return d.df.Column(name)
}

// HasColumn reports whether the named column exists.
func (d *DataFrame) HasColumn(name string) bool {
	return d.df.HasColumn(name)
}

// Select returns a new DataFrame with the named columns.
func (d *DataFrame) Select(names ...string) *DataFrame {
	return &DataFrame{df: d.df.Select(names...)}
}

// Drop returns a new DataFrame without the named columns.
func (d *DataFrame) Drop(names ...string) *DataFrame {
	return &DataFrame{df: d.df.Drop(names...)}
}

// SortBy returns a new DataFrame stably sorted by the columns. A nil
// ascending slice sorts every column ascending.
func (d *DataFrame) SortBy(columns []string, ascending []bool) (*DataFrame, error) {
	sorted, err := d.df.SortBy(columns, ascending)
	if err != nil {
		return nil, err
	}
	return &DataFrame{df: sorted}, nil
}

// Float64Column returns a numeric column converted to float64 values and
// their validity.
func (d *DataFrame) Float64Column(name string) ([]float64, []bool, error) {
	col, ok := d.df.Column(name)
	if !ok {
		return nil, nil, dferrors.NewColumnNotFoundError("Float64Column", name)
	}
	return series.Float64Values(col)
}

// String returns a printable preview of the DataFrame.
func (d *DataFrame) String() string {
	return d.df.String()
}

// Release releases the DataFrame's memory.
func (d *DataFrame) Release() {
	if d != nil && d.df != nil {
		d.df.Release()
	}
}
