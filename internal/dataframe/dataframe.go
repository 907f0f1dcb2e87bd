// Package dataframe provides high-performance DataFrame operations
package dataframe

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/mztrk/ExpendbyPeriods/internal/errors"
	"github.com/mztrk/ExpendbyPeriods/internal/series"
	"github.com/mztrk/ExpendbyPeriods/internal/validation"
)

// DataFrame represents a table of data with typed columns.
//
// Every DataFrame owns one reference to each of its columns' Arrow arrays.
// Operations that return a new DataFrame retain what they share, so each
// result must be released independently of its source.
type DataFrame struct {
	columns map[string]ISeries
	order   []string // Maintains column order
}

// New creates a new DataFrame from a slice of ISeries. The DataFrame takes
// ownership of the series; a later series with a duplicate name replaces
// the earlier one in place.
func New(series ...ISeries) *DataFrame {
	columns := make(map[string]ISeries)
	order := make([]string, 0, len(series))

	for _, s := range series {
		name := s.Name()
		if old, exists := columns[name]; exists {
			old.Release()
		} else {
			order = append(order, name)
		}
		columns[name] = s
	}

	return &DataFrame{
		columns: columns,
		order:   order,
	}
}

// Columns returns the names of all columns in order
func (df *DataFrame) Columns() []string {
	if len(df.order) == 0 {
		return []string{}
	}
	return append([]string(nil), df.order...)
}

// Len returns the number of rows (assumes all columns have same length)
func (df *DataFrame) Len() int {
	if len(df.order) == 0 {
		return 0
	}
	return df.columns[df.order[0]].Len()
}

// Width returns the number of columns
func (df *DataFrame) Width() int {
	return len(df.columns)
}

// Column returns the series for the given column name
func (df *DataFrame) Column(name string) (ISeries, bool) {
	series, exists := df.columns[name]
	return series, exists
}

// ColumnType returns the Arrow type of the named column
func (df *DataFrame) ColumnType(name string) (arrow.DataType, bool) {
	s, exists := df.columns[name]
	if !exists {
		return nil, false
	}
	return s.DataType(), true
}

// HasColumn checks if a column exists
func (df *DataFrame) HasColumn(name string) bool {
	_, exists := df.columns[name]
	return exists
}

// Select returns a new DataFrame with only the specified columns. Unknown
// names are skipped.
func (df *DataFrame) Select(names ...string) *DataFrame {
	selected := make([]ISeries, 0, len(names))
	for _, name := range names {
		if s, exists := df.columns[name]; exists {
			selected = append(selected, share(s))
		}
	}
	return New(selected...)
}

// Drop returns a new DataFrame without the specified columns
func (df *DataFrame) Drop(names ...string) *DataFrame {
	dropSet := make(map[string]bool, len(names))
	for _, name := range names {
		dropSet[name] = true
	}

	kept := make([]ISeries, 0, len(df.order))
	for _, name := range df.order {
		if !dropSet[name] {
			kept = append(kept, share(df.columns[name]))
		}
	}
	return New(kept...)
}

// WithColumns returns a new DataFrame with the given series appended, or
// replacing existing columns of the same name. Ownership of the series moves
// to the result.
func (df *DataFrame) WithColumns(added ...ISeries) (*DataFrame, error) {
	n := df.Len()
	for _, s := range added {
		if df.Width() == 0 {
			break
		}
		if err := validation.ValidateLength(n, s.Len(), "WithColumns", "column "+s.Name()); err != nil {
			return nil, err
		}
	}

	all := make([]ISeries, 0, len(df.order)+len(added))
	for _, name := range df.order {
		all = append(all, share(df.columns[name]))
	}
	all = append(all, added...)
	return New(all...), nil
}

// Arrays returns retained Arrow arrays for the named columns in order. The
// caller releases them with ReleaseArrays.
func (df *DataFrame) Arrays(op string, names ...string) ([]arrow.Array, error) {
	arrays := make([]arrow.Array, 0, len(names))
	for _, name := range names {
		s, exists := df.columns[name]
		if !exists {
			ReleaseArrays(arrays)
			return nil, errors.NewColumnNotFoundError(op, name)
		}
		arrays = append(arrays, s.Array())
	}
	return arrays, nil
}

// ReleaseArrays releases every array in the slice.
func ReleaseArrays(arrays []arrow.Array) {
	for _, arr := range arrays {
		if arr != nil {
			arr.Release()
		}
	}
}

// String returns a string representation of the DataFrame
func (df *DataFrame) String() string {
	if len(df.columns) == 0 {
		return "DataFrame[empty]"
	}

	parts := []string{fmt.Sprintf("DataFrame[%dx%d]", df.Len(), df.Width())}

	for _, name := range df.order {
		series := df.columns[name]
		parts = append(parts, fmt.Sprintf("  %s: %s", name, series.DataType().String()))
	}

	return strings.Join(parts, "\n")
}

// Slice creates a new DataFrame containing rows from start (inclusive) to end (exclusive)
func (df *DataFrame) Slice(start, end int) (*DataFrame, error) {
	length := df.Len()
	if start < 0 || start > end || end > length {
		return nil, errors.NewValidationError("Slice", "",
			fmt.Sprintf("range [%d, %d) out of bounds [0, %d]", start, end, length))
	}

	indices := make([]int, end-start)
	for i := range indices {
		indices[i] = start + i
	}
	return df.Take(indices, memory.NewGoAllocator())
}

// Release releases all underlying Arrow memory
func (df *DataFrame) Release() {
	for _, series := range df.columns {
		series.Release()
	}
}

// share returns a new reference to the same column data.
func share(s ISeries) ISeries {
	shared, err := series.Rename(s, s.Name())
	if err != nil {
		// Every ISeries in a DataFrame is built by the series package, so
		// its array type is always one FromArray accepts.
		panic(err.Error())
	}
	return shared
}
