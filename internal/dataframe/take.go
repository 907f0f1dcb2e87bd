package dataframe

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/mztrk/ExpendbyPeriods/internal/errors"
	"github.com/mztrk/ExpendbyPeriods/internal/series"
)

// Take returns a new DataFrame whose row k is row indices[k] of df. A
// negative index produces a row of nulls in every column.
func (df *DataFrame) Take(indices []int, mem memory.Allocator) (*DataFrame, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	n := df.Len()
	for _, idx := range indices {
		if idx >= n {
			return nil, errors.NewValidationError("Take", "", "index out of bounds")
		}
	}

	taken := make([]ISeries, 0, len(df.order))
	for _, name := range df.order {
		s, err := TakeSeries(df.columns[name], indices, mem)
		if err != nil {
			for _, done := range taken {
				done.Release()
			}
			return nil, err
		}
		taken = append(taken, s)
	}
	return New(taken...), nil
}

// TakeSeries gathers the rows of a single column; see Take.
func TakeSeries(s ISeries, indices []int, mem memory.Allocator) (ISeries, error) {
	arr := s.Array()
	defer arr.Release()

	out, err := TakeArray(arr, indices, mem)
	if err != nil {
		return nil, errors.NewValidationError("Take", s.Name(), err.Error())
	}
	defer out.Release()

	return series.FromArray(s.Name(), out)
}

// TakeArray gathers rows of an Arrow array into a new array.
func TakeArray(arr arrow.Array, indices []int, mem memory.Allocator) (arrow.Array, error) {
	switch typed := arr.(type) {
	case *array.String:
		return gather[string](typed, array.NewStringBuilder(mem), indices), nil
	case *array.Int64:
		return gather[int64](typed, array.NewInt64Builder(mem), indices), nil
	case *array.Int32:
		return gather[int32](typed, array.NewInt32Builder(mem), indices), nil
	case *array.Float64:
		return gather[float64](typed, array.NewFloat64Builder(mem), indices), nil
	case *array.Float32:
		return gather[float32](typed, array.NewFloat32Builder(mem), indices), nil
	case *array.Boolean:
		return gather[bool](typed, array.NewBooleanBuilder(mem), indices), nil
	default:
		return nil, errors.NewUnsupportedTypeError("Take", arr.DataType().String())
	}
}

type valueReader[T any] interface {
	IsNull(i int) bool
	Value(i int) T
}

type valueBuilder[T any] interface {
	Append(v T)
	AppendNull()
	Reserve(n int)
	NewArray() arrow.Array
	Release()
}

func gather[T any, R valueReader[T], B valueBuilder[T]](src R, builder B, indices []int) arrow.Array {
	defer builder.Release()
	builder.Reserve(len(indices))
	for _, idx := range indices {
		if idx < 0 || src.IsNull(idx) {
			builder.AppendNull()
			continue
		}
		builder.Append(src.Value(idx))
	}
	return builder.NewArray()
}
