package series

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

var nan = math.NaN()

// IsNumeric reports whether the Arrow type can be read as float64.
func IsNumeric(dt arrow.DataType) bool {
	switch dt.ID() { //nolint:exhaustive // only the column types a Series can hold
	case arrow.INT64, arrow.INT32, arrow.FLOAT64, arrow.FLOAT32:
		return true
	default:
		return false
	}
}

// Float64Values reads a numeric column as float64 values plus validity.
// Null slots hold NaN in the value slice and false in the validity slice.
func Float64Values(col Column) ([]float64, []bool, error) {
	arr := col.Array()
	defer arr.Release()

	n := arr.Len()
	values := make([]float64, n)
	valid := make([]bool, n)

	var at func(int) float64
	switch typed := arr.(type) {
	case *array.Float64:
		at = func(i int) float64 { return typed.Value(i) }
	case *array.Float32:
		at = func(i int) float64 { return float64(typed.Value(i)) }
	case *array.Int64:
		at = func(i int) float64 { return float64(typed.Value(i)) }
	case *array.Int32:
		at = func(i int) float64 { return float64(typed.Value(i)) }
	default:
		return nil, nil, fmt.Errorf("column %s: %s is not numeric", col.Name(), arr.DataType())
	}

	for i := 0; i < n; i++ {
		if arr.IsNull(i) {
			values[i] = nan
			continue
		}
		values[i] = at(i)
		valid[i] = true
	}
	return values, valid, nil
}
