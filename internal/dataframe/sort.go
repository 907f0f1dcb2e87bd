package dataframe

import (
	"fmt"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/mztrk/ExpendbyPeriods/internal/errors"
	"golang.org/x/exp/constraints"
)

// SortBy returns a new DataFrame stably sorted by multiple columns. Nulls sort
// after every non-null value regardless of direction. A nil ascending slice
// sorts every column ascending.
func (df *DataFrame) SortBy(columns []string, ascending []bool) (*DataFrame, error) {
	if ascending == nil {
		ascending = make([]bool, len(columns))
		for i := range ascending {
			ascending[i] = true
		}
	}
	if len(ascending) != len(columns) {
		return nil, errors.NewValidationError("SortBy", "",
			fmt.Sprintf("expected %d sort directions, got %d", len(columns), len(ascending)))
	}

	perm, err := df.SortIndices(columns, ascending)
	if err != nil {
		return nil, err
	}
	return df.Take(perm, memory.NewGoAllocator())
}

// SortIndices returns the stable row permutation that orders df by columns.
func (df *DataFrame) SortIndices(columns []string, ascending []bool) ([]int, error) {
	arrays, err := df.Arrays("SortBy", columns...)
	if err != nil {
		return nil, err
	}
	defer ReleaseArrays(arrays)

	comparators := make([]func(i, j int) int, len(arrays))
	for k, arr := range arrays {
		cmp, err := compareFunc(arr)
		if err != nil {
			return nil, errors.NewValidationError("SortBy", columns[k], err.Error())
		}
		comparators[k] = cmp
	}

	perm := make([]int, df.Len())
	for i := range perm {
		perm[i] = i
	}

	sort.SliceStable(perm, func(a, b int) bool {
		i, j := perm[a], perm[b]
		for k, arr := range arrays {
			iNull, jNull := arr.IsNull(i), arr.IsNull(j)
			switch {
			case iNull && jNull:
				continue
			case iNull:
				return false
			case jNull:
				return true
			}
			c := comparators[k](i, j)
			if c == 0 {
				continue
			}
			if ascending[k] {
				return c < 0
			}
			return c > 0
		}
		return false
	})

	return perm, nil
}

// compareFunc returns a three-way comparator over two rows of arr. Nulls are
// handled by the caller.
func compareFunc(arr arrow.Array) (func(i, j int) int, error) {
	switch typed := arr.(type) {
	case *array.String:
		return func(i, j int) int { return compareOrdered(typed.Value(i), typed.Value(j)) }, nil
	case *array.Int64:
		return func(i, j int) int { return compareOrdered(typed.Value(i), typed.Value(j)) }, nil
	case *array.Int32:
		return func(i, j int) int { return compareOrdered(typed.Value(i), typed.Value(j)) }, nil
	case *array.Float64:
		return func(i, j int) int { return compareOrdered(typed.Value(i), typed.Value(j)) }, nil
	case *array.Float32:
		return func(i, j int) int { return compareOrdered(typed.Value(i), typed.Value(j)) }, nil
	case *array.Boolean:
		return func(i, j int) int { return compareBool(typed.Value(i), typed.Value(j)) }, nil
	default:
		return nil, fmt.Errorf("unsupported sort type: %s", arr.DataType())
	}
}

// compareOrdered returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
func compareOrdered[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
