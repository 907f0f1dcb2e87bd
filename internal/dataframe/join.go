package dataframe

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/mztrk/ExpendbyPeriods/internal/errors"
)

// LeftJoin joins right onto df on the named key columns, which must exist in
// both frames with identical types. Every row of df appears at least once,
// in df's order; each matching right row yields one output row, and a row
// without a match gets nulls in all of right's non-key columns. The result
// holds df's columns followed by right's non-key columns.
func (df *DataFrame) LeftJoin(right *DataFrame, keys []string) (*DataFrame, error) {
	if len(keys) == 0 {
		return nil, errors.NewInvalidInputError("LeftJoin", "at least one join key is required")
	}

	leftKeys, err := df.Arrays("LeftJoin", keys...)
	if err != nil {
		return nil, err
	}
	defer ReleaseArrays(leftKeys)

	for c, key := range keys {
		rs, ok := right.Column(key)
		if !ok {
			return nil, errors.NewColumnNotFoundError("LeftJoin", key)
		}
		if !arrow.TypeEqual(leftKeys[c].DataType(), rs.DataType()) {
			return nil, errors.NewValidationError("LeftJoin", key,
				fmt.Sprintf("key type mismatch: %s vs %s", leftKeys[c].DataType(), rs.DataType()))
		}
	}

	index, err := NewKeyIndex(right, keys)
	if err != nil {
		return nil, err
	}
	defer index.Release()

	leftRows := make([]int, 0, df.Len())
	rightRows := make([]int, 0, df.Len())
	for row := 0; row < df.Len(); row++ {
		matches := index.Lookup(leftKeys, row)
		if len(matches) == 0 {
			leftRows = append(leftRows, row)
			rightRows = append(rightRows, -1)
			continue
		}
		for _, m := range matches {
			leftRows = append(leftRows, row)
			rightRows = append(rightRows, m)
		}
	}

	mem := memory.NewGoAllocator()

	leftPart, err := df.Take(leftRows, mem)
	if err != nil {
		return nil, err
	}
	defer leftPart.Release()

	rightValues := right.Drop(keys...)
	defer rightValues.Release()

	rightPart, err := rightValues.Take(rightRows, mem)
	if err != nil {
		return nil, err
	}
	defer rightPart.Release()

	added := make([]ISeries, 0, rightPart.Width())
	for _, name := range rightPart.Columns() {
		if leftPart.HasColumn(name) {
			for _, s := range added {
				s.Release()
			}
			return nil, errors.NewValidationError("LeftJoin", name, "column exists on both sides of the join")
		}
		s, _ := rightPart.Column(name)
		added = append(added, share(s))
	}

	return leftPart.WithColumns(added...)
}
