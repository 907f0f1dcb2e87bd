package expand

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/mztrk/ExpendbyPeriods/internal/dataframe"
	"github.com/mztrk/ExpendbyPeriods/internal/errors"
	mem "github.com/mztrk/ExpendbyPeriods/internal/memory"
	"github.com/mztrk/ExpendbyPeriods/internal/series"
)

// CompleteGrid returns df left-joined onto the cartesian product of its
// distinct entity key tuples and its distinct periods. Entities and periods
// keep the order of their first appearance, so the result is grouped by
// entity but not sorted. Rows of the product with no match in df hold nulls
// in every non-key, non-period column; duplicate (entity, period) rows in df
// are all kept. Columns keep df's order.
//
// A positive maxCells rejects grids with more rows before any allocation.
func CompleteGrid(df *dataframe.DataFrame, keys []string, period string, maxCells int64, alloc memory.Allocator) (*dataframe.DataFrame, error) {
	entities, err := dataframe.NewKeyIndex(df, keys)
	if err != nil {
		return nil, err
	}
	defer entities.Release()

	periods, err := dataframe.NewKeyIndex(df, []string{period})
	if err != nil {
		return nil, err
	}
	defer periods.Release()

	entityRows := entities.First()
	periodRows := periods.First()

	cells := int64(len(entityRows)) * int64(len(periodRows))
	if maxCells > 0 && cells > maxCells {
		return nil, errors.NewGridTooLargeError(len(entityRows), len(periodRows), maxCells)
	}

	entityIdx := make([]int, 0, cells)
	periodIdx := make([]int, 0, cells)
	for _, e := range entityRows {
		for _, p := range periodRows {
			entityIdx = append(entityIdx, e)
			periodIdx = append(periodIdx, p)
		}
	}

	grid, err := buildGrid(df, keys, period, entityIdx, periodIdx, alloc)
	if err != nil {
		return nil, err
	}

	joinKeys := make([]string, 0, len(keys)+1)
	joinKeys = append(joinKeys, keys...)
	joinKeys = append(joinKeys, period)

	joined, err := grid.LeftJoin(df, joinKeys)
	grid.Release()
	if err != nil {
		return nil, err
	}

	result := joined.Select(df.Columns()...)
	joined.Release()

	mem.ForceGC()
	return result, nil
}

func buildGrid(df *dataframe.DataFrame, keys []string, period string, entityIdx, periodIdx []int, alloc memory.Allocator) (*dataframe.DataFrame, error) {
	keyFrame := df.Select(keys...)
	defer keyFrame.Release()

	gridKeys, err := keyFrame.Take(entityIdx, alloc)
	if err != nil {
		return nil, err
	}
	defer gridKeys.Release()

	periodFrame := df.Select(period)
	defer periodFrame.Release()

	gridPeriods, err := periodFrame.Take(periodIdx, alloc)
	if err != nil {
		return nil, err
	}
	defer gridPeriods.Release()

	col, _ := gridPeriods.Column(period)
	periodCol, err := series.Rename(col, period)
	if err != nil {
		return nil, err
	}

	grid, err := gridKeys.WithColumns(periodCol)
	if err != nil {
		periodCol.Release()
		return nil, err
	}
	return grid, nil
}
