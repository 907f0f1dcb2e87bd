// Package expand derives lagged and rolling-window columns over panel data:
// rows that belong to an entity (one or more key columns) observed at a
// period. For every requested (method, offset) pair each value column gets
// a derived column, optionally a ratio column value/derived, after the
// table is optionally completed to a full entity x period grid and sorted.
//
// Windows are computed over the whole sorted table and then masked where
// they would cross from one entity into the next. Sorting is therefore a
// correctness requirement: with DoSort disabled the caller guarantees that
// rows are already ordered by key columns then period, and unordered input
// silently yields wrong values.
package expand

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mztrk/ExpendbyPeriods/internal/dataframe"
	mem "github.com/mztrk/ExpendbyPeriods/internal/memory"
	"github.com/mztrk/ExpendbyPeriods/internal/parallel"
	"github.com/mztrk/ExpendbyPeriods/internal/rolling"
	"github.com/mztrk/ExpendbyPeriods/internal/series"
)

// valueColumn is a source column extracted as float64 with validity.
type valueColumn struct {
	values []float64
	valid  []bool
}

// Expand returns a new DataFrame holding df's rows, completed and sorted as
// requested, with the derived and ratio columns appended. df is not
// modified and must still be released by the caller.
func Expand(ctx context.Context, df *dataframe.DataFrame, opts Options) (*dataframe.DataFrame, error) {
	opts = opts.withDefaults()
	log := opts.Logger
	level := opts.progressLevel()

	rows := 0
	if df != nil {
		rows = df.Len()
	}

	var plan *Plan
	err := opts.Metrics.RecordOperation("validate", rows, func() error {
		var err error
		plan, err = NewPlan(opts.Methods, opts.Offsets, opts.MethodsToRatio, opts.OffsetsToRatio, opts.Suffixes)
		if err != nil {
			return err
		}
		return validateRequest(df, opts, plan)
	})
	if err != nil {
		return nil, err
	}
	for _, warning := range plan.Warnings {
		log.WarnContext(ctx, warning)
	}

	scope := mem.NewScope()
	defer scope.ReleaseAll()

	current := df

	if opts.DoGrid {
		if !opts.DoSort {
			log.WarnContext(ctx, "grid completion requires sorting; enabling sort")
			opts.DoSort = true
		}
		if err := checkContext(ctx, "grid"); err != nil {
			return nil, err
		}

		var grid *dataframe.DataFrame
		err := opts.Metrics.RecordOperation("grid", current.Len(), func() error {
			var err error
			grid, err = CompleteGrid(current, opts.KeyColumns, opts.PeriodColumn, opts.MaxGridCells, opts.Allocator)
			return err
		})
		if err != nil {
			return nil, err
		}
		current = mem.Track(scope, grid)
		log.Log(ctx, level, "grid completed",
			slog.Int("rows_before", rows),
			slog.Int("rows", current.Len()))
	}

	if opts.DoSort {
		if err := checkContext(ctx, "sort"); err != nil {
			return nil, err
		}

		sortCols := make([]string, 0, len(opts.KeyColumns)+1)
		sortCols = append(sortCols, opts.KeyColumns...)
		sortCols = append(sortCols, opts.PeriodColumn)

		var sorted *dataframe.DataFrame
		err := opts.Metrics.RecordOperation("sort", current.Len(), func() error {
			var err error
			sorted, err = current.SortBy(sortCols, nil)
			return err
		})
		if err != nil {
			return nil, err
		}
		current = mem.Track(scope, sorted)
		log.Log(ctx, level, "rows sorted", slog.Any("by", sortCols), slog.Int("rows", current.Len()))
	} else {
		log.WarnContext(ctx, "sorting disabled; rows must already be ordered by key columns then period")
	}

	ids, err := newEntityIDs(current, opts.KeyColumns)
	if err != nil {
		return nil, err
	}

	valueCols := union(opts.ColsToExpand, opts.ColsToRatio)
	sources := make(map[string]valueColumn, len(valueCols))
	for _, name := range valueCols {
		col, _ := current.Column(name)
		values, valid, err := series.Float64Values(col)
		if err != nil {
			return nil, err
		}
		sources[name] = valueColumn{values: values, valid: valid}
	}

	pool := parallel.NewWorkerPool(opts.Workers)
	derived, err := parallel.ProcessIndexed(ctx, pool, plan.Passes,
		func(ctx context.Context, _ int, pass Pass) ([]dataframe.ISeries, error) {
			if err := checkContext(ctx, pass.String()); err != nil {
				return nil, err
			}

			cols, err := expandPass(current.Len(), pass, ids, sources, valueCols, opts, plan)
			if err != nil {
				return nil, err
			}

			log.Log(ctx, level, "pass expanded",
				slog.String("method", pass.Method.String()),
				slog.Int("offset", pass.Offset),
				slog.Int("columns", len(cols)),
				slog.Int("rows", current.Len()))
			return cols, nil
		})

	added := make([]dataframe.ISeries, 0, len(plan.Passes)*len(valueCols))
	for _, cols := range derived {
		added = append(added, cols...)
	}
	releaseAdded := func() {
		for _, s := range added {
			s.Release()
		}
	}
	if err != nil {
		releaseAdded()
		return nil, err
	}

	result, err := current.WithColumns(added...)
	if err != nil {
		releaseAdded()
		return nil, err
	}

	log.Log(ctx, level, "expansion finished",
		slog.Int("rows", result.Len()),
		slog.Int("columns", result.Width()))
	return result, nil
}

// expandPass computes the derived and ratio columns of a single pass.
func expandPass(n int, pass Pass, ids entityIDs, sources map[string]valueColumn, valueCols []string, opts Options, plan *Plan) ([]dataframe.ISeries, error) {
	expanded := make(map[string]valueColumn, len(valueCols))
	withRatio := plan.HasRatio(pass)

	err := opts.Metrics.RecordOperation("expand", n, func() error {
		for _, col := range valueCols {
			if !contains(opts.ColsToExpand, col) && !(withRatio && contains(opts.ColsToRatio, col)) {
				continue
			}
			src := sources[col]
			values, valid := computePass(pass, src.values, src.valid, opts.IncludeCurrentPeriod, opts.Aggregate)
			ids.mask(values, valid, pass.BoundaryDistance(opts.IncludeCurrentPeriod), pass.direction())
			expanded[col] = valueColumn{values: values, valid: valid}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]dataframe.ISeries, 0, len(opts.ColsToExpand)+len(opts.ColsToRatio))
	release := func() {
		for _, s := range out {
			s.Release()
		}
	}

	for _, col := range opts.ColsToExpand {
		e := expanded[col]
		s, err := series.NewNullable(pass.Name(col), e.values, e.valid, opts.Allocator)
		if err != nil {
			release()
			return nil, err
		}
		out = append(out, s)
	}

	if !withRatio {
		return out, nil
	}

	err = opts.Metrics.RecordOperation("ratio", n, func() error {
		for _, col := range opts.ColsToRatio {
			src, e := sources[col], expanded[col]
			values, valid := ratio(src.values, src.valid, e.values, e.valid)
			s, err := series.NewNullable(pass.RatioName(col), values, valid, opts.Allocator)
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		return nil
	})
	if err != nil {
		release()
		return nil, err
	}
	return out, nil
}

// computePass runs the raw window computation of a pass over the whole
// sequence, ignoring entity boundaries.
func computePass(pass Pass, values []float64, valid []bool, includeCurrent bool, agg rolling.Options) ([]float64, []bool) {
	if pass.Method == Shift {
		return rolling.Shift(values, valid, pass.Offset)
	}

	dir := pass.direction()
	out, outValid := rolling.Window(values, valid, pass.Window(), dir, pass.Method.Kernel(), agg)
	if includeCurrent {
		return out, outValid
	}

	step := 1
	if dir == rolling.Forward {
		step = -1
	}
	return rolling.Shift(out, outValid, step)
}

func checkContext(ctx context.Context, phase string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("expand cancelled before %s: %w", phase, err)
	}
	return nil
}
