package expand

import (
	"github.com/mztrk/ExpendbyPeriods/internal/dataframe"
	"github.com/mztrk/ExpendbyPeriods/internal/errors"
	"github.com/mztrk/ExpendbyPeriods/internal/validation"
)

const opExpand = "Expand"

// derivedColumns is the schema added by a request, in output order: for
// each pass the expanded columns, then the ratio columns.
func derivedColumns(plan *Plan, expandCols, ratioCols []string) []string {
	var names []string
	for _, p := range plan.Passes {
		for _, col := range expandCols {
			names = append(names, p.Name(col))
		}
		if !plan.HasRatio(p) {
			continue
		}
		for _, col := range ratioCols {
			names = append(names, p.RatioName(col))
		}
	}
	return names
}

// validateRequest checks the frame against the request before any
// computation starts.
func validateRequest(df *dataframe.DataFrame, opts Options, plan *Plan) error {
	if df == nil {
		return errors.NewInvalidInputError(opExpand, "input DataFrame is nil")
	}

	if contains(opts.KeyColumns, opts.PeriodColumn) {
		return errors.NewValidationError(opExpand, opts.PeriodColumn, "period column must not also be a key column")
	}

	valueCols := union(opts.ColsToExpand, opts.ColsToRatio)

	v := validation.NewCompoundValidator(
		validation.NewEmptyDataFrameValidator(df, opExpand),
		validation.NewNonEmptyValidator(len(opts.KeyColumns), opExpand, "key columns"),
		validation.NewNonEmptyValidator(len(opts.PeriodColumn), opExpand, "period column"),
		validation.NewNonEmptyValidator(len(opts.Offsets), opExpand, "offsets"),
		validation.NewOffsetValidator(opts.Offsets, opExpand),
		validation.NewColumnValidator(df, opExpand, opts.KeyColumns...),
		validation.NewColumnValidator(df, opExpand, opts.PeriodColumn),
		validation.NewNumericValidator(df, opExpand, valueCols...),
		validation.NewCollisionValidator(df, opExpand, derivedColumns(plan, opts.ColsToExpand, opts.ColsToRatio)...),
	)
	return v.Validate()
}

// union returns the distinct elements of a followed by those of b.
func union(a, b []string) []string {
	return dedupe(append(append([]string(nil), a...), b...))
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
