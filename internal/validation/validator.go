// Package validation provides input validation utilities for expansion
// requests. Validators are small reusable checks (column existence, numeric
// types, non-empty lists, non-zero offsets, name collisions) combined with
// CompoundValidator.
package validation

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/mztrk/ExpendbyPeriods/internal/errors"
	"github.com/mztrk/ExpendbyPeriods/internal/series"
)

// Validator interface for input validation
type Validator interface {
	Validate() error
}

// ColumnProvider interface for types that provide column information
type ColumnProvider interface {
	HasColumn(name string) bool
	Columns() []string
	Len() int
	Width() int
}

// TypedColumnProvider additionally reports the Arrow type of a column.
type TypedColumnProvider interface {
	ColumnProvider
	ColumnType(name string) (arrow.DataType, bool)
}

// ColumnValidator validates column existence
type ColumnValidator struct {
	df      ColumnProvider
	columns []string
	op      string
}

// NewColumnValidator creates a validator for column operations
func NewColumnValidator(df ColumnProvider, op string, columns ...string) *ColumnValidator {
	return &ColumnValidator{
		df:      df,
		columns: columns,
		op:      op,
	}
}

// Validate checks if all columns exist in the DataFrame
func (v *ColumnValidator) Validate() error {
	for _, column := range v.columns {
		if !v.df.HasColumn(column) {
			return errors.NewColumnNotFoundError(v.op, column)
		}
	}
	return nil
}

// NumericValidator validates that columns hold a numeric Arrow type.
type NumericValidator struct {
	df      TypedColumnProvider
	columns []string
	op      string
}

// NewNumericValidator creates a validator for numeric value columns
func NewNumericValidator(df TypedColumnProvider, op string, columns ...string) *NumericValidator {
	return &NumericValidator{
		df:      df,
		columns: columns,
		op:      op,
	}
}

// Validate checks that every column exists and is numeric
func (v *NumericValidator) Validate() error {
	for _, column := range v.columns {
		dt, ok := v.df.ColumnType(column)
		if !ok {
			return errors.NewColumnNotFoundError(v.op, column)
		}
		if !series.IsNumeric(dt) {
			return errors.NewValidationError(v.op, column,
				fmt.Sprintf("column must be numeric, got %s", dt))
		}
	}
	return nil
}

// LengthValidator validates array length consistency
type LengthValidator struct {
	expected int
	actual   int
	op       string
	context  string
}

// NewLengthValidator creates a validator for length consistency
func NewLengthValidator(expected, actual int, op, context string) *LengthValidator {
	return &LengthValidator{
		expected: expected,
		actual:   actual,
		op:       op,
		context:  context,
	}
}

// Validate checks if lengths match
func (v *LengthValidator) Validate() error {
	if v.expected != v.actual {
		message := fmt.Sprintf("%s: expected length %d, got %d", v.context, v.expected, v.actual)
		return errors.NewValidationError(v.op, "", message)
	}
	return nil
}

// NonEmptyValidator validates that a required list argument has elements.
type NonEmptyValidator struct {
	size  int
	field string
	op    string
}

// NewNonEmptyValidator creates a validator for a required list of the given size
func NewNonEmptyValidator(size int, op, field string) *NonEmptyValidator {
	return &NonEmptyValidator{
		size:  size,
		field: field,
		op:    op,
	}
}

// Validate checks the list is not empty
func (v *NonEmptyValidator) Validate() error {
	if v.size == 0 {
		return errors.NewInvalidInputError(v.op, fmt.Sprintf("%s must not be empty", v.field))
	}
	return nil
}

// OffsetValidator rejects zero offsets, which name no window.
type OffsetValidator struct {
	offsets []int
	op      string
}

// NewOffsetValidator creates a validator for period offsets
func NewOffsetValidator(offsets []int, op string) *OffsetValidator {
	return &OffsetValidator{
		offsets: offsets,
		op:      op,
	}
}

// Validate checks that no offset is zero
func (v *OffsetValidator) Validate() error {
	for _, offset := range v.offsets {
		if offset == 0 {
			return errors.NewInvalidInputError(v.op, "offset 0 is not allowed; use a positive offset to look back or a negative one to look forward")
		}
	}
	return nil
}

// CollisionValidator rejects derived column names that already exist.
type CollisionValidator struct {
	df    ColumnProvider
	names []string
	op    string
}

// NewCollisionValidator creates a validator for names about to be added to df
func NewCollisionValidator(df ColumnProvider, op string, names ...string) *CollisionValidator {
	return &CollisionValidator{
		df:    df,
		names: names,
		op:    op,
	}
}

// Validate checks that no name exists in the DataFrame or repeats in the list
func (v *CollisionValidator) Validate() error {
	seen := make(map[string]bool, len(v.names))
	for _, name := range v.names {
		if v.df.HasColumn(name) || seen[name] {
			return errors.NewValidationError(v.op, name, "derived column name collides with an existing column")
		}
		seen[name] = true
	}
	return nil
}

// EmptyDataFrameValidator validates operations on empty DataFrames
type EmptyDataFrameValidator struct {
	df ColumnProvider
	op string
}

// NewEmptyDataFrameValidator creates a validator for empty DataFrame checks
func NewEmptyDataFrameValidator(df ColumnProvider, op string) *EmptyDataFrameValidator {
	return &EmptyDataFrameValidator{
		df: df,
		op: op,
	}
}

// Validate checks if DataFrame is empty when operation requires data
func (v *EmptyDataFrameValidator) Validate() error {
	if v.df.Width() == 0 {
		return &errors.DataFrameError{
			Op:      v.op,
			Message: "operation not supported on empty DataFrame",
		}
	}
	return nil
}

// CompoundValidator combines multiple validators
type CompoundValidator struct {
	validators []Validator
}

// NewCompoundValidator creates a validator that checks multiple conditions
func NewCompoundValidator(validators ...Validator) *CompoundValidator {
	return &CompoundValidator{
		validators: validators,
	}
}

// Validate runs all validators and returns the first error encountered
func (v *CompoundValidator) Validate() error {
	for _, validator := range v.validators {
		if err := validator.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Missing returns the elements of subset that are absent from set, in
// subset order.
func Missing[T comparable](subset, set []T) []T {
	present := make(map[T]bool, len(set))
	for _, v := range set {
		present[v] = true
	}
	var missing []T
	for _, v := range subset {
		if !present[v] {
			missing = append(missing, v)
		}
	}
	return missing
}

// Convenience validation functions

// ValidateColumns is a convenience function for column validation
func ValidateColumns(df ColumnProvider, op string, columns ...string) error {
	return NewColumnValidator(df, op, columns...).Validate()
}

// ValidateNumeric is a convenience function for numeric column validation
func ValidateNumeric(df TypedColumnProvider, op string, columns ...string) error {
	return NewNumericValidator(df, op, columns...).Validate()
}

// ValidateLength is a convenience function for length validation
func ValidateLength(expected, actual int, op, context string) error {
	return NewLengthValidator(expected, actual, op, context).Validate()
}

// ValidateNotEmpty is a convenience function for empty DataFrame validation
func ValidateNotEmpty(df ColumnProvider, op string) error {
	return NewEmptyDataFrameValidator(df, op).Validate()
}
