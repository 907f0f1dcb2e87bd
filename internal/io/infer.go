package io

import (
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/mztrk/ExpendbyPeriods/internal/dataframe"
	"github.com/mztrk/ExpendbyPeriods/internal/series"
)

type cellType int

const (
	cellString cellType = iota
	cellBool
	cellInt
	cellFloat
)

// inferType picks the most specific type every present cell parses as.
// A column with no present cells is a string column.
func inferType(cells []string, present []bool) cellType {
	canBeInt := true
	canBeFloat := true
	canBeBool := true
	seen := false

	for i, value := range cells {
		if !present[i] {
			continue
		}
		seen = true

		if canBeBool && !isBool(value) {
			canBeBool = false
		}
		if canBeInt {
			if _, err := strconv.ParseInt(value, 10, 64); err != nil {
				canBeInt = false
			}
		}
		if canBeFloat {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				canBeFloat = false
			}
		}
		if !canBeBool && !canBeInt && !canBeFloat {
			break
		}
	}

	switch {
	case !seen:
		return cellString
	case canBeBool:
		return cellBool
	case canBeInt:
		return cellInt
	case canBeFloat:
		return cellFloat
	default:
		return cellString
	}
}

func isBool(value string) bool {
	return strings.EqualFold(value, "true") || strings.EqualFold(value, "false")
}

// buildColumn converts text cells into a typed nullable Series.
func buildColumn(name string, cells []string, present []bool, mem memory.Allocator) (dataframe.ISeries, error) {
	switch inferType(cells, present) {
	case cellBool:
		values := make([]bool, len(cells))
		for i, c := range cells {
			values[i] = present[i] && strings.EqualFold(c, "true")
		}
		return series.NewNullable(name, values, present, mem)
	case cellInt:
		values := make([]int64, len(cells))
		for i, c := range cells {
			if present[i] {
				values[i], _ = strconv.ParseInt(c, 10, 64)
			}
		}
		return series.NewNullable(name, values, present, mem)
	case cellFloat:
		values := make([]float64, len(cells))
		for i, c := range cells {
			if present[i] {
				values[i], _ = strconv.ParseFloat(c, 64)
			}
		}
		return series.NewNullable(name, values, present, mem)
	default:
		values := make([]string, len(cells))
		for i, c := range cells {
			if present[i] {
				values[i] = c
			}
		}
		return series.NewNullable(name, values, present, mem)
	}
}

// releaseAll releases columns built before a failure.
func releaseAll(cols []dataframe.ISeries) {
	for _, c := range cols {
		c.Release()
	}
}
