// Package testutil provides panel fixtures and column assertions shared by
// the package tests.
//
// The default panel has two entities observed over five periods:
//
//	client   period  sales  units
//	Client1  1..5    10..50 1..5
//	Client2  1..5    1..5   10..50
//
// Options remove rows, add nulls or a second key column, or shuffle rows.
package testutil

import (
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/mztrk/ExpendbyPeriods/internal/dataframe"
	"github.com/mztrk/ExpendbyPeriods/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMemoryContext provides a checked allocator that fails the test when
// memory is still allocated at Release.
type TestMemoryContext struct {
	Allocator memory.Allocator
	cleanup   func()
}

// Release performs cleanup of the memory context.
func (tmc *TestMemoryContext) Release() {
	if tmc.cleanup != nil {
		tmc.cleanup()
	}
}

// SetupMemoryTest creates a leak-checking allocator.
//
// Example usage:
//
//	mem := testutil.SetupMemoryTest(t)
//	defer mem.Release()
func SetupMemoryTest(tb testing.TB) *TestMemoryContext {
	tb.Helper()
	checked := memory.NewCheckedAllocator(memory.NewGoAllocator())

	return &TestMemoryContext{
		Allocator: checked,
		cleanup: func() {
			checked.AssertSize(tb, 0)
		},
	}
}

// PanelOption configures panel creation.
type PanelOption func(*panelConfig)

type panelConfig struct {
	dropClient2Period4 bool
	nullClient1Period3 bool
	withRegion         bool
	reversed           bool
}

// WithGap drops Client2's period 4 row.
func WithGap() PanelOption {
	return func(cfg *panelConfig) {
		cfg.dropClient2Period4 = true
	}
}

// WithNullSales makes Client1's period 3 sales value missing.
func WithNullSales() PanelOption {
	return func(cfg *panelConfig) {
		cfg.nullClient1Period3 = true
	}
}

// WithRegion adds a second key column "region" holding "north" for every row.
func WithRegion() PanelOption {
	return func(cfg *panelConfig) {
		cfg.withRegion = true
	}
}

// Reversed emits the rows in reverse order.
func Reversed() PanelOption {
	return func(cfg *panelConfig) {
		cfg.reversed = true
	}
}

// CreatePanel builds the default panel, see the package documentation.
func CreatePanel(allocator memory.Allocator, opts ...PanelOption) *dataframe.DataFrame {
	cfg := &panelConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var (
		clients    []string
		periods    []int64
		sales      []float64
		salesValid []bool
		units      []int64
	)
	for c, client := range []string{"Client1", "Client2"} {
		for p := int64(1); p <= 5; p++ {
			if c == 1 && p == 4 && cfg.dropClient2Period4 {
				continue
			}
			clients = append(clients, client)
			periods = append(periods, p)
			if c == 0 {
				sales = append(sales, float64(p*10))
				units = append(units, p)
			} else {
				sales = append(sales, float64(p))
				units = append(units, p*10)
			}
			salesValid = append(salesValid, !(c == 0 && p == 3 && cfg.nullClient1Period3))
		}
	}

	if cfg.reversed {
		reverse(clients)
		reverse(periods)
		reverse(sales)
		reverse(salesValid)
		reverse(units)
	}

	salesSeries, err := series.NewNullable("sales", sales, salesValid, allocator)
	if err != nil {
		panic(err)
	}

	columns := []dataframe.ISeries{
		series.New("client", clients, allocator),
		series.New("period", periods, allocator),
		salesSeries,
		series.New("units", units, allocator),
	}
	if cfg.withRegion {
		region := make([]string, len(clients))
		for i := range region {
			region[i] = "north"
		}
		columns = append([]dataframe.ISeries{series.New("region", region, allocator)}, columns...)
	}

	return dataframe.New(columns...)
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// FloatColumn extracts a numeric column as float64 values and validity.
func FloatColumn(t *testing.T, df *dataframe.DataFrame, name string) ([]float64, []bool) {
	t.Helper()
	col, ok := df.Column(name)
	require.True(t, ok, "column %s should exist", name)
	values, valid, err := series.Float64Values(col)
	require.NoError(t, err)
	return values, valid
}

// AssertFloatColumn checks a numeric column row by row. Each expectation is
// nil for a missing value or a number; NaN and infinities compare by kind.
func AssertFloatColumn(t *testing.T, df *dataframe.DataFrame, name string, want ...any) {
	t.Helper()
	values, valid := FloatColumn(t, df, name)
	require.Len(t, values, len(want), "column %s length", name)

	for i, w := range want {
		if w == nil {
			assert.False(t, valid[i], "%s[%d] should be missing, got %v", name, i, values[i])
			continue
		}
		if !assert.True(t, valid[i], "%s[%d] should be present", name, i) {
			continue
		}

		var expected float64
		switch v := w.(type) {
		case float64:
			expected = v
		case int:
			expected = float64(v)
		default:
			t.Fatalf("unsupported expectation type %T", w)
		}

		switch {
		case math.IsNaN(expected):
			assert.True(t, math.IsNaN(values[i]), "%s[%d] should be NaN, got %v", name, i, values[i])
		case math.IsInf(expected, 0):
			assert.Equal(t, expected, values[i], "%s[%d]", name, i)
		default:
			assert.InDelta(t, expected, values[i], 1e-9, "%s[%d]", name, i)
		}
	}
}

// AssertStringColumn checks a column's values rendered as strings; nulls
// render as "".
func AssertStringColumn(t *testing.T, df *dataframe.DataFrame, name string, want ...string) {
	t.Helper()
	col, ok := df.Column(name)
	require.True(t, ok, "column %s should exist", name)
	require.Equal(t, len(want), col.Len(), "column %s length", name)

	got := make([]string, col.Len())
	for i := range got {
		got[i] = col.GetAsString(i)
	}
	assert.Equal(t, want, got, "column %s", name)
}

// AssertDataFrameHasColumns asserts the DataFrame's columns, in order.
func AssertDataFrameHasColumns(t *testing.T, df *dataframe.DataFrame, expectedColumns []string) {
	t.Helper()
	assert.Equal(t, expectedColumns, df.Columns())
}
