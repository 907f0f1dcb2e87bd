package io_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/mztrk/ExpendbyPeriods/internal/dataframe"
	"github.com/mztrk/ExpendbyPeriods/internal/io"
	"github.com/mztrk/ExpendbyPeriods/internal/series"
	"github.com/mztrk/ExpendbyPeriods/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func columnType(t *testing.T, df *dataframe.DataFrame, name string) arrow.Type {
	t.Helper()
	dt, ok := df.ColumnType(name)
	require.True(t, ok, "column %s should exist", name)
	return dt.ID()
}

func TestCSVReader(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("infers types and reads empty cells as nulls", func(t *testing.T) {
		csvData := `client,period,sales,active
Client1,1,10.5,true
Client1,2,,false
Client2,1,NA,
,2,4,TRUE`

		df, err := io.NewCSVReader(strings.NewReader(csvData), io.DefaultCSVOptions(), mem).Read()
		require.NoError(t, err)
		defer df.Release()

		assert.Equal(t, 4, df.Len())
		assert.Equal(t, []string{"client", "period", "sales", "active"}, df.Columns())
		assert.Equal(t, arrow.STRING, columnType(t, df, "client"))
		assert.Equal(t, arrow.INT64, columnType(t, df, "period"))
		assert.Equal(t, arrow.FLOAT64, columnType(t, df, "sales"))
		assert.Equal(t, arrow.BOOL, columnType(t, df, "active"))

		testutil.AssertFloatColumn(t, df, "sales", 10.5, nil, nil, 4)
		testutil.AssertFloatColumn(t, df, "period", 1, 2, 1, 2)

		client, _ := df.Column("client")
		assert.True(t, client.IsNull(3))
		active, _ := df.Column("active")
		assert.True(t, active.IsNull(2))
		assert.Equal(t, "true", active.GetAsString(3))
	})

	t.Run("reads CSV without headers", func(t *testing.T) {
		opts := io.DefaultCSVOptions()
		opts.Header = false

		df, err := io.NewCSVReader(strings.NewReader("a,1\nb,2\n"), opts, mem).Read()
		require.NoError(t, err)
		defer df.Release()

		assert.Equal(t, []string{"column_0", "column_1"}, df.Columns())
		testutil.AssertStringColumn(t, df, "column_0", "a", "b")
	})

	t.Run("custom delimiter and short rows", func(t *testing.T) {
		opts := io.DefaultCSVOptions()
		opts.Delimiter = ';'

		df, err := io.NewCSVReader(strings.NewReader("k;v\nx;1\ny\n"), opts, mem).Read()
		require.NoError(t, err)
		defer df.Release()

		testutil.AssertFloatColumn(t, df, "v", 1, nil)
	})

	t.Run("header only", func(t *testing.T) {
		df, err := io.NewCSVReader(strings.NewReader("a,b\n"), io.DefaultCSVOptions(), mem).Read()
		require.NoError(t, err)
		defer df.Release()

		assert.Equal(t, []string{"a", "b"}, df.Columns())
		assert.Equal(t, 0, df.Len())
	})

	t.Run("empty input", func(t *testing.T) {
		df, err := io.NewCSVReader(strings.NewReader(""), io.DefaultCSVOptions(), mem).Read()
		require.NoError(t, err)
		defer df.Release()

		assert.Equal(t, 0, df.Width())
	})

	t.Run("malformed quoting", func(t *testing.T) {
		_, err := io.NewCSVReader(strings.NewReader("a\n\"x\n"), io.DefaultCSVOptions(), mem).Read()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading CSV")
	})
}

func TestCSVWriter(t *testing.T) {
	mem := memory.NewGoAllocator()

	sales, err := series.NewNullable("sales", []float64{1.5, 0, math.Inf(1)}, []bool{true, false, true}, mem)
	require.NoError(t, err)
	df := dataframe.New(
		series.New("client", []string{"a", "b", "c"}, mem),
		sales,
	)
	defer df.Release()

	var buf bytes.Buffer
	require.NoError(t, io.NewCSVWriter(&buf, io.DefaultCSVOptions()).Write(df))
	assert.Equal(t, "client,sales\na,1.5\nb,\nc,+Inf\n", buf.String())
}

func TestCSV_RoundTripKeepsNulls(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	df := testutil.CreatePanel(mem.Allocator, testutil.WithNullSales())
	defer df.Release()

	var buf bytes.Buffer
	require.NoError(t, io.NewCSVWriter(&buf, io.DefaultCSVOptions()).Write(df))

	back, err := io.NewCSVReader(&buf, io.DefaultCSVOptions(), mem.Allocator).Read()
	require.NoError(t, err)
	defer back.Release()

	assert.Equal(t, df.Columns(), back.Columns())
	testutil.AssertFloatColumn(t, back, "sales", 10, 20, nil, 40, 50, 1, 2, 3, 4, 5)
	assert.Equal(t, arrow.INT64, columnType(t, back, "units"))
}
