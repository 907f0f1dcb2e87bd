package io_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/mztrk/ExpendbyPeriods/internal/io"
	"github.com/mztrk/ExpendbyPeriods/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want io.Format
	}{
		{"in.csv", io.FormatCSV},
		{"IN.CSV", io.FormatCSV},
		{"rows.json", io.FormatJSON},
		{"rows.ndjson", io.FormatJSONL},
		{"rows.jsonl", io.FormatJSONL},
		{"panel.parquet", io.FormatParquet},
		{"panel.pq", io.FormatParquet},
	}
	for _, tt := range tests {
		got, err := io.FormatFromPath(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}

	_, err := io.FormatFromPath("panel.xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported file format: ".xlsx"`)
}

func TestReadWriteFile(t *testing.T) {
	mem := memory.NewGoAllocator()
	dir := t.TempDir()

	df := testutil.CreatePanel(mem, testutil.WithNullSales())
	defer df.Release()

	for _, name := range []string{"panel.csv", "panel.json", "panel.jsonl", "panel.parquet"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, io.WriteFile(path, df))

			back, err := io.ReadFile(path, mem)
			require.NoError(t, err)
			defer back.Release()

			assert.Equal(t, df.Columns(), back.Columns())
			testutil.AssertFloatColumn(t, back, "sales", 10, 20, nil, 40, 50, 1, 2, 3, 4, 5)
		})
	}

	t.Run("csv delimiter", func(t *testing.T) {
		opts := io.DefaultFileOptions()
		opts.CSV.Delimiter = '\t'
		path := filepath.Join(dir, "panel_tab.csv")
		require.NoError(t, io.WriteFileWithOptions(path, df, opts))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "client\tperiod\tsales\tunits\n"))

		back, err := io.ReadFileWithOptions(path, mem, opts)
		require.NoError(t, err)
		defer back.Release()
		testutil.AssertFloatColumn(t, back, "sales", 10, 20, nil, 40, 50, 1, 2, 3, 4, 5)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := io.ReadFile(filepath.Join(dir, "absent.csv"), mem)
		require.Error(t, err)
	})
}
