package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	dfio "github.com/mztrk/ExpendbyPeriods/internal/io"
	"github.com/mztrk/ExpendbyPeriods/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const panelCSV = `client,period,sales
Client1,1,10
Client1,2,20
Client1,3,30
Client2,1,1
Client2,3,3
`

const expandYAML = `request:
  key_columns: [client]
  period_column: period
  cols_to_expand: [sales]
  offsets: [1]
  methods: [shift]
  do_grid: true
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_ExpandsCSV(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "panel.csv", panelCSV)
	cfg := writeFile(t, dir, "expand.yaml", expandYAML)
	output := filepath.Join(dir, "out.parquet")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", cfg, "-input", input, "-output", output, "-metrics"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	df, err := dfio.ReadFile(output, memory.NewGoAllocator())
	require.NoError(t, err)
	defer df.Release()

	assert.Equal(t, []string{"client", "period", "sales", "sales_p1"}, df.Columns())
	testutil.AssertStringColumn(t, df, "client", "Client1", "Client1", "Client1", "Client2", "Client2", "Client2")
	testutil.AssertFloatColumn(t, df, "sales", 10, 20, 30, 1, nil, 3)
	testutil.AssertFloatColumn(t, df, "sales_p1", nil, 10, 20, nil, 1, nil)

	assert.Contains(t, stderr.String(), "operations=6 ")
	assert.Regexp(t, `grid\s+count=1`, stderr.String())
	assert.Regexp(t, `write\s+count=1`, stderr.String())
}

func TestRun_EnvironmentOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "panel.csv", panelCSV)
	cfg := writeFile(t, dir, "expand.yaml", expandYAML)
	output := filepath.Join(dir, "out.csv")

	t.Setenv("EXPAND_METHODS", "sum")
	t.Setenv("EXPAND_DO_GRID", "false")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", cfg, "-input", input, "-output", output}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	header := strings.SplitN(string(data), "\n", 2)[0]
	assert.Equal(t, "client,period,sales,salessumPrev1", header)
}

func TestRun_Delimiter(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "panel.csv", strings.ReplaceAll(panelCSV, ",", ";"))
	cfg := writeFile(t, dir, "expand.yaml", expandYAML)
	output := filepath.Join(dir, "out.csv")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", cfg, "-input", input, "-output", output, "-delimiter", ";"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "client;period;sales;sales_p1", lines[0])
	assert.Equal(t, "Client2;2;;1", lines[5])
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-version"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "expand-periods")
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "panel.csv", panelCSV)

	tests := []struct {
		name string
		args []string
		code int
		msg  string
	}{
		{"missing output", []string{"-input", input}, 2, "-input and -output are required"},
		{"unknown flag", []string{"-bogus"}, 2, "flag provided but not defined"},
		{"missing config", []string{"-config", filepath.Join(dir, "absent.yaml"), "-input", input, "-output", filepath.Join(dir, "o.csv")}, 1, "loading configuration"},
		{"bad delimiter", []string{"-delimiter", ";;", "-input", input, "-output", filepath.Join(dir, "o.csv")}, 1, "CSVDelimiter must be a single character"},
		{"no request", []string{"-input", input, "-output", filepath.Join(dir, "o.csv")}, 1, "expansion failed"},
		{"unsupported output", []string{"-config", writeFile(t, dir, "c.yaml", expandYAML), "-input", input, "-output", filepath.Join(dir, "o.xlsx")}, 1, "unsupported file format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stdout, &stderr)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, stderr.String(), tt.msg)
		})
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run(context.Background(), []string{"-h"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage: expand-periods")
}
