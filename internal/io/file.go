package io

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/mztrk/ExpendbyPeriods/internal/dataframe"
)

// Format names a file format chosen by extension.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatJSONL   Format = "jsonl"
	FormatParquet Format = "parquet"
)

// FormatFromPath maps .csv, .json, .jsonl/.ndjson and .parquet/.pq to a
// Format.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".parquet", ".pq":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("unsupported file format: %q", filepath.Ext(path))
	}
}

// FileOptions configures ReadFileWithOptions and WriteFileWithOptions.
type FileOptions struct {
	CSV CSVOptions
}

// DefaultFileOptions returns the options used by ReadFile and WriteFile.
func DefaultFileOptions() FileOptions {
	return FileOptions{CSV: DefaultCSVOptions()}
}

// ReadFile reads a DataFrame from path using the format of its extension.
func ReadFile(path string, mem memory.Allocator) (*dataframe.DataFrame, error) {
	return ReadFileWithOptions(path, mem, DefaultFileOptions())
}

// ReadFileWithOptions is ReadFile with explicit format options.
func ReadFileWithOptions(path string, mem memory.Allocator, opts FileOptions) (*dataframe.DataFrame, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var reader DataReader
	switch format {
	case FormatCSV:
		reader = NewCSVReader(f, opts.CSV, mem)
	case FormatJSON:
		reader = NewJSONReader(f, JSONOptions{Format: JSONArray}, mem)
	case FormatJSONL:
		reader = NewJSONReader(f, JSONOptions{Format: JSONLines}, mem)
	case FormatParquet:
		reader = NewParquetReader(f, DefaultParquetOptions(), mem)
	}

	df, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return df, nil
}

// WriteFile writes df to path using the format of its extension, replacing
// any existing file.
func WriteFile(path string, df *dataframe.DataFrame) error {
	return WriteFileWithOptions(path, df, DefaultFileOptions())
}

// WriteFileWithOptions is WriteFile with explicit format options.
func WriteFileWithOptions(path string, df *dataframe.DataFrame, opts FileOptions) (err error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, closeErr)
		}
	}()

	var writer DataWriter
	switch format {
	case FormatCSV:
		writer = NewCSVWriter(f, opts.CSV)
	case FormatJSON:
		writer = NewJSONWriter(f, JSONOptions{Format: JSONArray})
	case FormatJSONL:
		writer = NewJSONWriter(f, JSONOptions{Format: JSONLines})
	case FormatParquet:
		writer = NewParquetWriter(f, DefaultParquetOptions())
	}

	if err := writer.Write(df); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
