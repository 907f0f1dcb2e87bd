package io

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/mztrk/ExpendbyPeriods/internal/dataframe"
	"github.com/mztrk/ExpendbyPeriods/internal/series"
)

// Read reads Parquet data and returns a DataFrame.
func (r *ParquetReader) Read() (*dataframe.DataFrame, error) {
	data, err := io.ReadAll(r.reader)
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}

	pqReader, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating parquet file reader: %w", err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, r.mem)
	if err != nil {
		return nil, fmt.Errorf("creating arrow file reader: %w", err)
	}

	table, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}
	defer table.Release()

	return r.arrowTableToDataFrame(table)
}

// arrowTableToDataFrame wraps each table column in a Series. Multi-chunk
// columns are concatenated; validity bitmaps carry over unchanged.
func (r *ParquetReader) arrowTableToDataFrame(table arrow.Table) (*dataframe.DataFrame, error) {
	schema := table.Schema()
	seriesList := make([]dataframe.ISeries, 0, table.NumCols())

	for i := range int(table.NumCols()) {
		field := schema.Field(i)
		arr, err := r.columnArray(table.Column(i), field.Type)
		if err != nil {
			releaseAll(seriesList)
			return nil, fmt.Errorf("converting column %s: %w", field.Name, err)
		}

		s, err := series.FromArray(field.Name, arr)
		arr.Release()
		if err != nil {
			releaseAll(seriesList)
			return nil, fmt.Errorf("converting column %s: %w", field.Name, err)
		}
		seriesList = append(seriesList, s)
	}

	return dataframe.New(seriesList...), nil
}

// columnArray returns a single array holding the whole column. The caller
// owns the returned reference.
func (r *ParquetReader) columnArray(column *arrow.Column, dataType arrow.DataType) (arrow.Array, error) {
	chunks := column.Data().Chunks()
	switch len(chunks) {
	case 0:
		return array.MakeArrayOfNull(r.mem, dataType, 0), nil
	case 1:
		chunks[0].Retain()
		return chunks[0], nil
	default:
		return array.Concatenate(chunks, r.mem)
	}
}

// Write writes the DataFrame to Parquet format.
func (w *ParquetWriter) Write(df *dataframe.DataFrame) error {
	table, err := w.dataFrameToArrowTable(df)
	if err != nil {
		return fmt.Errorf("converting DataFrame to Arrow table: %w", err)
	}
	defer table.Release()

	batchSize := int64(w.options.BatchSize)
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compression(w.options.Compression)),
		parquet.WithBatchSize(batchSize),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(memory.NewGoAllocator()))

	writer, err := pqarrow.NewFileWriter(table.Schema(), sink{w.writer}, props, arrowProps)
	if err != nil {
		return fmt.Errorf("creating file writer: %w", err)
	}

	chunkSize := int64(df.Len())
	if chunkSize == 0 {
		chunkSize = 1
	}
	if err := writer.WriteTable(table, chunkSize); err != nil {
		_ = writer.Close()
		return fmt.Errorf("writing table: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing file writer: %w", err)
	}
	return nil
}

func compression(name string) compress.Compression {
	switch name {
	case "gzip":
		return compress.Codecs.Gzip
	case "lz4":
		return compress.Codecs.Lz4Raw
	case "zstd":
		return compress.Codecs.Zstd
	case "uncompressed":
		return compress.Codecs.Uncompressed
	default:
		return compress.Codecs.Snappy
	}
}

// dataFrameToArrowTable builds a table over the frame's own arrays, so
// validity is written as Parquet nulls.
func (w *ParquetWriter) dataFrameToArrowTable(df *dataframe.DataFrame) (arrow.Table, error) {
	names := df.Columns()
	fields := make([]arrow.Field, 0, len(names))
	columns := make([]arrow.Column, 0, len(names))

	defer func() {
		for i := range columns {
			columns[i].Release()
		}
	}()

	for _, name := range names {
		col, _ := df.Column(name)
		arr := col.Array()

		field := arrow.Field{Name: name, Type: arr.DataType(), Nullable: true}
		chunked := arrow.NewChunked(arr.DataType(), []arrow.Array{arr})
		arr.Release()

		column := arrow.NewColumn(field, chunked)
		chunked.Release()

		fields = append(fields, field)
		columns = append(columns, *column)
	}

	schema := arrow.NewSchema(fields, nil)
	return array.NewTable(schema, columns, int64(df.Len())), nil
}

// sink hides any Close method of the destination; closing the Parquet file
// writer must not close a file the caller owns.
type sink struct {
	w io.Writer
}

func (s sink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}
