package io

import (
	"encoding/csv"
	"fmt"
	"slices"

	"github.com/mztrk/ExpendbyPeriods/internal/dataframe"
)

// Read reads CSV data and returns a DataFrame. Cells listed in NullValues
// become nulls and do not take part in type inference.
func (r *CSVReader) Read() (*dataframe.DataFrame, error) {
	csvReader := csv.NewReader(r.reader)
	if r.options.Delimiter != 0 {
		csvReader.Comma = r.options.Delimiter
	}
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	if len(records) == 0 {
		return dataframe.New(), nil
	}

	var headers []string
	dataRows := records
	if r.options.Header {
		headers = records[0]
		dataRows = records[1:]
	} else {
		headers = make([]string, len(records[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("column_%d", i)
		}
	}

	seriesList := make([]dataframe.ISeries, 0, len(headers))
	for i, header := range headers {
		cells := make([]string, len(dataRows))
		present := make([]bool, len(dataRows))
		for j, row := range dataRows {
			// Short rows leave trailing cells missing.
			if i < len(row) {
				cells[j] = row[i]
				present[j] = !slices.Contains(r.options.NullValues, row[i])
			}
		}

		s, err := buildColumn(header, cells, present, r.mem)
		if err != nil {
			releaseAll(seriesList)
			return nil, fmt.Errorf("creating series for column %s: %w", header, err)
		}
		seriesList = append(seriesList, s)
	}

	return dataframe.New(seriesList...), nil
}

// Write writes the DataFrame to CSV format. Nulls are written as empty
// cells.
func (w *CSVWriter) Write(df *dataframe.DataFrame) error {
	csvWriter := csv.NewWriter(w.writer)
	if w.options.Delimiter != 0 {
		csvWriter.Comma = w.options.Delimiter
	}

	names := df.Columns()
	columns := make([]dataframe.ISeries, len(names))
	for j, name := range names {
		columns[j], _ = df.Column(name)
	}

	if w.options.Header {
		if err := csvWriter.Write(names); err != nil {
			return fmt.Errorf("writing headers: %w", err)
		}
	}

	row := make([]string, len(columns))
	for i := range df.Len() {
		for j, column := range columns {
			row[j] = column.GetAsString(i)
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}
