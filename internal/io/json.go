package io

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/mztrk/ExpendbyPeriods/internal/dataframe"
)

// jsonColumn accumulates the text cells of one column while rows stream in.
type jsonColumn struct {
	cells   []string
	present []bool
}

// Read reads JSON data and returns a DataFrame. Values go through the same
// type inference as CSV cells; null and absent keys are missing.
func (r *JSONReader) Read() (*dataframe.DataFrame, error) {
	dec := json.NewDecoder(r.reader)
	dec.UseNumber()

	if r.options.Format == JSONArray {
		if err := expectDelim(dec, '['); err != nil {
			if errors.Is(err, io.EOF) {
				return dataframe.New(), nil
			}
			return nil, fmt.Errorf("reading JSON array: %w", err)
		}
	}

	var order []string
	columns := make(map[string]*jsonColumn)
	rows := 0

	for dec.More() {
		keys, values, err := readObject(dec)
		if err != nil {
			return nil, fmt.Errorf("reading JSON row %d: %w", rows+1, err)
		}

		for _, key := range keys {
			if _, ok := columns[key]; !ok {
				// Rows before this one lack the key.
				columns[key] = &jsonColumn{cells: make([]string, rows), present: make([]bool, rows)}
				order = append(order, key)
			}
		}
		for _, name := range order {
			col := columns[name]
			cell, present, err := jsonCell(values[name])
			if err != nil {
				return nil, fmt.Errorf("reading JSON row %d column %s: %w", rows+1, name, err)
			}
			col.cells = append(col.cells, cell)
			col.present = append(col.present, present)
		}
		rows++
	}

	if r.options.Format == JSONArray {
		if err := expectDelim(dec, ']'); err != nil {
			return nil, fmt.Errorf("reading JSON array: %w", err)
		}
	}

	seriesList := make([]dataframe.ISeries, 0, len(order))
	for _, name := range order {
		col := columns[name]
		s, err := buildColumn(name, col.cells, col.present, r.mem)
		if err != nil {
			releaseAll(seriesList)
			return nil, fmt.Errorf("creating series for column %s: %w", name, err)
		}
		seriesList = append(seriesList, s)
	}
	return dataframe.New(seriesList...), nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// readObject decodes one object, keeping its key order.
func readObject(dec *json.Decoder) ([]string, map[string]any, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, nil, err
	}

	var keys []string
	values := make(map[string]any)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		if _, dup := values[key]; !dup {
			keys = append(keys, key)
		}
		values[key] = v
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, nil, err
	}
	return keys, values, nil
}

func jsonCell(v any) (string, bool, error) {
	switch val := v.(type) {
	case nil:
		return "", false, nil
	case json.Number:
		return val.String(), true, nil
	case bool:
		return strconv.FormatBool(val), true, nil
	case string:
		return val, true, nil
	default:
		return "", false, fmt.Errorf("nested value %T is not supported", v)
	}
}

// Write writes the DataFrame as row objects in column order. Nulls are
// written as null; non-finite floats as the strings "NaN", "+Inf" and "-Inf".
func (w *JSONWriter) Write(df *dataframe.DataFrame) error {
	out := bufio.NewWriter(w.writer)

	names := df.Columns()
	columns := make([]dataframe.ISeries, len(names))
	keys := make([][]byte, len(names))
	for j, name := range names {
		columns[j], _ = df.Column(name)
		key, err := json.Marshal(name)
		if err != nil {
			return fmt.Errorf("encoding column name %s: %w", name, err)
		}
		keys[j] = key
	}

	if w.options.Format == JSONArray {
		out.WriteByte('[')
	}
	for i := range df.Len() {
		if i > 0 && w.options.Format == JSONArray {
			out.WriteByte(',')
		}
		out.WriteByte('{')
		for j, column := range columns {
			if j > 0 {
				out.WriteByte(',')
			}
			out.Write(keys[j])
			out.WriteByte(':')
			if err := writeJSONValue(out, column, i); err != nil {
				return fmt.Errorf("writing row %d column %s: %w", i, names[j], err)
			}
		}
		out.WriteByte('}')
		if w.options.Format == JSONLines {
			out.WriteByte('\n')
		}
	}
	if w.options.Format == JSONArray {
		out.WriteString("]\n")
	}

	if err := out.Flush(); err != nil {
		return fmt.Errorf("flushing JSON: %w", err)
	}
	return nil
}

func writeJSONValue(out *bufio.Writer, column dataframe.ISeries, i int) error {
	if column.IsNull(i) {
		_, err := out.WriteString("null")
		return err
	}

	text := column.GetAsString(i)
	switch column.DataType().ID() {
	case arrow.INT64, arrow.INT32, arrow.BOOL:
		_, err := out.WriteString(text)
		return err
	case arrow.FLOAT64, arrow.FLOAT32:
		f, err := strconv.ParseFloat(text, 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			_, err = out.WriteString(text)
			return err
		}
	}

	quoted, err := json.Marshal(text)
	if err != nil {
		return err
	}
	_, err = out.Write(quoted)
	return err
}
