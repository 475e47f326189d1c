package io

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/paveg/repoprep/internal/dataframe"
	"github.com/paveg/repoprep/internal/series"
)

const (
	// Boolean string constants
	trueStr  = "true"
	falseStr = "false"
)

type inferredType int

const (
	typeString inferredType = iota
	typeBool
	typeInt
	typeFloat
)

// Read reads CSV data and returns a DataFrame
func (r *CSVReader) Read() (*dataframe.DataFrame, error) {
	csvReader := csv.NewReader(r.reader)
	csvReader.Comma = r.options.Delimiter
	csvReader.Comment = r.options.Comment
	csvReader.TrimLeadingSpace = r.options.SkipInitialSpace
	csvReader.FieldsPerRecord = -1 // short rows are padded with nulls below

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	if len(records) == 0 {
		return dataframe.New(), nil
	}

	var headers []string
	var dataRows [][]string

	if r.options.Header {
		headers = records[0]
		dataRows = records[1:]
	} else {
		numCols := len(records[0])
		headers = make([]string, numCols)
		for i := 0; i < numCols; i++ {
			headers[i] = fmt.Sprintf("column_%d", i)
		}
		dataRows = records
	}

	nulls := make(map[string]bool, len(r.options.NullValues))
	for _, v := range r.options.NullValues {
		nulls[v] = true
	}

	// Transpose data to work with columns
	seriesList := make([]dataframe.ISeries, 0, len(headers))
	for i, header := range headers {
		values := make([]string, len(dataRows))
		valid := make([]bool, len(dataRows))
		for j, row := range dataRows {
			if i < len(row) && !nulls[row[i]] {
				values[j] = row[i]
				valid[j] = true
			}
		}

		s, err := r.createSeriesFromStrings(header, values, valid)
		if err != nil {
			for _, created := range seriesList {
				created.Release()
			}
			return nil, fmt.Errorf("creating series for column %s: %w", header, err)
		}
		seriesList = append(seriesList, s)
	}

	return dataframe.New(seriesList...), nil
}

// createSeriesFromStrings creates a series from string data, inferring the appropriate type
func (r *CSVReader) createSeriesFromStrings(name string, data []string, valid []bool) (dataframe.ISeries, error) {
	validity := compactValidity(valid)

	switch inferDataType(data, valid) {
	case typeBool:
		boolData := make([]bool, len(data))
		for i, value := range data {
			boolData[i] = valid[i] && strings.EqualFold(value, trueStr)
		}
		return newSafe(name, boolData, validity, r)
	case typeInt:
		intData := make([]int64, len(data))
		for i, value := range data {
			if valid[i] {
				intData[i], _ = strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			}
		}
		return newSafe(name, intData, validity, r)
	case typeFloat:
		floatData := make([]float64, len(data))
		for i, value := range data {
			if valid[i] {
				floatData[i], _ = strconv.ParseFloat(strings.TrimSpace(value), 64)
			}
		}
		return newSafe(name, floatData, validity, r)
	default:
		return newSafe(name, data, validity, r)
	}
}

func newSafe[T any](name string, values []T, valid []bool, r *CSVReader) (s dataframe.ISeries, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("building column: %v", rec)
		}
	}()
	return series.NewWithValidity(name, values, valid, r.mem), nil
}

// compactValidity returns nil when every value is present
func compactValidity(valid []bool) []bool {
	for _, v := range valid {
		if !v {
			return valid
		}
	}
	return nil
}

// inferDataType determines the most specific type every present value parses as
func inferDataType(data []string, valid []bool) inferredType {
	canBeInt := true
	canBeFloat := true
	canBeBool := true
	hasValue := false

	for i, value := range data {
		if !valid[i] {
			continue
		}
		hasValue = true
		trimmed := strings.TrimSpace(value)

		if canBeBool {
			lower := strings.ToLower(trimmed)
			if lower != trueStr && lower != falseStr {
				canBeBool = false
			}
		}

		if canBeInt {
			if _, err := strconv.ParseInt(trimmed, 10, 64); err != nil {
				canBeInt = false
			}
		}

		if canBeFloat {
			if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
				canBeFloat = false
			}
		}

		if !canBeBool && !canBeInt && !canBeFloat {
			break
		}
	}

	switch {
	case !hasValue:
		return typeString
	case canBeBool:
		return typeBool
	case canBeInt:
		return typeInt
	case canBeFloat:
		return typeFloat
	default:
		return typeString
	}
}

// Write writes the DataFrame to CSV format. Nulls are written as empty cells.
func (w *CSVWriter) Write(df *dataframe.DataFrame) error {
	csvWriter := csv.NewWriter(w.writer)
	csvWriter.Comma = w.options.Delimiter

	columns := df.Columns()
	if w.options.Header {
		if err := csvWriter.Write(columns); err != nil {
			return fmt.Errorf("writing headers: %w", err)
		}
	}

	cols := make([]dataframe.ISeries, len(columns))
	for j, name := range columns {
		cols[j], _ = df.Column(name)
	}

	row := make([]string, len(cols))
	for i := 0; i < df.Len(); i++ {
		for j, col := range cols {
			row[j] = col.GetAsString(i)
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
