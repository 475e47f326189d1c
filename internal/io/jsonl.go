package io

import (
	"bufio"
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/goccy/go-json"
	"github.com/paveg/repoprep/internal/dataframe"
)

// Write writes one JSON object per row. Nulls and non-finite floats become null.
func (w *JSONLinesWriter) Write(df *dataframe.DataFrame) error {
	names := df.Columns()
	keys := make([][]byte, len(names))
	arrays := make([]arrow.Array, len(names))
	for j, name := range names {
		key, err := json.Marshal(name)
		if err != nil {
			return fmt.Errorf("encoding column name %s: %w", name, err)
		}
		keys[j] = key

		col, _ := df.Column(name)
		arrays[j] = col.Array()
	}
	defer func() {
		for _, arr := range arrays {
			arr.Release()
		}
	}()

	cols := make([]dataframe.ISeries, len(names))
	for j, name := range names {
		cols[j], _ = df.Column(name)
	}

	buf := bufio.NewWriter(w.writer)
	for i := 0; i < df.Len(); i++ {
		buf.WriteByte('{')
		for j := range names {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.Write(keys[j])
			buf.WriteByte(':')

			value, err := jsonValue(arrays[j], cols[j], i)
			if err != nil {
				return fmt.Errorf("encoding row %d column %s: %w", i, names[j], err)
			}
			buf.Write(value)
		}
		buf.WriteString("}\n")
	}

	if err := buf.Flush(); err != nil {
		return fmt.Errorf("flushing JSON lines: %w", err)
	}
	return nil
}

func jsonValue(arr arrow.Array, col dataframe.ISeries, i int) ([]byte, error) {
	if arr.IsNull(i) {
		return []byte("null"), nil
	}

	switch typed := arr.(type) {
	case *array.Int64:
		return json.Marshal(typed.Value(i))
	case *array.Int32:
		return json.Marshal(typed.Value(i))
	case *array.Float64:
		return finiteFloat(typed.Value(i))
	case *array.Float32:
		return finiteFloat(float64(typed.Value(i)))
	case *array.Boolean:
		return json.Marshal(typed.Value(i))
	default:
		// strings and timestamps use their canonical text form
		return json.Marshal(col.GetAsString(i))
	}
}

func finiteFloat(v float64) ([]byte, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}
