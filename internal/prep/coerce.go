package prep

import (
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/repoprep/internal/dataframe"
	"github.com/paveg/repoprep/internal/errors"
	"github.com/paveg/repoprep/internal/series"
)

// CoerceTypes fixes the column types the CSV inference cannot know about:
// codeOfConduct becomes a string, createdAt a timestamp and the repository
// flags int64 with the missing sentinel kept as -1. Absent columns are skipped.
func CoerceTypes(df *dataframe.DataFrame, mem memory.Allocator) (*dataframe.DataFrame, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	replacements := make(map[string]dataframe.ISeries)
	release := func() {
		for _, s := range replacements {
			s.Release()
		}
	}

	if col, ok := df.Column(ColCodeOfConduct); ok && col.DataType().ID() != arrow.STRING {
		values, valid := stringValues(col)
		replacements[ColCodeOfConduct] = series.NewWithValidity(col.Name(), values, valid, mem)
	}

	if col, ok := df.Column(ColCreatedAt); ok {
		s, err := toTimestamp("CoerceTypes", col, mem)
		if err != nil {
			release()
			return nil, err
		}
		replacements[ColCreatedAt] = s
	}

	for _, name := range flagColumns {
		col, ok := df.Column(name)
		if !ok {
			continue
		}
		s, err := toFlag(col, mem)
		if err != nil {
			release()
			return nil, err
		}
		replacements[name] = s
	}

	out := make([]dataframe.ISeries, 0, df.Width())
	for _, name := range df.Columns() {
		if s, ok := replacements[name]; ok {
			out = append(out, s)
			continue
		}
		col, _ := df.Column(name)
		col.Retain()
		out = append(out, col)
	}
	return dataframe.New(out...), nil
}

// toTimestamp converts a string column to a timestamp column. Nulls and the
// missing sentinel become null.
func toTimestamp(op string, col dataframe.ISeries, mem memory.Allocator) (dataframe.ISeries, error) {
	switch col.DataType().ID() {
	case arrow.TIMESTAMP:
		col.Retain()
		return col, nil
	case arrow.STRING:
	default:
		return nil, errors.NewUnsupportedTypeError(op, col.Name(), col.DataType().String())
	}

	n := col.Len()
	values := make([]time.Time, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		raw := col.GetAsString(i)
		if col.IsNull(i) || raw == MissingString {
			continue
		}
		valid[i] = true
		t, err := parseTimestamp(raw)
		if err != nil {
			return nil, errors.NewMalformedValueError(op, col.Name(), i, raw, err)
		}
		values[i] = t
	}
	return series.NewWithValidity(col.Name(), values, compactValidity(valid), mem), nil
}

// toFlag converts a boolean-like column to int64.
func toFlag(col dataframe.ISeries, mem memory.Allocator) (dataframe.ISeries, error) {
	arr := col.Array()
	defer arr.Release()
	n := arr.Len()

	values := make([]int64, n)
	var valid []bool
	if arr.NullN() > 0 {
		valid = make([]bool, n)
		for i := range valid {
			valid[i] = arr.IsValid(i)
		}
	}

	switch typed := arr.(type) {
	case *array.Int64:
		col.Retain()
		return col, nil
	case *array.Boolean:
		for i := 0; i < n; i++ {
			if typed.Value(i) {
				values[i] = 1
			}
		}
	case *array.Int32, *array.Float64, *array.Float32:
		floats, _, err := series.Float64Values(col)
		if err != nil {
			return nil, errors.NewInternalError("CoerceTypes", err)
		}
		for i, f := range floats {
			values[i] = int64(f)
		}
	case *array.String:
		for i := 0; i < n; i++ {
			if typed.IsNull(i) {
				continue
			}
			v, err := parseFlag(typed.Value(i))
			if err != nil {
				return nil, errors.NewMalformedValueError("CoerceTypes", col.Name(), i, typed.Value(i), err)
			}
			values[i] = v
		}
	default:
		return nil, errors.NewUnsupportedTypeError("CoerceTypes", col.Name(), col.DataType().String())
	}
	return series.NewWithValidity(col.Name(), values, valid, mem), nil
}

func compactValidity(valid []bool) []bool {
	for _, v := range valid {
		if !v {
			return valid
		}
	}
	return nil
}
