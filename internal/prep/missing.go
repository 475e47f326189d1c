package prep

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/repoprep/internal/dataframe"
	"github.com/paveg/repoprep/internal/errors"
	"github.com/paveg/repoprep/internal/series"
)

// FillMissing replaces every null with the missing sentinel: "-1" in string
// columns and -1 everywhere else. Boolean columns that contain nulls become
// int64 (true=1, false=0). Timestamp columns have no sentinel and keep their
// nulls.
func FillMissing(df *dataframe.DataFrame, mem memory.Allocator) (*dataframe.DataFrame, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	filled := make([]dataframe.ISeries, 0, df.Width())
	for _, name := range df.Columns() {
		col, _ := df.Column(name)
		s, err := fillColumn(col, mem)
		if err != nil {
			for _, f := range filled {
				f.Release()
			}
			return nil, err
		}
		filled = append(filled, s)
	}
	return dataframe.New(filled...), nil
}

func fillColumn(col dataframe.ISeries, mem memory.Allocator) (dataframe.ISeries, error) {
	if col.NullN() == 0 || col.DataType().ID() == arrow.TIMESTAMP {
		col.Retain()
		return col, nil
	}

	arr := col.Array()
	defer arr.Release()
	n := arr.Len()

	switch typed := arr.(type) {
	case *array.String:
		values := make([]string, n)
		for i := range values {
			if typed.IsNull(i) {
				values[i] = MissingString
			} else {
				values[i] = typed.Value(i)
			}
		}
		return series.New(col.Name(), values, mem), nil
	case *array.Int64:
		values := make([]int64, n)
		for i := range values {
			values[i] = fillOr(typed.IsNull(i), typed.Value(i), MissingNumber)
		}
		return series.New(col.Name(), values, mem), nil
	case *array.Int32:
		values := make([]int32, n)
		for i := range values {
			values[i] = fillOr(typed.IsNull(i), typed.Value(i), MissingNumber)
		}
		return series.New(col.Name(), values, mem), nil
	case *array.Float64:
		values := make([]float64, n)
		for i := range values {
			values[i] = fillOr(typed.IsNull(i), typed.Value(i), MissingNumber)
		}
		return series.New(col.Name(), values, mem), nil
	case *array.Float32:
		values := make([]float32, n)
		for i := range values {
			values[i] = fillOr(typed.IsNull(i), typed.Value(i), MissingNumber)
		}
		return series.New(col.Name(), values, mem), nil
	case *array.Boolean:
		values := make([]int64, n)
		for i := range values {
			switch {
			case typed.IsNull(i):
				values[i] = MissingNumber
			case typed.Value(i):
				values[i] = 1
			}
		}
		return series.New(col.Name(), values, mem), nil
	default:
		return nil, errors.NewUnsupportedTypeError("FillMissing", col.Name(), col.DataType().String())
	}
}

func fillOr[T int64 | int32 | float64 | float32](null bool, value, sentinel T) T {
	if null {
		return sentinel
	}
	return value
}
