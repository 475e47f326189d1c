package prep

import (
	"context"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/repoprep/internal/dataframe"
	"github.com/paveg/repoprep/internal/errors"
	"github.com/paveg/repoprep/internal/parallel"
	"github.com/paveg/repoprep/internal/series"
	"github.com/paveg/repoprep/internal/stats"
)

// ImputeOutliers replaces values strictly above Q3 + factor*IQR with the
// column median, for every integer and float column. Integer columns stay
// integer when the median is integral and become float64 otherwise. Columns
// are processed on pool; a nil pool runs one sized to the CPU count.
func ImputeOutliers(
	ctx context.Context,
	df *dataframe.DataFrame,
	factor float64,
	pool *parallel.WorkerPool,
	mem memory.Allocator,
) (*dataframe.DataFrame, error) {
	if factor <= 0 {
		return nil, errors.NewInvalidInputError("ImputeOutliers", "factor must be positive")
	}
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	if pool == nil {
		pool = parallel.NewWorkerPool(0)
		defer pool.Close()
	}

	names := df.Columns()
	imputed, err := parallel.ProcessIndexedErr(ctx, pool, names,
		func(_ context.Context, _ int, name string) (dataframe.ISeries, error) {
			col, _ := df.Column(name)
			return imputeColumn(col, factor, mem)
		})
	if err != nil {
		return nil, err
	}
	return dataframe.New(imputed...), nil
}

func imputeColumn(col dataframe.ISeries, factor float64, mem memory.Allocator) (dataframe.ISeries, error) {
	dt := col.DataType()
	if !isNumeric(dt) {
		col.Retain()
		return col, nil
	}

	values, valid, err := series.Float64Values(col)
	if err != nil {
		return nil, errors.NewInternalError("ImputeOutliers", err)
	}

	present := values
	if valid != nil {
		present = make([]float64, 0, len(values))
		for i, v := range values {
			if valid[i] {
				present = append(present, v)
			}
		}
	}
	if len(present) == 0 {
		col.Retain()
		return col, nil
	}

	q1, median, q3 := stats.Quartiles(present)
	bound := stats.OutlierBound(q3, q3-q1, factor)

	replaced := false
	for i, v := range values {
		if (valid == nil || valid[i]) && v > bound {
			values[i] = median
			replaced = true
		}
	}
	if !replaced {
		col.Retain()
		return col, nil
	}

	name := col.Name()
	switch {
	case isInteger(dt) && median == math.Trunc(median):
		if dt.ID() == arrow.INT32 {
			return series.NewWithValidity(name, convert[int32](values), valid, mem), nil
		}
		return series.NewWithValidity(name, convert[int64](values), valid, mem), nil
	case dt.ID() == arrow.FLOAT32:
		return series.NewWithValidity(name, convert[float32](values), valid, mem), nil
	default:
		return series.NewWithValidity(name, values, valid, mem), nil
	}
}

func convert[T int64 | int32 | float32](values []float64) []T {
	out := make([]T, len(values))
	for i, v := range values {
		out[i] = T(v)
	}
	return out
}
