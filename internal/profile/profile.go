// Package profile summarises a prepared frame without plotting: sample and
// feature counts, a per-feature kind/uniques/missing/outlier table, value
// counts and a correlation matrix over the numeric features.
package profile

import (
	"context"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/cespare/xxhash/v2"
	"github.com/paveg/repoprep/internal/dataframe"
	"github.com/paveg/repoprep/internal/errors"
	"github.com/paveg/repoprep/internal/langs"
	"github.com/paveg/repoprep/internal/parallel"
	"github.com/paveg/repoprep/internal/series"
	"github.com/paveg/repoprep/internal/stats"
)

// Kind classifies a feature.
type Kind string

// Feature kinds.
const (
	Categorical Kind = "Categorical"
	Numerical   Kind = "Numerical"
	Date        Kind = "Date"
	Binary      Kind = "Binary"
	Constant    Kind = "Constant"
	Useless     Kind = "Useless"
	Composite   Kind = "Composite"
)

// OutlierFactor is the IQR multiplier used for the outlier ratio.
const OutlierFactor = 3.0

// compositeColumns hold joined lists rather than single values.
var compositeColumns = map[string]bool{
	"languagesUsed":  true,
	"languagesSizes": true,
}

// Info holds the frame's basic counts.
type Info struct {
	Samples  int
	Features int
}

// BasicInfo returns the number of rows and columns.
func BasicInfo(df *dataframe.DataFrame) Info {
	return Info{Samples: df.Len(), Features: df.Width()}
}

// Feature describes one column.
type Feature struct {
	Name         string
	Kind         Kind
	Uniques      int
	MissingRatio float64 // share of null, -1 or "-1" cells
	OutlierRatio float64 // share of cells above Q3 + 3*IQR; 0 for non-numeric columns
}

// Features profiles every column on pool, in column order. A nil pool runs
// one sized to the CPU count.
func Features(ctx context.Context, df *dataframe.DataFrame, pool *parallel.WorkerPool) ([]Feature, error) {
	if pool == nil {
		pool = parallel.NewWorkerPool(0)
		defer pool.Close()
	}

	return parallel.ProcessIndexedErr(ctx, pool, df.Columns(),
		func(_ context.Context, _ int, name string) (Feature, error) {
			col, _ := df.Column(name)
			return describe(col)
		})
}

func describe(col dataframe.ISeries) (Feature, error) {
	n := col.Len()
	dt := col.DataType()
	numeric := isNumeric(dt)

	seen := make(map[uint64]struct{})
	missing := 0
	for i := 0; i < n; i++ {
		if col.IsNull(i) {
			missing++
			continue
		}
		v := col.GetAsString(i)
		if v == "-1" && dt.ID() != arrow.TIMESTAMP {
			missing++
		}
		seen[xxhash.Sum64String(v)] = struct{}{}
	}

	f := Feature{
		Name:    col.Name(),
		Uniques: len(seen),
	}
	if n > 0 {
		f.MissingRatio = float64(missing) / float64(n)
	}

	if numeric && n > 0 {
		values, valid, err := series.Float64Values(col)
		if err != nil {
			return Feature{}, errors.NewInternalError("Features", err)
		}
		present := presentValues(values, valid)
		if len(present) > 0 {
			_, q3, iqr := stats.IQR(present)
			bound := stats.OutlierBound(q3, iqr, OutlierFactor)
			outliers := 0
			for _, v := range present {
				if v > bound {
					outliers++
				}
			}
			f.OutlierRatio = float64(outliers) / float64(n)
		}
	}

	f.Kind = classify(col.Name(), dt, f.Uniques)
	return f, nil
}

// classify applies the kind rules in order; later rules win.
func classify(name string, dt arrow.DataType, uniques int) Kind {
	kind := Numerical
	if dt.ID() == arrow.STRING {
		kind = Categorical
	}
	if dt.ID() == arrow.TIMESTAMP {
		kind = Date
	}
	switch uniques {
	case 2:
		kind = Binary
	case 1:
		kind = Constant
	case 0:
		kind = Useless
	}
	if compositeColumns[name] {
		kind = Composite
	}
	return kind
}

// ValueCount is one distinct value and its number of occurrences.
type ValueCount struct {
	Value string
	Count int
}

// ValueCounts counts the distinct non-null values of column, most frequent
// first and ties in value order. Each item of a composite column such as
// languagesUsed is counted on its own.
func ValueCounts(df *dataframe.DataFrame, column string) ([]ValueCount, error) {
	col, ok := df.Column(column)
	if !ok {
		return nil, errors.NewColumnNotFoundError("ValueCounts", column)
	}

	composite := compositeColumns[column]
	counts := make(map[string]int)
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}
		if !composite {
			counts[col.GetAsString(i)]++
			continue
		}
		for _, item := range langs.Split(col.GetAsString(i)) {
			counts[item]++
		}
	}

	out := make([]ValueCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, ValueCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out, nil
}

func isNumeric(dt arrow.DataType) bool {
	switch dt.ID() {
	case arrow.INT64, arrow.INT32, arrow.FLOAT64, arrow.FLOAT32:
		return true
	default:
		return false
	}
}

func presentValues(values []float64, valid []bool) []float64 {
	if valid == nil {
		return values
	}
	out := make([]float64, 0, len(values))
	for i, v := range values {
		if valid[i] {
			out = append(out, v)
		}
	}
	return out
}
