package prep

import (
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/repoprep/internal/dataframe"
	"github.com/paveg/repoprep/internal/errors"
	"github.com/paveg/repoprep/internal/series"
)

// Date feature column names, in output order.
const (
	FeatureHour      = "hour"
	FeatureDayOfWeek = "day_of_week"
	FeatureDayOfYear = "day_of_year"
	FeatureMonth     = "month"
	FeatureQuarter   = "quarter"
	FeatureYear      = "year"
)

// DateFeatures breaks a timestamp column into calendar features in a new
// frame of the same length. Monday is day 0. String columns are parsed first;
// null timestamps give null features.
func DateFeatures(df *dataframe.DataFrame, column string, mem memory.Allocator) (*dataframe.DataFrame, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	col, ok := df.Column(column)
	if !ok {
		return nil, errors.NewColumnNotFoundError("DateFeatures", column)
	}
	ts, err := toTimestamp("DateFeatures", col, mem)
	if err != nil {
		return nil, err
	}
	defer ts.Release()

	typed, ok := ts.(*series.Series[time.Time])
	if !ok {
		return nil, errors.NewUnsupportedTypeError("DateFeatures", column, ts.DataType().String())
	}

	n := typed.Len()
	features := [6][]int64{}
	for f := range features {
		features[f] = make([]int64, n)
	}
	valid := typed.Validity()

	for i := 0; i < n; i++ {
		if valid != nil && !valid[i] {
			continue
		}
		t := typed.Value(i)
		features[0][i] = int64(t.Hour())
		features[1][i] = int64((t.Weekday() + 6) % 7)
		features[2][i] = int64(t.YearDay())
		features[3][i] = int64(t.Month())
		features[4][i] = int64((t.Month()-1)/3 + 1)
		features[5][i] = int64(t.Year())
	}

	names := []string{FeatureHour, FeatureDayOfWeek, FeatureDayOfYear, FeatureMonth, FeatureQuarter, FeatureYear}
	out := make([]dataframe.ISeries, len(names))
	for f, name := range names {
		out[f] = series.NewWithValidity(name, features[f], valid, mem)
	}
	return dataframe.New(out...), nil
}
