package prep

import (
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/repoprep/internal/dataframe"
	"github.com/paveg/repoprep/internal/series"
)

// timestampLayouts are tried in order by parseTimestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// parseTimestamp accepts ISO 8601 timestamps with or without a zone and plain
// dates. Values without a zone are taken as UTC.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// isNumeric reports whether a column holds integers or floats.
func isNumeric(dt arrow.DataType) bool {
	switch dt.ID() {
	case arrow.INT64, arrow.INT32, arrow.FLOAT64, arrow.FLOAT32:
		return true
	default:
		return false
	}
}

func isInteger(dt arrow.DataType) bool {
	return dt.ID() == arrow.INT64 || dt.ID() == arrow.INT32
}

// toFloat64 returns col as a float64 series with the same name and nulls.
func toFloat64(col dataframe.ISeries, mem memory.Allocator) (dataframe.ISeries, error) {
	if col.DataType().ID() == arrow.FLOAT64 {
		col.Retain()
		return col, nil
	}
	values, valid, err := series.Float64Values(col)
	if err != nil {
		return nil, err
	}
	return series.NewWithValidity(col.Name(), values, valid, mem), nil
}

// stringValues renders every cell with GetAsString.
func stringValues(col dataframe.ISeries) (values []string, valid []bool) {
	n := col.Len()
	values = make([]string, n)
	if col.NullN() > 0 {
		valid = make([]bool, n)
	}
	for i := 0; i < n; i++ {
		values[i] = col.GetAsString(i)
		if valid != nil {
			valid[i] = !col.IsNull(i)
		}
	}
	return values, valid
}

// parseFlag maps the textual forms of a boolean flag to 1, 0 or the sentinel.
func parseFlag(s string) (int64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "true":
		return 1, nil
	case "false":
		return 0, nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}
