package prep

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/repoprep/internal/dataframe"
	"github.com/paveg/repoprep/internal/errors"
)

// SelectKind keeps one family of features. Categorical keeps the string
// columns as they are; Numerical keeps every other column cast to float64,
// with timestamps as Unix seconds. The empty kind keeps everything.
func SelectKind(df *dataframe.DataFrame, kind Kind, mem memory.Allocator) (*dataframe.DataFrame, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	switch kind {
	case "":
		return df.Drop(), nil
	case KindCategorical:
		return df.Select(columnsWhere(df, isCategorical)...), nil
	case KindNumerical:
	default:
		return nil, errors.NewInvalidInputError("SelectKind", "unknown kind "+string(kind))
	}

	names := columnsWhere(df, func(dt arrow.DataType) bool { return !isCategorical(dt) })
	out := make([]dataframe.ISeries, 0, len(names))
	for _, name := range names {
		col, _ := df.Column(name)
		s, err := toFloat64(col, mem)
		if err != nil {
			for _, o := range out {
				o.Release()
			}
			return nil, errors.NewUnsupportedTypeError("SelectKind", name, col.DataType().String())
		}
		out = append(out, s)
	}
	return dataframe.New(out...), nil
}

func isCategorical(dt arrow.DataType) bool {
	return dt.ID() == arrow.STRING
}

func columnsWhere(df *dataframe.DataFrame, keep func(arrow.DataType) bool) []string {
	var names []string
	for _, name := range df.Columns() {
		col, _ := df.Column(name)
		if keep(col.DataType()) {
			names = append(names, name)
		}
	}
	return names
}
