package prep

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/repoprep/internal/dataframe"
	"github.com/paveg/repoprep/internal/errors"
	"github.com/paveg/repoprep/internal/langs"
	"github.com/paveg/repoprep/internal/series"
)

// HandleLanguages replaces the languages column with languagesUsed and
// languagesSizes, both joined with ", " and appended after the other columns.
// Null cells and the missing sentinel give empty strings.
func HandleLanguages(df *dataframe.DataFrame, mem memory.Allocator) (*dataframe.DataFrame, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	col, ok := df.Column(ColLanguages)
	if !ok {
		return nil, errors.NewColumnNotFoundError("HandleLanguages", ColLanguages)
	}
	if col.DataType().ID() != arrow.STRING {
		return nil, errors.NewUnsupportedTypeError("HandleLanguages", ColLanguages, col.DataType().String())
	}

	n := col.Len()
	names := make([]string, n)
	sizes := make([]string, n)
	for i := 0; i < n; i++ {
		if col.IsNull(i) {
			continue
		}
		raw := col.GetAsString(i)
		parsed, err := langs.Parse(raw)
		if err != nil {
			return nil, errors.NewMalformedValueError("HandleLanguages", ColLanguages, i, raw, err)
		}
		names[i] = langs.Names(parsed)
		sizes[i] = langs.Sizes(parsed)
	}

	out := df.Drop(ColLanguages)
	defer out.Release()

	withNames := out.WithColumn(series.New(ColLanguagesUsed, names, mem))
	defer withNames.Release()
	return withNames.WithColumn(series.New(ColLanguagesSizes, sizes, mem)), nil
}
