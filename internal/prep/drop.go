package prep

import (
	"github.com/paveg/repoprep/internal/dataframe"
	"github.com/paveg/repoprep/internal/errors"
	"github.com/paveg/repoprep/internal/validation"
)

// DropUseless removes the identity columns (obvious) or the identity and
// constant columns (all). Every listed column must be present.
func DropUseless(df *dataframe.DataFrame, mode UselessMode) (*dataframe.DataFrame, error) {
	switch mode {
	case "":
		return df.Drop(), nil
	case UselessObvious, UselessAll:
		return dropColumns("DropUseless", df, UselessColumns(mode))
	default:
		return nil, errors.NewInvalidInputError("DropUseless", "unknown mode "+string(mode))
	}
}

// Exclude drops the named columns. Every name must be present.
func Exclude(df *dataframe.DataFrame, columns ...string) (*dataframe.DataFrame, error) {
	return dropColumns("Exclude", df, columns)
}

// ExtractTarget moves column out of the frame. The returned series holds its
// own reference.
func ExtractTarget(df *dataframe.DataFrame, column string) (*dataframe.DataFrame, dataframe.ISeries, error) {
	col, ok := df.Column(column)
	if !ok {
		return nil, nil, errors.NewColumnNotFoundError("ExtractTarget", column)
	}
	col.Retain()
	return df.Drop(column), col, nil
}

func dropColumns(op string, df *dataframe.DataFrame, columns []string) (*dataframe.DataFrame, error) {
	if err := validation.ValidateColumns(df, op, columns...); err != nil {
		return nil, err
	}
	return df.Drop(columns...), nil
}
