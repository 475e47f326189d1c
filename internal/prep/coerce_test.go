package prep_test

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/paveg/repoprep/internal/dataframe"
	"github.com/paveg/repoprep/internal/errors"
	"github.com/paveg/repoprep/internal/prep"
	"github.com/paveg/repoprep/internal/series"
	"github.com/paveg/repoprep/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceTypes(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	t.Run("coerces known columns", func(t *testing.T) {
		df := dataframe.New(
			series.New("codeOfConduct", []float64{-1, 1.5}, mem.Allocator),
			series.New("createdAt", []string{"2015-03-01T12:00:00Z", "2016-07-04 08:15:00"}, mem.Allocator),
			series.New("isArchived", []bool{true, false}, mem.Allocator),
			series.New("isFork", []string{"False", "-1"}, mem.Allocator),
			series.New("forkingAllowed", []int64{1, -1}, mem.Allocator),
			series.New("stars", []int64{3, 4}, mem.Allocator),
		)
		defer df.Release()

		coerced, err := prep.CoerceTypes(df, mem.Allocator)
		require.NoError(t, err)
		defer coerced.Release()

		assert.Equal(t, df.Columns(), coerced.Columns())

		coc, _ := coerced.Column("codeOfConduct")
		assert.Equal(t, arrow.STRING, coc.DataType().ID())
		assert.Equal(t, []string{"-1", "1.5"}, testutil.ColumnStrings(coerced, "codeOfConduct"))

		created, _ := coerced.Column("createdAt")
		assert.Equal(t, arrow.TIMESTAMP, created.DataType().ID())
		typed, ok := created.(*series.Series[time.Time])
		require.True(t, ok)
		assert.Equal(t, time.Date(2016, 7, 4, 8, 15, 0, 0, time.UTC), typed.Value(1))

		for _, name := range []string{"isArchived", "isFork", "forkingAllowed"} {
			col, _ := coerced.Column(name)
			assert.Equal(t, arrow.INT64, col.DataType().ID(), name)
		}
		assert.Equal(t, []string{"1", "0"}, testutil.ColumnStrings(coerced, "isArchived"))
		assert.Equal(t, []string{"0", "-1"}, testutil.ColumnStrings(coerced, "isFork"))
		assert.Equal(t, []string{"1", "-1"}, testutil.ColumnStrings(coerced, "forkingAllowed"))
	})

	t.Run("missing createdAt sentinel becomes null", func(t *testing.T) {
		df := dataframe.New(series.New("createdAt", []string{"2020-01-01", "-1"}, mem.Allocator))
		defer df.Release()

		coerced, err := prep.CoerceTypes(df, mem.Allocator)
		require.NoError(t, err)
		defer coerced.Release()

		created, _ := coerced.Column("createdAt")
		assert.False(t, created.IsNull(0))
		assert.True(t, created.IsNull(1))
	})

	t.Run("unparseable timestamp names column and row", func(t *testing.T) {
		df := dataframe.New(series.New("createdAt", []string{"2020-01-01T00:00:00Z", "yesterday"}, mem.Allocator))
		defer df.Release()

		_, err := prep.CoerceTypes(df, mem.Allocator)
		require.Error(t, err)

		var dfErr *errors.DataFrameError
		require.True(t, stderrors.As(err, &dfErr))
		assert.Equal(t, "createdAt", dfErr.Column)
		assert.Equal(t, 2, dfErr.Row)
	})

	t.Run("unparseable flag", func(t *testing.T) {
		df := dataframe.New(series.New("isArchived", []string{"True", "maybe"}, mem.Allocator))
		defer df.Release()

		_, err := prep.CoerceTypes(df, mem.Allocator)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "isArchived")
	})

	t.Run("absent columns are skipped", func(t *testing.T) {
		df := dataframe.New(series.New("stars", []int64{1}, mem.Allocator))
		defer df.Release()

		coerced, err := prep.CoerceTypes(df, mem.Allocator)
		require.NoError(t, err)
		defer coerced.Release()

		testutil.AssertDataFrameEqual(t, df, coerced)
	})
}
