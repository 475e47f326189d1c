package dataframe

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/repoprep/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestDataFrame(t *testing.T) *DataFrame {
	t.Helper()
	mem := memory.NewGoAllocator()

	names := series.New("nameWithOwner", []string{"a/x", "b/y", "c/z"}, mem)
	stars := series.New("stars", []int64{10, 250, 3}, mem)
	size := series.NewWithValidity("diskUsageKb", []float64{1.5, 0, 9}, []bool{true, false, true}, mem)

	// DataFrame takes ownership of the series - no need to release them manually
	return New(names, stars, size)
}

func TestNewDataFrame(t *testing.T) {
	df := createTestDataFrame(t)
	defer df.Release()

	assert.Equal(t, 3, df.Len())
	assert.Equal(t, 3, df.Width())
	assert.Equal(t, []string{"nameWithOwner", "stars", "diskUsageKb"}, df.Columns())
	assert.True(t, df.HasColumn("stars"))
	assert.False(t, df.HasColumn("watchers"))
}

func TestEmptyDataFrame(t *testing.T) {
	df := New()
	defer df.Release()

	assert.Equal(t, 0, df.Len())
	assert.Equal(t, 0, df.Width())
	assert.Equal(t, []string{}, df.Columns())
	assert.Equal(t, "DataFrame[empty]", df.String())
}

func TestDuplicateNamesReplace(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := New(
		series.New("stars", []int64{1}, mem),
		series.New("license", []string{"MIT"}, mem),
		series.New("stars", []int64{2}, mem),
	)
	defer df.Release()

	assert.Equal(t, []string{"stars", "license"}, df.Columns())
	col, _ := df.Column("stars")
	assert.Equal(t, "2", col.GetAsString(0))
}

func TestSelectAndDrop(t *testing.T) {
	df := createTestDataFrame(t)
	defer df.Release()

	selected := df.Select("diskUsageKb", "nameWithOwner", "missing")
	defer selected.Release()
	assert.Equal(t, []string{"diskUsageKb", "nameWithOwner"}, selected.Columns())

	dropped := df.Drop("stars")
	defer dropped.Release()
	assert.Equal(t, []string{"nameWithOwner", "diskUsageKb"}, dropped.Columns())

	// the source frame is untouched
	assert.Equal(t, 3, df.Width())
}

func TestWithColumn(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := createTestDataFrame(t)
	defer df.Release()

	t.Run("replaces in place", func(t *testing.T) {
		out := df.WithColumn(series.New("stars", []float64{1, 2, 3}, mem))
		defer out.Release()

		assert.Equal(t, df.Columns(), out.Columns())
		col, _ := out.Column("stars")
		assert.Equal(t, "float64", col.DataType().Name())
	})

	t.Run("appends new column", func(t *testing.T) {
		out := df.WithColumn(series.New("watchers", []int64{0, 0, 0}, mem))
		defer out.Release()

		assert.Equal(t, []string{"nameWithOwner", "stars", "diskUsageKb", "watchers"}, out.Columns())
	})
}

func TestSlice(t *testing.T) {
	df := createTestDataFrame(t)
	defer df.Release()

	sliced := df.Slice(1, 10)
	defer sliced.Release()

	require.Equal(t, 2, sliced.Len())
	stars, _ := sliced.Column("stars")
	assert.Equal(t, "250", stars.GetAsString(0))
	size, _ := sliced.Column("diskUsageKb")
	assert.True(t, size.IsNull(0))

	empty := df.Slice(2, 1)
	defer empty.Release()
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 3, empty.Width())
}

func TestTake(t *testing.T) {
	df := createTestDataFrame(t)
	defer df.Release()

	taken := df.Take([]int{2, 0}, nil)
	defer taken.Release()

	names, _ := taken.Column("nameWithOwner")
	assert.Equal(t, "c/z", names.GetAsString(0))
	assert.Equal(t, "a/x", names.GetAsString(1))
	size, _ := taken.Column("diskUsageKb")
	assert.Equal(t, 0, size.NullN())
}

func TestDataFrameString(t *testing.T) {
	df := createTestDataFrame(t)
	defer df.Release()

	s := df.String()
	assert.Contains(t, s, "DataFrame[3x3]")
	assert.Contains(t, s, "stars: int64")
}
