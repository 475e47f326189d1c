package testutil_test

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/paveg/repoprep/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupMemoryTest(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	require.NotNil(t, mem.Allocator)

	df := testutil.CreateRepositoryFrame(mem.Allocator)
	df.Release()
	mem.Release()
}

func TestCreateRepositoryFrame(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	t.Run("default", func(t *testing.T) {
		df := testutil.CreateRepositoryFrame(mem.Allocator)
		defer df.Release()

		testutil.AssertDataFrameNotEmpty(t, df)
		testutil.AssertDataFrameHasColumns(t, df,
			[]string{"nameWithOwner", "stars", "license", "isArchived", "createdAt"})
		assert.Equal(t, 4, df.Len())
		assert.Equal(t, []string{"acme/repo-000", "octo/repo-001", "gopher/repo-002", "ferris/repo-003"},
			testutil.ColumnStrings(df, "nameWithOwner"))
	})

	t.Run("with nulls and row count", func(t *testing.T) {
		df := testutil.CreateRepositoryFrame(mem.Allocator, testutil.WithNulls(), testutil.WithRowCount(12))
		defer df.Release()

		assert.Equal(t, 12, df.Len())
		stars, _ := df.Column("stars")
		assert.Equal(t, 3, stars.NullN())
		license, _ := df.Column("license")
		assert.Equal(t, 4, license.NullN())
	})

	t.Run("equal frames", func(t *testing.T) {
		a := testutil.CreateRepositoryFrame(mem.Allocator)
		defer a.Release()
		b := testutil.CreateRepositoryFrame(mem.Allocator)
		defer b.Release()

		testutil.AssertDataFrameEqual(t, a, b)
	})
}

func TestDatasetCSV(t *testing.T) {
	records, err := csv.NewReader(strings.NewReader(testutil.DatasetCSV(20))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 21)

	assert.Equal(t, testutil.DatasetColumns, records[0])
	for _, row := range records[1:] {
		assert.Len(t, row, len(testutil.DatasetColumns))
	}

	langIdx := len(testutil.DatasetColumns) - 1
	assert.Equal(t, "[{'name': 'Go', 'size': 1}, {'name': 'Makefile', 'size': 2}]", records[1][langIdx])
	assert.Empty(t, records[5][langIdx])
	assert.Equal(t, "1000000", records[8][4])
}

func TestWriteDataset(t *testing.T) {
	path := testutil.WriteDataset(t, t.TempDir(), "dataset.csv", 3)
	assert.True(t, strings.HasSuffix(path, "dataset.csv"))
}
