// Package testutil provides common testing utilities shared by the
// preparation packages: allocator setup, repository fixtures and frame
// assertions.
package testutil

import (
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/repoprep/internal/dataframe"
	"github.com/paveg/repoprep/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// defaultRowCount is the default number of rows in test DataFrames.
	defaultRowCount = 4
)

// TestMemoryContext provides memory allocator with automatic cleanup.
type TestMemoryContext struct {
	Allocator memory.Allocator
	cleanup   func()
}

// Release performs cleanup of the memory context.
func (tmc *TestMemoryContext) Release() {
	if tmc.cleanup != nil {
		tmc.cleanup()
	}
}

// SetupMemoryTest creates a memory allocator for tests. With a checked
// allocator every Arrow buffer must be released before Release is called.
//
// Example usage:
//
//	mem := testutil.SetupMemoryTest(t)
//	defer mem.Release()
func SetupMemoryTest(tb testing.TB) *TestMemoryContext {
	tb.Helper()
	checked := memory.NewCheckedAllocator(memory.NewGoAllocator())

	return &TestMemoryContext{
		Allocator: checked,
		cleanup: func() {
			checked.AssertSize(tb, 0)
		},
	}
}

// TestDataFrameOption configures test DataFrame creation.
type TestDataFrameOption func(*testDataFrameConfig)

type testDataFrameConfig struct {
	includeNulls bool
	rowCount     int
}

// WithNulls makes every third license and every fourth star count null.
func WithNulls() TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.includeNulls = true
	}
}

// WithRowCount sets the number of rows in test data.
func WithRowCount(count int) TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.rowCount = count
	}
}

// CreateRepositoryFrame creates a typed repositories frame as the CSV reader
// would produce it, before any cleaning:
//   - nameWithOwner (string)
//   - stars (int64)
//   - license (string)
//   - isArchived (bool)
//   - createdAt (string, RFC 3339)
func CreateRepositoryFrame(allocator memory.Allocator, opts ...TestDataFrameOption) *dataframe.DataFrame {
	cfg := &testDataFrameConfig{rowCount: defaultRowCount}
	for _, opt := range opts {
		opt(cfg)
	}

	n := cfg.rowCount
	names := make([]string, n)
	stars := make([]int64, n)
	licenses := make([]string, n)
	archived := make([]bool, n)
	created := make([]string, n)

	var starsValid, licenseValid []bool
	if cfg.includeNulls {
		starsValid = make([]bool, n)
		licenseValid = make([]bool, n)
	}

	for i := range n {
		names[i] = ownerName(i) + "/" + repoName(i)
		stars[i] = baseStars[i%len(baseStars)]
		licenses[i] = baseLicenses[i%len(baseLicenses)]
		archived[i] = i%5 == 4
		created[i] = createdAt(i).Format(time.RFC3339)
		if cfg.includeNulls {
			starsValid[i] = i%4 != 3
			licenseValid[i] = i%3 != 2
		}
	}

	return dataframe.New(
		series.New("nameWithOwner", names, allocator),
		series.NewWithValidity("stars", stars, starsValid, allocator),
		series.NewWithValidity("license", licenses, licenseValid, allocator),
		series.New("isArchived", archived, allocator),
		series.New("createdAt", created, allocator),
	)
}

// AssertDataFrameEqual compares shape, column order, types, nulls and the
// rendered value of every cell.
func AssertDataFrameEqual(t *testing.T, expected, actual *dataframe.DataFrame) {
	t.Helper()

	require.NotNil(t, expected, "expected DataFrame should not be nil")
	require.NotNil(t, actual, "actual DataFrame should not be nil")

	assert.Equal(t, expected.Len(), actual.Len(), "DataFrame lengths should match")
	assert.Equal(t, expected.Columns(), actual.Columns(), "DataFrame columns should match")

	for _, colName := range expected.Columns() {
		expectedCol, _ := expected.Column(colName)
		actualCol, ok := actual.Column(colName)
		require.True(t, ok, "actual column %s should exist", colName)

		assert.True(t, arrow.TypeEqual(expectedCol.DataType(), actualCol.DataType()),
			"column %s: type %s != %s", colName, expectedCol.DataType(), actualCol.DataType())
		assert.Equal(t, ColumnStrings(expected, colName), ColumnStrings(actual, colName),
			"column %s data should match", colName)
		for i := 0; i < min(expectedCol.Len(), actualCol.Len()); i++ {
			assert.Equal(t, expectedCol.IsNull(i), actualCol.IsNull(i), "column %s row %d null", colName, i)
		}
	}
}

// AssertDataFrameHasColumns verifies that a DataFrame has exactly the expected columns, in order.
func AssertDataFrameHasColumns(t *testing.T, df *dataframe.DataFrame, expectedColumns []string) {
	t.Helper()

	require.NotNil(t, df, "DataFrame should not be nil")
	assert.Equal(t, expectedColumns, df.Columns())
}

// AssertDataFrameNotEmpty verifies that a DataFrame is not empty.
func AssertDataFrameNotEmpty(t *testing.T, df *dataframe.DataFrame) {
	t.Helper()

	require.NotNil(t, df, "DataFrame should not be nil")
	assert.Positive(t, df.Len(), "DataFrame should not be empty")
	assert.Positive(t, df.Width(), "DataFrame should have columns")
}

// ColumnStrings renders every cell of a column; nulls render as "".
// A missing column yields nil.
func ColumnStrings(df *dataframe.DataFrame, name string) []string {
	col, ok := df.Column(name)
	if !ok {
		return nil
	}
	out := make([]string, col.Len())
	for i := range out {
		out[i] = col.GetAsString(i)
	}
	return out
}
