package io_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/repoprep/internal/dataframe"
	"github.com/paveg/repoprep/internal/io"
	"github.com/paveg/repoprep/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPreparedFrame(t *testing.T, mem memory.Allocator) *dataframe.DataFrame {
	t.Helper()

	created := []time.Time{
		time.Date(2012, 1, 2, 3, 4, 5, 0, time.UTC),
		time.Date(2019, 6, 30, 23, 59, 59, 0, time.UTC),
		time.Date(2021, 12, 25, 0, 0, 0, 0, time.UTC),
	}

	return dataframe.New(
		series.New("primaryLanguage", []string{"Go", "-1", "Rust"}, mem),
		series.New("stars", []int64{100, 5, 42}, mem),
		series.NewWithValidity("score", []float64{0.5, 0, 1.25}, []bool{true, false, true}, mem),
		series.New("isArchived", []bool{false, true, false}, mem),
		series.New("createdAt", created, mem),
	)
}

func TestParquetRoundTrip(t *testing.T) {
	mem := memory.NewGoAllocator()

	codecs := []string{"snappy", "gzip", "zstd", "lz4", "uncompressed"}
	for _, codec := range codecs {
		t.Run(codec, func(t *testing.T) {
			df := createPreparedFrame(t, mem)
			defer df.Release()

			options := io.DefaultParquetOptions()
			options.Compression = codec

			buf := new(bytes.Buffer)
			require.NoError(t, io.NewParquetWriter(buf, options).Write(df))

			result, err := io.NewParquetReader(bytes.NewReader(buf.Bytes()), options, mem).Read()
			require.NoError(t, err)
			defer result.Release()

			assert.Equal(t, df.Columns(), result.Columns())
			assert.Equal(t, df.Len(), result.Len())

			for _, name := range df.Columns() {
				want, _ := df.Column(name)
				got, ok := result.Column(name)
				require.True(t, ok, name)
				assert.True(t, arrow.TypeEqual(want.DataType(), got.DataType()), name)
				for i := 0; i < df.Len(); i++ {
					assert.Equal(t, want.IsNull(i), got.IsNull(i), "%s[%d]", name, i)
					assert.Equal(t, want.GetAsString(i), got.GetAsString(i), "%s[%d]", name, i)
				}
			}
		})
	}
}

func TestParquetReader_Read(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("empty input", func(t *testing.T) {
		reader := io.NewParquetReader(bytes.NewReader([]byte{}), io.DefaultParquetOptions(), mem)
		_, err := reader.Read()
		require.Error(t, err)
	})

	t.Run("not parquet", func(t *testing.T) {
		reader := io.NewParquetReader(bytes.NewReader([]byte("name,stars\ngo,1\n")), io.DefaultParquetOptions(), mem)
		_, err := reader.Read()
		require.Error(t, err)
	})

	t.Run("small row groups", func(t *testing.T) {
		values := make([]int64, 100)
		for i := range values {
			values[i] = int64(i)
		}
		df := dataframe.New(series.New("stars", values, mem))
		defer df.Release()

		options := io.DefaultParquetOptions()
		options.RowGroupSize = 16

		buf := new(bytes.Buffer)
		require.NoError(t, io.NewParquetWriter(buf, options).Write(df))

		result, err := io.NewParquetReader(bytes.NewReader(buf.Bytes()), options, mem).Read()
		require.NoError(t, err)
		defer result.Release()

		col, _ := result.Column("stars")
		require.Equal(t, 100, col.Len())
		assert.Equal(t, "99", col.GetAsString(99))
	})
}

type closeTracker struct {
	bytes.Buffer
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestParquetWriterLeavesSinkOpen(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := createPreparedFrame(t, mem)
	defer df.Release()

	sink := &closeTracker{}
	require.NoError(t, io.NewParquetWriter(sink, io.DefaultParquetOptions()).Write(df))

	assert.False(t, sink.closed)
	assert.Positive(t, sink.Len())
}
