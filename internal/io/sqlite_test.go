package io_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/repoprep/internal/dataframe"
	"github.com/paveg/repoprep/internal/io"
	"github.com/paveg/repoprep/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := io.OpenSQLite(filepath.Join(t.TempDir(), "prepared.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLiteWriter(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("creates and fills the table", func(t *testing.T) {
		db := openTestDB(t)
		df := createPreparedFrame(t, mem)
		defer df.Release()

		options := io.DefaultSQLiteOptions()
		options.BatchSize = 2
		require.NoError(t, io.NewSQLiteWriter(db, options).Write(df))

		var count int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM repositories`).Scan(&count))
		assert.Equal(t, 3, count)

		var stars int64
		var archived int64
		var created string
		require.NoError(t, db.QueryRow(
			`SELECT stars, isArchived, createdAt FROM repositories WHERE primaryLanguage = ?`, "Rust",
		).Scan(&stars, &archived, &created))
		assert.Equal(t, int64(42), stars)
		assert.Equal(t, int64(0), archived)
		assert.Equal(t, "2021-12-25T00:00:00Z", created)

		var score sql.NullFloat64
		require.NoError(t, db.QueryRow(
			`SELECT score FROM repositories WHERE primaryLanguage = ?`, "-1",
		).Scan(&score))
		assert.False(t, score.Valid)
	})

	t.Run("replace drops the previous table", func(t *testing.T) {
		db := openTestDB(t)
		ctx := context.Background()

		first := dataframe.New(series.New("stars", []int64{1, 2, 3}, mem))
		defer first.Release()
		second := dataframe.New(series.New("forks", []int64{7}, mem))
		defer second.Release()

		writer := io.NewSQLiteWriter(db, io.DefaultSQLiteOptions())
		require.NoError(t, writer.WriteContext(ctx, first))
		require.NoError(t, writer.WriteContext(ctx, second))

		var count int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM repositories`).Scan(&count))
		assert.Equal(t, 1, count)
	})

	t.Run("append keeps existing rows", func(t *testing.T) {
		db := openTestDB(t)
		df := dataframe.New(series.New("stars", []int64{1, 2}, mem))
		defer df.Release()

		options := io.DefaultSQLiteOptions()
		options.Replace = false
		writer := io.NewSQLiteWriter(db, options)
		require.NoError(t, writer.Write(df))
		require.NoError(t, writer.Write(df))

		var count int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM repositories`).Scan(&count))
		assert.Equal(t, 4, count)
	})

	t.Run("quotes identifiers", func(t *testing.T) {
		db := openTestDB(t)
		df := dataframe.New(series.New(`odd "name"`, []string{"x"}, mem))
		defer df.Release()

		options := io.DefaultSQLiteOptions()
		options.Table = "select"
		require.NoError(t, io.NewSQLiteWriter(db, options).Write(df))

		var v string
		require.NoError(t, db.QueryRow(`SELECT "odd ""name""" FROM "select"`).Scan(&v))
		assert.Equal(t, "x", v)
	})

	t.Run("rejects frames without columns", func(t *testing.T) {
		db := openTestDB(t)
		df := dataframe.New()
		defer df.Release()

		assert.Error(t, io.NewSQLiteWriter(db, io.DefaultSQLiteOptions()).Write(df))
	})

	t.Run("cancelled context", func(t *testing.T) {
		db := openTestDB(t)
		df := dataframe.New(series.New("stars", []int64{1}, mem))
		defer df.Release()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Error(t, io.NewSQLiteWriter(db, io.DefaultSQLiteOptions()).WriteContext(ctx, df))
	})
}
