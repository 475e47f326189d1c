package io

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/repoprep/internal/dataframe"
)

// WriteOptions configures WriteFile.
type WriteOptions struct {
	CSV     CSVOptions
	Parquet ParquetOptions
	SQLite  SQLiteOptions
}

// DefaultWriteOptions returns the default options for every codec.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		CSV:     DefaultCSVOptions(),
		Parquet: DefaultParquetOptions(),
		SQLite:  DefaultSQLiteOptions(),
	}
}

// ReadFile reads a .csv or .parquet file into a DataFrame.
func ReadFile(path string, mem memory.Allocator) (*dataframe.DataFrame, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var reader DataReader
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		reader = NewCSVReader(f, DefaultCSVOptions(), mem)
	case ".parquet":
		reader = NewParquetReader(f, DefaultParquetOptions(), mem)
	default:
		return nil, fmt.Errorf("unsupported input format %q", ext)
	}

	df, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return df, nil
}

// WriteFile writes df to path, choosing the codec from the extension.
func WriteFile(path string, df *dataframe.DataFrame, opts WriteOptions) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".db" || ext == ".sqlite" {
		return writeSQLiteFile(path, df, opts.SQLite)
	}

	var newWriter func(f *os.File) DataWriter
	switch ext {
	case ".csv":
		newWriter = func(f *os.File) DataWriter { return NewCSVWriter(f, opts.CSV) }
	case ".parquet":
		newWriter = func(f *os.File) DataWriter { return NewParquetWriter(f, opts.Parquet) }
	case ".jsonl":
		newWriter = func(f *os.File) DataWriter { return NewJSONLinesWriter(f) }
	default:
		return fmt.Errorf("unsupported output format %q", ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := newWriter(f).Write(df); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

func writeSQLiteFile(path string, df *dataframe.DataFrame, opts SQLiteOptions) error {
	db, err := OpenSQLite(path)
	if err != nil {
		return err
	}
	if err := NewSQLiteWriter(db, opts).Write(df); err != nil {
		_ = db.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return db.Close()
}
