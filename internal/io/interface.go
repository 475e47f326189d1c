// Package io provides I/O operations for reading and writing repository datasets.
//
// This package includes readers and writers for the formats a prepared
// dataset travels in, with automatic type inference on the way in.
//
// Key components:
//   - DataReader/DataWriter interfaces for pluggable I/O backends
//   - CSVReader/CSVWriter for the raw dataset and its splits
//   - ParquetReader/ParquetWriter for typed, compressed exports
//   - JSONLinesWriter for row-per-line exports
//   - SQLiteWriter for loading a prepared frame into a queryable table
//   - ReadFile/WriteFile, which pick a codec from the file extension
//
// Memory management: All I/O operations integrate with Apache Arrow's
// memory management system and require proper cleanup with defer patterns.
package io

import (
	"database/sql"
	"io"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/repoprep/internal/dataframe"
)

const (
	// DefaultRowGroupSize is the default Parquet row group length
	DefaultRowGroupSize = 64 * 1024
	// DefaultBatchSize is the default batch size for I/O operations
	DefaultBatchSize = 1000
)

// DataReader defines the interface for reading data from various sources
type DataReader interface {
	// Read reads data from the source and returns a DataFrame
	Read() (*dataframe.DataFrame, error)
}

// DataWriter defines the interface for writing data to various destinations
type DataWriter interface {
	// Write writes the DataFrame to the destination
	Write(df *dataframe.DataFrame) error
}

// CSVOptions contains configuration options for CSV operations
type CSVOptions struct {
	// Delimiter is the field delimiter (default: comma)
	Delimiter rune
	// Comment is the comment character (default: 0 = disabled)
	Comment rune
	// Header indicates whether the first row contains headers
	Header bool
	// SkipInitialSpace indicates whether to skip initial whitespace
	SkipInitialSpace bool
	// NullValues are the cell contents read as missing
	NullValues []string
}

// DefaultNullValues are the cell contents treated as missing by default.
func DefaultNullValues() []string {
	return []string{"", "NA", "N/A", "n/a", "NaN", "nan", "NULL", "null", "None", "<NA>"}
}

// DefaultCSVOptions returns default CSV options
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter:        ',',
		Comment:          0,
		Header:           true,
		SkipInitialSpace: false,
		NullValues:       DefaultNullValues(),
	}
}

// CSVReader reads CSV data and converts it to DataFrames
type CSVReader struct {
	reader  io.Reader
	options CSVOptions
	mem     memory.Allocator
}

// NewCSVReader creates a new CSV reader with the specified options
func NewCSVReader(reader io.Reader, options CSVOptions, mem memory.Allocator) *CSVReader {
	return &CSVReader{
		reader:  reader,
		options: options,
		mem:     mem,
	}
}

// CSVWriter writes DataFrames to CSV format
type CSVWriter struct {
	writer  io.Writer
	options CSVOptions
}

// NewCSVWriter creates a new CSV writer with the specified options
func NewCSVWriter(writer io.Writer, options CSVOptions) *CSVWriter {
	return &CSVWriter{
		writer:  writer,
		options: options,
	}
}

// ParquetOptions contains configuration options for Parquet operations
type ParquetOptions struct {
	// Compression type for Parquet files
	Compression string
	// BatchSize for reading/writing operations
	BatchSize int
	// RowGroupSize is the maximum number of rows per row group
	RowGroupSize int
}

// DefaultParquetOptions returns default Parquet options
func DefaultParquetOptions() ParquetOptions {
	return ParquetOptions{
		Compression:  "snappy",
		BatchSize:    DefaultBatchSize,
		RowGroupSize: DefaultRowGroupSize,
	}
}

// ParquetReader reads Parquet data and converts it to DataFrames
type ParquetReader struct {
	reader  io.Reader
	options ParquetOptions
	mem     memory.Allocator
}

// NewParquetReader creates a new Parquet reader with the specified options
func NewParquetReader(reader io.Reader, options ParquetOptions, mem memory.Allocator) *ParquetReader {
	return &ParquetReader{
		reader:  reader,
		options: options,
		mem:     mem,
	}
}

// ParquetWriter writes DataFrames to Parquet format
type ParquetWriter struct {
	writer  io.Writer
	options ParquetOptions
}

// NewParquetWriter creates a new Parquet writer with the specified options
func NewParquetWriter(writer io.Writer, options ParquetOptions) *ParquetWriter {
	return &ParquetWriter{
		writer:  writer,
		options: options,
	}
}

// JSONLinesWriter writes one JSON object per row, keys in column order
type JSONLinesWriter struct {
	writer io.Writer
}

// NewJSONLinesWriter creates a new JSON Lines writer
func NewJSONLinesWriter(writer io.Writer) *JSONLinesWriter {
	return &JSONLinesWriter{writer: writer}
}

// SQLiteOptions contains configuration options for SQLite exports
type SQLiteOptions struct {
	// Table is the destination table name
	Table string
	// Replace drops an existing table of the same name first
	Replace bool
	// BatchSize is the number of rows inserted per transaction
	BatchSize int
}

// DefaultSQLiteOptions returns default SQLite options
func DefaultSQLiteOptions() SQLiteOptions {
	return SQLiteOptions{
		Table:     "repositories",
		Replace:   true,
		BatchSize: DefaultBatchSize,
	}
}

// SQLiteWriter writes DataFrames into a SQLite table
type SQLiteWriter struct {
	db      *sql.DB
	options SQLiteOptions
}

// NewSQLiteWriter creates a new SQLite writer on an open database handle
func NewSQLiteWriter(db *sql.DB, options SQLiteOptions) *SQLiteWriter {
	return &SQLiteWriter{
		db:      db,
		options: options,
	}
}
