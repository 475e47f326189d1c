package io

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/paveg/repoprep/internal/dataframe"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens (or creates) the SQLite database at path.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

// Write loads the DataFrame into the configured table.
func (w *SQLiteWriter) Write(df *dataframe.DataFrame) error {
	return w.WriteContext(context.Background(), df)
}

// WriteContext loads the DataFrame into the configured table, committing one
// transaction per batch of rows.
func (w *SQLiteWriter) WriteContext(ctx context.Context, df *dataframe.DataFrame) error {
	if w.options.Table == "" {
		return fmt.Errorf("sqlite table name must not be empty")
	}
	names := df.Columns()
	if len(names) == 0 {
		return fmt.Errorf("cannot create table %s without columns", w.options.Table)
	}

	arrays := make([]arrow.Array, len(names))
	for j, name := range names {
		col, _ := df.Column(name)
		arrays[j] = col.Array()
	}
	defer func() {
		for _, arr := range arrays {
			arr.Release()
		}
	}()

	if err := w.createTable(ctx, names, arrays); err != nil {
		return err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(w.options.Table), placeholders)

	batch := w.options.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	row := make([]any, len(names))
	for start := 0; start < df.Len(); start += batch {
		end := min(start+batch, df.Len())
		if err := w.insertRows(ctx, insert, arrays, row, start, end); err != nil {
			return err
		}
	}
	return nil
}

func (w *SQLiteWriter) createTable(ctx context.Context, names []string, arrays []arrow.Array) error {
	table := quoteIdent(w.options.Table)
	if w.options.Replace {
		if _, err := w.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("dropping table %s: %w", w.options.Table, err)
		}
	}

	defs := make([]string, len(names))
	for j, name := range names {
		defs[j] = quoteIdent(name) + " " + sqliteType(arrays[j].DataType())
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(defs, ", "))
	if _, err := w.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("creating table %s: %w", w.options.Table, err)
	}
	return nil
}

func (w *SQLiteWriter) insertRows(ctx context.Context, insert string, arrays []arrow.Array, row []any, start, end int) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := start; i < end; i++ {
		for j, arr := range arrays {
			row[j] = sqliteValue(arr, i)
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("inserting row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing rows %d-%d: %w", start, end-1, err)
	}
	return nil
}

func sqliteType(dt arrow.DataType) string {
	switch dt.ID() {
	case arrow.INT64, arrow.INT32, arrow.BOOL:
		return "INTEGER"
	case arrow.FLOAT64, arrow.FLOAT32:
		return "REAL"
	default:
		return "TEXT"
	}
}

func sqliteValue(arr arrow.Array, i int) any {
	if arr.IsNull(i) {
		return nil
	}
	switch typed := arr.(type) {
	case *array.Int64:
		return typed.Value(i)
	case *array.Int32:
		return int64(typed.Value(i))
	case *array.Float64:
		return sqliteFloat(typed.Value(i))
	case *array.Float32:
		return sqliteFloat(float64(typed.Value(i)))
	case *array.Boolean:
		if typed.Value(i) {
			return int64(1)
		}
		return int64(0)
	case *array.String:
		return typed.Value(i)
	case *array.Timestamp:
		unit := typed.DataType().(*arrow.TimestampType).Unit
		return typed.Value(i).ToTime(unit).UTC().Format(time.RFC3339)
	default:
		return typed.ValueStr(i)
	}
}

func sqliteFloat(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
