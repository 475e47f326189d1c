// Package dataframe provides the column-ordered table that every preparation
// step consumes and produces.
//
// A DataFrame owns one reference to each of its series. Operations that
// return a new DataFrame sharing columns with the receiver (Select, Drop,
// WithColumn, Slice) take their own references, so both frames must be
// released independently.
package dataframe

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

// DataFrame represents a table of data with typed columns
type DataFrame struct {
	columns map[string]ISeries
	order   []string // Maintains column order
}

// New creates a new DataFrame from a slice of ISeries and takes ownership of them.
// A later series with a duplicate name replaces the earlier one in place.
func New(series ...ISeries) *DataFrame {
	columns := make(map[string]ISeries, len(series))
	order := make([]string, 0, len(series))

	for _, s := range series {
		name := s.Name()
		if old, exists := columns[name]; exists {
			old.Release()
		} else {
			order = append(order, name)
		}
		columns[name] = s
	}

	return &DataFrame{
		columns: columns,
		order:   order,
	}
}

// Columns returns the names of all columns in order
func (df *DataFrame) Columns() []string {
	if len(df.order) == 0 {
		return []string{}
	}
	return append([]string(nil), df.order...)
}

// Len returns the number of rows (assumes all columns have same length)
func (df *DataFrame) Len() int {
	if len(df.order) == 0 {
		return 0
	}
	return df.columns[df.order[0]].Len()
}

// Width returns the number of columns
func (df *DataFrame) Width() int {
	return len(df.order)
}

// Column returns the series for the given column name
func (df *DataFrame) Column(name string) (ISeries, bool) {
	s, exists := df.columns[name]
	return s, exists
}

// HasColumn checks if a column exists
func (df *DataFrame) HasColumn(name string) bool {
	_, exists := df.columns[name]
	return exists
}

// Select returns a new DataFrame with only the specified columns.
// Unknown names are ignored.
func (df *DataFrame) Select(names ...string) *DataFrame {
	kept := make([]ISeries, 0, len(names))
	for _, name := range names {
		if s, exists := df.columns[name]; exists {
			s.Retain()
			kept = append(kept, s)
		}
	}
	return New(kept...)
}

// Drop returns a new DataFrame without the specified columns
func (df *DataFrame) Drop(names ...string) *DataFrame {
	dropSet := make(map[string]bool, len(names))
	for _, name := range names {
		dropSet[name] = true
	}

	kept := make([]ISeries, 0, len(df.order))
	for _, name := range df.order {
		if dropSet[name] {
			continue
		}
		s := df.columns[name]
		s.Retain()
		kept = append(kept, s)
	}
	return New(kept...)
}

// WithColumn returns a new DataFrame where s replaces the column of the same
// name at its position, or is appended when no such column exists.
// The returned frame takes ownership of s.
func (df *DataFrame) WithColumn(s ISeries) *DataFrame {
	kept := make([]ISeries, 0, len(df.order)+1)
	replaced := false
	for _, name := range df.order {
		if name == s.Name() {
			kept = append(kept, s)
			replaced = true
			continue
		}
		existing := df.columns[name]
		existing.Retain()
		kept = append(kept, existing)
	}
	if !replaced {
		kept = append(kept, s)
	}
	return New(kept...)
}

// String returns a string representation of the DataFrame
func (df *DataFrame) String() string {
	if len(df.columns) == 0 {
		return "DataFrame[empty]"
	}

	parts := []string{fmt.Sprintf("DataFrame[%dx%d]", df.Len(), df.Width())}
	for _, name := range df.order {
		parts = append(parts, fmt.Sprintf("  %s: %s", name, df.columns[name].DataType().String()))
	}

	return strings.Join(parts, "\n")
}

// Slice creates a new DataFrame containing rows from start (inclusive) to end (exclusive).
// The slice shares buffers with the receiver.
func (df *DataFrame) Slice(start, end int) *DataFrame {
	length := df.Len()
	if end > length {
		end = length
	}
	if start < 0 || start >= end {
		return df.Take(nil, memory.NewGoAllocator())
	}

	sliced := make([]ISeries, 0, len(df.order))
	for _, name := range df.order {
		sliced = append(sliced, df.columns[name].Slice(start, end))
	}
	return New(sliced...)
}

// Take returns a new DataFrame holding the rows at indices, in that order.
func (df *DataFrame) Take(indices []int, mem memory.Allocator) *DataFrame {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	taken := make([]ISeries, 0, len(df.order))
	for _, name := range df.order {
		taken = append(taken, df.columns[name].Take(indices, mem))
	}
	return New(taken...)
}

// Release releases all underlying Arrow memory
func (df *DataFrame) Release() {
	for _, s := range df.columns {
		s.Release()
	}
}
