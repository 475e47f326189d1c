package dataframe

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/repoprep/internal/series"
)

// ISeries provides a type-erased interface for Series of any type
type ISeries interface {
	Name() string
	Len() int
	DataType() arrow.DataType
	IsNull(index int) bool
	NullN() int
	String() string
	Array() arrow.Array
	GetAsString(index int) string
	Take(indices []int, mem memory.Allocator) series.Column
	Rename(name string) series.Column
	Slice(start, end int) series.Column
	Retain()
	Release()
}
