// Package series provides data structures for column operations
package series

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// TimestampType is the Arrow type used for every time.Time series.
var TimestampType = &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}

// Column is the type-erased view shared by every Series instantiation.
type Column interface {
	Name() string
	Len() int
	DataType() arrow.DataType
	IsNull(index int) bool
	NullN() int
	GetAsString(index int) string
	String() string
	Array() arrow.Array
	Take(indices []int, mem memory.Allocator) Column
	Rename(name string) Column
	Slice(start, end int) Column
	Retain()
	Release()
}

// Series represents a typed data column with Apache Arrow backend
type Series[T any] struct {
	name  string
	array arrow.Array
}

// New creates a new Series from a slice of values
func New[T any](name string, values []T, mem memory.Allocator) *Series[T] {
	return NewWithValidity(name, values, nil, mem)
}

// NewWithValidity creates a Series whose nulls are marked by valid[i] == false.
// A nil valid slice means every value is present.
func NewWithValidity[T any](name string, values []T, valid []bool, mem memory.Allocator) *Series[T] {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	if valid != nil && len(valid) != len(values) {
		panic(fmt.Sprintf("validity length %d does not match values length %d", len(valid), len(values)))
	}

	var arr arrow.Array

	switch v := any(values).(type) {
	case []string:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []int64:
		builder := array.NewInt64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []int32:
		builder := array.NewInt32Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []float64:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []float32:
		builder := array.NewFloat32Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []bool:
		builder := array.NewBooleanBuilder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []time.Time:
		builder := array.NewTimestampBuilder(mem, TimestampType)
		defer builder.Release()
		for i, t := range v {
			if valid != nil && !valid[i] {
				builder.AppendNull()
				continue
			}
			builder.Append(arrow.Timestamp(t.UnixMicro()))
		}
		arr = builder.NewArray()
	default:
		panic(fmt.Sprintf("unsupported type: %T", values))
	}

	return &Series[T]{
		name:  name,
		array: arr,
	}
}

// NewSafe is New with the panics for unsupported types turned into errors.
func NewSafe[T any](name string, values []T, mem memory.Allocator) (s *Series[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("creating series %s: %v", name, r)
		}
	}()
	return New(name, values, mem), nil
}

// FromArray wraps an existing Arrow array. The array is retained.
func FromArray(name string, arr arrow.Array) (Column, error) {
	switch arr.(type) {
	case *array.String:
		return wrap[string](name, arr), nil
	case *array.Int64:
		return wrap[int64](name, arr), nil
	case *array.Int32:
		return wrap[int32](name, arr), nil
	case *array.Float64:
		return wrap[float64](name, arr), nil
	case *array.Float32:
		return wrap[float32](name, arr), nil
	case *array.Boolean:
		return wrap[bool](name, arr), nil
	case *array.Timestamp:
		return wrap[time.Time](name, arr), nil
	default:
		return nil, fmt.Errorf("unsupported array type: %s", arr.DataType())
	}
}

func wrap[T any](name string, arr arrow.Array) *Series[T] {
	arr.Retain()
	return &Series[T]{name: name, array: arr}
}

// Name returns the column name
func (s *Series[T]) Name() string {
	return s.name
}

// Len returns the length of the series
func (s *Series[T]) Len() int {
	return s.array.Len()
}

// NullN returns the number of null values
func (s *Series[T]) NullN() int {
	return s.array.NullN()
}

// Values returns the data as a Go slice. Nulls come back as the zero value.
func (s *Series[T]) Values() []T {
	result := make([]T, s.array.Len())
	for i := range result {
		result[i] = s.Value(i)
	}
	return result
}

// Validity returns a per-row presence mask, or nil when the series has no nulls.
func (s *Series[T]) Validity() []bool {
	if s.array.NullN() == 0 {
		return nil
	}
	valid := make([]bool, s.array.Len())
	for i := range valid {
		valid[i] = s.array.IsValid(i)
	}
	return valid
}

// Value returns the value at the given index
func (s *Series[T]) Value(index int) T {
	var result T
	if index < 0 || index >= s.array.Len() || s.array.IsNull(index) {
		return result
	}

	switch arr := s.array.(type) {
	case *array.String:
		if v, ok := any(&result).(*string); ok {
			*v = arr.Value(index)
		}
	case *array.Int64:
		if v, ok := any(&result).(*int64); ok {
			*v = arr.Value(index)
		}
	case *array.Int32:
		if v, ok := any(&result).(*int32); ok {
			*v = arr.Value(index)
		}
	case *array.Float64:
		if v, ok := any(&result).(*float64); ok {
			*v = arr.Value(index)
		}
	case *array.Float32:
		if v, ok := any(&result).(*float32); ok {
			*v = arr.Value(index)
		}
	case *array.Boolean:
		if v, ok := any(&result).(*bool); ok {
			*v = arr.Value(index)
		}
	case *array.Timestamp:
		if v, ok := any(&result).(*time.Time); ok {
			unit := arr.DataType().(*arrow.TimestampType).Unit
			*v = arr.Value(index).ToTime(unit).UTC()
		}
	}

	return result
}

// GetAsString renders the value at index; nulls render as the empty string.
func (s *Series[T]) GetAsString(index int) string {
	if index < 0 || index >= s.array.Len() || s.array.IsNull(index) {
		return ""
	}

	switch arr := s.array.(type) {
	case *array.String:
		return arr.Value(index)
	case *array.Int64:
		return strconv.FormatInt(arr.Value(index), 10)
	case *array.Int32:
		return strconv.FormatInt(int64(arr.Value(index)), 10)
	case *array.Float64:
		return strconv.FormatFloat(arr.Value(index), 'f', -1, 64)
	case *array.Float32:
		return strconv.FormatFloat(float64(arr.Value(index)), 'f', -1, 32)
	case *array.Boolean:
		return strconv.FormatBool(arr.Value(index))
	case *array.Timestamp:
		unit := arr.DataType().(*arrow.TimestampType).Unit
		return arr.Value(index).ToTime(unit).UTC().Format(time.RFC3339)
	default:
		return ""
	}
}

// DataType returns the Arrow data type
func (s *Series[T]) DataType() arrow.DataType {
	return s.array.DataType()
}

// IsNull checks if the value at index is null
func (s *Series[T]) IsNull(index int) bool {
	return s.array.IsNull(index)
}

// Take gathers the rows at indices into a new series.
func (s *Series[T]) Take(indices []int, mem memory.Allocator) Column {
	values := make([]T, len(indices))
	var valid []bool
	if s.array.NullN() > 0 {
		valid = make([]bool, len(indices))
	}
	for i, idx := range indices {
		values[i] = s.Value(idx)
		if valid != nil {
			valid[i] = s.array.IsValid(idx)
		}
	}
	return NewWithValidity(s.name, values, valid, mem)
}

// Rename returns a series sharing this one's storage under a new name.
func (s *Series[T]) Rename(name string) Column {
	s.array.Retain()
	return &Series[T]{name: name, array: s.array}
}

// Slice returns rows [start, end) sharing this series' buffers.
func (s *Series[T]) Slice(start, end int) Column {
	part := array.NewSlice(s.array, int64(start), int64(end))
	defer part.Release()
	return wrap[T](s.name, part)
}

// String returns a string representation of the series
func (s *Series[T]) String() string {
	return fmt.Sprintf("Series[%s]: %s (len=%d)",
		reflect.TypeOf(new(T)).Elem().Name(),
		s.name,
		s.Len())
}

// Array returns the underlying Arrow array (retains a reference)
func (s *Series[T]) Array() arrow.Array {
	if s.array != nil {
		s.array.Retain()
		return s.array
	}
	return nil
}

// Retain adds a reference to the underlying Arrow memory
func (s *Series[T]) Retain() {
	if s.array != nil {
		s.array.Retain()
	}
}

// Release releases the underlying Arrow memory
func (s *Series[T]) Release() {
	if s.array != nil {
		s.array.Release()
	}
}

// Float64Values widens a numeric, bool or timestamp column to float64.
// Timestamps become Unix seconds. Nulls read as 0 and are marked false in
// valid, which is nil when the column has no nulls.
func Float64Values(c Column) (values []float64, valid []bool, err error) {
	arr := c.Array()
	defer arr.Release()

	n := arr.Len()
	values = make([]float64, n)
	if arr.NullN() > 0 {
		valid = make([]bool, n)
		for i := range valid {
			valid[i] = arr.IsValid(i)
		}
	}

	switch typed := arr.(type) {
	case *array.Int64:
		for i := 0; i < n; i++ {
			values[i] = float64(typed.Value(i))
		}
	case *array.Int32:
		for i := 0; i < n; i++ {
			values[i] = float64(typed.Value(i))
		}
	case *array.Float64:
		copy(values, typed.Float64Values())
	case *array.Float32:
		for i := 0; i < n; i++ {
			values[i] = float64(typed.Value(i))
		}
	case *array.Boolean:
		for i := 0; i < n; i++ {
			if typed.Value(i) {
				values[i] = 1
			}
		}
	case *array.Timestamp:
		unit := typed.DataType().(*arrow.TimestampType).Unit
		for i := 0; i < n; i++ {
			values[i] = float64(typed.Value(i).ToTime(unit).UnixMicro()) / 1e6
		}
	default:
		return nil, nil, fmt.Errorf("cannot convert %s to float64", arr.DataType())
	}

	for i, ok := range valid {
		if !ok {
			values[i] = 0
		}
	}
	return values, valid, nil
}
