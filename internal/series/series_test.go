package series

import (
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeries(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("string series", func(t *testing.T) {
		s := New("license", []string{"MIT", "Apache-2.0", "-1"}, mem)
		defer s.Release()

		assert.Equal(t, "license", s.Name())
		assert.Equal(t, 3, s.Len())
		assert.Equal(t, []string{"MIT", "Apache-2.0", "-1"}, s.Values())
		assert.Equal(t, arrow.BinaryTypes.String, s.DataType())
	})

	t.Run("int64 series", func(t *testing.T) {
		s := New("stars", []int64{10, 200, 3}, mem)
		defer s.Release()

		assert.Equal(t, int64(200), s.Value(1))
		assert.Equal(t, "200", s.GetAsString(1))
	})

	t.Run("float64 series renders without exponent", func(t *testing.T) {
		s := New("ratio", []float64{1e21, 0.25}, mem)
		defer s.Release()

		assert.Equal(t, "1000000000000000000000", s.GetAsString(0))
		assert.Equal(t, "0.25", s.GetAsString(1))
	})

	t.Run("timestamp series", func(t *testing.T) {
		ts := time.Date(2019, 3, 4, 5, 6, 7, 0, time.UTC)
		s := New("createdAt", []time.Time{ts}, mem)
		defer s.Release()

		assert.Equal(t, ts, s.Value(0))
		assert.Equal(t, "2019-03-04T05:06:07Z", s.GetAsString(0))
		assert.Equal(t, arrow.TIMESTAMP, s.DataType().ID())
	})

	t.Run("out of range value is zero", func(t *testing.T) {
		s := New("stars", []int64{1}, mem)
		defer s.Release()

		assert.Equal(t, int64(0), s.Value(5))
		assert.Equal(t, "", s.GetAsString(-1))
	})
}

func TestNewWithValidity(t *testing.T) {
	mem := memory.NewGoAllocator()

	s := NewWithValidity("primaryLanguage", []string{"Go", "", "Rust"}, []bool{true, false, true}, mem)
	defer s.Release()

	assert.Equal(t, 1, s.NullN())
	assert.True(t, s.IsNull(1))
	assert.Equal(t, "", s.GetAsString(1))
	assert.Equal(t, []bool{true, false, true}, s.Validity())

	clean := New("stars", []int64{1, 2}, mem)
	defer clean.Release()
	assert.Nil(t, clean.Validity())

	assert.Panics(t, func() {
		NewWithValidity("bad", []int64{1, 2}, []bool{true}, mem)
	})
}

func TestNewSafe(t *testing.T) {
	mem := memory.NewGoAllocator()

	s, err := NewSafe("ok", []int32{1, 2}, mem)
	require.NoError(t, err)
	defer s.Release()
	assert.Equal(t, 2, s.Len())

	_, err = NewSafe("bad", []uint8{1}, mem)
	assert.Error(t, err)
}

func TestTake(t *testing.T) {
	mem := memory.NewGoAllocator()

	s := NewWithValidity("forkCount", []int64{1, 0, 3, 4}, []bool{true, false, true, true}, mem)
	defer s.Release()

	taken := s.Take([]int{3, 1, 0}, mem)
	defer taken.Release()

	typed, ok := taken.(*Series[int64])
	require.True(t, ok)
	assert.Equal(t, []int64{4, 0, 1}, typed.Values())
	assert.True(t, typed.IsNull(1))
	assert.Equal(t, 1, typed.NullN())
}

func TestRenameSharesStorage(t *testing.T) {
	mem := memory.NewGoAllocator()

	s := New("size", []int64{7}, mem)
	renamed := s.Rename("diskUsageKb")
	s.Release()
	defer renamed.Release()

	assert.Equal(t, "diskUsageKb", renamed.Name())
	assert.Equal(t, "7", renamed.GetAsString(0))
}

func TestSliceSharesStorage(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	s := NewWithValidity("createdAt", []time.Time{
		time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC),
		{},
	}, []bool{true, true, false}, mem)
	part := s.Slice(1, 3)
	s.Release()
	defer part.Release()

	require.Equal(t, 2, part.Len())
	assert.Equal(t, arrow.TIMESTAMP, part.DataType().ID())
	assert.Equal(t, "2015-06-01T00:00:00Z", part.GetAsString(0))
	assert.True(t, part.IsNull(1))
}

func TestFromArray(t *testing.T) {
	mem := memory.NewGoAllocator()

	b := array.NewFloat64Builder(mem)
	b.AppendValues([]float64{1.5, 2.5}, nil)
	arr := b.NewArray()
	b.Release()
	defer arr.Release()

	col, err := FromArray("score", arr)
	require.NoError(t, err)
	defer col.Release()

	typed, ok := col.(*Series[float64])
	require.True(t, ok)
	assert.Equal(t, []float64{1.5, 2.5}, typed.Values())

	lb := array.NewListBuilder(mem, arrow.PrimitiveTypes.Int64)
	defer lb.Release()
	list := lb.NewArray()
	defer list.Release()

	_, err = FromArray("list", list)
	assert.Error(t, err)
}

func TestFloat64Values(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("widens numeric, bool and timestamp columns", func(t *testing.T) {
		tests := []struct {
			name string
			col  Column
			want []float64
		}{
			{"int64", New("a", []int64{1, -1}, mem), []float64{1, -1}},
			{"int32", New("b", []int32{7}, mem), []float64{7}},
			{"float32", New("c", []float32{0.5}, mem), []float64{0.5}},
			{"bool", New("d", []bool{true, false}, mem), []float64{1, 0}},
			{"timestamp", New("e", []time.Time{time.Unix(10, 250_000_000)}, mem), []float64{10.25}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				defer tt.col.Release()
				values, valid, err := Float64Values(tt.col)
				require.NoError(t, err)
				assert.Nil(t, valid)
				assert.Equal(t, tt.want, values)
			})
		}
	})

	t.Run("nulls read as zero", func(t *testing.T) {
		col := NewWithValidity("stars", []float64{3, 9}, []bool{true, false}, mem)
		defer col.Release()

		values, valid, err := Float64Values(col)
		require.NoError(t, err)
		assert.Equal(t, []float64{3, 0}, values)
		assert.Equal(t, []bool{true, false}, valid)
	})

	t.Run("strings are rejected", func(t *testing.T) {
		col := New("license", []string{"MIT"}, mem)
		defer col.Release()

		_, _, err := Float64Values(col)
		assert.Error(t, err)
	})
}
