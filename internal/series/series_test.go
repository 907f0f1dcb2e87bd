package series

import (
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeries(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("string series", func(t *testing.T) {
		s := New("client", []string{"Client1", "Client2"}, mem)
		defer s.Release()

		assert.Equal(t, "client", s.Name())
		assert.Equal(t, 2, s.Len())
		assert.Equal(t, []string{"Client1", "Client2"}, s.Values())
		assert.Equal(t, arrow.BinaryTypes.String, s.DataType())
	})

	t.Run("int64 series", func(t *testing.T) {
		s := New("period", []int64{202301, 202302}, mem)
		defer s.Release()

		assert.Equal(t, int64(202302), s.Value(1))
		assert.Equal(t, "202301", s.GetAsString(0))
	})

	t.Run("empty series", func(t *testing.T) {
		s := New("empty", []float64{}, mem)
		defer s.Release()

		assert.Equal(t, 0, s.Len())
		assert.Empty(t, s.Values())
	})

	t.Run("unsupported type panics", func(t *testing.T) {
		assert.Panics(t, func() {
			New("bad", []complex128{1}, mem)
		})
	})
}

func TestNewNullable(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	s, err := NewNullable("sales", []float64{1.5, 0, 3.5}, []bool{true, false, true}, mem)
	require.NoError(t, err)
	defer s.Release()

	assert.Equal(t, 1, s.NullN())
	assert.True(t, s.IsNull(1))
	assert.Equal(t, []bool{true, false, true}, s.Valid())
	assert.Equal(t, "", s.GetAsString(1))
	assert.InDelta(t, 0.0, s.Value(1), 0)

	_, err = NewNullable("sales", []float64{1}, []bool{true, false}, mem)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validity length")
}

func TestNewSafe_Unsupported(t *testing.T) {
	_, err := NewSafe("bad", []uint8{1}, memory.NewGoAllocator())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}

func TestFromArrayAndRename(t *testing.T) {
	mem := memory.NewGoAllocator()
	original := New("units", []int32{4, 5}, mem)
	defer original.Release()

	renamed, err := Rename(original, "unitsCopy")
	require.NoError(t, err)
	defer renamed.Release()

	assert.Equal(t, "unitsCopy", renamed.Name())
	typed, ok := renamed.(*Series[int32])
	require.True(t, ok)
	assert.Equal(t, []int32{4, 5}, typed.Values())
}

func TestFloat64Values(t *testing.T) {
	mem := memory.NewGoAllocator()

	tests := []struct {
		name  string
		col   Column
		want  []float64
		valid []bool
	}{
		{
			name:  "int64 with null",
			col:   must(NewNullable("a", []int64{1, 2, 3}, []bool{true, false, true}, mem)),
			want:  []float64{1, math.NaN(), 3},
			valid: []bool{true, false, true},
		},
		{
			name:  "float32",
			col:   New("b", []float32{0.5, 2}, mem),
			want:  []float64{0.5, 2},
			valid: []bool{true, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer tt.col.Release()
			got, valid, err := Float64Values(tt.col)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, valid)
			for i := range tt.want {
				if !tt.valid[i] {
					assert.True(t, math.IsNaN(got[i]))
					continue
				}
				assert.InDelta(t, tt.want[i], got[i], 1e-9)
			}
		})
	}

	t.Run("string column is rejected", func(t *testing.T) {
		s := New("name", []string{"x"}, mem)
		defer s.Release()
		_, _, err := Float64Values(s)
		require.Error(t, err)
		assert.False(t, IsNumeric(s.DataType()))
	})
}

func must[T any](s *Series[T], err error) *Series[T] {
	if err != nil {
		panic(err)
	}
	return s
}
