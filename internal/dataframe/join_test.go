package dataframe

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/mztrk/ExpendbyPeriods/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyIndex_GroupsByTuple(t *testing.T) {
	mem := memory.NewGoAllocator()

	// "a|b"+"c" and "a"+"b|c" would collide under separator concatenation.
	k1 := series.New("k1", []string{"a|b", "a", "a|b", "x"}, mem)
	k2 := series.New("k2", []string{"c", "b|c", "c", "y"}, mem)
	df := New(k1, k2)
	defer df.Release()

	idx, err := NewKeyIndex(df, []string{"k1", "k2"})
	require.NoError(t, err)
	defer idx.Release()

	assert.Equal(t, [][]int{{0, 2}, {1}, {3}}, idx.Groups())
	assert.Equal(t, []int{0, 1, 3}, idx.First())
}

func TestKeyIndex_NullKeysGroupTogether(t *testing.T) {
	mem := memory.NewGoAllocator()

	k, err := series.NewNullable("k", []int64{1, 0, 0, 1}, []bool{true, false, false, true}, mem)
	require.NoError(t, err)
	df := New(k)
	defer df.Release()

	idx, err := NewKeyIndex(df, []string{"k"})
	require.NoError(t, err)
	defer idx.Release()

	assert.Equal(t, [][]int{{0, 3}, {1, 2}}, idx.Groups())
}

func TestDataFrame_LeftJoin(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	grid := New(
		series.New("client", []string{"C1", "C1", "C2", "C2"}, mem),
		series.New("period", []int64{1, 2, 1, 2}, mem),
	)
	defer grid.Release()

	data := New(
		series.New("period", []int64{2, 1, 1}, mem),
		series.New("client", []string{"C1", "C1", "C2"}, mem),
		series.New("sales", []float64{20, 10, 30}, mem),
	)
	defer data.Release()

	joined, err := grid.LeftJoin(data, []string{"client", "period"})
	require.NoError(t, err)
	defer joined.Release()

	assert.Equal(t, []string{"client", "period", "sales"}, joined.Columns())
	assert.Equal(t, 4, joined.Len())

	sales, _ := joined.Column("sales")
	assert.Equal(t, []float64{10, 20, 30, 0}, sales.(*series.Series[float64]).Values())
	assert.True(t, sales.IsNull(3))
}

func TestDataFrame_LeftJoin_Errors(t *testing.T) {
	mem := memory.NewGoAllocator()

	left := New(series.New("k", []int64{1}, mem))
	defer left.Release()
	right := New(series.New("k", []string{"1"}, mem))
	defer right.Release()

	_, err := left.LeftJoin(right, []string{"k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key type mismatch")

	_, err = left.LeftJoin(right, nil)
	require.Error(t, err)

	_, err = left.LeftJoin(right, []string{"missing"})
	require.Error(t, err)
}
