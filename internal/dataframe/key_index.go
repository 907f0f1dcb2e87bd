package dataframe

import (
	"encoding/binary"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	xxhash "github.com/cespare/xxhash/v2"
)

// KeyIndex groups the rows of a DataFrame by the tuple of values in a set of
// key columns. Rows are bucketed by an xxhash of the tuple and confirmed by
// comparing the values themselves, so distinct tuples never merge even when
// their hashes collide. Null keys compare equal to each other.
type KeyIndex struct {
	arrays  []arrow.Array
	buckets map[uint64][]int // tuple hash -> group ids
	groups  [][]int          // group id -> row indices, in first-appearance order
	digest  *xxhash.Digest
	scratch [binary.MaxVarintLen64]byte
}

// NewKeyIndex indexes df by the named key columns.
func NewKeyIndex(df *DataFrame, keys []string) (*KeyIndex, error) {
	arrays, err := df.Arrays("KeyIndex", keys...)
	if err != nil {
		return nil, err
	}

	idx := &KeyIndex{
		arrays:  arrays,
		buckets: make(map[uint64][]int),
		digest:  xxhash.New(),
	}

	for row := 0; row < df.Len(); row++ {
		h := idx.hashRow(arrays, row)
		group := idx.findGroup(h, arrays, row)
		if group < 0 {
			group = len(idx.groups)
			idx.groups = append(idx.groups, nil)
			idx.buckets[h] = append(idx.buckets[h], group)
		}
		idx.groups[group] = append(idx.groups[group], row)
	}

	return idx, nil
}

// Groups returns the row indices of each distinct key tuple, ordered by the
// first row at which the tuple appears.
func (k *KeyIndex) Groups() [][]int {
	return k.groups
}

// First returns the first row index of each distinct key tuple.
func (k *KeyIndex) First() []int {
	first := make([]int, len(k.groups))
	for g, rows := range k.groups {
		first[g] = rows[0]
	}
	return first
}

// Lookup returns the indexed rows whose key tuple equals row `row` of probe.
// probe must hold one array per key column, of matching types.
func (k *KeyIndex) Lookup(probe []arrow.Array, row int) []int {
	h := k.hashRow(probe, row)
	if g := k.findGroup(h, probe, row); g >= 0 {
		return k.groups[g]
	}
	return nil
}

// Release releases the key column references held by the index.
func (k *KeyIndex) Release() {
	ReleaseArrays(k.arrays)
	k.arrays = nil
}

func (k *KeyIndex) findGroup(h uint64, probe []arrow.Array, row int) int {
	for _, g := range k.buckets[h] {
		if TuplesEqual(k.arrays, k.groups[g][0], probe, row) {
			return g
		}
	}
	return -1
}

func (k *KeyIndex) hashRow(arrays []arrow.Array, row int) uint64 {
	d := k.digest
	d.Reset()
	for _, arr := range arrays {
		if arr.IsNull(row) {
			_, _ = d.Write([]byte{0})
			continue
		}
		_, _ = d.Write([]byte{1})
		switch typed := arr.(type) {
		case *array.String:
			v := typed.Value(row)
			n := binary.PutUvarint(k.scratch[:], uint64(len(v)))
			_, _ = d.Write(k.scratch[:n])
			_, _ = d.WriteString(v)
		case *array.Int64:
			k.writeUint64(uint64(typed.Value(row)))
		case *array.Int32:
			k.writeUint64(uint64(typed.Value(row)))
		case *array.Float64:
			k.writeUint64(math.Float64bits(typed.Value(row)))
		case *array.Float32:
			k.writeUint64(uint64(math.Float32bits(typed.Value(row))))
		case *array.Boolean:
			if typed.Value(row) {
				_, _ = d.Write([]byte{1})
			} else {
				_, _ = d.Write([]byte{0})
			}
		}
	}
	return d.Sum64()
}

func (k *KeyIndex) writeUint64(v uint64) {
	binary.LittleEndian.PutUint64(k.scratch[:8], v)
	_, _ = k.digest.Write(k.scratch[:8])
}

// TuplesEqual compares row i of the left arrays with row j of the right
// arrays column by column. Nulls equal nulls; mismatched types never match.
func TuplesEqual(left []arrow.Array, i int, right []arrow.Array, j int) bool {
	if len(left) != len(right) {
		return false
	}
	for c := range left {
		if !cellsEqual(left[c], i, right[c], j) {
			return false
		}
	}
	return true
}

func cellsEqual(a arrow.Array, i int, b arrow.Array, j int) bool {
	aNull, bNull := a.IsNull(i), b.IsNull(j)
	if aNull || bNull {
		return aNull && bNull
	}

	switch ta := a.(type) {
	case *array.String:
		tb, ok := b.(*array.String)
		return ok && ta.Value(i) == tb.Value(j)
	case *array.Int64:
		tb, ok := b.(*array.Int64)
		return ok && ta.Value(i) == tb.Value(j)
	case *array.Int32:
		tb, ok := b.(*array.Int32)
		return ok && ta.Value(i) == tb.Value(j)
	case *array.Float64:
		tb, ok := b.(*array.Float64)
		return ok && ta.Value(i) == tb.Value(j)
	case *array.Float32:
		tb, ok := b.(*array.Float32)
		return ok && ta.Value(i) == tb.Value(j)
	case *array.Boolean:
		tb, ok := b.(*array.Boolean)
		return ok && ta.Value(i) == tb.Value(j)
	default:
		return false
	}
}
