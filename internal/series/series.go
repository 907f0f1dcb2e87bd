// Package series provides data structures for column operations
package series

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Column is the type-erased view of a Series.
type Column interface {
	Name() string
	Len() int
	DataType() arrow.DataType
	IsNull(index int) bool
	String() string
	Array() arrow.Array
	Release()
	GetAsString(index int) string
}

// Series represents a typed data column with Apache Arrow backend
type Series[T any] struct {
	name  string
	array arrow.Array
}

// New creates a new Series from a slice of values. It panics on unsupported
// element types; use NewSafe when the type is not known statically.
func New[T any](name string, values []T, mem memory.Allocator) *Series[T] {
	s, err := NewNullable(name, values, nil, mem)
	if err != nil {
		panic(err.Error())
	}
	return s
}

// NewSafe is New returning an error instead of panicking.
func NewSafe[T any](name string, values []T, mem memory.Allocator) (*Series[T], error) {
	return NewNullable(name, values, nil, mem)
}

// NewNullable creates a Series whose validity is given by valid. A nil valid
// slice marks every value as present; otherwise valid must match values in
// length and false entries become nulls.
func NewNullable[T any](name string, values []T, valid []bool, mem memory.Allocator) (*Series[T], error) {
	if valid != nil && len(valid) != len(values) {
		return nil, fmt.Errorf("series %s: validity length %d does not match %d values", name, len(valid), len(values))
	}
	if mem == nil {
		mem = memory.NewGoAllocator()
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
	default:
		return nil, fmt.Errorf("unsupported type: %T", values)
	}

	return &Series[T]{
		name:  name,
		array: arr,
	}, nil
}

// FromArray wraps an existing Arrow array in a Series of the matching Go
// type. The array is retained; the caller keeps its own reference.
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
	default:
		return nil, fmt.Errorf("unsupported array type: %s", arr.DataType())
	}
}

func wrap[T any](name string, arr arrow.Array) *Series[T] {
	arr.Retain()
	return &Series[T]{name: name, array: arr}
}

// Rename returns a Series sharing this Series' data under a new name.
func Rename(s Column, name string) (Column, error) {
	arr := s.Array()
	defer arr.Release()
	return FromArray(name, arr)
}

// Name returns the column name
func (s *Series[T]) Name() string {
	return s.name
}

// Len returns the length of the series
func (s *Series[T]) Len() int {
	return s.array.Len()
}

// Values returns the data as a Go slice. Null slots hold the zero value.
func (s *Series[T]) Values() []T {
	result := make([]T, s.array.Len())
	for i := range result {
		result[i] = s.Value(i)
	}
	return result
}

// Valid returns the validity of every slot.
func (s *Series[T]) Valid() []bool {
	valid := make([]bool, s.array.Len())
	for i := range valid {
		valid[i] = s.array.IsValid(i)
	}
	return valid
}

// Value returns the value at the given index, or the zero value when the
// index is out of range or the slot is null.
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
	}

	return result
}

// GetAsString formats the value at index; nulls format as the empty string.
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
		return strconv.FormatFloat(arr.Value(index), 'g', -1, 64)
	case *array.Float32:
		return strconv.FormatFloat(float64(arr.Value(index)), 'g', -1, 32)
	case *array.Boolean:
		return strconv.FormatBool(arr.Value(index))
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

// NullN returns the number of null slots.
func (s *Series[T]) NullN() int {
	return s.array.NullN()
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

// Release releases the underlying Arrow memory
func (s *Series[T]) Release() {
	if s.array != nil {
		s.array.Release()
	}
}
