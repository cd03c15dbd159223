package varray

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/geofield/indexmask"
	"github.com/gogpu/geofield/types"
)

// kindOps bridges a runtime kind tag to the generic implementation for the
// matching Go type.
type kindOps interface {
	newSlice(n int) any
	length(data any) int
	get(data any, i int) any
	set(data any, i int, v any)
	copyMasked(mask indexmask.Mask, src, dst any)
	fill(data any, v any)
	forSpan(data any) erased
	forMutableSpan(data any) erasedMutable
	forSingle(v any, n int) erased
	equal(a, b any) bool
	dataPtr(data any) unsafe.Pointer
}

type typedOps[T types.Value] struct{}

func (typedOps[T]) newSlice(n int) any      { return make([]T, n) }
func (typedOps[T]) length(data any) int     { return len(data.([]T)) }
func (typedOps[T]) get(data any, i int) any { return data.([]T)[i] }
func (typedOps[T]) set(data any, i int, v any) {
	data.([]T)[i] = v.(T)
}
func (typedOps[T]) copyMasked(mask indexmask.Mask, src, dst any) {
	s, d := src.([]T), dst.([]T)
	if start, size, ok := mask.ToRange(); ok {
		copy(d[start:start+size], s[start:start+size])
		return
	}
	mask.ForEachIndex(func(i int) { d[i] = s[i] })
}
func (typedOps[T]) fill(data any, v any) {
	d, value := data.([]T), v.(T)
	for i := range d {
		d[i] = value
	}
}
func (typedOps[T]) forSpan(data any) erased {
	return typedVArray[T]{v: ForSpan(data.([]T))}
}
func (typedOps[T]) forMutableSpan(data any) erasedMutable {
	return typedMutableVArray[T]{v: ForMutableSpan(data.([]T))}
}
func (typedOps[T]) forSingle(v any, n int) erased {
	return typedVArray[T]{v: ForSingle(v.(T), n)}
}
func (typedOps[T]) equal(a, b any) bool {
	return a.(T) == b.(T)
}
func (typedOps[T]) dataPtr(data any) unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(data.([]T)))
}

var kindTable = [types.NumKinds]kindOps{
	types.KindBool:      typedOps[bool]{},
	types.KindInt8:      typedOps[int8]{},
	types.KindInt32:     typedOps[int32]{},
	types.KindInt2:      typedOps[types.Int2]{},
	types.KindFloat:     typedOps[float32]{},
	types.KindFloat2:    typedOps[types.Float2]{},
	types.KindFloat3:    typedOps[types.Float3]{},
	types.KindColor:     typedOps[types.ColorGeometry4f]{},
	types.KindByteColor: typedOps[types.ColorGeometry4b]{},
}

func opsFor(k types.ValueKind) kindOps {
	if !k.IsValid() {
		panic(fmt.Sprintf("varray: invalid value kind %v", k))
	}
	return kindTable[k]
}

// ValuesEqual compares two boxed values of kind k.
func ValuesEqual(k types.ValueKind, a, b any) bool {
	return opsFor(k).equal(a, b)
}
