package varray

import (
	"fmt"

	"github.com/gogpu/geofield/indexmask"
	"github.com/gogpu/geofield/types"
)

// GSpan is a type-erased slice tagged with its value kind.
// The zero value is an empty span of invalid kind.
type GSpan struct {
	kind types.ValueKind
	data any
}

// NewGSpan allocates a zero-initialized span of n elements of kind k.
func NewGSpan(k types.ValueKind, n int) GSpan {
	return GSpan{kind: k, data: opsFor(k).newSlice(n)}
}

// GSpanOf wraps a typed slice. The slice is not copied.
func GSpanOf[T types.Value](data []T) GSpan {
	return GSpan{kind: types.KindOf[T](), data: data}
}

// GSpanFromAny wraps a boxed []T of kind k.
func GSpanFromAny(k types.ValueKind, data any) GSpan {
	_ = opsFor(k).length(data) // type check
	return GSpan{kind: k, data: data}
}

// SpanOf returns the typed slice behind s. It panics if T does not match
// the span's kind.
func SpanOf[T types.Value](s GSpan) []T {
	data, ok := s.data.([]T)
	if !ok && s.data != nil {
		panic(fmt.Sprintf("varray: span of kind %v accessed as %v", s.kind, types.KindOf[T]()))
	}
	return data
}

// Kind returns the value kind of the elements.
func (s GSpan) Kind() types.ValueKind { return s.kind }

// IsEmpty reports whether the span holds no storage.
func (s GSpan) IsEmpty() bool { return s.data == nil }

// Len returns the number of elements.
func (s GSpan) Len() int {
	if s.data == nil {
		return 0
	}
	return opsFor(s.kind).length(s.data)
}

// Data returns the boxed []T.
func (s GSpan) Data() any { return s.data }

// Get returns the boxed element at index i.
func (s GSpan) Get(i int) any { return opsFor(s.kind).get(s.data, i) }

// Set stores a boxed value of the span's kind at index i.
func (s GSpan) Set(i int, v any) { opsFor(s.kind).set(s.data, i, v) }

// Fill stores the boxed value v in every element.
func (s GSpan) Fill(v any) { opsFor(s.kind).fill(s.data, v) }

// CopyFrom copies the elements of src at the indices of mask.
// Both spans must have the same kind.
func (s GSpan) CopyFrom(mask indexmask.Mask, src GSpan) {
	if s.kind != src.kind {
		panic(fmt.Sprintf("varray: copy from %v span into %v span", src.kind, s.kind))
	}
	opsFor(s.kind).copyMasked(mask, src.data, s.data)
}

// Clone returns a deep copy of the span.
func (s GSpan) Clone() GSpan {
	if s.data == nil {
		return s
	}
	out := NewGSpan(s.kind, s.Len())
	out.CopyFrom(indexmask.FromSize(s.Len()), s)
	return out
}

// Equal reports whether both spans have the same kind and elements.
func (s GSpan) Equal(o GSpan) bool {
	if s.kind != o.kind || s.Len() != o.Len() {
		return false
	}
	ops := opsFor(s.kind)
	for i := range s.Len() {
		if !ops.equal(ops.get(s.data, i), ops.get(o.data, i)) {
			return false
		}
	}
	return true
}

// SameStorage reports whether both spans view the same backing array.
func (s GSpan) SameStorage(o GSpan) bool {
	if s.kind != o.kind || s.Len() == 0 || o.Len() == 0 {
		return false
	}
	ops := opsFor(s.kind)
	return ops.dataPtr(s.data) == ops.dataPtr(o.data)
}
