// Package varray provides virtual arrays: indexable sequences that hide
// whether values live in a contiguous slice, are a single repeated value or
// are computed on access.
//
// VArray[T] is the typed interface. GVArray wraps a VArray of any value kind
// behind a runtime kind tag so attribute and field code can pass arrays
// around without knowing the element type. Virtual arrays are cheap to
// construct and never outlive the storage they view.
package varray

import (
	"github.com/gogpu/geofield/indexmask"
	"github.com/gogpu/geofield/types"
)

// VArray is a read-only typed virtual array.
type VArray[T types.Value] interface {
	// Size returns the number of elements.
	Size() int
	// Get returns the element at index i, 0 <= i < Size().
	Get(i int) T
	// Span returns the contiguous backing storage when there is one.
	// Callers must not modify the returned slice.
	Span() ([]T, bool)
	// Single returns the common value when every element is equal by
	// construction.
	Single() (T, bool)
	// MaterializeTo writes element i into dst[i] for every index of mask.
	MaterializeTo(mask indexmask.Mask, dst []T)
}

// MutableVArray is a typed virtual array that supports writes.
type MutableVArray[T types.Value] interface {
	VArray[T]
	// Set stores v at index i.
	Set(i int, v T)
}

// spanVArray views a slice.
type spanVArray[T types.Value] struct {
	data []T
}

// ForSpan returns a virtual array viewing data. The slice is not copied.
func ForSpan[T types.Value](data []T) VArray[T] {
	return spanVArray[T]{data: data}
}

// ForMutableSpan returns a mutable virtual array viewing data.
func ForMutableSpan[T types.Value](data []T) MutableVArray[T] {
	return spanVArray[T]{data: data}
}

func (v spanVArray[T]) Size() int          { return len(v.data) }
func (v spanVArray[T]) Get(i int) T        { return v.data[i] }
func (v spanVArray[T]) Set(i int, value T) { v.data[i] = value }
func (v spanVArray[T]) Span() ([]T, bool)  { return v.data, true }
func (v spanVArray[T]) Single() (T, bool) {
	var zero T
	return zero, false
}
func (v spanVArray[T]) MaterializeTo(mask indexmask.Mask, dst []T) {
	if start, size, ok := mask.ToRange(); ok {
		copy(dst[start:start+size], v.data[start:start+size])
		return
	}
	mask.ForEachIndex(func(i int) { dst[i] = v.data[i] })
}

// singleVArray repeats one value.
type singleVArray[T types.Value] struct {
	value T
	size  int
}

// ForSingle returns a virtual array of size copies of value.
func ForSingle[T types.Value](value T, size int) VArray[T] {
	return singleVArray[T]{value: value, size: size}
}

func (v singleVArray[T]) Size() int         { return v.size }
func (v singleVArray[T]) Get(int) T         { return v.value }
func (v singleVArray[T]) Span() ([]T, bool) { return nil, false }
func (v singleVArray[T]) Single() (T, bool) { return v.value, true }
func (v singleVArray[T]) MaterializeTo(mask indexmask.Mask, dst []T) {
	mask.ForEachIndex(func(i int) { dst[i] = v.value })
}

// funcVArray computes elements on access.
type funcVArray[T types.Value] struct {
	size int
	fn   func(i int) T
}

// ForFunc returns a virtual array whose element i is fn(i).
// fn must be safe for concurrent calls.
func ForFunc[T types.Value](size int, fn func(i int) T) VArray[T] {
	return funcVArray[T]{size: size, fn: fn}
}

func (v funcVArray[T]) Size() int         { return v.size }
func (v funcVArray[T]) Get(i int) T       { return v.fn(i) }
func (v funcVArray[T]) Span() ([]T, bool) { return nil, false }
func (v funcVArray[T]) Single() (T, bool) {
	var zero T
	return zero, false
}
func (v funcVArray[T]) MaterializeTo(mask indexmask.Mask, dst []T) {
	mask.ForEachIndex(func(i int) { dst[i] = v.fn(i) })
}

// convertedVArray applies an element conversion lazily.
type convertedVArray[From, To types.Value] struct {
	src VArray[From]
	fn  func(From) To
}

// ForConverted returns a virtual array that converts src element-wise on
// access and materialization. No buffer is allocated.
func ForConverted[From, To types.Value](src VArray[From], fn func(From) To) VArray[To] {
	return convertedVArray[From, To]{src: src, fn: fn}
}

func (v convertedVArray[From, To]) Size() int          { return v.src.Size() }
func (v convertedVArray[From, To]) Get(i int) To       { return v.fn(v.src.Get(i)) }
func (v convertedVArray[From, To]) Span() ([]To, bool) { return nil, false }
func (v convertedVArray[From, To]) Single() (To, bool) {
	if s, ok := v.src.Single(); ok {
		return v.fn(s), true
	}
	var zero To
	return zero, false
}
func (v convertedVArray[From, To]) MaterializeTo(mask indexmask.Mask, dst []To) {
	if s, ok := v.src.Single(); ok {
		c := v.fn(s)
		mask.ForEachIndex(func(i int) { dst[i] = c })
		return
	}
	if span, ok := v.src.Span(); ok {
		mask.ForEachIndex(func(i int) { dst[i] = v.fn(span[i]) })
		return
	}
	mask.ForEachIndex(func(i int) { dst[i] = v.fn(v.src.Get(i)) })
}

// Materialize copies every element of v into a new slice.
func Materialize[T types.Value](v VArray[T]) []T {
	if span, ok := v.Span(); ok {
		return append([]T(nil), span...)
	}
	out := make([]T, v.Size())
	v.MaterializeTo(indexmask.FromSize(v.Size()), out)
	return out
}
