package varray

import (
	"fmt"

	"github.com/gogpu/geofield/indexmask"
	"github.com/gogpu/geofield/types"
)

// erased is the kind-agnostic view of a typed virtual array.
type erased interface {
	kind() types.ValueKind
	size() int
	getAny(i int) any
	spanAny() (GSpan, bool)
	singleAny() (any, bool)
	materializeAny(mask indexmask.Mask, dst GSpan)
	typed() any
}

// erasedMutable adds writes to erased.
type erasedMutable interface {
	erased
	setAny(i int, v any)
	typedMutable() any
}

type typedVArray[T types.Value] struct {
	v VArray[T]
}

func (g typedVArray[T]) kind() types.ValueKind { return types.KindOf[T]() }
func (g typedVArray[T]) size() int             { return g.v.Size() }
func (g typedVArray[T]) getAny(i int) any      { return g.v.Get(i) }
func (g typedVArray[T]) typed() any            { return g.v }
func (g typedVArray[T]) spanAny() (GSpan, bool) {
	if span, ok := g.v.Span(); ok {
		return GSpanOf(span), true
	}
	return GSpan{}, false
}
func (g typedVArray[T]) singleAny() (any, bool) {
	if s, ok := g.v.Single(); ok {
		return s, true
	}
	return nil, false
}
func (g typedVArray[T]) materializeAny(mask indexmask.Mask, dst GSpan) {
	g.v.MaterializeTo(mask, SpanOf[T](dst))
}

type typedMutableVArray[T types.Value] struct {
	v MutableVArray[T]
}

func (g typedMutableVArray[T]) kind() types.ValueKind { return types.KindOf[T]() }
func (g typedMutableVArray[T]) size() int             { return g.v.Size() }
func (g typedMutableVArray[T]) getAny(i int) any      { return g.v.Get(i) }
func (g typedMutableVArray[T]) setAny(i int, v any)   { g.v.Set(i, v.(T)) }
func (g typedMutableVArray[T]) typed() any            { return VArray[T](g.v) }
func (g typedMutableVArray[T]) typedMutable() any     { return g.v }
func (g typedMutableVArray[T]) spanAny() (GSpan, bool) {
	return typedVArray[T]{v: g.v}.spanAny()
}
func (g typedMutableVArray[T]) singleAny() (any, bool) {
	return typedVArray[T]{v: g.v}.singleAny()
}
func (g typedMutableVArray[T]) materializeAny(mask indexmask.Mask, dst GSpan) {
	g.v.MaterializeTo(mask, SpanOf[T](dst))
}

// GVArray is a read-only virtual array whose element kind is known only at
// runtime. The zero value is the empty array, which signals "no data": an
// unsupported input, an absent attribute or an impossible conversion.
type GVArray struct {
	impl erased
}

// FromTyped erases the element type of v.
func FromTyped[T types.Value](v VArray[T]) GVArray {
	if v == nil {
		return GVArray{}
	}
	return GVArray{impl: typedVArray[T]{v: v}}
}

// ForGSpan returns a virtual array viewing span. The data is not copied.
func ForGSpan(span GSpan) GVArray {
	if span.IsEmpty() {
		return GVArray{}
	}
	return GVArray{impl: opsFor(span.kind).forSpan(span.data)}
}

// ForSingleAny returns a virtual array repeating the boxed value v of kind k.
func ForSingleAny(k types.ValueKind, v any, size int) GVArray {
	return GVArray{impl: opsFor(k).forSingle(v, size)}
}

// ForSingleDefault returns a virtual array of size default values of kind k.
func ForSingleDefault(k types.ValueKind, size int) GVArray {
	return ForSingleAny(k, types.DefaultValue(k), size)
}

// Typed returns the typed view of g. It panics if T does not match the
// array's kind; check Kind first when it is not known.
func Typed[T types.Value](g GVArray) VArray[T] {
	if g.impl == nil {
		panic("varray: typed access to empty array")
	}
	v, ok := g.impl.typed().(VArray[T])
	if !ok {
		panic(fmt.Sprintf("varray: array of kind %v accessed as %v", g.impl.kind(), types.KindOf[T]()))
	}
	return v
}

// IsEmpty reports whether g carries no array.
func (g GVArray) IsEmpty() bool { return g.impl == nil }

// Kind returns the element kind, or KindInvalid for the empty array.
func (g GVArray) Kind() types.ValueKind {
	if g.impl == nil {
		return types.KindInvalid
	}
	return g.impl.kind()
}

// Size returns the number of elements; zero for the empty array.
func (g GVArray) Size() int {
	if g.impl == nil {
		return 0
	}
	return g.impl.size()
}

// Get returns the boxed element at index i.
func (g GVArray) Get(i int) any { return g.impl.getAny(i) }

// IsSpan reports whether the elements are stored contiguously.
func (g GVArray) IsSpan() bool {
	if g.impl == nil {
		return false
	}
	_, ok := g.impl.spanAny()
	return ok
}

// Span returns the contiguous storage viewed by g, when there is one.
func (g GVArray) Span() (GSpan, bool) {
	if g.impl == nil {
		return GSpan{}, false
	}
	return g.impl.spanAny()
}

// IsSingle reports whether every element is the same value by construction.
func (g GVArray) IsSingle() bool {
	if g.impl == nil {
		return false
	}
	_, ok := g.impl.singleAny()
	return ok
}

// Single returns the common boxed value of a single-value array.
func (g GVArray) Single() (any, bool) {
	if g.impl == nil {
		return nil, false
	}
	return g.impl.singleAny()
}

// MaterializeTo writes the elements at the indices of mask into dst.
// dst must have g's kind and be at least mask.MinArraySize() long.
func (g GVArray) MaterializeTo(mask indexmask.Mask, dst GSpan) {
	if dst.kind != g.Kind() {
		panic(fmt.Sprintf("varray: materialize %v array into %v span", g.Kind(), dst.kind))
	}
	g.impl.materializeAny(mask, dst)
}

// Materialize copies all elements into a newly allocated span.
func (g GVArray) Materialize() GSpan {
	if g.impl == nil {
		return GSpan{}
	}
	out := NewGSpan(g.Kind(), g.Size())
	g.impl.materializeAny(indexmask.FromSize(g.Size()), out)
	return out
}

// GMutableVArray is a type-erased virtual array that supports writes.
type GMutableVArray struct {
	impl erasedMutable
}

// FromTypedMutable erases the element type of v.
func FromTypedMutable[T types.Value](v MutableVArray[T]) GMutableVArray {
	if v == nil {
		return GMutableVArray{}
	}
	return GMutableVArray{impl: typedMutableVArray[T]{v: v}}
}

// ForGMutableSpan returns a mutable virtual array viewing span.
func ForGMutableSpan(span GSpan) GMutableVArray {
	if span.IsEmpty() {
		return GMutableVArray{}
	}
	return GMutableVArray{impl: opsFor(span.kind).forMutableSpan(span.data)}
}

// TypedMutable returns the typed view of g. It panics on kind mismatch.
func TypedMutable[T types.Value](g GMutableVArray) MutableVArray[T] {
	if g.impl == nil {
		panic("varray: typed access to empty array")
	}
	v, ok := g.impl.typedMutable().(MutableVArray[T])
	if !ok {
		panic(fmt.Sprintf("varray: array of kind %v accessed as %v", g.impl.kind(), types.KindOf[T]()))
	}
	return v
}

// IsEmpty reports whether g carries no array.
func (g GMutableVArray) IsEmpty() bool { return g.impl == nil }

// Kind returns the element kind, or KindInvalid for the empty array.
func (g GMutableVArray) Kind() types.ValueKind {
	if g.impl == nil {
		return types.KindInvalid
	}
	return g.impl.kind()
}

// Size returns the number of elements.
func (g GMutableVArray) Size() int {
	if g.impl == nil {
		return 0
	}
	return g.impl.size()
}

// Get returns the boxed element at index i.
func (g GMutableVArray) Get(i int) any { return g.impl.getAny(i) }

// Set stores the boxed value v at index i.
func (g GMutableVArray) Set(i int, v any) { g.impl.setAny(i, v) }

// Span returns the contiguous storage, when there is one.
func (g GMutableVArray) Span() (GSpan, bool) {
	if g.impl == nil {
		return GSpan{}, false
	}
	return g.impl.spanAny()
}

// ReadOnly returns a read-only view of the same array.
func (g GMutableVArray) ReadOnly() GVArray {
	if g.impl == nil {
		return GVArray{}
	}
	return GVArray{impl: g.impl}
}

// SetAllFrom writes the elements of src at the indices of mask into g.
func (g GMutableVArray) SetAllFrom(mask indexmask.Mask, src GVArray) {
	if dst, ok := g.Span(); ok {
		src.MaterializeTo(mask, dst)
		return
	}
	mask.ForEachIndex(func(i int) { g.Set(i, src.Get(i)) })
}
