// Package conversion implements the implicit conversions between value kinds.
//
// Every ordered pair of distinct kinds has a registered conversion, so
// IsConvertible only fails for invalid kinds. The process-wide registry is
// built once on first use and is read-only afterwards; lookups need no
// locking.
package conversion

import (
	"fmt"
	"sync"

	"github.com/gogpu/geofield/indexmask"
	"github.com/gogpu/geofield/internal/parallel"
	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

// Converter converts values of one kind into another.
type Converter struct {
	From types.ValueKind
	To   types.ValueKind

	single func(v any) any
	spanN  func(src, dst varray.GSpan)
	wrap   func(g varray.GVArray) varray.GVArray
}

// Convert converts one boxed value.
func (c *Converter) Convert(v any) any { return c.single(v) }

// Registry maps ordered kind pairs to converters.
type Registry struct {
	table [types.NumKinds][types.NumKinds]*Converter
}

// Pair is an ordered kind pair.
type Pair struct {
	From, To types.ValueKind
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r := &Registry{}
	registerDefaults(r)
	return r
})

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry() }

// add registers fn as the conversion from From to To.
func add[From, To types.Value](r *Registry, fn func(From) To) {
	from, to := types.KindOf[From](), types.KindOf[To]()
	r.table[from][to] = &Converter{
		From:   from,
		To:     to,
		single: func(v any) any { return fn(v.(From)) },
		spanN: func(src, dst varray.GSpan) {
			s, d := varray.SpanOf[From](src), varray.SpanOf[To](dst)
			parallel.For(len(s), parallel.GrainElements, func(start, end int) {
				for i := start; i < end; i++ {
					d[i] = fn(s[i])
				}
			})
		},
		wrap: func(g varray.GVArray) varray.GVArray {
			return varray.FromTyped(varray.ForConverted(varray.Typed[From](g), fn))
		},
	}
}

// Lookup returns the converter registered for from → to.
func (r *Registry) Lookup(from, to types.ValueKind) (*Converter, bool) {
	if !from.IsValid() || !to.IsValid() {
		return nil, false
	}
	c := r.table[from][to]
	return c, c != nil
}

// IsConvertible reports whether values of kind from can become values of
// kind to. Identical valid kinds are always convertible.
func (r *Registry) IsConvertible(from, to types.ValueKind) bool {
	if from == to {
		return from.IsValid()
	}
	_, ok := r.Lookup(from, to)
	return ok
}

// ConvertValue converts the boxed value v of kind from into kind to.
// Identical kinds return v unchanged. It panics if the pair is not
// convertible; check IsConvertible first.
func (r *Registry) ConvertValue(from, to types.ValueKind, v any) any {
	if from == to {
		return v
	}
	c, ok := r.Lookup(from, to)
	if !ok {
		panic(fmt.Sprintf("conversion: %v is not convertible to %v", from, to))
	}
	return c.single(v)
}

// ConvertSpan overwrites every element of dst with the converted element of
// src. Both spans must have the same length.
func (r *Registry) ConvertSpan(src, dst varray.GSpan) {
	if src.Len() != dst.Len() {
		panic(fmt.Sprintf("conversion: span length mismatch %d != %d", src.Len(), dst.Len()))
	}
	if src.Len() == 0 {
		return
	}
	if src.Kind() == dst.Kind() {
		dst.CopyFrom(indexmask.FromSize(src.Len()), src)
		return
	}
	c, ok := r.Lookup(src.Kind(), dst.Kind())
	if !ok {
		panic(fmt.Sprintf("conversion: %v is not convertible to %v", src.Kind(), dst.Kind()))
	}
	c.spanN(src, dst)
}

// TryConvert returns a view of g as kind to. Matching kinds return g itself;
// impossible conversions return the empty array. Otherwise the result
// converts lazily on access, so nothing is allocated until it is
// materialized.
func (r *Registry) TryConvert(g varray.GVArray, to types.ValueKind) varray.GVArray {
	if g.IsEmpty() {
		return varray.GVArray{}
	}
	if g.Kind() == to {
		return g
	}
	c, ok := r.Lookup(g.Kind(), to)
	if !ok {
		return varray.GVArray{}
	}
	return c.wrap(g)
}

// Pairs lists every registered pair in kind order.
func (r *Registry) Pairs() []Pair {
	var out []Pair
	for _, from := range types.Kinds {
		for _, to := range types.Kinds {
			if r.table[from][to] != nil {
				out = append(out, Pair{From: from, To: to})
			}
		}
	}
	return out
}

// Convert converts a typed value with the default registry.
// It panics if the pair is not convertible.
func Convert[From, To types.Value](v From) To {
	return Default().ConvertValue(types.KindOf[From](), types.KindOf[To](), v).(To)
}

// TryConvert is Default().TryConvert.
func TryConvert(g varray.GVArray, to types.ValueKind) varray.GVArray {
	return Default().TryConvert(g, to)
}

// IsConvertible is Default().IsConvertible.
func IsConvertible(from, to types.ValueKind) bool {
	return Default().IsConvertible(from, to)
}
