package attribute

import (
	"math"

	"github.com/gogpu/geofield/internal/parallel"
	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

// Groups maps every target element to the source elements it combines.
// Group i is Indices[Offsets[i]:Offsets[i+1]], or the index range
// [Offsets[i], Offsets[i+1]) when Indices is nil.
type Groups struct {
	Offsets []int
	Indices []int
}

// Size returns the number of groups.
func (g Groups) Size() int { return max(len(g.Offsets)-1, 0) }

// Len returns the number of sources of group i.
func (g Groups) Len(i int) int { return g.Offsets[i+1] - g.Offsets[i] }

// ForEach calls fn with every source index of group i.
func (g Groups) ForEach(i int, fn func(src int)) {
	if g.Indices == nil {
		for j := g.Offsets[i]; j < g.Offsets[i+1]; j++ {
			fn(j)
		}
		return
	}
	for _, j := range g.Indices[g.Offsets[i]:g.Offsets[i+1]] {
		fn(j)
	}
}

// Invert returns the groups mapping every source index in [0, n) to the
// groups containing it, in group order.
func (g Groups) Invert(n int) Groups {
	counts := make([]int, n+1)
	for i := range g.Size() {
		g.ForEach(i, func(src int) { counts[src+1]++ })
	}
	for i := 1; i <= n; i++ {
		counts[i] += counts[i-1]
	}
	fill := append([]int(nil), counts[:n]...)
	indices := make([]int, counts[n])
	for i := range g.Size() {
		g.ForEach(i, func(src int) {
			indices[fill[src]] = i
			fill[src]++
		})
	}
	return Groups{Offsets: counts, Indices: indices}
}

// BoolMix selects how booleans combine.
type BoolMix uint8

const (
	// MixAny is true when any source is true.
	MixAny BoolMix = iota
	// MixAll is true when every source is true.
	MixAll
)

// MixGroups returns one value per group combining the group's sources in
// src. Numeric kinds and colors average, integers rounding to nearest;
// booleans follow rule. Empty groups produce the default value. A single
// value source stays a single value.
func MixGroups(src varray.GVArray, groups Groups, rule BoolMix) varray.GVArray {
	n := groups.Size()
	if src.IsEmpty() {
		return varray.GVArray{}
	}
	if v, ok := src.Single(); ok {
		return varray.ForSingleAny(src.Kind(), v, n)
	}
	switch src.Kind() {
	case types.KindBool:
		return mixBool(varray.Typed[bool](src), groups, rule)
	case types.KindInt8:
		return mixWith(varray.Typed[int8](src), groups, int8Codec)
	case types.KindInt32:
		return mixWith(varray.Typed[int32](src), groups, int32Codec)
	case types.KindInt2:
		return mixWith(varray.Typed[types.Int2](src), groups, int2Codec)
	case types.KindFloat:
		return mixWith(varray.Typed[float32](src), groups, floatCodec)
	case types.KindFloat2:
		return mixWith(varray.Typed[types.Float2](src), groups, float2Codec)
	case types.KindFloat3:
		return mixWith(varray.Typed[types.Float3](src), groups, float3Codec)
	case types.KindColor:
		return mixWith(varray.Typed[types.ColorGeometry4f](src), groups, colorCodec)
	case types.KindByteColor:
		return mixWith(varray.Typed[types.ColorGeometry4b](src), groups, byteColorCodec)
	}
	return varray.GVArray{}
}

// ScatterGroups returns an array of n elements where every source index of
// group i holds src[i]. Indices in no group hold the default value.
func ScatterGroups(src varray.GVArray, groups Groups, n int) varray.GVArray {
	if src.IsEmpty() {
		return varray.GVArray{}
	}
	if v, ok := src.Single(); ok {
		return varray.ForSingleAny(src.Kind(), v, n)
	}
	out := varray.NewGSpan(src.Kind(), n)
	parallel.For(groups.Size(), parallel.GrainSmall, func(start, end int) {
		for i := start; i < end; i++ {
			v := src.Get(i)
			groups.ForEach(i, func(dst int) { out.Set(dst, v) })
		}
	})
	return varray.ForGSpan(out)
}

// Gather returns an array of len(indices) elements where element i is
// src[indices[i]].
func Gather(src varray.GVArray, indices []int) varray.GVArray {
	if src.IsEmpty() {
		return varray.GVArray{}
	}
	if v, ok := src.Single(); ok {
		return varray.ForSingleAny(src.Kind(), v, len(indices))
	}
	out := varray.NewGSpan(src.Kind(), len(indices))
	parallel.For(len(indices), parallel.GrainElements, func(start, end int) {
		for i := start; i < end; i++ {
			out.Set(i, src.Get(indices[i]))
		}
	})
	return varray.ForGSpan(out)
}

func mixBool(src varray.VArray[bool], groups Groups, rule BoolMix) varray.GVArray {
	out := make([]bool, groups.Size())
	parallel.For(len(out), parallel.GrainSmall, func(start, end int) {
		for i := start; i < end; i++ {
			if groups.Len(i) == 0 {
				continue
			}
			acc := rule == MixAll
			groups.ForEach(i, func(j int) {
				if rule == MixAll {
					acc = acc && src.Get(j)
				} else {
					acc = acc || src.Get(j)
				}
			})
			out[i] = acc
		}
	})
	return varray.FromTyped(varray.ForSpan(out))
}

// codec maps a value to and from up to four float64 components for
// averaging.
type codec[T types.Value] struct {
	to   func(T) [4]float64
	from func([4]float64) T
}

func mixWith[T types.Value](src varray.VArray[T], groups Groups, c codec[T]) varray.GVArray {
	out := make([]T, groups.Size())
	parallel.For(len(out), parallel.GrainSmall, func(start, end int) {
		for i := start; i < end; i++ {
			n := groups.Len(i)
			if n == 0 {
				continue
			}
			var sum [4]float64
			groups.ForEach(i, func(j int) {
				v := c.to(src.Get(j))
				for k := range sum {
					sum[k] += v[k]
				}
			})
			for k := range sum {
				sum[k] /= float64(n)
			}
			out[i] = c.from(sum)
		}
	})
	return varray.FromTyped(varray.ForSpan(out))
}

func roundClamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(math.Round(v), lo), hi)
}

var (
	int8Codec = codec[int8]{
		to:   func(v int8) [4]float64 { return [4]float64{float64(v)} },
		from: func(s [4]float64) int8 { return int8(roundClamp(s[0], math.MinInt8, math.MaxInt8)) },
	}
	int32Codec = codec[int32]{
		to:   func(v int32) [4]float64 { return [4]float64{float64(v)} },
		from: func(s [4]float64) int32 { return int32(roundClamp(s[0], math.MinInt32, math.MaxInt32)) },
	}
	int2Codec = codec[types.Int2]{
		to: func(v types.Int2) [4]float64 { return [4]float64{float64(v.X), float64(v.Y)} },
		from: func(s [4]float64) types.Int2 {
			return types.Int2{
				X: int32(roundClamp(s[0], math.MinInt32, math.MaxInt32)),
				Y: int32(roundClamp(s[1], math.MinInt32, math.MaxInt32)),
			}
		},
	}
	floatCodec = codec[float32]{
		to:   func(v float32) [4]float64 { return [4]float64{float64(v)} },
		from: func(s [4]float64) float32 { return float32(s[0]) },
	}
	float2Codec = codec[types.Float2]{
		to:   func(v types.Float2) [4]float64 { return [4]float64{float64(v[0]), float64(v[1])} },
		from: func(s [4]float64) types.Float2 { return types.Float2{float32(s[0]), float32(s[1])} },
	}
	float3Codec = codec[types.Float3]{
		to: func(v types.Float3) [4]float64 {
			return [4]float64{float64(v[0]), float64(v[1]), float64(v[2])}
		},
		from: func(s [4]float64) types.Float3 {
			return types.Float3{float32(s[0]), float32(s[1]), float32(s[2])}
		},
	}
	colorCodec = codec[types.ColorGeometry4f]{
		to: func(c types.ColorGeometry4f) [4]float64 {
			return [4]float64{float64(c.R), float64(c.G), float64(c.B), float64(c.A)}
		},
		from: func(s [4]float64) types.ColorGeometry4f {
			return types.ColorGeometry4f{R: float32(s[0]), G: float32(s[1]), B: float32(s[2]), A: float32(s[3])}
		},
	}
	// Byte colors are mixed in linear space.
	byteColorCodec = codec[types.ColorGeometry4b]{
		to: func(c types.ColorGeometry4b) [4]float64 { return colorCodec.to(c.Decode()) },
		from: func(s [4]float64) types.ColorGeometry4b {
			return colorCodec.from(s).Encode()
		},
	}
)
