package conversion

import (
	"math"

	"github.com/gogpu/geofield/internal/color"
	"github.com/gogpu/geofield/types"
)

type (
	int2   = types.Int2
	float2 = types.Float2
	float3 = types.Float3
	colorF = types.ColorGeometry4f
	colorB = types.ColorGeometry4b
)

func b2f(v bool) float32 {
	if v {
		return 1
	}
	return 0
}

func b2i(v bool) int32 {
	if v {
		return 1
	}
	return 0
}

// floatToInt32 truncates toward zero, clamping to the int32 range.
// NaN maps to zero.
func floatToInt32(v float32) int32 {
	switch {
	case v != v:
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int32(v)
}

func floatToInt8(v float32) int8 {
	switch {
	case v != v:
		return 0
	case v >= math.MaxInt8:
		return math.MaxInt8
	case v <= math.MinInt8:
		return math.MinInt8
	}
	return int8(v)
}

func int32ToInt8(v int32) int8 {
	return int8(min(max(v, math.MinInt8), math.MaxInt8))
}

func f3ToColor(v float3) colorF { return colorF{R: v[0], G: v[1], B: v[2], A: 1} }

func grayColor(v float32) colorF { return colorF{R: v, G: v, B: v, A: 1} }

func mean2(v float2) float32 { return (v[0] + v[1]) / 2 }

func mean3(v float3) float32 { return (v[0] + v[1] + v[2]) / 3 }

func registerDefaults(r *Registry) {
	registerFromBool(r)
	registerFromInt8(r)
	registerFromInt32(r)
	registerFromInt2(r)
	registerFromFloat(r)
	registerFromFloat2(r)
	registerFromFloat3(r)
	registerFromColor(r)
	registerFromByteColor(r)
}

func registerFromBool(r *Registry) {
	add(r, func(a bool) int8 { return int8(b2i(a)) })
	add(r, func(a bool) int32 { return b2i(a) })
	add(r, func(a bool) int2 { return int2{X: b2i(a), Y: b2i(a)} })
	add(r, func(a bool) float32 { return b2f(a) })
	add(r, func(a bool) float2 { return float2{b2f(a), b2f(a)} })
	add(r, func(a bool) float3 { return float3{b2f(a), b2f(a), b2f(a)} })
	add(r, func(a bool) colorF { return grayColor(b2f(a)) })
	add(r, func(a bool) colorB { return grayColor(b2f(a)).Encode() })
}

func registerFromInt8(r *Registry) {
	add(r, func(a int8) bool { return a > 0 })
	add(r, func(a int8) int32 { return int32(a) })
	add(r, func(a int8) int2 { return int2{X: int32(a), Y: int32(a)} })
	add(r, func(a int8) float32 { return float32(a) })
	add(r, func(a int8) float2 { return float2{float32(a), float32(a)} })
	add(r, func(a int8) float3 { return float3{float32(a), float32(a), float32(a)} })
	add(r, func(a int8) colorF { return grayColor(float32(a)) })
	add(r, func(a int8) colorB { return grayColor(float32(a)).Encode() })
}

func registerFromInt32(r *Registry) {
	add(r, func(a int32) bool { return a > 0 })
	add(r, int32ToInt8)
	add(r, func(a int32) int2 { return int2{X: a, Y: a} })
	add(r, func(a int32) float32 { return float32(a) })
	add(r, func(a int32) float2 { return float2{float32(a), float32(a)} })
	add(r, func(a int32) float3 { return float3{float32(a), float32(a), float32(a)} })
	add(r, func(a int32) colorF { return grayColor(float32(a)) })
	add(r, func(a int32) colorB { return grayColor(float32(a)).Encode() })
}

func registerFromInt2(r *Registry) {
	add(r, func(a int2) bool { return a.X != 0 || a.Y != 0 })
	add(r, func(a int2) int8 { return int32ToInt8(int32((int64(a.X) + int64(a.Y)) / 2)) })
	add(r, func(a int2) int32 { return int32((int64(a.X) + int64(a.Y)) / 2) })
	add(r, func(a int2) float32 { return (float32(a.X) + float32(a.Y)) / 2 })
	add(r, func(a int2) float2 { return float2{float32(a.X), float32(a.Y)} })
	add(r, func(a int2) float3 { return float3{float32(a.X), float32(a.Y), 0} })
	add(r, func(a int2) colorF { return colorF{R: float32(a.X), G: float32(a.Y), A: 1} })
	add(r, func(a int2) colorB { return colorF{R: float32(a.X), G: float32(a.Y), A: 1}.Encode() })
}

func registerFromFloat(r *Registry) {
	add(r, func(a float32) bool { return a > 0 })
	add(r, floatToInt8)
	add(r, floatToInt32)
	add(r, func(a float32) int2 { return int2{X: floatToInt32(a), Y: floatToInt32(a)} })
	add(r, func(a float32) float2 { return float2{a, a} })
	add(r, func(a float32) float3 { return float3{a, a, a} })
	add(r, grayColor)
	add(r, func(a float32) colorB { return grayColor(a).Encode() })
}

func registerFromFloat2(r *Registry) {
	add(r, func(a float2) bool { return a[0] != 0 || a[1] != 0 })
	add(r, func(a float2) int8 { return floatToInt8(mean2(a)) })
	add(r, func(a float2) int32 { return floatToInt32(mean2(a)) })
	add(r, func(a float2) int2 { return int2{X: floatToInt32(a[0]), Y: floatToInt32(a[1])} })
	add(r, mean2)
	add(r, func(a float2) float3 { return float3{a[0], a[1], 0} })
	add(r, func(a float2) colorF { return colorF{R: a[0], G: a[1], A: 1} })
	add(r, func(a float2) colorB { return colorF{R: a[0], G: a[1], A: 1}.Encode() })
}

func registerFromFloat3(r *Registry) {
	add(r, func(a float3) bool { return a[0] != 0 || a[1] != 0 || a[2] != 0 })
	add(r, func(a float3) int8 { return floatToInt8(mean3(a)) })
	add(r, func(a float3) int32 { return floatToInt32(mean3(a)) })
	add(r, func(a float3) int2 { return int2{X: floatToInt32(a[0]), Y: floatToInt32(a[1])} })
	add(r, mean3)
	add(r, func(a float3) float2 { return float2{a[0], a[1]} })
	add(r, f3ToColor)
	add(r, func(a float3) colorB { return f3ToColor(a).Encode() })
}

func registerFromColor(r *Registry) {
	add(r, func(a colorF) bool { return color.Luminance(a) > 0 })
	add(r, func(a colorF) int8 { return floatToInt8(color.Luminance(a)) })
	add(r, func(a colorF) int32 { return floatToInt32(color.Luminance(a)) })
	add(r, func(a colorF) int2 { return int2{X: floatToInt32(a.R), Y: floatToInt32(a.G)} })
	add(r, color.Luminance)
	add(r, func(a colorF) float2 { return float2{a.R, a.G} })
	add(r, func(a colorF) float3 { return float3{a.R, a.G, a.B} })
	add(r, colorF.Encode)
}

// Encoded colors decode to linear and then follow the linear color rules,
// except for bool which tests the raw bytes.
func registerFromByteColor(r *Registry) {
	add(r, func(a colorB) bool { return a.R > 0 || a.G > 0 || a.B > 0 })
	add(r, func(a colorB) int8 { return floatToInt8(color.Luminance(a.Decode())) })
	add(r, func(a colorB) int32 { return floatToInt32(color.Luminance(a.Decode())) })
	add(r, func(a colorB) int2 {
		c := a.Decode()
		return int2{X: floatToInt32(c.R), Y: floatToInt32(c.G)}
	})
	add(r, func(a colorB) float32 { return color.Luminance(a.Decode()) })
	add(r, func(a colorB) float2 {
		c := a.Decode()
		return float2{c.R, c.G}
	})
	add(r, func(a colorB) float3 {
		c := a.Decode()
		return float3{c.R, c.G, c.B}
	})
	add(r, colorB.Decode)
}
