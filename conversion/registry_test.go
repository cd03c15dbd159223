package conversion

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

func TestAllPairsRegistered(t *testing.T) {
	r := Default()
	if got, want := len(r.Pairs()), len(types.Kinds)*(len(types.Kinds)-1); got != want {
		t.Fatalf("len(Pairs()) = %d, want %d", got, want)
	}
	for _, from := range types.Kinds {
		for _, to := range types.Kinds {
			if !r.IsConvertible(from, to) {
				t.Errorf("IsConvertible(%v, %v) = false", from, to)
			}
		}
	}
	if r.IsConvertible(types.KindInvalid, types.KindFloat) || r.IsConvertible(types.KindInvalid, types.KindInvalid) {
		t.Error("invalid kinds must not be convertible")
	}
}

func TestFloatToBool(t *testing.T) {
	tests := []struct {
		in   float32
		want bool
	}{
		{0.7, true},
		{-0.1, false},
		{0, false},
	}
	for _, tt := range tests {
		if got := Convert[float32, bool](tt.in); got != tt.want {
			t.Errorf("float %v -> bool = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNarrowingClamps(t *testing.T) {
	if got := Convert[int32, int8](200); got != 127 {
		t.Errorf("int32 200 -> int8 = %d, want 127", got)
	}
	if got := Convert[int32, int8](-1000); got != -128 {
		t.Errorf("int32 -1000 -> int8 = %d, want -128", got)
	}
	if got := Convert[float32, int32](3e10); got != math.MaxInt32 {
		t.Errorf("float 3e10 -> int32 = %d", got)
	}
	if got := Convert[float32, int32](float32(math.NaN())); got != 0 {
		t.Errorf("NaN -> int32 = %d, want 0", got)
	}
	if got := Convert[float32, int8](-2.9); got != -2 {
		t.Errorf("float -2.9 -> int8 = %d, want -2", got)
	}
}

func TestVectorPolicies(t *testing.T) {
	if got := Convert[float32, types.Float3](2); got != (types.Float3{2, 2, 2}) {
		t.Errorf("broadcast = %v", got)
	}
	if got := Convert[types.Float3, float32](types.Float3{1, 2, 6}); got != 3 {
		t.Errorf("float3 mean = %v, want 3", got)
	}
	if got := Convert[types.Int2, int32](types.Int2{X: 3, Y: 4}); got != 3 {
		t.Errorf("int2 mean = %v, want 3", got)
	}
	if got := Convert[types.Float2, types.Float3](types.Float2{1, 2}); got != (types.Float3{1, 2, 0}) {
		t.Errorf("float2 -> float3 = %v", got)
	}
	if Convert[types.Float3, bool](types.Float3{}) || !Convert[types.Float3, bool](types.Float3{0, -1, 0}) {
		t.Error("float3 -> bool must test for non-zero")
	}
}

func TestColorPolicies(t *testing.T) {
	c := Convert[float32, types.ColorGeometry4f](0.5)
	if c != (types.ColorGeometry4f{R: 0.5, G: 0.5, B: 0.5, A: 1}) {
		t.Errorf("float -> color = %v", c)
	}
	lum := Convert[types.ColorGeometry4f, float32](types.ColorGeometry4f{R: 1, A: 1})
	if math.Abs(float64(lum)-0.2126) > 1e-6 {
		t.Errorf("red luminance = %v", lum)
	}
	white := Convert[types.ColorGeometry4f, types.ColorGeometry4b](types.ColorGeometry4f{R: 1, G: 1, B: 1, A: 1})
	if white != (types.ColorGeometry4b{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("white encode = %v", white)
	}
	if Convert[types.ColorGeometry4b, bool](types.ColorGeometry4b{A: 255}) {
		t.Error("opaque black must convert to false")
	}
	if !Convert[types.ColorGeometry4b, bool](types.ColorGeometry4b{B: 1}) {
		t.Error("any non-zero channel must convert to true")
	}
}

func TestIdentityIsUnchanged(t *testing.T) {
	r := Default()
	samples := map[types.ValueKind]any{
		types.KindBool:      true,
		types.KindInt8:      int8(-5),
		types.KindInt32:     int32(123456),
		types.KindInt2:      types.Int2{X: 1, Y: -1},
		types.KindFloat:     float32(math.Pi),
		types.KindFloat2:    types.Float2{0.1, 0.2},
		types.KindFloat3:    types.Float3{0.1, 0.2, 0.3},
		types.KindColor:     types.ColorGeometry4f{R: 0.3, G: 0.2, B: 0.1, A: 0.5},
		types.KindByteColor: types.ColorGeometry4b{R: 1, G: 2, B: 3, A: 4},
	}
	for k, v := range samples {
		if got := r.ConvertValue(k, k, v); got != v {
			t.Errorf("%v identity: got %v, want %v", k, got, v)
		}
	}
}

func TestTryConvert(t *testing.T) {
	src := varray.FromTyped(varray.ForSpan([]float32{0.7, -0.1, 2}))

	same := TryConvert(src, types.KindFloat)
	sameSpan, ok := same.Span()
	srcSpan, _ := src.Span()
	if !ok || !sameSpan.SameStorage(srcSpan) {
		t.Error("matching kind should return the input array")
	}
	if !TryConvert(varray.GVArray{}, types.KindBool).IsEmpty() {
		t.Error("empty input should stay empty")
	}
	if !TryConvert(src, types.KindInvalid).IsEmpty() {
		t.Error("impossible conversion should be empty")
	}

	conv := TryConvert(src, types.KindBool)
	if conv.Kind() != types.KindBool || conv.Size() != 3 {
		t.Fatalf("converted kind=%v size=%d", conv.Kind(), conv.Size())
	}
	if conv.IsSpan() {
		t.Error("converted view must not claim span storage")
	}
	got := varray.SpanOf[bool](conv.Materialize())
	if diff := cmp.Diff([]bool{true, false, true}, got); diff != "" {
		t.Errorf("materialized mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertSpan(t *testing.T) {
	r := Default()
	src := varray.GSpanOf([]int32{1, 200, -300})
	dst := varray.NewGSpan(types.KindInt8, 3)
	r.ConvertSpan(src, dst)
	if diff := cmp.Diff([]int8{1, 127, -128}, varray.SpanOf[int8](dst)); diff != "" {
		t.Errorf("ConvertSpan mismatch (-want +got):\n%s", diff)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic on length mismatch")
		}
	}()
	r.ConvertSpan(src, varray.NewGSpan(types.KindInt8, 2))
}
