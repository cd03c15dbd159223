package vecmath

import (
	"testing"

	"golang.org/x/image/math/f32"
)

func TestCross(t *testing.T) {
	x := f32.Vec3{1, 0, 0}
	y := f32.Vec3{0, 1, 0}
	if got := Cross(x, y); got != (f32.Vec3{0, 0, 1}) {
		t.Errorf("Cross(x, y) = %v, want +Z", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   f32.Vec3
		want f32.Vec3
	}{
		{"axis", f32.Vec3{0, 3, 0}, f32.Vec3{0, 1, 0}},
		{"zero", f32.Vec3{}, f32.Vec3{}},
		{"diagonal", f32.Vec3{1, 1, 0}, f32.Vec3{0.70710677, 0.70710677, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); !Approx(got, tt.want, 1e-6) {
				t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPolygonNormal(t *testing.T) {
	quad := []f32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	if got := PolygonNormal(quad); !Approx(got, f32.Vec3{0, 0, 1}, 1e-6) {
		t.Errorf("PolygonNormal(ccw quad) = %v, want +Z", got)
	}
	reversed := []f32.Vec3{{0, 1, 0}, {1, 1, 0}, {1, 0, 0}, {0, 0, 0}}
	if got := PolygonNormal(reversed); !Approx(got, f32.Vec3{0, 0, -1}, 1e-6) {
		t.Errorf("PolygonNormal(cw quad) = %v, want -Z", got)
	}
	if got := PolygonNormal([]f32.Vec3{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}); got != (f32.Vec3{0, 0, 1}) {
		t.Errorf("PolygonNormal(degenerate) = %v, want +Z fallback", got)
	}
}

func TestMinMax(t *testing.T) {
	a := f32.Vec3{1, -2, 3}
	b := f32.Vec3{-1, 2, 0}
	if got := Min(a, b); got != (f32.Vec3{-1, -2, 0}) {
		t.Errorf("Min = %v", got)
	}
	if got := Max(a, b); got != (f32.Vec3{1, 2, 3}) {
		t.Errorf("Max = %v", got)
	}
}
