// Package vecmath provides the small set of float3 operations needed by
// normals, bounds and domain mixing.
package vecmath

import (
	"math"

	"golang.org/x/image/math/f32"
)

// Add returns the sum of two vectors.
func Add(a, b f32.Vec3) f32.Vec3 {
	return f32.Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Sub returns the difference of two vectors.
func Sub(a, b f32.Vec3) f32.Vec3 {
	return f32.Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Scale returns the vector scaled by s.
func Scale(a f32.Vec3, s float32) f32.Vec3 {
	return f32.Vec3{a[0] * s, a[1] * s, a[2] * s}
}

// Dot returns the dot product of two vectors.
func Dot(a, b f32.Vec3) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Cross returns the cross product a × b.
func Cross(a, b f32.Vec3) f32.Vec3 {
	return f32.Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Length returns the length (magnitude) of the vector.
func Length(a f32.Vec3) float32 {
	return float32(math.Sqrt(float64(Dot(a, a))))
}

// Normalize returns a unit vector in the same direction.
// Returns the zero vector if the input has zero length.
func Normalize(a f32.Vec3) f32.Vec3 {
	l := Length(a)
	if l == 0 {
		return f32.Vec3{}
	}
	return Scale(a, 1/l)
}

// Min returns the component-wise minimum.
func Min(a, b f32.Vec3) f32.Vec3 {
	return f32.Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])}
}

// Max returns the component-wise maximum.
func Max(a, b f32.Vec3) f32.Vec3 {
	return f32.Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}
}

// IsZero returns true if every component is zero.
func IsZero(a f32.Vec3) bool {
	return a[0] == 0 && a[1] == 0 && a[2] == 0
}

// Approx returns true if two vectors are approximately equal within epsilon.
func Approx(a, b f32.Vec3, epsilon float32) bool {
	return abs(a[0]-b[0]) < epsilon && abs(a[1]-b[1]) < epsilon && abs(a[2]-b[2]) < epsilon
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// PolygonNormal computes the normal of a planar or near-planar polygon with
// Newell's method. Degenerate polygons yield the +Z axis.
func PolygonNormal(points []f32.Vec3) f32.Vec3 {
	var n f32.Vec3
	for i := range points {
		cur := points[i]
		next := points[(i+1)%len(points)]
		n[0] += (cur[1] - next[1]) * (cur[2] + next[2])
		n[1] += (cur[2] - next[2]) * (cur[0] + next[0])
		n[2] += (cur[0] - next[0]) * (cur[1] + next[1])
	}
	if IsZero(n) {
		return f32.Vec3{0, 0, 1}
	}
	return Normalize(n)
}
