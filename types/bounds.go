package types

import (
	"golang.org/x/image/math/f32"

	"github.com/gogpu/geofield/internal/vecmath"
)

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max f32.Vec3
}

// BoundsOf returns the bounds of positions, or false when there are none.
func BoundsOf(positions []f32.Vec3) (Bounds, bool) {
	if len(positions) == 0 {
		return Bounds{}, false
	}
	b := Bounds{Min: positions[0], Max: positions[0]}
	for _, p := range positions[1:] {
		b.Min = vecmath.Min(b.Min, p)
		b.Max = vecmath.Max(b.Max, p)
	}
	return b, true
}

// Merge returns the union of two boxes.
func (b Bounds) Merge(o Bounds) Bounds {
	return Bounds{Min: vecmath.Min(b.Min, o.Min), Max: vecmath.Max(b.Max, o.Max)}
}

// MergeOptional folds an optional box into an optional accumulator.
func MergeOptional(acc Bounds, accOK bool, o Bounds, oOK bool) (Bounds, bool) {
	switch {
	case !oOK:
		return acc, accOK
	case !accOK:
		return o, true
	}
	return acc.Merge(o), true
}
