package curves

import (
	"github.com/gogpu/geofield/attribute"
	"github.com/gogpu/geofield/internal/parallel"
	"github.com/gogpu/geofield/internal/vecmath"
	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

// Tangents returns the normalized direction of every control point,
// computed from its neighbors. Open curve ends use the adjacent segment;
// single point curves point along +Z.
func (c *Curves) Tangents() []types.Float3 {
	positions := c.Positions()
	cyclic := c.Cyclic()
	out := make([]types.Float3, len(positions))
	parallel.For(c.NumCurves(), parallel.GrainSmall/8, func(start, end int) {
		for curve := start; curve < end; curve++ {
			first, size := c.Points(curve)
			pts := positions[first : first+size]
			dst := out[first : first+size]
			curveTangents(pts, cyclic.Get(curve), dst)
		}
	})
	return out
}

func curveTangents(pts []types.Float3, cyclic bool, dst []types.Float3) {
	n := len(pts)
	if n == 1 {
		dst[0] = types.Float3{0, 0, 1}
		return
	}
	for i := range n {
		prev, next := i-1, i+1
		if cyclic {
			prev, next = (i+n-1)%n, (i+1)%n
		} else {
			prev, next = max(prev, 0), min(next, n-1)
		}
		dst[i] = vecmath.Normalize(vecmath.Sub(pts[next], pts[prev]))
	}
}

// Normals returns the "Z up" normal of every control point: perpendicular
// to the tangent and to +Z. Vertical tangents use +X.
func (c *Curves) Normals() []types.Float3 {
	tangents := c.Tangents()
	out := make([]types.Float3, len(tangents))
	for i, t := range tangents {
		n := vecmath.Normalize(types.Float3{t[1], -t[0], 0})
		if vecmath.IsZero(n) {
			n = types.Float3{1, 0, 0}
		}
		out[i] = n
	}
	return out
}

// NormalsOnDomain returns the normals on the point or curve domain.
func (c *Curves) NormalsOnDomain(d attribute.Domain) varray.GVArray {
	points := varray.FromTyped(varray.ForSpan(c.Normals()))
	switch d {
	case attribute.Point:
		return points
	case attribute.Curve:
		mixed := c.AdaptDomain(points, attribute.Point, attribute.Curve)
		normalized := varray.SpanOf[types.Float3](mixed.Materialize())
		for i, n := range normalized {
			normalized[i] = vecmath.Normalize(n)
		}
		return varray.FromTyped(varray.ForSpan(normalized))
	}
	return varray.GVArray{}
}
