// Package curves implements a set of poly curves stored as attributes.
//
// Every curve is a range of control points given by an offsets array.
// Per-point data lives on attribute.Point, per-curve data on
// attribute.Curve.
package curves

import (
	"fmt"
	"sync"

	"github.com/gogpu/geofield/attribute"
	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

// Builtin attribute identifiers.
const (
	AttrPosition   attribute.ID = "position"
	AttrRadius     attribute.ID = "radius"
	AttrTilt       attribute.ID = "tilt"
	AttrCyclic     attribute.ID = "cyclic"
	AttrResolution attribute.ID = "resolution"
	AttrCurveType  attribute.ID = "curve_type"
	AttrNurbsOrder attribute.ID = "nurbs_order"
)

var builtins = attribute.Builtins{
	AttrPosition:   {Domain: attribute.Point, Kind: types.KindFloat3},
	AttrRadius:     {Domain: attribute.Point, Kind: types.KindFloat, Deletable: true},
	AttrTilt:       {Domain: attribute.Point, Kind: types.KindFloat, Deletable: true},
	AttrCyclic:     {Domain: attribute.Curve, Kind: types.KindBool, Deletable: true},
	AttrResolution: {Domain: attribute.Curve, Kind: types.KindInt32, Deletable: true, Validator: attribute.ClampMin(1)},
	AttrCurveType:  {Domain: attribute.Curve, Kind: types.KindInt8, Deletable: true},
	AttrNurbsOrder: {Domain: attribute.Curve, Kind: types.KindInt8, Deletable: true},
}

// Builtins returns the reserved attributes of curves.
func Builtins() attribute.Builtins { return builtins }

type offsets struct {
	data []int
}

// Curves is a set of curves. It must be exclusively owned while it is
// modified; Copy returns curves sharing every buffer.
type Curves struct {
	points *offsets
	attrs  *attribute.Storage

	mu     sync.Mutex
	bounds *boundsCache
}

type boundsCache struct {
	b  types.Bounds
	ok bool
}

// New builds curves from positions and curve offsets. curveOffsets has one
// entry per curve plus a final entry equal to len(positions).
func New(positions []types.Float3, curveOffsets []int) *Curves {
	if len(curveOffsets) == 0 {
		curveOffsets = []int{0}
	}
	if last := curveOffsets[len(curveOffsets)-1]; last != len(positions) {
		panic(fmt.Sprintf("curves: offsets end at %d for %d points", last, len(positions)))
	}
	c := &Curves{points: &offsets{data: curveOffsets}, attrs: attribute.NewStorage()}
	c.attrs.Add(AttrPosition, attribute.Point, varray.GSpanOf(positions), nil)
	return c
}

// FromPoints builds one curve per point list.
func FromPoints(curves ...[]types.Float3) *Curves {
	curveOffsets := make([]int, 1, len(curves)+1)
	var positions []types.Float3
	for _, pts := range curves {
		positions = append(positions, pts...)
		curveOffsets = append(curveOffsets, len(positions))
	}
	return New(positions, curveOffsets)
}

// NumPoints returns the number of control points.
func (c *Curves) NumPoints() int { return c.points.data[len(c.points.data)-1] }

// NumCurves returns the number of curves.
func (c *Curves) NumCurves() int { return len(c.points.data) - 1 }

// Offsets returns the point offsets of the curves. It must not be
// modified.
func (c *Curves) Offsets() []int { return c.points.data }

// Points returns the point range of curve i.
func (c *Curves) Points(i int) (start, size int) {
	return c.points.data[i], c.points.data[i+1] - c.points.data[i]
}

func (c *Curves) groups() attribute.Groups { return attribute.Groups{Offsets: c.points.data} }

// Positions returns the control point positions. They must not be
// modified.
func (c *Curves) Positions() []types.Float3 {
	arr, _ := c.attrs.Lookup(AttrPosition)
	return varray.SpanOf[types.Float3](arr.Data)
}

// PositionsForWrite returns the positions for writing, copying them first
// if they are shared.
func (c *Curves) PositionsForWrite() []types.Float3 {
	span, _ := c.attrs.SpanForWrite(AttrPosition)
	c.tagPositionsChanged()
	return varray.SpanOf[types.Float3](span)
}

func (c *Curves) tagPositionsChanged() {
	c.mu.Lock()
	c.bounds = nil
	c.mu.Unlock()
}

// Cyclic returns whether each curve is closed. Curves without the cyclic
// attribute are open.
func (c *Curves) Cyclic() varray.VArray[bool] {
	v := c.Attributes().LookupOrDefault(AttrCyclic, attribute.Curve, types.KindBool, false)
	return varray.Typed[bool](v)
}

// Attributes returns a read-only accessor.
func (c *Curves) Attributes() attribute.Accessor {
	return attribute.NewAccessor(provider{c})
}

// AttributesForWrite returns a mutable accessor. The curves must be
// exclusively owned.
func (c *Curves) AttributesForWrite() attribute.MutableAccessor {
	return attribute.NewMutableAccessor(provider{c})
}

// Copy returns curves sharing every buffer with c.
func (c *Curves) Copy() *Curves {
	return &Curves{points: c.points, attrs: c.attrs.Copy()}
}

// Release drops c's claim on its buffers.
func (c *Curves) Release() { c.attrs.Release() }

// Bounds returns the bounding box of the control points.
func (c *Curves) Bounds() (types.Bounds, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bounds == nil {
		b, ok := types.BoundsOf(c.Positions())
		c.bounds = &boundsCache{b: b, ok: ok}
	}
	return c.bounds.b, c.bounds.ok
}

// AdaptDomain moves src between the point and curve domains. Curves
// average their points, with booleans requiring every point; points take
// their curve's value.
func (c *Curves) AdaptDomain(src varray.GVArray, from, to attribute.Domain) varray.GVArray {
	switch {
	case src.IsEmpty() || from == to:
		return src
	case from == attribute.Point && to == attribute.Curve:
		return attribute.MixGroups(src, c.groups(), attribute.MixAll)
	case from == attribute.Curve && to == attribute.Point:
		return attribute.ScatterGroups(src, c.groups(), c.NumPoints())
	}
	return varray.GVArray{}
}

type provider struct {
	c *Curves
}

func (p provider) DomainSize(d attribute.Domain) int {
	switch d {
	case attribute.Point:
		return p.c.NumPoints()
	case attribute.Curve:
		return p.c.NumCurves()
	}
	return 0
}

func (p provider) SupportsDomain(d attribute.Domain) bool {
	return d == attribute.Point || d == attribute.Curve
}

func (p provider) Storage() *attribute.Storage  { return p.c.attrs }
func (p provider) Builtins() attribute.Builtins { return builtins }

func (p provider) AdaptDomain(src varray.GVArray, from, to attribute.Domain) varray.GVArray {
	return p.c.AdaptDomain(src, from, to)
}

func (p provider) TagModified(id attribute.ID) {
	if id == AttrPosition {
		p.c.tagPositionsChanged()
	}
}
