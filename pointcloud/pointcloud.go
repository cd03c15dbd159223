// Package pointcloud implements an unconnected set of points stored as
// attributes on the point domain.
package pointcloud

import (
	"sync"

	"github.com/gogpu/geofield/attribute"
	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

// Builtin attribute identifiers.
const (
	AttrPosition attribute.ID = "position"
	AttrRadius   attribute.ID = "radius"
)

var builtins = attribute.Builtins{
	AttrPosition: {Domain: attribute.Point, Kind: types.KindFloat3},
	AttrRadius:   {Domain: attribute.Point, Kind: types.KindFloat, Deletable: true},
}

// Builtins returns the reserved attributes of point clouds.
func Builtins() attribute.Builtins { return builtins }

// PointCloud is a set of points. It must be exclusively owned while it is
// modified.
type PointCloud struct {
	numPoints int
	attrs     *attribute.Storage

	mu        sync.Mutex
	bounds    types.Bounds
	boundsOK  bool
	boundsSet bool
}

// New returns a point cloud at positions. The slice is owned by the point
// cloud afterwards.
func New(positions []types.Float3) *PointCloud {
	pc := &PointCloud{numPoints: len(positions), attrs: attribute.NewStorage()}
	pc.attrs.Add(AttrPosition, attribute.Point, varray.GSpanOf(positions), nil)
	return pc
}

// NewWithRadius returns a point cloud with a radius per point.
func NewWithRadius(positions []types.Float3, radius []float32) *PointCloud {
	pc := New(positions)
	pc.AttributesForWrite().Add(AttrRadius, attribute.Point, types.KindFloat,
		attribute.InitMoveArray{Data: varray.GSpanOf(radius)})
	return pc
}

// NumPoints returns the number of points.
func (pc *PointCloud) NumPoints() int { return pc.numPoints }

// Positions returns the point positions. They must not be modified.
func (pc *PointCloud) Positions() []types.Float3 {
	arr, _ := pc.attrs.Lookup(AttrPosition)
	return varray.SpanOf[types.Float3](arr.Data)
}

// Attributes returns a read-only accessor.
func (pc *PointCloud) Attributes() attribute.Accessor {
	return attribute.NewAccessor(provider{pc})
}

// AttributesForWrite returns a mutable accessor.
func (pc *PointCloud) AttributesForWrite() attribute.MutableAccessor {
	return attribute.NewMutableAccessor(provider{pc})
}

// Copy returns a point cloud sharing every buffer with pc.
func (pc *PointCloud) Copy() *PointCloud {
	return &PointCloud{numPoints: pc.numPoints, attrs: pc.attrs.Copy()}
}

// Release drops pc's claim on its buffers.
func (pc *PointCloud) Release() { pc.attrs.Release() }

// Bounds returns the bounding box of the points.
func (pc *PointCloud) Bounds() (types.Bounds, bool) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if !pc.boundsSet {
		pc.bounds, pc.boundsOK = types.BoundsOf(pc.Positions())
		pc.boundsSet = true
	}
	return pc.bounds, pc.boundsOK
}

type provider struct {
	pc *PointCloud
}

func (p provider) DomainSize(d attribute.Domain) int {
	if d == attribute.Point {
		return p.pc.numPoints
	}
	return 0
}

func (p provider) SupportsDomain(d attribute.Domain) bool { return d == attribute.Point }
func (p provider) Storage() *attribute.Storage            { return p.pc.attrs }
func (p provider) Builtins() attribute.Builtins           { return builtins }

// AdaptDomain has nothing to do: point clouds have a single domain.
func (p provider) AdaptDomain(src varray.GVArray, from, to attribute.Domain) varray.GVArray {
	if from == to {
		return src
	}
	return varray.GVArray{}
}

func (p provider) TagModified(id attribute.ID) {
	if id == AttrPosition {
		p.pc.mu.Lock()
		p.pc.boundsSet = false
		p.pc.mu.Unlock()
	}
}
