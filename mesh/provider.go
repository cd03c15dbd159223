package mesh

import (
	"github.com/gogpu/geofield/attribute"
	"github.com/gogpu/geofield/varray"
)

// provider exposes a mesh to the attribute accessors.
type provider struct {
	m *Mesh
}

func (p provider) DomainSize(d attribute.Domain) int {
	switch d {
	case attribute.Point:
		return p.m.NumVerts()
	case attribute.Edge:
		return p.m.NumEdges()
	case attribute.Face:
		return p.m.NumFaces()
	case attribute.Corner:
		return p.m.NumCorners()
	}
	return 0
}

func (p provider) SupportsDomain(d attribute.Domain) bool {
	switch d {
	case attribute.Point, attribute.Edge, attribute.Face, attribute.Corner:
		return true
	}
	return false
}

func (p provider) Storage() *attribute.Storage  { return p.m.attrs }
func (p provider) Builtins() attribute.Builtins { return builtins }

func (p provider) AdaptDomain(src varray.GVArray, from, to attribute.Domain) varray.GVArray {
	return p.m.AdaptDomain(src, from, to)
}

func (p provider) TagModified(id attribute.ID) {
	switch id {
	case AttrPosition:
		p.m.TagPositionsChanged()
	case AttrEdgeVerts, AttrCornerVert, AttrCornerEdge:
		p.m.tagTopologyChanged()
	}
}

// AdaptDomain interpolates src between two mesh domains.
//
// Values moving to a coarser element (face or edge built from points,
// corners or edges) average their sources and booleans require all sources
// to be true. Values spreading to finer elements average the adjacent
// elements and booleans need any source to be true. Corners take their
// face's or vertex's value directly.
func (m *Mesh) AdaptDomain(src varray.GVArray, from, to attribute.Domain) varray.GVArray {
	if src.IsEmpty() || from == to {
		return src
	}
	t := m.topology()
	switch from {
	case attribute.Point:
		switch to {
		case attribute.Face:
			return attribute.MixGroups(src, t.faceVerts, attribute.MixAll)
		case attribute.Edge:
			return attribute.MixGroups(src, t.edgeVerts, attribute.MixAll)
		case attribute.Corner:
			return attribute.Gather(src, t.cornerVert)
		}
	case attribute.Corner:
		switch to {
		case attribute.Point:
			return attribute.MixGroups(src, t.vertCorners, attribute.MixAny)
		case attribute.Face:
			return attribute.MixGroups(src, t.faceCorners, attribute.MixAll)
		case attribute.Edge:
			return attribute.MixGroups(src, t.edgeCorners, attribute.MixAll)
		}
	case attribute.Face:
		switch to {
		case attribute.Point:
			return attribute.MixGroups(src, t.vertFaces, attribute.MixAny)
		case attribute.Corner:
			return attribute.Gather(src, t.cornerFace)
		case attribute.Edge:
			return attribute.MixGroups(src, t.edgeFaces, attribute.MixAny)
		}
	case attribute.Edge:
		switch to {
		case attribute.Point:
			return attribute.MixGroups(src, t.vertEdges, attribute.MixAny)
		case attribute.Face:
			return attribute.MixGroups(src, t.faceEdges, attribute.MixAll)
		case attribute.Corner:
			return attribute.MixGroups(src, t.cornerEdges, attribute.MixAny)
		}
	}
	return varray.GVArray{}
}
