package mesh

import (
	"github.com/gogpu/geofield/attribute"
	"github.com/gogpu/geofield/internal/parallel"
	"github.com/gogpu/geofield/internal/vecmath"
	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

func (m *Mesh) computeNormals() *normalCache {
	t := m.topology()
	positions := m.Positions()
	nc := &normalCache{
		face:   make([]types.Float3, m.NumFaces()),
		vert:   make([]types.Float3, m.NumVerts()),
		edge:   make([]types.Float3, m.NumEdges()),
		corner: make([]types.Float3, m.NumCorners()),
	}

	parallel.For(len(nc.face), parallel.GrainSmall, func(start, end int) {
		var loop []types.Float3
		for f := start; f < end; f++ {
			loop = loop[:0]
			t.faceVerts.ForEach(f, func(v int) { loop = append(loop, positions[v]) })
			nc.face[f] = vecmath.PolygonNormal(loop)
		}
	})

	// Loose vertices point away from the origin.
	parallel.For(len(nc.vert), parallel.GrainElements, func(start, end int) {
		for v := start; v < end; v++ {
			var sum types.Float3
			t.vertFaces.ForEach(v, func(f int) { sum = vecmath.Add(sum, nc.face[f]) })
			if t.vertFaces.Len(v) == 0 {
				sum = positions[v]
			}
			nc.vert[v] = vecmath.Normalize(sum)
		}
	})

	edges := m.EdgeVerts()
	for e, ev := range edges {
		nc.edge[e] = vecmath.Normalize(vecmath.Add(nc.vert[ev.X], nc.vert[ev.Y]))
	}
	for c, f := range t.cornerFace {
		nc.corner[c] = nc.face[f]
	}
	return nc
}

func (m *Mesh) cachedNormals() *normalCache {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.normals == nil {
		m.normals = m.computeNormals()
	}
	return m.normals
}

// FaceNormals returns the unit normal of every face.
func (m *Mesh) FaceNormals() []types.Float3 { return m.cachedNormals().face }

// VertexNormals returns the normalized sum of the adjacent face normals of
// every vertex.
func (m *Mesh) VertexNormals() []types.Float3 { return m.cachedNormals().vert }

// EdgeNormals returns the average of the two vertex normals of every edge.
func (m *Mesh) EdgeNormals() []types.Float3 { return m.cachedNormals().edge }

// CornerNormals returns the face normal at every corner.
func (m *Mesh) CornerNormals() []types.Float3 { return m.cachedNormals().corner }

// NormalsOnDomain returns the normals of domain d, or the empty array for
// domains meshes do not have.
func (m *Mesh) NormalsOnDomain(d attribute.Domain) varray.GVArray {
	var data []types.Float3
	switch d {
	case attribute.Point:
		data = m.VertexNormals()
	case attribute.Edge:
		data = m.EdgeNormals()
	case attribute.Face:
		data = m.FaceNormals()
	case attribute.Corner:
		data = m.CornerNormals()
	default:
		return varray.GVArray{}
	}
	return varray.FromTyped(varray.ForSpan(data))
}
