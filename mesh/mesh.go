// Package mesh implements a polygon mesh stored as attributes.
//
// Topology lives in builtin attributes: edges reference two vertices and
// every face is a range of corners, each corner referencing a vertex and
// the edge to the next corner. Face ranges are stored as offsets. Derived
// data (adjacency, normals, bounds) is computed lazily and cached.
package mesh

import (
	"fmt"
	"sync"

	"github.com/gogpu/geofield/attribute"
	"github.com/gogpu/geofield/sharing"
	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

// Builtin attribute identifiers.
const (
	AttrPosition      attribute.ID = "position"
	AttrEdgeVerts     attribute.ID = ".edge_verts"
	AttrCornerVert    attribute.ID = ".corner_vert"
	AttrCornerEdge    attribute.ID = ".corner_edge"
	AttrMaterialIndex attribute.ID = "material_index"
	AttrSharpFace     attribute.ID = "sharp_face"
)

var builtins = attribute.Builtins{
	AttrPosition:      {Domain: attribute.Point, Kind: types.KindFloat3},
	AttrEdgeVerts:     {Domain: attribute.Edge, Kind: types.KindInt2},
	AttrCornerVert:    {Domain: attribute.Corner, Kind: types.KindInt32},
	AttrCornerEdge:    {Domain: attribute.Corner, Kind: types.KindInt32},
	AttrMaterialIndex: {Domain: attribute.Face, Kind: types.KindInt32, Deletable: true, Validator: attribute.ClampMin(0)},
	AttrSharpFace:     {Domain: attribute.Face, Kind: types.KindBool, Deletable: true},
}

// Builtins returns the reserved attributes of meshes.
func Builtins() attribute.Builtins { return builtins }

// offsets is the face offset array, shared by copies of a mesh.
type offsets struct {
	data []int
}

// Mesh is a polygon mesh. A Mesh must be exclusively owned while it is
// modified; Copy returns a mesh sharing all buffers.
type Mesh struct {
	numVerts int
	numEdges int
	faces    *offsets
	attrs    *attribute.Storage

	mu      sync.Mutex
	normals *normalCache
	bounds  *boundsCache
}

type normalCache struct {
	face, vert, edge, corner []types.Float3
}

type boundsCache struct {
	b  types.Bounds
	ok bool
}

// New builds a mesh from raw topology. faceOffsets has one entry per face
// plus a final entry equal to len(cornerVerts). Slices are owned by the
// mesh afterwards.
func New(positions []types.Float3, edges []types.Int2, faceOffsets []int, cornerVerts, cornerEdges []int32) *Mesh {
	if len(faceOffsets) == 0 {
		faceOffsets = []int{0}
	}
	if faceOffsets[len(faceOffsets)-1] != len(cornerVerts) || len(cornerEdges) != len(cornerVerts) {
		panic(fmt.Sprintf("mesh: %d corners do not match face offsets ending at %d",
			len(cornerVerts), faceOffsets[len(faceOffsets)-1]))
	}
	m := &Mesh{
		numVerts: len(positions),
		numEdges: len(edges),
		faces:    &offsets{data: faceOffsets},
		attrs:    attribute.NewStorage(),
	}
	m.attrs.Add(AttrPosition, attribute.Point, varray.GSpanOf(positions), nil)
	m.attrs.Add(AttrEdgeVerts, attribute.Edge, varray.GSpanOf(edges), nil)
	m.attrs.Add(AttrCornerVert, attribute.Corner, varray.GSpanOf(cornerVerts), nil)
	m.attrs.Add(AttrCornerEdge, attribute.Corner, varray.GSpanOf(cornerEdges), nil)
	return m
}

// NewFromPolygons builds a mesh from vertex positions and faces given as
// vertex loops. Edges are created for every distinct pair of consecutive
// loop vertices.
func NewFromPolygons(positions []types.Float3, faces [][]int32) *Mesh {
	faceOffsets := make([]int, 1, len(faces)+1)
	var cornerVerts, cornerEdges []int32
	var edges []types.Int2
	edgeIndex := map[types.Int2]int32{}
	for _, face := range faces {
		for i, v := range face {
			next := face[(i+1)%len(face)]
			key := types.Int2{X: min(v, next), Y: max(v, next)}
			e, ok := edgeIndex[key]
			if !ok {
				e = int32(len(edges))
				edgeIndex[key] = e
				edges = append(edges, types.Int2{X: v, Y: next})
			}
			cornerVerts = append(cornerVerts, v)
			cornerEdges = append(cornerEdges, e)
		}
		faceOffsets = append(faceOffsets, len(cornerVerts))
	}
	return New(positions, edges, faceOffsets, cornerVerts, cornerEdges)
}

// NewGrid builds a planar grid of vertsX × vertsY vertices centered on the
// origin in the XY plane, with quads facing +Z.
func NewGrid(vertsX, vertsY int, sizeX, sizeY float32) *Mesh {
	if vertsX < 2 || vertsY < 2 {
		return New(nil, nil, nil, nil, nil)
	}
	positions := make([]types.Float3, 0, vertsX*vertsY)
	dx := sizeX / float32(vertsX-1)
	dy := sizeY / float32(vertsY-1)
	for y := range vertsY {
		for x := range vertsX {
			positions = append(positions, types.Float3{
				float32(x)*dx - sizeX/2,
				float32(y)*dy - sizeY/2,
				0,
			})
		}
	}
	faces := make([][]int32, 0, (vertsX-1)*(vertsY-1))
	for y := range vertsY - 1 {
		for x := range vertsX - 1 {
			v := int32(y*vertsX + x)
			w := int32(vertsX)
			faces = append(faces, []int32{v, v + 1, v + w + 1, v + w})
		}
	}
	return NewFromPolygons(positions, faces)
}

// NumVerts returns the number of vertices.
func (m *Mesh) NumVerts() int { return m.numVerts }

// NumEdges returns the number of edges.
func (m *Mesh) NumEdges() int { return m.numEdges }

// NumFaces returns the number of faces.
func (m *Mesh) NumFaces() int { return len(m.faces.data) - 1 }

// NumCorners returns the number of face corners.
func (m *Mesh) NumCorners() int { return m.faces.data[len(m.faces.data)-1] }

// FaceOffsets returns the corner offsets of the faces. It must not be
// modified.
func (m *Mesh) FaceOffsets() []int { return m.faces.data }

// Face returns the corner range of face f.
func (m *Mesh) Face(f int) (start, size int) {
	return m.faces.data[f], m.faces.data[f+1] - m.faces.data[f]
}

func spanOf[T types.Value](s *attribute.Storage, id attribute.ID) []T {
	arr, ok := s.Lookup(id)
	if !ok {
		return nil
	}
	return varray.SpanOf[T](arr.Data)
}

// Positions returns the vertex positions. They must not be modified.
func (m *Mesh) Positions() []types.Float3 { return spanOf[types.Float3](m.attrs, AttrPosition) }

// EdgeVerts returns the vertex pair of every edge.
func (m *Mesh) EdgeVerts() []types.Int2 { return spanOf[types.Int2](m.attrs, AttrEdgeVerts) }

// CornerVerts returns the vertex of every corner.
func (m *Mesh) CornerVerts() []int32 { return spanOf[int32](m.attrs, AttrCornerVert) }

// CornerEdges returns the edge following every corner.
func (m *Mesh) CornerEdges() []int32 { return spanOf[int32](m.attrs, AttrCornerEdge) }

// PositionsForWrite returns the positions for writing, copying them first
// if they are shared, and drops cached normals and bounds.
func (m *Mesh) PositionsForWrite() []types.Float3 {
	span, _ := m.attrs.SpanForWrite(AttrPosition)
	m.TagPositionsChanged()
	return varray.SpanOf[types.Float3](span)
}

// TagPositionsChanged drops data derived from positions.
func (m *Mesh) TagPositionsChanged() {
	m.mu.Lock()
	m.normals = nil
	m.bounds = nil
	m.mu.Unlock()
}

// Attributes returns a read-only accessor.
func (m *Mesh) Attributes() attribute.Accessor {
	return attribute.NewAccessor(provider{m})
}

// AttributesForWrite returns a mutable accessor. The mesh must be
// exclusively owned.
func (m *Mesh) AttributesForWrite() attribute.MutableAccessor {
	return attribute.NewMutableAccessor(provider{m})
}

// Copy returns a mesh sharing every buffer with m.
func (m *Mesh) Copy() *Mesh {
	return &Mesh{
		numVerts: m.numVerts,
		numEdges: m.numEdges,
		faces:    m.faces,
		attrs:    m.attrs.Copy(),
	}
}

// Release drops m's claim on its buffers. m must not be used afterwards.
func (m *Mesh) Release() {
	m.attrs.Release()
}

// PositionSharing returns the sharing token of the position buffer.
func (m *Mesh) PositionSharing() *sharing.Info {
	arr, _ := m.attrs.Lookup(AttrPosition)
	return arr.Sharing
}

// Bounds returns the bounding box of the vertices, or false for an empty
// mesh.
func (m *Mesh) Bounds() (types.Bounds, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bounds == nil {
		b, ok := types.BoundsOf(m.Positions())
		m.bounds = &boundsCache{b: b, ok: ok}
	}
	return m.bounds.b, m.bounds.ok
}
