package mesh

import (
	"github.com/gogpu/geofield/attribute"
	"github.com/gogpu/geofield/internal/cache"
	"github.com/gogpu/geofield/sharing"
)

// topologyKey identifies the buffers adjacency is derived from. Mesh copies
// share these buffers, so they share one cache entry.
type topologyKey struct {
	faces      *offsets
	edgeVerts  *sharing.Info
	cornerVert *sharing.Info
	cornerEdge *sharing.Info
	numVerts   int
}

// topology holds adjacency groups used for domain interpolation.
type topology struct {
	faceVerts   attribute.Groups
	faceEdges   attribute.Groups
	faceCorners attribute.Groups
	edgeVerts   attribute.Groups
	edgeCorners attribute.Groups
	edgeFaces   attribute.Groups
	vertCorners attribute.Groups
	vertEdges   attribute.Groups
	vertFaces   attribute.Groups
	cornerEdges attribute.Groups
	cornerVert  []int
	cornerFace  []int
}

var topologyCache = cache.New[topologyKey, *topology](64)

func (m *Mesh) topologyKey() topologyKey {
	token := func(id attribute.ID) *sharing.Info {
		arr, _ := m.attrs.Lookup(id)
		return arr.Sharing
	}
	return topologyKey{
		faces:      m.faces,
		edgeVerts:  token(AttrEdgeVerts),
		cornerVert: token(AttrCornerVert),
		cornerEdge: token(AttrCornerEdge),
		numVerts:   m.numVerts,
	}
}

func (m *Mesh) topology() *topology {
	return topologyCache.GetOrCreate(m.topologyKey(), func() *topology { return buildTopology(m) })
}

// tagTopologyChanged drops the adjacency cached for the current buffers.
func (m *Mesh) tagTopologyChanged() {
	topologyCache.Delete(m.topologyKey())
	m.TagPositionsChanged()
}

// buildGroups collects groups in two passes: emit is called once to count
// and once to fill, and must report the same pairs both times.
func buildGroups(n int, emit func(add func(group, member int))) attribute.Groups {
	offsets := make([]int, n+1)
	emit(func(g, _ int) { offsets[g+1]++ })
	for i := 1; i <= n; i++ {
		offsets[i] += offsets[i-1]
	}
	fill := append([]int(nil), offsets[:n]...)
	indices := make([]int, offsets[n])
	emit(func(g, member int) {
		indices[fill[g]] = member
		fill[g]++
	})
	return attribute.Groups{Offsets: offsets, Indices: indices}
}

func toInts(s []int32) []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[i] = int(v)
	}
	return out
}

func buildTopology(m *Mesh) *topology {
	faceOffsets := m.FaceOffsets()
	cornerVert := toInts(m.CornerVerts())
	cornerEdge := toInts(m.CornerEdges())
	edges := m.EdgeVerts()
	numFaces, numCorners := m.NumFaces(), m.NumCorners()

	t := &topology{
		faceVerts:   attribute.Groups{Offsets: faceOffsets, Indices: cornerVert},
		faceEdges:   attribute.Groups{Offsets: faceOffsets, Indices: cornerEdge},
		faceCorners: attribute.Groups{Offsets: faceOffsets},
		cornerVert:  cornerVert,
		cornerFace:  make([]int, numCorners),
	}
	for f := range numFaces {
		for c := faceOffsets[f]; c < faceOffsets[f+1]; c++ {
			t.cornerFace[c] = f
		}
	}

	edgeIndices := make([]int, 0, 2*len(edges))
	edgeOffsets := make([]int, 0, len(edges)+1)
	for _, e := range edges {
		edgeOffsets = append(edgeOffsets, len(edgeIndices))
		edgeIndices = append(edgeIndices, int(e.X), int(e.Y))
	}
	edgeOffsets = append(edgeOffsets, len(edgeIndices))
	t.edgeVerts = attribute.Groups{Offsets: edgeOffsets, Indices: edgeIndices}

	next := func(c int) int {
		f := t.cornerFace[c]
		if c+1 == faceOffsets[f+1] {
			return faceOffsets[f]
		}
		return c + 1
	}
	prev := func(c int) int {
		f := t.cornerFace[c]
		if c == faceOffsets[f] {
			return faceOffsets[f+1] - 1
		}
		return c - 1
	}

	t.edgeCorners = buildGroups(len(edges), func(add func(int, int)) {
		for c := range numCorners {
			add(cornerEdge[c], c)
			add(cornerEdge[c], next(c))
		}
	})
	t.cornerEdges = buildGroups(numCorners, func(add func(int, int)) {
		for c := range numCorners {
			add(c, cornerEdge[prev(c)])
			add(c, cornerEdge[c])
		}
	})
	t.edgeFaces = t.faceEdges.Invert(len(edges))
	t.vertCorners = buildGroups(m.numVerts, func(add func(int, int)) {
		for c, v := range cornerVert {
			add(v, c)
		}
	})
	t.vertEdges = t.edgeVerts.Invert(m.numVerts)
	t.vertFaces = t.faceVerts.Invert(m.numVerts)
	return t
}
