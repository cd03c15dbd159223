// Package indexmask implements the sparse index selection used to restrict
// evaluation and writes to a subset of a domain.
package indexmask

import (
	"sort"
	"sync"

	"github.com/gogpu/geofield/internal/parallel"
)

// Mask is an ordered set of non-negative indices.
//
// A mask uses range encoding when its indices are contiguous and explicit
// sorted indices otherwise. The zero value is the empty mask. Masks are
// immutable; methods never modify the receiver.
type Mask struct {
	start   int
	size    int
	indices []int
}

// FromSize returns the mask [0, n).
func FromSize(n int) Mask {
	return FromRange(0, n)
}

// FromRange returns the mask [start, start+size).
func FromRange(start, size int) Mask {
	if size <= 0 {
		return Mask{}
	}
	return Mask{start: start, size: size}
}

// FromIndices returns a mask over the given sorted, duplicate-free indices.
// The slice is owned by the mask afterwards. Contiguous input collapses to
// range encoding.
func FromIndices(indices []int) Mask {
	n := len(indices)
	if n == 0 {
		return Mask{}
	}
	if indices[n-1]-indices[0] == n-1 {
		return FromRange(indices[0], n)
	}
	return Mask{size: n, indices: indices}
}

// FromBools returns the indices of universe whose flag is set.
// flags is indexed by element index, not by position in universe.
func FromBools(flags []bool, universe Mask) Mask {
	return FromPredicate(universe, parallel.GrainLarge, func(i int) bool { return flags[i] })
}

// scratchPool hands out per-chunk index buffers so parallel mask
// construction does not contend on allocation.
var scratchPool = sync.Pool{
	New: func() any {
		buf := make([]int, 0, parallel.GrainLarge)
		return &buf
	},
}

// FromPredicate returns the indices of universe for which pred is true.
// The universe is split into chunks of grain positions that are filtered in
// parallel; pred must be safe for concurrent calls.
func FromPredicate(universe Mask, grain int, pred func(i int) bool) Mask {
	n := universe.Size()
	if n == 0 {
		return Mask{}
	}
	if grain < 1 {
		grain = 1
	}
	numChunks := (n + grain - 1) / grain
	results := make([][]int, numChunks)
	parallel.For(numChunks, 1, func(cs, ce int) {
		for c := cs; c < ce; c++ {
			bufPtr := scratchPool.Get().(*[]int)
			buf := (*bufPtr)[:0]
			universe.Slice(c*grain, min(grain, n-c*grain)).ForEachIndex(func(i int) {
				if pred(i) {
					buf = append(buf, i)
				}
			})
			results[c] = append([]int(nil), buf...)
			*bufPtr = buf
			scratchPool.Put(bufPtr)
		}
	})

	total := 0
	for _, r := range results {
		total += len(r)
	}
	if total == n {
		return universe
	}
	indices := make([]int, 0, total)
	for _, r := range results {
		indices = append(indices, r...)
	}
	return FromIndices(indices)
}

// Size returns the number of indices in the mask.
func (m Mask) Size() int { return m.size }

// IsEmpty reports whether the mask contains no index.
func (m Mask) IsEmpty() bool { return m.size == 0 }

// IsRange reports whether the mask uses range encoding.
func (m Mask) IsRange() bool { return m.indices == nil }

// ToRange returns the mask as [start, start+size) when it is contiguous.
func (m Mask) ToRange() (start, size int, ok bool) {
	if m.indices != nil {
		return 0, 0, false
	}
	return m.start, m.size, true
}

// At returns the index stored at position pos.
func (m Mask) At(pos int) int {
	if m.indices == nil {
		return m.start + pos
	}
	return m.indices[pos]
}

// First returns the smallest index. The mask must not be empty.
func (m Mask) First() int { return m.At(0) }

// Last returns the largest index. The mask must not be empty.
func (m Mask) Last() int { return m.At(m.size - 1) }

// MinArraySize returns the smallest array length that can be indexed by
// every index of the mask.
func (m Mask) MinArraySize() int {
	if m.size == 0 {
		return 0
	}
	return m.Last() + 1
}

// Contains reports whether index i is part of the mask.
func (m Mask) Contains(i int) bool {
	if m.indices == nil {
		return i >= m.start && i < m.start+m.size
	}
	pos := sort.SearchInts(m.indices, i)
	return pos < len(m.indices) && m.indices[pos] == i
}

// ForEachIndex calls fn for every index in ascending order.
func (m Mask) ForEachIndex(fn func(i int)) {
	if m.indices == nil {
		for i := m.start; i < m.start+m.size; i++ {
			fn(i)
		}
		return
	}
	for _, i := range m.indices {
		fn(i)
	}
}

// ForEachIndexPos calls fn with every index and its position in the mask.
// The position is the destination index when gathering into a compact array.
func (m Mask) ForEachIndexPos(fn func(i, pos int)) {
	if m.indices == nil {
		for pos := range m.size {
			fn(m.start+pos, pos)
		}
		return
	}
	for pos, i := range m.indices {
		fn(i, pos)
	}
}

// ForEachSegment calls fn for every maximal contiguous run of indices.
func (m Mask) ForEachSegment(fn func(start, size int)) {
	if m.size == 0 {
		return
	}
	if m.indices == nil {
		fn(m.start, m.size)
		return
	}
	runStart := 0
	for pos := 1; pos <= len(m.indices); pos++ {
		if pos == len(m.indices) || m.indices[pos] != m.indices[pos-1]+1 {
			fn(m.indices[runStart], pos-runStart)
			runStart = pos
		}
	}
}

// Slice returns the sub-mask of size positions beginning at position start.
func (m Mask) Slice(start, size int) Mask {
	if size <= 0 {
		return Mask{}
	}
	if m.indices == nil {
		return FromRange(m.start+start, size)
	}
	return Mask{size: size, indices: m.indices[start : start+size]}
}

// ForEachChunk splits the mask into chunks of at least grain positions and
// calls fn on them in parallel.
func (m Mask) ForEachChunk(grain int, fn func(chunk Mask)) {
	parallel.For(m.size, grain, func(start, end int) {
		fn(m.Slice(start, end-start))
	})
}

// Indices returns the indices as a new slice.
func (m Mask) Indices() []int {
	out := make([]int, 0, m.size)
	m.ForEachIndex(func(i int) { out = append(out, i) })
	return out
}

// Complement returns the indices of [0, universeSize) not in the mask.
func (m Mask) Complement(universeSize int) Mask {
	if m.size == 0 {
		return FromSize(universeSize)
	}
	out := make([]int, 0, max(universeSize-m.size, 0))
	pos := 0
	for i := range universeSize {
		if pos < m.size && m.At(pos) == i {
			pos++
			continue
		}
		out = append(out, i)
	}
	return FromIndices(out)
}

// Equal reports whether both masks contain the same indices.
func (m Mask) Equal(o Mask) bool {
	if m.size != o.size {
		return false
	}
	for pos := range m.size {
		if m.At(pos) != o.At(pos) {
			return false
		}
	}
	return true
}
