// Package field implements lazily evaluated field expressions.
//
// A Field is an immutable handle to a node graph. Leaves are constants or
// inputs that read data from a Context; inner nodes are operations and
// implicit conversions. Fields are context independent: the same field
// can be evaluated on a mesh face domain, a point cloud or an index range.
//
// Nodes are hashable and comparable so identical sub-graphs evaluate once
// per Evaluator run. Equal must be consistent with Hash.
//
// Field graphs must be acyclic. Node constructors only take existing
// fields, so graphs built through this package always are.
package field

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/gogpu/geofield/indexmask"
	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

// Node is one vertex of a field graph.
type Node interface {
	// Kind returns the kind of the values the node produces.
	Kind() types.ValueKind
	// Hash returns a hash consistent with Equal.
	Hash() uint64
	// Equal reports whether other computes the same values as the node.
	Equal(other Node) bool
	// DebugName returns a short human readable description.
	DebugName() string
}

// Field is a handle to a field node. The zero value is the empty field,
// which signals an unavailable or impossible computation.
type Field struct {
	node Node
}

// FromNode wraps n in a Field.
func FromNode(n Node) Field { return Field{node: n} }

// Node returns the root node, or nil for the empty field.
func (f Field) Node() Node { return f.node }

// IsEmpty reports whether the field has no node.
func (f Field) IsEmpty() bool { return f.node == nil }

// Kind returns the kind of the field values, or KindInvalid when empty.
func (f Field) Kind() types.ValueKind {
	if f.node == nil {
		return types.KindInvalid
	}
	return f.node.Kind()
}

// Hash returns the hash of the root node.
func (f Field) Hash() uint64 {
	if f.node == nil {
		return 0
	}
	return f.node.Hash()
}

// Equal reports whether both fields compute the same values.
func (f Field) Equal(o Field) bool {
	if f.node == nil || o.node == nil {
		return f.node == nil && o.node == nil
	}
	return f.node.Equal(o.node)
}

// String returns the debug name of the root node.
func (f Field) String() string {
	if f.node == nil {
		return "<empty>"
	}
	return f.node.DebugName()
}

// InputCategory classifies the data an input reads.
type InputCategory uint8

const (
	// CategoryUnknown is an input without a classification.
	CategoryUnknown InputCategory = iota
	// CategoryNamedAttribute reads a named attribute.
	CategoryNamedAttribute
	// CategoryGenerated computes data from the geometry (index, normal).
	CategoryGenerated
	// CategoryAnonymousAttribute reads an anonymous attribute.
	CategoryAnonymousAttribute
)

// Context identifies what a field is evaluated against.
//
// Implementations normally forward to in.VArrayForContext(ctx, mask), and
// may intercept inputs they know how to serve directly.
type Context interface {
	VArrayForInput(in Input, mask indexmask.Mask) varray.GVArray
}

// Input is a leaf node that reads data from a Context.
type Input interface {
	Node
	// VArrayForContext returns the input values for the indices of mask.
	// The returned array is indexed by element index, so it must be at
	// least mask.MinArraySize() long. An empty array means the input is not
	// available on this context.
	VArrayForContext(ctx Context, mask indexmask.Mask) varray.GVArray
	// Category classifies the input for domain detection and diagnostics.
	Category() InputCategory
}

// BaseInput holds the descriptive state shared by input implementations.
type BaseInput struct {
	kind     types.ValueKind
	name     string
	category InputCategory
}

// NewBaseInput returns a BaseInput for values of kind k.
func NewBaseInput(k types.ValueKind, debugName string, category InputCategory) BaseInput {
	return BaseInput{kind: k, name: debugName, category: category}
}

// Kind returns the kind of the input values.
func (b BaseInput) Kind() types.ValueKind { return b.kind }

// DebugName returns the input's description.
func (b BaseInput) DebugName() string { return b.name }

// Category returns the input's category.
func (b BaseInput) Category() InputCategory { return b.category }

// FromInput wraps an input in a Field.
func FromInput(in Input) Field { return Field{node: in} }

// HashStrings hashes a sequence of strings, separating the parts so that
// ("ab","c") and ("a","bc") differ.
func HashStrings(parts ...string) uint64 {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(p)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

// CombineHashes mixes child hashes into seed in order.
func CombineHashes(seed uint64, hashes ...uint64) uint64 {
	d := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], seed)
	_, _ = d.Write(buf[:])
	for _, h := range hashes {
		binary.LittleEndian.PutUint64(buf[:], h)
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// hashValue hashes a boxed value of kind k.
func hashValue(k types.ValueKind, v any) uint64 {
	d := xxhash.New()
	var buf [4]byte
	putF := func(f float32) {
		if f == 0 {
			f = 0 // -0 compares equal to +0
		}
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(f))
		_, _ = d.Write(buf[:])
	}
	putI := func(i int32) {
		binary.LittleEndian.PutUint32(buf[:], uint32(i))
		_, _ = d.Write(buf[:])
	}
	_, _ = d.Write([]byte{byte(k)})
	switch x := v.(type) {
	case bool:
		if x {
			putI(1)
		} else {
			putI(0)
		}
	case int8:
		putI(int32(x))
	case int32:
		putI(x)
	case types.Int2:
		putI(x.X)
		putI(x.Y)
	case float32:
		putF(x)
	case types.Float2:
		putF(x[0])
		putF(x[1])
	case types.Float3:
		putF(x[0])
		putF(x[1])
		putF(x[2])
	case types.ColorGeometry4f:
		putF(x.R)
		putF(x.G)
		putF(x.B)
		putF(x.A)
	case types.ColorGeometry4b:
		_, _ = d.Write([]byte{x.R, x.G, x.B, x.A})
	}
	return d.Sum64()
}
