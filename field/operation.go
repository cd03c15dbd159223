package field

import (
	"fmt"

	"github.com/gogpu/geofield/indexmask"
	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

// OperationFunc computes an operation's values for the indices of mask.
// inputs holds one evaluated array per child field, each indexable by
// every index of mask. dst has the operation's kind; only the indices of
// mask may be written. It is called concurrently on disjoint masks.
type OperationFunc func(inputs []varray.GVArray, mask indexmask.Mask, dst varray.GSpan)

// OperationNode computes values from child fields.
//
// Operations wrap arbitrary functions, so two operation nodes are equal
// only when they are the same node.
type OperationNode struct {
	name   string
	kind   types.ValueKind
	inputs []Field
	fn     OperationFunc
	hash   uint64
}

// NewOperation returns a field computing fn over inputs. It returns the
// empty field if any input is empty.
func NewOperation(name string, kind types.ValueKind, inputs []Field, fn OperationFunc) Field {
	if !kind.IsValid() {
		panic(fmt.Sprintf("field: operation %q with invalid kind", name))
	}
	hashes := make([]uint64, len(inputs))
	for i, in := range inputs {
		if in.IsEmpty() {
			return Field{}
		}
		hashes[i] = in.Hash()
	}
	return Field{node: &OperationNode{
		name:   name,
		kind:   kind,
		inputs: append([]Field(nil), inputs...),
		fn:     fn,
		hash:   CombineHashes(HashStrings("op", name, kind.String()), hashes...),
	}}
}

func (op *OperationNode) Kind() types.ValueKind { return op.kind }
func (op *OperationNode) Hash() uint64          { return op.hash }
func (op *OperationNode) DebugName() string     { return op.name }
func (op *OperationNode) Children() []Field     { return op.inputs }

func (op *OperationNode) Equal(other Node) bool {
	o, ok := other.(*OperationNode)
	return ok && o == op
}

// Map returns a field applying fn to every value of a. a is implicitly
// converted to A; the result is empty if that is impossible.
func Map[A, R types.Value](name string, a Field, fn func(A) R) Field {
	a = Convert(a, types.KindOf[A]())
	return NewOperation(name, types.KindOf[R](), []Field{a},
		func(in []varray.GVArray, mask indexmask.Mask, dst varray.GSpan) {
			src := varray.Typed[A](in[0])
			out := varray.SpanOf[R](dst)
			if span, ok := src.Span(); ok {
				mask.ForEachIndex(func(i int) { out[i] = fn(span[i]) })
				return
			}
			mask.ForEachIndex(func(i int) { out[i] = fn(src.Get(i)) })
		})
}

// Map2 is Map for two operands.
func Map2[A, B, R types.Value](name string, a, b Field, fn func(A, B) R) Field {
	a = Convert(a, types.KindOf[A]())
	b = Convert(b, types.KindOf[B]())
	return NewOperation(name, types.KindOf[R](), []Field{a, b},
		func(in []varray.GVArray, mask indexmask.Mask, dst varray.GSpan) {
			va, vb := varray.Typed[A](in[0]), varray.Typed[B](in[1])
			out := varray.SpanOf[R](dst)
			mask.ForEachIndex(func(i int) { out[i] = fn(va.Get(i), vb.Get(i)) })
		})
}

// Map3 is Map for three operands.
func Map3[A, B, C, R types.Value](name string, a, b, c Field, fn func(A, B, C) R) Field {
	a = Convert(a, types.KindOf[A]())
	b = Convert(b, types.KindOf[B]())
	c = Convert(c, types.KindOf[C]())
	return NewOperation(name, types.KindOf[R](), []Field{a, b, c},
		func(in []varray.GVArray, mask indexmask.Mask, dst varray.GSpan) {
			va, vb, vc := varray.Typed[A](in[0]), varray.Typed[B](in[1]), varray.Typed[C](in[2])
			out := varray.SpanOf[R](dst)
			mask.ForEachIndex(func(i int) { out[i] = fn(va.Get(i), vb.Get(i), vc.Get(i)) })
		})
}
