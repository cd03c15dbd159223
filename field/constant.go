package field

import (
	"fmt"

	"github.com/gogpu/geofield/indexmask"
	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

// ConstantNode is a field node with the same value everywhere.
type ConstantNode struct {
	kind  types.ValueKind
	value any
}

// Constant returns a field with value v on every element.
func Constant[T types.Value](v T) Field {
	return Field{node: &ConstantNode{kind: types.KindOf[T](), value: v}}
}

// ConstantAny returns a constant field from a boxed value of kind k.
func ConstantAny(k types.ValueKind, v any) Field {
	if types.KindOfValue(v) != k {
		panic(fmt.Sprintf("field: constant %T is not of kind %v", v, k))
	}
	return Field{node: &ConstantNode{kind: k, value: v}}
}

// True returns the constant field true, the usual full selection.
func True() Field { return Constant(true) }

// False returns the constant field false.
func False() Field { return Constant(false) }

// Kind returns the constant's kind.
func (c *ConstantNode) Kind() types.ValueKind { return c.kind }

// Value returns the boxed constant.
func (c *ConstantNode) Value() any { return c.value }

// Hash hashes the kind and value.
func (c *ConstantNode) Hash() uint64 { return hashValue(c.kind, c.value) }

// Equal compares kinds and values.
func (c *ConstantNode) Equal(other Node) bool {
	o, ok := other.(*ConstantNode)
	return ok && o.kind == c.kind && varray.ValuesEqual(c.kind, c.value, o.value)
}

// DebugName formats the value.
func (c *ConstantNode) DebugName() string { return fmt.Sprintf("%v", c.value) }

// nullContext serves no inputs.
type nullContext struct{}

func (nullContext) VArrayForInput(Input, indexmask.Mask) varray.GVArray { return varray.GVArray{} }

// EvaluateConstant evaluates a field that reads no inputs. It returns false
// for empty fields and fields that depend on an input.
func EvaluateConstant(f Field) (any, bool) {
	if f.IsEmpty() || DependsOnInput(f) {
		return nil, false
	}
	if c, ok := f.node.(*ConstantNode); ok {
		return c.value, true
	}
	results := EvaluateFields(nullContext{}, indexmask.FromSize(1), []Field{f}, nil)
	return results[0].Get(0), true
}
