package field

import (
	"fmt"

	"github.com/gogpu/geofield/conversion"
	"github.com/gogpu/geofield/types"
)

// ConversionNode converts its child field to another kind.
type ConversionNode struct {
	src Field
	to  types.ValueKind
}

// Convert returns f as a field of kind to. It returns f itself when the
// kinds match and the empty field when no conversion exists. Constants are
// converted immediately.
func Convert(f Field, to types.ValueKind) Field {
	if f.IsEmpty() {
		return Field{}
	}
	from := f.Kind()
	if from == to {
		return f
	}
	reg := conversion.Default()
	if !reg.IsConvertible(from, to) {
		return Field{}
	}
	if c, ok := f.node.(*ConstantNode); ok {
		return Field{node: &ConstantNode{kind: to, value: reg.ConvertValue(from, to, c.value)}}
	}
	return Field{node: &ConversionNode{src: f, to: to}}
}

func (c *ConversionNode) Kind() types.ValueKind { return c.to }
func (c *ConversionNode) Children() []Field     { return []Field{c.src} }
func (c *ConversionNode) Source() Field         { return c.src }

func (c *ConversionNode) Hash() uint64 {
	return CombineHashes(HashStrings("convert", c.to.String()), c.src.Hash())
}

func (c *ConversionNode) Equal(other Node) bool {
	o, ok := other.(*ConversionNode)
	return ok && o.to == c.to && o.src.Equal(c.src)
}

func (c *ConversionNode) DebugName() string {
	return fmt.Sprintf("%v(%s)", c.to, c.src)
}
