package field

import (
	"github.com/gogpu/geofield/indexmask"
	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

// IndexInput produces the 0-based index of each element.
type IndexInput struct {
	BaseInput
}

// Index returns a field of element indices.
func Index() Field {
	return FromInput(&IndexInput{BaseInput: NewBaseInput(types.KindInt32, "Index", CategoryGenerated)})
}

// IndexVArray returns the index array covering mask.
func IndexVArray(mask indexmask.Mask) varray.GVArray {
	return varray.FromTyped(varray.ForFunc(mask.MinArraySize(), func(i int) int32 { return int32(i) }))
}

func (in *IndexInput) VArrayForContext(_ Context, mask indexmask.Mask) varray.GVArray {
	return IndexVArray(mask)
}

func (in *IndexInput) Hash() uint64 { return HashStrings("index") }

func (in *IndexInput) Equal(other Node) bool {
	_, ok := other.(*IndexInput)
	return ok
}
