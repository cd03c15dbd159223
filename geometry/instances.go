package geometry

import (
	"fmt"

	"github.com/gogpu/geofield/attribute"
	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

// Builtin instance attributes.
const (
	AttrInstancePosition attribute.ID = "position"
	AttrReferenceIndex   attribute.ID = ".reference_index"
)

var instanceBuiltins = attribute.Builtins{
	AttrInstancePosition: {Domain: attribute.Instance, Kind: types.KindFloat3},
	AttrReferenceIndex:   {Domain: attribute.Instance, Kind: types.KindInt32, Validator: attribute.ClampMin(0)},
}

// Reference is what an instance places. A reference without geometry
// places nothing.
type Reference struct {
	Geometry *Set
}

// Instances places references at positions. Each instance stores the index
// of its reference in the builtin ".reference_index" attribute.
type Instances struct {
	references []Reference
	attrs      *attribute.Storage
	count      int
}

// NewInstances returns an empty instances container.
func NewInstances() *Instances {
	in := &Instances{attrs: attribute.NewStorage()}
	in.attrs.Add(AttrInstancePosition, attribute.Instance, varray.GSpanOf([]types.Float3{}), nil)
	in.attrs.Add(AttrReferenceIndex, attribute.Instance, varray.GSpanOf([]int32{}), nil)
	return in
}

// AddReference registers ref and returns its handle.
func (in *Instances) AddReference(ref Reference) int {
	in.references = append(in.references, ref)
	return len(in.references) - 1
}

// AddInstance places reference handle at position and returns the instance
// index. Other instance attributes get their default value.
func (in *Instances) AddInstance(handle int, position types.Float3) int {
	if handle < 0 || handle >= len(in.references) {
		panic(fmt.Sprintf("geometry: reference handle %d out of range [0,%d)", handle, len(in.references)))
	}
	in.count++
	in.attrs.Resize(attribute.Instance, in.count)
	i := in.count - 1
	in.spanForWrite(AttrInstancePosition).Set(i, position)
	in.spanForWrite(AttrReferenceIndex).Set(i, int32(handle))
	return i
}

func (in *Instances) spanForWrite(id attribute.ID) varray.GSpan {
	span, _ := in.attrs.SpanForWrite(id)
	return span
}

func (in *Instances) span(id attribute.ID) varray.GSpan {
	arr, _ := in.attrs.Lookup(id)
	return arr.Data
}

// NumInstances returns the number of instances.
func (in *Instances) NumInstances() int { return in.count }

// References returns the registered references. The slice must not be
// modified.
func (in *Instances) References() []Reference { return in.references }

// validHandle reports whether h indexes a reference. Captured handles are
// only clamped at zero, so readers skip the rest.
func (in *Instances) validHandle(h int32) bool {
	return h >= 0 && int(h) < len(in.references)
}

// ReferenceHandles returns the reference index of every instance.
func (in *Instances) ReferenceHandles() []int32 {
	return varray.SpanOf[int32](in.span(AttrReferenceIndex))
}

// Positions returns the position of every instance.
func (in *Instances) Positions() []types.Float3 {
	return varray.SpanOf[types.Float3](in.span(AttrInstancePosition))
}

// Attributes returns a read-only accessor for instance attributes.
func (in *Instances) Attributes() attribute.Accessor {
	return attribute.NewAccessor(instancesProvider{in})
}

// AttributesForWrite returns a mutable accessor for instance attributes.
func (in *Instances) AttributesForWrite() attribute.MutableAccessor {
	return attribute.NewMutableAccessor(instancesProvider{in})
}

// Copy returns instances sharing the attribute buffers and the referenced
// geometry of in.
func (in *Instances) Copy() *Instances {
	out := &Instances{
		references: make([]Reference, len(in.references)),
		attrs:      in.attrs.Copy(),
		count:      in.count,
	}
	for i, ref := range in.references {
		if ref.Geometry != nil {
			ref.Geometry = ref.Geometry.Copy()
		}
		out.references[i] = ref
	}
	return out
}

// Release drops in's claim on shared buffers and referenced geometry.
func (in *Instances) Release() {
	in.attrs.Release()
	for _, ref := range in.references {
		if ref.Geometry != nil {
			ref.Geometry.Release()
		}
	}
	in.references = nil
	in.count = 0
}

// OwnsDirectData reports whether every referenced geometry owns its data.
func (in *Instances) OwnsDirectData() bool {
	for _, ref := range in.references {
		if ref.Geometry != nil && !ref.Geometry.OwnsDirectData() {
			return false
		}
	}
	return true
}

// EnsureOwnsDirectData makes every referenced geometry own its data.
func (in *Instances) EnsureOwnsDirectData() {
	for _, ref := range in.references {
		if ref.Geometry != nil {
			ref.Geometry.EnsureOwnsDirectData()
		}
	}
}

// RemoveUnusedReferences drops references no instance uses and remaps the
// reference indices.
func (in *Instances) RemoveUnusedReferences() {
	used := make([]bool, len(in.references))
	for _, h := range in.ReferenceHandles() {
		if in.validHandle(h) {
			used[h] = true
		}
	}
	remap := make([]int32, len(in.references))
	kept := in.references[:0:0]
	for i, ref := range in.references {
		if !used[i] {
			if ref.Geometry != nil {
				ref.Geometry.Release()
			}
			continue
		}
		remap[i] = int32(len(kept))
		kept = append(kept, ref)
	}
	if len(kept) == len(in.references) {
		return
	}
	in.references = kept
	handles := varray.SpanOf[int32](in.spanForWrite(AttrReferenceIndex))
	for i, h := range handles {
		// Out of range handles stay out of range since references only shrink.
		if h >= 0 && int(h) < len(remap) {
			handles[i] = remap[h]
		}
	}
}

// Bounds merges the bounds of every placed reference, offset by the
// instance position.
func (in *Instances) Bounds() (types.Bounds, bool) {
	refBounds := make([]*types.Bounds, len(in.references))
	for i, ref := range in.references {
		if ref.Geometry == nil {
			continue
		}
		if b, ok := ref.Geometry.Bounds(); ok {
			refBounds[i] = &b
		}
	}
	var acc types.Bounds
	var ok bool
	positions := in.Positions()
	for i, h := range in.ReferenceHandles() {
		if !in.validHandle(h) {
			continue
		}
		b := refBounds[h]
		if b == nil {
			continue
		}
		p := positions[i]
		moved := types.Bounds{
			Min: types.Float3{b.Min[0] + p[0], b.Min[1] + p[1], b.Min[2] + p[2]},
			Max: types.Float3{b.Max[0] + p[0], b.Max[1] + p[1], b.Max[2] + p[2]},
		}
		acc, ok = types.MergeOptional(acc, ok, moved, true)
	}
	return acc, ok
}

type instancesProvider struct {
	in *Instances
}

func (p instancesProvider) DomainSize(d attribute.Domain) int {
	if d == attribute.Instance {
		return p.in.count
	}
	return 0
}

func (p instancesProvider) SupportsDomain(d attribute.Domain) bool { return d == attribute.Instance }
func (p instancesProvider) Storage() *attribute.Storage            { return p.in.attrs }
func (p instancesProvider) Builtins() attribute.Builtins           { return instanceBuiltins }
func (p instancesProvider) TagModified(attribute.ID)               {}

func (p instancesProvider) AdaptDomain(src varray.GVArray, from, to attribute.Domain) varray.GVArray {
	if from == to {
		return src
	}
	return varray.GVArray{}
}

// InstancesComponent holds instances.
type InstancesComponent struct {
	instances *Instances
	ownership Ownership
}

// NewInstancesComponent returns a component holding in.
func NewInstancesComponent(in *Instances, o Ownership) *InstancesComponent {
	return &InstancesComponent{instances: in, ownership: o}
}

func (c *InstancesComponent) sealed()             {}
func (c *InstancesComponent) Kind() ComponentKind { return KindInstances }

// IsEmpty reports whether there are no instances.
func (c *InstancesComponent) IsEmpty() bool {
	return c.instances == nil || c.instances.NumInstances() == 0
}

// Instances returns the instances for reading, or nil.
func (c *InstancesComponent) Instances() *Instances { return c.instances }

// InstancesForWrite returns the instances for writing, copying read-only
// data first.
func (c *InstancesComponent) InstancesForWrite() *Instances {
	if c.instances != nil && c.ownership == ReadOnly {
		c.instances = c.instances.Copy()
		c.ownership = Owned
	}
	return c.instances
}

// Replace swaps in in, releasing the previous instances.
func (c *InstancesComponent) Replace(in *Instances, o Ownership) {
	c.Release()
	c.instances, c.ownership = in, o
}

func (c *InstancesComponent) Copy() Component {
	if c.instances == nil {
		return &InstancesComponent{}
	}
	return &InstancesComponent{instances: c.instances.Copy(), ownership: Owned}
}

func (c *InstancesComponent) OwnsDirectData() bool {
	if c.instances == nil {
		return true
	}
	return c.ownership == Owned && c.instances.OwnsDirectData()
}

func (c *InstancesComponent) EnsureOwnsDirectData() {
	if c.instances == nil {
		return
	}
	if c.ownership != Owned {
		c.instances = c.instances.Copy()
		c.ownership = Owned
	}
	c.instances.EnsureOwnsDirectData()
}

func (c *InstancesComponent) Attributes() (attribute.Accessor, bool) {
	if c.instances == nil {
		return attribute.Accessor{}, false
	}
	return c.instances.Attributes(), true
}

func (c *InstancesComponent) AttributesForWrite() (attribute.MutableAccessor, bool) {
	if in := c.InstancesForWrite(); in != nil {
		return in.AttributesForWrite(), true
	}
	return attribute.MutableAccessor{}, false
}

func (c *InstancesComponent) Bounds() (types.Bounds, bool) {
	if c.instances == nil {
		return types.Bounds{}, false
	}
	return c.instances.Bounds()
}

// RemoveAnonymousAttributes removes anonymous instance attributes and the
// anonymous attributes of every referenced geometry.
func (c *InstancesComponent) RemoveAnonymousAttributes() {
	if c.instances == nil {
		return
	}
	in := c.InstancesForWrite()
	in.AttributesForWrite().RemoveAnonymous()
	for _, ref := range in.references {
		if ref.Geometry != nil {
			ref.Geometry.RemoveAnonymousAttributes()
		}
	}
}

func (c *InstancesComponent) Release() {
	if c.instances != nil && c.ownership == Owned {
		c.instances.Release()
	}
	c.instances = nil
}
