// Package greasepencil implements layered stroke data.
//
// Each layer references one drawing, a curves set holding its strokes.
// Drawings are shared between copies of a GreasePencil and copied when a
// layer writes to a shared drawing. Per-layer data is stored as attributes
// on attribute.Layer.
package greasepencil

import (
	"github.com/gogpu/geofield/attribute"
	"github.com/gogpu/geofield/curves"
	"github.com/gogpu/geofield/sharing"
	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

// Layer is a named layer, optionally inside a named group.
type Layer struct {
	Name  string
	Group string
}

// drawing is a curves set with the token counting the GreasePencil values
// referencing it.
type drawing struct {
	curves  *curves.Curves
	sharing *sharing.Info
}

// GreasePencil is a stack of layers. It must be exclusively owned while it
// is modified.
type GreasePencil struct {
	layers     []Layer
	drawings   []*drawing
	layerAttrs *attribute.Storage
}

// New returns an empty grease pencil.
func New() *GreasePencil {
	return &GreasePencil{layerAttrs: attribute.NewStorage()}
}

// AddLayer appends a layer drawing strokes c and returns its index. c may
// be nil for an empty drawing. Existing layer attributes get the default
// value for the new layer.
func (gp *GreasePencil) AddLayer(name, group string, c *curves.Curves) int {
	if c == nil {
		c = curves.New(nil, nil)
	}
	gp.layers = append(gp.layers, Layer{Name: name, Group: group})
	gp.drawings = append(gp.drawings, &drawing{curves: c, sharing: sharing.New()})

	gp.layerAttrs.Resize(attribute.Layer, len(gp.layers))
	return len(gp.layers) - 1
}

// NumLayers returns the number of layers.
func (gp *GreasePencil) NumLayers() int { return len(gp.layers) }

// Layer returns layer i.
func (gp *GreasePencil) Layer(i int) Layer { return gp.layers[i] }

// Layers returns all layers. The slice must not be modified.
func (gp *GreasePencil) Layers() []Layer { return gp.layers }

// LayerIndex returns the index of the first layer called name.
func (gp *GreasePencil) LayerIndex(name string) (int, bool) {
	for i, l := range gp.layers {
		if l.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Drawing returns the strokes of layer i for reading.
func (gp *GreasePencil) Drawing(i int) *curves.Curves { return gp.drawings[i].curves }

// DrawingForWrite returns the strokes of layer i for writing, copying them
// first if another grease pencil shares the drawing.
func (gp *GreasePencil) DrawingForWrite(i int) *curves.Curves {
	d := gp.drawings[i]
	if d.sharing.IsShared() {
		d.sharing.RemoveUser()
		d = &drawing{curves: d.curves.Copy(), sharing: sharing.New()}
		gp.drawings[i] = d
	}
	return d.curves
}

// DrawingShared reports whether layer i's drawing is referenced by another
// grease pencil.
func (gp *GreasePencil) DrawingShared(i int) bool { return gp.drawings[i].sharing.IsShared() }

// LayerAttributes returns a read-only accessor for layer attributes.
func (gp *GreasePencil) LayerAttributes() attribute.Accessor {
	return attribute.NewAccessor(layerProvider{gp})
}

// LayerAttributesForWrite returns a mutable accessor for layer attributes.
func (gp *GreasePencil) LayerAttributesForWrite() attribute.MutableAccessor {
	return attribute.NewMutableAccessor(layerProvider{gp})
}

// Copy returns a grease pencil sharing the drawings and layer attributes of
// gp.
func (gp *GreasePencil) Copy() *GreasePencil {
	out := &GreasePencil{
		layers:     append([]Layer(nil), gp.layers...),
		drawings:   make([]*drawing, len(gp.drawings)),
		layerAttrs: gp.layerAttrs.Copy(),
	}
	for i, d := range gp.drawings {
		d.sharing.AddUser()
		out.drawings[i] = d
	}
	return out
}

// Release drops gp's claim on its drawings and layer attributes.
func (gp *GreasePencil) Release() {
	for _, d := range gp.drawings {
		d.sharing.RemoveUser()
		if d.sharing.Users() == 0 {
			d.curves.Release()
		}
	}
	gp.layerAttrs.Release()
}

// Bounds merges the bounds of every drawing.
func (gp *GreasePencil) Bounds() (types.Bounds, bool) {
	var acc types.Bounds
	var ok bool
	for _, d := range gp.drawings {
		b, bok := d.curves.Bounds()
		acc, ok = types.MergeOptional(acc, ok, b, bok)
	}
	return acc, ok
}

// RemoveAnonymousAttributes removes anonymous attributes from the layers
// and every drawing.
func (gp *GreasePencil) RemoveAnonymousAttributes() {
	gp.LayerAttributesForWrite().RemoveAnonymous()
	for i := range gp.drawings {
		if hasAnonymous(gp.drawings[i].curves.Attributes()) {
			gp.DrawingForWrite(i).AttributesForWrite().RemoveAnonymous()
		}
	}
}

func hasAnonymous(a attribute.Accessor) bool {
	found := false
	a.ForEach(func(id attribute.ID, _ attribute.MetaData) bool {
		found = id.IsAnonymous()
		return !found
	})
	return found
}

// SelectLayers reports for every layer whether its name or group equals
// name.
func (gp *GreasePencil) SelectLayers(name string) []bool {
	out := make([]bool, len(gp.layers))
	for i, l := range gp.layers {
		out[i] = l.Name == name || (l.Group != "" && l.Group == name)
	}
	return out
}

type layerProvider struct {
	gp *GreasePencil
}

func (p layerProvider) DomainSize(d attribute.Domain) int {
	if d == attribute.Layer {
		return len(p.gp.layers)
	}
	return 0
}

func (p layerProvider) SupportsDomain(d attribute.Domain) bool { return d == attribute.Layer }
func (p layerProvider) Storage() *attribute.Storage            { return p.gp.layerAttrs }
func (p layerProvider) Builtins() attribute.Builtins           { return nil }
func (p layerProvider) TagModified(attribute.ID)               {}

func (p layerProvider) AdaptDomain(src varray.GVArray, from, to attribute.Domain) varray.GVArray {
	if from == to {
		return src
	}
	return varray.GVArray{}
}
