package geometry

import (
	"github.com/gogpu/geofield/attribute"
	"github.com/gogpu/geofield/field"
	"github.com/gogpu/geofield/indexmask"
	"github.com/gogpu/geofield/mesh"
	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

// DomainPreferrer is implemented by inputs that have a natural domain on
// some components. TryDetectFieldDomain uses it.
type DomainPreferrer interface {
	PreferredDomain(c Component) (attribute.Domain, bool)
}

// AttrID is the optional stable identifier attribute read by ID.
const AttrID attribute.ID = "id"

// AttributeInput reads an attribute by identifier.
type AttributeInput struct {
	field.BaseInput
	id attribute.ID
}

// Attribute returns a field reading attribute id as kind k. On the points
// and curves of a grease pencil layer, an attribute that only exists on the
// layer domain is broadcast from the layer.
func Attribute(id attribute.ID, k types.ValueKind) field.Field {
	if id.IsEmpty() || !k.IsValid() {
		return field.Field{}
	}
	category := field.CategoryNamedAttribute
	if id.IsAnonymous() {
		category = field.CategoryAnonymousAttribute
	}
	return field.FromInput(&AttributeInput{BaseInput: field.NewBaseInput(k, string(id), category), id: id})
}

// AnonymousAttribute returns a field reading the anonymous attribute id.
// It returns the empty field when id is not anonymous.
func AnonymousAttribute(id attribute.ID, k types.ValueKind) field.Field {
	if !id.IsAnonymous() {
		return field.Field{}
	}
	return Attribute(id, k)
}

// Position returns a field of the builtin positions.
func Position() field.Field { return Attribute(mesh.AttrPosition, types.KindFloat3) }

// InstanceReferenceIndex returns a field of the instance reference handles.
func InstanceReferenceIndex() field.Field { return Attribute(AttrReferenceIndex, types.KindInt32) }

// ID returns the identifier read by the input.
func (in *AttributeInput) ID() attribute.ID { return in.id }

func (in *AttributeInput) VArrayForContext(ctx field.Context, _ indexmask.Mask) varray.GVArray {
	g, ok := resolveContext(ctx)
	if !ok {
		return varray.GVArray{}
	}
	a, ok := g.Attributes()
	if !ok {
		return varray.GVArray{}
	}
	if v := a.LookupAs(in.id, g.domain, in.Kind()); !v.IsEmpty() {
		return v
	}
	if !g.isLayerDrawing() {
		return varray.GVArray{}
	}
	layerValues := g.gp.LayerAttributes().LookupAs(in.id, attribute.Layer, in.Kind())
	if layerValues.IsEmpty() {
		return layerValues
	}
	return varray.ForSingleAny(in.Kind(), layerValues.Get(g.layer), a.DomainSize(g.domain))
}

// PreferredDomain returns the domain the attribute is stored on.
func (in *AttributeInput) PreferredDomain(c Component) (attribute.Domain, bool) {
	a, ok := c.Attributes()
	if !ok {
		return 0, false
	}
	meta, ok := a.LookupMeta(in.id)
	return meta.Domain, ok
}

func (in *AttributeInput) Hash() uint64 {
	return field.HashStrings("attribute", string(in.id), in.Kind().String())
}

func (in *AttributeInput) Equal(other field.Node) bool {
	o, ok := other.(*AttributeInput)
	return ok && o.id == in.id && o.Kind() == in.Kind()
}

// AttributeExistsInput reports whether an attribute exists.
type AttributeExistsInput struct {
	field.BaseInput
	id attribute.ID
}

// AttributeExists returns a bool field that is true on every element when
// attribute id exists on the evaluated geometry.
func AttributeExists(id attribute.ID) field.Field {
	return field.FromInput(&AttributeExistsInput{
		BaseInput: field.NewBaseInput(types.KindBool, "Exists "+string(id), field.CategoryGenerated),
		id:        id,
	})
}

func (in *AttributeExistsInput) VArrayForContext(ctx field.Context, _ indexmask.Mask) varray.GVArray {
	g, ok := resolveContext(ctx)
	if !ok {
		return varray.GVArray{}
	}
	a, ok := g.Attributes()
	if !ok {
		return varray.GVArray{}
	}
	exists := a.Contains(in.id)
	if !exists && g.isLayerDrawing() {
		exists = g.gp.LayerAttributes().Contains(in.id)
	}
	return varray.FromTyped(varray.ForSingle(exists, a.DomainSize(g.domain)))
}

// PreferredDomain returns the domain of the attribute when it exists.
func (in *AttributeExistsInput) PreferredDomain(c Component) (attribute.Domain, bool) {
	a, ok := c.Attributes()
	if !ok {
		return 0, false
	}
	meta, ok := a.LookupMeta(in.id)
	return meta.Domain, ok
}

func (in *AttributeExistsInput) Hash() uint64 { return field.HashStrings("attribute_exists", string(in.id)) }

func (in *AttributeExistsInput) Equal(other field.Node) bool {
	o, ok := other.(*AttributeExistsInput)
	return ok && o.id == in.id
}

// IDInput reads the "id" attribute, falling back to the element index.
type IDInput struct {
	field.BaseInput
}

// ID returns a field of stable element identifiers.
func ID() field.Field {
	return field.FromInput(&IDInput{BaseInput: field.NewBaseInput(types.KindInt32, "ID", field.CategoryGenerated)})
}

func (in *IDInput) VArrayForContext(ctx field.Context, mask indexmask.Mask) varray.GVArray {
	g, ok := resolveContext(ctx)
	if !ok {
		return varray.GVArray{}
	}
	if a, ok := g.Attributes(); ok {
		if ids := a.LookupAs(AttrID, g.domain, types.KindInt32); !ids.IsEmpty() {
			return ids
		}
	}
	return field.IndexVArray(mask)
}

func (in *IDInput) Hash() uint64 { return field.HashStrings("id") }

func (in *IDInput) Equal(other field.Node) bool {
	_, ok := other.(*IDInput)
	return ok
}

// NamedLayerSelectionInput selects the grease pencil layers with a name.
type NamedLayerSelectionInput struct {
	field.BaseInput
	name string
}

// NamedLayerSelection returns a bool field that is true on layers named
// name or inside a group named name. On the points and curves of a layer
// it is true everywhere when that layer is selected.
func NamedLayerSelection(name string) field.Field {
	return field.FromInput(&NamedLayerSelectionInput{
		BaseInput: field.NewBaseInput(types.KindBool, "Named Layer "+name, field.CategoryNamedAttribute),
		name:      name,
	})
}

func (in *NamedLayerSelectionInput) VArrayForContext(ctx field.Context, _ indexmask.Mask) varray.GVArray {
	g, ok := resolveContext(ctx)
	if !ok || g.gp == nil {
		return varray.GVArray{}
	}
	selected := g.gp.SelectLayers(in.name)
	switch g.domain {
	case attribute.Layer:
		return varray.FromTyped(varray.ForSpan(selected))
	case attribute.Point, attribute.Curve:
		if g.layer < 0 {
			return varray.GVArray{}
		}
		return varray.FromTyped(varray.ForSingle(selected[g.layer], g.DomainSize()))
	}
	return varray.GVArray{}
}

// PreferredDomain is the layer domain on grease pencil.
func (in *NamedLayerSelectionInput) PreferredDomain(c Component) (attribute.Domain, bool) {
	return attribute.Layer, c.Kind() == KindGreasePencil
}

func (in *NamedLayerSelectionInput) Hash() uint64 {
	return field.HashStrings("named_layer_selection", in.name)
}

func (in *NamedLayerSelectionInput) Equal(other field.Node) bool {
	o, ok := other.(*NamedLayerSelectionInput)
	return ok && o.name == in.name
}

// NormalInput computes mesh or curve normals.
type NormalInput struct {
	field.BaseInput
}

// Normal returns a field of unit normals. It is empty on geometry without
// normals.
func Normal() field.Field {
	return field.FromInput(&NormalInput{BaseInput: field.NewBaseInput(types.KindFloat3, "Normal", field.CategoryGenerated)})
}

func (in *NormalInput) VArrayForContext(ctx field.Context, _ indexmask.Mask) varray.GVArray {
	g, ok := resolveContext(ctx)
	if !ok {
		return varray.GVArray{}
	}
	switch {
	case g.mesh != nil:
		return g.mesh.NormalsOnDomain(g.domain)
	case g.curves != nil:
		return g.curves.NormalsOnDomain(g.domain)
	case g.isLayerDrawing():
		return g.Curves().NormalsOnDomain(g.domain)
	}
	return varray.GVArray{}
}

// PreferredDomain is the domain normals are defined on: points for smooth
// meshes and curves, faces for fully sharp meshes, corners otherwise.
func (in *NormalInput) PreferredDomain(c Component) (attribute.Domain, bool) {
	switch x := c.(type) {
	case *MeshComponent:
		if x.mesh == nil {
			return 0, false
		}
		return meshNormalDomain(x.mesh), true
	case *CurveComponent:
		return attribute.Point, x.curves != nil
	}
	return 0, false
}

func meshNormalDomain(m *mesh.Mesh) attribute.Domain {
	sharp := m.Attributes().LookupAs(mesh.AttrSharpFace, attribute.Face, types.KindBool)
	if sharp.IsEmpty() || sharp.Size() == 0 {
		return attribute.Point
	}
	if v, ok := sharp.Single(); ok {
		if v.(bool) {
			return attribute.Face
		}
		return attribute.Point
	}
	flags := varray.Typed[bool](sharp)
	first := flags.Get(0)
	for i := 1; i < flags.Size(); i++ {
		if flags.Get(i) != first {
			return attribute.Corner
		}
	}
	if first {
		return attribute.Face
	}
	return attribute.Point
}

func (in *NormalInput) Hash() uint64 { return field.HashStrings("normal") }

func (in *NormalInput) Equal(other field.Node) bool {
	_, ok := other.(*NormalInput)
	return ok
}
