// Package geometry groups geometry components into sets and evaluates
// fields on them.
//
// A Set holds at most one Component per ComponentKind. Components are
// shared between copies of a Set and copied on the first write through
// Set.GetComponentForWrite, which is the only way to obtain a component
// that may be modified.
//
// Fields read geometry through the contexts of this package. Inputs such
// as Attribute, Normal or NamedLayerSelection resolve the context to the
// concrete geometry and return an empty array when they do not apply.
// TryCaptureFieldOnGeometry evaluates a field and stores it as an
// attribute, reusing existing storage where it can.
package geometry

import (
	"fmt"

	"github.com/gogpu/geofield/attribute"
	"github.com/gogpu/geofield/types"
)

// ComponentKind identifies the kind of a component.
type ComponentKind uint8

const (
	// KindMesh is a polygon mesh.
	KindMesh ComponentKind = iota
	// KindPointCloud is a set of points.
	KindPointCloud
	// KindInstances places references to other geometry.
	KindInstances
	// KindVolume holds volume grids.
	KindVolume
	// KindCurve is a set of curves.
	KindCurve
	// KindEdit carries data used to edit the original geometry.
	KindEdit
	// KindGreasePencil is layered stroke data.
	KindGreasePencil

	numComponentKinds = iota
)

var kindNames = [numComponentKinds]string{
	KindMesh:         "mesh",
	KindPointCloud:   "pointcloud",
	KindInstances:    "instances",
	KindVolume:       "volume",
	KindCurve:        "curve",
	KindEdit:         "edit",
	KindGreasePencil: "greasepencil",
}

// ComponentKinds lists every kind in slot order.
func ComponentKinds() []ComponentKind {
	out := make([]ComponentKind, numComponentKinds)
	for i := range out {
		out[i] = ComponentKind(i)
	}
	return out
}

// String returns the lower-case kind name.
func (k ComponentKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ComponentKind(%d)", k)
}

// Ownership describes how a component holds its data.
type Ownership uint8

const (
	// Owned data belongs to the component.
	Owned Ownership = iota
	// Editable data may be modified but belongs to someone else.
	Editable
	// ReadOnly data is copied before the component modifies it.
	ReadOnly
)

// String returns the ownership name.
func (o Ownership) String() string {
	switch o {
	case Owned:
		return "owned"
	case Editable:
		return "editable"
	case ReadOnly:
		return "read-only"
	}
	return fmt.Sprintf("Ownership(%d)", o)
}

// Component is one geometry representation inside a Set. The set of
// implementations is closed: *MeshComponent, *CurveComponent,
// *PointCloudComponent, *InstancesComponent, *VolumeComponent,
// *EditComponent and *GreasePencilComponent.
type Component interface {
	// Kind returns the component's slot.
	Kind() ComponentKind
	// IsEmpty reports whether the component holds no elements.
	IsEmpty() bool
	// Copy returns an owned component with the same data. Attribute
	// buffers are shared, not duplicated.
	Copy() Component
	// OwnsDirectData reports whether no data is borrowed.
	OwnsDirectData() bool
	// EnsureOwnsDirectData copies borrowed data so the component owns it.
	EnsureOwnsDirectData()
	// Attributes returns the component's attributes, if it has any.
	Attributes() (attribute.Accessor, bool)
	// AttributesForWrite returns the attributes for writing. The component
	// must be exclusively owned.
	AttributesForWrite() (attribute.MutableAccessor, bool)
	// Bounds returns the bounding box of the component's positions.
	Bounds() (types.Bounds, bool)
	// RemoveAnonymousAttributes drops every anonymous attribute.
	RemoveAnonymousAttributes()
	// Release drops the component's claim on shared buffers.
	Release()

	sealed()
}

// NewComponent returns an empty component of kind k.
func NewComponent(k ComponentKind) Component {
	switch k {
	case KindMesh:
		return &MeshComponent{}
	case KindPointCloud:
		return &PointCloudComponent{}
	case KindInstances:
		return &InstancesComponent{}
	case KindVolume:
		return &VolumeComponent{}
	case KindCurve:
		return &CurveComponent{}
	case KindEdit:
		return &EditComponent{}
	case KindGreasePencil:
		return &GreasePencilComponent{}
	}
	panic(fmt.Sprintf("geometry: unknown component kind %d", k))
}

func hasAnonymous(a attribute.Accessor) bool {
	found := false
	a.ForEach(func(id attribute.ID, _ attribute.MetaData) bool {
		found = id.IsAnonymous()
		return !found
	})
	return found
}
