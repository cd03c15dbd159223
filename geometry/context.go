package geometry

import (
	"github.com/gogpu/geofield/attribute"
	"github.com/gogpu/geofield/curves"
	"github.com/gogpu/geofield/field"
	"github.com/gogpu/geofield/greasepencil"
	"github.com/gogpu/geofield/indexmask"
	"github.com/gogpu/geofield/mesh"
	"github.com/gogpu/geofield/pointcloud"
	"github.com/gogpu/geofield/varray"
)

// GeometryContext evaluates fields on one domain of any component kind.
// Grease pencil point and curve domains additionally need the layer whose
// drawing is evaluated.
type GeometryContext struct {
	kind   ComponentKind
	domain attribute.Domain
	layer  int

	mesh      *mesh.Mesh
	curves    *curves.Curves
	points    *pointcloud.PointCloud
	instances *Instances
	gp        *greasepencil.GreasePencil
}

// NewGeometryContext returns a context for domain d of c. Grease pencil
// components are evaluated on their layer domain; use
// NewGreasePencilLayerContext for the points and curves of one layer.
func NewGeometryContext(c Component, d attribute.Domain) *GeometryContext {
	g := &GeometryContext{kind: c.Kind(), domain: d, layer: -1}
	switch x := c.(type) {
	case *MeshComponent:
		g.mesh = x.mesh
	case *CurveComponent:
		g.curves = x.curves
	case *PointCloudComponent:
		g.points = x.points
	case *InstancesComponent:
		g.instances = x.instances
	case *GreasePencilComponent:
		g.gp = x.gp
	}
	return g
}

// NewGreasePencilLayerContext returns a context for domain d of layer
// within gp.
func NewGreasePencilLayerContext(gp *greasepencil.GreasePencil, d attribute.Domain, layer int) *GeometryContext {
	return &GeometryContext{kind: KindGreasePencil, domain: d, layer: layer, gp: gp}
}

func (g *GeometryContext) VArrayForInput(in field.Input, mask indexmask.Mask) varray.GVArray {
	return in.VArrayForContext(g, mask)
}

// Kind returns the kind of the evaluated component.
func (g *GeometryContext) Kind() ComponentKind { return g.kind }

// Domain returns the evaluated domain.
func (g *GeometryContext) Domain() attribute.Domain { return g.domain }

// Layer returns the grease pencil layer, or -1.
func (g *GeometryContext) Layer() int { return g.layer }

// Mesh returns the evaluated mesh, or nil.
func (g *GeometryContext) Mesh() *mesh.Mesh { return g.mesh }

// Curves returns the evaluated curves. For a grease pencil layer context
// these are the layer's drawing.
func (g *GeometryContext) Curves() *curves.Curves {
	if g.curves == nil && g.gp != nil && g.layer >= 0 {
		return g.gp.Drawing(g.layer)
	}
	return g.curves
}

// PointCloud returns the evaluated point cloud, or nil.
func (g *GeometryContext) PointCloud() *pointcloud.PointCloud { return g.points }

// Instances returns the evaluated instances, or nil.
func (g *GeometryContext) Instances() *Instances { return g.instances }

// GreasePencil returns the evaluated grease pencil, or nil.
func (g *GeometryContext) GreasePencil() *greasepencil.GreasePencil { return g.gp }

// isLayerDrawing reports whether the context evaluates the points or
// curves of one grease pencil layer.
func (g *GeometryContext) isLayerDrawing() bool {
	return g.gp != nil && g.layer >= 0 && (g.domain == attribute.Point || g.domain == attribute.Curve)
}

// Attributes returns the attributes the context's domain lives in.
func (g *GeometryContext) Attributes() (attribute.Accessor, bool) {
	switch {
	case g.mesh != nil:
		return g.mesh.Attributes(), true
	case g.curves != nil:
		return g.curves.Attributes(), true
	case g.points != nil:
		return g.points.Attributes(), true
	case g.instances != nil:
		return g.instances.Attributes(), true
	case g.gp != nil && g.domain == attribute.Layer:
		return g.gp.LayerAttributes(), true
	case g.isLayerDrawing():
		return g.gp.Drawing(g.layer).Attributes(), true
	}
	return attribute.Accessor{}, false
}

// DomainSize returns the number of elements of the evaluated domain.
func (g *GeometryContext) DomainSize() int {
	a, ok := g.Attributes()
	if !ok {
		return 0
	}
	return a.DomainSize(g.domain)
}

// MeshContext evaluates fields on a mesh that is not part of a component.
type MeshContext struct {
	Mesh   *mesh.Mesh
	Domain attribute.Domain
}

func (c MeshContext) VArrayForInput(in field.Input, mask indexmask.Mask) varray.GVArray {
	return in.VArrayForContext(c, mask)
}

// CurvesContext evaluates fields on curves that are not part of a
// component.
type CurvesContext struct {
	Curves *curves.Curves
	Domain attribute.Domain
}

func (c CurvesContext) VArrayForInput(in field.Input, mask indexmask.Mask) varray.GVArray {
	return in.VArrayForContext(c, mask)
}

// PointCloudContext evaluates fields on the points of a point cloud.
type PointCloudContext struct {
	PointCloud *pointcloud.PointCloud
}

func (c PointCloudContext) VArrayForInput(in field.Input, mask indexmask.Mask) varray.GVArray {
	return in.VArrayForContext(c, mask)
}

// InstancesContext evaluates fields on instances.
type InstancesContext struct {
	Instances *Instances
}

func (c InstancesContext) VArrayForInput(in field.Input, mask indexmask.Mask) varray.GVArray {
	return in.VArrayForContext(c, mask)
}

// GreasePencilLayerContext evaluates fields on one layer of a grease
// pencil.
type GreasePencilLayerContext struct {
	GreasePencil *greasepencil.GreasePencil
	Domain       attribute.Domain
	Layer        int
}

func (c GreasePencilLayerContext) VArrayForInput(in field.Input, mask indexmask.Mask) varray.GVArray {
	return in.VArrayForContext(c, mask)
}

// resolveContext maps ctx to a GeometryContext. Generic contexts are
// used directly, concrete contexts are wrapped, and any other context
// yields false.
func resolveContext(ctx field.Context) (*GeometryContext, bool) {
	switch c := ctx.(type) {
	case *GeometryContext:
		return c, true
	case MeshContext:
		return &GeometryContext{kind: KindMesh, domain: c.Domain, layer: -1, mesh: c.Mesh}, c.Mesh != nil
	case CurvesContext:
		return &GeometryContext{kind: KindCurve, domain: c.Domain, layer: -1, curves: c.Curves}, c.Curves != nil
	case PointCloudContext:
		return &GeometryContext{kind: KindPointCloud, domain: attribute.Point, layer: -1, points: c.PointCloud}, c.PointCloud != nil
	case InstancesContext:
		return &GeometryContext{kind: KindInstances, domain: attribute.Instance, layer: -1, instances: c.Instances}, c.Instances != nil
	case GreasePencilLayerContext:
		return NewGreasePencilLayerContext(c.GreasePencil, c.Domain, c.Layer), c.GreasePencil != nil
	}
	return nil, false
}
