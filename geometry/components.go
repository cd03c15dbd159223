package geometry

import (
	"github.com/gogpu/geofield/attribute"
	"github.com/gogpu/geofield/curves"
	"github.com/gogpu/geofield/greasepencil"
	"github.com/gogpu/geofield/mesh"
	"github.com/gogpu/geofield/pointcloud"
	"github.com/gogpu/geofield/types"
)

// MeshComponent holds a mesh.
type MeshComponent struct {
	mesh      *mesh.Mesh
	ownership Ownership
}

// NewMeshComponent returns a component holding m.
func NewMeshComponent(m *mesh.Mesh, o Ownership) *MeshComponent {
	return &MeshComponent{mesh: m, ownership: o}
}

func (c *MeshComponent) sealed()             {}
func (c *MeshComponent) Kind() ComponentKind { return KindMesh }
func (c *MeshComponent) IsEmpty() bool       { return c.mesh == nil }

// Mesh returns the mesh for reading, or nil.
func (c *MeshComponent) Mesh() *mesh.Mesh { return c.mesh }

// MeshForWrite returns the mesh for writing, copying read-only data first.
func (c *MeshComponent) MeshForWrite() *mesh.Mesh {
	if c.mesh != nil && c.ownership == ReadOnly {
		c.mesh = c.mesh.Copy()
		c.ownership = Owned
	}
	return c.mesh
}

// Replace swaps in m, releasing the previous mesh.
func (c *MeshComponent) Replace(m *mesh.Mesh, o Ownership) {
	c.Release()
	c.mesh, c.ownership = m, o
}

func (c *MeshComponent) Copy() Component {
	if c.mesh == nil {
		return &MeshComponent{}
	}
	return &MeshComponent{mesh: c.mesh.Copy(), ownership: Owned}
}

func (c *MeshComponent) OwnsDirectData() bool { return c.ownership == Owned }

func (c *MeshComponent) EnsureOwnsDirectData() {
	if c.mesh != nil && c.ownership != Owned {
		c.mesh = c.mesh.Copy()
		c.ownership = Owned
	}
}

func (c *MeshComponent) Attributes() (attribute.Accessor, bool) {
	if c.mesh == nil {
		return attribute.Accessor{}, false
	}
	return c.mesh.Attributes(), true
}

func (c *MeshComponent) AttributesForWrite() (attribute.MutableAccessor, bool) {
	if m := c.MeshForWrite(); m != nil {
		return m.AttributesForWrite(), true
	}
	return attribute.MutableAccessor{}, false
}

func (c *MeshComponent) Bounds() (types.Bounds, bool) {
	if c.mesh == nil {
		return types.Bounds{}, false
	}
	return c.mesh.Bounds()
}

func (c *MeshComponent) RemoveAnonymousAttributes() {
	if c.mesh != nil && hasAnonymous(c.mesh.Attributes()) {
		c.MeshForWrite().AttributesForWrite().RemoveAnonymous()
	}
}

func (c *MeshComponent) Release() {
	if c.mesh != nil && c.ownership == Owned {
		c.mesh.Release()
	}
	c.mesh = nil
}

// CurveComponent holds a curves set.
type CurveComponent struct {
	curves    *curves.Curves
	ownership Ownership
}

// NewCurveComponent returns a component holding c.
func NewCurveComponent(c *curves.Curves, o Ownership) *CurveComponent {
	return &CurveComponent{curves: c, ownership: o}
}

func (c *CurveComponent) sealed()             {}
func (c *CurveComponent) Kind() ComponentKind { return KindCurve }
func (c *CurveComponent) IsEmpty() bool       { return c.curves == nil }

// Curves returns the curves for reading, or nil.
func (c *CurveComponent) Curves() *curves.Curves { return c.curves }

// CurvesForWrite returns the curves for writing, copying read-only data
// first.
func (c *CurveComponent) CurvesForWrite() *curves.Curves {
	if c.curves != nil && c.ownership == ReadOnly {
		c.curves = c.curves.Copy()
		c.ownership = Owned
	}
	return c.curves
}

// Replace swaps in cv, releasing the previous curves.
func (c *CurveComponent) Replace(cv *curves.Curves, o Ownership) {
	c.Release()
	c.curves, c.ownership = cv, o
}

func (c *CurveComponent) Copy() Component {
	if c.curves == nil {
		return &CurveComponent{}
	}
	return &CurveComponent{curves: c.curves.Copy(), ownership: Owned}
}

func (c *CurveComponent) OwnsDirectData() bool { return c.ownership == Owned }

func (c *CurveComponent) EnsureOwnsDirectData() {
	if c.curves != nil && c.ownership != Owned {
		c.curves = c.curves.Copy()
		c.ownership = Owned
	}
}

func (c *CurveComponent) Attributes() (attribute.Accessor, bool) {
	if c.curves == nil {
		return attribute.Accessor{}, false
	}
	return c.curves.Attributes(), true
}

func (c *CurveComponent) AttributesForWrite() (attribute.MutableAccessor, bool) {
	if cv := c.CurvesForWrite(); cv != nil {
		return cv.AttributesForWrite(), true
	}
	return attribute.MutableAccessor{}, false
}

func (c *CurveComponent) Bounds() (types.Bounds, bool) {
	if c.curves == nil {
		return types.Bounds{}, false
	}
	return c.curves.Bounds()
}

func (c *CurveComponent) RemoveAnonymousAttributes() {
	if c.curves != nil && hasAnonymous(c.curves.Attributes()) {
		c.CurvesForWrite().AttributesForWrite().RemoveAnonymous()
	}
}

func (c *CurveComponent) Release() {
	if c.curves != nil && c.ownership == Owned {
		c.curves.Release()
	}
	c.curves = nil
}

// PointCloudComponent holds a point cloud.
type PointCloudComponent struct {
	points    *pointcloud.PointCloud
	ownership Ownership
}

// NewPointCloudComponent returns a component holding pc.
func NewPointCloudComponent(pc *pointcloud.PointCloud, o Ownership) *PointCloudComponent {
	return &PointCloudComponent{points: pc, ownership: o}
}

func (c *PointCloudComponent) sealed()             {}
func (c *PointCloudComponent) Kind() ComponentKind { return KindPointCloud }
func (c *PointCloudComponent) IsEmpty() bool       { return c.points == nil }

// PointCloud returns the point cloud for reading, or nil.
func (c *PointCloudComponent) PointCloud() *pointcloud.PointCloud { return c.points }

// PointCloudForWrite returns the point cloud for writing, copying read-only
// data first.
func (c *PointCloudComponent) PointCloudForWrite() *pointcloud.PointCloud {
	if c.points != nil && c.ownership == ReadOnly {
		c.points = c.points.Copy()
		c.ownership = Owned
	}
	return c.points
}

// Replace swaps in pc, releasing the previous point cloud.
func (c *PointCloudComponent) Replace(pc *pointcloud.PointCloud, o Ownership) {
	c.Release()
	c.points, c.ownership = pc, o
}

func (c *PointCloudComponent) Copy() Component {
	if c.points == nil {
		return &PointCloudComponent{}
	}
	return &PointCloudComponent{points: c.points.Copy(), ownership: Owned}
}

func (c *PointCloudComponent) OwnsDirectData() bool { return c.ownership == Owned }

func (c *PointCloudComponent) EnsureOwnsDirectData() {
	if c.points != nil && c.ownership != Owned {
		c.points = c.points.Copy()
		c.ownership = Owned
	}
}

func (c *PointCloudComponent) Attributes() (attribute.Accessor, bool) {
	if c.points == nil {
		return attribute.Accessor{}, false
	}
	return c.points.Attributes(), true
}

func (c *PointCloudComponent) AttributesForWrite() (attribute.MutableAccessor, bool) {
	if pc := c.PointCloudForWrite(); pc != nil {
		return pc.AttributesForWrite(), true
	}
	return attribute.MutableAccessor{}, false
}

func (c *PointCloudComponent) Bounds() (types.Bounds, bool) {
	if c.points == nil {
		return types.Bounds{}, false
	}
	return c.points.Bounds()
}

func (c *PointCloudComponent) RemoveAnonymousAttributes() {
	if c.points != nil && hasAnonymous(c.points.Attributes()) {
		c.PointCloudForWrite().AttributesForWrite().RemoveAnonymous()
	}
}

func (c *PointCloudComponent) Release() {
	if c.points != nil && c.ownership == Owned {
		c.points.Release()
	}
	c.points = nil
}

// GreasePencilComponent holds grease pencil layers.
type GreasePencilComponent struct {
	gp        *greasepencil.GreasePencil
	ownership Ownership
}

// NewGreasePencilComponent returns a component holding gp.
func NewGreasePencilComponent(gp *greasepencil.GreasePencil, o Ownership) *GreasePencilComponent {
	return &GreasePencilComponent{gp: gp, ownership: o}
}

func (c *GreasePencilComponent) sealed()             {}
func (c *GreasePencilComponent) Kind() ComponentKind { return KindGreasePencil }
func (c *GreasePencilComponent) IsEmpty() bool       { return c.gp == nil }

// GreasePencil returns the layers for reading, or nil.
func (c *GreasePencilComponent) GreasePencil() *greasepencil.GreasePencil { return c.gp }

// GreasePencilForWrite returns the layers for writing, copying read-only
// data first.
func (c *GreasePencilComponent) GreasePencilForWrite() *greasepencil.GreasePencil {
	if c.gp != nil && c.ownership == ReadOnly {
		c.gp = c.gp.Copy()
		c.ownership = Owned
	}
	return c.gp
}

// Replace swaps in gp, releasing the previous layers.
func (c *GreasePencilComponent) Replace(gp *greasepencil.GreasePencil, o Ownership) {
	c.Release()
	c.gp, c.ownership = gp, o
}

func (c *GreasePencilComponent) Copy() Component {
	if c.gp == nil {
		return &GreasePencilComponent{}
	}
	return &GreasePencilComponent{gp: c.gp.Copy(), ownership: Owned}
}

func (c *GreasePencilComponent) OwnsDirectData() bool { return c.ownership == Owned }

func (c *GreasePencilComponent) EnsureOwnsDirectData() {
	if c.gp != nil && c.ownership != Owned {
		c.gp = c.gp.Copy()
		c.ownership = Owned
	}
}

// Attributes returns the layer attributes.
func (c *GreasePencilComponent) Attributes() (attribute.Accessor, bool) {
	if c.gp == nil {
		return attribute.Accessor{}, false
	}
	return c.gp.LayerAttributes(), true
}

// AttributesForWrite returns the layer attributes for writing.
func (c *GreasePencilComponent) AttributesForWrite() (attribute.MutableAccessor, bool) {
	if gp := c.GreasePencilForWrite(); gp != nil {
		return gp.LayerAttributesForWrite(), true
	}
	return attribute.MutableAccessor{}, false
}

func (c *GreasePencilComponent) Bounds() (types.Bounds, bool) {
	if c.gp == nil {
		return types.Bounds{}, false
	}
	return c.gp.Bounds()
}

func (c *GreasePencilComponent) RemoveAnonymousAttributes() {
	if c.gp != nil {
		c.GreasePencilForWrite().RemoveAnonymousAttributes()
	}
}

func (c *GreasePencilComponent) Release() {
	if c.gp != nil && c.ownership == Owned {
		c.gp.Release()
	}
	c.gp = nil
}

// Grid is a named volume grid.
type Grid struct {
	Name   string
	Bounds types.Bounds
}

// Volume is a set of grids. Voxel data is not modelled; grids only carry
// their extent.
type Volume struct {
	Grids []Grid
}

// VolumeComponent holds a volume. Volumes have no attributes.
type VolumeComponent struct {
	volume    *Volume
	ownership Ownership
}

// NewVolumeComponent returns a component holding v.
func NewVolumeComponent(v *Volume, o Ownership) *VolumeComponent {
	return &VolumeComponent{volume: v, ownership: o}
}

func (c *VolumeComponent) sealed()             {}
func (c *VolumeComponent) Kind() ComponentKind { return KindVolume }
func (c *VolumeComponent) IsEmpty() bool       { return c.volume == nil }

// Volume returns the volume, or nil.
func (c *VolumeComponent) Volume() *Volume { return c.volume }

func (c *VolumeComponent) Copy() Component {
	if c.volume == nil {
		return &VolumeComponent{}
	}
	return &VolumeComponent{volume: c.volume.copy(), ownership: Owned}
}

func (v *Volume) copy() *Volume {
	return &Volume{Grids: append([]Grid(nil), v.Grids...)}
}

func (c *VolumeComponent) OwnsDirectData() bool { return c.ownership == Owned }

func (c *VolumeComponent) EnsureOwnsDirectData() {
	if c.volume != nil && c.ownership != Owned {
		c.volume = c.volume.copy()
		c.ownership = Owned
	}
}

func (c *VolumeComponent) Attributes() (attribute.Accessor, bool) {
	return attribute.Accessor{}, false
}

func (c *VolumeComponent) AttributesForWrite() (attribute.MutableAccessor, bool) {
	return attribute.MutableAccessor{}, false
}

func (c *VolumeComponent) Bounds() (types.Bounds, bool) {
	if c.volume == nil {
		return types.Bounds{}, false
	}
	var acc types.Bounds
	var ok bool
	for _, g := range c.volume.Grids {
		acc, ok = types.MergeOptional(acc, ok, g.Bounds, true)
	}
	return acc, ok
}

func (c *VolumeComponent) RemoveAnonymousAttributes() {}
func (c *VolumeComponent) Release()                   { c.volume = nil }

// EditHints remembers data of the original geometry while a copy of it is
// deformed, so edits can be mapped back.
type EditHints struct {
	// CurvePositions are the deformed curve points, or nil when not yet
	// remembered.
	CurvePositions []types.Float3
}

// EditComponent carries edit hints. It has no attributes and no bounds.
type EditComponent struct {
	hints *EditHints
}

// NewEditComponent returns a component holding hints.
func NewEditComponent(hints *EditHints) *EditComponent {
	return &EditComponent{hints: hints}
}

func (c *EditComponent) sealed()             {}
func (c *EditComponent) Kind() ComponentKind { return KindEdit }
func (c *EditComponent) IsEmpty() bool       { return c.hints == nil }

// Hints returns the edit hints, or nil.
func (c *EditComponent) Hints() *EditHints { return c.hints }

func (c *EditComponent) Copy() Component {
	if c.hints == nil {
		return &EditComponent{}
	}
	return &EditComponent{hints: &EditHints{
		CurvePositions: append([]types.Float3(nil), c.hints.CurvePositions...),
	}}
}

func (c *EditComponent) OwnsDirectData() bool  { return true }
func (c *EditComponent) EnsureOwnsDirectData() {}

func (c *EditComponent) Attributes() (attribute.Accessor, bool) {
	return attribute.Accessor{}, false
}

func (c *EditComponent) AttributesForWrite() (attribute.MutableAccessor, bool) {
	return attribute.MutableAccessor{}, false
}

func (c *EditComponent) Bounds() (types.Bounds, bool) { return types.Bounds{}, false }
func (c *EditComponent) RemoveAnonymousAttributes()   {}
func (c *EditComponent) Release()                     { c.hints = nil }

// RememberDeformedPositions stores the current curve positions of s in its
// edit hints, unless hints already hold positions. It does nothing when s
// has no edit hints or no curves.
func RememberDeformedPositions(s *Set) {
	edit, ok := s.Get(KindEdit).(*EditComponent)
	if !ok || edit.hints == nil || edit.hints.CurvePositions != nil {
		return
	}
	cc, ok := s.Get(KindCurve).(*CurveComponent)
	if !ok || cc.curves == nil {
		return
	}
	w := s.GetComponentForWrite(KindEdit).(*EditComponent)
	w.hints.CurvePositions = append([]types.Float3(nil), cc.curves.Positions()...)
}
