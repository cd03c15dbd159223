package geometry

import (
	"fmt"

	"github.com/gogpu/geofield"
	"github.com/gogpu/geofield/curves"
	"github.com/gogpu/geofield/greasepencil"
	"github.com/gogpu/geofield/internal/parallel"
	"github.com/gogpu/geofield/mesh"
	"github.com/gogpu/geofield/metrics"
	"github.com/gogpu/geofield/pointcloud"
	"github.com/gogpu/geofield/sharing"
	"github.com/gogpu/geofield/types"
)

// slot is a component together with the token counting the sets that
// reference it.
type slot struct {
	component Component
	sharing   *sharing.Info
}

// Set holds at most one component of every kind.
//
// Copies made with Copy share their components. A component is copied the
// first time a set that shares it asks for it with GetComponentForWrite,
// so writes through one set are never visible through another.
//
// The zero value is an empty set. A Set is not safe for concurrent
// mutation.
type Set struct {
	slots [numComponentKinds]*slot
}

// NewSet returns a set owning the given components.
func NewSet(components ...Component) *Set {
	s := &Set{}
	for _, c := range components {
		s.Add(c)
	}
	return s
}

// FromMesh returns a set holding m.
func FromMesh(m *mesh.Mesh, o Ownership) *Set { return NewSet(NewMeshComponent(m, o)) }

// FromCurves returns a set holding c.
func FromCurves(c *curves.Curves, o Ownership) *Set { return NewSet(NewCurveComponent(c, o)) }

// FromPointCloud returns a set holding pc.
func FromPointCloud(pc *pointcloud.PointCloud, o Ownership) *Set {
	return NewSet(NewPointCloudComponent(pc, o))
}

// FromInstances returns a set holding in.
func FromInstances(in *Instances, o Ownership) *Set { return NewSet(NewInstancesComponent(in, o)) }

// FromGreasePencil returns a set holding gp.
func FromGreasePencil(gp *greasepencil.GreasePencil, o Ownership) *Set {
	return NewSet(NewGreasePencilComponent(gp, o))
}

// Copy returns a set sharing every component of s.
func (s *Set) Copy() *Set {
	out := &Set{}
	for k, sl := range s.slots {
		if sl != nil {
			sl.sharing.AddUser()
			out.slots[k] = sl
		}
	}
	return out
}

// Has reports whether s holds a component of kind k.
func (s *Set) Has(k ComponentKind) bool { return s.slots[k] != nil }

// Get returns the component of kind k for reading, or nil.
func (s *Set) Get(k ComponentKind) Component {
	if sl := s.slots[k]; sl != nil {
		return sl.component
	}
	return nil
}

// GetComponentForWrite returns the component of kind k for writing. An
// absent component is created empty; a component shared with another set
// is copied first.
func (s *Set) GetComponentForWrite(k ComponentKind) Component {
	sl := s.slots[k]
	switch {
	case sl == nil:
		sl = &slot{component: NewComponent(k), sharing: sharing.New()}
		s.slots[k] = sl
	case sl.sharing.IsShared():
		c := sl.component.Copy()
		sl.sharing.RemoveUser()
		sl = &slot{component: c, sharing: sharing.New()}
		s.slots[k] = sl
		metrics.ComponentCopies.WithLabelValues(k.String()).Inc()
		geofield.Logger().Debug("component copied before write", "kind", k)
	}
	return sl.component
}

// Add stores c, which must not already be referenced elsewhere. It panics
// if s already holds a component of that kind.
func (s *Set) Add(c Component) {
	k := c.Kind()
	if s.slots[k] != nil {
		panic(fmt.Sprintf("geometry: set already holds a %v component", k))
	}
	s.slots[k] = &slot{component: c, sharing: sharing.New()}
}

// Replace stores c in place of the component of the same kind.
func (s *Set) Replace(c Component) {
	s.Remove(c.Kind())
	s.Add(c)
}

// Remove drops the component of kind k and reports whether there was one.
func (s *Set) Remove(k ComponentKind) bool {
	sl := s.slots[k]
	if sl == nil {
		return false
	}
	s.slots[k] = nil
	sl.sharing.RemoveUser()
	if sl.sharing.Users() == 0 {
		sl.component.Release()
	}
	return true
}

// Clear removes every component.
func (s *Set) Clear() {
	for k := range s.slots {
		s.Remove(ComponentKind(k))
	}
}

// Release is Clear for sets that are about to be dropped.
func (s *Set) Release() { s.Clear() }

// IsEmpty reports whether no component holds data.
func (s *Set) IsEmpty() bool {
	for _, sl := range s.slots {
		if sl != nil && !sl.component.IsEmpty() {
			return false
		}
	}
	return true
}

// ComponentShared reports whether the component of kind k is referenced by
// another set.
func (s *Set) ComponentShared(k ComponentKind) bool {
	sl := s.slots[k]
	return sl != nil && sl.sharing.IsShared()
}

// Mesh returns the mesh of s, or nil.
func (s *Set) Mesh() *mesh.Mesh {
	if c, ok := s.Get(KindMesh).(*MeshComponent); ok {
		return c.Mesh()
	}
	return nil
}

// MeshForWrite returns the mesh of s for writing, or nil.
func (s *Set) MeshForWrite() *mesh.Mesh {
	if !s.Has(KindMesh) {
		return nil
	}
	return s.GetComponentForWrite(KindMesh).(*MeshComponent).MeshForWrite()
}

// Curves returns the curves of s, or nil.
func (s *Set) Curves() *curves.Curves {
	if c, ok := s.Get(KindCurve).(*CurveComponent); ok {
		return c.Curves()
	}
	return nil
}

// CurvesForWrite returns the curves of s for writing, or nil.
func (s *Set) CurvesForWrite() *curves.Curves {
	if !s.Has(KindCurve) {
		return nil
	}
	return s.GetComponentForWrite(KindCurve).(*CurveComponent).CurvesForWrite()
}

// PointCloud returns the point cloud of s, or nil.
func (s *Set) PointCloud() *pointcloud.PointCloud {
	if c, ok := s.Get(KindPointCloud).(*PointCloudComponent); ok {
		return c.PointCloud()
	}
	return nil
}

// PointCloudForWrite returns the point cloud of s for writing, or nil.
func (s *Set) PointCloudForWrite() *pointcloud.PointCloud {
	if !s.Has(KindPointCloud) {
		return nil
	}
	return s.GetComponentForWrite(KindPointCloud).(*PointCloudComponent).PointCloudForWrite()
}

// Instances returns the instances of s, or nil.
func (s *Set) Instances() *Instances {
	if c, ok := s.Get(KindInstances).(*InstancesComponent); ok {
		return c.Instances()
	}
	return nil
}

// InstancesForWrite returns the instances of s for writing, or nil.
func (s *Set) InstancesForWrite() *Instances {
	if !s.Has(KindInstances) {
		return nil
	}
	return s.GetComponentForWrite(KindInstances).(*InstancesComponent).InstancesForWrite()
}

// GreasePencil returns the grease pencil of s, or nil.
func (s *Set) GreasePencil() *greasepencil.GreasePencil {
	if c, ok := s.Get(KindGreasePencil).(*GreasePencilComponent); ok {
		return c.GreasePencil()
	}
	return nil
}

// GreasePencilForWrite returns the grease pencil of s for writing, or nil.
func (s *Set) GreasePencilForWrite() *greasepencil.GreasePencil {
	if !s.Has(KindGreasePencil) {
		return nil
	}
	return s.GetComponentForWrite(KindGreasePencil).(*GreasePencilComponent).GreasePencilForWrite()
}

// HasInstances reports whether s places at least one instance.
func (s *Set) HasInstances() bool {
	c := s.Get(KindInstances)
	return c != nil && !c.IsEmpty()
}

// OwnsDirectData reports whether no component borrows data.
func (s *Set) OwnsDirectData() bool {
	for _, sl := range s.slots {
		if sl != nil && !sl.component.OwnsDirectData() {
			return false
		}
	}
	return true
}

// EnsureOwnsDirectData copies borrowed data in every component, including
// the geometry referenced by instances.
func (s *Set) EnsureOwnsDirectData() {
	for k, sl := range s.slots {
		if sl == nil || sl.component.OwnsDirectData() {
			continue
		}
		s.GetComponentForWrite(ComponentKind(k)).EnsureOwnsDirectData()
	}
}

// Bounds merges the bounds of every component. Instances contribute the
// bounds of their references at the instance positions.
func (s *Set) Bounds() (types.Bounds, bool) {
	var acc types.Bounds
	var ok bool
	for _, sl := range s.slots {
		if sl == nil {
			continue
		}
		b, bok := sl.component.Bounds()
		acc, ok = types.MergeOptional(acc, ok, b, bok)
	}
	return acc, ok
}

// RemoveAnonymousAttributes drops anonymous attributes from every
// component, copying shared components that hold any.
func (s *Set) RemoveAnonymousAttributes() {
	for k, sl := range s.slots {
		if sl == nil || !componentHasAnonymous(sl.component) {
			continue
		}
		s.GetComponentForWrite(ComponentKind(k)).RemoveAnonymousAttributes()
	}
}

func componentHasAnonymous(c Component) bool {
	switch x := c.(type) {
	case *InstancesComponent:
		if x.instances == nil {
			return false
		}
		if hasAnonymous(x.instances.Attributes()) {
			return true
		}
		for _, ref := range x.instances.references {
			if ref.Geometry != nil && ref.Geometry.hasAnonymous() {
				return true
			}
		}
		return false
	case *GreasePencilComponent:
		if x.gp == nil {
			return false
		}
		if hasAnonymous(x.gp.LayerAttributes()) {
			return true
		}
		for i := range x.gp.NumLayers() {
			if hasAnonymous(x.gp.Drawing(i).Attributes()) {
				return true
			}
		}
		return false
	}
	a, ok := c.Attributes()
	return ok && hasAnonymous(a)
}

func (s *Set) hasAnonymous() bool {
	for _, sl := range s.slots {
		if sl != nil && componentHasAnonymous(sl.component) {
			return true
		}
	}
	return false
}

// GatherComponentKinds returns the kinds present in s in slot order. With
// includeInstances the geometry referenced by instances is searched too;
// with ignoreEmpty empty components are skipped.
func (s *Set) GatherComponentKinds(includeInstances, ignoreEmpty bool) []ComponentKind {
	var seen [numComponentKinds]bool
	s.gatherKinds(&seen, includeInstances, ignoreEmpty)
	var out []ComponentKind
	for k, ok := range seen {
		if ok {
			out = append(out, ComponentKind(k))
		}
	}
	return out
}

func (s *Set) gatherKinds(seen *[numComponentKinds]bool, includeInstances, ignoreEmpty bool) {
	for k, sl := range s.slots {
		if sl == nil || (ignoreEmpty && sl.component.IsEmpty()) {
			continue
		}
		seen[k] = true
	}
	if !includeInstances {
		return
	}
	if in := s.Instances(); in != nil {
		for _, ref := range in.references {
			if ref.Geometry != nil {
				ref.Geometry.gatherKinds(seen, includeInstances, ignoreEmpty)
			}
		}
	}
}

// ModifyGeometrySets calls fn on s and on every set reachable through
// instance references. With more than one set the calls run in parallel;
// a single set is processed inline. It returns the first error of fn.
//
// Instances on the way are made exclusive first, so fn may modify every
// set it is given.
func (s *Set) ModifyGeometrySets(fn func(*Set) error) error {
	var sets []*Set
	s.gatherMutable(&sets)
	err := parallel.ForEach(len(sets), func(i int) error {
		return fn(sets[i])
	})
	if err != nil {
		return fmt.Errorf("geometry: modify geometry sets: %w", err)
	}
	return nil
}

func (s *Set) gatherMutable(out *[]*Set) {
	*out = append(*out, s)
	if !s.HasInstances() {
		return
	}
	in := s.InstancesForWrite()
	for _, ref := range in.references {
		if ref.Geometry != nil {
			ref.Geometry.gatherMutable(out)
		}
	}
}
