// Package geofield evaluates generic, composable computations ("fields")
// against heterogeneous geometry: meshes, curves, point clouds, grease
// pencil layers and instance hierarchies.
//
// # Overview
//
// A field is an immutable expression graph. Its leaves are inputs that know
// how to produce values for a concrete geometry (an attribute by name, the
// element index, normals). A field is evaluated against a context, a
// (geometry, domain) pair, and yields one value per element of that domain.
// Results are either returned as virtual arrays or committed into a named
// attribute of the geometry.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/geofield/attribute"
//	    "github.com/gogpu/geofield/field"
//	    "github.com/gogpu/geofield/geometry"
//	    "github.com/gogpu/geofield/mesh"
//	)
//
//	set := geometry.NewSet()
//	set.Replace(geometry.NewMeshComponent(mesh.NewGrid(3, 3, 1, 1), geometry.Owned))
//
//	comp := set.GetComponentForWrite(geometry.KindMesh)
//	ok := geometry.TryCaptureFieldOnGeometry(comp, attribute.NewName(".select_poly"),
//	    attribute.Face, field.True(), field.Constant(true))
//
// # Architecture
//
// The library is organized into:
//   - Values: types (value kinds), varray (virtual arrays), conversion (implicit casts)
//   - Attributes: attribute (accessors, storage, implicit sharing via sharing)
//   - Geometry storage: mesh, curves, pointcloud, greasepencil
//   - Containers: geometry (components, sets, copy-on-write, instances)
//   - Fields: field (graph, evaluator), geometry (contexts, inputs, capture)
//
// # Concurrency
//
// Element loops run on a shared fork-join worker pool. A component is only
// written after exclusive ownership has been established; shared components
// are copied first. Attribute arrays are reference counted and cloned before
// the first write when more than one owner holds them.
//
// # Logging
//
// geofield is silent by default. Use [SetLogger] to receive diagnostics.
package geofield

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
