package geometry

import (
	"github.com/gogpu/geofield/attribute"
	"github.com/gogpu/geofield/field"
	"github.com/gogpu/geofield/varray"
)

// TryDetectFieldDomain returns the domain f is naturally evaluated on for
// c. Point clouds, instances and grease pencil have one fixed domain. For
// meshes and curves every input of f must prefer the same domain; any
// disagreement, or an input without a preference, yields false.
func TryDetectFieldDomain(c Component, f field.Field) (attribute.Domain, bool) {
	switch c.Kind() {
	case KindPointCloud:
		return attribute.Point, true
	case KindInstances:
		return attribute.Instance, true
	case KindGreasePencil:
		return attribute.Layer, true
	case KindMesh, KindCurve:
	default:
		return 0, false
	}

	var detected attribute.Domain
	found := false
	for _, in := range field.Inputs(f) {
		p, ok := in.(DomainPreferrer)
		if !ok {
			return 0, false
		}
		d, ok := p.PreferredDomain(c)
		if !ok || (found && d != detected) {
			return 0, false
		}
		detected, found = d, true
	}
	return detected, found
}

// EvaluateField evaluates f on domain of c for the elements where
// selection is true; the empty selection selects everything. Unselected
// elements of the result are undefined. The result may alias attribute
// storage of c and is valid until that attribute is modified.
func EvaluateField(c Component, domain attribute.Domain, f, selection field.Field) varray.GVArray {
	ctx := NewGeometryContext(c, domain)
	ev := field.NewEvaluator(ctx, ctx.DomainSize(), field.WithSelection(selection))
	i := ev.Add(f)
	ev.Evaluate()
	return ev.Get(i)
}

// EvaluateOnLayer evaluates f on domain of one grease pencil layer.
func EvaluateOnLayer(c *GreasePencilComponent, layer int, domain attribute.Domain, f field.Field) varray.GVArray {
	if c.gp == nil {
		return varray.GVArray{}
	}
	ctx := NewGreasePencilLayerContext(c.gp, domain, layer)
	ev := field.NewEvaluator(ctx, ctx.DomainSize())
	i := ev.Add(f)
	ev.Evaluate()
	return ev.Get(i)
}
