package geometry

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/geofield"
	"github.com/gogpu/geofield/attribute"
	"github.com/gogpu/geofield/field"
	"github.com/gogpu/geofield/internal/parallel"
	"github.com/gogpu/geofield/metrics"
	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

// TryCaptureFieldOnGeometry evaluates f on domain of c and stores the
// values as attribute id.
//
// Only elements where selection is true are written; the empty field
// selects everything. Unselected elements keep their value when the
// attribute already exists with the same domain and kind, and get the
// default value otherwise. c must be exclusively owned, as returned by
// Set.GetComponentForWrite.
//
// It returns false when the values cannot be stored, for example because
// id names a builtin attribute of another domain or kind.
func TryCaptureFieldOnGeometry(c Component, id attribute.ID, domain attribute.Domain, selection, f field.Field) bool {
	return TryCaptureFieldsOnGeometry(c, []attribute.ID{id}, domain, selection, []field.Field{f})
}

// TryCaptureFieldsOnGeometry captures fields[i] as ids[i], evaluating all
// fields in one pass. It returns true only when every field was stored.
func TryCaptureFieldsOnGeometry(c Component, ids []attribute.ID, domain attribute.Domain, selection field.Field, fields []field.Field) bool {
	if len(ids) != len(fields) {
		panic(fmt.Sprintf("geometry: %d attribute ids for %d fields", len(ids), len(fields)))
	}
	if gpc, ok := c.(*GreasePencilComponent); ok && (domain == attribute.Point || domain == attribute.Curve) {
		return captureOnLayers(gpc, ids, domain, selection, fields)
	}
	attrs, ok := c.AttributesForWrite()
	if !ok {
		for _, id := range ids {
			captureFailed(c.Kind(), id, domain, "component has no attributes")
		}
		return false
	}
	return captureOnAccessor(NewGeometryContext(c, domain), attrs, ids, domain, selection, fields)
}

// captureOnLayers captures into the drawing of every layer independently.
// It succeeds when any layer does.
func captureOnLayers(c *GreasePencilComponent, ids []attribute.ID, domain attribute.Domain, selection field.Field, fields []field.Field) bool {
	gp := c.GreasePencilForWrite()
	if gp == nil {
		return false
	}
	var anySucceeded atomic.Bool
	_ = parallel.ForEach(gp.NumLayers(), func(layer int) error {
		drawing := gp.DrawingForWrite(layer)
		ctx := NewGreasePencilLayerContext(gp, domain, layer)
		if captureOnAccessor(ctx, drawing.AttributesForWrite(), ids, domain, selection, fields) {
			anySucceeded.Store(true)
		}
		return nil
	})
	return anySucceeded.Load()
}

type pendingResult struct {
	id      attribute.ID
	data    varray.GSpan
	matches bool
}

func captureOnAccessor(ctx *GeometryContext, attrs attribute.MutableAccessor, ids []attribute.ID, domain attribute.Domain, selection field.Field, fields []field.Field) bool {
	size := attrs.DomainSize(domain)
	if size == 0 {
		return captureEmptyDomain(ctx, attrs, ids, domain, fields)
	}

	selectionFull := isFullSelection(selection)
	ev := field.NewEvaluator(ctx, size, field.WithSelection(selection))
	var writers []attribute.SpanWriter
	var pending []pendingResult
	success := true

	for i, id := range ids {
		f := fields[i]
		if validate := attrs.Validator(id); validate != nil && !f.IsEmpty() {
			f = validate(f)
		}
		if f.IsEmpty() {
			captureFailed(ctx.kind, id, domain, "empty field")
			success = false
			continue
		}
		kind := f.Kind()
		meta, exists := attrs.LookupMeta(id)
		matches := exists && meta.Domain == domain && meta.Kind == kind

		if matches {
			if w, ok := attrs.LookupForWriteSpan(id); ok {
				writers = append(writers, w)
				ev.AddWithDestination(f, varray.ForGMutableSpan(w.Span))
				captured(ctx.kind, id, domain, metrics.PathInPlace)
				continue
			}
		}
		if selectionFull && shareSourceAttribute(attrs, id, exists, domain, kind, f) {
			captured(ctx.kind, id, domain, metrics.PathShared)
			continue
		}
		// Zeroed memory is the default value of every kind, so unselected
		// elements need no further initialization.
		data := varray.NewGSpan(kind, size)
		ev.AddWithDestination(f, varray.ForGMutableSpan(data))
		pending = append(pending, pendingResult{id: id, data: data, matches: matches})
	}

	ev.Evaluate()
	for _, w := range writers {
		w.Finish()
	}

	for _, p := range pending {
		var stored bool
		if p.matches {
			stored = attrs.ReplaceData(p.id, p.data)
		} else {
			attrs.Remove(p.id)
			stored = attrs.Add(p.id, domain, p.data.Kind(), attribute.InitMoveArray{Data: p.data})
		}
		if !stored {
			captureFailed(ctx.kind, p.id, domain, "attribute cannot be stored")
			success = false
			continue
		}
		captured(ctx.kind, p.id, domain, metrics.PathAllocated)
	}
	return success
}

func captureEmptyDomain(ctx *GeometryContext, attrs attribute.MutableAccessor, ids []attribute.ID, domain attribute.Domain, fields []field.Field) bool {
	success := true
	for i, id := range ids {
		kind := fields[i].Kind()
		if meta, ok := attrs.LookupMeta(id); ok && meta.Domain == domain && meta.Kind == kind {
			captured(ctx.kind, id, domain, metrics.PathEmptyDomain)
			continue
		}
		attrs.Remove(id)
		if !attrs.Add(id, domain, kind, attribute.InitConstruct{}) {
			captureFailed(ctx.kind, id, domain, "attribute cannot be added")
			success = false
			continue
		}
		captured(ctx.kind, id, domain, metrics.PathEmptyDomain)
	}
	return success
}

// shareSourceAttribute stores id as another user of the buffer of the
// attribute f reads, when f is exactly such a read with the same domain
// and kind.
func shareSourceAttribute(attrs attribute.MutableAccessor, id attribute.ID, exists bool, domain attribute.Domain, kind types.ValueKind, f field.Field) bool {
	in, ok := f.Node().(*AttributeInput)
	if !ok || in.ID() == id {
		return false
	}
	src, ok := attrs.Lookup(in.ID())
	if !ok || src.Domain != domain || src.VArray.Kind() != kind || src.Sharing == nil {
		return false
	}
	span, ok := src.VArray.Span()
	if !ok {
		return false
	}
	if exists && !attrs.Remove(id) {
		return false
	}
	return attrs.Add(id, domain, kind, attribute.InitShared{Data: span, Sharing: src.Sharing})
}

func isFullSelection(selection field.Field) bool {
	if selection.IsEmpty() {
		return true
	}
	v, ok := field.EvaluateConstant(field.Convert(selection, types.KindBool))
	return ok && v.(bool)
}

func captured(kind ComponentKind, id attribute.ID, domain attribute.Domain, path string) {
	metrics.Captures.WithLabelValues(path).Inc()
	geofield.Logger().Debug("attribute captured",
		"component", kind,
		"attribute", id,
		"domain", domain,
		"path", path)
}

func captureFailed(kind ComponentKind, id attribute.ID, domain attribute.Domain, reason string) {
	metrics.Captures.WithLabelValues(metrics.PathFailed).Inc()
	geofield.Logger().Warn("attribute capture failed",
		"component", kind,
		"attribute", id,
		"domain", domain,
		"reason", reason)
}

// CaptureFieldOnSet captures f as id on every component of s that has
// domain, copying shared components first. It reports whether any
// component stored the attribute.
func CaptureFieldOnSet(s *Set, id attribute.ID, domain attribute.Domain, selection, f field.Field) bool {
	stored := false
	for _, k := range []ComponentKind{KindMesh, KindPointCloud, KindCurve, KindInstances, KindGreasePencil} {
		c := s.Get(k)
		if c == nil || c.IsEmpty() || !supportsDomain(c, domain) {
			continue
		}
		if TryCaptureFieldOnGeometry(s.GetComponentForWrite(k), id, domain, selection, f) {
			stored = true
		}
	}
	return stored
}

func supportsDomain(c Component, d attribute.Domain) bool {
	if gpc, ok := c.(*GreasePencilComponent); ok && (d == attribute.Point || d == attribute.Curve) {
		return gpc.gp != nil
	}
	a, ok := c.Attributes()
	return ok && a.SupportsDomain(d)
}
