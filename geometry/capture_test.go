package geometry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/geofield/attribute"
	"github.com/gogpu/geofield/curves"
	"github.com/gogpu/geofield/field"
	"github.com/gogpu/geofield/greasepencil"
	"github.com/gogpu/geofield/indexmask"
	"github.com/gogpu/geofield/mesh"
	"github.com/gogpu/geofield/metrics"
	"github.com/gogpu/geofield/pointcloud"
	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

func captures(path string) float64 {
	return testutil.ToFloat64(metrics.Captures.WithLabelValues(path))
}

func floats(t *testing.T, a attribute.Accessor, id attribute.ID, d attribute.Domain) []float32 {
	t.Helper()
	v := a.LookupAs(id, d, types.KindFloat)
	require.False(t, v.IsEmpty(), "attribute %q", id)
	return varray.SpanOf[float32](v.Materialize())
}

func lessThan(n int32) field.Field {
	return field.Map("less_than", field.Index(), func(i int32) bool { return i < n })
}

func gridComponent() (*Set, Component) {
	s := FromMesh(mesh.NewGrid(3, 3, 2, 2), Owned)
	return s, s.GetComponentForWrite(KindMesh)
}

func TestCaptureConstantOnFaces(t *testing.T) {
	s, c := gridComponent()
	require.True(t, TryCaptureFieldOnGeometry(c, ".select_poly", attribute.Face, field.Field{}, field.True()))

	r, ok := s.Mesh().Attributes().Lookup(".select_poly")
	require.True(t, ok)
	assert.Equal(t, attribute.Face, r.Domain)
	assert.Equal(t, types.KindBool, r.VArray.Kind())
	assert.Equal(t, []bool{true, true, true, true}, varray.SpanOf[bool](r.VArray.Materialize()))
}

func TestCaptureSharesSourceAttribute(t *testing.T) {
	s, c := gridComponent()
	require.True(t, TryCaptureFieldOnGeometry(c, "src", attribute.Point, field.Field{}, indexAsFloat()))

	shared := captures(metrics.PathShared)
	require.True(t, TryCaptureFieldOnGeometry(c, "dst", attribute.Point, field.Field{}, Attribute("src", types.KindFloat)))
	assert.Equal(t, shared+1, captures(metrics.PathShared))

	attrs := s.Mesh().Attributes()
	src, _ := attrs.Lookup("src")
	dst, _ := attrs.Lookup("dst")
	assert.Same(t, src.Sharing, dst.Sharing)
	assert.Equal(t, 2, src.Sharing.Users())
	srcSpan, _ := src.VArray.Span()
	dstSpan, _ := dst.VArray.Span()
	assert.True(t, srcSpan.SameStorage(dstSpan))
	assert.Equal(t, floats(t, attrs, "src", attribute.Point), floats(t, attrs, "dst", attribute.Point))

	w, ok := s.Mesh().AttributesForWrite().LookupForWriteSpan("dst")
	require.True(t, ok)
	w.Span.Set(0, float32(42))
	w.Finish()
	assert.Equal(t, float32(0), floats(t, attrs, "src", attribute.Point)[0])
	assert.Equal(t, float32(42), floats(t, attrs, "dst", attribute.Point)[0])
	assert.Equal(t, 1, src.Sharing.Users())
}

func TestCaptureDoesNotShareConvertedOrPartial(t *testing.T) {
	s, c := gridComponent()
	require.True(t, TryCaptureFieldOnGeometry(c, "src", attribute.Point, field.Field{}, indexAsFloat()))
	attrs := s.Mesh().Attributes()
	src, _ := attrs.Lookup("src")

	require.True(t, TryCaptureFieldOnGeometry(c, "as_int", attribute.Point, field.Field{}, Attribute("src", types.KindInt32)))
	asInt, _ := attrs.Lookup("as_int")
	assert.NotSame(t, src.Sharing, asInt.Sharing)

	require.True(t, TryCaptureFieldOnGeometry(c, "partial", attribute.Point, lessThan(3), Attribute("src", types.KindFloat)))
	partial, _ := attrs.Lookup("partial")
	assert.NotSame(t, src.Sharing, partial.Sharing)
	assert.Equal(t, []float32{0, 1, 2, 0, 0, 0, 0, 0, 0}, floats(t, attrs, "partial", attribute.Point))
}

func TestCaptureSelectionKeepsUnselectedValues(t *testing.T) {
	s, c := gridComponent()
	require.True(t, TryCaptureFieldOnGeometry(c, "w", attribute.Point, field.Field{}, indexAsFloat()))

	inPlace := captures(metrics.PathInPlace)
	require.True(t, TryCaptureFieldOnGeometry(c, "w", attribute.Point, lessThan(3), field.Constant(float32(-1))))
	assert.Equal(t, inPlace+1, captures(metrics.PathInPlace))
	assert.Equal(t, []float32{-1, -1, -1, 3, 4, 5, 6, 7, 8}, floats(t, s.Mesh().Attributes(), "w", attribute.Point))

	require.True(t, TryCaptureFieldOnGeometry(c, "fresh", attribute.Point, lessThan(2), field.Constant(float32(7))))
	assert.Equal(t, []float32{7, 7, 0, 0, 0, 0, 0, 0, 0}, floats(t, s.Mesh().Attributes(), "fresh", attribute.Point))

	require.True(t, TryCaptureFieldOnGeometry(c, "none", attribute.Point, field.False(), field.Constant(float32(3))))
	assert.Equal(t, make([]float32, 9), floats(t, s.Mesh().Attributes(), "none", attribute.Point))
}

func TestCaptureChangesTypeAndDomain(t *testing.T) {
	s, c := gridComponent()
	require.True(t, TryCaptureFieldOnGeometry(c, "w", attribute.Point, field.Field{}, indexAsFloat()))
	require.True(t, TryCaptureFieldOnGeometry(c, "w", attribute.Face, field.Field{}, field.Constant(int32(3))))

	meta, ok := s.Mesh().Attributes().LookupMeta("w")
	require.True(t, ok)
	assert.Equal(t, attribute.MetaData{Domain: attribute.Face, Kind: types.KindInt32}, meta)
}

func TestCaptureRejectedByBuiltin(t *testing.T) {
	s, c := gridComponent()
	before := append([]types.Float3(nil), s.Mesh().Positions()...)

	failed := captures(metrics.PathFailed)
	assert.False(t, TryCaptureFieldOnGeometry(c, mesh.AttrPosition, attribute.Face, field.Field{}, field.Constant(float32(1))))
	assert.Equal(t, failed+1, captures(metrics.PathFailed))
	assert.Equal(t, before, s.Mesh().Positions())
}

func TestCaptureAppliesValidator(t *testing.T) {
	s, c := gridComponent()
	require.True(t, TryCaptureFieldOnGeometry(c, mesh.AttrMaterialIndex, attribute.Face, field.Field{}, field.Constant(int32(-5))))
	got := varray.SpanOf[int32](s.Mesh().Attributes().LookupAs(mesh.AttrMaterialIndex, attribute.Face, types.KindInt32).Materialize())
	assert.Equal(t, []int32{0, 0, 0, 0}, got)
}

func TestCaptureOnEmptyDomain(t *testing.T) {
	s := FromPointCloud(pointcloud.New(nil), Owned)
	empty := captures(metrics.PathEmptyDomain)
	require.True(t, TryCaptureFieldOnGeometry(s.GetComponentForWrite(KindPointCloud), "w", attribute.Point, field.Field{}, indexAsFloat()))
	assert.Equal(t, empty+1, captures(metrics.PathEmptyDomain))

	meta, ok := s.PointCloud().Attributes().LookupMeta("w")
	require.True(t, ok)
	assert.Equal(t, types.KindFloat, meta.Kind)
}

func TestCaptureMultipleFields(t *testing.T) {
	s, c := gridComponent()
	ok := TryCaptureFieldsOnGeometry(c,
		[]attribute.ID{"a", "b"},
		attribute.Face,
		field.Field{},
		[]field.Field{indexAsFloat(), field.Map("double", indexAsFloat(), func(v float32) float32 { return 2 * v })})
	require.True(t, ok)
	attrs := s.Mesh().Attributes()
	assert.Equal(t, []float32{0, 1, 2, 3}, floats(t, attrs, "a", attribute.Face))
	assert.Equal(t, []float32{0, 2, 4, 6}, floats(t, attrs, "b", attribute.Face))

	assert.Panics(t, func() {
		TryCaptureFieldsOnGeometry(c, []attribute.ID{"a"}, attribute.Face, field.Field{}, nil)
	})
}

func TestCaptureFieldOnSet(t *testing.T) {
	s := FromMesh(mesh.NewGrid(2, 2, 1, 1), Owned)
	s.Add(NewPointCloudComponent(pointcloud.New(make([]types.Float3, 3)), Owned))
	s.Add(NewVolumeComponent(&Volume{}, Owned))

	require.True(t, CaptureFieldOnSet(s, "p", attribute.Point, field.Field{}, field.True()))
	assert.True(t, s.Mesh().Attributes().Contains("p"))
	assert.True(t, s.PointCloud().Attributes().Contains("p"))

	require.True(t, CaptureFieldOnSet(s, "f", attribute.Face, field.Field{}, field.True()))
	assert.True(t, s.Mesh().Attributes().Contains("f"))
	assert.False(t, s.PointCloud().Attributes().Contains("f"))

	assert.False(t, CaptureFieldOnSet(NewSet(NewVolumeComponent(&Volume{}, Owned)), "v", attribute.Point, field.Field{}, field.True()))
}

func TestAttributeExistsOnPointCloud(t *testing.T) {
	pc := pointcloud.New(make([]types.Float3, 10))
	c := NewPointCloudComponent(pc, Owned)

	v := EvaluateField(c, attribute.Point, AttributeExists("missing"), field.Field{})
	assert.Equal(t, 10, v.Size())
	single, ok := v.Single()
	require.True(t, ok)
	assert.Equal(t, false, single)

	in := AttributeExists("position").Node().(field.Input)
	direct := in.VArrayForContext(PointCloudContext{PointCloud: pc}, indexmask.FromSize(10))
	single, _ = direct.Single()
	assert.Equal(t, true, single)
}

func layeredPencil() *greasepencil.GreasePencil {
	gp := greasepencil.New()
	gp.AddLayer("ink", "lines", curves.FromPoints([]types.Float3{{0, 0, 0}, {1, 0, 0}}))
	gp.AddLayer("fill", "", curves.FromPoints(
		[]types.Float3{{0, 0, 0}, {0, 1, 0}},
		[]types.Float3{{0, 0, 1}},
	))
	gp.LayerAttributesForWrite().Add("opacity", attribute.Layer, types.KindFloat,
		attribute.InitVArray{VArray: varray.FromTyped(varray.ForSpan([]float32{0.25, 0.75}))})
	return gp
}

func TestGreasePencilLayerBroadcast(t *testing.T) {
	c := NewGreasePencilComponent(layeredPencil(), Owned)
	opacity := Attribute("opacity", types.KindFloat)

	points := EvaluateOnLayer(c, 1, attribute.Point, opacity)
	assert.Equal(t, []float32{0.75, 0.75, 0.75}, varray.SpanOf[float32](points.Materialize()))
	curvesValues := EvaluateOnLayer(c, 0, attribute.Curve, opacity)
	assert.Equal(t, []float32{0.25}, varray.SpanOf[float32](curvesValues.Materialize()))

	layers := EvaluateField(c, attribute.Layer, opacity, field.Field{})
	assert.Equal(t, []float32{0.25, 0.75}, varray.SpanOf[float32](layers.Materialize()))

	exists := EvaluateOnLayer(c, 0, attribute.Point, AttributeExists("opacity"))
	v, _ := exists.Single()
	assert.Equal(t, true, v)
}

func TestGreasePencilPointAttributeWinsOverLayer(t *testing.T) {
	gp := layeredPencil()
	gp.DrawingForWrite(0).AttributesForWrite().Add("opacity", attribute.Point, types.KindFloat,
		attribute.InitValue{Value: float32(1)})
	c := NewGreasePencilComponent(gp, Owned)
	got := EvaluateOnLayer(c, 0, attribute.Point, Attribute("opacity", types.KindFloat))
	assert.Equal(t, []float32{1, 1}, varray.SpanOf[float32](got.Materialize()))
}

func TestCaptureOnGreasePencilLayers(t *testing.T) {
	orig := FromGreasePencil(layeredPencil(), Owned)
	s := orig.Copy()

	c := s.GetComponentForWrite(KindGreasePencil)
	require.True(t, TryCaptureFieldOnGeometry(c, "op", attribute.Point, field.Field{}, Attribute("opacity", types.KindFloat)))

	gp := s.GreasePencil()
	assert.Equal(t, []float32{0.25, 0.25}, floats(t, gp.Drawing(0).Attributes(), "op", attribute.Point))
	assert.Equal(t, []float32{0.75, 0.75, 0.75}, floats(t, gp.Drawing(1).Attributes(), "op", attribute.Point))
	assert.False(t, orig.GreasePencil().Drawing(0).Attributes().Contains("op"))

	require.True(t, TryCaptureFieldOnGeometry(c, "sel", attribute.Layer, field.Field{}, NamedLayerSelection("fill")))
	sel := gp.LayerAttributes().LookupAs("sel", attribute.Layer, types.KindBool)
	assert.Equal(t, []bool{false, true}, varray.SpanOf[bool](sel.Materialize()))

	empty := NewGreasePencilComponent(greasepencil.New(), Owned)
	assert.False(t, TryCaptureFieldOnGeometry(empty, "op", attribute.Point, field.Field{}, field.True()))
}

func TestNamedLayerSelection(t *testing.T) {
	c := NewGreasePencilComponent(layeredPencil(), Owned)
	sel := NamedLayerSelection("lines")

	layers := EvaluateField(c, attribute.Layer, sel, field.Field{})
	assert.Equal(t, []bool{true, false}, varray.SpanOf[bool](layers.Materialize()))

	onInk := EvaluateOnLayer(c, 0, attribute.Point, sel)
	assert.Equal(t, []bool{true, true}, varray.SpanOf[bool](onInk.Materialize()))
	onFill := EvaluateOnLayer(c, 1, attribute.Curve, sel)
	assert.Equal(t, []bool{false, false}, varray.SpanOf[bool](onFill.Materialize()))

	in := sel.Node().(field.Input)
	mask := indexmask.FromSize(4)
	assert.True(t, in.VArrayForContext(NewGeometryContext(c, attribute.Face), mask).IsEmpty())
	_, m := gridComponent()
	assert.True(t, in.VArrayForContext(NewGeometryContext(m, attribute.Point), mask).IsEmpty())
}

func TestNormalInput(t *testing.T) {
	_, c := gridComponent()
	normals := EvaluateField(c, attribute.Face, Normal(), field.Field{})
	for i := range normals.Size() {
		assert.Equal(t, types.Float3{0, 0, 1}, normals.Get(i))
	}

	cv := NewCurveComponent(curves.FromPoints([]types.Float3{{0, 0, 0}, {1, 0, 0}}), Owned)
	curveNormals := EvaluateField(cv, attribute.Point, Normal(), field.Field{})
	assert.Equal(t, 2, curveNormals.Size())

	in := Normal().Node().(field.Input)
	pc := pointcloud.New(make([]types.Float3, 2))
	assert.True(t, in.VArrayForContext(PointCloudContext{PointCloud: pc}, indexmask.FromSize(2)).IsEmpty())

	// Inputs missing on a context evaluate to the default value.
	zero := EvaluateField(NewPointCloudComponent(pc, Owned), attribute.Point, Normal(), field.Field{})
	v, ok := zero.Single()
	require.True(t, ok)
	assert.Equal(t, types.Float3{}, v)
}

func TestIDInput(t *testing.T) {
	s, c := gridComponent()
	ids := EvaluateField(c, attribute.Point, ID(), field.Field{})
	assert.Equal(t, int32(8), ids.Get(8))

	require.True(t, TryCaptureFieldOnGeometry(c, AttrID, attribute.Point, field.Field{},
		field.Map("offset", field.Index(), func(i int32) int32 { return 100 + i })))
	ids = EvaluateField(s.GetComponentForWrite(KindMesh), attribute.Point, ID(), field.Field{})
	assert.Equal(t, int32(108), ids.Get(8))
}

func TestConcreteContexts(t *testing.T) {
	m := mesh.NewGrid(2, 2, 1, 1)
	in := Position().Node().(field.Input)
	mask := indexmask.FromSize(4)

	v := in.VArrayForContext(MeshContext{Mesh: m, Domain: attribute.Point}, mask)
	assert.Equal(t, 4, v.Size())
	v = in.VArrayForContext(MeshContext{Mesh: m, Domain: attribute.Face}, mask)
	assert.Equal(t, 1, v.Size())

	inst := NewInstances()
	inst.AddInstance(inst.AddReference(Reference{}), types.Float3{3, 0, 0})
	v = in.VArrayForContext(InstancesContext{Instances: inst}, indexmask.FromSize(1))
	assert.Equal(t, types.Float3{3, 0, 0}, v.Get(0))
	handles := InstanceReferenceIndex().Node().(field.Input).VArrayForContext(InstancesContext{Instances: inst}, indexmask.FromSize(1))
	assert.Equal(t, int32(0), handles.Get(0))

	cv := curves.FromPoints([]types.Float3{{0, 0, 0}, {1, 0, 0}})
	v = in.VArrayForContext(CurvesContext{Curves: cv, Domain: attribute.Point}, indexmask.FromSize(2))
	assert.Equal(t, types.Float3{1, 0, 0}, v.Get(1))

	gp := layeredPencil()
	v = in.VArrayForContext(GreasePencilLayerContext{GreasePencil: gp, Domain: attribute.Point, Layer: 1}, indexmask.FromSize(3))
	assert.Equal(t, types.Float3{0, 0, 1}, v.Get(2))

	// Contexts that are not geometry contexts yield nothing.
	assert.True(t, in.VArrayForContext(nil, mask).IsEmpty())
}

func TestTryDetectFieldDomain(t *testing.T) {
	s, c := gridComponent()
	require.True(t, TryCaptureFieldOnGeometry(c, "fw", attribute.Face, field.Field{}, field.Constant(float32(1))))

	tests := []struct {
		name   string
		f      field.Field
		want   attribute.Domain
		wantOK bool
	}{
		{"face attribute", Attribute("fw", types.KindFloat), attribute.Face, true},
		{"position", Position(), attribute.Point, true},
		{"same domain twice", field.Map2("add", Attribute("fw", types.KindFloat), Attribute("fw", types.KindInt32),
			func(a float32, b int32) float32 { return a + float32(b) }), attribute.Face, true},
		{"disagreement", field.Map2("mix", Attribute("fw", types.KindFloat3), Position(),
			func(a, b types.Float3) types.Float3 { return a }), 0, false},
		{"index has no preference", field.Index(), 0, false},
		{"constant has no inputs", field.Constant(float32(1)), 0, false},
		{"missing attribute", Attribute("nope", types.KindFloat), 0, false},
		{"smooth normals", Normal(), attribute.Point, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TryDetectFieldDomain(s.Get(KindMesh), tt.f)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}

	pc := NewPointCloudComponent(pointcloud.New(nil), Owned)
	d, ok := TryDetectFieldDomain(pc, field.Index())
	assert.True(t, ok)
	assert.Equal(t, attribute.Point, d)
	d, _ = TryDetectFieldDomain(NewInstancesComponent(NewInstances(), Owned), field.Index())
	assert.Equal(t, attribute.Instance, d)
	d, _ = TryDetectFieldDomain(NewGreasePencilComponent(greasepencil.New(), Owned), field.Index())
	assert.Equal(t, attribute.Layer, d)
	_, ok = TryDetectFieldDomain(NewVolumeComponent(nil, Owned), Position())
	assert.False(t, ok)
}

func TestNormalDomainFollowsSharpFaces(t *testing.T) {
	_, c := gridComponent()
	require.True(t, TryCaptureFieldOnGeometry(c, mesh.AttrSharpFace, attribute.Face, field.Field{}, field.True()))
	d, ok := TryDetectFieldDomain(c, Normal())
	require.True(t, ok)
	assert.Equal(t, attribute.Face, d)

	require.True(t, TryCaptureFieldOnGeometry(c, mesh.AttrSharpFace, attribute.Face, lessThan(2), field.False()))
	d, _ = TryDetectFieldDomain(c, Normal())
	assert.Equal(t, attribute.Corner, d)
}

func TestFieldsOnDifferentInputsAreDistinct(t *testing.T) {
	a := Attribute("x", types.KindFloat)
	if !a.Equal(Attribute("x", types.KindFloat)) {
		t.Error("same attribute reads should be equal")
	}
	for _, other := range []field.Field{
		Attribute("x", types.KindInt32),
		Attribute("y", types.KindFloat),
		AttributeExists("x"),
	} {
		if a.Equal(other) {
			t.Errorf("%v should differ from %v", a, other)
		}
	}
	assert.True(t, AnonymousAttribute("x", types.KindFloat).IsEmpty())
	anon := attribute.NewAnonymous()
	assert.Equal(t, field.CategoryAnonymousAttribute, AnonymousAttribute(anon, types.KindFloat).Node().(field.Input).Category())
	assert.True(t, NamedLayerSelection("a").Equal(NamedLayerSelection("a")))
	if diff := cmp.Diff(Normal().Hash(), Normal().Hash()); diff != "" {
		t.Error(diff)
	}
}
