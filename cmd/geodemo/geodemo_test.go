package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/geofield/attribute"
	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

func values(g varray.GVArray) []any {
	out := make([]any, g.Size())
	for i := range out {
		out[i] = g.Get(i)
	}
	return out
}

func TestLoadScene(t *testing.T) {
	sc, err := LoadScene("testdata/scene.yaml")
	require.NoError(t, err)

	require.NotNil(t, sc.Mesh)
	assert.Equal(t, MeshSpec{VertsX: 3, VertsY: 3, SizeX: 2, SizeY: 2}, *sc.Mesh)
	assert.Len(t, sc.PointCloud, 3)
	assert.Equal(t, [3]float32{3, 0, 0}, sc.PointCloud[1])
	require.NotNil(t, sc.GreasePencil)
	assert.Equal(t, "lines", sc.GreasePencil.Layers[0].Group)
	require.Len(t, sc.Captures, 5)

	half := sc.Captures[1]
	require.NotNil(t, half.Selection)
	want := FieldSpec{Op: "less", Args: []FieldSpec{{Input: "index"}, {Value: 2}}}
	if diff := cmp.Diff(want, *half.Selection); diff != "" {
		t.Errorf("selection (-want +got):\n%s", diff)
	}
	assert.True(t, sc.Captures[4].Recursive)
}

func TestParseSceneErrors(t *testing.T) {
	_, err := ParseScene([]byte("mesh: {verts: 3}\n"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = ParseScene([]byte("mesh: [1, 2\n"))
	assert.Error(t, err)

	sc, err := ParseScene([]byte("captures: []\n"))
	require.NoError(t, err)
	_, err = sc.Build()
	assert.ErrorIs(t, err, errEmptyScene)
}

func TestApplyScene(t *testing.T) {
	sc, err := LoadScene("testdata/scene.yaml")
	require.NoError(t, err)
	s, err := sc.Build()
	require.NoError(t, err)
	defer s.Release()

	results, err := sc.Apply(s)
	require.NoError(t, err)
	want := []CaptureResult{
		{ID: "index", Component: "mesh", Domain: "point", Captured: true},
		{ID: "half", Component: "mesh", Domain: "face", Captured: true},
		{ID: "height", Component: "all", Domain: "point", Captured: true},
		{ID: "is_ink", Component: "greasepencil", Domain: "layer", Captured: true},
		{ID: "weight", Component: "all", Domain: "point", Captured: true},
	}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Errorf("results (-want +got):\n%s", diff)
	}

	m := s.Mesh().Attributes()
	assert.Equal(t, []any{int32(0), int32(1), int32(2)},
		values(m.LookupAs("index", attribute.Point, types.KindInt32))[:3])
	assert.Equal(t, []any{float32(1.5), float32(1.5), float32(0), float32(0)},
		values(m.LookupAs("half", attribute.Face, types.KindFloat)))

	pc := s.PointCloud().Attributes()
	assert.Equal(t, []any{float32(0), float32(2), float32(4)},
		values(pc.LookupAs("height", attribute.Point, types.KindFloat)))

	gp := s.GreasePencil().LayerAttributes()
	assert.Equal(t, []any{true, false},
		values(gp.LookupAs("is_ink", attribute.Layer, types.KindBool)))
	assert.True(t, s.GreasePencil().Drawing(1).Attributes().Contains("height"))

	ref := s.Instances().References()[0].Geometry
	assert.True(t, ref.PointCloud().Attributes().Contains("weight"), "recursive capture reaches instance references")
	assert.True(t, pc.Contains("weight"))
	assert.False(t, ref.PointCloud().Attributes().Contains("height"))
}

func TestApplyErrors(t *testing.T) {
	tests := []struct {
		name    string
		capture CaptureSpec
		want    error
	}{
		{"domain", CaptureSpec{ID: "a", Domain: "volume", Field: FieldSpec{Value: 1}}, errUnknownDomain},
		{"component", CaptureSpec{ID: "a", Component: "curve", Domain: "point", Field: FieldSpec{Value: 1}}, errMissingComponent},
		{"input", CaptureSpec{ID: "a", Domain: "point", Field: FieldSpec{Input: "color"}}, errUnknownInput},
		{"op", CaptureSpec{ID: "a", Domain: "point", Field: FieldSpec{Op: "pow", Args: []FieldSpec{{Value: 1}, {Value: 2}}}}, errUnknownOp},
		{"type", CaptureSpec{ID: "a", Domain: "point", Field: FieldSpec{Value: 1, Type: "double"}}, errUnknownKind},
		{"value", CaptureSpec{ID: "a", Domain: "point", Field: FieldSpec{Value: []any{1, 2}, Type: "float3"}}, errBadValue},
		{"selection", CaptureSpec{ID: "a", Domain: "point", Selection: &FieldSpec{Value: "yes", Type: "bool"}, Field: FieldSpec{Value: 1}}, errBadValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := &Scene{PointCloud: [][3]float32{{0, 0, 0}}, Captures: []CaptureSpec{tt.capture}}
			s, err := sc.Build()
			require.NoError(t, err)
			_, err = sc.Apply(s)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFieldSpecBuild(t *testing.T) {
	tests := []struct {
		name string
		spec FieldSpec
		kind types.ValueKind
	}{
		{"index", FieldSpec{Input: "index"}, types.KindInt32},
		{"position", FieldSpec{Input: "position"}, types.KindFloat3},
		{"attribute", FieldSpec{Input: "attribute", Name: "w", Type: "int8"}, types.KindInt8},
		{"exists", FieldSpec{Input: "exists", Name: "w"}, types.KindBool},
		{"float constant", FieldSpec{Value: 0.5}, types.KindFloat},
		{"color", FieldSpec{Value: []any{1, 0, 0}, Type: "color"}, types.KindColor},
		{"compare", FieldSpec{Op: "greater", Args: []FieldSpec{{Input: "index"}, {Value: 1}}}, types.KindBool},
		{"not", FieldSpec{Op: "not", Args: []FieldSpec{{Input: "layer", Name: "ink"}}}, types.KindBool},
		{"convert", FieldSpec{Op: "convert", Type: "float2", Args: []FieldSpec{{Input: "position"}}}, types.KindFloat2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := tt.spec.Build()
			require.NoError(t, err)
			assert.Equal(t, tt.kind, f.Kind())
		})
	}

	_, err := FieldSpec{Op: "add", Args: []FieldSpec{{Value: 1}}}.Build()
	assert.Error(t, err, "arity")
	_, err = FieldSpec{}.Build()
	assert.ErrorIs(t, err, errUnknownInput)
	_, err = FieldSpec{Op: "convert", Args: []FieldSpec{{Value: 1}}}.Build()
	assert.Error(t, err, "convert needs a target type")
}

func TestConstantValue(t *testing.T) {
	v, err := constantValue(types.KindByteColor, []any{10, 20, 30})
	require.NoError(t, err)
	assert.Equal(t, types.ColorGeometry4b{R: 10, G: 20, B: 30, A: 255}, v)

	v, err = constantValue(types.KindInt2, []any{1, 2.0})
	require.NoError(t, err)
	assert.Equal(t, types.Int2{X: 1, Y: 2}, v)

	_, err = constantValue(types.KindFloat, []any{1, "x"})
	assert.ErrorIs(t, err, errBadValue)
	_, err = constantValue(types.KindBool, 1)
	assert.ErrorIs(t, err, errBadValue)
}

func TestRunCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"run", "testdata/scene.yaml"})
	require.NoError(t, rootCmd.Execute())

	var report struct {
		Captures   []CaptureResult `yaml:"captures"`
		Components []struct {
			Kind       string `yaml:"kind"`
			Attributes []struct {
				ID     string `yaml:"id"`
				Domain string `yaml:"domain"`
				Type   string `yaml:"type"`
				Values []any  `yaml:"values"`
			} `yaml:"attributes"`
		} `yaml:"components"`
	}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &report))
	assert.Len(t, report.Captures, 5)

	var kinds []string
	for _, c := range report.Components {
		kinds = append(kinds, c.Kind)
	}
	assert.Equal(t, []string{"mesh", "pointcloud", "instances", "curve", "greasepencil"}, kinds)

	mesh := report.Components[0]
	require.NotEmpty(t, mesh.Attributes)
	assert.Equal(t, "index", mesh.Attributes[0].ID)
	assert.Equal(t, "int32", mesh.Attributes[0].Type)
	assert.Equal(t, []any{0, 1, 2, 3, 4, 5, 6, 7, 8}, mesh.Attributes[0].Values)
}

func TestConversionsCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeConversions(&out, false))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(types.Kinds)+1)
	assert.Equal(t, "from\\to", strings.Fields(lines[0])[0])
	for _, line := range lines[1:] {
		cells := strings.Fields(line)
		require.Len(t, cells, len(types.Kinds)+1)
		assert.NotContains(t, cells, "no", "every pair of distinct kinds is convertible")
	}

	out.Reset()
	require.NoError(t, writeConversions(&out, true))
	assert.Contains(t, out.String(), "int32")
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger(nil, "off")
	require.NoError(t, err)
	assert.Nil(t, l)

	_, err = newLogger(nil, "verbose")
	assert.Error(t, err)

	var buf bytes.Buffer
	l, err = newLogger(&buf, "debug")
	require.NoError(t, err)
	l.Debug("capture", "error", "boom")
	assert.Contains(t, buf.String(), "err=boom")
	assert.NotContains(t, buf.String(), "error=")
}
