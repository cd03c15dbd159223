package main

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/geofield/attribute"
	"github.com/gogpu/geofield/curves"
	"github.com/gogpu/geofield/field"
	"github.com/gogpu/geofield/geometry"
	"github.com/gogpu/geofield/greasepencil"
	"github.com/gogpu/geofield/mesh"
	"github.com/gogpu/geofield/pointcloud"
	"github.com/gogpu/geofield/types"
)

var (
	errEmptyScene       = errors.New("scene has no geometry")
	errUnknownKind      = errors.New("unknown value type")
	errUnknownDomain    = errors.New("unknown domain")
	errUnknownInput     = errors.New("unknown field input")
	errUnknownOp        = errors.New("unknown field operation")
	errBadValue         = errors.New("invalid constant value")
	errMissingComponent = errors.New("component not in scene")
)

// Scene is the decoded form of a scene file.
type Scene struct {
	Mesh         *MeshSpec         `mapstructure:"mesh"`
	PointCloud   [][3]float32      `mapstructure:"pointcloud"`
	Curves       [][][3]float32    `mapstructure:"curves"`
	GreasePencil *GreasePencilSpec `mapstructure:"grease_pencil"`
	Instances    []InstanceSpec    `mapstructure:"instances"`
	Captures     []CaptureSpec     `mapstructure:"captures"`
}

// MeshSpec describes a grid mesh.
type MeshSpec struct {
	VertsX int     `mapstructure:"verts_x"`
	VertsY int     `mapstructure:"verts_y"`
	SizeX  float32 `mapstructure:"size_x"`
	SizeY  float32 `mapstructure:"size_y"`
}

// GreasePencilSpec lists grease pencil layers.
type GreasePencilSpec struct {
	Layers []LayerSpec `mapstructure:"layers"`
}

// LayerSpec is one grease pencil layer and its drawing.
type LayerSpec struct {
	Name   string         `mapstructure:"name"`
	Group  string         `mapstructure:"group"`
	Curves [][][3]float32 `mapstructure:"curves"`
}

// InstanceSpec places a point cloud instance.
type InstanceSpec struct {
	Position [3]float32   `mapstructure:"position"`
	Points   [][3]float32 `mapstructure:"points"`
}

// CaptureSpec stores the values of a field as an attribute. An empty
// Component captures on every component supporting the domain; Recursive
// also captures on the geometry referenced by instances.
type CaptureSpec struct {
	Component string     `mapstructure:"component"`
	ID        string     `mapstructure:"id"`
	Domain    string     `mapstructure:"domain"`
	Recursive bool       `mapstructure:"recursive"`
	Selection *FieldSpec `mapstructure:"selection"`
	Field     FieldSpec  `mapstructure:"field"`
}

// FieldSpec describes a field expression. Exactly one of Input, Op or Value
// is set.
type FieldSpec struct {
	Input string      `mapstructure:"input"`
	Name  string      `mapstructure:"name"`
	Type  string      `mapstructure:"type"`
	Value any         `mapstructure:"value"`
	Op    string      `mapstructure:"op"`
	Args  []FieldSpec `mapstructure:"args"`
}

// LoadScene reads and decodes a scene file.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return ParseScene(data)
}

// ParseScene decodes a scene from YAML. Unknown keys are rejected.
func ParseScene(data []byte) (*Scene, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}

	var sc Scene
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &sc,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return &sc, nil
}

func toFloat3(p [3]float32) types.Float3 { return types.Float3{p[0], p[1], p[2]} }

func toPositions(ps [][3]float32) []types.Float3 {
	out := make([]types.Float3, len(ps))
	for i, p := range ps {
		out[i] = toFloat3(p)
	}
	return out
}

func toCurves(cs [][][3]float32) *curves.Curves {
	pts := make([][]types.Float3, len(cs))
	for i, c := range cs {
		pts[i] = toPositions(c)
	}
	return curves.FromPoints(pts...)
}

// Build creates the geometry set described by the scene.
func (sc *Scene) Build() (*geometry.Set, error) {
	s := geometry.NewSet()
	if m := sc.Mesh; m != nil {
		s.Add(geometry.NewMeshComponent(mesh.NewGrid(m.VertsX, m.VertsY, m.SizeX, m.SizeY), geometry.Owned))
	}
	if sc.PointCloud != nil {
		s.Add(geometry.NewPointCloudComponent(pointcloud.New(toPositions(sc.PointCloud)), geometry.Owned))
	}
	if sc.Curves != nil {
		s.Add(geometry.NewCurveComponent(toCurves(sc.Curves), geometry.Owned))
	}
	if sc.GreasePencil != nil {
		gp := greasepencil.New()
		for _, l := range sc.GreasePencil.Layers {
			gp.AddLayer(l.Name, l.Group, toCurves(l.Curves))
		}
		s.Add(geometry.NewGreasePencilComponent(gp, geometry.Owned))
	}
	if sc.Instances != nil {
		in := geometry.NewInstances()
		for _, spec := range sc.Instances {
			ref := geometry.FromPointCloud(pointcloud.New(toPositions(spec.Points)), geometry.Owned)
			h := in.AddReference(geometry.Reference{Geometry: ref})
			in.AddInstance(h, toFloat3(spec.Position))
		}
		s.Add(geometry.NewInstancesComponent(in, geometry.Owned))
	}
	if s.IsEmpty() {
		return nil, errEmptyScene
	}
	return s, nil
}

func componentKind(name string) (geometry.ComponentKind, bool) {
	for _, k := range geometry.ComponentKinds() {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// CaptureResult reports the outcome of one capture.
type CaptureResult struct {
	ID        string `yaml:"id"`
	Component string `yaml:"component"`
	Domain    string `yaml:"domain"`
	Captured  bool   `yaml:"captured"`
}

// Apply runs every capture of the scene on s in order.
func (sc *Scene) Apply(s *geometry.Set) ([]CaptureResult, error) {
	results := make([]CaptureResult, 0, len(sc.Captures))
	for i, c := range sc.Captures {
		r, err := applyCapture(s, c)
		if err != nil {
			return nil, fmt.Errorf("capture %d (%s): %w", i, c.ID, err)
		}
		results = append(results, r)
	}
	return results, nil
}

func applyCapture(s *geometry.Set, c CaptureSpec) (CaptureResult, error) {
	domain, ok := attribute.ParseDomain(c.Domain)
	if !ok {
		return CaptureResult{}, fmt.Errorf("%w %q", errUnknownDomain, c.Domain)
	}
	f, err := c.Field.Build()
	if err != nil {
		return CaptureResult{}, err
	}
	selection := field.True()
	if c.Selection != nil {
		if selection, err = c.Selection.Build(); err != nil {
			return CaptureResult{}, fmt.Errorf("selection: %w", err)
		}
	}

	id := attribute.NewName(c.ID)
	r := CaptureResult{ID: c.ID, Component: c.Component, Domain: domain.String()}
	if c.Component == "" {
		r.Component = "all"
		if !c.Recursive {
			r.Captured = geometry.CaptureFieldOnSet(s, id, domain, selection, f)
			return r, nil
		}
		var captured atomic.Bool
		err := s.ModifyGeometrySets(func(set *geometry.Set) error {
			if geometry.CaptureFieldOnSet(set, id, domain, selection, f) {
				captured.Store(true)
			}
			return nil
		})
		r.Captured = captured.Load()
		return r, err
	}
	k, ok := componentKind(c.Component)
	if !ok || !s.Has(k) {
		return CaptureResult{}, fmt.Errorf("%w: %q", errMissingComponent, c.Component)
	}
	r.Captured = geometry.TryCaptureFieldOnGeometry(s.GetComponentForWrite(k), id, domain, selection, f)
	return r, nil
}
