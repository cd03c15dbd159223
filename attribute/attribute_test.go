package attribute

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/geofield/field"
	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

// quadStrip has 4 points and 2 faces made of points {0,1} and {2,3}.
type quadStrip struct {
	storage  *Storage
	modified []ID
}

var quadGroups = Groups{Offsets: []int{0, 2, 4}}

var quadBuiltins = Builtins{
	"position":       {Domain: Point, Kind: types.KindFloat3},
	"material_index": {Domain: Face, Kind: types.KindInt32, Deletable: true, Validator: ClampMin(0)},
}

func newQuadStrip() *quadStrip {
	q := &quadStrip{storage: NewStorage()}
	q.storage.Add("position", Point, varray.GSpanOf(make([]types.Float3, 4)), nil)
	return q
}

func (q *quadStrip) DomainSize(d Domain) int {
	switch d {
	case Point:
		return 4
	case Face:
		return 2
	}
	return 0
}

func (q *quadStrip) SupportsDomain(d Domain) bool { return d == Point || d == Face }
func (q *quadStrip) Storage() *Storage            { return q.storage }
func (q *quadStrip) Builtins() Builtins           { return quadBuiltins }
func (q *quadStrip) TagModified(id ID)            { q.modified = append(q.modified, id) }

func (q *quadStrip) AdaptDomain(src varray.GVArray, from, to Domain) varray.GVArray {
	if from == Point && to == Face {
		return MixGroups(src, quadGroups, MixAll)
	}
	return ScatterGroups(src, quadGroups, 4)
}

func TestNewNameNormalizes(t *testing.T) {
	if NewName("cafe\u0301") != NewName("caf\u00e9") {
		t.Error("names should be NFC-normalized")
	}
	a, b := NewAnonymous(), NewAnonymous()
	if a == b || !a.IsAnonymous() || NewName("x").IsAnonymous() {
		t.Errorf("anonymous ids: %q %q", a, b)
	}
}

func TestNewNameNeverAnonymous(t *testing.T) {
	tests := []struct {
		name string
		want ID
	}{
		{".a_foo", `\.a_foo`},
		{`\.a_foo`, `\\.a_foo`},
		{".edge_verts", ".edge_verts"},
		{"a_foo", "a_foo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := NewName(tt.name)
			assert.Equal(t, tt.want, id)
			assert.False(t, id.IsAnonymous())
		})
	}
	assert.NotEqual(t, NewName(".a_foo"), NewName(`\.a_foo`))

	w := NewMutableAccessor(newQuadStrip())
	require.True(t, w.Add(NewName(".a_foo"), Point, types.KindFloat, InitDefault{}))
	w.RemoveAnonymous()
	assert.True(t, w.Contains(NewName(".a_foo")), "user attributes survive RemoveAnonymous")
}

func TestAddLookupRemove(t *testing.T) {
	q := newQuadStrip()
	w := NewMutableAccessor(q)

	require.True(t, w.Add("weight", Point, types.KindFloat, InitValue{Value: float32(0.5)}))
	assert.False(t, w.Add("weight", Point, types.KindFloat, InitDefault{}), "duplicate add")
	assert.False(t, w.Add("bad", Domain(99), types.KindFloat, InitDefault{}), "unsupported domain")
	assert.False(t, w.Add("position", Face, types.KindFloat3, InitDefault{}), "builtin with wrong domain")

	r, ok := w.Lookup("weight")
	require.True(t, ok)
	assert.Equal(t, Point, r.Domain)
	assert.Equal(t, 4, r.VArray.Size())
	assert.Equal(t, float32(0.5), r.VArray.Get(3))

	assert.False(t, w.Remove("position"), "required builtin")
	assert.True(t, w.Remove("weight"))
	assert.False(t, w.Contains("weight"))
	assert.Equal(t, []ID{"weight", "weight"}, q.modified)
}

func TestLookupAsInterpolatesAndConverts(t *testing.T) {
	q := newQuadStrip()
	w := NewMutableAccessor(q)
	require.True(t, w.Add("v", Point, types.KindFloat,
		InitVArray{VArray: varray.FromTyped(varray.ForSpan([]float32{1, 3, 0, 0}))}))

	onFace := w.LookupAs("v", Face, types.KindFloat)
	require.False(t, onFace.IsEmpty())
	if diff := cmp.Diff([]float32{2, 0}, varray.SpanOf[float32](onFace.Materialize())); diff != "" {
		t.Errorf("face mix mismatch (-want +got):\n%s", diff)
	}
	asBool := w.LookupAs("v", Face, types.KindBool)
	assert.Equal(t, []bool{true, false}, varray.SpanOf[bool](asBool.Materialize()))

	assert.True(t, w.LookupAs("missing", Face, types.KindFloat).IsEmpty())
	def := w.LookupOrDefault("missing", Face, types.KindFloat, int32(7))
	v, ok := def.Single()
	assert.True(t, ok)
	assert.Equal(t, float32(7), v)
	assert.Equal(t, 2, def.Size())
}

func TestWriteCopiesSharedData(t *testing.T) {
	q := newQuadStrip()
	w := NewMutableAccessor(q)
	data := varray.GSpanOf([]int32{1, 2, 3, 4})
	src := NewStorage()
	src.Add("ids", Point, data, nil)
	arr, _ := src.Lookup("ids")
	require.True(t, w.Add("ids", Point, types.KindInt32, InitShared{Data: arr.Data, Sharing: arr.Sharing}))
	assert.Equal(t, 2, arr.Sharing.Users())

	sw, ok := w.LookupForWriteSpan("ids")
	require.True(t, ok)
	assert.False(t, sw.Span.SameStorage(data), "shared data must be copied before writing")
	sw.Span.Set(0, int32(100))
	sw.Finish()
	sw.Finish()

	assert.Equal(t, []int32{1, 2, 3, 4}, varray.SpanOf[int32](data))
	assert.Equal(t, 1, arr.Sharing.Users())
	assert.Equal(t, []ID{"ids", "ids"}, q.modified)
}

func TestLookupOrAddForWriteSpan(t *testing.T) {
	w := NewMutableAccessor(newQuadStrip())
	sw, ok := w.LookupOrAddForWriteSpan("mask", Face, types.KindBool, InitDefault{})
	require.True(t, ok)
	assert.Equal(t, 2, sw.Span.Len())
	sw.Finish()

	_, ok = w.LookupOrAddForWriteSpan("mask", Point, types.KindBool, InitDefault{})
	assert.False(t, ok, "existing attribute on another domain")
	_, ok = w.LookupOrAddForWriteOnlySpan("mask", Face, types.KindBool)
	assert.True(t, ok)
}

func TestRenameAndAnonymous(t *testing.T) {
	w := NewMutableAccessor(newQuadStrip())
	anon := NewAnonymous()
	require.True(t, w.Add(anon, Point, types.KindFloat, InitDefault{}))
	require.True(t, w.Add("a", Point, types.KindFloat, InitDefault{}))

	assert.False(t, w.Rename("position", "p"))
	assert.True(t, w.Rename("a", "b"))
	w.RemoveAnonymous()
	assert.Equal(t, []ID{"position", "b"}, w.AllIDs())
}

func TestValidator(t *testing.T) {
	w := NewMutableAccessor(newQuadStrip())
	validate := w.Validator("material_index")
	require.NotNil(t, validate)
	assert.Nil(t, w.Validator("position"))

	f := validate(field.Constant(int32(-3)))
	v, ok := field.EvaluateConstant(f)
	require.True(t, ok)
	assert.Equal(t, int32(0), v)
}

func TestMixGroups(t *testing.T) {
	groups := Groups{Offsets: []int{0, 2, 2, 5}, Indices: []int{0, 1, 1, 2, 3}}
	ints := varray.FromTyped(varray.ForSpan([]int32{1, 2, 4, 10}))
	got := varray.SpanOf[int32](MixGroups(ints, groups, MixAny).Materialize())
	// (1+2)/2 rounds to 2; the empty group is the default.
	assert.Equal(t, []int32{2, 0, 5}, got)

	bools := varray.FromTyped(varray.ForSpan([]bool{true, false, true, true}))
	assert.Equal(t, []bool{false, false, false}, varray.SpanOf[bool](MixGroups(bools, groups, MixAll).Materialize()))
	assert.Equal(t, []bool{true, false, true}, varray.SpanOf[bool](MixGroups(bools, groups, MixAny).Materialize()))
}

func TestGroupsInvert(t *testing.T) {
	groups := Groups{Offsets: []int{0, 2, 4}, Indices: []int{0, 1, 1, 2}}
	inv := groups.Invert(3)
	assert.Equal(t, []int{0, 1, 3, 4}, inv.Offsets)
	assert.Equal(t, []int{0, 0, 1, 1}, inv.Indices)
}

func TestStorageResize(t *testing.T) {
	s := NewStorage()
	s.Add("w", Face, varray.GSpanOf([]float32{1, 2}), nil)
	s.Add("p", Point, varray.GSpanOf([]int32{7}), nil)
	shared := s.Copy()

	s.Resize(Face, 3)
	w, _ := s.Lookup("w")
	p, _ := s.Lookup("p")
	if diff := cmp.Diff([]float32{1, 2, 0}, varray.SpanOf[float32](w.Data)); diff != "" {
		t.Errorf("grown (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, p.Data.Len(), "other domains keep their size")

	old, _ := shared.Lookup("w")
	assert.Equal(t, 2, old.Data.Len())
	assert.False(t, old.Sharing.IsShared())

	s.Resize(Face, 1)
	w, _ = s.Lookup("w")
	assert.Equal(t, []float32{1}, varray.SpanOf[float32](w.Data))
}
