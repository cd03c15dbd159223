package pointcloud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/geofield/attribute"
	"github.com/gogpu/geofield/types"
)

func TestPointCloud(t *testing.T) {
	pc := NewWithRadius([]types.Float3{{0, 0, 0}, {1, 2, 3}}, []float32{0.1, 0.2})
	a := pc.Attributes()
	assert.Equal(t, 2, a.DomainSize(attribute.Point))
	assert.Equal(t, 0, a.DomainSize(attribute.Face))
	assert.True(t, a.Contains(AttrRadius))
	assert.True(t, a.LookupAs(AttrRadius, attribute.Face, types.KindFloat).IsEmpty())

	b, ok := pc.Bounds()
	require.True(t, ok)
	assert.Equal(t, types.Float3{1, 2, 3}, b.Max)
}

func TestPositionWriteInvalidatesBounds(t *testing.T) {
	pc := New([]types.Float3{{0, 0, 0}})
	_, _ = pc.Bounds()
	w, ok := pc.AttributesForWrite().LookupForWriteSpan(AttrPosition)
	require.True(t, ok)
	w.Span.Set(0, types.Float3{4, 4, 4})
	w.Finish()
	b, _ := pc.Bounds()
	assert.Equal(t, types.Float3{4, 4, 4}, b.Min)
}

func TestCopyIsIndependent(t *testing.T) {
	pc := New([]types.Float3{{1, 1, 1}})
	cp := pc.Copy()
	w, ok := cp.AttributesForWrite().LookupForWriteSpan(AttrPosition)
	require.True(t, ok)
	w.Span.Set(0, types.Float3{2, 2, 2})
	w.Finish()
	assert.Equal(t, types.Float3{1, 1, 1}, pc.Positions()[0])
	assert.Equal(t, types.Float3{2, 2, 2}, cp.Positions()[0])
}
