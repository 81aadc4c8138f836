package bounds

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoxOrdersCorners(t *testing.T) {
	b := NewBox(mgl32.Vec3{5, -1, 3}, mgl32.Vec3{-5, 1, -3})
	assert.Equal(t, mgl32.Vec3{-5, -1, -3}, b.Min)
	assert.Equal(t, mgl32.Vec3{5, 1, 3}, b.Max)
}

func TestEmptyAndExtend(t *testing.T) {
	b := Empty()
	assert.True(t, b.IsEmpty())

	b.Extend(mgl32.Vec3{1, 2, 3})
	assert.False(t, b.IsEmpty())
	assert.Equal(t, b.Min, b.Max)

	b.Extend(mgl32.Vec3{-1, 4, 0})
	assert.Equal(t, mgl32.Vec3{-1, 2, 0}, b.Min)
	assert.Equal(t, mgl32.Vec3{1, 4, 3}, b.Max)
	assert.True(t, b.Contains(mgl32.Vec3{0, 3, 1}))
	assert.False(t, b.Contains(mgl32.Vec3{0, 5, 1}))
}

func TestFromPoints(t *testing.T) {
	assert.Nil(t, FromPoints(nil, 0))

	v := FromPoints([]float32{0, 0, 0, 2, 4, 4}, 0.5)
	require.NotNil(t, v)
	assert.Equal(t, mgl32.Vec3{-0.5, -0.5, -0.5}, v.Box.Min)
	assert.Equal(t, mgl32.Vec3{2.5, 4.5, 4.5}, v.Box.Max)
	assert.Equal(t, mgl32.Vec3{1, 2, 2}, v.Sphere.Center)

	// Every corner lies within the sphere.
	for _, c := range v.Box.Corners() {
		assert.LessOrEqual(t, c.Sub(v.Sphere.Center).Len(), v.Sphere.Radius+1e-4)
	}
}

func TestUnion(t *testing.T) {
	a := NewBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1})
	b := NewBox(mgl32.Vec3{2, -1, 0}, mgl32.Vec3{3, 0, 5})
	u := a.Union(b)
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, u.Min)
	assert.Equal(t, mgl32.Vec3{3, 1, 5}, u.Max)
}

func TestWireframeVertices(t *testing.T) {
	b := NewBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 2, 3})
	verts := b.WireframeVertices()
	require.Len(t, verts, WireframeVertexCount*3)

	for i := 0; i < len(verts); i += 3 {
		p := mgl32.Vec3{verts[i], verts[i+1], verts[i+2]}
		assert.True(t, b.Contains(p), "vertex %d outside box: %v", i/3, p)
	}
}
