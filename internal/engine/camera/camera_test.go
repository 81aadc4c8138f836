package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/pathscope/internal/engine/bounds"
)

func TestPositionIsZUp(t *testing.T) {
	c := NewOrbitCamera()
	c.Pitch = 0
	c.Yaw = 0
	c.Distance = 10
	assert.InDelta(t, 0, c.Position().Sub(mgl32.Vec3{10, 0, 0}).Len(), 1e-4, "position %v", c.Position())

	c.Pitch = c.MaxPitch
	assert.Greater(t, c.Position()[2], float32(9.9))
}

func TestViewMatrixLooksAtTarget(t *testing.T) {
	c := NewOrbitCamera()
	c.Target = mgl32.Vec3{5, 5, 0}
	v := c.ViewMatrix()

	// The target sits on the view -Z axis at the orbit distance.
	p := mgl32.TransformCoordinate(c.Target, v)
	assert.InDelta(t, 0, p[0], 1e-3)
	assert.InDelta(t, 0, p[1], 1e-3)
	assert.InDelta(t, -c.Distance, p[2], 1e-2)
}

func TestHandleDragClampsPitch(t *testing.T) {
	c := NewOrbitCamera()
	c.HandleDrag(0, 1e6)
	assert.Equal(t, c.MaxPitch, c.Pitch)
	c.HandleDrag(0, -1e6)
	assert.Equal(t, c.MinPitch, c.Pitch)
}

func TestHandleZoomClampsDistance(t *testing.T) {
	c := NewOrbitCamera()
	for i := 0; i < 200; i++ {
		c.HandleZoom(1)
	}
	assert.Equal(t, c.MinDistance, c.Distance)
	for i := 0; i < 500; i++ {
		c.HandleZoom(-1)
	}
	assert.Equal(t, c.MaxDistance, c.Distance)
}

func TestHandlePanKeepsDistance(t *testing.T) {
	c := NewOrbitCamera()
	before := c.Position().Sub(c.Target).Len()
	c.HandlePan(40, -25)
	assert.NotEqual(t, mgl32.Vec3{}, c.Target)
	assert.InDelta(t, before, c.Position().Sub(c.Target).Len(), 1e-3)
}

func TestFitToBounds(t *testing.T) {
	c := NewOrbitCamera()
	box := bounds.NewBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{100, 50, 10})
	c.FitToBounds(box)

	assert.Equal(t, box.Center(), c.Target)
	radius := box.Size().Len() / 2
	assert.Greater(t, c.Distance, radius)

	// Every corner projects inside the clip volume.
	s := c.State(800, 600)
	vp := s.ViewProjection()
	for _, corner := range box.Corners() {
		clip := vp.Mul4x1(corner.Vec4(1))
		ndc := clip.Vec3().Mul(1 / clip[3])
		assert.LessOrEqual(t, ndc[0], float32(1))
		assert.GreaterOrEqual(t, ndc[0], float32(-1))
		assert.LessOrEqual(t, ndc[1], float32(1))
		assert.GreaterOrEqual(t, ndc[1], float32(-1))
	}

	before := *c
	c.FitToBounds(bounds.Empty())
	assert.Equal(t, before.Target, c.Target)
}

func TestStateSnapshot(t *testing.T) {
	c := NewOrbitCamera()
	s := c.State(0, 0)
	assert.Equal(t, c.Position(), s.Position)
	assert.Equal(t, c.ProjectionMatrix(1), s.Projection)

	c.SetInteracting(true)
	assert.True(t, c.Interacting())
}
