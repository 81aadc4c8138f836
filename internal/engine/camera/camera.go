// Package camera provides the camera state consumed by culling, scheduling and
// picking, and the orbit controller that mutates it.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pathscope/internal/engine/bounds"
)

// State is a snapshot of the camera used by one frame.
type State struct {
	Position   mgl32.Vec3
	Projection mgl32.Mat4
	View       mgl32.Mat4 // Inverse of the camera world matrix
}

// ViewProjection returns Projection × View.
func (s *State) ViewProjection() mgl32.Mat4 {
	return s.Projection.Mul4(s.View)
}

// OrbitCamera orbits around a target point. Z is up, matching machine axes.
type OrbitCamera struct {
	Target mgl32.Vec3

	// Spherical coordinates
	Distance float32 // Distance from target
	Pitch    float32 // Elevation above the XY plane (radians)
	Yaw      float32 // Rotation around Z from +X (radians)

	// Projection
	FovY float32 // Vertical field of view (radians)
	Near float32
	Far  float32

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
	PanSensitivity  float32

	interacting bool
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        150.0,
		Pitch:           0.6,
		Yaw:             -math.Pi / 2,
		FovY:            mgl32.DegToRad(45),
		Near:            0.1,
		Far:             10000.0,
		MinDistance:     1.0,
		MaxDistance:     5000.0,
		MinPitch:        -1.55,
		MaxPitch:        1.55,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		PanSensitivity:  0.0015,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	cp, sp := float32(math.Cos(float64(c.Pitch))), float32(math.Sin(float64(c.Pitch)))
	cy, sy := float32(math.Cos(float64(c.Yaw))), float32(math.Sin(float64(c.Yaw)))
	return c.Target.Add(mgl32.Vec3{cp * cy, cp * sy, sp}.Mul(c.Distance))
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 0, 1})
}

// ProjectionMatrix returns the perspective projection for the given aspect ratio.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// State returns the camera snapshot for a viewport of width × height pixels.
func (c *OrbitCamera) State(width, height int) *State {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	return &State{
		Position:   c.Position(),
		Projection: c.ProjectionMatrix(aspect),
		View:       c.ViewMatrix(),
	}
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch += deltaY * c.DragSensitivity
	c.Pitch = mgl32.Clamp(c.Pitch, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = mgl32.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// HandlePan moves the target in the view plane based on mouse drag delta.
func (c *OrbitCamera) HandlePan(deltaX, deltaY float32) {
	forward := c.Target.Sub(c.Position()).Normalize()
	right := forward.Cross(mgl32.Vec3{0, 0, 1})
	if right.Len() < 1e-6 {
		// Looking straight down: derive right from yaw.
		right = mgl32.Vec3{float32(-math.Sin(float64(c.Yaw))), float32(math.Cos(float64(c.Yaw))), 0}
	}
	right = right.Normalize()
	up := right.Cross(forward).Normalize()

	speed := c.Distance * c.PanSensitivity
	c.Target = c.Target.Sub(right.Mul(deltaX * speed)).Add(up.Mul(deltaY * speed))
}

// SetInteracting records whether the user is actively manipulating the camera.
func (c *OrbitCamera) SetInteracting(active bool) {
	c.interacting = active
}

// Interacting reports whether a camera manipulation is in progress.
func (c *OrbitCamera) Interacting() bool {
	return c.interacting
}

// FitToBounds centers the camera on box and backs off so the whole box is in view.
func (c *OrbitCamera) FitToBounds(box bounds.Box) {
	if box.IsEmpty() {
		return
	}
	c.Target = box.Center()

	radius := box.Size().Len() * 0.5
	if radius < c.MinDistance {
		radius = c.MinDistance
	}
	c.Distance = radius / float32(math.Sin(float64(c.FovY)*0.5))
	c.Distance = mgl32.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
	if far := c.Distance + radius*2; far > c.Far {
		c.Far = far
	}

	c.Pitch = 0.6 // Look down at ~35 degrees
	c.Yaw = -math.Pi / 2
}
