// Package picking provides ray casting and toolpath point picking.
package picking

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pathscope/internal/engine/bounds"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3 // Normalized direction
}

// ScreenToRay converts screen coordinates to a world-space ray.
// screenX, screenY are pixel coordinates, viewportW/H are viewport dimensions.
// invViewProj is the inverse of the view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj mgl32.Mat4) Ray {
	// Convert screen coords to normalized device coords (-1 to 1)
	ndcX := 2.0*screenX/viewportW - 1.0
	ndcY := 1.0 - 2.0*screenY/viewportH // Flip Y

	nearWorld := unproject(mgl32.Vec4{ndcX, ndcY, -1.0, 1.0}, invViewProj)
	farWorld := unproject(mgl32.Vec4{ndcX, ndcY, 1.0, 1.0}, invViewProj)

	dir := farWorld.Sub(nearWorld)
	if dir.Len() > 0 {
		dir = dir.Normalize()
	}
	return Ray{Origin: nearWorld, Direction: dir}
}

func unproject(ndc mgl32.Vec4, invViewProj mgl32.Mat4) mgl32.Vec3 {
	w := invViewProj.Mul4x1(ndc)
	if w[3] != 0 {
		return w.Vec3().Mul(1 / w[3])
	}
	return w.Vec3()
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IntersectBox tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectBox(box bounds.Box) (t float32, hit bool) {
	tmin := float32(-math.MaxFloat32)
	tmax := float32(math.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		if r.Direction[axis] != 0 {
			t1 := (box.Min[axis] - r.Origin[axis]) / r.Direction[axis]
			t2 := (box.Max[axis] - r.Origin[axis]) / r.Direction[axis]
			if t1 > t2 {
				t1, t2 = t2, t1
			}
			if t1 > tmin {
				tmin = t1
			}
			if t2 < tmax {
				tmax = t2
			}
		} else if r.Origin[axis] < box.Min[axis] || r.Origin[axis] > box.Max[axis] {
			return 0, false
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	// Entry point, or exit point if starting inside
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}
