// Package culling updates primitive visibility from the camera frustum.
package culling

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/pathscope/internal/engine/bounds"
)

// Plane indices.
const (
	PlaneLeft = iota
	PlaneRight
	PlaneBottom
	PlaneTop
	PlaneNear
	PlaneFar
)

// Frustum holds six planes in Ax + By + Cz + D = 0 form with normals pointing
// inside and unit length.
type Frustum struct {
	Planes [6]mgl32.Vec4
}

// FromMatrix extracts the frustum of a Projection × View matrix
// (Gribb/Hartmann plane extraction).
func FromMatrix(vp mgl32.Mat4) Frustum {
	row := func(r int) mgl32.Vec4 {
		return mgl32.Vec4{vp.At(r, 0), vp.At(r, 1), vp.At(r, 2), vp.At(r, 3)}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	var f Frustum
	f.Planes[PlaneLeft] = r3.Add(r0)
	f.Planes[PlaneRight] = r3.Sub(r0)
	f.Planes[PlaneBottom] = r3.Add(r1)
	f.Planes[PlaneTop] = r3.Sub(r1)
	f.Planes[PlaneNear] = r3.Add(r2)
	f.Planes[PlaneFar] = r3.Sub(r2)

	for i, p := range f.Planes {
		if l := p.Vec3().Len(); l > 0 {
			f.Planes[i] = p.Mul(1 / l)
		}
	}
	return f
}

// IntersectsBox reports whether any part of box may be inside the frustum.
// Conservative: boxes near frustum corners can pass.
func (f *Frustum) IntersectsBox(box bounds.Box) bool {
	for _, plane := range f.Planes {
		// Positive vertex: the corner furthest along the plane normal.
		var p mgl32.Vec3
		for axis := 0; axis < 3; axis++ {
			if plane[axis] >= 0 {
				p[axis] = box.Max[axis]
			} else {
				p[axis] = box.Min[axis]
			}
		}
		if plane.Vec3().Dot(p)+plane[3] < 0 {
			return false
		}
	}
	return true
}

// Containment classifies a volume against the frustum.
type Containment uint8

// Containment results.
const (
	Outside Containment = iota
	Intersecting
	Inside
)

// ClassifySphere reports whether s is fully outside, fully inside, or crossing
// the frustum boundary.
func (f *Frustum) ClassifySphere(s bounds.Sphere) Containment {
	result := Inside
	for _, plane := range f.Planes {
		d := plane.Vec3().Dot(s.Center) + plane[3]
		if d < -s.Radius {
			return Outside
		}
		if d < s.Radius {
			result = Intersecting
		}
	}
	return result
}

// Intersects tests a cached bounding volume. The sphere decides the clear
// cases and the box refines spheres that straddle a plane.
func Intersects(f *Frustum, v *bounds.Volume) bool {
	switch f.ClassifySphere(v.Sphere) {
	case Outside:
		return false
	case Inside:
		return true
	}
	return f.IntersectsBox(v.Box)
}
