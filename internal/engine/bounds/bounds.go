// Package bounds provides bounding volumes for scene primitives.
package bounds

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Box is an axis-aligned bounding box.
type Box struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// NewBox creates a box from two corners, ordering each axis.
func NewBox(a, b mgl32.Vec3) Box {
	box := Box{Min: a, Max: b}
	for i := 0; i < 3; i++ {
		if box.Min[i] > box.Max[i] {
			box.Min[i], box.Max[i] = box.Max[i], box.Min[i]
		}
	}
	return box
}

// Empty returns an inverted box that any Extend call replaces.
func Empty() Box {
	inf := float32(math.Inf(1))
	return Box{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether the box contains no points.
func (b Box) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Extend grows the box to include p.
func (b *Box) Extend(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Union returns the smallest box containing both boxes.
func (b Box) Union(other Box) Box {
	out := b
	out.Extend(other.Min)
	out.Extend(other.Max)
	return out
}

// Pad returns the box grown by d on every side.
func (b Box) Pad(d float32) Box {
	pad := mgl32.Vec3{d, d, d}
	return Box{Min: b.Min.Sub(pad), Max: b.Max.Add(pad)}
}

// Center returns the box midpoint.
func (b Box) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extent per axis.
func (b Box) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Contains reports whether p lies inside or on the box.
func (b Box) Contains(p mgl32.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Corners returns the eight box corners.
func (b Box) Corners() [8]mgl32.Vec3 {
	return [8]mgl32.Vec3{
		{b.Min[0], b.Min[1], b.Min[2]},
		{b.Max[0], b.Min[1], b.Min[2]},
		{b.Min[0], b.Max[1], b.Min[2]},
		{b.Max[0], b.Max[1], b.Min[2]},
		{b.Min[0], b.Min[1], b.Max[2]},
		{b.Max[0], b.Min[1], b.Max[2]},
		{b.Min[0], b.Max[1], b.Max[2]},
		{b.Max[0], b.Max[1], b.Max[2]},
	}
}

// Sphere is a bounding sphere.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// Volume is the cached bounding volume of a primitive: a box and the sphere
// enclosing it. It is computed once when the primitive is built.
type Volume struct {
	Box    Box
	Sphere Sphere
}

// FromBox builds a volume around a box.
func FromBox(box Box) *Volume {
	return &Volume{
		Box: box,
		Sphere: Sphere{
			Center: box.Center(),
			Radius: box.Size().Len() * 0.5,
		},
	}
}

// FromPoints builds a volume from a flat xyz vertex list, padded by pad.
// Returns nil when there are no vertices.
func FromPoints(xyz []float32, pad float32) *Volume {
	if len(xyz) < 3 {
		return nil
	}
	box := Empty()
	for i := 0; i+2 < len(xyz); i += 3 {
		box.Extend(mgl32.Vec3{xyz[i], xyz[i+1], xyz[i+2]})
	}
	if pad > 0 {
		box = box.Pad(pad)
	}
	return FromBox(box)
}

// WireframeVertices returns line vertices for the box edges.
// Returns 24 vertices (12 edges × 2 endpoints), format: [x, y, z] per vertex.
func (b Box) WireframeVertices() []float32 {
	minX, minY, minZ := b.Min[0], b.Min[1], b.Min[2]
	maxX, maxY, maxZ := b.Max[0], b.Max[1], b.Max[2]
	return []float32{
		// Bottom face
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, minX, maxY, minZ,
		minX, maxY, minZ, minX, minY, minZ,
		// Top face
		minX, minY, maxZ, maxX, minY, maxZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, minY, maxZ,
		// Vertical edges
		minX, minY, minZ, minX, minY, maxZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		minX, maxY, minZ, minX, maxY, maxZ,
	}
}

// WireframeVertexCount is the number of vertices for a box wireframe (12 edges × 2).
const WireframeVertexCount = 24
