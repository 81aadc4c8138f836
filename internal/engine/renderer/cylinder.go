package renderer

import (
	"math"
)

// cylinderSides is the tessellation of the instanced segment cylinder.
const cylinderSides = 8

// CylinderMesh returns an open unit cylinder as a triangle list: axis +Y,
// y in [-0.5, 0.5], radius 1. Each vertex is position xyz then normal xyz.
func CylinderMesh(sides int) []float32 {
	if sides < 3 {
		sides = 3
	}
	out := make([]float32, 0, sides*6*6)
	vertex := func(angle float64, y float32) {
		x, z := float32(math.Cos(angle)), float32(math.Sin(angle))
		out = append(out, x, y, z, x, 0, z)
	}
	step := 2 * math.Pi / float64(sides)
	for i := 0; i < sides; i++ {
		a0, a1 := float64(i)*step, float64(i+1)*step
		// Two triangles per side.
		vertex(a0, -0.5)
		vertex(a1, 0.5)
		vertex(a1, -0.5)

		vertex(a0, -0.5)
		vertex(a0, 0.5)
		vertex(a1, 0.5)
	}
	return out
}
