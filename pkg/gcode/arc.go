package gcode

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultArcResolution is the chord length used when none is given.
const DefaultArcResolution = 1.0

// maxArcPoints caps tessellation of huge or finely resolved arcs.
const maxArcPoints = 4096

// CenterOffset returns the arc center relative to Start in plane axes,
// resolving radius-form arcs. ok is false for non-arc segments.
func (s *Segment) CenterOffset() (offset [2]float64, ok bool) {
	if s.Arc == nil {
		return offset, false
	}
	if s.Arc.HasOffset {
		return s.Arc.Offset, true
	}

	// Radius form: center lies on the chord bisector. Negative R selects the
	// arc longer than a half circle.
	alpha, beta, _ := s.Arc.Plane.Axes()
	x := s.End[alpha] - s.Start[alpha]
	y := s.End[beta] - s.Start[beta]
	r := s.Arc.Radius
	chord := math.Hypot(x, y)
	if chord == 0 {
		return offset, false
	}

	h := 4*r*r - x*x - y*y
	if h < 0 {
		h = 0
	}
	h = -math.Sqrt(h) / chord
	if s.Mode == ArcCCW {
		h = -h
	}
	if r < 0 {
		h = -h
	}
	offset[0] = 0.5 * (x - y*h)
	offset[1] = 0.5 * (y + x*h)
	return offset, true
}

// Tessellate returns the polyline traced by the segment. Straight moves give
// their two endpoints. Arcs are split into chords of at most resolution length;
// the last point is always exactly End.
func (s *Segment) Tessellate(resolution float64) []mgl64.Vec3 {
	offset, ok := s.CenterOffset()
	if !s.Mode.IsArc() || !ok {
		return []mgl64.Vec3{s.Start, s.End}
	}
	if resolution <= 0 {
		resolution = DefaultArcResolution
	}

	alpha, beta, helical := s.Arc.Plane.Axes()
	clockwise := s.Mode == ArcCW

	rP := -offset[0]
	rQ := -offset[1]
	centerP := s.Start[alpha] + offset[0]
	centerQ := s.Start[beta] + offset[1]
	rtAlpha := s.End[alpha] - centerP
	rtBeta := s.End[beta] - centerQ

	angular := math.Atan2(rP*rtBeta-rQ*rtAlpha, rP*rtAlpha+rQ*rtBeta)
	if angular < 0 {
		angular += 2 * math.Pi
	}
	if clockwise {
		angular -= 2 * math.Pi
	}
	if angular == 0 && s.Start[alpha] == s.End[alpha] && s.Start[beta] == s.End[beta] {
		angular = 2 * math.Pi
	}

	linear := s.End[helical] - s.Start[helical]
	flat := math.Hypot(rP, rQ) * angular
	travel := math.Abs(flat)
	if linear != 0 {
		travel = math.Hypot(flat, linear)
	}

	n := int(math.Max(1, math.Floor(travel/resolution)))
	if n > maxArcPoints {
		n = maxArcPoints
	}
	theta := angular / float64(n)
	linearStep := linear / float64(n)

	points := make([]mgl64.Vec3, 0, n+1)
	points = append(points, s.Start)
	for i := 1; i < n; i++ {
		cos := math.Cos(float64(i) * theta)
		sin := math.Sin(float64(i) * theta)
		var p mgl64.Vec3
		p[alpha] = centerP - offset[0]*cos + offset[1]*sin
		p[beta] = centerQ - offset[0]*sin - offset[1]*cos
		p[helical] = s.Start[helical] + float64(i)*linearStep
		points = append(points, p)
	}
	return append(points, s.End)
}
