// Package gcode parses numeric-control motion programs into an ordered toolpath.
package gcode

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Mode is the motion mode of a segment.
type Mode uint8

// Motion modes, in the order they are tallied in Counts.
const (
	Rapid  Mode = iota // G0
	Linear             // G1
	ArcCW              // G2
	ArcCCW             // G3

	modeCount
)

// Modes lists every motion mode in tally order.
var Modes = [...]Mode{Rapid, Linear, ArcCW, ArcCCW}

// String returns the mode name used in statistics and tooltips.
func (m Mode) String() string {
	switch m {
	case Rapid:
		return "RAPID"
	case Linear:
		return "LINEAR"
	case ArcCW:
		return "ARC_CW"
	case ArcCCW:
		return "ARC_CCW"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Mnemonic returns the source mnemonic (G0..G3).
func (m Mode) Mnemonic() string {
	if m >= modeCount {
		return "G?"
	}
	return fmt.Sprintf("G%d", m)
}

// IsArc reports whether the mode is a circular interpolation.
func (m Mode) IsArc() bool {
	return m == ArcCW || m == ArcCCW
}

// Plane is the arc plane selected by G17/G18/G19.
type Plane uint8

// Arc planes.
const (
	PlaneXY Plane = iota // G17
	PlaneXZ              // G18
	PlaneYZ              // G19
)

// String returns the plane name.
func (p Plane) String() string {
	switch p {
	case PlaneXY:
		return "XY"
	case PlaneXZ:
		return "XZ"
	case PlaneYZ:
		return "YZ"
	default:
		return "unknown"
	}
}

// Axes returns the indices of the two in-plane axes and the helical axis.
func (p Plane) Axes() (alpha, beta, helical int) {
	switch p {
	case PlaneXZ:
		return 0, 2, 1
	case PlaneYZ:
		return 1, 2, 0
	default:
		return 0, 1, 2
	}
}

// Units is the length unit selected by G20/G21.
type Units uint8

// Length units.
const (
	Millimeters Units = iota
	Inches
)

// String returns the unit abbreviation.
func (u Units) String() string {
	if u == Inches {
		return "in"
	}
	return "mm"
}

// ArcParams holds the arc definition of an ARC_CW/ARC_CCW segment.
// Exactly one of HasOffset and HasRadius is set.
type ArcParams struct {
	Plane     Plane
	Offset    [2]float64 // Center offset from start, in plane axes (I/J, I/K or J/K)
	HasOffset bool
	Radius    float64
	HasRadius bool
}

// Segment is one rendered motion.
type Segment struct {
	Start, End mgl64.Vec3
	Mode       Mode
	Arc        *ArcParams // nil unless Mode.IsArc()
	Line       int        // Source line index (0-based)

	Feed       float64
	HasFeed    bool
	Spindle    float64
	HasSpindle bool

	// Aux holds auxiliary axis positions (A, B, C, U, V, W). The map is shared
	// between segments and must not be modified.
	Aux map[byte]float64
}

// Length returns the straight-line distance from Start to End.
func (s *Segment) Length() float64 {
	return s.End.Sub(s.Start).Len()
}

// Counts tallies segments per mode. Every mode is always present.
type Counts [modeCount]int

// Get returns the count for a mode.
func (c Counts) Get(m Mode) int {
	if m >= modeCount {
		return 0
	}
	return c[m]
}

// Total returns the sum over all modes.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Map returns the counts keyed by mode name.
func (c Counts) Map() map[string]int {
	out := make(map[string]int, len(c))
	for _, m := range Modes {
		out[m.String()] = c[m]
	}
	return out
}

// Bounds is the axis-aligned extent of all segment endpoints.
type Bounds struct {
	Min, Max mgl64.Vec3
	Valid    bool
}

func (b *Bounds) extend(p mgl64.Vec3) {
	if !b.Valid {
		b.Min, b.Max, b.Valid = p, p, true
		return
	}
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Center returns the midpoint of the bounds.
func (b Bounds) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Toolpath is the parsed, immutable toolpath model.
type Toolpath struct {
	Segments  []Segment
	Counts    Counts
	LineMap   []int // Segment index -> source line index
	LineCount int
	Units     Units
	Bounds    Bounds
}

// Len returns the number of segments.
func (t *Toolpath) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Segments)
}

// LineOf returns the source line of a segment, or -1 when out of range.
func (t *Toolpath) LineOf(segment int) int {
	if t == nil || segment < 0 || segment >= len(t.LineMap) {
		return -1
	}
	return t.LineMap[segment]
}

// SegmentsForLine returns the half-open range of segment indices produced by a
// source line. The range is empty for blank, comment or non-motion lines.
func (t *Toolpath) SegmentsForLine(line int) (first, end int) {
	if t == nil {
		return 0, 0
	}
	first = sort.SearchInts(t.LineMap, line)
	end = sort.SearchInts(t.LineMap, line+1)
	return first, end
}
