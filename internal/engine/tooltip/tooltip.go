// Package tooltip formats picked points for display and places the tooltip
// inside the viewport.
package tooltip

import (
	"math"
	"strconv"
	"strings"

	"github.com/Faultbox/pathscope/internal/engine/picking"
	"github.com/Faultbox/pathscope/pkg/gcode"
)

// Unavailable replaces coordinates that are missing or not finite.
const Unavailable = "unavailable"

// Content is the formatted text of one tooltip. Empty fields are not shown.
type Content struct {
	Mode     string // "LINEAR (G1)"
	Position string // "X 10.00  Y -5.12  Z 0.00"
	Line     string // "line 12"
	Arc      string // Arc parameters, arc modes only
	Feed     string
	Spindle  string
}

// Lines returns the non-empty fields in display order.
func (c Content) Lines() []string {
	out := make([]string, 0, 6)
	for _, s := range []string{c.Mode, c.Position, c.Line, c.Arc, c.Feed, c.Spindle} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// String joins the lines with newlines.
func (c Content) String() string {
	return strings.Join(c.Lines(), "\n")
}

// FormatCoordinate renders v with exactly two decimals, or Unavailable for
// NaN and infinities.
func FormatCoordinate(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Unavailable
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}

// Format renders a point sample.
func Format(s picking.PointSample) Content {
	c := Content{
		Mode: s.Mode.String() + " (" + s.Mode.Mnemonic() + ")",
		Position: "X " + FormatCoordinate(s.Position[0]) +
			"  Y " + FormatCoordinate(s.Position[1]) +
			"  Z " + FormatCoordinate(s.Position[2]),
		Line: "line " + strconv.Itoa(s.Line+1),
	}
	if s.Mode.IsArc() {
		c.Arc = FormatArc(s.Arc)
	}
	if s.HasFeed {
		c.Feed = "F " + FormatCoordinate(s.Feed)
	}
	if s.HasSpindle {
		c.Spindle = "S " + FormatCoordinate(s.Spindle)
	}
	return c
}

// offsetLetters names the center offset words of each arc plane.
var offsetLetters = [...][2]string{
	gcode.PlaneXY: {"I", "J"},
	gcode.PlaneXZ: {"I", "K"},
	gcode.PlaneYZ: {"J", "K"},
}

// FormatArc renders arc parameters. A nil arc renders as an empty string.
func FormatArc(a *gcode.ArcParams) string {
	if a == nil {
		return ""
	}
	switch {
	case a.HasOffset:
		letters := offsetLetters[gcode.PlaneXY]
		if int(a.Plane) < len(offsetLetters) {
			letters = offsetLetters[a.Plane]
		}
		return letters[0] + " " + FormatCoordinate(a.Offset[0]) +
			"  " + letters[1] + " " + FormatCoordinate(a.Offset[1])
	case a.HasRadius:
		return "R " + FormatCoordinate(a.Radius)
	}
	return ""
}
