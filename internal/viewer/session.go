// Package viewer wires parsing, geometry, culling, scheduling, picking and
// seeking into one loop-driven toolpath viewer. It has no window or GL
// dependency; the application drives it with Tick and draws the frames it
// returns.
package viewer

import (
	"image"

	"github.com/Faultbox/pathscope/internal/engine/picking"
	"github.com/Faultbox/pathscope/internal/engine/tooltip"
	"github.com/Faultbox/pathscope/pkg/gcode"
)

// AllSegments is the seek position that draws the whole toolpath.
const AllSegments = -1

// Compiler turns source text into toolpath text.
type Compiler interface {
	Compile(src string) (string, error)
}

// Session is the mutable state of one viewing session. Components read it
// through the Viewer; only the Viewer writes it.
type Session struct {
	Filename string
	Source   string // Text most recently handed to Load
	Model    *gcode.Toolpath

	// Error is the last load failure, nil after a successful load.
	Error error

	// Position is the applied seek position, AllSegments when unlimited.
	Position int

	Hover   *picking.PointSample
	Tooltip *Tooltip

	ShowBounds bool
	Capture    bool // A frame capture was requested
	Quit       bool
}

// Tooltip is a formatted tooltip placed in the viewport.
type Tooltip struct {
	Content tooltip.Content
	At      tooltip.Point
	Size    tooltip.Size
	Image   *image.RGBA
}
