// Package scene holds the renderable toolpath scene graph.
// Nodes are tagged: a primitive node owns geometry and a bounding volume, a
// group node only has children.
package scene

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/Faultbox/pathscope/internal/engine/bounds"
	"github.com/Faultbox/pathscope/pkg/gcode"
)

// Kind is the GPU representation of a primitive.
type Kind uint8

// Primitive kinds.
const (
	Batched   Kind = iota // One line-list vertex buffer
	Instanced             // One base shape drawn with a transform per instance
)

// String returns the kind name.
func (k Kind) String() string {
	if k == Instanced {
		return "instanced"
	}
	return "batched"
}

// Buffer is a GPU allocation owned by a primitive.
type Buffer interface {
	// Release frees the GPU resources. It is called at most once.
	Release()
}

// Primitive is one GPU-facing draw unit covering the segments of one mode.
type Primitive struct {
	ID    uuid.UUID
	Kind  Kind
	Mode  gcode.Mode
	Color mgl32.Vec4

	// Buffer holds the uploaded vertices (Batched) or instance transforms (Instanced).
	Buffer Buffer

	// Elements is the number of vertices (Batched) or instances (Instanced).
	Elements int

	// Visible is written by the culling pass.
	Visible bool

	segments []int // Toolpath segment indices, ascending
	ends     []int // ends[i]: element count through segments[i]

	bounds    *bounds.Volume
	drawCount int
	disposed  bool
}

// NewPrimitive creates a primitive. segments lists the toolpath segment indices
// it covers in ascending order and ends the cumulative element count after each.
func NewPrimitive(kind Kind, mode gcode.Mode, buf Buffer, segments, ends []int) *Primitive {
	elements := 0
	if len(ends) > 0 {
		elements = ends[len(ends)-1]
	}
	return &Primitive{
		ID:        uuid.New(),
		Kind:      kind,
		Mode:      mode,
		Buffer:    buf,
		Elements:  elements,
		Visible:   true,
		segments:  segments,
		ends:      ends,
		drawCount: elements,
	}
}

// SealBounds stores the bounding volume. Only the first call has an effect;
// it reports whether the volume was stored.
func (p *Primitive) SealBounds(v *bounds.Volume) bool {
	if p.bounds != nil || v == nil {
		return false
	}
	p.bounds = v
	return true
}

// Bounds returns the cached bounding volume, or nil if none was computed.
func (p *Primitive) Bounds() *bounds.Volume {
	return p.bounds
}

// Segments returns the toolpath segment indices drawn by this primitive.
func (p *Primitive) Segments() []int {
	return p.segments
}

// SetDrawLimit restricts drawing to segments with an index below limit.
// A negative limit draws everything.
func (p *Primitive) SetDrawLimit(limit int) {
	if limit < 0 {
		p.drawCount = p.Elements
		return
	}
	k := sort.SearchInts(p.segments, limit)
	if k == 0 {
		p.drawCount = 0
		return
	}
	p.drawCount = p.ends[k-1]
}

// DrawCount returns the number of elements to draw under the current limit.
func (p *Primitive) DrawCount() int {
	return p.drawCount
}

// Dispose releases the GPU buffer. Safe to call more than once.
func (p *Primitive) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	if p.Buffer != nil {
		p.Buffer.Release()
		p.Buffer = nil
	}
	p.Visible = false
}

// Disposed reports whether Dispose has run.
func (p *Primitive) Disposed() bool {
	return p.disposed
}
