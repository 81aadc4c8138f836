package culling

import (
	"github.com/Faultbox/pathscope/internal/engine/bounds"
	"github.com/Faultbox/pathscope/internal/engine/camera"
	"github.com/Faultbox/pathscope/internal/engine/scene"
)

// IntersectFunc tests one cached bounding volume against a frustum.
type IntersectFunc func(f *Frustum, v *bounds.Volume) bool

// Stats counts the outcome of the last pass.
type Stats struct {
	Visible int
	Culled  int
	NoBound int // Primitives drawn because they carry no bounds
}

// Culler updates per-primitive visibility from the camera.
type Culler struct {
	// Intersect defaults to Intersects.
	Intersect IntersectFunc

	frustum Frustum
	stats   Stats
}

// New creates a culler using the default volume test.
func New() *Culler {
	return &Culler{Intersect: Intersects}
}

// Frustum returns the frustum of the last pass.
func (c *Culler) Frustum() Frustum {
	return c.frustum
}

// Stats returns the counts of the last pass.
func (c *Culler) Stats() Stats {
	return c.stats
}

// Update sets Visible on every node and primitive of g from cam. Geometry and
// bounding volumes are only read. A nil graph or camera leaves visibility as is.
func (c *Culler) Update(g *scene.Graph, cam *camera.State) {
	if g == nil || g.Root == nil || cam == nil {
		return
	}
	if c.Intersect == nil {
		c.Intersect = Intersects
	}
	c.frustum = FromMatrix(cam.Projection.Mul4(cam.View))
	c.stats = Stats{}
	c.visit(g.Root)
}

// visit returns the node's visibility. Groups are visible when any child is.
func (c *Culler) visit(n *scene.Node) bool {
	switch n.Kind {
	case scene.NodePrimitive:
		n.Visible = c.primitiveVisible(n.Primitive)
	default:
		visible := false
		for _, child := range n.Children {
			// Every child is visited so each gets its flag updated.
			if c.visit(child) {
				visible = true
			}
		}
		n.Visible = visible
	}
	return n.Visible
}

func (c *Culler) primitiveVisible(p *scene.Primitive) bool {
	if p == nil || p.Disposed() {
		return false
	}
	v := p.Bounds()
	switch {
	case v == nil:
		p.Visible = true
		c.stats.NoBound++
	default:
		p.Visible = c.Intersect(&c.frustum, v)
	}
	if p.Visible {
		c.stats.Visible++
	} else {
		c.stats.Culled++
	}
	return p.Visible
}
