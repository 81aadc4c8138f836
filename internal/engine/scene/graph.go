package scene

// NodeKind tags what a node carries.
type NodeKind uint8

// Node kinds.
const (
	NodePrimitive NodeKind = iota // Owns geometry and a bounding volume
	NodeGroup                     // Container without geometry
)

// String returns the node kind name.
func (k NodeKind) String() string {
	if k == NodeGroup {
		return "group"
	}
	return "primitive"
}

// Node is a scene graph node.
type Node struct {
	Kind      NodeKind
	Name      string
	Primitive *Primitive // Set for NodePrimitive
	Children  []*Node    // Set for NodeGroup
	Visible   bool
}

// NewPrimitiveNode wraps a primitive in a node.
func NewPrimitiveNode(p *Primitive) *Node {
	return &Node{Kind: NodePrimitive, Name: p.Mode.String(), Primitive: p, Visible: true}
}

// NewGroup creates a group node.
func NewGroup(name string, children ...*Node) *Node {
	return &Node{Kind: NodeGroup, Name: name, Children: children, Visible: true}
}

// HasBounds reports whether the node carries its own bounding volume.
func (n *Node) HasBounds() bool {
	return n.Kind == NodePrimitive && n.Primitive != nil
}

// Walk visits n and its descendants depth first. Returning false from fn skips
// the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Graph is a fully built scene: the node tree and its primitives in draw order.
type Graph struct {
	Root       *Node
	Primitives []*Primitive
}

// NewGraph builds a graph with one group root over the given primitives.
func NewGraph(name string, prims []*Primitive) *Graph {
	children := make([]*Node, 0, len(prims))
	for _, p := range prims {
		children = append(children, NewPrimitiveNode(p))
	}
	return &Graph{Root: NewGroup(name, children...), Primitives: prims}
}

// SetDrawLimit applies a segment draw limit to every primitive.
func (g *Graph) SetDrawLimit(limit int) {
	if g == nil {
		return
	}
	for _, p := range g.Primitives {
		p.SetDrawLimit(limit)
	}
}

// Dispose releases every primitive.
func (g *Graph) Dispose() {
	if g == nil {
		return
	}
	for _, p := range g.Primitives {
		p.Dispose()
	}
}

// Stage holds the graph currently attached to the renderer. Replace swaps in a
// fully built graph and disposes the previous one.
type Stage struct {
	current *Graph
}

// Current returns the attached graph, or nil.
func (s *Stage) Current() *Graph {
	return s.current
}

// Replace attaches g (which may be nil to clear) and disposes the old graph.
func (s *Stage) Replace(g *Graph) {
	old := s.current
	s.current = g
	if old != nil && old != g {
		old.Dispose()
	}
}
