package graph

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// NodeType classifies a node by its place in the module.
type NodeType uint8

const (
	Root NodeType = iota
	Normal
	Connecting
	Terminal
)

func (t NodeType) String() string {
	switch t {
	case Root:
		return "root"
	case Normal:
		return "normal"
	case Connecting:
		return "connecting"
	case Terminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Up is the world up axis.
var Up = r3.Vec{Z: 1}

// Node is a point in a module graph.
type Node struct {
	Pos      r3.Vec
	Dir      r3.Vec // Unit vector from the parent node
	Age      float64
	Vigor    float64
	Exposure float64
	Type     NodeType
	Parent   int   // Tree parent segment index, -1 for the root
	Children []int // Child segment indices in prototype order
	Linked   bool  // Bridges to a child module root
}

// Segment is a directed branch between two nodes.
type Segment struct {
	Source    int
	Dest      int
	Diameter  float64
	Depth     int
	Available bool
}

// Graph is the live instance of a prototype, stored as index arenas.
type Graph struct {
	Proto    *Prototype
	Nodes    []Node
	Segments []Segment

	available []int // Available segment indices in unfolding order
}

// New instantiates proto with its root at origin facing dir. All nodes start
// at the root position; the root's segments are available immediately.
// Node types follow the prototype: nodes with children are Normal, leaves
// are Terminal.
func New(proto *Prototype, origin, dir r3.Vec) *Graph {
	dir = unitOr(dir, Up)

	g := &Graph{
		Proto:    proto,
		Nodes:    make([]Node, proto.NumNodes),
		Segments: make([]Segment, len(proto.Edges)),
	}

	for i := range g.Nodes {
		g.Nodes[i] = Node{
			Pos:      origin,
			Dir:      dir,
			Parent:   proto.Parent(i),
			Children: proto.Children(i),
		}
		g.refreshType(i)
	}

	for i, e := range proto.Edges {
		g.Segments[i] = Segment{Source: e.Source, Dest: e.Dest, Depth: proto.Depth[i]}
	}

	for _, s := range g.Nodes[0].Children {
		g.markAvailable(s)
	}

	return g
}

func (g *Graph) markAvailable(s int) {
	seg := &g.Segments[s]
	seg.Available = true
	g.available = append(g.available, s)
}

// refreshType derives a node's type from the prototype and its link. Only
// prototype leaves can be Terminal or Connecting.
func (g *Graph) refreshType(n int) {
	node := &g.Nodes[n]
	switch {
	case n == 0:
		node.Type = Root
	case len(node.Children) > 0:
		node.Type = Normal
	case node.Linked:
		node.Type = Connecting
	default:
		node.Type = Terminal
	}
}

// Tree reports whether segment s is the tree edge into its destination.
// A node with several parents has one tree edge; the others are rendered
// and thickened but carry no position or age.
func (g *Graph) Tree(s int) bool {
	return g.Nodes[g.Segments[s].Dest].Parent == s
}

// Root returns the root node index.
func (g *Graph) Root() int { return 0 }

// Available returns the available segments in unfolding order.
// The slice must not be modified.
func (g *Graph) Available() []int { return g.available }

// NodeAvailable reports whether node n is part of the grown module.
func (g *Graph) NodeAvailable(n int) bool {
	p := g.Nodes[n].Parent
	return p < 0 || g.Segments[p].Available
}

// AvailableChildren appends the destination nodes of n's available child
// tree segments to dst.
func (g *Graph) AvailableChildren(n int, dst []int) []int {
	for _, s := range g.Nodes[n].Children {
		if g.Segments[s].Available && g.Tree(s) {
			dst = append(dst, g.Segments[s].Dest)
		}
	}
	return dst
}

// AvailableNodes appends every available node to dst, root first, in
// unfolding order.
func (g *Graph) AvailableNodes(dst []int) []int {
	dst = append(dst, 0)
	for _, s := range g.available {
		if g.Tree(s) {
			dst = append(dst, g.Segments[s].Dest)
		}
	}
	return dst
}

// Positions appends the positions of all available nodes to dst.
func (g *Graph) Positions(dst []r3.Vec) []r3.Vec {
	dst = append(dst, g.Nodes[0].Pos)
	for _, s := range g.available {
		if g.Tree(s) {
			dst = append(dst, g.Nodes[g.Segments[s].Dest].Pos)
		}
	}
	return dst
}

// Terminals returns the available prototype leaves that do not bridge to a
// child module, in unfolding order.
func (g *Graph) Terminals() []int {
	var out []int
	for _, s := range g.available {
		d := g.Segments[s].Dest
		if g.Tree(s) && g.Nodes[d].Type == Terminal {
			out = append(out, d)
		}
	}
	return out
}

// Age advances the age of every available node by d.
func (g *Graph) Age(d float64) {
	g.Nodes[0].Age += d
	for _, s := range g.available {
		if g.Tree(s) {
			g.Nodes[g.Segments[s].Dest].Age += d
		}
	}
}

// Unfold makes every latent segment with depth <= age available, in
// prototype order. Each newly available destination is aged by
// (age - depth). It returns the distinct source nodes whose children
// unfolded, in first-unfolded order.
func (g *Graph) Unfold(age float64) []int {
	var sources []int
	for i := range g.Segments {
		seg := &g.Segments[i]
		if seg.Available || float64(seg.Depth) > age {
			continue
		}
		g.markAvailable(i)
		if g.Tree(i) {
			g.Nodes[seg.Dest].Age += age - float64(seg.Depth)
		}
		if !contains(sources, seg.Source) {
			sources = append(sources, seg.Source)
		}
	}
	return sources
}

// Link marks terminal node n as bridging to a child module. Only an
// available prototype leaf without a link qualifies.
func (g *Graph) Link(n int) error {
	node := &g.Nodes[n]
	if node.Type != Terminal {
		return fmt.Errorf("link node %d: node is %s, not terminal", n, node.Type)
	}
	if !g.NodeAvailable(n) {
		return fmt.Errorf("link node %d: node has not unfolded", n)
	}
	node.Linked = true
	g.refreshType(n)
	return nil
}

// ResetToTerminal drops n's link to a child module.
func (g *Graph) ResetToTerminal(n int) {
	g.Nodes[n].Linked = false
	g.refreshType(n)
}

// Translate moves node n and every available tree descendant by delta.
// It calls visit for each moved node so callers can follow module links.
func (g *Graph) Translate(n int, delta r3.Vec, visit func(n int)) {
	g.Nodes[n].Pos = r3.Add(g.Nodes[n].Pos, delta)
	if visit != nil {
		visit(n)
	}
	for _, s := range g.Nodes[n].Children {
		if g.Segments[s].Available && g.Tree(s) {
			g.Translate(g.Segments[s].Dest, delta, visit)
		}
	}
}

// TranslateAll moves every node of the module by delta.
func (g *Graph) TranslateAll(delta r3.Vec) {
	for i := range g.Nodes {
		g.Nodes[i].Pos = r3.Add(g.Nodes[i].Pos, delta)
	}
}

// RecalculateDirection points n's direction away from its parent node.
// The previous direction is kept when the branch has no length.
func (g *Graph) RecalculateDirection(n int) {
	p := g.Nodes[n].Parent
	if p < 0 {
		return
	}
	src := g.Nodes[g.Segments[p].Source].Pos
	g.Nodes[n].Dir = unitOr(r3.Sub(g.Nodes[n].Pos, src), g.Nodes[n].Dir)
}

// Length returns the current length of segment s.
func (g *Graph) Length(s int) float64 {
	seg := g.Segments[s]
	return r3.Norm(r3.Sub(g.Nodes[seg.Dest].Pos, g.Nodes[seg.Source].Pos))
}

// unitOr returns the unit vector of v, or fallback if v is too short.
func unitOr(v, fallback r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n < 1e-8 || math.IsNaN(n) || math.IsInf(n, 0) {
		return fallback
	}
	return r3.Scale(1/n, v)
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
