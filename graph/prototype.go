// Package graph holds module topologies: validated prototypes and the live
// node/segment arenas instantiated from them.
package graph

import (
	"errors"
	"fmt"
)

// MaxChildren is the most child segments a node can carry.
const MaxChildren = 5

// ErrInvalidTopology is returned for prototypes that cannot form a module.
var ErrInvalidTopology = errors.New("invalid topology")

// Reason identifies why a prototype failed validation.
type Reason int

const (
	ReasonNoEdges Reason = iota
	ReasonSelfLoop
	ReasonDisconnected
	ReasonUnreachable
	ReasonCycle
	ReasonRootHasParent
	ReasonFanOut
	ReasonMalformedEdge
)

func (r Reason) String() string {
	switch r {
	case ReasonNoEdges:
		return "no edges"
	case ReasonSelfLoop:
		return "self loop"
	case ReasonDisconnected:
		return "disconnected"
	case ReasonUnreachable:
		return "unreachable"
	case ReasonCycle:
		return "cycle"
	case ReasonRootHasParent:
		return "root has parent"
	case ReasonFanOut:
		return "too many children"
	case ReasonMalformedEdge:
		return "malformed edge"
	default:
		return "unknown"
	}
}

// ValidationError describes a prototype failure. It wraps ErrInvalidTopology.
type ValidationError struct {
	Prototype string
	Reason    Reason
	Node      int // Original id of the offending node, or -1
	Message   string
}

func (e *ValidationError) Error() string {
	if e.Node >= 0 {
		return fmt.Sprintf("prototype %q: %s (node %d): %s", e.Prototype, e.Reason, e.Node, e.Message)
	}
	return fmt.Sprintf("prototype %q: %s: %s", e.Prototype, e.Reason, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidTopology }

// Edge is a directed source to destination pair.
type Edge struct {
	Source, Dest int
}

// Prototype is a validated module topology. Node ids are renumbered
// 0..NumNodes-1 in first-seen order and node 0 is the root.
type Prototype struct {
	Name     string
	Edges    []Edge // Renumbered edges in input order
	Depth    []int  // Per edge, BFS level of the destination
	NumNodes int
	MaxDepth int

	children [][]int // Per node, outgoing edge indices in input order
	parent   []int   // Per node, first incoming edge index or -1
}

// NewPrototype validates edges and builds a prototype.
func NewPrototype(name string, edges []Edge) (*Prototype, error) {
	fail := func(reason Reason, node int, format string, args ...any) (*Prototype, error) {
		return nil, &ValidationError{Prototype: name, Reason: reason, Node: node, Message: fmt.Sprintf(format, args...)}
	}

	if len(edges) == 0 {
		return fail(ReasonNoEdges, -1, "prototype needs at least one edge")
	}

	// Renumber in first-seen order
	ids := make(map[int]int)
	var original []int
	lookup := func(id int) int {
		if n, ok := ids[id]; ok {
			return n
		}
		n := len(original)
		ids[id] = n
		original = append(original, id)
		return n
	}

	renumbered := make([]Edge, len(edges))
	for i, e := range edges {
		if e.Source == e.Dest {
			return fail(ReasonSelfLoop, e.Source, "edge %d connects a node to itself", i)
		}
		renumbered[i] = Edge{Source: lookup(e.Source), Dest: lookup(e.Dest)}
	}

	n := len(original)
	p := &Prototype{
		Name:     name,
		Edges:    renumbered,
		Depth:    make([]int, len(renumbered)),
		NumNodes: n,
		children: make([][]int, n),
		parent:   make([]int, n),
	}
	for i := range p.parent {
		p.parent[i] = -1
	}

	// A node reached by several edges keeps the first as its tree parent.
	for i, e := range renumbered {
		if p.parent[e.Dest] < 0 {
			p.parent[e.Dest] = i
		}
		p.children[e.Source] = append(p.children[e.Source], i)
		if len(p.children[e.Source]) > MaxChildren {
			return fail(ReasonFanOut, original[e.Source], "more than %d children", MaxChildren)
		}
	}

	if unreached := p.undirectedUnreached(); unreached >= 0 {
		return fail(ReasonDisconnected, original[unreached], "not connected to root %d", original[0])
	}
	if p.parent[0] >= 0 {
		return fail(ReasonRootHasParent, original[0], "root is the destination of edge %d", p.parent[0])
	}
	if node, reason := p.directedCheck(); node >= 0 {
		return fail(reason, original[node], "%s from root %d", reason, original[0])
	}

	p.assignDepths()

	return p, nil
}

// FromPairs builds a prototype from [source, dest] pairs as read from config.
func FromPairs(name string, pairs [][]int) (*Prototype, error) {
	edges := make([]Edge, len(pairs))
	for i, pair := range pairs {
		if len(pair) != 2 {
			return nil, &ValidationError{Prototype: name, Reason: ReasonMalformedEdge, Node: -1,
				Message: fmt.Sprintf("edge %d has %d ids, want 2", i, len(pair))}
		}
		edges[i] = Edge{Source: pair[0], Dest: pair[1]}
	}
	return NewPrototype(name, edges)
}

// undirectedUnreached runs a level-order traversal from the root ignoring
// edge direction and returns the first node it did not reach, or -1.
func (p *Prototype) undirectedUnreached() int {
	adj := make([][]int, p.NumNodes)
	for _, e := range p.Edges {
		adj[e.Source] = append(adj[e.Source], e.Dest)
		adj[e.Dest] = append(adj[e.Dest], e.Source)
	}

	seen := make([]bool, p.NumNodes)
	seen[0] = true
	queue := []int{0}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, m := range adj[n] {
			if !seen[m] {
				seen[m] = true
				queue = append(queue, m)
			}
		}
	}

	for i, ok := range seen {
		if !ok {
			return i
		}
	}
	return -1
}

// directedCheck walks directed edges depth-first from the root. It returns
// the first node closing a cycle or, failing that, the first node the walk
// never reached. It returns -1 when the edges form a rooted DAG.
func (p *Prototype) directedCheck() (int, Reason) {
	const (
		unvisited = iota
		inProgress
		done
	)
	mark := make([]uint8, p.NumNodes)
	cycleAt := -1

	var visit func(n int)
	visit = func(n int) {
		mark[n] = inProgress
		for _, e := range p.children[n] {
			d := p.Edges[e].Dest
			switch mark[d] {
			case inProgress:
				if cycleAt < 0 {
					cycleAt = d
				}
			case unvisited:
				visit(d)
			}
		}
		mark[n] = done
	}
	visit(0)

	if cycleAt >= 0 {
		return cycleAt, ReasonCycle
	}
	for i, m := range mark {
		if m != done {
			return i, ReasonUnreachable
		}
	}
	return -1, 0
}

// levelMarker separates BFS levels in the traversal queue.
const levelMarker = -1

// assignDepths runs a level-synchronized BFS from the root. Each edge gets
// the level of its source plus one, with the root at level 0. A node is
// enqueued once, at the level it is first discovered.
func (p *Prototype) assignDepths() {
	queue := []int{0, levelMarker}
	level := 0
	discovered := make([]bool, p.NumNodes)
	discovered[0] = true

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		if n == levelMarker {
			level++
			if len(queue) > 0 {
				queue = append(queue, levelMarker)
			}
			continue
		}

		for _, e := range p.children[n] {
			p.Depth[e] = level + 1
			if p.Depth[e] > p.MaxDepth {
				p.MaxDepth = p.Depth[e]
			}
			if d := p.Edges[e].Dest; !discovered[d] {
				discovered[d] = true
				queue = append(queue, d)
			}
		}
	}
}

// MaturityAge is the module age after which it may spawn children.
func (p *Prototype) MaturityAge() float64 {
	return float64(p.MaxDepth - 1)
}

// Children returns the outgoing edge indices of node n.
func (p *Prototype) Children(n int) []int {
	return p.children[n]
}

// Parent returns the tree edge into node n, or -1 for the root. For a node
// reached by several edges this is the first in input order.
func (p *Prototype) Parent(n int) int {
	return p.parent[n]
}

// Set is an ordered table of prototypes looked up by name.
type Set struct {
	list   []*Prototype
	byName map[string]*Prototype
}

// NewSet builds a prototype set. Duplicate names are rejected.
func NewSet(protos ...*Prototype) (*Set, error) {
	s := &Set{byName: make(map[string]*Prototype, len(protos))}
	for _, p := range protos {
		if _, ok := s.byName[p.Name]; ok {
			return nil, fmt.Errorf("duplicate prototype %q", p.Name)
		}
		s.byName[p.Name] = p
		s.list = append(s.list, p)
	}
	if len(s.list) == 0 {
		return nil, fmt.Errorf("prototype set is empty: %w", ErrInvalidTopology)
	}
	return s, nil
}

// Get returns the prototype with the given name.
func (s *Set) Get(name string) (*Prototype, bool) {
	p, ok := s.byName[name]
	return p, ok
}

// Select picks the prototype for a newly spawned module.
// The current policy always picks the first registered prototype.
func (s *Set) Select() *Prototype {
	return s.list[0]
}

// All returns the prototypes in registration order.
func (s *Set) All() []*Prototype {
	return s.list
}
