package plant

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/grove/graph"
	"github.com/pthm-cable/grove/light"
)

// Gravity is the tropism direction.
var Gravity = r3.Vec{Z: -1}

// minTropismAge is the branch age below which no tropism offset applies.
const minTropismAge = 2

// Module is one growth unit: a graph that unfolds over time plus the child
// modules spawned from its terminal nodes.
type Module struct {
	ID       int
	Graph    *graph.Graph
	Age      float64
	Maturity float64
	Vigor    float64
	Exposure float64
	Children []*Module
	Shed     bool
	Sphere   light.Sphere

	Parent     *Module
	ParentNode int // Node of Parent this module grows from

	plant    *Plant
	links    map[int]*connector // Connecting node -> child module
	branches []branch           // Growth order, oldest first
	seen     int                // Graph segments already in branches
	rng      *rand.Rand
}

// connector is the segment from a connecting node to a child module root.
type connector struct {
	node     int
	child    *Module
	diameter float64
}

// branch is one entry in a module's growth order: a graph segment or a
// connector.
type branch struct {
	seg  int
	conn *connector
}

func newModule(p *Plant, id int, proto *graph.Prototype, origin, dir r3.Vec, vigor float64) *Module {
	m := &Module{
		ID:         id,
		Graph:      graph.New(proto, origin, dir),
		Maturity:   proto.MaturityAge(),
		Vigor:      vigor,
		ParentNode: -1,
		plant:      p,
		links:      make(map[int]*connector),
		rng:        rand.New(rand.NewPCG(uint64(p.seed), uint64(p.ID)<<32|uint64(id))),
	}
	m.Graph.PlaceChildren(m.Graph.Root(), p.Settings.Straightness, m.rng)
	m.syncBranches()
	m.updateBounds()
	return m
}

// syncBranches appends newly unfolded graph segments to the growth order.
func (m *Module) syncBranches() {
	avail := m.Graph.Available()
	for _, s := range avail[m.seen:] {
		m.branches = append(m.branches, branch{seg: s})
	}
	m.seen = len(avail)
}

// connect adds the connector from node n to child.
func (m *Module) connect(n int, child *Module) {
	c := &connector{node: n, child: child}
	m.links[n] = c
	m.branches = append(m.branches, branch{seg: -1, conn: c})
}

// disconnect removes the connector at node n.
func (m *Module) disconnect(n int) {
	c, ok := m.links[n]
	if !ok {
		return
	}
	delete(m.links, n)
	for i, b := range m.branches {
		if b.conn == c {
			m.branches = append(m.branches[:i], m.branches[i+1:]...)
			return
		}
	}
}

// Plant returns the plant this module belongs to.
func (m *Module) Plant() *Plant { return m.plant }

// Alive reports whether the module is still attached to its plant.
func (m *Module) Alive() bool { return !m.Shed }

// Root returns the world position of the module root.
func (m *Module) Root() r3.Vec {
	return m.Graph.Nodes[m.Graph.Root()].Pos
}

// Link returns the child module grown from node n, if any.
func (m *Module) Link(n int) (*Module, bool) {
	c, ok := m.links[n]
	if !ok {
		return nil, false
	}
	return c.child, true
}

// Connectors returns the number of connecting segments leaving the module.
func (m *Module) Connectors() int { return len(m.links) }

// growthRate maps vigor to a growth rate with a smoothstep ramp between
// VMin and VMax.
func growthRate(v, vMin, vMax, gp float64) float64 {
	x := (v - vMin) / (vMax - vMin)
	x = math.Max(0, math.Min(1, x))
	return (3*x*x - 2*x*x*x) * gp
}

// grow advances the module and its children by dt.
func (m *Module) grow(dt float64, canSpawn bool) {
	s := &m.plant.Settings
	if m.Vigor < s.VMin {
		return
	}

	for _, c := range m.Children {
		if !c.Shed {
			c.grow(dt, canSpawn)
		}
	}

	v := math.Min(m.Vigor, s.VMax)
	dAge := growthRate(v, s.VMin, s.VMax, s.GrowthPotential) * dt
	m.Age += dAge
	m.Graph.Age(dAge)

	for _, src := range m.Graph.Unfold(m.Age) {
		m.Graph.PlaceChildren(src, s.Straightness, m.rng)
	}
	m.syncBranches()

	if m.Age > m.Maturity && canSpawn {
		m.spawnChildren()
	}

	m.updateGeometry()
	m.updateBounds()
}

// updateGeometry sets diameters, lengths and tropism offsets of every
// branch, connectors included, newest first.
func (m *Module) updateGeometry() {
	g := m.Graph
	for k := len(m.branches) - 1; k >= 0; k-- {
		b := m.branches[k]
		if b.conn != nil {
			m.growConnector(b.conn)
			continue
		}

		dest := g.Segments[b.seg].Dest
		branchAge := g.Nodes[dest].Age

		g.Segments[b.seg].Diameter = m.nodeDiameter(dest)
		if !g.Tree(b.seg) {
			continue
		}

		stretch := m.targetLength(branchAge) - g.Length(b.seg)
		m.translate(dest, r3.Scale(stretch, g.Nodes[dest].Dir))
		m.translate(dest, m.tropismOffset(branchAge, g.Nodes[dest].Pos))
		g.RecalculateDirection(dest)
	}
}

// growConnector treats the link to a child module as a branch ending at the
// child root. Moving the root moves the whole child module.
func (m *Module) growConnector(c *connector) {
	child := c.child
	if child.Shed {
		return
	}
	root := &child.Graph.Nodes[child.Graph.Root()]
	from := m.Graph.Nodes[c.node].Pos

	c.diameter = child.nodeDiameter(child.Graph.Root())

	stretch := m.targetLength(root.Age) - r3.Norm(r3.Sub(root.Pos, from))
	child.translateAll(r3.Scale(stretch, root.Dir))
	child.translateAll(m.tropismOffset(root.Age, root.Pos))

	if d := r3.Sub(root.Pos, from); r3.Norm(d) > 1e-8 {
		root.Dir = r3.Unit(d)
	}
}

// targetLength is the length a branch of the given age grows to.
func (m *Module) targetLength(age float64) float64 {
	s := &m.plant.Settings
	return math.Min(s.MaxLength, s.LengthScale*age)
}

// tropismOffset is the gravity displacement of a branch end at pos. Ends are
// kept above the ground plane.
func (m *Module) tropismOffset(age float64, pos r3.Vec) r3.Vec {
	s := &m.plant.Settings
	if age < minTropismAge {
		return r3.Vec{}
	}
	var offset r3.Vec
	g2 := s.TropismAngle * -1 * s.TropismStrength
	if denom := age + s.TropismDecay; denom != 0 {
		offset = r3.Scale(s.TropismDecay*g2/denom, Gravity)
	}
	if pos.Z+offset.Z < 0 {
		offset.Z = 0.1 - pos.Z
	}
	return offset
}

// nodeDiameter is the pipe-model diameter of the branch ending at n.
func (m *Module) nodeDiameter(n int) float64 {
	g := m.Graph
	var sum float64
	count := 0
	for _, cs := range g.Nodes[n].Children {
		if g.Segments[cs].Available {
			d := g.Segments[cs].Diameter
			sum += d * d
			count++
		}
	}
	if c, ok := m.links[n]; ok && !c.child.Shed {
		sum += c.diameter * c.diameter
		count++
	}
	if count == 0 {
		return m.plant.Settings.Thickness
	}
	return math.Sqrt(sum)
}

// translate moves node n, its descendants and any child modules attached
// to them.
func (m *Module) translate(n int, delta r3.Vec) {
	if delta == (r3.Vec{}) {
		return
	}
	m.Graph.Translate(n, delta, func(moved int) {
		if c, ok := m.links[moved]; ok && !c.child.Shed {
			c.child.translateAll(delta)
		}
	})
}

func (m *Module) translateAll(delta r3.Vec) {
	if delta == (r3.Vec{}) {
		return
	}
	m.Graph.TranslateAll(delta)
	m.Sphere.Center = r3.Add(m.Sphere.Center, delta)
	for _, child := range m.Children {
		if !child.Shed {
			child.translateAll(delta)
		}
	}
}

// updateBounds recomputes the cached bounding sphere.
func (m *Module) updateBounds() {
	m.Sphere = light.Bound(m.Graph.Positions(nil), m.plant.MinRadius)
}

// walk visits m and every non-shed descendant in preorder.
func (m *Module) walk(fn func(*Module)) {
	fn(m)
	for _, c := range m.Children {
		if !c.Shed {
			c.walk(fn)
		}
	}
}
