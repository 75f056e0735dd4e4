package plant

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/grove/vigor"
)

// nodeTree adapts a module graph to vigor.Tree at node granularity.
// Only intra-module available segments are followed.
type nodeTree struct {
	m        *Module
	exposure []float64
}

func (t nodeTree) Len() int  { return len(t.m.Graph.Nodes) }
func (t nodeTree) Root() int { return t.m.Graph.Root() }
func (t nodeTree) Children(i int, dst []int) []int {
	return t.m.Graph.AvailableChildren(i, dst)
}
func (t nodeTree) Exposure(i int) float64 { return t.exposure[i] }

// spawnChildren gives every terminal node an equal share of the module's
// exposure, distributes module vigor among the nodes and grows a child module
// from each terminal that is vigorous enough and above the module center.
func (m *Module) spawnChildren() {
	p := m.plant
	s := &p.Settings
	g := m.Graph

	terminals := g.Terminals()
	if len(terminals) == 0 {
		return
	}

	share := m.Exposure / float64(len(terminals))
	tree := nodeTree{m: m, exposure: make([]float64, len(g.Nodes))}
	for _, n := range terminals {
		tree.exposure[n] = share
	}

	alloc, err := vigor.Distribute(tree, p.apicalControl(), math.Inf(1))
	if err != nil {
		// Unreachable for graphs built from validated prototypes.
		slog.Error("node vigor distribution failed", "plant", p.ID, "module", m.ID, "error", err)
		return
	}
	for _, n := range alloc.Order {
		g.Nodes[n].Exposure = alloc.Exposure[n]
		g.Nodes[n].Vigor = alloc.Vigor[n]
	}

	childVigor := m.Vigor * p.determinacy() / s.VMax
	for _, n := range terminals {
		node := g.Nodes[n]
		if node.Vigor <= s.VMin || node.Pos.Z <= m.Sphere.Center.Z {
			continue
		}
		if !p.spawnAllowed() {
			return
		}
		if err := g.Link(n); err != nil {
			continue
		}

		dir := p.OptimizeOrientation(m, node.Dir)
		child := newModule(p, p.nextModuleID(), p.Prototypes.Select(), node.Pos, dir, childVigor)
		child.Parent = m
		child.ParentNode = n
		m.connect(n, child)
		m.Children = append(m.Children, child)
		p.attach(child)

		slog.Debug("module_spawned",
			"plant", p.ID,
			"module", child.ID,
			"parent", m.ID,
			"node", n,
			"vigor", childVigor,
		)
	}
}

// shed detaches m from its parent and unregisters it with its subtree.
// Shedding an already shed module does nothing.
func (m *Module) shed() {
	if m.Shed {
		return
	}
	p := m.plant

	if parent := m.Parent; parent != nil {
		parent.disconnect(m.ParentNode)
		parent.Graph.ResetToTerminal(m.ParentNode)
		parent.removeChild(m)
	}

	m.markShed()

	slog.Debug("module_shed",
		"plant", p.ID,
		"module", m.ID,
		"age", m.Age,
		"vigor", m.Vigor,
	)
}

// markShed flags the subtree as shed and unregisters each module once.
func (m *Module) markShed() {
	if m.Shed {
		return
	}
	m.Shed = true
	m.plant.detach(m)
	for _, c := range m.Children {
		c.markShed()
	}
}

func (m *Module) removeChild(c *Module) {
	for i, x := range m.Children {
		if x == c {
			m.Children = append(m.Children[:i], m.Children[i+1:]...)
			return
		}
	}
}
