package plant

import "gonum.org/v1/gonum/spatial/r3"

// Segment is one renderable branch piece in world coordinates.
type Segment struct {
	Start    r3.Vec
	End      r3.Vec
	Diameter float64
	Module   int
}

// Segments returns every available segment of the plant depth-first. The
// connecting segment into a child module precedes that module's segments.
func (p *Plant) Segments() []Segment {
	if p.Root == nil || p.Root.Shed {
		return nil
	}
	var out []Segment
	p.Root.appendSegments(p.Root.Graph.Root(), &out)
	return out
}

// Segments returns the available segments of this module alone, in growth
// order, including the connectors leaving it.
func (m *Module) Segments() []Segment {
	var out []Segment
	g := m.Graph
	for _, b := range m.branches {
		if b.conn != nil {
			out = append(out, m.connectorSegment(b.conn))
			continue
		}
		seg := g.Segments[b.seg]
		out = append(out, Segment{
			Start:    g.Nodes[seg.Source].Pos,
			End:      g.Nodes[seg.Dest].Pos,
			Diameter: seg.Diameter,
			Module:   m.ID,
		})
	}
	return out
}

func (m *Module) connectorSegment(c *connector) Segment {
	return Segment{
		Start:    m.Graph.Nodes[c.node].Pos,
		End:      c.child.Root(),
		Diameter: c.diameter,
		Module:   m.ID,
	}
}

func (m *Module) appendSegments(n int, out *[]Segment) {
	g := m.Graph
	for _, s := range g.Nodes[n].Children {
		seg := g.Segments[s]
		if !seg.Available {
			continue
		}
		*out = append(*out, Segment{
			Start:    g.Nodes[n].Pos,
			End:      g.Nodes[seg.Dest].Pos,
			Diameter: seg.Diameter,
			Module:   m.ID,
		})
		m.appendSegments(seg.Dest, out)
	}
	if c, ok := m.links[n]; ok && !c.child.Shed {
		*out = append(*out, m.connectorSegment(c))
		c.child.appendSegments(c.child.Graph.Root(), out)
	}
}
