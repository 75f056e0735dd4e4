package plant

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/grove/config"
	"github.com/pthm-cable/grove/graph"
)

// forkModule builds a root module for 0->1->{2,3} with every segment
// unfolded and every node at the given age.
func forkModule(t *testing.T, s config.PlantConfig, age float64) *Module {
	t.Helper()
	set := prototypes(t,
		graph.Edge{Source: 0, Dest: 1},
		graph.Edge{Source: 1, Dest: 2},
		graph.Edge{Source: 1, Dest: 3},
	)
	p, err := New(0, s, set, newFakeRegistry(10), Options{Seed: 5})
	if err != nil {
		t.Fatal(err)
	}
	m := p.Root
	for _, src := range m.Graph.Unfold(2) {
		m.Graph.PlaceChildren(src, s.Straightness, m.rng)
	}
	m.syncBranches()
	for i := range m.Graph.Nodes {
		m.Graph.Nodes[i].Age = age
	}
	return m
}

func TestUpdateGeometry(t *testing.T) {
	tests := []struct {
		name     string
		age      float64
		strength float64
		wantLen  func(s config.PlantConfig) float64
	}{
		{"young", 1, 1, func(s config.PlantConfig) float64 { return s.LengthScale }},
		{"just below tropism", 1.99, 1, func(s config.PlantConfig) float64 { return s.LengthScale * 1.99 }},
		{"capped length", 100, 0, func(s config.PlantConfig) float64 { return s.MaxLength }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := config.DefaultPlant()
			s.TropismStrength = tt.strength
			m := forkModule(t, s, tt.age)
			m.updateGeometry()
			g := m.Graph

			want := tt.wantLen(s)
			for seg := range g.Segments {
				if got := g.Length(seg); math.Abs(got-want) > 1e-9 {
					t.Errorf("segment %d length = %v, want %v", seg, got, want)
				}
			}

			// Leaves fall back to the default thickness, the shared parent
			// carries the pipe-model sum
			for _, seg := range []int{1, 2} {
				if got := g.Segments[seg].Diameter; got != s.Thickness {
					t.Errorf("leaf segment %d diameter = %v, want %v", seg, got, s.Thickness)
				}
			}
			if got, want := g.Segments[0].Diameter, math.Sqrt2*s.Thickness; math.Abs(got-want) > 1e-12 {
				t.Errorf("trunk diameter = %v, want %v", got, want)
			}

			// Without tropism the trunk stays vertical
			if tt.age < minTropismAge {
				if trunk := r3.Sub(g.Nodes[1].Pos, g.Nodes[0].Pos); math.Abs(trunk.Z-want) > 1e-9 {
					t.Errorf("trunk = %v, want straight up %v", trunk, want)
				}
			}
		})
	}
}

func TestTropismOffset(t *testing.T) {
	tests := []struct {
		name  string
		age   float64
		z     float64
		angle float64
		decay float64
		want  r3.Vec
	}{
		{"below minimum age", 1.9, 5, 0.66, 0.2, r3.Vec{}},
		{"default lift", 3, 5, 0.66, 0.2, r3.Vec{Z: 0.2 * 0.66 / 3.2}},
		{"droop", 3, 5, -2, 0.2, r3.Vec{Z: -0.2 * 2 / 3.2}},
		{"droop clamped above ground", 3, 0.05, -2, 0.2, r3.Vec{Z: 0.05}},
		{"zero denominator", 3, 5, 0.66, -3, r3.Vec{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := config.DefaultPlant()
			m := forkModule(t, s, 0)
			m.plant.Settings.TropismAngle = tt.angle
			m.plant.Settings.TropismStrength = 1
			m.plant.Settings.TropismDecay = tt.decay

			got := m.tropismOffset(tt.age, r3.Vec{X: 1, Z: tt.z})
			if r3.Norm(r3.Sub(got, tt.want)) > 1e-12 {
				t.Errorf("tropismOffset = %v, want %v", got, tt.want)
			}
		})
	}
}
