package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/grove/components"
	"github.com/pthm-cable/grove/light"
)

func newEntities(n int) []ecs.Entity {
	world := ecs.NewWorld()
	mapper := ecs.NewMap1[components.Bounds](world)
	out := make([]ecs.Entity, n)
	for i := range out {
		out[i] = mapper.NewEntity(&components.Bounds{})
	}
	return out
}

func TestSpatialGridQuery(t *testing.T) {
	es := newEntities(5)
	g := NewSpatialGrid(10)

	spheres := []light.Sphere{
		{Center: r3.Vec{}, Radius: 2},                   // query origin
		{Center: r3.Vec{X: 3}, Radius: 2},               // overlaps
		{Center: r3.Vec{X: 4}, Radius: 2},               // touching
		{Center: r3.Vec{X: -35, Y: -35}, Radius: 1},     // far away
		{Center: r3.Vec{X: 25, Y: 0, Z: 0}, Radius: 24}, // large, two cells over
	}
	for i, s := range spheres {
		g.Insert(es[i], s)
	}
	if g.Len() != len(spheres) {
		t.Fatalf("Len = %d, want %d", g.Len(), len(spheres))
	}

	got := g.QueryInto(nil, spheres[0], es[0])
	found := make(map[ecs.Entity]bool)
	for _, n := range got {
		found[n.E] = true
	}

	tests := []struct {
		name string
		e    ecs.Entity
		want bool
	}{
		{"excluded self", es[0], false},
		{"overlapping", es[1], true},
		{"touching", es[2], false},
		{"far", es[3], false},
		{"large radius in distant cell", es[4], true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if found[tt.e] != tt.want {
				t.Errorf("found = %v, want %v", found[tt.e], tt.want)
			}
		})
	}

	for _, n := range got {
		if n.E == es[1] && n.DistSq != 9 {
			t.Errorf("DistSq = %v, want 9", n.DistSq)
		}
	}
}

func TestSpatialGridNegativeCoordinates(t *testing.T) {
	es := newEntities(2)
	g := NewSpatialGrid(10)
	g.Insert(es[0], light.Sphere{Center: r3.Vec{X: -0.5, Y: -0.5, Z: -0.5}, Radius: 1})
	g.Insert(es[1], light.Sphere{Center: r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, Radius: 1})

	got := g.QueryInto(nil, light.Sphere{Center: r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, Radius: 1}, es[1])
	if len(got) != 1 || got[0].E != es[0] {
		t.Errorf("query across the origin = %v, want the neighbor in the negative cell", got)
	}
}

func TestSpatialGridClear(t *testing.T) {
	es := newEntities(1)
	g := NewSpatialGrid(0)
	g.Insert(es[0], light.Sphere{Radius: 5})
	g.Clear()

	if g.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", g.Len())
	}
	if got := g.QueryInto(nil, light.Sphere{Radius: 5}, ecs.Entity{}); len(got) != 0 {
		t.Errorf("query after Clear returned %d neighbors", len(got))
	}
}
