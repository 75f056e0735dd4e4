package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/grove/config"
	"github.com/pthm-cable/grove/graph"
	"github.com/pthm-cable/grove/light"
	"github.com/pthm-cable/grove/plant"
)

func pathPrototypes(t *testing.T) *graph.Set {
	t.Helper()
	proto, err := graph.FromPairs("path", [][]int{{0, 1}, {1, 2}})
	if err != nil {
		t.Fatal(err)
	}
	set, err := graph.NewSet(proto)
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func newPlant(t *testing.T, id int, reg *Registry, origin r3.Vec) *plant.Plant {
	t.Helper()
	p, err := plant.New(id, config.DefaultPlant(), pathPrototypes(t), reg, plant.Options{Origin: origin, Seed: 7})
	if err != nil {
		t.Fatalf("plant.New: %v", err)
	}
	return p
}

func TestRegisterQueuedUntilFlush(t *testing.T) {
	reg := NewRegistry(10, 40)
	p := newPlant(t, 0, reg, r3.Vec{})

	if reg.Live() != 1 || reg.Len() != 0 || !reg.Pending() {
		t.Fatalf("before flush: live=%d len=%d pending=%v", reg.Live(), reg.Len(), reg.Pending())
	}
	reg.Flush()
	if reg.Len() != 1 || reg.Pending() {
		t.Fatalf("after flush: len=%d pending=%v", reg.Len(), reg.Pending())
	}

	// Registering again is a no-op
	reg.Register(p.Root)
	reg.Flush()
	if reg.Len() != 1 {
		t.Errorf("duplicate register created %d entities", reg.Len())
	}
}

func TestUnregisterIdempotent(t *testing.T) {
	reg := NewRegistry(10, 40)
	p := newPlant(t, 0, reg, r3.Vec{})
	reg.Flush()

	reg.Unregister(p.Root)
	reg.Unregister(p.Root)
	reg.Flush()
	if reg.Live() != 0 || reg.Len() != 0 {
		t.Errorf("after unregister: live=%d len=%d", reg.Live(), reg.Len())
	}

	// Added and removed within one phase never reaches the world
	q := newPlant(t, 1, reg, r3.Vec{X: 100})
	reg.Unregister(q.Root)
	reg.Flush()
	if reg.Len() != 0 {
		t.Errorf("transient module created %d entities", reg.Len())
	}
}

func TestSpawnAllowedLatches(t *testing.T) {
	reg := NewRegistry(2, 40)
	a := newPlant(t, 0, reg, r3.Vec{})
	if !reg.SpawnAllowed() {
		t.Fatal("spawn refused below the cap")
	}
	newPlant(t, 1, reg, r3.Vec{X: 100})
	if reg.SpawnAllowed() {
		t.Fatal("spawn allowed at the cap")
	}
	if !reg.Latched() {
		t.Error("cap did not latch")
	}

	reg.Unregister(a.Root)
	reg.Flush()
	if reg.SpawnAllowed() {
		t.Error("latched cap reopened after a removal")
	}
}

func TestUpdateExposureIsolated(t *testing.T) {
	reg := NewRegistry(10, 40)
	p := newPlant(t, 0, reg, r3.Vec{})
	p.Root.Exposure = 0

	reg.UpdateExposure()

	if p.Root.Exposure != 1 {
		t.Errorf("isolated exposure = %v, want 1", p.Root.Exposure)
	}
	lit, ok := reg.Light(p.Root)
	if !ok {
		t.Fatal("no light component for registered module")
	}
	if lit.Score != 0 || lit.Neighbors != 0 {
		t.Errorf("isolated light = %+v, want zero score and no neighbors", lit)
	}
}

func TestUpdateExposureOverlap(t *testing.T) {
	reg := NewRegistry(10, 40)
	a := newPlant(t, 0, reg, r3.Vec{})
	b := newPlant(t, 1, reg, r3.Vec{X: 0.3})

	reg.UpdateExposure()

	want := light.Exposure(light.CollisionScore(a.Root.Sphere, []light.Sphere{b.Root.Sphere}))
	if math.Abs(a.Root.Exposure-want) > 1e-12 {
		t.Errorf("exposure = %v, want %v", a.Root.Exposure, want)
	}
	if a.Root.Exposure >= 1 {
		t.Errorf("overlapping module fully lit: %v", a.Root.Exposure)
	}

	got := reg.Neighbors(a.Root, nil)
	if len(got) != 1 || got[0] != b.Root {
		t.Errorf("Neighbors = %v, want the other root", got)
	}
}

func TestUpdateExposureFollowsSpheres(t *testing.T) {
	reg := NewRegistry(10, 40)
	a := newPlant(t, 0, reg, r3.Vec{})
	b := newPlant(t, 1, reg, r3.Vec{X: 0.3})
	reg.UpdateExposure()
	if a.Root.Exposure >= 1 {
		t.Fatalf("overlapping module fully lit: %v", a.Root.Exposure)
	}

	// Moving a sphere away frees both modules at the next pass
	b.Root.Sphere.Center = r3.Vec{X: 500}
	reg.UpdateExposure()
	if a.Root.Exposure != 1 || b.Root.Exposure != 1 {
		t.Errorf("separated exposures = %v, %v, want 1", a.Root.Exposure, b.Root.Exposure)
	}
}
