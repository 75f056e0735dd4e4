package game

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/grove/config"
	"github.com/pthm-cable/grove/graph"
	"github.com/pthm-cable/grove/telemetry"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}
	cfg.Simulation.Plants = 2
	cfg.Simulation.Ticks = 40
	cfg.Telemetry.StatsWindow = 10
	return cfg
}

func newHeadless(t *testing.T, cfg *config.Config, opts Options) *Game {
	t.Helper()
	opts.Headless = true
	opts.Seed = 7
	g, err := New(cfg, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func runToEnd(t *testing.T, g *Game) {
	t.Helper()
	for i := 0; i < 100000 && !g.Done(); i++ {
		if err := g.UpdateHeadless(); err != nil {
			t.Fatalf("tick %d: %v", g.Tick(), err)
		}
	}
	if !g.Done() {
		t.Fatal("run never finished")
	}
}

func TestNewRejectsInvalidPrototype(t *testing.T) {
	tests := []struct {
		name  string
		edges [][]int
	}{
		{"self loop", [][]int{{0, 0}}},
		{"malformed edge", [][]int{{0, 1, 2}}},
		{"no edges", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Prototypes = []config.PrototypeConfig{{Name: "bad", Edges: tt.edges}}
			_, err := New(cfg, Options{Headless: true})
			if !errors.Is(err, graph.ErrInvalidTopology) {
				t.Errorf("New error = %v, want ErrInvalidTopology", err)
			}
		})
	}
}

func TestPlantPlacement(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.Plants = 3
	cfg.Simulation.Spacing = 25
	g := newHeadless(t, cfg, Options{})

	if len(g.Plants()) != 3 {
		t.Fatalf("plants = %d, want 3", len(g.Plants()))
	}
	for i, p := range g.Plants() {
		d := float64(i) * 25
		if got := p.Root.Root(); got != (r3.Vec{X: d, Y: d, Z: d}) {
			t.Errorf("plant %d at %v, want (%v, %v, %v)", i, got, d, d, d)
		}
	}
	if got := g.Registry().Len(); got != 3 {
		t.Errorf("registry entities = %d, want one root per plant", got)
	}
}

func TestStepRespectsBudgetAndCap(t *testing.T) {
	cfg := testConfig(t)
	cfg.Population.MaxModules = 20
	g := newHeadless(t, cfg, Options{StepsPerUpdate: 3})

	for !g.Done() {
		if err := g.UpdateHeadless(); err != nil {
			t.Fatal(err)
		}
		if live := g.Registry().Live(); live > 20 {
			t.Fatalf("tick %d: %d live modules exceed cap", g.Tick(), live)
		}
		for _, p := range g.Plants() {
			for _, m := range p.Modules() {
				if math.IsNaN(m.Vigor) || math.IsInf(m.Vigor, 0) {
					t.Fatalf("tick %d: module %d.%d vigor %v", g.Tick(), p.ID, m.ID, m.Vigor)
				}
				if lit, ok := g.Registry().Light(m); ok && (lit.Exposure < 0 || lit.Exposure > 1) {
					t.Fatalf("tick %d: module %d.%d exposure %v", g.Tick(), p.ID, m.ID, lit.Exposure)
				}
			}
		}
	}
	if g.Tick() != 40 {
		t.Errorf("finished at tick %d, want 40", g.Tick())
	}

	// A finished game ignores further steps.
	if err := g.Step(); err != nil || g.Tick() != 40 {
		t.Errorf("Step after finish advanced to %d (err %v)", g.Tick(), err)
	}
}

func TestStatsCallbackWindows(t *testing.T) {
	var windows []telemetry.WindowStats
	cfg := testConfig(t)
	g := newHeadless(t, cfg, Options{
		StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})
	runToEnd(t, g)

	if len(windows) != 4 {
		t.Fatalf("windows = %d, want 4", len(windows))
	}
	for i, w := range windows {
		if want := int32(10 * (i + 1)); w.WindowEndTick != want {
			t.Errorf("window %d ends at %d, want %d", i, w.WindowEndTick, want)
		}
		if w.PlantsYoung+w.PlantsMature+w.PlantsDead != 2 {
			t.Errorf("window %d plant states don't sum to 2: %+v", i, w)
		}
	}
}

func TestAllDeadEndsRun(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.Ticks = 400
	cfg.Plant.GrowthPotential = 1
	cfg.Plant.PMax = 40
	g := newHeadless(t, cfg, Options{})
	runToEnd(t, g)

	if g.Tick() >= 400 {
		t.Fatalf("senescent plants still alive at the tick budget")
	}
	for _, p := range g.Plants() {
		if p.Alive() {
			t.Errorf("plant %d still alive", p.ID)
		}
	}
	if len(g.living) != 0 {
		t.Errorf("%d plants left in the tick list", len(g.living))
	}
	if g.Registry().Live() != 0 || g.Registry().Len() != 0 {
		t.Errorf("registry still holds %d live, %d entities", g.Registry().Live(), g.Registry().Len())
	}
}

func TestUnloadWritesOutput(t *testing.T) {
	dir := t.TempDir()
	stl := filepath.Join(dir, "grove.stl")

	cfg := testConfig(t)
	cfg.Simulation.Plants = 1
	cfg.Simulation.Ticks = 20
	cfg.Export.MeshCells = 48
	g := newHeadless(t, cfg, Options{OutputDir: dir, ExportSTL: stl})
	runToEnd(t, g)
	g.Unload()

	for _, name := range []string{"config.yaml", "telemetry.csv", "perf.csv", "plants.csv", "segments.csv", "grove.stl"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestRestart(t *testing.T) {
	cfg := testConfig(t)
	g := newHeadless(t, cfg, Options{})
	for i := 0; i < 15; i++ {
		if err := g.Step(); err != nil {
			t.Fatal(err)
		}
	}

	s := cfg.Plant
	s.ApicalControl = 0.2
	if err := g.Restart(s); err != nil {
		t.Fatal(err)
	}
	if g.Tick() != 0 || g.Done() {
		t.Errorf("after restart tick %d done %v", g.Tick(), g.Done())
	}
	for _, p := range g.Plants() {
		if p.Settings.ApicalControl != 0.2 {
			t.Errorf("plant %d apical control %v, want 0.2", p.ID, p.Settings.ApicalControl)
		}
		if len(p.Modules()) != 1 {
			t.Errorf("plant %d has %d modules, want the seed module", p.ID, len(p.Modules()))
		}
	}
	if g.Registry().Len() != 2 {
		t.Errorf("registry entities = %d, want 2", g.Registry().Len())
	}
}

func TestRaySphere(t *testing.T) {
	dir := r3.Vec{X: 1}
	tests := []struct {
		name   string
		origin r3.Vec
		center r3.Vec
		radius float64
		hit    bool
		t      float64
	}{
		{"ahead", r3.Vec{}, r3.Vec{X: 10}, 2, true, 8},
		{"behind", r3.Vec{}, r3.Vec{X: -10}, 2, false, 0},
		{"miss", r3.Vec{}, r3.Vec{X: 10, Y: 3}, 2, false, 0},
		{"inside", r3.Vec{X: 10}, r3.Vec{X: 10}, 2, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := raySphere(tt.origin, dir, tt.center, tt.radius)
			if ok != tt.hit {
				t.Fatalf("hit = %v, want %v", ok, tt.hit)
			}
			if ok && math.Abs(got-tt.t) > 1e-9 {
				t.Errorf("t = %v, want %v", got, tt.t)
			}
		})
	}
}

func TestPickModuleNearest(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.Plants = 3
	cfg.Simulation.Spacing = 20
	g := newHeadless(t, cfg, Options{})

	var mods = g.living[0].Modules()
	for _, p := range g.living[1:] {
		mods = append(mods, p.Modules()...)
	}

	// Looking down the diagonal from beyond the last plant hits it first.
	far := r3.Vec{X: 200, Y: 200, Z: 200}
	target := g.Plants()[2].Root.Sphere.Center
	dir := r3.Unit(r3.Sub(target, far))
	got := pickModule(far, dir, mods)
	if got == nil || got.Plant().ID != 2 {
		t.Fatalf("picked %v, want plant 2's module", got)
	}

	if pickModule(far, r3.Scale(-1, dir), mods) != nil {
		t.Error("ray pointing away picked a module")
	}
}
