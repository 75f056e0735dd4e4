// Package game runs the multi-plant simulation and its optional raylib
// viewer.
package game

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/grove/camera"
	"github.com/pthm-cable/grove/config"
	"github.com/pthm-cable/grove/graph"
	"github.com/pthm-cable/grove/plant"
	"github.com/pthm-cable/grove/systems"
	"github.com/pthm-cable/grove/telemetry"
	"github.com/pthm-cable/grove/ui"
)

// Options configures a run beyond what the config file holds.
type Options struct {
	Seed           int64
	LogStats       bool
	OutputDir      string // CSV output directory ("" = disabled)
	Headless       bool
	StepsPerUpdate int
	MaxTicks       int    // 0 = simulation.ticks from config
	ExportSTL      string // Mesh written by Unload ("" = none)

	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg    *config.Config
	opts   Options
	protos *graph.Set

	registry *systems.Registry
	plants   []*plant.Plant // Every plant, in id order
	living   []*plant.Plant // Plants still ticked

	tick           int32
	maxTicks       int32
	dt             float64
	paused         bool
	done           bool
	stepsPerUpdate int

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)
	logStats         bool

	// Viewer, nil when headless
	view *viewer
}

// viewer holds graphical state.
type viewer struct {
	camera    *camera.Camera
	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	controls  *ui.ControlsPanel
	params    *ui.ParamsPanel
	inspector *ui.Inspector
	overlays  *ui.OverlayRegistry

	selected  *plant.Module
	neighbors []*plant.Module
	showPerf  bool
	restart   bool // Restart requested from the params panel

	screenWidth, screenHeight float32
}

// New builds a game from cfg. Invalid prototypes are reported as errors
// wrapping graph.ErrInvalidTopology.
func New(cfg *config.Config, opts Options) (*Game, error) {
	protos, err := buildPrototypes(cfg.Prototypes)
	if err != nil {
		return nil, err
	}

	g := &Game{
		cfg:              cfg,
		opts:             opts,
		protos:           protos,
		dt:               cfg.Derived.TimeStep,
		stepsPerUpdate:   max(opts.StepsPerUpdate, 1),
		collector:        telemetry.NewCollector(int32(cfg.Telemetry.StatsWindow), cfg.Derived.TimeStep),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		statsCallback:    opts.StatsCallback,
		logStats:         opts.LogStats,
	}

	g.maxTicks = int32(cfg.Simulation.Ticks)
	if opts.MaxTicks > 0 {
		g.maxTicks = int32(opts.MaxTicks)
	}

	if err := g.spawnPlants(); err != nil {
		return nil, err
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	if !opts.Headless {
		g.view = newViewer(cfg, g.plants)
	}

	slog.Info("simulation_started",
		"plants", len(g.plants),
		"prototypes", len(protos.All()),
		"max_ticks", g.maxTicks,
		"dt", g.dt,
		"max_modules", cfg.Population.MaxModules,
		"seed", opts.Seed,
	)
	return g, nil
}

func buildPrototypes(pcs []config.PrototypeConfig) (*graph.Set, error) {
	protos := make([]*graph.Prototype, 0, len(pcs))
	for _, pc := range pcs {
		p, err := graph.FromPairs(pc.Name, pc.Edges)
		if err != nil {
			return nil, fmt.Errorf("prototype %q: %w", pc.Name, err)
		}
		protos = append(protos, p)
	}
	set, err := graph.NewSet(protos...)
	if err != nil {
		return nil, fmt.Errorf("prototypes: %w", err)
	}
	return set, nil
}

// spawnPlants places plant i at (i, i, i) * spacing with a fresh registry.
func (g *Game) spawnPlants() error {
	cfg := g.cfg
	g.registry = systems.NewRegistry(cfg.Population.MaxModules, cfg.Registry.CellSize)
	g.plants = g.plants[:0]

	for i := 0; i < cfg.Simulation.Plants; i++ {
		d := float64(i) * cfg.Simulation.Spacing
		p, err := plant.New(i, cfg.Plant, g.protos, g.registry, plant.Options{
			Origin:     r3.Vec{X: d, Y: d, Z: d},
			Seed:       g.opts.Seed,
			MaxModules: cfg.Population.MaxModulesPerPlant,
			MinRadius:  cfg.Light.MinRadius,
		})
		if err != nil {
			return err
		}
		g.plants = append(g.plants, p)
	}
	g.living = append(g.living[:0], g.plants...)
	g.registry.Flush()
	return nil
}

// Restart replaces the plant settings and regrows every plant from a seed
// module. Telemetry windows start over from tick 0.
func (g *Game) Restart(settings config.PlantConfig) error {
	settings.Clamp()
	g.cfg.Plant = settings
	g.tick = 0
	g.done = false
	g.collector = telemetry.NewCollector(int32(g.cfg.Telemetry.StatsWindow), g.dt)
	g.bookmarkDetector = telemetry.NewBookmarkDetector(10)
	if err := g.spawnPlants(); err != nil {
		return err
	}
	if g.view != nil {
		g.view.selected = nil
	}
	slog.Info("simulation_restarted", "plants", len(g.plants))
	return nil
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int32 { return g.tick }

// Done reports whether the tick budget is spent or every plant is dead.
func (g *Game) Done() bool { return g.done }

// Plants returns every plant, dead ones included.
func (g *Game) Plants() []*plant.Plant { return g.plants }

// Registry returns the live-module registry.
func (g *Game) Registry() *systems.Registry { return g.registry }

// Unload writes end-of-run output and closes files.
func (g *Game) Unload() {
	g.writeRunOutput()
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
