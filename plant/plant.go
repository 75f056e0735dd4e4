// Package plant implements the growth engine: modules that age, unfold and
// bend under tropism, and plants that distribute vigor over their module
// tree and spawn or shed modules.
package plant

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/grove/config"
	"github.com/pthm-cable/grove/graph"
	"github.com/pthm-cable/grove/vigor"
)

// State is the plant life stage.
type State uint8

const (
	Young State = iota
	Mature
	Dead
)

func (s State) String() string {
	switch s {
	case Young:
		return "young"
	case Mature:
		return "mature"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

// shedAge is the module age after which a starved module is shed.
const shedAge = 2

// Registry tracks live modules for neighbor queries.
type Registry interface {
	Register(m *Module)
	Unregister(m *Module)
	// SpawnAllowed reports whether one more module may be created.
	SpawnAllowed() bool
}

// Options configure a new plant.
type Options struct {
	Origin     r3.Vec
	Seed       int64
	MaxModules int     // Per-plant module cap, 0 = 100
	MinRadius  float64 // Bounding sphere radius floor, 0 = 0.5
}

// Stats are cumulative plant counters.
type Stats struct {
	Modules int
	Spawned int
	Shed    int
}

// Plant is a tree of modules grown from one root module.
type Plant struct {
	ID         int
	Settings   config.PlantConfig
	Prototypes *graph.Set
	Root       *Module
	Age        float64
	State      State
	MinRadius  float64

	reg        Registry
	seed       int64
	maxModules int
	nextID     int
	stats      Stats
}

// New creates a plant with a single root module at opts.Origin.
func New(id int, settings config.PlantConfig, protos *graph.Set, reg Registry, opts Options) (*Plant, error) {
	if protos == nil || len(protos.All()) == 0 {
		return nil, fmt.Errorf("plant %d: no prototypes: %w", id, graph.ErrInvalidTopology)
	}
	if reg == nil {
		return nil, errors.New("plant: nil registry")
	}

	settings.Clamp()
	p := &Plant{
		ID:         id,
		Settings:   settings,
		Prototypes: protos,
		MinRadius:  opts.MinRadius,
		reg:        reg,
		seed:       opts.Seed,
		maxModules: opts.MaxModules,
	}
	if p.maxModules <= 0 {
		p.maxModules = 100
	}
	if p.MinRadius <= 0 {
		p.MinRadius = 0.5
	}

	p.Root = newModule(p, p.nextModuleID(), protos.Select(), opts.Origin, graph.Up, 0)
	p.Root.Exposure = 1
	p.attach(p.Root)

	// The live module tree must sort before the first tick.
	if _, err := vigor.Sort(moduleTree(p.Modules())); err != nil {
		return nil, fmt.Errorf("plant %d: %w: %w", id, graph.ErrInvalidTopology, err)
	}

	return p, nil
}

func (p *Plant) nextModuleID() int {
	id := p.nextID
	p.nextID++
	return id
}

func (p *Plant) attach(m *Module) {
	p.stats.Modules++
	if m != p.Root {
		p.stats.Spawned++
	}
	p.reg.Register(m)
}

func (p *Plant) detach(m *Module) {
	p.stats.Modules--
	p.stats.Shed++
	p.reg.Unregister(m)
}

// spawnAllowed checks the per-plant and registry caps for one more module.
func (p *Plant) spawnAllowed() bool {
	return p.stats.Modules < p.maxModules && p.reg.SpawnAllowed()
}

// Stats returns the plant counters.
func (p *Plant) Stats() Stats { return p.stats }

// Alive reports whether the plant still ticks.
func (p *Plant) Alive() bool { return p.State != Dead }

func (p *Plant) apicalControl() float64 {
	if p.State == Mature {
		return p.Settings.ApicalControlMature
	}
	return p.Settings.ApicalControl
}

func (p *Plant) determinacy() float64 {
	if p.State == Mature {
		return p.Settings.DeterminacyMature
	}
	return p.Settings.Determinacy
}

// VigorCap is the most vigor the root can hold at the current age. Past
// PMax it falls linearly and reaches zero at twice PMax.
func (p *Plant) VigorCap() float64 {
	s := &p.Settings
	pMax := float64(s.PMax)
	if p.Age < pMax {
		return s.VRootMax
	}
	if pMax == 0 {
		return 0
	}
	return s.VRootMax * math.Max(0, 1-(p.Age-pMax)/pMax)
}

// Modules returns the live modules in preorder, root first.
func (p *Plant) Modules() []*Module {
	if p.Root == nil || p.Root.Shed {
		return nil
	}
	var out []*Module
	p.Root.walk(func(m *Module) { out = append(out, m) })
	return out
}

// moduleTree adapts a preorder module list to vigor.Tree. Children keep
// spawn order, so lower indices are older modules.
type moduleTree []*Module

func (t moduleTree) Len() int  { return len(t) }
func (t moduleTree) Root() int { return 0 }
func (t moduleTree) Children(i int, dst []int) []int {
	for _, c := range t[i].Children {
		if c.Shed {
			continue
		}
		for j := i + 1; j < len(t); j++ {
			if t[j] == c {
				dst = append(dst, j)
				break
			}
		}
	}
	return dst
}
func (t moduleTree) Exposure(i int) float64 { return t[i].Exposure }

// CalculateVigor distributes vigor over the module tree from the modules'
// light exposure, then sheds starved modules.
func (p *Plant) CalculateVigor() error {
	if p.State == Dead {
		return nil
	}

	mods := p.Modules()
	alloc, err := vigor.Distribute(moduleTree(mods), p.apicalControl(), p.VigorCap())
	if err != nil {
		return fmt.Errorf("plant %d: %w: %w", p.ID, graph.ErrInvalidTopology, err)
	}
	for i, m := range mods {
		m.Exposure = alloc.Exposure[i]
		m.Vigor = alloc.Vigor[i]
	}

	p.shedModules(mods)
	return nil
}

func (p *Plant) shedModules(mods []*Module) {
	vMin := p.Settings.VMin
	for _, m := range mods {
		if m.Shed || m.Age <= shedAge || m.Vigor >= vMin {
			continue
		}
		if m == p.Root {
			p.die()
			return
		}
		m.shed()
	}
}

func (p *Plant) die() {
	p.Root.markShed()
	p.State = Dead
	slog.Info("plant_died",
		"plant", p.ID,
		"age", p.Age,
		"root_age", p.Root.Age,
		"root_vigor", p.Root.Vigor,
		"spawned", p.stats.Spawned,
	)
}

// Grow advances every module by dt and ages the plant.
func (p *Plant) Grow(dt float64) {
	if p.State == Dead {
		return
	}
	dt = config.ClampTimeStep(dt)

	canSpawn := p.stats.Modules < p.maxModules
	p.Root.grow(dt, canSpawn)
	p.Age += dt

	if p.State == Young && p.Age >= float64(p.Settings.FloweringAge) {
		p.State = Mature
		slog.Info("plant_mature", "plant", p.ID, "age", p.Age, "modules", p.stats.Modules)
	}
}

// Tick runs vigor distribution, shedding and growth. Module exposures must
// already be current.
func (p *Plant) Tick(dt float64) error {
	if err := p.CalculateVigor(); err != nil {
		return err
	}
	p.Grow(dt)
	return nil
}

// OptimizeOrientation is the hook for choosing a new module's direction by
// trading collision avoidance against tropism. It returns dir unchanged.
func (p *Plant) OptimizeOrientation(_ *Module, dir r3.Vec) r3.Vec {
	return dir
}
