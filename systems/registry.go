package systems

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/grove/components"
	"github.com/pthm-cable/grove/light"
	"github.com/pthm-cable/grove/plant"
)

// Registry tracks live modules as ECS entities and answers neighbor
// queries for light competition. Register and Unregister only queue
// changes; Flush applies them once no query is running.
type Registry struct {
	world  *ecs.World
	mapper *ecs.Map3[components.Bounds, components.Light, components.ModuleRef]
	filter *ecs.Filter3[components.Bounds, components.Light, components.ModuleRef]
	grid   *SpatialGrid

	boundsMap *ecs.Map1[components.Bounds]
	lightMap  *ecs.Map1[components.Light]
	refMap    *ecs.Map1[components.ModuleRef]

	live          map[*plant.Module]struct{}
	entities      map[*plant.Module]ecs.Entity
	pendingAdd    []*plant.Module
	pendingRemove []*plant.Module

	maxModules int
	latched    bool

	neighbors []Neighbor
	spheres   []light.Sphere
}

// NewRegistry creates a registry capped at maxModules live modules.
func NewRegistry(maxModules int, cellSize float64) *Registry {
	world := ecs.NewWorld()
	if maxModules <= 0 {
		maxModules = 100
	}
	return &Registry{
		world:      world,
		mapper:     ecs.NewMap3[components.Bounds, components.Light, components.ModuleRef](world),
		filter:     ecs.NewFilter3[components.Bounds, components.Light, components.ModuleRef](world),
		grid:       NewSpatialGrid(cellSize),
		boundsMap:  ecs.NewMap1[components.Bounds](world),
		lightMap:   ecs.NewMap1[components.Light](world),
		refMap:     ecs.NewMap1[components.ModuleRef](world),
		live:       make(map[*plant.Module]struct{}),
		entities:   make(map[*plant.Module]ecs.Entity),
		maxModules: maxModules,
	}
}

// Register queues m for addition. Registering a live module does nothing.
func (r *Registry) Register(m *plant.Module) {
	if _, ok := r.live[m]; ok {
		return
	}
	r.live[m] = struct{}{}
	r.pendingAdd = append(r.pendingAdd, m)
}

// Unregister queues m for removal. Unregistering a module that is not
// live does nothing.
func (r *Registry) Unregister(m *plant.Module) {
	if _, ok := r.live[m]; !ok {
		return
	}
	delete(r.live, m)
	r.pendingRemove = append(r.pendingRemove, m)
}

// SpawnAllowed reports whether the population is below the cap. Once the
// cap is reached it stays closed for the rest of the run.
func (r *Registry) SpawnAllowed() bool {
	if r.latched {
		return false
	}
	if len(r.live) >= r.maxModules {
		r.latched = true
		slog.Info("population_cap_reached", "modules", len(r.live), "max_modules", r.maxModules)
		return false
	}
	return true
}

// Latched reports whether the population cap has closed spawning.
func (r *Registry) Latched() bool { return r.latched }

// Live returns the number of registered modules, including queued additions.
func (r *Registry) Live() int { return len(r.live) }

// Len returns the number of module entities in the world.
func (r *Registry) Len() int { return len(r.entities) }

// Pending reports whether changes are waiting for Flush.
func (r *Registry) Pending() bool {
	return len(r.pendingAdd) > 0 || len(r.pendingRemove) > 0
}

// Flush applies queued removals and additions to the world.
func (r *Registry) Flush() {
	for _, m := range r.pendingRemove {
		if _, ok := r.live[m]; ok {
			continue // Registered again before the flush
		}
		if e, ok := r.entities[m]; ok {
			r.world.RemoveEntity(e)
			delete(r.entities, m)
		}
	}
	r.pendingRemove = r.pendingRemove[:0]

	for _, m := range r.pendingAdd {
		if _, ok := r.live[m]; !ok {
			continue
		}
		if _, ok := r.entities[m]; ok {
			continue
		}
		bounds := components.Bounds{Sphere: m.Sphere, Radius: m.Sphere.Radius}
		lit := components.Light{Exposure: 1}
		ref := components.ModuleRef{Module: m, Plant: m.Plant().ID, ID: m.ID}
		r.entities[m] = r.mapper.NewEntity(&bounds, &lit, &ref)
	}
	r.pendingAdd = r.pendingAdd[:0]
}

// Sync copies every module's current sphere into its entity and rebuilds
// the spatial grid.
func (r *Registry) Sync() {
	r.grid.Clear()
	query := r.filter.Query()
	for query.Next() {
		bounds, _, ref := query.Get()
		bounds.Sphere = ref.Module.Sphere
		bounds.Radius = bounds.Sphere.Radius
		r.grid.Insert(query.Entity(), bounds.Sphere)
	}
}

// UpdateExposure flushes queued changes, syncs spheres and sets every live
// module's exposure from the spheres of its neighbors.
func (r *Registry) UpdateExposure() {
	r.Flush()
	r.Sync()

	query := r.filter.Query()
	for query.Next() {
		bounds, lit, ref := query.Get()

		r.neighbors = r.grid.QueryInto(r.neighbors[:0], bounds.Sphere, query.Entity())
		r.spheres = r.spheres[:0]
		for _, n := range r.neighbors {
			r.spheres = append(r.spheres, n.Sphere)
		}

		lit.Score = light.CollisionScore(bounds.Sphere, r.spheres)
		lit.Exposure = light.Exposure(lit.Score)
		lit.Neighbors = len(r.spheres)
		ref.Module.Exposure = lit.Exposure
	}
}

// Neighbors appends the registered modules whose spheres intersect m's
// synced sphere. It reflects the grid as of the last Sync.
func (r *Registry) Neighbors(m *plant.Module, dst []*plant.Module) []*plant.Module {
	e, ok := r.entities[m]
	if !ok {
		return dst
	}
	bounds := r.boundsMap.Get(e)
	r.neighbors = r.grid.QueryInto(r.neighbors[:0], bounds.Sphere, e)
	for _, n := range r.neighbors {
		dst = append(dst, r.refMap.Get(n.E).Module)
	}
	return dst
}

// Light returns the last light result for m.
func (r *Registry) Light(m *plant.Module) (components.Light, bool) {
	e, ok := r.entities[m]
	if !ok {
		return components.Light{}, false
	}
	return *r.lightMap.Get(e), true
}

// Components returns the registry components of m's entity.
func (r *Registry) Components(m *plant.Module) (components.Bounds, components.Light, components.ModuleRef, bool) {
	e, ok := r.entities[m]
	if !ok {
		return components.Bounds{}, components.Light{}, components.ModuleRef{}, false
	}
	return *r.boundsMap.Get(e), *r.lightMap.Get(e), *r.refMap.Get(e), true
}
