// Package systems provides the ECS-backed module registry and its spatial
// index.
package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/grove/light"
)

// Neighbor is a registered sphere that overlaps a query sphere.
type Neighbor struct {
	E      ecs.Entity
	Sphere light.Sphere
	DistSq float64 // Squared center distance from the query sphere
}

type cellKey struct{ X, Y, Z int }

type gridEntry struct {
	e ecs.Entity
	s light.Sphere
}

// SpatialGrid buckets spheres by the cell containing their center. The grid
// is unbounded, so plants may be placed anywhere.
type SpatialGrid struct {
	cellSize  float64
	cells     map[cellKey][]gridEntry
	count     int
	maxRadius float64 // Largest radius inserted since the last Clear
}

// NewSpatialGrid creates an empty grid. A non-positive cell size falls back to 40.
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 40
	}
	return &SpatialGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]gridEntry),
	}
}

// Clear removes all spheres from the grid, keeping cell storage.
func (g *SpatialGrid) Clear() {
	for k, v := range g.cells {
		g.cells[k] = v[:0]
	}
	g.count = 0
	g.maxRadius = 0
}

// Len returns the number of spheres in the grid.
func (g *SpatialGrid) Len() int { return g.count }

// Insert adds an entity's sphere to the grid.
func (g *SpatialGrid) Insert(e ecs.Entity, s light.Sphere) {
	k := g.key(s.Center.X, s.Center.Y, s.Center.Z)
	g.cells[k] = append(g.cells[k], gridEntry{e: e, s: s})
	g.count++
	if s.Radius > g.maxRadius {
		g.maxRadius = s.Radius
	}
}

// QueryInto appends every sphere that strictly intersects s, other than
// exclude, to dst and returns the extended slice.
func (g *SpatialGrid) QueryInto(dst []Neighbor, s light.Sphere, exclude ecs.Entity) []Neighbor {
	if g.count == 0 {
		return dst
	}

	// Any intersecting center lies within s.Radius + maxRadius
	reach := s.Radius + g.maxRadius
	lo := g.key(s.Center.X-reach, s.Center.Y-reach, s.Center.Z-reach)
	hi := g.key(s.Center.X+reach, s.Center.Y+reach, s.Center.Z+reach)

	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for z := lo.Z; z <= hi.Z; z++ {
				for _, entry := range g.cells[cellKey{x, y, z}] {
					if entry.e == exclude || !s.Intersects(entry.s) {
						continue
					}
					dx := entry.s.Center.X - s.Center.X
					dy := entry.s.Center.Y - s.Center.Y
					dz := entry.s.Center.Z - s.Center.Z
					dst = append(dst, Neighbor{E: entry.e, Sphere: entry.s, DistSq: dx*dx + dy*dy + dz*dz})
				}
			}
		}
	}
	return dst
}

func (g *SpatialGrid) key(x, y, z float64) cellKey {
	return cellKey{
		X: int(math.Floor(x / g.cellSize)),
		Y: int(math.Floor(y / g.cellSize)),
		Z: int(math.Floor(z / g.cellSize)),
	}
}
