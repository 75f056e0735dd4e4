// Package components defines ECS components for the module registry.
package components

import (
	"github.com/pthm-cable/grove/light"
	"github.com/pthm-cable/grove/plant"
)

// Bounds is a module's bounding sphere as of the last registry sync.
type Bounds struct {
	Sphere light.Sphere `inspect:"skip"`
	Radius float64      `inspect:"label,fmt:%.2f"`
}

// Light is the result of the last light competition pass.
type Light struct {
	Score     float64 `inspect:"label,fmt:%.3f"`
	Exposure  float64 `inspect:"bar"`
	Neighbors int     `inspect:"label"`
}

// ModuleRef links an entity back to its plant module.
type ModuleRef struct {
	Module *plant.Module `inspect:"skip"`
	Plant  int           `inspect:"label"`
	ID     int           `inspect:"label"`
}
