package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Viewer overlays.
const (
	OverlayExposure  OverlayID = "exposure"
	OverlayVigor     OverlayID = "vigor"
	OverlayGround    OverlayID = "ground"
	OverlaySpheres   OverlayID = "spheres"
	OverlayNodes     OverlayID = "nodes"
	OverlaySkeleton  OverlayID = "skeleton"
	OverlayNeighbors OverlayID = "neighbors"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID
	Name        string
	Description string
	Key         int32  // 0 = no key
	KeyLabel    string // Shown in the controls panel
	Category    string
	Exclusive   []OverlayID // Disabled when this one is enabled
	Default     bool
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with the viewer overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{
		ID:          OverlayExposure,
		Name:        "Exposure Colors",
		Description: "Tint segments by module light exposure",
		Key:         rl.KeyE,
		KeyLabel:    "E",
		Category:    "visual",
		Exclusive:   []OverlayID{OverlayVigor},
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayVigor,
		Name:        "Vigor Colors",
		Description: "Tint segments by module vigor",
		Key:         rl.KeyV,
		KeyLabel:    "V",
		Category:    "visual",
		Exclusive:   []OverlayID{OverlayExposure},
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayGround,
		Name:        "Ground Grid",
		Description: "Draw the ground plane grid",
		Key:         rl.KeyG,
		KeyLabel:    "G",
		Category:    "visual",
		Default:     true,
	})

	r.Register(OverlayDescriptor{
		ID:          OverlaySpheres,
		Name:        "Bounding Spheres",
		Description: "Show module bounding spheres used for light competition",
		Key:         rl.KeyB,
		KeyLabel:    "B",
		Category:    "debug",
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayNodes,
		Name:        "Graph Nodes",
		Description: "Mark module graph nodes",
		Key:         rl.KeyN,
		KeyLabel:    "N",
		Category:    "debug",
	})
	r.Register(OverlayDescriptor{
		ID:          OverlaySkeleton,
		Name:        "Skeleton",
		Description: "Draw segments as lines instead of cylinders",
		Key:         rl.KeyK,
		KeyLabel:    "K",
		Category:    "debug",
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayNeighbors,
		Name:        "Neighbors",
		Description: "Link the selected module to the spheres shading it",
		Key:         rl.KeyL,
		KeyLabel:    "L",
		Category:    "debug",
		Default:     true,
	})
}

// Register adds an overlay. Registering an existing ID replaces it.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	if _, ok := r.byID[desc.ID]; ok {
		for i := range r.descriptors {
			if r.descriptors[i].ID == desc.ID {
				r.descriptors[i] = desc
			}
		}
	} else {
		r.descriptors = append(r.descriptors, desc)
	}
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = desc.Default
}

// Toggle switches an overlay on or off and returns the new state.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	on := !r.enabled[id]
	r.SetEnabled(id, on)
	return on
}

// SetEnabled sets an overlay's state, disabling its exclusive peers when
// enabling.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}
	r.enabled[id] = enabled
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// All returns all overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// ByCategory returns overlays of one category in registration order.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns the distinct categories in registration order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress toggles the overlay bound to key. It reports the overlay,
// its new state and whether any overlay matched.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && desc.Key == key {
			return desc.ID, r.Toggle(desc.ID), true
		}
	}
	return "", false, false
}

// Enabled returns the active overlays in registration order.
func (r *OverlayRegistry) Enabled() []OverlayID {
	var result []OverlayID
	for _, desc := range r.descriptors {
		if r.enabled[desc.ID] {
			result = append(result, desc.ID)
		}
	}
	return result
}
