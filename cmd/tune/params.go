package main

import (
	"github.com/pthm-cable/grove/config"
)

// ParamSpec defines a single tunable plant parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable plant parameters.
// The structural parameters (p_max, flowering_age, v_min, v_max) stay at
// their configured values.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Vigor
			{Name: "growth_potential", Path: "plant.growth_potential", Min: 0.02, Max: 0.5, Default: 0.12},
			{Name: "apical_control", Path: "plant.apical_control", Min: 0.3, Max: 1.0, Default: 0.87},
			{Name: "apical_control_mature", Path: "plant.apical_control_mature", Min: 0.1, Max: 0.9, Default: 0.34},
			{Name: "determinacy", Path: "plant.determinacy", Min: 0.3, Max: 1.0, Default: 0.93},
			{Name: "determinacy_mature", Path: "plant.determinacy_mature", Min: 0.1, Max: 1.0, Default: 0.55},
			// Shape
			{Name: "tropism_angle", Path: "plant.tropism_angle", Min: -1.0, Max: 1.0, Default: 0.66},
			{Name: "tropism_decay", Path: "plant.tropism_decay", Min: -1.0, Max: 1.0, Default: 0.2},
			{Name: "length_scale", Path: "plant.length_scale", Min: 0.2, Max: 3.0, Default: 1.29},
			{Name: "thickness", Path: "plant.thickness", Min: 0.5, Max: 3.0, Default: 1.41},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.Plant.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	p := &cfg.Plant

	// Order must match Specs order
	fields := []*float64{
		&p.GrowthPotential,
		&p.ApicalControl,
		&p.ApicalControlMature,
		&p.Determinacy,
		&p.DeterminacyMature,
		&p.TropismAngle,
		&p.TropismDecay,
		&p.LengthScale,
		&p.Thickness,
	}
	for i, f := range fields {
		*f = clamped[i]
	}
	p.Clamp()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	p := cfg.Plant
	return []float64{
		p.GrowthPotential,
		p.ApicalControl,
		p.ApicalControlMature,
		p.Determinacy,
		p.DeterminacyMature,
		p.TropismAngle,
		p.TropismDecay,
		p.LengthScale,
		p.Thickness,
	}
}
