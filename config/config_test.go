package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Plant.PMax != 950 {
		t.Errorf("PMax = %d, want 950", cfg.Plant.PMax)
	}
	if math.Abs(cfg.Plant.ApicalControl-0.87) > 1e-9 {
		t.Errorf("ApicalControl = %v, want 0.87", cfg.Plant.ApicalControl)
	}
	if cfg.Population.MaxModules != 100 {
		t.Errorf("MaxModules = %d, want 100", cfg.Population.MaxModules)
	}
	if len(cfg.Prototypes) == 0 {
		t.Fatal("expected default prototypes")
	}
	if cfg.Prototypes[0].Name != "fork" {
		t.Errorf("first prototype = %q, want fork", cfg.Prototypes[0].Name)
	}
	if cfg.Derived.TimeStep != 1.0 {
		t.Errorf("Derived.TimeStep = %v, want 1", cfg.Derived.TimeStep)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
plant:
  apical_control: 0.5
prototypes:
  - name: stick
    edges:
      - [10, 20]
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Plant.ApicalControl != 0.5 {
		t.Errorf("ApicalControl = %v, want 0.5", cfg.Plant.ApicalControl)
	}
	// Untouched fields keep their defaults
	if cfg.Plant.Determinacy != 0.93 {
		t.Errorf("Determinacy = %v, want 0.93", cfg.Plant.Determinacy)
	}
	if len(cfg.Prototypes) != 1 || cfg.Prototypes[0].Name != "stick" {
		t.Errorf("Prototypes = %+v, want only stick", cfg.Prototypes)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPlantClamp(t *testing.T) {
	tests := []struct {
		name  string
		in    PlantConfig
		check func(t *testing.T, p PlantConfig)
	}{
		{
			name: "negative scalars floor at zero",
			in:   PlantConfig{PMax: -3, VRootMax: -1, GrowthPotential: -2, FloweringAge: -1, VMin: -1, VMax: 2},
			check: func(t *testing.T, p PlantConfig) {
				if p.PMax != 0 || p.VRootMax != 0 || p.GrowthPotential != 0 || p.FloweringAge != 0 || p.VMin != 0 {
					t.Errorf("expected zero floors, got %+v", p)
				}
			},
		},
		{
			name: "unit ranges",
			in:   PlantConfig{ApicalControl: 1.5, Determinacy: -0.2, Straightness: 3, OrientationWeight: -1, VMax: 1},
			check: func(t *testing.T, p PlantConfig) {
				if p.ApicalControl != 1 || p.Determinacy != 0 || p.Straightness != 1 || p.OrientationWeight != 0 {
					t.Errorf("unit clamps failed: %+v", p)
				}
			},
		},
		{
			name: "tropism ranges",
			in:   PlantConfig{TropismAngle: -4, TropismDecay: 9, VMax: 1},
			check: func(t *testing.T, p PlantConfig) {
				if p.TropismAngle != -1 {
					t.Errorf("TropismAngle = %v, want -1", p.TropismAngle)
				}
				if p.TropismDecay != 5 {
					t.Errorf("TropismDecay = %v, want 5", p.TropismDecay)
				}
			},
		},
		{
			name: "vmax above vmin",
			in:   PlantConfig{VMin: 2, VMax: 1},
			check: func(t *testing.T, p PlantConfig) {
				if math.Abs(p.VMax-2.1) > 1e-9 {
					t.Errorf("VMax = %v, want 2.1", p.VMax)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Clamp()
			tt.check(t, p)
		})
	}
}

func TestSimulationClamp(t *testing.T) {
	cfg, err := Parse([]byte(`
simulation:
  plants: 500
  ticks: 0
  time_step: -1
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Simulation.Plants != 100 {
		t.Errorf("Plants = %d, want 100", cfg.Simulation.Plants)
	}
	if cfg.Simulation.Ticks != 1 {
		t.Errorf("Ticks = %d, want 1", cfg.Simulation.Ticks)
	}
	if cfg.Derived.TimeStep != MinTimeStep {
		t.Errorf("Derived.TimeStep = %v, want %v", cfg.Derived.TimeStep, MinTimeStep)
	}
}

func TestDefaultPlantMatchesLoad(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if got := DefaultPlant(); got != cfg.Plant {
		t.Errorf("DefaultPlant() = %+v, want %+v", got, cfg.Plant)
	}
}

func TestClampTimeStep(t *testing.T) {
	if got := ClampTimeStep(0); got != MinTimeStep {
		t.Errorf("ClampTimeStep(0) = %v, want %v", got, MinTimeStep)
	}
	if got := ClampTimeStep(0.5); got != 0.5 {
		t.Errorf("ClampTimeStep(0.5) = %v, want 0.5", got)
	}
}
