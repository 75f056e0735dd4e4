// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// MinTimeStep is the smallest time step a tick will advance by.
const MinTimeStep = 1e-4

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig      `yaml:"screen"`
	Simulation SimulationConfig  `yaml:"simulation"`
	Plant      PlantConfig       `yaml:"plant"`
	Population PopulationConfig  `yaml:"population"`
	Light      LightConfig       `yaml:"light"`
	Registry   RegistryConfig    `yaml:"registry"`
	Telemetry  TelemetryConfig   `yaml:"telemetry"`
	Export     ExportConfig      `yaml:"export"`
	Prototypes []PrototypeConfig `yaml:"prototypes"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SimulationConfig controls the multi-plant run.
type SimulationConfig struct {
	Plants   int     `yaml:"plants"`    // Number of plants, 1..100
	Ticks    int     `yaml:"ticks"`     // Tick budget, 1..10000
	TimeStep float64 `yaml:"time_step"` // Seconds of plant time per tick
	Spacing  float64 `yaml:"spacing"`   // Plant i is placed at (i,i,i)*spacing
	Seed     int64   `yaml:"seed"`      // Jitter seed (0 = time-based, chosen by caller)
}

// PlantConfig holds the 18 growth parameters of a plant.
// Every field is range-clamped by Clamp.
type PlantConfig struct {
	PMax                int     `yaml:"p_max"`                 // Age at which senescence starts
	VRootMax            float64 `yaml:"v_root_max"`            // Maximum vigor stored at the root
	GrowthPotential     float64 `yaml:"growth_potential"`      // Gp
	ApicalControl       float64 `yaml:"apical_control"`        // Lambda while young
	ApicalControlMature float64 `yaml:"apical_control_mature"` // Lambda once mature
	Determinacy         float64 `yaml:"determinacy"`           // D while young
	DeterminacyMature   float64 `yaml:"determinacy_mature"`    // D once mature
	FloweringAge        int     `yaml:"flowering_age"`         // Age at which the plant becomes mature
	TropismAngle        float64 `yaml:"tropism_angle"`         // Alpha
	OrientationWeight   float64 `yaml:"orientation_weight"`    // W2, used by orientation optimization
	TropismDecay        float64 `yaml:"tropism_decay"`         // G1
	Thickness           float64 `yaml:"thickness"`             // Phi, default terminal diameter
	LengthScale         float64 `yaml:"length_scale"`          // Beta
	VMin                float64 `yaml:"v_min"`
	VMax                float64 `yaml:"v_max"`
	MaxLength           float64 `yaml:"max_length"` // LMax
	TropismStrength     float64 `yaml:"tropism_strength"`
	Straightness        float64 `yaml:"straightness"`
}

// PopulationConfig holds module population limits.
type PopulationConfig struct {
	MaxModules         int `yaml:"max_modules"`           // Global live-module cap across all plants
	MaxModulesPerPlant int `yaml:"max_modules_per_plant"` // Per-plant spawn cap
}

// LightConfig holds light competition parameters.
type LightConfig struct {
	MinRadius float64 `yaml:"min_radius"` // Floor for bounding sphere radius
}

// RegistryConfig holds module registry parameters.
type RegistryConfig struct {
	CellSize float64 `yaml:"cell_size"` // Spatial hash cell size
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // Ticks per stats window
	PerfWindow  int `yaml:"perf_window"`  // Ticks averaged by the perf collector
}

// ExportConfig holds mesh export parameters.
type ExportConfig struct {
	MeshCells    int `yaml:"mesh_cells"`    // Marching cubes cells along the longest axis
	SegmentSides int `yaml:"segment_sides"` // Cylinder sides in the viewer
}

// PrototypeConfig is a named module topology.
type PrototypeConfig struct {
	Name  string  `yaml:"name"`
	Edges [][]int `yaml:"edges"` // Each edge is [source, dest]
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	ScreenW32 float32
	ScreenH32 float32
	TimeStep  float64 // Time step after the positive floor
}

var global *Config

// Init loads configuration and stores it globally.
// It must be called before Cfg.
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is Init that panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(err)
	}
}

// Cfg returns the global configuration.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg called before Init")
	}
	return global
}

// Set replaces the global configuration. Used by tests and tools.
func Set(cfg *Config) {
	global = cfg
}

// Load reads configuration from path, overlaying embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := cfg.overlay(data); err != nil {
			return nil, err
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// Parse builds a configuration from YAML bytes overlaid on the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if err := cfg.overlay(data); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

func (c *Config) overlay(data []byte) error {
	// Unmarshal into the same struct so only fields present in data change.
	// Lists such as prototypes are replaced wholesale.
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// computeDerived clamps ranges and calculates derived values.
func (c *Config) computeDerived() {
	c.Plant.Clamp()
	c.Simulation.clamp()

	if c.Population.MaxModules <= 0 {
		c.Population.MaxModules = 100
	}
	if c.Population.MaxModulesPerPlant <= 0 {
		c.Population.MaxModulesPerPlant = 100
	}
	if c.Light.MinRadius <= 0 {
		c.Light.MinRadius = 0.5
	}
	if c.Registry.CellSize <= 0 {
		c.Registry.CellSize = 40
	}
	if c.Telemetry.StatsWindow <= 0 {
		c.Telemetry.StatsWindow = 50
	}
	if c.Telemetry.PerfWindow <= 0 {
		c.Telemetry.PerfWindow = 60
	}
	if c.Export.MeshCells <= 0 {
		c.Export.MeshCells = 120
	}
	if c.Export.SegmentSides < 3 {
		c.Export.SegmentSides = 8
	}

	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.TimeStep = ClampTimeStep(c.Simulation.TimeStep)
}

func (s *SimulationConfig) clamp() {
	s.Plants = clampInt(s.Plants, 1, 100)
	s.Ticks = clampInt(s.Ticks, 1, 10000)
	s.TimeStep = clampFloat(s.TimeStep, 0, 10000)
	if s.Spacing < 0 {
		s.Spacing = 0
	}
}

// Clamp forces every plant parameter into its valid range.
// VMax is kept strictly above VMin.
func (p *PlantConfig) Clamp() {
	p.PMax = max(p.PMax, 0)
	p.VRootMax = max(p.VRootMax, 0)
	p.GrowthPotential = max(p.GrowthPotential, 0)
	p.ApicalControl = clampFloat(p.ApicalControl, 0, 1)
	p.ApicalControlMature = clampFloat(p.ApicalControlMature, 0, 1)
	p.Determinacy = clampFloat(p.Determinacy, 0, 1)
	p.DeterminacyMature = clampFloat(p.DeterminacyMature, 0, 1)
	p.FloweringAge = max(p.FloweringAge, 0)
	p.TropismAngle = clampFloat(p.TropismAngle, -1, 1)
	p.OrientationWeight = clampFloat(p.OrientationWeight, 0, 1)
	p.TropismDecay = clampFloat(p.TropismDecay, -5, 5)
	p.Thickness = max(p.Thickness, 0)
	p.LengthScale = max(p.LengthScale, 0)
	p.VMin = max(p.VMin, 0)
	p.VMax = max(p.VMax, 0)
	p.MaxLength = max(p.MaxLength, 0)
	p.TropismStrength = max(p.TropismStrength, 0)
	p.Straightness = clampFloat(p.Straightness, 0, 1)

	if p.VMax <= p.VMin {
		p.VMax = p.VMin + 0.1
	}
}

// DefaultPlant returns the embedded default plant parameters.
func DefaultPlant() PlantConfig {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Errorf("parsing embedded defaults: %w", err))
	}
	cfg.Plant.Clamp()
	return cfg.Plant
}

// ClampTimeStep returns dt floored to MinTimeStep.
func ClampTimeStep(dt float64) float64 {
	if dt < MinTimeStep {
		return MinTimeStep
	}
	return dt
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
