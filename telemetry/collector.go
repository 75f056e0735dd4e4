// Package telemetry provides growth statistics, performance tracking and
// CSV output for simulation runs.
package telemetry

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowTicks int32
	dt          float64

	windowStartTick int32

	// Event counters for current window
	spawned int
	shed    int
	deaths  int
	matured int
}

// Snapshot is the population state sampled at a window boundary.
type Snapshot struct {
	Young, Mature, Dead int
	Modules             int
	Segments            int
	CapLatched          bool
	Vigor               []float64 // Per live module
	Exposure            []float64 // Per live module
	MaxHeight           float64
}

// NewCollector creates a stats collector flushing every windowTicks ticks.
// dt is the plant time advanced per tick.
func NewCollector(windowTicks int32, dt float64) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowTicks: windowTicks,
		dt:          dt,
	}
}

// RecordSpawn records n module spawns.
func (c *Collector) RecordSpawn(n int) { c.spawned += n }

// RecordShed records n shed modules.
func (c *Collector) RecordShed(n int) { c.shed += n }

// RecordDeath records a plant death.
func (c *Collector) RecordDeath() { c.deaths++ }

// RecordMature records a plant reaching maturity.
func (c *Collector) RecordMature() { c.matured++ }

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, snap Snapshot) WindowStats {
	vigor := ComputeDistribution(snap.Vigor)
	exposure := ComputeDistribution(snap.Exposure)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTime:         float64(currentTick) * c.dt,

		PlantsYoung:  snap.Young,
		PlantsMature: snap.Mature,
		PlantsDead:   snap.Dead,
		Modules:      snap.Modules,
		Segments:     snap.Segments,

		Spawned:    c.spawned,
		Shed:       c.shed,
		Deaths:     c.deaths,
		Matured:    c.matured,
		CapLatched: snap.CapLatched,

		VigorMean: vigor.Mean,
		VigorStd:  vigor.Std,
		VigorP10:  vigor.P10,
		VigorP50:  vigor.P50,
		VigorP90:  vigor.P90,

		ExposureMean: exposure.Mean,
		ExposureStd:  exposure.Std,
		ExposureP10:  exposure.P10,
		ExposureP50:  exposure.P50,
		ExposureP90:  exposure.P90,

		MaxHeight: snap.MaxHeight,
	}

	c.windowStartTick = currentTick
	c.spawned = 0
	c.shed = 0
	c.deaths = 0
	c.matured = 0

	return stats
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int32 {
	return c.windowTicks
}
