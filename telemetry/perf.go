package telemetry

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Phase identifies one timed stage of a simulation step.
type Phase int

// Step phases in execution order.
const (
	PhaseExposure Phase = iota
	PhaseVigor
	PhaseGrowth
	PhaseRegistry
	PhaseTelemetry
	numPhases
)

var phaseNames = [numPhases]string{"exposure", "vigor", "growth", "registry", "telemetry"}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// Phases lists the step phases in execution order.
var Phases = []Phase{PhaseExposure, PhaseVigor, PhaseGrowth, PhaseRegistry, PhaseTelemetry}

// PerfSample is the timing of a single tick.
type PerfSample struct {
	Tick    time.Duration
	Phases  [numPhases]time.Duration
	Modules int // Live modules at the end of the tick
}

// PerfCollector keeps a ring of the last windowSize tick samples.
type PerfCollector struct {
	samples []PerfSample
	next    int
	count   int

	cur        PerfSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	lastFrame time.Time // Viewer only
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{samples: make([]PerfSample, windowSize)}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.cur = PerfSample{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts timing ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phaseStart = now
	p.phase = ph
	p.inPhase = true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase && p.phase >= 0 && p.phase < numPhases {
		p.cur.Phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.inPhase = false
}

// EndTick records the tick with the number of live modules it left behind.
func (p *PerfCollector) EndTick(modules int) {
	now := time.Now()
	p.closePhase(now)
	p.cur.Tick = now.Sub(p.tickStart)
	p.cur.Modules = modules

	p.samples[p.next] = p.cur
	p.next = (p.next + 1) % len(p.samples)
	p.count = min(p.count+1, len(p.samples))
}

// RecordFrame records frame timing for the viewer.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats aggregates the samples in the window.
type PerfStats struct {
	AvgTick time.Duration
	MinTick time.Duration
	MaxTick time.Duration

	PhaseAvg [numPhases]time.Duration
	PhasePct [numPhases]float64 // Share of the average tick

	TicksPerSecond         float64
	AvgModules             float64
	ModuleUpdatesPerSecond float64 // Modules advanced per wall-clock second

	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{FrameDuration: p.frame}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.count == 0 {
		return s
	}

	ticks := make([]float64, p.count)
	modules := make([]float64, p.count)
	var phaseSum [numPhases]time.Duration
	for i, sample := range p.samples[:p.count] {
		ticks[i] = float64(sample.Tick)
		modules[i] = float64(sample.Modules)
		for ph, d := range sample.Phases {
			phaseSum[ph] += d
		}
	}

	avg := stat.Mean(ticks, nil)
	s.AvgTick = time.Duration(avg)
	s.MinTick = time.Duration(floats.Min(ticks))
	s.MaxTick = time.Duration(floats.Max(ticks))
	s.AvgModules = stat.Mean(modules, nil)

	for ph, sum := range phaseSum {
		s.PhaseAvg[ph] = sum / time.Duration(p.count)
		if avg > 0 {
			s.PhasePct[ph] = float64(s.PhaseAvg[ph]) / avg * 100
		}
	}
	if avg > 0 {
		s.TicksPerSecond = float64(time.Second) / avg
		s.ModuleUpdatesPerSecond = s.TicksPerSecond * s.AvgModules
	}
	return s
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTick.Microseconds(),
		"max_tick_us", s.MaxTick.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
		"module_updates_per_sec", int(s.ModuleUpdatesPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, ph := range Phases {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, ph.String()+"_pct", float64(int(pct*10))/10)
		}
	}
	slog.Info("perf", attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd           int32   `csv:"window_end"`
	AvgTickUS           int64   `csv:"avg_tick_us"`
	MinTickUS           int64   `csv:"min_tick_us"`
	MaxTickUS           int64   `csv:"max_tick_us"`
	TicksPerSec         float64 `csv:"ticks_per_sec"`
	AvgModules          float64 `csv:"avg_modules"`
	ModuleUpdatesPerSec float64 `csv:"module_updates_per_sec"`
	FPS                 float64 `csv:"fps"`
	ExposurePct         float64 `csv:"exposure_pct"`
	VigorPct            float64 `csv:"vigor_pct"`
	GrowthPct           float64 `csv:"growth_pct"`
	RegistryPct         float64 `csv:"registry_pct"`
	TelemetryPct        float64 `csv:"telemetry_pct"`
}

// ToCSV flattens s into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:           windowEnd,
		AvgTickUS:           s.AvgTick.Microseconds(),
		MinTickUS:           s.MinTick.Microseconds(),
		MaxTickUS:           s.MaxTick.Microseconds(),
		TicksPerSec:         s.TicksPerSecond,
		AvgModules:          s.AvgModules,
		ModuleUpdatesPerSec: s.ModuleUpdatesPerSecond,
		FPS:                 s.FPS,
		ExposurePct:         s.PhasePct[PhaseExposure],
		VigorPct:            s.PhasePct[PhaseVigor],
		GrowthPct:           s.PhasePct[PhaseGrowth],
		RegistryPct:         s.PhasePct[PhaseRegistry],
		TelemetryPct:        s.PhasePct[PhaseTelemetry],
	}
}
