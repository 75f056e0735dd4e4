package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTime         float64 `csv:"sim_time"`

	// Plant counts at window end
	PlantsYoung  int `csv:"plants_young"`
	PlantsMature int `csv:"plants_mature"`
	PlantsDead   int `csv:"plants_dead"`

	// Module population at window end
	Modules  int `csv:"modules"`
	Segments int `csv:"segments"`

	// Events during window
	Spawned    int  `csv:"spawned"`
	Shed       int  `csv:"shed"`
	Deaths     int  `csv:"deaths"`
	Matured    int  `csv:"matured"`
	CapLatched bool `csv:"cap_latched"`

	// Module vigor distribution (sampled at window end)
	VigorMean float64 `csv:"vigor_mean"`
	VigorStd  float64 `csv:"vigor_std"`
	VigorP10  float64 `csv:"vigor_p10"`
	VigorP50  float64 `csv:"vigor_p50"`
	VigorP90  float64 `csv:"vigor_p90"`

	// Module exposure distribution
	ExposureMean float64 `csv:"exposure_mean"`
	ExposureStd  float64 `csv:"exposure_std"`
	ExposureP10  float64 `csv:"exposure_p10"`
	ExposureP50  float64 `csv:"exposure_p50"`
	ExposureP90  float64 `csv:"exposure_p90"`

	MaxHeight float64 `csv:"max_height"` // Highest node z over all plants
}

// Distribution summarizes a sample.
type Distribution struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution returns the mean, sample standard deviation and
// percentiles of values. The input is not modified.
func ComputeDistribution(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{}
	}

	var d Distribution
	if n == 1 {
		d.Mean = values[0]
	} else {
		d.Mean, d.Std = stat.MeanStdDev(values, nil)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	d.P10 = Percentile(sorted, 0.10)
	d.P50 = Percentile(sorted, 0.50)
	d.P90 = Percentile(sorted, 0.90)
	return d
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTime),
		slog.Int("plants_young", s.PlantsYoung),
		slog.Int("plants_mature", s.PlantsMature),
		slog.Int("plants_dead", s.PlantsDead),
		slog.Int("modules", s.Modules),
		slog.Int("spawned", s.Spawned),
		slog.Int("shed", s.Shed),
		slog.Float64("vigor_mean", s.VigorMean),
		slog.Float64("exposure_mean", s.ExposureMean),
		slog.Float64("max_height", s.MaxHeight),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTime,
		"plants_young", s.PlantsYoung,
		"plants_mature", s.PlantsMature,
		"plants_dead", s.PlantsDead,
		"modules", s.Modules,
		"segments", s.Segments,
		"spawned", s.Spawned,
		"shed", s.Shed,
		"deaths", s.Deaths,
		"matured", s.Matured,
		"cap_latched", s.CapLatched,
		"vigor_mean", s.VigorMean,
		"vigor_std", s.VigorStd,
		"vigor_p10", s.VigorP10,
		"vigor_p50", s.VigorP50,
		"vigor_p90", s.VigorP90,
		"exposure_mean", s.ExposureMean,
		"exposure_std", s.ExposureStd,
		"exposure_p10", s.ExposureP10,
		"exposure_p50", s.ExposureP50,
		"exposure_p90", s.ExposureP90,
		"max_height", s.MaxHeight,
	)
}
