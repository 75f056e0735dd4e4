package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeDistribution(t *testing.T) {
	values := []float64{1.0, 0.1, 0.9, 0.2, 0.8, 0.3, 0.7, 0.4, 0.6, 0.5}
	d := ComputeDistribution(values)

	if math.Abs(d.Mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", d.Mean)
	}
	// Sample standard deviation of 0.1..1.0
	if math.Abs(d.Std-0.30277) > 0.001 {
		t.Errorf("std = %v, want ~0.3028", d.Std)
	}
	if math.Abs(d.P10-0.19) > 0.01 {
		t.Errorf("p10 = %v, want ~0.19", d.P10)
	}
	if math.Abs(d.P50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", d.P50)
	}
	if math.Abs(d.P90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", d.P90)
	}
	if values[0] != 1.0 {
		t.Error("input slice was reordered")
	}
}

func TestComputeDistributionSmall(t *testing.T) {
	if d := ComputeDistribution(nil); d != (Distribution{}) {
		t.Errorf("empty distribution = %+v, want zero", d)
	}

	d := ComputeDistribution([]float64{2})
	if d.Mean != 2 || d.Std != 0 || d.P50 != 2 {
		t.Errorf("single value distribution = %+v", d)
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(10, 0.5)

	c.RecordSpawn(3)
	c.RecordSpawn(2)
	c.RecordShed(1)
	c.RecordDeath()
	c.RecordMature()

	if c.ShouldFlush(9) {
		t.Error("flush requested before the window elapsed")
	}
	if !c.ShouldFlush(10) {
		t.Fatal("flush not requested at window end")
	}

	stats := c.Flush(10, Snapshot{
		Young:    1,
		Mature:   2,
		Modules:  4,
		Vigor:    []float64{1, 2, 3, 4},
		Exposure: []float64{1, 1, 1, 1},
	})

	if stats.Spawned != 5 || stats.Shed != 1 || stats.Deaths != 1 || stats.Matured != 1 {
		t.Errorf("event counts = %+v", stats)
	}
	if stats.SimTime != 5 {
		t.Errorf("sim time = %v, want 5", stats.SimTime)
	}
	if stats.VigorMean != 2.5 || stats.ExposureStd != 0 {
		t.Errorf("vigor mean %v exposure std %v", stats.VigorMean, stats.ExposureStd)
	}

	// Counters reset and the window restarts at the flush tick
	next := c.Flush(20, Snapshot{})
	if next.Spawned != 0 || next.WindowStartTick != 10 {
		t.Errorf("second window = %+v", next)
	}
}
