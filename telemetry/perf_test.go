package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollectorPhases(t *testing.T) {
	pc := NewPerfCollector(10)
	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseExposure)
		time.Sleep(time.Millisecond)
		pc.StartPhase(PhaseGrowth)
		time.Sleep(10 * time.Millisecond)
		pc.EndTick(12)
	}

	s := pc.Stats()
	if s.AvgTick <= 0 || s.MinTick > s.AvgTick || s.MaxTick < s.AvgTick {
		t.Errorf("tick durations min %v avg %v max %v", s.MinTick, s.AvgTick, s.MaxTick)
	}
	if s.PhaseAvg[PhaseExposure] <= 0 || s.PhaseAvg[PhaseGrowth] <= 0 {
		t.Errorf("phase averages %v", s.PhaseAvg)
	}
	if s.PhaseAvg[PhaseVigor] != 0 {
		t.Errorf("untimed vigor phase = %v", s.PhaseAvg[PhaseVigor])
	}
	if s.PhasePct[PhaseGrowth] <= s.PhasePct[PhaseExposure] {
		t.Errorf("growth %.1f%% should exceed exposure %.1f%%", s.PhasePct[PhaseGrowth], s.PhasePct[PhaseExposure])
	}
	if s.AvgModules != 12 {
		t.Errorf("avg modules = %v, want 12", s.AvgModules)
	}
	if s.ModuleUpdatesPerSecond <= s.TicksPerSecond {
		t.Errorf("module updates %v should be 12x ticks %v", s.ModuleUpdatesPerSecond, s.TicksPerSecond)
	}
}

func TestPerfCollectorRollingWindow(t *testing.T) {
	pc := NewPerfCollector(4)
	for i := 1; i <= 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseVigor)
		pc.EndTick(i)
	}

	// Only ticks 7..10 remain.
	if got := pc.Stats().AvgModules; got != 8.5 {
		t.Errorf("avg modules = %v, want 8.5", got)
	}
	if pc.Stats().TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfCollectorEmpty(t *testing.T) {
	s := NewPerfCollector(0).Stats()
	if s.AvgTick != 0 || s.TicksPerSecond != 0 || s.FPS != 0 {
		t.Errorf("empty stats = %+v", s)
	}
}

func TestPerfCollectorFrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)
	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	s := pc.Stats()
	if s.FrameDuration < 15*time.Millisecond {
		t.Errorf("frame duration = %v, want >= 15ms", s.FrameDuration)
	}
	if s.FPS <= 0 || s.FPS > 1000.0/15 {
		t.Errorf("FPS = %v", s.FPS)
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		ph   Phase
		want string
	}{
		{PhaseExposure, "exposure"},
		{PhaseTelemetry, "telemetry"},
		{numPhases, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.ph.String(); got != tt.want {
			t.Errorf("Phase(%d) = %q, want %q", tt.ph, got, tt.want)
		}
	}
}

func TestPerfToCSV(t *testing.T) {
	s := PerfStats{AvgTick: 1500 * time.Microsecond, TicksPerSecond: 666}
	s.PhasePct[PhaseGrowth] = 40
	row := s.ToCSV(100)
	if row.WindowEnd != 100 || row.AvgTickUS != 1500 || row.GrowthPct != 40 {
		t.Errorf("row = %+v", row)
	}
}
