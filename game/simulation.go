package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/grove/plant"
	"github.com/pthm-cable/grove/telemetry"
)

// UpdateHeadless runs stepsPerUpdate ticks without input or drawing.
func (g *Game) UpdateHeadless() error {
	for i := 0; i < g.stepsPerUpdate && !g.done; i++ {
		if err := g.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step runs one tick: light exposure for every live module, then vigor
// and shedding, then growth for each living plant.
func (g *Game) Step() error {
	if g.done {
		return nil
	}
	g.perfCollector.StartTick()

	// Exposure reads the spheres left by the previous tick.
	g.perfCollector.StartPhase(telemetry.PhaseExposure)
	g.registry.UpdateExposure()

	g.perfCollector.StartPhase(telemetry.PhaseVigor)
	before := make([]plant.Stats, len(g.living))
	for i, p := range g.living {
		before[i] = p.Stats()
		if err := p.CalculateVigor(); err != nil {
			g.perfCollector.EndTick(g.registry.Live())
			return fmt.Errorf("tick %d: %w", g.tick, err)
		}
	}

	g.perfCollector.StartPhase(telemetry.PhaseGrowth)
	for _, p := range g.living {
		young := p.State == plant.Young
		p.Grow(g.dt)
		if young && p.State == plant.Mature {
			g.collector.RecordMature()
		}
	}

	g.perfCollector.StartPhase(telemetry.PhaseRegistry)
	g.registry.Flush()
	g.recordLifecycle(before)
	g.cleanupDead()

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.tick++
	g.flushTelemetry()

	g.perfCollector.EndTick(g.registry.Live())

	if g.tick >= g.maxTicks || len(g.living) == 0 {
		g.finish()
	}
	return nil
}

func (g *Game) finish() {
	g.done = true
	reason := "tick_budget"
	if len(g.living) == 0 {
		reason = "all_dead"
	}
	slog.Info("simulation_finished",
		"tick", g.tick,
		"reason", reason,
		"living", len(g.living),
		"modules", g.registry.Live(),
		"cap_latched", g.registry.Latched(),
	)
}
