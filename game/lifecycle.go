package game

import (
	"github.com/pthm-cable/grove/plant"
)

// recordLifecycle feeds the spawn and shed counts of this tick to the
// collector. before holds each living plant's stats from the start of the
// tick.
func (g *Game) recordLifecycle(before []plant.Stats) {
	for i, p := range g.living {
		after := p.Stats()
		if n := after.Spawned - before[i].Spawned; n > 0 {
			g.collector.RecordSpawn(n)
		}
		if n := after.Shed - before[i].Shed; n > 0 {
			g.collector.RecordShed(n)
		}
	}
}

// cleanupDead drops dead plants from the tick list. Their modules were
// already unregistered when the root was shed.
func (g *Game) cleanupDead() {
	alive := g.living[:0]
	for _, p := range g.living {
		if p.Alive() {
			alive = append(alive, p)
			continue
		}
		g.collector.RecordDeath()
		if v := g.view; v != nil && v.selected != nil && v.selected.Plant() == p {
			v.selected = nil
		}
	}
	clear(g.living[len(alive):])
	g.living = alive
}

// countStates returns the number of plants in each life stage.
func (g *Game) countStates() (young, mature, dead int) {
	for _, p := range g.plants {
		switch p.State {
		case plant.Young:
			young++
		case plant.Mature:
			mature++
		case plant.Dead:
			dead++
		}
	}
	return young, mature, dead
}
