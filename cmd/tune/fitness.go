package main

import (
	"slices"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/grove/config"
	"github.com/pthm-cable/grove/game"
	"github.com/pthm-cable/grove/telemetry"
)

// Target describes the plant the tuner is searching for.
type Target struct {
	Modules int     // Live modules at the end of the run
	Height  float64 // Max node height above the root
}

// Fitness component weights.
const (
	weightModules  = 1.0
	weightHeight   = 1.0
	weightExposure = 0.5
	deathPenalty   = 2.0
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int
	seeds      []int64
	baseConfig *config.Config
	target     Target

	mu          sync.Mutex
	lastSummary runSummary
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []int64, baseCfg *config.Config, target Target) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
		target:     target,
	}
}

// runSummary is what one run contributes to fitness.
type runSummary struct {
	Modules  float64
	Height   float64
	Exposure float64 // Mean exposure over the stats windows
	Dead     float64 // Fraction of plants dead at the end
}

// LastSummary returns the seed-averaged summary of the most recent evaluation.
func (fe *FitnessEvaluator) LastSummary() runSummary {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSummary
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	results := make([]runSummary, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var avg runSummary
	var total float64
	for _, r := range results {
		total += fe.computeFitness(r)
		avg.Modules += r.Modules
		avg.Height += r.Height
		avg.Exposure += r.Exposure
		avg.Dead += r.Dead
	}
	n := float64(len(results))
	avg.Modules /= n
	avg.Height /= n
	avg.Exposure /= n
	avg.Dead /= n

	fe.mu.Lock()
	fe.lastSummary = avg
	fe.mu.Unlock()

	return total / n
}

// runSimulation executes a single headless run and summarizes its last window.
// A run that fails to start scores as a dead plant with nothing grown.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) runSummary {
	var windows []telemetry.WindowStats
	g, err := game.New(cfg, game.Options{
		Seed:           seed,
		Headless:       true,
		StepsPerUpdate: 10,
		MaxTicks:       fe.maxTicks,
		StatsCallback: func(s telemetry.WindowStats) {
			windows = append(windows, s)
		},
	})
	if err != nil {
		return runSummary{Dead: 1}
	}
	defer g.Unload()

	for !g.Done() {
		if err := g.UpdateHeadless(); err != nil {
			break
		}
	}
	return summarize(windows, len(g.Plants()))
}

// summarize reduces window stats to a runSummary.
func summarize(windows []telemetry.WindowStats, plants int) runSummary {
	if len(windows) == 0 || plants == 0 {
		return runSummary{Dead: 1}
	}
	last := windows[len(windows)-1]
	exposure := make([]float64, len(windows))
	for i, w := range windows {
		exposure[i] = w.ExposureMean
	}
	return runSummary{
		Modules:  float64(last.Modules),
		Height:   last.MaxHeight,
		Exposure: stat.Mean(exposure, nil),
		Dead:     float64(last.PlantsDead) / float64(plants),
	}
}

// computeFitness scores a run by its squared relative distance to the target,
// rewarding light exposure and penalizing dead plants.
func (fe *FitnessEvaluator) computeFitness(r runSummary) float64 {
	modErr := relErr(r.Modules, float64(fe.target.Modules))
	hErr := relErr(r.Height, fe.target.Height)
	return weightModules*modErr*modErr +
		weightHeight*hErr*hErr -
		weightExposure*r.Exposure +
		deathPenalty*r.Dead
}

func relErr(got, want float64) float64 {
	if want <= 0 {
		return 0
	}
	return (got - want) / want
}

// copyConfig returns a copy of the base config that can be mutated per
// evaluation. Prototype edges are shared and never written.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Prototypes = slices.Clone(fe.baseConfig.Prototypes)
	return &cfg
}
