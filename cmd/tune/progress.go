package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"
)

// progress logs every evaluation to CSV and stdout and remembers the best.
type progress struct {
	file     *os.File
	w        *csv.Writer
	maxEvals int

	evals       int
	bestFitness float64
	best        []float64
	start       time.Time
}

func newProgress(path string, params *ParamVector, maxEvals int) (*progress, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating tune log: %w", err)
	}
	p := &progress{
		file:        f,
		w:           csv.NewWriter(f),
		maxEvals:    maxEvals,
		bestFitness: math.Inf(1),
		start:       time.Now(),
	}

	header := []string{"eval", "fitness", "modules", "height", "exposure", "dead"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	p.w.Write(header)
	return p, nil
}

// Record logs one evaluation of the clamped raw parameters.
func (p *progress) Record(fitness float64, raw []float64, sum runSummary) {
	p.evals++
	if fitness < p.bestFitness {
		p.bestFitness = fitness
		p.best = raw
	}

	row := []string{
		strconv.Itoa(p.evals),
		fmt.Sprintf("%.6f", fitness),
		fmt.Sprintf("%.1f", sum.Modules),
		fmt.Sprintf("%.3f", sum.Height),
		fmt.Sprintf("%.4f", sum.Exposure),
		fmt.Sprintf("%.3f", sum.Dead),
	}
	for _, v := range raw {
		row = append(row, fmt.Sprintf("%.6f", v))
	}
	p.w.Write(row)
	p.w.Flush()

	elapsed := time.Since(p.start)
	remaining := time.Duration(p.maxEvals-p.evals) * (elapsed / time.Duration(p.evals))
	fmt.Printf("Eval %d/%d: fitness=%.4f modules=%.0f height=%.1f exposure=%.2f (best=%.4f) | elapsed: %s, ETA: %s\n",
		p.evals, p.maxEvals, fitness, sum.Modules, sum.Height, sum.Exposure, p.bestFitness,
		formatDuration(elapsed), formatDuration(remaining))
}

// Best returns the parameters of the fittest evaluation so far, or nil.
func (p *progress) Best() []float64 { return p.best }

// Summary prints the totals for the run.
func (p *progress) Summary() {
	fmt.Printf("\nTuning complete after %d evaluations in %s\n", p.evals, formatDuration(time.Since(p.start)))
	fmt.Printf("Best fitness: %.4f\n", p.bestFitness)
}

func (p *progress) Close() error {
	p.w.Flush()
	if err := p.w.Error(); err != nil {
		p.file.Close()
		return err
	}
	return p.file.Close()
}

// formatDuration formats a duration as 1h02m03s, or 2m03s when under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
