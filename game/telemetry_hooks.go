package game

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pthm-cable/grove/export"
	"github.com/pthm-cable/grove/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.snapshot())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}

// snapshot samples the population for a stats window.
func (g *Game) snapshot() telemetry.Snapshot {
	var snap telemetry.Snapshot
	snap.Young, snap.Mature, snap.Dead = g.countStates()
	snap.CapLatched = g.registry.Latched()

	for _, p := range g.living {
		for _, m := range p.Modules() {
			snap.Modules++
			snap.Vigor = append(snap.Vigor, m.Vigor)
			snap.Exposure = append(snap.Exposure, m.Exposure)
		}
		for _, s := range p.Segments() {
			snap.Segments++
			snap.MaxHeight = max(snap.MaxHeight, s.End.Z-p.Root.Root().Z)
		}
	}
	return snap
}

// plantRecords summarizes every plant for plants.csv.
func (g *Game) plantRecords() []telemetry.PlantRecord {
	records := make([]telemetry.PlantRecord, 0, len(g.plants))
	for _, p := range g.plants {
		st := p.Stats()
		rec := telemetry.PlantRecord{
			Plant:     p.ID,
			State:     p.State.String(),
			Age:       p.Age,
			Modules:   st.Modules,
			Spawned:   st.Spawned,
			Shed:      st.Shed,
			RootVigor: p.Root.Vigor,
		}
		base := p.Root.Root().Z
		for _, s := range p.Segments() {
			rec.Height = max(rec.Height, s.End.Z-base)
		}
		records = append(records, rec)
	}
	return records
}

// writeRunOutput writes the plant summary, the segment table and the
// optional STL mesh.
func (g *Game) writeRunOutput() {
	if err := g.outputManager.WritePlants(g.plantRecords()); err != nil {
		slog.Error("failed to write plants", "error", err)
	}

	if dir := g.outputManager.Dir(); dir != "" {
		if err := writeSegments(filepath.Join(dir, "segments.csv"), g); err != nil {
			slog.Error("failed to write segments", "error", err)
		}
	}

	if g.opts.ExportSTL != "" {
		n, err := export.SaveSTL(g.opts.ExportSTL, g.plants, g.cfg.Export.MeshCells)
		if err != nil {
			slog.Error("failed to export mesh", "path", g.opts.ExportSTL, "error", err)
			return
		}
		slog.Info("mesh_exported", "path", g.opts.ExportSTL, "triangles", n)
	}
}

func writeSegments(path string, g *Game) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteSegmentsCSV(f, g.plants); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
