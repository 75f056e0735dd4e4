package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkGrowthSpurt   BookmarkType = "growth_spurt"
	BookmarkDieOff        BookmarkType = "die_off"
	BookmarkFirstMaturity BookmarkType = "first_maturity"
	BookmarkPopulationCap BookmarkType = "population_cap"
	BookmarkStableCanopy  BookmarkType = "stable_canopy"
)

// Bookmark marks a notable window of a run.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector watches successive window stats for notable changes.
type BookmarkDetector struct {
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	modulePeak   int
	stableCount  int
	seenMature   bool
	seenCapLatch bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable canopy detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark
	add := func(b *Bookmark) {
		if b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	add(bd.checkFirstMaturity(stats))
	add(bd.checkPopulationCap(stats))
	if bd.historyFull || bd.historyIdx > 0 {
		add(bd.checkGrowthSpurt(stats))
		add(bd.checkDieOff(stats))
		add(bd.checkStableCanopy(stats))
	}

	bd.addToHistory(stats)
	if stats.Modules > bd.modulePeak {
		bd.modulePeak = stats.Modules
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkFirstMaturity(stats WindowStats) *Bookmark {
	if bd.seenMature || stats.PlantsMature == 0 {
		return nil
	}
	bd.seenMature = true
	return &Bookmark{
		Type:        BookmarkFirstMaturity,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d plant(s) reached maturity", stats.PlantsMature),
	}
}

func (bd *BookmarkDetector) checkPopulationCap(stats WindowStats) *Bookmark {
	if bd.seenCapLatch || !stats.CapLatched {
		return nil
	}
	bd.seenCapLatch = true
	return &Bookmark{
		Type:        BookmarkPopulationCap,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Spawning closed at %d modules", stats.Modules),
	}
}

func (bd *BookmarkDetector) checkGrowthSpurt(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Spawned
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	if float64(stats.Spawned) > avg*2 && stats.Spawned >= 5 {
		return &Bookmark{
			Type:        BookmarkGrowthSpurt,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d spawns is %.1fx average (%.1f)", stats.Spawned, float64(stats.Spawned)/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkDieOff(stats WindowStats) *Bookmark {
	if bd.modulePeak == 0 {
		return nil
	}

	drop := 1 - float64(stats.Modules)/float64(bd.modulePeak)
	if drop > 0.30 && stats.Modules <= bd.modulePeak-5 {
		oldPeak := bd.modulePeak
		bd.modulePeak = stats.Modules
		return &Bookmark{
			Type:        BookmarkDieOff,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Modules fell %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Modules),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStableCanopy(stats WindowStats) *Bookmark {
	if stats.Modules < 5 {
		bd.stableCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}
	recent := history[len(history)-4:]

	var sum float64
	for _, h := range recent {
		sum += float64(h.Modules)
	}
	mean := sum / 4

	var variance float64
	for _, h := range recent {
		d := float64(h.Modules) - mean
		variance += d * d
	}
	variance /= 4

	// CV^2 < 0.04 means CV < 0.2
	if mean > 0 && variance/(mean*mean) < 0.04 {
		bd.stableCount++
	} else {
		bd.stableCount = 0
	}

	if bd.stableCount == 5 {
		return &Bookmark{
			Type:        BookmarkStableCanopy,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Canopy steady at %d modules over 5+ windows", stats.Modules),
		}
	}
	return nil
}
