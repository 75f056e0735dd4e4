package telemetry

import "testing"

func hasBookmark(bms []Bookmark, typ BookmarkType) bool {
	for _, bm := range bms {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_GrowthSpurt(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 50), Spawned: 2, Modules: 10 + i})
	}

	bms := bd.Check(WindowStats{WindowEndTick: 250, Spawned: 9, Modules: 20})
	if !hasBookmark(bms, BookmarkGrowthSpurt) {
		t.Error("expected growth_spurt bookmark")
	}
}

func TestBookmarkDetector_DieOff(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 50), Modules: 40})
	}

	bms := bd.Check(WindowStats{WindowEndTick: 250, Modules: 20})
	if !hasBookmark(bms, BookmarkDieOff) {
		t.Error("expected die_off bookmark")
	}

	// The peak resets, so holding at the new level does not trigger again
	bms = bd.Check(WindowStats{WindowEndTick: 300, Modules: 20})
	if hasBookmark(bms, BookmarkDieOff) {
		t.Error("die_off triggered twice for one drop")
	}
}

func TestBookmarkDetector_Once(t *testing.T) {
	tests := []struct {
		name  string
		stats WindowStats
		typ   BookmarkType
	}{
		{"first maturity", WindowStats{PlantsMature: 2}, BookmarkFirstMaturity},
		{"population cap", WindowStats{CapLatched: true, Modules: 100}, BookmarkPopulationCap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bd := NewBookmarkDetector(5)
			if !hasBookmark(bd.Check(tt.stats), tt.typ) {
				t.Fatalf("expected %s bookmark", tt.typ)
			}
			if hasBookmark(bd.Check(tt.stats), tt.typ) {
				t.Errorf("%s triggered twice", tt.typ)
			}
		})
	}
}

func TestBookmarkDetector_StableCanopy(t *testing.T) {
	bd := NewBookmarkDetector(10)

	var triggered int
	for i := 0; i < 12; i++ {
		bms := bd.Check(WindowStats{WindowEndTick: int32(i * 50), Modules: 30})
		if hasBookmark(bms, BookmarkStableCanopy) {
			triggered++
		}
	}
	if triggered != 1 {
		t.Errorf("stable_canopy triggered %d times, want 1", triggered)
	}
}
