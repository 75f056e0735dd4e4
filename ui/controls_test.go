package ui

import (
	"testing"

	"github.com/pthm-cable/grove/config"
)

func TestPlantSlidersInsideClampRange(t *testing.T) {
	for _, s := range PlantSliders() {
		t.Run(s.Label, func(t *testing.T) {
			for _, v := range []float32{s.Min, s.Max} {
				p := config.DefaultPlant()
				s.Set(&p, v)
				p.Clamp()
				if got := s.Get(&p); got != v {
					t.Errorf("slider value %v clamped to %v", v, got)
				}
			}
		})
	}
}

func TestParamsPanelApply(t *testing.T) {
	base := config.DefaultPlant()
	p := NewParamsPanel(0, 0, 300, base)

	p.Apply(0, p.sliders[0].Get(&p.pending))
	if p.Dirty() {
		t.Error("re-applying the current value marked the panel dirty")
	}

	p.Apply(1, 5) // Apical control past its maximum
	if !p.Dirty() {
		t.Fatal("changed slider did not mark the panel dirty")
	}
	if got := p.Pending().ApicalControl; got != 1 {
		t.Errorf("ApicalControl = %v, want clamped to 1", got)
	}

	last := len(p.sliders) - 1
	p.Apply(last, 41.6)
	if got := p.Pending().FloweringAge; got != 42 {
		t.Errorf("FloweringAge = %d, want 42", got)
	}

	p.Reset(base)
	if p.Dirty() || p.Pending().ApicalControl != base.ApicalControl {
		t.Error("Reset did not discard edits")
	}
}
