package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/grove/config"
)

// ControlsPanel renders the overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool { return c.visible }

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the panel and returns the Y below it.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	categories := overlays.Categories()
	rows := 0
	for _, cat := range categories {
		rows += len(overlays.ByCategory(cat)) + 1
	}
	height := int32(rows)*lineHeight + int32(len(categories))*4 + padding*2 + lineHeight + 4
	r.DrawPanel(c.x, c.y, c.width, height)

	y := c.y + padding
	rl.DrawText("Overlays", c.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	for _, category := range categories {
		rl.DrawText(categoryLabel(category), c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight
		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(c.x+padding, y, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
			y += lineHeight
		}
		y += 4
	}
	return c.y + height
}

func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	status := rl.Color{R: 80, G: 80, B: 80, A: 255}
	name := r.Theme.LabelColor
	if enabled {
		status = r.Theme.BarFillHigh
		name = rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, status)
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, name)

	if desc.KeyLabel != "" {
		key := fmt.Sprintf("[%s]", desc.KeyLabel)
		w := rl.MeasureText(key, r.Theme.FontSize)
		rl.DrawText(key, x+width-w, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

func categoryLabel(cat string) string {
	switch cat {
	case "visual":
		return "Visual"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}

// ParamSlider binds one plant parameter to a slider.
type ParamSlider struct {
	Label   string
	Min     float32
	Max     float32
	Integer bool
	Get     func(*config.PlantConfig) float32
	Set     func(*config.PlantConfig, float32)
}

// PlantSliders returns the plant parameters editable from the viewer.
// Every range lies inside the range PlantConfig.Clamp enforces.
func PlantSliders() []ParamSlider {
	return []ParamSlider{
		{
			Label: "Growth potential", Min: 0.01, Max: 1,
			Get: func(p *config.PlantConfig) float32 { return float32(p.GrowthPotential) },
			Set: func(p *config.PlantConfig, v float32) { p.GrowthPotential = float64(v) },
		},
		{
			Label: "Apical control", Min: 0, Max: 1,
			Get: func(p *config.PlantConfig) float32 { return float32(p.ApicalControl) },
			Set: func(p *config.PlantConfig, v float32) { p.ApicalControl = float64(v) },
		},
		{
			Label: "Apical control (mature)", Min: 0, Max: 1,
			Get: func(p *config.PlantConfig) float32 { return float32(p.ApicalControlMature) },
			Set: func(p *config.PlantConfig, v float32) { p.ApicalControlMature = float64(v) },
		},
		{
			Label: "Determinacy", Min: 0, Max: 1,
			Get: func(p *config.PlantConfig) float32 { return float32(p.Determinacy) },
			Set: func(p *config.PlantConfig, v float32) { p.Determinacy = float64(v) },
		},
		{
			Label: "Tropism angle", Min: -1, Max: 1,
			Get: func(p *config.PlantConfig) float32 { return float32(p.TropismAngle) },
			Set: func(p *config.PlantConfig, v float32) { p.TropismAngle = float64(v) },
		},
		{
			Label: "Tropism decay", Min: -5, Max: 5,
			Get: func(p *config.PlantConfig) float32 { return float32(p.TropismDecay) },
			Set: func(p *config.PlantConfig, v float32) { p.TropismDecay = float64(v) },
		},
		{
			Label: "Length scale", Min: 0.1, Max: 5,
			Get: func(p *config.PlantConfig) float32 { return float32(p.LengthScale) },
			Set: func(p *config.PlantConfig, v float32) { p.LengthScale = float64(v) },
		},
		{
			Label: "Straightness", Min: 0, Max: 1,
			Get: func(p *config.PlantConfig) float32 { return float32(p.Straightness) },
			Set: func(p *config.PlantConfig, v float32) { p.Straightness = float64(v) },
		},
		{
			Label: "Flowering age", Min: 0, Max: 500, Integer: true,
			Get: func(p *config.PlantConfig) float32 { return float32(p.FloweringAge) },
			Set: func(p *config.PlantConfig, v float32) { p.FloweringAge = int(v) },
		},
	}
}

// ParamsPanel edits a pending copy of the plant settings. Changes take
// effect when the user restarts the run.
type ParamsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
	sliders  []ParamSlider
	pending  config.PlantConfig
	dirty    bool
}

// NewParamsPanel creates a parameter panel seeded with settings.
func NewParamsPanel(x, y, width int32, settings config.PlantConfig) *ParamsPanel {
	return &ParamsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		sliders:  PlantSliders(),
		pending:  settings,
	}
}

// IsVisible returns whether the panel is shown.
func (p *ParamsPanel) IsVisible() bool { return p.visible }

// Toggle switches panel visibility.
func (p *ParamsPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// SetPosition updates the panel position.
func (p *ParamsPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Pending returns the edited settings, clamped.
func (p *ParamsPanel) Pending() config.PlantConfig {
	s := p.pending
	s.Clamp()
	return s
}

// Dirty reports whether the pending settings differ from the running ones.
func (p *ParamsPanel) Dirty() bool { return p.dirty }

// Reset discards edits and seeds the panel with settings.
func (p *ParamsPanel) Reset(settings config.PlantConfig) {
	p.pending = settings
	p.dirty = false
}

// Apply sets slider i to v, as a slider drag does.
func (p *ParamsPanel) Apply(i int, v float32) {
	s := p.sliders[i]
	v = min(s.Max, max(s.Min, v))
	if s.Integer {
		v = float32(int(v + 0.5))
	}
	if v == s.Get(&p.pending) {
		return
	}
	s.Set(&p.pending, v)
	p.dirty = true
}

// Draw renders the sliders and a restart button. It reports whether the
// button was pressed.
func (p *ParamsPanel) Draw() bool {
	if !p.visible {
		return false
	}

	r := p.renderer
	padding := r.Theme.Padding
	rowHeight := int32(38)
	height := int32(len(p.sliders))*rowHeight + padding*3 + 24 + 30
	r.DrawPanel(p.x, p.y, p.width, height)

	x := float32(p.x + padding)
	y := p.y + padding
	rl.DrawText("Plant Parameters", p.x+padding, y, 16, rl.White)
	y += 24

	sliderWidth := float32(p.width - padding*2 - 60)
	for i, s := range p.sliders {
		rl.DrawText(s.Label, p.x+padding, y, r.Theme.FontSize, r.Theme.LabelColor)
		cur := s.Get(&p.pending)
		next := gui.SliderBar(
			rl.Rectangle{X: x, Y: float32(y + 14), Width: sliderWidth, Height: 16},
			"", "",
			cur, s.Min, s.Max,
		)
		p.Apply(i, next)

		value := fmt.Sprintf("%.2f", s.Get(&p.pending))
		if s.Integer {
			value = fmt.Sprintf("%d", int(s.Get(&p.pending)))
		}
		rl.DrawText(value, int32(x+sliderWidth)+8, y+15, r.Theme.FontSize, r.Theme.ValueColor)
		y += rowHeight
	}

	label := "Restart"
	if p.dirty {
		label = "Apply & Restart"
	}
	return gui.Button(rl.Rectangle{X: x, Y: float32(y + padding), Width: 140, Height: 26}, label)
}
