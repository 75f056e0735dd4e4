package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/grove/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	Young        int
	Mature       int
	Dead         int
	Modules      int
	MaxModules   int
	CapLatched   bool
	Tick         int32
	MaxTicks     int32
	Speed        int
	FPS          int32
	Paused       bool
	Done         bool
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Plants: %d young | %d mature | %d dead", data.Young, data.Mature, data.Dead),
		10, 35, 16, rl.LightGray,
	)

	modules := fmt.Sprintf("Modules: %d / %d", data.Modules, data.MaxModules)
	rl.DrawText(modules, 10, 55, 16, rl.LightGray)
	if data.CapLatched {
		w := rl.MeasureText(modules, 16)
		rl.DrawText("CAP REACHED", 10+w+10, 55, 16, rl.Orange)
	}

	rl.DrawText(
		fmt.Sprintf("Tick: %d / %d | Speed: %dx | FPS: %d", data.Tick, data.MaxTicks, data.Speed, data.FPS),
		10, 75, 16, rl.LightGray,
	)

	status := "Running"
	switch {
	case data.Done:
		status = "FINISHED"
	case data.Paused:
		status = "PAUSED"
	}
	rl.DrawText(status, 10, 95, 16, rl.Yellow)
}

// DrawControls renders the key legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase step timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel for phases in order.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	height := int32(len(telemetry.Phases))*14 + 76
	r.DrawPanel(p.x-6, p.y-6, 250, height)

	x, y := p.x, p.y
	rl.DrawText("Step Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(
		fmt.Sprintf("Tick: %s | %.0f t/s", stats.AvgTick.Round(time.Microsecond), stats.TicksPerSecond),
		x, y, 14, rl.Yellow,
	)
	y += 18
	rl.DrawText(fmt.Sprintf("Modules: %.0f | %.0f updates/s", stats.AvgModules, stats.ModuleUpdatesPerSecond), x, y, 12, rl.LightGray)
	y += 16

	for _, ph := range telemetry.Phases {
		pct := stats.PhasePct[ph]
		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", ph, stats.PhaseAvg[ph].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
