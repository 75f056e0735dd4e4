package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Camera input sensitivities.
const (
	orbitSpeed = 0.008 // Radians per pixel of mouse drag
	keyOrbit   = 0.03  // Radians per frame with arrow keys
	panSpeed   = 0.0015
	zoomStep   = 0.9
)

// Update handles input and runs stepsPerUpdate ticks unless paused.
func (g *Game) Update() {
	g.handleInput()

	if v := g.view; v != nil && v.restart {
		v.restart = false
		if err := g.Restart(v.params.Pending()); err != nil {
			slog.Error("restart failed", "error", err)
		}
		v.params.Reset(g.cfg.Plant)
	}

	if g.paused || g.done {
		return
	}
	if err := g.UpdateHeadless(); err != nil {
		slog.Error("simulation step failed", "tick", g.tick, "error", err)
		g.done = true
	}
}

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	v := g.view
	if v == nil {
		return
	}
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 20 {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyR) {
		v.restart = true
	}
	if rl.IsKeyPressed(rl.KeyP) {
		v.params.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyO) {
		v.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyF) {
		v.showPerf = !v.showPerf
	}
	if rl.IsKeyPressed(rl.KeyBackspace) {
		v.selected = nil
	}

	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		if id, on, ok := v.overlays.HandleKeyPress(key); ok {
			slog.Debug("overlay toggled", "overlay", string(id), "enabled", on)
		}
	}

	g.handleCameraInput()
	g.handleSelection()
}

// handleResize checks for window resize and moves the right-hand panels.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	v := g.view
	v.screenWidth = float32(rl.GetScreenWidth())
	v.screenHeight = float32(rl.GetScreenHeight())
	v.perfPanel.SetPosition(10, int32(v.screenHeight)-160)
}

func (g *Game) handleCameraInput() {
	cam := g.view.camera

	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		cam.Orbit(-float64(d.X)*orbitSpeed, float64(d.Y)*orbitSpeed)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		d := rl.GetMouseDelta()
		cam.Pan(float64(d.X)*panSpeed, float64(d.Y)*panSpeed)
	}

	if rl.IsKeyDown(rl.KeyLeft) {
		cam.Orbit(keyOrbit, 0)
	}
	if rl.IsKeyDown(rl.KeyRight) {
		cam.Orbit(-keyOrbit, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		cam.Orbit(0, keyOrbit)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		cam.Orbit(0, -keyOrbit)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		if wheel > 0 {
			cam.ZoomBy(zoomStep)
		} else {
			cam.ZoomBy(1 / zoomStep)
		}
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		cam.ZoomBy(zoomStep)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		cam.ZoomBy(1 / zoomStep)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		cam.Reset()
	}
}
