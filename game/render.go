package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/grove/camera"
	"github.com/pthm-cable/grove/config"
	"github.com/pthm-cable/grove/plant"
	"github.com/pthm-cable/grove/ui"
)

// fovy is the viewer's vertical field of view in degrees.
const fovy = 45

var (
	backgroundColor = rl.Color{R: 22, G: 26, B: 30, A: 255}
	barkColor       = rl.Color{R: 120, G: 88, B: 60, A: 255}
	shadeColor      = rl.Color{R: 40, G: 60, B: 120, A: 255}
	litColor        = rl.Color{R: 130, G: 220, B: 90, A: 255}
	sphereColor     = rl.Color{R: 90, G: 140, B: 200, A: 120}
	selectColor     = rl.Color{R: 250, G: 220, B: 80, A: 255}
)

const controlsLegend = "SPACE pause | , . speed | R restart | P params | O overlays | F perf | HOME camera | RMB orbit | MMB pan | wheel zoom | LMB select"

func newViewer(cfg *config.Config, plants []*plant.Plant) *viewer {
	w, h := cfg.Derived.ScreenW32, cfg.Derived.ScreenH32
	v := &viewer{
		camera:       camera.New(r3.Vec{}, 100),
		hud:          ui.NewHUD(),
		perfPanel:    ui.NewPerfPanel(int32(w)-250, 16),
		controls:     ui.NewControlsPanel(10, 125, 220),
		params:       ui.NewParamsPanel(int32(w)-300, 10, 290, cfg.Plant),
		inspector:    ui.NewInspector(int32(w)-260, 10, 250),
		overlays:     ui.NewOverlayRegistry(),
		screenWidth:  w,
		screenHeight: h,
	}
	v.frame(plants, cfg.Plant.MaxLength)
	return v
}

// frame points the camera at the plant origins with room above them for
// growth.
func (v *viewer) frame(plants []*plant.Plant, headroom float64) {
	if len(plants) == 0 {
		return
	}
	lo := plants[0].Root.Root()
	hi := lo
	for _, p := range plants[1:] {
		o := p.Root.Root()
		lo = r3.Vec{X: min(lo.X, o.X), Y: min(lo.Y, o.Y), Z: min(lo.Z, o.Z)}
		hi = r3.Vec{X: max(hi.X, o.X), Y: max(hi.Y, o.Y), Z: max(hi.Z, o.Z)}
	}
	hi.Z += max(headroom, 10)
	v.camera.Frame(lo, hi, fovy)
	v.camera.SetHome()
}

// toRL maps plant coordinates (Z up) to raylib coordinates (Y up).
func toRL(p r3.Vec) rl.Vector3 {
	return rl.Vector3{X: float32(p.X), Y: float32(p.Z), Z: float32(-p.Y)}
}

func (v *viewer) rlCamera() rl.Camera3D {
	return rl.Camera3D{
		Position:   toRL(v.camera.Position()),
		Target:     toRL(v.camera.Target),
		Up:         rl.Vector3{Y: 1},
		Fovy:       fovy,
		Projection: rl.CameraPerspective,
	}
}

func lerpColor(a, b rl.Color, t float64) rl.Color {
	t = min(1, max(0, t))
	mix := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t) }
	return rl.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// moduleColor picks the segment color of m for the active overlays.
func (g *Game) moduleColor(m *plant.Module) rl.Color {
	o := g.view.overlays
	switch {
	case o.IsEnabled(ui.OverlayExposure):
		return lerpColor(shadeColor, litColor, m.Exposure)
	case o.IsEnabled(ui.OverlayVigor):
		s := &m.Plant().Settings
		return lerpColor(shadeColor, litColor, (m.Vigor-s.VMin)/(s.VMax-s.VMin))
	default:
		return barkColor
	}
}

// Draw renders the scene and the UI.
func (g *Game) Draw() {
	v := g.view
	if v == nil {
		return
	}

	rl.BeginDrawing()
	rl.ClearBackground(backgroundColor)

	rl.BeginMode3D(v.rlCamera())
	g.drawScene()
	rl.EndMode3D()

	g.drawUI()

	rl.EndDrawing()
	g.perfCollector.RecordFrame()
}

func (g *Game) drawScene() {
	v := g.view
	o := v.overlays

	if o.IsEnabled(ui.OverlayGround) {
		spacing := float32(max(g.cfg.Simulation.Spacing/8, 1))
		rl.DrawGrid(64, spacing)
	}

	sides := int32(g.cfg.Export.SegmentSides)
	skeleton := o.IsEnabled(ui.OverlaySkeleton)
	for _, p := range g.living {
		for _, m := range p.Modules() {
			color := g.moduleColor(m)
			for _, s := range m.Segments() {
				a, b := toRL(s.Start), toRL(s.End)
				if skeleton {
					rl.DrawLine3D(a, b, color)
					continue
				}
				r := float32(s.Diameter / 2)
				rl.DrawCylinderEx(a, b, r, r, sides, color)
			}
			if o.IsEnabled(ui.OverlayNodes) {
				for _, n := range m.Graph.AvailableNodes(nil) {
					rl.DrawSphere(toRL(m.Graph.Nodes[n].Pos), 0.3, rl.RayWhite)
				}
			}
			if o.IsEnabled(ui.OverlaySpheres) {
				rl.DrawSphereWires(toRL(m.Sphere.Center), float32(m.Sphere.Radius), 6, 8, sphereColor)
			}
		}
	}

	if sel := v.selected; sel != nil && sel.Alive() {
		center := toRL(sel.Sphere.Center)
		rl.DrawSphereWires(center, float32(sel.Sphere.Radius), 8, 12, selectColor)
		if o.IsEnabled(ui.OverlayNeighbors) {
			v.neighbors = g.registry.Neighbors(sel, v.neighbors[:0])
			for _, n := range v.neighbors {
				rl.DrawLine3D(center, toRL(n.Sphere.Center), rl.Orange)
			}
		}
	}
}

func (g *Game) drawUI() {
	v := g.view
	young, mature, dead := g.countStates()

	v.hud.Draw(ui.HUDData{
		Title:        "Grove",
		Young:        young,
		Mature:       mature,
		Dead:         dead,
		Modules:      g.registry.Live(),
		MaxModules:   g.cfg.Population.MaxModules,
		CapLatched:   g.registry.Latched(),
		Tick:         g.tick,
		MaxTicks:     g.maxTicks,
		Speed:        g.stepsPerUpdate,
		FPS:          rl.GetFPS(),
		Paused:       g.paused,
		Done:         g.done,
		ScreenWidth:  int32(v.screenWidth),
		ScreenHeight: int32(v.screenHeight),
	})
	v.hud.DrawControls(int32(v.screenHeight), controlsLegend)
	v.controls.Draw(v.overlays)

	right := int32(v.screenWidth) - 10
	y := int32(10)
	if v.params.IsVisible() {
		v.params.SetPosition(right-290, y)
		if v.params.Draw() {
			v.restart = true
		}
	} else if sel := v.selected; sel != nil {
		v.inspector.SetPosition(right-250, y)
		v.inspector.Draw(g.inspectorData(sel))
	}

	if v.showPerf {
		v.perfPanel.SetPosition(10, int32(v.screenHeight)-160)
		v.perfPanel.Draw(g.perfCollector.Stats())
	}

	if sel := v.selected; sel != nil && !v.params.IsVisible() {
		rl.DrawText(fmt.Sprintf("selected %d.%d", sel.Plant().ID, sel.ID), right-250, int32(v.screenHeight)-45, 14, selectColor)
	}
}

func (g *Game) inspectorData(m *plant.Module) ui.InspectorData {
	data := ui.InspectorData{Module: m}
	if bounds, lit, ref, ok := g.registry.Components(m); ok {
		data.Components = []ui.Component{
			{Name: "Light", Value: lit},
			{Name: "Bounds", Value: bounds},
			{Name: "Entity", Value: ref},
		}
	}
	return data
}
