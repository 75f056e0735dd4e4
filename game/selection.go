package game

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/grove/plant"
)

// handleSelection picks the module under the cursor on left click.
func (g *Game) handleSelection() {
	v := g.view
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}
	mouse := rl.GetMousePosition()
	if v.params.IsVisible() && mouse.X > v.screenWidth-310 {
		return // Click landed on the params panel
	}

	origin, dir := v.camera.Ray(float64(mouse.X), float64(mouse.Y),
		float64(v.screenWidth), float64(v.screenHeight), fovy)

	var mods []*plant.Module
	for _, p := range g.living {
		mods = append(mods, p.Modules()...)
	}
	v.selected = pickModule(origin, dir, mods)
}

// pickModule returns the module whose bounding sphere the ray enters
// first, or nil. dir must be a unit vector.
func pickModule(origin, dir r3.Vec, mods []*plant.Module) *plant.Module {
	var best *plant.Module
	bestT := math.Inf(1)
	for _, m := range mods {
		if t, ok := raySphere(origin, dir, m.Sphere.Center, m.Sphere.Radius); ok && t < bestT {
			best, bestT = m, t
		}
	}
	return best
}

// raySphere returns the distance along the ray to its first hit with the
// sphere. A ray starting inside the sphere hits at 0.
func raySphere(origin, dir, center r3.Vec, radius float64) (float64, bool) {
	oc := r3.Sub(center, origin)
	along := r3.Dot(oc, dir)
	d2 := r3.Dot(oc, oc) - along*along
	r2 := radius * radius
	if d2 > r2 {
		return 0, false
	}
	half := math.Sqrt(r2 - d2)
	switch {
	case along-half >= 0:
		return along - half, true
	case along+half >= 0:
		return 0, true
	default:
		return 0, false
	}
}
