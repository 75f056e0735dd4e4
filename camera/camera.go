// Package camera provides an orbit camera around a target point in plant
// coordinates (Z up).
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// maxPitch keeps the camera off the poles so the up vector stays defined.
const maxPitch = 85 * math.Pi / 180

// Camera orbits Target at Distance. Yaw turns about Z, Pitch lifts above
// the XY plane.
type Camera struct {
	Target   r3.Vec
	Yaw      float64
	Pitch    float64
	Distance float64

	MinDistance, MaxDistance float64

	home orbit
}

// orbit is a saved camera placement used by Reset.
type orbit struct {
	target               r3.Vec
	yaw, pitch, distance float64
}

// New creates a camera looking at target from distance, raised 30 degrees.
func New(target r3.Vec, distance float64) *Camera {
	if distance <= 0 {
		distance = 100
	}
	c := &Camera{
		Target:      target,
		Yaw:         math.Pi / 4,
		Pitch:       math.Pi / 6,
		Distance:    distance,
		MinDistance: 1,
		MaxDistance: 5000,
	}
	c.home = orbit{target: c.Target, yaw: c.Yaw, pitch: c.Pitch, distance: c.Distance}
	return c
}

// Position returns the eye position.
func (c *Camera) Position() r3.Vec {
	return r3.Add(c.Target, r3.Scale(c.Distance, c.forward()))
}

// forward points from the target to the eye.
func (c *Camera) forward() r3.Vec {
	cp := math.Cos(c.Pitch)
	return r3.Vec{
		X: cp * math.Cos(c.Yaw),
		Y: cp * math.Sin(c.Yaw),
		Z: math.Sin(c.Pitch),
	}
}

// Orbit turns the camera around the target by the given angles in radians.
func (c *Camera) Orbit(dYaw, dPitch float64) {
	c.Yaw = math.Mod(c.Yaw+dYaw, 2*math.Pi)
	c.Pitch = clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
}

// ZoomBy scales the orbit distance, clamped to the distance limits.
func (c *Camera) ZoomBy(factor float64) {
	if factor <= 0 {
		return
	}
	c.Distance = clamp(c.Distance*factor, c.MinDistance, c.MaxDistance)
}

// Pan moves the target in the view plane. dx moves right, dy moves up,
// both in units of the orbit distance.
func (c *Camera) Pan(dx, dy float64) {
	f := c.forward()
	right := r3.Unit(r3.Cross(r3.Vec{Z: 1}, f))
	up := r3.Cross(f, right)
	delta := r3.Add(r3.Scale(-dx*c.Distance, right), r3.Scale(dy*c.Distance, up))
	c.Target = r3.Add(c.Target, delta)
}

// Frame centers the camera on the box [min, max] at a distance that fits
// it in view for the given vertical field of view in degrees.
func (c *Camera) Frame(min, max r3.Vec, fovy float64) {
	c.Target = r3.Scale(0.5, r3.Add(min, max))
	radius := r3.Norm(r3.Sub(max, min)) / 2
	if radius <= 0 {
		return
	}
	half := fovy * math.Pi / 360
	if half <= 0 {
		half = math.Pi / 8
	}
	c.Distance = clamp(radius/math.Sin(half), c.MinDistance, c.MaxDistance)
}

// Ray returns the eye position and the unit direction through screen
// pixel (sx, sy) of a width x height viewport with vertical field of view
// fovy in degrees.
func (c *Camera) Ray(sx, sy, width, height, fovy float64) (origin, dir r3.Vec) {
	origin = c.Position()
	fwd := r3.Scale(-1, c.forward())
	if width <= 0 || height <= 0 {
		return origin, fwd
	}
	right := r3.Unit(r3.Cross(fwd, r3.Vec{Z: 1}))
	up := r3.Cross(right, fwd)

	tanHalf := math.Tan(fovy * math.Pi / 360)
	x := (2*sx/width - 1) * tanHalf * width / height
	y := (1 - 2*sy/height) * tanHalf
	dir = r3.Unit(r3.Add(fwd, r3.Add(r3.Scale(x, right), r3.Scale(y, up))))
	return origin, dir
}

// SetHome records the current orbit as the Reset target.
func (c *Camera) SetHome() {
	c.home = orbit{target: c.Target, yaw: c.Yaw, pitch: c.Pitch, distance: c.Distance}
}

// Reset returns to the home orbit.
func (c *Camera) Reset() {
	c.Target = c.home.target
	c.Yaw = c.home.yaw
	c.Pitch = c.home.pitch
	c.Distance = c.home.distance
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
