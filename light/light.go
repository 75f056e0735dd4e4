// Package light scores how much light a module receives from the overlap of
// its bounding sphere with neighboring spheres.
package light

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sphere is a bounding sphere.
type Sphere struct {
	Center r3.Vec
	Radius float64
}

// Volume returns the sphere volume.
func (s Sphere) Volume() float64 {
	return 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius
}

// Intersects reports whether the spheres overlap with positive volume.
func (s Sphere) Intersects(o Sphere) bool {
	return r3.Norm(r3.Sub(s.Center, o.Center)) < s.Radius+o.Radius
}

// lens evaluates the closed-form intersection volume of two spheres whose
// centers are d apart. The result is only meaningful for |R-r| < d < R+r.
func lens(d, R, r float64) float64 {
	s := R + r - d
	return math.Pi * s * s * (d*d + 2*d*r - 3*r*r + 2*d*R + 6*r*R - 3*R*R) / (12 * d)
}

// IntersectionVolume returns the volume shared by a and b. It is zero for
// separate spheres and the smaller sphere's volume when one encloses the other.
func IntersectionVolume(a, b Sphere) float64 {
	d := r3.Norm(r3.Sub(a.Center, b.Center))
	if d >= a.Radius+b.Radius {
		return 0
	}
	if d <= math.Abs(a.Radius-b.Radius) {
		return math.Min(a.Volume(), b.Volume())
	}
	return math.Max(lens(d, a.Radius, b.Radius), 0)
}

// Contribution is the volume neighbor adds to own's collision score. An
// enclosed pair counts the neighbor's full volume.
func Contribution(own, neighbor Sphere) float64 {
	d := r3.Norm(r3.Sub(own.Center, neighbor.Center))
	if d >= own.Radius+neighbor.Radius {
		return 0
	}
	if d <= math.Abs(own.Radius-neighbor.Radius) {
		return neighbor.Volume()
	}
	v := lens(d, own.Radius, neighbor.Radius)
	if v < 0 {
		return neighbor.Volume()
	}
	return v
}

// CollisionScore sums the neighbor contributions normalized by own's volume.
// The score may exceed 1.
func CollisionScore(own Sphere, neighbors []Sphere) float64 {
	vol := own.Volume()
	if vol <= 0 {
		return 0
	}
	var sum float64
	for _, n := range neighbors {
		sum += Contribution(own, n)
	}
	return math.Max(sum, 0) / vol
}

// Exposure converts a collision score into a light exposure in [0, 1].
func Exposure(score float64) float64 {
	if score < 0 || math.IsNaN(score) {
		score = 0
	}
	e := math.Exp(-score)
	return math.Max(0, math.Min(1, e))
}

// Bound returns the sphere centered on the mean of points with radius
// reaching the farthest point, floored at minRadius.
func Bound(points []r3.Vec, minRadius float64) Sphere {
	if len(points) == 0 {
		return Sphere{Radius: minRadius}
	}

	var c r3.Vec
	for _, p := range points {
		c = r3.Add(c, p)
	}
	c = r3.Scale(1/float64(len(points)), c)

	var r2 float64
	for _, p := range points {
		r2 = math.Max(r2, r3.Norm2(r3.Sub(p, c)))
	}

	r := math.Sqrt(r2)
	if r < minRadius || math.IsNaN(r) {
		r = minRadius
	}
	return Sphere{Center: c, Radius: r}
}
