package graph

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"
)

// maxTilt is the largest per-child pitch or roll, in radians, at zero straightness.
const maxTilt = 10 * math.Pi / 180

// pairOffsets are the local-frame offsets for children placed in pairs.
// Two pairs use all four; a single pair uses the last two.
var pairOffsets = [4]r3.Vec{
	{X: 1, Z: 1},
	{X: -1, Z: 1},
	{Y: 1, Z: 1},
	{Y: -1, Z: 1},
}

// localOffsets returns the unjittered local-frame offset of each of count
// children, indexed in layout order (last child first). An odd count puts
// the first laid out child straight up.
func localOffsets(count int) []r3.Vec {
	out := make([]r3.Vec, 0, count)
	if count%2 == 1 {
		out = append(out, Up)
	}
	pairs := pairOffsets[len(pairOffsets)-2*(count/2):]
	for _, o := range pairs {
		out = append(out, r3.Unit(o))
	}
	return out
}

// PlaceChildren positions the available children of node n around the
// parent's direction. An odd child goes straight along the parent
// direction, the rest in symmetric pairs. All children share one random yaw
// and each gets its own tilt scaled by (1 - straightness).
func (g *Graph) PlaceChildren(n int, straightness float64, rng *rand.Rand) {
	children := g.AvailableChildren(n, nil)
	if len(children) == 0 {
		return
	}

	parent := g.Nodes[n]
	frame := alignUp(parent.Dir)
	yaw := r3.NewRotation(rng.Float64()*2*math.Pi, Up)
	jitter := (1 - straightness) * maxTilt

	offsets := localOffsets(len(children))
	for k, i := 0, len(children)-1; i >= 0; k, i = k+1, i-1 {
		local := offsets[k]
		pitch := (rng.Float64()*2 - 1) * jitter
		roll := (rng.Float64()*2 - 1) * jitter
		local = r3.NewRotation(pitch, r3.Vec{X: 1}).Rotate(local)
		local = r3.NewRotation(roll, r3.Vec{Y: 1}).Rotate(local)
		local = yaw.Rotate(local)

		child := children[i]
		g.Nodes[child].Pos = r3.Add(parent.Pos, frame(local))
		g.RecalculateDirection(child)
	}
}

// alignUp returns a function rotating the world up axis onto dir.
func alignUp(dir r3.Vec) func(r3.Vec) r3.Vec {
	dir = unitOr(dir, Up)
	cos := r3.Dot(Up, dir)
	axis := r3.Cross(Up, dir)

	if r3.Norm(axis) < 1e-9 {
		if cos > 0 {
			return func(v r3.Vec) r3.Vec { return v }
		}
		flip := r3.NewRotation(math.Pi, r3.Vec{X: 1})
		return flip.Rotate
	}

	rot := r3.NewRotation(math.Acos(math.Max(-1, math.Min(1, cos))), r3.Unit(axis))
	return rot.Rotate
}
