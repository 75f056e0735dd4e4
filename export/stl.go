package export

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/grove/plant"
)

// ErrEmptyMesh is returned when no segment is long enough to mesh.
var ErrEmptyMesh = errors.New("no segments to mesh")

// minRadius keeps hairline branches printable.
const minRadius = 0.05

// DefaultMeshCells is the marching cubes resolution along the longest axis.
const DefaultMeshCells = 120

// Solid unions one cylinder per segment.
func Solid(segs []plant.Segment) (sdf.SDF3, error) {
	var parts []sdf.SDF3
	for _, s := range segs {
		dx := s.End.X - s.Start.X
		dy := s.End.Y - s.Start.Y
		dz := s.End.Z - s.Start.Z
		length := math.Sqrt(dx*dx + dy*dy + dz*dz)
		if length < 1e-6 {
			continue
		}

		cyl, err := sdf.Cylinder3D(length, math.Max(s.Diameter/2, minRadius), 0)
		if err != nil {
			return nil, fmt.Errorf("segment of module %d: %w", s.Module, err)
		}

		// Cylinder3D runs along Z; tilt by pitch about Y, then turn by yaw about Z
		pitch := math.Acos(math.Max(-1, math.Min(1, dz/length)))
		yaw := math.Atan2(dy, dx)
		mid := toV3(r3.Scale(0.5, r3.Add(s.Start, s.End)))
		m := sdf.Translate3d(mid).Mul(sdf.RotateZ(yaw)).Mul(sdf.RotateY(pitch))
		parts = append(parts, sdf.Transform3D(cyl, m))
	}
	if len(parts) == 0 {
		return nil, ErrEmptyMesh
	}
	return sdf.Union3D(parts...), nil
}

// WriteSTL meshes the segments with marching cubes and writes a binary STL
// to w. It returns the number of triangles written.
func WriteSTL(w io.Writer, segs []plant.Segment, cells int) (int, error) {
	solid, err := Solid(segs)
	if err != nil {
		return 0, err
	}
	if cells <= 0 {
		cells = DefaultMeshCells
	}

	triangles := render.ToTriangles(solid, render.NewMarchingCubesUniform(cells))

	bw := bufio.NewWriter(w)
	var header [80]byte
	copy(header[:], "grove plant mesh")
	if _, err := bw.Write(header[:]); err != nil {
		return 0, fmt.Errorf("writing stl header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(triangles))); err != nil {
		return 0, fmt.Errorf("writing stl header: %w", err)
	}

	for _, tri := range triangles {
		n := tri.Normal()
		rec := [12]float32{float32(n.X), float32(n.Y), float32(n.Z)}
		for j := 0; j < 3; j++ {
			v := tri[j]
			rec[3+3*j] = float32(v.X)
			rec[4+3*j] = float32(v.Y)
			rec[5+3*j] = float32(v.Z)
		}
		if err := binary.Write(bw, binary.LittleEndian, rec); err != nil {
			return 0, fmt.Errorf("writing stl facet: %w", err)
		}
		if err := binary.Write(bw, binary.LittleEndian, uint16(0)); err != nil {
			return 0, fmt.Errorf("writing stl facet: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("writing stl: %w", err)
	}
	return len(triangles), nil
}

// SaveSTL writes the mesh of every plant to path. A failed write removes
// the partial file.
func SaveSTL(path string, plants []*plant.Plant, cells int) (int, error) {
	var segs []plant.Segment
	for _, p := range plants {
		segs = append(segs, p.Segments()...)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}
	n, werr := WriteSTL(f, segs, cells)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		if rerr := os.Remove(path); rerr != nil {
			slog.Warn("removing partial stl", "path", path, "error", rerr)
		}
		return 0, werr
	}
	return n, nil
}

func toV3(v r3.Vec) v3.Vec { return v3.Vec{X: v.X, Y: v.Y, Z: v.Z} }
