// Package export writes grown plants to files: segment tables as CSV and
// meshes as binary STL.
package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/grove/plant"
)

// SegmentRecord is one branch segment in world coordinates.
type SegmentRecord struct {
	Plant    int     `csv:"plant"`
	Module   int     `csv:"module"`
	Index    int     `csv:"index"`
	StartX   float64 `csv:"start_x"`
	StartY   float64 `csv:"start_y"`
	StartZ   float64 `csv:"start_z"`
	EndX     float64 `csv:"end_x"`
	EndY     float64 `csv:"end_y"`
	EndZ     float64 `csv:"end_z"`
	Diameter float64 `csv:"diameter"`
}

// Records flattens the segments of every plant in depth-first order.
func Records(plants []*plant.Plant) []SegmentRecord {
	var out []SegmentRecord
	for _, p := range plants {
		for i, s := range p.Segments() {
			out = append(out, SegmentRecord{
				Plant:    p.ID,
				Module:   s.Module,
				Index:    i,
				StartX:   s.Start.X,
				StartY:   s.Start.Y,
				StartZ:   s.Start.Z,
				EndX:     s.End.X,
				EndY:     s.End.Y,
				EndZ:     s.End.Z,
				Diameter: s.Diameter,
			})
		}
	}
	return out
}

// WriteSegmentsCSV writes every plant segment to w with a header row.
func WriteSegmentsCSV(w io.Writer, plants []*plant.Plant) error {
	records := Records(plants)
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("writing segments: %w", err)
	}
	return nil
}
