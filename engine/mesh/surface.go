package mesh

import (
	"errors"
	"fmt"
)

// ErrTopologyMismatch is matched by every *TopologyMismatchError through errors.Is.
var ErrTopologyMismatch = errors.New("surface topology mismatch")

// HueRange holds the hue endpoints, in turns, that a variant's magnitude is mapped across.
// Ranges may run backwards or past 1.0; hues wrap.
type HueRange [2]float64

// CellRef records which grid cell produced a run of BoxVertexCount vertices.
type CellRef struct {
	Row         int
	Col         int
	FirstVertex uint32
}

// Surface is the merged geometry of one variant: one box per surviving cell, with the
// per-cell transform baked into the positions and a flat colour per box.
// A Surface is read-only once built.
type Surface struct {
	// Positions holds xyz triples, one per vertex.
	Positions []float32

	// Colors holds RGBA bytes, one quadruple per vertex.
	Colors []uint8

	// Indices holds triangle-list indices into the vertex arrays.
	Indices []uint32

	// Cells maps each emitted box back to its grid cell, in emission order.
	Cells []CellRef
}

// VertexCount returns the number of vertices in the surface.
func (s *Surface) VertexCount() int {
	return len(s.Positions) / 3
}

// IndexCount returns the number of indices in the surface.
func (s *Surface) IndexCount() int {
	return len(s.Indices)
}

// TopologyMismatchError reports a surface whose vertex layout differs from the first surface.
type TopologyMismatchError struct {
	// Index is the position of the offending surface in the validated list.
	Index int

	// Reason describes the first difference found.
	Reason string
}

func (e *TopologyMismatchError) Error() string {
	return fmt.Sprintf("surface %d does not share topology with surface 0: %s", e.Index, e.Reason)
}

func (e *TopologyMismatchError) Is(target error) bool {
	return target == ErrTopologyMismatch
}

// ValidateTopology checks that every surface has the vertex count, index count, and
// cell-to-vertex mapping of the first. Morphing between surfaces is only meaningful when
// this holds.
//
// Parameters:
//   - surfaces: the surfaces to compare
//
// Returns:
//   - error: a *TopologyMismatchError describing the first difference, or nil
func ValidateTopology(surfaces ...*Surface) error {
	if len(surfaces) < 2 {
		return nil
	}
	ref := surfaces[0]
	for i, s := range surfaces[1:] {
		idx := i + 1
		if s.VertexCount() != ref.VertexCount() {
			return &TopologyMismatchError{Index: idx, Reason: fmt.Sprintf("vertex count %d, want %d", s.VertexCount(), ref.VertexCount())}
		}
		if len(s.Colors) != len(ref.Colors) {
			return &TopologyMismatchError{Index: idx, Reason: fmt.Sprintf("color count %d, want %d", len(s.Colors), len(ref.Colors))}
		}
		if s.IndexCount() != ref.IndexCount() {
			return &TopologyMismatchError{Index: idx, Reason: fmt.Sprintf("index count %d, want %d", s.IndexCount(), ref.IndexCount())}
		}
		if len(s.Cells) != len(ref.Cells) {
			return &TopologyMismatchError{Index: idx, Reason: fmt.Sprintf("cell count %d, want %d", len(s.Cells), len(ref.Cells))}
		}
		for c := range s.Cells {
			if s.Cells[c] != ref.Cells[c] {
				return &TopologyMismatchError{Index: idx, Reason: fmt.Sprintf("cell %d is %+v, want %+v", c, s.Cells[c], ref.Cells[c])}
			}
		}
	}
	return nil
}
