package mesh

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-morph/engine/grid"
)

// Mask marks every cell that is absent in at least one variant. Only cells clear in the
// mask are emitted, so every surface built against one Mask shares a single topology.
type Mask struct {
	shape   grid.Shape
	missing [][]bool
	present int
}

// NewMask builds the union-of-missingness over grids. Every grid must share the shape of
// the first one.
//
// Parameters:
//   - grids: the variant grids in display order
//
// Returns:
//   - *Mask: the combined mask
//   - error: a *grid.ShapeMismatchError if any grid differs in shape, or an error if no grid is given
func NewMask(grids ...*grid.Grid) (*Mask, error) {
	if len(grids) == 0 {
		return nil, errors.New("mask needs at least one grid")
	}
	first := grids[0]
	for _, g := range grids[1:] {
		if err := first.CheckShape(g); err != nil {
			return nil, err
		}
	}

	shape := first.Shape()
	m := &Mask{
		shape:   shape,
		missing: make([][]bool, shape.Rows),
	}
	for r := range m.missing {
		m.missing[r] = make([]bool, shape.Cols)
		for c := range m.missing[r] {
			for _, g := range grids {
				if _, ok := g.Value(r, c); !ok {
					m.missing[r][c] = true
					break
				}
			}
			if !m.missing[r][c] {
				m.present++
			}
		}
	}
	return m, nil
}

// Shape returns the grid shape the mask was built for.
func (m *Mask) Shape() grid.Shape {
	return m.shape
}

// Missing reports whether the cell at (row, col) is excluded. Cells outside the shape are excluded.
func (m *Mask) Missing(row, col int) bool {
	if row < 0 || row >= len(m.missing) || col < 0 || col >= len(m.missing[row]) {
		return true
	}
	return m.missing[row][col]
}

// Present returns the number of cells that survive the mask.
func (m *Mask) Present() int {
	return m.present
}
