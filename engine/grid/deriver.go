package grid

import (
	"fmt"
	"math"
)

// CompareFunc combines the present values of two cells into a derived value.
type CompareFunc func(a, b float64) float64

// Compare identifies one of the named CompareFuncs, as referenced from a manifest.
type Compare string

const (
	// CompareGreater selects AmountGreaterThan.
	CompareGreater Compare = "greater"

	// CompareLess selects AmountLessThan.
	CompareLess Compare = "less"

	// CompareDifference selects Difference.
	CompareDifference Compare = "difference"
)

// Func resolves c to its CompareFunc.
//
// Returns:
//   - CompareFunc: the comparison function
//   - error: an error if c is not a known comparison
func (c Compare) Func() (CompareFunc, error) {
	switch c {
	case CompareGreater:
		return AmountGreaterThan, nil
	case CompareLess:
		return AmountLessThan, nil
	case CompareDifference:
		return Difference, nil
	default:
		return nil, fmt.Errorf("unknown comparison %q", string(c))
	}
}

// AmountGreaterThan is the positive excess of a over b, clamped at 0.
func AmountGreaterThan(a, b float64) float64 {
	return math.Max(a-b, 0)
}

// AmountLessThan is the positive shortfall of a under b, clamped at 0.
func AmountLessThan(a, b float64) float64 {
	return math.Max(b-a, 0)
}

// Difference is the signed a - b.
func Difference(a, b float64) float64 {
	return a - b
}

// Derive builds a new grid by applying fn cell-wise to a and b. A cell is absent in the
// result whenever it is absent in either input. The header is copied from a and Min/Max
// are recomputed over the result. Neither input is modified.
//
// Parameters:
//   - a: the base grid
//   - b: the grid compared against
//   - fn: the cell-wise comparison
//
// Returns:
//   - *Grid: the derived grid
//   - error: a *ShapeMismatchError if a and b do not cover the same cells
func Derive(a, b *Grid, fn CompareFunc) (*Grid, error) {
	if err := a.CheckShape(b); err != nil {
		return nil, err
	}

	out := New(a.Header.Clone())
	out.Data = make([][]float64, len(a.Data))
	for r, row := range a.Data {
		derived := make([]float64, len(row))
		for c := range row {
			av, aok := a.Value(r, c)
			bv, bok := b.Value(r, c)
			if !aok || !bok {
				derived[c] = Absent()
				continue
			}
			v := fn(av, bv)
			derived[c] = v
			out.observe(v)
		}
		out.Data[r] = derived
	}
	return out, nil
}
