// Package grid reads, writes, and combines the whitespace-delimited raster format used for
// gridded population datasets: a block of two-token header lines followed by rows of cell
// values, where a declared sentinel marks cells without a measurement.
package grid

import (
	"fmt"
	"maps"
	"math"
	"slices"
)

// Recognised header keys.
const (
	KeyNCols     = "ncols"
	KeyNRows     = "nrows"
	KeyXLLCorner = "xllcorner"
	KeyYLLCorner = "yllcorner"
	KeyCellSize  = "cellsize"
	KeyNoData    = "NODATA_value"
)

// Header holds the key/value metadata of a grid in declaration order.
type Header struct {
	keys   []string
	values map[string]float64
}

// NewHeader creates an empty Header.
//
// Returns:
//   - Header: a header with no keys
func NewHeader() Header {
	return Header{values: make(map[string]float64)}
}

// Set assigns a value to key. The key keeps its original position if already present.
//
// Parameters:
//   - key: the header key
//   - value: the numeric value
func (h *Header) Set(key string, value float64) {
	if h.values == nil {
		h.values = make(map[string]float64)
	}
	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.values[key] = value
}

// Get returns the value stored for key.
//
// Parameters:
//   - key: the header key
//
// Returns:
//   - float64: the stored value, or 0 if absent
//   - bool: true if the key was declared
func (h Header) Get(key string) (float64, bool) {
	v, ok := h.values[key]
	return v, ok
}

// Keys returns the declared keys in declaration order.
//
// Returns:
//   - []string: a copy of the key list
func (h Header) Keys() []string {
	return slices.Clone(h.keys)
}

// Clone returns a deep copy of the header.
//
// Returns:
//   - Header: an independent copy
func (h Header) Clone() Header {
	return Header{keys: slices.Clone(h.keys), values: maps.Clone(h.values)}
}

// CellSize returns the declared cell size in degrees, defaulting to 1.
func (h Header) CellSize() float64 {
	if v, ok := h.values[KeyCellSize]; ok && v != 0 {
		return v
	}
	return 1
}

// XLLCorner returns the longitude of the lower-left corner, defaulting to 0.
func (h Header) XLLCorner() float64 {
	return h.values[KeyXLLCorner]
}

// YLLCorner returns the latitude of the lower-left corner, defaulting to 0.
func (h Header) YLLCorner() float64 {
	return h.values[KeyYLLCorner]
}

// NoData returns the declared sentinel value, if any.
func (h Header) NoData() (float64, bool) {
	v, ok := h.values[KeyNoData]
	return v, ok
}

// Shape identifies the spatial layout a grid covers. Grids may only be combined cell-for-cell
// when their shapes are equal.
type Shape struct {
	Rows      int
	Cols      int
	XLLCorner float64
	YLLCorner float64
	CellSize  float64
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%d @ (%g, %g) cell %g", s.Rows, s.Cols, s.XLLCorner, s.YLLCorner, s.CellSize)
}

// Grid is a row-major raster of optional cell values. Absent cells hold NaN.
// Rows may be ragged; cells past the end of a short row are absent.
type Grid struct {
	// Header carries every key/value pair read from the source.
	Header Header

	// Data holds the cell values, first row first.
	Data [][]float64

	// Min is the smallest present value, or +Inf when no cell is present.
	Min float64

	// Max is the largest present value, or -Inf when no cell is present.
	Max float64
}

// New creates an empty grid with the given header and no observed range.
//
// Parameters:
//   - header: the grid metadata
//
// Returns:
//   - *Grid: an empty grid
func New(header Header) *Grid {
	return &Grid{
		Header: header,
		Min:    math.Inf(1),
		Max:    math.Inf(-1),
	}
}

// Absent is the marker stored for cells without a value.
func Absent() float64 {
	return math.NaN()
}

// IsAbsent reports whether v is the absent marker.
func IsAbsent(v float64) bool {
	return math.IsNaN(v)
}

// Rows returns the number of data rows.
func (g *Grid) Rows() int {
	return len(g.Data)
}

// Cols returns the length of the widest row.
func (g *Grid) Cols() int {
	cols := 0
	for _, row := range g.Data {
		cols = max(cols, len(row))
	}
	return cols
}

// Value returns the cell at (row, col).
//
// Parameters:
//   - row: zero-based row index
//   - col: zero-based column index
//
// Returns:
//   - float64: the cell value when present
//   - bool: false if the cell is absent or out of range
func (g *Grid) Value(row, col int) (float64, bool) {
	if row < 0 || row >= len(g.Data) || col < 0 || col >= len(g.Data[row]) {
		return 0, false
	}
	v := g.Data[row][col]
	if IsAbsent(v) {
		return 0, false
	}
	return v, true
}

// HasRange reports whether at least one present cell contributed to Min/Max.
func (g *Grid) HasRange() bool {
	return g.Min <= g.Max
}

// Amount normalises v against the grid's range to [0, 1]. A grid whose present
// cells all share one value maps every cell to 0.
//
// Parameters:
//   - v: a value drawn from this grid
//
// Returns:
//   - float64: (v - Min) / (Max - Min), or 0 for an empty range
func (g *Grid) Amount(v float64) float64 {
	span := g.Max - g.Min
	if !g.HasRange() || span == 0 {
		return 0
	}
	return (v - g.Min) / span
}

// Shape returns the spatial layout of the grid.
func (g *Grid) Shape() Shape {
	return Shape{
		Rows:      g.Rows(),
		Cols:      g.Cols(),
		XLLCorner: g.Header.XLLCorner(),
		YLLCorner: g.Header.YLLCorner(),
		CellSize:  g.Header.CellSize(),
	}
}

// CheckShape verifies that other covers the same cells as g.
//
// Parameters:
//   - other: the grid to compare against
//
// Returns:
//   - error: a *ShapeMismatchError if the shapes differ, nil otherwise
func (g *Grid) CheckShape(other *Grid) error {
	want, got := g.Shape(), other.Shape()
	if want != got {
		return &ShapeMismatchError{Want: want, Got: got}
	}
	return nil
}

// observe folds a present value into the running range.
func (g *Grid) observe(v float64) {
	g.Min = math.Min(g.Min, v)
	g.Max = math.Max(g.Max, v)
}
