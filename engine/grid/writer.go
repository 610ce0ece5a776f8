package grid

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// DefaultNoData is written as the sentinel when a grid with absent cells declares none.
const DefaultNoData = -9999.0

// Write serialises g in the same text form Parse reads. Header pairs come first in their
// declaration order, followed by one line per row. Absent cells are written as the
// declared sentinel; if none is declared and the grid has absent cells, DefaultNoData
// is declared and used.
//
// Parameters:
//   - w: the destination
//   - g: the grid to serialise
//
// Returns:
//   - error: an error if a row is too short to be read back as data, a present value
//     collides with the sentinel, or the write fails
func Write(w io.Writer, g *Grid) error {
	header := g.Header.Clone()
	if _, ok := header.NoData(); !ok && hasAbsent(g) {
		header.Set(KeyNoData, DefaultNoData)
	}
	noData, hasSentinel := header.NoData()

	bw := bufio.NewWriter(w)
	for _, key := range header.Keys() {
		v, _ := header.Get(key)
		if _, err := fmt.Fprintf(bw, "%s %s\n", key, formatValue(v)); err != nil {
			return fmt.Errorf("failed to write header %q: %w", key, err)
		}
	}

	sentinel := formatValue(noData)
	buf := make([]byte, 0, 64)
	for r, row := range g.Data {
		if len(row) <= 2 {
			return fmt.Errorf("row %d: %d cells would be read back as a header line", r, len(row))
		}
		buf = buf[:0]
		for c, v := range row {
			if c > 0 {
				buf = append(buf, ' ')
			}
			switch {
			case IsAbsent(v):
				buf = append(buf, sentinel...)
			case hasSentinel && v == noData:
				return fmt.Errorf("row %d col %d: value %g collides with the sentinel", r, c, v)
			default:
				buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
			}
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}
	return bw.Flush()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func hasAbsent(g *Grid) bool {
	for _, row := range g.Data {
		for _, v := range row {
			if IsAbsent(v) {
				return true
			}
		}
	}
	return false
}
