package grid

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `ncols 3
nrows 3
xllcorner -180
yllcorner -90
cellsize 1
NODATA_value -9999

1 2 3
4 -9999 6
7 8 9
`

func TestParseHeaderAndRange(t *testing.T) {
	g, err := Parse(sample)
	require.NoError(t, err)

	assert.Equal(t, []string{"ncols", "nrows", "xllcorner", "yllcorner", "cellsize", "NODATA_value"}, g.Header.Keys())
	assert.Equal(t, -180.0, g.Header.XLLCorner())
	assert.Equal(t, -90.0, g.Header.YLLCorner())
	assert.Equal(t, 1.0, g.Header.CellSize())
	assert.Equal(t, 3, g.Rows())
	assert.Equal(t, 3, g.Cols())
	assert.Equal(t, 1.0, g.Min)
	assert.Equal(t, 9.0, g.Max)

	_, ok := g.Value(1, 1)
	assert.False(t, ok, "sentinel cell should be absent")
	v, ok := g.Value(2, 0)
	require.True(t, ok)
	assert.Equal(t, 7.0, v)
}

func TestParseSentinelIsLineLocal(t *testing.T) {
	g, err := Parse("-9999 1 2\nNODATA_value -9999\n-9999 1 2\n")
	require.NoError(t, err)

	v, ok := g.Value(0, 0)
	require.True(t, ok, "sentinel declared later does not apply to earlier rows")
	assert.Equal(t, -9999.0, v)

	_, ok = g.Value(1, 0)
	assert.False(t, ok)
	assert.Equal(t, -9999.0, g.Min)
}

func TestParseInterleavedHeadersAndBlankLines(t *testing.T) {
	g, err := Parse("\n\n1 2 3\ncellsize 0.5\n\n4 5 6\nignored\n")
	require.NoError(t, err)
	assert.Equal(t, 2, g.Rows())
	assert.Equal(t, 0.5, g.Header.CellSize())
}

func TestParseMissingHeaderKeysDefault(t *testing.T) {
	g, err := Parse("1 2 3\n")
	require.NoError(t, err)
	assert.Equal(t, 1.0, g.Header.CellSize())
	assert.Equal(t, 0.0, g.Header.XLLCorner())
	_, ok := g.Header.NoData()
	assert.False(t, ok)
}

func TestParseNonNumericToken(t *testing.T) {
	_, err := Parse("cellsize 1\n1 two 3\n")
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
	assert.Equal(t, "two", perr.Token)
	assert.ErrorIs(t, err, ErrParse)

	_, err = Parse("cellsize one\n")
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseEmptyRange(t *testing.T) {
	g, err := Parse("NODATA_value -1\n-1 -1 -1\n")
	require.NoError(t, err)
	assert.False(t, g.HasRange())
	assert.Equal(t, 0.0, g.Amount(5))
}

func TestAmount(t *testing.T) {
	g, err := Parse("2 4 6\n")
	require.NoError(t, err)
	assert.Equal(t, 0.0, g.Amount(2))
	assert.Equal(t, 0.5, g.Amount(4))
	assert.Equal(t, 1.0, g.Amount(6))

	flat, err := Parse("3 3 3\n")
	require.NoError(t, err)
	assert.Equal(t, 0.0, flat.Amount(3))
}

func TestWriteRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 50; iter++ {
		rows, cols := 1+rng.Intn(6), 3+rng.Intn(6)
		g := randomGrid(rng, rows, cols, 0.3)

		var buf bytes.Buffer
		require.NoError(t, Write(&buf, g))

		back, err := Parse(buf.String())
		require.NoError(t, err)
		require.Equal(t, g.Shape(), back.Shape())
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				want, wok := g.Value(r, c)
				got, gok := back.Value(r, c)
				require.Equal(t, wok, gok, "presence at (%d,%d)", r, c)
				if wok {
					assert.InDelta(t, want, got, 1e-9)
				}
			}
		}
	}
}

func TestWriteRejectsShortRows(t *testing.T) {
	g := New(NewHeader())
	g.Data = [][]float64{{1, 2}}
	assert.Error(t, Write(&bytes.Buffer{}, g))
}

func TestDeriveAbsencePropagation(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for iter := 0; iter < 50; iter++ {
		rows, cols := 1+rng.Intn(5), 3+rng.Intn(5)
		a := randomGrid(rng, rows, cols, 0.25)
		b := randomGrid(rng, rows, cols, 0.25)

		d, err := Derive(a, b, AmountGreaterThan)
		require.NoError(t, err)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				_, aok := a.Value(r, c)
				_, bok := b.Value(r, c)
				_, dok := d.Value(r, c)
				assert.Equal(t, aok && bok, dok, "absence at (%d,%d)", r, c)
			}
		}
	}
}

func TestDeriveValuesAndRange(t *testing.T) {
	men, err := Parse("NODATA_value -9999\n5 1 -9999\n2 2 8\n")
	require.NoError(t, err)
	women, err := Parse("NODATA_value -9999\n3 4 1\n-9999 2 1\n")
	require.NoError(t, err)

	d, err := Derive(men, women, AmountGreaterThan)
	require.NoError(t, err)

	assert.Equal(t, men.Header.Keys(), d.Header.Keys())
	v, ok := d.Value(0, 0)
	require.True(t, ok)
	assert.Equal(t, 2.0, v)
	v, ok = d.Value(0, 1)
	require.True(t, ok)
	assert.Equal(t, 0.0, v)
	_, ok = d.Value(0, 2)
	assert.False(t, ok)
	_, ok = d.Value(1, 0)
	assert.False(t, ok)
	assert.Equal(t, 0.0, d.Min)
	assert.Equal(t, 7.0, d.Max)

	// inputs untouched
	assert.Equal(t, 8.0, men.Max)
	assert.True(t, math.IsNaN(men.Data[0][2]))
}

func TestDeriveShapeMismatch(t *testing.T) {
	a, err := Parse("1 2 3\n")
	require.NoError(t, err)
	b, err := Parse("1 2 3\n4 5 6\n")
	require.NoError(t, err)

	_, err = Derive(a, b, Difference)
	var serr *ShapeMismatchError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 1, serr.Want.Rows)
	assert.Equal(t, 2, serr.Got.Rows)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	c, err := Parse("xllcorner 10\n1 2 3\n")
	require.NoError(t, err)
	assert.ErrorIs(t, a.CheckShape(c), ErrShapeMismatch)
}

func TestCompareFuncs(t *testing.T) {
	fn, err := CompareGreater.Func()
	require.NoError(t, err)
	assert.Equal(t, 3.0, fn(5, 2))
	assert.Equal(t, 0.0, fn(2, 5))

	fn, err = CompareLess.Func()
	require.NoError(t, err)
	assert.Equal(t, 3.0, fn(2, 5))

	fn, err = CompareDifference.Func()
	require.NoError(t, err)
	assert.Equal(t, -3.0, fn(2, 5))

	_, err = Compare("ratio").Func()
	assert.Error(t, err)
}

func randomGrid(rng *rand.Rand, rows, cols int, missing float64) *Grid {
	h := NewHeader()
	h.Set(KeyNCols, float64(cols))
	h.Set(KeyNRows, float64(rows))
	h.Set(KeyXLLCorner, -180)
	h.Set(KeyYLLCorner, -90)
	h.Set(KeyCellSize, 1)
	h.Set(KeyNoData, -9999)

	g := New(h)
	g.Data = make([][]float64, rows)
	for r := range g.Data {
		g.Data[r] = make([]float64, cols)
		for c := range g.Data[r] {
			if rng.Float64() < missing {
				g.Data[r][c] = Absent()
				continue
			}
			v := rng.Float64() * 1000
			g.Data[r][c] = v
			g.observe(v)
		}
	}
	return g
}
