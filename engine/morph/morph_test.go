package morph

import (
	"math/rand"
	"testing"

	"github.com/Carmen-Shannon/oxy-morph/engine/mesh"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func surfaces(n, cells int) []*mesh.Surface {
	out := make([]*mesh.Surface, n)
	for i := range out {
		s := &mesh.Surface{
			Positions: make([]float32, cells*mesh.BoxVertexCount*3),
			Colors:    make([]uint8, cells*mesh.BoxVertexCount*4),
			Indices:   make([]uint32, cells*mesh.BoxIndexCount),
		}
		for c := 0; c < cells; c++ {
			s.Cells = append(s.Cells, mesh.CellRef{Row: 0, Col: c, FirstVertex: uint32(c * mesh.BoxVertexCount)})
		}
		out[i] = s
	}
	return out
}

func newMux(t *testing.T, n int, options ...MultiplexerOption) Multiplexer {
	t.Helper()
	m, err := NewMultiplexer(surfaces(n, 2), options...)
	require.NoError(t, err)
	return m
}

func TestSelectTopKByWeight(t *testing.T) {
	m := newMux(t, 6)
	a := m.SelectActiveChannels([]float32{0.0625, 0.25, 0.25, 0.0625, 0.25, 0.125})

	require.Len(t, a.Positions, 4)
	assert.Equal(t, []int{1, 2, 4, 5}, variantsOf(a.Positions))
	assert.Equal(t, []int{1, 2, 4, 5}, variantsOf(a.Colors))
	for i, b := range a.Positions {
		assert.Equal(t, i, b.Channel)
	}
	// the base was cut, so the bound weights are rescaled to cover its share
	assert.InDeltaSlice(t, []float32{0.25 / 0.875, 0.25 / 0.875, 0.25 / 0.875, 0.125 / 0.875}, a.PositionWeights(), 1e-6)
}

func TestSelectTiesPreferLowerIndex(t *testing.T) {
	m := newMux(t, 8)
	a := m.SelectActiveChannels([]float32{0.125, 0.125, 0.125, 0.125, 0.125, 0.125, 0.125, 0.125})
	assert.Equal(t, []int{0, 1, 2, 3}, variantsOf(a.Positions))
	assert.Equal(t, []float32{0.125, 0.125, 0.125, 0.125}, a.PositionWeights(), "the cut share is left to the base on channel 0")
}

func TestSelectDropsZeros(t *testing.T) {
	m := newMux(t, 4)
	a := m.SelectActiveChannels([]float32{0, 1, 0, 0})

	assert.Equal(t, []int{1}, variantsOf(a.Positions))
	assert.Equal(t, []float32{1, 0, 0, 0}, a.PositionWeights())
	assert.Equal(t, []float32{1, 0, 0, 0}, a.ColorWeights())
}

func TestSelectUsesAbsoluteWeight(t *testing.T) {
	m := newMux(t, 3, WithPositionChannels(2), WithColorChannels(2))
	a := m.SelectActiveChannels([]float32{2.5, -3, 1.5})
	assert.Equal(t, []int{0, 1}, variantsOf(a.Positions))
	assert.Equal(t, []float32{2.5, -3}, a.PositionWeights())
}

func TestSelectKeepsTransitionEndpoints(t *testing.T) {
	m := newMux(t, 8)
	for _, w := range [][]float32{
		{0.999, 0, 0, 0, 0, 0, 0, 0.001},
		{0.5, 0, 0, 0, 0, 0, 0, 0.5},
		{0.001, 0, 0, 0, 0, 0, 0, 0.999},
	} {
		a := m.SelectActiveChannels(w)
		assert.Equal(t, []int{0, 7}, variantsOf(a.Positions))
		assert.Equal(t, []int{0, 7}, variantsOf(a.Colors))
	}
}

func TestSelectSeparateCapacities(t *testing.T) {
	m := newMux(t, 5, WithPositionChannels(3), WithColorChannels(2))
	a := m.SelectActiveChannels([]float32{0.0625, 0.125, 0.1875, 0.25, 0.375})
	assert.Equal(t, []int{2, 3, 4}, variantsOf(a.Positions))
	assert.Equal(t, []int{3, 4}, variantsOf(a.Colors))
	assert.Len(t, a.PositionWeights(), 3)
	assert.Len(t, a.ColorWeights(), 2)
}

func TestSelectProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	m := newMux(t, 10)
	for iter := 0; iter < 500; iter++ {
		w := make([]float32, 10)
		for i := range w {
			switch rng.Intn(3) {
			case 0:
				w[i] = 0
			case 1:
				w[i] = 0.5
			default:
				w[i] = rng.Float32()
			}
		}
		a := m.SelectActiveChannels(w)
		require.LessOrEqual(t, len(a.Positions), 4)

		eff := baseAdjusted(w)
		baseBound := len(a.Positions) > 0 && a.Positions[0].Variant == 0
		chosen := map[int]bool{}
		var sum float32
		for i, b := range a.Positions {
			assert.NotZero(t, b.Weight)
			if baseBound {
				assert.Equal(t, eff[b.Variant], b.Weight)
			}
			if i > 0 {
				assert.Less(t, a.Positions[i-1].Variant, b.Variant)
			}
			chosen[b.Variant] = true
			sum += b.Weight
		}
		if !baseBound {
			assert.InDelta(t, 1, sum, 1e-4)
		}
		// no unchosen nonzero variant outranks a chosen one, and on ties the chosen one has the lower index
		for v, wv := range eff {
			if chosen[v] || wv == 0 {
				continue
			}
			for _, b := range a.Positions {
				assert.GreaterOrEqual(t, math32.Abs(eff[b.Variant]), math32.Abs(wv))
				if math32.Abs(eff[b.Variant]) == math32.Abs(wv) {
					assert.Less(t, b.Variant, v)
				}
			}
		}
	}
}

func TestSelectGivesLeftoverWeightToBase(t *testing.T) {
	m := newMux(t, 4)

	a := m.SelectActiveChannels([]float32{0, 0.5, 0, 0})
	assert.Equal(t, []Binding{{Channel: 0, Variant: 0, Weight: 0.5}, {Channel: 1, Variant: 1, Weight: 0.5}}, a.Positions)
	assert.Equal(t, a.Positions, a.Colors)
	assert.Equal(t, []float32{0.5, 0.5, 0, 0}, a.PositionWeights())

	a = m.SelectActiveChannels([]float32{0, 0, 0, 0})
	assert.Equal(t, []Binding{{Channel: 0, Variant: 0, Weight: 1}}, a.Positions)

	a = m.SelectActiveChannels([]float32{0, 1, 0, 1})
	assert.Equal(t, []int{0, 1, 3}, variantsOf(a.Positions))
	assert.Equal(t, []float32{-1, 1, 1, 0}, a.PositionWeights())
}

func TestSelectRescalesWhenBaseIsCut(t *testing.T) {
	m := newMux(t, 3, WithPositionChannels(1), WithColorChannels(1))
	a := m.SelectActiveChannels([]float32{0, 0.25, 0.75})
	assert.Equal(t, []Binding{{Channel: 0, Variant: 2, Weight: 1}}, a.Positions)
}

func TestResolveReportsBindingChanges(t *testing.T) {
	m := newMux(t, 4)

	_, changed := m.Resolve([]float32{1, 0, 0, 0})
	assert.True(t, changed, "first resolve always binds")

	_, changed = m.Resolve([]float32{1, 0, 0, 0})
	assert.False(t, changed)

	_, changed = m.Resolve([]float32{0.75, 0.25, 0, 0})
	assert.True(t, changed)

	a, changed := m.Resolve([]float32{0.375, 0.625, 0, 0})
	assert.False(t, changed, "weights moved but the mapping did not")
	assert.Equal(t, []float32{0.375, 0.625, 0, 0}, a.PositionWeights())

	_, changed = m.Resolve([]float32{0, 1, 0, 0})
	assert.True(t, changed)
}

func TestNewMultiplexerValidates(t *testing.T) {
	s := surfaces(2, 2)
	s[1] = surfaces(1, 3)[0]
	_, err := NewMultiplexer(s)
	assert.ErrorIs(t, err, mesh.ErrTopologyMismatch)

	_, err = NewMultiplexer(nil)
	assert.Error(t, err)

	_, err = NewMultiplexer(surfaces(2, 1), WithPositionChannels(0))
	assert.Error(t, err)
}

func TestBlendState(t *testing.T) {
	b := NewBlendState(4)
	assert.Equal(t, []float32{1, 0, 0, 0}, b.Weights())
	assert.Equal(t, 4, b.Len())

	require.NoError(t, b.Set([]float32{0, 0, 1, 0}))
	snap := b.Snapshot()
	snap[0] = 5
	assert.Equal(t, []float32{0, 0, 1, 0}, b.Weights())

	assert.Error(t, b.Set([]float32{1}))
	assert.Equal(t, []float32{0, 0, 0}, OneHot(3, 7))
}
