package morph

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/Carmen-Shannon/oxy-morph/engine/mesh"
	"github.com/chewxy/math32"
)

// Binding places one variant into one morph channel.
type Binding struct {
	// Channel is the slot index in [0, capacity).
	Channel int

	// Variant is the index of the variant surface bound to the slot.
	Variant int

	// Weight is the weight the channel is drawn with at selection time. For variant 0 it
	// includes the share the other weights leave unassigned.
	Weight float32
}

// Assignment is the channel layout for one frame.
type Assignment struct {
	// Positions are the position channel bindings, in ascending variant order.
	Positions []Binding

	// Colors are the colour channel bindings, in ascending variant order.
	Colors []Binding

	positionCap int
	colorCap    int
}

// PositionWeights returns a capacity-sized weight array; unbound channels carry 0.
func (a Assignment) PositionWeights() []float32 {
	return channelWeights(a.Positions, a.positionCap)
}

// ColorWeights returns a capacity-sized weight array; unbound channels carry 0.
func (a Assignment) ColorWeights() []float32 {
	return channelWeights(a.Colors, a.colorCap)
}

// SameBindings reports whether b places the same variants in the same channels as a,
// ignoring weights.
func (a Assignment) SameBindings(b Assignment) bool {
	return sameChannels(a.Positions, b.Positions) && sameChannels(a.Colors, b.Colors)
}

func channelWeights(bindings []Binding, capacity int) []float32 {
	w := make([]float32, capacity)
	for _, b := range bindings {
		w[b.Channel] = b.Weight
	}
	return w
}

func sameChannels(a, b []Binding) bool {
	return slices.EqualFunc(a, b, func(x, y Binding) bool {
		return x.Channel == y.Channel && x.Variant == y.Variant
	})
}

// multiplexer is the implementation of the Multiplexer interface.
type multiplexer struct {
	surfaces []*mesh.Surface

	positionChannels int
	colorChannels    int

	last     Assignment
	resolved bool

	logger *slog.Logger
}

// Multiplexer performs admission control over which variants are live morph sources.
// The draw stage exposes a small fixed number of channels while there may be more variants;
// each frame the variants with the largest weights win a channel.
type Multiplexer interface {
	// SelectActiveChannels picks at most capacity variants by descending absolute weight,
	// lower index first on ties, re-sorts the winners by index, and drops zero weights.
	// Position and colour channels use the same ranking, each cut at its own capacity.
	// Whatever the weights leave unassigned (1 minus their sum) belongs to variant 0, the
	// base surface, and is ranked and bound as part of its weight.
	//
	// Parameters:
	//   - weights: one weight per variant
	//
	// Returns:
	//   - Assignment: the channel layout
	SelectActiveChannels(weights []float32) Assignment

	// Resolve selects channels for weights and reports whether the channel-to-variant
	// mapping differs from the previous Resolve, so callers only rebind buffers on change.
	//
	// Parameters:
	//   - weights: one weight per variant
	//
	// Returns:
	//   - Assignment: the channel layout
	//   - bool: true if the bindings changed (always true on the first call)
	Resolve(weights []float32) (Assignment, bool)

	// Surfaces returns the variant surfaces in variant order. Surface 0 is the drawn base mesh.
	Surfaces() []*mesh.Surface

	// PositionChannels returns the position channel capacity.
	PositionChannels() int

	// ColorChannels returns the colour channel capacity.
	ColorChannels() int
}

var _ Multiplexer = &multiplexer{}

// NewMultiplexer creates a Multiplexer over surfaces that must share one topology.
//
// Parameters:
//   - surfaces: the variant surfaces in variant order
//   - options: functional options to configure the multiplexer
//
// Returns:
//   - Multiplexer: the configured multiplexer
//   - error: a *mesh.TopologyMismatchError if the surfaces differ, or an error for invalid capacities
func NewMultiplexer(surfaces []*mesh.Surface, options ...MultiplexerOption) (Multiplexer, error) {
	m := &multiplexer{
		surfaces:         surfaces,
		positionChannels: 4,
		colorChannels:    4,
		logger:           slog.Default(),
	}
	for _, opt := range options {
		opt(m)
	}

	if len(surfaces) == 0 {
		return nil, errors.New("multiplexer needs at least one surface")
	}
	if m.positionChannels < 1 || m.colorChannels < 1 {
		return nil, fmt.Errorf("channel capacity must be positive, got %d position and %d color", m.positionChannels, m.colorChannels)
	}
	if err := mesh.ValidateTopology(surfaces...); err != nil {
		return nil, err
	}
	return m, nil
}

// weightEpsilon is the tolerance below which a leftover weight is treated as zero, so float
// rounding in a transition does not bind the base surface for a frame.
const weightEpsilon = 1e-6

type ranked struct {
	index  int
	weight float32
}

func (m *multiplexer) SelectActiveChannels(weights []float32) Assignment {
	effective := baseAdjusted(weights)
	order := make([]ranked, len(effective))
	for i, w := range effective {
		order[i] = ranked{index: i, weight: w}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return math32.Abs(order[i].weight) > math32.Abs(order[j].weight)
	})

	return Assignment{
		Positions:   bindTop(order, m.positionChannels),
		Colors:      bindTop(order, m.colorChannels),
		positionCap: m.positionChannels,
		colorCap:    m.colorChannels,
	}
}

// baseAdjusted returns weights with the share they leave unassigned (1 minus their sum)
// moved onto variant 0, the base surface. NaN weights count as 0.
func baseAdjusted(weights []float32) []float32 {
	out := make([]float32, len(weights))
	var sum float64
	for i, w := range weights {
		if math32.IsNaN(w) {
			w = 0
		}
		out[i] = w
		sum += float64(w)
	}
	if len(out) == 0 {
		return out
	}
	out[0] += float32(1 - sum)
	if math32.Abs(out[0]) < weightEpsilon {
		out[0] = 0
	}
	return out
}

// bindTop takes the first capacity entries of a weight-ranked list, restores index order,
// and assigns channels to the nonzero ones. Variant 0 therefore always lands on channel 0
// when it is bound, and the draw stage gives channel 0 whatever weight the bindings leave
// over. When variant 0 did not make the cut, the bound weights are rescaled to sum to 1
// so nothing is left over for a non-base channel to absorb.
func bindTop(order []ranked, capacity int) []Binding {
	top := slices.Clone(order[:min(capacity, len(order))])
	sort.Slice(top, func(i, j int) bool {
		return top[i].index < top[j].index
	})

	bindings := make([]Binding, 0, len(top))
	var sum float32
	for _, r := range top {
		if r.weight == 0 {
			continue
		}
		bindings = append(bindings, Binding{Channel: len(bindings), Variant: r.index, Weight: r.weight})
		sum += r.weight
	}
	if len(bindings) > 0 && bindings[0].Variant != 0 && sum != 0 && math32.Abs(1-sum) >= weightEpsilon {
		for i := range bindings {
			bindings[i].Weight /= sum
		}
	}
	return bindings
}

func (m *multiplexer) Resolve(weights []float32) (Assignment, bool) {
	a := m.SelectActiveChannels(weights)
	changed := !m.resolved || !a.SameBindings(m.last)
	if changed {
		m.logger.Debug("morph channels rebound",
			slog.Any("positions", variantsOf(a.Positions)),
			slog.Any("colors", variantsOf(a.Colors)))
	}
	m.last = a
	m.resolved = true
	return a, changed
}

func (m *multiplexer) Surfaces() []*mesh.Surface {
	return m.surfaces
}

func (m *multiplexer) PositionChannels() int {
	return m.positionChannels
}

func (m *multiplexer) ColorChannels() int {
	return m.colorChannels
}

func variantsOf(bindings []Binding) []int {
	out := make([]int, len(bindings))
	for i, b := range bindings {
		out[i] = b.Variant
	}
	return out
}
