// Package morph owns the per-variant blend weights and decides which variants occupy the
// bounded set of morph channels a draw call can blend between.
package morph

import (
	"fmt"
	"slices"
)

// BlendState is the weight each variant contributes to the displayed surface.
// Weights are written by the animator on the frame thread and read by the Multiplexer.
type BlendState struct {
	weights []float32
}

// NewBlendState creates a blend state for n variants with variant 0 fully shown.
//
// Parameters:
//   - n: the number of variants
//
// Returns:
//   - *BlendState: the new blend state
func NewBlendState(n int) *BlendState {
	return &BlendState{weights: OneHot(n, 0)}
}

// Len returns the number of variants.
func (b *BlendState) Len() int {
	return len(b.weights)
}

// Weights returns the live weight vector. Writers must stay on the frame thread.
func (b *BlendState) Weights() []float32 {
	return b.weights
}

// Snapshot returns a copy of the weight vector.
func (b *BlendState) Snapshot() []float32 {
	return slices.Clone(b.weights)
}

// Set replaces every weight.
//
// Parameters:
//   - weights: the new vector; its length must match Len
//
// Returns:
//   - error: an error if the length differs
func (b *BlendState) Set(weights []float32) error {
	if len(weights) != len(b.weights) {
		return fmt.Errorf("blend state has %d variants, got %d weights", len(b.weights), len(weights))
	}
	copy(b.weights, weights)
	return nil
}

// OneHot returns a vector of n zeros with a 1 at index i. An out-of-range index yields all zeros.
//
// Parameters:
//   - n: the vector length
//   - i: the index set to 1
//
// Returns:
//   - []float32: the one-hot vector
func OneHot(n, i int) []float32 {
	w := make([]float32, n)
	if i >= 0 && i < n {
		w[i] = 1
	}
	return w
}
