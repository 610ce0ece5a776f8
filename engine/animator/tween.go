package animator

import (
	"slices"
	"time"

	"github.com/Carmen-Shannon/oxy-morph/common"
)

// Easing maps linear progress in [0, 1] to eased progress.
type Easing func(t float32) float32

// Linear is the identity easing.
func Linear(t float32) float32 {
	return t
}

// EaseInOutCubic accelerates through the first half and decelerates through the second.
func EaseInOutCubic(t float32) float32 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	f := -2*t + 2
	return 1 - f*f*f/2
}

// tween interpolates a weight vector in place from the values it held at creation to a target.
type tween struct {
	handle *Handle

	values []float32
	from   []float32
	to     []float32

	duration time.Duration
	elapsed  time.Duration
	easing   Easing

	onComplete func()
}

func newTween(values, to []float32, duration time.Duration, easing Easing, handle *Handle, onComplete func()) *tween {
	return &tween{
		handle:     handle,
		values:     values,
		from:       slices.Clone(values),
		to:         slices.Clone(to),
		duration:   duration,
		easing:     easing,
		onComplete: onComplete,
	}
}

// advance moves the tween forward by dt and writes the interpolated values.
//
// Returns:
//   - bool: true once the tween has reached its target
func (tw *tween) advance(dt time.Duration) bool {
	tw.elapsed += dt
	if tw.duration <= 0 || tw.elapsed >= tw.duration {
		copy(tw.values, tw.to)
		return true
	}

	p := tw.easing(float32(tw.elapsed) / float32(tw.duration))
	for i := range tw.values {
		tw.values[i] = common.Lerp(tw.from[i], tw.to[i], p)
	}
	return false
}
