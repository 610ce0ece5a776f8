package mesh

import (
	"log/slog"
)

// BuilderOption is a functional option for configuring a Builder via NewBuilder.
type BuilderOption func(*builder)

// WithBaseRadius sets the radial distance from the globe centre to the base of each box.
//
// Parameters:
//   - radius: the globe radius in world units
//
// Returns:
//   - BuilderOption: a function that applies the radius option to a builder
func WithBaseRadius(radius float32) BuilderOption {
	return func(b *builder) {
		b.baseRadius = radius
	}
}

// WithOriginOffset sets how far the unit box is shifted along its radial axis before scaling.
// 0.5 puts the base of the box on the globe surface.
//
// Parameters:
//   - offset: offset in unit-box space
//
// Returns:
//   - BuilderOption: a function that applies the offset option to a builder
func WithOriginOffset(offset float32) BuilderOption {
	return func(b *builder) {
		b.originOffset = offset
	}
}

// WithLateralExtent sets the constant width and depth of every box.
//
// Parameters:
//   - extent: lateral size in world units
//
// Returns:
//   - BuilderOption: a function that applies the extent option to a builder
func WithLateralExtent(extent float32) BuilderOption {
	return func(b *builder) {
		b.lateralExtent = extent
	}
}

// WithExtentRange sets the radial height of the smallest and largest box.
//
// Parameters:
//   - minExtent: height at normalised magnitude 0
//   - maxExtent: height at normalised magnitude 1
//
// Returns:
//   - BuilderOption: a function that applies the range option to a builder
func WithExtentRange(minExtent, maxExtent float32) BuilderOption {
	return func(b *builder) {
		b.minExtent = minExtent
		b.maxExtent = maxExtent
	}
}

// WithLonCorrection sets the angle in radians added to every cell longitude.
//
// Parameters:
//   - radians: the correction angle
//
// Returns:
//   - BuilderOption: a function that applies the correction to a builder
func WithLonCorrection(radians float32) BuilderOption {
	return func(b *builder) {
		b.lonCorrection = radians
	}
}

// WithLatCorrection sets the angle in radians added to every cell latitude.
//
// Parameters:
//   - radians: the correction angle
//
// Returns:
//   - BuilderOption: a function that applies the correction to a builder
func WithLatCorrection(radians float32) BuilderOption {
	return func(b *builder) {
		b.latCorrection = radians
	}
}

// WithSaturation sets the HSL saturation used for every box.
func WithSaturation(saturation float64) BuilderOption {
	return func(b *builder) {
		b.saturation = saturation
	}
}

// WithLightnessRange sets the HSL lightness at normalised magnitude 0 and 1.
//
// Parameters:
//   - low: lightness of the smallest value
//   - high: lightness of the largest value
//
// Returns:
//   - BuilderOption: a function that applies the range option to a builder
func WithLightnessRange(low, high float64) BuilderOption {
	return func(b *builder) {
		b.minLightness = low
		b.maxLightness = high
	}
}

// WithWorkers sets the number of workers BuildAll uses. Values below 1 are treated as 1.
func WithWorkers(workers int) BuilderOption {
	return func(b *builder) {
		b.workers = workers
	}
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}
