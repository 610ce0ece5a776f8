package animator

import "log/slog"

// AnimatorOption is a functional option for configuring an Animator via NewAnimator.
type AnimatorOption func(*animator)

// WithEasing sets the easing applied to every transition.
//
// Parameters:
//   - easing: the easing function; nil keeps Linear
//
// Returns:
//   - AnimatorOption: a function that applies the easing to an animator
func WithEasing(easing Easing) AnimatorOption {
	return func(a *animator) {
		if easing != nil {
			a.easing = easing
		}
	}
}

// WithLogger sets the logger used for transition and lifecycle diagnostics.
func WithLogger(logger *slog.Logger) AnimatorOption {
	return func(a *animator) {
		if logger != nil {
			a.logger = logger
		}
	}
}
