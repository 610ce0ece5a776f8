package morph

import "log/slog"

// MultiplexerOption is a functional option for configuring a Multiplexer via NewMultiplexer.
type MultiplexerOption func(*multiplexer)

// WithPositionChannels sets how many variants can contribute positions at once.
//
// Parameters:
//   - channels: the position channel capacity
//
// Returns:
//   - MultiplexerOption: a function that applies the capacity to a multiplexer
func WithPositionChannels(channels int) MultiplexerOption {
	return func(m *multiplexer) {
		m.positionChannels = channels
	}
}

// WithColorChannels sets how many variants can contribute colours at once.
//
// Parameters:
//   - channels: the colour channel capacity
//
// Returns:
//   - MultiplexerOption: a function that applies the capacity to a multiplexer
func WithColorChannels(channels int) MultiplexerOption {
	return func(m *multiplexer) {
		m.colorChannels = channels
	}
}

// WithLogger sets the logger used for channel rebinding diagnostics.
func WithLogger(logger *slog.Logger) MultiplexerOption {
	return func(m *multiplexer) {
		if logger != nil {
			m.logger = logger
		}
	}
}
