package window

// WindowBuilderOption configures an engineWindow before the platform window is created.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the title bar text. Defaults to "oxy-morph".
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the requested window size in screen coordinates. The framebuffer may be
// larger on high-DPI displays; Width and Height always report the framebuffer size.
// Non-positive values keep the 1280x720 default.
//
// Parameters:
//   - width: requested width
//   - height: requested height
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		if width > 0 && height > 0 {
			w.width = width
			w.height = height
		}
	}
}

// WithMinSize stops the window from being resized below the given size, so the globe
// never collapses to a zero-area surface.
//
// Parameters:
//   - width: minimum width
//   - height: minimum height
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMinSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth = width
		w.minHeight = height
	}
}
