package window

import "log/slog"

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
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

// WithWidth sets the initial window width.
//
// Parameters:
//   - width: initial width in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithWidth(width int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
	}
}

// WithHeight sets the initial window height.
//
// Parameters:
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithHeight(height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.height = height
	}
}

// WithDepth sets the requested color depth. Depths of 24 or less request 8 bits per channel
// without alpha.
//
// Parameters:
//   - depth: bits per pixel
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithDepth(depth int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.depth = depth
	}
}

// WithSizeLimits bounds interactive resizing. Zero leaves a bound open.
//
// Parameters:
//   - minWidth, minHeight: smallest allowed client size in pixels
//   - maxWidth, maxHeight: largest allowed client size in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSizeLimits(minWidth, minHeight, maxWidth, maxHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth = minWidth
		w.minHeight = minHeight
		w.maxWidth = maxWidth
		w.maxHeight = maxHeight
	}
}

// WithLogger sets the logger for window lifecycle messages.
//
// Parameters:
//   - logger: the structured logger (nil keeps the default)
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) WindowBuilderOption {
	return func(w *engineWindow) {
		if logger != nil {
			w.logger = logger
		}
	}
}
