package renderer

import (
	"log/slog"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithBackend replaces the default wgpu backend, e.g. with a HeadlessBackend for tests.
//
// Parameters:
//   - backend: the backend to drive
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend option to a renderer
func WithBackend(backend RendererBackend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = backend
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = &mode
	}
}

// WithClearColor sets the background color.
//
// Parameters:
//   - r, g, b, a: components in [0, 1]
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(red, green, blue, alpha float32) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = [4]float32{red, green, blue, alpha}
	}
}

// WithLogger sets the logger used by the renderer and by the listeners attached to it.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(logger *slog.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}
