package setup

import (
	"log/slog"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/renderer"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/window"
)

// SimpleSetupBuilderOption is a functional option applied to a SimpleSetup before its modules are built.
type SimpleSetupBuilderOption func(*SimpleSetup)

// WithLogger sets the logger handed to every module. A nil logger keeps the default text logger on stdout.
//
// Parameters:
//   - logger: the structured logger
//
// Returns:
//   - SimpleSetupBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) SimpleSetupBuilderOption {
	return func(s *SimpleSetup) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHeadless builds a headless frame and a headless renderer backend, so the setup runs without a
// display or a GPU. Frames and backends given with WithWindow or WithRendererBackend take precedence.
//
// Parameters:
//   - headless: true to run without a platform window
//
// Returns:
//   - SimpleSetupBuilderOption: option function to apply
func WithHeadless(headless bool) SimpleSetupBuilderOption {
	return func(s *SimpleSetup) {
		s.headless = headless
	}
}

// WithWindow uses frame instead of building one. The title is then whatever frame reports.
//
// Parameters:
//   - frame: the display surface
//
// Returns:
//   - SimpleSetupBuilderOption: option function to apply
func WithWindow(frame window.Window) SimpleSetupBuilderOption {
	return func(s *SimpleSetup) {
		s.frame = frame
	}
}

// WithRendererBackend uses backend for the renderer instead of the default.
//
// Parameters:
//   - backend: the renderer backend
//
// Returns:
//   - SimpleSetupBuilderOption: option function to apply
func WithRendererBackend(backend renderer.RendererBackend) SimpleSetupBuilderOption {
	return func(s *SimpleSetup) {
		s.backend = backend
	}
}

// WithTickRate sets the engine Process rate in ticks per second.
//
// Parameters:
//   - fps: target ticks per second; <= 0 means 60
//
// Returns:
//   - SimpleSetupBuilderOption: option function to apply
func WithTickRate(fps float64) SimpleSetupBuilderOption {
	return func(s *SimpleSetup) {
		s.tickRate = fps
	}
}

// WithProfiling turns on the engine profiler.
func WithProfiling(enabled bool) SimpleSetupBuilderOption {
	return func(s *SimpleSetup) {
		s.profile = enabled
	}
}

// WithDotFile sets the file EnableDebugging writes. The default is scene.dot in the working directory.
//
// Parameters:
//   - path: the output path
//
// Returns:
//   - SimpleSetupBuilderOption: option function to apply
func WithDotFile(path string) SimpleSetupBuilderOption {
	return func(s *SimpleSetup) {
		if path != "" {
			s.dotFile = path
		}
	}
}

// WithDataDirectories seeds the resource search path.
//
// Parameters:
//   - dirs: directories searched in order
//
// Returns:
//   - SimpleSetupBuilderOption: option function to apply
func WithDataDirectories(dirs ...string) SimpleSetupBuilderOption {
	return func(s *SimpleSetup) {
		s.dataDirs = append(s.dataDirs, dirs...)
	}
}
