package renderer

import (
	"errors"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/event"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/scene"
)

// ShaderLoader compiles the shaders of one scene when the engine initializes, together with the
// textures those shaders sample. It is bound to the scene it was created for; a later scene needs a
// new loader.
type ShaderLoader struct {
	textures TextureLoader
	root     scene.Node
	loaded   int
	err      error
}

var _ event.Listener[engine.InitializeEventArg] = &ShaderLoader{}

// NewShaderLoader creates a ShaderLoader for root.
//
// Parameters:
//   - textures: the texture loader, which also names the renderer
//   - root: the scene whose shaders are loaded
//
// Returns:
//   - *ShaderLoader: the loader, to be attached to the engine Initialize event
func NewShaderLoader(textures TextureLoader, root scene.Node) *ShaderLoader {
	return &ShaderLoader{textures: textures, root: root}
}

// Handle loads every shader reachable from the bound scene. Errors are logged and kept in Err.
func (s *ShaderLoader) Handle(_ engine.InitializeEventArg) {
	s.err = s.Load()
	if s.err != nil {
		s.textures.Renderer().Logger().Error("shader load failed", "error", s.err)
	}
}

// Load compiles every shader of the bound scene and uploads the textures they sample.
//
// Returns:
//   - error: the joined errors of every shader or texture that failed
func (s *ShaderLoader) Load() error {
	r := s.textures.Renderer()
	var errs []error
	for _, sh := range scene.Shaders(s.root) {
		if err := r.LoadShader(sh); err != nil {
			errs = append(errs, err)
			continue
		}
		s.loaded++
		for _, t := range sh.Textures() {
			if err := s.textures.LoadTexture(t); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Root returns the bound scene.
func (s *ShaderLoader) Root() scene.Node {
	return s.root
}

// Loaded returns how many shaders were compiled.
func (s *ShaderLoader) Loaded() int {
	return s.loaded
}

// Err returns the error of the last Handle, or nil.
func (s *ShaderLoader) Err() error {
	return s.err
}
