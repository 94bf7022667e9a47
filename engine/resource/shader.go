package resource

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// ErrEntryPointMissing is returned when shader source lacks a configured entry point.
var ErrEntryPointMissing = errors.New("shader entry point missing")

type shaderImpl struct {
	mu *sync.Mutex

	name   string
	path   string
	inline string
	dirs   DirectoryManager

	vertexEntryPoint   string
	fragmentEntryPoint string
	textures           []Texture

	source string
	loaded bool
}

// Shader is a WGSL program holding a vertex and a fragment entry point,
// plus the textures it samples.
type Shader interface {
	// Name returns the shader identifier.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Load reads the source and checks that both entry points are declared.
	// Calling Load on a loaded shader is a no-op.
	//
	// Returns:
	//   - error: if the file cannot be read or an entry point is missing
	Load() error

	// Unload drops the source.
	Unload()

	// Loaded reports whether the source is available.
	Loaded() bool

	// Source returns the WGSL source, or "" when not loaded.
	Source() string

	// VertexEntryPoint returns the vertex stage function name.
	VertexEntryPoint() string

	// FragmentEntryPoint returns the fragment stage function name.
	FragmentEntryPoint() string

	// Textures returns the sampler inputs in binding order.
	//
	// Returns:
	//   - []Texture: the textures the shader samples
	Textures() []Texture
}

var _ Shader = &shaderImpl{}

// NewShaderFile creates a shader backed by a WGSL file.
//
// Parameters:
//   - path: file path; relative paths resolve through the DirectoryManager when one is set
//   - options: functional options for shader configuration
//
// Returns:
//   - Shader: the shader
func NewShaderFile(path string, options ...ShaderBuilderOption) Shader {
	s := newShader(path, options...)
	s.path = path
	return s
}

// NewShaderSource creates a shader from inline WGSL.
//
// Parameters:
//   - name: identifier for the shader
//   - wgsl: the source code
//   - options: functional options for shader configuration
//
// Returns:
//   - Shader: the shader
func NewShaderSource(name, wgsl string, options ...ShaderBuilderOption) Shader {
	s := newShader(name, options...)
	s.inline = wgsl
	return s
}

func newShader(name string, options ...ShaderBuilderOption) *shaderImpl {
	s := &shaderImpl{
		mu:                 &sync.Mutex{},
		name:               name,
		vertexEntryPoint:   "vs_main",
		fragmentEntryPoint: "fs_main",
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *shaderImpl) Name() string {
	return s.name
}

func (s *shaderImpl) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}

	src := s.inline
	if s.path != "" {
		path := s.path
		if s.dirs != nil {
			resolved, err := s.dirs.FindFileInPath(path)
			if err != nil {
				return fmt.Errorf("load shader: %w", err)
			}
			path = resolved
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("load shader: %w", err)
		}
		src = string(data)
	}

	for _, entry := range []string{s.vertexEntryPoint, s.fragmentEntryPoint} {
		if !strings.Contains(src, "fn "+entry) {
			return fmt.Errorf("shader %s: %q: %w", s.name, entry, ErrEntryPointMissing)
		}
	}

	s.source = src
	s.loaded = true
	return nil
}

func (s *shaderImpl) Unload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = ""
	s.loaded = false
}

func (s *shaderImpl) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *shaderImpl) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

func (s *shaderImpl) VertexEntryPoint() string {
	return s.vertexEntryPoint
}

func (s *shaderImpl) FragmentEntryPoint() string {
	return s.fragmentEntryPoint
}

func (s *shaderImpl) Textures() []Texture {
	out := make([]Texture, len(s.textures))
	copy(out, s.textures)
	return out
}
