package resource

// ShaderBuilderOption is a functional option for configuring a Shader.
type ShaderBuilderOption func(*shaderImpl)

// WithShaderTextures sets the textures the shader samples, in binding order.
//
// Parameters:
//   - textures: the sampler inputs
//
// Returns:
//   - ShaderBuilderOption: option function to apply
func WithShaderTextures(textures ...Texture) ShaderBuilderOption {
	return func(s *shaderImpl) {
		s.textures = append(s.textures, textures...)
	}
}

// WithShaderDirectoryManager resolves the shader path through the given search directories.
//
// Parameters:
//   - dirs: the directory manager
//
// Returns:
//   - ShaderBuilderOption: option function to apply
func WithShaderDirectoryManager(dirs DirectoryManager) ShaderBuilderOption {
	return func(s *shaderImpl) {
		s.dirs = dirs
	}
}

// WithEntryPoints overrides the vertex and fragment function names (default vs_main / fs_main).
//
// Parameters:
//   - vertex: the vertex stage function
//   - fragment: the fragment stage function
//
// Returns:
//   - ShaderBuilderOption: option function to apply
func WithEntryPoints(vertex, fragment string) ShaderBuilderOption {
	return func(s *shaderImpl) {
		s.vertexEntryPoint = vertex
		s.fragmentEntryPoint = fragment
	}
}
