package resource

// TextureBuilderOption is a functional option for configuring a file texture.
type TextureBuilderOption func(*textureImpl)

// WithDirectoryManager resolves the texture path through the given search directories.
//
// Parameters:
//   - dirs: the directory manager
//
// Returns:
//   - TextureBuilderOption: option function to apply
func WithDirectoryManager(dirs DirectoryManager) TextureBuilderOption {
	return func(t *textureImpl) {
		t.dirs = dirs
	}
}

// WithTextureName overrides the texture identifier, which defaults to the path.
//
// Parameters:
//   - name: the identifier
//
// Returns:
//   - TextureBuilderOption: option function to apply
func WithTextureName(name string) TextureBuilderOption {
	return func(t *textureImpl) {
		t.name = name
	}
}
